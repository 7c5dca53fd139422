package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/peterbourgon/ff/v3"
	"github.com/peterbourgon/ff/v3/ffcli"

	"spectrum-chain/internal/chain"
	"spectrum-chain/internal/palette"
)

// Usage:
//   spectrum chain [flags]                  # list chain nodes and transitions
//   spectrum nearest [flags] <hex>          # nearest chain node of a color
//   spectrum position [flags] <hex>         # exact spectrum percentage of a color
//   spectrum gradient [flags] <from> <to>   # colors walking the chain between two colors
//   spectrum save [flags] <name> [hex...]   # save a palette
//   spectrum palettes                       # list saved palettes
//   spectrum remove <name>                  # delete a saved palette
//   spectrum pulse [flags] --wav <file>     # audio-reactive colors from a WAV file
//   spectrum preview [flags] <from> <to>    # interactive terminal preview

var errConflictingPalette = errors.New("--colors and --palette are mutually exclusive")

// usageError reports wrong positional arguments with the command's usage line.
type usageError string

func (e usageError) Error() string {
	return "usage: " + string(e)
}

func main() {
	root := newRootCommand(os.Stdout, os.Stderr)
	if err := root.ParseAndRun(context.Background(), os.Args[1:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "spectrum: %v\n", err)
		os.Exit(1)
	}
}

func newRootCommand(out, errOut io.Writer) *ffcli.Command {
	cfg := &config{out: out, errOut: errOut}

	fs := flag.NewFlagSet("spectrum", flag.ContinueOnError)
	fs.SetOutput(errOut)

	root := &ffcli.Command{
		Name:       "spectrum",
		ShortUsage: "spectrum <subcommand> [flags] [args...]",
		ShortHelp:  "Navigate a closed chain of reference colors",
		LongHelp: "Flags can also be set with SPECTRUM_<FLAG> environment variables\n" +
			"or a --config file with one \"flag value\" pair per line.",
		FlagSet: fs,
		Subcommands: []*ffcli.Command{
			newChainCommand(cfg),
			newNearestCommand(cfg),
			newPositionCommand(cfg),
			newGradientCommand(cfg),
			newSaveCommand(cfg),
			newPalettesCommand(cfg),
			newRemoveCommand(cfg),
			newPulseCommand(cfg),
			newPreviewCommand(cfg),
		},
	}
	root.Exec = func(context.Context, []string) error {
		fmt.Fprintln(errOut, ffcli.DefaultUsageFunc(root))
		return flag.ErrHelp
	}
	return root
}

// ============================================================================
// Shared configuration
// ============================================================================

type config struct {
	out    io.Writer
	errOut io.Writer

	colors   string
	palette  string
	match    string
	logLevel string

	logger *slog.Logger
}

// registerFlags binds the flags every subcommand shares.
func (c *config) registerFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.colors, "colors", "", "comma separated hex colors for the chain (at least 8)")
	fs.StringVar(&c.palette, "palette", "", "name of a saved palette for the chain")
	fs.StringVar(&c.match, "match", "last", "nearest node rule: last or closest")
	fs.StringVar(&c.logLevel, "log-level", "warn", "log level: debug, info, warn or error")
	fs.String("config", "", "config file with one \"flag value\" pair per line")
}

func newFlagSet(name string, cfg *config) *flag.FlagSet {
	fs := flag.NewFlagSet("spectrum "+name, flag.ContinueOnError)
	fs.SetOutput(cfg.errOut)
	cfg.registerFlags(fs)
	return fs
}

func ffOptions() []ff.Option {
	return []ff.Option{
		ff.WithEnvVarPrefix("SPECTRUM"),
		ff.WithConfigFileFlag("config"),
		ff.WithConfigFileParser(ff.PlainParser),
		ff.WithAllowMissingConfigFile(true),
	}
}

// setup prepares the logger once flags are parsed.
func (c *config) setup() error {
	logger, err := newLogger(c.errOut, c.logLevel)
	if err != nil {
		return err
	}
	c.logger = logger
	return nil
}

func newLogger(w io.Writer, level string) (*slog.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("parsing log level: %w", err)
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl})), nil
}

func (c *config) matchMode() (chain.MatchMode, error) {
	mode, ok := chain.ParseMatchMode(c.match)
	if !ok {
		return chain.MatchLast, fmt.Errorf("unknown match mode %q", c.match)
	}
	return mode, nil
}

// loadChain builds the chain from --colors, --palette or the default palette.
func (c *config) loadChain() (*chain.Chain, error) {
	var (
		colors []colorful.Color
		err    error
	)

	switch {
	case c.colors != "" && c.palette != "":
		return nil, errConflictingPalette
	case c.colors != "":
		colors, err = palette.Parse(c.colors)
		if err != nil {
			return nil, fmt.Errorf("parsing --colors: %w", err)
		}
		c.logger.Debug("chain from flag", "colors", len(colors))
	case c.palette != "":
		p, loadErr := palette.Load(c.palette)
		if loadErr != nil {
			return nil, fmt.Errorf("loading palette: %w", loadErr)
		}
		colors, err = p.Decode()
		if err != nil {
			return nil, err
		}
		c.logger.Debug("chain from palette", "name", p.Name, "fingerprint", p.Fingerprint)
	default:
		c.logger.Debug("chain from default palette")
		return chain.Default(), nil
	}

	ch, err := chain.New(colors...)
	if err != nil {
		return nil, fmt.Errorf("building chain from %d colors: %w", len(colors), err)
	}
	return ch, nil
}
