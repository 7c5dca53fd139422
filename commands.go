package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/gopxl/beep/wav"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/peterbourgon/ff/v3/ffcli"

	"spectrum-chain/internal/chain"
	"spectrum-chain/internal/palette"
	"spectrum-chain/internal/pulse"
)

// ============================================================================
// chain
// ============================================================================

func newChainCommand(cfg *config) *ffcli.Command {
	fs := newFlagSet("chain", cfg)
	anchor := fs.String("anchor", "", "color whose nearest node is placed at 0% (default: first node)")

	return &ffcli.Command{
		Name:       "chain",
		ShortUsage: "spectrum chain [flags]",
		ShortHelp:  "List chain nodes, transitions and spectrum percentages",
		FlagSet:    fs,
		Options:    ffOptions(),
		Exec: func(_ context.Context, args []string) error {
			if err := cfg.setup(); err != nil {
				return err
			}
			c, err := cfg.loadChain()
			if err != nil {
				return err
			}
			start, err := cfg.anchorNode(c, *anchor)
			if err != nil {
				return err
			}

			s := c.Anchor(start)
			p := newPrinter(cfg.out)
			rows := make([][]string, 0, c.Len())
			for _, n := range c.Nodes() {
				rows = append(rows, []string{
					strconv.Itoa(n.Index),
					hexOf(n.Color),
					formatDelta(n.Transition),
					formatPercent(s.Percent(n)),
				})
			}
			p.table([]string{"node", "color", "transition", "percent"}, rows, 1)
			fmt.Fprintf(cfg.out, "fingerprint %s\n", palette.Fingerprint(colorsOf(c)))
			return nil
		},
	}
}

// ============================================================================
// nearest
// ============================================================================

func newNearestCommand(cfg *config) *ffcli.Command {
	fs := newFlagSet("nearest", cfg)

	return &ffcli.Command{
		Name:       "nearest",
		ShortUsage: "spectrum nearest [flags] <hex>",
		ShortHelp:  "Find the chain node nearest to a color",
		FlagSet:    fs,
		Options:    ffOptions(),
		Exec: func(_ context.Context, args []string) error {
			if len(args) != 1 {
				return usageError("spectrum nearest [flags] <hex>")
			}
			if err := cfg.setup(); err != nil {
				return err
			}
			c, err := cfg.loadChain()
			if err != nil {
				return err
			}
			mode, err := cfg.matchMode()
			if err != nil {
				return err
			}
			col, err := palette.ParseColor(args[0])
			if err != nil {
				return err
			}

			n, ok := c.Match(mode, col)
			if !ok {
				return fmt.Errorf("%s: %w", hexOf(col), chain.ErrNoMatch)
			}
			p := newPrinter(cfg.out)
			fmt.Fprintf(cfg.out, "node %d %s%s\n", n.Index, hexOf(n.Color), p.swatch(n.Color))
			return nil
		},
	}
}

// ============================================================================
// position
// ============================================================================

func newPositionCommand(cfg *config) *ffcli.Command {
	fs := newFlagSet("position", cfg)
	anchor := fs.String("anchor", "", "color whose nearest node is placed at 0% (default: first node)")

	return &ffcli.Command{
		Name:       "position",
		ShortUsage: "spectrum position [flags] <hex>",
		ShortHelp:  "Estimate the spectrum percentage of a color",
		FlagSet:    fs,
		Options:    ffOptions(),
		Exec: func(_ context.Context, args []string) error {
			if len(args) != 1 {
				return usageError("spectrum position [flags] <hex>")
			}
			if err := cfg.setup(); err != nil {
				return err
			}
			c, err := cfg.loadChain()
			if err != nil {
				return err
			}
			mode, err := cfg.matchMode()
			if err != nil {
				return err
			}
			col, err := palette.ParseColor(args[0])
			if err != nil {
				return err
			}
			start, err := cfg.anchorNode(c, *anchor)
			if err != nil {
				return err
			}

			n, ok := c.Match(mode, col)
			if !ok {
				return fmt.Errorf("%s: %w", hexOf(col), chain.ErrNoMatch)
			}
			percent := c.Anchor(start).Exact(col, n)
			cfg.logger.Debug("position", "nearest", n.Index, "anchor", start.Index, "percent", percent)
			fmt.Fprintf(cfg.out, "%s nearest=%d anchor=%d position=%s\n",
				hexOf(col), n.Index, start.Index, formatPercent(percent))
			return nil
		},
	}
}

// ============================================================================
// gradient
// ============================================================================

func newGradientCommand(cfg *config) *ffcli.Command {
	fs := newFlagSet("gradient", cfg)
	steps := fs.Int("steps", 10, "number of colors to produce")

	return &ffcli.Command{
		Name:       "gradient",
		ShortUsage: "spectrum gradient [flags] <from> <to>",
		ShortHelp:  "Walk the chain forward from one color to another",
		FlagSet:    fs,
		Options:    ffOptions(),
		Exec: func(_ context.Context, args []string) error {
			if len(args) != 2 {
				return usageError("spectrum gradient [flags] <from> <to>")
			}
			if err := cfg.setup(); err != nil {
				return err
			}
			stops, err := cfg.gradient(*steps, args[0], args[1])
			if err != nil {
				return err
			}

			p := newPrinter(cfg.out)
			for i, s := range stops {
				fmt.Fprintf(cfg.out, "%3d %9s %s%s\n", i+1, formatPercent(s.Percent), hexOf(s.Color), p.swatch(s.Color))
			}
			return nil
		},
	}
}

// gradient loads the chain and resolves both color arguments.
func (c *config) gradient(steps int, from, to string) ([]chain.Stop, error) {
	ch, err := c.loadChain()
	if err != nil {
		return nil, err
	}
	mode, err := c.matchMode()
	if err != nil {
		return nil, err
	}
	fromColor, err := palette.ParseColor(from)
	if err != nil {
		return nil, err
	}
	toColor, err := palette.ParseColor(to)
	if err != nil {
		return nil, err
	}

	stops, err := ch.Gradient(steps, fromColor, toColor, mode)
	if err != nil {
		return nil, fmt.Errorf("generating gradient: %w", err)
	}
	c.logger.Debug("gradient", "steps", steps, "first", stops[0].Percent, "last", stops[len(stops)-1].Percent)
	return stops, nil
}

// ============================================================================
// palette store
// ============================================================================

func newSaveCommand(cfg *config) *ffcli.Command {
	fs := newFlagSet("save", cfg)

	return &ffcli.Command{
		Name:       "save",
		ShortUsage: "spectrum save [flags] <name> [hex...]",
		ShortHelp:  "Save a palette from arguments or --colors",
		FlagSet:    fs,
		Options:    ffOptions(),
		Exec: func(_ context.Context, args []string) error {
			if len(args) < 1 {
				return usageError("spectrum save [flags] <name> [hex...]")
			}
			if err := cfg.setup(); err != nil {
				return err
			}

			var colors []colorful.Color
			if len(args) > 1 {
				for _, a := range args[1:] {
					col, err := palette.ParseColor(a)
					if err != nil {
						return err
					}
					colors = append(colors, col)
				}
			} else {
				c, err := cfg.loadChain()
				if err != nil {
					return err
				}
				colors = colorsOf(c)
			}

			saved, err := palette.Save(args[0], colors)
			if err != nil {
				return fmt.Errorf("saving palette: %w", err)
			}
			cfg.logger.Info("palette saved", "name", saved.Name, "colors", len(saved.Colors))
			fmt.Fprintf(cfg.out, "saved %s (%s)\n", saved.Name, saved.Fingerprint)
			return nil
		},
	}
}

func newPalettesCommand(cfg *config) *ffcli.Command {
	fs := newFlagSet("palettes", cfg)

	return &ffcli.Command{
		Name:       "palettes",
		ShortUsage: "spectrum palettes",
		ShortHelp:  "List saved palettes",
		FlagSet:    fs,
		Options:    ffOptions(),
		Exec: func(_ context.Context, args []string) error {
			if err := cfg.setup(); err != nil {
				return err
			}
			names, err := palette.List()
			if err != nil {
				return err
			}
			if len(names) == 0 {
				fmt.Fprintln(cfg.out, "no saved palettes")
				return nil
			}

			rows := make([][]string, 0, len(names))
			for _, name := range names {
				pal, err := palette.Load(name)
				switch {
				case errors.Is(err, palette.ErrCorrupt):
					cfg.logger.Warn("palette fingerprint mismatch", "name", name)
					rows = append(rows, []string{name, "-", "corrupt", "-"})
				case err != nil:
					return err
				default:
					rows = append(rows, []string{
						name,
						strconv.Itoa(len(pal.Colors)),
						pal.Fingerprint,
						pal.SavedAt.Format(time.RFC3339),
					})
				}
			}
			newPrinter(cfg.out).table([]string{"name", "colors", "fingerprint", "saved"}, rows, -1)
			return nil
		},
	}
}

func newRemoveCommand(cfg *config) *ffcli.Command {
	fs := newFlagSet("remove", cfg)

	return &ffcli.Command{
		Name:       "remove",
		ShortUsage: "spectrum remove <name>",
		ShortHelp:  "Delete a saved palette",
		FlagSet:    fs,
		Options:    ffOptions(),
		Exec: func(_ context.Context, args []string) error {
			if len(args) != 1 {
				return usageError("spectrum remove <name>")
			}
			if err := cfg.setup(); err != nil {
				return err
			}
			if err := palette.Remove(args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cfg.out, "removed %s\n", args[0])
			return nil
		},
	}
}

// ============================================================================
// pulse
// ============================================================================

func newPulseCommand(cfg *config) *ffcli.Command {
	fs := newFlagSet("pulse", cfg)
	wavPath := fs.String("wav", "", "WAV file to measure")
	fps := fs.Int("fps", 30, "readings per second of audio")
	history := fs.Int("history", 16, "readings averaged for the adaptive peak")
	adaptive := fs.Bool("adaptive", false, "pick colors relative to the recent average peak")
	from := fs.String("from", "", "gradient start color for the pulse palette (default: chain nodes)")
	to := fs.String("to", "", "gradient end color for the pulse palette")
	steps := fs.Int("steps", 16, "gradient colors in the pulse palette")

	return &ffcli.Command{
		Name:       "pulse",
		ShortUsage: "spectrum pulse [flags] --wav <file>",
		ShortHelp:  "Map the loudness of a WAV file onto palette colors",
		FlagSet:    fs,
		Options:    ffOptions(),
		Exec: func(ctx context.Context, args []string) error {
			if *wavPath == "" || *fps <= 0 {
				return usageError("spectrum pulse [flags] --wav <file>")
			}
			if err := cfg.setup(); err != nil {
				return err
			}

			var colors []colorful.Color
			if *from != "" || *to != "" {
				stops, err := cfg.gradient(*steps, *from, *to)
				if err != nil {
					return err
				}
				colors = stopColors(stops)
			} else {
				c, err := cfg.loadChain()
				if err != nil {
					return err
				}
				colors = colorsOf(c)
			}
			picker := pulse.NewPicker(colors...)

			f, err := os.Open(*wavPath)
			if err != nil {
				return fmt.Errorf("opening wav: %w", err)
			}
			defer f.Close()

			streamer, format, err := wav.Decode(f)
			if err != nil {
				return fmt.Errorf("decoding wav: %w", err)
			}
			defer streamer.Close()

			samples := pulse.Calibrate(streamer, format)
			window := format.SampleRate.N(time.Second / time.Duration(*fps))
			meter := pulse.NewMeter(window, *history)
			cfg.logger.Debug("pulse", "rate", format.SampleRate, "precision", format.Precision,
				"gain", pulse.WAVGain(format.Precision), "window", window, "palette", picker.Len())

			p := newPrinter(cfg.out)
			frame := 0
			for {
				if err := ctx.Err(); err != nil {
					return err
				}
				r, ok := meter.Read(samples)
				if !ok {
					break
				}
				var col colorful.Color
				if *adaptive {
					col = picker.PickAdaptive(r.Peak, r.AveragePeak)
				} else {
					col = picker.Pick(r.Peak)
				}
				at := time.Duration(frame) * time.Second / time.Duration(*fps)
				fmt.Fprintf(cfg.out, "%8.3fs peak=%.2f avg=%.2f %s%s\n",
					at.Seconds(), r.Peak, r.AveragePeak, hexOf(col), p.swatch(col))
				frame++
			}
			if err := streamer.Err(); err != nil {
				return fmt.Errorf("reading wav: %w", err)
			}
			return nil
		},
	}
}

// ============================================================================
// helpers
// ============================================================================

// anchorNode resolves the --anchor color to a node, or the first node.
func (c *config) anchorNode(ch *chain.Chain, anchor string) (chain.Node, error) {
	if anchor == "" {
		return ch.First(), nil
	}
	mode, err := c.matchMode()
	if err != nil {
		return chain.Node{}, err
	}
	col, err := palette.ParseColor(anchor)
	if err != nil {
		return chain.Node{}, err
	}
	n, ok := ch.Match(mode, col)
	if !ok {
		return chain.Node{}, fmt.Errorf("anchor %s: %w", hexOf(col), chain.ErrNoMatch)
	}
	return n, nil
}

func colorsOf(c *chain.Chain) []colorful.Color {
	nodes := c.Nodes()
	out := make([]colorful.Color, len(nodes))
	for i, n := range nodes {
		out[i] = n.Color
	}
	return out
}

func stopColors(stops []chain.Stop) []colorful.Color {
	out := make([]colorful.Color, len(stops))
	for i, s := range stops {
		out[i] = s.Color
	}
	return out
}

func hexOf(c colorful.Color) string {
	return c.Clamped().Hex()
}

func formatPercent(p float64) string {
	return strconv.FormatFloat(p, 'f', 3, 64) + "%"
}

func formatDelta(d chain.Delta) string {
	return fmt.Sprintf("%+.3f %+.3f %+.3f", d.R, d.G, d.B)
}
