package main

import (
	"context"
	"fmt"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/peterbourgon/ff/v3/ffcli"

	"spectrum-chain/internal/chain"
	"spectrum-chain/internal/pulse"
)

const frameDelay = 30 * time.Millisecond

func newPreviewCommand(cfg *config) *ffcli.Command {
	fs := newFlagSet("preview", cfg)
	decay := fs.String("decay", string(pulse.DefaultDecay), "pulse decay speed: fast, medium or slow")

	return &ffcli.Command{
		Name:       "preview",
		ShortUsage: "spectrum preview [flags] <from> <to>",
		ShortHelp:  "Show a gradient and a key driven pulse in the terminal",
		LongHelp: "Controls:\n" +
			"  Arrow Up      Kick the pulse\n" +
			"  Arrow Down    Reset the pulse\n" +
			"  Arrow Left/Right  Rotate the gradient\n" +
			"  Any other key Exit",
		FlagSet: fs,
		Options: ffOptions(),
		Exec: func(ctx context.Context, args []string) error {
			if len(args) != 2 {
				return usageError("spectrum preview [flags] <from> <to>")
			}
			speed, ok := pulse.ParseDecaySpeed(*decay)
			if !ok {
				return fmt.Errorf("unknown decay speed %q", *decay)
			}
			if err := cfg.setup(); err != nil {
				return err
			}
			// validate the arguments before taking over the terminal
			if _, err := cfg.gradient(1, args[0], args[1]); err != nil {
				return err
			}

			s, err := tcell.NewScreen()
			if err != nil {
				return fmt.Errorf("creating screen: %w", err)
			}
			if err := s.Init(); err != nil {
				return fmt.Errorf("initializing screen: %w", err)
			}
			defer s.Fini()

			return runPreview(ctx, s, cfg, args[0], args[1], speed)
		},
	}
}

// previewState is everything one preview frame needs.
type previewState struct {
	from, to string
	stops    []chain.Stop
	picker   *pulse.Picker
	envelope *pulse.Envelope
	offset   int
}

func runPreview(ctx context.Context, s tcell.Screen, cfg *config, from, to string, speed pulse.DecaySpeed) error {
	s.Clear()
	s.HideCursor()

	width, height := s.Size()
	if width <= 0 || height <= 0 {
		return nil
	}

	st := &previewState{from: from, to: to, envelope: pulse.NewEnvelope(speed)}
	if err := st.resize(cfg, width); err != nil {
		return err
	}

	events := make(chan tcell.Event, 10)
	go func() {
		for {
			ev := s.PollEvent()
			if ev == nil {
				return
			}
			events <- ev
		}
	}()

	ticker := time.NewTicker(frameDelay)
	defer ticker.Stop()

loop:
	for {
		select {
		case <-ctx.Done():
			break loop
		case ev := <-events:
			switch ev := ev.(type) {
			case *tcell.EventKey:
				switch ev.Key() {
				case tcell.KeyUp:
					st.envelope.Kick()
				case tcell.KeyDown:
					st.envelope.Reset()
				case tcell.KeyLeft:
					st.offset--
				case tcell.KeyRight:
					st.offset++
				default:
					break loop
				}
			case *tcell.EventResize:
				width, height = s.Size()
				if width <= 0 || height <= 0 {
					break loop
				}
				if err := st.resize(cfg, width); err != nil {
					return err
				}
				s.Sync()
			}
		case <-ticker.C:
			st.envelope.Tick()
			drawPreview(s, st, width, height)
			s.Show()
		}
	}
	return nil
}

// resize regenerates the gradient with one stop per column.
func (st *previewState) resize(cfg *config, width int) error {
	stops, err := cfg.gradient(width, st.from, st.to)
	if err != nil {
		return err
	}
	st.stops = stops
	st.picker = pulse.NewPicker(stopColors(stops)...)
	return nil
}

func drawPreview(s tcell.Screen, st *previewState, width, height int) {
	statusRow := height - 1
	pulseRow := height - 2

	for x := 0; x < width; x++ {
		style := tcell.StyleDefault.Background(tcellColor(barColor(st.stops, x, st.offset)))
		for y := 0; y < pulseRow; y++ {
			s.SetContent(x, y, ' ', nil, style)
		}
	}

	if pulseRow >= 0 {
		style := tcell.StyleDefault.Background(tcellColor(st.picker.Pick(st.envelope.Level())))
		for x := 0; x < width; x++ {
			s.SetContent(x, pulseRow, ' ', nil, style)
		}
	}

	status := []rune(statusLine(st))
	style := tcell.StyleDefault.Foreground(tcell.ColorWhite)
	for x := 0; x < width; x++ {
		r := ' '
		if x < len(status) {
			r = status[x]
		}
		s.SetContent(x, statusRow, r, nil, style)
	}
}

// barColor returns the gradient color shown in column x after rotating by offset.
func barColor(stops []chain.Stop, x, offset int) colorful.Color {
	if len(stops) == 0 {
		return colorful.Color{}
	}
	n := len(stops)
	return stops[((x+offset)%n+n)%n].Color
}

func statusLine(st *previewState) string {
	return fmt.Sprintf(" %s -> %s  pulse %.2f  ↑ kick  ↓ reset  ←→ rotate  other keys exit",
		st.from, st.to, st.envelope.Level())
}

func tcellColor(c colorful.Color) tcell.Color {
	r, g, b := c.Clamped().RGB255()
	return tcell.NewRGBColor(int32(r), int32(g), int32(b))
}
