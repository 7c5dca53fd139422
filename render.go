package main

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/lucasb-eyer/go-colorful"
	"golang.org/x/term"
)

// printer writes command output. Color swatches are only drawn when the
// writer is a terminal, so piped output stays plain text.
type printer struct {
	w        io.Writer
	renderer *lipgloss.Renderer
	color    bool
}

func newPrinter(w io.Writer) *printer {
	return &printer{
		w:        w,
		renderer: lipgloss.NewRenderer(w),
		color:    isTerminal(w),
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// swatch returns a leading space and a block of c, or "" without color.
func (p *printer) swatch(c colorful.Color) string {
	if !p.color {
		return ""
	}
	return " " + p.renderer.NewStyle().
		Background(lipgloss.Color(c.Clamped().Hex())).
		Render("    ")
}

// table prints rows under headers. When hexCol is a valid column, its
// #rrggbb cells get a swatch appended.
func (p *printer) table(headers []string, rows [][]string, hexCol int) {
	if p.color && hexCol >= 0 {
		for _, row := range rows {
			if hexCol >= len(row) {
				continue
			}
			if c, err := colorful.Hex(row[hexCol]); err == nil {
				row[hexCol] += p.swatch(c)
			}
		}
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(p.renderer.NewStyle().Foreground(lipgloss.Color("8"))).
		Headers(headers...).
		Rows(rows...)
	fmt.Fprintln(p.w, t.Render())
}
