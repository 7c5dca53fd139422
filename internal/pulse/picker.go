package pulse

import "github.com/lucasb-eyer/go-colorful"

var fallbackColors = []colorful.Color{
	{R: 1, G: 1, B: 1},
	{R: 1, G: 1, B: 0},
	{R: 1, G: 0, B: 0},
}

// Picker maps a signal level onto a palette. Color i owns the key
// (i+1)*100/n; a level selects the closest key below it and the color is
// brightened (or darkened) by the remaining distance.
type Picker struct {
	keys   []float64
	colors []colorful.Color
}

// NewPicker returns a picker over colors, or over white, yellow and red
// when none are given.
func NewPicker(colors ...colorful.Color) *Picker {
	if len(colors) == 0 {
		colors = fallbackColors
	}

	p := &Picker{
		keys:   make([]float64, len(colors)),
		colors: make([]colorful.Color, len(colors)),
	}
	step := 100 / float64(len(colors))
	for i, c := range colors {
		p.keys[i] = float64(i+1) * step
		p.colors[i] = c
	}
	return p
}

// Len returns the number of palette colors.
func (p *Picker) Len() int {
	return len(p.colors)
}

// Pick selects a color for a level in [0,1].
func (p *Picker) Pick(level float64) colorful.Color {
	return p.at(level * 100)
}

// PickAdaptive selects a color for current relative to the recent average
// peak, so quiet material still spans the palette. A non-positive average
// falls back to Pick.
func (p *Picker) PickAdaptive(current, averagePeak float64) colorful.Color {
	if averagePeak <= 0 {
		return p.Pick(current)
	}
	return p.at(current * 100 / averagePeak)
}

func (p *Picker) at(percent float64) colorful.Color {
	idx := 0
	diff := percent - p.keys[0]
	for i, k := range p.keys {
		if d := percent - k; d > 0 && d < diff {
			idx, diff = i, d
		}
	}
	return adjust(p.colors[idx], diff)
}

// adjust scales every channel by 1+diff/100 and clamps the result.
func adjust(c colorful.Color, diff float64) colorful.Color {
	f := 1 + diff/100
	return colorful.Color{R: c.R * f, G: c.G * f, B: c.B * f}.Clamped()
}
