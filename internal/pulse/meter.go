package pulse

import (
	"math"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
)

// Reading is the signal level measured over one window.
type Reading struct {
	// Peak is the largest absolute sample in the window.
	Peak float64

	// AveragePeak averages Peak over the recent history, this window included.
	AveragePeak float64

	// Mean is the mean absolute sample value in the window.
	Mean float64
}

// Meter measures the amplitude of a beep stream window by window.
// A Meter is not safe for concurrent use.
type Meter struct {
	buf    [][2]float64
	peaks  []float64
	next   int
	filled int
}

// NewMeter returns a meter reading window frames at a time and averaging
// peaks over the last history readings.
func NewMeter(window, history int) *Meter {
	return &Meter{
		buf:   make([][2]float64, max(window, 1)),
		peaks: make([]float64, max(history, 1)),
	}
}

// Read pulls one window from s. A short final window is measured as is.
// It reports false once s is drained and no frames were read.
func (m *Meter) Read(s beep.Streamer) (Reading, bool) {
	n := 0
	for n < len(m.buf) {
		k, ok := s.Stream(m.buf[n:])
		n += k
		if !ok || k == 0 {
			break
		}
	}
	if n == 0 {
		return Reading{}, false
	}

	var peak, sum float64
	for _, frame := range m.buf[:n] {
		l, r := math.Abs(frame[0]), math.Abs(frame[1])
		peak = max(peak, l, r)
		sum += (l + r) / 2
	}

	m.peaks[m.next] = peak
	m.next = (m.next + 1) % len(m.peaks)
	m.filled = min(m.filled+1, len(m.peaks))

	var total float64
	for _, p := range m.peaks[:m.filled] {
		total += p
	}

	return Reading{
		Peak:        peak,
		AveragePeak: total / float64(m.filled),
		Mean:        sum / float64(n),
	}, true
}

// Reset forgets the peak history.
func (m *Meter) Reset() {
	m.next = 0
	m.filled = 0
}

// WAVGain is the factor that restores full scale to samples from wav.Decode
// at the given precision. The decoder divides 16 and 24 bit samples by
// 2^bits-1 instead of 2^(bits-1), so they come back at half amplitude.
func WAVGain(precision int) float64 {
	switch precision {
	case 2, 3:
		return 2
	default:
		return 1
	}
}

// Calibrate wraps a decoded WAV stream so its samples are in [-1, 1].
func Calibrate(s beep.Streamer, format beep.Format) beep.Streamer {
	gain := WAVGain(format.Precision)
	if gain == 1 {
		return s
	}
	return &effects.Gain{Streamer: s, Gain: gain - 1}
}
