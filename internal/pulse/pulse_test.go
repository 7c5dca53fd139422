package pulse

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/wav"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func assertColor(t *testing.T, want, got colorful.Color) {
	t.Helper()
	assert.InDelta(t, want.R, got.R, 1e-9, "red")
	assert.InDelta(t, want.G, got.G, 1e-9, "green")
	assert.InDelta(t, want.B, got.B, 1e-9, "blue")
}

func TestPicker_Pick(t *testing.T) {
	p := NewPicker()
	require.Equal(t, 3, p.Len())

	tests := []struct {
		name  string
		level float64
		want  colorful.Color
	}{
		{
			name:  "below the first key darkens the first color",
			level: 0.1,
			want:  colorful.Color{R: 1 - 70.0/300, G: 1 - 70.0/300, B: 1 - 70.0/300},
		},
		{
			name:  "between first and second key",
			level: 0.5,
			want:  colorful.Color{R: 1, G: 1, B: 1},
		},
		{
			name:  "between second and third key",
			level: 0.8,
			want:  colorful.Color{R: 1, G: 1, B: 0},
		},
		{
			name:  "past the last key",
			level: 1.2,
			want:  colorful.Color{R: 1, G: 0, B: 0},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assertColor(t, tt.want, p.Pick(tt.level))
		})
	}
}

func TestPicker_Brightens(t *testing.T) {
	p := NewPicker(
		colorful.Color{R: 0.2, G: 0.2, B: 0.2},
		colorful.Color{R: 0.4, G: 0.4, B: 0.4},
	)
	// keys 50 and 100; 75% sits 25 past the first key
	assertColor(t, colorful.Color{R: 0.25, G: 0.25, B: 0.25}, p.Pick(0.75))
	// 50% sits exactly on the first key
	assertColor(t, colorful.Color{R: 0.2, G: 0.2, B: 0.2}, p.Pick(0.5))
}

func TestPicker_PickAdaptive(t *testing.T) {
	p := NewPicker()

	assertColor(t, p.Pick(0.8), p.PickAdaptive(0.2, 0.25))
	assertColor(t, p.Pick(0.3), p.PickAdaptive(0.3, 0))
	assertColor(t, p.Pick(0.3), p.PickAdaptive(0.3, -1))
}

func constant(amp float64) beep.Streamer {
	return beep.StreamerFunc(func(samples [][2]float64) (int, bool) {
		for i := range samples {
			samples[i] = [2]float64{amp, -amp}
		}
		return len(samples), true
	})
}

func TestMeter_Read(t *testing.T) {
	m := NewMeter(100, 2)
	s := beep.Seq(
		beep.Take(100, constant(0.5)),
		beep.Take(100, constant(0.25)),
		beep.Take(100, constant(0.1)),
		beep.Take(40, constant(0.8)),
	)

	r, ok := m.Read(s)
	require.True(t, ok)
	assert.InDelta(t, 0.5, r.Peak, 1e-9)
	assert.InDelta(t, 0.5, r.AveragePeak, 1e-9)
	assert.InDelta(t, 0.5, r.Mean, 1e-9)

	r, ok = m.Read(s)
	require.True(t, ok)
	assert.InDelta(t, 0.25, r.Peak, 1e-9)
	assert.InDelta(t, 0.375, r.AveragePeak, 1e-9)

	r, ok = m.Read(s)
	require.True(t, ok)
	assert.InDelta(t, 0.1, r.Peak, 1e-9)
	assert.InDelta(t, 0.175, r.AveragePeak, 1e-9, "history holds two readings")

	r, ok = m.Read(s)
	require.True(t, ok, "short final window")
	assert.InDelta(t, 0.8, r.Peak, 1e-9)
	assert.InDelta(t, 0.8, r.Mean, 1e-9)

	_, ok = m.Read(s)
	assert.False(t, ok)
}

func TestMeter_Reset(t *testing.T) {
	m := NewMeter(10, 4)
	_, ok := m.Read(beep.Take(10, constant(1)))
	require.True(t, ok)

	m.Reset()
	r, ok := m.Read(beep.Take(10, constant(0.5)))
	require.True(t, ok)
	assert.InDelta(t, 0.5, r.AveragePeak, 1e-9)
}

func TestMeter_Silence(t *testing.T) {
	m := NewMeter(0, 0)
	r, ok := m.Read(beep.Silence(1))
	require.True(t, ok)
	assert.Equal(t, Reading{}, r)

	_, ok = m.Read(beep.Silence(0))
	assert.False(t, ok)
}

func TestWAVGain(t *testing.T) {
	assert.Equal(t, 1.0, WAVGain(1))
	assert.Equal(t, 2.0, WAVGain(2))
	assert.Equal(t, 2.0, WAVGain(3))
}

func TestCalibrate_WAVRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "level.wav")
	f, err := os.Create(path)
	require.NoError(t, err)
	format := beep.Format{SampleRate: 8000, NumChannels: 2, Precision: 2}
	require.NoError(t, wav.Encode(f, beep.Take(800, constant(0.5)), format))
	require.NoError(t, f.Close())

	f, err = os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	streamer, decoded, err := wav.Decode(f)
	require.NoError(t, err)
	defer streamer.Close()

	r, ok := NewMeter(800, 1).Read(Calibrate(streamer, decoded))
	require.True(t, ok)
	assert.InDelta(t, 0.5, r.Peak, 1e-3)
	assert.InDelta(t, 0.5, r.Mean, 1e-3)
}

func TestCalibrate_UnitGain(t *testing.T) {
	s := beep.Take(10, constant(0.3))
	assert.Same(t, s, Calibrate(s, beep.Format{Precision: 1}))
}

func TestEnvelope(t *testing.T) {
	e := NewEnvelope(DecayMedium)
	assert.Equal(t, 0.0, e.Level())

	e.Kick()
	assert.InDelta(t, KickStep, e.Level(), 1e-9)

	medium, _ := ReleaseFor(DecayMedium)
	for range medium.Hold {
		e.Tick()
	}
	assert.InDelta(t, KickStep, e.Level(), 1e-9, "held after a kick")

	for range 6 {
		e.Tick()
	}
	assert.InDelta(t, KickStep/2, e.Level(), 1e-9, "halved after one half-life")

	for range 100 {
		e.Tick()
	}
	assert.Equal(t, 0.0, e.Level())
}

func TestEnvelope_KickRestartsHold(t *testing.T) {
	e := NewEnvelope(DecayFast)
	e.Kick()
	e.Tick()
	e.Tick()
	e.Tick()
	released := e.Level()
	require.Less(t, released, KickStep)

	e.Kick()
	e.Tick()
	e.Tick()
	assert.InDelta(t, released+KickStep, e.Level(), 1e-9)
}

func TestEnvelope_Cap(t *testing.T) {
	e := NewEnvelope(DecaySlow)
	for range 10 {
		e.Kick()
	}
	assert.Equal(t, 1.0, e.Level())

	e.Reset()
	assert.Equal(t, 0.0, e.Level())
	e.Tick()
	assert.Equal(t, 0.0, e.Level())
}

func TestReleaseCurves(t *testing.T) {
	fast, ok := ReleaseFor(DecayFast)
	require.True(t, ok)
	slow, ok := ReleaseFor(DecaySlow)
	require.True(t, ok)
	assert.Less(t, fast.Hold, slow.Hold)
	assert.Less(t, fast.HalfLife, slow.HalfLife)

	_, ok = ReleaseFor("glacial")
	assert.False(t, ok)

	bogus := NewEnvelope("glacial")
	medium := NewEnvelope(DefaultDecay)
	assert.Equal(t, medium.release, bogus.release)

	speed, ok := ParseDecaySpeed("slow")
	assert.True(t, ok)
	assert.Equal(t, DecaySlow, speed)
	_, ok = ParseDecaySpeed("glacial")
	assert.False(t, ok)
}
