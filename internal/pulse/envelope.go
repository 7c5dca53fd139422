package pulse

import "math"

// KickStep is the level one key press adds.
const KickStep = 0.35

// A releasing level below silence snaps to zero.
const silence = 0.01

// DecaySpeed names a release curve.
type DecaySpeed string

const (
	DecayFast    DecaySpeed = "fast"
	DecayMedium  DecaySpeed = "medium"
	DecaySlow    DecaySpeed = "slow"
	DefaultDecay DecaySpeed = DecayMedium
)

// Release is how an envelope falls back after a kick: the level is held
// for Hold ticks, then halves every HalfLife ticks.
type Release struct {
	Hold     int
	HalfLife float64
}

// perTick is the factor applied to the level on each releasing tick.
func (r Release) perTick() float64 {
	return math.Exp2(-1 / r.HalfLife)
}

var releases = map[DecaySpeed]Release{
	DecayFast:   {Hold: 2, HalfLife: 3},
	DecayMedium: {Hold: 4, HalfLife: 6},
	DecaySlow:   {Hold: 8, HalfLife: 12},
}

// ReleaseFor returns the release curve of speed.
func ReleaseFor(speed DecaySpeed) (Release, bool) {
	r, ok := releases[speed]
	return r, ok
}

func ParseDecaySpeed(s string) (DecaySpeed, bool) {
	_, ok := releases[DecaySpeed(s)]
	return DecaySpeed(s), ok
}

// Envelope turns discrete kicks (key presses) into a level in [0, 1] that
// a Picker can map onto a palette. An Envelope is not safe for concurrent use.
type Envelope struct {
	release Release
	level   float64
	hold    int
}

// NewEnvelope returns a silent envelope releasing at speed. Unknown speeds
// use DefaultDecay.
func NewEnvelope(speed DecaySpeed) *Envelope {
	r, ok := releases[speed]
	if !ok {
		r = releases[DefaultDecay]
	}
	return &Envelope{release: r}
}

// Kick raises the level by KickStep, up to 1, and restarts the hold.
func (e *Envelope) Kick() {
	e.level = min(e.level+KickStep, 1)
	e.hold = e.release.Hold
}

// Tick advances one frame.
func (e *Envelope) Tick() {
	if e.hold > 0 {
		e.hold--
		return
	}
	e.level *= e.release.perTick()
	if e.level < silence {
		e.level = 0
	}
}

func (e *Envelope) Level() float64 {
	return e.level
}

// Reset silences the envelope.
func (e *Envelope) Reset() {
	e.level = 0
	e.hold = 0
}
