package animation

import (
	"time"

	"github.com/kohnman/lightswarm/internal/codec"
)

// Kind is one of the closed set of sequence programs the engine can run.
type Kind string

const (
	KindStatic  Kind = "static"
	KindLoop    Kind = "loop"
	KindWave    Kind = "wave"
	KindChase   Kind = "chase"
	KindBreathe Kind = "breathe"
)

// Frame is one fixture's target color within a Static or Loop step.
type Frame struct {
	Address codec.Address
	R, G, B int
}

// Sequence describes one named animation program. Only the fields
// relevant to Kind are read; everything else is left zero.
type Sequence struct {
	ID   string
	Kind Kind

	// Static holds exactly one entry in Steps and never advances.
	// Loop advances through every entry, wrapping to 0 indefinitely,
	// holding StepInterval between advances.
	Steps        [][]Frame
	StepInterval time.Duration

	// Wave: fade each floor up to WaveColor over WaveFadeMs, waiting
	// InterFloorDelay between floors, in floor order (ascending when
	// WaveUp, descending otherwise); hold for HoldDuration; fade back to
	// 0 in the reverse floor order; pause; repeat if WaveLoop.
	WaveUp          bool
	WaveColor       [3]int
	WaveFadeMs      int
	InterFloorDelay time.Duration
	HoldDuration    time.Duration
	WaveLoop        bool

	// Chase: a head position advances by one fixture every ChaseTick
	// across the flat fixture order; fixtures within TailLength of the
	// head decay linearly to 0, fixtures further away are dark.
	TailLength int
	ChaseTick  time.Duration
	ChaseColor [3]int

	// Breathe: ramp a single global intensity between MinIntensity and
	// MaxIntensity, BreatheDuration/2 in each direction, re-emitting
	// BreatheColor at that intensity on BreatheTick (~20Hz, i.e. 50ms).
	BreatheDuration time.Duration
	MinIntensity    int
	MaxIntensity    int
	BreatheColor    [3]int
	BreatheTick     time.Duration
}
