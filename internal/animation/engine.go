// Package animation implements the cooperative animation scheduler: a
// loop that is either stopped or running exactly one named sequence
// (static, loop, wave, chase, breathe), cancellable at well-defined
// suspension points and mutually exclusive with an active session.
package animation

import (
	"context"
	"sync"
	"time"

	"github.com/kohnman/lightswarm/internal/codec"
	"github.com/kohnman/lightswarm/internal/inventory"
	"github.com/kohnman/lightswarm/internal/obslog"
)

// Enqueuer is the narrow transport surface the engine writes through.
type Enqueuer interface {
	Enqueue(ctx context.Context, packet []byte) error
}

// Engine runs at most one Sequence at a time. Start replaces whatever is
// currently running; Stop cancels it and waits for the loop to actually
// exit, honoring the "no partial frames" guarantee (the loop only checks
// its running flag between enqueues, never mid-enqueue).
type Engine struct {
	store inventory.Store
	log   *obslog.Log

	mu      sync.Mutex
	running bool
	current string
	cancel  context.CancelFunc
	done    chan struct{}
}

// New returns a stopped Engine joining store for the floor/fixture
// ordering Wave and Chase need.
func New(store inventory.Store, log *obslog.Log) *Engine {
	return &Engine{store: store, log: log}
}

// Running reports whether a sequence is currently executing.
func (e *Engine) Running() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.running
}

// CurrentID returns the ID of the running sequence, or "" if stopped.
func (e *Engine) CurrentID() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.current
}

// Stop cancels any running sequence and blocks until its goroutine has
// observed the cancellation and exited.
func (e *Engine) Stop() {
	e.mu.Lock()
	if !e.running {
		e.mu.Unlock()
		return
	}
	cancel := e.cancel
	done := e.done
	e.mu.Unlock()

	cancel()
	<-done
}

// Start stops whatever is currently running, then begins seq on its own
// goroutine against tx. It returns once the new sequence has been
// registered as running, without waiting for it to finish (Loop/Wave with
// WaveLoop/Breathe run indefinitely until Stop or ctx cancellation).
func (e *Engine) Start(ctx context.Context, tx Enqueuer, seq Sequence) {
	runCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})

	// Stop again if a concurrent Start registered its sequence in between,
	// so at most one goroutine is ever registered as running.
	e.mu.Lock()
	for e.running {
		e.mu.Unlock()
		e.Stop()
		e.mu.Lock()
	}
	e.running = true
	e.current = seq.ID
	e.cancel = cancel
	e.done = done
	e.mu.Unlock()

	go func() {
		defer close(done)
		defer func() {
			e.mu.Lock()
			e.running = false
			e.current = ""
			e.mu.Unlock()
		}()
		e.run(runCtx, tx, seq)
	}()
}

func (e *Engine) alive(ctx context.Context) bool {
	select {
	case <-ctx.Done():
		return false
	default:
		return true
	}
}

func (e *Engine) run(ctx context.Context, tx Enqueuer, seq Sequence) {
	switch seq.Kind {
	case KindStatic:
		e.runStatic(ctx, tx, seq)
	case KindLoop:
		e.runLoop(ctx, tx, seq)
	case KindWave:
		e.runWave(ctx, tx, seq)
	case KindChase:
		e.runChase(ctx, tx, seq)
	case KindBreathe:
		e.runBreathe(ctx, tx, seq)
	default:
		if e.log != nil {
			e.log.Warn("animation: unrecognized sequence kind", "id", seq.ID, "kind", seq.Kind)
		}
	}
}

func (e *Engine) emitStep(ctx context.Context, tx Enqueuer, step []Frame) bool {
	for _, f := range step {
		if !e.alive(ctx) {
			return false
		}
		if err := tx.Enqueue(ctx, codec.RGBLevel(f.Address, f.R, f.G, f.B)); err != nil {
			if e.log != nil {
				e.log.Warn("animation: enqueue failed", "err", err)
			}
			return e.alive(ctx)
		}
	}
	return e.alive(ctx)
}

// runStatic emits the single configured step once and then holds: the
// goroutine parks until cancelled, emitting nothing further.
func (e *Engine) runStatic(ctx context.Context, tx Enqueuer, seq Sequence) {
	if len(seq.Steps) == 0 {
		return
	}
	if !e.emitStep(ctx, tx, seq.Steps[0]) {
		return
	}
	<-ctx.Done()
}

// runLoop cycles through every step, waiting StepInterval between
// advances, wrapping to 0 indefinitely until cancelled.
func (e *Engine) runLoop(ctx context.Context, tx Enqueuer, seq Sequence) {
	if len(seq.Steps) == 0 {
		return
	}
	idx := 0
	for {
		if !e.emitStep(ctx, tx, seq.Steps[idx]) {
			return
		}
		select {
		case <-time.After(seq.StepInterval):
		case <-ctx.Done():
			return
		}
		idx = (idx + 1) % len(seq.Steps)
	}
}

// runWave fades each floor up to WaveColor in floor order, holds, fades
// back down in reverse order, pauses, and repeats if WaveLoop.
func (e *Engine) runWave(ctx context.Context, tx Enqueuer, seq Sequence) {
	floors, byFloor, err := floorFixtures(e.store)
	if err != nil || len(floors) == 0 {
		return
	}
	order := floors
	if !seq.WaveUp {
		order = reversed(floors)
	}

	for {
		if !e.waveSweep(ctx, tx, seq, byFloor, order, true) {
			return
		}
		select {
		case <-time.After(seq.HoldDuration):
		case <-ctx.Done():
			return
		}
		if !e.waveSweep(ctx, tx, seq, byFloor, reversed(order), false) {
			return
		}
		if !seq.WaveLoop {
			return
		}
		select {
		case <-time.After(seq.InterFloorDelay):
		case <-ctx.Done():
			return
		}
	}
}

func (e *Engine) waveSweep(ctx context.Context, tx Enqueuer, seq Sequence, byFloor map[int][]codec.Address, order []int, toColor bool) bool {
	r, g, b := seq.WaveColor[0], seq.WaveColor[1], seq.WaveColor[2]
	sr, sg, sb := 0, 0, 0
	if !toColor {
		sr, sg, sb, r, g, b = r, g, b, 0, 0, 0
	}
	fr, fg, fb := codec.PlanRGBFade(sr, sg, sb, r, g, b, seq.WaveFadeMs)
	for i, floor := range order {
		if i > 0 {
			select {
			case <-time.After(seq.InterFloorDelay):
			case <-ctx.Done():
				return false
			}
		}
		for _, addr := range byFloor[floor] {
			if !e.alive(ctx) {
				return false
			}
			if err := tx.Enqueue(ctx, codec.RGBFade(addr, fr, fg, fb)); err != nil && e.log != nil {
				e.log.Warn("animation: enqueue failed", "err", err)
			}
		}
	}
	return true
}

func reversed(in []int) []int {
	out := make([]int, len(in))
	for i, v := range in {
		out[len(in)-1-i] = v
	}
	return out
}

// runChase advances a head position over the flat fixture list every
// ChaseTick, recomputing each fixture's brightness as a linear decay with
// distance from the head, 0 beyond TailLength.
func (e *Engine) runChase(ctx context.Context, tx Enqueuer, seq Sequence) {
	fixtures, err := flatFixtures(e.store)
	if err != nil || len(fixtures) == 0 || seq.TailLength <= 0 {
		return
	}
	head := 0
	for {
		var step []Frame
		for i, addr := range fixtures {
			dist := head - i
			if dist < 0 {
				dist += len(fixtures)
			}
			if dist >= seq.TailLength {
				step = append(step, Frame{Address: addr, R: 0, G: 0, B: 0})
				continue
			}
			scale := seq.TailLength - dist
			r := seq.ChaseColor[0] * scale / seq.TailLength
			g := seq.ChaseColor[1] * scale / seq.TailLength
			b := seq.ChaseColor[2] * scale / seq.TailLength
			step = append(step, Frame{Address: addr, R: r, G: g, B: b})
		}
		if !e.emitStep(ctx, tx, step) {
			return
		}
		select {
		case <-time.After(seq.ChaseTick):
		case <-ctx.Done():
			return
		}
		head = (head + 1) % len(fixtures)
	}
}

// runBreathe ramps a single global intensity linearly between
// MinIntensity and MaxIntensity over half of BreatheDuration in each
// direction, re-broadcasting BreatheColor scaled by that intensity on
// every tick.
func (e *Engine) runBreathe(ctx context.Context, tx Enqueuer, seq Sequence) {
	half := seq.BreatheDuration / 2
	if half <= 0 || seq.BreatheTick <= 0 {
		return
	}
	ticksPerHalf := int(half / seq.BreatheTick)
	if ticksPerHalf < 1 {
		ticksPerHalf = 1
	}
	span := seq.MaxIntensity - seq.MinIntensity

	up := true
	tick := 0
	for {
		frac := float64(tick) / float64(ticksPerHalf)
		if !up {
			frac = 1 - frac
		}
		intensity := seq.MinIntensity + int(float64(span)*frac)
		r := seq.BreatheColor[0] * intensity / 255
		g := seq.BreatheColor[1] * intensity / 255
		b := seq.BreatheColor[2] * intensity / 255

		if !e.alive(ctx) {
			return
		}
		if err := tx.Enqueue(ctx, codec.RGBLevel(codec.Broadcast, r, g, b)); err != nil {
			if e.log != nil {
				e.log.Warn("animation: enqueue failed", "err", err)
			}
		}

		select {
		case <-time.After(seq.BreatheTick):
		case <-ctx.Done():
			return
		}

		tick++
		if tick > ticksPerHalf {
			tick = 0
			up = !up
		}
	}
}
