// Package session implements the two-state {idle, active} controller of
// login/logout: login cancels any running animation and fades every
// fixture to 0, floor by floor from the highest populated floor to the
// lowest; logout resumes the configured ambient animation if enabled.
// Session is the only component allowed to start or stop the animation
// engine during normal operation.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/kohnman/lightswarm/internal/animation"
	"github.com/kohnman/lightswarm/internal/apperr"
	"github.com/kohnman/lightswarm/internal/codec"
	"github.com/kohnman/lightswarm/internal/config"
	"github.com/kohnman/lightswarm/internal/inventory"
	"github.com/kohnman/lightswarm/internal/obslog"
)

// State is one of the two recognized session states.
type State int

const (
	StateIdle State = iota
	StateActive
)

func (s State) String() string {
	if s == StateActive {
		return "active"
	}
	return "idle"
}

// Controller drives the idle/active state machine. The assumed starting
// level for the login fade-down is full brightness (255): login is only
// meaningful after a unit has actually been lit, so starting the plan
// from "fully on" gives a fade whose duration matches what was requested,
// same tradeoff the resolver accepts by assuming 0 for its own fades.
const loginFadeStartLevel = 255

type Controller struct {
	store     inventory.Store
	cfg       *config.Config
	engine    *animation.Engine
	sequences map[string]animation.Sequence
	log       *obslog.Log

	mu    sync.Mutex
	state State
}

// New returns a Controller starting in StateIdle. sequences maps a
// sequence ID (as named by config.KeyAmbientSequenceID) to its
// definition.
func New(store inventory.Store, cfg *config.Config, engine *animation.Engine, sequences map[string]animation.Sequence, log *obslog.Log) *Controller {
	return &Controller{store: store, cfg: cfg, engine: engine, sequences: sequences, log: log}
}

// State reports whether a session is currently active.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Login transitions idle->active: cancels any running animation, then
// emits a fade-down from the highest floor to the lowest, waiting
// config's login_fade_delay_ms between floors. It returns once every
// fixture's fade packet has been enqueued (not once the physical fade
// has visually finished — the transport guarantees the packets
// themselves are written in order; the device takes it from there).
func (c *Controller) Login(ctx context.Context, tx animation.Enqueuer) error {
	c.mu.Lock()
	c.state = StateActive
	c.mu.Unlock()

	c.engine.Stop()

	apartments, err := c.store.AllApartmentsOrderedByFloor() // descending by floor
	if err != nil {
		return err
	}
	delay := time.Duration(c.cfg.LoginFadeDelayMs()) * time.Millisecond
	fadeMs := c.cfg.DefaultFadeTimeMs()

	lastFloor := 0
	first := true
	for _, apt := range apartments {
		if !first && apt.FloorNumber != lastFloor {
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		lastFloor = apt.FloorNumber
		first = false

		for _, addr := range apt.Addresses() {
			interval, step := codec.PlanFade(loginFadeStartLevel, 0, fadeMs)
			if err := tx.Enqueue(ctx, codec.Fade(addr, 0, interval, step)); err != nil {
				if c.log != nil {
					c.log.Warn("session: login fade-down enqueue failed", "apartment", apt.ID, "err", err)
				}
				return err
			}
		}
	}
	return nil
}

// Logout transitions active->idle. If ambient animation is enabled by
// configuration, it starts the configured sequence; otherwise the engine
// stays stopped.
func (c *Controller) Logout(ctx context.Context, tx animation.Enqueuer) error {
	c.mu.Lock()
	c.state = StateIdle
	c.mu.Unlock()

	if !c.cfg.AmbientEnabled() {
		return nil
	}
	id := c.cfg.AmbientSequenceID()
	seq, ok := c.sequences[id]
	if !ok {
		return apperr.New(apperr.NotFound, "ambient sequence %q not configured", id)
	}
	c.engine.Start(ctx, tx, seq)
	return nil
}

// StartAnimation starts seq if the session is idle; while active it is a
// no-op (per the engine/session mutual-exclusion rule), reporting false.
func (c *Controller) StartAnimation(ctx context.Context, tx animation.Enqueuer, seq animation.Sequence) bool {
	c.mu.Lock()
	active := c.state == StateActive
	c.mu.Unlock()
	if active {
		return false
	}
	c.engine.Start(ctx, tx, seq)
	return true
}
