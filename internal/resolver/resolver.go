// Package resolver expands a high-level lighting intent (light an
// apartment, a floor group, a batch, turn everything off or on) into the
// minimal ordered list of wire packets that accomplish it, joining the
// inventory tables and applying state-to-color rules, intensity scaling,
// and fade planning along the way. It has no knowledge of how those
// packets get to the device — it only enqueues them on an Enqueuer (such as
// *transport.Transport).
package resolver

import (
	"context"

	"github.com/kohnman/lightswarm/internal/apperr"
	"github.com/kohnman/lightswarm/internal/codec"
	"github.com/kohnman/lightswarm/internal/config"
	"github.com/kohnman/lightswarm/internal/inventory"
)

// Enqueuer is the narrow slice of transport.Transport the resolver needs.
// Kept as an interface so resolver tests can assert on exact packet bytes
// without a real Transport/Device underneath.
type Enqueuer interface {
	Enqueue(ctx context.Context, packet []byte) error
}

// Overrides customizes a single light intent; zero values mean "use the
// per-state default / the configured default".
type Overrides struct {
	Intensity *int
	FadeMs    *int
	RGB       *[3]int
}

// Resolver is the stateless (aside from the assumed-start-level fade
// behaviour) translator described above. It is safe for concurrent use;
// all mutation happens through the Store and the Enqueuer.
type Resolver struct {
	store  inventory.Store
	cfg    *config.Config
	cache  levelCache
}

// Option configures a Resolver at construction time.
type Option func(*Resolver)

// WithLevelCache turns on a best-known-last-level cache per fixture, so
// fades plan from the last value this resolver itself set instead of
// always assuming 0. Off by default: the documented behaviour assumes a
// start level of 0 for every fade, which is simpler and matches the
// original system's observed behaviour, at the cost of occasionally
// planning a fade that visually starts from wherever the fixture actually
// was left (e.g. by an external actor, or at power-up).
func WithLevelCache() Option {
	return func(r *Resolver) { r.cache = newMemLevelCache() }
}

// New returns a Resolver joining store and reading fallback defaults (for
// omitted intensity/fade_ms) from cfg.
func New(store inventory.Store, cfg *config.Config, opts ...Option) *Resolver {
	r := &Resolver{store: store, cfg: cfg, cache: noLevelCache{}}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// LightApartment resolves and enqueues the packets to light a single
// apartment in the given state, per the "Light apartment" intent.
func (r *Resolver) LightApartment(ctx context.Context, tx Enqueuer, entityID string, state inventory.State, ov Overrides) error {
	apt, err := r.store.Apartment(entityID)
	if err != nil {
		return err
	}
	return r.lightApartment(ctx, tx, apt, state, ov)
}

// LightFloorGroup expands to every apartment in groupID and lights each
// in turn; one apartment failing does not abort the rest, mirroring the
// batch intent's tolerance (it is simply applying the same rule
// per-apartment rather than emitting a single broadcast, so that
// per-fixture addressing remains authoritative).
func (r *Resolver) LightFloorGroup(ctx context.Context, tx Enqueuer, groupID string, state inventory.State, ov Overrides) []error {
	apts, err := r.store.ApartmentsInFloorGroup(groupID)
	if err != nil {
		return []error{err}
	}
	var errs []error
	for _, apt := range apts {
		if err := r.lightApartment(ctx, tx, apt, state, ov); err != nil {
			errs = append(errs, err)
		}
	}
	return errs
}

// BatchItem is one entry of a Batch call.
type BatchItem struct {
	EntityID  string
	State     inventory.State
	Overrides Overrides
}

// BatchResult pairs an item with its outcome.
type BatchResult struct {
	EntityID string
	Err      error
}

// Batch lights each item independently; a failing item is recorded in the
// result slice and does not prevent the remaining items from running.
func (r *Resolver) Batch(ctx context.Context, tx Enqueuer, items []BatchItem) []BatchResult {
	results := make([]BatchResult, 0, len(items))
	for _, item := range items {
		err := r.LightApartment(ctx, tx, item.EntityID, item.State, item.Overrides)
		results = append(results, BatchResult{EntityID: item.EntityID, Err: err})
	}
	return results
}

// TurnOffApartment fades every fixture of entityID to level 0.
func (r *Resolver) TurnOffApartment(ctx context.Context, tx Enqueuer, entityID string) error {
	apt, err := r.store.Apartment(entityID)
	if err != nil {
		return err
	}
	addrs := apt.Addresses()
	if len(addrs) == 0 {
		return apperr.New(apperr.NoAddresses, "apartment %q has no fixtures", entityID)
	}
	fadeMs := r.cfg.DefaultFadeTimeMs()
	for _, addr := range addrs {
		start := r.cache.get(addr)
		interval, step := codec.PlanFade(start, 0, fadeMs)
		if err := tx.Enqueue(ctx, codec.Fade(addr, 0, interval, step)); err != nil {
			return err
		}
		r.cache.set(addr, 0)
	}
	return r.store.SetApartmentState(entityID, inventory.StateOff)
}

// TurnOffAll enqueues a single broadcast OFF.
func (r *Resolver) TurnOffAll(ctx context.Context, tx Enqueuer) error {
	return tx.Enqueue(ctx, codec.Off(codec.Broadcast))
}

// TurnOnAll enqueues a single broadcast LEVEL at the requested intensity,
// or the configured default when intensity is nil.
func (r *Resolver) TurnOnAll(ctx context.Context, tx Enqueuer, intensity *int) error {
	level := r.cfg.DefaultIntensity()
	if intensity != nil {
		level = *intensity
	}
	return tx.Enqueue(ctx, codec.Level(codec.Broadcast, level))
}

func (r *Resolver) lightApartment(ctx context.Context, tx Enqueuer, apt inventory.Apartment, state inventory.State, ov Overrides) error {
	if !state.Valid() {
		return apperr.New(apperr.BadState, "unrecognized state %q", state)
	}
	addrs := apt.Addresses()
	if len(addrs) == 0 {
		return apperr.New(apperr.NoAddresses, "apartment %q has no fixtures", apt.ID)
	}

	color, err := r.store.ColorForState(state)
	if err != nil {
		return err
	}

	intensity := color.Intensity
	if ov.Intensity != nil {
		intensity = *ov.Intensity
	}
	red, green, blue := color.R, color.G, color.B
	if ov.RGB != nil {
		red, green, blue = ov.RGB[0], ov.RGB[1], ov.RGB[2]
	}
	red = scaleChannel(red, intensity)
	green = scaleChannel(green, intensity)
	blue = scaleChannel(blue, intensity)

	fadeMs := r.cfg.DefaultFadeTimeMs()
	if ov.FadeMs != nil {
		fadeMs = *ov.FadeMs
	}

	for _, addr := range addrs {
		var packet []byte
		if fadeMs > 0 {
			sr, sg, sb := r.cache.getRGB(addr)
			rf, gf, bf := codec.PlanRGBFade(sr, sg, sb, red, green, blue, fadeMs)
			packet = codec.RGBFade(addr, rf, gf, bf)
		} else {
			packet = codec.RGBLevel(addr, red, green, blue)
		}
		if err := tx.Enqueue(ctx, packet); err != nil {
			return err
		}
		r.cache.setRGB(addr, red, green, blue)
	}
	return r.store.SetApartmentState(apt.ID, state)
}

// scaleChannel applies ⌊channel·intensity/255⌋, per the resolver's
// intensity-scaling rule.
func scaleChannel(channel, intensity int) int {
	return (channel * intensity) / 255
}
