// Package inventory holds the read-mostly tables the core joins against:
// fixtures, apartments, floor groups, state→color defaults, and the
// configuration key table. The core only ever sees the narrow Store
// interface in store.go; how the tables are populated (a YAML seed file,
// a database, an admin API) is an external collaborator's concern.
package inventory

import "github.com/kohnman/lightswarm/internal/codec"

// State is one of the closed set of lighting states a unit can be in.
type State string

// The authoritative, closed set of states. Unknown states are rejected:
// State.Valid reports them, and the resolver and MemStore refuse them with
// apperr.BadState.
const (
	StateAvailable  State = "AVAILABLE"
	StateSold       State = "SOLD"
	StateReserved   State = "RESERVED"
	StateUnavailable State = "UNAVAILABLE"
	StateSelected   State = "SELECTED"
	StateOff        State = "OFF"
)

// States lists every recognized state, in a stable order, for validation
// and enumeration.
var States = []State{
	StateAvailable, StateSold, StateReserved, StateUnavailable, StateSelected, StateOff,
}

// Valid reports whether s is one of the closed set of recognized states.
func (s State) Valid() bool {
	for _, v := range States {
		if v == s {
			return true
		}
	}
	return false
}

// Color is a default (r, g, b, intensity) tuple for a state, plus a human
// description. Configuration may tweak the tuple; the tag set itself is
// fixed at compile time.
type Color struct {
	R, G, B   int
	Intensity int
	Description string
}

// DefaultColors is the built-in state→color table. Administrative
// operations may override entries; the core only ever reads through
// Store.ColorForState.
var DefaultColors = map[State]Color{
	StateAvailable:   {R: 0, G: 255, B: 0, Intensity: 255, Description: "available for sale"},
	StateSold:        {R: 255, G: 0, B: 0, Intensity: 255, Description: "sold"},
	StateReserved:    {R: 255, G: 165, B: 0, Intensity: 255, Description: "reserved, pending sale"},
	StateUnavailable: {R: 64, G: 64, B: 64, Intensity: 128, Description: "not on the market"},
	StateSelected:    {R: 0, G: 128, B: 255, Intensity: 255, Description: "highlighted by current viewer"},
	StateOff:         {R: 0, G: 0, B: 0, Intensity: 0, Description: "lights off"},
}

// FixtureAddress is a single addressable fixture, ordered within its
// apartment by LightIndex starting at 1.
type FixtureAddress struct {
	Address    codec.Address
	LightIndex int
}

// Apartment is a sellable unit: a stable identifier, its place in the
// building, and the ordered fixture addresses that light it.
type Apartment struct {
	ID            string
	FloorNumber   int
	FloorGroupID  string
	UnitPosition  string
	Fixtures      []FixtureAddress // ordered by LightIndex, contiguous from 1
	CurrentState  State
}

// PrimaryAddress returns the lowest-indexed fixture address, or false if
// the apartment has no fixtures associated (an addressable-but-unlightable
// apartment, per §3).
func (a Apartment) PrimaryAddress() (codec.Address, bool) {
	if len(a.Fixtures) == 0 {
		return 0, false
	}
	best := a.Fixtures[0]
	for _, f := range a.Fixtures[1:] {
		if f.LightIndex < best.LightIndex {
			best = f
		}
	}
	return best.Address, true
}

// Addresses returns the apartment's fixture addresses ordered by light
// index.
func (a Apartment) Addresses() []codec.Address {
	ordered := make([]FixtureAddress, len(a.Fixtures))
	copy(ordered, a.Fixtures)
	for i := 1; i < len(ordered); i++ {
		for j := i; j > 0 && ordered[j].LightIndex < ordered[j-1].LightIndex; j-- {
			ordered[j], ordered[j-1] = ordered[j-1], ordered[j]
		}
	}
	out := make([]codec.Address, len(ordered))
	for i, f := range ordered {
		out[i] = f.Address
	}
	return out
}

// FloorGroup aggregates the apartments sharing a floor of a tower.
type FloorGroup struct {
	ID          string
	TowerID     string
	FloorNumber int
}
