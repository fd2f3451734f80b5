// Package simulator maintains an in-memory fixture table mirroring every
// frame actually emitted on the transport, for testing and for any
// external dashboard that wants live state without touching the bus.
// It is registered as a transport.Observer, so it sees exactly what was
// written, in write order, regardless of whether the underlying device
// was real or simulated.
package simulator

import (
	"sort"
	"sync"
	"time"

	"github.com/kohnman/lightswarm/internal/codec"
)

// FixtureState is one fixture's last known on-device state, as inferred
// from decoded frames. Fade commands are not simulated step by step; only
// the final target value is reflected (matching the lenient, best-effort
// nature of a bus observer that never sees a real device ack).
type FixtureState struct {
	Address     codec.Address
	On          bool
	Level       int
	R, G, B     int
	LastUpdated time.Time
}

// Simulator is safe for concurrent use: ObserveFrame is called from the
// transport's single writer goroutine, while queries happen from anything
// else.
type Simulator struct {
	mu        sync.RWMutex
	fixtures  map[codec.Address]FixtureState
	broadcast []codec.Address // every address ever addressed directly, for Broadcast expansion
	now       func() time.Time
}

// New returns an empty Simulator.
func New() *Simulator {
	return &Simulator{
		fixtures: make(map[codec.Address]FixtureState),
		now:      time.Now,
	}
}

// ObserveFrame implements transport.Observer: frame is a complete wire
// packet, delimiters and all, exactly as handed to Device.Write. Decode
// failures (malformed frames that somehow reached the wire) are ignored
// rather than panicking or propagating an error the caller has no use for.
func (s *Simulator) ObserveFrame(frame []byte, _ bool) {
	dec, err := codec.DecodeLenient(frame)
	if err != nil {
		return
	}
	s.apply(dec)
}

// ApplyUnstuffed updates state from an already-unstuffed frame (checksum
// still the trailing byte), the shape codec.Decoder.Feed produces for a
// streaming reader that never sees delimiters directly.
func (s *Simulator) ApplyUnstuffed(unstuffed []byte) {
	dec, err := codec.DecodeLenientUnstuffed(unstuffed)
	if err != nil {
		return
	}
	s.apply(dec)
}

func (s *Simulator) apply(dec codec.Decoded) {
	if dec.Address == codec.Broadcast {
		s.mu.RLock()
		targets := make([]codec.Address, len(s.broadcast))
		copy(targets, s.broadcast)
		s.mu.RUnlock()
		for _, addr := range targets {
			s.applyOne(addr, dec)
		}
		return
	}
	s.applyOne(dec.Address, dec)
}

func (s *Simulator) applyOne(addr codec.Address, dec codec.Decoded) {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, known := s.fixtures[addr]
	if !known {
		s.broadcast = append(s.broadcast, addr)
	}
	state.Address = addr
	state.LastUpdated = s.now()

	switch dec.Opcode {
	case codec.OpOn:
		state.On = true
		state.R, state.G, state.B, state.Level = 255, 255, 255, 255
	case codec.OpOff:
		state.On = false
		state.R, state.G, state.B, state.Level = 0, 0, 0, 0
	case codec.OpLevel:
		if len(dec.Payload) >= 1 {
			l := int(dec.Payload[0])
			state.Level = l
			state.R, state.G, state.B = l, l, l
			state.On = l > 0
		}
	case codec.OpFade:
		if len(dec.Payload) >= 1 {
			l := int(dec.Payload[0])
			state.Level = l
			state.R, state.G, state.B = l, l, l
			state.On = l > 0
		}
	case codec.OpRGBLevel:
		if len(dec.Payload) >= 3 {
			state.R, state.G, state.B = int(dec.Payload[0]), int(dec.Payload[1]), int(dec.Payload[2])
			state.Level = maxOf(state.R, state.G, state.B)
			state.On = state.R > 0 || state.G > 0 || state.B > 0
		}
	case codec.OpRGBFade:
		if len(dec.Payload) >= 9 {
			state.R = int(dec.Payload[0])
			state.G = int(dec.Payload[3])
			state.B = int(dec.Payload[6])
			state.Level = maxOf(state.R, state.G, state.B)
			state.On = state.R > 0 || state.G > 0 || state.B > 0
		}
	case codec.OpFlash:
		// Flash targets a transient effect with no stable resting value
		// worth mirroring; leave the last known steady state untouched.
	case codec.OpPaddSet, codec.OpPaddErase:
		// Pseudo-address assignment doesn't change visible state.
	}

	s.fixtures[addr] = state
}

func maxOf(vals ...int) int {
	m := vals[0]
	for _, v := range vals[1:] {
		if v > m {
			m = v
		}
	}
	return m
}

// Fixture returns the current state of a single address, and whether
// anything has ever addressed it.
func (s *Simulator) Fixture(addr codec.Address) (FixtureState, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st, ok := s.fixtures[addr]
	return st, ok
}

// All returns every known fixture's state, ordered by address.
func (s *Simulator) All() []FixtureState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]FixtureState, 0, len(s.fixtures))
	for _, st := range s.fixtures {
		out = append(out, st)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Address < out[j].Address })
	return out
}

// Filter returns every known fixture's state for which keep returns true,
// e.g. to restrict to the addresses of one floor via an inventory join.
func (s *Simulator) Filter(keep func(codec.Address) bool) []FixtureState {
	all := s.All()
	out := all[:0:0]
	for _, st := range all {
		if keep(st.Address) {
			out = append(out, st)
		}
	}
	return out
}

// Reset clears every fixture's state atomically.
func (s *Simulator) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fixtures = make(map[codec.Address]FixtureState)
	s.broadcast = nil
}
