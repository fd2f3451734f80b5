package animation

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/kohnman/lightswarm/internal/codec"
	"github.com/kohnman/lightswarm/internal/inventory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingEnqueuer struct {
	mu      sync.Mutex
	packets [][]byte
}

func (r *recordingEnqueuer) Enqueue(_ context.Context, packet []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.packets = append(r.packets, packet)
	return nil
}

func (r *recordingEnqueuer) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.packets)
}

func seedStore() *inventory.MemStore {
	s := inventory.NewMemStore()
	s.PutFloorGroup(inventory.FloorGroup{ID: "g9", FloorNumber: 9})
	s.PutFloorGroup(inventory.FloorGroup{ID: "g10", FloorNumber: 10})
	s.PutApartment(inventory.Apartment{
		ID: "a-901", FloorNumber: 9, FloorGroupID: "g9",
		Fixtures: []inventory.FixtureAddress{{Address: 1, LightIndex: 1}},
	})
	s.PutApartment(inventory.Apartment{
		ID: "a-1001", FloorNumber: 10, FloorGroupID: "g10",
		Fixtures: []inventory.FixtureAddress{{Address: 2, LightIndex: 1}},
	})
	return s
}

func TestStaticEmitsOnceThenHolds(t *testing.T) {
	e := New(seedStore(), nil)
	tx := &recordingEnqueuer{}
	ctx, cancel := context.WithCancel(context.Background())

	e.Start(ctx, tx, Sequence{
		ID:   "static-1",
		Kind: KindStatic,
		Steps: [][]Frame{
			{{Address: 1, R: 255, G: 0, B: 0}},
		},
	})

	require.Eventually(t, func() bool { return tx.count() == 1 }, time.Second, time.Millisecond)
	time.Sleep(10 * time.Millisecond)
	assert.Equal(t, 1, tx.count())

	cancel()
	e.Stop()
}

func TestLoopWrapsIndefinitely(t *testing.T) {
	e := New(seedStore(), nil)
	tx := &recordingEnqueuer{}

	e.Start(context.Background(), tx, Sequence{
		ID:   "loop-1",
		Kind: KindLoop,
		Steps: [][]Frame{
			{{Address: 1, R: 255, G: 0, B: 0}},
			{{Address: 1, R: 0, G: 255, B: 0}},
		},
		StepInterval: time.Millisecond,
	})

	require.Eventually(t, func() bool { return tx.count() >= 6 }, time.Second, time.Millisecond)
	e.Stop()
	assert.False(t, e.Running())
}

func TestStopCancelsRunningSequence(t *testing.T) {
	e := New(seedStore(), nil)
	tx := &recordingEnqueuer{}

	e.Start(context.Background(), tx, Sequence{
		ID:   "loop-1",
		Kind: KindLoop,
		Steps: [][]Frame{
			{{Address: 1, R: 1, G: 1, B: 1}},
		},
		StepInterval: time.Millisecond,
	})
	require.Eventually(t, func() bool { return e.Running() }, time.Second, time.Millisecond)

	e.Stop()
	assert.False(t, e.Running())
	assert.Equal(t, "", e.CurrentID())

	n := tx.count()
	time.Sleep(10 * time.Millisecond)
	assert.Equal(t, n, tx.count(), "no further frames after Stop")
}

func TestStartReplacesRunningSequence(t *testing.T) {
	e := New(seedStore(), nil)
	tx := &recordingEnqueuer{}

	e.Start(context.Background(), tx, Sequence{
		ID:   "first",
		Kind: KindLoop,
		Steps: [][]Frame{
			{{Address: 1, R: 1, G: 1, B: 1}},
		},
		StepInterval: time.Millisecond,
	})
	require.Eventually(t, func() bool { return e.CurrentID() == "first" }, time.Second, time.Millisecond)

	e.Start(context.Background(), tx, Sequence{
		ID:   "second",
		Kind: KindStatic,
		Steps: [][]Frame{
			{{Address: 2, R: 2, G: 2, B: 2}},
		},
	})
	require.Eventually(t, func() bool { return e.CurrentID() == "second" }, time.Second, time.Millisecond)
	e.Stop()
}

func TestWaveSweepsFloorsAscending(t *testing.T) {
	e := New(seedStore(), nil)
	tx := &recordingEnqueuer{}

	e.Start(context.Background(), tx, Sequence{
		ID:              "wave-1",
		Kind:            KindWave,
		WaveUp:          true,
		WaveColor:       [3]int{255, 255, 255},
		InterFloorDelay: time.Millisecond,
		HoldDuration:    time.Millisecond,
		WaveLoop:        false,
	})

	require.Eventually(t, func() bool { return !e.Running() }, time.Second, time.Millisecond)
	assert.GreaterOrEqual(t, tx.count(), 4) // 2 floors up + 2 floors down

	first, err := codec.Decode(tx.packets[0])
	require.NoError(t, err)
	second, err := codec.Decode(tx.packets[1])
	require.NoError(t, err)
	assert.Equal(t, codec.Address(1), first.Address)  // floor 9
	assert.Equal(t, codec.Address(2), second.Address) // floor 10
}

func TestChaseDecaysWithDistance(t *testing.T) {
	e := New(seedStore(), nil)
	tx := &recordingEnqueuer{}

	e.Start(context.Background(), tx, Sequence{
		ID:         "chase-1",
		Kind:       KindChase,
		TailLength: 2,
		ChaseTick:  time.Millisecond,
		ChaseColor: [3]int{100, 0, 0},
	})

	require.Eventually(t, func() bool { return tx.count() >= 2 }, time.Second, time.Millisecond)
	e.Stop()

	first := tx.packets[0]
	dec, err := codec.Decode(first)
	require.NoError(t, err)
	assert.Equal(t, codec.OpRGBLevel, dec.Opcode)
	// The head starts on the first fixture in floor order (address 2, floor
	// 10) at full ChaseColor; the fixture one step behind it is at half.
	assert.Equal(t, codec.Address(2), dec.Address)
	assert.Equal(t, []byte{100, 0, 0}, dec.Payload)
	dec1, err := codec.Decode(tx.packets[1])
	require.NoError(t, err)
	assert.Equal(t, codec.Address(1), dec1.Address)
	assert.Equal(t, []byte{50, 0, 0}, dec1.Payload)
}

func TestBreatheRampsIntensity(t *testing.T) {
	e := New(seedStore(), nil)
	tx := &recordingEnqueuer{}

	e.Start(context.Background(), tx, Sequence{
		ID:              "breathe-1",
		Kind:            KindBreathe,
		BreatheDuration: 20 * time.Millisecond,
		BreatheTick:     time.Millisecond,
		MinIntensity:    0,
		MaxIntensity:    255,
		BreatheColor:    [3]int{255, 255, 255},
	})

	require.Eventually(t, func() bool { return tx.count() >= 5 }, time.Second, time.Millisecond)
	e.Stop()
}

func TestStartIsNoOpRaceFreeConcurrently(t *testing.T) {
	e := New(seedStore(), nil)
	tx := &recordingEnqueuer{}
	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			e.Start(context.Background(), tx, Sequence{
				ID:   "static",
				Kind: KindStatic,
				Steps: [][]Frame{
					{{Address: 1, R: 1, G: 1, B: 1}},
				},
			})
		}(i)
	}
	wg.Wait()
	require.Eventually(t, func() bool { return e.Running() }, time.Second, time.Millisecond)
	e.Stop()
}
