package transport

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/kohnman/lightswarm/internal/transport/transporttest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTransport(t *testing.T, rec *transporttest.Record, opts ...Option) *Transport {
	t.Helper()
	opts = append([]Option{WithInterPacketGap(time.Millisecond)}, opts...)
	tr := New(func() (Device, error) { return rec, nil }, true, opts...)
	require.NoError(t, tr.Open(context.Background()))
	return tr
}

func runInBackground(t *testing.T, tr *Transport) (context.CancelFunc, chan error) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- tr.Run(ctx) }()
	return cancel, done
}

func TestEnqueueWritesAndDrains(t *testing.T) {
	rec := &transporttest.Record{}
	tr := newTestTransport(t, rec)
	cancel, done := runInBackground(t, tr)
	defer cancel()

	require.NoError(t, tr.Enqueue(context.Background(), []byte{0x01, 0x02}))
	assert.Equal(t, [][]byte{{0x01, 0x02}}, rec.Snapshot())

	cancel()
	<-done
}

func TestFIFOOrderAcrossProducers(t *testing.T) {
	rec := &transporttest.Record{}
	tr := newTestTransport(t, rec)
	cancel, done := runInBackground(t, tr)
	defer cancel()

	var wg sync.WaitGroup
	results := make([]error, 2)
	wg.Add(2)
	go func() {
		defer wg.Done()
		results[0] = tr.Enqueue(context.Background(), []byte("A"))
	}()
	// Ensure A is enqueued first by giving it a head start; the FIFO
	// property under test is that whichever arrives first on the channel
	// completes first on the wire.
	time.Sleep(2 * time.Millisecond)
	go func() {
		defer wg.Done()
		results[1] = tr.Enqueue(context.Background(), []byte("B"))
	}()
	wg.Wait()
	require.NoError(t, results[0])
	require.NoError(t, results[1])

	ops := rec.Snapshot()
	require.Len(t, ops, 2)
	assert.Equal(t, []byte("A"), ops[0])
	assert.Equal(t, []byte("B"), ops[1])

	cancel()
	<-done
}

func TestObserversSeeEveryFrame(t *testing.T) {
	rec := &transporttest.Record{}
	tr := newTestTransport(t, rec)

	var mu sync.Mutex
	var seen [][]byte
	tr.AddObserver(ObserverFunc(func(frame []byte, simulated bool) {
		mu.Lock()
		defer mu.Unlock()
		seen = append(seen, frame)
		assert.True(t, simulated)
	}))

	cancel, done := runInBackground(t, tr)
	require.NoError(t, tr.Enqueue(context.Background(), []byte{0xAA}))
	cancel()
	<-done

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, [][]byte{{0xAA}}, seen)
}

func TestEnqueueRejectedWhenClosed(t *testing.T) {
	rec := &transporttest.Record{}
	tr := New(func() (Device, error) { return rec, nil }, true)
	err := tr.Enqueue(context.Background(), []byte{0x01})
	require.Error(t, err)
}

func TestReconnectAfterIoError(t *testing.T) {
	attempts := 0
	var mu sync.Mutex
	rec := &transporttest.Record{}

	opener := func() (Device, error) {
		mu.Lock()
		defer mu.Unlock()
		attempts++
		if attempts == 1 {
			return &failingDevice{err: errors.New("boom")}, nil
		}
		return rec, nil
	}

	tr := New(opener, true,
		WithInterPacketGap(time.Millisecond),
		WithReconnectSchedule(time.Millisecond, 5),
	)
	require.NoError(t, tr.Open(context.Background()))
	cancel, done := runInBackground(t, tr)
	defer cancel()

	// First job hits the failing device and triggers a reconnect; the
	// transport itself surfaces the write error for that job but should
	// be healthy again for the next one.
	err := tr.Enqueue(context.Background(), []byte{0x01})
	assert.Error(t, err)

	require.Eventually(t, func() bool {
		return tr.State() == StateOpen
	}, time.Second, time.Millisecond)

	require.NoError(t, tr.Enqueue(context.Background(), []byte{0x02}))
	assert.Equal(t, [][]byte{{0x02}}, rec.Snapshot())

	cancel()
	<-done
}

type failingDevice struct{ err error }

func (f *failingDevice) Write(p []byte) (int, error) { return 0, f.err }
func (f *failingDevice) Drain() error                { return nil }
func (f *failingDevice) Close() error                { return nil }
