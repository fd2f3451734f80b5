package transport

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/kohnman/lightswarm/internal/apperr"
	"github.com/kohnman/lightswarm/internal/obslog"
)

// State is the transport's connection lifecycle state (§4.4).
type State int

const (
	StateClosed State = iota
	StateOpening
	StateOpen
	StateClosing
	StateReconnecting
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpening:
		return "opening"
	case StateOpen:
		return "open"
	case StateClosing:
		return "closing"
	case StateReconnecting:
		return "reconnecting"
	default:
		return "unknown"
	}
}

const (
	defaultInterPacketGap = 10 * time.Millisecond
	baseReconnectDelay    = 2 * time.Second
	maxReconnectAttempts  = 10
)

// Job is a single enqueued write: an already-framed wire packet and a
// completion notifier.
type Job struct {
	Packet []byte
	done   chan error
}

// Opener produces a fresh Device, e.g. opening the serial port or the
// simulated sink. Transport calls it on startup and on every reconnect.
type Opener func() (Device, error)

// Transport is the single-writer serial transmit queue described in §4.4.
// All producers enqueue through Enqueue; exactly one goroutine (Run) ever
// touches the underlying Device, so no lock is needed around writes
// themselves — only around the small bit of state (connection state,
// reconnect attempt count, observers) that other goroutines read for
// query_status.
type Transport struct {
	open            Opener
	simulated       bool
	gap             time.Duration
	log             *obslog.Log
	jobs            chan *Job
	queueDepth      atomic.Int64
	reconnectBase   time.Duration
	reconnectMaxTry int

	mu        sync.RWMutex
	state     State
	attempt   int
	observers []Observer
	device    Device
}

// Option configures a Transport at construction time.
type Option func(*Transport)

// WithInterPacketGap overrides the default ~10ms pause between jobs.
func WithInterPacketGap(d time.Duration) Option {
	return func(t *Transport) { t.gap = d }
}

// WithLog attaches a logger; without one, Transport logs nowhere.
func WithLog(l *obslog.Log) Option {
	return func(t *Transport) { t.log = l }
}

// WithReconnectSchedule overrides the base delay and attempt bound of the
// exponential reconnect schedule. The production default (2s, 10 attempts)
// is set in New; tests use this to shrink the schedule to milliseconds.
func WithReconnectSchedule(base time.Duration, maxAttempts int) Option {
	return func(t *Transport) {
		t.reconnectBase = base
		t.reconnectMaxTry = maxAttempts
	}
}

// New returns a Transport that opens devices via open. simulated marks
// whether the device this transport drives is the in-memory sink (used to
// tag observer callbacks) or a live bus.
func New(open Opener, simulated bool, opts ...Option) *Transport {
	t := &Transport{
		open:            open,
		simulated:       simulated,
		gap:             defaultInterPacketGap,
		jobs:            make(chan *Job, 256),
		state:           StateClosed,
		reconnectBase:   baseReconnectDelay,
		reconnectMaxTry: maxReconnectAttempts,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// AddObserver registers o to receive every frame this transport emits.
func (t *Transport) AddObserver(o Observer) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.observers = append(t.observers, o)
}

// State reports the current connection lifecycle state.
func (t *Transport) State() State {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.state
}

// ReconnectAttempt reports the current consecutive failed reconnect count.
func (t *Transport) ReconnectAttempt() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.attempt
}

// QueueDepth reports how many jobs are enqueued but not yet completed.
func (t *Transport) QueueDepth() int {
	return int(t.queueDepth.Load())
}

func (t *Transport) setState(s State) {
	t.mu.Lock()
	t.state = s
	t.mu.Unlock()
}

// Enqueue submits packet as a new job and blocks until it has been written
// and drained (or ctx is cancelled, or the transport is shutting down).
// This is the backpressure mechanism of §4.4: producers don't block the
// device, they block on their own job's completion while the FIFO
// serializes everyone else's.
func (t *Transport) Enqueue(ctx context.Context, packet []byte) error {
	if t.State() == StateClosed {
		return apperr.New(apperr.TransportClosed, "transport is closed")
	}
	job := &Job{Packet: packet, done: make(chan error, 1)}
	t.queueDepth.Add(1)
	select {
	case t.jobs <- job:
	case <-ctx.Done():
		t.queueDepth.Add(-1)
		return ctx.Err()
	}
	select {
	case err := <-job.done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Open performs the initial connection. A failure here is the "unrecoverable
// transport ... initialization failure" of §6 that should abort startup.
// Run assumes Open has succeeded, and Enqueue rejects every job while the
// transport is still closed.
func (t *Transport) Open(ctx context.Context) error {
	t.setState(StateOpening)
	dev, err := t.open()
	if err != nil {
		t.setState(StateClosed)
		return apperr.Wrap(apperr.TransportIo, err, "opening transport")
	}
	t.mu.Lock()
	t.device = dev
	t.attempt = 0
	t.mu.Unlock()
	t.setState(StateOpen)
	return nil
}

// Run drives the writer loop until ctx is cancelled or reconnection is
// abandoned after maxReconnectAttempts. It assumes Open has already
// succeeded once; a device error mid-run transitions to reconnecting
// rather than returning, per §6 ("runtime transport failures transition to
// reconnect, not exit").
func (t *Transport) Run(ctx context.Context) error {
	defer func() {
		t.mu.Lock()
		if t.device != nil {
			t.device.Close()
		}
		t.mu.Unlock()
		t.setState(StateClosed)
		// Fail jobs still queued so their callers are not left waiting.
		for {
			select {
			case job := <-t.jobs:
				t.queueDepth.Add(-1)
				job.done <- apperr.New(apperr.TransportClosed, "transport is closed")
			default:
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case job := <-t.jobs:
			t.process(ctx, job)
		}
		if t.State() == StateClosed {
			return fmt.Errorf("transport: reconnect abandoned after %d attempts", t.reconnectMaxTry)
		}
	}
}

func (t *Transport) process(ctx context.Context, job *Job) {
	defer t.queueDepth.Add(-1)

	if t.State() != StateOpen {
		if err := t.reconnect(ctx); err != nil {
			job.done <- err
			return
		}
	}

	t.mu.RLock()
	dev := t.device
	t.mu.RUnlock()

	if _, err := dev.Write(job.Packet); err != nil {
		job.done <- t.handleIoError(ctx, err)
		return
	}
	if err := dev.Drain(); err != nil {
		job.done <- t.handleIoError(ctx, err)
		return
	}
	t.dispatch(job.Packet)
	job.done <- nil

	select {
	case <-time.After(t.gap):
	case <-ctx.Done():
	}
}

func (t *Transport) handleIoError(ctx context.Context, cause error) error {
	if t.log != nil {
		t.log.Error("transport write failed", "err", cause)
	}
	t.setState(StateReconnecting)
	if err := t.reconnect(ctx); err != nil {
		return apperr.Wrap(apperr.TransportIo, cause, "device write failed")
	}
	return apperr.Wrap(apperr.TransportIo, cause, "device write failed, reconnected for next job")
}

// reconnect runs the fixed exponential-backoff schedule of §4.4: starting
// at 2s, doubling each attempt, up to maxReconnectAttempts. A successful
// reopen resets the attempt counter.
func (t *Transport) reconnect(ctx context.Context) error {
	t.setState(StateReconnecting)
	for {
		t.mu.Lock()
		t.attempt++
		attempt := t.attempt
		t.mu.Unlock()

		if attempt > t.reconnectMaxTry {
			t.setState(StateClosed)
			return apperr.New(apperr.TransportClosed, "reconnect abandoned after %d attempts", t.reconnectMaxTry)
		}

		delay := t.reconnectBase << uint(attempt-1)
		if t.log != nil {
			t.log.Warn("reconnecting", "attempt", attempt, "delay", delay)
		}
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}

		dev, err := t.open()
		if err != nil {
			continue
		}
		t.mu.Lock()
		t.device = dev
		t.attempt = 0
		t.mu.Unlock()
		t.setState(StateOpen)
		return nil
	}
}

func (t *Transport) dispatch(frame []byte) {
	t.mu.RLock()
	observers := make([]Observer, len(t.observers))
	copy(observers, t.observers)
	t.mu.RUnlock()
	for _, o := range observers {
		o.ObserveFrame(frame, t.simulated)
	}
}
