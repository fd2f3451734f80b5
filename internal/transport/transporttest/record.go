// Package transporttest provides fakes for package transport, in the
// spirit of google-periph's conn/conntest.Record: a device that records
// every write instead of driving real hardware, so the transport tests can
// assert on the exact byte sequence the transport would have put on the
// wire.
package transporttest

import "sync"

// Record is a transport.Device that appends every write to Ops and acks
// immediately. Safe for concurrent use since the transport's single writer
// goroutine is still the only one calling Write/Drain, but tests read Ops
// from a different goroutine.
type Record struct {
	mu     sync.Mutex
	Ops    [][]byte
	closed bool
}

func (r *Record) Write(p []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := make([]byte, len(p))
	copy(cp, p)
	r.Ops = append(r.Ops, cp)
	return len(p), nil
}

func (r *Record) Drain() error { return nil }

func (r *Record) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
	return nil
}

// Snapshot returns a copy of every packet written so far, in write order.
func (r *Record) Snapshot() [][]byte {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([][]byte, len(r.Ops))
	copy(out, r.Ops)
	return out
}

// Closed reports whether Close has been called.
func (r *Record) Closed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.closed
}
