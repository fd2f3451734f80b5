// Package auditlog implements the "Persisted artifacts" of §6: a rolling
// command log and a session event log. The in-memory ring buffers back
// query_status and any audit view an external collaborator builds; daily
// log file names are computed with a strftime pattern rather than
// hand-rolled date formatting (compare doismellburning-samoyed's log.go,
// which builds daily names by hand).
package auditlog

import (
	"sync"
	"time"

	"github.com/lestrrat-go/strftime"
)

// CommandEntry is one row of the rolling command log: what was sent, to
// whom, whether it succeeded, and how long it took.
type CommandEntry struct {
	Timestamp     time.Time
	Source        string // producer: "resolver", "session", "animation", "raw"
	Command       string // opcode name, e.g. "RGB_FADE"
	Target        string // entity id or address this targeted
	Success       bool
	Error         string
	ExecutionTime time.Duration
}

// SessionEntry is one row of the session event log.
type SessionEntry struct {
	Timestamp time.Time
	Agent     string // opaque caller-supplied identifier
	Event     string // "login" or "logout"
}

// Ring is a fixed-capacity, overwrite-oldest ring buffer shared by both log
// kinds' in-memory tail.
type Ring[T any] struct {
	mu       sync.Mutex
	entries  []T
	capacity int
	next     int
	full     bool
}

// NewRing returns a Ring holding at most capacity entries.
func NewRing[T any](capacity int) *Ring[T] {
	if capacity < 1 {
		capacity = 1
	}
	return &Ring[T]{entries: make([]T, capacity), capacity: capacity}
}

// Push appends an entry, overwriting the oldest once capacity is reached.
func (r *Ring[T]) Push(entry T) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[r.next] = entry
	r.next = (r.next + 1) % r.capacity
	if r.next == 0 {
		r.full = true
	}
}

// Snapshot returns entries in insertion order, oldest first.
func (r *Ring[T]) Snapshot() []T {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.full {
		out := make([]T, r.next)
		copy(out, r.entries[:r.next])
		return out
	}
	out := make([]T, r.capacity)
	copy(out, r.entries[r.next:])
	copy(out[r.capacity-r.next:], r.entries[:r.next])
	return out
}

// Len reports how many entries are currently held.
func (r *Ring[T]) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.full {
		return r.capacity
	}
	return r.next
}

// Log is the audit facility: an in-memory tail of both log kinds, plus a
// strftime pattern for deriving the on-disk file name a persistence
// collaborator should write the current day's entries to.
type Log struct {
	Commands *Ring[CommandEntry]
	Sessions *Ring[SessionEntry]

	namePattern *strftime.Strftime
}

// New returns a Log with the given in-memory retention depth per kind and
// a strftime pattern (e.g. "lightswarm-%Y-%m-%d.log") used by FileNameFor.
func New(capacity int, namePattern string) (*Log, error) {
	pat, err := strftime.New(namePattern)
	if err != nil {
		return nil, err
	}
	return &Log{
		Commands:    NewRing[CommandEntry](capacity),
		Sessions:    NewRing[SessionEntry](capacity),
		namePattern: pat,
	}, nil
}

// FileNameFor renders the configured pattern for t, e.g. for a daily
// rolling file name.
func (l *Log) FileNameFor(t time.Time) string {
	return l.namePattern.FormatString(t)
}

// RecordCommand appends a command log entry.
func (l *Log) RecordCommand(e CommandEntry) { l.Commands.Push(e) }

// RecordSession appends a session event log entry.
func (l *Log) RecordSession(e SessionEntry) { l.Sessions.Push(e) }
