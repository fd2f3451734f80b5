// Package obslog wraps charmbracelet/log behind a small gate, in the
// spirit of rob-gra-go-iecp5/clog's LogProvider: a provider can be swapped
// out, and output can be turned on or off at runtime without touching call
// sites, without pulling callers into charmbracelet/log's own API surface.
package obslog

import (
	"os"
	"sync/atomic"

	charmlog "github.com/charmbracelet/log"
)

// Provider is anything that can log at the four levels the core uses.
// charmlog.Logger satisfies it directly.
type Provider interface {
	Debug(msg interface{}, keyvals ...interface{})
	Info(msg interface{}, keyvals ...interface{})
	Warn(msg interface{}, keyvals ...interface{})
	Error(msg interface{}, keyvals ...interface{})
}

// Log is a gated logger: calls are dropped cheaply when disabled, so hot
// paths (the transport write loop, the animation tick loop) can log
// liberally without a branch at every call site.
type Log struct {
	provider Provider
	enabled  atomic.Bool
}

// New returns a Log backed by a charmbracelet/log logger writing to
// stderr, enabled by default.
func New(prefix string) *Log {
	l := &Log{
		provider: charmlog.NewWithOptions(os.Stderr, charmlog.Options{
			Prefix:          prefix,
			ReportTimestamp: true,
		}),
	}
	l.enabled.Store(true)
	return l
}

// SetProvider swaps the backing provider, e.g. to redirect into a test
// recorder.
func (l *Log) SetProvider(p Provider) {
	if p != nil {
		l.provider = p
	}
}

// SetEnabled toggles whether calls reach the provider.
func (l *Log) SetEnabled(enabled bool) { l.enabled.Store(enabled) }

func (l *Log) Debug(msg interface{}, keyvals ...interface{}) {
	if l.enabled.Load() {
		l.provider.Debug(msg, keyvals...)
	}
}

func (l *Log) Info(msg interface{}, keyvals ...interface{}) {
	if l.enabled.Load() {
		l.provider.Info(msg, keyvals...)
	}
}

func (l *Log) Warn(msg interface{}, keyvals ...interface{}) {
	if l.enabled.Load() {
		l.provider.Warn(msg, keyvals...)
	}
}

func (l *Log) Error(msg interface{}, keyvals ...interface{}) {
	if l.enabled.Load() {
		l.provider.Error(msg, keyvals...)
	}
}
