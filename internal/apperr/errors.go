// Package apperr defines the closed set of error kinds the core raises
// (§7), shared across inventory, resolver, transport, and the codec's
// diagnostic decode path. An HTTP collaborator maps Kind to a status code;
// this package only carries the classification, not the mapping.
package apperr

import "fmt"

// Kind classifies an error for the purpose of the error handling design in
// §7. It is a closed set: new error categories are a breaking API change,
// not a value any caller should invent ad hoc.
type Kind int

const (
	// NotFound: unknown entity identifier.
	NotFound Kind = iota
	// NoAddresses: entity exists but has no fixture associations.
	NoAddresses
	// BadState: requested state not in the closed set.
	BadState
	// BadRange: numeric parameter out of documented bounds at the API
	// boundary (the codec clamps silently internally; this is for callers
	// who should have validated first).
	BadRange
	// TransportClosed: enqueue rejected because the transport is shutting
	// down or not yet open.
	TransportClosed
	// TransportIo: underlying write or open failed.
	TransportIo
	// DecodeBadChecksum: diagnostic decode path, checksum mismatch.
	DecodeBadChecksum
	// DecodeTruncated: diagnostic decode path, frame truncated.
	DecodeTruncated
)

func (k Kind) String() string {
	switch k {
	case NotFound:
		return "NotFound"
	case NoAddresses:
		return "NoAddresses"
	case BadState:
		return "BadState"
	case BadRange:
		return "BadRange"
	case TransportClosed:
		return "TransportClosed"
	case TransportIo:
		return "TransportIo"
	case DecodeBadChecksum:
		return "DecodeBadChecksum"
	case DecodeTruncated:
		return "DecodeTruncated"
	default:
		return "Unknown"
	}
}

// Error pairs a Kind with a human message and an optional wrapped cause.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

// New builds an *Error with a formatted message and no wrapped cause.
func New(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap builds an *Error carrying kind, a message, and a wrapped cause.
func Wrap(kind Kind, cause error, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Cause: cause}
}

// KindOf extracts the Kind from err if it (or something it wraps) is an
// *Error, or false otherwise.
func KindOf(err error) (Kind, bool) {
	var ae *Error
	for err != nil {
		if e, ok := err.(*Error); ok {
			ae = e
			break
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			break
		}
		err = u.Unwrap()
	}
	if ae == nil {
		return 0, false
	}
	return ae.Kind, true
}
