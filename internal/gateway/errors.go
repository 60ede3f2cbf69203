package gateway

import (
	"errors"
	"fmt"
)

// Sentinel error kinds. Every Gateway error wraps exactly one of them.
var (
	ErrNotFound     = errors.New("object not found")
	ErrUnauthorized = errors.New("unauthorized")
	ErrTransient    = errors.New("transient failure")
	ErrMalformed    = errors.New("malformed response")
)

// Error is a classified gateway failure.
type Error struct {
	// Kind is one of the sentinel errors above.
	Kind error
	// ID is the identifier that was being fetched.
	ID string
	// Status is the HTTP status, zero when no response was received.
	Status int
	// Type and Message come from the API error body when present.
	Type    string
	Message string
	// RequestID of the failing call, if one was sent.
	RequestID string
	// Err is the underlying cause, if any.
	Err error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	detail := e.Kind.Error()
	if e.Type != "" {
		detail = e.Type
	}
	if e.Status != 0 {
		detail = fmt.Sprintf("%s (HTTP %d)", detail, e.Status)
	}
	if msg == "" {
		return detail
	}
	return detail + ": " + msg
}

// Unwrap exposes both the kind sentinel and the underlying cause.
func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// KindOf returns the sentinel kind of err, or nil when err is not a
// gateway error.
func KindOf(err error) error {
	for _, kind := range []error{ErrUnauthorized, ErrNotFound, ErrTransient, ErrMalformed} {
		if errors.Is(err, kind) {
			return kind
		}
	}
	return nil
}

// IsRetryable reports whether err may succeed on a repeated fetch.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrTransient)
}
