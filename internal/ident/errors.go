package ident

import (
	"errors"
	"fmt"
)

// Sentinel errors for identifier parsing.
var (
	ErrUnknownClass = errors.New("unknown object class")
	ErrMalformed    = errors.New("malformed identifier")
)

// ParseError describes why a raw identifier was rejected. It unwraps to
// ErrUnknownClass or ErrMalformed.
type ParseError struct {
	Input  string
	Reason string
	Err    error
}

func (e *ParseError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("%q: %v", e.Input, e.Err)
	}
	return fmt.Sprintf("%q: %v: %s", e.Input, e.Err, e.Reason)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

func malformed(input, reason string) error {
	return &ParseError{Input: input, Reason: reason, Err: ErrMalformed}
}
