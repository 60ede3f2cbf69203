package normalize

import (
	"errors"
	"fmt"
)

// Sentinel errors for payload normalization.
var (
	ErrMissingRequiredField = errors.New("missing required field")
	ErrBadTimestamp         = errors.New("bad timestamp")
	ErrClassMismatch        = errors.New("class mismatch")
	ErrIDMismatch           = errors.New("id mismatch")
	ErrInvalidField         = errors.New("invalid field")
	ErrInvalidPayload       = errors.New("invalid payload")
)

// FieldError ties a normalization failure to the payload field that caused it.
type FieldError struct {
	Field  string
	Detail string
	Err    error
}

func (e *FieldError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("%v %q", e.Err, e.Field)
	}
	return fmt.Sprintf("%v %q: %s", e.Err, e.Field, e.Detail)
}

func (e *FieldError) Unwrap() error {
	return e.Err
}

func missingField(field string) error {
	return &FieldError{Field: field, Err: ErrMissingRequiredField}
}

func invalidField(field, detail string) error {
	return &FieldError{Field: field, Detail: detail, Err: ErrInvalidField}
}
