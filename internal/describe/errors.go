package describe

import (
	"errors"
	"fmt"

	"github.com/fentz26/dx/internal/gateway"
	"github.com/fentz26/dx/internal/ident"
	"github.com/fentz26/dx/internal/normalize"
)

// Category names the pipeline stage an identifier failed in.
type Category string

const (
	CategoryParse     Category = "ParseError"
	CategoryGateway   Category = "GatewayError"
	CategoryNormalize Category = "NormalizeError"
	CategoryRender    Category = "RenderError"
)

// Error is the failure of one identifier. It never aborts the batch.
type Error struct {
	Input    string
	Category Category
	Err      error
}

// Error formats the failure as "<input>: <Category>: <message>".
func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Input, e.Category, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Kind returns the sentinel the failure wraps, for logs and history.
func (e *Error) Kind() string {
	for _, kind := range []error{
		ident.ErrUnknownClass, ident.ErrMalformed,
		gateway.ErrNotFound, gateway.ErrTransient, gateway.ErrMalformed, gateway.ErrUnauthorized,
		normalize.ErrMissingRequiredField, normalize.ErrBadTimestamp, normalize.ErrClassMismatch, normalize.ErrIDMismatch,
		normalize.ErrInvalidField, normalize.ErrInvalidPayload,
	} {
		if errors.Is(e.Err, kind) {
			return kind.Error()
		}
	}
	return "unknown"
}

// FatalError aborts the whole invocation. It is returned once per batch.
type FatalError struct {
	Input string
	Err   error
}

func (e *FatalError) Error() string {
	return fmt.Sprintf("session error while describing %s: %v", e.Input, e.Err)
}

func (e *FatalError) Unwrap() error {
	return e.Err
}
