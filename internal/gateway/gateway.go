// Package gateway fetches raw object metadata from the platform API.
package gateway

import (
	"context"

	"github.com/fentz26/dx/internal/ident"
)

// Gateway fetches the raw describe payload of one object. Implementations
// must be safe for concurrent use and must return errors wrapping one of
// ErrNotFound, ErrUnauthorized, ErrTransient or ErrMalformed.
type Gateway interface {
	Fetch(ctx context.Context, id ident.ObjectID) (*Response, error)
}

// Response is a successful describe call.
type Response struct {
	// Payload is the raw JSON object returned by the API.
	Payload []byte
	// Status is the HTTP status code, or zero for non-HTTP gateways.
	Status int
	// RequestID identifies the call in server-side logs.
	RequestID string
}

// Func adapts a plain function to the Gateway interface.
type Func func(ctx context.Context, id ident.ObjectID) (*Response, error)

// Fetch calls f.
func (f Func) Fetch(ctx context.Context, id ident.ObjectID) (*Response, error) {
	return f(ctx, id)
}
