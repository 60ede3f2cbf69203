// Package models defines the canonical, class-agnostic object descriptor.
package models

import (
	"time"

	"github.com/fentz26/dx/internal/ident"
)

// Descriptor is the normalized metadata of one platform object. It is the
// single source of truth for both JSON and text rendering. Optional fields
// are nil when the platform did not report them.
type Descriptor struct {
	ID         ident.ObjectID
	Name       *string
	State      *string
	CreatedAt  *time.Time
	ModifiedAt *time.Time
	// Context is the project (or other owner) the object belongs to. It is
	// a back-link, never followed.
	Context    *ident.ObjectID
	Properties Properties
	References References
}

// Class returns the class of the described object.
func (d *Descriptor) Class() ident.ObjectClass {
	return d.ID.Class()
}
