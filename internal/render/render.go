// Package render formats descriptors for output. JSON and text are two
// projections of the same models.Descriptor and carry the same fields.
package render

import (
	"github.com/fentz26/dx/internal/models"
)

// Options controls one invocation's output. It is not changed once built.
type Options struct {
	JSON  bool
	Debug bool
}

// Placeholder is printed in text mode for absent optional fields.
const Placeholder = "-"

// TextTimeLayout is the text-mode timestamp layout. Times are shown in UTC.
const TextTimeLayout = "2006-01-02 15:04:05"

// Render formats d according to opts. Debug output is produced separately
// by Trace.Render and never changes the body.
func Render(d *models.Descriptor, opts Options) (string, error) {
	if opts.JSON {
		return JSON(d)
	}
	return Text(d)
}
