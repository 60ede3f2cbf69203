// Package normalize maps the class-specific describe payloads returned by
// the platform onto the canonical models.Descriptor.
package normalize

import (
	"fmt"

	"github.com/fentz26/dx/internal/ident"
	"github.com/fentz26/dx/internal/models"
)

// baseRequired is the contract every class carries.
var baseRequired = []string{"id", "class"}

// Normalizer turns raw payloads into descriptors. The zero value enforces
// only the base contract.
type Normalizer struct {
	required map[ident.ObjectClass][]string
}

// New creates a Normalizer whose required-field contract is the base
// contract extended with extra per class.
func New(extra map[ident.ObjectClass][]string) *Normalizer {
	n := &Normalizer{required: make(map[ident.ObjectClass][]string)}
	for class, fields := range extra {
		n.required[class] = append([]string(nil), fields...)
	}
	return n
}

// Required returns the payload fields class must report.
func (n *Normalizer) Required(class ident.ObjectClass) []string {
	out := append([]string(nil), baseRequired...)
	seen := map[string]bool{"id": true, "class": true}
	for _, f := range n.required[class] {
		if !seen[f] {
			seen[f] = true
			out = append(out, f)
		}
	}
	return out
}

var defaultNormalizer = &Normalizer{}

// Normalize uses the base contract.
func Normalize(class ident.ObjectClass, id ident.ObjectID, raw []byte) (*models.Descriptor, error) {
	return defaultNormalizer.Normalize(class, id, raw)
}

// Normalize decodes raw and builds the descriptor of the object id, which
// must be of class.
func (n *Normalizer) Normalize(class ident.ObjectClass, id ident.ObjectID, raw []byte) (*models.Descriptor, error) {
	if id.Class() != class {
		return nil, &FieldError{Field: "class", Detail: fmt.Sprintf("requested %s for a %s id", class, id.Class()), Err: ErrClassMismatch}
	}
	p, err := decodePayload(raw)
	if err != nil {
		return nil, err
	}
	for _, key := range n.Required(class) {
		if _, ok := p.get(key); !ok {
			return nil, missingField(key)
		}
	}

	var d *models.Descriptor
	switch class {
	case ident.ClassAnalysis:
		d, err = normalizeAnalysis(p)
	case ident.ClassJob:
		d, err = normalizeJob(p)
	case ident.ClassFile:
		d, err = normalizeFile(p)
	case ident.ClassApp:
		d, err = normalizeApp(p)
	case ident.ClassApplet:
		d, err = normalizeApplet(p)
	case ident.ClassDatabase:
		d, err = normalizeDatabase(p)
	case ident.ClassRecord:
		d, err = normalizeRecord(p)
	case ident.ClassProject:
		d, err = normalizeProject(p)
	case ident.ClassContainer:
		d, err = normalizeContainer(p)
	default:
		return nil, fmt.Errorf("%w: no normalizer for class %q", ErrClassMismatch, class)
	}
	if err != nil {
		return nil, err
	}
	if d.ID.LocalID() != id.LocalID() {
		return nil, &FieldError{Field: "id", Detail: fmt.Sprintf("payload describes %s, requested %s", d.ID, id.Unscoped()), Err: ErrIDMismatch}
	}
	return d, nil
}
