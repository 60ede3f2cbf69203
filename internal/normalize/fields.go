package normalize

import (
	"encoding/json"
	"strings"
	"time"
	"unicode"

	"github.com/fentz26/dx/internal/ident"
	"github.com/fentz26/dx/internal/models"
)

// fieldKind says how a known class field is normalized.
type fieldKind int

const (
	// plain fields are renamed and copied verbatim.
	plain fieldKind = iota
	// timestamp fields become canonical timestamp strings.
	timestamp
	// user fields flatten {"user": "user-xxxx", ...} to the user id.
	user
	// ref fields hold a single object id or link.
	ref
	// refList fields hold an array of ids or links.
	refList
	// links fields are input/output maps searched for link objects.
	links
	// stages is the analysis stage list; each stage execution is a reference.
	stages
)

// fieldSpec describes one known payload field of a class.
type fieldSpec struct {
	key  string
	kind fieldKind
}

// table is the field table of one class.
type table struct {
	class ident.ObjectClass
	// context is the payload key of the owner back-link, empty when the
	// class has none.
	context string
	fields  []fieldSpec
}

func (t *table) lookup(key string) (fieldSpec, bool) {
	for _, f := range t.fields {
		if f.key == key {
			return f, true
		}
	}
	return fieldSpec{}, false
}

// build fills a descriptor from p according to t. Canonical slots are taken
// first, then each remaining field is either normalized via the table or
// copied into properties under its original key.
func build(p *payload, t *table) (*models.Descriptor, error) {
	d := &models.Descriptor{}

	idStr, err := p.stringField("id")
	if err != nil {
		return nil, err
	}
	if idStr == nil {
		return nil, missingField("id")
	}
	id, err := ident.Parse(*idStr)
	if err != nil {
		return nil, &FieldError{Field: "id", Detail: err.Error(), Err: ErrInvalidField}
	}
	if id.Class() != t.class {
		return nil, &FieldError{Field: "id", Detail: "payload id " + id.String() + " is not a " + t.class.String(), Err: ErrClassMismatch}
	}
	d.ID = id.Unscoped()

	class, err := p.stringField("class")
	if err != nil {
		return nil, err
	}
	if class != nil && *class != t.class.String() {
		return nil, &FieldError{Field: "class", Detail: "payload class " + *class + ", expected " + t.class.String(), Err: ErrClassMismatch}
	}

	for _, f := range p.fields {
		switch {
		case f.key == "id" || f.key == "class":
			continue
		case f.key == "name":
			if d.Name, err = p.stringField("name"); err != nil {
				return nil, err
			}
		case f.key == "state":
			if d.State, err = p.stringField("state"); err != nil {
				return nil, err
			}
		case f.key == "created":
			if d.CreatedAt, err = timeSlot(f); err != nil {
				return nil, err
			}
		case f.key == "modified":
			if d.ModifiedAt, err = timeSlot(f); err != nil {
				return nil, err
			}
		case t.context != "" && f.key == t.context:
			if d.Context, err = contextSlot(f); err != nil {
				return nil, err
			}
		default:
			spec, known := t.lookup(f.key)
			if !known {
				d.Properties.Set(f.key, f.raw)
				continue
			}
			if err := applyField(d, spec, propertyName(p, spec.key), f.raw); err != nil {
				return nil, err
			}
		}
	}
	return d, nil
}

// propertyName is the snake_case form of key, unless the payload also
// carries that form as its own member. Then key is kept as is so neither
// value is lost.
func propertyName(p *payload, key string) string {
	name := snakeCase(key)
	if name == key {
		return key
	}
	if _, clash := p.index[name]; clash {
		return key
	}
	return name
}

// applyField normalizes one known field under the property name. Null values
// are dropped.
func applyField(d *models.Descriptor, spec fieldSpec, name string, raw json.RawMessage) error {
	if isNull(raw) {
		return nil
	}
	switch spec.kind {
	case timestamp:
		ts, err := parseTimestamp(spec.key, raw)
		if err != nil {
			return err
		}
		d.Properties.SetString(name, FormatTimestamp(ts))
	case user:
		d.Properties.Set(name, flattenUser(raw))
	case ref:
		d.Properties.Set(name, raw)
		addRef(&d.References, name, raw)
	case refList:
		d.Properties.Set(name, raw)
		addRefList(&d.References, name, raw)
	case links:
		d.Properties.Set(name, raw)
		addLinks(&d.References, name, raw)
	case stages:
		d.Properties.Set(name, raw)
		addStageExecutions(&d.References, "stage_execution", raw)
	default:
		d.Properties.Set(name, raw)
	}
	return nil
}

func timeSlot(f field) (*time.Time, error) {
	if isNull(f.raw) {
		return nil, nil
	}
	ts, err := parseTimestamp(f.key, f.raw)
	if err != nil {
		return nil, err
	}
	return &ts, nil
}

func contextSlot(f field) (*ident.ObjectID, error) {
	if isNull(f.raw) {
		return nil, nil
	}
	id, ok := refFromValue(f.raw)
	if !ok {
		return nil, invalidField(f.key, "expected an object id")
	}
	return &id, nil
}

// flattenUser reduces a createdBy-style object to its user id. Strings pass
// through, and objects without a user keep their original value.
func flattenUser(raw json.RawMessage) json.RawMessage {
	if Kind(raw) != "object" {
		return raw
	}
	var by struct {
		User string `json:"user"`
	}
	if err := json.Unmarshal(raw, &by); err != nil || by.User == "" {
		return raw
	}
	out, _ := json.Marshal(by.User)
	return out
}

// snakeCase converts a camelCase payload key: "billTo" becomes "bill_to"
// and "containsPHI" becomes "contains_phi".
func snakeCase(s string) string {
	runes := []rune(s)
	var b strings.Builder
	for i, r := range runes {
		if !unicode.IsUpper(r) {
			b.WriteRune(r)
			continue
		}
		if i > 0 {
			prev := runes[i-1]
			nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
			if unicode.IsLower(prev) || unicode.IsDigit(prev) || (unicode.IsUpper(prev) && nextLower) {
				b.WriteByte('_')
			}
		}
		b.WriteRune(unicode.ToLower(r))
	}
	return b.String()
}
