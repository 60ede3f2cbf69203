package ident

import (
	"encoding/json"
	"fmt"
	"strings"
)

const (
	// Delimiter separates the class prefix from the local id.
	Delimiter = "-"
	// ScopeDelimiter separates a project scope from a data object id.
	ScopeDelimiter = ":"
)

// ObjectID is a validated, immutable object identifier.
type ObjectID struct {
	class   ObjectClass
	localID string
	scope   string // project local id, only for data objects
}

// New builds an ObjectID from parts, validating the local id.
func New(class ObjectClass, localID string) (ObjectID, error) {
	if _, ok := ClassFromPrefix(string(class)); !ok {
		return ObjectID{}, &ParseError{Input: string(class) + Delimiter + localID, Err: ErrUnknownClass}
	}
	raw := string(class) + Delimiter + localID
	if err := validateLocalID(raw, localID); err != nil {
		return ObjectID{}, err
	}
	return ObjectID{class: class, localID: localID}, nil
}

// MustParse is Parse for identifiers known to be valid. It panics otherwise.
func MustParse(raw string) ObjectID {
	id, err := Parse(raw)
	if err != nil {
		panic(err)
	}
	return id
}

// Parse validates raw and splits it into class and local id. An optional
// "project-xxxx:" scope is accepted in front of data object identifiers.
func Parse(raw string) (ObjectID, error) {
	if scope, rest, ok := strings.Cut(raw, ScopeDelimiter); ok {
		return parseScoped(raw, scope, rest)
	}
	return parseBare(raw, raw)
}

func parseScoped(raw, scope, rest string) (ObjectID, error) {
	project, err := parseBare(raw, scope)
	if err != nil {
		return ObjectID{}, err
	}
	if project.class != ClassProject {
		return ObjectID{}, malformed(raw, "scope must be a project")
	}
	id, err := parseBare(raw, rest)
	if err != nil {
		return ObjectID{}, err
	}
	if !id.class.IsDataObject() {
		return ObjectID{}, malformed(raw, fmt.Sprintf("%s objects cannot be project-scoped", id.class))
	}
	id.scope = project.localID
	return id, nil
}

func parseBare(raw, token string) (ObjectID, error) {
	prefix, localID, ok := strings.Cut(token, Delimiter)
	if !ok {
		return ObjectID{}, malformed(raw, "missing class prefix")
	}
	if prefix == "" {
		return ObjectID{}, malformed(raw, "empty class prefix")
	}
	class, ok := ClassFromPrefix(prefix)
	if !ok {
		return ObjectID{}, &ParseError{Input: raw, Reason: fmt.Sprintf("prefix %q", prefix), Err: ErrUnknownClass}
	}
	if err := validateLocalID(raw, localID); err != nil {
		return ObjectID{}, err
	}
	return ObjectID{class: class, localID: localID}, nil
}

func validateLocalID(raw, localID string) error {
	if localID == "" {
		return malformed(raw, "empty local id")
	}
	for i := 0; i < len(localID); i++ {
		c := localID[i]
		if (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') {
			continue
		}
		return malformed(raw, fmt.Sprintf("invalid character %q in local id", c))
	}
	return nil
}

// Class returns the object class.
func (id ObjectID) Class() ObjectClass { return id.class }

// LocalID returns the opaque token after the class prefix.
func (id ObjectID) LocalID() string { return id.localID }

// IsZero reports whether id was never set.
func (id ObjectID) IsZero() bool { return id.class == "" }

// Scope returns the project the identifier was scoped to, if any.
func (id ObjectID) Scope() (ObjectID, bool) {
	if id.scope == "" {
		return ObjectID{}, false
	}
	return ObjectID{class: ClassProject, localID: id.scope}, true
}

// Unscoped returns id without its project scope.
func (id ObjectID) Unscoped() ObjectID {
	return ObjectID{class: id.class, localID: id.localID}
}

// Bare returns the "class-localid" form without any scope.
func (id ObjectID) Bare() string {
	if id.IsZero() {
		return ""
	}
	return string(id.class) + Delimiter + id.localID
}

// String returns the full identifier, including the project scope when
// present. Parse(id.String()) yields id.
func (id ObjectID) String() string {
	if id.scope == "" {
		return id.Bare()
	}
	return string(ClassProject) + Delimiter + id.scope + ScopeDelimiter + id.Bare()
}

// MarshalJSON encodes the identifier as its full string form.
func (id ObjectID) MarshalJSON() ([]byte, error) {
	return json.Marshal(id.String())
}

// UnmarshalJSON parses a JSON string identifier.
func (id *ObjectID) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := Parse(raw)
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}
