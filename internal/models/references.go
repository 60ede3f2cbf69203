package models

import "github.com/fentz26/dx/internal/ident"

// Reference is a weak link from a descriptor to another object: the
// relation it was found under and the object's id. The referenced object
// is never fetched.
type Reference struct {
	Relation string
	ID       ident.ObjectID
}

// References is an ordered set of references, unique by object id. The
// first relation an id is seen under wins.
type References struct {
	refs []Reference
	seen map[string]struct{}
}

// Add records a reference. It reports false when the id was already present.
func (r *References) Add(relation string, id ident.ObjectID) bool {
	key := id.String()
	if _, ok := r.seen[key]; ok {
		return false
	}
	if r.seen == nil {
		r.seen = make(map[string]struct{})
	}
	r.seen[key] = struct{}{}
	r.refs = append(r.refs, Reference{Relation: relation, ID: id})
	return true
}

// Len returns the number of references.
func (r References) Len() int {
	return len(r.refs)
}

// All returns a copy of the references in insertion order.
func (r References) All() []Reference {
	out := make([]Reference, len(r.refs))
	copy(out, r.refs)
	return out
}

// IDs returns the full identifier strings in insertion order.
func (r References) IDs() []string {
	out := make([]string, len(r.refs))
	for i, ref := range r.refs {
		out[i] = ref.ID.String()
	}
	return out
}
