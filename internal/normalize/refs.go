package normalize

import (
	"encoding/json"

	"github.com/fentz26/dx/internal/ident"
	"github.com/fentz26/dx/internal/models"
)

// linkKey marks an object link inside inputs, outputs and details.
const linkKey = "$dnanexus_link"

// refFromValue extracts an object id from a single reference value: a bare
// id string or a link object. Values that hold no valid id yield false.
func refFromValue(raw json.RawMessage) (ident.ObjectID, bool) {
	switch Kind(raw) {
	case "string":
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return ident.ObjectID{}, false
		}
		id, err := ident.Parse(s)
		if err != nil {
			return ident.ObjectID{}, false
		}
		return id.Unscoped(), true
	case "object":
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(raw, &obj); err != nil {
			return ident.ObjectID{}, false
		}
		if link, ok := obj[linkKey]; ok {
			return linkTarget(link)
		}
		if id, ok := obj["id"]; ok {
			return refFromValue(id)
		}
	}
	return ident.ObjectID{}, false
}

// linkTarget resolves the value of a link: either "file-xxxx" or
// {"id": "file-xxxx", "project": "project-yyyy"}.
func linkTarget(raw json.RawMessage) (ident.ObjectID, bool) {
	if Kind(raw) == "string" {
		return refFromValue(raw)
	}
	var target struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(raw, &target); err != nil || target.ID == "" {
		return ident.ObjectID{}, false
	}
	id, err := ident.Parse(target.ID)
	if err != nil {
		return ident.ObjectID{}, false
	}
	return id.Unscoped(), true
}

// addRef records a single reference value.
func addRef(refs *models.References, relation string, raw json.RawMessage) {
	if id, ok := refFromValue(raw); ok {
		refs.Add(relation, id)
	}
}

// addRefList records every id in a JSON array of reference values.
func addRefList(refs *models.References, relation string, raw json.RawMessage) {
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return
	}
	for _, item := range items {
		addRef(refs, relation, item)
	}
}

// addLinks walks an input/output map and records every link object found at
// any depth. Plain strings are not treated as references here since input
// values are free-form.
func addLinks(refs *models.References, relation string, raw json.RawMessage) {
	switch Kind(raw) {
	case "object":
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(raw, &obj); err != nil {
			return
		}
		if link, ok := obj[linkKey]; ok {
			if id, ok := linkTarget(link); ok {
				refs.Add(relation, id)
			}
			return
		}
		// Map iteration order is random; decode in source order instead.
		p, err := decodePayload(raw)
		if err != nil {
			return
		}
		for _, f := range p.fields {
			addLinks(refs, relation, f.raw)
		}
	case "array":
		var items []json.RawMessage
		if err := json.Unmarshal(raw, &items); err != nil {
			return
		}
		for _, item := range items {
			addLinks(refs, relation, item)
		}
	}
}

// addStageExecutions records the execution of every analysis stage.
func addStageExecutions(refs *models.References, relation string, raw json.RawMessage) {
	var stages []struct {
		Execution json.RawMessage `json:"execution"`
	}
	if err := json.Unmarshal(raw, &stages); err != nil {
		return
	}
	for _, stage := range stages {
		if len(stage.Execution) > 0 {
			addRef(refs, relation, stage.Execution)
		}
	}
}
