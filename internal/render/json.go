package render

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/fentz26/dx/internal/models"
	"github.com/fentz26/dx/internal/normalize"
)

// jsonDescriptor fixes the key order of the JSON projection. Absent
// optional fields are omitted, never written as null.
type jsonDescriptor struct {
	ID         string            `json:"id"`
	Class      string            `json:"class"`
	Name       *string           `json:"name,omitempty"`
	State      *string           `json:"state,omitempty"`
	CreatedAt  string            `json:"created_at,omitempty"`
	ModifiedAt string            `json:"modified_at,omitempty"`
	Context    string            `json:"context,omitempty"`
	Properties models.Properties `json:"properties"`
	References []string          `json:"references"`
}

func toJSONDescriptor(d *models.Descriptor) jsonDescriptor {
	out := jsonDescriptor{
		ID:         d.ID.String(),
		Class:      d.Class().String(),
		Name:       d.Name,
		State:      d.State,
		Properties: d.Properties,
		References: d.References.IDs(),
	}
	if d.CreatedAt != nil {
		out.CreatedAt = normalize.FormatTimestamp(*d.CreatedAt)
	}
	if d.ModifiedAt != nil {
		out.ModifiedAt = normalize.FormatTimestamp(*d.ModifiedAt)
	}
	if d.Context != nil {
		out.Context = d.Context.String()
	}
	return out
}

// JSON renders d as an indented JSON object followed by a newline.
func JSON(d *models.Descriptor) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(toJSONDescriptor(d)); err != nil {
		return "", fmt.Errorf("encode descriptor %s: %w", d.ID, err)
	}
	return buf.String(), nil
}
