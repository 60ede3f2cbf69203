package normalize

import (
	"github.com/fentz26/dx/internal/ident"
	"github.com/fentz26/dx/internal/models"
)

var appletTable = table{
	class:   ident.ClassApplet,
	context: "project",
	fields: []fieldSpec{
		{"folder", plain},
		{"createdBy", user},
		{"dxapi", plain},
		{"developerNotes", plain},
		{"ignoreReuse", plain},
		{"runSpec", plain},
		{"inputSpec", plain},
		{"outputSpec", plain},
		{"sponsoredUntil", timestamp},
		{"links", refList},
	},
}

func normalizeApplet(p *payload) (*models.Descriptor, error) {
	return build(p, &appletTable)
}
