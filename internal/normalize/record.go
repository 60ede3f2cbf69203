package normalize

import (
	"github.com/fentz26/dx/internal/ident"
	"github.com/fentz26/dx/internal/models"
)

var recordTable = table{
	class:   ident.ClassRecord,
	context: "project",
	fields: []fieldSpec{
		{"folder", plain},
		{"createdBy", user},
		{"sponsoredUntil", timestamp},
		{"links", refList},
		{"details", links},
	},
}

func normalizeRecord(p *payload) (*models.Descriptor, error) {
	return build(p, &recordTable)
}
