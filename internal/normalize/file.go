package normalize

import (
	"github.com/fentz26/dx/internal/ident"
	"github.com/fentz26/dx/internal/models"
)

var fileTable = table{
	class:   ident.ClassFile,
	context: "project",
	fields: []fieldSpec{
		{"folder", plain},
		{"size", plain},
		{"media", plain},
		{"archivalState", plain},
		{"cloudAccount", plain},
		{"createdBy", user},
		{"sponsoredUntil", timestamp},
		{"links", refList},
		{"details", links},
	},
}

func normalizeFile(p *payload) (*models.Descriptor, error) {
	return build(p, &fileTable)
}
