package normalize

import (
	"github.com/fentz26/dx/internal/ident"
	"github.com/fentz26/dx/internal/models"
)

var databaseTable = table{
	class:   ident.ClassDatabase,
	context: "project",
	fields: []fieldSpec{
		{"folder", plain},
		{"databaseName", plain},
		{"uniqueDatabaseName", plain},
		{"createdBy", user},
		{"sponsoredUntil", timestamp},
		{"links", refList},
	},
}

func normalizeDatabase(p *payload) (*models.Descriptor, error) {
	return build(p, &databaseTable)
}
