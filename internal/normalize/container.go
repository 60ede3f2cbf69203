package normalize

import (
	"github.com/fentz26/dx/internal/ident"
	"github.com/fentz26/dx/internal/models"
)

var containerTable = table{
	class:   ident.ClassContainer,
	context: "project",
	fields: []fieldSpec{
		{"type", plain},
		{"billTo", plain},
		{"appName", plain},
		{"app", ref},
		{"cloudAccount", plain},
		{"dataUsage", plain},
		{"sponsoredDataUsage", plain},
		{"remoteDataUsage", plain},
		{"destroyAt", timestamp},
	},
}

func normalizeContainer(p *payload) (*models.Descriptor, error) {
	return build(p, &containerTable)
}
