package normalize

import (
	"github.com/fentz26/dx/internal/ident"
	"github.com/fentz26/dx/internal/models"
)

// Projects are top-level containers and have no context.
var projectTable = table{
	class: ident.ClassProject,
	fields: []fieldSpec{
		{"billTo", plain},
		{"cloudAccount", plain},
		{"dataUsage", plain},
		{"sponsoredDataUsage", plain},
		{"remoteDataUsage", plain},
		{"archivedDataUsage", plain},
		{"previewViewerRestricted", plain},
		{"displayDataProtectionNotice", plain},
		{"downloadRestricted", plain},
		{"externalUploadRestricted", plain},
		{"containsPHI", plain},
		{"databaseUIViewOnly", plain},
		{"createdBy", user},
		{"sponsoredUntil", timestamp},
	},
}

func normalizeProject(p *payload) (*models.Descriptor, error) {
	return build(p, &projectTable)
}
