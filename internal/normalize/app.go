package normalize

import (
	"github.com/fentz26/dx/internal/ident"
	"github.com/fentz26/dx/internal/models"
)

// Apps are global, so they carry no context. The applet an app was built
// from and its resources container are references.
var appTable = table{
	class: ident.ClassApp,
	fields: []fieldSpec{
		{"version", plain},
		{"title", plain},
		{"billTo", plain},
		{"createdBy", user},
		{"openSource", plain},
		{"ignoreReuse", plain},
		{"isDeveloperFor", plain},
		{"authorizedUsers", plain},
		{"regionalOptions", plain},
		{"httpsApp", plain},
		{"published", timestamp},
		{"applet", ref},
		{"resources", ref},
	},
}

func normalizeApp(p *payload) (*models.Descriptor, error) {
	return build(p, &appTable)
}
