package normalize

import (
	"github.com/fentz26/dx/internal/ident"
	"github.com/fentz26/dx/internal/models"
)

var jobTable = table{
	class:   ident.ClassJob,
	context: "project",
	fields: []fieldSpec{
		{"try", plain},
		{"tryCreated", timestamp},
		{"executableName", plain},
		{"function", plain},
		{"app", ref},
		{"applet", ref},
		{"analysis", ref},
		{"billTo", plain},
		{"folder", plain},
		{"workspace", ref},
		{"instanceType", plain},
		{"startedRunning", timestamp},
		{"stoppedRunning", timestamp},
		{"egressReport", plain},
		{"rootExecution", ref},
		{"parentJob", ref},
		{"parentJobTry", plain},
		{"originJob", ref},
		{"detachedFrom", ref},
		{"detachedFromTry", plain},
		{"parentAnalysis", ref},
		{"dependsOn", refList},
		{"stateTransitions", plain},
		{"launchedBy", user},
		{"input", links},
		{"output", links},
		{"runInput", links},
		{"originalInput", links},
		{"totalPrice", plain},
		{"priority", plain},
	},
}

func normalizeJob(p *payload) (*models.Descriptor, error) {
	return build(p, &jobTable)
}
