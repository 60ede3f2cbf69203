package normalize

import (
	"github.com/fentz26/dx/internal/ident"
	"github.com/fentz26/dx/internal/models"
)

// analysisTable covers workflow runs. Stage executions, the parent chain and
// the input/output links all become references.
var analysisTable = table{
	class:   ident.ClassAnalysis,
	context: "project",
	fields: []fieldSpec{
		{"executableName", plain},
		{"executable", ref},
		{"workflow", ref},
		{"billTo", plain},
		{"folder", plain},
		{"workspace", ref},
		{"rootExecution", ref},
		{"parentJob", ref},
		{"parentJobTry", plain},
		{"parentAnalysis", ref},
		{"detachedFrom", ref},
		{"detachedFromTry", plain},
		{"outputReusedFrom", ref},
		{"workerReuseDeadlineRunTime", plain},
		{"dependsOn", refList},
		{"launchedBy", user},
		{"stages", stages},
		{"input", links},
		{"output", links},
		{"runInput", links},
		{"originalInput", links},
		{"totalPrice", plain},
		{"priority", plain},
	},
}

func normalizeAnalysis(p *payload) (*models.Descriptor, error) {
	return build(p, &analysisTable)
}
