package navigation

import (
	"strings"

	"github.com/goliatone/go-surveywizard/pkg/model"
)

// Step is one page of the wizard.
type Step struct {
	Index int
	Path  string
	Label string
	Group string
	Guard string
}

// Location returns the full route of the step under root.
func (s Step) Location(root string) string {
	return strings.TrimRight(root, "/") + "/" + s.Path
}

// Steps builds the ordered step list from a schema. The landing page is not a
// step.
func Steps(schema model.Schema) []Step {
	out := make([]Step, 0, len(schema.Steps))
	for i, spec := range schema.Steps {
		label := strings.TrimSpace(spec.Label)
		if label == "" {
			label = model.DefaultLabeler(spec.Path)
		}
		out = append(out, Step{
			Index: i,
			Path:  spec.Path,
			Label: label,
			Group: spec.Group,
			Guard: spec.Guard,
		})
	}
	return out
}

// StepDescriptor is the paginator view of a step. Descriptors are derived on
// demand and never persisted.
type StepDescriptor struct {
	Label    string `json:"label"`
	Path     string `json:"path"`
	Required bool   `json:"required"`
	Valid    bool   `json:"valid"`
	Current  bool   `json:"current"`
}
