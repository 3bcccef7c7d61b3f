package model

// FieldType is the simplified enum for wizard field kinds.
type FieldType string

const (
	FieldTypeString FieldType = "string"
	FieldTypeNumber FieldType = "number"
	FieldTypeText   FieldType = "text"
	FieldTypeList   FieldType = "list"
)

const (
	RuleRequired  = "required"
	RuleMin       = "min"
	RuleMax       = "max"
	RuleMinLength = "minLength"
)

// Rule represents a single validation constraint applied to a field. Numeric
// bounds and length limits encode their threshold in Params["value"].
type Rule struct {
	Kind   string            `json:"kind" yaml:"kind"`
	Params map[string]string `json:"params,omitempty" yaml:"params,omitempty"`
}

// FieldSpec models an individual input inside a field group.
type FieldSpec struct {
	Name        string    `json:"name" yaml:"name"`
	Label       string    `json:"label,omitempty" yaml:"label,omitempty"`
	Type        FieldType `json:"type" yaml:"type"`
	Description string    `json:"description,omitempty" yaml:"description,omitempty"`
	Default     any       `json:"default,omitempty" yaml:"default,omitempty"`
	Enum        []string  `json:"enum,omitempty" yaml:"enum,omitempty"`
	Rules       []Rule    `json:"rules,omitempty" yaml:"rules,omitempty"`
}

// HasRule reports whether the field declares a rule of the given kind.
func (f FieldSpec) HasRule(kind string) bool {
	for _, rule := range f.Rules {
		if rule.Kind == kind {
			return true
		}
	}
	return false
}

// GroupSpec is a named collection of fields validated together. SumTarget,
// when set, adds a group-level rule requiring the numeric fields to add up to
// the target exactly.
type GroupSpec struct {
	Name      string      `json:"name" yaml:"name"`
	Label     string      `json:"label,omitempty" yaml:"label,omitempty"`
	Fields    []FieldSpec `json:"fields" yaml:"fields"`
	SumTarget *float64    `json:"sumTarget,omitempty" yaml:"sumTarget,omitempty"`
}

// Field returns the named field spec.
func (g GroupSpec) Field(name string) (FieldSpec, bool) {
	for _, field := range g.Fields {
		if field.Name == name {
			return field, true
		}
	}
	return FieldSpec{}, false
}

// StepSpec ties a route path under the wizard root to the field group it
// edits. Guard names the group that must be valid before the step can be
// entered; the first step has none.
type StepSpec struct {
	Path  string `json:"path" yaml:"path"`
	Label string `json:"label,omitempty" yaml:"label,omitempty"`
	Group string `json:"group" yaml:"group"`
	Guard string `json:"guard,omitempty" yaml:"guard,omitempty"`
}

// Driver is an impact driver with its fixed benchmark average.
type Driver struct {
	ID      string  `json:"id" yaml:"id"`
	Name    string  `json:"name" yaml:"name"`
	Average float64 `json:"average" yaml:"average"`
}

// Schema is the complete static description of a survey wizard.
type Schema struct {
	Root     string      `json:"root" yaml:"root"`
	Exit     string      `json:"exit" yaml:"exit"`
	Steps    []StepSpec  `json:"steps" yaml:"steps"`
	Groups   []GroupSpec `json:"groups" yaml:"groups"`
	Drivers  []Driver    `json:"drivers" yaml:"drivers"`
	Criteria []string    `json:"criteria" yaml:"criteria"`
}

// Group returns the named group spec.
func (s Schema) Group(name string) (GroupSpec, bool) {
	for _, group := range s.Groups {
		if group.Name == name {
			return group, true
		}
	}
	return GroupSpec{}, false
}

// Well-known group and field names used by the score calculators and the
// criteria editor.
const (
	GroupProductDetails = "productDetails"
	GroupRespondents    = "respondents"
	GroupDistribution   = "distribution"
	GroupImpactDrivers  = "impactDrivers"
	GroupENPS           = "enps"
	GroupComments       = "comments"

	FieldSelectedCriteria = "selectedCriteria"
	FieldPromoters        = "promoters"
	FieldPassives         = "passives"
	FieldDetractors       = "detractors"
)
