package form

import (
	"github.com/goliatone/go-surveywizard/pkg/model"
	"github.com/goliatone/go-surveywizard/pkg/validation"
)

// Group is the live state of one step's fields.
type Group struct {
	spec       model.GroupSpec
	values     map[string]any
	validators map[string][]validation.Validator
	group      []validation.Validator
}

func newGroup(spec model.GroupSpec) (*Group, error) {
	g := &Group{
		spec:       spec,
		values:     make(map[string]any, len(spec.Fields)),
		validators: make(map[string][]validation.Validator, len(spec.Fields)),
		group:      validation.GroupValidators(spec),
	}
	for _, field := range spec.Fields {
		validators, err := validation.FromRules(field)
		if err != nil {
			return nil, err
		}
		if field.Type == model.FieldTypeList {
			validators = append(validators, criteriaRule{})
		}
		g.validators[field.Name] = validators
	}
	g.reset()
	return g, nil
}

// Name returns the group name.
func (g *Group) Name() string {
	if g == nil {
		return ""
	}
	return g.spec.Name
}

// Spec returns the schema definition backing the group.
func (g *Group) Spec() model.GroupSpec {
	if g == nil {
		return model.GroupSpec{}
	}
	return g.spec
}

// Value returns the stored value of a field.
func (g *Group) Value(field string) (any, bool) {
	if g == nil {
		return nil, false
	}
	if _, ok := g.spec.Field(field); !ok {
		return nil, false
	}
	return cloneValue(g.values[field]), true
}

// Values returns a copy of every field value keyed by field name.
func (g *Group) Values() map[string]any {
	if g == nil {
		return nil
	}
	out := make(map[string]any, len(g.values))
	for key, value := range g.values {
		out[key] = cloneValue(value)
	}
	return out
}

// FieldResult evaluates the validators of a single field.
func (g *Group) FieldResult(field string) validation.Result {
	if g == nil {
		return validation.OK()
	}
	return validation.All(g.values[field], g.validators[field]...)
}

// GroupLevelResult evaluates only the group-level validators.
func (g *Group) GroupLevelResult() validation.Result {
	if g == nil {
		return validation.OK()
	}
	return validation.All(g.values, g.group...)
}

// Result merges every field result with the group-level result.
func (g *Group) Result() validation.Result {
	if g == nil {
		return validation.OK()
	}
	results := make([]validation.Result, 0, len(g.spec.Fields)+1)
	for _, field := range g.spec.Fields {
		results = append(results, g.FieldResult(field.Name))
	}
	results = append(results, g.GroupLevelResult())
	return validation.Merge(results...)
}

// Valid reports whether the group passes every validator.
func (g *Group) Valid() bool {
	return g.Result().Valid
}

func (g *Group) reset() {
	for _, field := range g.spec.Fields {
		g.values[field.Name] = defaultValue(field)
	}
}

func defaultValue(field model.FieldSpec) any {
	if field.Type == model.FieldTypeList {
		list, ok := toCriteria(field.Default)
		if !ok {
			return []Criterion{}
		}
		return list
	}
	if field.Default == nil {
		return nil
	}
	if field.Type == model.FieldTypeNumber {
		if number, ok := validation.Number(field.Default); ok {
			if _, isString := field.Default.(string); !isString {
				return number
			}
		}
	}
	return field.Default
}

func cloneValue(value any) any {
	if list, ok := value.([]Criterion); ok {
		return cloneCriteria(list)
	}
	return value
}
