package validation

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/goliatone/go-surveywizard/pkg/model"
)

// FromRules builds the ordered validator list for a field spec.
func FromRules(field model.FieldSpec) ([]Validator, error) {
	var (
		out       []Validator
		rangeRule Range
		hasRange  bool
	)
	for _, rule := range field.Rules {
		switch rule.Kind {
		case model.RuleRequired:
			out = append(out, Required{})
		case model.RuleMin, model.RuleMax:
			value, err := ruleNumber(field.Name, rule)
			if err != nil {
				return nil, err
			}
			if rule.Kind == model.RuleMin {
				rangeRule.Min = &value
			} else {
				rangeRule.Max = &value
			}
			hasRange = true
		case model.RuleMinLength:
			value, err := ruleNumber(field.Name, rule)
			if err != nil {
				return nil, err
			}
			out = append(out, MinLength{Length: int(value)})
		default:
			return nil, fmt.Errorf("validation: field %q uses unknown rule %q", field.Name, rule.Kind)
		}
	}
	if hasRange {
		out = append(out, rangeRule)
	}
	return out, nil
}

// GroupValidators builds the group-level validators for a group spec.
func GroupValidators(group model.GroupSpec) []Validator {
	if group.SumTarget == nil {
		return nil
	}
	return []Validator{SumEquals{Target: *group.SumTarget}}
}

func ruleNumber(field string, rule model.Rule) (float64, error) {
	raw := strings.TrimSpace(rule.Params["value"])
	if raw == "" {
		return 0, fmt.Errorf("validation: field %q rule %q is missing params.value", field, rule.Kind)
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("validation: field %q rule %q has non-numeric value %q", field, rule.Kind, raw)
	}
	return value, nil
}
