package form

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/goliatone/go-surveywizard/pkg/validation"
)

// DefaultOptionName is used for options added without an explicit name.
const DefaultOptionName = "New"

// Option is one answer bucket of a criterion with its share of respondents.
// A nil Percentage means the value has not been entered.
type Option struct {
	Name       string   `json:"name"`
	Percentage *float64 `json:"percentage"`
}

// Criterion is a demographic dimension selected for the distribution step.
type Criterion struct {
	Name    string   `json:"name"`
	Options []Option `json:"options"`
}

// Percent returns a pointer to v, for building options inline.
func Percent(v float64) *float64 {
	return &v
}

// Total sums the option percentages. Missing values count as zero.
func (c Criterion) Total() float64 {
	total := 0.0
	for _, opt := range c.Options {
		if opt.Percentage != nil {
			total = validation.Finite(total + validation.Coerce(*opt.Percentage))
		}
	}
	return total
}

func cloneCriteria(in []Criterion) []Criterion {
	out := make([]Criterion, len(in))
	for i, c := range in {
		out[i] = Criterion{Name: c.Name, Options: cloneOptions(c.Options)}
	}
	return out
}

func cloneOptions(in []Option) []Option {
	out := make([]Option, len(in))
	for i, opt := range in {
		out[i] = Option{Name: opt.Name}
		if opt.Percentage != nil {
			out[i].Percentage = Percent(*opt.Percentage)
		}
	}
	return out
}

// toCriteria accepts a typed list or its JSON-decoded form.
func toCriteria(value any) ([]Criterion, bool) {
	switch typed := value.(type) {
	case nil:
		return []Criterion{}, true
	case []Criterion:
		for _, c := range typed {
			for _, opt := range c.Options {
				if opt.Percentage != nil && validation.NonFinite(*opt.Percentage) {
					return nil, false
				}
			}
		}
		return dedupe(cloneCriteria(typed)), true
	case []any:
		raw, err := json.Marshal(typed)
		if err != nil {
			return nil, false
		}
		var out []Criterion
		if err := json.Unmarshal(raw, &out); err != nil {
			return nil, false
		}
		for i := range out {
			if out[i].Options == nil {
				out[i].Options = []Option{}
			}
		}
		return dedupe(out), true
	default:
		return nil, false
	}
}

func dedupe(in []Criterion) []Criterion {
	out := make([]Criterion, 0, len(in))
	seen := make(map[string]struct{}, len(in))
	for _, c := range in {
		if _, ok := seen[c.Name]; ok {
			continue
		}
		seen[c.Name] = struct{}{}
		if c.Options == nil {
			c.Options = []Option{}
		}
		out = append(out, c)
	}
	return out
}

func indexOfCriterion(list []Criterion, name string) int {
	for i, c := range list {
		if c.Name == name {
			return i
		}
	}
	return -1
}

// criteriaRule validates the selected criteria list: every criterion needs at
// least one option and every option a non-negative percentage. Option totals
// are not checked.
type criteriaRule struct{}

func (criteriaRule) Evaluate(value any) validation.Result {
	list, ok := value.([]Criterion)
	if !ok {
		return validation.OK()
	}
	var issues []validation.Issue
	for _, c := range list {
		if len(c.Options) == 0 {
			issues = append(issues, validation.Issue{
				Code:    validation.CodeRequired,
				Message: fmt.Sprintf("%s needs at least one option", c.Name),
			})
			continue
		}
		for i, opt := range c.Options {
			label := strings.TrimSpace(opt.Name)
			if label == "" {
				label = fmt.Sprintf("option %d", i+1)
			}
			if opt.Percentage == nil {
				issues = append(issues, validation.Issue{
					Code:    validation.CodeRequired,
					Message: fmt.Sprintf("%s / %s: percentage is required", c.Name, label),
				})
				continue
			}
			if *opt.Percentage < 0 {
				issues = append(issues, validation.Issue{
					Code:    validation.CodeMin,
					Message: fmt.Sprintf("%s / %s: percentage must be at least 0", c.Name, label),
					Params:  map[string]float64{"min": 0, "actual": *opt.Percentage},
				})
			}
		}
	}
	if len(issues) > 0 {
		return validation.Fail(issues...)
	}
	return validation.OK()
}
