package schema

import (
	"bytes"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/goliatone/go-surveywizard/pkg/model"
	"github.com/goliatone/go-surveywizard/pkg/validation"
)

// Violation is a single schema problem located by a dotted path.
type Violation struct {
	Location string
	Message  string
}

func (v Violation) String() string {
	return v.Location + " -> " + v.Message
}

// Validate returns the first violation as an error, or nil.
func Validate(s model.Schema) error {
	violations := check(s)
	if len(violations) == 0 {
		return nil
	}
	return errors.New(violations[0].String())
}

// Lint parses raw bytes and returns every violation, sorted by location.
func Lint(raw []byte, source string) ([]Violation, error) {
	s, err := decode(raw, source)
	if err != nil {
		return nil, err
	}
	violations := check(s)
	sort.SliceStable(violations, func(i, j int) bool {
		if violations[i].Location == violations[j].Location {
			return violations[i].Message < violations[j].Message
		}
		return violations[i].Location < violations[j].Location
	})
	return violations, nil
}

// FormatViolations renders violations one per line.
func FormatViolations(source string, violations []Violation) string {
	var buf bytes.Buffer
	for _, v := range violations {
		fmt.Fprintf(&buf, "%s: %s\n", source, v.String())
	}
	return buf.String()
}

func check(s model.Schema) []Violation {
	var out []Violation
	add := func(location, format string, args ...any) {
		out = append(out, Violation{Location: location, Message: fmt.Sprintf(format, args...)})
	}

	if len(s.Steps) == 0 {
		add("steps", "at least one step is required")
	}
	if len(s.Groups) == 0 {
		add("groups", "at least one group is required")
	}

	groups := make(map[string]model.GroupSpec, len(s.Groups))
	for i, group := range s.Groups {
		loc := fmt.Sprintf("groups.%d", i)
		name := strings.TrimSpace(group.Name)
		if name == "" {
			add(loc, "group name is empty")
			continue
		}
		if _, exists := groups[name]; exists {
			add(loc, "duplicate group %q", name)
			continue
		}
		groups[name] = group

		fields := make(map[string]struct{}, len(group.Fields))
		for j, field := range group.Fields {
			floc := fmt.Sprintf("%s.fields.%d", loc, j)
			if strings.TrimSpace(field.Name) == "" {
				add(floc, "field name is empty")
				continue
			}
			if _, exists := fields[field.Name]; exists {
				add(floc, "duplicate field %q in group %q", field.Name, name)
			}
			fields[field.Name] = struct{}{}
			switch field.Type {
			case model.FieldTypeString, model.FieldTypeNumber, model.FieldTypeText, model.FieldTypeList:
			default:
				add(floc, "unknown field type %q", field.Type)
			}
			if _, err := validation.FromRules(field); err != nil {
				add(floc, "%s", strings.TrimPrefix(err.Error(), "validation: "))
			}
		}
	}

	paths := make(map[string]struct{}, len(s.Steps))
	for i, step := range s.Steps {
		loc := fmt.Sprintf("steps.%d", i)
		if step.Path == "" {
			add(loc, "step path is empty")
		} else if _, exists := paths[step.Path]; exists {
			add(loc, "duplicate step path %q", step.Path)
		}
		paths[step.Path] = struct{}{}
		if _, ok := groups[step.Group]; !ok {
			add(loc, "step %q references unknown group %q", step.Path, step.Group)
		}
		if step.Guard != "" {
			if _, ok := groups[step.Guard]; !ok {
				add(loc, "step %q guarded by unknown group %q", step.Path, step.Guard)
			}
		}
	}

	if len(s.Drivers) > 0 {
		drivers, ok := groups[model.GroupImpactDrivers]
		for i, driver := range s.Drivers {
			loc := fmt.Sprintf("drivers.%d", i)
			if !ok {
				add(loc, "drivers declared without a %q group", model.GroupImpactDrivers)
				break
			}
			if _, found := drivers.Field(driver.ID); !found {
				add(loc, "driver %q is not a field of %q", driver.ID, model.GroupImpactDrivers)
			}
		}
	}

	seen := make(map[string]struct{}, len(s.Criteria))
	for i, name := range s.Criteria {
		loc := fmt.Sprintf("criteria.%d", i)
		if strings.TrimSpace(name) == "" {
			add(loc, "criterion name is empty")
			continue
		}
		if _, exists := seen[name]; exists {
			add(loc, "duplicate criterion %q", name)
		}
		seen[name] = struct{}{}
	}

	return out
}
