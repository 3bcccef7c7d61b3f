package schema

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-surveywizard/pkg/model"
	"github.com/goliatone/go-surveywizard/pkg/validation"
)

//go:embed data/survey.yaml
var dataFS embed.FS

const defaultSchemaPath = "data/survey.yaml"

var (
	defaultOnce   sync.Once
	defaultSchema model.Schema
	defaultErr    error
)

// Default returns the embedded survey schema. The returned value is a deep
// copy; callers may mutate it freely.
func Default() (model.Schema, error) {
	defaultOnce.Do(func() {
		raw, err := dataFS.ReadFile(defaultSchemaPath)
		if err != nil {
			defaultErr = fmt.Errorf("schema: read embedded schema: %w", err)
			return
		}
		defaultSchema, defaultErr = Parse(raw, defaultSchemaPath)
	})
	if defaultErr != nil {
		return model.Schema{}, defaultErr
	}
	return Clone(defaultSchema), nil
}

// MustDefault panics when the embedded schema is broken. Useful for wiring and
// tests.
func MustDefault() model.Schema {
	s, err := Default()
	if err != nil {
		panic(err)
	}
	return s
}

// LoadFile parses and validates a schema document on disk.
func LoadFile(path string) (model.Schema, error) {
	f, err := os.Open(path)
	if err != nil {
		return model.Schema{}, fmt.Errorf("schema: open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()
	return Load(f, path)
}

// Load parses and validates a JSON or YAML schema document.
func Load(r io.Reader, source string) (model.Schema, error) {
	if r == nil {
		return model.Schema{}, fmt.Errorf("schema: missing reader")
	}
	raw, err := io.ReadAll(r)
	if err != nil {
		return model.Schema{}, fmt.Errorf("schema: read %s: %w", source, err)
	}
	return Parse(raw, source)
}

// Parse decodes raw bytes, normalises defaults and validates the result.
func Parse(raw []byte, source string) (model.Schema, error) {
	s, err := decode(raw, source)
	if err != nil {
		return model.Schema{}, err
	}
	if err := Validate(s); err != nil {
		return model.Schema{}, fmt.Errorf("schema: %s: %w", source, err)
	}
	return s, nil
}

func decode(raw []byte, source string) (model.Schema, error) {
	var s model.Schema
	if len(bytes.TrimSpace(raw)) == 0 {
		return model.Schema{}, fmt.Errorf("schema: file %s is empty", source)
	}
	if err := json.Unmarshal(raw, &s); err != nil {
		s = model.Schema{}
		if err := yaml.Unmarshal(raw, &s); err != nil {
			return model.Schema{}, fmt.Errorf("schema: parse %s: invalid JSON or YAML: %w", source, err)
		}
	}
	normalise(&s)
	return s, nil
}

func normalise(s *model.Schema) {
	s.Root = "/" + strings.Trim(strings.TrimSpace(s.Root), "/")
	if exit := strings.TrimSpace(s.Exit); exit != "" {
		s.Exit = "/" + strings.Trim(exit, "/")
	}
	for i := range s.Steps {
		step := &s.Steps[i]
		step.Path = strings.Trim(strings.TrimSpace(step.Path), "/")
		if strings.TrimSpace(step.Label) == "" {
			step.Label = model.DefaultLabeler(step.Path)
		}
	}
	for gi := range s.Groups {
		group := &s.Groups[gi]
		if strings.TrimSpace(group.Label) == "" {
			group.Label = model.DefaultLabeler(group.Name)
		}
		for fi := range group.Fields {
			field := &group.Fields[fi]
			if strings.TrimSpace(field.Label) == "" {
				field.Label = model.DefaultLabeler(field.Name)
			}
			if field.Type == "" {
				field.Type = model.FieldTypeString
			}
			if field.Type == model.FieldTypeNumber && field.Default != nil {
				if number, ok := validation.Number(field.Default); ok {
					field.Default = number
				}
			}
		}
	}
}

// Clone deep-copies a schema.
func Clone(s model.Schema) model.Schema {
	out := s
	out.Steps = append([]model.StepSpec(nil), s.Steps...)
	out.Drivers = append([]model.Driver(nil), s.Drivers...)
	out.Criteria = append([]string(nil), s.Criteria...)
	out.Groups = make([]model.GroupSpec, len(s.Groups))
	for i, group := range s.Groups {
		cloned := group
		if group.SumTarget != nil {
			target := *group.SumTarget
			cloned.SumTarget = &target
		}
		cloned.Fields = make([]model.FieldSpec, len(group.Fields))
		for j, field := range group.Fields {
			f := field
			f.Enum = append([]string(nil), field.Enum...)
			f.Rules = make([]model.Rule, len(field.Rules))
			for k, rule := range field.Rules {
				r := rule
				if len(rule.Params) > 0 {
					r.Params = make(map[string]string, len(rule.Params))
					for key, value := range rule.Params {
						r.Params[key] = value
					}
				}
				f.Rules[k] = r
			}
			cloned.Fields[j] = f
		}
		out.Groups[i] = cloned
	}
	return out
}
