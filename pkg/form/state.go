package form

import (
	"fmt"
	"reflect"
	"strings"

	"go.uber.org/zap"

	"github.com/goliatone/go-surveywizard/pkg/model"
	"github.com/goliatone/go-surveywizard/pkg/validation"
)

// StateOption customises a State.
type StateOption func(*State)

// WithLogger attaches a logger used for debug traces of state changes.
func WithLogger(logger *zap.Logger) StateOption {
	return func(s *State) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// State is the ordered set of field groups for one wizard session.
type State struct {
	schema model.Schema
	order  []string
	groups map[string]*Group

	listGroup string
	listField string

	logger      *zap.Logger
	subscribers []subscriber
	nextID      int
	queue       []Event
	dispatching bool
}

// New builds a State populated with schema defaults.
func New(schema model.Schema, opts ...StateOption) (*State, error) {
	s := &State{
		schema: schema,
		groups: make(map[string]*Group, len(schema.Groups)),
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	for _, spec := range schema.Groups {
		if _, exists := s.groups[spec.Name]; exists {
			return nil, fmt.Errorf("form: duplicate group %q", spec.Name)
		}
		group, err := newGroup(spec)
		if err != nil {
			return nil, fmt.Errorf("form: group %q: %w", spec.Name, err)
		}
		s.groups[spec.Name] = group
		s.order = append(s.order, spec.Name)
		for _, field := range spec.Fields {
			if field.Type == model.FieldTypeList && s.listGroup == "" {
				s.listGroup, s.listField = spec.Name, field.Name
			}
		}
	}
	return s, nil
}

// Schema returns the schema the state was built from.
func (s *State) Schema() model.Schema {
	return s.schema
}

// GroupNames lists group names in schema order.
func (s *State) GroupNames() []string {
	return append([]string(nil), s.order...)
}

// Group returns the named group.
func (s *State) Group(name string) (*Group, error) {
	group, ok := s.groups[name]
	if !ok {
		return nil, &UnknownStepError{Group: name}
	}
	return group, nil
}

// Field returns the current value of group.field.
func (s *State) Field(group, field string) (any, error) {
	g, err := s.Group(group)
	if err != nil {
		return nil, err
	}
	value, ok := g.Value(field)
	if !ok {
		return nil, &UnknownFieldError{Group: group, Field: field}
	}
	return value, nil
}

// SetField stores value, re-validates the field and returns its result. The
// value is stored even when it fails validation. A change event is emitted
// only when the stored value actually changed.
func (s *State) SetField(group, field string, value any) (validation.Result, error) {
	g, err := s.Group(group)
	if err != nil {
		return validation.Result{}, err
	}
	spec, ok := g.spec.Field(field)
	if !ok {
		return validation.Result{}, &UnknownFieldError{Group: group, Field: field}
	}
	normalised, ok := normaliseValue(spec, value)
	if !ok {
		return validation.Result{}, &InvalidValueError{Group: group, Field: field, Value: value}
	}

	previous := g.values[field]
	g.values[field] = normalised
	result := g.FieldResult(field)

	if !reflect.DeepEqual(previous, normalised) {
		kind := EventFieldChanged
		if spec.Type == model.FieldTypeList {
			kind = EventCriteriaChanged
		}
		s.logger.Debug("form field changed",
			zap.String("group", group),
			zap.String("field", field),
			zap.Bool("valid", result.Valid),
		)
		s.emit(Event{Kind: kind, Group: group, Field: field, Value: cloneValue(normalised)})
	}
	return result, nil
}

// GroupResult evaluates every validator of the named group.
func (s *State) GroupResult(name string) (validation.Result, error) {
	g, err := s.Group(name)
	if err != nil {
		return validation.Result{}, err
	}
	return g.Result(), nil
}

// IsGroupValid reports whether the named group passes every validator. Unknown
// groups are never valid.
func (s *State) IsGroupValid(name string) bool {
	g, err := s.Group(name)
	if err != nil {
		return false
	}
	return g.Valid()
}

// Valid reports whether every group is valid.
func (s *State) Valid() bool {
	for _, name := range s.order {
		if !s.groups[name].Valid() {
			return false
		}
	}
	return true
}

// Errors returns the current issue messages keyed by "group.field", with
// group-level issues keyed by the group name. Valid entries are omitted.
func (s *State) Errors() map[string][]string {
	out := make(map[string][]string)
	for _, name := range s.order {
		g := s.groups[name]
		for _, field := range g.spec.Fields {
			if res := g.FieldResult(field.Name); !res.Valid {
				out[name+"."+field.Name] = res.Messages()
			}
		}
		if res := g.GroupLevelResult(); !res.Valid {
			out[name] = res.Messages()
		}
	}
	return out
}

// Reset restores every group to its schema defaults and emits EventReset.
func (s *State) Reset() {
	for _, name := range s.order {
		s.groups[name].reset()
	}
	s.logger.Debug("form reset")
	s.emit(Event{Kind: EventReset})
}

func normaliseValue(spec model.FieldSpec, value any) (any, bool) {
	if spec.Type == model.FieldTypeList {
		return toCriteria(value)
	}
	if validation.NonFinite(value) {
		return nil, false
	}
	switch typed := value.(type) {
	case nil:
		return nil, true
	case string:
		return typed, true
	case bool:
		return nil, false
	}
	if number, ok := validation.Number(value); ok {
		return number, true
	}
	return nil, false
}

func blank(name string) bool {
	return strings.TrimSpace(name) == ""
}
