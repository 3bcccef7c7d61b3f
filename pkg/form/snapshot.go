package form

import (
	"go.uber.org/zap"
)

// Snapshot is a JSON-serialisable copy of every field value, keyed by group
// then field.
type Snapshot map[string]map[string]any

// Snapshot deep-copies the current values.
func (s *State) Snapshot() Snapshot {
	out := make(Snapshot, len(s.order))
	for _, name := range s.order {
		out[name] = s.groups[name].Values()
	}
	return out
}

// Restore patches known groups and fields from snap without emitting events.
// Unknown entries and values a field cannot hold are skipped.
func (s *State) Restore(snap Snapshot) {
	for groupName, values := range snap {
		g, ok := s.groups[groupName]
		if !ok {
			s.logger.Debug("form restore skipped unknown group", zap.String("group", groupName))
			continue
		}
		for fieldName, value := range values {
			spec, ok := g.spec.Field(fieldName)
			if !ok {
				continue
			}
			normalised, ok := normaliseValue(spec, value)
			if !ok {
				s.logger.Debug("form restore skipped value",
					zap.String("group", groupName),
					zap.String("field", fieldName),
				)
				continue
			}
			g.values[fieldName] = normalised
		}
	}
}
