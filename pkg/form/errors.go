package form

import "fmt"

// UnknownStepError is returned when a group name does not exist in the schema.
type UnknownStepError struct {
	Group string
}

func (e *UnknownStepError) Error() string {
	return fmt.Sprintf("form: unknown step group %q", e.Group)
}

// UnknownFieldError is returned when a field is not part of its group.
type UnknownFieldError struct {
	Group string
	Field string
}

func (e *UnknownFieldError) Error() string {
	return fmt.Sprintf("form: unknown field %q in group %q", e.Field, e.Group)
}

// IndexOutOfRangeError reports a criterion or option index outside the list.
type IndexOutOfRangeError struct {
	Kind  string
	Index int
	Len   int
}

func (e *IndexOutOfRangeError) Error() string {
	return fmt.Sprintf("form: %s index %d out of range [0,%d)", e.Kind, e.Index, e.Len)
}

// InvalidValueError reports a value a field cannot hold: the wrong type, or a
// number outside the finite float64 range.
type InvalidValueError struct {
	Group string
	Field string
	Value any
}

func (e *InvalidValueError) Error() string {
	return fmt.Sprintf("form: field %q in group %q does not accept %v (%T)", e.Field, e.Group, e.Value, e.Value)
}
