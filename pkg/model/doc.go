// Package model defines the static survey schema the wizard is built from:
// ordered steps, the field groups each step edits, per-field validation rules
// and the constants (driver benchmarks, criteria catalogue) the derived score
// calculators read. Rules use canonical identifiers (required, min/max,
// minLength) with string parameters so schemas stay stable when serialised to
// YAML or JSON. Nothing in this package holds user input; see pkg/form for the
// mutable state built from a Schema.
package model
