// Package form holds the composite state of the survey wizard: one field group
// per step, built from a model.Schema, with per-field and group-level
// validation, the editable criteria list and synchronous change
// notifications.
//
// A State is owned by exactly one wizard session and is not safe for
// concurrent use; callers serialise access.
package form
