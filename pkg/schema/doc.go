// Package schema loads and checks the static survey definition. The default
// schema (six steps from product selection to per-driver comments) is
// embedded as YAML; callers can supply their own document with Load and run
// Lint to collect every problem at once.
package schema
