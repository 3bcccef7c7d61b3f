// Package validation implements the closed set of wizard validators
// (Required, Range, MinLength, SumEquals) behind one Evaluate contract.
// Failures are values, not errors: a Result lists the issues a UI renders
// inline next to the offending field or group.
package validation
