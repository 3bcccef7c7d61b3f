// Package navigation sequences the wizard steps and guards forward movement:
// a step can only be entered once the group of the step before it is valid.
package navigation
