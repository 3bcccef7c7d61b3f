// Package scenarios is the demo listing the wizard exits to. It serves a
// small in-memory collection with a simulated network delay and a debounced
// live search.
package scenarios
