package navigation

import "github.com/goliatone/go-surveywizard/pkg/form"

// DenyMessage is shown when a step is entered before its predecessor is
// complete.
const DenyMessage = "Please complete the current step before proceeding."

// Decision is the outcome of a guard check.
type Decision struct {
	Allowed  bool
	Message  string
	Blocking string
}

// Guard checks step entry against the form state. It never mutates state.
type Guard struct {
	state *form.State
}

// NewGuard binds a guard to state.
func NewGuard(state *form.State) Guard {
	return Guard{state: state}
}

// Check allows entry when the step has no guard group or the group is valid.
func (g Guard) Check(step Step) Decision {
	if step.Guard == "" {
		return Decision{Allowed: true}
	}
	if g.state != nil && g.state.IsGroupValid(step.Guard) {
		return Decision{Allowed: true}
	}
	return Decision{Allowed: false, Message: DenyMessage, Blocking: step.Guard}
}
