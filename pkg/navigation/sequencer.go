package navigation

import (
	"errors"
	"strings"

	"github.com/goliatone/go-surveywizard/pkg/form"
	"github.com/goliatone/go-surveywizard/pkg/model"
)

// Exited is the index reported once the user left the wizard.
const Exited = -1

// ErrNotAtLastStep is returned when finishing from any step but the last.
var ErrNotAtLastStep = errors.New("navigation: finish is only available on the last step")

// Outcome classifies a transition.
type Outcome string

const (
	OutcomeMoved    Outcome = "moved"
	OutcomeDenied   Outcome = "denied"
	OutcomeNoop     Outcome = "noop"
	OutcomeExited   Outcome = "exited"
	OutcomeFinished Outcome = "finished"
)

// Transition records one navigation attempt. From and To are step indexes,
// Exited when outside the wizard. Message and Blocking are set on denial.
type Transition struct {
	From     int     `json:"from"`
	To       int     `json:"to"`
	Outcome  Outcome `json:"outcome"`
	Message  string  `json:"message,omitempty"`
	Blocking string  `json:"blocking,omitempty"`
	Location string  `json:"location"`
}

// Sequencer tracks the current step of one wizard session.
type Sequencer struct {
	steps []Step
	root  string
	exit  string
	guard Guard
	state *form.State
	index int
}

// NewSequencer starts at the first step.
func NewSequencer(schema model.Schema, state *form.State) *Sequencer {
	root := schema.Root
	if root == "" {
		root = "/"
	}
	return &Sequencer{
		steps: Steps(schema),
		root:  root,
		exit:  schema.Exit,
		guard: NewGuard(state),
		state: state,
	}
}

// Steps returns the ordered steps.
func (s *Sequencer) Steps() []Step {
	return append([]Step(nil), s.steps...)
}

// Index returns the current step index or Exited.
func (s *Sequencer) Index() int {
	return s.index
}

// Current returns the current step; ok is false once exited.
func (s *Sequencer) Current() (Step, bool) {
	if s.index == Exited || s.index >= len(s.steps) {
		return Step{}, false
	}
	return s.steps[s.index], true
}

// Last reports whether the current step is the final one.
func (s *Sequencer) Last() bool {
	return s.index != Exited && s.index == len(s.steps)-1
}

// Location returns the route of the current position.
func (s *Sequencer) Location() string {
	return s.locationOf(s.index)
}

// Descriptors derives the paginator entries for the current state.
func (s *Sequencer) Descriptors() []StepDescriptor {
	out := make([]StepDescriptor, 0, len(s.steps))
	for _, step := range s.steps {
		out = append(out, StepDescriptor{
			Label:    step.Label,
			Path:     step.Location(s.root),
			Required: true,
			Valid:    s.state == nil || s.state.IsGroupValid(step.Group),
			Current:  step.Index == s.index,
		})
	}
	return out
}

// Next advances one step when the guard of the next step allows it.
func (s *Sequencer) Next() Transition {
	if s.index == Exited || s.index >= len(s.steps)-1 {
		return s.noop()
	}
	return s.forward(s.index + 1)
}

// Previous goes back one step without any check.
func (s *Sequencer) Previous() Transition {
	if s.index <= 0 {
		return s.noop()
	}
	return s.move(s.index-1, OutcomeMoved)
}

// Cancel leaves the wizard. State is preserved.
func (s *Sequencer) Cancel() Transition {
	if s.index == Exited {
		return s.noop()
	}
	return s.move(Exited, OutcomeExited)
}

// Finish leaves the wizard from the last step. Finishing again once exited is
// a no-op.
func (s *Sequencer) Finish() (Transition, error) {
	if s.index == Exited {
		return s.noop(), nil
	}
	if !s.Last() {
		return s.noop(), ErrNotAtLastStep
	}
	return s.move(Exited, OutcomeFinished), nil
}

// Navigate resolves an external location to a step. Forward jumps pass the
// guard of every step on the way; the first denial keeps the current step.
// Locations that match no step leave the wizard.
func (s *Sequencer) Navigate(location string) Transition {
	target := s.resolve(location)
	switch {
	case target == s.index:
		return s.noop()
	case target == Exited:
		return s.move(Exited, OutcomeExited)
	case target < s.index:
		return s.move(target, OutcomeMoved)
	default:
		return s.forward(target)
	}
}

// forward checks the guards of every step after the current one up to target.
func (s *Sequencer) forward(target int) Transition {
	for i := s.index + 1; i <= target; i++ {
		decision := s.guard.Check(s.steps[i])
		if !decision.Allowed {
			return Transition{
				From:     s.index,
				To:       s.index,
				Outcome:  OutcomeDenied,
				Message:  decision.Message,
				Blocking: decision.Blocking,
				Location: s.Location(),
			}
		}
	}
	return s.move(target, OutcomeMoved)
}

func (s *Sequencer) resolve(location string) int {
	location = strings.TrimSpace(location)
	if location == "" {
		return Exited
	}
	for _, step := range s.steps {
		if strings.Contains(location, step.Location(s.root)) {
			return step.Index
		}
	}
	return Exited
}

func (s *Sequencer) move(to int, outcome Outcome) Transition {
	from := s.index
	s.index = to
	return Transition{From: from, To: to, Outcome: outcome, Location: s.Location()}
}

func (s *Sequencer) noop() Transition {
	return Transition{From: s.index, To: s.index, Outcome: OutcomeNoop, Location: s.Location()}
}

func (s *Sequencer) locationOf(index int) string {
	if index == Exited || index >= len(s.steps) {
		return s.exit
	}
	return s.steps[index].Location(s.root)
}
