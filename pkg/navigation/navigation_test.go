package navigation_test

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-surveywizard/pkg/form"
	"github.com/goliatone/go-surveywizard/pkg/model"
	"github.com/goliatone/go-surveywizard/pkg/navigation"
	"github.com/goliatone/go-surveywizard/pkg/schema"
)

func setup(t *testing.T) (*form.State, *navigation.Sequencer) {
	t.Helper()
	s := schema.MustDefault()
	state, err := form.New(s)
	if err != nil {
		t.Fatalf("new state: %v", err)
	}
	return state, navigation.NewSequencer(s, state)
}

func completeProduct(t *testing.T, state *form.State) {
	t.Helper()
	if _, err := state.SetField(model.GroupProductDetails, "title", "Pulse survey"); err != nil {
		t.Fatalf("set title: %v", err)
	}
}

func TestNext_DeniedUntilGroupValid(t *testing.T) {
	state, seq := setup(t)
	before := state.Snapshot()

	tr := seq.Next()
	want := navigation.Transition{
		From:     0,
		To:       0,
		Outcome:  navigation.OutcomeDenied,
		Message:  navigation.DenyMessage,
		Blocking: model.GroupProductDetails,
		Location: "/survey/select-product",
	}
	if diff := cmp.Diff(want, tr); diff != "" {
		t.Fatalf("transition mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(before, state.Snapshot()); diff != "" {
		t.Fatalf("denial must not mutate state (-want +got):\n%s", diff)
	}

	completeProduct(t, state)
	tr = seq.Next()
	if tr.Outcome != navigation.OutcomeMoved || seq.Index() != 1 {
		t.Fatalf("expected move to step 1, got %#v", tr)
	}
	if seq.Location() != "/survey/total-respondents" {
		t.Fatalf("unexpected location %q", seq.Location())
	}
}

func TestPrevious_Unconditional(t *testing.T) {
	state, seq := setup(t)
	if tr := seq.Previous(); tr.Outcome != navigation.OutcomeNoop {
		t.Fatalf("previous on the first step should be a no-op, got %#v", tr)
	}
	completeProduct(t, state)
	seq.Next()
	_, _ = state.SetField(model.GroupProductDetails, "title", "")
	if tr := seq.Previous(); tr.Outcome != navigation.OutcomeMoved || seq.Index() != 0 {
		t.Fatalf("expected unconditional move back, got %#v", tr)
	}
}

func TestNavigate_DeepLinkChecksIntermediateSteps(t *testing.T) {
	state, seq := setup(t)
	completeProduct(t, state)
	_, _ = state.SetField(model.GroupRespondents, "totalRespondents", 100)

	// impactDrivers defaults add up to 101, so the enps step stays locked.
	tr := seq.Navigate("/survey/enps")
	if tr.Outcome != navigation.OutcomeDenied || tr.Blocking != model.GroupImpactDrivers {
		t.Fatalf("expected denial on impactDrivers, got %#v", tr)
	}
	if seq.Index() != 0 {
		t.Fatalf("index must not move on denial, got %d", seq.Index())
	}

	_, _ = state.SetField(model.GroupImpactDrivers, "A", 10)
	tr = seq.Navigate("/survey/enps?tab=1")
	if tr.Outcome != navigation.OutcomeMoved || seq.Index() != 4 {
		t.Fatalf("expected jump to enps, got %#v", tr)
	}

	if tr := seq.Navigate("/survey/select-product"); tr.Outcome != navigation.OutcomeMoved || seq.Index() != 0 {
		t.Fatalf("backward deep link should move, got %#v", tr)
	}
	if tr := seq.Navigate("/somewhere/else"); tr.Outcome != navigation.OutcomeExited || seq.Index() != navigation.Exited {
		t.Fatalf("unknown location should exit, got %#v", tr)
	}
	if seq.Location() != "/scenarios" {
		t.Fatalf("unexpected exit location %q", seq.Location())
	}
}

func TestFinish_OnlyFromLastStepAndIdempotent(t *testing.T) {
	state, seq := setup(t)
	if _, err := seq.Finish(); !errors.Is(err, navigation.ErrNotAtLastStep) {
		t.Fatalf("expected ErrNotAtLastStep, got %v", err)
	}

	completeProduct(t, state)
	_, _ = state.SetField(model.GroupRespondents, "totalRespondents", 10)
	_, _ = state.SetField(model.GroupImpactDrivers, "I", 49)
	if tr := seq.Navigate("/survey/comments"); tr.Outcome != navigation.OutcomeMoved {
		t.Fatalf("expected to reach comments, got %#v", tr)
	}
	if tr := seq.Next(); tr.Outcome != navigation.OutcomeNoop {
		t.Fatalf("next on the last step should be a no-op, got %#v", tr)
	}

	tr, err := seq.Finish()
	if err != nil || tr.Outcome != navigation.OutcomeFinished || tr.To != navigation.Exited {
		t.Fatalf("expected finish, got %#v %v", tr, err)
	}
	tr, err = seq.Finish()
	if err != nil || tr.Outcome != navigation.OutcomeNoop {
		t.Fatalf("second finish should be a no-op, got %#v %v", tr, err)
	}
}

func TestCancel_PreservesState(t *testing.T) {
	state, seq := setup(t)
	completeProduct(t, state)
	before := state.Snapshot()
	if tr := seq.Cancel(); tr.Outcome != navigation.OutcomeExited || tr.Location != "/scenarios" {
		t.Fatalf("unexpected cancel transition %#v", tr)
	}
	if diff := cmp.Diff(before, state.Snapshot()); diff != "" {
		t.Fatalf("cancel must preserve state (-want +got):\n%s", diff)
	}
	if tr := seq.Cancel(); tr.Outcome != navigation.OutcomeNoop {
		t.Fatalf("second cancel should be a no-op, got %#v", tr)
	}
}

func TestDescriptors(t *testing.T) {
	state, seq := setup(t)
	completeProduct(t, state)
	seq.Next()

	var labels []string
	var current []bool
	for _, d := range seq.Descriptors() {
		labels = append(labels, d.Label)
		current = append(current, d.Current)
	}
	wantLabels := []string{"Select Product", "Total Respondents", "Select Criteria", "Set Impact Drivers", "Enps", "Comments"}
	if diff := cmp.Diff(wantLabels, labels); diff != "" {
		t.Fatalf("labels mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]bool{false, true, false, false, false, false}, current); diff != "" {
		t.Fatalf("current mismatch (-want +got):\n%s", diff)
	}
	first := seq.Descriptors()[0]
	if first.Path != "/survey/select-product" || !first.Valid || !first.Required {
		t.Fatalf("unexpected first descriptor %#v", first)
	}
}

func TestGuard_FirstStepHasNoGuard(t *testing.T) {
	state, seq := setup(t)
	guard := navigation.NewGuard(state)
	steps := seq.Steps()
	if d := guard.Check(steps[0]); !d.Allowed {
		t.Fatalf("first step must always be allowed")
	}
	if d := guard.Check(steps[1]); d.Allowed || d.Message != navigation.DenyMessage {
		t.Fatalf("unexpected decision %#v", d)
	}
}
