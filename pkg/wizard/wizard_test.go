package wizard_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-surveywizard/pkg/form"
	"github.com/goliatone/go-surveywizard/pkg/model"
	"github.com/goliatone/go-surveywizard/pkg/navigation"
	"github.com/goliatone/go-surveywizard/pkg/persistence"
	"github.com/goliatone/go-surveywizard/pkg/schema"
	"github.com/goliatone/go-surveywizard/pkg/submission"
	"github.com/goliatone/go-surveywizard/pkg/summary"
	"github.com/goliatone/go-surveywizard/pkg/wizard"
)

type recorder struct {
	messages []string
}

func (r *recorder) Notify(message string) {
	r.messages = append(r.messages, message)
}

func fill(t *testing.T, state *form.State) {
	t.Helper()
	set := func(group, field string, value any) {
		if _, err := state.SetField(group, field, value); err != nil {
			t.Fatalf("set %s.%s: %v", group, field, err)
		}
	}
	set(model.GroupProductDetails, "title", "Engagement <i>pulse</i>")
	set(model.GroupRespondents, "totalRespondents", 120)
	if err := state.AddCriterion("Gender", form.Option{Name: "F", Percentage: form.Percent(50)}); err != nil {
		t.Fatalf("add criterion: %v", err)
	}
	set(model.GroupImpactDrivers, "A", 10)
	for _, field := range []string{"Innovation", "Motivation", "Performance", "Autonomy", "Connection"} {
		set(model.GroupComments, field, "ok")
	}
}

func walkToEnd(t *testing.T, w *wizard.Wizard) {
	t.Helper()
	for i := 0; i < 5; i++ {
		if tr := w.Next(); tr.Outcome != navigation.OutcomeMoved {
			t.Fatalf("step %d: expected move, got %#v", i, tr)
		}
	}
}

func TestWizard_DenialNotifies(t *testing.T) {
	notes := &recorder{}
	w, err := wizard.New(schema.MustDefault(), wizard.WithNotifier(notes))
	if err != nil {
		t.Fatalf("new wizard: %v", err)
	}
	defer w.Close()

	tr := w.Next()
	if tr.Outcome != navigation.OutcomeDenied || w.Index() != 0 {
		t.Fatalf("expected denial, got %#v", tr)
	}
	if diff := cmp.Diff([]string{navigation.DenyMessage}, notes.messages); diff != "" {
		t.Fatalf("notifications mismatch (-want +got):\n%s", diff)
	}
}

func TestWizard_FinishSubmitsResetsAndClears(t *testing.T) {
	ctx := context.Background()
	store := persistence.NewMemoryStore()
	var got submission.Submission
	sink := submission.FuncSink(func(_ context.Context, sub submission.Submission) (submission.Receipt, error) {
		got = sub
		return submission.NewReceipt("test", sub), nil
	})
	renderer, err := summary.New()
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	notes := &recorder{}

	w, err := wizard.New(schema.MustDefault(),
		wizard.WithStore(store),
		wizard.WithSink(sink),
		wizard.WithSummary(renderer),
		wizard.WithNotifier(notes),
	)
	if err != nil {
		t.Fatalf("new wizard: %v", err)
	}
	defer w.Close()

	fill(t, w.State())
	if _, ok, _ := store.Get(ctx, persistence.StorageKey); !ok {
		t.Fatalf("expected edits to be persisted")
	}
	if _, err := w.Finish(ctx); !errors.Is(err, wizard.ErrNotAtLastStep) {
		t.Fatalf("expected ErrNotAtLastStep, got %v", err)
	}
	walkToEnd(t, w)

	receipt, err := w.Finish(ctx)
	if err != nil {
		t.Fatalf("finish: %v", err)
	}
	if receipt == nil || receipt.Title != "Engagement pulse" || receipt.Summary == "" {
		t.Fatalf("unexpected receipt %#v", receipt)
	}
	if got.Scores.ENPS != 35 || got.Values[model.GroupRespondents]["totalRespondents"] != 120.0 {
		t.Fatalf("unexpected submission %#v", got)
	}

	if _, ok, _ := store.Get(ctx, persistence.StorageKey); ok {
		t.Fatalf("snapshot must be deleted after finish")
	}
	fresh, _ := form.New(schema.MustDefault())
	if diff := cmp.Diff(fresh.Snapshot(), w.State().Snapshot()); diff != "" {
		t.Fatalf("state must be reset (-want +got):\n%s", diff)
	}
	if w.Index() != navigation.Exited || w.Location() != "/scenarios" {
		t.Fatalf("expected exit, at %d %q", w.Index(), w.Location())
	}
	if diff := cmp.Diff([]string{wizard.SubmittedMessage}, notes.messages); diff != "" {
		t.Fatalf("notifications mismatch (-want +got):\n%s", diff)
	}

	again, err := w.Finish(ctx)
	if err != nil || again != nil {
		t.Fatalf("second finish must be a no-op, got %#v %v", again, err)
	}
}

func TestWizard_SinkFailureKeepsState(t *testing.T) {
	ctx := context.Background()
	store := persistence.NewMemoryStore()
	boom := errors.New("downstream unavailable")
	w, err := wizard.New(schema.MustDefault(),
		wizard.WithStore(store),
		wizard.WithSink(submission.FuncSink(func(context.Context, submission.Submission) (submission.Receipt, error) {
			return submission.Receipt{}, boom
		})),
	)
	if err != nil {
		t.Fatalf("new wizard: %v", err)
	}
	defer w.Close()

	fill(t, w.State())
	walkToEnd(t, w)
	before := w.State().Snapshot()

	_, err = w.Finish(ctx)
	var submitErr *wizard.SubmitError
	if !errors.As(err, &submitErr) || !errors.Is(err, boom) {
		t.Fatalf("expected SubmitError wrapping boom, got %v", err)
	}
	if diff := cmp.Diff(before, w.State().Snapshot()); diff != "" {
		t.Fatalf("state must survive a failed submit (-want +got):\n%s", diff)
	}
	if _, ok, _ := store.Get(ctx, persistence.StorageKey); !ok {
		t.Fatalf("snapshot must survive a failed submit")
	}
	if w.Index() != 5 {
		t.Fatalf("expected to stay on the last step, got %d", w.Index())
	}
}

func TestWizard_ResumesFromStore(t *testing.T) {
	store := persistence.NewMemoryStore()
	first, err := wizard.New(schema.MustDefault(), wizard.WithStore(store))
	if err != nil {
		t.Fatalf("new wizard: %v", err)
	}
	fill(t, first.State())
	first.Close()

	second, err := wizard.New(schema.MustDefault(), wizard.WithStore(store))
	if err != nil {
		t.Fatalf("new wizard: %v", err)
	}
	defer second.Close()
	if !second.Restored() {
		t.Fatalf("expected the session to resume")
	}
	if diff := cmp.Diff(first.State().Snapshot(), second.State().Snapshot()); diff != "" {
		t.Fatalf("resumed state mismatch (-want +got):\n%s", diff)
	}
	if second.Scores().DriverTotal != 100 {
		t.Fatalf("scores should reflect the restored state, got %#v", second.Scores())
	}
	if tr := second.Navigate("/survey/comments"); tr.Outcome != navigation.OutcomeMoved {
		t.Fatalf("restored state should unlock deep links, got %#v", tr)
	}
}
