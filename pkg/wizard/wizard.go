// Package wizard coordinates one survey session: the form state, step
// sequencing, snapshot persistence, live scores and the final submission.
package wizard

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/goliatone/go-surveywizard/pkg/form"
	"github.com/goliatone/go-surveywizard/pkg/model"
	"github.com/goliatone/go-surveywizard/pkg/navigation"
	"github.com/goliatone/go-surveywizard/pkg/persistence"
	"github.com/goliatone/go-surveywizard/pkg/scoring"
	"github.com/goliatone/go-surveywizard/pkg/submission"
	"github.com/goliatone/go-surveywizard/pkg/summary"
)

// SubmittedMessage is sent to the notifier after a successful finish.
const SubmittedMessage = "Form submitted successfully!"

// ErrNotAtLastStep is returned by Finish before the last step is reached.
var ErrNotAtLastStep = navigation.ErrNotAtLastStep

// SubmitError wraps a sink failure. State is left untouched when it occurs.
type SubmitError struct {
	Err error
}

func (e *SubmitError) Error() string {
	return fmt.Sprintf("wizard: submit survey: %v", e.Err)
}

func (e *SubmitError) Unwrap() error {
	return e.Err
}

// Wizard owns the state of a single session.
type Wizard struct {
	schema model.Schema
	state  *form.State
	seq    *navigation.Sequencer
	board  *scoring.Board

	store        persistence.Store
	adapter      *persistence.Adapter
	storeTimeout time.Duration
	restored     bool

	sink     submission.Sink
	summary  *summary.Renderer
	notifier Notifier
	logger   *zap.Logger
	now      func() time.Time
}

// New builds a session from schema, rehydrating from the store when one is
// configured and holds a snapshot.
func New(schema model.Schema, opts ...Option) (*Wizard, error) {
	w := &Wizard{
		schema:       schema,
		storeTimeout: 2 * time.Second,
		notifier:     NotifierFunc(nil),
		logger:       zap.NewNop(),
		now:          time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(w)
		}
	}
	if w.sink == nil {
		w.sink = submission.NewLogSink(w.logger)
	}

	state, err := form.New(schema, form.WithLogger(w.logger))
	if err != nil {
		return nil, fmt.Errorf("wizard: %w", err)
	}
	w.state = state

	if w.store != nil {
		w.adapter = persistence.NewAdapter(w.store,
			persistence.WithLogger(w.logger),
			persistence.WithTimeout(w.storeTimeout),
		)
		ctx, cancel := context.WithTimeout(context.Background(), w.storeTimeout)
		w.restored = w.adapter.Attach(ctx, state)
		cancel()
	}

	w.board = scoring.NewBoard(state)
	w.seq = navigation.NewSequencer(schema, state)
	return w, nil
}

// Schema returns the survey schema.
func (w *Wizard) Schema() model.Schema { return w.schema }

// State exposes the form state for field edits.
func (w *Wizard) State() *form.State { return w.state }

// Scores returns the latest derived scores.
func (w *Wizard) Scores() scoring.Scores { return w.board.Scores() }

// Steps returns the paginator descriptors.
func (w *Wizard) Steps() []navigation.StepDescriptor { return w.seq.Descriptors() }

// Index returns the current step index or navigation.Exited.
func (w *Wizard) Index() int { return w.seq.Index() }

// Current returns the current step.
func (w *Wizard) Current() (navigation.Step, bool) { return w.seq.Current() }

// Location returns the route of the current position.
func (w *Wizard) Location() string { return w.seq.Location() }

// Restored reports whether the session resumed from a stored snapshot.
func (w *Wizard) Restored() bool { return w.restored }

// Degraded reports whether snapshot storage is currently failing.
func (w *Wizard) Degraded() bool { return w.adapter.Degraded() }

// Next advances one step. A guard denial is sent to the notifier.
func (w *Wizard) Next() navigation.Transition {
	return w.observe("next", w.seq.Next())
}

// Previous goes back one step.
func (w *Wizard) Previous() navigation.Transition {
	return w.observe("previous", w.seq.Previous())
}

// Cancel leaves the wizard, keeping the state and its snapshot.
func (w *Wizard) Cancel() navigation.Transition {
	return w.observe("cancel", w.seq.Cancel())
}

// Navigate follows an external location such as a deep link.
func (w *Wizard) Navigate(location string) navigation.Transition {
	return w.observe("navigate", w.seq.Navigate(location))
}

// Finish submits the survey from the last step. On success the state is
// reset, the stored snapshot deleted and the wizard exits. A sink failure
// leaves everything in place. Finishing after exit returns nil, nil.
func (w *Wizard) Finish(ctx context.Context) (*submission.Receipt, error) {
	if w.seq.Index() == navigation.Exited {
		return nil, nil
	}
	if !w.seq.Last() {
		return nil, ErrNotAtLastStep
	}

	sub := submission.New(w.state.Snapshot(), w.board.Scores(), w.now())
	receipt, err := w.sink.Submit(ctx, sub)
	if err != nil {
		w.logger.Error("survey submission failed", zap.String("id", sub.ID), zap.Error(err))
		return nil, &SubmitError{Err: err}
	}
	if w.summary != nil {
		text, err := w.summary.Render(receipt)
		if err != nil {
			w.logger.Warn("summary rendering failed", zap.String("id", sub.ID), zap.Error(err))
		}
		receipt.Summary = text
	}

	w.state.Reset()
	w.adapter.Clear(ctx)
	if _, err := w.seq.Finish(); err != nil {
		return nil, err
	}
	w.logger.Info("survey finished", zap.String("id", receipt.ID), zap.String("sink", receipt.Sink))
	w.notifier.Notify(SubmittedMessage)
	return &receipt, nil
}

// Close detaches listeners from the state.
func (w *Wizard) Close() {
	w.board.Close()
	w.adapter.Detach()
}

func (w *Wizard) observe(action string, tr navigation.Transition) navigation.Transition {
	if tr.Outcome == navigation.OutcomeDenied {
		w.logger.Debug("navigation denied",
			zap.String("action", action),
			zap.String("blocking", tr.Blocking),
			zap.Int("step", tr.From),
		)
		w.notifier.Notify(tr.Message)
	}
	return tr
}
