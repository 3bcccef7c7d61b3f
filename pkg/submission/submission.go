// Package submission hands a completed survey to its destination. Sinks
// receive a sanitised snapshot together with the derived scores.
package submission

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/goliatone/go-surveywizard/pkg/form"
	"github.com/goliatone/go-surveywizard/pkg/model"
	"github.com/goliatone/go-surveywizard/pkg/scoring"
)

// ErrNoSink is returned when a submission is attempted without a sink.
var ErrNoSink = errors.New("submission: no sink configured")

// Submission is the payload delivered to a Sink.
type Submission struct {
	ID          string         `json:"id"`
	SubmittedAt time.Time      `json:"submittedAt"`
	Values      form.Snapshot  `json:"values"`
	Scores      scoring.Scores `json:"scores"`
}

// Title returns the product title of the submitted survey.
func (s Submission) Title() string {
	title, _ := s.Values[model.GroupProductDetails]["title"].(string)
	return title
}

// Receipt acknowledges a stored submission. Summary is filled in by callers
// that render one.
type Receipt struct {
	ID          string         `json:"id"`
	SubmittedAt time.Time      `json:"submittedAt"`
	Sink        string         `json:"sink"`
	Title       string         `json:"title"`
	Scores      scoring.Scores `json:"scores"`
	Summary     string         `json:"summary,omitempty"`
}

// Sink stores or forwards submissions.
type Sink interface {
	Submit(ctx context.Context, sub Submission) (Receipt, error)
}

// New builds a sanitised submission with a fresh id.
func New(snapshot form.Snapshot, scores scoring.Scores, now time.Time) Submission {
	return Submission{
		ID:          uuid.NewString(),
		SubmittedAt: now.UTC(),
		Values:      Sanitize(snapshot),
		Scores:      scores,
	}
}

// NewReceipt builds the receipt for sub as stored by sink.
func NewReceipt(sink string, sub Submission) Receipt {
	return Receipt{
		ID:          sub.ID,
		SubmittedAt: sub.SubmittedAt,
		Sink:        sink,
		Title:       sub.Title(),
		Scores:      sub.Scores,
	}
}

// FuncSink adapts a function to the Sink interface.
type FuncSink func(ctx context.Context, sub Submission) (Receipt, error)

// Submit implements Sink.
func (f FuncSink) Submit(ctx context.Context, sub Submission) (Receipt, error) {
	if f == nil {
		return Receipt{}, ErrNoSink
	}
	return f(ctx, sub)
}
