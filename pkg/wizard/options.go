package wizard

import (
	"time"

	"go.uber.org/zap"

	"github.com/goliatone/go-surveywizard/pkg/persistence"
	"github.com/goliatone/go-surveywizard/pkg/submission"
	"github.com/goliatone/go-surveywizard/pkg/summary"
)

// Notifier surfaces user-facing messages such as guard denials.
type Notifier interface {
	Notify(message string)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(message string)

// Notify implements Notifier.
func (f NotifierFunc) Notify(message string) {
	if f != nil {
		f(message)
	}
}

// Option customises a Wizard.
type Option func(*Wizard)

// WithStore persists the session snapshot in store.
func WithStore(store persistence.Store) Option {
	return func(w *Wizard) {
		w.store = store
	}
}

// WithSink sets the submission destination. Defaults to a LogSink.
func WithSink(sink submission.Sink) Option {
	return func(w *Wizard) {
		if sink != nil {
			w.sink = sink
		}
	}
}

// WithLogger sets the logger shared with the state and the persistence
// adapter.
func WithLogger(logger *zap.Logger) Option {
	return func(w *Wizard) {
		if logger != nil {
			w.logger = logger
		}
	}
}

// WithNotifier receives user-facing messages.
func WithNotifier(n Notifier) Option {
	return func(w *Wizard) {
		if n != nil {
			w.notifier = n
		}
	}
}

// WithSummary renders a completion summary into every receipt.
func WithSummary(r *summary.Renderer) Option {
	return func(w *Wizard) {
		w.summary = r
	}
}

// WithStoreTimeout bounds snapshot reads and writes.
func WithStoreTimeout(timeout time.Duration) Option {
	return func(w *Wizard) {
		if timeout > 0 {
			w.storeTimeout = timeout
		}
	}
}

// WithClock overrides the submission timestamp source.
func WithClock(now func() time.Time) Option {
	return func(w *Wizard) {
		if now != nil {
			w.now = now
		}
	}
}
