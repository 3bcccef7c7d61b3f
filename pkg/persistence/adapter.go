package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/goliatone/go-surveywizard/pkg/form"
)

// StorageKey is the fixed key holding the serialised snapshot.
const StorageKey = "surveyFormData"

const defaultTimeout = 2 * time.Second

// ErrCorruptSnapshot marks a stored snapshot that cannot be decoded.
var ErrCorruptSnapshot = errors.New("persistence: corrupt snapshot")

// Option customises an Adapter.
type Option func(*Adapter)

// WithLogger sets the logger used to report storage failures.
func WithLogger(logger *zap.Logger) Option {
	return func(a *Adapter) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// WithTimeout bounds every store call made from change notifications.
func WithTimeout(timeout time.Duration) Option {
	return func(a *Adapter) {
		if timeout > 0 {
			a.timeout = timeout
		}
	}
}

// Adapter mirrors a form.State into a Store.
type Adapter struct {
	store    Store
	logger   *zap.Logger
	timeout  time.Duration
	degraded atomic.Bool
	detach   func()
}

// NewAdapter constructs an Adapter over store.
func NewAdapter(store Store, opts ...Option) *Adapter {
	a := &Adapter{
		store:   store,
		logger:  zap.NewNop(),
		timeout: defaultTimeout,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(a)
		}
	}
	return a
}

// Attach rehydrates state from the stored snapshot, when one exists, and then
// persists every subsequent change. Reset events are not persisted. Attach
// returns whether a snapshot was restored.
func (a *Adapter) Attach(ctx context.Context, state *form.State) bool {
	if a == nil || state == nil {
		return false
	}
	restored := false
	snap, ok, err := a.Load(ctx)
	switch {
	case errors.Is(err, ErrCorruptSnapshot):
		a.logger.Warn("ignoring stored snapshot", zap.String("key", StorageKey), zap.Error(err))
	case err != nil:
		a.fail("load", err)
	case ok:
		state.Restore(snap)
		restored = true
	}

	if a.detach != nil {
		a.detach()
	}
	a.detach = state.Subscribe(func(evt form.Event) {
		if evt.Kind == form.EventReset {
			return
		}
		saveCtx, cancel := context.WithTimeout(context.Background(), a.timeout)
		defer cancel()
		if err := a.Save(saveCtx, state.Snapshot()); err != nil {
			a.fail("save", err)
		}
	})
	return restored
}

// Detach stops persisting changes.
func (a *Adapter) Detach() {
	if a == nil || a.detach == nil {
		return
	}
	a.detach()
	a.detach = nil
}

// Load reads and decodes the stored snapshot. A snapshot that fails to decode
// is reported as an error and should be ignored by callers.
func (a *Adapter) Load(ctx context.Context) (form.Snapshot, bool, error) {
	if a == nil || a.store == nil {
		return nil, false, nil
	}
	raw, ok, err := a.store.Get(ctx, StorageKey)
	if err != nil || !ok {
		return nil, false, err
	}
	var snap form.Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return nil, false, fmt.Errorf("%w: %v", ErrCorruptSnapshot, err)
	}
	return snap, true, nil
}

// Save overwrites the stored snapshot.
func (a *Adapter) Save(ctx context.Context, snap form.Snapshot) error {
	if a == nil || a.store == nil {
		return nil
	}
	raw, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("persistence: encode snapshot: %w", err)
	}
	if err := a.store.Set(ctx, StorageKey, raw); err != nil {
		return err
	}
	if a.degraded.Swap(false) {
		a.logger.Info("snapshot storage recovered")
	}
	return nil
}

// Clear removes the stored snapshot. Failures are logged, not returned.
func (a *Adapter) Clear(ctx context.Context) {
	if a == nil || a.store == nil {
		return
	}
	if err := a.store.Delete(ctx, StorageKey); err != nil {
		a.fail("clear", err)
	}
}

// Degraded reports whether the last storage operation failed.
func (a *Adapter) Degraded() bool {
	return a != nil && a.degraded.Load()
}

func (a *Adapter) fail(op string, err error) {
	a.degraded.Store(true)
	a.logger.Warn("snapshot storage failed; continuing in memory",
		zap.String("op", op),
		zap.String("key", StorageKey),
		zap.Error(err),
	)
}
