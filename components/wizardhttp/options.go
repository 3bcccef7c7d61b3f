package wizardhttp

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/goliatone/go-surveywizard/pkg/model"
	"github.com/goliatone/go-surveywizard/pkg/persistence"
	"github.com/goliatone/go-surveywizard/pkg/scenarios"
	"github.com/goliatone/go-surveywizard/pkg/submission"
	"github.com/goliatone/go-surveywizard/pkg/summary"
)

// DefaultCookieName identifies the session cookie.
const DefaultCookieName = "surveywizard_session"

// DefaultIdleTimeout is how long an unused session wizard stays in memory.
const DefaultIdleTimeout = 30 * time.Minute

type GuardFunc func(r *http.Request) error

type Options struct {
	CookieName   string
	CookieSecure bool
	Guard        GuardFunc
	IdleTimeout  time.Duration

	Schema       model.Schema
	Store        persistence.Store
	StoreTimeout time.Duration
	Sink         submission.Sink
	Summary      *summary.Renderer
	Scenarios    *scenarios.Service
	Logger       *zap.Logger
}

type OptionFn func(*Options)

func DefaultOptions() Options {
	return Options{
		CookieName:   DefaultCookieName,
		IdleTimeout:  DefaultIdleTimeout,
		StoreTimeout: 2 * time.Second,
	}
}

func NewOptions(fns ...OptionFn) Options {
	opts := DefaultOptions()
	for _, fn := range fns {
		if fn == nil {
			continue
		}
		fn(&opts)
	}
	if opts.CookieName == "" {
		opts.CookieName = DefaultCookieName
	}
	if opts.StoreTimeout <= 0 {
		opts.StoreTimeout = 2 * time.Second
	}
	if opts.Store == nil {
		opts.Store = persistence.NewMemoryStore()
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Scenarios == nil {
		opts.Scenarios = scenarios.NewService(scenarios.WithLogger(opts.Logger))
	}
	return opts
}

func WithCookieName(name string) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.CookieName = name
	}
}

// WithSecureCookie marks the session cookie Secure.
func WithSecureCookie(secure bool) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.CookieSecure = secure
	}
}

// WithGuard runs before every request; a non-nil error rejects it.
func WithGuard(guard GuardFunc) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.Guard = guard
	}
}

// WithIdleTimeout closes session wizards unused for d. Their snapshots stay
// in the store, so the same cookie resumes later. Zero disables eviction.
func WithIdleTimeout(d time.Duration) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.IdleTimeout = d
	}
}

// WithSchema overrides the embedded default survey.
func WithSchema(schema model.Schema) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.Schema = schema
	}
}

func WithStore(store persistence.Store) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.Store = store
	}
}

func WithStoreTimeout(timeout time.Duration) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.StoreTimeout = timeout
	}
}

func WithSink(sink submission.Sink) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.Sink = sink
	}
}

func WithSummary(renderer *summary.Renderer) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.Summary = renderer
	}
}

func WithScenarios(svc *scenarios.Service) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.Scenarios = svc
	}
}

func WithLogger(logger *zap.Logger) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.Logger = logger
	}
}
