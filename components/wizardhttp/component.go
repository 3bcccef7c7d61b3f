package wizardhttp

import (
	"context"
	"fmt"
	"net/http"

	"github.com/goliatone/go-surveywizard/pkg/apicontract"
	"github.com/goliatone/go-surveywizard/pkg/schema"
)

// Component owns the session table and serves the wizard routes.
type Component struct {
	opts     Options
	contract *apicontract.Contract
	sessions *sessionStore
}

// New constructs a component with default options plus any overrides. The
// embedded survey schema is used when none is supplied.
func New(fns ...OptionFn) (*Component, error) {
	opts := NewOptions(fns...)
	if len(opts.Schema.Steps) == 0 {
		def, err := schema.Default()
		if err != nil {
			return nil, fmt.Errorf("wizardhttp: %w", err)
		}
		opts.Schema = def
	}
	contract, err := apicontract.Load(context.Background())
	if err != nil {
		return nil, fmt.Errorf("wizardhttp: %w", err)
	}
	return &Component{
		opts:     opts,
		contract: contract,
		sessions: newSessionStore(opts),
	}, nil
}

// Options returns a copy of the component configuration.
func (c *Component) Options() Options {
	if c == nil {
		return DefaultOptions()
	}
	return c.opts
}

// Contract returns the OpenAPI description of the served routes.
func (c *Component) Contract() *apicontract.Contract {
	if c == nil {
		return nil
	}
	return c.contract
}

// Handler returns a net/http handler serving every route at the root.
func (c *Component) Handler() http.Handler {
	mux := http.NewServeMux()
	_, _ = c.RegisterRoutes(mux, "")
	return mux
}

// Sessions reports the number of open sessions.
func (c *Component) Sessions() int {
	if c == nil {
		return 0
	}
	return c.sessions.len()
}

// Close detaches every session wizard. Stored snapshots are kept.
func (c *Component) Close() {
	if c == nil {
		return
	}
	c.sessions.close()
}
