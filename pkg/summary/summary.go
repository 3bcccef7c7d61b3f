// Package summary renders the plain-text completion summary shown after a
// survey is submitted.
package summary

import (
	"bytes"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"strconv"
	"strings"
	"sync"

	"github.com/flosch/pongo2/v6"

	"github.com/goliatone/go-surveywizard/pkg/submission"
)

//go:embed templates/*.tpl
var templateFS embed.FS

// DefaultTemplate is the embedded summary template name.
const DefaultTemplate = "summary.tpl"

var filtersOnce sync.Once

// Option configures a Renderer.
type Option func(*config)

type config struct {
	templates fs.FS
	name      string
}

// WithFS loads templates from files instead of the embedded set.
func WithFS(files fs.FS) Option {
	return func(cfg *config) {
		if files != nil {
			cfg.templates = files
		}
	}
}

// WithTemplate selects the template rendered by Render.
func WithTemplate(name string) Option {
	return func(cfg *config) {
		if trimmed := strings.TrimSpace(name); trimmed != "" {
			cfg.name = trimmed
		}
	}
}

// Renderer renders receipts through a pongo2 template.
type Renderer struct {
	mu       sync.RWMutex
	template *pongo2.Template
}

// New parses the configured template.
func New(options ...Option) (*Renderer, error) {
	sub, err := fs.Sub(templateFS, "templates")
	if err != nil {
		return nil, fmt.Errorf("summary: embedded templates: %w", err)
	}
	cfg := &config{templates: sub, name: DefaultTemplate}
	for _, opt := range options {
		if opt != nil {
			opt(cfg)
		}
	}

	registerFilters()
	set := pongo2.NewSet("surveywizard", pongo2.NewFSLoader(cfg.templates))
	tmpl, err := set.FromFile(cfg.name)
	if err != nil {
		return nil, fmt.Errorf("summary: load template %q: %w", cfg.name, err)
	}
	return &Renderer{template: tmpl}, nil
}

// Render produces the summary text for receipt.
func (r *Renderer) Render(receipt submission.Receipt) (string, error) {
	if r == nil || r.template == nil {
		return "", errors.New("summary: renderer is nil")
	}
	data, err := toMap(receipt)
	if err != nil {
		return "", fmt.Errorf("summary: convert receipt: %w", err)
	}

	var buf bytes.Buffer
	r.mu.RLock()
	err = r.template.ExecuteWriter(pongo2.Context{"receipt": data}, &buf)
	r.mu.RUnlock()
	if err != nil {
		return "", fmt.Errorf("summary: execute template: %w", err)
	}
	return strings.TrimRight(buf.String(), "\n") + "\n", nil
}

func registerFilters() {
	filtersOnce.Do(func() {
		if pongo2.FilterExists("score") {
			return
		}
		_ = pongo2.RegisterFilter("score", scoreFilter)
	})
}

func scoreFilter(in *pongo2.Value, _ *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
	if in.IsNil() {
		return pongo2.AsValue("0"), nil
	}
	if in.IsNumber() {
		return pongo2.AsValue(strconv.FormatFloat(in.Float(), 'f', -1, 64)), nil
	}
	return pongo2.AsValue(in.String()), nil
}

func toMap(v any) (map[string]any, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out map[string]any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return out, nil
}
