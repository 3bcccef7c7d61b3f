// Package apicontract embeds the OpenAPI description of the wizard's HTTP
// surface and exposes its operations for route checks.
package apicontract

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
)

//go:embed openapi.yaml
var document []byte

// Operation is one documented method and path.
type Operation struct {
	ID     string
	Method string
	Path   string
}

// Key returns "METHOD /path", the form used by net/http patterns.
func (o Operation) Key() string {
	return o.Method + " " + o.Path
}

// Contract is a loaded and validated OpenAPI document.
type Contract struct {
	spec       *openapi3.T
	operations []Operation
	json       []byte
}

// Raw returns the embedded YAML document.
func Raw() []byte {
	return append([]byte(nil), document...)
}

// Load parses and validates the embedded document.
func Load(ctx context.Context) (*Contract, error) {
	return Parse(ctx, document)
}

// Parse loads an OpenAPI document from raw bytes and validates it.
func Parse(ctx context.Context, raw []byte) (*Contract, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return nil, errors.New("apicontract: document payload is empty")
	}

	loader := &openapi3.Loader{Context: ctx}
	spec, err := loader.LoadFromData(raw)
	if err != nil {
		return nil, fmt.Errorf("apicontract: load document: %w", err)
	}
	if spec.Paths == nil || spec.Paths.Len() == 0 {
		return nil, errors.New("apicontract: document does not contain any paths")
	}
	if err := spec.Validate(ctx, openapi3.DisableExamplesValidation()); err != nil {
		return nil, fmt.Errorf("apicontract: validate: %w", err)
	}

	payload, err := spec.MarshalJSON()
	if err != nil {
		return nil, fmt.Errorf("apicontract: encode json: %w", err)
	}

	c := &Contract{spec: spec, json: payload}
	for path, item := range spec.Paths.Map() {
		if item == nil {
			continue
		}
		for method, op := range item.Operations() {
			c.operations = append(c.operations, Operation{
				ID:     op.OperationID,
				Method: strings.ToUpper(method),
				Path:   path,
			})
		}
	}
	sort.Slice(c.operations, func(i, j int) bool {
		if c.operations[i].Path == c.operations[j].Path {
			return c.operations[i].Method < c.operations[j].Method
		}
		return c.operations[i].Path < c.operations[j].Path
	})
	return c, nil
}

// Operations lists documented operations sorted by path then method.
func (c *Contract) Operations() []Operation {
	if c == nil {
		return nil
	}
	return append([]Operation(nil), c.operations...)
}

// Has reports whether method and path are documented.
func (c *Contract) Has(method, path string) bool {
	if c == nil {
		return false
	}
	for _, op := range c.operations {
		if op.Method == strings.ToUpper(method) && op.Path == path {
			return true
		}
	}
	return false
}

// JSON returns the document encoded as JSON.
func (c *Contract) JSON() []byte {
	if c == nil {
		return nil
	}
	return append([]byte(nil), c.json...)
}

// Title returns the document title.
func (c *Contract) Title() string {
	if c == nil || c.spec == nil || c.spec.Info == nil {
		return ""
	}
	return c.spec.Info.Title
}
