package wizardhttp

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/goliatone/go-surveywizard/pkg/form"
	"github.com/goliatone/go-surveywizard/pkg/navigation"
	"github.com/goliatone/go-surveywizard/pkg/scenarios"
	"github.com/goliatone/go-surveywizard/pkg/wizard"
)

type HTTPError interface {
	error
	StatusCode() int
}

type StatusError struct {
	Code int
	Err  error
}

func (e StatusError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return http.StatusText(e.Code)
}

func (e StatusError) Unwrap() error { return e.Err }

func (e StatusError) StatusCode() int {
	if e.Code <= 0 {
		return http.StatusInternalServerError
	}
	return e.Code
}

// DeniedError carries a guard denial.
type DeniedError struct {
	Transition navigation.Transition
}

func (e DeniedError) Error() string { return e.Transition.Message }

func (e DeniedError) StatusCode() int { return http.StatusConflict }

type errorResponse struct {
	Error    string `json:"error"`
	Blocking string `json:"blocking,omitempty"`
}

func badRequest(err error) error {
	return StatusError{Code: http.StatusBadRequest, Err: err}
}

func notFound(err error) error {
	return StatusError{Code: http.StatusNotFound, Err: err}
}

func statusOf(err error) int {
	var (
		httpErr   HTTPError
		stepErr   *form.UnknownStepError
		fieldErr  *form.UnknownFieldError
		indexErr  *form.IndexOutOfRangeError
		valueErr  *form.InvalidValueError
		submitErr *wizard.SubmitError
		syntaxErr *json.SyntaxError
		typeErr   *json.UnmarshalTypeError
	)
	switch {
	case errors.As(err, &httpErr):
		return httpErr.StatusCode()
	case errors.As(err, &stepErr), errors.As(err, &fieldErr):
		return http.StatusNotFound
	case errors.As(err, &indexErr), errors.As(err, &valueErr),
		errors.As(err, &syntaxErr), errors.As(err, &typeErr),
		errors.Is(err, scenarios.ErrInvalidScenario):
		return http.StatusBadRequest
	case errors.Is(err, wizard.ErrNotAtLastStep):
		return http.StatusConflict
	case errors.As(err, &submitErr):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, err error) error {
	if w == nil {
		return nil
	}
	code := statusOf(err)
	body := errorResponse{Error: err.Error()}
	var denied DeniedError
	if errors.As(err, &denied) {
		body.Blocking = denied.Transition.Blocking
	}
	if code == http.StatusInternalServerError {
		body.Error = http.StatusText(code)
	}
	return writeJSON(w, code, body)
}

func writeGuardError(w http.ResponseWriter, err error) error {
	code := http.StatusForbidden
	var httpErr HTTPError
	if errors.As(err, &httpErr) && httpErr != nil {
		code = httpErr.StatusCode()
		if code <= 0 {
			code = http.StatusForbidden
		}
	}
	return writeJSON(w, code, errorResponse{Error: http.StatusText(code)})
}

// responseWriteError reports a failure after the status line was sent.
type responseWriteError struct {
	err error
}

func (e responseWriteError) Error() string { return "wizardhttp: write response: " + e.err.Error() }

func (e responseWriteError) Unwrap() error { return e.err }

// writeJSON encodes v before touching w, so an encoding failure can still be
// answered with a 500.
func writeJSON(w http.ResponseWriter, code int, v any) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(true)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("wizardhttp: encode response: %w", err)
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	if _, err := w.Write(buf.Bytes()); err != nil {
		return responseWriteError{err: err}
	}
	return nil
}
