package wizardhttp

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/goliatone/go-surveywizard/pkg/form"
	"github.com/goliatone/go-surveywizard/pkg/navigation"
	"github.com/goliatone/go-surveywizard/pkg/scenarios"
	"github.com/goliatone/go-surveywizard/pkg/scoring"
	"github.com/goliatone/go-surveywizard/pkg/wizard"
)

const maxBodyBytes = 1 << 20

type stepsResponse struct {
	Index    int                         `json:"index"`
	Location string                      `json:"location"`
	Steps    []navigation.StepDescriptor `json:"steps"`
}

type stateResponse struct {
	Values   form.Snapshot       `json:"values"`
	Validity map[string]bool     `json:"validity"`
	Errors   map[string][]string `json:"errors"`
	Scores   scoring.Scores      `json:"scores"`
	Degraded bool                `json:"degraded"`
}

type fieldRequest struct {
	Value any `json:"value"`
}

type criterionRequest struct {
	Name string `json:"name"`
}

type optionRequest struct {
	Name       string   `json:"name"`
	Percentage *float64 `json:"percentage"`
}

type navigateRequest struct {
	Path string `json:"path"`
}

type sessionFunc func(w http.ResponseWriter, r *http.Request, wz *wizard.Wizard) error

// withSession resolves the caller's wizard and holds its lock for the
// duration of fn.
func (c *Component) withSession(fn sessionFunc) http.HandlerFunc {
	return c.guarded(func(w http.ResponseWriter, r *http.Request) error {
		sess, err := c.sessions.acquire(w, r)
		if err != nil {
			return err
		}
		sess.mu.Lock()
		defer sess.mu.Unlock()
		return fn(w, r, sess.wizard)
	})
}

func (c *Component) guarded(fn func(w http.ResponseWriter, r *http.Request) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r == nil {
			http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
			return
		}
		if c.opts.Guard != nil {
			if err := c.opts.Guard(r); err != nil {
				if werr := writeGuardError(w, err); werr != nil {
					c.opts.Logger.Sugar().Warnw("guard response write failed", "path", r.URL.Path, "error", werr)
				}
				return
			}
		}
		if err := fn(w, r); err != nil {
			c.fail(w, r, err)
		}
	}
}

func (c *Component) fail(w http.ResponseWriter, r *http.Request, err error) {
	log := c.opts.Logger.Sugar().With("method", r.Method, "path", r.URL.Path)
	var writeErr responseWriteError
	if errors.As(err, &writeErr) {
		log.Warnw("response write failed", "error", err)
		return
	}
	if statusOf(err) >= http.StatusInternalServerError {
		log.Errorw("request failed", "error", err)
	}
	if werr := writeError(w, err); werr != nil {
		log.Warnw("error response write failed", "error", werr)
	}
}

func (c *Component) getSteps(w http.ResponseWriter, _ *http.Request, wz *wizard.Wizard) error {
	return writeJSON(w, http.StatusOK, stepsResponse{
		Index:    wz.Index(),
		Location: wz.Location(),
		Steps:    wz.Steps(),
	})
}

func (c *Component) getState(w http.ResponseWriter, _ *http.Request, wz *wizard.Wizard) error {
	state := wz.State()
	validity := make(map[string]bool, len(state.GroupNames()))
	for _, name := range state.GroupNames() {
		validity[name] = state.IsGroupValid(name)
	}
	return writeJSON(w, http.StatusOK, stateResponse{
		Values:   state.Snapshot(),
		Validity: validity,
		Errors:   state.Errors(),
		Scores:   wz.Scores(),
		Degraded: wz.Degraded(),
	})
}

func (c *Component) putField(w http.ResponseWriter, r *http.Request, wz *wizard.Wizard) error {
	var req fieldRequest
	if err := decode(r, &req); err != nil {
		return err
	}
	res, err := wz.State().SetField(r.PathValue("group"), r.PathValue("field"), req.Value)
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, res)
}

func (c *Component) postCriterion(w http.ResponseWriter, r *http.Request, wz *wizard.Wizard) error {
	var req criterionRequest
	if err := decode(r, &req); err != nil {
		return err
	}
	if strings.TrimSpace(req.Name) == "" {
		return badRequest(errors.New("wizardhttp: criterion name is required"))
	}
	if err := wz.State().AddCriterion(req.Name); err != nil {
		return err
	}
	return writeCriteria(w, wz)
}

func (c *Component) deleteCriterion(w http.ResponseWriter, r *http.Request, wz *wizard.Wizard) error {
	if err := wz.State().RemoveCriterion(r.PathValue("name")); err != nil {
		return err
	}
	return writeCriteria(w, wz)
}

func (c *Component) postOption(w http.ResponseWriter, r *http.Request, wz *wizard.Wizard) error {
	ci, err := pathIndex(r, "index")
	if err != nil {
		return err
	}
	var req optionRequest
	if err := decodeOptional(r, &req); err != nil {
		return err
	}
	if err := wz.State().AddOption(ci, req.Name, req.Percentage); err != nil {
		return err
	}
	return writeCriteria(w, wz)
}

func (c *Component) putOption(w http.ResponseWriter, r *http.Request, wz *wizard.Wizard) error {
	ci, err := pathIndex(r, "index")
	if err != nil {
		return err
	}
	oi, err := pathIndex(r, "option")
	if err != nil {
		return err
	}
	var req optionRequest
	if err := decode(r, &req); err != nil {
		return err
	}
	if err := wz.State().SetOption(ci, oi, req.Name, req.Percentage); err != nil {
		return err
	}
	return writeCriteria(w, wz)
}

func (c *Component) deleteOption(w http.ResponseWriter, r *http.Request, wz *wizard.Wizard) error {
	ci, err := pathIndex(r, "index")
	if err != nil {
		return err
	}
	oi, err := pathIndex(r, "option")
	if err != nil {
		return err
	}
	if err := wz.State().RemoveOption(ci, oi); err != nil {
		return err
	}
	return writeCriteria(w, wz)
}

func (c *Component) postNavigate(w http.ResponseWriter, r *http.Request, wz *wizard.Wizard) error {
	var req navigateRequest
	if err := decode(r, &req); err != nil {
		return err
	}
	return writeTransition(w, wz.Navigate(req.Path))
}

func (c *Component) postNext(w http.ResponseWriter, _ *http.Request, wz *wizard.Wizard) error {
	return writeTransition(w, wz.Next())
}

func (c *Component) postPrevious(w http.ResponseWriter, _ *http.Request, wz *wizard.Wizard) error {
	return writeTransition(w, wz.Previous())
}

func (c *Component) postCancel(w http.ResponseWriter, _ *http.Request, wz *wizard.Wizard) error {
	return writeTransition(w, wz.Cancel())
}

func (c *Component) postFinish(w http.ResponseWriter, r *http.Request, wz *wizard.Wizard) error {
	receipt, err := wz.Finish(r.Context())
	if err != nil {
		return err
	}
	if receipt == nil {
		w.WriteHeader(http.StatusNoContent)
		return nil
	}
	return writeJSON(w, http.StatusOK, receipt)
}

func (c *Component) listScenarios(w http.ResponseWriter, r *http.Request) error {
	items, err := c.opts.Scenarios.Search(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		return err
	}
	if items == nil {
		items = []scenarios.Scenario{}
	}
	return writeJSON(w, http.StatusOK, items)
}

func (c *Component) postScenario(w http.ResponseWriter, r *http.Request) error {
	var req scenarios.Scenario
	if err := decode(r, &req); err != nil {
		return err
	}
	created, err := c.opts.Scenarios.Add(r.Context(), req)
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusCreated, created)
}

func (c *Component) getScenario(w http.ResponseWriter, r *http.Request) error {
	id, err := pathIndex(r, "id")
	if err != nil {
		return err
	}
	item, err := c.opts.Scenarios.Get(r.Context(), id)
	if err != nil {
		return err
	}
	if item == nil {
		return notFound(fmt.Errorf("wizardhttp: scenario %d not found", id))
	}
	return writeJSON(w, http.StatusOK, item)
}

func (c *Component) patchScenario(w http.ResponseWriter, r *http.Request) error {
	id, err := pathIndex(r, "id")
	if err != nil {
		return err
	}
	var patch scenarios.Patch
	if err := decode(r, &patch); err != nil {
		return err
	}
	item, err := c.opts.Scenarios.Update(r.Context(), id, patch)
	if err != nil {
		return err
	}
	if item == nil {
		return notFound(fmt.Errorf("wizardhttp: scenario %d not found", id))
	}
	return writeJSON(w, http.StatusOK, item)
}

func (c *Component) deleteScenario(w http.ResponseWriter, r *http.Request) error {
	id, err := pathIndex(r, "id")
	if err != nil {
		return err
	}
	ok, err := c.opts.Scenarios.Delete(r.Context(), id)
	if err != nil {
		return err
	}
	if !ok {
		return notFound(fmt.Errorf("wizardhttp: scenario %d not found", id))
	}
	w.WriteHeader(http.StatusNoContent)
	return nil
}

func (c *Component) getContract(w http.ResponseWriter, _ *http.Request) error {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(c.contract.JSON()); err != nil {
		return responseWriteError{err: err}
	}
	return nil
}

func writeCriteria(w http.ResponseWriter, wz *wizard.Wizard) error {
	return writeJSON(w, http.StatusOK, wz.State().Criteria())
}

func writeTransition(w http.ResponseWriter, tr navigation.Transition) error {
	if tr.Outcome == navigation.OutcomeDenied {
		return DeniedError{Transition: tr}
	}
	return writeJSON(w, http.StatusOK, tr)
}

var errEmptyBody = errors.New("wizardhttp: request body is required")

func decode(r *http.Request, v any) error {
	if r.Body == nil {
		return badRequest(errEmptyBody)
	}
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return badRequest(errEmptyBody)
		}
		return badRequest(fmt.Errorf("wizardhttp: decode body: %w", err))
	}
	return nil
}

// decodeOptional is decode for endpoints where every body field has a default.
func decodeOptional(r *http.Request, v any) error {
	if err := decode(r, v); err != nil && !errors.Is(err, errEmptyBody) {
		return err
	}
	return nil
}

func pathIndex(r *http.Request, name string) (int, error) {
	raw := r.PathValue(name)
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, badRequest(fmt.Errorf("wizardhttp: %s must be an integer, got %q", name, raw))
	}
	return value, nil
}
