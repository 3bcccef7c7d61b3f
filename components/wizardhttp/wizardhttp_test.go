package wizardhttp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/goliatone/go-surveywizard/pkg/navigation"
	"github.com/goliatone/go-surveywizard/pkg/persistence"
	"github.com/goliatone/go-surveywizard/pkg/scenarios"
	"github.com/goliatone/go-surveywizard/pkg/submission"
)

type client struct {
	t      *testing.T
	h      http.Handler
	cookie *http.Cookie
}

func (c *client) do(method, path string, body any) *httptest.ResponseRecorder {
	c.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if raw, ok := body.(string); ok {
			buf.WriteString(raw)
		} else {
			require.NoError(c.t, json.NewEncoder(&buf).Encode(body))
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	if c.cookie != nil {
		req.AddCookie(c.cookie)
	}
	rec := httptest.NewRecorder()
	c.h.ServeHTTP(rec, req)
	for _, cookie := range rec.Result().Cookies() {
		if cookie.Name == DefaultCookieName {
			c.cookie = cookie
		}
	}
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func newComponent(t *testing.T, fns ...OptionFn) *Component {
	t.Helper()
	fns = append([]OptionFn{WithScenarios(scenarios.NewService(scenarios.WithDelay(0)))}, fns...)
	c, err := New(fns...)
	require.NoError(t, err)
	t.Cleanup(c.Close)
	return c
}

func fill(t *testing.T, cl *client) {
	t.Helper()
	set := func(group, field string, value any) {
		rec := cl.do(http.MethodPut, "/survey/groups/"+group+"/fields/"+field, map[string]any{"value": value})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	}
	set("productDetails", "title", "Engagement pulse")
	set("respondents", "totalRespondents", 120)
	require.Equal(t, http.StatusOK, cl.do(http.MethodPost, "/survey/criteria", map[string]any{"name": "Gender"}).Code)
	require.Equal(t, http.StatusOK, cl.do(http.MethodPost, "/survey/criteria/0/options", map[string]any{"name": "F", "percentage": 50}).Code)
	set("impactDrivers", "A", 10)
	for _, field := range []string{"Innovation", "Motivation", "Performance", "Autonomy", "Connection"} {
		set("comments", field, "ok")
	}
}

func TestRoutes_AreDocumented(t *testing.T) {
	c := newComponent(t)
	routes := c.Routes()
	for _, route := range routes {
		assert.Truef(t, c.Contract().Has(route.Method, route.Path), "%s %s is not documented", route.Method, route.Path)
	}
	assert.Len(t, c.Contract().Operations(), len(routes))
}

func TestRegisterRoutes_UnderBasePath(t *testing.T) {
	c := newComponent(t)
	mux := http.NewServeMux()
	patterns, err := c.RegisterRoutes(mux, "app/")
	require.NoError(t, err)
	assert.Contains(t, patterns, "GET /app/survey/steps")
	assert.Contains(t, patterns, "DELETE /app/survey/criteria/{index}/options/{option}")

	cl := &client{t: t, h: mux}
	rec := cl.do(http.MethodGet, "/app/survey/steps", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	_, err = c.RegisterRoutes(nil, "")
	require.Error(t, err)
}

func TestSteps_IssueSessionCookie(t *testing.T) {
	c := newComponent(t)
	cl := &client{t: t, h: c.Handler()}

	rec := cl.do(http.MethodGet, "/survey/steps", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, cl.cookie)
	assert.True(t, cl.cookie.HttpOnly)

	steps := decodeBody[stepsResponse](t, rec)
	assert.Equal(t, 0, steps.Index)
	assert.Equal(t, "/survey/select-product", steps.Location)
	require.Len(t, steps.Steps, 6)
	assert.True(t, steps.Steps[0].Current)

	cl.do(http.MethodGet, "/survey/state", nil)
	assert.Equal(t, 1, c.Sessions())

	other := &client{t: t, h: c.Handler()}
	other.do(http.MethodGet, "/survey/state", nil)
	assert.Equal(t, 2, c.Sessions())
	assert.NotEqual(t, cl.cookie.Value, other.cookie.Value)
}

func TestNext_DeniedIsConflict(t *testing.T) {
	c := newComponent(t)
	cl := &client{t: t, h: c.Handler()}

	rec := cl.do(http.MethodPost, "/survey/next", nil)
	require.Equal(t, http.StatusConflict, rec.Code)
	body := decodeBody[errorResponse](t, rec)
	assert.Equal(t, navigation.DenyMessage, body.Error)
	assert.Equal(t, "productDetails", body.Blocking)

	rec = cl.do(http.MethodPost, "/survey/navigate", map[string]string{"path": "/survey/comments"})
	require.Equal(t, http.StatusConflict, rec.Code)

	rec = cl.do(http.MethodPost, "/survey/previous", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, navigation.OutcomeNoop, decodeBody[navigation.Transition](t, rec).Outcome)
}

func TestFields_ErrorMapping(t *testing.T) {
	c := newComponent(t)
	cl := &client{t: t, h: c.Handler()}

	rec := cl.do(http.MethodPut, "/survey/groups/missing/fields/title", map[string]any{"value": "x"})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = cl.do(http.MethodPut, "/survey/groups/productDetails/fields/missing", map[string]any{"value": "x"})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = cl.do(http.MethodPut, "/survey/groups/productDetails/fields/title", "{not json")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = cl.do(http.MethodPut, "/survey/groups/respondents/fields/totalRespondents", map[string]any{"value": true})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = cl.do(http.MethodPut, "/survey/groups/productDetails/fields/title", map[string]any{"value": "ab"})
	require.Equal(t, http.StatusOK, rec.Code)
	res := decodeBody[struct {
		Valid  bool `json:"valid"`
		Issues []struct {
			Code string `json:"code"`
		} `json:"issues"`
	}](t, rec)
	assert.False(t, res.Valid)
	require.Len(t, res.Issues, 1)
	assert.Equal(t, "minLength", res.Issues[0].Code)
}

func TestCriteria_Editing(t *testing.T) {
	c := newComponent(t)
	cl := &client{t: t, h: c.Handler()}

	rec := cl.do(http.MethodPost, "/survey/criteria", map[string]any{"name": " "})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = cl.do(http.MethodPost, "/survey/criteria", map[string]any{"name": "Gender"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = cl.do(http.MethodPost, "/survey/criteria/0/options", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	list := decodeBody[[]struct {
		Name    string `json:"name"`
		Options []struct {
			Name       string   `json:"name"`
			Percentage *float64 `json:"percentage"`
		} `json:"options"`
	}](t, rec)
	require.Len(t, list, 1)
	require.Len(t, list[0].Options, 1)
	assert.Equal(t, "New", list[0].Options[0].Name)
	require.NotNil(t, list[0].Options[0].Percentage)
	assert.Equal(t, 0.0, *list[0].Options[0].Percentage)

	rec = cl.do(http.MethodPut, "/survey/criteria/0/options/0", map[string]any{"name": "F", "percentage": 60})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = cl.do(http.MethodPost, "/survey/criteria/3/options", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = cl.do(http.MethodDelete, "/survey/criteria/0/options/x", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = cl.do(http.MethodDelete, "/survey/criteria/0/options/0", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = cl.do(http.MethodDelete, "/survey/criteria/Gender", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "[]", rec.Body.String())
}

func TestFinish_SubmitsAndResets(t *testing.T) {
	var got []submission.Submission
	sink := submission.FuncSink(func(_ context.Context, sub submission.Submission) (submission.Receipt, error) {
		got = append(got, sub)
		return submission.NewReceipt("test", sub), nil
	})
	store := persistence.NewMemoryStore()
	c := newComponent(t, WithSink(sink), WithStore(store))
	cl := &client{t: t, h: c.Handler()}
	fill(t, cl)

	rec := cl.do(http.MethodPost, "/survey/finish", nil)
	require.Equal(t, http.StatusConflict, rec.Code)

	for i := 0; i < 5; i++ {
		rec = cl.do(http.MethodPost, "/survey/next", nil)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	}
	require.NotEmpty(t, store.Keys())

	rec = cl.do(http.MethodPost, "/survey/finish", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	receipt := decodeBody[submission.Receipt](t, rec)
	assert.Equal(t, "Engagement pulse", receipt.Title)
	assert.Equal(t, "test", receipt.Sink)
	require.Len(t, got, 1)
	assert.Empty(t, store.Keys())

	rec = cl.do(http.MethodPost, "/survey/finish", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	steps := decodeBody[stepsResponse](t, cl.do(http.MethodGet, "/survey/steps", nil))
	assert.Equal(t, navigation.Exited, steps.Index)
	assert.Equal(t, "/scenarios", steps.Location)
}

func TestFinish_SinkFailureIsBadGateway(t *testing.T) {
	sink := submission.FuncSink(func(context.Context, submission.Submission) (submission.Receipt, error) {
		return submission.Receipt{}, errors.New("database down")
	})
	c := newComponent(t, WithSink(sink))
	cl := &client{t: t, h: c.Handler()}
	fill(t, cl)
	for i := 0; i < 5; i++ {
		require.Equal(t, http.StatusOK, cl.do(http.MethodPost, "/survey/next", nil).Code)
	}

	rec := cl.do(http.MethodPost, "/survey/finish", nil)
	require.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Contains(t, decodeBody[errorResponse](t, rec).Error, "database down")

	steps := decodeBody[stepsResponse](t, cl.do(http.MethodGet, "/survey/steps", nil))
	assert.Equal(t, 5, steps.Index)
}

func TestSessions_ResumeFromStore(t *testing.T) {
	store := persistence.NewMemoryStore()
	first := newComponent(t, WithStore(store))
	cl := &client{t: t, h: first.Handler()}
	rec := cl.do(http.MethodPut, "/survey/groups/productDetails/fields/title", map[string]any{"value": "Resumed"})
	require.Equal(t, http.StatusOK, rec.Code)

	restarted := newComponent(t, WithStore(store))
	cl.h = restarted.Handler()
	state := decodeBody[stateResponse](t, cl.do(http.MethodGet, "/survey/state", nil))
	assert.Equal(t, "Resumed", state.Values["productDetails"]["title"])
	assert.True(t, state.Validity["productDetails"])
	assert.False(t, state.Degraded)
}

func TestScenarios_Routes(t *testing.T) {
	c := newComponent(t)
	cl := &client{t: t, h: c.Handler()}

	list := decodeBody[[]scenarios.Scenario](t, cl.do(http.MethodGet, "/api/scenarios?q=scenario%20b", nil))
	require.Len(t, list, 1)
	assert.Equal(t, 2, list[0].ID)

	rec := cl.do(http.MethodPost, "/api/scenarios", scenarios.Scenario{Name: "Scenario D", Respondents: 10})
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, 4, decodeBody[scenarios.Scenario](t, rec).ID)

	rec = cl.do(http.MethodPost, "/api/scenarios", scenarios.Scenario{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = cl.do(http.MethodPatch, "/api/scenarios/4", map[string]any{"respondents": 20})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 20, decodeBody[scenarios.Scenario](t, rec).Respondents)

	assert.Equal(t, http.StatusNotFound, cl.do(http.MethodGet, "/api/scenarios/99", nil).Code)
	assert.Equal(t, http.StatusBadRequest, cl.do(http.MethodGet, "/api/scenarios/abc", nil).Code)
	assert.Equal(t, http.StatusNoContent, cl.do(http.MethodDelete, "/api/scenarios/4", nil).Code)
	assert.Equal(t, http.StatusNotFound, cl.do(http.MethodDelete, "/api/scenarios/4", nil).Code)
}

func TestContract_Served(t *testing.T) {
	c := newComponent(t)
	cl := &client{t: t, h: c.Handler()}

	rec := cl.do(http.MethodGet, "/api/openapi.json", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	doc := decodeBody[map[string]any](t, rec)
	assert.Contains(t, doc, "paths")
}

func TestGuard_RejectsRequests(t *testing.T) {
	c := newComponent(t, WithGuard(func(*http.Request) error {
		return StatusError{Code: http.StatusUnauthorized}
	}))
	cl := &client{t: t, h: c.Handler()}

	rec := cl.do(http.MethodGet, "/survey/steps", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Nil(t, cl.cookie)
	assert.Equal(t, 0, c.Sessions())
}

func TestFields_NonFiniteValuesKeepStateEncodable(t *testing.T) {
	c := newComponent(t)
	cl := &client{t: t, h: c.Handler()}

	for _, field := range []string{"I", "M"} {
		rec := cl.do(http.MethodPut, "/survey/groups/impactDrivers/fields/"+field, map[string]any{"value": 1.7e308})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	}
	rec := cl.do(http.MethodPut, "/survey/groups/enps/fields/promoters", map[string]any{"value": "Infinity"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = cl.do(http.MethodPut, "/survey/groups/enps/fields/promoters", map[string]any{"value": "1e400"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = cl.do(http.MethodGet, "/survey/state", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	state := decodeBody[stateResponse](t, rec)
	assert.Equal(t, math.MaxFloat64, state.Scores.DriverTotal)
	assert.False(t, state.Validity["impactDrivers"])
	assert.Equal(t, 60.0, state.Values["enps"]["promoters"])
}

func TestWriteJSON_EncodeFailureIsServerError(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	c := newComponent(t, WithLogger(zap.New(core)))
	h := c.guarded(func(w http.ResponseWriter, _ *http.Request) error {
		return writeJSON(w, http.StatusOK, map[string]float64{"x": math.Inf(1)})
	})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/x", nil))
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	body := decodeBody[errorResponse](t, rec)
	assert.Equal(t, http.StatusText(http.StatusInternalServerError), body.Error)
	assert.Equal(t, 1, logs.FilterMessage("request failed").Len())
}

type brokenWriter struct {
	header http.Header
	codes  []int
}

func (b *brokenWriter) Header() http.Header       { return b.header }
func (b *brokenWriter) WriteHeader(code int)      { b.codes = append(b.codes, code) }
func (b *brokenWriter) Write([]byte) (int, error) { return 0, errors.New("connection reset") }

func TestWriteFailures_AreLogged(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	c := newComponent(t, WithLogger(zap.New(core)))
	mux := http.NewServeMux()
	_, err := c.RegisterRoutes(mux, "")
	require.NoError(t, err)

	for _, path := range []string{"/survey/steps", "/api/openapi.json"} {
		w := &brokenWriter{header: http.Header{}}
		mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, []int{http.StatusOK}, w.codes, path)
	}
	assert.Equal(t, 2, logs.FilterMessage("response write failed").Len())
}

func TestSessions_IdleEviction(t *testing.T) {
	store := persistence.NewMemoryStore()
	c := newComponent(t, WithStore(store), WithIdleTimeout(10*time.Minute))
	now := time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)
	c.sessions.now = func() time.Time { return now }
	h := c.Handler()

	for i := 0; i < 20; i++ {
		anon := &client{t: t, h: h}
		require.Equal(t, http.StatusOK, anon.do(http.MethodGet, "/survey/steps", nil).Code)
	}
	cl := &client{t: t, h: h}
	rec := cl.do(http.MethodPut, "/survey/groups/productDetails/fields/title", map[string]any{"value": "Kept"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 21, c.Sessions())

	now = now.Add(5 * time.Minute)
	require.Equal(t, http.StatusOK, cl.do(http.MethodGet, "/survey/steps", nil).Code)
	assert.Equal(t, 21, c.Sessions())

	now = now.Add(11 * time.Minute)
	state := decodeBody[stateResponse](t, cl.do(http.MethodGet, "/survey/state", nil))
	assert.Equal(t, 1, c.Sessions())
	assert.Equal(t, "Kept", state.Values["productDetails"]["title"])
}
