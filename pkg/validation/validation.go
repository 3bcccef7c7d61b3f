package validation

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"sort"
	"strconv"
	"strings"
)

// Canonical issue codes surfaced to UIs.
const (
	CodeRequired        = "required"
	CodeMin             = "min"
	CodeMax             = "max"
	CodeMinLength       = "minLength"
	CodeTotalNotCorrect = "totalNotCorrect"
)

// Issue describes one failed rule. Params carries the numbers a UI needs to
// explain the failure (for example value/required for totalNotCorrect).
type Issue struct {
	Code    string             `json:"code"`
	Message string             `json:"message"`
	Params  map[string]float64 `json:"params,omitempty"`
}

// Result captures the outcome of evaluating one or more validators.
type Result struct {
	Valid  bool    `json:"valid"`
	Issues []Issue `json:"issues,omitempty"`
}

// OK is the passing result.
func OK() Result {
	return Result{Valid: true}
}

// Fail builds a failing result from the supplied issues.
func Fail(issues ...Issue) Result {
	return Result{Valid: false, Issues: issues}
}

// Merge combines results; the merged result is valid only when every input is.
func Merge(results ...Result) Result {
	out := OK()
	for _, res := range results {
		if res.Valid && len(res.Issues) == 0 {
			continue
		}
		out.Valid = out.Valid && res.Valid
		out.Issues = append(out.Issues, res.Issues...)
	}
	return out
}

// Has reports whether the result carries an issue with the given code.
func (r Result) Has(code string) bool {
	for _, issue := range r.Issues {
		if issue.Code == code {
			return true
		}
	}
	return false
}

// Issue returns the first issue with the given code.
func (r Result) Issue(code string) (Issue, bool) {
	for _, issue := range r.Issues {
		if issue.Code == code {
			return issue, true
		}
	}
	return Issue{}, false
}

// Messages flattens issue messages in order.
func (r Result) Messages() []string {
	if len(r.Issues) == 0 {
		return nil
	}
	out := make([]string, 0, len(r.Issues))
	for _, issue := range r.Issues {
		out = append(out, issue.Message)
	}
	return out
}

// Validator is the uniform contract shared by every rule.
type Validator interface {
	Evaluate(value any) Result
}

// All evaluates validators in order and merges their issues.
func All(value any, validators ...Validator) Result {
	results := make([]Result, 0, len(validators))
	for _, v := range validators {
		if v == nil {
			continue
		}
		results = append(results, v.Evaluate(value))
	}
	return Merge(results...)
}

// Required fails on nil, blank strings and empty lists. Zero is a value.
type Required struct{}

// Evaluate implements Validator.
func (Required) Evaluate(value any) Result {
	if IsEmpty(value) {
		return Fail(Issue{Code: CodeRequired, Message: "required"})
	}
	return OK()
}

// Range bounds numeric values. Empty and non-numeric values are skipped so
// Required stays responsible for presence.
type Range struct {
	Min *float64
	Max *float64
}

// Evaluate implements Validator.
func (r Range) Evaluate(value any) Result {
	if IsEmpty(value) {
		return OK()
	}
	number, ok := Number(value)
	if !ok {
		return OK()
	}
	var issues []Issue
	if r.Min != nil && number < *r.Min {
		issues = append(issues, Issue{
			Code:    CodeMin,
			Message: fmt.Sprintf("must be at least %s", formatNumber(*r.Min)),
			Params:  map[string]float64{"min": *r.Min, "actual": number},
		})
	}
	if r.Max != nil && number > *r.Max {
		issues = append(issues, Issue{
			Code:    CodeMax,
			Message: fmt.Sprintf("must be at most %s", formatNumber(*r.Max)),
			Params:  map[string]float64{"max": *r.Max, "actual": number},
		})
	}
	if len(issues) > 0 {
		return Fail(issues...)
	}
	return OK()
}

// MinLength requires text values to be at least Length runes long.
type MinLength struct {
	Length int
}

// Evaluate implements Validator.
func (m MinLength) Evaluate(value any) Result {
	text, ok := value.(string)
	if !ok || text == "" {
		return OK()
	}
	if n := len([]rune(text)); n < m.Length {
		return Fail(Issue{
			Code:    CodeMinLength,
			Message: fmt.Sprintf("must be at least %d characters", m.Length),
			Params:  map[string]float64{"requiredLength": float64(m.Length), "actualLength": float64(n)},
		})
	}
	return OK()
}

// SumEquals is the group-level rule requiring numeric fields to add up to
// Target exactly. It evaluates a map of field values; an empty or nil map is
// valid so the rule can run before a group is populated.
type SumEquals struct {
	Target float64
}

// Evaluate implements Validator.
func (s SumEquals) Evaluate(value any) Result {
	values, ok := value.(map[string]any)
	if !ok || len(values) == 0 {
		return OK()
	}
	sum := Sum(values)
	if sum == s.Target {
		return OK()
	}
	return Fail(Issue{
		Code:    CodeTotalNotCorrect,
		Message: fmt.Sprintf("total is %s, must be %s", formatNumber(sum), formatNumber(s.Target)),
		Params:  map[string]float64{"value": sum, "required": s.Target},
	})
}

// Sum adds the coerced numeric value of every entry. Keys are visited in
// sorted order so float rounding is deterministic.
func Sum(values map[string]any) float64 {
	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	total := 0.0
	for _, key := range keys {
		total = Finite(total + Coerce(values[key]))
	}
	return total
}

// Finite clamps ±Inf to ±math.MaxFloat64 and maps NaN to 0, so overflowing
// sums still encode as JSON numbers.
func Finite(v float64) float64 {
	switch {
	case math.IsNaN(v):
		return 0
	case math.IsInf(v, 1):
		return math.MaxFloat64
	case math.IsInf(v, -1):
		return -math.MaxFloat64
	}
	return v
}

// NonFinite reports whether v is a float or a numeric string whose value is
// NaN or outside the float64 range ("Infinity", "1e400").
func NonFinite(v any) bool {
	switch typed := v.(type) {
	case float64:
		return math.IsNaN(typed) || math.IsInf(typed, 0)
	case float32:
		return NonFinite(float64(typed))
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(typed), 64)
		if err != nil && !errors.Is(err, strconv.ErrRange) {
			return false
		}
		return NonFinite(parsed)
	}
	return false
}

// Coerce converts a stored value to a number. Anything that is not numeric
// (nil, blank or malformed strings, NaN, ±Inf) becomes 0.
func Coerce(value any) float64 {
	number, ok := Number(value)
	if !ok || math.IsNaN(number) {
		return 0
	}
	return number
}

// Number reports the numeric value of v when it has one. Numeric strings are
// accepted after trimming. NaN and ±Inf are not numbers here.
func Number(v any) (float64, bool) {
	switch typed := v.(type) {
	case nil:
		return 0, false
	case float64:
		return typed, !NonFinite(typed)
	case float32:
		return float64(typed), !NonFinite(typed)
	case int:
		return float64(typed), true
	case int8, int16, int32, int64:
		return float64(reflect.ValueOf(typed).Int()), true
	case uint, uint8, uint16, uint32, uint64:
		return float64(reflect.ValueOf(typed).Uint()), true
	case string:
		trimmed := strings.TrimSpace(typed)
		if trimmed == "" {
			return 0, false
		}
		parsed, err := strconv.ParseFloat(trimmed, 64)
		if err != nil || NonFinite(parsed) {
			return 0, false
		}
		return parsed, true
	default:
		return 0, false
	}
}

// IsEmpty mirrors reactive-form "required" semantics.
func IsEmpty(value any) bool {
	switch typed := value.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(typed) == ""
	case float64:
		return math.IsNaN(typed)
	}
	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array, reflect.Map:
		return rv.Len() == 0
	case reflect.Pointer, reflect.Interface:
		return rv.IsNil()
	}
	return false
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
