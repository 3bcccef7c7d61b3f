package tui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/AlecAivazis/survey/v2/terminal"
	"go.uber.org/zap"

	"github.com/goliatone/go-surveywizard/pkg/form"
	"github.com/goliatone/go-surveywizard/pkg/model"
	"github.com/goliatone/go-surveywizard/pkg/navigation"
	"github.com/goliatone/go-surveywizard/pkg/submission"
	"github.com/goliatone/go-surveywizard/pkg/validation"
	"github.com/goliatone/go-surveywizard/pkg/wizard"
)

// Step actions offered after a step's fields were answered.
const (
	ActionNext     = "Next"
	ActionPrevious = "Previous"
	ActionCancel   = "Cancel"
	ActionFinish   = "Finish"
)

// Runner walks a wizard session step by step.
type Runner struct {
	driver PromptDriver
	out    io.Writer
	stdio  *terminal.Stdio
	theme  Theme
	logger *zap.Logger
}

// New constructs a runner with defaults (survey driver on stdout).
func New(options ...Option) (*Runner, error) {
	r := &Runner{logger: zap.NewNop()}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(r)
	}
	if r.driver == nil {
		r.driver = newSurveyDriver(r.out, r.stdio)
	}
	return r, nil
}

// Run prompts until the user finishes or cancels. It returns the receipt on
// finish and nil on cancel. ErrAborted is returned on Ctrl+C.
func (r *Runner) Run(ctx context.Context, w *wizard.Wizard) (*submission.Receipt, error) {
	if ctx == nil {
		return nil, errors.New("tui: context is required")
	}
	if w == nil {
		return nil, ErrNoWizard
	}
	if w.Restored() {
		r.info(ctx, "Resuming your saved survey.")
	}

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		step, ok := w.Current()
		if !ok {
			return nil, nil
		}
		total := len(w.Steps())
		r.info(ctx, fmt.Sprintf("Step %d/%d: %s", step.Index+1, total, step.Label))

		if err := r.promptGroup(ctx, w, step.Group); err != nil {
			return nil, err
		}
		r.showTotals(ctx, w, step.Group)

		action, err := r.promptAction(ctx, step.Index, total)
		if err != nil {
			return nil, err
		}
		switch action {
		case ActionNext:
			if tr := w.Next(); tr.Outcome == navigation.OutcomeDenied {
				r.fail(ctx, tr.Message)
			}
		case ActionPrevious:
			w.Previous()
		case ActionCancel:
			w.Cancel()
			return nil, nil
		case ActionFinish:
			confirmed, err := r.driver.Confirm(ctx, ConfirmConfig{Message: "Submit the survey?", Default: true})
			if err != nil {
				return nil, err
			}
			if !confirmed {
				continue
			}
			receipt, err := w.Finish(ctx)
			if err != nil {
				var submitErr *wizard.SubmitError
				if errors.As(err, &submitErr) {
					r.fail(ctx, submitErr.Error())
					continue
				}
				return nil, err
			}
			if receipt != nil && receipt.Summary != "" {
				r.info(ctx, receipt.Summary)
			} else {
				r.info(ctx, wizard.SubmittedMessage)
			}
			return receipt, nil
		}
	}
}

func (r *Runner) promptAction(ctx context.Context, index, total int) (string, error) {
	var actions []string
	if index == total-1 {
		actions = append(actions, ActionFinish)
	} else {
		actions = append(actions, ActionNext)
	}
	if index > 0 {
		actions = append(actions, ActionPrevious)
	}
	actions = append(actions, ActionCancel)

	idx, err := r.driver.Select(ctx, SelectConfig{Message: "What next?", Options: actions})
	if err != nil {
		return "", err
	}
	if idx < 0 || idx >= len(actions) {
		return "", fmt.Errorf("tui: invalid action index %d", idx)
	}
	return actions[idx], nil
}

func (r *Runner) promptGroup(ctx context.Context, w *wizard.Wizard, name string) error {
	group, err := w.State().Group(name)
	if err != nil {
		return err
	}
	for _, field := range group.Spec().Fields {
		var err error
		switch {
		case field.Type == model.FieldTypeList:
			err = r.promptCriteria(ctx, w)
		case len(field.Enum) > 0:
			err = r.promptEnum(ctx, w.State(), name, field)
		case field.Type == model.FieldTypeNumber:
			err = r.promptNumber(ctx, w.State(), name, field)
		case field.Type == model.FieldTypeText:
			err = r.promptText(ctx, w.State(), name, field, true)
		default:
			err = r.promptText(ctx, w.State(), name, field, false)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *Runner) promptEnum(ctx context.Context, state *form.State, group string, field model.FieldSpec) error {
	current, _ := state.Field(group, field.Name)
	defaultIdx := 0
	if text, ok := current.(string); ok {
		for i, option := range field.Enum {
			if option == text {
				defaultIdx = i
			}
		}
	}
	idx, err := r.driver.Select(ctx, SelectConfig{
		Message:      field.Label,
		Options:      field.Enum,
		DefaultIndex: defaultIdx,
		Help:         field.Description,
	})
	if err != nil {
		return err
	}
	if idx < 0 || idx >= len(field.Enum) {
		return fmt.Errorf("tui: invalid option index %d for %s", idx, field.Name)
	}
	_, err = state.SetField(group, field.Name, field.Enum[idx])
	return err
}

func (r *Runner) promptNumber(ctx context.Context, state *form.State, group string, field model.FieldSpec) error {
	for {
		current, _ := state.Field(group, field.Name)
		response, err := r.driver.Input(ctx, InputConfig{
			Message: field.Label,
			Default: formatValue(current),
			Help:    field.Description,
			Validator: func(line string) error {
				_, err := parseNumber(line)
				return err
			},
		})
		if err != nil {
			return err
		}
		value, err := parseNumber(response)
		if err != nil {
			r.fail(ctx, fmt.Sprintf("Invalid %s: %v", field.Label, err))
			continue
		}
		res, err := state.SetField(group, field.Name, value)
		if err != nil {
			return err
		}
		if !res.Valid {
			r.fail(ctx, fmt.Sprintf("Invalid %s: %s", field.Label, strings.Join(res.Messages(), ", ")))
			continue
		}
		return nil
	}
}

func (r *Runner) promptText(ctx context.Context, state *form.State, group string, field model.FieldSpec, multiline bool) error {
	for {
		current, _ := state.Field(group, field.Name)
		var (
			response string
			err      error
		)
		if multiline {
			response, err = r.driver.TextArea(ctx, TextAreaConfig{
				Message: field.Label,
				Default: formatValue(current),
				Help:    field.Description,
			})
		} else {
			response, err = r.driver.Input(ctx, InputConfig{
				Message: field.Label,
				Default: formatValue(current),
				Help:    field.Description,
			})
		}
		if err != nil {
			return err
		}
		res, err := state.SetField(group, field.Name, response)
		if err != nil {
			return err
		}
		if !res.Valid {
			r.fail(ctx, fmt.Sprintf("Invalid %s: %s", field.Label, strings.Join(res.Messages(), ", ")))
			continue
		}
		return nil
	}
}

func (r *Runner) promptCriteria(ctx context.Context, w *wizard.Wizard) error {
	state := w.State()
	catalogue := w.Schema().Criteria
	selected := make(map[string]bool)
	var defaults []int
	for _, c := range state.Criteria() {
		selected[c.Name] = true
	}
	for i, name := range catalogue {
		if selected[name] {
			defaults = append(defaults, i)
		}
	}

	picked, err := r.driver.MultiSelect(ctx, SelectConfig{
		Message:  "Select criteria",
		Options:  catalogue,
		Defaults: defaults,
	})
	if err != nil {
		return err
	}
	keep := make(map[string]bool, len(picked))
	for _, idx := range picked {
		if idx >= 0 && idx < len(catalogue) {
			keep[catalogue[idx]] = true
		}
	}
	for _, name := range catalogue {
		if keep[name] {
			err = state.AddCriterion(name)
		} else {
			err = state.RemoveCriterion(name)
		}
		if err != nil {
			return err
		}
	}

	for i, criterion := range state.Criteria() {
		if err := r.promptOptions(ctx, state, i, criterion); err != nil {
			return err
		}
	}
	return nil
}

func (r *Runner) promptOptions(ctx context.Context, state *form.State, index int, criterion form.Criterion) error {
	for {
		response, err := r.driver.Input(ctx, InputConfig{
			Message: fmt.Sprintf("Options for %s", criterion.Name),
			Default: formatOptions(criterion.Options),
			Help:    "Comma separated name=percentage pairs, e.g. Female=50, Male=50",
		})
		if err != nil {
			return err
		}
		options, err := parseOptions(response)
		if err != nil {
			r.fail(ctx, fmt.Sprintf("Invalid options for %s: %v", criterion.Name, err))
			continue
		}
		if err := applyOptions(state, index, options); err != nil {
			return err
		}
		updated := state.Criteria()[index]
		r.info(ctx, fmt.Sprintf("%s total: %s%%", updated.Name, formatNumber(updated.Total())))
		return nil
	}
}

// applyOptions rewrites the options of one criterion in place.
func applyOptions(state *form.State, index int, options []form.Option) error {
	existing := len(state.Criteria()[index].Options)
	for i, opt := range options {
		var err error
		if i < existing {
			err = state.SetOption(index, i, opt.Name, opt.Percentage)
		} else {
			err = state.AddOption(index, opt.Name, opt.Percentage)
		}
		if err != nil {
			return err
		}
	}
	for i := existing - 1; i >= len(options); i-- {
		if err := state.RemoveOption(index, i); err != nil {
			return err
		}
	}
	return nil
}

var errNotANumber = errors.New("not a number")

// parseNumber reads a numeric answer. Blank clears the field.
func parseNumber(line string) (any, error) {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return nil, nil
	}
	number, err := strconv.ParseFloat(trimmed, 64)
	if err != nil || validation.NonFinite(number) {
		return nil, errNotANumber
	}
	return number, nil
}

func parseOptions(raw string) ([]form.Option, error) {
	var out []form.Option
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		name, pct, found := strings.Cut(part, "=")
		name = strings.TrimSpace(name)
		if !found || name == "" {
			return nil, fmt.Errorf("%q is not name=percentage", part)
		}
		value, err := strconv.ParseFloat(strings.TrimSpace(pct), 64)
		if err != nil || validation.NonFinite(value) {
			return nil, fmt.Errorf("%q has a non-numeric percentage", part)
		}
		if value < 0 {
			return nil, fmt.Errorf("%q must be at least 0", part)
		}
		out = append(out, form.Option{Name: name, Percentage: form.Percent(value)})
	}
	if len(out) == 0 {
		return nil, errors.New("at least one option is required")
	}
	return out, nil
}

func (r *Runner) showTotals(ctx context.Context, w *wizard.Wizard, group string) {
	scores := w.Scores()
	switch group {
	case model.GroupImpactDrivers:
		r.info(ctx, fmt.Sprintf("Total: %s / 100  Impact score: %s", formatNumber(scores.DriverTotal), formatNumber(scores.Overall)))
	case model.GroupENPS:
		r.info(ctx, fmt.Sprintf("Total: %s / 100  eNPS: %s", formatNumber(scores.ENPSTotal), formatNumber(scores.ENPS)))
	}
	res, err := w.State().GroupResult(group)
	if err == nil && !res.Valid {
		for _, msg := range res.Messages() {
			r.fail(ctx, msg)
		}
	}
}

func (r *Runner) info(ctx context.Context, msg string) {
	if err := r.driver.Info(ctx, r.theme.InfoPrefix+msg); err != nil {
		r.logger.Debug("tui info failed", zap.Error(err))
	}
}

func (r *Runner) fail(ctx context.Context, msg string) {
	if err := r.driver.Info(ctx, r.theme.ErrorPrefix+msg); err != nil {
		r.logger.Debug("tui info failed", zap.Error(err))
	}
}

func formatValue(v any) string {
	switch typed := v.(type) {
	case nil:
		return ""
	case string:
		return typed
	case float64:
		return formatNumber(typed)
	default:
		return fmt.Sprint(typed)
	}
}

func formatOptions(options []form.Option) string {
	parts := make([]string, 0, len(options))
	for _, opt := range options {
		pct := ""
		if opt.Percentage != nil {
			pct = formatNumber(*opt.Percentage)
		}
		parts = append(parts, opt.Name+"="+pct)
	}
	return strings.Join(parts, ", ")
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
