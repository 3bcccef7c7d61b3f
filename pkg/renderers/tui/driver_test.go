package tui

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// cursorReport answers the two cursor queries survey sends before reading a
// line: terminal size, then position.
const cursorReport = "\x1b[24;80R\x1b[1;1R"

// scriptedTerminal feeds keystrokes one byte per read so survey's cursor
// queries never swallow the answers behind them.
type scriptedTerminal struct {
	in *strings.Reader
}

func newScriptedTerminal(keys ...string) *scriptedTerminal {
	return &scriptedTerminal{in: strings.NewReader(strings.Join(keys, ""))}
}

func (s *scriptedTerminal) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	return s.in.Read(p[:1])
}

func (s *scriptedTerminal) Fd() uintptr { return ^uintptr(0) }

type screen struct {
	bytes.Buffer
}

func (s *screen) Fd() uintptr { return ^uintptr(0) }

func newTestDriver(t *testing.T, keys ...string) (PromptDriver, *screen) {
	t.Helper()
	out := &screen{}
	r, err := New(WithStdio(newScriptedTerminal(keys...), out, out))
	if err != nil {
		t.Fatalf("new runner: %v", err)
	}
	return r.driver, out
}

func TestSurveyDriver_InputRunsValidator(t *testing.T) {
	driver, out := newTestDriver(t, cursorReport, "abc\r", cursorReport, "42\r")

	var seen []string
	got, err := driver.Input(context.Background(), InputConfig{
		Message: "Respondents",
		Validator: func(line string) error {
			seen = append(seen, line)
			_, err := parseNumber(line)
			return err
		},
	})
	if err != nil {
		t.Fatalf("input: %v", err)
	}
	if got != "42" {
		t.Fatalf("expected 42, got %q", got)
	}
	if diff := cmp.Diff([]string{"abc", "42"}, seen); diff != "" {
		t.Fatalf("validator calls mismatch (-want +got):\n%s", diff)
	}
	if !strings.Contains(out.String(), "not a number") {
		t.Fatalf("expected the rejection on screen, got %q", out.String())
	}
}

func TestSurveyDriver_InputDefault(t *testing.T) {
	driver, _ := newTestDriver(t, cursorReport, "\r")
	got, err := driver.Input(context.Background(), InputConfig{Message: "Title", Default: "Pulse"})
	if err != nil {
		t.Fatalf("input: %v", err)
	}
	if got != "Pulse" {
		t.Fatalf("expected the default, got %q", got)
	}
}

func TestSurveyDriver_Confirm(t *testing.T) {
	driver, _ := newTestDriver(t, cursorReport, "n\r")
	got, err := driver.Confirm(context.Background(), ConfirmConfig{Message: "Submit?", Default: true})
	if err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if got {
		t.Fatalf("expected no")
	}
}

func TestSurveyDriver_InterruptAborts(t *testing.T) {
	driver, _ := newTestDriver(t, cursorReport, "\x03")
	if _, err := driver.Input(context.Background(), InputConfig{Message: "Title"}); !errors.Is(err, ErrAborted) {
		t.Fatalf("expected ErrAborted, got %v", err)
	}
}

func TestSurveyDriver_ClosedInputFails(t *testing.T) {
	driver, _ := newTestDriver(t)
	_, err := driver.Input(context.Background(), InputConfig{Message: "Title"})
	if err == nil || errors.Is(err, ErrAborted) {
		t.Fatalf("expected a prompt error, got %v", err)
	}
}

func TestSurveyDriver_CancelledContext(t *testing.T) {
	driver, out := newTestDriver(t, cursorReport, "x\r")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := driver.Input(ctx, InputConfig{Message: "Title"}); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if err := driver.Info(ctx, "hello"); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled from Info, got %v", err)
	}
	if out.Len() != 0 {
		t.Fatalf("nothing should be drawn, got %q", out.String())
	}
}

func TestSurveyDriver_InfoWritesToStdio(t *testing.T) {
	driver, out := newTestDriver(t)
	if err := driver.Info(context.Background(), "Total: 100"); err != nil {
		t.Fatalf("info: %v", err)
	}
	if out.String() != "Total: 100\n" {
		t.Fatalf("unexpected output %q", out.String())
	}
}

func TestAnswerValidator(t *testing.T) {
	check := answerValidator(func(line string) error {
		if line == "bad" {
			return errors.New("bad line")
		}
		return nil
	})
	if err := check("ok"); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if err := check("bad"); err == nil {
		t.Fatalf("expected the check to run")
	}
	if err := check(3); err == nil {
		t.Fatalf("expected non-text answers to be rejected")
	}
}

func TestParseNumber(t *testing.T) {
	cases := []struct {
		in      string
		want    any
		wantErr bool
	}{
		{in: "", want: nil},
		{in: "  ", want: nil},
		{in: "42", want: 42.0},
		{in: " 2.5 ", want: 2.5},
		{in: "abc", wantErr: true},
		{in: "Inf", wantErr: true},
		{in: "1e400", wantErr: true},
		{in: "NaN", wantErr: true},
	}
	for _, tc := range cases {
		got, err := parseNumber(tc.in)
		if (err != nil) != tc.wantErr {
			t.Fatalf("parseNumber(%q) error = %v, wantErr %v", tc.in, err, tc.wantErr)
		}
		if diff := cmp.Diff(tc.want, got); diff != "" {
			t.Fatalf("parseNumber(%q) mismatch (-want +got):\n%s", tc.in, diff)
		}
	}
}
