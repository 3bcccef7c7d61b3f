package model_test

import (
	"testing"

	"github.com/goliatone/go-surveywizard/pkg/model"
)

func TestDefaultLabeler(t *testing.T) {
	cases := map[string]string{
		"set-impact-drivers": "Set Impact Drivers",
		"enps":               "Enps",
		"totalRespondents":   "Total Respondents",
		"select_product":     "Select Product",
		"":                   "",
	}
	for input, want := range cases {
		if got := model.DefaultLabeler(input); got != want {
			t.Fatalf("DefaultLabeler(%q) = %q, want %q", input, got, want)
		}
	}
}
