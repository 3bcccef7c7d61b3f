// Package tui drives a survey wizard session from the terminal. Prompts go
// through the PromptDriver interface, backed by AlecAivazis/survey in
// production and by scripted drivers in tests.
package tui
