package submission

import (
	"html"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"

	"github.com/goliatone/go-surveywizard/pkg/form"
	"github.com/goliatone/go-surveywizard/pkg/model"
)

var (
	textPolicyOnce sync.Once
	textPolicy     *bluemonday.Policy
)

// Sanitize returns a copy of snapshot with markup stripped from the product
// title and every comment.
func Sanitize(snapshot form.Snapshot) form.Snapshot {
	out := make(form.Snapshot, len(snapshot))
	for group, values := range snapshot {
		copied := make(map[string]any, len(values))
		for field, value := range values {
			copied[field] = value
		}
		out[group] = copied
	}
	if product, ok := out[model.GroupProductDetails]; ok {
		if title, ok := product["title"].(string); ok {
			product["title"] = SanitizeText(title)
		}
	}
	if comments, ok := out[model.GroupComments]; ok {
		for field, value := range comments {
			if text, ok := value.(string); ok {
				comments[field] = SanitizeText(text)
			}
		}
	}
	return out
}

// SanitizeText strips every HTML element and returns plain text.
func SanitizeText(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}
	cleaned := textSanitizer().Sanitize(trimmed)
	return strings.TrimSpace(html.UnescapeString(cleaned))
}

func textSanitizer() *bluemonday.Policy {
	textPolicyOnce.Do(func() {
		textPolicy = bluemonday.StrictPolicy()
	})
	return textPolicy
}
