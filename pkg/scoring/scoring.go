// Package scoring derives the read-only figures shown alongside the wizard:
// the weighted impact score, eNPS and the running totals.
package scoring

import (
	"math"

	"github.com/goliatone/go-surveywizard/pkg/form"
	"github.com/goliatone/go-surveywizard/pkg/model"
	"github.com/goliatone/go-surveywizard/pkg/validation"
)

// WeightedScore returns round(Σ weight×average/100) over the drivers. Missing
// or non-numeric weights count as zero. Halves round toward +∞.
func WeightedScore(values map[string]any, drivers []model.Driver) float64 {
	total := 0.0
	for _, driver := range drivers {
		total = validation.Finite(total + validation.Finite(validation.Coerce(values[driver.ID])*driver.Average/100))
	}
	return RoundHalfUp(total)
}

// ENPS returns promoters minus detractors. Passives do not count.
func ENPS(values map[string]any) float64 {
	return validation.Finite(validation.Coerce(values[model.FieldPromoters]) - validation.Coerce(values[model.FieldDetractors]))
}

// Total is the plain sum of the coerced values.
func Total(values map[string]any) float64 {
	return validation.Sum(values)
}

// CriterionTotal sums option percentages. It is informational only.
func CriterionTotal(c form.Criterion) float64 {
	return c.Total()
}

// RoundHalfUp rounds to the nearest integer with halves going up.
func RoundHalfUp(v float64) float64 {
	return validation.Finite(math.Floor(v + 0.5))
}
