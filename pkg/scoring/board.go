package scoring

import (
	"github.com/goliatone/go-surveywizard/pkg/form"
	"github.com/goliatone/go-surveywizard/pkg/model"
)

// CriterionScore is the option total of one selected criterion.
type CriterionScore struct {
	Name  string  `json:"name"`
	Total float64 `json:"total"`
}

// Scores is the set of derived figures for a state.
type Scores struct {
	Overall        float64          `json:"overall"`
	ENPS           float64          `json:"enps"`
	DriverTotal    float64          `json:"driverTotal"`
	ENPSTotal      float64          `json:"enpsTotal"`
	CriteriaTotals []CriterionScore `json:"criteriaTotals"`
}

// Compute derives Scores from state.
func Compute(state *form.State) Scores {
	if state == nil {
		return Scores{CriteriaTotals: []CriterionScore{}}
	}
	var drivers, enps map[string]any
	if g, err := state.Group(model.GroupImpactDrivers); err == nil {
		drivers = g.Values()
	}
	if g, err := state.Group(model.GroupENPS); err == nil {
		enps = g.Values()
	}
	criteria := state.Criteria()
	totals := make([]CriterionScore, 0, len(criteria))
	for _, c := range criteria {
		totals = append(totals, CriterionScore{Name: c.Name, Total: CriterionTotal(c)})
	}
	return Scores{
		Overall:        WeightedScore(drivers, state.Schema().Drivers),
		ENPS:           ENPS(enps),
		DriverTotal:    Total(drivers),
		ENPSTotal:      Total(enps),
		CriteriaTotals: totals,
	}
}

// Board keeps the latest Scores of a state, recomputed on every change.
type Board struct {
	state  *form.State
	latest Scores
	detach func()
}

// NewBoard computes the initial scores and subscribes to state changes.
func NewBoard(state *form.State) *Board {
	b := &Board{state: state}
	b.Refresh()
	if state != nil {
		b.detach = state.Subscribe(func(form.Event) { b.Refresh() })
	}
	return b
}

// Refresh recomputes the scores. Call after a Restore, which emits nothing.
func (b *Board) Refresh() {
	b.latest = Compute(b.state)
}

// Scores returns the last computed scores.
func (b *Board) Scores() Scores {
	out := b.latest
	out.CriteriaTotals = append(make([]CriterionScore, 0, len(b.latest.CriteriaTotals)), b.latest.CriteriaTotals...)
	return out
}

// Close stops listening for changes.
func (b *Board) Close() {
	if b.detach != nil {
		b.detach()
		b.detach = nil
	}
}
