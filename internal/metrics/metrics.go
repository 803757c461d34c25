// Package metrics derives the dashboard figures from cache snapshots. Every
// function here is pure and total: no I/O, no cache mutation, and well-formed
// input never produces a panic or a non-finite number.
package metrics

import (
	"sort"
	"time"

	"bilancio/internal/core"
)

// CategorySlice is one category's total with its display color.
type CategorySlice struct {
	Name  string
	Total core.Money
	Fill  string
}

// CategoryBreakdown sums expense amounts per category. Categories appear in
// order of first occurrence; an empty ledger yields an empty slice.
func CategoryBreakdown(expenses []core.Transaction) []CategorySlice {
	var out []CategorySlice
	index := make(map[string]int)
	for _, e := range expenses {
		if i, ok := index[e.Category]; ok {
			out[i].Total = out[i].Total.Add(e.Amount)
			continue
		}
		index[e.Category] = len(out)
		out = append(out, CategorySlice{
			Name:  e.Category,
			Total: e.Amount,
			Fill:  core.ColorFor(e.Category),
		})
	}
	return out
}

// MonthlyPoint is one (month, year) bucket of the income/expense series.
type MonthlyPoint struct {
	Label    string
	Income   core.Money
	Expenses core.Money
	NetGain  core.Money

	bucket time.Time
}

// MonthlySeries groups transactions by (month, year), summing income and
// expense amounts separately and deriving the net gain per bucket. The result
// is in chronological order for charting.
func MonthlySeries(transactions []core.Transaction) []MonthlyPoint {
	var out []MonthlyPoint
	index := make(map[string]int)
	for _, t := range transactions {
		label := t.Date.MonthLabel()
		i, ok := index[label]
		if !ok {
			index[label] = len(out)
			out = append(out, MonthlyPoint{
				Label:  label,
				bucket: time.Date(t.Date.Year(), t.Date.Month(), 1, 0, 0, 0, 0, time.UTC),
			})
			i = len(out) - 1
		}
		switch t.Kind {
		case core.Income:
			out[i].Income = out[i].Income.Add(t.Amount)
		default:
			out[i].Expenses = out[i].Expenses.Add(t.Amount)
		}
	}
	for i := range out {
		out[i].NetGain = out[i].Income.Sub(out[i].Expenses)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].bucket.Before(out[j].bucket)
	})
	return out
}
