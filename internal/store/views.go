package store

import (
	"time"

	"bilancio/internal/metrics"
)

// Computed views over the current snapshots. These delegate to the metrics
// package and never touch cache state; staleness follows whatever the caches
// currently hold.

// CategoryBreakdown aggregates the expense cache by category.
func (s *Store) CategoryBreakdown() []metrics.CategorySlice {
	expenses, _ := s.Expenses()
	return metrics.CategoryBreakdown(expenses)
}

// SpendGauge computes the safe-to-spend gauge for the current week, reduced
// to the selected weekdays (nil means all). The second return is false when
// no budget is configured.
func (s *Store) SpendGauge(selectedDays map[time.Weekday]bool) (metrics.Gauge, bool) {
	budget, _ := s.Budget()
	settings, _ := s.Settings()
	transactions, _ := s.Transactions()
	return metrics.SpendGauge(metrics.GaugeInput{
		Allotment:        budget.Allotment,
		WarningThreshold: settings.SpendWarning,
		Transactions:     transactions,
		SelectedDays:     selectedDays,
		Now:              s.now(),
	})
}

// BalanceTimeline reconstructs the balance history of one cached account.
// The bool is false when the account is not in the cache.
func (s *Store) BalanceTimeline(accountID int64) ([]metrics.BalancePoint, bool) {
	accounts, _ := s.Accounts()
	for _, a := range accounts {
		if a.ID == accountID {
			return metrics.BalanceTimeline(a.Balance, a.Transactions), true
		}
	}
	return nil, false
}

// MonthlySeries groups the transaction cache into the chronological monthly
// income/expense/net series.
func (s *Store) MonthlySeries() []metrics.MonthlyPoint {
	transactions, _ := s.Transactions()
	return metrics.MonthlySeries(transactions)
}

// WarningNeedle returns the rendering transform placing the warning marker
// at the configured threshold on the gauge arc.
func (s *Store) WarningNeedle() metrics.Needle {
	settings, _ := s.Settings()
	return metrics.NeedlePosition(settings.SpendWarning)
}
