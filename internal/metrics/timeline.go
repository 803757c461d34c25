package metrics

import (
	"sort"

	"bilancio/internal/core"
)

// BalancePoint is one (month, year) bucket of an account's reconstructed
// balance history.
type BalancePoint struct {
	Label string
	Value core.Money
}

// BalanceTimeline reconstructs an account's historical balance series from
// its present balance and full transaction history. For each transaction the
// balance "as of" that date is the current balance minus every later
// transaction's signed amount; later transactions in the same (month, year)
// bucket overwrite the bucket, so each bucket holds the balance after its
// last transaction.
//
// The present balance is taken as authoritative: an out-of-band adjustment
// not recorded as a transaction skews all reconstructed points equally.
func BalanceTimeline(balance core.Money, history []core.Transaction) []BalancePoint {
	txs := make([]core.Transaction, len(history))
	copy(txs, history)
	sort.SliceStable(txs, func(i, j int) bool {
		return txs[i].Date.Before(txs[j].Date.Time)
	})

	var out []BalancePoint
	index := make(map[string]int)
	for _, t := range txs {
		var after core.Money
		for _, u := range txs {
			if u.Date.After(t.Date.Time) {
				after = after.Add(u.Signed())
			}
		}
		value := balance.Sub(after)

		label := t.Date.MonthLabel()
		if i, ok := index[label]; ok {
			out[i].Value = value
			continue
		}
		index[label] = len(out)
		out = append(out, BalancePoint{Label: label, Value: value})
	}
	return out
}
