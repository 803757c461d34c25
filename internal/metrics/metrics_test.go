package metrics

import (
	"testing"

	"bilancio/internal/core"
)

func expense(title, category string, amount float64, date core.Date) core.Transaction {
	return core.Transaction{
		Title:    title,
		Amount:   core.FromDollars(amount),
		Date:     date,
		Category: category,
		Kind:     core.Expense,
	}
}

func income(title string, amount float64, date core.Date) core.Transaction {
	return core.Transaction{
		Title:  title,
		Amount: core.FromDollars(amount),
		Date:   date,
		Kind:   core.Income,
	}
}

func TestCategoryBreakdown(t *testing.T) {
	day := core.NewDate(2025, 3, 10)
	expenses := []core.Transaction{
		expense("groceries", "Food", 42.50, day),
		expense("rent", "Housing", 1200, day),
		expense("takeaway", "Food", 17.50, day),
		expense("mystery", "Gadgets", 30, day),
	}

	got := CategoryBreakdown(expenses)
	if len(got) != 3 {
		t.Fatalf("CategoryBreakdown() returned %d slices, want 3", len(got))
	}

	// Insertion order of first occurrence.
	wantOrder := []string{"Food", "Housing", "Gadgets"}
	for i, name := range wantOrder {
		if got[i].Name != name {
			t.Errorf("slice %d = %q, want %q", i, got[i].Name, name)
		}
	}

	if got[0].Total.Cents != 6000 {
		t.Errorf("Food total = %d cents, want 6000", got[0].Total.Cents)
	}
	if got[0].Fill != core.CategoryColors["Food"] {
		t.Errorf("Food fill = %q, want table color", got[0].Fill)
	}
	if got[2].Fill != core.DefaultColor {
		t.Errorf("unknown category fill = %q, want default %q", got[2].Fill, core.DefaultColor)
	}

	// Per-category sums add up to the cache's total.
	var total, sum core.Money
	for _, e := range expenses {
		total = total.Add(e.Amount)
	}
	for _, slice := range got {
		sum = sum.Add(slice.Total)
	}
	if sum != total {
		t.Errorf("sum over slices = %d cents, want %d", sum.Cents, total.Cents)
	}
}

func TestCategoryBreakdownEmpty(t *testing.T) {
	if got := CategoryBreakdown(nil); len(got) != 0 {
		t.Errorf("CategoryBreakdown(nil) = %v, want empty", got)
	}
}

func TestMonthlySeries(t *testing.T) {
	transactions := []core.Transaction{
		// Deliberately out of order.
		expense("rent", "Housing", 1000, core.NewDate(2025, 2, 1)),
		income("salary", 3000, core.NewDate(2025, 1, 15)),
		expense("groceries", "Food", 500, core.NewDate(2025, 1, 20)),
		income("salary", 3000, core.NewDate(2025, 2, 15)),
		income("bonus", 200, core.NewDate(2025, 1, 31)),
	}

	got := MonthlySeries(transactions)
	if len(got) != 2 {
		t.Fatalf("MonthlySeries() returned %d buckets, want 2", len(got))
	}
	if got[0].Label != "Jan 2025" || got[1].Label != "Feb 2025" {
		t.Fatalf("bucket order = [%q, %q], want chronological", got[0].Label, got[1].Label)
	}

	jan := got[0]
	if jan.Income.Cents != 320000 {
		t.Errorf("Jan income = %d cents, want 320000", jan.Income.Cents)
	}
	if jan.Expenses.Cents != 50000 {
		t.Errorf("Jan expenses = %d cents, want 50000", jan.Expenses.Cents)
	}
	if jan.NetGain.Cents != 270000 {
		t.Errorf("Jan net = %d cents, want 270000", jan.NetGain.Cents)
	}

	feb := got[1]
	if feb.NetGain.Cents != 200000 {
		t.Errorf("Feb net = %d cents, want 200000", feb.NetGain.Cents)
	}
}

func TestMonthlySeriesNetInvariant(t *testing.T) {
	transactions := []core.Transaction{
		income("a", 10, core.NewDate(2024, 11, 1)),
		expense("b", "Food", 4, core.NewDate(2024, 12, 2)),
		income("c", 7.50, core.NewDate(2025, 1, 3)),
		expense("d", "Travel", 2.25, core.NewDate(2025, 1, 4)),
	}

	var wantNet, gotNet core.Money
	for _, tx := range transactions {
		wantNet = wantNet.Add(tx.Signed())
	}
	for _, bucket := range MonthlySeries(transactions) {
		gotNet = gotNet.Add(bucket.NetGain)
	}
	if gotNet != wantNet {
		t.Errorf("sum of bucket net gains = %d cents, want %d", gotNet.Cents, wantNet.Cents)
	}
}

func TestBalanceTimeline(t *testing.T) {
	balance := core.FromDollars(1000)
	history := []core.Transaction{
		// Out of order on purpose; the reconstruction sorts.
		expense("dinner", "Food", 25, core.NewDate(2025, 2, 5)),
		income("pay", 100, core.NewDate(2025, 1, 10)),
		expense("fuel", "Transportation", 50, core.NewDate(2025, 1, 20)),
	}

	got := BalanceTimeline(balance, history)
	if len(got) != 2 {
		t.Fatalf("BalanceTimeline() returned %d buckets, want 2", len(got))
	}

	// Jan's bucket holds the balance after its last transaction: the current
	// balance minus everything after Jan 20.
	if got[0].Label != "Jan 2025" || got[0].Value.Cents != 102500 {
		t.Errorf("Jan bucket = %q %d cents, want Jan 2025 102500", got[0].Label, got[0].Value.Cents)
	}
	// The final bucket reproduces the present balance exactly.
	if got[1].Label != "Feb 2025" || got[1].Value != balance {
		t.Errorf("Feb bucket = %q %d cents, want Feb 2025 %d", got[1].Label, got[1].Value.Cents, balance.Cents)
	}
}

func TestBalanceTimelineEmptyHistory(t *testing.T) {
	if got := BalanceTimeline(core.FromDollars(500), nil); len(got) != 0 {
		t.Errorf("BalanceTimeline() with no history = %v, want empty", got)
	}
}

func TestBalanceTimelineRoundTrip(t *testing.T) {
	// Whatever the history, the bucket containing the latest transaction must
	// equal the authoritative present balance.
	balance := core.FromDollars(123.45)
	history := []core.Transaction{
		income("a", 10, core.NewDate(2024, 6, 1)),
		expense("b", "Food", 20, core.NewDate(2024, 7, 1)),
		income("c", 30, core.NewDate(2024, 8, 1)),
		expense("d", "Travel", 40, core.NewDate(2024, 8, 20)),
	}
	got := BalanceTimeline(balance, history)
	if len(got) == 0 {
		t.Fatal("BalanceTimeline() returned no buckets")
	}
	last := got[len(got)-1]
	if last.Value != balance {
		t.Errorf("latest bucket = %d cents, want present balance %d", last.Value.Cents, balance.Cents)
	}
}
