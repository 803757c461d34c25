package metrics

import (
	"math"
	"testing"
	"time"

	"bilancio/internal/core"
)

// Wednesday June 4 2025; the containing week runs Sunday June 1 – Saturday
// June 7.
var gaugeNow = time.Date(2025, 6, 4, 12, 0, 0, 0, time.UTC)

func expenseOn(day int, amount float64) core.Transaction {
	return core.Transaction{
		Title:    "expense",
		Amount:   core.FromDollars(amount),
		Date:     core.NewDate(2025, 6, day),
		Category: "Food",
		Kind:     core.Expense,
	}
}

func TestSpendGauge(t *testing.T) {
	tests := []struct {
		name             string
		allotment        float64
		warning          float64
		transactions     []core.Transaction
		selectedDays     map[time.Weekday]bool
		wantDaily        float64
		wantPeriodBudget float64
		wantSafe         float64
		wantPercent      float64
		wantNearWarning  bool
		wantFill         string
	}{
		{
			name:             "under budget stays normal",
			allotment:        700,
			warning:          25,
			transactions:     []core.Transaction{expenseOn(2, 200)},
			wantDaily:        100,
			wantPeriodBudget: 700,
			wantSafe:         500,
			wantPercent:      100 - (200.0/700.0)*100,
			wantNearWarning:  false,
			wantFill:         NormalColor,
		},
		{
			name:             "deep spend crosses warning threshold",
			allotment:        700,
			warning:          25,
			transactions:     []core.Transaction{expenseOn(2, 600)},
			wantDaily:        100,
			wantPeriodBudget: 700,
			wantSafe:         100,
			wantPercent:      100 - (600.0/700.0)*100,
			wantNearWarning:  true,
			wantFill:         WarningColor,
		},
		{
			name:             "income never counts as spend",
			allotment:        700,
			warning:          25,
			transactions: []core.Transaction{
				{Amount: core.FromDollars(400), Date: core.NewDate(2025, 6, 2), Kind: core.Income},
			},
			wantDaily:        100,
			wantPeriodBudget: 700,
			wantSafe:         700,
			wantPercent:      100,
			wantNearWarning:  false,
			wantFill:         NormalColor,
		},
		{
			name:      "outside the week is ignored",
			allotment: 700,
			warning:   25,
			transactions: []core.Transaction{
				expenseOn(4, 50),  // Wednesday, today: counted
				expenseOn(5, 999), // Thursday, after today: not counted
				{Amount: core.FromDollars(999), Date: core.NewDate(2025, 5, 31), Kind: core.Expense}, // previous week
			},
			wantDaily:        100,
			wantPeriodBudget: 700,
			wantSafe:         650,
			wantPercent:      100 - (50.0/700.0)*100,
			wantNearWarning:  false,
			wantFill:         NormalColor,
		},
		{
			name:      "deselected weekday drops its spend",
			allotment: 700,
			warning:   25,
			transactions: []core.Transaction{
				expenseOn(2, 100), // Monday: selected
				expenseOn(3, 100), // Tuesday: deselected
			},
			selectedDays: map[time.Weekday]bool{
				time.Sunday: true, time.Monday: true, time.Wednesday: true,
				time.Thursday: true, time.Friday: true, time.Saturday: true,
			},
			wantDaily:        100,
			wantPeriodBudget: 600,
			wantSafe:         500,
			wantPercent:      100 - (100.0/600.0)*100,
			wantNearWarning:  false,
			wantFill:         NormalColor,
		},
		{
			name:             "all days deselected counts as one",
			allotment:        700,
			warning:          25,
			transactions:     nil,
			selectedDays:     map[time.Weekday]bool{},
			wantDaily:        100,
			wantPeriodBudget: 100,
			wantSafe:         100,
			wantPercent:      100,
			wantNearWarning:  false,
			wantFill:         NormalColor,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gauge, ok := SpendGauge(GaugeInput{
				Allotment:        tt.allotment,
				WarningThreshold: tt.warning,
				Transactions:     tt.transactions,
				SelectedDays:     tt.selectedDays,
				Now:              gaugeNow,
			})
			if !ok {
				t.Fatal("SpendGauge() reported no budget for a positive allotment")
			}
			if !closeTo(gauge.DailyBudget, tt.wantDaily) {
				t.Errorf("DailyBudget = %v, want %v", gauge.DailyBudget, tt.wantDaily)
			}
			if !closeTo(gauge.PeriodBudget, tt.wantPeriodBudget) {
				t.Errorf("PeriodBudget = %v, want %v", gauge.PeriodBudget, tt.wantPeriodBudget)
			}
			if !closeTo(gauge.SafeToSpend, tt.wantSafe) {
				t.Errorf("SafeToSpend = %v, want %v", gauge.SafeToSpend, tt.wantSafe)
			}
			if !closeTo(gauge.PercentRemaining, tt.wantPercent) {
				t.Errorf("PercentRemaining = %v, want %v", gauge.PercentRemaining, tt.wantPercent)
			}
			if gauge.NearWarning != tt.wantNearWarning {
				t.Errorf("NearWarning = %v, want %v", gauge.NearWarning, tt.wantNearWarning)
			}
			if gauge.Fill != tt.wantFill {
				t.Errorf("Fill = %q, want %q", gauge.Fill, tt.wantFill)
			}
		})
	}
}

func TestSpendGaugeNeverNegative(t *testing.T) {
	gauge, ok := SpendGauge(GaugeInput{
		Allotment:        70,
		WarningThreshold: 25,
		Transactions:     []core.Transaction{expenseOn(2, 5000)},
		Now:              gaugeNow,
	})
	if !ok {
		t.Fatal("SpendGauge() reported no budget")
	}
	if gauge.SafeToSpend != 0 {
		t.Errorf("SafeToSpend = %v, want 0 when spend exceeds budget", gauge.SafeToSpend)
	}
	if gauge.ChartValue != 0.01 {
		t.Errorf("ChartValue = %v, want the 0.01 arc substitution", gauge.ChartValue)
	}
	if !gauge.NearWarning {
		t.Error("NearWarning = false, want true when everything is spent")
	}
}

func TestSpendGaugeChartValuePassthrough(t *testing.T) {
	gauge, _ := SpendGauge(GaugeInput{
		Allotment:    700,
		Transactions: []core.Transaction{expenseOn(2, 200)},
		Now:          gaugeNow,
	})
	if gauge.ChartValue != gauge.SafeToSpend {
		t.Errorf("ChartValue = %v, want SafeToSpend %v when non-zero", gauge.ChartValue, gauge.SafeToSpend)
	}
}

func TestSpendGaugeNoBudget(t *testing.T) {
	for _, allotment := range []float64{0, -50} {
		if _, ok := SpendGauge(GaugeInput{Allotment: allotment, Now: gaugeNow}); ok {
			t.Errorf("SpendGauge() with allotment %v should report no budget", allotment)
		}
	}
}

func TestNeedlePosition(t *testing.T) {
	tests := []struct {
		percent   float64
		wantAngle float64
	}{
		{0, -20},
		{50, 90},
		{100, 200},
	}
	for _, tt := range tests {
		got := NeedlePosition(tt.percent)
		if !closeTo(got.AngleDeg, tt.wantAngle) {
			t.Errorf("NeedlePosition(%v).AngleDeg = %v, want %v", tt.percent, got.AngleDeg, tt.wantAngle)
		}
		if !closeTo(got.RotateDeg, 90+tt.wantAngle) {
			t.Errorf("NeedlePosition(%v).RotateDeg = %v, want %v", tt.percent, got.RotateDeg, 90+tt.wantAngle)
		}
		if math.Abs(got.TranslateX) > needleClamp || math.Abs(got.TranslateY) > needleClamp {
			t.Errorf("NeedlePosition(%v) translation (%v, %v) exceeds clamp", tt.percent, got.TranslateX, got.TranslateY)
		}
	}

	// 50% is the top of the arc: straight down projection, no x offset.
	mid := NeedlePosition(50)
	if math.Abs(mid.TranslateX) > 1e-9 {
		t.Errorf("NeedlePosition(50).TranslateX = %v, want 0", mid.TranslateX)
	}
	if !closeTo(mid.TranslateY, -needleOffset) {
		t.Errorf("NeedlePosition(50).TranslateY = %v, want %v", mid.TranslateY, -needleOffset)
	}
}

func closeTo(got, want float64) bool {
	return math.Abs(got-want) < 1e-9
}
