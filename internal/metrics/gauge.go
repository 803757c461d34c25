package metrics

import (
	"math"
	"time"

	"bilancio/internal/core"
)

// Gauge fill colors.
const (
	NormalColor  = "#82ca9d"
	WarningColor = "#ffd700"
)

// chartEpsilon is substituted for an exactly-zero safe-to-spend value so the
// gauge still renders a visible arc. It never appears in the numeric fields.
const chartEpsilon = 0.01

// GaugeInput is a snapshot of everything the spend gauge depends on.
// Amounts are dollars; SelectedDays nil means all weekdays selected.
type GaugeInput struct {
	Allotment        float64
	WarningThreshold float64
	Transactions     []core.Transaction
	SelectedDays     map[time.Weekday]bool
	Now              time.Time
}

// Gauge holds the computed safe-to-spend figures for the current period.
type Gauge struct {
	DailyBudget      float64
	PeriodBudget     float64
	PeriodSpend      float64
	SafeToSpend      float64
	PercentRemaining float64
	NearWarning      bool
	Fill             string

	// ChartValue is SafeToSpend with the zero-arc substitution applied.
	ChartValue float64
}

// SpendGauge computes the safe-to-spend gauge over the week containing Now,
// reduced to the selected weekdays. A non-positive allotment means no budget
// is configured: the second return is false and the gauge must not be shown.
func SpendGauge(in GaugeInput) (Gauge, bool) {
	if in.Allotment <= 0 {
		return Gauge{}, false
	}

	dailyBudget := in.Allotment / 7
	selectedCount := countSelected(in.SelectedDays)
	periodBudget := dailyBudget * float64(selectedCount)

	today := core.DateOf(in.Now)
	weekStart := core.DateOf(in.Now.AddDate(0, 0, -int(in.Now.Weekday())))

	var spent core.Money
	for _, t := range in.Transactions {
		if t.Kind != core.Expense {
			continue
		}
		if t.Date.Before(weekStart.Time) || t.Date.After(today.Time) {
			continue
		}
		if !daySelected(in.SelectedDays, t.Date.Weekday()) {
			continue
		}
		spent = spent.Add(t.Amount)
	}
	periodSpend := spent.Dollars()

	safeToSpend := math.Max(0, periodBudget-periodSpend)
	percentRemaining := 100 - (periodSpend/periodBudget)*100
	nearWarning := in.WarningThreshold >= percentRemaining

	fill := NormalColor
	if nearWarning {
		fill = WarningColor
	}
	chartValue := safeToSpend
	if chartValue == 0 {
		chartValue = chartEpsilon
	}

	return Gauge{
		DailyBudget:      dailyBudget,
		PeriodBudget:     periodBudget,
		PeriodSpend:      periodSpend,
		SafeToSpend:      safeToSpend,
		PercentRemaining: percentRemaining,
		NearWarning:      nearWarning,
		Fill:             fill,
		ChartValue:       chartValue,
	}, true
}

// countSelected never returns zero: with every weekday deselected the period
// still spans one day, which keeps the budget denominator positive.
func countSelected(days map[time.Weekday]bool) int {
	if days == nil {
		return 7
	}
	n := 0
	for _, selected := range days {
		if selected {
			n++
		}
	}
	if n == 0 {
		return 1
	}
	return n
}

func daySelected(days map[time.Weekday]bool, d time.Weekday) bool {
	if days == nil {
		return true
	}
	return days[d]
}

// Needle is the rendering transform that places the warning marker on the
// gauge arc.
type Needle struct {
	AngleDeg   float64
	RotateDeg  float64
	TranslateX float64
	TranslateY float64
}

// Needle transform constants. The angle range matters (0% and 100% must land
// on the two ends of the arc); offset and clamp are cosmetic.
const (
	needleStartAngle = -20.0
	needleEndAngle   = 200.0
	needleOffset     = 255.0
	needleClamp      = 315.0
)

// NeedlePosition maps a 0–100 percentage linearly onto the gauge's angular
// range and projects it to a 2-D translation plus rotation.
func NeedlePosition(percent float64) Needle {
	angle := needleStartAngle + (percent/100)*(needleEndAngle-needleStartAngle)
	rad := angle * math.Pi / 180

	x := -math.Cos(rad) * needleOffset
	y := -math.Sin(rad) * needleOffset

	return Needle{
		AngleDeg:   angle,
		RotateDeg:  90 + angle,
		TranslateX: clamp(x, -needleClamp, needleClamp),
		TranslateY: clamp(y, -needleClamp, needleClamp),
	}
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
