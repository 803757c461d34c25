package core

import (
	"errors"
	"strings"
	"time"
)

const (
	Income  TransactionKind = "income"
	Expense TransactionKind = "expense"
)

const (
	Daily     Frequency = "daily"
	Weekly    Frequency = "weekly"
	BiWeekly  Frequency = "bi-weekly"
	Monthly   Frequency = "monthly"
	Quarterly Frequency = "quarterly"
	Annually  Frequency = "annually"
)

type (
	// TransactionKind tells which gateway sub-resource a transaction was
	// created through and therefore which one its delete must be routed to.
	TransactionKind string

	// Frequency is an optional recurrence period on a transaction.
	Frequency string

	Date struct {
		time.Time
	}

	Money struct {
		Cents int64
	}

	// Transaction is a single ledger entry. Immutable once created; the only
	// mutation is an explicit delete.
	Transaction struct {
		ID        int64
		Title     string
		Amount    Money
		Date      Date
		Category  string
		Kind      TransactionKind
		AccountID int64
		Frequency Frequency

		// Fill is the display color attached when the cache is filled.
		// It is a view annotation, not part of the canonical entity.
		Fill string
	}

	// Account balances are server-authoritative; Transactions is attached
	// lazily after the accounts load and may be nil when its fetch failed.
	Account struct {
		ID           int64
		Name         string
		Type         string
		Balance      Money
		LastUpdated  Date
		Transactions []Transaction
	}

	Goal struct {
		ID          int64
		Name        string
		Description string
		Amount      Money
		Progress    Money
		Deadline    Date
		Completed   bool
	}

	User struct {
		ID       int64
		Username string
		FullName string
	}

	// UserSettings values are percentages in [0, 100] as far as the UI is
	// concerned, but the engine carries whatever the server returned.
	UserSettings struct {
		SpendWarning   float64
		SavingsPercent float64
	}

	// BudgetSummary holds the server-derived budget scalars. They are cached
	// opaquely and never recomputed client-side.
	BudgetSummary struct {
		Allotment     float64
		SpendOverTime float64
		FixedPerMonth float64
	}
)

var (
	ErrInvalidAmount = errors.New("invalid amount")
	ErrEmptyTitle    = errors.New("empty title")
	ErrEmptyName     = errors.New("empty name")
	ErrInvalidKind   = errors.New("invalid transaction kind")
	ErrZeroDate      = errors.New("date cannot be zero")
)

// NewDate creates a Date from year, month, day at midnight UTC.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates a time to day granularity.
func DateOf(t time.Time) Date {
	return NewDate(t.Year(), int(t.Month()), t.Day())
}

// ParseDate parses a date in YYYY-MM-DD form.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return Date{}, err
	}
	return DateOf(t), nil
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrZeroDate
	}
	return nil
}

// MonthLabel returns the (month, year) bucket label used by the time-series
// aggregations, e.g. "Jan 2025".
func (d Date) MonthLabel() string {
	return d.Format("Jan 2006")
}

func (k TransactionKind) IsValid() bool {
	return k == Income || k == Expense
}

func (f Frequency) IsValid() bool {
	switch f {
	case Daily, Weekly, BiWeekly, Monthly, Quarterly, Annually:
		return true
	default:
		return false
	}
}

// Signed returns the amount with income positive and expense negative, the
// orientation used when reconstructing balances from the ledger.
func (t Transaction) Signed() Money {
	if t.Kind == Income {
		return t.Amount
	}
	return t.Amount.Neg()
}

func (t Transaction) Validate() error {
	if len(strings.TrimSpace(t.Title)) == 0 {
		return ErrEmptyTitle
	}
	if err := t.Amount.Validate(); err != nil {
		return err
	}
	if err := t.Date.Validate(); err != nil {
		return err
	}
	if !t.Kind.IsValid() {
		return ErrInvalidKind
	}
	if t.Frequency != "" && !t.Frequency.IsValid() {
		return errors.New("invalid frequency")
	}
	return nil
}

func (g Goal) Validate() error {
	if len(strings.TrimSpace(g.Name)) == 0 {
		return ErrEmptyName
	}
	if err := g.Amount.Validate(); err != nil {
		return err
	}
	if err := g.Deadline.Validate(); err != nil {
		return err
	}
	return nil
}

func (a Account) Validate() error {
	if len(strings.TrimSpace(a.Name)) == 0 {
		return ErrEmptyName
	}
	return nil
}
