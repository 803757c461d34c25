package gateway

import (
	"time"

	"bilancio/internal/core"
)

// Wire representations of the backend's JSON payloads. Amounts travel as
// decimal dollars and are converted to cents at the boundary.

type transactionDTO struct {
	ID        int64   `json:"id"`
	Title     string  `json:"title"`
	Amount    float64 `json:"amount"`
	Date      string  `json:"date"`
	Category  string  `json:"category"`
	Type      string  `json:"type"`
	AccountID int64   `json:"account_id"`
	Frequency string  `json:"frequency,omitempty"`
}

type accountDTO struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Type        string  `json:"type"`
	Balance     float64 `json:"balance"`
	LastUpdated string  `json:"last_updated"`
}

type goalDTO struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Amount      float64 `json:"amount"`
	Progress    float64 `json:"progress"`
	Date        string  `json:"date"`
	Completed   bool    `json:"completed"`
}

type userDTO struct {
	ID             int64   `json:"id"`
	Username       string  `json:"username"`
	FullName       string  `json:"full_name"`
	SpendWarning   float64 `json:"spend_warning"`
	SavingsPercent float64 `json:"savings_percent"`
}

type linkTokenDTO struct {
	LinkToken string `json:"link_token"`
}

// NewTransaction is the payload for transaction creation. IsIncome selects
// the income or expense sub-resource.
type NewTransaction struct {
	Title     string         `json:"title"`
	Amount    float64        `json:"amount"`
	Date      string         `json:"date"`
	Category  string         `json:"category"`
	IsIncome  bool           `json:"isIncome"`
	AccountID int64          `json:"account_id,omitempty"`
	Frequency core.Frequency `json:"frequency,omitempty"`
}

// NewAccount is the payload for account creation.
type NewAccount struct {
	Name    string  `json:"name"`
	Type    string  `json:"type"`
	Balance float64 `json:"balance"`
}

// GoalPayload is the payload for goal create and update.
type GoalPayload struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Amount      float64 `json:"amount"`
	Progress    float64 `json:"progress"`
	Date        string  `json:"date"`
	Completed   bool    `json:"completed"`
}

// parseDate accepts the backend's date formats: plain day or RFC 3339.
func parseDate(s string) core.Date {
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return core.DateOf(t)
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return core.DateOf(t)
	}
	return core.Date{}
}

func (d transactionDTO) toCore(kind core.TransactionKind) core.Transaction {
	if d.Type != "" {
		kind = core.TransactionKind(d.Type)
	}
	return core.Transaction{
		ID:        d.ID,
		Title:     d.Title,
		Amount:    core.FromDollars(d.Amount),
		Date:      parseDate(d.Date),
		Category:  d.Category,
		Kind:      kind,
		AccountID: d.AccountID,
		Frequency: core.Frequency(d.Frequency),
	}
}

func (d accountDTO) toCore() core.Account {
	return core.Account{
		ID:          d.ID,
		Name:        d.Name,
		Type:        d.Type,
		Balance:     core.FromDollars(d.Balance),
		LastUpdated: parseDate(d.LastUpdated),
	}
}

func (d goalDTO) toCore() core.Goal {
	return core.Goal{
		ID:          d.ID,
		Name:        d.Name,
		Description: d.Description,
		Amount:      core.FromDollars(d.Amount),
		Progress:    core.FromDollars(d.Progress),
		Deadline:    parseDate(d.Date),
		Completed:   d.Completed,
	}
}

func transactionsToCore(dtos []transactionDTO, fallback core.TransactionKind) []core.Transaction {
	out := make([]core.Transaction, 0, len(dtos))
	for _, d := range dtos {
		out = append(out, d.toCore(fallback))
	}
	return out
}
