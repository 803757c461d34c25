// Package gateway is the REST client for the backend service. It never caches
// or interprets data beyond JSON decoding; staleness and refresh policy live
// in the store.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/google/uuid"

	"bilancio/internal/core"
	"bilancio/internal/log"
)

// ErrUnauthorized reports that the backend rejected the session credential.
// It is the sole trigger for session invalidation.
var ErrUnauthorized = errors.New("session rejected by backend")

// TokenSource supplies the current bearer credential, if any.
type TokenSource interface {
	Token() (string, bool)
}

// Config holds gateway client configuration.
type Config struct {
	BaseURL    string
	HTTPClient *http.Client
	Logger     *log.Logger
}

// Client talks to the backend gateway.
type Client struct {
	base   string
	http   *http.Client
	tokens TokenSource
	logger *log.Logger
}

// NewClient creates a gateway client. A nil HTTPClient falls back to a
// client with a 15 second timeout.
func NewClient(cfg Config, tokens TokenSource) *Client {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &Client{
		base:   cfg.BaseURL,
		http:   httpClient,
		tokens: tokens,
		logger: logger.WithComponent(log.ComponentGateway),
	}
}

// do issues one request: bearer header when a credential is held, a fresh
// request id for tracing, JSON body in, JSON decode out. A 401 response maps
// to ErrUnauthorized; every other non-2xx status is a plain error.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	u := c.base + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode %s %s: %w", method, path, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return fmt.Errorf("build %s %s: %w", method, path, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token, ok := c.tokens.Token(); ok {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	requestID := uuid.NewString()
	req.Header.Set("X-Request-ID", requestID)

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.ErrorContext(ctx, "Gateway request failed",
			log.FieldRequestID, requestID,
			log.FieldMethod, method,
			log.FieldEndpoint, path,
			log.FieldError, err)
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	c.logger.DebugContext(ctx, "Gateway request completed",
		log.FieldRequestID, requestID,
		log.FieldMethod, method,
		log.FieldEndpoint, path,
		log.FieldStatusCode, resp.StatusCode,
		log.FieldDuration, time.Since(start).Milliseconds())

	if resp.StatusCode == http.StatusUnauthorized {
		return fmt.Errorf("%s %s: %w", method, path, ErrUnauthorized)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%s %s: unexpected status %s", method, path, resp.Status)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode %s %s: %w", method, path, err)
		}
	}
	return nil
}

// Transactions lists all transactions across accounts.
func (c *Client) Transactions(ctx context.Context) ([]core.Transaction, error) {
	var dtos []transactionDTO
	if err := c.do(ctx, http.MethodGet, "/transactions", nil, nil, &dtos); err != nil {
		return nil, err
	}
	return transactionsToCore(dtos, ""), nil
}

// AccountTransactions lists one account's transaction history.
func (c *Client) AccountTransactions(ctx context.Context, accountID int64) ([]core.Transaction, error) {
	path := fmt.Sprintf("/accounts/%d/transactions", accountID)
	var dtos []transactionDTO
	if err := c.do(ctx, http.MethodGet, path, nil, nil, &dtos); err != nil {
		return nil, err
	}
	return transactionsToCore(dtos, ""), nil
}

// Expenses lists expense transactions. The expense sub-resource omits the
// kind discriminator, so it is filled in here.
func (c *Client) Expenses(ctx context.Context) ([]core.Transaction, error) {
	var dtos []transactionDTO
	if err := c.do(ctx, http.MethodGet, "/expenses", nil, nil, &dtos); err != nil {
		return nil, err
	}
	return transactionsToCore(dtos, core.Expense), nil
}

// Accounts lists the user's accounts without transaction histories.
func (c *Client) Accounts(ctx context.Context) ([]core.Account, error) {
	var dtos []accountDTO
	if err := c.do(ctx, http.MethodGet, "/accounts", nil, nil, &dtos); err != nil {
		return nil, err
	}
	out := make([]core.Account, 0, len(dtos))
	for _, d := range dtos {
		out = append(out, d.toCore())
	}
	return out, nil
}

// CreateAccount creates an account.
func (c *Client) CreateAccount(ctx context.Context, account NewAccount) error {
	return c.do(ctx, http.MethodPost, "/accounts", nil, account, nil)
}

// DeleteAccount deletes an account.
func (c *Client) DeleteAccount(ctx context.Context, accountID int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/accounts/%d", accountID), nil, nil, nil)
}

// CreateTransaction routes creation to the income or expense sub-resource.
func (c *Client) CreateTransaction(ctx context.Context, tx NewTransaction) error {
	path := "/expenses"
	if tx.IsIncome {
		path = "/income"
	}
	return c.do(ctx, http.MethodPost, path, nil, tx, nil)
}

// DeleteTransaction routes the delete to the sub-resource matching the
// transaction's kind.
func (c *Client) DeleteTransaction(ctx context.Context, id int64, kind core.TransactionKind) error {
	resource := "expenses"
	if kind == core.Income {
		resource = "income"
	}
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/%s/%d", resource, id), nil, nil, nil)
}

// Goals lists the user's savings goals.
func (c *Client) Goals(ctx context.Context) ([]core.Goal, error) {
	var dtos []goalDTO
	if err := c.do(ctx, http.MethodGet, "/goals", nil, nil, &dtos); err != nil {
		return nil, err
	}
	out := make([]core.Goal, 0, len(dtos))
	for _, d := range dtos {
		out = append(out, d.toCore())
	}
	return out, nil
}

// CreateGoal creates a goal.
func (c *Client) CreateGoal(ctx context.Context, goal GoalPayload) error {
	return c.do(ctx, http.MethodPost, "/goals", nil, goal, nil)
}

// UpdateGoal replaces a goal.
func (c *Client) UpdateGoal(ctx context.Context, id int64, goal GoalPayload) error {
	return c.do(ctx, http.MethodPut, fmt.Sprintf("/goals/%d", id), nil, goal, nil)
}

// DeleteGoal deletes a goal.
func (c *Client) DeleteGoal(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/goals/%d", id), nil, nil, nil)
}

// Me fetches the current user's identity and settings record.
func (c *Client) Me(ctx context.Context) (core.User, core.UserSettings, error) {
	var dto userDTO
	if err := c.do(ctx, http.MethodGet, "/users/me/", nil, nil, &dto); err != nil {
		return core.User{}, core.UserSettings{}, err
	}
	user := core.User{ID: dto.ID, Username: dto.Username, FullName: dto.FullName}
	settings := core.UserSettings{SpendWarning: dto.SpendWarning, SavingsPercent: dto.SavingsPercent}
	return user, settings, nil
}

// UpdateSpendWarning sets the warning threshold percentage.
func (c *Client) UpdateSpendWarning(ctx context.Context, value float64) error {
	query := url.Values{"spend_warning": {formatFloat(value)}}
	return c.do(ctx, http.MethodPut, "/users/me/update-spend-warning", query, nil, nil)
}

// UpdateSavingsPercent sets the savings percentage.
func (c *Client) UpdateSavingsPercent(ctx context.Context, value float64) error {
	query := url.Values{"savings_percent": {formatFloat(value)}}
	return c.do(ctx, http.MethodPut, "/users/me/update-savings-percent", query, nil, nil)
}

// BudgetAllotment fetches the weekly budget allotment.
func (c *Client) BudgetAllotment(ctx context.Context) (float64, error) {
	var v float64
	if err := c.do(ctx, http.MethodGet, "/spend/budget-allotment", nil, nil, &v); err != nil {
		return 0, err
	}
	return v, nil
}

// SpendOverTime fetches the amount spent within the date range.
func (c *Client) SpendOverTime(ctx context.Context, start, end core.Date) (float64, error) {
	query := url.Values{
		"start_date": {start.Format("2006-01-02")},
		"end_date":   {end.Format("2006-01-02")},
	}
	var v float64
	if err := c.do(ctx, http.MethodGet, "/spend/spend-over-time", query, nil, &v); err != nil {
		return 0, err
	}
	return v, nil
}

// FixedPerMonth fetches the fixed recurring monthly expense total.
func (c *Client) FixedPerMonth(ctx context.Context) (float64, error) {
	var v float64
	if err := c.do(ctx, http.MethodGet, "/expenses/fixed-per-month", nil, nil, &v); err != nil {
		return 0, err
	}
	return v, nil
}

// LinkToken fetches a bank-link token for the given user.
func (c *Client) LinkToken(ctx context.Context, userID int64) (string, error) {
	query := url.Values{"user_id": {strconv.FormatInt(userID, 10)}}
	var dto linkTokenDTO
	if err := c.do(ctx, http.MethodGet, "/plaid/link-token", query, nil, &dto); err != nil {
		return "", err
	}
	return dto.LinkToken, nil
}

// ExchangePublicToken exchanges a public bank-link token for a persistent
// connection named after the institution.
func (c *Client) ExchangePublicToken(ctx context.Context, publicToken, institutionName string) error {
	body := map[string]string{"public_token": publicToken, "name": institutionName}
	return c.do(ctx, http.MethodPost, "/plaid/exchange-public-token", nil, body, nil)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
