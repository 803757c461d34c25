package store

import (
	"context"
	"errors"
	"fmt"

	"bilancio/internal/core"
	"bilancio/internal/gateway"
	"bilancio/internal/log"
)

// Mutations commit server-side first and then re-synchronize only the caches
// the mutation touched. The refresh sequence is sequential and independent:
// a transient failure in one refresh is logged and the next still runs, since
// the record is already committed server-side either way. A session rejection
// at any step clears the session, invalidates every cache, and silently
// abandons the remaining steps.

// AddTransaction creates a transaction, routed to the income or expense
// sub-resource, then refreshes the scoped transactions, the unscoped
// expenses, and the budget summary.
func (s *Store) AddTransaction(ctx context.Context, input gateway.NewTransaction) error {
	kind := core.Expense
	if input.IsIncome {
		kind = core.Income
	}
	probe := core.Transaction{
		Title:     input.Title,
		Amount:    core.FromDollars(input.Amount),
		Date:      parseInputDate(input.Date),
		Category:  input.Category,
		Kind:      kind,
		Frequency: input.Frequency,
	}
	if err := probe.Validate(); err != nil {
		return fmt.Errorf("invalid transaction: %w", err)
	}
	if err := s.requireSession(); err != nil {
		return err
	}

	if err := s.gw.CreateTransaction(ctx, input); err != nil {
		return s.fail(ctx, ResourceTransactions, err)
	}
	s.logger.InfoContext(ctx, "Transaction created",
		log.FieldOperation, log.OpCreate,
		log.FieldKind, string(kind))

	return s.refreshAfterLedgerMutation(ctx)
}

// DeleteTransaction deletes a transaction through the sub-resource matching
// its kind, then runs the same three-fold refresh as creation. The cache is
// never touched before the server confirms.
func (s *Store) DeleteTransaction(ctx context.Context, id int64, kind core.TransactionKind) error {
	if !kind.IsValid() {
		return core.ErrInvalidKind
	}
	if err := s.requireSession(); err != nil {
		return err
	}

	if err := s.gw.DeleteTransaction(ctx, id, kind); err != nil {
		return s.fail(ctx, ResourceTransactions, err)
	}
	s.logger.InfoContext(ctx, "Transaction deleted",
		log.FieldOperation, log.OpDelete,
		log.FieldKind, string(kind))

	return s.refreshAfterLedgerMutation(ctx)
}

func (s *Store) refreshAfterLedgerMutation(ctx context.Context) error {
	var firstErr error
	steps := []func(context.Context) error{
		s.RefreshTransactions,
		s.RefreshExpenses,
		s.RefreshBudget,
	}
	for _, step := range steps {
		if err := step(ctx); err != nil {
			if errors.Is(err, gateway.ErrUnauthorized) {
				// Session already invalidated by fail(); abandon the rest.
				return nil
			}
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

// AddAccount creates an account and refreshes the accounts cache, which
// re-derives the per-account transaction histories.
func (s *Store) AddAccount(ctx context.Context, input gateway.NewAccount) error {
	probe := core.Account{Name: input.Name, Type: input.Type}
	if err := probe.Validate(); err != nil {
		return fmt.Errorf("invalid account: %w", err)
	}
	if err := s.requireSession(); err != nil {
		return err
	}

	if err := s.gw.CreateAccount(ctx, input); err != nil {
		return s.fail(ctx, ResourceAccounts, err)
	}
	s.logger.InfoContext(ctx, "Account created", log.FieldOperation, log.OpCreate)

	if err := s.RefreshAccounts(ctx); err != nil && !errors.Is(err, gateway.ErrUnauthorized) {
		return err
	}
	return nil
}

// DeleteAccount deletes an account and refreshes the accounts cache.
func (s *Store) DeleteAccount(ctx context.Context, id int64) error {
	if err := s.requireSession(); err != nil {
		return err
	}

	if err := s.gw.DeleteAccount(ctx, id); err != nil {
		return s.fail(ctx, ResourceAccounts, err)
	}
	s.logger.InfoContext(ctx, "Account deleted",
		log.FieldOperation, log.OpDelete,
		log.FieldAccountID, id)

	if err := s.RefreshAccounts(ctx); err != nil && !errors.Is(err, gateway.ErrUnauthorized) {
		return err
	}
	return nil
}

// AddGoal creates a goal and re-pulls the authoritative goal list.
func (s *Store) AddGoal(ctx context.Context, goal core.Goal) error {
	if err := goal.Validate(); err != nil {
		return fmt.Errorf("invalid goal: %w", err)
	}
	return s.goalMutation(ctx, log.OpCreate, 0, func(ctx context.Context) error {
		return s.gw.CreateGoal(ctx, goalPayload(goal))
	})
}

// UpdateGoal replaces a goal server-side and re-pulls the goal list. Goal
// records are never patched client-side.
func (s *Store) UpdateGoal(ctx context.Context, goal core.Goal) error {
	if err := goal.Validate(); err != nil {
		return fmt.Errorf("invalid goal: %w", err)
	}
	return s.goalMutation(ctx, log.OpUpdate, goal.ID, func(ctx context.Context) error {
		return s.gw.UpdateGoal(ctx, goal.ID, goalPayload(goal))
	})
}

// DeleteGoal deletes a goal and re-pulls the goal list.
func (s *Store) DeleteGoal(ctx context.Context, id int64) error {
	return s.goalMutation(ctx, log.OpDelete, id, func(ctx context.Context) error {
		return s.gw.DeleteGoal(ctx, id)
	})
}

// UpdateGoalProgress updates the saved-so-far amount of one cached goal by
// replacing the full record server-side, then re-pulls the goal list.
func (s *Store) UpdateGoalProgress(ctx context.Context, id int64, progress core.Money) error {
	goals, _ := s.Goals()
	var found *core.Goal
	for i := range goals {
		if goals[i].ID == id {
			found = &goals[i]
			break
		}
	}
	if found == nil {
		return fmt.Errorf("goal %d not in cache", id)
	}
	found.Progress = progress
	return s.goalMutation(ctx, log.OpUpdate, id, func(ctx context.Context) error {
		return s.gw.UpdateGoal(ctx, id, goalPayload(*found))
	})
}

func (s *Store) goalMutation(ctx context.Context, op string, id int64, mutate func(context.Context) error) error {
	if err := s.requireSession(); err != nil {
		return err
	}
	if err := mutate(ctx); err != nil {
		return s.fail(ctx, ResourceGoals, err)
	}
	s.logger.InfoContext(ctx, "Goal mutation committed",
		log.FieldOperation, op,
		log.FieldGoalID, id)

	if err := s.RefreshGoals(ctx); err != nil && !errors.Is(err, gateway.ErrUnauthorized) {
		return err
	}
	return nil
}

// UpdateSpendWarning sets the warning threshold. The local settings cache is
// updated only once the server confirms, never optimistically.
func (s *Store) UpdateSpendWarning(ctx context.Context, value float64) error {
	if err := s.requireSession(); err != nil {
		return err
	}
	if err := s.gw.UpdateSpendWarning(ctx, value); err != nil {
		return s.fail(ctx, ResourceSettings, err)
	}
	s.mu.Lock()
	s.settings.SpendWarning = value
	s.mu.Unlock()
	return nil
}

// UpdateSavingsPercent sets the savings percentage, confirmed-then-local like
// UpdateSpendWarning.
func (s *Store) UpdateSavingsPercent(ctx context.Context, value float64) error {
	if err := s.requireSession(); err != nil {
		return err
	}
	if err := s.gw.UpdateSavingsPercent(ctx, value); err != nil {
		return s.fail(ctx, ResourceSettings, err)
	}
	s.mu.Lock()
	s.settings.SavingsPercent = value
	s.mu.Unlock()
	return nil
}

// LinkToken fetches a bank-link token for the current user, loading the
// identity record first when needed.
func (s *Store) LinkToken(ctx context.Context) (string, error) {
	if err := s.EnsureUser(ctx); err != nil {
		return "", err
	}
	user, _ := s.User()
	if user == nil {
		return "", ErrNoSession
	}
	token, err := s.gw.LinkToken(ctx, user.ID)
	if err != nil {
		return "", s.fail(ctx, ResourceUser, err)
	}
	return token, nil
}

// ExchangeBankToken completes a bank link and refreshes the accounts cache so
// the newly linked accounts appear.
func (s *Store) ExchangeBankToken(ctx context.Context, publicToken, institutionName string) error {
	if err := s.requireSession(); err != nil {
		return err
	}
	if err := s.gw.ExchangePublicToken(ctx, publicToken, institutionName); err != nil {
		return s.fail(ctx, ResourceAccounts, err)
	}
	if err := s.RefreshAccounts(ctx); err != nil && !errors.Is(err, gateway.ErrUnauthorized) {
		return err
	}
	return nil
}

func goalPayload(g core.Goal) gateway.GoalPayload {
	return gateway.GoalPayload{
		Name:        g.Name,
		Description: g.Description,
		Amount:      g.Amount.Dollars(),
		Progress:    g.Progress.Dollars(),
		Date:        g.Deadline.Format("2006-01-02"),
		Completed:   g.Completed,
	}
}

func parseInputDate(s string) core.Date {
	d, err := core.ParseDate(s)
	if err != nil {
		return core.Date{}
	}
	return d
}
