package store

import (
	"context"
	"errors"
	"strconv"

	"golang.org/x/sync/errgroup"

	"bilancio/internal/core"
	"bilancio/internal/gateway"
	"bilancio/internal/log"
)

// EnsureTransactions loads the transaction cache, scoped to the currently
// selected account filter, unless it is already loaded.
func (s *Store) EnsureTransactions(ctx context.Context) error {
	return s.ensure(ctx, ResourceTransactions, s.fetchTransactions)
}

// RefreshTransactions refetches the transaction cache regardless of status.
func (s *Store) RefreshTransactions(ctx context.Context) error {
	return s.refresh(ctx, ResourceTransactions, s.fetchTransactions)
}

func (s *Store) fetchTransactions(ctx context.Context) error {
	if err := s.requireSession(); err != nil {
		return err
	}
	epoch := s.currentEpoch()

	var (
		txs []core.Transaction
		err error
	)
	if sel := s.SelectedAccount(); sel == SelectAll {
		txs, err = s.gw.Transactions(ctx)
	} else {
		id, perr := strconv.ParseInt(sel, 10, 64)
		if perr != nil {
			return errors.New("invalid account selection: " + sel)
		}
		txs, err = s.gw.AccountTransactions(ctx, id)
	}
	if err != nil {
		return err
	}

	// The display color is a view annotation attached at fill time.
	for i := range txs {
		txs[i].Fill = core.ColorFor(txs[i].Category)
	}

	s.commit(epoch, func() {
		s.transactions = txs
		s.transactionsStatus = Loaded
	})
	s.logger.DebugContext(ctx, "Transactions loaded",
		log.FieldResource, string(ResourceTransactions),
		log.FieldCount, len(txs))
	return nil
}

// EnsureExpenses loads the unscoped expense cache unless already loaded.
func (s *Store) EnsureExpenses(ctx context.Context) error {
	return s.ensure(ctx, ResourceExpenses, s.fetchExpenses)
}

// RefreshExpenses refetches the expense cache regardless of status.
func (s *Store) RefreshExpenses(ctx context.Context) error {
	return s.refresh(ctx, ResourceExpenses, s.fetchExpenses)
}

func (s *Store) fetchExpenses(ctx context.Context) error {
	if err := s.requireSession(); err != nil {
		return err
	}
	epoch := s.currentEpoch()

	expenses, err := s.gw.Expenses(ctx)
	if err != nil {
		return err
	}
	s.commit(epoch, func() {
		s.expenses = expenses
		s.expensesStatus = Loaded
	})
	return nil
}

// EnsureAccounts loads the accounts with their per-account transaction
// histories unless already loaded.
func (s *Store) EnsureAccounts(ctx context.Context) error {
	return s.ensure(ctx, ResourceAccounts, s.fetchAccounts)
}

// RefreshAccounts refetches the accounts (and re-derives the per-account
// histories) regardless of status.
func (s *Store) RefreshAccounts(ctx context.Context) error {
	return s.refresh(ctx, ResourceAccounts, s.fetchAccounts)
}

func (s *Store) fetchAccounts(ctx context.Context) error {
	if err := s.requireSession(); err != nil {
		return err
	}
	epoch := s.currentEpoch()

	accounts, err := s.gw.Accounts(ctx)
	if err != nil {
		return err
	}

	// Attach each account's history. One account's failure keeps that account
	// without a history rather than failing the whole load; only a session
	// rejection aborts.
	g, gctx := errgroup.WithContext(ctx)
	for i := range accounts {
		i := i
		g.Go(func() error {
			history, herr := s.gw.AccountTransactions(gctx, accounts[i].ID)
			if herr != nil {
				if errors.Is(herr, gateway.ErrUnauthorized) {
					return herr
				}
				s.logger.WarnContext(gctx, "Account history fetch failed, keeping account without history",
					log.FieldAccountID, accounts[i].ID,
					log.FieldError, herr)
				return nil
			}
			accounts[i].Transactions = history
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	s.commit(epoch, func() {
		s.accounts = accounts
		s.accountsStatus = Loaded
	})
	s.logger.DebugContext(ctx, "Accounts loaded",
		log.FieldResource, string(ResourceAccounts),
		log.FieldCount, len(accounts))
	return nil
}

// EnsureGoals loads the goals cache unless already loaded.
func (s *Store) EnsureGoals(ctx context.Context) error {
	return s.ensure(ctx, ResourceGoals, s.fetchGoals)
}

// RefreshGoals refetches the goals cache regardless of status.
func (s *Store) RefreshGoals(ctx context.Context) error {
	return s.refresh(ctx, ResourceGoals, s.fetchGoals)
}

func (s *Store) fetchGoals(ctx context.Context) error {
	if err := s.requireSession(); err != nil {
		return err
	}
	epoch := s.currentEpoch()

	goals, err := s.gw.Goals(ctx)
	if err != nil {
		return err
	}
	s.commit(epoch, func() {
		s.goals = goals
		s.goalsStatus = Loaded
	})
	return nil
}

// EnsureUser loads the identity record unless already loaded.
func (s *Store) EnsureUser(ctx context.Context) error {
	return s.ensure(ctx, ResourceUser, s.fetchUser)
}

func (s *Store) fetchUser(ctx context.Context) error {
	if err := s.requireSession(); err != nil {
		return err
	}
	epoch := s.currentEpoch()

	user, _, err := s.gw.Me(ctx)
	if err != nil {
		return err
	}
	s.commit(epoch, func() {
		s.user = &user
		s.userStatus = Loaded
	})
	return nil
}

// EnsureSettings loads the warning threshold and savings percentage unless
// already loaded.
func (s *Store) EnsureSettings(ctx context.Context) error {
	return s.ensure(ctx, ResourceSettings, s.fetchSettings)
}

func (s *Store) fetchSettings(ctx context.Context) error {
	if err := s.requireSession(); err != nil {
		return err
	}
	epoch := s.currentEpoch()

	_, settings, err := s.gw.Me(ctx)
	if err != nil {
		return err
	}
	s.commit(epoch, func() {
		s.settings = settings
		s.settingsStatus = Loaded
	})
	return nil
}

// EnsureBudget loads the server-derived budget summary unless already loaded.
func (s *Store) EnsureBudget(ctx context.Context) error {
	return s.ensure(ctx, ResourceBudget, s.fetchBudget)
}

// RefreshBudget refetches the budget summary regardless of status.
func (s *Store) RefreshBudget(ctx context.Context) error {
	return s.refresh(ctx, ResourceBudget, s.fetchBudget)
}

// fetchBudget gathers the three budget scalars and commits them together, so
// a failure part-way never leaves a half-updated summary behind.
func (s *Store) fetchBudget(ctx context.Context) error {
	if err := s.requireSession(); err != nil {
		return err
	}
	epoch := s.currentEpoch()

	allotment, err := s.gw.BudgetAllotment(ctx)
	if err != nil {
		return err
	}

	now := s.now()
	weekStart := core.DateOf(now.AddDate(0, 0, -int(now.Weekday())))
	weekEnd := core.DateOf(now.AddDate(0, 0, 6-int(now.Weekday())))
	spend, err := s.gw.SpendOverTime(ctx, weekStart, weekEnd)
	if err != nil {
		return err
	}

	fixed, err := s.gw.FixedPerMonth(ctx)
	if err != nil {
		return err
	}

	s.commit(epoch, func() {
		s.budget = core.BudgetSummary{
			Allotment:     allotment,
			SpendOverTime: spend,
			FixedPerMonth: fixed,
		}
		s.budgetStatus = Loaded
	})
	return nil
}
