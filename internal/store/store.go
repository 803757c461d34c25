// Package store owns the canonical in-memory copies of the user's ledger and
// decides when to fetch them from the backend. It is the sole writer of the
// cached state; every other component reads snapshots and issues mutations
// through it.
package store

import (
	"context"
	"errors"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"bilancio/internal/core"
	"bilancio/internal/gateway"
	"bilancio/internal/log"
)

// Status is the load state of one cached resource kind.
type Status int

const (
	NotLoaded Status = iota
	Loading
	Loaded
)

func (s Status) String() string {
	switch s {
	case NotLoaded:
		return "not_loaded"
	case Loading:
		return "loading"
	case Loaded:
		return "loaded"
	default:
		return "unknown"
	}
}

// Resource identifies one cached resource kind.
type Resource string

const (
	ResourceTransactions Resource = "transactions"
	ResourceExpenses     Resource = "expenses"
	ResourceAccounts     Resource = "accounts"
	ResourceGoals        Resource = "goals"
	ResourceUser         Resource = "user"
	ResourceSettings     Resource = "settings"
	ResourceBudget       Resource = "budget"
)

// SelectAll is the account filter value meaning "no account selected".
const SelectAll = "all"

// ErrNoSession reports that an operation needing a credential ran while
// logged out. The caches are left untouched.
var ErrNoSession = errors.New("no active session")

// Session is the slice of the session holder the store depends on.
type Session interface {
	Token() (string, bool)
	Clear()
}

// Store is the resource cache and mutation pipeline.
type Store struct {
	gw      *gateway.Client
	session Session
	logger  *log.Logger
	flight  singleflight.Group
	now     func() time.Time

	mu    sync.RWMutex
	epoch uint64

	transactions       []core.Transaction
	transactionsStatus Status
	expenses           []core.Transaction
	expensesStatus     Status
	accounts           []core.Account
	accountsStatus     Status
	goals              []core.Goal
	goalsStatus        Status
	user               *core.User
	userStatus         Status
	settings           core.UserSettings
	settingsStatus     Status
	budget             core.BudgetSummary
	budgetStatus       Status

	selectedAccount string
}

// New creates an empty store bound to a gateway client and session holder.
func New(gw *gateway.Client, sess Session, logger *log.Logger) *Store {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &Store{
		gw:              gw,
		session:         sess,
		logger:          logger.WithComponent(log.ComponentStore),
		now:             time.Now,
		selectedAccount: SelectAll,
	}
}

// InvalidateAll resets every resource kind to NotLoaded and clears the cached
// data. Called on session rejection and on explicit logout.
func (s *Store) InvalidateAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.epoch++
	s.transactions = nil
	s.transactionsStatus = NotLoaded
	s.expenses = nil
	s.expensesStatus = NotLoaded
	s.accounts = nil
	s.accountsStatus = NotLoaded
	s.goals = nil
	s.goalsStatus = NotLoaded
	s.user = nil
	s.userStatus = NotLoaded
	s.settings = core.UserSettings{}
	s.settingsStatus = NotLoaded
	s.budget = core.BudgetSummary{}
	s.budgetStatus = NotLoaded
	s.logger.Info("Invalidated all caches", log.FieldOperation, log.OpInvalidate)
}

// Logout discards the session credential and invalidates every cache.
func (s *Store) Logout() {
	s.session.Clear()
	s.InvalidateAll()
	s.logger.Info("Logged out", log.FieldOperation, log.OpLogout)
}

// StatusOf returns the load status for a resource kind.
func (s *Store) StatusOf(kind Resource) Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.statusLocked(kind)
}

func (s *Store) statusLocked(kind Resource) Status {
	switch kind {
	case ResourceTransactions:
		return s.transactionsStatus
	case ResourceExpenses:
		return s.expensesStatus
	case ResourceAccounts:
		return s.accountsStatus
	case ResourceGoals:
		return s.goalsStatus
	case ResourceUser:
		return s.userStatus
	case ResourceSettings:
		return s.settingsStatus
	case ResourceBudget:
		return s.budgetStatus
	default:
		return NotLoaded
	}
}

func (s *Store) setStatus(kind Resource, st Status) {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch kind {
	case ResourceTransactions:
		s.transactionsStatus = st
	case ResourceExpenses:
		s.expensesStatus = st
	case ResourceAccounts:
		s.accountsStatus = st
	case ResourceGoals:
		s.goalsStatus = st
	case ResourceUser:
		s.userStatus = st
	case ResourceSettings:
		s.settingsStatus = st
	case ResourceBudget:
		s.budgetStatus = st
	}
}

// currentEpoch reads the invalidation epoch; commits are dropped when the
// epoch moved while a fetch was in flight, so a logout can never be undone by
// a late response.
func (s *Store) currentEpoch() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.epoch
}

func (s *Store) commit(epoch uint64, apply func()) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if epoch != s.epoch {
		return false
	}
	apply()
	return true
}

// ensure loads a resource at most once: concurrent callers share one in-flight
// fetch through singleflight, and a Loaded resource returns without any
// network call.
func (s *Store) ensure(ctx context.Context, kind Resource, fetch func(context.Context) error) error {
	if s.StatusOf(kind) == Loaded {
		return nil
	}
	_, err, _ := s.flight.Do(string(kind), func() (any, error) {
		if s.StatusOf(kind) == Loaded {
			return nil, nil
		}
		s.setStatus(kind, Loading)
		if err := fetch(ctx); err != nil {
			if s.StatusOf(kind) == Loading {
				s.setStatus(kind, NotLoaded)
			}
			return nil, err
		}
		return nil, nil
	})
	if err != nil {
		return s.fail(ctx, kind, err)
	}
	return nil
}

// refresh unconditionally repeats a fetch. On failure the cache keeps its
// prior contents and status.
func (s *Store) refresh(ctx context.Context, kind Resource, fetch func(context.Context) error) error {
	if err := fetch(ctx); err != nil {
		return s.fail(ctx, kind, err)
	}
	return nil
}

// fail classifies a fetch or mutation error. Session rejection clears the
// credential and invalidates every cache; anything else is transient and only
// logged.
func (s *Store) fail(ctx context.Context, kind Resource, err error) error {
	if errors.Is(err, gateway.ErrUnauthorized) {
		s.logger.WarnContext(ctx, "Session rejected, clearing session and caches",
			log.FieldResource, string(kind))
		s.session.Clear()
		s.InvalidateAll()
		return err
	}
	s.logger.ErrorContext(ctx, "Resource operation failed",
		log.FieldResource, string(kind),
		log.FieldError, err)
	return err
}

// requireSession returns ErrNoSession when no credential is held. No network
// call is made while logged out.
func (s *Store) requireSession() error {
	if _, ok := s.session.Token(); !ok {
		return ErrNoSession
	}
	return nil
}

// SelectedAccount returns the current account filter ("all" or an account id).
func (s *Store) SelectedAccount() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.selectedAccount
}

// SetSelectedAccount changes the account filter scoping the transactions
// cache, refetching it when the selection actually changed.
func (s *Store) SetSelectedAccount(ctx context.Context, accountID string) error {
	s.mu.Lock()
	changed := s.selectedAccount != accountID
	s.selectedAccount = accountID
	s.mu.Unlock()
	if !changed {
		return nil
	}
	return s.RefreshTransactions(ctx)
}

// Snapshot accessors. Slices are copied so readers can never observe a
// concurrent cache replacement mid-iteration.

func (s *Store) Transactions() ([]core.Transaction, Status) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]core.Transaction(nil), s.transactions...), s.transactionsStatus
}

func (s *Store) Expenses() ([]core.Transaction, Status) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]core.Transaction(nil), s.expenses...), s.expensesStatus
}

func (s *Store) Accounts() ([]core.Account, Status) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]core.Account(nil), s.accounts...), s.accountsStatus
}

func (s *Store) Goals() ([]core.Goal, Status) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]core.Goal(nil), s.goals...), s.goalsStatus
}

func (s *Store) User() (*core.User, Status) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return nil, s.userStatus
	}
	u := *s.user
	return &u, s.userStatus
}

func (s *Store) Settings() (core.UserSettings, Status) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.settings, s.settingsStatus
}

func (s *Store) Budget() (core.BudgetSummary, Status) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.budget, s.budgetStatus
}
