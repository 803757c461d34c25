package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"bilancio/internal/config"
	"bilancio/internal/gateway"
	applog "bilancio/internal/log"
	"bilancio/internal/session"
	"bilancio/internal/store"
)

// bilancio loads the dashboard state from the backend and prints the derived
// figures. It stands in for the presentation layer: everything it shows is a
// read over the store's snapshots and computed views.
func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	level, _ := cfg.SlogLevel()
	logger := applog.New(applog.Config{Level: level, Component: applog.ComponentApp})
	applog.SetDefault(logger)

	var holder *session.Holder
	if cfg.TokenFile != "" {
		holder = session.NewFromFile(cfg.TokenFile)
	} else {
		holder = session.New()
	}
	if cfg.APIToken != "" {
		holder.Set(cfg.APIToken)
	}

	gw := gateway.NewClient(gateway.Config{
		BaseURL:    cfg.APIBaseURL,
		HTTPClient: &http.Client{Timeout: cfg.HTTPTimeout},
		Logger:     logger,
	}, holder)
	st := store.New(gw, holder, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, st); err != nil {
		if errors.Is(err, store.ErrNoSession) || errors.Is(err, gateway.ErrUnauthorized) {
			fmt.Fprintln(os.Stderr, "no valid session: set API_TOKEN or TOKEN_FILE and log in again")
			os.Exit(1)
		}
		logger.Error("Dashboard load failed", applog.FieldError, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, st *store.Store) error {
	for _, load := range []func(context.Context) error{
		st.EnsureUser,
		st.EnsureSettings,
		st.EnsureBudget,
		st.EnsureTransactions,
		st.EnsureExpenses,
		st.EnsureAccounts,
		st.EnsureGoals,
	} {
		if err := load(ctx); err != nil {
			return err
		}
	}

	if user, _ := st.User(); user != nil {
		fmt.Printf("Dashboard for %s\n\n", user.Username)
	}

	if gauge, ok := st.SpendGauge(nil); ok {
		status := "ok"
		if gauge.NearWarning {
			status = "warning"
		}
		fmt.Printf("Safe to spend this week: $%.2f of $%.2f (%s)\n\n",
			gauge.SafeToSpend, gauge.PeriodBudget, status)
	} else {
		fmt.Println("No weekly budget configured.")
	}

	if breakdown := st.CategoryBreakdown(); len(breakdown) > 0 {
		fmt.Println("Expenses by category:")
		for _, slice := range breakdown {
			fmt.Printf("  %-16s $%.2f\n", slice.Name, slice.Total.Dollars())
		}
		fmt.Println()
	}

	if series := st.MonthlySeries(); len(series) > 0 {
		fmt.Println("Monthly income / expenses / net:")
		for _, p := range series {
			fmt.Printf("  %-9s $%9.2f  $%9.2f  $%9.2f\n",
				p.Label, p.Income.Dollars(), p.Expenses.Dollars(), p.NetGain.Dollars())
		}
		fmt.Println()
	}

	accounts, _ := st.Accounts()
	for _, a := range accounts {
		fmt.Printf("%s (%s): $%.2f\n", a.Name, a.Type, a.Balance.Dollars())
		if timeline, ok := st.BalanceTimeline(a.ID); ok {
			for _, point := range timeline {
				fmt.Printf("  %-9s $%.2f\n", point.Label, point.Value.Dollars())
			}
		}
	}

	goals, _ := st.Goals()
	if len(goals) > 0 {
		fmt.Println("\nGoals:")
		for _, g := range goals {
			fmt.Printf("  %s: $%.2f of $%.2f by %s\n",
				g.Name, g.Progress.Dollars(), g.Amount.Dollars(), g.Deadline.Format("2006-01-02"))
		}
	}

	return nil
}
