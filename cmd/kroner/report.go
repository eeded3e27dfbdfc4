package main

import (
	"context"
	"fmt"

	"github.com/Veraticus/kroner/internal/ledger"
	"github.com/Veraticus/kroner/internal/model"
	"github.com/Veraticus/kroner/internal/service"
	"golang.org/x/sync/errgroup"
)

// loadReport fetches the period's expenses, the categories and the year's
// budgets concurrently and aggregates them.
func loadReport(ctx context.Context, gateway service.Gateway, owner string, p model.Period) (ledger.Report, error) {
	var (
		expenses   []model.Expense
		categories []model.Category
		budgets    []model.BudgetEntry
	)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		expenses, err = gateway.ListExpenses(ctx, owner, p)
		if err != nil {
			return fmt.Errorf("failed to load expenses: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		categories, err = gateway.ListCategories(ctx)
		if err != nil {
			return fmt.Errorf("failed to load categories: %w", err)
		}
		return nil
	})
	if p.HasYear() {
		g.Go(func() error {
			var err error
			budgets, err = gateway.ListBudgets(ctx, owner, p.Year)
			if err != nil {
				return fmt.Errorf("failed to load budgets: %w", err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return ledger.Report{}, err
	}

	return ledger.Build(p, expenses, categories, budgets), nil
}
