// Package service defines the interfaces for all application services.
package service

import (
	"context"

	"github.com/Veraticus/kroner/internal/ledger"
	"github.com/Veraticus/kroner/internal/model"
)

// Gateway is the data access boundary over the categories, expenses and
// budgets collections. Every owner-scoped operation filters by owner; no
// call returns rows belonging to another owner.
type Gateway interface {
	// Category operations
	ListCategories(ctx context.Context) ([]model.Category, error)
	CreateCategory(ctx context.Context, name string) (*model.Category, error)

	// Expense operations
	ListExpenses(ctx context.Context, owner string, period model.Period) ([]model.Expense, error)
	ListExpenseDates(ctx context.Context, owner string) ([]string, error)
	InsertExpense(ctx context.Context, owner string, input model.NewExpense) (*model.Expense, error)
	DeleteExpense(ctx context.Context, id int64, owner string) error

	// Budget operations
	ListBudgets(ctx context.Context, owner string, year int) ([]model.BudgetEntry, error)
	FindBudget(ctx context.Context, owner string, categoryID int64, year, month int) (*model.BudgetEntry, error)
	UpsertBudget(ctx context.Context, owner string, input model.BudgetInput) (*model.BudgetEntry, error)

	Close() error
}

// IdentityProvider signs users in and out against a backend.
type IdentityProvider interface {
	SignInWithPassword(ctx context.Context, email, password string) (*model.Session, error)
	SignOut(ctx context.Context, session *model.Session) error
	// Refresh validates a persisted session, renewing it when the backend
	// supports that. An invalid session yields common.ErrUnauthorized.
	Refresh(ctx context.Context, session *model.Session) (*model.Session, error)
}

// EventPublisher announces successful writes.
type EventPublisher interface {
	Publish(ctx context.Context, event model.ChangeEvent) error
	Close() error
}

// ReportWriter exports an aggregated period report.
type ReportWriter interface {
	Write(ctx context.Context, report *ledger.Report) error
}
