package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Veraticus/kroner/internal/common"
	"github.com/Veraticus/kroner/internal/model"
)

const budgetColumns = `
		b.id, b.category_id, b.year, b.month, b.amount, b.owner, c.id, c.name
		FROM budgets b
		LEFT JOIN categories c ON c.id = b.category_id`

// Upsert statements keyed on the (owner, category_id, year, month) unique index.
var upsertBudgetSQL = map[Dialect]string{
	DialectSQLite: `
		INSERT INTO budgets (owner, category_id, year, month, amount)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (owner, category_id, year, month)
		DO UPDATE SET amount = excluded.amount, updated_at = CURRENT_TIMESTAMP`,
	DialectMySQL: `
		INSERT INTO budgets (owner, category_id, year, month, amount)
		VALUES (?, ?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE amount = VALUES(amount)`,
}

// ListBudgets returns the owner's budget entries for year, by month.
func (s *SQLStorage) ListBudgets(ctx context.Context, owner string, year int) ([]model.BudgetEntry, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(owner, "owner"); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `SELECT`+budgetColumns+`
		WHERE b.owner = ? AND b.year = ?
		ORDER BY b.month ASC, b.id ASC`, owner, year)
	if err != nil {
		return nil, fmt.Errorf("failed to query budgets: %w", err)
	}
	defer rows.Close()

	var budgets []model.BudgetEntry
	for rows.Next() {
		b, err := scanBudget(rows)
		if err != nil {
			return nil, err
		}
		budgets = append(budgets, *b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating budgets: %w", err)
	}

	slog.Debug("retrieved budgets", "owner", owner, "year", year, "count", len(budgets))
	return budgets, nil
}

// FindBudget returns the owner's entry for one category and month, or
// common.ErrNotFound.
func (s *SQLStorage) FindBudget(ctx context.Context, owner string, categoryID int64, year, month int) (*model.BudgetEntry, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(owner, "owner"); err != nil {
		return nil, err
	}
	if err := validatePeriod(year, month); err != nil {
		return nil, err
	}

	row := s.db.QueryRowContext(ctx, `SELECT`+budgetColumns+`
		WHERE b.owner = ? AND b.category_id = ? AND b.year = ? AND b.month = ?`,
		owner, categoryID, year, month)
	return scanBudget(row)
}

// UpsertBudget inserts or updates the owner's entry for the input's
// category and month in a single statement.
func (s *SQLStorage) UpsertBudget(ctx context.Context, owner string, input model.BudgetInput) (*model.BudgetEntry, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(owner, "owner"); err != nil {
		return nil, err
	}
	if err := validateBudgetInput(input); err != nil {
		return nil, err
	}

	query, ok := upsertBudgetSQL[s.dialect]
	if !ok {
		return nil, fmt.Errorf("unsupported dialect %q", s.dialect)
	}
	if _, err := s.db.ExecContext(ctx, query, owner, input.CategoryID, input.Year, input.Month, input.Amount); err != nil {
		return nil, fmt.Errorf("failed to upsert budget: %w", err)
	}

	entry, err := s.FindBudget(ctx, owner, input.CategoryID, input.Year, input.Month)
	if err != nil {
		return nil, fmt.Errorf("failed to reload budget: %w", err)
	}

	slog.Info("saved budget",
		"owner", owner,
		"category_id", input.CategoryID,
		"year", input.Year,
		"month", input.Month,
		"amount", input.Amount)
	return entry, nil
}

func scanBudget(row scanner) (*model.BudgetEntry, error) {
	var (
		b       model.BudgetEntry
		catID   sql.NullInt64
		catName sql.NullString
	)
	err := row.Scan(&b.ID, &b.CategoryID, &b.Year, &b.Month, &b.Amount, &b.Owner, &catID, &catName)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("budget: %w", common.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan budget: %w", err)
	}
	b.Category = joinedCategory(catID, catName)
	return &b, nil
}
