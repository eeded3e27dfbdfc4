package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Veraticus/kroner/internal/common"
	"github.com/Veraticus/kroner/internal/model"
)

const expenseColumns = `
		e.id, e.item, e.price, e.category_id, e.tag, e.owner, e.date, c.id, c.name
		FROM expenses e
		LEFT JOIN categories c ON c.id = e.category_id`

// ListExpenses returns the owner's expenses within period, newest first.
func (s *SQLStorage) ListExpenses(ctx context.Context, owner string, period model.Period) ([]model.Expense, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(owner, "owner"); err != nil {
		return nil, err
	}

	query := `SELECT` + expenseColumns + `
		WHERE e.owner = ?`
	args := []any{owner}
	if start, end, ok := period.Range(); ok {
		query += ` AND e.date >= ? AND e.date <= ?`
		args = append(args, start, end)
	}
	query += ` ORDER BY e.id DESC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query expenses: %w", err)
	}
	defer rows.Close()

	var expenses []model.Expense
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, err
		}
		expenses = append(expenses, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating expenses: %w", err)
	}

	slog.Debug("retrieved expenses", "owner", owner, "year", period.Year, "month", period.Month, "count", len(expenses))
	return expenses, nil
}

// ListExpenseDates returns the owner's non-null expense dates.
func (s *SQLStorage) ListExpenseDates(ctx context.Context, owner string) ([]string, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(owner, "owner"); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `SELECT date FROM expenses WHERE owner = ? AND date IS NOT NULL`, owner)
	if err != nil {
		return nil, fmt.Errorf("failed to query expense dates: %w", err)
	}
	defer rows.Close()

	var dates []string
	for rows.Next() {
		var d sql.NullString
		if err := rows.Scan(&d); err != nil {
			return nil, fmt.Errorf("failed to scan expense date: %w", err)
		}
		if date := isoDate(d); date != "" {
			dates = append(dates, date)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating expense dates: %w", err)
	}
	return dates, nil
}

// InsertExpense stores a new expense for owner.
func (s *SQLStorage) InsertExpense(ctx context.Context, owner string, input model.NewExpense) (*model.Expense, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(owner, "owner"); err != nil {
		return nil, err
	}
	if err := validateNewExpense(input); err != nil {
		return nil, err
	}

	result, err := s.db.ExecContext(ctx, `
		INSERT INTO expenses (item, price, category_id, tag, owner, date)
		VALUES (?, ?, ?, ?, ?, ?)`,
		strings.TrimSpace(input.Item), input.Price, input.CategoryID, nullString(input.Tag), owner, nullString(input.Date),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert expense: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get expense id: %w", err)
	}

	row := s.db.QueryRowContext(ctx, `SELECT`+expenseColumns+` WHERE e.id = ?`, id)
	expense, err := scanExpense(row)
	if err != nil {
		return nil, err
	}

	slog.Info("inserted expense", "id", id, "owner", owner, "price", input.Price)
	return expense, nil
}

// DeleteExpense removes one of owner's expenses. Deleting a row that does
// not exist or belongs to someone else yields common.ErrNotFound.
func (s *SQLStorage) DeleteExpense(ctx context.Context, id int64, owner string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(owner, "owner"); err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx, `DELETE FROM expenses WHERE id = ? AND owner = ?`, id, owner)
	if err != nil {
		return fmt.Errorf("failed to delete expense: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check deleted rows: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("expense %d: %w", id, common.ErrNotFound)
	}

	slog.Info("deleted expense", "id", id, "owner", owner)
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanExpense(row scanner) (*model.Expense, error) {
	var (
		e          model.Expense
		categoryID sql.NullInt64
		tag        sql.NullString
		date       sql.NullString
		catID      sql.NullInt64
		catName    sql.NullString
	)
	err := row.Scan(&e.ID, &e.Item, &e.Price, &categoryID, &tag, &e.Owner, &date, &catID, &catName)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("expense: %w", common.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan expense: %w", err)
	}

	e.CategoryID = categoryID.Int64
	e.Tag = tag.String
	e.Date = isoDate(date)
	e.Category = joinedCategory(catID, catName)
	return &e, nil
}

func joinedCategory(id sql.NullInt64, name sql.NullString) *model.Category {
	if !id.Valid {
		return nil
	}
	return &model.Category{ID: id.Int64, Name: name.String}
}

func nullString(s string) sql.NullString {
	s = strings.TrimSpace(s)
	return sql.NullString{String: s, Valid: s != ""}
}

// isoDate trims driver-specific time suffixes down to YYYY-MM-DD.
func isoDate(d sql.NullString) string {
	if !d.Valid {
		return ""
	}
	v := strings.TrimSpace(d.String)
	if len(v) > len(model.DateLayout) {
		v = v[:len(model.DateLayout)]
	}
	return v
}
