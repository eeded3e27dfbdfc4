package rest

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/Veraticus/kroner/internal/common"
	"github.com/Veraticus/kroner/internal/model"
)

const (
	preferReturn = "return=representation"
	preferUpsert = "resolution=merge-duplicates,return=representation"

	budgetConflict = "user_id,category_id,year,month"
)

func eq(v any) string {
	return fmt.Sprintf("eq.%v", v)
}

// ListCategories returns every category ordered by name.
func (c *Client) ListCategories(ctx context.Context) ([]model.Category, error) {
	query := url.Values{}
	query.Set("select", categorySelect)
	query.Set("order", "category.asc")

	var out []model.Category
	if err := c.query(ctx, request{method: http.MethodGet, path: "/category", query: query}, &out); err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	return out, nil
}

// CreateCategory inserts a category.
func (c *Client) CreateCategory(ctx context.Context, name string) (*model.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("category name: %w", common.ErrInvalidInput)
	}

	query := url.Values{}
	query.Set("select", categorySelect)

	var out []model.Category
	err := c.query(ctx, request{
		method:  http.MethodPost,
		path:    "/category",
		query:   query,
		body:    []map[string]string{{"category": name}},
		headers: map[string]string{"Prefer": preferReturn},
	}, &out)
	if isStatus(err, http.StatusConflict) {
		return nil, fmt.Errorf("category %q already exists: %w", name, common.ErrInvalidInput)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create category: %w", err)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("create category returned no rows: %w", common.ErrStoreResponse)
	}
	return &out[0], nil
}

// ListExpenses returns the owner's expenses within period, newest id first.
func (c *Client) ListExpenses(ctx context.Context, owner string, period model.Period) ([]model.Expense, error) {
	query := url.Values{}
	query.Set("select", expenseSelect)
	query.Set("user_id", eq(owner))
	query.Set("order", "id.desc")
	if start, end, ok := period.Range(); ok {
		query.Add("date", "gte."+start)
		query.Add("date", "lte."+end)
	}

	var rows []expenseRow
	if err := c.query(ctx, request{method: http.MethodGet, path: "/expense", query: query}, &rows); err != nil {
		return nil, fmt.Errorf("failed to list expenses: %w", err)
	}

	expenses := make([]model.Expense, 0, len(rows))
	for _, r := range rows {
		expenses = append(expenses, r.toModel())
	}
	return expenses, nil
}

// ListExpenseDates returns the owner's non-null expense dates.
func (c *Client) ListExpenseDates(ctx context.Context, owner string) ([]string, error) {
	query := url.Values{}
	query.Set("select", "date")
	query.Set("user_id", eq(owner))
	query.Set("date", "not.is.null")

	var rows []struct {
		Date *string `json:"date"`
	}
	if err := c.query(ctx, request{method: http.MethodGet, path: "/expense", query: query}, &rows); err != nil {
		return nil, fmt.Errorf("failed to list expense dates: %w", err)
	}

	dates := make([]string, 0, len(rows))
	for _, r := range rows {
		if r.Date == nil {
			continue
		}
		dates = append(dates, isoDate(*r.Date))
	}
	return dates, nil
}

// InsertExpense stores a new expense owned by owner.
func (c *Client) InsertExpense(ctx context.Context, owner string, input model.NewExpense) (*model.Expense, error) {
	query := url.Values{}
	query.Set("select", expenseSelect)

	var rows []expenseRow
	err := c.query(ctx, request{
		method: http.MethodPost,
		path:   "/expense",
		query:  query,
		body: []expenseInsert{{
			Item:       strings.TrimSpace(input.Item),
			Price:      input.Price,
			CategoryID: input.CategoryID,
			Tag:        optional(input.Tag),
			Date:       optional(input.Date),
			UserID:     owner,
		}},
		headers: map[string]string{"Prefer": preferReturn},
	}, &rows)
	if err != nil {
		return nil, fmt.Errorf("failed to insert expense: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("insert expense returned no rows: %w", common.ErrStoreResponse)
	}

	e := rows[0].toModel()
	return &e, nil
}

// DeleteExpense removes the expense when it belongs to owner.
func (c *Client) DeleteExpense(ctx context.Context, id int64, owner string) error {
	query := url.Values{}
	query.Set("id", eq(id))
	query.Set("user_id", eq(owner))
	query.Set("select", "id")

	var rows []struct {
		ID int64 `json:"id"`
	}
	err := c.query(ctx, request{
		method:  http.MethodDelete,
		path:    "/expense",
		query:   query,
		headers: map[string]string{"Prefer": preferReturn},
	}, &rows)
	if err != nil {
		return fmt.Errorf("failed to delete expense %d: %w", id, err)
	}
	if len(rows) == 0 {
		return fmt.Errorf("expense %d: %w", id, common.ErrNotFound)
	}
	return nil
}

// ListBudgets returns the owner's budget entries for year ordered by month.
func (c *Client) ListBudgets(ctx context.Context, owner string, year int) ([]model.BudgetEntry, error) {
	query := url.Values{}
	query.Set("select", budgetSelect)
	query.Set("user_id", eq(owner))
	query.Set("year", eq(year))
	query.Set("order", "month.asc")

	return c.budgets(ctx, query)
}

// FindBudget returns the single entry for (owner, category, year, month).
func (c *Client) FindBudget(ctx context.Context, owner string, categoryID int64, year, month int) (*model.BudgetEntry, error) {
	query := url.Values{}
	query.Set("select", budgetSelect)
	query.Set("user_id", eq(owner))
	query.Set("category_id", eq(categoryID))
	query.Set("year", eq(year))
	query.Set("month", eq(month))
	query.Set("limit", "1")

	entries, err := c.budgets(ctx, query)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("budget %d/%d category %d: %w", year, month, categoryID, common.ErrNotFound)
	}
	return &entries[0], nil
}

// UpsertBudget inserts or replaces the entry keyed by (owner, category,
// year, month).
func (c *Client) UpsertBudget(ctx context.Context, owner string, input model.BudgetInput) (*model.BudgetEntry, error) {
	query := url.Values{}
	query.Set("select", budgetSelect)
	query.Set("on_conflict", budgetConflict)

	var rows []budgetRow
	err := c.query(ctx, request{
		method: http.MethodPost,
		path:   "/budget",
		query:  query,
		body: []budgetUpsert{{
			UserID:     owner,
			CategoryID: input.CategoryID,
			Year:       input.Year,
			Month:      input.Month,
			Budget:     input.Amount,
		}},
		headers: map[string]string{"Prefer": preferUpsert},
	}, &rows)
	if err != nil {
		return nil, fmt.Errorf("failed to save budget: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("save budget returned no rows: %w", common.ErrStoreResponse)
	}

	entry := rows[0].toModel()
	return &entry, nil
}

func (c *Client) budgets(ctx context.Context, query url.Values) ([]model.BudgetEntry, error) {
	var rows []budgetRow
	if err := c.query(ctx, request{method: http.MethodGet, path: "/budget", query: query}, &rows); err != nil {
		return nil, fmt.Errorf("failed to list budgets: %w", err)
	}

	entries := make([]model.BudgetEntry, 0, len(rows))
	for _, r := range rows {
		entries = append(entries, r.toModel())
	}
	return entries, nil
}

// Ping checks that the service answers.
func (c *Client) Ping(ctx context.Context) error {
	query := url.Values{}
	query.Set("select", "id")
	query.Set("limit", "1")
	return c.do(ctx, request{method: http.MethodGet, path: restPrefix + "/category", query: query}, nil)
}
