package tui

import (
	"context"

	"github.com/Veraticus/kroner/internal/budget"
	"github.com/Veraticus/kroner/internal/entry"
	"github.com/Veraticus/kroner/internal/model"
	tea "github.com/charmbracelet/bubbletea"
)

// request runs fn in a command under the configured timeout.
func (m Model) request(fn func(ctx context.Context) tea.Msg) tea.Cmd {
	parent, timeout := m.ctx, m.config.RequestTimeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(parent, timeout)
		defer cancel()
		return fn(ctx)
	}
}

// loadSession restores the persisted session.
func (m Model) loadSession() tea.Cmd {
	identity := m.identity
	return m.request(func(ctx context.Context) tea.Msg {
		session, err := identity.Session(ctx)
		return sessionLoadedMsg{session: session, err: err}
	})
}

func (m Model) signIn(email, password string) tea.Cmd {
	identity := m.identity
	return m.request(func(ctx context.Context) tea.Msg {
		session, err := identity.SignIn(ctx, email, password)
		return signedInMsg{session: session, err: err}
	})
}

func (m Model) signOut() tea.Cmd {
	identity := m.identity
	return m.request(func(ctx context.Context) tea.Msg {
		return signedOutMsg{err: identity.SignOut(ctx)}
	})
}

// reloadAll refetches every dashboard collection.
func (m *Model) reloadAll() tea.Cmd {
	return tea.Batch(
		m.loadMeta(),
		m.loadCategories(),
		m.loadExpenses(),
		m.loadBudgets(),
	)
}

// loadMeta fetches the owner's expense dates for period availability.
func (m *Model) loadMeta() tea.Cmd {
	m.gen.meta++
	gen, gateway, owner := m.gen.meta, m.gateway, m.owner()
	return m.request(func(ctx context.Context) tea.Msg {
		dates, err := gateway.ListExpenseDates(ctx, owner)
		return metaLoadedMsg{dates: dates, err: err, gen: gen}
	})
}

func (m *Model) loadCategories() tea.Cmd {
	m.gen.categories++
	gen, gateway := m.gen.categories, m.gateway
	return m.request(func(ctx context.Context) tea.Msg {
		categories, err := gateway.ListCategories(ctx)
		return categoriesLoadedMsg{categories: categories, err: err, gen: gen}
	})
}

// loadExpenses fetches the expenses of the selected period.
func (m *Model) loadExpenses() tea.Cmd {
	m.gen.expenses++
	m.loadingExpenses = true
	gen, gateway, owner, sel := m.gen.expenses, m.gateway, m.owner(), m.sel
	return m.request(func(ctx context.Context) tea.Msg {
		expenses, err := gateway.ListExpenses(ctx, owner, sel)
		return expensesLoadedMsg{expenses: expenses, period: sel, err: err, gen: gen}
	})
}

// loadBudgets fetches the budgets of the selected year. With all years
// selected there is nothing to fetch and any in-flight result is
// invalidated.
func (m *Model) loadBudgets() tea.Cmd {
	m.gen.budgets++
	if !m.sel.HasYear() {
		m.budgets = nil
		m.budgetYear = 0
		m.loadingBudgets = false
		return nil
	}
	m.loadingBudgets = true
	gen, gateway, owner, year := m.gen.budgets, m.gateway, m.owner(), m.sel.Year
	return m.request(func(ctx context.Context) tea.Msg {
		budgets, err := gateway.ListBudgets(ctx, owner, year)
		return budgetsLoadedMsg{budgets: budgets, year: year, err: err, gen: gen}
	})
}

// lookupSuggestion fetches the previous period's budget for the open draft.
func (m *Model) lookupSuggestion(d budget.Draft) tea.Cmd {
	m.gen.suggestion++
	m.loadingSuggestion = true
	gen, editor := m.gen.suggestion, budget.NewEditor(m.gateway, m.owner())
	return m.request(func(ctx context.Context) tea.Msg {
		s, err := editor.Lookup(ctx, d)
		return suggestionLoadedMsg{suggestion: s, err: err, gen: gen}
	})
}

func (m Model) saveBudget(d budget.Draft) tea.Cmd {
	editor := budget.NewEditor(m.gateway, m.owner())
	return m.request(func(ctx context.Context) tea.Msg {
		entry, err := editor.Save(ctx, d)
		return budgetSavedMsg{entry: entry, err: err}
	})
}

func (m Model) saveExpense(d entry.Draft) tea.Cmd {
	workflow := entry.NewWorkflow(m.gateway, m.now)
	owner := m.owner()
	return m.request(func(ctx context.Context) tea.Msg {
		expense, err := workflow.Submit(ctx, owner, d)
		return expenseSavedMsg{expense: expense, err: err}
	})
}

func (m Model) deleteExpense(e model.Expense) tea.Cmd {
	gateway, owner := m.gateway, m.owner()
	return m.request(func(ctx context.Context) tea.Msg {
		return expenseDeletedMsg{id: e.ID, err: gateway.DeleteExpense(ctx, e.ID, owner)}
	})
}
