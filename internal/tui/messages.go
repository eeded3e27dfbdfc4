package tui

import (
	"github.com/Veraticus/kroner/internal/budget"
	"github.com/Veraticus/kroner/internal/model"
)

// SessionChangedMsg reports a sign in or sign out observed on the identity
// boundary.
type SessionChangedMsg struct {
	Session *model.Session
}

// ChangeEventMsg delivers a change made by another session.
type ChangeEventMsg struct {
	Event model.ChangeEvent
}

// Identity messages.
type sessionLoadedMsg struct {
	err     error
	session *model.Session
}

type signedInMsg struct {
	err     error
	session *model.Session
}

type signedOutMsg struct {
	err error
}

// Data loading messages. gen is the workflow generation the request was
// issued under; results from an older generation are dropped.
type metaLoadedMsg struct {
	err   error
	dates []string
	gen   uint64
}

type categoriesLoadedMsg struct {
	err        error
	categories []model.Category
	gen        uint64
}

type expensesLoadedMsg struct {
	err      error
	expenses []model.Expense
	period   model.Period
	gen      uint64
}

type budgetsLoadedMsg struct {
	err     error
	budgets []model.BudgetEntry
	year    int
	gen     uint64
}

type suggestionLoadedMsg struct {
	err        error
	suggestion *budget.Suggestion
	gen        uint64
}

// Write results.
type expenseSavedMsg struct {
	err     error
	expense *model.Expense
}

type expenseDeletedMsg struct {
	err error
	id  int64
}

type budgetSavedMsg struct {
	err   error
	entry *model.BudgetEntry
}

// generations tracks the latest request issued per workflow.
type generations struct {
	meta       uint64
	categories uint64
	expenses   uint64
	budgets    uint64
	suggestion uint64
}
