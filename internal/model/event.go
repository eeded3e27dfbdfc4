package model

import "time"

// ChangeKind names a store mutation.
type ChangeKind string

// Change kinds published after successful writes.
const (
	ChangeExpenseCreated ChangeKind = "expense.created"
	ChangeExpenseDeleted ChangeKind = "expense.deleted"
	ChangeBudgetSaved    ChangeKind = "budget.saved"
	ChangeCategoryAdded  ChangeKind = "category.created"
)

// ChangeEvent announces a write so other sessions can refetch.
type ChangeEvent struct {
	At    time.Time  `json:"at"`
	Kind  ChangeKind `json:"kind"`
	Owner string     `json:"owner,omitempty"`
	ID    int64      `json:"id"`
	Year  int        `json:"year,omitempty"`
	Month int        `json:"month,omitempty"`
}
