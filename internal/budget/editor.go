// Package budget edits per-category monthly budgets.
package budget

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/Veraticus/kroner/internal/common"
	"github.com/Veraticus/kroner/internal/format"
	"github.com/Veraticus/kroner/internal/model"
)

// MsgSelectPeriod is shown when editing without a year and month.
const MsgSelectPeriod = "Select a year and month to edit budgets."

// Suggestion is the previous period's budget offered for copying.
type Suggestion struct {
	Label  string
	Amount int64
}

// Draft is an open budget edit for one category and month.
type Draft struct {
	Suggestion *Suggestion
	// PreviousLabel names the previous period when the draft has no value.
	PreviousLabel string
	Value         string
	Category      model.Category
	Period        model.Period
	Previous      model.Period
	HasValue      bool
	// NeedsLookup is set when the previous period lies outside the loaded year.
	NeedsLookup bool
}

// Store reads and writes budget entries.
type Store interface {
	FindBudget(ctx context.Context, owner string, categoryID int64, year, month int) (*model.BudgetEntry, error)
	UpsertBudget(ctx context.Context, owner string, input model.BudgetInput) (*model.BudgetEntry, error)
}

// Editor opens and saves budget drafts for one owner.
type Editor struct {
	store Store
	owner string
}

// NewEditor creates an editor for owner.
func NewEditor(store Store, owner string) *Editor {
	return &Editor{store: store, owner: owner}
}

// Prepare builds a draft from the loaded year without touching the store.
func Prepare(period model.Period, category model.Category, loaded []model.BudgetEntry) (Draft, error) {
	if !period.HasYear() || !period.HasMonth() {
		return Draft{}, common.NewUserError(MsgSelectPeriod, common.ErrInvalidInput)
	}

	d := Draft{Category: category, Period: period}
	if existing := find(loaded, category.ID, period); existing != nil {
		d.Value = strconv.FormatInt(existing.Amount, 10)
		d.HasValue = true
		return d, nil
	}

	d.Previous = period.Previous()
	d.PreviousLabel = format.PeriodLabel(d.Previous)
	if prev := find(loaded, category.ID, d.Previous); prev != nil {
		d.Suggestion = &Suggestion{Amount: prev.Amount, Label: d.PreviousLabel}
		return d, nil
	}
	d.NeedsLookup = d.Previous.Year != period.Year
	return d, nil
}

// Open prepares a draft and, when needed, looks up the previous period's
// budget in the store.
func (e *Editor) Open(ctx context.Context, period model.Period, category model.Category, loaded []model.BudgetEntry) (Draft, error) {
	d, err := Prepare(period, category, loaded)
	if err != nil || !d.NeedsLookup {
		return d, err
	}

	s, err := e.Lookup(ctx, d)
	if err != nil {
		return d, err
	}
	d.Suggestion = s
	d.NeedsLookup = false
	return d, nil
}

// Lookup fetches the suggestion for d's previous period. A missing entry
// yields nil without error.
func (e *Editor) Lookup(ctx context.Context, d Draft) (*Suggestion, error) {
	entry, err := e.store.FindBudget(ctx, e.owner, d.Category.ID, d.Previous.Year, d.Previous.Month)
	if errors.Is(err, common.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load previous budget: %w", err)
	}
	return &Suggestion{Amount: entry.Amount, Label: d.PreviousLabel}, nil
}

// ApplySuggestion copies the suggested amount into the draft value.
func ApplySuggestion(d Draft) Draft {
	if d.Suggestion != nil {
		d.Value = strconv.FormatInt(d.Suggestion.Amount, 10)
	}
	return d
}

// Save upserts the draft. Unparseable values save as zero.
func (e *Editor) Save(ctx context.Context, d Draft) (*model.BudgetEntry, error) {
	if !d.Period.HasYear() || !d.Period.HasMonth() {
		return nil, common.NewUserError(MsgSelectPeriod, common.ErrInvalidInput)
	}
	if e.owner == "" {
		return nil, common.ErrNoSession
	}

	entry, err := e.store.UpsertBudget(ctx, e.owner, model.BudgetInput{
		CategoryID: d.Category.ID,
		Year:       d.Period.Year,
		Month:      d.Period.Month,
		Amount:     format.Round(format.ToNumber(d.Value)),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to save budget: %w", err)
	}
	return entry, nil
}

func find(entries []model.BudgetEntry, categoryID int64, p model.Period) *model.BudgetEntry {
	for i := range entries {
		if entries[i].CategoryID == categoryID && entries[i].Year == p.Year && entries[i].Month == p.Month {
			return &entries[i]
		}
	}
	return nil
}
