// Package entry validates and submits new expenses.
package entry

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/Veraticus/kroner/internal/common"
	"github.com/Veraticus/kroner/internal/format"
	"github.com/Veraticus/kroner/internal/model"
)

// User-facing validation messages.
const (
	MsgItemAndCategoryRequired = "Item and category are required."
	MsgInvalidPrice            = "Enter a valid price."
	MsgInvalidDate             = "Enter the date as YYYY-MM-DD."
	MsgUnknownCategory         = "Unknown category %q."
)

// Draft is the raw form input for a new expense.
type Draft struct {
	Item  string
	Price string
	Tag   string
	// Date is YYYY-MM-DD. Empty means today unless NoDate is set.
	Date       string
	CategoryID int64
	NoDate     bool
}

// NewDraft returns an empty draft dated today.
func NewDraft(today time.Time) Draft {
	return Draft{Date: today.Format(model.DateLayout)}
}

// Validate turns a draft into insert input.
func Validate(d Draft, today time.Time) (model.NewExpense, error) {
	item := strings.TrimSpace(d.Item)
	if item == "" || d.CategoryID <= 0 {
		return model.NewExpense{}, common.NewUserError(MsgItemAndCategoryRequired, common.ErrInvalidInput)
	}

	price, err := strconv.ParseFloat(strings.TrimSpace(d.Price), 64)
	if err != nil || math.IsNaN(price) || math.IsInf(price, 0) || math.Abs(price) >= format.MaxAmount {
		return model.NewExpense{}, common.NewUserError(MsgInvalidPrice, common.ErrInvalidInput)
	}

	out := model.NewExpense{
		Item:       item,
		Price:      format.Round(price),
		CategoryID: d.CategoryID,
		Tag:        strings.TrimSpace(d.Tag),
	}

	date := strings.TrimSpace(d.Date)
	switch {
	case d.NoDate:
	case date == "":
		out.Date = today.Format(model.DateLayout)
	default:
		if _, err := time.Parse(model.DateLayout, date); err != nil {
			return model.NewExpense{}, common.NewUserError(MsgInvalidDate, common.ErrInvalidInput)
		}
		out.Date = date
	}

	return out, nil
}

// Inserter stores new expenses.
type Inserter interface {
	InsertExpense(ctx context.Context, owner string, input model.NewExpense) (*model.Expense, error)
}

// Workflow validates drafts and inserts them for an owner.
type Workflow struct {
	store Inserter
	now   func() time.Time
}

// NewWorkflow creates a workflow over store. A nil now uses time.Now.
func NewWorkflow(store Inserter, now func() time.Time) *Workflow {
	if now == nil {
		now = time.Now
	}
	return &Workflow{store: store, now: now}
}

// Submit validates d and inserts it. Nothing is written when validation fails.
func (w *Workflow) Submit(ctx context.Context, owner string, d Draft) (*model.Expense, error) {
	if owner == "" {
		return nil, common.ErrNoSession
	}

	input, err := Validate(d, w.now())
	if err != nil {
		return nil, err
	}

	expense, err := w.store.InsertExpense(ctx, owner, input)
	if err != nil {
		return nil, fmt.Errorf("failed to save expense: %w", err)
	}
	return expense, nil
}

// ResolveCategory finds a category by numeric id or by name, ignoring case.
func ResolveCategory(categories []model.Category, ref string) (model.Category, error) {
	ref = strings.TrimSpace(ref)
	if id, err := strconv.ParseInt(ref, 10, 64); err == nil {
		for _, c := range categories {
			if c.ID == id {
				return c, nil
			}
		}
	}
	for _, c := range categories {
		if strings.EqualFold(strings.TrimSpace(c.Name), ref) {
			return c, nil
		}
	}
	return model.Category{}, common.NewUserError(fmt.Sprintf(MsgUnknownCategory, ref), common.ErrNotFound)
}
