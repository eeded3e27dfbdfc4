package rest

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/Veraticus/kroner/internal/format"
	"github.com/Veraticus/kroner/internal/model"
)

const (
	categorySelect = "id,category"
	expenseSelect  = "id,item,price,category_id,tag,user_id,date,category(id,category)"
	budgetSelect   = "id,category_id,year,month,budget,user_id,category(id,category)"
)

// amount decodes a JSON number or numeric string into whole kroner.
type amount int64

func (a *amount) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return err
	}
	*a = amount(format.Round(format.ToNumber(v)))
	return nil
}

// joined decodes an embedded category that the service may return as an
// object, a single-element array, or null.
type joined struct {
	category *model.Category
}

func (j *joined) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	j.category = nil
	switch {
	case len(data) == 0, bytes.Equal(data, []byte("null")):
		return nil
	case data[0] == '[':
		var list []*model.Category
		if err := json.Unmarshal(data, &list); err != nil {
			return err
		}
		if len(list) > 0 {
			j.category = list[0]
		}
		return nil
	default:
		var c model.Category
		if err := json.Unmarshal(data, &c); err != nil {
			return err
		}
		j.category = &c
		return nil
	}
}

type expenseRow struct {
	Tag        *string `json:"tag"`
	Date       *string `json:"date"`
	CategoryID *int64  `json:"category_id"`
	Category   joined  `json:"category"`
	Item       string  `json:"item"`
	UserID     string  `json:"user_id"`
	ID         int64   `json:"id"`
	Price      amount  `json:"price"`
}

func (r expenseRow) toModel() model.Expense {
	e := model.Expense{
		ID:       r.ID,
		Item:     r.Item,
		Price:    int64(r.Price),
		Owner:    r.UserID,
		Category: r.Category.category,
	}
	if r.CategoryID != nil {
		e.CategoryID = *r.CategoryID
	}
	if r.Tag != nil {
		e.Tag = strings.TrimSpace(*r.Tag)
	}
	if r.Date != nil {
		e.Date = isoDate(*r.Date)
	}
	return e
}

type budgetRow struct {
	Category   joined `json:"category"`
	UserID     string `json:"user_id"`
	ID         int64  `json:"id"`
	CategoryID int64  `json:"category_id"`
	Budget     amount `json:"budget"`
	Year       int    `json:"year"`
	Month      int    `json:"month"`
}

func (r budgetRow) toModel() model.BudgetEntry {
	return model.BudgetEntry{
		ID:         r.ID,
		CategoryID: r.CategoryID,
		Year:       r.Year,
		Month:      r.Month,
		Amount:     int64(r.Budget),
		Owner:      r.UserID,
		Category:   r.Category.category,
	}
}

type expenseInsert struct {
	Tag        *string `json:"tag"`
	Date       *string `json:"date"`
	Item       string  `json:"item"`
	UserID     string  `json:"user_id"`
	Price      int64   `json:"price"`
	CategoryID int64   `json:"category_id"`
}

type budgetUpsert struct {
	UserID     string `json:"user_id"`
	CategoryID int64  `json:"category_id"`
	Budget     int64  `json:"budget"`
	Year       int    `json:"year"`
	Month      int    `json:"month"`
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

func isoDate(v string) string {
	v = strings.TrimSpace(v)
	if len(v) > len(model.DateLayout) {
		v = v[:len(model.DateLayout)]
	}
	return v
}
