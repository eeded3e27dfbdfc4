package ofx

import (
	"strconv"
	"strings"

	"github.com/Veraticus/kroner/internal/entry"
	"github.com/Veraticus/kroner/internal/format"
	"github.com/Veraticus/kroner/internal/model"
)

// Plan is the outcome of matching statement records against the ledger.
type Plan struct {
	Drafts     []entry.Draft
	Credits    int
	Duplicates int
}

// Signature identifies an expense by date, item and price. Two expenses
// with the same signature are treated as the same purchase.
func Signature(date, item string, price int64) string {
	return date + "|" + strings.ToLower(strings.TrimSpace(item)) + "|" + strconv.FormatInt(price, 10)
}

// PlanImport turns debits into drafts for categoryID. Records repeat when
// statements overlap, so drafts are unique by FITID within the batch and by
// Signature against existing expenses.
func PlanImport(records []Record, existing []model.Expense, categoryID int64, tag string) Plan {
	known := make(map[string]bool, len(existing))
	for _, e := range existing {
		known[Signature(e.Date, e.Item, e.Price)] = true
	}
	seenFITID := make(map[string]bool, len(records))

	var plan Plan
	for _, r := range records {
		if !r.IsDebit() {
			plan.Credits++
			continue
		}
		if r.FITID != "" {
			key := r.AccountID + "/" + r.FITID
			if seenFITID[key] {
				plan.Duplicates++
				continue
			}
			seenFITID[key] = true
		}

		price := format.Round(-r.Amount)
		date := ""
		if !r.Date.IsZero() {
			date = r.Date.Format(model.DateLayout)
		}
		sig := Signature(date, r.Item, price)
		if known[sig] {
			plan.Duplicates++
			continue
		}
		known[sig] = true

		d := entry.Draft{
			Item:       r.Item,
			Price:      strconv.FormatInt(price, 10),
			CategoryID: categoryID,
			Tag:        tag,
			Date:       date,
			NoDate:     date == "",
		}
		plan.Drafts = append(plan.Drafts, d)
	}
	return plan
}
