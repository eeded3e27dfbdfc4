// Package ledger aggregates expenses and budgets for a selected period:
// income and expense totals, per-category totals and budget utilization.
package ledger

import (
	"sort"

	"github.com/Veraticus/kroner/internal/model"
)

// Uncategorized is the bucket for expenses whose category did not resolve.
const Uncategorized = "Uncategorized"

// Summary holds the headline totals for a set of expenses.
type Summary struct {
	Income   int64
	Expenses int64
	Net      int64
	Count    int
}

// Summarize splits expenses into income and spending. Expenses without a
// resolved category count as spending.
func Summarize(expenses []model.Expense) Summary {
	var s Summary
	for _, e := range expenses {
		if model.IsIncome(e.CategoryName("")) {
			s.Income += e.Price
		} else {
			s.Expenses += e.Price
		}
	}
	s.Net = s.Income - s.Expenses
	s.Count = len(expenses)
	return s
}

// CategoryTotal is the summed price of one category's expenses.
type CategoryTotal struct {
	Name  string
	Total int64
}

// CategoryTotals sums expenses per category name. Every known category is
// present even without expenses. The result is sorted by total descending;
// equal totals keep category order followed by first appearance.
func CategoryTotals(expenses []model.Expense, categories []model.Category) []CategoryTotal {
	totals := make([]CategoryTotal, 0, len(categories)+1)
	index := make(map[string]int, len(categories)+1)

	bucket := func(name string) int {
		if i, ok := index[name]; ok {
			return i
		}
		index[name] = len(totals)
		totals = append(totals, CategoryTotal{Name: name})
		return len(totals) - 1
	}

	for _, c := range categories {
		bucket(c.Name)
	}
	for _, e := range expenses {
		name := e.CategoryName("")
		if name == "" {
			name = Uncategorized
		}
		totals[bucket(name)].Total += e.Price
	}

	sort.SliceStable(totals, func(i, j int) bool {
		return totals[i].Total > totals[j].Total
	})
	return totals
}

// BudgetByCategory sums budget amounts per category name for the period.
// With no year selected the result is empty. With a year but no month every
// entry of the year counts.
func BudgetByCategory(budgets []model.BudgetEntry, categories []model.Category, period model.Period) map[string]int64 {
	out := make(map[string]int64)
	if !period.HasYear() {
		return out
	}
	for _, c := range categories {
		out[c.Name] = 0
	}
	for _, b := range budgets {
		if !matches(b, period) {
			continue
		}
		name := model.CategoryName(b.Category, "")
		if name == "" {
			continue
		}
		out[name] += b.Amount
	}
	return out
}

func matches(b model.BudgetEntry, period model.Period) bool {
	if period.Month != 0 && b.Month != period.Month {
		return false
	}
	return true
}
