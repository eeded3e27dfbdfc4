package ledger

import (
	"math"

	"github.com/Veraticus/kroner/internal/format"
	"github.com/Veraticus/kroner/internal/model"
)

const (
	// CategoryFillCap bounds the per-category bar at twice the budget.
	CategoryFillCap = 200.0
	// SummaryFillCap bounds the overall budget bar at the budget.
	SummaryFillCap = 100.0
)

// Utilization describes spending against a budget.
type Utilization struct {
	// Percent is spend over budget, unclamped. Zero without a budget.
	Percent float64
	// Fill is Percent clamped to CategoryFillCap.
	Fill float64
	// Width is the bar width in percent of the track (Fill / cap * 100).
	Width float64
	Over  bool
}

// Utilize computes a category's budget utilization.
func Utilize(total, budget int64) Utilization {
	var u Utilization
	if budget > 0 {
		u.Percent = float64(total) / float64(budget) * 100
	}
	u.Fill = math.Min(u.Percent, CategoryFillCap)
	u.Width = u.Fill / CategoryFillCap * 100
	u.Over = budget > 0 && u.Percent > 100
	return u
}

// BudgetSummary compares total spending with the summed expense budgets.
type BudgetSummary struct {
	BudgetTotal   int64
	ExpensesTotal int64
	Percent       float64
	// Fill is Percent clamped to SummaryFillCap.
	Fill float64
	Over bool
}

// HasBudget reports whether any expense budget applies.
func (b BudgetSummary) HasBudget() bool { return b.BudgetTotal > 0 }

// Label renders "Brukt X av Y", or "Ingen budsjett" without a budget.
func (b BudgetSummary) Label() string {
	if !b.HasBudget() {
		return "Ingen budsjett"
	}
	return "Brukt " + format.Kroner(b.ExpensesTotal) + " av " + format.Kroner(b.BudgetTotal)
}

// SummarizeBudget sums the non-income budget entries matching the period and
// relates them to the spending total. It is all zeros without a year.
func SummarizeBudget(budgets []model.BudgetEntry, period model.Period, summary Summary) BudgetSummary {
	var out BudgetSummary
	if !period.HasYear() {
		return out
	}
	for _, b := range budgets {
		name := model.CategoryName(b.Category, "")
		if name == "" || model.IsIncome(name) {
			continue
		}
		if !matches(b, period) {
			continue
		}
		out.BudgetTotal += b.Amount
	}
	out.ExpensesTotal = summary.Expenses
	if out.BudgetTotal > 0 {
		out.Percent = float64(out.ExpensesTotal) / float64(out.BudgetTotal) * 100
	}
	out.Fill = math.Min(out.Percent, SummaryFillCap)
	out.Over = out.Percent > 100
	return out
}
