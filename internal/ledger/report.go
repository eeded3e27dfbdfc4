package ledger

import "github.com/Veraticus/kroner/internal/model"

// Line is one category row of a report.
type Line struct {
	Name        string
	Total       int64
	Budget      int64
	Utilization Utilization
	IsIncome    bool
}

// Report bundles every aggregate for one period.
type Report struct {
	Period   model.Period
	Expenses []model.Expense
	Lines    []Line
	Summary  Summary
	Budget   BudgetSummary
}

// Build aggregates expenses, categories and the year's budgets for period.
func Build(period model.Period, expenses []model.Expense, categories []model.Category, budgets []model.BudgetEntry) Report {
	summary := Summarize(expenses)
	byCategory := BudgetByCategory(budgets, categories, period)
	totals := CategoryTotals(expenses, categories)

	lines := make([]Line, 0, len(totals))
	for _, t := range totals {
		budget := byCategory[t.Name]
		lines = append(lines, Line{
			Name:        t.Name,
			Total:       t.Total,
			Budget:      budget,
			Utilization: Utilize(t.Total, budget),
			IsIncome:    model.IsIncome(t.Name),
		})
	}

	return Report{
		Period:   period,
		Expenses: expenses,
		Lines:    lines,
		Summary:  summary,
		Budget:   SummarizeBudget(budgets, period, summary),
	}
}
