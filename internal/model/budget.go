package model

// BudgetEntry is a per-category budget for one month of one year.
// At most one entry exists per (owner, category, year, month).
type BudgetEntry struct {
	Category   *Category
	Owner      string
	ID         int64
	CategoryID int64
	Amount     int64
	Year       int
	Month      int
}

// Period returns the month the entry applies to.
func (b BudgetEntry) Period() Period {
	return Period{Year: b.Year, Month: b.Month}
}

// BudgetInput is the value side of a budget upsert.
type BudgetInput struct {
	CategoryID int64
	Amount     int64
	Year       int
	Month      int
}
