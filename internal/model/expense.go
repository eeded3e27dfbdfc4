package model

// Expense is a single recorded transaction owned by one user. Price is in
// whole kroner. Date is an ISO calendar date or empty when unknown.
type Expense struct {
	Category   *Category
	Item       string
	Tag        string
	Owner      string
	Date       string
	ID         int64
	Price      int64
	CategoryID int64
}

// CategoryName returns the resolved category name or fallback.
func (e Expense) CategoryName(fallback string) string {
	return CategoryName(e.Category, fallback)
}

// NewExpense holds a validated expense ready to insert.
type NewExpense struct {
	Item       string
	Tag        string
	Date       string
	Price      int64
	CategoryID int64
}
