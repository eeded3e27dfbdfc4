package model

import "strings"

// IncomeCategoryName is the category whose expenses count as income.
const IncomeCategoryName = "inntekter"

// Category is a shared classification for expenses and budgets.
type Category struct {
	Name string `json:"category"`
	ID   int64  `json:"id"`
}

// IsIncome reports whether the category name denotes income. The comparison
// ignores case and surrounding whitespace.
func IsIncome(name string) bool {
	return strings.ToLower(strings.TrimSpace(name)) == IncomeCategoryName
}

// CategoryName returns the name of c, or fallback when c is nil.
func CategoryName(c *Category, fallback string) string {
	if c == nil {
		return fallback
	}
	return c.Name
}
