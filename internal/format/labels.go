package format

import (
	"strconv"
	"strings"

	"github.com/Veraticus/kroner/internal/model"
)

var monthLabels = [...]string{
	"januar", "februar", "mars", "april", "mai", "juni",
	"juli", "august", "september", "oktober", "november", "desember",
}

// AllYears labels the unfiltered period.
const AllYears = "Alle år"

// MonthLabel returns the Norwegian name of month m (1-12).
func MonthLabel(m int) string {
	if m < 1 || m > 12 {
		return ""
	}
	return monthLabels[m-1]
}

// PeriodLabel renders "Alle år", "2024" or "mars 2024".
func PeriodLabel(p model.Period) string {
	if !p.HasYear() {
		return AllYears
	}
	year := strconv.Itoa(p.Year)
	if p.Month == 0 {
		return year
	}
	label := MonthLabel(p.Month)
	if label == "" {
		label = strconv.Itoa(p.Month)
	}
	return label + " " + year
}

// CategoryHue maps a category name onto a stable hue in [0, 360).
func CategoryHue(name string) int {
	normalized := strings.ToLower(strings.TrimSpace(name))
	if normalized == "" {
		normalized = "uncategorized"
	}
	hash := 0
	for _, r := range normalized {
		hash = (hash*31 + int(r)) % 360
	}
	return hash
}
