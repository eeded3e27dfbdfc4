// Package period derives which years and months hold data and steps the
// selected period backward and forward across them.
package period

import (
	"slices"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Availability lists the periods that hold at least one dated expense.
type Availability struct {
	// Months maps each year to its months, ascending.
	Months map[int][]int
	// Years are descending, most recent first.
	Years []int
}

// NewAvailability builds the availability from ISO expense dates. Empty and
// malformed dates are skipped.
func NewAvailability(dates []string) Availability {
	months := make(map[int]map[int]bool)
	for _, d := range dates {
		year, month, ok := splitDate(d)
		if !ok {
			continue
		}
		if months[year] == nil {
			months[year] = make(map[int]bool)
		}
		months[year][month] = true
	}

	a := Availability{Months: make(map[int][]int, len(months))}
	for year, set := range months {
		a.Years = append(a.Years, year)
		list := make([]int, 0, len(set))
		for m := range set {
			list = append(list, m)
		}
		sort.Ints(list)
		a.Months[year] = list
	}
	sort.Sort(sort.Reverse(sort.IntSlice(a.Years)))
	return a
}

func splitDate(d string) (year, month int, ok bool) {
	parts := strings.SplitN(strings.TrimSpace(d), "-", 3)
	if len(parts) < 2 {
		return 0, 0, false
	}
	year, err := strconv.Atoi(parts[0])
	if err != nil || year <= 0 {
		return 0, 0, false
	}
	month, err = strconv.Atoi(parts[1])
	if err != nil || month < 1 || month > 12 {
		return 0, 0, false
	}
	return year, month, true
}

// Empty reports whether no dated expense exists.
func (a Availability) Empty() bool { return len(a.Years) == 0 }

// HasYear reports whether year holds data.
func (a Availability) HasYear(year int) bool { return slices.Contains(a.Years, year) }

// MonthsIn returns the months of year holding data.
func (a Availability) MonthsIn(year int) []int { return a.Months[year] }

// YearOptions returns the selectable years, falling back to the current
// year when nothing is recorded yet.
func (a Availability) YearOptions(now time.Time) []int {
	if len(a.Years) > 0 {
		return a.Years
	}
	return []int{now.Year()}
}

// MonthOptions returns the selectable months for year: its recorded months,
// or all twelve when the year has none.
func (a Availability) MonthOptions(year int) []int {
	if months := a.Months[year]; year != 0 && len(months) > 0 {
		return months
	}
	all := make([]int, 12)
	for i := range all {
		all[i] = i + 1
	}
	return all
}
