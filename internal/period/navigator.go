package period

import (
	"slices"
	"time"

	"github.com/Veraticus/kroner/internal/model"
)

// Navigator moves a selection across the available periods. It is a value
// type; every method returns the next selection and leaves its input alone.
type Navigator struct {
	now   func() time.Time
	avail Availability
}

// NewNavigator creates a navigator over avail. A nil clock uses time.Now.
func NewNavigator(avail Availability, now func() time.Time) Navigator {
	if now == nil {
		now = time.Now
	}
	return Navigator{avail: avail, now: now}
}

// Availability returns the periods the navigator steps across.
func (n Navigator) Availability() Availability { return n.avail }

// Initial returns the selection used before availability is known: the
// current calendar month.
func (n Navigator) Initial() model.Period {
	now := n.now()
	return model.Period{Year: now.Year(), Month: int(now.Month())}
}

// Normalize moves sel onto data. A missing or empty year becomes the most
// recent year with data; a month without data becomes the current month
// when that has data, otherwise the earliest month of the year.
func (n Navigator) Normalize(sel model.Period) model.Period {
	if n.avail.Empty() {
		return sel
	}
	if !sel.HasYear() || !n.avail.HasYear(sel.Year) {
		sel.Year = n.avail.Years[0]
	}
	sel.Month = n.defaultMonth(sel.Year, sel.Month)
	return sel
}

// SelectYear switches to year. Zero selects all years and clears the month.
func (n Navigator) SelectYear(sel model.Period, year int) model.Period {
	if year == 0 {
		return model.Period{}
	}
	return model.Period{Year: year, Month: n.defaultMonth(year, sel.Month)}
}

// SelectMonth switches to month within the selected year. Zero selects the
// whole year. It is ignored while all years are selected.
func (n Navigator) SelectMonth(sel model.Period, month int) model.Period {
	if !sel.HasYear() || month < 0 || month > 12 {
		return sel
	}
	sel.Month = month
	return sel
}

func (n Navigator) defaultMonth(year, month int) int {
	months := n.avail.MonthsIn(year)
	if len(months) == 0 || slices.Contains(months, month) {
		return month
	}
	current := int(n.now().Month())
	if slices.Contains(months, current) {
		return current
	}
	return months[0]
}

// CanStep reports whether Prev and Next may move sel.
func (n Navigator) CanStep(sel model.Period) bool { return sel.HasYear() }

// Prev steps toward older periods. With a month selected it moves to the
// previous recorded month, rolling into the latest month of the previous
// recorded year. Without a month it moves to the previous recorded year.
// At the oldest period it returns sel unchanged.
func (n Navigator) Prev(sel model.Period) model.Period {
	if !sel.HasYear() {
		return sel
	}
	years := n.avail.YearOptions(n.now())
	yearIndex := slices.Index(years, sel.Year)
	hasOlder := yearIndex >= 0 && yearIndex < len(years)-1

	if sel.Month == 0 {
		if hasOlder {
			return model.Period{Year: years[yearIndex+1]}
		}
		return sel
	}

	months := n.avail.MonthsIn(sel.Year)
	if len(months) == 0 {
		return sel
	}
	if i := slices.Index(months, sel.Month); i > 0 {
		return model.Period{Year: sel.Year, Month: months[i-1]}
	}
	if !hasOlder {
		return sel
	}
	older := years[yearIndex+1]
	olderMonths := n.avail.MonthsIn(older)
	if len(olderMonths) == 0 {
		return model.Period{Year: older}
	}
	return model.Period{Year: older, Month: olderMonths[len(olderMonths)-1]}
}

// Next steps toward recent periods, mirroring Prev.
func (n Navigator) Next(sel model.Period) model.Period {
	if !sel.HasYear() {
		return sel
	}
	years := n.avail.YearOptions(n.now())
	yearIndex := slices.Index(years, sel.Year)
	hasNewer := yearIndex > 0

	if sel.Month == 0 {
		if hasNewer {
			return model.Period{Year: years[yearIndex-1]}
		}
		return sel
	}

	months := n.avail.MonthsIn(sel.Year)
	if len(months) == 0 {
		return sel
	}
	if i := slices.Index(months, sel.Month); i >= 0 && i < len(months)-1 {
		return model.Period{Year: sel.Year, Month: months[i+1]}
	}
	if !hasNewer {
		return sel
	}
	newer := years[yearIndex-1]
	newerMonths := n.avail.MonthsIn(newer)
	if len(newerMonths) == 0 {
		return model.Period{Year: newer}
	}
	return model.Period{Year: newer, Month: newerMonths[0]}
}
