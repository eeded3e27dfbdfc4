package model

import (
	"fmt"
	"time"
)

// Period selects either a whole year (Month == 0) or a single month.
// The zero Period selects all years.
type Period struct {
	Year  int
	Month int
}

// HasYear reports whether a year is selected.
func (p Period) HasYear() bool { return p.Year != 0 }

// HasMonth reports whether a single month is selected.
func (p Period) HasMonth() bool { return p.Year != 0 && p.Month != 0 }

// Before orders periods by year, then month.
func (p Period) Before(o Period) bool {
	if p.Year != o.Year {
		return p.Year < o.Year
	}
	return p.Month < o.Month
}

// Previous returns the calendar month before p, rolling into December of
// the previous year.
func (p Period) Previous() Period {
	if p.Month <= 1 {
		return Period{Year: p.Year - 1, Month: 12}
	}
	return Period{Year: p.Year, Month: p.Month - 1}
}

// Range returns the inclusive ISO date bounds of the period. ok is false
// for the all-years period, which has no bounds.
func (p Period) Range() (start, end string, ok bool) {
	if p.Year == 0 {
		return "", "", false
	}
	if p.Month < 1 || p.Month > 12 {
		return fmt.Sprintf("%04d-01-01", p.Year), fmt.Sprintf("%04d-12-31", p.Year), true
	}
	return isoDate(p.Year, p.Month, 1), isoDate(p.Year, p.Month, DaysIn(p.Year, p.Month)), true
}

// DaysIn returns the number of days in the given month.
func DaysIn(year, month int) int {
	// Day 0 of the following month is the last day of this one.
	return time.Date(year, time.Month(month)+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func isoDate(year, month, day int) string {
	return fmt.Sprintf("%04d-%02d-%02d", year, month, day)
}

// DateLayout is the ISO calendar date layout used for expense dates.
const DateLayout = "2006-01-02"
