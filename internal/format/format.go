// Package format renders amounts, dates and periods for display and
// coerces loosely typed amounts coming back from the store.
package format

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/Veraticus/kroner/internal/model"
)

const (
	// NoDate is shown for missing or unparseable dates.
	NoDate = "No date"

	groupSeparator = "\u00a0"
	minusSign      = "\u2212"
	currencySuffix = " kr"
)

// Currency renders a whole-krone amount in Norwegian style: groups of three
// digits separated by a no-break space, a true minus sign and a " kr" suffix.
// Fractions are rounded half away from zero. Non-finite values render as
// "0 kr".
func Currency(amount float64) string {
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return "0" + currencySuffix
	}

	rounded := math.Round(amount)
	negative := rounded < 0
	digits := strconv.FormatFloat(math.Abs(rounded), 'f', 0, 64)

	var b strings.Builder
	if negative {
		b.WriteString(minusSign)
	}
	for i, r := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteString(groupSeparator)
		}
		b.WriteRune(r)
	}
	b.WriteString(currencySuffix)
	return b.String()
}

// Kroner is Currency for integer amounts.
func Kroner(amount int64) string {
	return Currency(float64(amount))
}

// Date renders an ISO date or RFC 3339 timestamp as DD.MM.YY.
func Date(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return NoDate
	}
	t, ok := ParseDate(value)
	if !ok {
		return NoDate
	}
	return t.Format("02.01.06")
}

// ParseDate accepts the date layouts the store hands back.
func ParseDate(value string) (time.Time, bool) {
	for _, layout := range []string{model.DateLayout, time.RFC3339Nano, "2006-01-02 15:04:05", "2006-01-02T15:04:05"} {
		if t, err := time.Parse(layout, value); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// ToNumber coerces a numeric or textual amount to a float. Anything that is
// not a finite number yields 0, so a malformed amount can never break a sum.
func ToNumber(value any) float64 {
	var f float64
	switch v := value.(type) {
	case nil:
		return 0
	case float64:
		f = v
	case float32:
		f = float64(v)
	case int:
		f = float64(v)
	case int32:
		f = float64(v)
	case int64:
		f = float64(v)
	case uint:
		f = float64(v)
	case uint32:
		f = float64(v)
	case uint64:
		f = float64(v)
	case json.Number:
		return parseNumber(string(v))
	case []byte:
		return parseNumber(string(v))
	case string:
		return parseNumber(v)
	default:
		return 0
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

func parseNumber(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

// MaxAmount bounds the magnitude of an amount that fits in int64.
const MaxAmount = float64(1 << 63)

// Round converts an amount to whole kroner, half away from zero. Values
// outside the int64 range clamp to its ends.
func Round(value float64) int64 {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return 0
	}
	r := math.Round(value)
	switch {
	case r >= MaxAmount:
		return math.MaxInt64
	case r < -MaxAmount:
		return math.MinInt64
	}
	return int64(r)
}

// Percent renders a percentage with no decimals.
func Percent(value float64) string {
	return strconv.FormatFloat(math.Round(value), 'f', 0, 64) + "%"
}
