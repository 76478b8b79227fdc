package view

import (
	"fmt"
	"math"
	"strings"

	"outlay/internal/core"
)

// FormatCurrency renders an amount as "$1,234.56". Negative values keep
// the sign before the dollar symbol.
func FormatCurrency(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "$0.00"
	}
	neg := v < 0
	s := fmt.Sprintf("%.2f", math.Abs(core.RoundToTwo(v)))
	dot := strings.Index(s, ".")
	intPart, frac := s[:dot], s[dot:]
	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	b.WriteByte('$')
	lead := len(intPart) % 3
	if lead > 0 {
		b.WriteString(intPart[:lead])
		if len(intPart) > lead {
			b.WriteByte(',')
		}
	}
	for i := lead; i < len(intPart); i += 3 {
		b.WriteString(intPart[i : i+3])
		if i+3 < len(intPart) {
			b.WriteByte(',')
		}
	}
	b.WriteString(frac)
	return b.String()
}

// FormatDate renders a stored date as "Jan 2, 2006". Unparseable values
// come back verbatim so the user can see and fix what was stored.
func FormatDate(s string) string {
	t, ok := core.ParseWhen(s)
	if !ok {
		return s
	}
	return t.Format("Jan 2, 2006")
}

// FormatDateForInput renders a stored date as "2006-01-02", the value
// format of an HTML date input. Unparseable values come back verbatim.
func FormatDateForInput(s string) string {
	t, ok := core.ParseWhen(s)
	if !ok {
		return s
	}
	return t.Format("2006-01-02")
}

// Percent renders a share of a total with one decimal place, "0.0%" when
// the total is zero or not finite.
func Percent(part, total float64) string {
	if total == 0 || math.IsNaN(total) || math.IsInf(total, 0) {
		return "0.0%"
	}
	return fmt.Sprintf("%.1f%%", part/total*100)
}
