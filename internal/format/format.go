// Package format converts dates, amounts and addresses into display strings.
package format

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// NotAvailable is printed in place of missing values.
const NotAvailable = "N/A"

// NoAddress is printed when an address has no usable parts.
const NoAddress = "Address not available"

// Date formats t as a short US date, e.g. "Jan 2, 2024".
func Date(t time.Time) string {
	if t.IsZero() {
		return NotAvailable
	}
	return t.Format("Jan 2, 2006")
}

// LongDate formats t as a long British date, e.g. "2 January 2024".
func LongDate(t time.Time) string {
	if t.IsZero() {
		return NotAvailable
	}
	return t.Format("2 January 2006")
}

// Currency formats an amount in rupees with Indian digit grouping,
// e.g. "₹ 12,34,567".
func Currency(amount float64) string {
	return "₹ " + Grouped(amount)
}

// Grouped formats a number with Indian digit grouping (last three digits,
// then pairs) and at most three fraction digits.
func Grouped(amount float64) string {
	amount = math.Round(amount*1000) / 1000

	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}

	s := strconv.FormatFloat(amount, 'f', -1, 64)
	intPart, frac, _ := strings.Cut(s, ".")

	out := groupIndian(intPart)
	if frac != "" {
		out += "." + frac
	}
	return sign + out
}

func groupIndian(digits string) string {
	if len(digits) <= 3 {
		return digits
	}

	parts := []string{digits[len(digits)-3:]}
	s := digits[:len(digits)-3]
	for len(s) > 2 {
		parts = append([]string{s[len(s)-2:]}, parts...)
		s = s[:len(s)-2]
	}
	if s != "" {
		parts = append([]string{s}, parts...)
	}
	return strings.Join(parts, ",")
}

// Address joins the non-empty address parts with ", ".
func Address(parts ...string) string {
	var kept []string
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			kept = append(kept, p)
		}
	}
	if len(kept) == 0 {
		return NoAddress
	}
	return strings.Join(kept, ", ")
}

// Ordinal returns the English ordinal suffix for n ("st", "nd", "rd", "th").
func Ordinal(n int) string {
	if n <= 0 {
		return ""
	}
	switch n % 100 {
	case 11, 12, 13:
		return "th"
	}
	switch n % 10 {
	case 1:
		return "st"
	case 2:
		return "nd"
	case 3:
		return "rd"
	}
	return "th"
}

func midnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// DaysUntilRenewal counts whole days from now until the lease end date.
// Past dates yield 0.
func DaysUntilRenewal(leaseEnd, now time.Time) int {
	if leaseEnd.IsZero() {
		return 0
	}
	end := midnight(leaseEnd.In(now.Location()))
	days := int(math.Ceil(end.Sub(midnight(now)).Hours() / 24))
	if days < 0 {
		return 0
	}
	return days
}

func daysIn(year int, month time.Month, loc *time.Location) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, loc).Day()
}

// NextPaymentDate returns the next date rent falls due for a day-of-month.
// Due days past the end of a month clamp to its last day. The second return
// is false when no due day is set.
func NextPaymentDate(dueDay int, now time.Time) (time.Time, bool) {
	if dueDay <= 0 {
		return time.Time{}, false
	}

	loc := now.Location()
	year, month, day := now.Date()

	due := min(dueDay, daysIn(year, month, loc))
	if day < due {
		return time.Date(year, month, due, 0, 0, 0, 0, loc), true
	}

	next := time.Date(year, month+1, 1, 0, 0, 0, 0, loc)
	due = min(dueDay, daysIn(next.Year(), next.Month(), loc))
	return time.Date(next.Year(), next.Month(), due, 0, 0, 0, 0, loc), true
}
