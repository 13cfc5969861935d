package validate

import (
	"regexp"
	"time"
)

// DateLayout is the calendar format all expiry and vacation dates use.
const DateLayout = "2006-01-02"

// MaxAdvanceAmount caps a single advance-payment request.
const MaxAdvanceAmount = 10000

var phoneRegex = regexp.MustCompile(`^\+?[\d\s\-\(\)]{7,20}$`)

// IsValidDateFormat reports whether s is a real calendar date in
// YYYY-MM-DD form. "2025-13-40" fails; "2025-12-31" passes.
func IsValidDateFormat(s string) bool {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return false
	}
	// time.Parse normalizes out-of-range components; require a roundtrip.
	return t.Format(DateLayout) == s
}

// IsDateExpired reports whether the date is strictly before today
// (midnight-truncated). Today itself is not expired.
func IsDateExpired(s string, now time.Time) bool {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return true
	}
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	return t.Before(today)
}

// IsDateAfter reports whether b is a valid date strictly after a.
func IsDateAfter(a, b string) bool {
	ta, err := time.Parse(DateLayout, a)
	if err != nil {
		return false
	}
	tb, err := time.Parse(DateLayout, b)
	if err != nil {
		return false
	}
	return tb.After(ta)
}

// IsValidPhoneNumber accepts digits with optional +, spaces, dashes and
// parentheses.
func IsValidPhoneNumber(phone string) bool {
	return phoneRegex.MatchString(phone)
}

// IsValidAmount accepts positive amounts up to MaxAdvanceAmount.
func IsValidAmount(amount float64) bool {
	return amount > 0 && amount <= MaxAdvanceAmount
}
