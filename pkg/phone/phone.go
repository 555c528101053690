// Package phone normalizes phone numbers for comparison. Numbers are
// reduced to a digits-only form with an optional leading plus so the
// same line stored as "(415) 555-0134" and "+14155550134" compares equal.
package phone

import "strings"

// Normalize strips formatting characters and returns a canonical
// representation. Ten-digit numbers are assumed to be US national and
// get a +1 prefix. An empty or unusable input returns "".
func Normalize(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}

	var b strings.Builder
	for i, r := range raw {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '+' && i == 0:
			b.WriteRune(r)
		}
	}

	digits := b.String()
	stripped := strings.TrimPrefix(digits, "+")
	if len(stripped) < 7 {
		return ""
	}

	switch {
	case strings.HasPrefix(digits, "+"):
		return digits
	case len(stripped) == 10:
		return "+1" + stripped
	case len(stripped) == 11 && strings.HasPrefix(stripped, "1"):
		return "+" + stripped
	default:
		return "+" + stripped
	}
}

// Equal reports whether two raw phone numbers normalize to the same
// canonical form. Two unusable numbers are never equal.
func Equal(a, b string) bool {
	na, nb := Normalize(a), Normalize(b)
	if na == "" || nb == "" {
		return false
	}
	return na == nb
}

// LastFour returns the final four digits of a normalized number, used
// for redacted display. Returns "" when the number is unusable.
func LastFour(raw string) string {
	n := Normalize(raw)
	if n == "" {
		return ""
	}
	digits := strings.TrimPrefix(n, "+")
	if len(digits) < 4 {
		return ""
	}
	return digits[len(digits)-4:]
}
