package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// MinorUnits is an amount in the currency's smallest unit (cents for EUR).
type MinorUnits int64

// Decimal renders the amount with two fraction digits, e.g. 7999 -> "79.99".
func (m MinorUnits) Decimal() string {
	sign := ""
	v := int64(m)
	if v < 0 {
		sign = "-"
		v = -v
	}
	return fmt.Sprintf("%s%d.%02d", sign, v/100, v%100)
}

// ParseMinorUnits parses a decimal amount such as "79.99", "10.9" or "15"
// without going through floating point. More than two fraction digits is an
// error.
func ParseMinorUnits(s string) (MinorUnits, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("parse amount: empty")
	}
	neg := false
	if s[0] == '-' {
		neg = true
		s = s[1:]
	}
	whole, frac, hasFrac := strings.Cut(s, ".")
	if whole == "" {
		whole = "0"
	}
	if hasFrac && (len(frac) == 0 || len(frac) > 2) {
		return 0, fmt.Errorf("parse amount %q: expected at most two fraction digits", s)
	}
	if !digits(whole) || (hasFrac && !digits(frac)) {
		return 0, fmt.Errorf("parse amount %q: not a decimal number", s)
	}
	for len(frac) < 2 {
		frac += "0"
	}
	w, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse amount %q: %w", s, err)
	}
	f, err := strconv.ParseInt(frac, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse amount %q: %w", s, err)
	}
	v := w*100 + f
	if neg {
		v = -v
	}
	return MinorUnits(v), nil
}

func digits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
