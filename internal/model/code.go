package model

import "strings"

// CodeLess orders account codes: all-digit codes numerically, everything
// else lexically, digits before non-digits.
func CodeLess(a, b string) bool {
	da, db := allDigits(a), allDigits(b)
	switch {
	case da && db:
		a, b = strings.TrimLeft(a, "0"), strings.TrimLeft(b, "0")
		if len(a) != len(b) {
			return len(a) < len(b)
		}
		return a < b
	case da != db:
		return da
	default:
		return a < b
	}
}

func allDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
