package password

import (
	"errors"
	"strings"
	"unicode"
)

const MinLen = 8

var ErrTooShort = errors.New("password must be at least 8 characters")

// Check trims pwd and enforces MinLen. The returned hint is advisory only:
// non-empty when the password is short or uses few character classes.
func Check(pwd string) (trimmed, hint string, err error) {
	trimmed = strings.TrimSpace(pwd)
	if len([]rune(trimmed)) < MinLen {
		return trimmed, "", ErrTooShort
	}
	var lower, upper, digit, other bool
	for _, r := range trimmed {
		switch {
		case unicode.IsLower(r):
			lower = true
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsDigit(r):
			digit = true
		default:
			other = true
		}
	}
	classes := 0
	for _, b := range []bool{lower, upper, digit, other} {
		if b {
			classes++
		}
	}
	if len(trimmed) < 12 || classes < 3 {
		hint = "consider 12+ characters mixing letters, digits and symbols"
	}
	return trimmed, hint, nil
}
