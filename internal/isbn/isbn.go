package isbn

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidIdentifier is returned when the sanitized input is neither 10
// nor 13 characters long, or when its digits are interrupted by an 'X'
// anywhere but the ISBN-10 check position.
var ErrInvalidIdentifier = errors.New("invalid identifier")

// Sanitize uppercases s and keeps only digits and 'X'.
func Sanitize(s string) string {
	s = strings.ToUpper(strings.TrimSpace(s))
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if (r >= '0' && r <= '9') || r == 'X' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// ToISBN13 sanitizes raw and returns its 13-digit form. A 10-character input
// is converted by dropping its check digit, prefixing "978" and computing a
// fresh EAN-13 check digit.
func ToISBN13(raw string) (string, error) {
	s := Sanitize(raw)
	switch len(s) {
	case 13:
		if !allDigits(s) {
			return "", fmt.Errorf("%w: %q", ErrInvalidIdentifier, raw)
		}
		return s, nil
	case 10:
		core := "978" + s[:9]
		if !allDigits(core) {
			return "", fmt.Errorf("%w: %q", ErrInvalidIdentifier, raw)
		}
		return core + string(rune('0'+CheckDigit13(core))), nil
	default:
		return "", fmt.Errorf("%w: %q has %d usable characters, want 10 or 13", ErrInvalidIdentifier, raw, len(s))
	}
}

// CheckDigit13 computes the EAN-13 check digit for the first twelve digits:
// weights alternate 1,3,1,3,... from position 0 and the digit is
// (10 - sum%10) % 10. Non-digit input yields a meaningless result.
func CheckDigit13(first12 string) int {
	sum := 0
	for i := 0; i < len(first12) && i < 12; i++ {
		d := int(first12[i] - '0')
		if i%2 == 0 {
			sum += d
		} else {
			sum += 3 * d
		}
	}
	return (10 - sum%10) % 10
}

// Valid13 reports whether s is 13 digits with a correct check digit.
func Valid13(s string) bool {
	if len(s) != 13 || !allDigits(s) {
		return false
	}
	return int(s[12]-'0') == CheckDigit13(s[:12])
}

func allDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
