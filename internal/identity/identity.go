package identity

import (
	"regexp"
	"strings"
)

// Length is the canonical identifier length including dashes.
const Length = 15

const digitCount = 13

// Dash positions, counted in digits.
const (
	firstGroup  = 5
	secondGroup = 12
)

var canonical = regexp.MustCompile(`^\d{5}-\d{7}-\d$`)

// Normalize strips everything but digits and re-inserts dashes at the fixed
// offsets, dropping digits past the canonical length. Partial input stays
// partial: "12345678" becomes "12345-678".
func Normalize(raw string) string {
	var b strings.Builder
	b.Grow(Length)

	n := 0
	for _, r := range raw {
		if r < '0' || r > '9' {
			continue
		}
		if n == digitCount {
			break
		}
		if n == firstGroup || n == secondGroup {
			b.WriteByte('-')
		}
		b.WriteRune(r)
		n++
	}
	return b.String()
}

// Valid reports whether id is already in canonical form.
func Valid(id string) bool {
	return canonical.MatchString(id)
}
