// Package slug builds the human-readable identifiers used for group IDs and
// invite codes: a lowercased, dash-separated rendering of a name plus a
// random four-digit suffix.
package slug

import (
	"fmt"
	"math/rand"
	"strings"
	"unicode"
)

// Make lowercases name and replaces every run of non-alphanumeric characters
// with a single dash. Leading and trailing dashes are trimmed.
func Make(name string) string {
	var b strings.Builder
	lastDash := true // suppress leading dash
	for _, r := range strings.ToLower(name) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			lastDash = false
		} else if !lastDash {
			b.WriteByte('-')
			lastDash = true
		}
	}
	return strings.TrimRight(b.String(), "-")
}

// WithSuffix returns Make(name) plus a random numeric suffix in [1000, 9999],
// e.g. "beach-house-4821". Collisions are possible; callers relying on
// uniqueness must retry on duplicate-key errors.
func WithSuffix(name string) string {
	s := Make(name)
	n := 1000 + rand.Intn(9000)
	if s == "" {
		return fmt.Sprintf("%d", n)
	}
	return fmt.Sprintf("%s-%d", s, n)
}
