// Package sanitize strips markup from user-entered strings before they are
// stored. Chore text and event titles are plain text; anything that looks
// like HTML is removed rather than escaped.
package sanitize

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var strict = bluemonday.StrictPolicy()

// Text removes all HTML elements and attributes from s and returns the
// remaining plain text, with entities decoded and whitespace trimmed.
func Text(s string) string {
	clean := strict.Sanitize(s)
	return strings.TrimSpace(html.UnescapeString(clean))
}
