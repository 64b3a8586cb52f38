package sanitize

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// StrictPolicy removes all HTML tags and attributes.
// Use for fields that should only contain plain text (names, themes).
var StrictPolicy = bluemonday.StrictPolicy()

// Text strips all HTML tags and surrounding whitespace.
// Use for: usernames, full names, marathon names, sponsor names.
func Text(input string) string {
	return strings.TrimSpace(StrictPolicy.Sanitize(input))
}

// TextPtr sanitizes optional free-text fields, preserving nil.
func TextPtr(input *string) *string {
	if input == nil {
		return nil
	}
	cleaned := Text(*input)
	return &cleaned
}
