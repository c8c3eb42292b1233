package textutil

import (
	"regexp"
	"strings"
)

var whitespaceRegex = regexp.MustCompile(`\s+`)

// Normalize lowercases and strips all whitespace so two renditions of
// the same product name compare equal.
func Normalize(text string) string {
	text = strings.ToLower(text)
	text = strings.Trim(text, " \n\t")
	text = whitespaceRegex.ReplaceAllString(text, "")
	return text
}

// ContainsAny reports whether text contains any of the markers once
// both sides are normalized.
func ContainsAny(text string, markers []string) bool {
	text = Normalize(text)
	for _, m := range markers {
		if strings.Contains(text, Normalize(m)) {
			return true
		}
	}
	return false
}
