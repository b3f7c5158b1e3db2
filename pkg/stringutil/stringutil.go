// pkg/stringutil/stringutil.go
// Package stringutil provides utility functions for string manipulation.
package stringutil

import "strings"

// Ellipsis shortens a string to a maximum length, adding "..." if truncated.
// Leading and trailing spaces are removed, and newlines are collapsed to
// spaces so the result fits on a single line. If maxLength is 3 or smaller
// there is no room for the ellipsis and the string is cut hard.
func Ellipsis(s string, maxLength int) string {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, "\n", " ")
	s = strings.ReplaceAll(s, "\r", "")

	if maxLength < 0 {
		return ""
	}
	if len(s) <= maxLength {
		return s
	}
	if maxLength <= 3 {
		return s[:maxLength]
	}
	return s[:maxLength-3] + "..."
}
