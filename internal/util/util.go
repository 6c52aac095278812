// Package util provides small string helpers for host command arguments.
package util

import "strings"

// ArgSeparator separates fields when the host packs a command into one string.
const ArgSeparator = "|"

// TrimQuotes removes leading and trailing double quotes from a string.
func TrimQuotes(s string) string {
	return strings.Trim(s, `"`)
}

// FixEscapeQuotes replaces escaped double quotes ("") with single double quotes (").
func FixEscapeQuotes(s string) string {
	return strings.ReplaceAll(s, `""`, `"`)
}

// TrimBrackets removes surrounding whitespace and one pair of square brackets.
func TrimBrackets(s string) string {
	s = strings.TrimSpace(s)
	if len(s) >= 2 && s[0] == '[' && s[len(s)-1] == ']' {
		return s[1 : len(s)-1]
	}
	return s
}

// CleanArgs unquotes every argument in place and returns the slice.
func CleanArgs(args []string) []string {
	for i, v := range args {
		args[i] = FixEscapeQuotes(TrimQuotes(strings.TrimSpace(v)))
	}
	return args
}

// SplitArgs expands a single packed argument ("a|b|c") into its fields.
// Already split argument lists are returned unchanged.
func SplitArgs(args []string) []string {
	if len(args) != 1 || !strings.Contains(args[0], ArgSeparator) {
		return args
	}
	return strings.Split(TrimQuotes(args[0]), ArgSeparator)
}
