package utils

import "strings"

// CountWords returns the number of whitespace-separated tokens in text.
func CountWords(text string) int {
	return len(strings.Fields(text))
}

// Truncate shortens text to at most limit runes, marking the cut with "...".
func Truncate(text string, limit int) string {
	if limit <= 0 {
		return ""
	}
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	if limit <= 3 {
		return string(runes[:limit])
	}
	return string(runes[:limit-3]) + "..."
}
