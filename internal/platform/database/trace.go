package database

import (
	"regexp"
	"strings"
)

const maxTracedQueryLength = 512

var whitespace = regexp.MustCompile(`\s+`)

// formatQueryForTrace collapses whitespace and truncates long statements before they land on spans.
func formatQueryForTrace(query string) string {
	query = whitespace.ReplaceAllString(strings.TrimSpace(query), " ")
	if len(query) <= maxTracedQueryLength {
		return query
	}
	return query[:maxTracedQueryLength] + "..."
}
