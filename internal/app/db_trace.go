package app

import (
	"regexp"
	"strings"
)

// maxTracedQueryLength bounds db.statement on spans. The ledger inserts are
// multi-row and grow with the batch.
const maxTracedQueryLength = 512

var sqlWhitespace = regexp.MustCompile(`\s+`)

// formatDBQueryForTrace collapses whitespace and cuts long statements at a
// word boundary.
func formatDBQueryForTrace(query string) string {
	query = strings.TrimSuffix(strings.TrimSpace(sqlWhitespace.ReplaceAllString(query, " ")), ";")
	if len(query) <= maxTracedQueryLength {
		return query
	}

	cut := query[:maxTracedQueryLength]
	if i := strings.LastIndexByte(cut, ' '); i > maxTracedQueryLength/2 {
		cut = cut[:i]
	}
	return cut + " ..."
}
