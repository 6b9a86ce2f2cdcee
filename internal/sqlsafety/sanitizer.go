// Package sqlsafety is the first stage of the diagnostic pipeline: it
// strips comments and statement-chaining syntax from the incoming SQL
// text, then rejects anything that is not a read-only statement before
// any of it reaches a database connection.
package sqlsafety

import (
	"regexp"
	"strings"
)

var (
	reLineComment  = regexp.MustCompile(`--[^\n]*`)
	reBlockComment = regexp.MustCompile(`(?s)/\*.*?\*/`)
	reWhitespace   = regexp.MustCompile(`\s+`)
)

// Sanitize strips `--` line comments, `/* ... */` block comments and
// trailing semicolons, then collapses runs of whitespace to a single
// space. It never rejects anything; rejection is ExecutionGuard's job.
func Sanitize(raw string) string {
	s := reLineComment.ReplaceAllString(raw, "")
	s = reBlockComment.ReplaceAllString(s, " ")
	s = reWhitespace.ReplaceAllString(s, " ")
	s = strings.TrimSpace(s)
	s = strings.TrimRight(s, "; \t\n")
	return strings.TrimSpace(s)
}
