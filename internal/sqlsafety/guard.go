package sqlsafety

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnsafeQuery is the sentinel wrapped by every rejection Guard
// produces, so callers can test with errors.Is regardless of the
// specific reason.
var ErrUnsafeQuery = errors.New("unsafe query")

// forbiddenKeywords is checked against the statement's first significant
// token and, defense-in-depth, against any top-level occurrence —
// mirrors the allow/deny pairing a connection-layer guard would use, but
// applied before any driver ever sees the text.
var forbiddenKeywords = []string{
	"INSERT", "UPDATE", "DELETE", "DROP", "ALTER",
	"TRUNCATE", "REPLACE", "GRANT", "REVOKE",
}

var allowedLeadingKeywords = []string{"SELECT", "WITH"}

// Guard rejects anything that is not a read-only statement. It operates
// on text Sanitize has already cleaned; Guard itself does no stripping.
type Guard struct{}

// NewGuard returns a ready-to-use ExecutionGuard. It carries no state:
// every call to Check is independent.
func NewGuard() Guard {
	return Guard{}
}

// Check returns an error wrapping ErrUnsafeQuery when sanitized is empty,
// when its first significant token is not SELECT or WITH, or when a
// forbidden DDL/DML keyword appears as a top-level token.
func (Guard) Check(sanitized string) error {
	if sanitized == "" {
		return fmt.Errorf("%w: statement is empty after sanitization", ErrUnsafeQuery)
	}

	upper := strings.ToUpper(sanitized)

	leading := false
	for _, kw := range allowedLeadingKeywords {
		if hasLeadingKeyword(upper, kw) {
			leading = true
			break
		}
	}
	if !leading {
		first := upper
		if i := strings.IndexAny(upper, " \t\n("); i >= 0 {
			first = upper[:i]
		}
		return fmt.Errorf("%w: statement must begin with SELECT or WITH, not %s", ErrUnsafeQuery, first)
	}

	for _, kw := range forbiddenKeywords {
		if containsTopLevelKeyword(upper, kw) {
			return fmt.Errorf("%w: statement contains forbidden keyword %s", ErrUnsafeQuery, kw)
		}
	}

	return nil
}

func hasLeadingKeyword(upper, kw string) bool {
	if !strings.HasPrefix(upper, kw) {
		return false
	}
	if len(upper) == len(kw) {
		return true
	}
	next := upper[len(kw)]
	return next == ' ' || next == '\t' || next == '\n' || next == '('
}

// containsTopLevelKeyword looks for kw as a whole word anywhere in the
// statement. It is intentionally coarse: sqlshape owns precise
// structural parsing, Guard only needs to refuse to run anything that
// merely mentions a mutating verb.
func containsTopLevelKeyword(upper, kw string) bool {
	idx := 0
	for {
		pos := strings.Index(upper[idx:], kw)
		if pos < 0 {
			return false
		}
		abs := idx + pos
		before := abs == 0 || !isWordByte(upper[abs-1])
		afterIdx := abs + len(kw)
		after := afterIdx >= len(upper) || !isWordByte(upper[afterIdx])
		if before && after {
			return true
		}
		idx = abs + 1
	}
}

func isWordByte(b byte) bool {
	return (b >= 'A' && b <= 'Z') || (b >= '0' && b <= '9') || b == '_'
}
