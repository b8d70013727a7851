// Package mapping implements the field-to-column reconciliation core: it
// resolves logical form fields against a freshly fetched board schema and
// produces the typed column-value payload the external board API expects.
package mapping

import (
	"strings"
	"unicode"

	"github.com/triade-beauty/intake/internal/domain"
)

// FindColumnID locates a column by fuzzy title match and returns its id.
// Matching is a case-insensitive substring test against the title; when that
// fails, both the term and the title are stripped of non-alphanumeric runes
// and compared again. The first matching column wins — deterministic for a
// fixed column order, and deliberately not a ranking. An empty term or column
// list never matches.
func FindColumnID(columns []domain.BoardColumn, term string) (string, bool) {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return "", false
	}
	bare := stripNonAlnum(term)
	for _, col := range columns {
		title := strings.ToLower(col.Title)
		if strings.Contains(title, term) {
			return col.ID, true
		}
		if bare != "" && strings.Contains(stripNonAlnum(title), bare) {
			return col.ID, true
		}
	}
	return "", false
}

// FindColumn is FindColumnID returning the whole column, used where the
// caller needs the column type as well as the id.
func FindColumn(columns []domain.BoardColumn, term string) (domain.BoardColumn, bool) {
	id, ok := FindColumnID(columns, term)
	if !ok {
		return domain.BoardColumn{}, false
	}
	for _, col := range columns {
		if col.ID == id {
			return col, true
		}
	}
	return domain.BoardColumn{}, false
}

func stripNonAlnum(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}
