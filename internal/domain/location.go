package domain

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// CleanLocation normalizes a raw placement value: trim, capitalize the first
// letter, lower-case the rest. Anything other than In or Out yields nil.
func CleanLocation(v any) *Location {
	if v == nil {
		return nil
	}
	loc := Location(capitalize(strings.TrimSpace(cellText(v))))
	switch loc {
	case LocationIn, LocationOut:
		return &loc
	default:
		return nil
	}
}

// CleanLocations rewrites the location column of t to Location cells, or
// adds an all-null location column when none exists.
func CleanLocations(t *Table) {
	col, ok := t.Column(ColumnLocation)
	if !ok {
		t.Set(ColumnLocation, t.Nulls())
		return
	}
	cleaned := make([]any, len(col.Values))
	for i, v := range col.Values {
		if loc := CleanLocation(v); loc != nil {
			cleaned[i] = *loc
		}
	}
	t.Set(ColumnLocation, cleaned)
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	r, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(r)) + strings.ToLower(s[size:])
}
