package domain

import (
	"fmt"
	"strconv"
	"time"
)

// Column is a named sequence of cells. A cell is nil (null), a string holding
// raw text, or a time.Time produced by the date parser.
type Column struct {
	Name   string
	Values []any
}

// Table is a column-oriented copy of one input file. All columns have the
// same length. Lookups by name resolve to the leftmost column with that name.
type Table struct {
	columns []Column
	rows    int
}

// NewTable creates a table with the given row count. Columns shorter than
// rows are padded with nulls; longer columns are truncated.
func NewTable(rows int, columns ...Column) *Table {
	t := &Table{rows: rows}
	for _, c := range columns {
		t.columns = append(t.columns, Column{Name: c.Name, Values: fit(c.Values, rows)})
	}
	return t
}

// Len returns the number of rows.
func (t *Table) Len() int { return t.rows }

// Names returns the column names in order.
func (t *Table) Names() []string {
	names := make([]string, len(t.columns))
	for i, c := range t.columns {
		names[i] = c.Name
	}
	return names
}

// Has reports whether a column with the given name exists.
func (t *Table) Has(name string) bool { return t.index(name) >= 0 }

// Column returns the leftmost column with the given name.
func (t *Table) Column(name string) (Column, bool) {
	i := t.index(name)
	if i < 0 {
		return Column{}, false
	}
	return t.columns[i], true
}

// Set replaces the values of the named column, appending it when absent.
func (t *Table) Set(name string, values []any) {
	values = fit(values, t.rows)
	if i := t.index(name); i >= 0 {
		t.columns[i].Values = values
		return
	}
	t.columns = append(t.columns, Column{Name: name, Values: values})
}

// Drop removes the leftmost column with the given name, if any.
func (t *Table) Drop(name string) {
	if i := t.index(name); i >= 0 {
		t.columns = append(t.columns[:i], t.columns[i+1:]...)
	}
}

// Nulls returns a column's worth of null cells.
func (t *Table) Nulls() []any {
	return make([]any, t.rows)
}

func (t *Table) index(name string) int {
	for i, c := range t.columns {
		if c.Name == name {
			return i
		}
	}
	return -1
}

func fit(values []any, n int) []any {
	if len(values) == n {
		return values
	}
	out := make([]any, n)
	copy(out, values)
	return out
}

// cellText renders a non-null cell as text.
func cellText(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case int:
		return strconv.Itoa(x)
	case time.Time:
		return x.Format(time.RFC3339)
	case fmt.Stringer:
		return x.String()
	default:
		return fmt.Sprint(x)
	}
}
