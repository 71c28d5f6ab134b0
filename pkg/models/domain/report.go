package domain

import "time"

// ColumnType describes how raw CSV cells of a column are coerced.
type ColumnType string

const (
	ColumnString ColumnType = "string"
	ColumnNumber ColumnType = "number"
	ColumnTime   ColumnType = "time"
)

// Column is one expected column of a report schema. Aliases list the
// alternative header names the upstream publishes for the same field;
// matching is case-insensitive over Name and Aliases.
type Column struct {
	Name    string
	Aliases []string
	Type    ColumnType
}

// ReportDescriptor describes one Gas Bulletin Board dataset: where to fetch
// it and what shape the normalized table must have. Descriptors are defined
// at startup and never mutated.
type ReportDescriptor struct {
	Name         string
	DisplayName  string
	File         string
	Columns      []Column
	RefreshEvery time.Duration
}

// TimeColumn returns the name of the first time-typed column, or "".
func (d ReportDescriptor) TimeColumn() string {
	for _, c := range d.Columns {
		if c.Type == ColumnTime {
			return c.Name
		}
	}
	return ""
}

// Row maps column name to a typed value: string, float64, or time.Time.
type Row map[string]any

// Table is the normalized in-memory form of a report. All rows share the
// column set in Columns; rows that failed coercion are excluded and counted
// in Skipped. Stale is set when the table was served from an expired cache
// entry after a failed refresh.
type Table struct {
	Report      string
	Columns     []Column
	Rows        []Row
	Skipped     int
	Warnings    []string
	FetchedAt   time.Time
	Stale       bool
	StaleReason string
}

// TableQuery narrows a table to a date range on its time column. Zero
// bounds are open.
type TableQuery struct {
	From time.Time
	To   time.Time
}

// Filter returns a copy of t containing only rows whose time-column value
// falls within q. Tables without a time column are returned unchanged.
func (t *Table) Filter(q TableQuery) *Table {
	timeCol := ""
	for _, c := range t.Columns {
		if c.Type == ColumnTime {
			timeCol = c.Name
			break
		}
	}
	if timeCol == "" || (q.From.IsZero() && q.To.IsZero()) {
		return t
	}

	out := *t
	out.Rows = make([]Row, 0, len(t.Rows))
	for _, row := range t.Rows {
		ts, ok := row[timeCol].(time.Time)
		if !ok {
			continue
		}
		if !q.From.IsZero() && ts.Before(q.From) {
			continue
		}
		if !q.To.IsZero() && ts.After(q.To) {
			continue
		}
		out.Rows = append(out.Rows, row)
	}
	return &out
}

// ColumnStats summarizes one numeric column of a table.
type ColumnStats struct {
	Name  string
	Min   float64
	Max   float64
	Mean  float64
	Total float64
}

// Summary holds the presentation-layer statistics for a table.
type Summary struct {
	Report    string
	Rows      int
	Skipped   int
	SpanStart time.Time
	SpanEnd   time.Time
	Numeric   []ColumnStats
}
