package api

import "time"

type Report struct {
	Name         string `json:"name"`
	DisplayName  string `json:"display_name"`
	RefreshEvery string `json:"refresh_every"`
}

type Column struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// Table is the wire form of a normalized report table. Row values are
// strings, numbers, or RFC3339 timestamps.
type Table struct {
	Report      string           `json:"report"`
	Columns     []Column         `json:"columns"`
	Rows        []map[string]any `json:"rows"`
	Skipped     int              `json:"skipped_rows"`
	Warnings    []string         `json:"warnings,omitempty"`
	FetchedAt   time.Time        `json:"fetched_at"`
	Stale       bool             `json:"stale,omitempty"`
	StaleReason string           `json:"stale_reason,omitempty"`
}

type ColumnStats struct {
	Name  string  `json:"name"`
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
	Mean  float64 `json:"mean"`
	Total float64 `json:"total"`
}

type Summary struct {
	Report    string        `json:"report"`
	Rows      int           `json:"rows"`
	Skipped   int           `json:"skipped_rows"`
	SpanStart *time.Time    `json:"span_start,omitempty"`
	SpanEnd   *time.Time    `json:"span_end,omitempty"`
	Numeric   []ColumnStats `json:"numeric"`
}

// ModelPoint is one gas day of the supply/demand model.
type ModelPoint struct {
	GasDay    time.Time `json:"gas_day"`
	Demand    float64   `json:"demand_tj"`
	Available float64   `json:"available_tj"`
	Shortfall float64   `json:"shortfall_tj"`
}

type Error struct {
	Error string `json:"error"`
}
