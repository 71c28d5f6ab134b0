package parse

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/de-tools/gbb-board/pkg/models/domain"
)

// timeLayouts are tried in order when coercing a time column. The bulletin
// board has published gas days in several of these over the years.
var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"02 Jan 2006",
	"2/01/2006",
}

// Parser normalizes raw CSV bytes into a typed table.
type Parser interface {
	Parse(report domain.ReportDescriptor, raw []byte) (*domain.Table, error)
}

type parser struct{}

func NewParser() Parser {
	return &parser{}
}

// Parse reads the CSV header, matches expected columns case-insensitively
// by name and alias, and coerces each data row. Rows failing coercion are
// dropped and counted, never fatal; only a header with zero matching
// columns aborts the parse.
func (p *parser) Parse(report domain.ReportDescriptor, raw []byte) (*domain.Table, error) {
	// The bulletin board occasionally serves CSVs with a UTF-8 BOM, which
	// would otherwise glue itself to the first header name.
	raw = bytes.TrimPrefix(raw, []byte("\xef\xbb\xbf"))

	reader := csv.NewReader(bytes.NewReader(raw))
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("report %q: read csv: %w", report.Name, err)
	}
	if len(records) == 0 {
		return nil, &domain.SchemaMismatchError{Report: report.Name}
	}

	header := records[0]
	headerIdx := make(map[string]int, len(header))
	for i, h := range header {
		headerIdx[strings.ToLower(strings.TrimSpace(h))] = i
	}

	type binding struct {
		col domain.Column
		src int
	}
	var (
		bindings []binding
		warnings []string
	)
	for _, col := range report.Columns {
		src, ok := lookupColumn(headerIdx, col)
		if !ok {
			warnings = append(warnings, fmt.Sprintf("expected column %q not found in source header", col.Name))
			continue
		}
		bindings = append(bindings, binding{col: col, src: src})
	}
	if len(bindings) == 0 {
		return nil, &domain.SchemaMismatchError{Report: report.Name, Header: header}
	}

	table := &domain.Table{
		Report:   report.Name,
		Warnings: warnings,
	}
	for _, b := range bindings {
		table.Columns = append(table.Columns, b.col)
	}

	for _, record := range records[1:] {
		row := make(domain.Row, len(bindings))
		ok := true
		for _, b := range bindings {
			cell := ""
			if b.src < len(record) {
				cell = strings.TrimSpace(record[b.src])
			}
			value, err := coerce(cell, b.col.Type)
			if err != nil {
				ok = false
				break
			}
			row[b.col.Name] = value
		}
		if !ok {
			table.Skipped++
			continue
		}
		table.Rows = append(table.Rows, row)
	}

	return table, nil
}

func lookupColumn(headerIdx map[string]int, col domain.Column) (int, bool) {
	if i, ok := headerIdx[strings.ToLower(col.Name)]; ok {
		return i, true
	}
	for _, alias := range col.Aliases {
		if i, ok := headerIdx[strings.ToLower(alias)]; ok {
			return i, true
		}
	}
	return 0, false
}

func coerce(cell string, typ domain.ColumnType) (any, error) {
	switch typ {
	case domain.ColumnString:
		return cell, nil
	case domain.ColumnNumber:
		if cell == "" {
			return nil, fmt.Errorf("empty numeric cell")
		}
		v, err := strconv.ParseFloat(strings.ReplaceAll(cell, ",", ""), 64)
		if err != nil {
			return nil, fmt.Errorf("parse number %q: %w", cell, err)
		}
		return v, nil
	case domain.ColumnTime:
		if cell == "" {
			return nil, fmt.Errorf("empty time cell")
		}
		for _, layout := range timeLayouts {
			if ts, err := time.Parse(layout, cell); err == nil {
				return ts, nil
			}
		}
		return nil, fmt.Errorf("parse time %q: no matching layout", cell)
	default:
		return nil, fmt.Errorf("unknown column type %q", typ)
	}
}
