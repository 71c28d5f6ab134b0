package adapters

import (
	"time"

	"github.com/de-tools/gbb-board/pkg/models/api"
	"github.com/de-tools/gbb-board/pkg/models/domain"
	"github.com/de-tools/gbb-board/pkg/services/market"
)

func MapDomainReportToAPI(d domain.ReportDescriptor) api.Report {
	return api.Report{
		Name:         d.Name,
		DisplayName:  d.DisplayName,
		RefreshEvery: d.RefreshEvery.String(),
	}
}

func MapDomainTableToAPI(t *domain.Table) api.Table {
	out := api.Table{
		Report:      t.Report,
		Columns:     make([]api.Column, 0, len(t.Columns)),
		Rows:        make([]map[string]any, 0, len(t.Rows)),
		Skipped:     t.Skipped,
		Warnings:    t.Warnings,
		FetchedAt:   t.FetchedAt,
		Stale:       t.Stale,
		StaleReason: t.StaleReason,
	}
	for _, col := range t.Columns {
		out.Columns = append(out.Columns, api.Column{Name: col.Name, Type: string(col.Type)})
	}
	for _, row := range t.Rows {
		mapped := make(map[string]any, len(t.Columns))
		for _, col := range t.Columns {
			switch value := row[col.Name].(type) {
			case time.Time:
				mapped[col.Name] = value.Format(time.RFC3339)
			default:
				mapped[col.Name] = value
			}
		}
		out.Rows = append(out.Rows, mapped)
	}
	return out
}

func MapDomainSummaryToAPI(s *domain.Summary) api.Summary {
	out := api.Summary{
		Report:  s.Report,
		Rows:    s.Rows,
		Skipped: s.Skipped,
		Numeric: make([]api.ColumnStats, 0, len(s.Numeric)),
	}
	if !s.SpanStart.IsZero() {
		start := s.SpanStart
		out.SpanStart = &start
	}
	if !s.SpanEnd.IsZero() {
		end := s.SpanEnd
		out.SpanEnd = &end
	}
	for _, stats := range s.Numeric {
		out.Numeric = append(out.Numeric, api.ColumnStats{
			Name:  stats.Name,
			Min:   stats.Min,
			Max:   stats.Max,
			Mean:  stats.Mean,
			Total: stats.Total,
		})
	}
	return out
}

func MapMarketPointsToAPI(points []market.Point) []api.ModelPoint {
	out := make([]api.ModelPoint, 0, len(points))
	for _, p := range points {
		out = append(out, api.ModelPoint{
			GasDay:    p.GasDay,
			Demand:    p.Demand,
			Available: p.Available,
			Shortfall: p.Shortfall,
		})
	}
	return out
}
