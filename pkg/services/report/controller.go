package report

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/de-tools/gbb-board/pkg/models/domain"
	"github.com/de-tools/gbb-board/pkg/observability"
	"github.com/de-tools/gbb-board/pkg/services/cache"
	"github.com/de-tools/gbb-board/pkg/services/fetch"
	"github.com/de-tools/gbb-board/pkg/services/parse"
	"github.com/de-tools/gbb-board/pkg/services/registry"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
)

// Controller wires the registry, cache, fetcher, and parser behind the
// operations the handlers and the market model consume.
type Controller interface {
	ListReports(ctx context.Context) []domain.ReportDescriptor
	// GetTable returns the normalized table for a report, served from
	// cache when fresh. When refresh is set the cache entry is dropped
	// first. A failed fetch falls back to the last good table, flagged
	// stale; the error surfaces only when no cached table exists.
	GetTable(ctx context.Context, name string, query domain.TableQuery, refresh bool) (*domain.Table, error)
	Summary(ctx context.Context, name string) (*domain.Summary, error)
}

type Dependencies struct {
	Registry registry.Registry
	Fetcher  fetch.Fetcher
	Parser   parse.Parser
	Cache    *cache.Store
	Metrics  *observability.Metrics
	Clock    clockwork.Clock
}

type controller struct {
	registry registry.Registry
	fetcher  fetch.Fetcher
	parser   parse.Parser
	cache    *cache.Store
	metrics  *observability.Metrics
	clock    clockwork.Clock
}

func NewController(deps Dependencies) Controller {
	return &controller{
		registry: deps.Registry,
		fetcher:  deps.Fetcher,
		parser:   deps.Parser,
		cache:    deps.Cache,
		metrics:  deps.Metrics,
		clock:    deps.Clock,
	}
}

func (c *controller) ListReports(_ context.Context) []domain.ReportDescriptor {
	return c.registry.List()
}

func (c *controller) GetTable(ctx context.Context, name string, query domain.TableQuery, refresh bool) (*domain.Table, error) {
	logger := zerolog.Ctx(ctx)

	descriptor, err := c.registry.Get(name)
	if err != nil {
		return nil, err
	}

	if refresh {
		c.cache.Invalidate(name)
	}

	table, hit, err := c.cache.GetOrLoad(ctx, name, descriptor.RefreshEvery, func(ctx context.Context) (*domain.Table, error) {
		return c.load(ctx, descriptor)
	})
	if err != nil {
		stale, ok := c.cache.Stale(name)
		if !ok {
			c.metrics.CacheLookups.WithLabelValues(name, "miss").Inc()
			return nil, err
		}
		logger.Warn().
			Err(err).
			Str("report", name).
			Msg("refresh failed, serving stale table")
		c.metrics.CacheLookups.WithLabelValues(name, "stale").Inc()

		flagged := *stale
		flagged.Stale = true
		flagged.StaleReason = err.Error()
		return flagged.Filter(query), nil
	}

	if hit {
		c.metrics.CacheLookups.WithLabelValues(name, "hit").Inc()
	} else {
		c.metrics.CacheLookups.WithLabelValues(name, "miss").Inc()
	}

	return table.Filter(query), nil
}

func (c *controller) load(ctx context.Context, descriptor domain.ReportDescriptor) (*domain.Table, error) {
	start := c.clock.Now()
	raw, err := c.fetcher.Fetch(ctx, descriptor)
	c.metrics.FetchDuration.WithLabelValues(descriptor.Name).Observe(c.clock.Since(start).Seconds())
	if err != nil {
		c.metrics.FetchRequests.WithLabelValues(descriptor.Name, fetchOutcome(err)).Inc()
		return nil, err
	}
	c.metrics.FetchRequests.WithLabelValues(descriptor.Name, "success").Inc()

	table, err := c.parser.Parse(descriptor, raw)
	if err != nil {
		return nil, err
	}
	table.FetchedAt = c.clock.Now()

	c.metrics.RowsParsed.WithLabelValues(descriptor.Name).Add(float64(len(table.Rows)))
	c.metrics.RowsSkipped.WithLabelValues(descriptor.Name).Add(float64(table.Skipped))
	return table, nil
}

func (c *controller) Summary(ctx context.Context, name string) (*domain.Summary, error) {
	table, err := c.GetTable(ctx, name, domain.TableQuery{}, false)
	if err != nil {
		return nil, err
	}
	return Summarize(table), nil
}

// Summarize computes row counts, the time span, and per-numeric-column
// statistics for a table.
func Summarize(table *domain.Table) *domain.Summary {
	summary := &domain.Summary{
		Report:  table.Report,
		Rows:    len(table.Rows),
		Skipped: table.Skipped,
	}

	for _, col := range table.Columns {
		switch col.Type {
		case domain.ColumnNumber:
			stats, ok := columnStats(table.Rows, col.Name)
			if ok {
				summary.Numeric = append(summary.Numeric, stats)
			}
		case domain.ColumnTime:
			for _, row := range table.Rows {
				ts, ok := row[col.Name].(time.Time)
				if !ok {
					continue
				}
				if summary.SpanStart.IsZero() || ts.Before(summary.SpanStart) {
					summary.SpanStart = ts
				}
				if summary.SpanEnd.IsZero() || ts.After(summary.SpanEnd) {
					summary.SpanEnd = ts
				}
			}
		}
	}
	return summary
}

func columnStats(rows []domain.Row, name string) (domain.ColumnStats, bool) {
	stats := domain.ColumnStats{
		Name: name,
		Min:  math.Inf(1),
		Max:  math.Inf(-1),
	}
	count := 0
	for _, row := range rows {
		v, ok := row[name].(float64)
		if !ok {
			continue
		}
		stats.Min = math.Min(stats.Min, v)
		stats.Max = math.Max(stats.Max, v)
		stats.Total += v
		count++
	}
	if count == 0 {
		return domain.ColumnStats{}, false
	}
	stats.Mean = stats.Total / float64(count)
	return stats, true
}

func fetchOutcome(err error) string {
	var empty *domain.EmptyResponseError
	if errors.As(err, &empty) {
		return "empty"
	}
	return "error"
}
