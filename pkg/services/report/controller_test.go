package report

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/de-tools/gbb-board/pkg/models/domain"
	"github.com/de-tools/gbb-board/pkg/observability"
	"github.com/de-tools/gbb-board/pkg/services/cache"
	"github.com/de-tools/gbb-board/pkg/services/parse"
	"github.com/de-tools/gbb-board/pkg/services/registry"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeFetcher struct {
	payload []byte
	err     error
	calls   int
}

func (f *fakeFetcher) Fetch(_ context.Context, _ domain.ReportDescriptor) ([]byte, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.payload, nil
}

const flowsCSV = "GasDay,FacilityName,Demand\n" +
	"2024-01-01,Karratha GP,100\n" +
	"2024-01-02,Karratha GP,110\n" +
	"2024-01-03,Varanus Island,90\n"

func newTestController(fetcher *fakeFetcher) (Controller, *clockwork.FakeClock) {
	clock := clockwork.NewFakeClock()
	return NewController(Dependencies{
		Registry: registry.NewRegistry(),
		Fetcher:  fetcher,
		Parser:   parse.NewParser(),
		Cache:    cache.NewStore(clock, 5*time.Minute),
		Metrics:  observability.NewMetricsForTesting(),
		Clock:    clock,
	}), clock
}

func TestGetTable_ColumnsMatchDescriptorSchema(t *testing.T) {
	controller, _ := newTestController(&fakeFetcher{payload: []byte(flowsCSV)})

	table, err := controller.GetTable(context.Background(), "flows", domain.TableQuery{}, false)
	require.NoError(t, err)

	descriptor, err := registry.NewRegistry().Get("flows")
	require.NoError(t, err)
	assert.Equal(t, descriptor.Columns, table.Columns)
	assert.Len(t, table.Rows, 3)
	assert.Zero(t, table.Skipped)
}

func TestGetTable_SecondCallServedFromCache(t *testing.T) {
	fetcher := &fakeFetcher{payload: []byte(flowsCSV)}
	controller, _ := newTestController(fetcher)

	_, err := controller.GetTable(context.Background(), "flows", domain.TableQuery{}, false)
	require.NoError(t, err)
	_, err = controller.GetTable(context.Background(), "flows", domain.TableQuery{}, false)
	require.NoError(t, err)

	assert.Equal(t, 1, fetcher.calls)
}

func TestGetTable_RefreshBypassesCache(t *testing.T) {
	fetcher := &fakeFetcher{payload: []byte(flowsCSV)}
	controller, _ := newTestController(fetcher)

	_, err := controller.GetTable(context.Background(), "flows", domain.TableQuery{}, false)
	require.NoError(t, err)
	_, err = controller.GetTable(context.Background(), "flows", domain.TableQuery{}, true)
	require.NoError(t, err)

	assert.Equal(t, 2, fetcher.calls)
}

func TestGetTable_StaleFallbackAfterFetchFailure(t *testing.T) {
	fetcher := &fakeFetcher{payload: []byte(flowsCSV)}
	controller, clock := newTestController(fetcher)

	_, err := controller.GetTable(context.Background(), "flows", domain.TableQuery{}, false)
	require.NoError(t, err)

	clock.Advance(10 * time.Minute)
	fetcher.err = &domain.TransportError{URL: "http://example", Err: errors.New("connection refused")}

	table, err := controller.GetTable(context.Background(), "flows", domain.TableQuery{}, false)
	require.NoError(t, err)

	assert.True(t, table.Stale)
	assert.Contains(t, table.StaleReason, "connection refused")
	assert.Len(t, table.Rows, 3)
}

func TestGetTable_ErrorSurfacesWithoutCachedTable(t *testing.T) {
	fetcher := &fakeFetcher{err: &domain.EmptyResponseError{URL: "http://example"}}
	controller, _ := newTestController(fetcher)

	_, err := controller.GetTable(context.Background(), "flows", domain.TableQuery{}, false)

	var emptyErr *domain.EmptyResponseError
	require.ErrorAs(t, err, &emptyErr)
}

func TestGetTable_UnknownReport(t *testing.T) {
	controller, _ := newTestController(&fakeFetcher{})

	_, err := controller.GetTable(context.Background(), "nope", domain.TableQuery{}, false)

	require.ErrorIs(t, err, registry.ErrUnknownReport)
}

func TestGetTable_DateRangeFilter(t *testing.T) {
	controller, _ := newTestController(&fakeFetcher{payload: []byte(flowsCSV)})

	query := domain.TableQuery{
		From: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC),
		To:   time.Date(2024, 1, 2, 23, 59, 59, 0, time.UTC),
	}
	table, err := controller.GetTable(context.Background(), "flows", query, false)
	require.NoError(t, err)

	require.Len(t, table.Rows, 1)
	assert.Equal(t, 110.0, table.Rows[0]["demand"])
}

func TestSummary_Statistics(t *testing.T) {
	controller, _ := newTestController(&fakeFetcher{payload: []byte(flowsCSV)})

	summary, err := controller.Summary(context.Background(), "flows")
	require.NoError(t, err)

	assert.Equal(t, 3, summary.Rows)
	assert.Zero(t, summary.Skipped)
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), summary.SpanStart)
	assert.Equal(t, time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC), summary.SpanEnd)

	require.Len(t, summary.Numeric, 1)
	stats := summary.Numeric[0]
	assert.Equal(t, "demand", stats.Name)
	assert.Equal(t, 90.0, stats.Min)
	assert.Equal(t, 110.0, stats.Max)
	assert.Equal(t, 300.0, stats.Total)
	assert.InDelta(t, 100.0, stats.Mean, 0.0001)
}
