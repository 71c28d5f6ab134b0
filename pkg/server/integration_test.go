package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/de-tools/gbb-board/pkg/models/api"
	"github.com/de-tools/gbb-board/pkg/observability"
	"github.com/de-tools/gbb-board/pkg/services/cache"
	"github.com/de-tools/gbb-board/pkg/services/fetch"
	"github.com/de-tools/gbb-board/pkg/services/market"
	"github.com/de-tools/gbb-board/pkg/services/parse"
	reportsvc "github.com/de-tools/gbb-board/pkg/services/report"
	"github.com/de-tools/gbb-board/pkg/services/registry"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Exercises the full pipeline: upstream CSV -> fetch -> parse -> cache ->
// handler, with a fake bulletin board behind httptest.
func TestWebAPI_EndToEnd(t *testing.T) {
	upstreamCalls := 0
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		upstreamCalls++
		switch r.URL.Path {
		case "/ActualFlowStorage.csv":
			w.Write([]byte("GasDay,FacilityName,Demand\n" + //nolint:errcheck
				"2024-01-01,Karratha GP,100\n" +
				"2024-01-02,Karratha GP,bad\n" +
				"2024-01-03,Varanus Island,90\n"))
		default:
			http.NotFound(w, r)
		}
	}))
	defer upstream.Close()

	clock := clockwork.NewFakeClock()
	controller := reportsvc.NewController(reportsvc.Dependencies{
		Registry: registry.NewRegistry(),
		Fetcher:  fetch.NewFetcher(upstream.URL, time.Second),
		Parser:   parse.NewParser(),
		Cache:    cache.NewStore(clock, 5*time.Minute),
		Metrics:  observability.NewMetricsForTesting(),
		Clock:    clock,
	})

	router := ConfigureRouter(Config{
		Dependencies: Dependencies{
			Controller: controller,
			Model:      market.NewModel(controller),
			Logger:     zerolog.New(zerolog.NewTestWriter(t)),
		},
	})
	testServer := httptest.NewServer(router)
	defer testServer.Close()

	getTable := func() api.Table {
		resp, err := http.Get(testServer.URL + "/api/v1/reports/flows")
		require.NoError(t, err)
		defer resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var table api.Table
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&table))
		return table
	}

	table := getTable()
	assert.Len(t, table.Rows, 2, "malformed row should be coerced out")
	assert.Equal(t, 1, table.Skipped)
	require.Len(t, table.Columns, 3)
	assert.Equal(t, "gasday", table.Columns[0].Name)

	// A second request within the TTL must not hit the upstream again.
	getTable()
	assert.Equal(t, 1, upstreamCalls)

	// An explicit refresh must.
	resp, err := http.Get(testServer.URL + "/api/v1/reports/flows?refresh=true")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, 2, upstreamCalls)
}
