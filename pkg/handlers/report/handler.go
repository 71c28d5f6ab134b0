package report

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/de-tools/gbb-board/pkg/adapters"
	"github.com/de-tools/gbb-board/pkg/export"
	"github.com/de-tools/gbb-board/pkg/models/api"
	"github.com/de-tools/gbb-board/pkg/models/domain"
	"github.com/de-tools/gbb-board/pkg/services/market"
	reportsvc "github.com/de-tools/gbb-board/pkg/services/report"
	"github.com/de-tools/gbb-board/pkg/services/registry"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

const dateLayout = "2006-01-02"

type Handler struct {
	controller reportsvc.Controller
	model      *market.Model
}

func NewHandler(controller reportsvc.Controller, model *market.Model) *Handler {
	return &Handler{
		controller: controller,
		model:      model,
	}
}

func (h *Handler) ListReports(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	descriptors := h.controller.ListReports(ctx)
	response := make([]api.Report, 0, len(descriptors))
	for _, d := range descriptors {
		response = append(response, adapters.MapDomainReportToAPI(d))
	}

	writeJSON(ctx, w, http.StatusOK, response)
}

func (h *Handler) GetTable(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	name := chi.URLParam(r, "report")

	query, err := parseQuery(r)
	if err != nil {
		writeError(ctx, w, http.StatusBadRequest, err)
		return
	}
	refresh := r.URL.Query().Get("refresh") == "true"

	table, err := h.controller.GetTable(ctx, name, query, refresh)
	if err != nil {
		writeError(ctx, w, statusFor(err), err)
		return
	}

	writeJSON(ctx, w, http.StatusOK, adapters.MapDomainTableToAPI(table))
}

func (h *Handler) GetSummary(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	name := chi.URLParam(r, "report")

	summary, err := h.controller.Summary(ctx, name)
	if err != nil {
		writeError(ctx, w, statusFor(err), err)
		return
	}

	writeJSON(ctx, w, http.StatusOK, adapters.MapDomainSummaryToAPI(summary))
}

func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := zerolog.Ctx(ctx)
	name := chi.URLParam(r, "report")

	query, err := parseQuery(r)
	if err != nil {
		writeError(ctx, w, http.StatusBadRequest, err)
		return
	}

	format := r.URL.Query().Get("format")
	if format == "" {
		format = "csv"
	}
	if format != "csv" && format != "json" {
		writeError(ctx, w, http.StatusBadRequest, fmt.Errorf("unsupported export format: %s", format))
		return
	}

	table, err := h.controller.GetTable(ctx, name, query, false)
	if err != nil {
		writeError(ctx, w, statusFor(err), err)
		return
	}

	filename := fmt.Sprintf("%s.%s", name, format)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))

	switch format {
	case "csv":
		w.Header().Set("Content-Type", "text/csv")
		err = export.CSV(w, table)
	case "json":
		w.Header().Set("Content-Type", "application/json")
		err = export.JSON(w, table)
	}
	if err != nil {
		logger.Error().
			Err(err).
			Str("report", name).
			Str("format", format).
			Msg("failed to write export")
	}
}

func (h *Handler) GetModel(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	points, err := h.model.Build(ctx)
	if err != nil {
		writeError(ctx, w, statusFor(err), err)
		return
	}

	writeJSON(ctx, w, http.StatusOK, adapters.MapMarketPointsToAPI(points))
}

func parseQuery(r *http.Request) (domain.TableQuery, error) {
	var query domain.TableQuery

	if from := r.URL.Query().Get("from"); from != "" {
		ts, err := time.Parse(dateLayout, from)
		if err != nil {
			return query, fmt.Errorf("invalid 'from' date format. Expected format: YYYY-MM-DD")
		}
		query.From = ts
	}
	if to := r.URL.Query().Get("to"); to != "" {
		ts, err := time.Parse(dateLayout, to)
		if err != nil {
			return query, fmt.Errorf("invalid 'to' date format. Expected format: YYYY-MM-DD")
		}
		query.To = ts
	}
	return query, nil
}

func statusFor(err error) int {
	var (
		transport *domain.TransportError
		empty     *domain.EmptyResponseError
		schema    *domain.SchemaMismatchError
	)
	switch {
	case errors.Is(err, registry.ErrUnknownReport):
		return http.StatusNotFound
	case errors.As(err, &transport), errors.As(err, &empty), errors.As(err, &schema):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(ctx context.Context, w http.ResponseWriter, status int, v any) {
	logger := zerolog.Ctx(ctx)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error().Err(err).Msg("failed to encode response")
	}
}

func writeError(ctx context.Context, w http.ResponseWriter, status int, err error) {
	writeJSON(ctx, w, status, api.Error{Error: err.Error()})
}
