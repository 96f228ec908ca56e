package http

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	apierrors "debtlens/internal/errors"
	"debtlens/internal/exporter"
	custommw "debtlens/internal/middleware"
	"debtlens/internal/services"
	api "debtlens/pkg/contracts/api/v1"
	"debtlens/pkg/contracts/domain"
)

// defaultExportFilename is used when the caller does not name the download.
const defaultExportFilename = "lebanon_external_debt.csv"

// SeriesHandler serves the filtered debt series and its derived views
type SeriesHandler struct {
	service      DataServiceInterface
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
	validation   *custommw.ValidationMiddleware
	query        *custommw.QueryParamValidator
}

// NewSeriesHandler creates a series handler with RFC 7807 error handling
func NewSeriesHandler(service DataServiceInterface, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *SeriesHandler {
	return &SeriesHandler{
		service:      service,
		logger:       logger.With(slog.String("component", "series_handler")),
		errorHandler: errorHandler,
		validation:   custommw.NewValidationMiddleware(logger, errorHandler),
		query:        custommw.NewQueryParamValidator(logger, errorHandler),
	}
}

// Routes returns the series routes with proper Chi patterns
func (h *SeriesHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.GetSeries)
	r.Get("/summary", h.GetSummary)
	r.Get("/preview", h.GetPreview)
	r.Get("/export", h.ExportSeries)
	r.Post("/reload", h.Reload)

	return r
}

// GetSeries handles GET /api/series with RFC 7807 errors
func (h *SeriesHandler) GetSeries(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetReqID(r.Context())

	req, ok := h.bindSeriesRequest(w, r)
	if !ok {
		return
	}

	resp, err := h.service.Series(r.Context(), req)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "failed to build series",
			slog.String("error", err.Error()),
			slog.String("request_id", reqID),
		)
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.JSON(w, r, resp)
}

// GetSummary handles GET /api/series/summary
func (h *SeriesHandler) GetSummary(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetReqID(r.Context())

	resp, err := h.service.Summary(r.Context())
	if err != nil {
		h.logger.ErrorContext(r.Context(), "failed to summarize dataset",
			slog.String("error", err.Error()),
			slog.String("request_id", reqID),
		)
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.JSON(w, r, resp)
}

// GetPreview handles GET /api/series/preview. A zero rows value defers to
// the service default, which mirrors the configured preview depth.
func (h *SeriesHandler) GetPreview(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetReqID(r.Context())

	rows, ok := h.query.ValidateInt(w, r, "rows", 1, 100, 0)
	if !ok {
		return
	}

	resp, err := h.service.Preview(r.Context(), rows)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "failed to preview dataset",
			slog.String("error", err.Error()),
			slog.String("request_id", reqID),
		)
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.JSON(w, r, resp)
}

// ExportSeries handles GET /api/series/export. The filtered view streams
// out as a CSV attachment; filter errors surface before any byte is
// written, encoding errors after the header can only be logged.
func (h *SeriesHandler) ExportSeries(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetReqID(r.Context())

	seriesReq, ok := h.bindSeriesRequest(w, r)
	if !ok {
		return
	}

	req := api.ExportRequest{
		SeriesRequest: seriesReq,
		Filename:      r.URL.Query().Get("filename"),
	}
	if err := h.validation.ValidateStruct(req); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	series, err := h.service.Export(r.Context(), req)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "failed to assemble export",
			slog.String("error", err.Error()),
			slog.String("request_id", reqID),
		)
		h.errorHandler.HandleError(w, r, err)
		return
	}

	filename := req.Filename
	if filename == "" {
		filename = defaultExportFilename
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))

	rows, err := exporter.EncodeSeries(w, series)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "failed to stream export",
			slog.String("error", err.Error()),
			slog.String("request_id", reqID),
		)
		return
	}

	h.logger.InfoContext(r.Context(), "series exported",
		slog.String("filename", filename),
		slog.Int("rows", rows),
		slog.String("request_id", reqID),
	)
}

// Reload handles POST /api/series/reload. The body is optional; an empty
// body or an empty path re-reads the currently active file.
func (h *SeriesHandler) Reload(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetReqID(r.Context())

	var req api.ReloadRequest
	if r.ContentLength > 0 {
		if err := render.DecodeJSON(r.Body, &req); err != nil {
			h.errorHandler.HandleError(w, r, apierrors.New(
				http.StatusBadRequest,
				"INVALID_JSON",
				"Request body contains invalid JSON",
			))
			return
		}
	}
	if err := h.validation.ValidateStruct(req); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	h.logger.InfoContext(r.Context(), "reload requested",
		slog.String("path", req.Path),
		slog.String("request_id", reqID),
	)

	resp, err := h.service.Reload(r.Context(), req.Path, domain.RefreshReasonReload)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "failed to reload dataset",
			slog.String("error", err.Error()),
			slog.String("path", req.Path),
			slog.String("request_id", reqID),
		)
		if errors.Is(err, services.ErrNoActivePath) {
			h.errorHandler.HandleError(w, r, apierrors.New(
				http.StatusBadRequest,
				"NO_ACTIVE_PATH",
				"No dataset path is active; supply one in the request body",
			))
			return
		}
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.JSON(w, r, resp)
}

// bindSeriesRequest assembles a SeriesRequest from query parameters and
// runs struct validation. Any failure has already rendered a response.
func (h *SeriesHandler) bindSeriesRequest(w http.ResponseWriter, r *http.Request) (api.SeriesRequest, bool) {
	var req api.SeriesRequest

	fromYear, ok := h.query.ValidateOptionalInt(w, r, "from_year")
	if !ok {
		return req, false
	}
	toYear, ok := h.query.ValidateOptionalInt(w, r, "to_year")
	if !ok {
		return req, false
	}
	minDebt, ok := h.query.ValidateFloat(w, r, "min_debt")
	if !ok {
		return req, false
	}
	maxDebt, ok := h.query.ValidateFloat(w, r, "max_debt")
	if !ok {
		return req, false
	}
	smoother, ok := h.query.ValidateEnum(w, r, "smoother", []string{services.SmootherMean, services.SmootherMedian}, "")
	if !ok {
		return req, false
	}
	window, ok := h.query.ValidateInt(w, r, "window", 1, 1000, 0)
	if !ok {
		return req, false
	}

	req = api.SeriesRequest{
		FromYear: fromYear,
		ToYear:   toYear,
		MinDebt:  minDebt,
		MaxDebt:  maxDebt,
		Smoother: smoother,
		Window:   window,
	}

	if err := h.validation.ValidateStruct(req); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return req, false
	}

	return req, true
}
