package services

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sync"
	"time"

	"debtlens/internal/config"
	"debtlens/internal/dataset"
	"debtlens/internal/exporter"
	"debtlens/internal/infrastructure"
	api "debtlens/pkg/contracts/api/v1"
	"debtlens/pkg/contracts/domain"
)

// Smoother selector values accepted by series and export queries.
const (
	SmootherMean   = "mean"
	SmootherMedian = "median"
)

// defaultPreviewRows is used when neither the request nor the configuration
// names a preview size.
const defaultPreviewRows = 5

// emptyViewMessage is the soft warning attached to a view the filters left
// empty. The response stays 200; the user widens the ranges.
const emptyViewMessage = "No rows match the current filters. Widen your filters."

// RefreshNotifier receives refresh events after the active dataset has been
// replaced. *websocket.Hub satisfies it.
type RefreshNotifier interface {
	BroadcastDataRefreshed(ctx context.Context, event domain.RefreshEvent)
}

// DataService answers series, summary, preview and export queries against
// the active dataset and coordinates reloads. The active path is its only
// mutable state; datasets are immutable and shared through the store.
type DataService struct {
	config   *config.Config
	store    *dataset.Store
	notifier RefreshNotifier
	metrics  *infrastructure.BusinessMetrics
	logger   *slog.Logger

	mu         sync.RWMutex
	activePath string
}

// NewDataService creates a data service using the default logger.
func NewDataService(cfg *config.Config, store *dataset.Store, notifier RefreshNotifier, metrics *infrastructure.BusinessMetrics) *DataService {
	return NewDataServiceWithLogger(cfg, store, notifier, metrics, slog.Default())
}

// NewDataServiceWithLogger creates a data service with a specific logger.
// notifier and metrics may be nil; reloads then skip broadcasting and
// instrumentation.
func NewDataServiceWithLogger(cfg *config.Config, store *dataset.Store, notifier RefreshNotifier, metrics *infrastructure.BusinessMetrics, logger *slog.Logger) *DataService {
	if logger == nil {
		logger = slog.Default()
	}

	logger.Info("DataService initialized",
		slog.String("path", cfg.Data.Path),
		slog.Int("preview_rows", cfg.Data.PreviewRows))

	return &DataService{
		config:     cfg,
		store:      store,
		notifier:   notifier,
		metrics:    metrics,
		logger:     logger,
		activePath: cfg.Data.Path,
	}
}

// ActivePath returns the dataset path queries currently resolve against.
func (ds *DataService) ActivePath() string {
	ds.mu.RLock()
	defer ds.mu.RUnlock()
	return ds.activePath
}

// CacheStats reports the memo cache counters for health and stats endpoints.
func (ds *DataService) CacheStats() dataset.StoreStats {
	return ds.store.Stats()
}

// Ping reports whether the active dataset is loadable, loading and caching
// it on first use. Readiness probes call this.
func (ds *DataService) Ping(ctx context.Context) error {
	_, err := ds.activeDataset(ctx)
	return err
}

// Series returns the filtered view of the active dataset plus an optional
// smoothing series, ready for chart rendering. An empty view is not an
// error; the meta carries the warning instead.
func (ds *DataService) Series(ctx context.Context, req api.SeriesRequest) (*api.SeriesResponse, error) {
	d, err := ds.activeDataset(ctx)
	if err != nil {
		return nil, err
	}

	points := dataset.Filter(d.Points, yearRange(req.FromYear, req.ToYear), debtRange(req.MinDebt, req.MaxDebt))

	resp := &api.SeriesResponse{
		Points: points,
		Meta: api.SeriesMeta{
			Count:           len(points),
			Empty:           len(points) == 0,
			LogScaleAllowed: dataset.LogScaleAllowed(points),
			Source:          d.Path,
			YearColumn:      d.YearColumn,
			DebtColumn:      d.DebtColumn,
			LoadedAt:        d.LoadedAt,
		},
	}
	if resp.Meta.Empty {
		resp.Meta.Message = emptyViewMessage
	}

	if req.Smoother != "" {
		smoothed, err := ds.applySmoother(points, req.Smoother, req.Window, &resp.Meta)
		if err != nil {
			return nil, err
		}
		resp.Smoothed = smoothed
	}

	ds.logger.DebugContext(ctx, "Series query served",
		slog.Int("count", resp.Meta.Count),
		slog.Bool("empty", resp.Meta.Empty),
		slog.String("smoother", req.Smoother))

	return resp, nil
}

// Summary describes the cleaned dataset for range-control initialization.
func (ds *DataService) Summary(ctx context.Context) (*api.SummaryResponse, error) {
	d, err := ds.activeDataset(ctx)
	if err != nil {
		return nil, err
	}

	bounds, ok := dataset.Bounds(d.Points)
	return &api.SummaryResponse{
		Info:            d.Info(),
		Bounds:          bounds,
		Empty:           !ok,
		LogScaleAllowed: dataset.LogScaleAllowed(d.Points),
	}, nil
}

// Preview returns the first rows of the cleaned dataset, the equivalent of
// eyeballing the head of the table after a load. rows <= 0 falls back to the
// configured preview size.
func (ds *DataService) Preview(ctx context.Context, rows int) (*api.PreviewResponse, error) {
	d, err := ds.activeDataset(ctx)
	if err != nil {
		return nil, err
	}

	if rows <= 0 {
		rows = ds.config.Data.PreviewRows
	}
	if rows <= 0 {
		rows = defaultPreviewRows
	}
	if rows > d.Len() {
		rows = d.Len()
	}

	return &api.PreviewResponse{
		Columns: d.Columns,
		Points:  d.Points[:rows],
		Total:   d.Len(),
	}, nil
}

// Reload switches the active dataset to path, or re-reads the current file
// when path is empty. The memo for the target path is dropped first so the
// file is always read fresh; the active path moves only after the load
// succeeds, and connected clients are notified of the refresh.
func (ds *DataService) Reload(ctx context.Context, path string, reason domain.RefreshReason) (*api.ReloadResponse, error) {
	if path == "" {
		path = ds.ActivePath()
	}
	if path == "" {
		return nil, ErrNoActivePath
	}

	ds.store.Invalidate(path)

	start := time.Now()
	d, err := ds.store.Get(ctx, path)
	rows := 0
	if d != nil {
		rows = d.Len()
	}
	infrastructure.RecordDatasetLoad(ctx, ds.metrics, path, rows, time.Since(start), err)
	if err != nil {
		ds.logger.ErrorContext(ctx, "Dataset reload failed",
			slog.String("path", path),
			slog.String("reason", string(reason)),
			slog.String("error", err.Error()))
		return nil, err
	}

	ds.mu.Lock()
	previous := ds.activePath
	ds.activePath = path
	ds.mu.Unlock()

	infrastructure.RecordDatasetRefresh(ctx, ds.metrics, string(reason))

	event := domain.RefreshEvent{
		Path:   path,
		Rows:   d.Len(),
		Reason: reason,
		At:     time.Now().UTC(),
	}
	if ds.notifier != nil {
		ds.notifier.BroadcastDataRefreshed(ctx, event)
	}

	ds.logger.InfoContext(ctx, "Dataset reloaded",
		slog.String("path", path),
		slog.String("previous", previous),
		slog.Int("rows", d.Len()),
		slog.String("reason", string(reason)))

	return &api.ReloadResponse{
		Path:     path,
		Rows:     d.Len(),
		Message:  fmt.Sprintf("Loaded %d rows from %s", d.Len(), path),
		LoadedAt: d.LoadedAt,
	}, nil
}

// Export assembles the filtered view as a series for CSV download. The
// smoothed column is included only when the requested smoother actually
// applied to the view; a skipped smoother exports the bare series.
func (ds *DataService) Export(ctx context.Context, req api.ExportRequest) (exporter.Series, error) {
	resp, err := ds.Series(ctx, req.SeriesRequest)
	if err != nil {
		infrastructure.RecordExport(ctx, ds.metrics, 0, err)
		return exporter.Series{}, err
	}

	series := exporter.Series{
		YearColumn: resp.Meta.YearColumn,
		DebtColumn: resp.Meta.DebtColumn,
		Points:     resp.Points,
	}
	if resp.Meta.SmootherApplied {
		series.Smoothed = resp.Smoothed
		series.SmoothedColumn = fmt.Sprintf("%s_%d", resp.Meta.Smoother, resp.Meta.Window)
	}

	infrastructure.RecordExport(ctx, ds.metrics, len(resp.Points), nil)

	ds.logger.InfoContext(ctx, "Export assembled",
		slog.Int("rows", len(resp.Points)),
		slog.Bool("smoothed", resp.Meta.SmootherApplied))

	return series, nil
}

// applySmoother computes the requested rolling aggregate over the view's
// debt values and records the outcome in meta. The moving average uses the
// caller's window clamped to the presentation limits and is skipped when the
// view has fewer rows than the window. The median smoother uses the fixed
// window and is skipped below the minimum row count. Skipping is not an
// error; the chart simply omits the overlay.
func (ds *DataService) applySmoother(points []domain.DebtPoint, smoother string, window int, meta *api.SeriesMeta) ([]*float64, error) {
	pres := domain.DefaultPresentation()

	var agg dataset.Aggregator
	switch smoother {
	case SmootherMean:
		agg = dataset.AggregatorMean
		if window <= 0 {
			window = pres.MAWindowDefault
		}
		if window < pres.MAWindowMin {
			window = pres.MAWindowMin
		}
		if window > pres.MAWindowMax {
			window = pres.MAWindowMax
		}
	case SmootherMedian:
		agg = dataset.AggregatorMedian
		window = pres.MedianWindow
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownSmoother, smoother)
	}

	meta.Smoother = smoother
	meta.Window = window

	switch {
	case smoother == SmootherMean && len(points) < window:
		meta.SmootherSkipped = fmt.Sprintf("view has %d rows, fewer than the %d-year window", len(points), window)
		return nil, nil
	case smoother == SmootherMedian && len(points) < pres.SmootherMinRows:
		meta.SmootherSkipped = fmt.Sprintf("view has %d rows, fewer than the %d required", len(points), pres.SmootherMinRows)
		return nil, nil
	}

	values := make([]float64, len(points))
	for i, p := range points {
		values[i] = p.Debt
	}

	smoothed, err := dataset.Rolling(values, window, true, agg)
	if err != nil {
		return nil, fmt.Errorf("rolling %s over %d rows: %w", smoother, len(points), err)
	}

	meta.SmootherApplied = true
	return smoothed, nil
}

// activeDataset resolves the active path through the store.
func (ds *DataService) activeDataset(ctx context.Context) (*dataset.Dataset, error) {
	path := ds.ActivePath()
	if path == "" {
		return nil, ErrNoActivePath
	}
	return ds.datasetAt(ctx, path)
}

// datasetAt fetches path through the store, recording cache metrics and,
// on a miss, the load timing.
func (ds *DataService) datasetAt(ctx context.Context, path string) (*dataset.Dataset, error) {
	_, hit := ds.store.Peek(path)
	infrastructure.RecordCacheAccess(ctx, ds.metrics, path, hit)
	if hit {
		return ds.store.Get(ctx, path)
	}

	start := time.Now()
	d, err := ds.store.Get(ctx, path)
	rows := 0
	if d != nil {
		rows = d.Len()
	}
	infrastructure.RecordDatasetLoad(ctx, ds.metrics, path, rows, time.Since(start), err)
	return d, err
}

// yearRange builds the inclusive year filter, leaving omitted bounds open.
func yearRange(from, to *int) dataset.YearRange {
	r := dataset.YearRange{From: math.MinInt, To: math.MaxInt}
	if from != nil {
		r.From = *from
	}
	if to != nil {
		r.To = *to
	}
	return r
}

// debtRange builds the inclusive debt filter, leaving omitted bounds open.
func debtRange(min, max *float64) dataset.DebtRange {
	r := dataset.UnboundedDebtRange()
	if min != nil {
		r.Min = *min
	}
	if max != nil {
		r.Max = *max
	}
	return r
}
