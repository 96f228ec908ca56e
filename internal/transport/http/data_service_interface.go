package http

import (
	"context"

	"debtlens/internal/exporter"
	api "debtlens/pkg/contracts/api/v1"
	"debtlens/pkg/contracts/domain"
)

// DataServiceInterface defines the series operations the handlers depend on
type DataServiceInterface interface {
	Series(ctx context.Context, req api.SeriesRequest) (*api.SeriesResponse, error)
	Summary(ctx context.Context) (*api.SummaryResponse, error)
	Preview(ctx context.Context, rows int) (*api.PreviewResponse, error)
	Reload(ctx context.Context, path string, reason domain.RefreshReason) (*api.ReloadResponse, error)
	Export(ctx context.Context, req api.ExportRequest) (exporter.Series, error)
}
