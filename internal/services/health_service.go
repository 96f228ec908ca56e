package services

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"time"

	api "debtlens/pkg/contracts/api/v1"
)

// HealthService answers the liveness, readiness and version probes.
// Liveness means the process is up; readiness means the active dataset is
// loadable, so a probe may trigger the first load and warm the cache.
type HealthService struct {
	version   string
	buildTime string
	data      *DataService
	startTime time.Time
	logger    *slog.Logger
}

// NewHealthService creates a health service around the data service.
func NewHealthService(version, buildTime string, data *DataService, logger *slog.Logger) *HealthService {
	if logger == nil {
		logger = slog.Default()
	}

	logger.Info("HealthService initialized",
		slog.String("version", version),
		slog.String("build_time", buildTime))

	return &HealthService{
		version:   version,
		buildTime: buildTime,
		data:      data,
		startTime: time.Now(),
		logger:    logger,
	}
}

// Health returns overall service health with individual check results.
// A failing check degrades the status but the endpoint itself stays 200;
// orchestrators that need a hard signal use Ready.
func (hs *HealthService) Health(ctx context.Context) api.HealthResponse {
	checks := []api.HealthCheck{
		hs.checkDataset(ctx),
		hs.checkCache(),
	}

	status := "ok"
	for _, c := range checks {
		if c.Status != "ready" {
			status = "degraded"
			break
		}
	}

	return api.HealthResponse{
		Status:    status,
		Timestamp: time.Now().UTC(),
		Uptime:    time.Since(hs.startTime).Round(time.Second).String(),
		Checks:    checks,
	}
}

// Ready reports whether the service can answer data queries.
func (hs *HealthService) Ready(ctx context.Context) api.HealthResponse {
	check := hs.checkDataset(ctx)

	status := "ready"
	if check.Status != "ready" {
		status = "not_ready"
	}

	return api.HealthResponse{
		Status:    status,
		Timestamp: time.Now().UTC(),
		Checks:    []api.HealthCheck{check},
	}
}

// Live reports process liveness.
func (hs *HealthService) Live(ctx context.Context) api.HealthResponse {
	return api.HealthResponse{
		Status:    "alive",
		Timestamp: time.Now().UTC(),
		Uptime:    time.Since(hs.startTime).Round(time.Second).String(),
	}
}

// Version returns build and runtime information.
func (hs *HealthService) Version() map[string]interface{} {
	info := map[string]interface{}{
		"version":    hs.version,
		"go_version": runtime.Version(),
		"os":         runtime.GOOS,
		"arch":       runtime.GOARCH,
		"uptime":     time.Since(hs.startTime).Seconds(),
		"start_time": hs.startTime.Format(time.RFC3339),
	}
	if hs.buildTime != "" {
		info["build_time"] = hs.buildTime
	}
	return info
}

// checkDataset probes the active dataset through the data service.
func (hs *HealthService) checkDataset(ctx context.Context) api.HealthCheck {
	if err := hs.data.Ping(ctx); err != nil {
		hs.logger.WarnContext(ctx, "Dataset readiness check failed",
			slog.String("path", hs.data.ActivePath()),
			slog.String("error", err.Error()))
		return api.HealthCheck{
			Name:    "dataset",
			Status:  "not_ready",
			Message: err.Error(),
		}
	}

	return api.HealthCheck{
		Name:    "dataset",
		Status:  "ready",
		Message: fmt.Sprintf("active file %s", hs.data.ActivePath()),
	}
}

// checkCache reports the memo cache counters. The cache cannot fail, so the
// check is informational.
func (hs *HealthService) checkCache() api.HealthCheck {
	stats := hs.data.CacheStats()
	return api.HealthCheck{
		Name:   "cache",
		Status: "ready",
		Message: fmt.Sprintf("%d entries, %d hits, %d misses",
			stats.Entries, stats.Hits, stats.Misses),
	}
}
