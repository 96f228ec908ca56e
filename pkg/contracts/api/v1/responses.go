package api

import (
	"time"

	"debtlens/pkg/contracts/domain"
)

// SeriesMeta describes the filtered view that accompanies the points.
// Empty views are a soft condition: the response stays 200 and Message
// tells the user to widen the filters.
type SeriesMeta struct {
	Count           int    `json:"count"`
	Empty           bool   `json:"empty"`
	Message         string `json:"message,omitempty"`
	LogScaleAllowed bool   `json:"log_scale_allowed"`

	Smoother        string `json:"smoother,omitempty"`
	Window          int    `json:"window,omitempty"`
	SmootherApplied bool   `json:"smoother_applied"`
	SmootherSkipped string `json:"smoother_skipped,omitempty"`

	Source     string    `json:"source"`
	YearColumn string    `json:"year_column"`
	DebtColumn string    `json:"debt_column"`
	LoadedAt   time.Time `json:"loaded_at"`
}

// SeriesResponse is the filtered view plus an optional smoothing series.
// Smoothed is index-aligned with Points; positions where the rolling window
// does not fit are null.
type SeriesResponse struct {
	Points   []domain.DebtPoint `json:"points"`
	Smoothed []*float64         `json:"smoothed,omitempty"`
	Meta     SeriesMeta         `json:"meta"`
}

// SummaryResponse describes the cleaned dataset for control initialization.
type SummaryResponse struct {
	Info            domain.DatasetInfo  `json:"info"`
	Bounds          domain.SeriesBounds `json:"bounds"`
	Empty           bool                `json:"empty"`
	LogScaleAllowed bool                `json:"log_scale_allowed"`
}

// PreviewResponse is the head of the cleaned dataset.
type PreviewResponse struct {
	Columns []string           `json:"columns"`
	Points  []domain.DebtPoint `json:"points"`
	Total   int                `json:"total"`
}

// ReloadResponse reports the outcome of an explicit reload.
type ReloadResponse struct {
	Path     string    `json:"path"`
	Rows     int       `json:"rows"`
	Message  string    `json:"message"`
	LoadedAt time.Time `json:"loaded_at"`
}

// HealthCheck is a single named readiness probe result.
type HealthCheck struct {
	Name    string `json:"name"`
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// HealthResponse is returned by the health endpoints.
type HealthResponse struct {
	Status    string        `json:"status"`
	Timestamp time.Time     `json:"timestamp"`
	Uptime    string        `json:"uptime,omitempty"`
	Checks    []HealthCheck `json:"checks,omitempty"`
}
