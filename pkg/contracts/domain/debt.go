package domain

import (
	"time"
)

// DebtPoint is a single observation of external debt for one year.
// Duplicate years are permitted; a point always carries both values.
type DebtPoint struct {
	Year int     `json:"year" validate:"required"`
	Debt float64 `json:"debt"`
}

// SeriesBounds describes the extent of a debt series along both axes.
// Used by frontends to initialize range selectors.
type SeriesBounds struct {
	MinYear int     `json:"min_year"`
	MaxYear int     `json:"max_year"`
	MinDebt float64 `json:"min_debt"`
	MaxDebt float64 `json:"max_debt"`
}

// DatasetInfo describes a loaded and cleaned dataset without its points.
type DatasetInfo struct {
	Path       string    `json:"path"`
	YearColumn string    `json:"year_column"`
	DebtColumn string    `json:"debt_column"`
	Columns    []string  `json:"columns"`
	RawRows    int       `json:"raw_rows"`
	Rows       int       `json:"rows"`
	LoadedAt   time.Time `json:"loaded_at"`
}

// RefreshReason identifies what triggered a dataset refresh.
type RefreshReason string

const (
	// RefreshReasonReload is an explicit reload requested through the API.
	RefreshReasonReload RefreshReason = "reload"

	// RefreshReasonWatch is a reload triggered by a file change on disk.
	RefreshReasonWatch RefreshReason = "watch"
)

// RefreshEvent is broadcast to connected clients when the active dataset
// has been replaced and cached views should be re-queried.
type RefreshEvent struct {
	Path   string        `json:"path"`
	Rows   int           `json:"rows"`
	Reason RefreshReason `json:"reason"`
	At     time.Time     `json:"at"`
}
