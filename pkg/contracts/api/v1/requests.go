// Package api contains API contract definitions for the DebtLens service.
// Version v1 represents the current stable API version.
package api

// SeriesRequest carries the filter and smoothing controls for a series query.
// Bound values are pointers so an omitted bound means "unbounded", matching
// the inclusive-range semantics of the filter. An inverted range is not a
// validation error; it simply produces an empty view.
type SeriesRequest struct {
	FromYear *int     `json:"from_year" query:"from_year" validate:"omitempty,year"`
	ToYear   *int     `json:"to_year" query:"to_year" validate:"omitempty,year"`
	MinDebt  *float64 `json:"min_debt" query:"min_debt"`
	MaxDebt  *float64 `json:"max_debt" query:"max_debt"`

	// Smoother selects an optional rolling aggregate over the filtered
	// debt values: "mean" (moving average, caller-chosen window) or
	// "median" (fixed window).
	Smoother string `json:"smoother" query:"smoother" validate:"omitempty,oneof=mean median"`
	Window   int    `json:"window" query:"window" validate:"omitempty,min=1"`
}

// PreviewRequest selects how many leading rows of the cleaned set to return.
type PreviewRequest struct {
	Rows int `json:"rows" query:"rows" validate:"omitempty,min=1,max=100"`
}

// ReloadRequest asks the service to reload the dataset. An empty path
// refreshes the currently active file; a new path switches to it.
type ReloadRequest struct {
	Path string `json:"path,omitempty" validate:"omitempty,max=4096"`
}

// ExportRequest mirrors SeriesRequest for the CSV download endpoint.
// Filename feeds the Content-Disposition header, so path separators and
// traversal sequences are rejected.
type ExportRequest struct {
	SeriesRequest
	Filename string `json:"filename" query:"filename" validate:"omitempty,filename"`
}
