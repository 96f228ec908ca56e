package dataset

import (
	"time"

	"debtlens/pkg/contracts/domain"
)

// Dataset is a cleaned record set: header-normalized, numerically coerced,
// rows with missing values dropped, stably sorted ascending by year.
// A Dataset is immutable after construction; concurrent readers share it.
type Dataset struct {
	Path       string
	YearColumn string
	DebtColumn string
	Columns    []string
	RawRows    int
	Points     []domain.DebtPoint
	LoadedAt   time.Time
}

// Len returns the number of cleaned points.
func (d *Dataset) Len() int {
	return len(d.Points)
}

// Info summarizes the dataset without copying its points.
func (d *Dataset) Info() domain.DatasetInfo {
	return domain.DatasetInfo{
		Path:       d.Path,
		YearColumn: d.YearColumn,
		DebtColumn: d.DebtColumn,
		Columns:    d.Columns,
		RawRows:    d.RawRows,
		Rows:       len(d.Points),
		LoadedAt:   d.LoadedAt,
	}
}

// Bounds returns the year and debt extent of points. ok is false when the
// slice is empty, in which case the bounds are zero-valued.
func Bounds(points []domain.DebtPoint) (bounds domain.SeriesBounds, ok bool) {
	if len(points) == 0 {
		return domain.SeriesBounds{}, false
	}
	bounds = domain.SeriesBounds{
		MinYear: points[0].Year,
		MaxYear: points[0].Year,
		MinDebt: points[0].Debt,
		MaxDebt: points[0].Debt,
	}
	for _, p := range points[1:] {
		if p.Year < bounds.MinYear {
			bounds.MinYear = p.Year
		}
		if p.Year > bounds.MaxYear {
			bounds.MaxYear = p.Year
		}
		if p.Debt < bounds.MinDebt {
			bounds.MinDebt = p.Debt
		}
		if p.Debt > bounds.MaxDebt {
			bounds.MaxDebt = p.Debt
		}
	}
	return bounds, true
}

// LogScaleAllowed reports whether a logarithmic debt axis may be offered for
// points. Negative and zero debt values are valid data (magnitude displays
// use the absolute value) but they make a log axis undefined, so the policy
// is: allowed only when the set is non-empty and every debt value is
// strictly positive.
func LogScaleAllowed(points []domain.DebtPoint) bool {
	if len(points) == 0 {
		return false
	}
	for _, p := range points {
		if p.Debt <= 0 {
			return false
		}
	}
	return true
}
