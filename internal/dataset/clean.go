package dataset

import (
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"debtlens/pkg/contracts/domain"
)

// parseNumeric coerces a cell to a float. Thousands separators are stripped
// the way report files commonly carry them ("1,234,567.8"). ok is false for
// empty or unparseable cells; the caller treats that as a missing value, not
// an error.
func parseNumeric(cell string) (float64, bool) {
	s := strings.TrimSpace(cell)
	if s == "" {
		return 0, false
	}
	s = strings.ReplaceAll(s, ",", "")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// parseYear coerces a cell to an integral year. Fractional years ("1990.5")
// count as failed coercion and drop the row rather than silently truncating.
func parseYear(cell string) (int, bool) {
	v, ok := parseNumeric(cell)
	if !ok {
		return 0, false
	}
	if v != math.Trunc(v) || v < math.MinInt32 || v > math.MaxInt32 {
		return 0, false
	}
	return int(v), true
}

// Clean coerces the resolved year and debt columns to numeric, drops rows
// where either value is missing, and stably sorts the survivors ascending by
// year so equal years keep their file order. An empty result is not an error
// here; the caller decides whether that is fatal.
func Clean(columns []string, rows [][]string, roles Roles) *Dataset {
	yearIdx := columnIndex(columns, roles.Year)
	debtIdx := columnIndex(columns, roles.Debt)

	points := make([]domain.DebtPoint, 0, len(rows))
	if yearIdx >= 0 && debtIdx >= 0 {
		for _, row := range rows {
			if yearIdx >= len(row) || debtIdx >= len(row) {
				continue
			}
			year, ok := parseYear(row[yearIdx])
			if !ok {
				continue
			}
			debt, ok := parseNumeric(row[debtIdx])
			if !ok {
				continue
			}
			points = append(points, domain.DebtPoint{Year: year, Debt: debt})
		}
	}

	sort.SliceStable(points, func(i, j int) bool {
		return points[i].Year < points[j].Year
	})

	return &Dataset{
		YearColumn: roles.Year,
		DebtColumn: roles.Debt,
		Columns:    columns,
		RawRows:    len(rows),
		Points:     points,
		LoadedAt:   time.Now().UTC(),
	}
}
