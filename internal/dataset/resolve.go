package dataset

import (
	"regexp"
	"strings"
)

// Default candidate spellings for the two column roles, in priority order.
// The first candidate that matches an available column (case-insensitively)
// wins, so put preferred spellings first.
var (
	DefaultYearCandidates = []string{"year", "Year", "refPeriod", "ref period", "ref Period"}
	DefaultDebtCandidates = []string{"External_Debt", "external_debt", "Value", "External Debt"}
)

// unnamedPattern matches auto-generated index columns such as "Unnamed: 0"
// that spreadsheet tools prepend when a frame is saved with its index.
var unnamedPattern = regexp.MustCompile(`^Unnamed`)

// Roles holds the resolved column name for each required role.
type Roles struct {
	Year string
	Debt string
}

// NormalizeHeader trims whitespace from every column name and drops columns
// matching the auto-generated index pattern, removing the corresponding cell
// from every row. Returns the surviving header; rows are rewritten in place
// shape-wise but never reordered.
func NormalizeHeader(header []string, rows [][]string) ([]string, [][]string) {
	keep := make([]int, 0, len(header))
	cols := make([]string, 0, len(header))
	for i, name := range header {
		name = strings.TrimSpace(name)
		if unnamedPattern.MatchString(name) {
			continue
		}
		keep = append(keep, i)
		cols = append(cols, name)
	}

	if len(keep) == len(header) {
		return cols, rows
	}

	out := make([][]string, len(rows))
	for r, row := range rows {
		cells := make([]string, 0, len(keep))
		for _, i := range keep {
			if i < len(row) {
				cells = append(cells, row[i])
			} else {
				cells = append(cells, "")
			}
		}
		out[r] = cells
	}
	return cols, out
}

// Resolve scans candidates in priority order against the available columns
// and returns the first column whose name matches case-insensitively.
func Resolve(columns, candidates []string) (string, bool) {
	for _, cand := range candidates {
		want := strings.ToLower(strings.TrimSpace(cand))
		for _, col := range columns {
			if strings.ToLower(strings.TrimSpace(col)) == want {
				return col, true
			}
		}
	}
	return "", false
}

// ResolveRoles resolves the year and debt roles against the available
// columns. Both roles are attempted even when the first fails so a single
// *SchemaError can name everything that is unresolved.
func ResolveRoles(columns, yearCandidates, debtCandidates []string) (Roles, error) {
	roles := Roles{}
	missing := make([]string, 0, 2)

	if col, ok := Resolve(columns, yearCandidates); ok {
		roles.Year = col
	} else {
		missing = append(missing, RoleYear)
	}

	if col, ok := Resolve(columns, debtCandidates); ok {
		roles.Debt = col
	} else {
		missing = append(missing, RoleDebt)
	}

	if len(missing) > 0 {
		return Roles{}, NewSchemaError(missing, columns)
	}
	return roles, nil
}

// columnIndex returns the position of name in columns, or -1.
func columnIndex(columns []string, name string) int {
	for i, col := range columns {
		if col == name {
			return i
		}
	}
	return -1
}
