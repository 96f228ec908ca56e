package testutil

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// DebtCSVHeader is the canonical header of the external debt dataset.
const DebtCSVHeader = "refPeriod,External_Debt"

// DebtRow is one raw year/debt pair used to build CSV fixtures.
type DebtRow struct {
	Year string
	Debt string
}

// DefaultDebtRows returns a small, well-formed debt series in shuffled year
// order so tests exercise the sort performed during cleaning.
func DefaultDebtRows() []DebtRow {
	return []DebtRow{
		{"2004", "21000000000"},
		{"2002", "17500000000"},
		{"2003", "19300000000"},
		{"2001", "15000000000"},
		{"2005", "22400000000.5"},
	}
}

// WriteDebtCSV writes a CSV fixture with the canonical header into dir and
// returns its path.
func WriteDebtCSV(t *testing.T, dir, name string, rows []DebtRow) string {
	t.Helper()

	var sb strings.Builder
	sb.WriteString(DebtCSVHeader + "\n")
	for _, row := range rows {
		sb.WriteString(fmt.Sprintf("%s,%s\n", row.Year, row.Debt))
	}

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(sb.String()), 0644); err != nil {
		t.Fatalf("failed to write fixture %s: %v", path, err)
	}
	return path
}

// WriteRawCSV writes arbitrary CSV content into dir and returns its path.
// Use it for malformed or schema-breaking fixtures.
func WriteRawCSV(t *testing.T, dir, name, content string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write fixture %s: %v", path, err)
	}
	return path
}
