package exporter

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"debtlens/internal/config"
	"debtlens/internal/errors"
	"debtlens/pkg/contracts/domain"
)

// utf8BOM helps Excel recognize UTF-8 encoded CSV files.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Series is a filtered debt view prepared for CSV encoding. Column names are
// the resolved source column names so the export round-trips through the
// loader. Smoothed is optional; when present it must align with Points and
// positions without a value are written empty.
type Series struct {
	YearColumn     string
	DebtColumn     string
	Points         []domain.DebtPoint
	Smoothed       []*float64
	SmoothedColumn string
}

// EncodeSeries writes the series as BOM-prefixed CSV to dst and returns the
// number of data rows written.
func EncodeSeries(dst io.Writer, series Series) (int, error) {
	if series.Smoothed != nil && len(series.Smoothed) != len(series.Points) {
		return 0, errors.NewExportError(
			fmt.Sprintf("smoothed series length %d does not match %d points",
				len(series.Smoothed), len(series.Points)), nil)
	}

	if _, err := dst.Write(utf8BOM); err != nil {
		return 0, errors.NewExportError("failed to write BOM", err)
	}

	yearCol := series.YearColumn
	if yearCol == "" {
		yearCol = "year"
	}
	debtCol := series.DebtColumn
	if debtCol == "" {
		debtCol = "debt"
	}

	header := []string{yearCol, debtCol}
	if series.Smoothed != nil {
		smoothedCol := series.SmoothedColumn
		if smoothedCol == "" {
			smoothedCol = "smoothed"
		}
		header = append(header, smoothedCol)
	}

	w := csv.NewWriter(dst)
	if err := w.Write(header); err != nil {
		return 0, errors.NewExportError("failed to write header", err)
	}

	for i, p := range series.Points {
		record := []string{formatYear(p.Year), formatDebt(p.Debt)}
		if series.Smoothed != nil {
			record = append(record, formatOptional(series.Smoothed[i]))
		}
		if err := w.Write(record); err != nil {
			return i, errors.NewExportError(fmt.Sprintf("failed to write record %d", i), err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return len(series.Points), errors.NewExportError("failed to flush records", err)
	}
	return len(series.Points), nil
}

// CSVWriter writes CSV files under the exports directory.
type CSVWriter struct {
	paths *config.Paths
}

// NewCSVWriter creates a new CSV writer instance
func NewCSVWriter(paths *config.Paths) *CSVWriter {
	return &CSVWriter{paths: paths}
}

// WriteOptions configures CSV writing behavior
type WriteOptions struct {
	Headers   []string
	Records   [][]string
	BOMPrefix bool // Add UTF-8 BOM for Excel compatibility
}

// WriteCSV writes data to a CSV file with the given options. Relative paths
// are anchored under the exports directory.
func (w *CSVWriter) WriteCSV(filePath string, options WriteOptions) error {
	fullPath := w.resolvePath(filePath)

	slog.Info("Writing CSV file",
		slog.String("file_path", filePath),
		slog.String("full_path", fullPath),
		slog.Int("record_count", len(options.Records)))

	dir := filepath.Dir(fullPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return errors.NewStorageError("failed to create export directory", err)
	}

	file, err := os.Create(fullPath)
	if err != nil {
		return errors.NewStorageError("failed to create export file", err)
	}
	defer file.Close()

	if options.BOMPrefix {
		if _, err := file.Write(utf8BOM); err != nil {
			return errors.NewExportError("failed to write BOM", err)
		}
	}

	writer := csv.NewWriter(file)
	defer writer.Flush()

	if len(options.Headers) > 0 {
		if err := writer.Write(options.Headers); err != nil {
			return errors.NewExportError("failed to write headers", err)
		}
	}

	for i, record := range options.Records {
		if err := writer.Write(record); err != nil {
			return errors.NewExportError(fmt.Sprintf("failed to write record %d", i), err)
		}
	}

	writer.Flush()
	return writer.Error()
}

// WriteSeries writes a debt series to a CSV file and returns the number of
// data rows written.
func (w *CSVWriter) WriteSeries(filePath string, series Series) (int, error) {
	fullPath := w.resolvePath(filePath)

	slog.Info("Writing series export",
		slog.String("full_path", fullPath),
		slog.Int("points", len(series.Points)))

	dir := filepath.Dir(fullPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return 0, errors.NewStorageError("failed to create export directory", err)
	}

	file, err := os.Create(fullPath)
	if err != nil {
		return 0, errors.NewStorageError("failed to create export file", err)
	}
	defer file.Close()

	return EncodeSeries(file, series)
}

// resolvePath anchors relative paths under the exports directory.
func (w *CSVWriter) resolvePath(filePath string) string {
	if filepath.IsAbs(filePath) {
		return filePath
	}
	if w.paths == nil {
		return filePath
	}
	return w.paths.ResolveExportFile(filePath)
}
