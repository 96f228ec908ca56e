package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"

	"debtlens/internal/config"
	"debtlens/internal/dataset"
	"debtlens/internal/exporter"
	"debtlens/internal/infrastructure"
	"debtlens/internal/services"
	api "debtlens/pkg/contracts/api/v1"
)

// defaultExportName anchors the output under the exports directory when -out
// is not given.
const defaultExportName = "debt_view.csv"

func main() {
	inPath := flag.String("in", "", "input CSV file (defaults to the configured data path)")
	outPath := flag.String("out", defaultExportName, "output CSV file; relative paths land under the exports directory")
	fromFlag := flag.String("from", "", "earliest year to keep")
	toFlag := flag.String("to", "", "latest year to keep")
	minFlag := flag.String("min", "", "smallest debt value to keep")
	maxFlag := flag.String("max", "", "largest debt value to keep")
	smoother := flag.String("smoother", "", "optional rolling overlay: mean or median")
	window := flag.Int("window", 0, "moving-average window in years (0 uses the default)")
	preview := flag.Int("preview", 0, "print the first N rows of the view instead of exporting")
	flag.Parse()

	cfg, err := config.Load("")
	if err != nil {
		slog.Warn("Failed to load config, using defaults", "error", err)
		cfg = config.Default()
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		slog.Warn("Failed to initialize logger, using default", "error", err)
		logger = slog.Default()
	}

	// An explicit -in wins over the configured data path. Flag paths are
	// taken as given, so relative ones resolve against the working
	// directory like any other CLI argument.
	if *inPath != "" {
		cfg.Data.Path = *inPath
	}

	req, err := buildRequest(*fromFlag, *toFlag, *minFlag, *maxFlag, *smoother, *window)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	logger.Info("Starting batch export",
		slog.String("input", cfg.Data.Path),
		slog.String("output", *outPath),
		slog.String("smoother", *smoother),
		slog.Int("preview", *preview))

	ctx := context.Background()
	loader := dataset.NewLoader(cfg.Data.YearCandidates, cfg.Data.DebtCandidates, logger)
	store := dataset.NewStore(loader, logger)
	service := services.NewDataServiceWithLogger(cfg, store, nil, nil, logger)

	summary, err := service.Summary(ctx)
	if err != nil {
		fail(logger, err)
	}

	fmt.Printf("Loaded %d rows from %s\n", summary.Info.Rows, summary.Info.Path)
	if !summary.Empty {
		fmt.Printf("Years %d-%d, debt %s to %s\n",
			summary.Bounds.MinYear, summary.Bounds.MaxYear,
			exporter.FormatBillions(summary.Bounds.MinDebt),
			exporter.FormatBillions(summary.Bounds.MaxDebt))
	}

	resp, err := service.Series(ctx, req)
	if err != nil {
		fail(logger, err)
	}

	if resp.Meta.Empty {
		fmt.Println(resp.Meta.Message)
	}
	if resp.Meta.SmootherSkipped != "" {
		fmt.Printf("Smoother skipped: %s\n", resp.Meta.SmootherSkipped)
	}
	if len(resp.Points) > 0 {
		latest := resp.Points[len(resp.Points)-1]
		fmt.Printf("View: %d rows, latest %d at %s\n",
			resp.Meta.Count, latest.Year, exporter.FormatBillions(latest.Debt))
	}

	if *preview > 0 {
		writePreview(os.Stdout, resp, *preview)
		return
	}

	paths, err := config.GetPaths()
	if err != nil {
		logger.Error("Failed to resolve application paths", slog.String("error", err.Error()))
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	writer := exporter.NewCSVWriter(paths)
	rows, err := writer.WriteSeries(*outPath, exportView(resp))
	if err != nil {
		fail(logger, err)
	}

	fmt.Printf("Wrote %d rows to %s\n", rows, paths.ResolveExportFile(*outPath))
}

// fail reports a terminal error. The error text is the same user-facing
// message the HTTP API would return for the condition.
func fail(logger *slog.Logger, err error) {
	logger.Error("Processing failed", slog.String("error", err.Error()))
	fmt.Fprintln(os.Stderr, err)
	os.Exit(1)
}

// buildRequest converts the flag values into the request shape the series
// endpoint accepts, leaving omitted bounds open.
func buildRequest(from, to, min, max, smoother string, window int) (api.SeriesRequest, error) {
	req := api.SeriesRequest{Smoother: smoother, Window: window}

	var err error
	if req.FromYear, err = parseYearFlag("from", from); err != nil {
		return api.SeriesRequest{}, err
	}
	if req.ToYear, err = parseYearFlag("to", to); err != nil {
		return api.SeriesRequest{}, err
	}
	if req.MinDebt, err = parseDebtFlag("min", min); err != nil {
		return api.SeriesRequest{}, err
	}
	if req.MaxDebt, err = parseDebtFlag("max", max); err != nil {
		return api.SeriesRequest{}, err
	}
	return req, nil
}

// parseYearFlag parses an optional integer flag, nil when empty.
func parseYearFlag(name, raw string) (*int, error) {
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid -%s value %q: expected a year", name, raw)
	}
	return &v, nil
}

// parseDebtFlag parses an optional float flag, nil when empty.
func parseDebtFlag(name, raw string) (*float64, error) {
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid -%s value %q: expected a number", name, raw)
	}
	return &v, nil
}

// exportView shapes a series response for CSV encoding. The smoothed column
// is included only when the smoother actually applied to the view.
func exportView(resp *api.SeriesResponse) exporter.Series {
	series := exporter.Series{
		YearColumn: resp.Meta.YearColumn,
		DebtColumn: resp.Meta.DebtColumn,
		Points:     resp.Points,
	}
	if resp.Meta.SmootherApplied {
		series.Smoothed = resp.Smoothed
		series.SmoothedColumn = fmt.Sprintf("%s_%d", resp.Meta.Smoother, resp.Meta.Window)
	}
	return series
}

// writePreview prints the head of the view as tab-separated columns,
// mirroring the export layout without touching the filesystem.
func writePreview(w io.Writer, resp *api.SeriesResponse, rows int) {
	if rows > len(resp.Points) {
		rows = len(resp.Points)
	}

	if resp.Meta.SmootherApplied {
		fmt.Fprintf(w, "%s\t%s\t%s_%d\n",
			resp.Meta.YearColumn, resp.Meta.DebtColumn, resp.Meta.Smoother, resp.Meta.Window)
	} else {
		fmt.Fprintf(w, "%s\t%s\n", resp.Meta.YearColumn, resp.Meta.DebtColumn)
	}

	for i := 0; i < rows; i++ {
		p := resp.Points[i]
		debt := strconv.FormatFloat(p.Debt, 'f', -1, 64)
		if resp.Meta.SmootherApplied {
			smoothed := ""
			if resp.Smoothed[i] != nil {
				smoothed = strconv.FormatFloat(*resp.Smoothed[i], 'f', -1, 64)
			}
			fmt.Fprintf(w, "%d\t%s\t%s\n", p.Year, debt, smoothed)
		} else {
			fmt.Fprintf(w, "%d\t%s\n", p.Year, debt)
		}
	}

	if remaining := len(resp.Points) - rows; remaining > 0 {
		fmt.Fprintf(w, "(%d more rows)\n", remaining)
	}
}
