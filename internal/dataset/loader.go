package dataset

import (
	"context"
	"log/slog"
)

// Loader turns a file path into a cleaned Dataset. The pipeline is strictly
// linear: read, normalize headers, resolve roles, clean. It performs exactly
// one read per call and has no side effects.
type Loader struct {
	yearCandidates []string
	debtCandidates []string
	logger         *slog.Logger
}

// NewLoader creates a loader with the given role candidate lists. Empty
// candidate lists fall back to the defaults.
func NewLoader(yearCandidates, debtCandidates []string, logger *slog.Logger) *Loader {
	if len(yearCandidates) == 0 {
		yearCandidates = DefaultYearCandidates
	}
	if len(debtCandidates) == 0 {
		debtCandidates = DefaultDebtCandidates
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{
		yearCandidates: yearCandidates,
		debtCandidates: debtCandidates,
		logger:         logger,
	}
}

// Load reads, normalizes, resolves, and cleans the file at path.
// Failures are *LoadError (unreadable/unparseable file) or *SchemaError
// (roles unresolved); both are recoverable user-input conditions.
func (l *Loader) Load(ctx context.Context, path string) (*Dataset, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	header, rows, err := ReadTable(path)
	if err != nil {
		return nil, err
	}

	columns, rows := NormalizeHeader(header, rows)
	roles, err := ResolveRoles(columns, l.yearCandidates, l.debtCandidates)
	if err != nil {
		return nil, err
	}

	ds := Clean(columns, rows, roles)
	ds.Path = path

	l.logger.InfoContext(ctx, "Loaded dataset",
		slog.String("path", path),
		slog.Int("rows", ds.Len()),
		slog.Int("raw_rows", ds.RawRows),
		slog.String("year_column", roles.Year),
		slog.String("debt_column", roles.Debt))

	return ds, nil
}
