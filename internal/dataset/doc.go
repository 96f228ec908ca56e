// Package dataset implements the load/clean/filter pipeline for the external
// debt series.
//
// The pipeline is strictly linear and side-effect free: ReadTable parses the
// source file, NormalizeHeader trims column names and drops auto-generated
// index columns, ResolveRoles picks the year and debt columns from candidate
// spellings, and Clean coerces both to numeric, drops rows with missing
// values, and stably sorts by year. Filter and Rolling derive views from a
// cleaned set without mutating it.
//
// Store memoizes cleaned datasets by path with explicit invalidation only;
// datasets are immutable after load so concurrent readers share them.
//
// Failures split into two recoverable kinds: *LoadError when the file cannot
// be read or parsed (the message names the attempted path) and *SchemaError
// when a required column role cannot be resolved (the message names the
// missing roles and the available columns).
package dataset
