package config

// Application constants for the DebtLens service.
const (
	AppName = "DebtLens"

	// DefaultDataFile is the debt series shipped alongside the binary,
	// relative to the data directory.
	DefaultDataFile = "lebanon_external_debt.csv"
)
