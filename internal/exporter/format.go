package exporter

import (
	"fmt"
	"strconv"
)

// FormatBillions renders a debt value in billions with one decimal, e.g.
// 102.1B. Used for log lines and CLI summaries, never for CSV cells.
func FormatBillions(value float64) string {
	return fmt.Sprintf("%.1fB", value/1e9)
}

// formatYear renders a year as its plain decimal form.
func formatYear(year int) string {
	return strconv.Itoa(year)
}

// formatDebt renders a debt value with the minimal digits that round-trip,
// so exports do not invent precision the source never had.
func formatDebt(value float64) string {
	return strconv.FormatFloat(value, 'f', -1, 64)
}

// formatOptional renders a possibly missing value, empty when absent.
func formatOptional(value *float64) string {
	if value == nil {
		return ""
	}
	return formatDebt(*value)
}
