// Package exporter writes debt series views as CSV.
//
// EncodeSeries streams a filtered series to any io.Writer, which is how the
// HTTP export endpoint serves attachments without touching disk. CSVWriter
// anchors relative destinations under the exports directory for the
// processor CLI and any other file-backed export. Both prefix output with a
// UTF-8 BOM so Excel opens the files correctly.
//
// Example usage:
//
//	writer := exporter.NewCSVWriter(paths)
//	rows, err := writer.WriteSeries("debt_1993_2010.csv", exporter.Series{
//		YearColumn: "Year",
//		DebtColumn: "External Debt",
//		Points:     points,
//	})
package exporter
