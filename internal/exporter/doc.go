// Package exporter writes the valuation engine's output artifacts to disk.
//
// CSVWriter: core CSV writing with header/streaming support and UTF-8 BOM
// for Excel compatibility.
//
// ValuationExporter: writes valuations.csv (one row per player, sorted by
// total dollar value) and position_summary.csv (one row per position pool).
//
// WorkbookExporter: writes the same results as a single .xlsx workbook,
// one sheet per role plus a position summary sheet.
//
// ExportEnrichedJSON re-emits an upstream hitters/pitchers JSON file with
// each record's stats.valuations populated, preserving every other field.
//
// Example usage:
//
//	writer := exporter.NewValuationExporter(paths)
//	err := writer.ExportValuations(result.Valuations, "valuations.csv")
//	err = writer.ExportPositionSummaries(result.Summaries, "position_summary.csv")
package exporter
