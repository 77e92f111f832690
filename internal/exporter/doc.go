// Package exporter writes the session reports as CSV files.
//
// This package contains two layers:
//
// CSVWriter: Core CSV writing with headers and optional UTF-8 BOM. Every
// write goes through WriteFileAtomic, so a failed export never leaves a
// partial file behind.
//
// ReportExporter: Lays out each report as a Table (UserSessionTable,
// RowCountTable, ColumnRatioTable, PayloadTable) and writes it to its fixed
// file name in the output directory.
//
// Example usage:
//
//	paths, _ := config.ResolvePaths(cfg)
//	reports := exporter.NewReportExporter(exporter.NewCSVWriter(paths, logger), paths)
//
//	path, err := reports.ExportUserSessions(rows)
package exporter
