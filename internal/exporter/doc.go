// Package exporter writes category tables as CSV or XLSX.
//
// A table is first flattened into a Sheet (typed columns, then the sorted
// union of extra columns) and then encoded:
//
//	sheet := exporter.SheetOf("trend", tables.Trend)
//	err := exporter.Write(w, exporter.FormatXLSX, sheet)
//
// CSV output starts with a UTF-8 BOM so Excel opens Korean text correctly.
package exporter
