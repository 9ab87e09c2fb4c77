// Package dataprocessing turns the CSV exports of the three collectors
// (search trend, blog review, news article) into in-memory tables and derives
// the dashboard aggregates from them.
//
// # Data Flow
//
//	files.Locate -> Parser -> Merge -> Dataset -> Filter -> BuildDashboard
//
// File names carry the keyword: trend_<keyword>_<date>.csv,
// blog_review_<keyword>_<date>.csv and news_issue_<keyword>_<date>.csv.
//
// # Error Handling
//
// Ingestion never fails because of bad input. A file that cannot be used, or a
// row inside it, is reported to a DiagnosticSink (logged at WARN and kept on
// the Dataset) and dropped. Loader.Load only returns the context's error.
//
// # Dates
//
// Every parsed date is reduced to its calendar day (NullDate). Filtering by
// date range is inclusive on both ends at day granularity.
package dataprocessing
