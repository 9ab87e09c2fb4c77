// Package shared holds code used across packages that belongs to no single
// layer. Its testutil subpackage provides the fixtures and log capture used
// by the package tests:
//
//	dirs := testutil.NewDataDirs(t)
//	testutil.WriteCSV(t, dirs.Trend, "trend_netflix_20240101.csv", testutil.SampleTrendCSV...)
//
//	logger, logs := testutil.NewTestLogger(t)
//	testutil.AssertLogContains(t, logs, slog.LevelWarn, "skipping file")
package shared
