package dataprocessing

import (
	"trendpulse/pkg/contracts/domain"
)

// Merge concatenates fragments in the order given. The result has a date
// column when any fragment had one; rows from fragments without it keep an
// invalid date. Zero fragments produce an empty table.
func Merge[R domain.Record](fragments ...domain.Table[R]) domain.Table[R] {
	total := 0
	for _, f := range fragments {
		total += f.Len()
	}

	merged := domain.Table[R]{Rows: make([]R, 0, total)}
	for _, f := range fragments {
		merged.Rows = append(merged.Rows, f.Rows...)
		merged.HasDate = merged.HasDate || f.HasDate
	}
	return merged
}
