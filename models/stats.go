package models

import "time"

// SearchStats summarises one pass through the search pipeline.
type SearchStats struct {
	StartTime       time.Time
	EndTime         time.Time
	Sources         int
	FailedSources   []string
	EmptySources    []string
	RecordCount     int
	NormalizedCount int
	DuplicateCount  int
	FilteredCount   int
	ReturnedCount   int
}

// Duration is the wall time of the search.
func (s SearchStats) Duration() time.Duration {
	return s.EndTime.Sub(s.StartTime)
}
