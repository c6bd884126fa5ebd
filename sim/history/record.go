// Package history stores terminal request outcomes for external observers.
// This package has no dependencies on sim/ -- it stores pure data types.
package history

import "time"

// OutcomeRecord captures one request's terminal outcome as seen by the
// dispatch loop. Records are immutable once appended.
type OutcomeRecord struct {
	RequestID      string
	DeviceID       int
	DeviceName     string
	Operation      string
	SizeMB         float64
	Process        string
	Priority       int
	CreationTime   time.Time
	StartTime      time.Time
	CompletionTime time.Time
	Status         string
	Success        bool
}
