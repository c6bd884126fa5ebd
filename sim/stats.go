// Tracks dispatcher-wide aggregate counters for final reporting.

package sim

import (
	"fmt"
	"time"
)

// Stats aggregates what the dispatch loop has processed. Useful for
// evaluating system behavior over a run and for the observation surfaces
// (throughput, success rate).
type Stats struct {
	Processed   int     // requests pulled from the scheduler
	Succeeded   int     // requests completed successfully
	Failed      int     // requests with a terminal failed status
	TotalDataMB float64 // data moved by successful requests
	StartTime   time.Time
}

// Print displays aggregated statistics at the end of a run.
func (s *Stats) Print(elapsed time.Duration) {
	fmt.Println("=== Dispatch Statistics ===")
	fmt.Printf("Requests Processed : %d\n", s.Processed)
	fmt.Printf("Succeeded          : %d\n", s.Succeeded)
	fmt.Printf("Failed             : %d\n", s.Failed)
	fmt.Printf("Data Moved         : %.2f MB\n", s.TotalDataMB)
	if elapsed > 0 {
		fmt.Printf("Throughput         : %.2f MB/s\n", s.TotalDataMB/elapsed.Seconds())
	}
	if total := s.Succeeded + s.Failed; total > 0 {
		fmt.Printf("Success Rate       : %.1f%%\n", float64(s.Succeeded)/float64(total)*100)
	}
}
