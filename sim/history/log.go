package history

import "sync"

// Log is an append-only, capped collection of outcome records. When the
// limit is exceeded the oldest records are dropped. Safe for concurrent
// use: the dispatch loop appends while observers read.
type Log struct {
	mu      sync.Mutex
	limit   int
	records []OutcomeRecord
}

// NewLog creates a Log retaining at most limit records; limit <= 0 means
// unbounded.
func NewLog(limit int) *Log {
	return &Log{limit: limit}
}

// Append adds a record, evicting the oldest if over the limit.
func (l *Log) Append(rec OutcomeRecord) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.records = append(l.records, rec)
	if l.limit > 0 && len(l.records) > l.limit {
		l.records = l.records[len(l.records)-l.limit:]
	}
}

// Last returns a copy of the most recent n records in chronological order.
// n <= 0 returns all retained records.
func (l *Log) Last(n int) []OutcomeRecord {
	l.mu.Lock()
	defer l.mu.Unlock()
	start := 0
	if n > 0 && len(l.records) > n {
		start = len(l.records) - n
	}
	out := make([]OutcomeRecord, len(l.records)-start)
	copy(out, l.records[start:])
	return out
}

// Len returns the number of retained records.
func (l *Log) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.records)
}
