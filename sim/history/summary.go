package history

// Summary aggregates a set of outcome records for reporting.
type Summary struct {
	Outcomes    int
	Succeeded   int
	Failed      int
	DataMovedMB float64
}

// Summarize folds records into a Summary.
func Summarize(records []OutcomeRecord) Summary {
	var s Summary
	for _, rec := range records {
		s.Outcomes++
		if rec.Success {
			s.Succeeded++
			s.DataMovedMB += rec.SizeMB
		} else {
			s.Failed++
		}
	}
	return s
}

// SuccessRate returns succeeded/(succeeded+failed) as a percentage, 0 when
// no terminal outcomes exist.
func (s Summary) SuccessRate() float64 {
	total := s.Succeeded + s.Failed
	if total == 0 {
		return 0
	}
	return float64(s.Succeeded) / float64(total) * 100
}
