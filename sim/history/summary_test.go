package history

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSummarize_CountsAndDataMoved(t *testing.T) {
	records := []OutcomeRecord{
		{SizeMB: 10, Success: true},
		{SizeMB: 4, Success: true},
		{SizeMB: 100, Success: false},
	}

	s := Summarize(records)

	assert.Equal(t, 3, s.Outcomes)
	assert.Equal(t, 2, s.Succeeded)
	assert.Equal(t, 1, s.Failed)
	// failed transfers move no data
	assert.Equal(t, 14.0, s.DataMovedMB)
}

func TestSummary_SuccessRate(t *testing.T) {
	assert.Equal(t, 0.0, Summary{}.SuccessRate())
	assert.InDelta(t, 66.666, Summary{Succeeded: 2, Failed: 1}.SuccessRate(), 0.01)
	assert.Equal(t, 100.0, Summary{Succeeded: 5}.SuccessRate())
}
