package sim

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFakeClock_SleepAdvancesVirtualTime(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c := NewFakeClock(start)

	c.Sleep(3 * time.Second)

	assert.Equal(t, start.Add(3*time.Second), c.Now())
}

func TestFakeClock_NegativeAdvanceIgnored(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c := NewFakeClock(start)

	c.Advance(-time.Hour)

	assert.Equal(t, start, c.Now())
}
