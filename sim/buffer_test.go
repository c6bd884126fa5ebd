package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBufferPool_Allocate_WithinCapacity(t *testing.T) {
	// GIVEN a 1024 KB pool
	p := NewBufferPool(1024, testLogger())

	// WHEN a 1 MB allocation is requested
	ok := p.Allocate(1.0, "req-1")

	// THEN it succeeds and the space is reserved
	assert.True(t, ok)
	assert.Equal(t, int64(1024), p.UsedKB())
	assert.InDelta(t, 100.0, p.UsagePercent(), 0.001)
}

func TestBufferPool_Allocate_Refused_ChangesNothing(t *testing.T) {
	// GIVEN a pool with 512 of 1024 KB in use
	p := NewBufferPool(1024, testLogger())
	p.Allocate(0.5, "req-1")

	// WHEN an allocation that does not fit is requested
	ok := p.Allocate(1.0, "req-2")

	// THEN the refusal is atomic: nothing changed
	assert.False(t, ok)
	assert.Equal(t, int64(512), p.UsedKB())
	assert.False(t, p.Release("req-2"))
}

func TestBufferPool_Release_FreesSpace(t *testing.T) {
	p := NewBufferPool(1024, testLogger())
	p.Allocate(0.5, "req-1")

	assert.True(t, p.Release("req-1"))
	assert.Equal(t, int64(0), p.UsedKB())
	assert.False(t, p.Release("req-1"), "second release must report unknown")
}

func TestBufferPool_Release_Unknown_ReturnsFalse(t *testing.T) {
	p := NewBufferPool(1024, testLogger())
	assert.False(t, p.Release("never-allocated"))
}

func TestBufferPool_DoubleAllocate_SameRequest_Refused(t *testing.T) {
	p := NewBufferPool(1024, testLogger())
	assert.True(t, p.Allocate(0.25, "req-1"))
	assert.False(t, p.Allocate(0.25, "req-1"))
	assert.Equal(t, int64(256), p.UsedKB())
}

func TestBufferPool_UsagePercent_ZeroCapacity(t *testing.T) {
	p := NewBufferPool(0, testLogger())
	assert.Equal(t, 0.0, p.UsagePercent())
}

func TestBufferPool_UsedNeverExceedsCapacity(t *testing.T) {
	// GIVEN a 1024 KB pool and a mixed allocate/release sequence
	p := NewBufferPool(1024, testLogger())

	ids := []string{"a", "b", "c", "d", "e", "f"}
	sizes := []float64{0.3, 0.5, 0.4, 0.2, 0.6, 0.1}
	for i, id := range ids {
		p.Allocate(sizes[i], id)

		// THEN the invariant holds after every step
		assert.LessOrEqual(t, p.UsedKB(), p.CapacityKB())
		assert.GreaterOrEqual(t, p.UsagePercent(), 0.0)
		assert.LessOrEqual(t, p.UsagePercent(), 100.0)

		if i%2 == 1 {
			p.Release(ids[i-1])
			assert.LessOrEqual(t, p.UsedKB(), p.CapacityKB())
		}
	}
}
