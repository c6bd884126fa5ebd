package sim

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewRequest_StartsPending(t *testing.T) {
	clock := testClock()
	req := NewRequest(clock, OpWrite, 5.5, "backup", 3)

	assert.Equal(t, RequestPending, req.Status)
	assert.Equal(t, OpWrite, req.Op)
	assert.Equal(t, 5.5, req.SizeMB)
	assert.Equal(t, "backup", req.Process)
	assert.Equal(t, 3, req.Priority)
	assert.Equal(t, clock.Now(), req.CreationTime)
	assert.Nil(t, req.BlockAddress)
	assert.True(t, req.StartTime.IsZero())
	assert.True(t, req.CompletionTime.IsZero())
}

func TestNewRequest_ShortUniqueIDs(t *testing.T) {
	clock := testClock()
	seen := make(map[string]bool)
	for i := 0; i < 200; i++ {
		req := NewRequest(clock, OpRead, 1, "p", 0)
		assert.Len(t, req.ID, 8)
		assert.False(t, seen[req.ID], "duplicate id %s", req.ID)
		seen[req.ID] = true
	}
}

func TestRequest_WithBlockAddress(t *testing.T) {
	req := pendingRequest(testClock(), OpRead, 1, 0).WithBlockAddress(512)

	if assert.NotNil(t, req.BlockAddress) {
		assert.Equal(t, int64(512), *req.BlockAddress)
	}
}

func TestRequest_String(t *testing.T) {
	req := pendingRequest(testClock(), OpRead, 2.5, 7)

	s := req.String()
	assert.True(t, strings.Contains(s, req.ID))
	assert.True(t, strings.Contains(s, "read"))
	assert.True(t, strings.Contains(s, "2.50 MB"))
	assert.True(t, strings.Contains(s, "pending"))
}
