// Implements the BufferPool, the bounded simulated buffer space consumed
// for the duration of one request's execution.

package sim

import (
	"sync"

	"github.com/sirupsen/logrus"
)

// BufferPool tracks a bounded capacity and per-request allocations.
// Allocation is atomic: a request that does not fit is refused outright and
// pool state is unchanged. Refusal is a normal outcome, not an error.
//
// The pool carries its own mutex so allocate/release stay atomic across
// devices even if drivers run on independent goroutines.
type BufferPool struct {
	mu          sync.Mutex
	capacityKB  int64
	usedKB      int64
	allocations map[string]int64 // request ID -> allocated KB
	log         logrus.FieldLogger
}

// NewBufferPool creates a pool with the given capacity in KB.
func NewBufferPool(capacityKB int64, log logrus.FieldLogger) *BufferPool {
	return &BufferPool{
		capacityKB:  capacityKB,
		allocations: make(map[string]int64),
		log:         log,
	}
}

// Allocate reserves buffer space for a request, sized in MB at the API edge
// like the rest of the request path. Returns false, changing nothing, when
// the space does not fit or the request already holds an allocation.
func (p *BufferPool) Allocate(sizeMB float64, requestID string) bool {
	sizeKB := int64(sizeMB * 1024)

	p.mu.Lock()
	defer p.mu.Unlock()

	if _, exists := p.allocations[requestID]; exists {
		p.log.Warnf("buffer allocation refused: request %s already holds an allocation", requestID)
		return false
	}
	if p.usedKB+sizeKB > p.capacityKB {
		p.log.Warnf("buffer allocation refused: no space for %d KB (used %d/%d KB)", sizeKB, p.usedKB, p.capacityKB)
		return false
	}

	p.usedKB += sizeKB
	p.allocations[requestID] = sizeKB
	p.log.Debugf("buffer allocated: %d KB for request %s", sizeKB, requestID)
	return true
}

// Release frees the allocation held by a request. Returns false if the
// request holds none.
func (p *BufferPool) Release(requestID string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	sizeKB, ok := p.allocations[requestID]
	if !ok {
		return false
	}
	p.usedKB -= sizeKB
	delete(p.allocations, requestID)
	p.log.Debugf("buffer released for request %s", requestID)
	return true
}

// UsagePercent returns used/capacity as a percentage, 0 when capacity is 0.
func (p *BufferPool) UsagePercent() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.capacityKB == 0 {
		return 0
	}
	return float64(p.usedKB) / float64(p.capacityKB) * 100
}

// UsedKB returns the currently reserved space.
func (p *BufferPool) UsedKB() int64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.usedKB
}

// CapacityKB returns the pool capacity.
func (p *BufferPool) CapacityKB() int64 {
	return p.capacityKB
}
