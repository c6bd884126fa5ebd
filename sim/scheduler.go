// Implements the Scheduler, which holds one pending-request queue per device
// and orders dequeues according to a selectable policy.

package sim

import (
	"fmt"
	"sort"
	"sync"

	"github.com/sirupsen/logrus"
)

// Policy selects the ordering rule applied when choosing a device's next
// request.
type Policy string

const (
	// PolicyFIFO dequeues in strict arrival order.
	PolicyFIFO Policy = "fifo"
	// PolicyPriority dequeues the highest priority value first; ties break
	// by insertion order (not guaranteed stable across a policy switch).
	PolicyPriority Policy = "priority"
	// PolicyShortestFirst dequeues the minimum-size request. Each dequeue
	// drains and reinserts the rest of the queue; relative order among the
	// reinserted requests is not part of the contract.
	PolicyShortestFirst Policy = "shortest-first"
	// PolicyRoundRobin is selectable but dequeues identically to FIFO; no
	// per-process rotation is implemented.
	PolicyRoundRobin Policy = "round-robin"
)

// validPolicies maps accepted policy names. Empty defaults to FIFO.
var validPolicies = map[Policy]bool{
	PolicyFIFO:          true,
	PolicyPriority:      true,
	PolicyShortestFirst: true,
	PolicyRoundRobin:    true,
	"":                  true,
}

// IsValidPolicy returns true if the given name is a recognized policy.
func IsValidPolicy(name string) bool {
	return validPolicies[Policy(name)]
}

// NewPolicy creates a Policy by name. Empty string defaults to FIFO (for
// CLI flag default compatibility). Panics on unrecognized names.
func NewPolicy(name string) Policy {
	if !IsValidPolicy(name) {
		panic(fmt.Sprintf("unknown scheduling policy %q", name))
	}
	if name == "" {
		return PolicyFIFO
	}
	return Policy(name)
}

// Scheduler holds one pending-request queue per device id. Enqueue may be
// called concurrently from any number of submitters and interleaves safely
// with the dispatch loop's Next calls.
type Scheduler struct {
	mu     sync.Mutex
	policy Policy
	queues map[int]*RequestQueue
	log    logrus.FieldLogger
}

// NewScheduler creates a scheduler with the given active policy.
func NewScheduler(policy Policy, log logrus.FieldLogger) *Scheduler {
	if !validPolicies[policy] {
		panic(fmt.Sprintf("unknown scheduling policy %q", policy))
	}
	if policy == "" {
		policy = PolicyFIFO
	}
	return &Scheduler{
		policy: policy,
		queues: make(map[int]*RequestQueue),
		log:    log,
	}
}

// Policy returns the active policy.
func (s *Scheduler) Policy() Policy {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.policy
}

// SetPolicy switches the active policy, rebuilding every existing queue
// into the new policy's ordering while preserving contents.
func (s *Scheduler) SetPolicy(policy Policy) {
	if !validPolicies[policy] || policy == "" {
		s.log.Warnf("ignoring unknown scheduling policy %q", policy)
		return
	}

	s.mu.Lock()
	s.policy = policy
	for id, q := range s.queues {
		rebuilt := &RequestQueue{}
		pending := q.Drain()
		if policy == PolicyPriority {
			sort.SliceStable(pending, func(i, j int) bool {
				return pending[i].Priority > pending[j].Priority
			})
		}
		for _, r := range pending {
			rebuilt.Enqueue(r)
		}
		s.queues[id] = rebuilt
	}
	s.mu.Unlock()

	s.log.Infof("scheduling policy changed to %s", policy)
}

// Enqueue appends a request to the device's queue, creating the queue if
// the device has none yet.
func (s *Scheduler) Enqueue(deviceID int, req *Request) {
	s.mu.Lock()
	q, ok := s.queues[deviceID]
	if !ok {
		q = &RequestQueue{}
		s.queues[deviceID] = q
	}
	q.Enqueue(req)
	s.mu.Unlock()

	s.log.Infof("request queued for device %d: %s", deviceID, req)
}

// Next returns the device's next request under the active policy, or nil
// when the device has no queue or it is empty.
func (s *Scheduler) Next(deviceID int) *Request {
	s.mu.Lock()
	defer s.mu.Unlock()

	q, ok := s.queues[deviceID]
	if !ok || q.Len() == 0 {
		return nil
	}

	switch s.policy {
	case PolicyPriority:
		best := 0
		for i, r := range q.Items() {
			if r.Priority > q.Items()[best].Priority {
				best = i
			}
		}
		return q.RemoveAt(best)

	case PolicyShortestFirst:
		pending := q.Drain()
		shortest := 0
		for i, r := range pending {
			if r.SizeMB < pending[shortest].SizeMB {
				shortest = i
			}
		}
		next := pending[shortest]
		for i, r := range pending {
			if i != shortest {
				q.Enqueue(r)
			}
		}
		return next

	default:
		// fifo and round-robin share the arrival-order dequeue
		return q.Dequeue()
	}
}

// QueueLength reports the pending count for a device, 0 if unknown.
func (s *Scheduler) QueueLength(deviceID int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	q, ok := s.queues[deviceID]
	if !ok {
		return 0
	}
	return q.Len()
}
