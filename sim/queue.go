// Implements the RequestQueue, the pending-request collection for one device.
// The Scheduler holds one per device id and applies its policy on dequeue.

package sim

import (
	"fmt"
	"strings"
)

// RequestQueue is an ordered collection of pending requests for one device.
// Ordering on insert is arrival order; the scheduling policy decides which
// element leaves first.
type RequestQueue struct {
	queue []*Request
}

// Enqueue adds a request to the back of the queue.
func (q *RequestQueue) Enqueue(r *Request) {
	q.queue = append(q.queue, r)
}

// Len returns the number of pending requests.
func (q *RequestQueue) Len() int {
	return len(q.queue)
}

// Dequeue removes and returns the front request, or nil if empty.
func (q *RequestQueue) Dequeue() *Request {
	if len(q.queue) == 0 {
		return nil
	}
	r := q.queue[0]
	q.queue = q.queue[1:]
	return r
}

// RemoveAt removes and returns the request at index i.
// Remaining requests keep their relative order.
func (q *RequestQueue) RemoveAt(i int) *Request {
	if i < 0 || i >= len(q.queue) {
		return nil
	}
	r := q.queue[i]
	q.queue = append(q.queue[:i], q.queue[i+1:]...)
	return r
}

// Drain removes and returns all pending requests in queue order.
func (q *RequestQueue) Drain() []*Request {
	out := q.queue
	q.queue = nil
	return out
}

// Items returns the queue contents for iteration. The returned slice is the
// queue's internal storage -- callers within the sim package may iterate
// over it but MUST NOT append to or reslice it.
func (q *RequestQueue) Items() []*Request {
	return q.queue
}

func (q *RequestQueue) String() string {
	var sb strings.Builder
	sb.WriteString("[")
	for i, r := range q.queue {
		sb.WriteString(fmt.Sprint(r))
		if i < len(q.queue)-1 {
			sb.WriteString(" ")
		}
	}
	sb.WriteString("]")
	return sb.String()
}
