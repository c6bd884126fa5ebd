// Defines the Request struct that models one queued I/O operation.
// Tracks operation kind, size, priority, and creation/start/completion
// timestamps through the pending -> in_progress -> completed|failed lifecycle.

package sim

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// OperationType is the kind of I/O a request performs.
type OperationType string

const (
	OpRead    OperationType = "read"
	OpWrite   OperationType = "write"
	OpControl OperationType = "control"
	OpSeek    OperationType = "seek"
)

// RequestStatus is the lifecycle state of a request.
type RequestStatus string

const (
	RequestPending    RequestStatus = "pending"
	RequestInProgress RequestStatus = "in_progress"
	RequestCompleted  RequestStatus = "completed"
	RequestFailed     RequestStatus = "failed"
)

// Request models a single I/O operation. The Scheduler owns it until
// dequeued, the Driver owns it until a terminal status, after which it is
// retained read-only in run history.
type Request struct {
	ID       string // unique within a run
	Op       OperationType
	SizeMB   float64 // positive
	Process  string  // submitting-process label
	Priority int     // larger = more urgent

	// BlockAddress is the target block for block devices; nil means no seek.
	BlockAddress *int64

	CreationTime   time.Time // stamped at construction
	StartTime      time.Time // stamped when the driver accepts the request
	CompletionTime time.Time // stamped at terminal status

	Status RequestStatus
}

// NewRequest creates a pending request with a generated identifier.
// The short 8-character UUID prefix keeps logs readable and stays
// collision-free within a run.
func NewRequest(clock Clock, op OperationType, sizeMB float64, process string, priority int) *Request {
	return &Request{
		ID:           uuid.NewString()[:8],
		Op:           op,
		SizeMB:       sizeMB,
		Process:      process,
		Priority:     priority,
		CreationTime: clock.Now(),
		Status:       RequestPending,
	}
}

// WithBlockAddress sets the target block address and returns the request,
// for chaining at construction.
func (r *Request) WithBlockAddress(addr int64) *Request {
	r.BlockAddress = &addr
	return r
}

func (r *Request) String() string {
	return fmt.Sprintf("Request: (ID: %s, Op: %s, Size: %.2f MB, Process: %s, Priority: %d, Status: %s)",
		r.ID, r.Op, r.SizeMB, r.Process, r.Priority, r.Status)
}
