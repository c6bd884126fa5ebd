// Defines the Driver contract and the deviceCore shared by the block and
// character variants: request acceptance, completion bookkeeping, and the
// completion interrupt.

package sim

import (
	"sync"

	"github.com/sirupsen/logrus"
)

// Driver executes requests against one simulated device. Implementations
// own the device record and run at most one request at a time; the device's
// busy status is the per-device exclusion flag.
type Driver interface {
	// Perform executes one request synchronously, waiting out the simulated
	// seek/transfer delay. It requires the device to be connected and
	// returns false, with no state change beyond the rejection, otherwise.
	Perform(req *Request) bool

	// Complete stamps the request's terminal status, updates the device
	// counters, releases the request's buffer allocation, and triggers the
	// <DEVICE>_OPERATION_COMPLETED interrupt.
	Complete(req *Request, success bool)

	// Status returns the device's current lifecycle status.
	Status() DeviceStatus

	// Snapshot returns the serializable view of the device record.
	Snapshot() DeviceSnapshot

	// History returns the requests this driver has accepted, in order.
	History() []*Request
}

// deviceCore holds the state and bookkeeping shared by both driver
// variants. The mutex guards the device record; it is never held across a
// simulated delay.
type deviceCore struct {
	mu         sync.Mutex
	rec        *DeviceRecord
	interrupts *InterruptTable
	buffers    *BufferPool
	clock      Clock
	faults     FaultInjector
	log        logrus.FieldLogger
	history    []*Request
}

func newDeviceCore(rec *DeviceRecord, interrupts *InterruptTable, buffers *BufferPool, clock Clock, faults FaultInjector, log logrus.FieldLogger) *deviceCore {
	return &deviceCore{
		rec:        rec,
		interrupts: interrupts,
		buffers:    buffers,
		clock:      clock,
		faults:     faults,
		log:        log.WithField("device", rec.Name),
	}
}

// begin is the common Perform preamble: reject unless connected, stamp the
// start time, move the request to in_progress, and record it in the
// driver's history.
func (c *deviceCore) begin(req *Request) bool {
	c.mu.Lock()
	if c.rec.Status != StatusConnected {
		c.mu.Unlock()
		c.log.Errorf("device not connected, rejecting request %s", req.ID)
		return false
	}
	req.StartTime = c.clock.Now()
	req.Status = RequestInProgress
	c.history = append(c.history, req)
	c.mu.Unlock()
	return true
}

// Complete implements the common completion bookkeeping for both variants.
func (c *deviceCore) Complete(req *Request, success bool) {
	now := c.clock.Now()

	c.mu.Lock()
	req.CompletionTime = now
	if success {
		req.Status = RequestCompleted
		c.rec.OperationsCompleted++
		c.rec.BytesTransferred += int64(req.SizeMB * 1024 * 1024)
		c.rec.LastOperationTime = now
	} else {
		req.Status = RequestFailed
		c.rec.ErrorCount++
	}
	name := c.rec.Name
	c.mu.Unlock()

	// Release whatever buffer the request holds; a no-op for requests that
	// never allocated.
	c.buffers.Release(req.ID)

	c.interrupts.Trigger(EventName(name, EventOperationCompleted), req, success)
}

func (c *deviceCore) Status() DeviceStatus {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.rec.Status
}

func (c *deviceCore) setStatus(s DeviceStatus) {
	c.mu.Lock()
	c.rec.Status = s
	c.mu.Unlock()
}

func (c *deviceCore) Snapshot() DeviceSnapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.rec.snapshot()
}

func (c *deviceCore) History() []*Request {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]*Request, len(c.history))
	copy(out, c.history)
	return out
}

// errorArgs extracts the optional (code, message) payload carried by an
// <DEVICE>_ERROR interrupt.
func errorArgs(args []any) (int, string) {
	code := 0
	message := "unknown error"
	if len(args) > 0 {
		if c, ok := args[0].(int); ok {
			code = c
		}
	}
	if len(args) > 1 {
		if m, ok := args[1].(string); ok {
			message = m
		}
	}
	return code, message
}
