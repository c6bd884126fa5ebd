// Implements the block-device driver variant: seekable, addressed devices
// such as disks and flash drives.

package sim

import (
	"time"

	"github.com/sirupsen/logrus"
)

// Seek cost per unit of head distance.
const seekTimePerBlock = time.Millisecond

// BlockDriver executes block-oriented requests with seek simulation.
// Construction registers the device's connect/disconnect/error interrupt
// handlers, so external tooling can flip device state by raw interrupt.
type BlockDriver struct {
	*deviceCore
}

// NewBlockDriver creates a driver owning the given record and registers its
// lifecycle interrupt handlers.
func NewBlockDriver(rec *DeviceRecord, interrupts *InterruptTable, buffers *BufferPool, clock Clock, faults FaultInjector, log logrus.FieldLogger) *BlockDriver {
	d := &BlockDriver{
		deviceCore: newDeviceCore(rec, interrupts, buffers, clock, faults, log),
	}
	interrupts.Register(EventName(rec.Name, EventConnect), d.onConnect)
	interrupts.Register(EventName(rec.Name, EventDisconnect), d.onDisconnect)
	interrupts.Register(EventName(rec.Name, EventError), d.onError)
	return d
}

func (d *BlockDriver) onConnect(...any) {
	d.log.Info("device connected")
	d.setStatus(StatusConnected)
}

func (d *BlockDriver) onDisconnect(...any) {
	d.log.Info("device disconnected")
	d.setStatus(StatusDisconnected)
}

func (d *BlockDriver) onError(args ...any) {
	code, message := errorArgs(args)
	d.log.Errorf("device error: %s (code: %d)", message, code)
	d.mu.Lock()
	d.rec.Status = StatusError
	d.rec.ErrorCount++
	d.mu.Unlock()
}

// Perform executes one block request: allocate a buffer, seek if a target
// block address is given, wait out the transfer delay, and complete. A
// simulated fault aborts after roughly one third of the transfer.
func (d *BlockDriver) Perform(req *Request) bool {
	if !d.begin(req) {
		return false
	}
	d.setStatus(StatusBusy)

	if !d.buffers.Allocate(req.SizeMB, req.ID) {
		d.log.Errorf("buffer allocation failed for request %s", req.ID)
		d.Complete(req, false)
		d.setStatus(StatusError)
		return false
	}

	d.mu.Lock()
	var seek time.Duration
	if req.BlockAddress != nil {
		distance := d.rec.CurrentPosition - *req.BlockAddress
		if distance < 0 {
			distance = -distance
		}
		seek = time.Duration(distance) * seekTimePerBlock
		d.rec.CurrentPosition = *req.BlockAddress
	}
	rate := d.rec.TransferRateMBps
	d.mu.Unlock()

	if seek > 0 {
		d.clock.Sleep(seek)
	}

	transfer := time.Duration(req.SizeMB / rate * float64(time.Second))
	d.log.Infof("%s operation started: %.2f MB, estimated %.2fs", req.Op, req.SizeMB, transfer.Seconds())

	if d.faults.ShouldFault(KindBlock) {
		d.clock.Sleep(transfer / 3) // partial transfer before the fault
		d.log.Errorf("operation failed: simulated I/O fault on request %s", req.ID)
		d.Complete(req, false)
		d.setStatus(StatusError)
		return false
	}

	d.clock.Sleep(transfer)
	d.log.Info("operation completed successfully")
	d.Complete(req, true)
	d.setStatus(StatusConnected)
	return true
}
