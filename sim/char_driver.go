// Implements the character-device driver variant: stream-oriented devices
// such as keyboards and serial ports. No seeking.

package sim

import (
	"time"

	"github.com/sirupsen/logrus"
)

// CharacterDriver executes stream-oriented requests without seeking.
// Construction registers the device's connect/disconnect/data-available
// interrupt handlers.
type CharacterDriver struct {
	*deviceCore
}

// NewCharacterDriver creates a driver owning the given record and registers
// its lifecycle interrupt handlers.
func NewCharacterDriver(rec *DeviceRecord, interrupts *InterruptTable, buffers *BufferPool, clock Clock, faults FaultInjector, log logrus.FieldLogger) *CharacterDriver {
	d := &CharacterDriver{
		deviceCore: newDeviceCore(rec, interrupts, buffers, clock, faults, log),
	}
	interrupts.Register(EventName(rec.Name, EventConnect), d.onConnect)
	interrupts.Register(EventName(rec.Name, EventDisconnect), d.onDisconnect)
	interrupts.Register(EventName(rec.Name, EventDataAvailable), d.onDataAvailable)
	return d
}

func (d *CharacterDriver) onConnect(...any) {
	d.log.Info("device connected")
	d.setStatus(StatusConnected)
}

// onDisconnect flips the device to disconnected and re-triggers the raw
// DISCONNECT event so external subscribers of the raw interrupt observe the
// handler-driven change too. The re-trigger only fires on an actual
// transition, which bounds the recursion the re-trigger would otherwise
// cause.
func (d *CharacterDriver) onDisconnect(...any) {
	d.log.Info("device disconnected")

	d.mu.Lock()
	already := d.rec.Status == StatusDisconnected
	d.rec.Status = StatusDisconnected
	name := d.rec.Name
	d.mu.Unlock()

	if !already {
		d.interrupts.Trigger(EventName(name, EventDisconnect))
	}
}

func (d *CharacterDriver) onDataAvailable(args ...any) {
	size := 0.0
	if len(args) > 0 {
		if s, ok := args[0].(float64); ok {
			size = s
		}
	}
	d.log.Infof("data available: %.2f MB", size)
}

// Perform executes one character request: no seek, transfer delay from the
// device rate. A simulated fault aborts after half the transfer and raises
// an explicit <DEVICE>_ERROR interrupt with a simulated error code.
func (d *CharacterDriver) Perform(req *Request) bool {
	if !d.begin(req) {
		return false
	}
	d.setStatus(StatusBusy)

	d.mu.Lock()
	rate := d.rec.TransferRateMBps
	name := d.rec.Name
	d.mu.Unlock()

	transfer := time.Duration(req.SizeMB / rate * float64(time.Second))
	d.log.Infof("%s operation started: %.2f MB, estimated %.2fs", req.Op, req.SizeMB, transfer.Seconds())

	if d.faults.ShouldFault(KindCharacter) {
		d.clock.Sleep(transfer / 2) // partial transfer before the fault
		d.log.Errorf("operation failed: simulated I/O fault on request %s", req.ID)
		d.Complete(req, false)
		d.setStatus(StatusError)
		d.interrupts.Trigger(EventName(name, EventError), d.faults.ErrorCode(), "simulated transfer fault")
		return false
	}

	d.clock.Sleep(transfer)
	d.log.Info("operation completed successfully")
	d.Complete(req, true)
	d.setStatus(StatusConnected)
	return true
}
