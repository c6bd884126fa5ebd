package sim

import (
	"io"
	"time"

	"github.com/sirupsen/logrus"
)

// testLogger returns a logger that discards output so tests stay quiet.
func testLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

// testClock returns a FakeClock at a fixed instant.
func testClock() *FakeClock {
	return NewFakeClock(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
}

// deviceRig bundles the components a driver test needs.
type deviceRig struct {
	clock      *FakeClock
	interrupts *InterruptTable
	buffers    *BufferPool
}

func newDeviceRig(bufferKB int64) *deviceRig {
	clock := testClock()
	log := testLogger()
	return &deviceRig{
		clock:      clock,
		interrupts: NewInterruptTable(clock, log),
		buffers:    NewBufferPool(bufferKB, log),
	}
}

func (r *deviceRig) blockDriver(name string, capacityGB, rateMBps float64, faults FaultInjector) *BlockDriver {
	rec := NewDeviceRecord(1, name, KindBlock, capacityGB, rateMBps, r.clock)
	return NewBlockDriver(rec, r.interrupts, r.buffers, r.clock, faults, testLogger())
}

func (r *deviceRig) charDriver(name string, rateMBps float64, faults FaultInjector) *CharacterDriver {
	rec := NewDeviceRecord(2, name, KindCharacter, 0, rateMBps, r.clock)
	return NewCharacterDriver(rec, r.interrupts, r.buffers, r.clock, faults, testLogger())
}

// pendingRequest builds a pending request without going through a System.
func pendingRequest(clock Clock, op OperationType, sizeMB float64, priority int) *Request {
	return NewRequest(clock, op, sizeMB, "test-process", priority)
}
