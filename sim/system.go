// Wires the subsystem together: one buffer pool, interrupt table, driver
// registry, scheduler, and dispatch manager behind a single facade.

package sim

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/iosim/iosim/sim/history"
)

// Defaults applied when no option overrides them.
const (
	defaultBufferCapacityKB = 1024
	defaultHistoryLimit     = 1000
	defaultRunKey           = RunKey(42)
)

type options struct {
	clock            Clock
	faults           FaultInjector
	log              logrus.FieldLogger
	bufferCapacityKB int64
	policy           Policy
	pollInterval     time.Duration
	historyLimit     int
}

// Option customizes System construction.
type Option func(*options)

// WithClock injects the clock (a FakeClock makes runs deterministic).
func WithClock(c Clock) Option { return func(o *options) { o.clock = c } }

// WithFaultInjector replaces the default fixed-probability fault draws.
func WithFaultInjector(f FaultInjector) Option { return func(o *options) { o.faults = f } }

// WithLogger injects the logger handed to every component.
func WithLogger(l logrus.FieldLogger) Option { return func(o *options) { o.log = l } }

// WithBufferCapacityKB sets the buffer pool capacity.
func WithBufferCapacityKB(kb int64) Option { return func(o *options) { o.bufferCapacityKB = kb } }

// WithPolicy sets the initial scheduling policy.
func WithPolicy(p Policy) Option { return func(o *options) { o.policy = p } }

// WithPollInterval sets the dispatch loop sleep between iterations.
func WithPollInterval(d time.Duration) Option { return func(o *options) { o.pollInterval = d } }

// WithHistoryLimit caps the run history (<= 0 for unbounded).
func WithHistoryLimit(n int) Option { return func(o *options) { o.historyLimit = n } }

// WithSeed selects the run key for the default fault injector. Ignored when
// WithFaultInjector is also given.
func WithSeed(seed int64) Option {
	return func(o *options) { o.faults = NewRandomFaults(RunKey(seed)) }
}

// System is the external surface of the simulated I/O subsystem: device
// lifecycle, request submission, policy control, and observation.
type System struct {
	Buffers    *BufferPool
	Interrupts *InterruptTable
	Registry   *DriverRegistry
	Scheduler  *Scheduler
	Dispatcher *DispatchManager

	clock  Clock
	faults FaultInjector
	log    logrus.FieldLogger
}

// NewSystem constructs a fully wired subsystem.
func NewSystem(opts ...Option) *System {
	o := options{
		clock:            WallClock{},
		log:              logrus.StandardLogger(),
		bufferCapacityKB: defaultBufferCapacityKB,
		policy:           PolicyFIFO,
		historyLimit:     defaultHistoryLimit,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.faults == nil {
		o.faults = NewRandomFaults(defaultRunKey)
	}

	buffers := NewBufferPool(o.bufferCapacityKB, o.log)
	interrupts := NewInterruptTable(o.clock, o.log)
	registry := NewDriverRegistry(o.log)
	scheduler := NewScheduler(o.policy, o.log)
	dispatcher := NewDispatchManager(registry, scheduler, o.clock, o.pollInterval, o.historyLimit, o.log)

	return &System{
		Buffers:    buffers,
		Interrupts: interrupts,
		Registry:   registry,
		Scheduler:  scheduler,
		Dispatcher: dispatcher,
		clock:      o.clock,
		faults:     o.faults,
		log:        o.log,
	}
}

// CreateDevice instantiates the driver variant for the kind, owning a fresh
// disconnected device record, and registers it.
func (s *System) CreateDevice(id int, name string, kind DeviceKind, capacityGB, rateMBps float64) (Driver, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("unknown device kind %q", kind)
	}
	if rateMBps <= 0 {
		return nil, fmt.Errorf("transfer rate must be positive, got %v", rateMBps)
	}

	rec := NewDeviceRecord(id, name, kind, capacityGB, rateMBps, s.clock)
	var drv Driver
	switch kind {
	case KindBlock:
		drv = NewBlockDriver(rec, s.Interrupts, s.Buffers, s.clock, s.faults, s.log)
	case KindCharacter:
		drv = NewCharacterDriver(rec, s.Interrupts, s.Buffers, s.clock, s.faults, s.log)
	}
	s.Registry.Register(id, drv)
	return drv, nil
}

// RemoveDevice unregisters a device's driver, destroying its record.
func (s *System) RemoveDevice(id int) bool {
	return s.Registry.Unregister(id)
}

// Connect raises the device's CONNECT interrupt. Returns false for unknown ids.
func (s *System) Connect(id int) bool {
	return s.raise(id, EventConnect)
}

// Disconnect raises the device's DISCONNECT interrupt. Returns false for
// unknown ids.
func (s *System) Disconnect(id int) bool {
	return s.raise(id, EventDisconnect)
}

// RaiseError raises the device's ERROR interrupt with a code and message.
// Returns false for unknown ids.
func (s *System) RaiseError(id int, code int, message string) bool {
	drv, ok := s.Registry.Get(id)
	if !ok {
		return false
	}
	s.Interrupts.Trigger(EventName(drv.Snapshot().Name, EventError), code, message)
	return true
}

func (s *System) raise(id int, suffix string) bool {
	drv, ok := s.Registry.Get(id)
	if !ok {
		return false
	}
	s.Interrupts.Trigger(EventName(drv.Snapshot().Name, suffix))
	return true
}

// NewRequest creates a pending request stamped by the system clock.
func (s *System) NewRequest(op OperationType, sizeMB float64, process string, priority int) *Request {
	return NewRequest(s.clock, op, sizeMB, process, priority)
}

// Submit enqueues a request for a registered device. Returns false, leaving
// the request unqueued, when the device id is unknown.
func (s *System) Submit(deviceID int, req *Request) bool {
	if _, ok := s.Registry.Get(deviceID); !ok {
		s.log.Warnf("submit refused: unknown device %d", deviceID)
		return false
	}
	s.Dispatcher.Submit(deviceID, req)
	return true
}

// SetPolicy switches the scheduling policy.
func (s *System) SetPolicy(p Policy) error {
	if !IsValidPolicy(string(p)) || p == "" {
		return fmt.Errorf("unknown scheduling policy %q", p)
	}
	s.Scheduler.SetPolicy(p)
	return nil
}

// QueueLength reports a device's pending count.
func (s *System) QueueLength(deviceID int) int {
	return s.Scheduler.QueueLength(deviceID)
}

// ListDevices returns device snapshots in registration order.
func (s *System) ListDevices() []DeviceSnapshot {
	return s.Registry.Snapshots()
}

// Throughput returns MB moved per second since the dispatcher started.
func (s *System) Throughput() float64 {
	return s.Dispatcher.Throughput()
}

// SuccessRate returns the terminal-success percentage.
func (s *System) SuccessRate() float64 {
	return s.Dispatcher.SuccessRate()
}

// History returns the last n outcome records.
func (s *System) History(n int) []history.OutcomeRecord {
	return s.Dispatcher.History(n)
}

// BufferUsagePercent reports the buffer pool utilization.
func (s *System) BufferUsagePercent() float64 {
	return s.Buffers.UsagePercent()
}

// Subscribe registers a completion listener.
func (s *System) Subscribe(l Listener) {
	s.Dispatcher.Subscribe(l)
}

// Start launches the dispatch loop.
func (s *System) Start() {
	s.Dispatcher.Start()
}

// Stop halts the dispatch loop.
func (s *System) Stop() {
	s.Dispatcher.Stop()
}
