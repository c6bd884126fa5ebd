// Implements the DispatchManager, the control loop that pulls scheduled
// requests and drives device drivers synchronously.

package sim

import (
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/iosim/iosim/sim/history"
)

// Default loop timings: a short sleep between iterations, a longer back-off
// after an unexpected iteration failure.
const (
	defaultPollInterval    = 100 * time.Millisecond
	defaultBackoffInterval = time.Second
)

// Listener receives every terminal request outcome the dispatch loop
// produces. A panicking listener is logged and isolated.
type Listener func(deviceID int, req *Request, success bool)

// DispatchManager runs the polling loop: for every registered device that
// is present and not busy, pull the scheduler's next request and invoke the
// driver synchronously. The loop waits out each request's full simulated
// delay before moving to the next device in the same iteration; devices are
// polled serially.
type DispatchManager struct {
	registry  *DriverRegistry
	scheduler *Scheduler
	clock     Clock
	log       logrus.FieldLogger

	pollInterval    time.Duration
	backoffInterval time.Duration

	outcomes *history.Log

	mu        sync.Mutex
	listeners []Listener
	stats     Stats
	running   bool
	stopCh    chan struct{}
	doneCh    chan struct{}
}

// NewDispatchManager wires the loop to a registry and scheduler. A
// non-positive pollInterval selects the default. historyLimit caps the run
// history (<= 0 for unbounded).
func NewDispatchManager(registry *DriverRegistry, scheduler *Scheduler, clock Clock, pollInterval time.Duration, historyLimit int, log logrus.FieldLogger) *DispatchManager {
	if pollInterval <= 0 {
		pollInterval = defaultPollInterval
	}
	return &DispatchManager{
		registry:        registry,
		scheduler:       scheduler,
		clock:           clock,
		log:             log,
		pollInterval:    pollInterval,
		backoffInterval: defaultBackoffInterval,
		outcomes:        history.NewLog(historyLimit),
	}
}

// Start launches the background loop. Starting a running manager is a no-op.
func (m *DispatchManager) Start() {
	m.mu.Lock()
	if m.running {
		m.mu.Unlock()
		return
	}
	m.running = true
	m.stats.StartTime = m.clock.Now()
	m.stopCh = make(chan struct{})
	m.doneCh = make(chan struct{})
	stop, done := m.stopCh, m.doneCh
	m.mu.Unlock()

	m.log.Info("dispatch manager started")
	go m.loop(stop, done)
}

// Stop halts the polling loop and waits for it to exit. A request already
// inside a driver's Perform is not aborted; the loop exits after it
// returns. Stopping a stopped manager is a no-op.
func (m *DispatchManager) Stop() {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return
	}
	m.running = false
	close(m.stopCh)
	done := m.doneCh
	m.mu.Unlock()

	m.log.Info("stopping dispatch manager")
	<-done
}

func (m *DispatchManager) loop(stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	for {
		select {
		case <-stop:
			return
		default:
		}
		if err := m.safePoll(); err != nil {
			m.log.Errorf("dispatch iteration failed: %v", err)
			m.clock.Sleep(m.backoffInterval)
			continue
		}
		m.clock.Sleep(m.pollInterval)
	}
}

// safePoll runs one iteration, converting an unexpected panic into an error
// so the loop backs off and continues instead of crashing the process.
func (m *DispatchManager) safePoll() (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("dispatch iteration panicked: %v", r)
		}
	}()
	m.pollOnce()
	return nil
}

// pollOnce visits every registered device once: skip missing drivers and
// busy devices, pull the next eligible request, drive it to a terminal
// status, and fan out the outcome.
func (m *DispatchManager) pollOnce() {
	for _, deviceID := range m.registry.IDs() {
		drv, ok := m.registry.Get(deviceID)
		if !ok || drv.Status() == StatusBusy {
			continue
		}

		req := m.scheduler.Next(deviceID)
		if req == nil {
			continue
		}

		success := drv.Perform(req)

		m.mu.Lock()
		m.stats.Processed++
		if success {
			m.stats.Succeeded++
			m.stats.TotalDataMB += req.SizeMB
		} else {
			m.stats.Failed++
		}
		listeners := make([]Listener, len(m.listeners))
		copy(listeners, m.listeners)
		m.mu.Unlock()

		m.outcomes.Append(history.OutcomeRecord{
			RequestID:      req.ID,
			DeviceID:       deviceID,
			DeviceName:     drv.Snapshot().Name,
			Operation:      string(req.Op),
			SizeMB:         req.SizeMB,
			Process:        req.Process,
			Priority:       req.Priority,
			CreationTime:   req.CreationTime,
			StartTime:      req.StartTime,
			CompletionTime: req.CompletionTime,
			Status:         string(req.Status),
			Success:        success,
		})

		for _, l := range listeners {
			m.notify(l, deviceID, req, success)
		}
	}
}

// notify invokes one listener, isolating any panic it raises.
func (m *DispatchManager) notify(l Listener, deviceID int, req *Request, success bool) {
	defer func() {
		if r := recover(); r != nil {
			m.log.Errorf("completion listener failed: %v", r)
		}
	}()
	l(deviceID, req, success)
}

// Submit enqueues a request for a device. Safe from any goroutine.
func (m *DispatchManager) Submit(deviceID int, req *Request) {
	m.scheduler.Enqueue(deviceID, req)
}

// Subscribe registers a listener for every terminal request outcome.
func (m *DispatchManager) Subscribe(l Listener) {
	m.mu.Lock()
	m.listeners = append(m.listeners, l)
	m.mu.Unlock()
}

// Throughput returns data moved per second of wall time since Start, 0
// before the first Start.
func (m *DispatchManager) Throughput() float64 {
	m.mu.Lock()
	start := m.stats.StartTime
	moved := m.stats.TotalDataMB
	m.mu.Unlock()

	if start.IsZero() {
		return 0
	}
	elapsed := m.clock.Now().Sub(start).Seconds()
	if elapsed <= 0 {
		return 0
	}
	return moved / elapsed
}

// SuccessRate returns succeeded/(succeeded+failed) as a percentage, 0 when
// no request has reached a terminal status.
func (m *DispatchManager) SuccessRate() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	total := m.stats.Succeeded + m.stats.Failed
	if total == 0 {
		return 0
	}
	return float64(m.stats.Succeeded) / float64(total) * 100
}

// Stats returns a copy of the aggregate counters.
func (m *DispatchManager) Stats() Stats {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stats
}

// History returns the last n outcome records (n <= 0 for all retained).
func (m *DispatchManager) History(n int) []history.OutcomeRecord {
	return m.outcomes.Last(n)
}
