// Implements the InterruptTable, which maps named event identifiers to
// registered handler callbacks and records trigger history and counters.

package sim

import (
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// Well-known event suffixes combined with a device name by EventName.
const (
	EventConnect            = "CONNECT"
	EventDisconnect         = "DISCONNECT"
	EventError              = "ERROR"
	EventDataAvailable      = "DATA_AVAILABLE"
	EventOperationCompleted = "OPERATION_COMPLETED"
)

// EventName builds the interrupt identifier for a device event:
// the device name upper-cased with spaces replaced by underscores, then
// "_<suffix>". External tooling issues raw interrupts by this convention,
// so the format must not change.
func EventName(deviceName, suffix string) string {
	return strings.ReplaceAll(strings.ToUpper(deviceName), " ", "_") + "_" + suffix
}

// Handler is an interrupt service callback. Payload arguments are those
// passed to Trigger. A panicking handler is isolated and logged; it never
// propagates to the Trigger caller.
type Handler func(args ...any)

// InterruptRecord is one entry in the chronological trigger history.
type InterruptRecord struct {
	Type string
	Time time.Time
	Args []any
}

// InterruptStats holds the running counters for one registered event.
type InterruptStats struct {
	Count         int
	LastTriggered time.Time
}

// InterruptTable maps event names to at most one handler each and retains
// trigger history and per-event counters for introspection.
type InterruptTable struct {
	mu       sync.Mutex
	handlers map[string]Handler
	stats    map[string]*InterruptStats
	history  []InterruptRecord
	clock    Clock
	log      logrus.FieldLogger
}

// NewInterruptTable creates an empty table.
func NewInterruptTable(clock Clock, log logrus.FieldLogger) *InterruptTable {
	return &InterruptTable{
		handlers: make(map[string]Handler),
		stats:    make(map[string]*InterruptStats),
		clock:    clock,
		log:      log,
	}
}

// Register installs a handler for an event, silently replacing any prior
// handler and resetting the event's counters. At most one handler exists
// per event.
func (t *InterruptTable) Register(event string, h Handler) {
	t.mu.Lock()
	t.handlers[event] = h
	t.stats[event] = &InterruptStats{}
	t.mu.Unlock()
	t.log.Infof("handler registered for interrupt: %s", event)
}

// Trigger dispatches an event. The history entry is always appended and a
// registered event's counter always incremented, whether or not the handler
// succeeds. Triggering an unregistered event is a non-fatal warning.
func (t *InterruptTable) Trigger(event string, args ...any) {
	t.log.Infof("interrupt triggered: %s", event)
	now := t.clock.Now()

	t.mu.Lock()
	t.history = append(t.history, InterruptRecord{Type: event, Time: now, Args: args})
	if st, ok := t.stats[event]; ok {
		st.Count++
		st.LastTriggered = now
	}
	handler := t.handlers[event]
	t.mu.Unlock()

	if handler == nil {
		t.log.Warnf("no handler registered for interrupt: %s", event)
		return
	}
	t.invoke(event, handler, args)
}

// invoke runs a handler, isolating any panic it raises.
func (t *InterruptTable) invoke(event string, handler Handler, args []any) {
	defer func() {
		if r := recover(); r != nil {
			t.log.Errorf("interrupt handler for %s failed: %v", event, r)
		}
	}()
	handler(args...)
}

// Stats returns the counters for an event and whether the event has a
// registration.
func (t *InterruptTable) Stats(event string) (InterruptStats, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	st, ok := t.stats[event]
	if !ok {
		return InterruptStats{}, false
	}
	return *st, true
}

// History returns a copy of the chronological trigger history.
func (t *InterruptTable) History() []InterruptRecord {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]InterruptRecord, len(t.history))
	copy(out, t.history)
	return out
}
