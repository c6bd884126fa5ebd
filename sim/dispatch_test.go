package sim

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// dispatchRig wires a full system against the fake clock; tests drive the
// loop body directly via pollOnce so no goroutine or wall time is involved.
type dispatchRig struct {
	sys   *System
	clock *FakeClock
}

func newDispatchRig(faults FaultInjector, policy Policy) *dispatchRig {
	clock := testClock()
	sys := NewSystem(
		WithClock(clock),
		WithFaultInjector(faults),
		WithLogger(testLogger()),
		WithBufferCapacityKB(1<<20),
		WithPolicy(policy),
	)
	return &dispatchRig{sys: sys, clock: clock}
}

func TestDispatch_EndToEnd_Success(t *testing.T) {
	// GIVEN a connected 128 GB, 30 MB/s block device and one 10 MB read at
	// priority 5, with the fault draw forced to succeed
	rig := newDispatchRig(NoFaults{}, PolicyFIFO)
	_, err := rig.sys.CreateDevice(1, "USB Drive", KindBlock, 128, 30)
	assert.NoError(t, err)
	rig.sys.Connect(1)

	var notifications []bool
	rig.sys.Subscribe(func(deviceID int, req *Request, success bool) {
		assert.Equal(t, 1, deviceID)
		notifications = append(notifications, success)
	})

	req := rig.sys.NewRequest(OpRead, 10, "TestProcess", 5)
	assert.True(t, rig.sys.Submit(1, req))

	// WHEN the dispatch loop processes the queue
	rig.sys.Dispatcher.pollOnce()

	// THEN the device returns to connected with its counters updated
	drv, _ := rig.sys.Registry.Get(1)
	assert.Equal(t, StatusConnected, drv.Status())
	snap := drv.Snapshot()
	assert.Equal(t, 1, snap.OperationsCompleted)
	assert.Equal(t, int64(10*1024*1024), snap.BytesTransferred)

	// AND exactly one completion notification fired with success
	assert.Equal(t, []bool{true}, notifications)

	// AND the outcome landed in run history
	hist := rig.sys.History(10)
	assert.Len(t, hist, 1)
	assert.Equal(t, req.ID, hist[0].RequestID)
	assert.True(t, hist[0].Success)
	assert.Equal(t, 0, rig.sys.QueueLength(1))
}

func TestDispatch_EndToEnd_ForcedFault(t *testing.T) {
	// GIVEN the same device with the fault draw forced to fail
	rig := newDispatchRig(AlwaysFault{Code: 9}, PolicyFIFO)
	rig.sys.CreateDevice(1, "USB Drive", KindBlock, 128, 30)
	rig.sys.Connect(1)

	var notifications []bool
	rig.sys.Subscribe(func(_ int, _ *Request, success bool) {
		notifications = append(notifications, success)
	})

	req := rig.sys.NewRequest(OpRead, 10, "TestProcess", 5)
	rig.sys.Submit(1, req)

	// WHEN the dispatch loop processes the queue
	rig.sys.Dispatcher.pollOnce()

	// THEN the failure branch is observable end to end
	assert.Equal(t, []bool{false}, notifications)
	drv, _ := rig.sys.Registry.Get(1)
	assert.Equal(t, StatusError, drv.Status())
	assert.Equal(t, RequestFailed, req.Status)
	assert.Equal(t, 0.0, rig.sys.SuccessRate())
}

func TestDispatch_ShortestFirst_SmallRequestWins(t *testing.T) {
	// GIVEN requests of sizes 50 and 5 under shortest-first
	rig := newDispatchRig(NoFaults{}, PolicyShortestFirst)
	rig.sys.CreateDevice(1, "USB Drive", KindBlock, 128, 30)
	rig.sys.Connect(1)

	big := rig.sys.NewRequest(OpWrite, 50, "P1", 0)
	small := rig.sys.NewRequest(OpWrite, 5, "P2", 0)
	rig.sys.Submit(1, big)
	rig.sys.Submit(1, small)

	// WHEN the loop runs until both are terminal
	rig.sys.Dispatcher.pollOnce()
	rig.sys.Dispatcher.pollOnce()

	// THEN the size-5 request was dispatched first
	hist := rig.sys.History(0)
	assert.Len(t, hist, 2)
	assert.Equal(t, small.ID, hist[0].RequestID)
	assert.Equal(t, big.ID, hist[1].RequestID)
}

func TestDispatch_SkipsBusyAndMissingDevices(t *testing.T) {
	rig := newDispatchRig(NoFaults{}, PolicyFIFO)
	rig.sys.CreateDevice(1, "USB Drive", KindBlock, 128, 30)
	// Device never connected: Perform rejects, producing a failed outcome
	req := rig.sys.NewRequest(OpRead, 1, "P", 0)
	rig.sys.Submit(1, req)

	rig.sys.Dispatcher.pollOnce()

	stats := rig.sys.Dispatcher.Stats()
	assert.Equal(t, 1, stats.Processed)
	assert.Equal(t, 1, stats.Failed)
	assert.Equal(t, RequestPending, req.Status, "rejection leaves the request unstarted")
}

func TestDispatch_ListenerPanic_Isolated(t *testing.T) {
	rig := newDispatchRig(NoFaults{}, PolicyFIFO)
	rig.sys.CreateDevice(1, "USB Drive", KindBlock, 128, 30)
	rig.sys.Connect(1)

	rig.sys.Subscribe(func(int, *Request, bool) { panic("listener blew up") })
	var secondFired bool
	rig.sys.Subscribe(func(int, *Request, bool) { secondFired = true })

	rig.sys.Submit(1, rig.sys.NewRequest(OpRead, 1, "P", 0))

	assert.NotPanics(t, func() { rig.sys.Dispatcher.pollOnce() })
	assert.True(t, secondFired, "later listeners still run after one panics")
}

func TestDispatch_ThroughputAndSuccessRate(t *testing.T) {
	rig := newDispatchRig(NoFaults{}, PolicyFIFO)
	rig.sys.CreateDevice(1, "USB Drive", KindBlock, 128, 30)
	rig.sys.Connect(1)

	// No terminal requests yet: both observations report zero
	assert.Equal(t, 0.0, rig.sys.SuccessRate())
	assert.Equal(t, 0.0, rig.sys.Throughput())

	rig.sys.Start()
	defer rig.sys.Stop()

	rig.sys.Submit(1, rig.sys.NewRequest(OpRead, 30, "P", 0))

	// The loop runs on the fake clock; wait for the outcome
	deadline := time.Now().Add(5 * time.Second)
	for rig.sys.Dispatcher.Stats().Processed == 0 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}

	assert.Equal(t, 100.0, rig.sys.SuccessRate())
	// 30 MB moved over at least 1s of virtual transfer time
	assert.Greater(t, rig.sys.Throughput(), 0.0)
}

func TestDispatch_StartStop_Lifecycle(t *testing.T) {
	sys := NewSystem(WithLogger(testLogger()), WithPollInterval(time.Millisecond))

	sys.Start()
	sys.Start() // second Start is a no-op
	sys.Stop()
	sys.Stop() // second Stop is a no-op

	// Restartable after a stop
	sys.Start()
	sys.Stop()
}
