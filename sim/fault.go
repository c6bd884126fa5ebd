package sim

import "sync"

// Default fault probabilities per device kind. Block devices fail a little
// more often than character devices, matching mechanical seek hardware.
const (
	blockFaultProbability     = 0.05
	characterFaultProbability = 0.03
)

// FaultInjector decides whether a simulated transfer fault occurs during a
// request and supplies simulated error codes. Drivers consult it once per
// request; injecting a scripted implementation makes both outcome branches
// deterministic in tests.
type FaultInjector interface {
	ShouldFault(kind DeviceKind) bool
	ErrorCode() int
}

// RandomFaults draws faults with the default fixed probabilities from a
// seed-partitioned RNG. Safe for concurrent use.
type RandomFaults struct {
	mu  sync.Mutex
	rng *PartitionedRNG
}

// NewRandomFaults creates the default injector for the given run key.
func NewRandomFaults(key RunKey) *RandomFaults {
	return &RandomFaults{rng: NewPartitionedRNG(key)}
}

func (f *RandomFaults) ShouldFault(kind DeviceKind) bool {
	p := blockFaultProbability
	if kind == KindCharacter {
		p = characterFaultProbability
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.rng.ForSubsystem(SubsystemFaults).Float64() < p
}

// ErrorCode returns a simulated device error code in [1, 100].
func (f *RandomFaults) ErrorCode() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return 1 + f.rng.ForSubsystem(SubsystemErrorCodes).Intn(100)
}

// NoFaults never injects a fault. Used to force the success branch in tests.
type NoFaults struct{}

func (NoFaults) ShouldFault(DeviceKind) bool { return false }
func (NoFaults) ErrorCode() int              { return 0 }

// AlwaysFault injects a fault on every request. Used to force the failure
// branch in tests.
type AlwaysFault struct {
	Code int
}

func (AlwaysFault) ShouldFault(DeviceKind) bool { return true }
func (a AlwaysFault) ErrorCode() int            { return a.Code }
