// Defines the DeviceRecord, the control block holding metadata and live
// counters for one simulated device. Mutated only by its owning driver and
// by the interrupt handlers the driver registers.

package sim

import (
	"fmt"
	"time"
)

// DeviceKind distinguishes block devices (seekable, addressed) from
// character devices (stream oriented).
type DeviceKind string

const (
	KindBlock     DeviceKind = "block"
	KindCharacter DeviceKind = "character"
)

// Valid reports whether k is a recognized device kind.
func (k DeviceKind) Valid() bool {
	return k == KindBlock || k == KindCharacter
}

// DeviceStatus is the lifecycle state of a device.
type DeviceStatus string

const (
	StatusDisconnected DeviceStatus = "disconnected"
	StatusConnected    DeviceStatus = "connected"
	StatusBusy         DeviceStatus = "busy"
	StatusError        DeviceStatus = "error"
	StatusWaiting      DeviceStatus = "waiting"
)

// DeviceRecord holds per-device metadata and live counters.
// A record is created when its driver is instantiated, starts disconnected,
// and is destroyed when the driver is unregistered from the registry.
type DeviceRecord struct {
	ID               int
	Name             string
	Kind             DeviceKind
	CapacityGB       float64
	TransferRateMBps float64 // units per second, must be > 0
	Status           DeviceStatus

	CurrentPosition     int64 // head position, block devices only
	ErrorCount          int
	OperationsCompleted int
	BytesTransferred    int64
	LastOperationTime   time.Time
	CreationTime        time.Time
}

// NewDeviceRecord creates a record in the disconnected state.
func NewDeviceRecord(id int, name string, kind DeviceKind, capacityGB, rateMBps float64, clock Clock) *DeviceRecord {
	return &DeviceRecord{
		ID:               id,
		Name:             name,
		Kind:             kind,
		CapacityGB:       capacityGB,
		TransferRateMBps: rateMBps,
		Status:           StatusDisconnected,
		CreationTime:     clock.Now(),
	}
}

func (r *DeviceRecord) String() string {
	return fmt.Sprintf("Device: (ID: %d, Name: %s, Kind: %s, Status: %s)", r.ID, r.Name, r.Kind, r.Status)
}

// DeviceSnapshot is the flat, serializable view of a DeviceRecord consumed
// by the persistence layer. Field names match the persisted document format.
type DeviceSnapshot struct {
	ID                  int          `yaml:"device_id" json:"device_id"`
	Name                string       `yaml:"device_name" json:"device_name"`
	Kind                DeviceKind   `yaml:"device_type" json:"device_type"`
	CapacityGB          float64      `yaml:"capacity_gb" json:"capacity_gb"`
	TransferRateMBps    float64      `yaml:"transfer_rate_mb_s" json:"transfer_rate_mb_s"`
	Status              DeviceStatus `yaml:"status" json:"status"`
	OperationsCompleted int          `yaml:"operations_completed" json:"operations_completed"`
	BytesTransferred    int64        `yaml:"bytes_transferred" json:"bytes_transferred"`
	ErrorCount          int          `yaml:"error_count" json:"error_count"`
}

// snapshot captures the serializable fields. Callers must hold the owning
// driver's lock.
func (r *DeviceRecord) snapshot() DeviceSnapshot {
	return DeviceSnapshot{
		ID:                  r.ID,
		Name:                r.Name,
		Kind:                r.Kind,
		CapacityGB:          r.CapacityGB,
		TransferRateMBps:    r.TransferRateMBps,
		Status:              r.Status,
		OperationsCompleted: r.OperationsCompleted,
		BytesTransferred:    r.BytesTransferred,
		ErrorCount:          r.ErrorCount,
	}
}
