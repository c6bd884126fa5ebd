// Implements the DriverRegistry, the device id -> driver mapping.

package sim

import (
	"sync"

	"github.com/sirupsen/logrus"
)

// DriverRegistry maps device identifiers to driver instances. Iteration
// order follows registration order; no other ordering is guaranteed.
type DriverRegistry struct {
	mu      sync.Mutex
	drivers map[int]Driver
	order   []int
	log     logrus.FieldLogger
}

// NewDriverRegistry creates an empty registry.
func NewDriverRegistry(log logrus.FieldLogger) *DriverRegistry {
	return &DriverRegistry{
		drivers: make(map[int]Driver),
		log:     log,
	}
}

// Register installs a driver for a device id, replacing any prior driver.
func (r *DriverRegistry) Register(deviceID int, d Driver) {
	r.mu.Lock()
	if _, exists := r.drivers[deviceID]; !exists {
		r.order = append(r.order, deviceID)
	}
	r.drivers[deviceID] = d
	r.mu.Unlock()

	r.log.Infof("driver registered for device %d: %s", deviceID, d.Snapshot().Name)
}

// Unregister removes the driver for a device id. Returns false if unknown.
func (r *DriverRegistry) Unregister(deviceID int) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.drivers[deviceID]; !ok {
		return false
	}
	delete(r.drivers, deviceID)
	for i, id := range r.order {
		if id == deviceID {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	r.log.Infof("driver unregistered for device %d", deviceID)
	return true
}

// Get returns the driver for a device id.
func (r *DriverRegistry) Get(deviceID int) (Driver, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.drivers[deviceID]
	return d, ok
}

// IDs returns the registered device ids in registration order.
func (r *DriverRegistry) IDs() []int {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]int, len(r.order))
	copy(out, r.order)
	return out
}

// Snapshots returns the device snapshots in registration order.
func (r *DriverRegistry) Snapshots() []DeviceSnapshot {
	r.mu.Lock()
	drivers := make([]Driver, 0, len(r.order))
	for _, id := range r.order {
		drivers = append(drivers, r.drivers[id])
	}
	r.mu.Unlock()

	out := make([]DeviceSnapshot, 0, len(drivers))
	for _, d := range drivers {
		out = append(out, d.Snapshot())
	}
	return out
}
