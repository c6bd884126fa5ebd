// Persisted configuration document: device snapshots plus the active
// scheduling policy. The external layer owns where the document lives; this
// file owns its format and round-trip semantics.

package sim

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Config is the persisted device/policy document. Round-tripping it through
// ApplyConfig reconstructs drivers with the same identifiers, kinds,
// capacities, and rates, and re-issues connect interrupts for devices
// recorded as connected.
type Config struct {
	Policy  string           `yaml:"policy"`
	Devices []DeviceSnapshot `yaml:"devices"`
}

// ExportConfig captures the live system as a persistable document.
func (s *System) ExportConfig() Config {
	return Config{
		Policy:  string(s.Scheduler.Policy()),
		Devices: s.ListDevices(),
	}
}

// ApplyConfig rebuilds drivers from a persisted document. Devices recorded
// as connected get their CONNECT interrupt re-issued; counters are not
// restored (they describe a past run).
func (s *System) ApplyConfig(cfg Config) error {
	if cfg.Policy != "" {
		if err := s.SetPolicy(Policy(cfg.Policy)); err != nil {
			return err
		}
	}
	for _, dev := range cfg.Devices {
		if _, err := s.CreateDevice(dev.ID, dev.Name, dev.Kind, dev.CapacityGB, dev.TransferRateMBps); err != nil {
			return errors.Wrapf(err, "device %d (%s)", dev.ID, dev.Name)
		}
		if dev.Status == StatusConnected {
			s.Connect(dev.ID)
		}
	}
	return nil
}

// LoadConfig reads and parses a persisted document.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errors.Wrap(err, "read config")
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, errors.Wrap(err, "parse config")
	}
	if cfg.Policy != "" && !IsValidPolicy(cfg.Policy) {
		return Config{}, errors.Errorf("unknown scheduling policy %q", cfg.Policy)
	}
	return cfg, nil
}

// SaveConfig serializes a document to disk.
func SaveConfig(path string, cfg Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return errors.Wrap(err, "encode config")
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.Wrap(err, "write config")
	}
	return nil
}
