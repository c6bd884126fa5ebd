package cmd

import (
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	sim "github.com/iosim/iosim/sim"
)

var (
	// CLI flags for the simulated subsystem
	logLevel     string // Log verbosity level
	seed         int64  // Seed for fault and workload generation
	policy       string // Scheduling policy name
	bufferKB     int64  // Buffer pool capacity in KB
	pollInterval int64  // Dispatch loop poll interval in milliseconds
	configPath   string // Device/policy document to load
	savePath     string // Where to persist the device/policy document on exit

	// CLI flags for the synthetic workload
	numRequests int     // Number of requests to submit
	maxSizeMB   float64 // Upper bound for request sizes
	processName string  // Submitting-process label
	waitSeconds int64   // How long to wait for queues to drain
)

// rootCmd is the base command for the CLI
var rootCmd = &cobra.Command{
	Use:   "iosim",
	Short: "Simulated I/O subsystem: devices, drivers, interrupts, and scheduling",
}

// runCmd drives the subsystem end to end with a synthetic workload
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the I/O simulation",
	Run: func(cmd *cobra.Command, args []string) {
		// Set up logging
		level, err := logrus.ParseLevel(logLevel)
		if err != nil {
			logrus.Fatalf("Invalid log level: %s", logLevel)
		}
		logrus.SetLevel(level)

		if !sim.IsValidPolicy(policy) {
			logrus.Fatalf("Unknown scheduling policy: %s", policy)
		}

		sys := sim.NewSystem(
			sim.WithSeed(seed),
			sim.WithPolicy(sim.NewPolicy(policy)),
			sim.WithBufferCapacityKB(bufferKB),
			sim.WithPollInterval(time.Duration(pollInterval)*time.Millisecond),
		)

		if configPath != "" {
			cfg, err := sim.LoadConfig(configPath)
			if err != nil {
				logrus.Fatalf("unable to load device config: %v", err)
			}
			if err := sys.ApplyConfig(cfg); err != nil {
				logrus.Fatalf("unable to apply device config: %v", err)
			}
		} else {
			// Default device set: one block device, one character device
			if _, err := sys.CreateDevice(1, "USB Drive", sim.KindBlock, 128, 30); err != nil {
				logrus.Fatalf("unable to create device: %v", err)
			}
			if _, err := sys.CreateDevice(2, "Serial Console", sim.KindCharacter, 0, 5); err != nil {
				logrus.Fatalf("unable to create device: %v", err)
			}
			sys.Connect(1)
			sys.Connect(2)
		}

		sys.Subscribe(func(deviceID int, req *sim.Request, success bool) {
			logrus.Infof("completed on device %d: %s (success=%v)", deviceID, req.ID, success)
		})

		logrus.Infof("Starting simulation: %d requests, policy=%s, buffer=%dKB, seed=%d",
			numRequests, policy, bufferKB, seed)

		startTime := time.Now()
		sys.Start()

		submitWorkload(sys)

		// Wait for the queues to drain or the deadline to pass
		deadline := time.Now().Add(time.Duration(waitSeconds) * time.Second)
		for time.Now().Before(deadline) {
			if drained(sys) {
				break
			}
			time.Sleep(50 * time.Millisecond)
		}
		sys.Stop()

		stats := sys.Dispatcher.Stats()
		stats.Print(time.Since(startTime))

		if savePath != "" {
			if err := sim.SaveConfig(savePath, sys.ExportConfig()); err != nil {
				logrus.Errorf("unable to save device config: %v", err)
			}
		}

		logrus.Info("Simulation complete.")
	},
}

// submitWorkload generates and submits a random request mix across the
// registered devices, reproducible from the seed.
func submitWorkload(sys *sim.System) {
	rng := sim.NewPartitionedRNG(sim.RunKey(seed)).ForSubsystem(sim.SubsystemWorkload)
	devices := sys.ListDevices()
	if len(devices) == 0 {
		return
	}

	ops := []sim.OperationType{sim.OpRead, sim.OpWrite}
	for i := 0; i < numRequests; i++ {
		dev := devices[rng.Intn(len(devices))]
		size := 1 + rng.Float64()*(maxSizeMB-1)
		req := sys.NewRequest(ops[rng.Intn(len(ops))], size, processName, rng.Intn(10))
		if dev.Kind == sim.KindBlock {
			req = req.WithBlockAddress(rng.Int63n(1000))
		}
		sys.Submit(dev.ID, req)
	}
}

// drained reports whether every device queue is empty.
func drained(sys *sim.System) bool {
	for _, dev := range sys.ListDevices() {
		if sys.QueueLength(dev.ID) > 0 {
			return false
		}
	}
	return true
}

// Execute runs the CLI root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// init sets up CLI flags and subcommands
func init() {
	runCmd.Flags().StringVar(&logLevel, "log", "info", "Log level (trace, debug, info, warn, error, fatal, panic)")
	runCmd.Flags().Int64Var(&seed, "seed", 42, "Seed for fault and workload generation")
	runCmd.Flags().StringVar(&policy, "policy", "fifo", "Scheduling policy (fifo, priority, shortest-first, round-robin)")
	runCmd.Flags().Int64Var(&bufferKB, "buffer-kb", 2048, "Buffer pool capacity in KB")
	runCmd.Flags().Int64Var(&pollInterval, "poll-interval-ms", 100, "Dispatch loop poll interval in milliseconds")
	runCmd.Flags().StringVar(&configPath, "config", "", "Device/policy YAML document to load")
	runCmd.Flags().StringVar(&savePath, "save-config", "", "Persist the device/policy document here on exit")

	runCmd.Flags().IntVar(&numRequests, "requests", 10, "Number of requests to submit")
	runCmd.Flags().Float64Var(&maxSizeMB, "max-size-mb", 5.0, "Upper bound for request sizes in MB")
	runCmd.Flags().StringVar(&processName, "process", "workload", "Submitting-process label")
	runCmd.Flags().Int64Var(&waitSeconds, "wait", 30, "Seconds to wait for queues to drain")

	// Attach `run` as a subcommand to `root`
	rootCmd.AddCommand(runCmd)
}
