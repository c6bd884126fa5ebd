// Package sim provides the core engine for the simulated I/O subsystem.
//
// # Reading Guide
//
// Start with these three files to understand the engine:
//   - device.go: the device control block (metadata + live counters) and its status machine
//   - driver.go: the Driver contract and the shared request bookkeeping core
//   - dispatch.go: the polling loop that pulls scheduled requests and drives drivers
//
// # Architecture
//
// The sim package owns all mutable simulation state; pure data types live in
// sub-packages:
//   - sim/history/: terminal request outcome records and summaries
//
// The extension points are small interfaces, injected at construction:
//   - Clock: wall time in production, a fake for deterministic tests
//   - FaultInjector: the simulated-fault coin flip (fixed probabilities by default)
//   - Driver: block and character device variants
//
// Requests flow Scheduler -> DispatchManager -> Driver. The driver allocates
// from the BufferPool, waits out the simulated seek/transfer delay on the
// Clock, and reports completion through the InterruptTable.
package sim
