// Package internal holds the engine's private sub-packages.
//
// # Sub-packages
//
//   - audit: async event dispatch (Dispatcher + Sink implementations)
//   - flows: operation orchestrators for every Engine method
//   - metrics: lock-free counters and latency histograms
//   - app: the rotated service wiring (config, logging, stores, HTTP)
package internal
