// Package metrics provides lock-free counters and latency histograms for the
// rotation engine.
//
// Counters are stored in cache-line-padded uint64 slots and incremented
// atomically. Histograms use 8 fixed buckets (≤5ms … +Inf). Both are
// allocation-free on the write path.
//
// Export (Prometheus, OTel) lives in metrics/export/ and reads Snapshot
// values; this package performs no I/O.
package metrics
