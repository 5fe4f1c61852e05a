// Package prometheus exposes engine metrics as a client_golang Collector.
//
// Register the [Collector] with any prometheus.Registerer and serve it with
// promhttp. Counter names are prefixed gorotate_*_total; the refresh and
// validate latencies are exported as native histograms of the fixed
// in-process buckets.
package prometheus
