// Package otel binds engine metrics to OpenTelemetry observable instruments.
//
// [NewOTelExporter] registers an Int64ObservableCounter per counter and an
// Int64ObservableGauge per histogram bucket, all fed by one callback that
// reads the engine snapshot on each collection. Callers own the Meter.
package otel
