package goRotate

import (
	internalmetrics "github.com/MrEthical07/goRotate/internal/metrics"
)

// MetricID identifies a counter or histogram in the in-process metrics.
type MetricID = internalmetrics.MetricID

const (
	MetricLoginSuccess   = internalmetrics.MetricLoginSuccess
	MetricLoginFailure   = internalmetrics.MetricLoginFailure
	MetricRefreshSuccess = internalmetrics.MetricRefreshSuccess
	MetricRefreshFailure = internalmetrics.MetricRefreshFailure
	MetricArchiveSuccess = internalmetrics.MetricArchiveSuccess
	MetricArchiveFailure = internalmetrics.MetricArchiveFailure
	MetricLogoutSuccess  = internalmetrics.MetricLogoutSuccess
	MetricLogoutFailure  = internalmetrics.MetricLogoutFailure
	// MetricValidationRejected counts requests with malformed input.
	MetricValidationRejected = internalmetrics.MetricValidationRejected
	// MetricInvalidRefresh counts absent, incomplete or undecryptable sessions.
	MetricInvalidRefresh = internalmetrics.MetricInvalidRefresh
	// MetricTokenAlreadyUsed counts presentations of revoked or logged-out sessions.
	MetricTokenAlreadyUsed = internalmetrics.MetricTokenAlreadyUsed
	// MetricRefreshMismatch counts envelopes that did not verify against the stored hash.
	MetricRefreshMismatch  = internalmetrics.MetricRefreshMismatch
	MetricStoreUnavailable = internalmetrics.MetricStoreUnavailable
	MetricSessionCreated   = internalmetrics.MetricSessionCreated
	// MetricClaimsFallback counts access tokens minted with empty claims
	// because the permission source failed.
	MetricClaimsFallback  = internalmetrics.MetricClaimsFallback
	MetricValidateSuccess = internalmetrics.MetricValidateSuccess
	MetricValidateFailure = internalmetrics.MetricValidateFailure
	MetricRefreshLatency  = internalmetrics.MetricRefreshLatency
	MetricValidateLatency = internalmetrics.MetricValidateLatency
)

// Metrics holds atomic counters and optional latency histograms.
type Metrics = internalmetrics.Metrics

// MetricsSnapshot is a point-in-time copy of all metrics.
type MetricsSnapshot = internalmetrics.Snapshot

// NewMetrics creates a [Metrics] instance. When Enabled is false all
// operations are no-ops.
func NewMetrics(cfg MetricsConfig) *Metrics {
	return internalmetrics.New(internalmetrics.Config{
		Enabled:       cfg.Enabled,
		EnableLatency: cfg.EnableLatencyHistograms,
	})
}
