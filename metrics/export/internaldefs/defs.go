package internaldefs

import (
	goRotate "github.com/MrEthical07/goRotate"
)

type CounterDef struct {
	ID   goRotate.MetricID
	Name string
	Help string
}

type HistogramDef struct {
	ID   goRotate.MetricID
	Name string
	Help string
}

// AuditDroppedName is the counter reporting dispatcher backpressure drops.
const AuditDroppedName = "gorotate_audit_dropped_total"

var CounterDefs = []CounterDef{
	{ID: goRotate.MetricLoginSuccess, Name: "gorotate_login_success_total", Help: "Root sessions issued."},
	{ID: goRotate.MetricLoginFailure, Name: "gorotate_login_failure_total", Help: "Failed login issuances."},
	{ID: goRotate.MetricRefreshSuccess, Name: "gorotate_refresh_success_total", Help: "Child sessions issued by refresh."},
	{ID: goRotate.MetricRefreshFailure, Name: "gorotate_refresh_failure_total", Help: "Rejected refresh attempts."},
	{ID: goRotate.MetricArchiveSuccess, Name: "gorotate_archive_success_total", Help: "Sessions archived."},
	{ID: goRotate.MetricArchiveFailure, Name: "gorotate_archive_failure_total", Help: "Rejected archive attempts."},
	{ID: goRotate.MetricLogoutSuccess, Name: "gorotate_logout_success_total", Help: "Sessions logged out."},
	{ID: goRotate.MetricLogoutFailure, Name: "gorotate_logout_failure_total", Help: "Rejected logout attempts."},
	{ID: goRotate.MetricValidationRejected, Name: "gorotate_validation_rejected_total", Help: "Requests with missing or malformed input."},
	{ID: goRotate.MetricInvalidRefresh, Name: "gorotate_invalid_refresh_total", Help: "Absent, incomplete or undecryptable sessions."},
	{ID: goRotate.MetricTokenAlreadyUsed, Name: "gorotate_token_already_used_total", Help: "Presentations of revoked or logged-out sessions."},
	{ID: goRotate.MetricRefreshMismatch, Name: "gorotate_refresh_mismatch_total", Help: "Envelopes that did not verify against the stored hash."},
	{ID: goRotate.MetricStoreUnavailable, Name: "gorotate_store_unavailable_total", Help: "Operations failed by a session store outage."},
	{ID: goRotate.MetricSessionCreated, Name: "gorotate_session_created_total", Help: "Session records written."},
	{ID: goRotate.MetricClaimsFallback, Name: "gorotate_claims_fallback_total", Help: "Access tokens minted with empty claims after a permission lookup failure."},
	{ID: goRotate.MetricValidateSuccess, Name: "gorotate_validate_success_total", Help: "Accepted access tokens."},
	{ID: goRotate.MetricValidateFailure, Name: "gorotate_validate_failure_total", Help: "Rejected access tokens."},
}

var HistogramDefs = []HistogramDef{
	{ID: goRotate.MetricRefreshLatency, Name: "gorotate_refresh_latency_seconds", Help: "Refresh latency histogram."},
	{ID: goRotate.MetricValidateLatency, Name: "gorotate_validate_latency_seconds", Help: "Validate latency histogram."},
}

// HistogramUpperBounds are the finite bucket bounds in seconds. The eighth
// bucket is +Inf.
var HistogramUpperBounds = []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5}

var HistogramBoundSuffix = []string{
	"0_005",
	"0_01",
	"0_025",
	"0_05",
	"0_1",
	"0_25",
	"0_5",
	"inf",
}

// NormalizeBuckets pads or truncates raw to the fixed bucket count.
func NormalizeBuckets(raw []uint64) [8]uint64 {
	var out [8]uint64
	for i := 0; i < len(out) && i < len(raw); i++ {
		out[i] = raw[i]
	}
	return out
}

// CumulativeBuckets converts per-bucket counts into running totals.
func CumulativeBuckets(raw [8]uint64) [8]uint64 {
	var out [8]uint64
	var running uint64
	for i := 0; i < len(raw); i++ {
		running += raw[i]
		out[i] = running
	}
	return out
}
