package prometheus

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	goRotate "github.com/MrEthical07/goRotate"
	"github.com/prometheus/client_golang/prometheus"
)

type fakeSource struct {
	snapshot goRotate.MetricsSnapshot
	dropped  uint64
}

func (f fakeSource) MetricsSnapshot() goRotate.MetricsSnapshot { return f.snapshot }
func (f fakeSource) AuditDropped() uint64                      { return f.dropped }

func sampleSource() fakeSource {
	return fakeSource{
		snapshot: goRotate.MetricsSnapshot{
			Counters: map[goRotate.MetricID]uint64{
				goRotate.MetricLoginSuccess:     7,
				goRotate.MetricTokenAlreadyUsed: 2,
			},
			Histograms: map[goRotate.MetricID][]uint64{
				goRotate.MetricRefreshLatency: {1, 2, 3, 4, 5, 6, 7, 8},
			},
		},
		dropped: 2,
	}
}

func TestCollectorCountersAndHistogram(t *testing.T) {
	c := NewCollectorFromSource(sampleSource())

	reg := prometheus.NewPedanticRegistry()
	if err := reg.Register(c); err != nil {
		t.Fatalf("register: %v", err)
	}
	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}

	counters := map[string]float64{}
	var found bool
	for _, mf := range families {
		if ctr := mf.GetMetric()[0].GetCounter(); ctr != nil {
			counters[mf.GetName()] = ctr.GetValue()
		}
		if mf.GetName() != "gorotate_refresh_latency_seconds" {
			continue
		}
		found = true
		h := mf.GetMetric()[0].GetHistogram()
		if h.GetSampleCount() != 36 {
			t.Fatalf("expected 36 samples, got %d", h.GetSampleCount())
		}
		if b := h.GetBucket()[0]; b.GetUpperBound() != 0.005 || b.GetCumulativeCount() != 1 {
			t.Fatalf("unexpected first bucket %v", b)
		}
	}
	if !found {
		t.Fatal("refresh latency histogram missing")
	}
	if counters["gorotate_login_success_total"] != 7 || counters["gorotate_audit_dropped_total"] != 2 {
		t.Fatalf("unexpected counters %v", counters)
	}
	if _, ok := counters["gorotate_refresh_failure_total"]; !ok {
		t.Fatal("zero-valued counters must still be exported")
	}
}

func TestHandlerServesMetrics(t *testing.T) {
	c := NewCollectorFromSource(sampleSource())

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "gorotate_token_already_used_total 2") {
		t.Fatalf("expected counter in output, got:\n%s", rec.Body.String())
	}
}

func TestCollectorWithDisabledMetrics(t *testing.T) {
	c := NewCollectorFromSource(fakeSource{snapshot: goRotate.MetricsSnapshot{
		Counters:   map[goRotate.MetricID]uint64{},
		Histograms: map[goRotate.MetricID][]uint64{},
	}})
	reg := prometheus.NewRegistry()
	reg.MustRegister(c)
	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	for _, mf := range families {
		if mf.GetName() == "gorotate_refresh_latency_seconds" {
			t.Fatal("histogram must be absent when latency is disabled")
		}
	}
}
