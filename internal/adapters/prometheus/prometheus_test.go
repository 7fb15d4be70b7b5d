package prometheus

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"testing"

	"github.com/netwatch-io/netwatch/internal/models"
	dto "github.com/prometheus/client_model/go"
)

func gaugeFamily(value float64) *dto.MetricFamily {
	gauge := &dto.Gauge{Value: &value}
	mt := dto.MetricType_GAUGE
	return &dto.MetricFamily{
		Type:   &mt,
		Metric: []*dto.Metric{{Gauge: gauge}},
	}
}

func TestMemoryUsagePct(t *testing.T) {
	families := map[string]*dto.MetricFamily{
		metricMemTotal:     gaugeFamily(1000),
		metricMemAvailable: gaugeFamily(250),
	}
	pct := memoryUsagePct(families)
	if pct == nil || *pct != 75 {
		t.Errorf("memoryUsagePct = %v, want 75", pct)
	}
}

func TestMemoryUsagePctMissingSeries(t *testing.T) {
	if memoryUsagePct(map[string]*dto.MetricFamily{}) != nil {
		t.Error("expected nil when series absent")
	}
}

func TestLabelsMatch(t *testing.T) {
	have := map[string]string{"device": "eth0", "fstype": "ext4"}
	if !labelsMatch(have, map[string]string{"device": "eth0"}) {
		t.Error("expected match on subset selector")
	}
	if labelsMatch(have, map[string]string{"device": "eth1"}) {
		t.Error("expected no match on differing value")
	}
}

func TestDiscoverReturnsMetricCatalogue(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; version=0.0.4")
		w.Write([]byte("node_load1{source=\"cron\"} 0.5\n"))
	}))
	defer srv.Close()

	u, err := url.Parse(srv.URL)
	if err != nil {
		t.Fatalf("parse test server url: %v", err)
	}
	port, err := strconv.Atoi(u.Port())
	if err != nil {
		t.Fatalf("parse test server port: %v", err)
	}

	infos, err := Discover(context.Background(), u.Hostname(), port, "/")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(infos) != 1 || infos[0].Name != "node_load1" {
		t.Fatalf("expected one node_load1 metric, got %+v", infos)
	}
	if len(infos[0].Labels) != 1 || infos[0].Labels[0] != "source" {
		t.Errorf("expected label %q to be discovered, got %v", "source", infos[0].Labels)
	}
}

func TestFormatCustomValueBoolean(t *testing.T) {
	cfg := models.PrometheusMetricConfig{DisplayType: "boolean"}
	if got := formatCustomValue(1, cfg); got != "true" {
		t.Errorf("formatCustomValue(1) = %q, want true", got)
	}
	if got := formatCustomValue(0, cfg); got != "false" {
		t.Errorf("formatCustomValue(0) = %q, want false", got)
	}
}
