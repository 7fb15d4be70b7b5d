// Package prometheus scrapes node_exporter-style /metrics endpoints for
// server devices opted into Prometheus monitoring (spec.md §4.2).
package prometheus

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"math"
	"net/http"
	"time"

	"github.com/netwatch-io/netwatch/internal/adapters"
	"github.com/netwatch-io/netwatch/internal/models"
	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/common/expfmt"
)

const (
	defaultPort = 9100
	defaultPath = "/metrics"
)

// Core metric names always collected regardless of CustomMetrics
// configuration (spec.md §4.2).
const (
	metricCPUSecondsTotal = "node_cpu_seconds_total"
	metricMemAvailable    = "node_memory_MemAvailable_bytes"
	metricMemTotal        = "node_memory_MemTotal_bytes"
	metricFilesystemSize  = "node_filesystem_size_bytes"
	metricFilesystemFree  = "node_filesystem_free_bytes"
	metricBootTime        = "node_boot_time_seconds"
)

// Adapter implements adapters.Adapter for Prometheus-scraped server devices.
type Adapter struct {
	HTTPClient *http.Client
}

// New returns a Prometheus Adapter with a scrape-appropriate client timeout.
func New() *Adapter {
	return &Adapter{HTTPClient: &http.Client{Timeout: 10 * time.Second}}
}

var _ adapters.Adapter = (*Adapter)(nil)

// Probe scrapes the text-exposition endpoint, computes the core metrics,
// and matches any PrometheusMetricConfig entries by exact label selector
// (spec.md §4.2).
func (a *Adapter) Probe(ctx context.Context, ipAddress string, creds models.Credentials, opts adapters.ProbeOptions) models.ProbeResult {
	pc, ok := creds.(models.PrometheusCredentials)
	if !ok {
		return models.ProbeResult{Success: false, Err: fmt.Errorf("prometheus adapter requires PrometheusCredentials, got %T", creds)}
	}

	families, err := scrape(ctx, a.HTTPClient, ipAddress, pc)
	if err != nil {
		return models.ProbeResult{Success: false, Err: fmt.Errorf("scrape %s: %w", ipAddress, err)}
	}

	data := models.DeviceData{Extra: map[string]string{}}
	data.CPUUsagePct = cpuUsagePct(families)
	data.MemoryUsagePct = memoryUsagePct(families)
	data.DiskUsagePct = diskUsagePct(families)
	data.Uptime = uptime(families)

	for _, cfg := range pc.CustomMetrics {
		if v, ok := matchCustomMetric(families, cfg); ok {
			data.Extra[cfg.MetricName] = formatCustomValue(v, cfg)
		}
	}

	return models.ProbeResult{Success: true, Data: data}
}

// MetricInfo describes one metric family a target exposes, returned by
// Discover for the external REST layer's "add custom metric" UI (spec.md
// §4.2/§6: the device-discovery endpoint a Prometheus-backed server
// device's credential configuration is validated against).
type MetricInfo struct {
	Name   string
	Type   string
	Labels []string
}

// Discover scrapes ip:port/path once and returns the catalogue of metric
// families it exposes, without computing any of Probe's derived values.
// The REST handler that serves this over HTTP is an external collaborator;
// this is the core operation spec.md §6 names.
func Discover(ctx context.Context, ip string, port int, path string) ([]MetricInfo, error) {
	pc := models.PrometheusCredentials{Port: port, Path: path}
	families, err := scrape(ctx, &http.Client{Timeout: 10 * time.Second}, ip, pc)
	if err != nil {
		return nil, err
	}

	infos := make([]MetricInfo, 0, len(families))
	for name, fam := range families {
		labelSet := map[string]struct{}{}
		for _, m := range fam.Metric {
			for _, lp := range m.Label {
				labelSet[lp.GetName()] = struct{}{}
			}
		}
		labels := make([]string, 0, len(labelSet))
		for l := range labelSet {
			labels = append(labels, l)
		}
		infos = append(infos, MetricInfo{
			Name:   name,
			Type:   fam.GetType().String(),
			Labels: labels,
		})
	}
	return infos, nil
}

func scrape(ctx context.Context, client *http.Client, ip string, pc models.PrometheusCredentials) (map[string]*dto.MetricFamily, error) {
	port := pc.Port
	if port == 0 {
		port = defaultPort
	}
	path := pc.Path
	if path == "" {
		path = defaultPath
	}
	scheme := "http"
	if pc.UseHTTPS {
		scheme = "https"
	}
	url := fmt.Sprintf("%s://%s:%d%s", scheme, ip, port, path)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("scrape %s: status %d", url, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 16<<20))
	if err != nil {
		return nil, err
	}

	var parser expfmt.TextParser
	return parser.TextToMetricFamilies(bytes.NewReader(body))
}

func cpuUsagePct(families map[string]*dto.MetricFamily) *float64 {
	fam, ok := families[metricCPUSecondsTotal]
	if !ok {
		return nil
	}
	// node_cpu_seconds_total is a counter split by (cpu, mode); "idle"
	// mode summed across cores vs. total across all modes gives the
	// instantaneous-scrape utilization estimate (spec.md §4.2).
	var idle, total float64
	for _, m := range fam.Metric {
		v := m.GetCounter().GetValue()
		total += v
		for _, lp := range m.Label {
			if lp.GetName() == "mode" && lp.GetValue() == "idle" {
				idle += v
			}
		}
	}
	if total <= 0 {
		return nil
	}
	pct := math.Round((1 - idle/total) * 100)
	return &pct
}

func memoryUsagePct(families map[string]*dto.MetricFamily) *float64 {
	total := gaugeValue(families, metricMemTotal)
	avail := gaugeValue(families, metricMemAvailable)
	if total == nil || avail == nil || *total <= 0 {
		return nil
	}
	pct := math.Round((1 - *avail / *total) * 100)
	return &pct
}

func diskUsagePct(families map[string]*dto.MetricFamily) *float64 {
	size := sumGauge(families, metricFilesystemSize)
	free := sumGauge(families, metricFilesystemFree)
	if size == nil || free == nil || *size <= 0 {
		return nil
	}
	pct := math.Round((1 - *free / *size) * 100)
	return &pct
}

func uptime(families map[string]*dto.MetricFamily) string {
	boot := gaugeValue(families, metricBootTime)
	if boot == nil {
		return ""
	}
	d := time.Since(time.Unix(int64(*boot), 0))
	if d < 0 {
		return ""
	}
	return d.Round(time.Second).String()
}

func gaugeValue(families map[string]*dto.MetricFamily, name string) *float64 {
	fam, ok := families[name]
	if !ok || len(fam.Metric) == 0 {
		return nil
	}
	v := fam.Metric[0].GetGauge().GetValue()
	return &v
}

func sumGauge(families map[string]*dto.MetricFamily, name string) *float64 {
	fam, ok := families[name]
	if !ok {
		return nil
	}
	var sum float64
	for _, m := range fam.Metric {
		sum += m.GetGauge().GetValue()
	}
	return &sum
}

// matchCustomMetric finds the first series in cfg.MetricName whose labels
// exactly satisfy cfg.LabelSelector (spec.md §4.2: "exact-match label
// constraints").
func matchCustomMetric(families map[string]*dto.MetricFamily, cfg models.PrometheusMetricConfig) (float64, bool) {
	fam, ok := families[cfg.MetricName]
	if !ok {
		return 0, false
	}
	for _, m := range fam.Metric {
		labels := make(map[string]string, len(m.Label))
		for _, lp := range m.Label {
			labels[lp.GetName()] = lp.GetValue()
		}
		if !labelsMatch(labels, cfg.LabelSelector) {
			continue
		}
		switch {
		case m.Gauge != nil:
			return m.GetGauge().GetValue(), true
		case m.Counter != nil:
			return m.GetCounter().GetValue(), true
		case m.Untyped != nil:
			return m.GetUntyped().GetValue(), true
		}
	}
	return 0, false
}

func labelsMatch(have, want map[string]string) bool {
	for k, v := range want {
		if have[k] != v {
			return false
		}
	}
	return true
}

func formatCustomValue(v float64, cfg models.PrometheusMetricConfig) string {
	switch cfg.DisplayType {
	case "boolean":
		if v != 0 {
			return "true"
		}
		return "false"
	default:
		return fmt.Sprintf("%g", v)
	}
}
