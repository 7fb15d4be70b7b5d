// Package routeros probes MikroTik RouterOS devices over the binary API
// protocol (spec.md §4.2).
package routeros

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/go-routeros/routeros/v3"
	"github.com/netwatch-io/netwatch/internal/adapters"
	"github.com/netwatch-io/netwatch/internal/models"
	"github.com/rs/zerolog/log"
)

// defaultAPIPort is the RouterOS API port (spec.md §4.2).
const defaultAPIPort = 8728

// Adapter implements adapters.Adapter for mikrotik_router/mikrotik_switch
// devices.
type Adapter struct{}

// New returns a RouterOS Adapter.
func New() *Adapter { return &Adapter{} }

var _ adapters.Adapter = (*Adapter)(nil)

// Probe connects over the RouterOS API, fetches identity/resources/
// interfaces, and — when opts.Detailed — additionally samples per-interface
// link speed via the monitor-traffic command (spec.md §4.2).
func (a *Adapter) Probe(ctx context.Context, ipAddress string, creds models.Credentials, opts adapters.ProbeOptions) models.ProbeResult {
	mc, ok := creds.(models.MikrotikCredentials)
	if !ok {
		return models.ProbeResult{Success: false, Err: fmt.Errorf("routeros adapter requires MikrotikCredentials, got %T", creds)}
	}
	port := mc.APIPort
	if port == 0 {
		port = defaultAPIPort
	}

	client, err := dial(ctx, fmt.Sprintf("%s:%d", ipAddress, port), mc.Username, mc.Password)
	if err != nil {
		return models.ProbeResult{Success: false, Err: fmt.Errorf("dial routeros %s: %w", ipAddress, err)}
	}
	// The deadline-expiry path abandons this result without calling Close;
	// Close must therefore be safe to race with that abandonment (spec.md
	// §5). routeros.Client.Close is idempotent against a single in-flight
	// command and does not panic on a connection the caller stops reading
	// from.
	defer client.Close()

	data := models.DeviceData{Extra: map[string]string{}}

	if identity, err := client.Run("/system/identity/print"); err == nil && len(identity.Re) > 0 {
		data.Identity = identity.Re[0].Map["name"]
	}

	if resources, err := client.Run("/system/resource/print"); err == nil && len(resources.Re) > 0 {
		row := resources.Re[0].Map
		data.Model = row["board-name"]
		data.Version = row["version"]
		data.Uptime = row["uptime"]
		data.CPUUsagePct = parsePercentField(row["cpu-load"])
		data.MemoryUsagePct = memoryUsagePct(row["total-memory"], row["free-memory"])
	}

	ports, interfaces, err := fetchPorts(client)
	if err != nil {
		return models.ProbeResult{Success: false, Err: fmt.Errorf("fetch interfaces: %w", err)}
	}

	speeds := map[string]string{}
	var counters map[string]models.InterfaceCounterSample
	if opts.Detailed {
		speeds = sampleLinkSpeeds(client, interfaces)
		counters = interfaceCounters(interfaces)
	}

	for i := range ports {
		ports[i].Speed = resolveSpeed(ports[i], speeds, opts.PreviousPorts)
	}
	data.Ports = ports

	return models.ProbeResult{Success: true, Data: data, InterfaceCounters: counters}
}

// interfaceCounters extracts rx-byte/tx-byte from the /interface/print rows
// already fetched, avoiding a second round-trip (spec.md §4.2/§4.4).
func interfaceCounters(interfaces []map[string]string) map[string]models.InterfaceCounterSample {
	out := make(map[string]models.InterfaceCounterSample, len(interfaces))
	for _, row := range interfaces {
		name := row["name"]
		if name == "" {
			continue
		}
		rx, errRx := strconv.ParseUint(row["rx-byte"], 10, 64)
		tx, errTx := strconv.ParseUint(row["tx-byte"], 10, 64)
		if errRx != nil || errTx != nil {
			continue
		}
		out[name] = models.InterfaceCounterSample{InOctets: rx, OutOctets: tx}
	}
	return out
}

func dial(ctx context.Context, address, username, password string) (*routeros.Client, error) {
	// routeros.Dial does its own TCP connect; ctx's deadline is enforced by
	// the Scheduler's worker wrapping this whole call, matching spec.md
	// §4.1 ("a per-device deadline enforced independently of the
	// underlying adapter's own timeouts").
	return routeros.Dial(address, username, password)
}

// fetchPorts returns the normalized Port list plus the raw interface rows
// (needed for the detailed link-speed pass, keyed by name).
func fetchPorts(client *routeros.Client) ([]models.Port, []map[string]string, error) {
	reply, err := client.Run("/interface/print")
	if err != nil {
		return nil, nil, err
	}
	ports := make([]models.Port, 0, len(reply.Re))
	raw := make([]map[string]string, 0, len(reply.Re))
	for _, re := range reply.Re {
		row := re.Map
		status := "down"
		if truthy(row["running"]) {
			status = "up"
		}
		ports = append(ports, models.Port{
			Name:        row["name"],
			DefaultName: row["default-name"],
			Comment:     row["comment"],
			Status:      status,
		})
		raw = append(raw, row)
	}
	return ports, raw, nil
}

// sampleLinkSpeeds enumerates ethernet interfaces and issues a
// monitor-traffic "once" command per interface to sample the active link
// speed (spec.md §4.2, detailed probes only — this is the expensive path).
func sampleLinkSpeeds(client *routeros.Client, interfaces []map[string]string) map[string]string {
	speeds := make(map[string]string, len(interfaces))
	ethReply, err := client.Run("/interface/ethernet/print")
	if err != nil {
		log.Debug().Err(err).Msg("routeros: ethernet interface enumeration failed, skipping detailed speed sampling")
		return speeds
	}
	for _, re := range ethReply.Re {
		name := re.Map["name"]
		if name == "" {
			continue
		}
		reply, err := client.Run("/interface/monitor-traffic", "=interface="+name, "=once=")
		if err != nil || len(reply.Re) == 0 {
			continue
		}
		row := reply.Re[0].Map
		speed := row["speed"]
		if speed == "" {
			speed = row["rate"] // fallback field name (spec.md §4.2)
		}
		if speed != "" {
			speeds[name] = speed
		}
	}
	return speeds
}

// resolveSpeed implements the priority order from spec.md §4.2: this
// cycle's measurement, then the previous cycle's cached speed (matched by
// DefaultName first, Name fallback), else unknown (empty).
func resolveSpeed(p models.Port, measured map[string]string, previous []models.Port) string {
	if s, ok := measured[p.Name]; ok && s != "" {
		return s
	}
	for _, prev := range previous {
		if p.DefaultName != "" && prev.DefaultName == p.DefaultName {
			return prev.Speed
		}
	}
	for _, prev := range previous {
		if prev.Name == p.Name {
			return prev.Speed
		}
	}
	return ""
}

func truthy(s string) bool {
	return s == "true" || s == "yes"
}

func parsePercentField(s string) *float64 {
	s = strings.TrimSuffix(s, "%")
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &f
}

// memoryUsagePct computes (total-free)/total*100, rounded, per spec.md §4.2.
func memoryUsagePct(totalStr, freeStr string) *float64 {
	total, err1 := strconv.ParseFloat(totalStr, 64)
	free, err2 := strconv.ParseFloat(freeStr, 64)
	if err1 != nil || err2 != nil || total <= 0 {
		return nil
	}
	pct := math.Round((total - free) / total * 100)
	return &pct
}
