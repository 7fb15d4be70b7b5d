// Package snmp probes generic_snmp/access_point devices and SNMP-backed
// server devices over SNMP v1/v2c/v3 (spec.md §4.2).
package snmp

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/gosnmp/gosnmp"
	"github.com/netwatch-io/netwatch/internal/adapters"
	"github.com/netwatch-io/netwatch/internal/models"
)

const defaultPort = 161

// OIDs walked for the always-collected core metrics (spec.md §4.2).
const (
	oidHrProcessorLoad = "1.3.6.1.2.1.25.3.3.1.2" // hrProcessorTable.hrProcessorLoad
	oidHrStorageDescr  = "1.3.6.1.2.1.25.2.3.1.3"
	oidHrStorageSize   = "1.3.6.1.2.1.25.2.3.1.5"
	oidHrStorageUsed   = "1.3.6.1.2.1.25.2.3.1.6"
	oidHrStorageUnits  = "1.3.6.1.2.1.25.2.3.1.4"
	oidSysUpTime       = "1.3.6.1.2.1.1.3.0"
	oidIfDescr         = "1.3.6.1.2.1.2.2.1.2"
	oidIfSpeed         = "1.3.6.1.2.1.2.2.1.5"
	oidIfPhysAddress   = "1.3.6.1.2.1.2.2.1.6"
	oidIfOperStatus    = "1.3.6.1.2.1.2.2.1.8"
	oidIfInOctets      = "1.3.6.1.2.1.2.2.1.10"
	oidIfOutOctets     = "1.3.6.1.2.1.2.2.1.16"
)

// ramStorageDescr is the hrStorageDescr substring identifying physical RAM,
// as opposed to swap or virtual memory entries (spec.md §4.2).
const ramStorageDescr = "Physical Memory"

// Adapter implements adapters.Adapter for SNMP-polled devices.
type Adapter struct{}

// New returns an SNMP Adapter.
func New() *Adapter { return &Adapter{} }

var _ adapters.Adapter = (*Adapter)(nil)

// Probe walks the core MIB-II/host-resources tables, and when opts.Detailed,
// additionally samples ifInOctets/ifOutOctets for connection bandwidth
// history (spec.md §4.2, §4.4).
func (a *Adapter) Probe(ctx context.Context, ipAddress string, creds models.Credentials, opts adapters.ProbeOptions) models.ProbeResult {
	sc, ok := creds.(models.SNMPCredentials)
	if !ok {
		return models.ProbeResult{Success: false, Err: fmt.Errorf("snmp adapter requires SNMPCredentials, got %T", creds)}
	}

	client, err := newClient(ipAddress, sc)
	if err != nil {
		return models.ProbeResult{Success: false, Err: fmt.Errorf("configure snmp client for %s: %w", ipAddress, err)}
	}
	if err := client.Connect(); err != nil {
		return models.ProbeResult{Success: false, Err: fmt.Errorf("connect snmp %s: %w", ipAddress, err)}
	}
	defer client.Conn.Close()

	data := models.DeviceData{Extra: map[string]string{}}

	if cpu, err := walkAverage(client, oidHrProcessorLoad); err == nil {
		data.CPUUsagePct = cpu
	}
	if mem, err := walkMemoryPct(client); err == nil {
		data.MemoryUsagePct = mem
	}
	if up, err := client.Get([]string{oidSysUpTime}); err == nil && len(up.Variables) == 1 {
		data.Uptime = formatTimeTicks(up.Variables[0])
	}

	ports, ifIndex, err := walkInterfaces(client)
	if err != nil {
		return models.ProbeResult{Success: false, Err: fmt.Errorf("walk interfaces: %w", err)}
	}
	data.Ports = ports

	var counters map[string]models.InterfaceCounterSample
	if opts.Detailed {
		counters = sampleCounters(client, ifIndex)
	}

	return models.ProbeResult{Success: true, Data: data, InterfaceCounters: counters}
}

func newClient(ip string, sc models.SNMPCredentials) (*gosnmp.GoSNMP, error) {
	port := sc.Port
	if port == 0 {
		port = defaultPort
	}
	client := &gosnmp.GoSNMP{
		Target:  ip,
		Port:    uint16(port),
		Timeout: 5 * time.Second,
		Retries: 1,
	}
	switch sc.Version {
	case models.SNMPv1:
		client.Version = gosnmp.Version1
		client.Community = sc.Community
	case models.SNMPv2c, "":
		client.Version = gosnmp.Version2c
		client.Community = sc.Community
	case models.SNMPv3:
		client.Version = gosnmp.Version3
		client.SecurityModel = gosnmp.UserSecurityModel
		client.MsgFlags = gosnmp.AuthPriv
		usm := &gosnmp.UsmSecurityParameters{
			UserName:                 sc.Username,
			AuthenticationPassphrase: sc.AuthPassword,
			PrivacyPassphrase:        sc.PrivPassword,
		}
		switch sc.AuthProtocol {
		case models.SNMPAuthSHA:
			usm.AuthenticationProtocol = gosnmp.SHA
		default:
			usm.AuthenticationProtocol = gosnmp.MD5
		}
		switch sc.PrivProtocol {
		case models.SNMPPrivAES:
			usm.PrivacyProtocol = gosnmp.AES
		default:
			usm.PrivacyProtocol = gosnmp.DES
		}
		client.SecurityParameters = usm
	default:
		return nil, fmt.Errorf("unsupported snmp version %q", sc.Version)
	}
	return client, nil
}

// walkAverage walks oid and returns the mean of all leaf values — used for
// hrProcessorLoad, which has one entry per CPU core (spec.md §4.2).
func walkAverage(client *gosnmp.GoSNMP, oid string) (*float64, error) {
	results, err := client.WalkAll(oid)
	if err != nil || len(results) == 0 {
		return nil, err
	}
	var sum float64
	for _, v := range results {
		sum += toFloat(v)
	}
	avg := sum / float64(len(results))
	return &avg, nil
}

func walkMemoryPct(client *gosnmp.GoSNMP) (*float64, error) {
	descrs, err := client.WalkAll(oidHrStorageDescr)
	if err != nil {
		return nil, err
	}
	for _, d := range descrs {
		descr, ok := d.Value.(string)
		if !ok || !strings.Contains(descr, ramStorageDescr) {
			continue
		}
		idx := strings.TrimPrefix(d.Name, "."+oidHrStorageDescr+".")
		sizeOid := oidHrStorageSize + "." + idx
		usedOid := oidHrStorageUsed + "." + idx
		resp, err := client.Get([]string{sizeOid, usedOid})
		if err != nil || len(resp.Variables) != 2 {
			return nil, err
		}
		size := toFloat(resp.Variables[0])
		used := toFloat(resp.Variables[1])
		if size <= 0 {
			return nil, nil
		}
		pct := math.Round(used / size * 100)
		return &pct, nil
	}
	return nil, nil
}

func walkInterfaces(client *gosnmp.GoSNMP) ([]models.Port, map[string]string, error) {
	descrs, err := client.WalkAll(oidIfDescr)
	if err != nil {
		return nil, nil, err
	}
	ifIndex := make(map[string]string, len(descrs)) // name -> ifIndex suffix
	ports := make([]models.Port, 0, len(descrs))
	for _, d := range descrs {
		name, _ := d.Value.(string)
		if name == "" {
			continue
		}
		idx := strings.TrimPrefix(d.Name, "."+oidIfDescr+".")
		ifIndex[name] = idx

		status := "down"
		if resp, err := client.Get([]string{oidIfOperStatus + "." + idx}); err == nil && len(resp.Variables) == 1 {
			if i, ok := resp.Variables[0].Value.(int); ok && i == 1 {
				status = "up"
			}
		}
		port := models.Port{Name: name, Status: status}
		if resp, err := client.Get([]string{oidIfSpeed + "." + idx}); err == nil && len(resp.Variables) == 1 {
			port.Speed = formatSpeed(toFloat(resp.Variables[0]))
		}
		ports = append(ports, port)
	}
	return ports, ifIndex, nil
}

// sampleCounters fetches ifInOctets/ifOutOctets per interface for the
// scheduler's rate tracker (detailed cycles only, spec.md §4.2/§4.4).
func sampleCounters(client *gosnmp.GoSNMP, ifIndex map[string]string) map[string]models.InterfaceCounterSample {
	out := make(map[string]models.InterfaceCounterSample, len(ifIndex))
	for name, idx := range ifIndex {
		resp, err := client.Get([]string{oidIfInOctets + "." + idx, oidIfOutOctets + "." + idx})
		if err != nil || len(resp.Variables) != 2 {
			continue
		}
		out[name] = models.InterfaceCounterSample{
			InOctets:  uint64(toFloat(resp.Variables[0])),
			OutOctets: uint64(toFloat(resp.Variables[1])),
		}
	}
	return out
}

func toFloat(v gosnmp.SnmpPDU) float64 {
	switch val := v.Value.(type) {
	case int:
		return float64(val)
	case uint:
		return float64(val)
	case uint64:
		return float64(val)
	case int64:
		return float64(val)
	default:
		f, _ := strconv.ParseFloat(fmt.Sprint(val), 64)
		return f
	}
}

func formatSpeed(bitsPerSec float64) string {
	if bitsPerSec <= 0 {
		return ""
	}
	const mbps = 1_000_000.0
	return fmt.Sprintf("%.0fMbps", bitsPerSec/mbps)
}

func formatTimeTicks(v gosnmp.SnmpPDU) string {
	ticks := toFloat(v)
	d := time.Duration(ticks*10) * time.Millisecond
	return d.String()
}
