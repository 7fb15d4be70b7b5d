// Package icmp wraps the external batch-ping tool for an on-demand
// single-device reachability probe — used for the forced re-probe an API
// edit of a generic_ping device triggers (spec.md §3 Device mutation
// rules). The Scheduler's periodic cycle instead routes generic_ping
// devices through internal/pingprobe's independent high-frequency batch
// prober (spec.md §4.1, §4.5); both wrap the same external tool contract
// (spec.md §6) rather than an in-process ICMP library (spec.md §9 Design
// Notes).
package icmp

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"github.com/netwatch-io/netwatch/internal/adapters"
	"github.com/netwatch-io/netwatch/internal/models"
)

const (
	defaultProbeCount     = 3
	defaultPacketTimeoutMS = 1000
	defaultIntervalMS      = 10
)

var binaryName = "fping"

// Adapter implements adapters.Adapter for generic_ping devices' on-demand
// probes.
type Adapter struct{}

// New returns an ICMP Adapter.
func New() *Adapter { return &Adapter{} }

var _ adapters.Adapter = (*Adapter)(nil)

// Probe runs a small fixed-count batch-ping against a single address and
// reports mean RTT via DeviceData.Extra, deriving Success from whether any
// packet was received.
func (a *Adapter) Probe(ctx context.Context, ipAddress string, creds models.Credentials, opts adapters.ProbeOptions) models.ProbeResult {
	args := []string{
		"-C", strconv.Itoa(defaultProbeCount),
		"-q",
		"-t", strconv.Itoa(defaultPacketTimeoutMS),
		"-p", strconv.Itoa(defaultIntervalMS),
		ipAddress,
	}
	cmd := exec.CommandContext(ctx, binaryName, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	_ = cmd.Run()

	samples, received, err := parseSingle(stderr.String(), ipAddress)
	if err != nil {
		return models.ProbeResult{Success: false, Err: fmt.Errorf("ping %s: %w", ipAddress, err)}
	}
	if received == 0 {
		return models.ProbeResult{Success: false, Err: fmt.Errorf("ping %s: no packets received", ipAddress)}
	}

	data := models.DeviceData{Extra: map[string]string{
		"pingRttMs": fmt.Sprintf("%.2f", meanReceived(samples)),
	}}
	return models.ProbeResult{Success: true, Data: data}
}

func parseSingle(output, target string) ([]float64, int, error) {
	scanner := bufio.NewScanner(strings.NewReader(output))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		parts := strings.SplitN(line, ":", 2)
		if len(parts) != 2 || strings.TrimSpace(parts[0]) != target {
			continue
		}
		var samples []float64
		received := 0
		for _, f := range strings.Fields(parts[1]) {
			if f == "-" {
				continue
			}
			v, err := strconv.ParseFloat(f, 64)
			if err != nil {
				continue
			}
			samples = append(samples, v)
			received++
		}
		return samples, received, nil
	}
	return nil, 0, fmt.Errorf("no output line for target")
}

func meanReceived(samples []float64) float64 {
	if len(samples) == 0 {
		return 0
	}
	var sum float64
	for _, v := range samples {
		sum += v
	}
	return sum / float64(len(samples))
}
