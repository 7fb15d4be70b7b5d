package pingprobe

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"
)

// binaryName is the external batch-ping tool's executable name. Its
// command-line contract is fixed by spec.md §6 and is never abstracted
// behind a Go-native ICMP library (spec.md §9 Design Notes).
var binaryName = "fping"

// runBatch invokes the batch-ping tool once for all targets, returning the
// raw per-target RTT samples in milliseconds (one per probe count); a lost
// packet is represented as a nil entry in the slice (spec.md §4.5, §6).
func runBatch(ctx context.Context, targets []string, count int, packetTimeoutMS, intervalMS int) (map[string][]*float64, error) {
	if len(targets) == 0 {
		return map[string][]*float64{}, nil
	}

	args := []string{
		"-C", strconv.Itoa(count),
		"-q",
		"-t", strconv.Itoa(packetTimeoutMS),
		"-p", strconv.Itoa(intervalMS),
	}
	args = append(args, targets...)

	cmd := exec.CommandContext(ctx, binaryName, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	// fping's batch summary (-C/-q) writes to stderr; exit status is
	// non-zero whenever any target has loss, so the run error itself is
	// not fatal — only a failure to produce parseable output is.
	_ = cmd.Run()

	results := parseBatchOutput(stderr.String())
	if len(results) == 0 {
		return nil, fmt.Errorf("%s produced no parseable output: %s", binaryName, strings.TrimSpace(stderr.String()))
	}
	return results, nil
}

// parseBatchOutput parses lines of the form "IP : rtt1 rtt2 … rttN", with
// "-" marking a lost packet (spec.md §6).
func parseBatchOutput(output string) map[string][]*float64 {
	results := make(map[string][]*float64)
	scanner := bufio.NewScanner(strings.NewReader(output))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		parts := strings.SplitN(line, ":", 2)
		if len(parts) != 2 {
			continue
		}
		target := strings.TrimSpace(parts[0])
		fields := strings.Fields(parts[1])
		samples := make([]*float64, 0, len(fields))
		for _, f := range fields {
			if f == "-" {
				samples = append(samples, nil)
				continue
			}
			v, err := strconv.ParseFloat(f, 64)
			if err != nil {
				samples = append(samples, nil)
				continue
			}
			samples = append(samples, &v)
		}
		results[target] = samples
	}
	return results
}

// fpingTimeout bounds the whole batch invocation; the per-packet timeout
// (-t) bounds individual probes, but the process itself must not hang
// indefinitely if the binary misbehaves.
func fpingTimeout(count, packetTimeoutMS, intervalMS int) time.Duration {
	return time.Duration(count*(packetTimeoutMS+intervalMS))*time.Millisecond + 5*time.Second
}
