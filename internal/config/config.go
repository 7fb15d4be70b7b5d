// Package config loads process-level settings from the environment (and an
// optional .env file), mirroring the two-step load cmd/pulse performs in the
// teacher repo.
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

// Config holds the process-level knobs spec.md §6 names. Everything here has
// a documented default so a bare `netwatchd` with no environment still runs.
type Config struct {
	// DataDir is where the .env lives and is watched for changes.
	DataDir string

	// PollingIntervalSeconds is the main Scheduler's cycle period.
	PollingIntervalSeconds int

	// WorkerConcurrency bounds the Scheduler's worker pool.
	WorkerConcurrency int

	// ProbeDeadlineMS is the worker's hard per-device deadline.
	ProbeDeadlineMS int

	// DetailedCycleInterval is the number of cycles between forced
	// detailed (RouterOS link-speed) probes.
	DetailedCycleInterval int

	// PingIntervalSeconds is the Ping Prober's cadence.
	PingIntervalSeconds int

	// PingProbeCount is the default per-target probe count.
	PingProbeCount int

	// PingPacketTimeoutMS is fping's per-packet timeout.
	PingPacketTimeoutMS int

	// RetentionHorizons maps a history table name to how long rows survive.
	RetentionHorizons map[string]time.Duration

	// HealthAddr is the bind address for the liveness endpoint (spec.md §0:
	// "a minimal process entrypoint ... exposes a liveness endpoint only").
	HealthAddr string
}

const (
	defaultPollingIntervalSeconds = 30
	defaultWorkerConcurrency      = 80
	defaultProbeDeadlineMS        = 6000
	defaultDetailedCycleInterval  = 10
	defaultPingIntervalSeconds    = 30
	defaultPingProbeCount         = 20
	defaultPingPacketTimeoutMS    = 1000
	defaultHealthAddr             = ":9100"
)

// Default returns a Config populated entirely with spec.md §6 defaults.
func Default() Config {
	return Config{
		DataDir:                ".",
		PollingIntervalSeconds: defaultPollingIntervalSeconds,
		WorkerConcurrency:      defaultWorkerConcurrency,
		ProbeDeadlineMS:        defaultProbeDeadlineMS,
		DetailedCycleInterval:  defaultDetailedCycleInterval,
		PingIntervalSeconds:    defaultPingIntervalSeconds,
		PingProbeCount:         defaultPingProbeCount,
		PingPacketTimeoutMS:    defaultPingPacketTimeoutMS,
		RetentionHorizons: map[string]time.Duration{
			"device_metrics":       30 * 24 * time.Hour,
			"connection_bandwidth": 30 * 24 * time.Hour,
			"prometheus_samples":   14 * 24 * time.Hour,
			"ping_samples":         7 * 24 * time.Hour,
			"status_events":        90 * 24 * time.Hour,
		},
		HealthAddr: defaultHealthAddr,
	}
}

// Load mirrors cmd/pulse/config.go's load order: read a .env file under
// dataDir (if present, non-fatal if not), then let process environment
// variables override it, falling back to Default() for anything unset.
func Load(dataDir string) Config {
	cfg := Default()
	if dataDir != "" {
		cfg.DataDir = dataDir
	}

	envPath := cfg.DataDir + "/.env"
	if err := godotenv.Load(envPath); err != nil {
		log.Debug().Err(err).Str("path", envPath).Msg("no .env file loaded")
	}

	cfg.PollingIntervalSeconds = intEnv("NETWATCH_POLLING_INTERVAL_SECONDS", cfg.PollingIntervalSeconds)
	cfg.WorkerConcurrency = intEnv("NETWATCH_WORKER_CONCURRENCY", cfg.WorkerConcurrency)
	cfg.ProbeDeadlineMS = intEnv("NETWATCH_PROBE_DEADLINE_MS", cfg.ProbeDeadlineMS)
	cfg.DetailedCycleInterval = intEnv("NETWATCH_DETAILED_CYCLE_INTERVAL", cfg.DetailedCycleInterval)
	cfg.PingIntervalSeconds = intEnv("NETWATCH_PING_INTERVAL_SECONDS", cfg.PingIntervalSeconds)
	cfg.PingProbeCount = intEnv("NETWATCH_PING_PROBE_COUNT", cfg.PingProbeCount)
	cfg.PingPacketTimeoutMS = intEnv("NETWATCH_PING_PACKET_TIMEOUT_MS", cfg.PingPacketTimeoutMS)
	if v := os.Getenv("NETWATCH_HEALTH_ADDR"); v != "" {
		cfg.HealthAddr = v
	}

	return cfg
}

func intEnv(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Warn().Str("key", key).Str("value", v).Msg("invalid integer env override, using default")
		return def
	}
	return n
}

// ProbeDeadline is ProbeDeadlineMS as a time.Duration.
func (c Config) ProbeDeadline() time.Duration {
	return time.Duration(c.ProbeDeadlineMS) * time.Millisecond
}

// PollingInterval is PollingIntervalSeconds as a time.Duration.
func (c Config) PollingInterval() time.Duration {
	return time.Duration(c.PollingIntervalSeconds) * time.Second
}

// PingInterval is PingIntervalSeconds as a time.Duration.
func (c Config) PingInterval() time.Duration {
	return time.Duration(c.PingIntervalSeconds) * time.Second
}
