package config

import "testing"

func TestDefaultValues(t *testing.T) {
	cfg := Default()
	if cfg.PollingIntervalSeconds != 30 {
		t.Errorf("PollingIntervalSeconds = %d, want 30", cfg.PollingIntervalSeconds)
	}
	if cfg.WorkerConcurrency != 80 {
		t.Errorf("WorkerConcurrency = %d, want 80", cfg.WorkerConcurrency)
	}
	if cfg.ProbeDeadlineMS != 6000 {
		t.Errorf("ProbeDeadlineMS = %d, want 6000", cfg.ProbeDeadlineMS)
	}
	if cfg.DetailedCycleInterval != 10 {
		t.Errorf("DetailedCycleInterval = %d, want 10", cfg.DetailedCycleInterval)
	}
}

func TestLoadOverridesFromEnv(t *testing.T) {
	t.Setenv("NETWATCH_WORKER_CONCURRENCY", "40")
	t.Setenv("NETWATCH_PROBE_DEADLINE_MS", "3000")

	cfg := Load(t.TempDir())
	if cfg.WorkerConcurrency != 40 {
		t.Errorf("WorkerConcurrency = %d, want 40", cfg.WorkerConcurrency)
	}
	if cfg.ProbeDeadlineMS != 3000 {
		t.Errorf("ProbeDeadlineMS = %d, want 3000", cfg.ProbeDeadlineMS)
	}
}

func TestLoadInvalidIntFallsBackToDefault(t *testing.T) {
	t.Setenv("NETWATCH_WORKER_CONCURRENCY", "not-a-number")
	cfg := Load(t.TempDir())
	if cfg.WorkerConcurrency != 80 {
		t.Errorf("WorkerConcurrency = %d, want default 80", cfg.WorkerConcurrency)
	}
}

func TestDurationHelpers(t *testing.T) {
	cfg := Default()
	if cfg.ProbeDeadline().Milliseconds() != 6000 {
		t.Errorf("ProbeDeadline() = %v, want 6000ms", cfg.ProbeDeadline())
	}
	if cfg.PollingInterval().Seconds() != 30 {
		t.Errorf("PollingInterval() = %v, want 30s", cfg.PollingInterval())
	}
}
