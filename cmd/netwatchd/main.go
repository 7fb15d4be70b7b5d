package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/netwatch-io/netwatch/internal/adapters/icmp"
	"github.com/netwatch-io/netwatch/internal/adapters/prometheus"
	"github.com/netwatch-io/netwatch/internal/adapters/proxmox"
	"github.com/netwatch-io/netwatch/internal/adapters/routeros"
	"github.com/netwatch-io/netwatch/internal/adapters/snmp"

	"github.com/netwatch-io/netwatch/internal/adapters"
	"github.com/netwatch-io/netwatch/internal/config"
	"github.com/netwatch-io/netwatch/internal/history"
	"github.com/netwatch-io/netwatch/internal/ipam"
	"github.com/netwatch-io/netwatch/internal/notifications"
	"github.com/netwatch-io/netwatch/internal/pingprobe"
	"github.com/netwatch-io/netwatch/internal/scheduler"
	"github.com/netwatch-io/netwatch/internal/startup"
	"github.com/netwatch-io/netwatch/internal/statusengine"
	"github.com/netwatch-io/netwatch/internal/storage"
	"github.com/netwatch-io/netwatch/internal/storage/memstore"
	"github.com/netwatch-io/netwatch/internal/vmtopology"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// Version is set at build time with -ldflags, mirroring the teacher's
// cmd/pulse-sensor-proxy version wiring.
var Version = "dev"

var dataDir string

var rootCmd = &cobra.Command{
	Use:     "netwatchd",
	Short:   "netwatchd - network topology and device health monitor",
	Version: Version,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runDaemon()
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("netwatchd %s\n", Version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", ".", "directory holding the .env config file")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runDaemon() error {
	cfg := config.Load(dataDir)

	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}).
		With().Timestamp().Logger()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	store := storage.Store(memstore.New())

	dispatcher := notifications.NewDispatcher(store)
	statusEngine := statusengine.New(store, dispatcher)
	historyIngestor := history.New(store)
	ipamReconciler := ipam.New(store)
	vmResolver := vmtopology.New(store)

	registry := &adapters.Registry{
		Mikrotik:   routeros.New(),
		SNMP:       snmp.New(),
		Prometheus: prometheus.New(),
		Proxmox:    proxmox.New(),
		ICMP:       icmp.New(),
	}

	startup.Run(ctx, store)

	schedCfg := scheduler.Config{
		Concurrency:           cfg.WorkerConcurrency,
		ProbeDeadline:         cfg.ProbeDeadline(),
		DetailedCycleInterval: cfg.DetailedCycleInterval,
	}
	sched := scheduler.New(store, registry, statusEngine, historyIngestor, ipamReconciler, vmResolver, schedCfg)

	pingCfg := pingprobe.Config{
		Interval:        cfg.PingInterval(),
		PacketTimeoutMS: cfg.PingPacketTimeoutMS,
		IntervalMS:      10,
	}
	prober := pingprobe.New(store, pingCfg)

	watcher, err := config.NewWatcher(cfg, func(reloaded config.Config) {
		log.Info().Msg("configuration reloaded; changes apply after restart")
	})
	if err != nil {
		log.Warn().Err(err).Msg("config watcher unavailable, continuing without live reload")
	} else {
		watcher.Start()
		defer watcher.Stop()
	}

	server := newHealthServer(cfg.HealthAddr)
	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("health server exited unexpectedly")
		}
	}()

	go sched.Run(ctx, cfg.PollingInterval())
	go prober.Run(ctx)

	log.Info().
		Int("pollingIntervalSeconds", cfg.PollingIntervalSeconds).
		Int("workerConcurrency", cfg.WorkerConcurrency).
		Int("pingIntervalSeconds", cfg.PingIntervalSeconds).
		Msg("netwatchd started")

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("health server shutdown failed")
	}

	historyIngestor.SweepRetention(shutdownCtx, cfg.RetentionHorizons)
	return nil
}

// newHealthServer exposes the liveness-only endpoint spec.md §0 calls for —
// no metrics, no admin surface, just a 200 while the process is up.
func newHealthServer(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	return &http.Server{Addr: addr, Handler: mux}
}
