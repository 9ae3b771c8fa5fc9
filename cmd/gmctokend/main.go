// gmctokend is the GMC token ledger daemon: it serves an HTTP API (state
// inspection plus the engine's mutating operations), a Prometheus exporter,
// and a websocket ranking-event feed over one sqlite-backed economic state.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/goldminingco/GMC-Token-sub001/internal/logger"
	"github.com/goldminingco/GMC-Token-sub001/pkg/api"
	"github.com/goldminingco/GMC-Token-sub001/pkg/config"
	"github.com/goldminingco/GMC-Token-sub001/pkg/coreerr"
	"github.com/goldminingco/GMC-Token-sub001/pkg/engine"
	"github.com/goldminingco/GMC-Token-sub001/pkg/fees"
	"github.com/goldminingco/GMC-Token-sub001/pkg/host"
	"github.com/goldminingco/GMC-Token-sub001/pkg/hostadapter/sqlstate"
	"github.com/goldminingco/GMC-Token-sub001/pkg/ledger"
	"github.com/goldminingco/GMC-Token-sub001/pkg/metrics"
	"github.com/goldminingco/GMC-Token-sub001/pkg/ranking"
	"github.com/goldminingco/GMC-Token-sub001/pkg/staking"
	"github.com/goldminingco/GMC-Token-sub001/pkg/streaming"
)

var (
	Version   = "1.0.0"
	GitCommit = "unknown"
	BuildTime = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "gmctokend",
	Short: "GMC token ledger daemon",
	Long:  `gmctokend serves the GMC deflationary token ledger's HTTP API
(state inspection and transaction dispatch), Prometheus metrics, and a websocket feed of ranking
activity and distributions, backed by a sqlite-persisted economic state.`,
	Run: runDaemon,
}

var (
	configPath string
	logLevel   string
)

func init() {
	rootCmd.Flags().StringVarP(&configPath, "config", "c", "config.yaml", "Path to configuration file")
	rootCmd.Flags().StringVarP(&logLevel, "log-level", "l", "info", "Log level (debug, info, warn, error)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// systemClock implements host.Clock against wall time.
type systemClock struct{}

func (systemClock) Now() int64 { return time.Now().Unix() }

// daemonEvents bridges engine.Events to the metrics exporter and the
// streaming hub, so the engine itself stays unaware of either.
type daemonEvents struct {
	metrics *metrics.Exporter
	hub     *streaming.Hub
}

func (d *daemonEvents) Activity(kind ranking.ActivityKind, user host.Identity, value uint64) {
	d.hub.PublishActivity(user, kind, value)
	switch kind {
	case ranking.ActivityTransfer:
		d.metrics.TransfersTotal.Inc()
	case ranking.ActivityBurn:
		d.metrics.BurnForBoost.Add(float64(value))
	}
}

func (d *daemonEvents) Distribution(kind string, winners []host.Identity, amounts []uint64, poolAfter uint64) {
	d.metrics.DistributionsTotal.WithLabelValues(kind).Inc()

	var eventKind streaming.EventKind
	switch kind {
	case "monthly":
		eventKind = streaming.EventMonthlyDistributed
		d.metrics.RankingMonthlyPool.Set(float64(poolAfter))
	case "annual":
		eventKind = streaming.EventAnnualDistributed
		d.metrics.RankingAnnualPool.Set(float64(poolAfter))
	}
	d.hub.PublishDistribution(eventKind, winners, amounts, poolAfter)
}

func runDaemon(cmd *cobra.Command, args []string) {
	log := logger.NewLogger(logLevel)
	log.WithFields(logger.Fields{
		"version":    Version,
		"git_commit": GitCommit,
		"build_time": BuildTime,
	}).Info("Starting gmctokend")

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		log.WithError(err).Fatal("Failed to load configuration")
	}

	log.WithFields(logger.Fields{
		"api_port":       cfg.API.Port,
		"metrics_port":   cfg.Metrics.Port,
		"streaming_port": cfg.Streaming.Port,
		"storage_dsn":    cfg.Storage.DSN,
	}).Info("Configuration loaded")

	store, err := sqlstate.Open(cfg.Storage.DSN)
	if err != nil {
		log.WithError(err).Fatal("Failed to open storage")
	}
	defer store.Close()
	log.Info("Storage opened")

	gs, err := store.LoadGlobalState()
	if err != nil {
		log.WithError(err).Fatal("Failed to load global state")
	}
	if !gs.IsInitialized {
		initialSupply := cfg.Genesis.InitialSupplyGMC * fees.GMCBaseUnitsPerGMC
		if err := ledger.Initialize(gs, cfg.Genesis.Admin.Identity(), initialSupply, cfg.Genesis.Wallets.ToEcosystemWallets()); err != nil {
			log.WithError(err).Fatal("Failed to run genesis Initialize")
		}
		if err := store.SaveGlobalState(gs); err != nil {
			log.WithError(err).Fatal("Failed to persist genesis state")
		}
		log.WithField("initial_supply_base_units", initialSupply).Info("Genesis Initialize complete")
	} else {
		log.Info("Global state already initialized, skipping genesis")
	}

	metricsExporter := metrics.NewExporter(cfg.Metrics.Port)
	go func() {
		log.WithField("port", cfg.Metrics.Port).Info("Starting metrics server")
		if err := metricsExporter.Start(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("Metrics server failed")
		}
	}()

	hub := streaming.NewHub(cfg.Streaming.Port, log)
	go func() {
		log.WithField("port", cfg.Streaming.Port).Info("Starting streaming server")
		if err := hub.Start(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("Streaming server failed")
		}
	}()

	events := &daemonEvents{metrics: metricsExporter, hub: hub}
	eng := engine.New(store, noopUSDTLedger{}, systemClock{}, cfg.Guard.OpsPerSecond, cfg.Guard.Burst, events, log)

	reportSupplyMetrics(metricsExporter, gs)
	for _, p := range []struct {
		id   staking.PoolID
		name string
	}{{staking.PoolLongTerm, "long_term"}, {staking.PoolFlexible, "flexible"}} {
		if principal, err := store.TotalStakedPrincipal(p.id); err == nil {
			metricsExporter.StakedPrincipal.WithLabelValues(p.name).Set(float64(principal))
		}
	}

	apiServer := api.NewServer(cfg.API.Port, store, eng, log)
	go func() {
		log.WithField("port", cfg.API.Port).Info("Starting API server")
		if err := apiServer.Start(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("API server failed")
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	log.Info("gmctokend is running. Press Ctrl+C to stop.")
	<-sigCh
	log.Info("Received shutdown signal, stopping daemon...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := apiServer.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("API server shutdown error")
	}
	if err := hub.Shutdown(); err != nil {
		log.WithError(err).Error("Streaming server shutdown error")
	}
	if err := metricsExporter.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("Metrics server shutdown error")
	}

	log.Info("Daemon stopped gracefully")
}

func reportSupplyMetrics(m *metrics.Exporter, gs *ledger.GlobalState) {
	m.TotalSupply.Set(float64(gs.TotalSupply))
	m.CirculatingSupply.Set(float64(gs.CirculatingSupply))
	m.BurnedSupply.Set(float64(gs.BurnedSupply))
	if gs.BurnStopped {
		m.BurnStopped.Set(1)
	}
}

// noopUSDTLedger is a placeholder host.SecondaryLedger for the daemon
// process until a real USDT rail (an SPL-token-equivalent custody service)
// is configured; every USDT-fee-bearing operation fails InsufficientFunds
// rather than silently succeeding, so a misconfigured deployment cannot
// under-charge stake-entry or burn-for-boost fees.
type noopUSDTLedger struct{}

func (noopUSDTLedger) Balance(id host.Identity) (uint64, error) { return 0, nil }

func (noopUSDTLedger) DebitTo(id, dest host.Identity, amount uint64) error {
	if amount == 0 {
		return nil
	}
	return coreerr.ErrInsufficientFunds
}
