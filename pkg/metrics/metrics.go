// Package metrics exports Prometheus gauges/counters for the ledger, fee,
// staking, and ranking subsystems, served over a dedicated HTTP listener,
// separate from the inspection API.
package metrics

import (
	"context"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Exporter owns the registry and the HTTP server serving /metrics.
type Exporter struct {
	port int
	srv  *http.Server
	reg  *prometheus.Registry

	TotalSupply       prometheus.Gauge
	CirculatingSupply prometheus.Gauge
	BurnedSupply      prometheus.Gauge
	BurnStopped       prometheus.Gauge

	FeesCollected  *prometheus.CounterVec
	TransfersTotal prometheus.Counter

	StakedPrincipal *prometheus.GaugeVec
	InterestPaid    prometheus.Counter
	BurnForBoost    prometheus.Counter

	RankingMonthlyPool prometheus.Gauge
	RankingAnnualPool  prometheus.Gauge
	DistributionsTotal *prometheus.CounterVec
}

// NewExporter builds an Exporter bound to port. Call Start to begin
// serving and Shutdown to stop gracefully.
func NewExporter(port int) *Exporter {
	reg := prometheus.NewRegistry()

	e := &Exporter{
		port:        port,
		reg:         reg,
		TotalSupply: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "gmc_total_supply_base_units",
			Help: "Total GMC supply fixed at genesis, in base units.",
		}),
		CirculatingSupply: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "gmc_circulating_supply_base_units",
			Help: "Circulating GMC supply, in base units.",
		}),
		BurnedSupply: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "gmc_burned_supply_base_units",
			Help: "Cumulative burned GMC supply, in base units.",
		}),
		BurnStopped: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "gmc_burn_stopped",
			Help: "1 once circulating supply has reached the floor and burning has latched off.",
		}),
		FeesCollected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gmc_fees_collected_base_units_total",
			Help: "Cumulative fee base units collected, by destination (burn, staking, ranking, team).",
		}, []string{"destination"}),
		TransfersTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "gmc_transfers_total",
			Help: "Count of successful Transfer operations.",
		}),
		StakedPrincipal: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "gmc_staked_principal_base_units",
			Help: "Total staked principal, by pool.",
		}, []string{"pool"}),
		InterestPaid: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "gmc_interest_paid_base_units_total",
			Help: "Cumulative net interest paid out via Claim.",
		}),
		BurnForBoost: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "gmc_burn_for_boost_base_units_total",
			Help: "Cumulative GMC burn volume recorded as ranking burn activity: BurnForBoost's burn amount (excluding the extra 10%) plus the standalone Burn operation's burned amount.",
		}),
		RankingMonthlyPool: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "gmc_ranking_monthly_pool_base_units",
			Help: "Current monthly ranking reward pool balance.",
		}),
		RankingAnnualPool: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "gmc_ranking_annual_pool_base_units",
			Help: "Current annual ranking reward pool balance.",
		}),
		DistributionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gmc_ranking_distributions_total",
			Help: "Count of completed ranking distributions, by cycle (monthly, annual).",
		}, []string{"cycle"}),
	}

	reg.MustRegister(
		e.TotalSupply, e.CirculatingSupply, e.BurnedSupply, e.BurnStopped,
		e.FeesCollected, e.TransfersTotal,
		e.StakedPrincipal, e.InterestPaid, e.BurnForBoost,
		e.RankingMonthlyPool, e.RankingAnnualPool, e.DistributionsTotal,
	)

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	e.srv = &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: mux}

	return e
}

// Start blocks serving /metrics until the server is shut down, returning
// http.ErrServerClosed on a graceful stop (the same sentinel runDaemon
// checks for).
func (e *Exporter) Start() error {
	return e.srv.ListenAndServe()
}

// Shutdown gracefully stops the metrics HTTP server.
func (e *Exporter) Shutdown(ctx context.Context) error {
	return e.srv.Shutdown(ctx)
}
