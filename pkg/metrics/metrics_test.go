package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func gaugeValue(t *testing.T, g prometheus.Metric) float64 {
	t.Helper()
	var m dto.Metric
	if err := g.Write(&m); err != nil {
		t.Fatalf("Write: %v", err)
	}
	return m.GetGauge().GetValue()
}

func TestExporterGaugesAreSettable(t *testing.T) {
	e := NewExporter(0)
	e.TotalSupply.Set(100_000_000)
	e.CirculatingSupply.Set(90_000_000)
	e.BurnedSupply.Set(10_000_000)

	if v := gaugeValue(t, e.TotalSupply); v != 100_000_000 {
		t.Errorf("TotalSupply = %v, want 100000000", v)
	}
	if v := gaugeValue(t, e.CirculatingSupply); v != 90_000_000 {
		t.Errorf("CirculatingSupply = %v, want 90000000", v)
	}
}

func TestExporterVectorsAcceptLabels(t *testing.T) {
	e := NewExporter(0)
	e.FeesCollected.WithLabelValues("burn").Add(500)
	e.StakedPrincipal.WithLabelValues("long_term").Set(1_000_000)
	e.DistributionsTotal.WithLabelValues("monthly").Inc()

	if v := gaugeValue(t, e.StakedPrincipal.WithLabelValues("long_term")); v != 1_000_000 {
		t.Errorf("StakedPrincipal[long_term] = %v, want 1000000", v)
	}
}
