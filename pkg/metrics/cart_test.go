package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestCartMetricsExportsCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewCartMetrics(reg)

	metrics.IncAdd("ok")
	metrics.IncAdd("ok")
	metrics.IncAdd("Rejected ")
	metrics.IncMerge()
	metrics.IncMigration("ok")
	metrics.ObserveOrganizeDuration(40 * time.Millisecond)

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}

	byName := map[string]*dto.MetricFamily{}
	for _, family := range families {
		byName[family.GetName()] = family
	}

	adds := byName["cart_add_total"]
	if adds == nil {
		t.Fatal("missing cart_add_total")
	}
	total := 0.0
	for _, metric := range adds.GetMetric() {
		total += metric.GetCounter().GetValue()
		for _, label := range metric.GetLabel() {
			if label.GetValue() == "Rejected " {
				t.Fatal("labels should be normalized")
			}
		}
	}
	if total != 3 {
		t.Fatalf("expected 3 adds, got %v", total)
	}

	if byName["cart_organize_duration_seconds"] == nil {
		t.Fatal("missing organize histogram")
	}
}

func TestCartMetricsNilSafe(t *testing.T) {
	var metrics *CartMetrics
	metrics.IncAdd("ok")
	metrics.IncMerge()
	metrics.IncMigration("failed")
	metrics.ObserveOrganizeDuration(time.Second)

	empty := NewCartMetrics(nil)
	empty.IncAdd("ok")
}
