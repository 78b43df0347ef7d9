package metrics

import (
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// CartMetrics records counters for cart engine operations.
type CartMetrics struct {
	adds       *prometheus.CounterVec
	merges     prometheus.Counter
	migrations *prometheus.CounterVec
	organize   prometheus.Histogram
}

// NewCartMetrics registers the cart metrics on the provided registerer.
func NewCartMetrics(reg prometheus.Registerer) *CartMetrics {
	if reg == nil {
		return &CartMetrics{}
	}
	adds := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cart_add_total",
		Help: "Add-to-cart attempts by result.",
	}, []string{"result"})
	merges := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cart_merge_total",
		Help: "Adds resolved by merging into an existing line.",
	})
	migrations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cart_migration_total",
		Help: "Cart migrations by result.",
	}, []string{"result"})
	organize := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "cart_organize_duration_seconds",
		Help:    "Duration of the cart organizing pass.",
		Buckets: prometheus.DefBuckets,
	})
	reg.MustRegister(adds, merges, migrations, organize)
	return &CartMetrics{
		adds:       adds,
		merges:     merges,
		migrations: migrations,
		organize:   organize,
	}
}

// IncAdd counts one add-to-cart attempt with the given result label.
func (c *CartMetrics) IncAdd(result string) {
	if c == nil || c.adds == nil {
		return
	}
	c.adds.WithLabelValues(normalizeLabel(result)).Inc()
}

// IncMerge counts one quantity-merge resolution.
func (c *CartMetrics) IncMerge() {
	if c == nil || c.merges == nil {
		return
	}
	c.merges.Inc()
}

// IncMigration counts one cart migration with the given result label.
func (c *CartMetrics) IncMigration(result string) {
	if c == nil || c.migrations == nil {
		return
	}
	c.migrations.WithLabelValues(normalizeLabel(result)).Inc()
}

// ObserveOrganizeDuration records one organizing pass.
func (c *CartMetrics) ObserveOrganizeDuration(duration time.Duration) {
	if c == nil || c.organize == nil {
		return
	}
	c.organize.Observe(duration.Seconds())
}

func normalizeLabel(value string) string {
	value = strings.TrimSpace(strings.ToLower(value))
	if value == "" {
		return "unknown"
	}
	return value
}
