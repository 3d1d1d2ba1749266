package observability

import (
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// knownCategories bounds label cardinality; anything else is reported as "other".
var knownCategories = map[string]string{
	"transport":   "transport",
	"food":        "food",
	"electricity": "electricity",
	"shopping":    "shopping",
}

var (
	activitiesLogged = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "carbon_tracker",
		Subsystem: "ledger",
		Name:      "activities_logged_total",
		Help:      "Number of activities persisted, labeled by category.",
	}, []string{"category"})

	emissionKilograms = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "carbon_tracker",
		Subsystem: "ledger",
		Name:      "activity_emission_kg",
		Help:      "Emission attributed to each persisted activity in kg CO2.",
		Buckets:   prometheus.ExponentialBuckets(0.1, 2, 10),
	}, []string{"category"})

	activityPersistGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "carbon_tracker",
		Subsystem: "ledger",
		Name:      "last_activity_persisted_timestamp_seconds",
		Help:      "Unix timestamp of the most recent activity persisted.",
	})

	httpDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "carbon_tracker",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "Latency of HTTP requests by method and status code.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"code", "method"})
)

func init() {
	prometheus.MustRegister(activitiesLogged, emissionKilograms, activityPersistGauge, httpDuration)
}

// CategoryLabel folds a free-text category onto a bounded label set.
func CategoryLabel(category string) string {
	if label, ok := knownCategories[strings.ToLower(strings.TrimSpace(category))]; ok {
		return label
	}
	return "other"
}

// RecordActivityLogged updates ledger counters and the persistence watermark.
func RecordActivityLogged(category string, kilograms float64, ts time.Time) {
	label := CategoryLabel(category)
	activitiesLogged.WithLabelValues(label).Inc()
	emissionKilograms.WithLabelValues(label).Observe(kilograms)
	if ts.IsZero() {
		return
	}
	activityPersistGauge.Set(float64(ts.Unix()))
}

// InstrumentHTTP records request latency for the wrapped handler.
func InstrumentHTTP(next http.Handler) http.Handler {
	return promhttp.InstrumentHandlerDuration(httpDuration, next)
}
