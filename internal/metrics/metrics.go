package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Registry holds the application-specific Prometheus collectors.
	Registry = prometheus.NewRegistry()

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "dayboard",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		},
		[]string{"method", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "dayboard",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10), // 5ms to ~5s
		},
		[]string{"method"},
	)

	digestDispatches = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "dayboard",
			Subsystem: "digest",
			Name:      "dispatches_total",
			Help:      "Digest dispatch attempts by kind, channel and result.",
		},
		[]string{"kind", "channel", "result"},
	)

	digestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "dayboard",
			Subsystem: "digest",
			Name:      "dispatch_duration_seconds",
			Help:      "Time spent composing and delivering a digest.",
			Buckets:   prometheus.ExponentialBuckets(0.01, 2, 12), // 10ms to ~40s
		},
		[]string{"channel"},
	)

	schedulerTicks = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "dayboard",
			Subsystem: "scheduler",
			Name:      "ticks_total",
			Help:      "Scheduler ticks that scanned users.",
		},
	)

	schedulerUsers = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "dayboard",
			Subsystem: "scheduler",
			Name:      "eligible_users",
			Help:      "Users with notifications enabled at the last tick.",
		},
	)
)

func init() {
	Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		httpRequests,
		httpDuration,
		digestDispatches,
		digestDuration,
		schedulerTicks,
		schedulerUsers,
	)
}

// Handler exposes the registry in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// ObserveHTTP records one served request.
func ObserveHTTP(method string, status int, d time.Duration) {
	httpRequests.WithLabelValues(method, strconv.Itoa(status)).Inc()
	httpDuration.WithLabelValues(method).Observe(d.Seconds())
}

// RecordDispatch records the outcome of one digest dispatch.
func RecordDispatch(kind, channel, result string, d time.Duration) {
	digestDispatches.WithLabelValues(kind, channel, result).Inc()
	digestDuration.WithLabelValues(channel).Observe(d.Seconds())
}

// RecordTick records a scheduler pass over eligible users.
func RecordTick(users int) {
	schedulerTicks.Inc()
	schedulerUsers.Set(float64(users))
}
