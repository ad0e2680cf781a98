package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	namespace = "tripdb"

	requestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Time taken to serve HTTP requests",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)

	queriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "store",
			Name:      "queries_total",
			Help:      "Total number of queries executed against a collection",
		},
		[]string{"collection"},
	)

	writesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "store",
			Name:      "writes_total",
			Help:      "Total number of write-through persistence calls by operation",
		},
		[]string{"collection", "operation"},
	)

	writeErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "store",
			Name:      "write_errors_total",
			Help:      "Total number of failed persistence writes by operation",
		},
		[]string{"collection", "operation"},
	)

	storeRecords = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "store",
			Name:      "records",
			Help:      "Number of records held in memory per collection",
		},
		[]string{"collection"},
	)

	backendSelected = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "persistence",
			Name:      "backend_selected",
			Help:      "1 for the backend chosen by detection, 0 otherwise",
		},
		[]string{"backend"},
	)
)

// ObserveRequest records the duration of one HTTP request
func ObserveRequest(method, route, status string, elapsed time.Duration) {
	requestDuration.WithLabelValues(method, route, status).Observe(elapsed.Seconds())
}

// IncQuery counts one query against collection
func IncQuery(collection string) {
	queriesTotal.WithLabelValues(collection).Inc()
}

// IncWrite counts one persistence write, and its failure when err is non-nil
func IncWrite(collection, operation string, err error) {
	writesTotal.WithLabelValues(collection, operation).Inc()
	if err != nil {
		writeErrorsTotal.WithLabelValues(collection, operation).Inc()
	}
}

// SetRecords reports the in-memory size of a collection
func SetRecords(collection string, n int) {
	storeRecords.WithLabelValues(collection).Set(float64(n))
}

// SetBackend marks backend as the detected one
func SetBackend(backend string) {
	for _, name := range []string{"remote", "local"} {
		value := 0.0
		if name == backend {
			value = 1
		}
		backendSelected.WithLabelValues(name).Set(value)
	}
}

// Handler serves the default prometheus registry
func Handler() http.Handler {
	return promhttp.Handler()
}
