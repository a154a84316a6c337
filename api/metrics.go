package api

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/helmdao/helm/dao"
)

var (
	metricRequestCount = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "helm_api_request_total",
		Help: "Requests served, by path, status code and method.",
	}, []string{"path", "code", "method"})
	metricRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "helm_api_request_duration_ms",
		Help:    "Request duration in milliseconds.",
		Buckets: []float64{1, 5, 10, 50, 100, 500, 1000},
	}, []string{"path", "code", "method"})

	metricCacheFolds = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "helm_cache_folds_total",
		Help: "Result-cache folds, by cache.",
	}, []string{"cache"})
)

// EventSink counts engine events worth a metric. Wire it as (part of)
// the engine's event sink.
func EventSink(ev dao.Event) {
	switch ev.(type) {
	case dao.NetworkFeeUpdated:
		metricCacheFolds.WithLabelValues("networkFee").Inc()
	case dao.BRRUpdated:
		metricCacheFolds.WithLabelValues("brr").Inc()
	}
}

// metricsResponseWriter captures the response status code.
type metricsResponseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (m *metricsResponseWriter) WriteHeader(code int) {
	m.statusCode = code
	m.ResponseWriter.WriteHeader(code)
}

// metricsHandler records a counter and duration sample per request.
func metricsHandler(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		started := time.Now()

		mrw := &metricsResponseWriter{w, http.StatusOK}
		h.ServeHTTP(mrw, r)

		path := strings.ReplaceAll(strings.TrimLeft(r.URL.Path, "/"), "/", "_")
		labels := []string{path, strconv.Itoa(mrw.statusCode), r.Method}
		metricRequestCount.WithLabelValues(labels...).Inc()
		metricRequestDuration.WithLabelValues(labels...).Observe(float64(time.Since(started).Milliseconds()))
	})
}
