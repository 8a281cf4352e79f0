package api

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type metrics struct {
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
}

func newMetrics(reg prometheus.Registerer) *metrics {
	factory := promauto.With(reg)

	return &metrics{
		requestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "projdesk_api_requests_total",
				Help: "Total number of API requests by operation and status code",
			},
			[]string{"operation", "code"},
		),
		requestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "projdesk_api_request_duration_seconds",
				Help:    "API request duration by operation",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (rec *statusRecorder) WriteHeader(code int) {
	rec.status = code
	rec.ResponseWriter.WriteHeader(code)
}

func (h *Handler) instrument(operation string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		timer := prometheus.NewTimer(h.metrics.requestDuration.WithLabelValues(operation))
		defer timer.ObserveDuration()

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next(rec, r)

		h.metrics.requestsTotal.WithLabelValues(operation, strconv.Itoa(rec.status)).Inc()
	}
}
