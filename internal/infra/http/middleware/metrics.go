package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	activeConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_active_connections",
			Help: "Number of active HTTP connections",
		},
	)

	leadsCaptured = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "crm_leads_captured_total",
			Help: "Total number of leads captured by the intake quiz",
		},
	)

	leadStatusChanges = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "crm_lead_status_changes_total",
			Help: "Total number of lead status changes",
		},
		[]string{"status", "source"},
	)

	salesCreated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "crm_sales_created_total",
			Help: "Total number of sales created",
		},
		[]string{"plan"},
	)

	paymentsRecorded = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "crm_payments_recorded_total",
			Help: "Total number of payment proofs recorded",
		},
	)

	accessChanges = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "crm_access_changes_total",
			Help: "Total number of course access changes",
		},
		[]string{"action"},
	)

	membersByAccessStatus = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "crm_members_by_access_status",
			Help: "Sales grouped by derived course access status",
		},
		[]string{"status"},
	)

	integrationErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "integration_errors_total",
			Help: "Total number of integration errors",
		},
		[]string{"service"},
	)
)

type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func Metrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		activeConnections.Inc()
		defer activeConnections.Dec()

		rw := &responseWriter{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		next.ServeHTTP(rw, r)

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(rw.statusCode)
		path := routePattern(r)

		httpRequestsTotal.WithLabelValues(r.Method, path, status).Inc()
		httpRequestDuration.WithLabelValues(r.Method, path).Observe(duration)
	})
}

// routePattern keeps ids out of the path label.
func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if p := rctx.RoutePattern(); p != "" {
			return p
		}
	}
	return "unmatched"
}

func RecordLeadCaptured() {
	leadsCaptured.Inc()
}

func RecordLeadStatusChange(status, source string) {
	leadStatusChanges.WithLabelValues(status, source).Inc()
}

func RecordSaleCreated(plan string) {
	salesCreated.WithLabelValues(plan).Inc()
}

func RecordPayment() {
	paymentsRecorded.Inc()
}

func RecordAccessChange(action string) {
	accessChanges.WithLabelValues(action).Inc()
}

func SetMembersByAccessStatus(status string, n int) {
	membersByAccessStatus.WithLabelValues(status).Set(float64(n))
}

func RecordIntegrationError(service string) {
	integrationErrors.WithLabelValues(service).Inc()
}
