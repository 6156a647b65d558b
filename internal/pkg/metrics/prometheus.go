package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTP metrics
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "redacao",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "redacao",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"method", "path", "status"},
	)

	httpRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "redacao",
			Subsystem: "http",
			Name:      "requests_in_flight",
			Help:      "Number of HTTP requests currently being served",
		},
	)

	// Essay metrics
	essaysSubmittedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "redacao",
			Subsystem: "essay",
			Name:      "submitted_total",
			Help:      "Total number of essay submissions",
		},
		[]string{"plan"},
	)

	correctionsCompletedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "redacao",
			Subsystem: "essay",
			Name:      "corrections_completed_total",
			Help:      "Total number of completed corrections",
		},
		[]string{"status"},
	)

	// Token metrics
	tokensConsumedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "redacao",
			Subsystem: "tokens",
			Name:      "consumed_total",
			Help:      "Total number of correction tokens consumed",
		},
		[]string{"plan"},
	)

	tokenResetsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "redacao",
			Subsystem: "tokens",
			Name:      "monthly_resets_total",
			Help:      "Total number of monthly token quota resets applied",
		},
	)

	// Mail metrics
	mailsSentTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "redacao",
			Subsystem: "mail",
			Name:      "sent_total",
			Help:      "Total number of emails sent",
		},
		[]string{"kind", "status"},
	)
)

// responseWriter wraps http.ResponseWriter to capture status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// Middleware returns a middleware that records Prometheus metrics
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		httpRequestsInFlight.Inc()
		defer httpRequestsInFlight.Dec()

		wrapped := &responseWriter{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		next.ServeHTTP(wrapped, r)

		duration := time.Since(start).Seconds()

		routePattern := chi.RouteContext(r.Context()).RoutePattern()
		if routePattern == "" {
			routePattern = "unknown"
		}

		status := strconv.Itoa(wrapped.statusCode)

		httpRequestsTotal.WithLabelValues(r.Method, routePattern, status).Inc()
		httpRequestDuration.WithLabelValues(r.Method, routePattern, status).Observe(duration)
	})
}

// Handler returns the Prometheus metrics HTTP handler
func Handler() http.Handler {
	return promhttp.Handler()
}

// RecordEssaySubmitted records an essay submission
func RecordEssaySubmitted(plan string) {
	essaysSubmittedTotal.WithLabelValues(plan).Inc()
}

// RecordCorrectionCompleted records a finished correction
func RecordCorrectionCompleted(status string) {
	correctionsCompletedTotal.WithLabelValues(status).Inc()
}

// RecordTokenConsumed records a consumed correction token
func RecordTokenConsumed(plan string) {
	tokensConsumedTotal.WithLabelValues(plan).Inc()
}

// RecordTokenReset records an applied monthly quota reset
func RecordTokenReset() {
	tokenResetsTotal.Inc()
}

// RecordMailSent records an email delivery attempt
func RecordMailSent(kind, status string) {
	mailsSentTotal.WithLabelValues(kind, status).Inc()
}
