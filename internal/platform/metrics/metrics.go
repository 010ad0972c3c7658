package metrics

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "mandara"

var (
	// HTTP metrics
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		},
		[]string{"method", "route"},
	)

	httpRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "http_requests_in_flight",
			Help:      "Number of HTTP requests currently being processed",
		},
	)

	// Synthesis metrics
	documentsSynthesized = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "documents_synthesized_total",
			Help:      "Total number of FHIR documents synthesized",
		},
		[]string{"kind", "outcome"},
	)

	danglingReferences = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dangling_references_total",
			Help:      "Code references omitted from Conditions because the registry could not resolve them",
		},
		[]string{"kind"},
	)

	dataQualityWarnings = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "data_quality_warnings_total",
			Help:      "Total number of non-fatal data quality findings in synthesized bundles",
		},
	)

	// Outbound push metrics
	pushRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fhir_push_requests_total",
			Help:      "Total number of bundles pushed to a receiving FHIR server",
		},
		[]string{"status"},
	)

	pushRequestDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "fhir_push_duration_seconds",
			Help:      "Bundle push duration in seconds",
			Buckets:   []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		},
	)

	// Exchange metrics
	exchangeRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "exchange_requests_total",
			Help:      "Total number of inter-clinic data exchange requests by status transition",
		},
		[]string{"type", "status"},
	)
)

// Handler returns the Prometheus scrape endpoint.
func Handler() echo.HandlerFunc {
	return echo.WrapHandler(promhttp.Handler())
}

// Middleware records request counts and latency, labelled by the matched
// route template rather than the raw path.
func Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			httpRequestsInFlight.Inc()
			defer httpRequestsInFlight.Dec()

			err := next(c)

			status := c.Response().Status
			if he, ok := err.(*echo.HTTPError); ok {
				status = he.Code
			}
			route := c.Path()
			if route == "" {
				route = "unmatched"
			}
			method := c.Request().Method

			httpRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
			httpRequestDuration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
			return err
		}
	}
}

// --- Business metric helpers ---

// RecordSynthesis records one document build. outcome is "ok", "empty" or "error".
func RecordSynthesis(kind, outcome string) {
	documentsSynthesized.WithLabelValues(kind, outcome).Inc()
}

// RecordDanglingReferences adds n omitted references of the given kind.
func RecordDanglingReferences(kind string, n int) {
	if n > 0 {
		danglingReferences.WithLabelValues(kind).Add(float64(n))
	}
}

func RecordDataQualityWarnings(n int) {
	if n > 0 {
		dataQualityWarnings.Add(float64(n))
	}
}

// RecordPush records an outbound bundle push.
func RecordPush(status string, d time.Duration) {
	pushRequestsTotal.WithLabelValues(status).Inc()
	pushRequestDuration.Observe(d.Seconds())
}

func RecordExchange(requestType, status string) {
	exchangeRequests.WithLabelValues(requestType, status).Inc()
}
