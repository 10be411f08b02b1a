package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application
type Metrics struct {
	UsersRegistered    prometheus.Counter
	CasesOpened        prometheus.Counter
	EvidenceRecorded   prometheus.Counter
	ActivityPublished  *prometheus.CounterVec
	GatewayCalls       *prometheus.HistogramVec
	BreakerState       *prometheus.GaugeVec
	HTTPRequests       *prometheus.CounterVec
	HTTPRequestLatency *prometheus.HistogramVec
}

// New creates and registers all Prometheus metrics with reg. Pass
// prometheus.DefaultRegisterer in production and a fresh registry in tests.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		UsersRegistered: f.NewCounter(prometheus.CounterOpts{
			Name: "casevault_users_registered_total",
			Help: "Total number of user registrations accepted",
		}),
		CasesOpened: f.NewCounter(prometheus.CounterOpts{
			Name: "casevault_cases_opened_total",
			Help: "Total number of cases opened through request approval",
		}),
		EvidenceRecorded: f.NewCounter(prometheus.CounterOpts{
			Name: "casevault_evidence_recorded_total",
			Help: "Total number of evidence records created",
		}),
		ActivityPublished: f.NewCounterVec(prometheus.CounterOpts{
			Name: "casevault_activity_published_total",
			Help: "Activity entries mirrored to the event stream, by outcome",
		}, []string{"outcome"}),
		GatewayCalls: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "casevault_gateway_call_duration_seconds",
			Help:    "Latency of ledger and blob gateway calls",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"gateway", "operation", "outcome"}),
		BreakerState: f.NewGaugeVec(prometheus.GaugeOpts{
			Name: "casevault_gateway_breaker_open",
			Help: "Circuit breaker state per gateway (0=closed, 0.5=half-open, 1=open)",
		}, []string{"gateway"}),
		HTTPRequests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "casevault_http_requests_total",
			Help: "HTTP requests by route pattern and status",
		}, []string{"method", "route", "status"}),
		HTTPRequestLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "casevault_http_request_duration_seconds",
			Help:    "HTTP request latency by route pattern",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
}

// ObserveGateway records one gateway call.
func (m *Metrics) ObserveGateway(gateway, operation string, start time.Time, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.GatewayCalls.WithLabelValues(gateway, operation, outcome).Observe(time.Since(start).Seconds())
}

// SetBreakerState publishes a breaker transition ("closed", "half-open", "open").
func (m *Metrics) SetBreakerState(gateway, state string) {
	v := 0.0
	switch state {
	case "open":
		v = 1
	case "half-open":
		v = 0.5
	}
	m.BreakerState.WithLabelValues(gateway).Set(v)
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

// Middleware counts requests by chi route pattern so path parameters do not
// explode label cardinality.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, r)

		route := "unmatched"
		if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
			route = rc.RoutePattern()
		}
		m.HTTPRequests.WithLabelValues(r.Method, route, strconv.Itoa(sw.status)).Inc()
		m.HTTPRequestLatency.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}
