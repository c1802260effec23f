package metrics

import (
	"net/http"
	"runtime"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics owns the Prometheus registry of the portal. A nil *Metrics is valid
// and records nothing.
type Metrics struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	loansCreated    *prometheus.CounterVec
	repayments      *prometheus.CounterVec
	notifications   *prometheus.CounterVec
	gatewayCalls    *prometheus.CounterVec
}

func New() *Metrics {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	loansCreated := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "loans_created_total",
		Help: "Loan applications created by resulting status",
	}, []string{"status"})

	repayments := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "repayments_recorded_total",
		Help: "Repayments recorded by method and status",
	}, []string{"method", "status"})

	notifications := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "notifications_total",
		Help: "Notifications attempted by event and outcome",
	}, []string{"event", "delivered"})

	gatewayCalls := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "gateway_calls_total",
		Help: "Payment gateway calls by gateway, operation and outcome",
	}, []string{"gateway", "op", "ok"})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, loansCreated, repayments, notifications, gatewayCalls, goroutines)

	return &Metrics{
		registry:        registry,
		handler:         promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
		loansCreated:    loansCreated,
		repayments:      repayments,
		notifications:   notifications,
		gatewayCalls:    gatewayCalls,
	}
}

func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// Middleware labels requests by chi route pattern to keep cardinality bounded.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m == nil {
			next.ServeHTTP(w, r)
			return
		}
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		path := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				path = pattern
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		m.ObserveHTTPRequest(r.Method, path, status, time.Since(start))
	})
}

func (m *Metrics) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	label := strconv.Itoa(status)
	m.requestDuration.WithLabelValues(method, path, label).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, label).Inc()
}

func (m *Metrics) LoanCreated(status string) {
	if m == nil {
		return
	}
	m.loansCreated.WithLabelValues(status).Inc()
}

func (m *Metrics) RepaymentRecorded(method, status string) {
	if m == nil {
		return
	}
	m.repayments.WithLabelValues(method, status).Inc()
}

func (m *Metrics) NotificationSent(event string, delivered bool) {
	if m == nil {
		return
	}
	m.notifications.WithLabelValues(event, strconv.FormatBool(delivered)).Inc()
}

func (m *Metrics) GatewayCall(gateway, op string, ok bool) {
	if m == nil {
		return
	}
	m.gatewayCalls.WithLabelValues(gateway, op, strconv.FormatBool(ok)).Inc()
}
