package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics_Middleware(t *testing.T) {
	m := New()
	r := chi.NewRouter()
	r.Use(m.Middleware)
	r.Get("/api/loans/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	r.Handle("/metrics", m.Handler())

	for _, id := range []string{"1", "2"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/loans/"+id, nil))
	}

	assert.Equal(t, float64(2), testutil.ToFloat64(m.requestTotal.WithLabelValues(http.MethodGet, "/api/loans/{id}", "404")))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.Contains(w.Body.String(), "http_requests_total"))
}

func TestMetrics_DomainCounters(t *testing.T) {
	m := New()
	m.LoanCreated("Approved")
	m.LoanCreated("Approved")
	m.RepaymentRecorded("UPI", "Paid")
	m.NotificationSent("loan_approved", false)
	m.GatewayCall("razorpay", "create_payment", true)

	assert.Equal(t, float64(2), testutil.ToFloat64(m.loansCreated.WithLabelValues("Approved")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.repayments.WithLabelValues("UPI", "Paid")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.notifications.WithLabelValues("loan_approved", "false")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.gatewayCalls.WithLabelValues("razorpay", "create_payment", "true")))
}

func TestMetrics_Nil(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.LoanCreated("Pending")
		m.RepaymentRecorded("UPI", "Paid")
		m.NotificationSent("welcome", true)
		m.GatewayCall("razorpay", "verify_payment", false)
	})

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusTeapot) })
	w := httptest.NewRecorder()
	m.Middleware(next).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusTeapot, w.Code)

	w = httptest.NewRecorder()
	m.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
