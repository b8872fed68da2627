package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestCounters(t *testing.T) {
	m := New("invoicer_test")

	m.InvoiceGenerated("standard")
	m.InvoiceGenerated("standard")
	m.GenerationFailed("export")
	m.LoginAttempt("rejected")
	m.ObservePDFRender(20 * time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.invoicesGenerated.WithLabelValues("standard")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.generationFailures.WithLabelValues("export")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.loginAttempts.WithLabelValues("rejected")))

	m.HTTPRequest("GET", "/health", "200")
	n, err := testutil.GatherAndCount(m.Registry(), "invoicer_test_http_requests_total")
	assert.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.InvoiceGenerated("standard")
		m.GenerationFailed("render")
		m.LoginAttempt("ok")
		m.HTTPRequest("GET", "/health", "200")
		m.ObservePDFRender(time.Second)
	})
	assert.NotNil(t, m.Handler())
}
