package metric

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientMetrics(t *testing.T) {
	m := NewClientMetrics()
	m.Observe("GET", "/cart_items/user/{id}", 200, 20*time.Millisecond)
	m.Observe("GET", "/cart_items/user/{id}", 200, 30*time.Millisecond)
	m.Observe("DELETE", "/cart_items/{id}", 0, time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.requestsTotal.WithLabelValues("GET", "/cart_items/user/{id}", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.requestsTotal.WithLabelValues("DELETE", "/cart_items/{id}", "error")))
	assert.Equal(t, 2.0, m.RequestCount("GET", "/cart_items/user/{id}", "200"))
	assert.Equal(t, 1.0, m.RequestCount("DELETE", "/cart_items/{id}", "error"))
	assert.Equal(t, 0.0, m.RequestCount("POST", "/cart_items", "201"))

	path := filepath.Join(t.TempDir(), "kickshopping.prom")
	require.NoError(t, m.WriteTextfile(path))
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(b), "kickshopping_client_requests_total")
	assert.Contains(t, string(b), "kickshopping_client_request_duration_seconds")
}

func TestNilClientMetrics(t *testing.T) {
	var m *ClientMetrics
	assert.NotPanics(t, func() {
		m.Observe("GET", "/", 200, time.Millisecond)
	})
	assert.NoError(t, m.WriteTextfile("/nonexistent/dir/file.prom"))
	assert.Equal(t, 0.0, m.RequestCount("GET", "/", "200"))
}
