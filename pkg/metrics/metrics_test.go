package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Record(t *testing.T) {
	m := New("store_api")

	m.ObserveHTTP("GET", "/api/store/v1/users/read", "200", 10*time.Millisecond)
	m.ObserveHTTP("GET", "/api/store/v1/users/read", "200", 20*time.Millisecond)
	m.RecordLogin(LoginRejected)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("GET", "/api/store/v1/users/read", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.LoginAttemptsTotal.WithLabelValues(LoginRejected)))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.LoginAttemptsTotal.WithLabelValues(LoginSuccess)))
}

func TestMetrics_IndependentRegistries(t *testing.T) {
	// two instances must not collide on registration
	a := New("store_api")
	b := New("store_api")

	a.RecordLogin(LoginSuccess)
	assert.Equal(t, 0.0, testutil.ToFloat64(b.LoginAttemptsTotal.WithLabelValues(LoginSuccess)))
}

func TestMetrics_Handler(t *testing.T) {
	m := New("store_api")
	m.RecordLogin(LoginSuccess)

	srv := httptest.NewServer(m.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `store_api_login_attempts_total{result="success"} 1`)
	assert.Contains(t, string(body), "go_goroutines")
}
