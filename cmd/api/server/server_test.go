package server

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"store-api/cmd/api/di"
	"store-api/internal/config"
)

func TestNew_WiresBothServers(t *testing.T) {
	t.Setenv("DB_DRIVER", config.DriverSQLite)
	t.Setenv("DB_NAME", ":memory:")
	t.Setenv("BCRYPT_COST", "4")
	t.Setenv("HTTP_PORT", "18081")
	cfg, err := config.LoadConfig(t.TempDir())
	require.NoError(t, err)

	l := zaptest.NewLogger(t)
	c, err := di.NewContainer(cfg, l)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })

	s := New(cfg, l, c)
	require.NotNil(t, s.GRPC)
	require.NotNil(t, s.Gin)
	assert.Equal(t, ":18081", s.Gin.Addr)
	assert.Contains(t, s.GRPC.GetServiceInfo(), "store.v1.UserService")

	w := httptest.NewRecorder()
	s.Gin.Handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "store-api")
}
