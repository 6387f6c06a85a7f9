package handlers

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dhima/client-service/internal/health"
	"github.com/dhima/client-service/internal/logging"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubPool struct {
	name string
	err  error
}

func (p stubPool) Name() string               { return p.name }
func (p stubPool) Ping(context.Context) error { return p.err }
func (p stubPool) Stats() sql.DBStats         { return sql.DBStats{OpenConnections: 3, Idle: 3} }

func serveHealth(t *testing.T, pools ...health.Pool) (*httptest.ResponseRecorder, HealthResponse) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	checker := health.NewChecker(func() []health.Pool { return pools })
	r := gin.New()
	r.GET("/health", NewHealthHandler(logging.NewNoOpLogger(), checker).Health)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	var body struct {
		Data HealthResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return w, body.Data
}

func TestHealth_WhenPoolsAnswer_ThenReturns200(t *testing.T) {
	w, body := serveHealth(t, stubPool{name: "_default_"})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, ServiceName, body.Service)
	assert.Equal(t, health.StatusOK, body.Status)
	require.Len(t, body.Pools, 1)
	assert.Equal(t, 3, body.Pools[0].Stats.OpenConnections)
}

func TestHealth_WhenPoolDown_ThenReturns503(t *testing.T) {
	w, body := serveHealth(t, stubPool{name: "_default_", err: errors.New("connection refused")})

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, health.StatusDegraded, body.Status)
	assert.Equal(t, "connection refused", body.Pools[0].Error)
}

func TestMetrics_ReportsPoolsAndLastHealth(t *testing.T) {
	gin.SetMode(gin.TestMode)
	source := func() []health.Pool { return []health.Pool{stubPool{name: "a"}, stubPool{name: "b"}} }
	checker := health.NewChecker(source)
	r := gin.New()
	r.GET("/metrics", NewMetricsHandler(logging.NewNoOpLogger(), source, checker).Metrics)

	fetch := func() MetricsResponse {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
		require.Equal(t, http.StatusOK, w.Code)
		var body struct {
			Data MetricsResponse `json:"data"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		return body.Data
	}

	before := fetch()
	require.Len(t, before.Pools, 2)
	assert.Equal(t, "b", before.Pools[1].Name)
	assert.Nil(t, before.LastHealth)

	require.NoError(t, checker.Run(context.Background()))
	after := fetch()
	require.NotNil(t, after.LastHealth)
	assert.Equal(t, health.StatusOK, after.LastHealth.Status)
}
