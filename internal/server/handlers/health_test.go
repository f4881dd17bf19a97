package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vzahanych/weather-tools-service/internal/tools"
	"go.uber.org/zap/zaptest"
)

func serveHealth(t *testing.T, h gin.HandlerFunc) (int, HealthResponse) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/health", nil)
	h(c)

	var resp HealthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return w.Code, resp
}

func TestHealthUsesHealthTool(t *testing.T) {
	kit, err := tools.New(tools.Options{Logger: zaptest.NewLogger(t)})
	require.NoError(t, err)
	h := NewHealthHandler(kit, zaptest.NewLogger(t))

	code, resp := serveHealth(t, h.Health)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ok", resp.Status)
	assert.NotEmpty(t, resp.Timestamp)

	code, resp = serveHealth(t, h.Readiness)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ready", resp.Status)
}

func TestHealthUnavailableWithoutHealthTool(t *testing.T) {
	kit := tools.NewToolkit(zaptest.NewLogger(t), nil)
	h := NewHealthHandler(kit, zaptest.NewLogger(t))

	for _, check := range []gin.HandlerFunc{h.Health, h.Liveness, h.Readiness} {
		code, resp := serveHealth(t, check)
		assert.Equal(t, http.StatusServiceUnavailable, code)
		assert.Equal(t, "unavailable", resp.Status)
	}
}
