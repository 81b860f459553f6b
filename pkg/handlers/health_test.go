package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/civicsynth/deliberation-engine/pkg/config"
)

func TestHealthEndpoint(t *testing.T) {
	h := NewHealthHandler(&config.Config{}, zap.NewNop())

	rec := httptest.NewRecorder()
	h.Health(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

func TestPingEndpoint(t *testing.T) {
	cfg := &config.Config{Version: "1.2.3", Env: "test"}
	h := NewHealthHandler(cfg, zap.NewNop())

	rec := httptest.NewRecorder()
	h.Ping(rec, httptest.NewRequest(http.MethodGet, "/ping", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var resp PingResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "1.2.3", resp.Version)
	assert.Equal(t, "deliberation-engine", resp.Service)
	assert.Equal(t, "test", resp.Environment)
	assert.NotEmpty(t, resp.GoVersion)
}
