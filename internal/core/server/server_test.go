package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"heroshop/internal/core/config"
	"heroshop/internal/core/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubPinger struct {
	err error
}

func (s stubPinger) Ping(ctx context.Context) error {
	return s.err
}

// TestNew verifies that New creates a Server with the correct configuration.
func TestNew(t *testing.T) {
	cfg := &config.AppConfig{
		ServerPort: 8080,
	}

	logger.Init("development", "debug")
	srv := New(cfg)

	require.NotNil(t, srv)
	assert.NotNil(t, srv.App)
	assert.Equal(t, cfg, srv.cfg)
}

// TestServer_Run_Error verifies that Run returns an error when binding fails (e.g., privileged port).
func TestServer_Run_Error(t *testing.T) {
	cfg := &config.AppConfig{
		ServerPort: 1,
	}
	logger.Init("development", "error")

	srv := New(cfg)

	errCh := make(chan error)
	go func() {
		errCh <- srv.Run()
	}()

	select {
	case err := <-errCh:
		assert.Error(t, err)
	case <-time.After(1 * time.Second):
		_ = srv.Shutdown(time.Second)
		t.Log("Server unexpectedly started or timed out on Error test")
	}
}

// TestServer_Health verifies that a failing dependency turns the health endpoint unavailable.
func TestServer_Health(t *testing.T) {
	logger.Init("development", "error")

	tests := []struct {
		name       string
		cacheErr   error
		wantStatus int
		wantState  string
	}{
		{name: "all up", wantStatus: http.StatusOK, wantState: "ok"},
		{name: "cache down", cacheErr: errors.New("connection refused"), wantStatus: http.StatusServiceUnavailable, wantState: "degraded"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := New(&config.AppConfig{})
			srv.AddHealthCheck("mongo", stubPinger{})
			srv.AddHealthCheck("redis", stubPinger{err: tt.cacheErr})

			resp, err := srv.App.Test(httptest.NewRequest(http.MethodGet, "/health", nil))
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, resp.StatusCode)

			var body HealthResponse
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
			assert.Equal(t, tt.wantState, body.Status)
			assert.Equal(t, "up", body.Components["mongo"])
		})
	}
}

// TestErrorHandler verifies that fiber errors keep their status and unknown errors become 500 with a ray id.
func TestErrorHandler(t *testing.T) {
	logger.Init("development", "error")
	srv := New(&config.AppConfig{})
	srv.App.Get("/teapot", func(c *fiber.Ctx) error {
		return fiber.NewError(fiber.StatusTeapot, "short and stout")
	})
	srv.App.Get("/boom", func(c *fiber.Ctx) error {
		return errors.New("database exploded")
	})

	resp, err := srv.App.Test(httptest.NewRequest(http.MethodGet, "/teapot", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusTeapot, resp.StatusCode)

	resp, err = srv.App.Test(httptest.NewRequest(http.MethodGet, "/boom", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)

	var body ErrorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "internal server error", body.Message)
	assert.NotEmpty(t, body.RayID)
	assert.Equal(t, body.RayID, resp.Header.Get("X-Ray-ID"))
}
