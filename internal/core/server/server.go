package server

import (
	"context"
	"errors"
	"fmt"
	"time"

	"heroshop/internal/core/config"
	"heroshop/internal/core/logger"

	"github.com/gofiber/contrib/fiberzap/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/swagger"
	"go.uber.org/zap"

	_ "heroshop/docs/swagger"
)

// Pinger is a dependency the health endpoint reports on.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Server holds the Fiber application and configuration.
type Server struct {
	// App is the main Fiber application instance.
	App *fiber.App
	// cfg holds the application configuration.
	cfg *config.AppConfig
	// checks are the named dependencies checked by /health.
	checks map[string]Pinger
}

// New creates a new Server instance with configured middleware.
func New(cfg *config.AppConfig) *Server {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		AppName:               "heroshop",
		ErrorHandler:          ErrorHandler,
	})

	app.Use(requestid.New(requestid.Config{
		Header: "X-Ray-ID",
	}))

	app.Use(fiberzap.New(fiberzap.Config{
		Logger: logger.Named("http"),
	}))

	s := &Server{
		App:    app,
		cfg:    cfg,
		checks: make(map[string]Pinger),
	}

	app.Get("/swagger/*", swagger.HandlerDefault)
	app.Get("/health", s.health)

	return s
}

// AddHealthCheck registers a dependency to be checked by /health.
func (s *Server) AddHealthCheck(name string, p Pinger) {
	s.checks[name] = p
}

// HealthResponse reports the state of each registered dependency.
type HealthResponse struct {
	Status     string            `json:"status"`
	Components map[string]string `json:"components,omitempty"`
}

// health handles GET /health.
// @Summary Service health
// @Tags System
// @Produce json
// @Success 200 {object} HealthResponse
// @Failure 503 {object} HealthResponse
// @Router /health [get]
func (s *Server) health(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
	defer cancel()

	resp := HealthResponse{Status: "ok", Components: make(map[string]string, len(s.checks))}
	for name, p := range s.checks {
		if err := p.Ping(ctx); err != nil {
			logger.Get().Warn("Health check failed", zap.String("component", name), zap.Error(err))
			resp.Status = "degraded"
			resp.Components[name] = "down"
			continue
		}
		resp.Components[name] = "up"
	}

	if resp.Status != "ok" {
		return c.Status(fiber.StatusServiceUnavailable).JSON(resp)
	}
	return c.JSON(resp)
}

// Run starts the HTTP server.
func (s *Server) Run() error {
	addr := fmt.Sprintf(":%d", s.cfg.ServerPort)
	logger.Get().Info("Starting server", zap.String("address", addr))
	return s.App.Listen(addr)
}

// Shutdown stops accepting connections and waits for in-flight requests until the timeout.
func (s *Server) Shutdown(timeout time.Duration) error {
	return s.App.ShutdownWithTimeout(timeout)
}

// ErrorResponse represents an error response with Ray ID.
type ErrorResponse struct {
	// Message is the error description.
	Message string `json:"message"`
	// Reason is a stable machine-readable code for declined requests.
	Reason string `json:"reason,omitempty"`
	// RayID is the unique request identifier for tracing.
	RayID string `json:"ray_id,omitempty"`
}

// RayID returns the request identifier assigned by the requestid middleware.
func RayID(c *fiber.Ctx) string {
	id, _ := c.Locals("requestid").(string)
	return id
}

// Fail writes an ErrorResponse with the given status.
func Fail(c *fiber.Ctx, status int, reason, message string) error {
	return c.Status(status).JSON(ErrorResponse{
		Message: message,
		Reason:  reason,
		RayID:   RayID(c),
	})
}

// ErrorHandler renders errors that escape handlers and middleware.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "internal server error"

	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
		message = fe.Message
	} else {
		logger.Get().Error("Unhandled request error",
			zap.String("ray_id", RayID(c)),
			zap.String("path", c.Path()),
			zap.Error(err))
	}

	return c.Status(code).JSON(ErrorResponse{
		Message: message,
		RayID:   RayID(c),
	})
}
