package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
)

// Pinger is any optional dependency whose liveness /ping reports
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingFunc adapts a plain function to Pinger
type PingFunc func(ctx context.Context) error

func (f PingFunc) Ping(ctx context.Context) error { return f(ctx) }

// HealthHandler serves GET /ping
type HealthHandler struct {
	deps map[string]Pinger
}

// NewHealthHandler creates a health handler. Nil dependencies are skipped.
func NewHealthHandler(deps map[string]Pinger) *HealthHandler {
	active := make(map[string]Pinger, len(deps))
	for name, dep := range deps {
		if dep != nil {
			active[name] = dep
		}
	}
	return &HealthHandler{deps: active}
}

// HandleCheckHealth reports "ok" plus the state of each configured dependency.
// A failing optional dependency does not make the service unhealthy.
func (h *HealthHandler) HandleCheckHealth(c *fiber.Ctx) error {
	body := fiber.Map{"status": "ok"}

	ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
	defer cancel()

	for name, dep := range h.deps {
		if err := dep.Ping(ctx); err != nil {
			body[name] = "unavailable"
			continue
		}
		body[name] = "ok"
	}

	return c.JSON(body)
}
