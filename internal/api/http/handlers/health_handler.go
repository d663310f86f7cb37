package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/grievance-service/internal/persistence"
)

const readinessCheckTimeout = 2 * time.Second

// HealthHandler answers liveness and readiness probes. Liveness is
// unconditional; readiness pings each backing store and reports the
// result per dependency.
type HealthHandler struct {
	serviceName string
	version     string
	postgres    *persistence.Postgres
	redis       *persistence.Redis
}

func NewHealthHandler(serviceName, version string, postgres *persistence.Postgres, redis *persistence.Redis) *HealthHandler {
	return &HealthHandler{serviceName: serviceName, version: version, postgres: postgres, redis: redis}
}

// Live reports that the process is running.
func (h *HealthHandler) Live(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "up",
		"service": h.serviceName,
		"version": h.version,
	})
}

// Ready pings the backing stores and returns 503 when any is down, so
// an orchestrator stops routing traffic here until they recover.
func (h *HealthHandler) Ready(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), readinessCheckTimeout)
	defer cancel()

	checks := fiber.Map{
		"postgres": h.checkStore(ctx, h.postgres),
		"redis":    h.checkStore(ctx, h.redis),
	}

	for _, result := range checks {
		if result != "ok" {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
				"error": fiber.Map{
					"code":    "DEPENDENCY_UNAVAILABLE",
					"message": "one or more dependencies unavailable",
					"details": checks,
				},
			})
		}
	}

	return c.JSON(fiber.Map{
		"status": "up",
		"checks": checks,
	})
}

type pinger interface {
	Ping(ctx context.Context) error
}

func (h *HealthHandler) checkStore(ctx context.Context, store pinger) string {
	if err := store.Ping(ctx); err != nil {
		return err.Error()
	}
	return "ok"
}
