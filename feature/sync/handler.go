package sync

import (
	"errors"

	"esl-middleware/core/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for the sync surface.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the sync routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/sync")
	group.Get("/status", h.HandleStatus)
	group.Post("/run", h.HandleRun)
	group.Get("/state", h.HandleState)
	group.Get("/state/:source", h.HandleSourceState)
}

// HandleStatus reports whether a cycle is running plus lifetime counters.
func (h *Handler) HandleStatus(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"running": h.service.Running(),
		"stats":   h.service.Stats(),
	})
}

// HandleRun triggers a synchronous cycle. Responds 409 when one is already
// in flight.
func (h *Handler) HandleRun(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)
	l.Info("Manual cycle requested")

	summary, err := h.service.RunCycle(c.Context())
	if err != nil {
		if errors.Is(err, ErrCycleInProgress) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"error": err.Error(),
			})
		}
		l.Error("Manual cycle failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	return c.JSON(summary)
}

// HandleState lists the tracking summary of every known source.
func (h *Handler) HandleState(c *fiber.Ctx) error {
	return c.JSON(h.service.StateSnapshot())
}

// HandleSourceState returns the tracking summary of one source.
func (h *Handler) HandleSourceState(c *fiber.Ctx) error {
	source := c.Params("source")
	info, ok := h.service.StateSnapshot()[source]
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "unknown source: " + source,
		})
	}
	return c.JSON(info)
}
