package online

import (
	"errors"

	"customer-merger/core/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for merge jobs.
type Handler struct {
	service *Service
	logger  *zap.Logger
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service, logger *zap.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// RegisterRoutes registers the merge routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/merge")
	group.Post("/run", h.HandleRun)
	group.Post("/dedup", h.HandleDedup)
	app.Get("/customers/:id", h.HandleGetCustomer)
}

// HandleRun triggers an incremental merge.
// @Summary Run Incremental Merge
// @Description Folds reservations and guests updated after the last committed profile into customer profiles.
// @Tags merge
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} online.Status "Merge Status"
// @Failure 409 {object} map[string]string "Already Running"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /merge/run [post]
func (h *Handler) HandleRun(c *fiber.Ctx) error {
	l := logger.WithRayID(h.logger, c)
	l.Info("Triggering merge run")

	status, err := h.service.Run(c.UserContext())
	if err != nil {
		return h.fail(c, l, "Merge run failed", err)
	}
	return c.JSON(status)
}

// HandleDedup triggers a dedup pass.
// @Summary Deduplicate Profiles
// @Description Reassigns records claimed by several profiles and deletes surplus stored versions.
// @Tags merge
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} online.DedupReport "Dedup Report"
// @Failure 409 {object} map[string]string "Already Running"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /merge/dedup [post]
func (h *Handler) HandleDedup(c *fiber.Ctx) error {
	l := logger.WithRayID(h.logger, c)
	l.Info("Triggering dedup")

	report, err := h.service.Dedup(c.UserContext())
	if err != nil {
		return h.fail(c, l, "Dedup failed", err)
	}
	return c.JSON(report)
}

// HandleGetCustomer returns one profile.
// @Summary Get Customer
// @Description Returns the stored customer profile with the given id.
// @Tags customers
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "Customer ID"
// @Success 200 {object} models.Customer "Customer"
// @Failure 404 {object} map[string]string "Not Found"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /customers/{id} [get]
func (h *Handler) HandleGetCustomer(c *fiber.Ctx) error {
	l := logger.WithRayID(h.logger, c)
	id := c.Params("id")

	customer, err := h.service.Customer(c.UserContext(), id)
	if err != nil {
		l.Error("Customer lookup failed", zap.String("customer_id", id), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	if customer == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "customer not found"})
	}
	return c.JSON(customer)
}

func (h *Handler) fail(c *fiber.Ctx, l *zap.Logger, msg string, err error) error {
	if errors.Is(err, ErrBusy) {
		l.Warn(msg, zap.Error(err))
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
	}
	l.Error(msg, zap.Error(err))
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
}
