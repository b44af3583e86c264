package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/medrecords/internal/attachments"
	"github.com/localnerve/medrecords/internal/config"
	"github.com/localnerve/medrecords/internal/services"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// HealthHandler reports service health
type HealthHandler struct {
	Config      *config.Config
	DB          *gorm.DB
	Attachments *attachments.Store
	Log         *zap.Logger
}

// Health handles GET /api/health
// @Summary Health check
// @Description Checks the database, the authorizer and the attachment slots
// @Tags Health
// @Produce json
// @Success 200 {object} services.HealthCheckResult
// @Failure 503 {object} services.HealthCheckResult
// @Router /health [get]
func (h *HealthHandler) Health(c *fiber.Ctx) error {
	result := services.HealthCheck(c.UserContext(), h.Config, h.DB, h.Attachments, h.Log)
	status := fiber.StatusOK
	if result.Status != "healthy" {
		status = fiber.StatusServiceUnavailable
	}
	return c.Status(status).JSON(result)
}
