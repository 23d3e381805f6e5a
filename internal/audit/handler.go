package audit

import (
	"firin-backend/internal/database"
	"firin-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

// -------------------------------------------------
// GET /api/admin/audit-logs?entity_type=bake_day&limit=100
// -------------------------------------------------
func ListAuditLogsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		limit := c.QueryInt("limit", 100)
		if limit <= 0 || limit > 500 {
			limit = 100
		}

		dbq := database.DB.Model(&models.AuditLog{})
		if entityType := c.Query("entity_type"); entityType != "" {
			dbq = dbq.Where("entity_type = ?", entityType)
		}

		var logs []models.AuditLog
		if err := dbq.Order("id desc").Limit(limit).Find(&logs).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Kayıtlar listelenemedi")
		}
		return c.JSON(logs)
	}
}
