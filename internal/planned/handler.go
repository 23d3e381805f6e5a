package planned

import (
	"firin-backend/internal/auth"
	"firin-backend/internal/capacity"
	"firin-backend/internal/database"
	"firin-backend/internal/models"
	"firin-backend/internal/order"

	"github.com/gofiber/fiber/v2"
)

type UpsertRequest struct {
	BakeDayID uint                `json:"bake_day_id"`
	Items     []capacity.CartItem `json:"items"`
}

// -------------------------------------------------
// PUT /api/calendar/orders
// Müşterinin o güne ait planlı siparişini oluşturur/değiştirir.
// -------------------------------------------------
func UpsertHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		customerID, err := auth.CustomerID(c)
		if err != nil {
			return err
		}

		var body UpsertRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}
		if body.BakeDayID == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "bake_day_id zorunlu")
		}

		o, err := svc.Upsert(customerID, body.BakeDayID, body.Items)
		if err != nil {
			return order.RenderError(c, err)
		}
		return c.JSON(order.Response(o))
	}
}

// -------------------------------------------------
// DELETE /api/calendar/orders/:id
// -------------------------------------------------
func CancelHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		customerID, err := auth.CustomerID(c)
		if err != nil {
			return err
		}

		id, err := c.ParamsInt("id")
		if err != nil || id <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "id geçersiz")
		}

		// sahiplik kontrolü: müşteri sadece kendi planını iptal edebilir
		var o models.Order
		if err := database.DB.First(&o, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Sipariş bulunamadı")
		}
		if o.CustomerID != customerID {
			return fiber.NewError(fiber.StatusForbidden, "Bu sipariş size ait değil")
		}

		if err := svc.Cancel(o.ID); err != nil {
			return order.RenderError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// -------------------------------------------------
// GET /api/calendar/orders  (müşterinin bekleyen planları)
// -------------------------------------------------
func ListHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		customerID, err := auth.CustomerID(c)
		if err != nil {
			return err
		}

		var orders []models.Order
		if err := database.DB.Preload("Items").
			Where("customer_id = ? AND status = ?", customerID, models.StatusPlanned).
			Order("id asc").Find(&orders).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Siparişler listelenemedi")
		}

		resp := make([]order.OrderResponse, 0, len(orders))
		for i := range orders {
			resp = append(resp, order.Response(&orders[i]))
		}
		return c.JSON(resp)
	}
}
