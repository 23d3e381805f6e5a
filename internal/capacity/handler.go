package capacity

import (
	"firin-backend/internal/database"
	"firin-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

// -------------------------------------------------
// GET /api/bake-days/:id/usage
// Vitrin doluluk göstergesi ve yönetim panosu için.
// -------------------------------------------------
func UsageHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil || id <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "id geçersiz")
		}

		var day models.BakeDay
		if err := database.DB.First(&day, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Üretim günü bulunamadı")
		}

		usage, err := UsageFor(&day)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Doluluk hesaplanamadı")
		}
		return c.JSON(usage)
	}
}

type CartFitsRequest struct {
	Items []CartItem `json:"items"`
}

// -------------------------------------------------
// POST /api/bake-days/:id/cart-fits
// Checkout akışı sepeti göndermeden önce burayla kontrol eder.
// Sadece bilgilendirme amaçlıdır; bağlayıcı kontrol kabul anında yapılır.
// -------------------------------------------------
func CartFitsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil || id <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "id geçersiz")
		}

		var day models.BakeDay
		if err := database.DB.First(&day, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Üretim günü bulunamadı")
		}

		var body CartFitsRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		check, err := CartFits(&day, body.Items)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Kapasite kontrolü yapılamadı")
		}
		return c.JSON(check)
	}
}
