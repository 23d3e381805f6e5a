package catalog

import (
	"firin-backend/internal/database"
	"firin-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

type UpdateSettingsRequest struct {
	WeekdayOvenGrams   *float64 `json:"weekday_oven_grams"`
	MarketDayOvenGrams *float64 `json:"market_day_oven_grams"`
}

type UpdateRatioRequest struct {
	Fraction float64 `json:"fraction"`
}

// -------------------------------------------------
// GET /api/admin/production-settings
// -------------------------------------------------
func GetProductionSettingsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var settings models.ProductionSettings
		if err := database.DB.Order("id asc").First(&settings).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Üretim ayarları okunamadı")
		}
		return c.JSON(settings)
	}
}

// -------------------------------------------------
// PUT /api/admin/production-settings
// Tek satır güncellenir; yeni satır asla eklenmez.
// -------------------------------------------------
func UpdateProductionSettingsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var settings models.ProductionSettings
		if err := database.DB.Order("id asc").First(&settings).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Üretim ayarları okunamadı")
		}
		before := settings

		var body UpdateSettingsRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		if body.WeekdayOvenGrams != nil {
			if *body.WeekdayOvenGrams <= 0 {
				return fiber.NewError(fiber.StatusBadRequest, "Fırın kapasitesi pozitif olmalı")
			}
			settings.WeekdayOvenGrams = *body.WeekdayOvenGrams
		}
		if body.MarketDayOvenGrams != nil {
			if *body.MarketDayOvenGrams <= 0 {
				return fiber.NewError(fiber.StatusBadRequest, "Fırın kapasitesi pozitif olmalı")
			}
			settings.MarketDayOvenGrams = *body.MarketDayOvenGrams
		}

		if err := database.DB.Save(&settings).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Ayarlar güncellenemedi")
		}

		writeCatalogLog(c, "production_settings", settings.ID, models.AuditActionUpdate,
			"Üretim ayarları düzenlendi", before, settings)

		return c.JSON(settings)
	}
}

// -------------------------------------------------
// GET /api/admin/dough-ratios
// -------------------------------------------------
func ListDoughRatiosHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var ratios []models.DoughRatio
		if err := database.DB.Order("id asc").Find(&ratios).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Oranlar listelenemedi")
		}
		return c.JSON(ratios)
	}
}

// -------------------------------------------------
// PUT /api/admin/dough-ratios/:name
// Dört sabit oran var; sadece değer düzenlenir, isim eklenemez/silinemez.
// -------------------------------------------------
func UpdateDoughRatioHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		name := c.Params("name")

		var ratio models.DoughRatio
		if err := database.DB.First(&ratio, "name = ?", name).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Oran bulunamadı")
		}
		before := ratio

		var body UpdateRatioRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}
		if body.Fraction <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Oran pozitif olmalı")
		}

		ratio.Fraction = body.Fraction
		if err := database.DB.Save(&ratio).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Oran güncellenemedi")
		}

		writeCatalogLog(c, "dough_ratio", ratio.ID, models.AuditActionUpdate,
			"Hamur oranı düzenlendi: "+ratio.Name, before, ratio)

		return c.JSON(ratio)
	}
}
