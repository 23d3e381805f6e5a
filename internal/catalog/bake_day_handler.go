package catalog

import (
	"fmt"
	"time"

	"firin-backend/internal/audit"
	"firin-backend/internal/database"
	"firin-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

type CreateBakeDayRequest struct {
	Date              string   `json:"date"`      // "2026-09-12" formatında
	CutOffAt          string   `json:"cut_off_at"` // RFC3339
	MarketDay         bool     `json:"market_day"`
	OvenCapacityGrams *float64 `json:"oven_capacity_grams"` // boşsa ayarlardan
	Notes             string   `json:"notes"`
}

type UpdateBakeDayRequest struct {
	CutOffAt string `json:"cut_off_at"` // sadece kesim saati düzenlenebilir
	Notes    string `json:"notes"`
}

type BakeDayResponse struct {
	ID                uint    `json:"id"`
	Date              string  `json:"date"`
	CutOffAt          string  `json:"cut_off_at"`
	OvenCapacityGrams float64 `json:"oven_capacity_grams"`
	MarketDay         bool    `json:"market_day"`
	Settled           bool    `json:"settled"`
	Notes             string  `json:"notes"`
}

func bakeDayResponse(b *models.BakeDay) BakeDayResponse {
	return BakeDayResponse{
		ID:                b.ID,
		Date:              b.Date.Format("2006-01-02"),
		CutOffAt:          b.CutOffAt.Format(time.RFC3339),
		OvenCapacityGrams: b.OvenCapacityGrams,
		MarketDay:         b.MarketDay,
		Settled:           b.SettledAt != nil,
		Notes:             b.Notes,
	}
}

// -------------------------------------------------
// POST /api/admin/bake-days
// -------------------------------------------------
func CreateBakeDayHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateBakeDayRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		date, err := time.Parse("2006-01-02", body.Date)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Tarih formatı geçersiz, 'YYYY-MM-DD' olmalı")
		}
		cutOff, err := time.Parse(time.RFC3339, body.CutOffAt)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "cut_off_at geçersiz, RFC3339 olmalı")
		}
		if !cutOff.Before(date.AddDate(0, 0, 1)) {
			return fiber.NewError(fiber.StatusBadRequest, "Kesim saati üretim gününden sonra olamaz")
		}

		// takvim günü başına tek kayıt
		var count int64
		database.DB.Model(&models.BakeDay{}).Where("date = ?", date).Count(&count)
		if count > 0 {
			return fiber.NewError(fiber.StatusConflict, "Bu tarih için zaten bir üretim günü var")
		}

		ovenGrams, err := defaultOvenGrams(body.MarketDay)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Üretim ayarları okunamadı")
		}
		if body.OvenCapacityGrams != nil && *body.OvenCapacityGrams > 0 {
			ovenGrams = *body.OvenCapacityGrams
		}

		day := models.BakeDay{
			Date:              date,
			CutOffAt:          cutOff,
			OvenCapacityGrams: ovenGrams,
			MarketDay:         body.MarketDay,
			Notes:             body.Notes,
		}
		if err := database.DB.Create(&day).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Kayıt oluşturulamadı")
		}

		writeCatalogLog(c, "bake_day", day.ID, models.AuditActionCreate,
			fmt.Sprintf("Üretim günü eklendi: %s", day.Date.Format("2006-01-02")), nil, bakeDayResponse(&day))

		return c.Status(fiber.StatusCreated).JSON(bakeDayResponse(&day))
	}
}

// -------------------------------------------------
// GET /api/bake-days?from=2026-09-01&upcoming=1
// -------------------------------------------------
func ListBakeDaysHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		dbq := database.DB.Model(&models.BakeDay{})

		if fromStr := c.Query("from"); fromStr != "" {
			from, err := time.Parse("2006-01-02", fromStr)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "from tarihi geçersiz")
			}
			dbq = dbq.Where("date >= ?", from)
		}
		if c.QueryBool("upcoming", false) {
			// vitrin sadece kesimi geçmemiş günleri görür
			dbq = dbq.Where("cut_off_at > ?", time.Now())
		}

		var days []models.BakeDay
		if err := dbq.Order("date asc").Find(&days).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Kayıtlar listelenemedi")
		}

		resp := make([]BakeDayResponse, 0, len(days))
		for i := range days {
			resp = append(resp, bakeDayResponse(&days[i]))
		}
		return c.JSON(resp)
	}
}

// -------------------------------------------------
// PUT /api/admin/bake-days/:id  (sadece kesim saati ve not)
// -------------------------------------------------
func UpdateBakeDayHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil || id <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "id geçersiz")
		}

		var day models.BakeDay
		if err := database.DB.First(&day, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Üretim günü bulunamadı")
		}
		before := bakeDayResponse(&day)

		var body UpdateBakeDayRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		if body.CutOffAt != "" {
			cutOff, err := time.Parse(time.RFC3339, body.CutOffAt)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "cut_off_at geçersiz, RFC3339 olmalı")
			}
			day.CutOffAt = cutOff
		}
		day.Notes = body.Notes

		if err := database.DB.Save(&day).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Kayıt güncellenemedi")
		}

		writeCatalogLog(c, "bake_day", day.ID, models.AuditActionUpdate,
			fmt.Sprintf("Üretim günü düzenlendi: %s", day.Date.Format("2006-01-02")), before, bakeDayResponse(&day))

		return c.JSON(bakeDayResponse(&day))
	}
}

// -------------------------------------------------
// DELETE /api/admin/bake-days/:id
// Sipariş referans veren gün silinemez.
// -------------------------------------------------
func DeleteBakeDayHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil || id <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "id geçersiz")
		}

		var day models.BakeDay
		if err := database.DB.First(&day, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Üretim günü bulunamadı")
		}

		var orderCount int64
		database.DB.Model(&models.Order{}).Where("bake_day_id = ?", day.ID).Count(&orderCount)
		if orderCount > 0 {
			return fiber.NewError(fiber.StatusConflict, "Bu güne bağlı siparişler var, silinemez")
		}

		if err := database.DB.Delete(&day).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Kayıt silinemedi")
		}

		writeCatalogLog(c, "bake_day", day.ID, models.AuditActionDelete,
			fmt.Sprintf("Üretim günü silindi: %s", day.Date.Format("2006-01-02")), bakeDayResponse(&day), nil)

		return c.SendStatus(fiber.StatusNoContent)
	}
}

func defaultOvenGrams(marketDay bool) (float64, error) {
	var settings models.ProductionSettings
	if err := database.DB.Order("id asc").First(&settings).Error; err != nil {
		return 0, err
	}
	if marketDay {
		return settings.MarketDayOvenGrams, nil
	}
	return settings.WeekdayOvenGrams, nil
}

// writeCatalogLog: audit kaydı; hatası isteği bozmaz
func writeCatalogLog(c *fiber.Ctx, entityType string, entityID uint, action models.AuditAction, description string, before, after any) {
	userID, userName, err := getUserInfo(c)
	if err != nil {
		return
	}
	if logErr := audit.WriteLog(audit.LogOptions{
		UserID:      userID,
		UserName:    userName,
		EntityType:  entityType,
		EntityID:    entityID,
		Action:      action,
		Description: description,
		Before:      before,
		After:       after,
	}); logErr != nil {
		fmt.Printf("Audit log yazılamadı: %v\n", logErr)
	}
}
