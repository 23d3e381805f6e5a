package catalog

import (
	"fmt"

	"firin-backend/internal/database"
	"firin-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

type MoldTypeRequest struct {
	Name      string `json:"name"`
	UnitLimit int    `json:"unit_limit"`
}

type FlourTypeRequest struct {
	Name              string   `json:"name"`
	KneaderLimitGrams *float64 `json:"kneader_limit_grams"`
}

// -------------------------------------------------
// POST /api/admin/mold-types
// -------------------------------------------------
func CreateMoldTypeHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body MoldTypeRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}
		if body.Name == "" {
			return fiber.NewError(fiber.StatusBadRequest, "İsim zorunlu")
		}
		if body.UnitLimit < 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Adet limiti negatif olamaz")
		}

		mold := models.MoldType{Name: body.Name, UnitLimit: body.UnitLimit}
		if err := database.DB.Create(&mold).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Kayıt oluşturulamadı")
		}

		writeCatalogLog(c, "mold_type", mold.ID, models.AuditActionCreate,
			fmt.Sprintf("Kalıp tipi eklendi: %s (%d adet)", mold.Name, mold.UnitLimit), nil, mold)

		return c.Status(fiber.StatusCreated).JSON(mold)
	}
}

// -------------------------------------------------
// GET /api/mold-types
// -------------------------------------------------
func ListMoldTypesHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var molds []models.MoldType
		if err := database.DB.Order("id asc").Find(&molds).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Kayıtlar listelenemedi")
		}
		return c.JSON(molds)
	}
}

// -------------------------------------------------
// PUT /api/admin/mold-types/:id
// -------------------------------------------------
func UpdateMoldTypeHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil || id <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "id geçersiz")
		}

		var mold models.MoldType
		if err := database.DB.First(&mold, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Kalıp tipi bulunamadı")
		}
		before := mold

		var body MoldTypeRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}
		if body.Name != "" {
			mold.Name = body.Name
		}
		if body.UnitLimit < 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Adet limiti negatif olamaz")
		}
		mold.UnitLimit = body.UnitLimit

		if err := database.DB.Save(&mold).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Kayıt güncellenemedi")
		}

		writeCatalogLog(c, "mold_type", mold.ID, models.AuditActionUpdate,
			fmt.Sprintf("Kalıp tipi düzenlendi: %s", mold.Name), before, mold)

		return c.JSON(mold)
	}
}

// -------------------------------------------------
// DELETE /api/admin/mold-types/:id
// Soft delete: eski siparişler kalıp tanımını çözmeye devam eder.
// -------------------------------------------------
func DeleteMoldTypeHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil || id <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "id geçersiz")
		}

		var mold models.MoldType
		if err := database.DB.First(&mold, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Kalıp tipi bulunamadı")
		}

		if err := database.DB.Delete(&mold).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Kayıt silinemedi")
		}

		writeCatalogLog(c, "mold_type", mold.ID, models.AuditActionDelete,
			fmt.Sprintf("Kalıp tipi silindi: %s", mold.Name), mold, nil)

		return c.SendStatus(fiber.StatusNoContent)
	}
}

// -------------------------------------------------
// POST /api/admin/flour-types
// -------------------------------------------------
func CreateFlourTypeHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body FlourTypeRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}
		if body.Name == "" {
			return fiber.NewError(fiber.StatusBadRequest, "İsim zorunlu")
		}
		if body.KneaderLimitGrams != nil && *body.KneaderLimitGrams < 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Yoğurma limiti negatif olamaz")
		}

		flour := models.FlourType{Name: body.Name, KneaderLimitGrams: body.KneaderLimitGrams}
		if err := database.DB.Create(&flour).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Kayıt oluşturulamadı")
		}

		writeCatalogLog(c, "flour_type", flour.ID, models.AuditActionCreate,
			fmt.Sprintf("Un tipi eklendi: %s", flour.Name), nil, flour)

		return c.Status(fiber.StatusCreated).JSON(flour)
	}
}

// -------------------------------------------------
// GET /api/flour-types
// -------------------------------------------------
func ListFlourTypesHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var flours []models.FlourType
		if err := database.DB.Order("id asc").Find(&flours).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Kayıtlar listelenemedi")
		}
		return c.JSON(flours)
	}
}

// -------------------------------------------------
// PUT /api/admin/flour-types/:id
// -------------------------------------------------
func UpdateFlourTypeHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil || id <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "id geçersiz")
		}

		var flour models.FlourType
		if err := database.DB.First(&flour, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Un tipi bulunamadı")
		}
		before := flour

		var body FlourTypeRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}
		if body.Name != "" {
			flour.Name = body.Name
		}
		if body.KneaderLimitGrams != nil && *body.KneaderLimitGrams < 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Yoğurma limiti negatif olamaz")
		}
		flour.KneaderLimitGrams = body.KneaderLimitGrams

		if err := database.DB.Save(&flour).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Kayıt güncellenemedi")
		}

		writeCatalogLog(c, "flour_type", flour.ID, models.AuditActionUpdate,
			fmt.Sprintf("Un tipi düzenlendi: %s", flour.Name), before, flour)

		return c.JSON(flour)
	}
}

// -------------------------------------------------
// DELETE /api/admin/flour-types/:id  (soft delete)
// -------------------------------------------------
func DeleteFlourTypeHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil || id <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "id geçersiz")
		}

		var flour models.FlourType
		if err := database.DB.First(&flour, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Un tipi bulunamadı")
		}

		if err := database.DB.Delete(&flour).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Kayıt silinemedi")
		}

		writeCatalogLog(c, "flour_type", flour.ID, models.AuditActionDelete,
			fmt.Sprintf("Un tipi silindi: %s", flour.Name), flour, nil)

		return c.SendStatus(fiber.StatusNoContent)
	}
}
