package catalog

import (
	"fmt"
	"math"

	"firin-backend/internal/database"
	"firin-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type CategoryRequest struct {
	Name             string `json:"name"`
	ConsumesCapacity bool   `json:"consumes_capacity"`
}

type ProductRequest struct {
	CategoryID uint   `json:"category_id"`
	Name       string `json:"name"`
}

type VariantFlourRequest struct {
	FlourTypeID uint    `json:"flour_type_id"`
	Percentage  float64 `json:"percentage"`
}

type VariantRequest struct {
	ProductID          uint                  `json:"product_id"`
	Name               string                `json:"name"`
	PriceCents         int64                 `json:"price_cents"`
	FlourQuantityGrams *float64              `json:"flour_quantity_grams"`
	MoldTypeID         *uint                 `json:"mold_type_id"`
	Active             *bool                 `json:"active"`
	SoldOnline         *bool                 `json:"sold_online"`
	Flours             []VariantFlourRequest `json:"flours"`
}

// -------------------------------------------------
// POST /api/admin/product-categories
// -------------------------------------------------
func CreateCategoryHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CategoryRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}
		if body.Name == "" {
			return fiber.NewError(fiber.StatusBadRequest, "İsim zorunlu")
		}

		cat := models.ProductCategory{Name: body.Name, ConsumesCapacity: body.ConsumesCapacity}
		if err := database.DB.Create(&cat).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Kayıt oluşturulamadı")
		}

		writeCatalogLog(c, "product_category", cat.ID, models.AuditActionCreate,
			fmt.Sprintf("Kategori eklendi: %s", cat.Name), nil, cat)

		return c.Status(fiber.StatusCreated).JSON(cat)
	}
}

// -------------------------------------------------
// GET /api/product-categories
// -------------------------------------------------
func ListCategoriesHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var cats []models.ProductCategory
		if err := database.DB.Order("id asc").Find(&cats).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Kayıtlar listelenemedi")
		}
		return c.JSON(cats)
	}
}

// -------------------------------------------------
// POST /api/admin/products
// -------------------------------------------------
func CreateProductHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body ProductRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}
		if body.Name == "" || body.CategoryID == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "İsim ve kategori zorunlu")
		}

		var cat models.ProductCategory
		if err := database.DB.First(&cat, "id = ?", body.CategoryID).Error; err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Kategori bulunamadı")
		}

		product := models.Product{CategoryID: cat.ID, Name: body.Name}
		if err := database.DB.Create(&product).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Kayıt oluşturulamadı")
		}

		writeCatalogLog(c, "product", product.ID, models.AuditActionCreate,
			fmt.Sprintf("Ürün eklendi: %s", product.Name), nil, product)

		return c.Status(fiber.StatusCreated).JSON(product)
	}
}

// -------------------------------------------------
// GET /api/products?online=1
// Vitrin için online=1 ile sadece satıştaki varyantlar döner.
// -------------------------------------------------
func ListProductsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var products []models.Product
		if err := database.DB.Preload("Category").Order("id asc").Find(&products).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Kayıtlar listelenemedi")
		}

		onlineOnly := c.QueryBool("online", false)

		type variantResp struct {
			ID                 uint     `json:"id"`
			Name               string   `json:"name"`
			PriceCents         int64    `json:"price_cents"`
			FlourQuantityGrams *float64 `json:"flour_quantity_grams"`
			MoldTypeID         *uint    `json:"mold_type_id"`
			Active             bool     `json:"active"`
			SoldOnline         bool     `json:"sold_online"`
		}
		type productResp struct {
			ID       uint          `json:"id"`
			Name     string        `json:"name"`
			Category string        `json:"category"`
			Variants []variantResp `json:"variants"`
		}

		resp := make([]productResp, 0, len(products))
		for _, p := range products {
			vq := database.DB.Where("product_id = ?", p.ID)
			if onlineOnly {
				vq = vq.Where("active = ? AND sold_online = ?", true, true)
			}
			var variants []models.ProductVariant
			if err := vq.Order("id asc").Find(&variants).Error; err != nil {
				return fiber.NewError(fiber.StatusInternalServerError, "Varyantlar listelenemedi")
			}
			if onlineOnly && len(variants) == 0 {
				continue
			}
			pr := productResp{ID: p.ID, Name: p.Name, Category: p.Category.Name}
			for _, v := range variants {
				pr.Variants = append(pr.Variants, variantResp{
					ID: v.ID, Name: v.Name, PriceCents: v.PriceCents,
					FlourQuantityGrams: v.FlourQuantityGrams, MoldTypeID: v.MoldTypeID,
					Active: v.Active, SoldOnline: v.SoldOnline,
				})
			}
			resp = append(resp, pr)
		}
		return c.JSON(resp)
	}
}

// -------------------------------------------------
// POST /api/admin/product-variants
// -------------------------------------------------
func CreateVariantHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body VariantRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}
		if body.Name == "" || body.ProductID == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "İsim ve ürün zorunlu")
		}
		if body.PriceCents <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Fiyat pozitif olmalı")
		}
		if err := validateFlourComposition(body.Flours); err != nil {
			return err
		}

		var product models.Product
		if err := database.DB.First(&product, "id = ?", body.ProductID).Error; err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Ürün bulunamadı")
		}
		if body.MoldTypeID != nil {
			var mold models.MoldType
			if err := database.DB.First(&mold, "id = ?", *body.MoldTypeID).Error; err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "Kalıp tipi bulunamadı")
			}
		}

		variant := models.ProductVariant{
			ProductID:          product.ID,
			Name:               body.Name,
			PriceCents:         body.PriceCents,
			FlourQuantityGrams: body.FlourQuantityGrams,
			MoldTypeID:         body.MoldTypeID,
			Active:             true,
			SoldOnline:         true,
		}
		if body.Active != nil {
			variant.Active = *body.Active
		}
		if body.SoldOnline != nil {
			variant.SoldOnline = *body.SoldOnline
		}

		err := database.DB.Transaction(func(tx *gorm.DB) error {
			if err := tx.Create(&variant).Error; err != nil {
				return err
			}
			for _, f := range body.Flours {
				vf := models.VariantFlour{
					ProductVariantID: variant.ID,
					FlourTypeID:      f.FlourTypeID,
					Percentage:       f.Percentage,
				}
				if err := tx.Create(&vf).Error; err != nil {
					return err
				}
			}
			return nil
		})
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Kayıt oluşturulamadı")
		}

		writeCatalogLog(c, "product_variant", variant.ID, models.AuditActionCreate,
			fmt.Sprintf("Varyant eklendi: %s", variant.Name), nil, variant)

		return c.Status(fiber.StatusCreated).JSON(variant)
	}
}

// -------------------------------------------------
// PUT /api/admin/product-variants/:id
// Un kompozisyonu gönderilirse sil-yeniden-yaz ile değişir.
// Deaktivasyon mevcut siparişleri geçersiz kılmaz.
// -------------------------------------------------
func UpdateVariantHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil || id <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "id geçersiz")
		}

		var variant models.ProductVariant
		if err := database.DB.First(&variant, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Varyant bulunamadı")
		}
		before := variant

		var body VariantRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		if body.Name != "" {
			variant.Name = body.Name
		}
		if body.PriceCents > 0 {
			variant.PriceCents = body.PriceCents
		}
		if body.FlourQuantityGrams != nil {
			variant.FlourQuantityGrams = body.FlourQuantityGrams
		}
		if body.MoldTypeID != nil {
			var mold models.MoldType
			if err := database.DB.First(&mold, "id = ?", *body.MoldTypeID).Error; err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "Kalıp tipi bulunamadı")
			}
			variant.MoldTypeID = body.MoldTypeID
		}
		if body.Active != nil {
			variant.Active = *body.Active
		}
		if body.SoldOnline != nil {
			variant.SoldOnline = *body.SoldOnline
		}

		if body.Flours != nil {
			if err := validateFlourComposition(body.Flours); err != nil {
				return err
			}
		}

		err = database.DB.Transaction(func(tx *gorm.DB) error {
			if err := tx.Save(&variant).Error; err != nil {
				return err
			}
			if body.Flours == nil {
				return nil
			}
			if err := tx.Where("product_variant_id = ?", variant.ID).Delete(&models.VariantFlour{}).Error; err != nil {
				return err
			}
			for _, f := range body.Flours {
				vf := models.VariantFlour{
					ProductVariantID: variant.ID,
					FlourTypeID:      f.FlourTypeID,
					Percentage:       f.Percentage,
				}
				if err := tx.Create(&vf).Error; err != nil {
					return err
				}
			}
			return nil
		})
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Kayıt güncellenemedi")
		}

		writeCatalogLog(c, "product_variant", variant.ID, models.AuditActionUpdate,
			fmt.Sprintf("Varyant düzenlendi: %s", variant.Name), before, variant)

		return c.JSON(variant)
	}
}

// validateFlourComposition: kompozisyon varsa yüzdeler 100'e tamamlanmalı.
func validateFlourComposition(flours []VariantFlourRequest) error {
	if len(flours) == 0 {
		return nil
	}
	var sum float64
	for _, f := range flours {
		if f.FlourTypeID == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Un tipi zorunlu")
		}
		if f.Percentage <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Un yüzdesi pozitif olmalı")
		}
		var flour models.FlourType
		if err := database.DB.First(&flour, "id = ?", f.FlourTypeID).Error; err != nil {
			return fiber.NewError(fiber.StatusBadRequest, fmt.Sprintf("Un tipi bulunamadı: %d", f.FlourTypeID))
		}
		sum += f.Percentage
	}
	if math.Abs(sum-100) > 0.001 {
		return fiber.NewError(fiber.StatusBadRequest,
			fmt.Sprintf("Un yüzdeleri toplamı 100 olmalı (şu an %.2f)", sum))
	}
	return nil
}
