// Package export üretim gününün fırın föyünü Excel olarak üretir:
// ürün/adet dökümü, kalıp ve yoğurma kullanımı, hamur oranlarına göre
// malzeme (un/tuz/su/maya) gramajları.
package export

import (
	"fmt"

	"firin-backend/internal/capacity"
	"firin-backend/internal/database"
	"firin-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/xuri/excelize/v2"
)

// -------------------------------------------------
// GET /api/admin/bake-days/:id/production-sheet
// -------------------------------------------------
func ProductionSheetHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil || id <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "id geçersiz")
		}

		var day models.BakeDay
		if err := database.DB.First(&day, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Üretim günü bulunamadı")
		}

		f, err := buildSheet(&day)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Föy oluşturulamadı")
		}

		buf, err := f.WriteToBuffer()
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Dosya yazılamadı")
		}

		filename := fmt.Sprintf("uretim-foyu-%s.xlsx", day.Date.Format("2006-01-02"))
		c.Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		c.Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
		return c.Send(buf.Bytes())
	}
}

func buildSheet(day *models.BakeDay) (*excelize.File, error) {
	f := excelize.NewFile()
	sheet := "Üretim Föyü"
	f.SetSheetName("Sheet1", sheet)

	row := 1
	set := func(col string, v any) {
		cell := fmt.Sprintf("%s%d", col, row)
		f.SetCellValue(sheet, cell, v)
	}

	set("A", "Üretim Günü")
	set("B", day.Date.Format("2006-01-02"))
	row++
	set("A", "Kesim Saati")
	set("B", day.CutOffAt.Format("2006-01-02 15:04"))
	row += 2

	// ürün dökümü: iptal edilmemiş, sonuçlanmış siparişlerin kalemleri
	type productRow struct {
		Name  string
		Qty   int
		Grams float64
	}
	var items []models.OrderItem
	err := database.DB.
		Joins("JOIN orders ON orders.id = order_items.order_id").
		Where("orders.bake_day_id = ? AND orders.status NOT IN ?", day.ID,
			[]models.OrderStatus{models.StatusCancelled, models.StatusPlanned}).
		Preload("ProductVariant.Product").
		Find(&items).Error
	if err != nil {
		return nil, err
	}

	byVariant := make(map[uint]*productRow)
	var variantIDs []uint
	var totalDoughGrams float64
	for i := range items {
		it := &items[i]
		pr, ok := byVariant[it.ProductVariantID]
		if !ok {
			pr = &productRow{Name: it.ProductVariant.Product.Name + " - " + it.ProductVariant.Name}
			byVariant[it.ProductVariantID] = pr
			variantIDs = append(variantIDs, it.ProductVariantID)
		}
		pr.Qty += it.Qty
		if it.ProductVariant.FlourQuantityGrams != nil {
			grams := float64(it.Qty) * *it.ProductVariant.FlourQuantityGrams
			pr.Grams += grams
			totalDoughGrams += grams
		}
	}

	set("A", "Ürün")
	set("B", "Adet")
	set("C", "Hamur (g)")
	row++
	for _, vid := range variantIDs {
		pr := byVariant[vid]
		set("A", pr.Name)
		set("B", pr.Qty)
		set("C", pr.Grams)
		row++
	}
	row++

	// kaynak kullanımı
	usage, err := capacity.UsageFor(day)
	if err != nil {
		return nil, err
	}
	set("A", "Kaynak")
	set("B", "Kullanım")
	set("C", "Limit")
	row++
	for _, m := range usage.Molds {
		set("A", "Kalıp: "+m.Name)
		set("B", m.UsedUnits)
		set("C", m.LimitUnits)
		row++
	}
	for _, fl := range usage.Flours {
		set("A", "Un: "+fl.Name)
		set("B", fl.UsedGrams)
		if fl.LimitGrams > 0 {
			set("C", fl.LimitGrams)
		}
		row++
	}
	set("A", "Fırın (g)")
	set("B", usage.OvenUsedGrams)
	set("C", usage.OvenLimitGrams)
	row += 2

	// hamur oranlarına göre malzeme dökümü
	var ratios []models.DoughRatio
	if err := database.DB.Order("id asc").Find(&ratios).Error; err != nil {
		return nil, err
	}
	set("A", "Malzeme")
	set("B", "Gram")
	row++
	for _, r := range ratios {
		set("A", r.Name)
		set("B", totalDoughGrams*r.Fraction)
		row++
	}

	return f, nil
}
