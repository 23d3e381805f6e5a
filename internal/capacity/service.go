// Package capacity üretim günü kaynak muhasebesini yapar: kalıp adetleri,
// un çeşidi başına yoğurma gramajı ve toplam fırın gramajı. Sadece okur ve
// hesaplar; hiçbir yazma yapmaz.
package capacity

import (
	"fmt"
	"math"

	"firin-backend/internal/database"
	"firin-backend/internal/models"
)

type MoldUsage struct {
	MoldTypeID uint   `json:"mold_type_id"`
	Name       string `json:"name"`
	UsedUnits  int    `json:"used_units"`
	LimitUnits int    `json:"limit_units"`
}

type FlourUsage struct {
	FlourTypeID uint    `json:"flour_type_id"`
	Name        string  `json:"name"`
	UsedGrams   float64 `json:"used_grams"`
	LimitGrams  float64 `json:"limit_grams"` // 0 ise sınırsız
}

type Usage struct {
	Molds          []MoldUsage  `json:"molds"`
	Flours         []FlourUsage `json:"flours"`
	OvenUsedGrams  float64      `json:"oven_used_grams"`
	OvenLimitGrams float64      `json:"oven_limit_grams"`
	FillPercentage int          `json:"fill_percentage"`
	FullyBooked    bool         `json:"fully_booked"`
}

// CartItem: kabul servisine gelen sepet satırı.
type CartItem struct {
	VariantID uint `json:"variant_id"`
	Qty       int  `json:"qty"`
}

type CartCheck struct {
	Fits   bool     `json:"fits"`
	Errors []string `json:"errors"`
}

// demand: kaynak tüketimi akümülatörü. Hem mevcut siparişler hem de
// önerilen sepet aynı formüllerle toplanır.
type demand struct {
	moldUnits   map[uint]int
	flourGrams  map[uint]float64
	ovenGrams   float64
}

func newDemand() *demand {
	return &demand{
		moldUnits:  make(map[uint]int),
		flourGrams: make(map[uint]float64),
	}
}

// add bir varyantın qty adedinin kaynak katkısını ekler. Kapasite
// tüketmeyen kategoriler ve eksik opsiyonel alanlar sıfır katkı demektir.
func (d *demand) add(variant *models.ProductVariant, qty int) {
	if !variant.Product.Category.ConsumesCapacity {
		return
	}

	if variant.MoldTypeID != nil {
		d.moldUnits[*variant.MoldTypeID] += qty
	}

	var doughGrams float64
	if variant.FlourQuantityGrams != nil {
		doughGrams = float64(qty) * *variant.FlourQuantityGrams
	}
	d.ovenGrams += doughGrams

	for _, vf := range variant.Flours {
		d.flourGrams[vf.FlourTypeID] += doughGrams * vf.Percentage / 100
	}
}

// loadDemand: üretim gününün mevcut talebi. İptal edilmiş siparişler
// sayılmaz; planlı siparişler de sayılmaz çünkü kapasite rezervasyonu
// ancak kabul anında yapılır.
func loadDemand(bakeDayID uint) (*demand, error) {
	var items []models.OrderItem
	err := database.DB.
		Joins("JOIN orders ON orders.id = order_items.order_id").
		Where("orders.bake_day_id = ? AND orders.status NOT IN ?", bakeDayID,
			[]models.OrderStatus{models.StatusCancelled, models.StatusPlanned}).
		Preload("ProductVariant.Flours").
		Preload("ProductVariant.Product.Category").
		Find(&items).Error
	if err != nil {
		return nil, fmt.Errorf("sipariş kalemleri yüklenemedi: %w", err)
	}

	d := newDemand()
	for i := range items {
		d.add(&items[i].ProductVariant, items[i].Qty)
	}
	return d, nil
}

// cartDemand önerilen sepetin ek kaynak tüketimini hesaplar.
func cartDemand(items []CartItem) (*demand, error) {
	d := newDemand()
	for _, it := range items {
		if it.Qty <= 0 {
			continue
		}
		var variant models.ProductVariant
		err := database.DB.
			Preload("Flours").
			Preload("Product.Category").
			First(&variant, "id = ?", it.VariantID).Error
		if err != nil {
			return nil, fmt.Errorf("varyant %d yüklenemedi: %w", it.VariantID, err)
		}
		d.add(&variant, it.Qty)
	}
	return d, nil
}

// UsageFor bir üretim gününün güncel doluluğunu döndürür. Limitler
// katalogdan canlı okunur: geçmiş günler için de güncel limit geçerlidir,
// sipariş anındaki limit saklanmaz.
func UsageFor(bakeDay *models.BakeDay) (*Usage, error) {
	d, err := loadDemand(bakeDay.ID)
	if err != nil {
		return nil, err
	}

	var molds []models.MoldType
	if err := database.DB.Order("id asc").Find(&molds).Error; err != nil {
		return nil, fmt.Errorf("kalıp tipleri yüklenemedi: %w", err)
	}
	var flours []models.FlourType
	if err := database.DB.Order("id asc").Find(&flours).Error; err != nil {
		return nil, fmt.Errorf("un tipleri yüklenemedi: %w", err)
	}

	usage := &Usage{
		OvenUsedGrams:  d.ovenGrams,
		OvenLimitGrams: bakeDay.OvenCapacityGrams,
	}

	maxFill := 0.0
	for _, m := range molds {
		mu := MoldUsage{MoldTypeID: m.ID, Name: m.Name, UsedUnits: d.moldUnits[m.ID], LimitUnits: m.UnitLimit}
		usage.Molds = append(usage.Molds, mu)
		if m.UnitLimit > 0 {
			maxFill = math.Max(maxFill, float64(mu.UsedUnits)/float64(m.UnitLimit)*100)
		}
	}
	for _, f := range flours {
		fu := FlourUsage{FlourTypeID: f.ID, Name: f.Name, UsedGrams: d.flourGrams[f.ID]}
		if f.KneaderLimitGrams != nil {
			fu.LimitGrams = *f.KneaderLimitGrams
			if fu.LimitGrams > 0 {
				maxFill = math.Max(maxFill, fu.UsedGrams/fu.LimitGrams*100)
			}
		}
		usage.Flours = append(usage.Flours, fu)
	}
	if bakeDay.OvenCapacityGrams > 0 {
		maxFill = math.Max(maxFill, d.ovenGrams/bakeDay.OvenCapacityGrams*100)
	}

	usage.FillPercentage = int(math.Round(maxFill))
	usage.FullyBooked = usage.FillPercentage >= 100
	return usage, nil
}

// CartFits önerilen sepetin kalan kapasiteye sığıp sığmadığını kontrol
// eder. Kısa devre yapmaz: ihlal edilen her kaynak için ayrı mesaj
// biriktirir ki kullanıcı tüm nedenleri tek seferde görsün.
func CartFits(bakeDay *models.BakeDay, items []CartItem) (*CartCheck, error) {
	check := &CartCheck{Fits: true}
	if len(items) == 0 {
		return check, nil
	}

	used, err := loadDemand(bakeDay.ID)
	if err != nil {
		return nil, err
	}
	add, err := cartDemand(items)
	if err != nil {
		return nil, err
	}

	for moldID, addUnits := range add.moldUnits {
		var mold models.MoldType
		if err := database.DB.Unscoped().First(&mold, "id = ?", moldID).Error; err != nil {
			return nil, fmt.Errorf("kalıp tipi %d yüklenemedi: %w", moldID, err)
		}
		if mold.UnitLimit > 0 && used.moldUnits[moldID]+addUnits > mold.UnitLimit {
			check.Errors = append(check.Errors, fmt.Sprintf(
				"Kalıp kapasitesi aşıldı (%s): %d/%d adet",
				mold.Name, used.moldUnits[moldID]+addUnits, mold.UnitLimit))
		}
	}

	for flourID, addGrams := range add.flourGrams {
		var flour models.FlourType
		if err := database.DB.Unscoped().First(&flour, "id = ?", flourID).Error; err != nil {
			return nil, fmt.Errorf("un tipi %d yüklenemedi: %w", flourID, err)
		}
		if flour.KneaderLimitGrams != nil && *flour.KneaderLimitGrams > 0 &&
			used.flourGrams[flourID]+addGrams > *flour.KneaderLimitGrams {
			check.Errors = append(check.Errors, fmt.Sprintf(
				"Yoğurma limiti aşıldı (%s): %.0f/%.0f gram",
				flour.Name, used.flourGrams[flourID]+addGrams, *flour.KneaderLimitGrams))
		}
	}

	if bakeDay.OvenCapacityGrams > 0 && used.ovenGrams+add.ovenGrams > bakeDay.OvenCapacityGrams {
		check.Errors = append(check.Errors, fmt.Sprintf(
			"Fırın kapasitesi aşıldı: %.0f/%.0f gram",
			used.ovenGrams+add.ovenGrams, bakeDay.OvenCapacityGrams))
	}

	check.Fits = len(check.Errors) == 0
	return check, nil
}

// PlannedDemandGrams: o günün planlı (henüz sonuçlanmamış) siparişlerinin
// fırın gramajı. Rezervasyon değildir; yönetim panosunda baskıyı göstermek
// için raporlanır.
func PlannedDemandGrams(bakeDayID uint) (float64, error) {
	var items []models.OrderItem
	err := database.DB.
		Joins("JOIN orders ON orders.id = order_items.order_id").
		Where("orders.bake_day_id = ? AND orders.status = ?", bakeDayID, models.StatusPlanned).
		Preload("ProductVariant.Product.Category").
		Find(&items).Error
	if err != nil {
		return 0, fmt.Errorf("planlı kalemler yüklenemedi: %w", err)
	}

	var grams float64
	for i := range items {
		v := items[i].ProductVariant
		if !v.Product.Category.ConsumesCapacity || v.FlourQuantityGrams == nil {
			continue
		}
		grams += float64(items[i].Qty) * *v.FlourQuantityGrams
	}
	return grams, nil
}
