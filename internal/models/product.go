package models

import "time"

// ProductCategory: ürün kategorisi. ConsumesCapacity, kategorinin
// kalıp/yoğurma/fırın kapasitesinden düşüp düşmediğini belirler
// (ekmekler: evet, hamur toplari: hayır).
type ProductCategory struct {
	ID               uint   `gorm:"primaryKey"`
	Name             string `gorm:"size:100;not null;unique"`
	ConsumesCapacity bool   `gorm:"not null;default:false"`
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

type Product struct {
	ID         uint   `gorm:"primaryKey"`
	CategoryID uint   `gorm:"index;not null"`
	Category   ProductCategory
	Name       string `gorm:"size:100;not null"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// ProductVariant: satılan birim. Ekmek varyantları hamur gramajı,
// opsiyonel kalıp tipi ve un kompozisyonu taşır.
type ProductVariant struct {
	ID                 uint   `gorm:"primaryKey"`
	ProductID          uint   `gorm:"index;not null"`
	Product            Product
	Name               string `gorm:"size:100;not null"`
	PriceCents         int64  `gorm:"not null"`
	FlourQuantityGrams *float64 // birim başına hamur kütlesi, boşsa 0 katkı
	MoldTypeID         *uint    `gorm:"index"`
	MoldType           *MoldType
	Active             bool `gorm:"not null;default:true"`
	SoldOnline         bool `gorm:"not null;default:true"` // açık satış kanalında mı
	Flours             []VariantFlour
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// VariantFlour: varyantın un kompozisyonu. Kayıt varsa yüzdeler
// toplamda 100 etmek zorundadır (catalog handler doğrular).
type VariantFlour struct {
	ID               uint    `gorm:"primaryKey"`
	ProductVariantID uint    `gorm:"index;not null"`
	FlourTypeID      uint    `gorm:"index;not null"`
	FlourType        FlourType
	Percentage       float64 `gorm:"not null"`
	CreatedAt        time.Time
}
