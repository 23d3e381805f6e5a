package models

import (
	"time"

	"gorm.io/gorm"
)

// MoldType: pişirme kabı kategorisi. UnitLimit, bir üretim gününde bu
// kalıptan çıkabilecek azami ekmek adedi.
type MoldType struct {
	ID        uint           `gorm:"primaryKey"`
	Name      string         `gorm:"size:100;not null"`
	UnitLimit int            `gorm:"not null"`
	DeletedAt gorm.DeletedAt `gorm:"index"` // eski siparişler hâlâ referans verebilir
	CreatedAt time.Time
	UpdatedAt time.Time
}

// FlourType: un çeşidi. KneaderLimitGrams boşsa yoğurma makinesi için
// sınır uygulanmaz.
type FlourType struct {
	ID                uint           `gorm:"primaryKey"`
	Name              string         `gorm:"size:100;not null"`
	KneaderLimitGrams *float64
	DeletedAt         gorm.DeletedAt `gorm:"index"`
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// ProductionSettings: global fırın kapasitesi varsayılanları. Tek satır
// olmalı; tekillik bootstrap sırasında garanti edilir (database.Init).
type ProductionSettings struct {
	ID                  uint    `gorm:"primaryKey"`
	WeekdayOvenGrams    float64 `gorm:"not null"`
	MarketDayOvenGrams  float64 `gorm:"not null"`
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// DoughRatio: hamur oranı sabitleri (farine, sel, eau, levain).
// Sadece üretim föyü hesaplamasında kullanılır, kapasite kararlarında değil.
type DoughRatio struct {
	ID       uint    `gorm:"primaryKey"`
	Name     string  `gorm:"size:20;not null;unique"`
	Fraction float64 `gorm:"not null"` // kütle oranı, pozitif
	CreatedAt time.Time
	UpdatedAt time.Time
}

const (
	RatioFlour  = "farine"
	RatioSalt   = "sel"
	RatioWater  = "eau"
	RatioLeaven = "levain"
)
