package models

import "time"

// BakeDay: tek bir üretim günü. Kesim saatinden (CutOffAt) sonra
// yeni sipariş alınmaz ve planlı siparişler sonuçlandırılır.
type BakeDay struct {
	ID                uint      `gorm:"primaryKey"`
	Date              time.Time `gorm:"uniqueIndex;not null"` // takvim günü başına tek kayıt
	CutOffAt          time.Time `gorm:"index;not null"`
	OvenCapacityGrams float64   `gorm:"not null"` // pazar günlerinde farklı olabilir
	MarketDay         bool      `gorm:"not null;default:false"`
	SettledAt         *time.Time `gorm:"index"` // planlı siparişler sonuçlandırıldı mı
	Notes             string    `gorm:"size:255"`
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

func (b *BakeDay) CutOffPassed(now time.Time) bool {
	return !now.Before(b.CutOffAt)
}
