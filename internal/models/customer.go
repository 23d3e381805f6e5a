package models

import "time"

type Customer struct {
	ID        uint   `gorm:"primaryKey"`
	Name      string `gorm:"size:100;not null"`
	Phone     string `gorm:"size:20;uniqueIndex;not null"` // SMS bildirimleri için
	Email     string `gorm:"size:100"`
	Groups    []CustomerGroup `gorm:"many2many:customer_group_members"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// CustomerGroup: indirim grubu (örn: "Personel", "Toptan")
// Müşterinin efektif indirimi, üyesi olduğu grupların en yüksek yüzdesidir.
type CustomerGroup struct {
	ID              uint    `gorm:"primaryKey"`
	Name            string  `gorm:"size:100;not null;unique"`
	DiscountPercent float64 `gorm:"not null;default:0"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
