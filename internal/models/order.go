package models

import "time"

type OrderStatus string

const (
	StatusPlanned   OrderStatus = "planned"   // takvim siparişi, kesimde sonuçlanacak
	StatusPending   OrderStatus = "pending"   // online ödeme onayı bekliyor
	StatusUnpaid    OrderStatus = "unpaid"    // teslimde nakit ödenecek
	StatusPaid      OrderStatus = "paid"
	StatusReady     OrderStatus = "ready"
	StatusPickedUp  OrderStatus = "picked_up"
	StatusNoShow    OrderStatus = "no_show"
	StatusCancelled OrderStatus = "cancelled"
)

type OrderSource string

const (
	SourceCheckout OrderSource = "checkout" // vitrin sepeti
	SourceCalendar OrderSource = "calendar" // planlı sipariş takvimi
)

type PaymentMethod string

const (
	PaymentOnline PaymentMethod = "online"
	PaymentCash   PaymentMethod = "cash"
	PaymentWallet PaymentMethod = "wallet" // cüzdandan sonuçlandırılan takvim siparişleri
)

type Order struct {
	ID                 uint   `gorm:"primaryKey"`
	Code               string `gorm:"size:36;uniqueIndex;not null"` // teslimat kodu
	CustomerID         uint   `gorm:"index;not null"`
	Customer           Customer
	BakeDayID          uint `gorm:"index;not null"`
	BakeDay            BakeDay
	Status             OrderStatus   `gorm:"size:20;index;not null"`
	Source             OrderSource   `gorm:"size:20;not null;default:checkout"`
	PaymentMethod      PaymentMethod `gorm:"size:20;not null"`
	TotalCents         int64         `gorm:"not null"`
	DiscountCents      int64         `gorm:"not null;default:0"`
	ExternalPaymentRef *string       `gorm:"size:100;uniqueIndex"` // ödeme sağlayıcı referansı
	Items              []OrderItem
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// OrderItem: sipariş kalemi. Siparişle birlikte atomik oluşturulur,
// sonradan tek başına değiştirilmez.
type OrderItem struct {
	ID               uint `gorm:"primaryKey"`
	OrderID          uint `gorm:"index;not null"`
	ProductVariantID uint `gorm:"index;not null"`
	ProductVariant   ProductVariant
	Qty              int   `gorm:"not null"`
	UnitPriceCents   int64 `gorm:"not null"`
	CreatedAt        time.Time
}

func (i *OrderItem) SubtotalCents() int64 {
	return int64(i.Qty) * i.UnitPriceCents
}
