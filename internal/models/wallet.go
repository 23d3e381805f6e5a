package models

import "time"

type TransactionType string

const (
	TransactionTypeTopUp       TransactionType = "top_up"       // bakiye yükleme
	TransactionTypeOrderDebit  TransactionType = "order_debit"  // sipariş tahsilatı
	TransactionTypeOrderRefund TransactionType = "order_refund" // sipariş iadesi
)

// Wallet: müşteri başına tek ön ödemeli bakiye. BalanceCents, defterin
// (WalletTransaction) toplamının önbelleğidir ve her hareketle aynı
// veritabanı işleminde güncellenir.
type Wallet struct {
	ID                       uint `gorm:"primaryKey"`
	CustomerID               uint `gorm:"uniqueIndex;not null"`
	Customer                 Customer
	BalanceCents             int64 `gorm:"not null;default:0"`
	LowBalanceThresholdCents int64 `gorm:"not null;default:0"`
	CreatedAt                time.Time
	UpdatedAt                time.Time
}

// WalletTransaction: değiştirilemez defter satırı. AmountCents işaretlidir
// (yükleme/iade pozitif, tahsilat negatif).
type WalletTransaction struct {
	ID          uint `gorm:"primaryKey"`
	WalletID    uint `gorm:"index;not null"`
	Type        TransactionType `gorm:"size:20;not null"`
	AmountCents int64           `gorm:"not null"`
	OrderID     *uint           `gorm:"index"`
	ExternalRef *string         `gorm:"size:100;uniqueIndex"` // ödeme sağlayıcı referansı (yüklemelerde)
	Description string          `gorm:"size:255"`
	CreatedAt   time.Time
}
