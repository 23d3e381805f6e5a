package models

import "time"

type NotificationKind string

const (
	NotificationConfirmation        NotificationKind = "confirmation"
	NotificationCancellation        NotificationKind = "cancellation"
	NotificationLowBalance          NotificationKind = "low_balance"
	NotificationInsufficientWarning NotificationKind = "insufficient_warning"
	NotificationReady               NotificationKind = "ready"
	NotificationRefund              NotificationKind = "refund"
)

// Notification: gönderilen her SMS'in kaydı. Yetersiz bakiye uyarılarının
// 24 saatlik tekrar bastırması bu tablo üzerinden sorgulanır.
type Notification struct {
	ID         uint `gorm:"primaryKey"`
	CustomerID uint `gorm:"index;not null"`
	OrderID    *uint
	Kind       NotificationKind `gorm:"size:30;index;not null"`
	Body       string           `gorm:"size:500"`
	SentAt     time.Time        `gorm:"index;not null"`
	CreatedAt  time.Time
}
