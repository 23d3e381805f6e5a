// Package notify SMS bildirim yeteneğini soyutlar. Gönderim hataları
// asla iş kararını geri aldırmaz; çağıran taraf loglayıp devam eder.
package notify

import (
	"fmt"
	"log"
	"time"

	"firin-backend/internal/database"
	"firin-backend/internal/models"
)

type Notifier interface {
	SendConfirmation(order *models.Order) error
	SendCancellation(order *models.Order) error
	SendLowBalanceAlert(customer *models.Customer, balanceCents int64) error
	SendInsufficientBalanceWarning(customer *models.Customer, order *models.Order) error
	SendReady(order *models.Order) error
	SendRefund(order *models.Order, amountCents int64) error
}

// SMSNotifier: SMS sağlayıcısına giden stub. Her gönderimi notifications
// tablosuna kaydeder; yetersiz bakiye uyarılarının tekrar bastırması bu
// kayıtlar üzerinden çalışır.
type SMSNotifier struct{}

func (SMSNotifier) send(customerID uint, orderID *uint, kind models.NotificationKind, body string) error {
	// TODO: gerçek SMS sağlayıcı entegrasyonu (NetGSM) bağlanacak.
	log.Printf("SMS [%s] müşteri=%d: %s", kind, customerID, body)

	n := models.Notification{
		CustomerID: customerID,
		OrderID:    orderID,
		Kind:       kind,
		Body:       body,
		SentAt:     time.Now(),
	}
	if err := database.DB.Create(&n).Error; err != nil {
		return fmt.Errorf("bildirim kaydedilemedi: %w", err)
	}
	return nil
}

func (s SMSNotifier) SendConfirmation(order *models.Order) error {
	body := fmt.Sprintf("Siparişiniz onaylandı. Tutar: %.2f TL. Teslimat kodu: %s",
		float64(order.TotalCents)/100, order.Code)
	return s.send(order.CustomerID, &order.ID, models.NotificationConfirmation, body)
}

func (s SMSNotifier) SendCancellation(order *models.Order) error {
	body := fmt.Sprintf("Siparişiniz iptal edildi (bakiye yetersiz). Tutar: %.2f TL",
		float64(order.TotalCents)/100)
	return s.send(order.CustomerID, &order.ID, models.NotificationCancellation, body)
}

func (s SMSNotifier) SendLowBalanceAlert(customer *models.Customer, balanceCents int64) error {
	body := fmt.Sprintf("Cüzdan bakiyeniz düşük: %.2f TL. Yükleme yapmayı unutmayın.",
		float64(balanceCents)/100)
	return s.send(customer.ID, nil, models.NotificationLowBalance, body)
}

func (s SMSNotifier) SendInsufficientBalanceWarning(customer *models.Customer, order *models.Order) error {
	body := fmt.Sprintf("Planlı siparişiniz için bakiyeniz yetersiz (%.2f TL gerekli). Kesim saatinden önce yükleme yapın.",
		float64(order.TotalCents)/100)
	return s.send(customer.ID, &order.ID, models.NotificationInsufficientWarning, body)
}

func (s SMSNotifier) SendReady(order *models.Order) error {
	body := fmt.Sprintf("Siparişiniz hazır! Teslimat kodu: %s", order.Code)
	return s.send(order.CustomerID, &order.ID, models.NotificationReady, body)
}

func (s SMSNotifier) SendRefund(order *models.Order, amountCents int64) error {
	body := fmt.Sprintf("Sipariş iadeniz cüzdanınıza aktarıldı: %.2f TL", float64(amountCents)/100)
	return s.send(order.CustomerID, &order.ID, models.NotificationRefund, body)
}

// WarnedRecently: müşteriye verilen pencere içinde yetersiz bakiye
// uyarısı gitti mi? Ayrı bir bastırma bayrağı tutulmaz; kaynak gerçeği
// notifications tablosudur.
func WarnedRecently(customerID uint, window time.Duration) (bool, error) {
	var count int64
	err := database.DB.Model(&models.Notification{}).
		Where("customer_id = ? AND kind = ? AND sent_at > ?",
			customerID, models.NotificationInsufficientWarning, time.Now().Add(-window)).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("bildirim geçmişi sorgulanamadı: %w", err)
	}
	return count > 0, nil
}
