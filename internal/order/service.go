// Package order sipariş kabulünü ve sipariş yaşam döngüsünü yönetir.
// Create, sepetten doğrudan sipariş oluşturan tek kapıdır: kesim saati,
// kapasite ve idempotency kontrolleri burada, üretim günü başına kilit
// altında, atomik yapılır.
package order

import (
	"errors"
	"fmt"
	"log"
	"math"
	"time"

	"firin-backend/internal/capacity"
	"firin-backend/internal/database"
	"firin-backend/internal/lock"
	"firin-backend/internal/models"
	"firin-backend/internal/notify"
	"firin-backend/internal/payment"
	"firin-backend/internal/wallet"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// bakeDayLocks: kabul yarışını çözen seri nokta. Kapasite ön kontrolü
// kilitsiz koşar; yazmadan önceki yeniden kontrol ve yazma, gün başına
// tek tek geçer.
var bakeDayLocks = lock.NewKeyedMutex()

type Service struct {
	Notifier notify.Notifier
	Gateway  payment.Gateway
}

type CreateParams struct {
	CustomerID         uint
	BakeDayID          uint
	Items              []capacity.CartItem
	PaymentMethod      models.PaymentMethod
	ExternalPaymentRef string
	SkipCapacityCheck  bool
}

// Create sepeti doğrular ve siparişi kalemleriyle birlikte tek
// transaction'da oluşturur. Red durumunda hiçbir yan etki kalmaz.
func (s *Service) Create(p CreateParams) (*models.Order, error) {
	// --- kilitsiz ön doğrulama, hızlı red ---
	if p.CustomerID == 0 {
		return nil, NewValidationError(CodeMissingCustomer, "Müşteri bilgisi zorunlu")
	}
	if len(p.Items) == 0 {
		return nil, NewValidationError(CodeEmptyCart, "Sepet boş")
	}

	var bakeDay models.BakeDay
	if err := database.DB.First(&bakeDay, "id = ?", p.BakeDayID).Error; err != nil {
		return nil, fmt.Errorf("üretim günü yüklenemedi: %w", err)
	}
	if bakeDay.CutOffPassed(time.Now()) {
		return nil, NewValidationError(CodeCutOffPassed, "Sipariş kesim saati geçti")
	}

	var customer models.Customer
	if err := database.DB.First(&customer, "id = ?", p.CustomerID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewValidationError(CodeMissingCustomer, "Müşteri bulunamadı")
		}
		return nil, fmt.Errorf("müşteri yüklenemedi: %w", err)
	}

	// webhook / çift tıklama idempotency koruması: aynı ödeme referansı
	// ikinci kez sipariş üretmez
	if p.PaymentMethod == models.PaymentOnline && p.ExternalPaymentRef != "" {
		var count int64
		if err := database.DB.Model(&models.Order{}).
			Where("external_payment_ref = ?", p.ExternalPaymentRef).
			Count(&count).Error; err != nil {
			return nil, fmt.Errorf("ödeme referansı sorgulanamadı: %w", err)
		}
		if count > 0 {
			return nil, NewValidationError(CodeDuplicatePaymentRef, "Bu ödeme referansıyla zaten sipariş var")
		}
	}

	variants := make(map[uint]*models.ProductVariant, len(p.Items))
	for _, it := range p.Items {
		if it.Qty <= 0 {
			return nil, NewValidationError(CodeEmptyCart, "Sepet satır adedi pozitif olmalı")
		}
		var v models.ProductVariant
		if err := database.DB.Preload("Product.Category").First(&v, "id = ?", it.VariantID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, NewValidationError(CodeVariantUnavailable,
					fmt.Sprintf("Ürün varyantı bulunamadı: %d", it.VariantID))
			}
			return nil, fmt.Errorf("varyant yüklenemedi: %w", err)
		}
		if !v.Active || !v.SoldOnline {
			return nil, NewValidationError(CodeVariantUnavailable,
				fmt.Sprintf("Ürün satışta değil: %s", v.Name))
		}
		variants[it.VariantID] = &v
	}

	// kilitsiz kapasite ön kontrolü: bariz büyük sepetler kilide girmeden düşsün
	if !p.SkipCapacityCheck {
		check, err := capacity.CartFits(&bakeDay, p.Items)
		if err != nil {
			return nil, err
		}
		if !check.Fits {
			return nil, NewValidationError(CodeCapacityExceeded, "Kapasite yetersiz", check.Errors...)
		}
	}

	// --- atomik faz: gün başına kilit ---
	bakeDayLocks.Lock(bakeDay.ID)
	defer bakeDayLocks.Unlock(bakeDay.ID)

	// kilit beklenirken başka kabuller kapasite tüketmiş olabilir
	if !p.SkipCapacityCheck {
		check, err := capacity.CartFits(&bakeDay, p.Items)
		if err != nil {
			return nil, err
		}
		if !check.Fits {
			return nil, NewValidationError(CodeCapacityExceeded, "Kapasite yetersiz", check.Errors...)
		}
	}

	var subtotal int64
	for _, it := range p.Items {
		subtotal += int64(it.Qty) * variants[it.VariantID].PriceCents
	}
	discountPct, err := effectiveDiscountPercent(customer.ID)
	if err != nil {
		return nil, err
	}
	discount := int64(math.Round(float64(subtotal) * discountPct / 100))

	status := models.StatusPending
	if p.PaymentMethod == models.PaymentCash {
		status = models.StatusUnpaid
	}

	var refPtr *string
	if p.ExternalPaymentRef != "" {
		refPtr = &p.ExternalPaymentRef
	}

	o := models.Order{
		Code:               uuid.NewString(),
		CustomerID:         customer.ID,
		BakeDayID:          bakeDay.ID,
		Status:             status,
		Source:             models.SourceCheckout,
		PaymentMethod:      p.PaymentMethod,
		TotalCents:         subtotal - discount,
		DiscountCents:      discount,
		ExternalPaymentRef: refPtr,
	}

	err = database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&o).Error; err != nil {
			return err
		}
		for _, it := range p.Items {
			item := models.OrderItem{
				OrderID:          o.ID,
				ProductVariantID: it.VariantID,
				Qty:              it.Qty,
				UnitPriceCents:   variants[it.VariantID].PriceCents,
			}
			if err := tx.Create(&item).Error; err != nil {
				return err
			}
			o.Items = append(o.Items, item)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("sipariş oluşturulamadı: %w", err)
	}
	return &o, nil
}

// effectiveDiscountPercent: müşterinin üyesi olduğu grupların en yüksek
// indirim yüzdesi, grup yoksa 0.
func effectiveDiscountPercent(customerID uint) (float64, error) {
	var pct float64
	err := database.DB.Table("customer_groups").
		Joins("JOIN customer_group_members m ON m.customer_group_id = customer_groups.id").
		Where("m.customer_id = ?", customerID).
		Select("COALESCE(MAX(discount_percent), 0)").
		Scan(&pct).Error
	if err != nil {
		return 0, fmt.Errorf("indirim yüzdesi hesaplanamadı: %w", err)
	}
	return pct, nil
}

// MarkPaid ödemeyi onaylar (online webhook veya teslimde nakit).
func (s *Service) MarkPaid(orderID uint, externalRef string) (*models.Order, error) {
	var o models.Order
	if err := database.DB.First(&o, "id = ?", orderID).Error; err != nil {
		return nil, fmt.Errorf("sipariş yüklenemedi: %w", err)
	}

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		if externalRef != "" && o.ExternalPaymentRef == nil {
			if err := tx.Model(&models.Order{}).Where("id = ?", o.ID).
				Update("external_payment_ref", externalRef).Error; err != nil {
				return err
			}
			o.ExternalPaymentRef = &externalRef
		}
		return Transition(tx, &o, models.StatusPaid)
	})
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// MarkReady siparişi hazır işaretler ve müşteriye SMS gönderir.
func (s *Service) MarkReady(orderID uint) (*models.Order, error) {
	var o models.Order
	if err := database.DB.First(&o, "id = ?", orderID).Error; err != nil {
		return nil, fmt.Errorf("sipariş yüklenemedi: %w", err)
	}
	if err := Transition(database.DB, &o, models.StatusReady); err != nil {
		return nil, err
	}
	if err := s.Notifier.SendReady(&o); err != nil {
		log.Printf("hazır bildirimi gönderilemedi (sipariş %d): %v", o.ID, err)
	}
	return &o, nil
}

func (s *Service) MarkPickedUp(orderID uint) (*models.Order, error) {
	return s.simpleTransition(orderID, models.StatusPickedUp)
}

func (s *Service) MarkNoShow(orderID uint) (*models.Order, error) {
	return s.simpleTransition(orderID, models.StatusNoShow)
}

func (s *Service) simpleTransition(orderID uint, to models.OrderStatus) (*models.Order, error) {
	var o models.Order
	if err := database.DB.First(&o, "id = ?", orderID).Error; err != nil {
		return nil, fmt.Errorf("sipariş yüklenemedi: %w", err)
	}
	if err := Transition(database.DB, &o, to); err != nil {
		return nil, err
	}
	return &o, nil
}

// Cancel ödenmiş/bekleyen bir siparişi yerinde iptal eder. Cüzdandan
// tahsil edilmiş siparişlerde tutar cüzdana iade edilir; online ödemelerde
// sağlayıcıda iade başlatılır. İptal kaydı silinmez, durum değişir
// (planlı siparişlerin aksine — onlar planned.Service.Cancel ile
// iz bırakmadan silinir).
func (s *Service) Cancel(orderID uint) (*models.Order, error) {
	var o models.Order
	if err := database.DB.First(&o, "id = ?", orderID).Error; err != nil {
		return nil, fmt.Errorf("sipariş yüklenemedi: %w", err)
	}

	wasPaid := o.Status == models.StatusPaid
	if err := Transition(database.DB, &o, models.StatusCancelled); err != nil {
		return nil, err
	}

	if !wasPaid {
		return &o, nil
	}

	switch o.PaymentMethod {
	case models.PaymentWallet:
		w, err := wallet.ForCustomer(o.CustomerID)
		if err != nil {
			return nil, err
		}
		_, err = wallet.Credit(w.CustomerID, o.TotalCents, models.TransactionTypeOrderRefund,
			&o.ID, "", fmt.Sprintf("Sipariş iadesi #%d", o.ID))
		if err != nil {
			return nil, err
		}
		if err := s.Notifier.SendRefund(&o, o.TotalCents); err != nil {
			log.Printf("iade bildirimi gönderilemedi (sipariş %d): %v", o.ID, err)
		}
	case models.PaymentOnline:
		if o.ExternalPaymentRef != nil {
			if err := s.Gateway.Refund(*o.ExternalPaymentRef, o.TotalCents); err != nil {
				log.Printf("sağlayıcı iadesi başlatılamadı (sipariş %d): %v", o.ID, err)
			}
		}
	}
	return &o, nil
}
