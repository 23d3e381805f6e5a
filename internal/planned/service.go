// Package planned takvimden verilen, cüzdanla fonlanan siparişleri
// yönetir: kesim saatine kadar düzenlenebilir niyetler, kesimde cüzdan
// tahsilatıyla paid'e ya da bakiye yetersizse cancelled'a çözülür.
package planned

import (
	"errors"
	"fmt"
	"log"
	"time"

	"firin-backend/internal/capacity"
	"firin-backend/internal/database"
	"firin-backend/internal/models"
	"firin-backend/internal/notify"
	"firin-backend/internal/order"
	"firin-backend/internal/wallet"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Service struct {
	Notifier notify.Notifier
}

// Upsert müşterinin o güne ait tek planlı siparişini bulur ya da
// oluşturur. Varsa kalemler birleştirilmez: hepsi silinip yeni set,
// varyantların *güncel* fiyatlarıyla yeniden yazılır (fiyatlar
// sonuçlandırmaya kadar kayabilir). Planlama anında kapasite kontrolü
// yapılmaz; kapasite yalnızca kabul anının meselesidir.
func (s *Service) Upsert(customerID, bakeDayID uint, items []capacity.CartItem) (*models.Order, error) {
	var bakeDay models.BakeDay
	if err := database.DB.First(&bakeDay, "id = ?", bakeDayID).Error; err != nil {
		return nil, fmt.Errorf("üretim günü yüklenemedi: %w", err)
	}
	if bakeDay.CutOffPassed(time.Now()) {
		return nil, order.NewValidationError(order.CodeCutOffPassed, "Sipariş kesim saati geçti")
	}
	if len(items) == 0 {
		return nil, order.NewValidationError(order.CodeEmptyCart,
			"Kalem listesi boş; siparişi kaldırmak için iptal kullanın")
	}

	type line struct {
		variantID uint
		qty       int
		price     int64
	}
	lines := make([]line, 0, len(items))
	for _, it := range items {
		if it.Qty <= 0 {
			return nil, order.NewValidationError(order.CodeEmptyCart, "Kalem adedi pozitif olmalı")
		}
		var v models.ProductVariant
		if err := database.DB.First(&v, "id = ?", it.VariantID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, order.NewValidationError(order.CodeVariantUnavailable,
					fmt.Sprintf("Ürün varyantı bulunamadı: %d", it.VariantID))
			}
			return nil, fmt.Errorf("varyant yüklenemedi: %w", err)
		}
		if !v.Active || !v.SoldOnline {
			return nil, order.NewValidationError(order.CodeVariantUnavailable,
				fmt.Sprintf("Ürün satışta değil: %s", v.Name))
		}
		lines = append(lines, line{variantID: v.ID, qty: it.Qty, price: v.PriceCents})
	}

	var o models.Order
	err := database.DB.Transaction(func(tx *gorm.DB) error {
		err := tx.Where("customer_id = ? AND bake_day_id = ? AND source = ? AND status = ?",
			customerID, bakeDayID, models.SourceCalendar, models.StatusPlanned).
			First(&o).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			o = models.Order{
				Code:          uuid.NewString(),
				CustomerID:    customerID,
				BakeDayID:     bakeDayID,
				Status:        models.StatusPlanned,
				Source:        models.SourceCalendar,
				PaymentMethod: models.PaymentWallet,
				TotalCents:    0,
			}
			if err := tx.Create(&o).Error; err != nil {
				return err
			}
		} else if err != nil {
			return err
		} else {
			// kalemleri birleştirme değil, sil-yeniden-yaz
			if err := tx.Where("order_id = ?", o.ID).Delete(&models.OrderItem{}).Error; err != nil {
				return err
			}
		}

		var total int64
		o.Items = nil
		for _, l := range lines {
			item := models.OrderItem{
				OrderID:          o.ID,
				ProductVariantID: l.variantID,
				Qty:              l.qty,
				UnitPriceCents:   l.price,
			}
			if err := tx.Create(&item).Error; err != nil {
				return err
			}
			o.Items = append(o.Items, item)
			total += item.SubtotalCents()
		}
		o.TotalCents = total
		return tx.Model(&models.Order{}).Where("id = ?", o.ID).
			Update("total_cents", total).Error
	})
	if err != nil {
		return nil, fmt.Errorf("planlı sipariş kaydedilemedi: %w", err)
	}
	return &o, nil
}

// Cancel planlı siparişi kalemleriyle birlikte kalıcı siler. Sonuçlanmış
// siparişlerin aksine iptal edilen plan tarihçede iz bırakmaz. Kesim
// saatinden sonra değişiklik yapılamaz.
func (s *Service) Cancel(orderID uint) error {
	var o models.Order
	if err := database.DB.Preload("BakeDay").First(&o, "id = ?", orderID).Error; err != nil {
		return fmt.Errorf("sipariş yüklenemedi: %w", err)
	}
	if o.Status != models.StatusPlanned {
		return order.NewValidationError(order.CodeNotPlanned, "Sipariş planlı durumda değil")
	}
	if o.BakeDay.CutOffPassed(time.Now()) {
		return order.NewValidationError(order.CodeCutOffPassed, "Sipariş kesim saati geçti")
	}

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("order_id = ?", o.ID).Delete(&models.OrderItem{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Order{}, "id = ?", o.ID).Error
	})
	if err != nil {
		return fmt.Errorf("planlı sipariş silinemedi: %w", err)
	}
	return nil
}

// Settle, kesim saati geçmiş bir günün tüm planlı siparişlerini
// sonuçlandırır. Her sipariş bağımsızdır: birinin hatası loglanır,
// diğerlerini durdurmaz. Gün sonunda settled_at damgalanır ki periyodik
// tetikleyici aynı günü ikinci kez işlemesin.
func (s *Service) Settle(bakeDay *models.BakeDay) error {
	var orders []models.Order
	err := database.DB.Preload("Customer").
		Where("bake_day_id = ? AND status = ?", bakeDay.ID, models.StatusPlanned).
		Find(&orders).Error
	if err != nil {
		return fmt.Errorf("planlı siparişler yüklenemedi: %w", err)
	}

	for i := range orders {
		if err := s.settleOne(&orders[i]); err != nil {
			log.Printf("sipariş %d sonuçlandırılamadı: %v", orders[i].ID, err)
		}
	}

	now := time.Now()
	if err := database.DB.Model(&models.BakeDay{}).Where("id = ?", bakeDay.ID).
		Update("settled_at", now).Error; err != nil {
		return fmt.Errorf("settled_at güncellenemedi: %w", err)
	}
	bakeDay.SettledAt = &now
	return nil
}

func (s *Service) settleOne(o *models.Order) error {
	w, err := wallet.Find(o.CustomerID)
	if err != nil {
		return err
	}

	// cüzdan yoksa tahsilat imkânsız: modellenmiş sonuç, iptal
	if w == nil {
		return s.cancelForFunds(o)
	}

	// tahsilat ve durum geçişi tek transaction: ya ikisi ya hiçbiri
	var debited bool
	err = database.DB.Transaction(func(tx *gorm.DB) error {
		var err error
		debited, err = wallet.DebitTx(tx, w.ID, o.TotalCents, &o.ID,
			fmt.Sprintf("Planlı sipariş tahsilatı #%d", o.ID))
		if err != nil || !debited {
			return err
		}
		return order.Transition(tx, o, models.StatusPaid)
	})
	if err != nil {
		return err
	}

	if !debited {
		return s.cancelForFunds(o)
	}

	// bildirimler kararın parçası değildir: hata loglanır, karar kalır
	if err := s.Notifier.SendConfirmation(o); err != nil {
		log.Printf("onay bildirimi gönderilemedi (sipariş %d): %v", o.ID, err)
	}

	var fresh models.Wallet
	if err := database.DB.First(&fresh, "id = ?", w.ID).Error; err != nil {
		return fmt.Errorf("cüzdan yeniden yüklenemedi: %w", err)
	}
	if fresh.LowBalanceThresholdCents > 0 && fresh.BalanceCents < fresh.LowBalanceThresholdCents {
		if err := s.Notifier.SendLowBalanceAlert(&o.Customer, fresh.BalanceCents); err != nil {
			log.Printf("düşük bakiye bildirimi gönderilemedi (müşteri %d): %v", o.CustomerID, err)
		}
	}
	return nil
}

func (s *Service) cancelForFunds(o *models.Order) error {
	if err := order.Transition(database.DB, o, models.StatusCancelled); err != nil {
		return err
	}
	if err := s.Notifier.SendCancellation(o); err != nil {
		log.Printf("iptal bildirimi gönderilemedi (sipariş %d): %v", o.ID, err)
	}
	return nil
}

// SettleDue: kesim saati geçmiş ve henüz sonuçlandırılmamış tüm günleri
// işler. Periyodik tetikleyici (cron) bu fonksiyonu çağırır.
func (s *Service) SettleDue() {
	var days []models.BakeDay
	err := database.DB.
		Where("cut_off_at <= ? AND settled_at IS NULL", time.Now()).
		Find(&days).Error
	if err != nil {
		log.Printf("sonuçlandırılacak günler sorgulanamadı: %v", err)
		return
	}
	for i := range days {
		if err := s.Settle(&days[i]); err != nil {
			log.Printf("gün %s sonuçlandırılamadı: %v", days[i].Date.Format("2006-01-02"), err)
		}
	}
}

// WarnIfInsufficient: kesim saati verilen pencere içinde olan günlerin
// planlı siparişlerini tarar; bakiyesi yetmeyen müşterilere uyarı SMS'i
// gönderir. Aynı müşteriye 24 saat içinde ikinci uyarı gitmez.
func (s *Service) WarnIfInsufficient(window time.Duration) {
	now := time.Now()
	var days []models.BakeDay
	err := database.DB.
		Where("cut_off_at > ? AND cut_off_at <= ? AND settled_at IS NULL", now, now.Add(window)).
		Find(&days).Error
	if err != nil {
		log.Printf("uyarı taraması için günler sorgulanamadı: %v", err)
		return
	}

	for _, day := range days {
		var orders []models.Order
		err := database.DB.Preload("Customer").
			Where("bake_day_id = ? AND status = ?", day.ID, models.StatusPlanned).
			Find(&orders).Error
		if err != nil {
			log.Printf("gün %d planlı siparişleri yüklenemedi: %v", day.ID, err)
			continue
		}

		for i := range orders {
			o := &orders[i]
			covered, err := wallet.CanCover(o.CustomerID, o.TotalCents)
			if err != nil {
				log.Printf("bakiye kontrolü başarısız (müşteri %d): %v", o.CustomerID, err)
				continue
			}
			if covered {
				continue
			}
			warned, err := notify.WarnedRecently(o.CustomerID, 24*time.Hour)
			if err != nil {
				log.Printf("uyarı geçmişi sorgulanamadı (müşteri %d): %v", o.CustomerID, err)
				continue
			}
			if warned {
				continue
			}
			if err := s.Notifier.SendInsufficientBalanceWarning(&o.Customer, o); err != nil {
				log.Printf("yetersiz bakiye uyarısı gönderilemedi (müşteri %d): %v", o.CustomerID, err)
			}
		}
	}
}
