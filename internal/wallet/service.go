// Package wallet ön ödemeli müşteri bakiyesini yönetir. Her hareket,
// defter satırı (WalletTransaction) ile bakiye güncellemesini aynı
// veritabanı işleminde yapar: defter kaynak gerçektir, bakiye onun
// önbelleğidir.
package wallet

import (
	"errors"
	"fmt"

	"firin-backend/internal/database"
	"firin-backend/internal/models"

	"gorm.io/gorm"
)

// ForCustomer müşterinin cüzdanını döndürür, yoksa oluşturur.
func ForCustomer(customerID uint) (*models.Wallet, error) {
	var w models.Wallet
	err := database.DB.Where("customer_id = ?", customerID).First(&w).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		w = models.Wallet{CustomerID: customerID}
		if err := database.DB.Create(&w).Error; err != nil {
			return nil, fmt.Errorf("cüzdan oluşturulamadı: %w", err)
		}
		return &w, nil
	}
	if err != nil {
		return nil, fmt.Errorf("cüzdan yüklenemedi: %w", err)
	}
	return &w, nil
}

// Find müşterinin cüzdanını döndürür; yoksa nil döner (oluşturmaz).
func Find(customerID uint) (*models.Wallet, error) {
	var w models.Wallet
	err := database.DB.Where("customer_id = ?", customerID).First(&w).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("cüzdan yüklenemedi: %w", err)
	}
	return &w, nil
}

// CanCover: müşterinin güncel bakiyesi tutarı karşılıyor mu.
// Cüzdan yoksa karşılamıyor demektir.
func CanCover(customerID uint, amountCents int64) (bool, error) {
	w, err := Find(customerID)
	if err != nil {
		return false, err
	}
	return w != nil && w.BalanceCents >= amountCents, nil
}

// Credit bakiye yükler (top_up / order_refund). externalRef doluysa ve
// aynı referansla bir defter satırı zaten varsa yeni hareket yapılmaz:
// webhook tekrarları idempotenttir.
func Credit(customerID uint, amountCents int64, txType models.TransactionType, orderID *uint, externalRef, description string) (*models.WalletTransaction, error) {
	if amountCents <= 0 {
		return nil, fmt.Errorf("yükleme tutarı pozitif olmalı: %d", amountCents)
	}

	w, err := ForCustomer(customerID)
	if err != nil {
		return nil, err
	}

	var refPtr *string
	if externalRef != "" {
		var existing models.WalletTransaction
		err := database.DB.Where("external_ref = ?", externalRef).First(&existing).Error
		if err == nil {
			return &existing, nil // tekrar gelen webhook
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("defter sorgulanamadı: %w", err)
		}
		refPtr = &externalRef
	}

	trans := models.WalletTransaction{
		WalletID:    w.ID,
		Type:        txType,
		AmountCents: amountCents,
		OrderID:     orderID,
		ExternalRef: refPtr,
		Description: description,
	}

	err = database.DB.Transaction(func(tx *gorm.DB) error {
		// atomik artırım: oku-hesapla-yaz yok
		if err := tx.Model(&models.Wallet{}).Where("id = ?", w.ID).
			Update("balance_cents", gorm.Expr("balance_cents + ?", amountCents)).Error; err != nil {
			return err
		}
		return tx.Create(&trans).Error
	})
	if err != nil {
		return nil, fmt.Errorf("yükleme işlenemedi: %w", err)
	}
	return &trans, nil
}

// DebitTx bakiyeden verilen transaction içinde düşer. Yetersiz bakiye
// bir hata değil modellenmiş bir sonuçtur: (false, nil) döner ve hiçbir
// yazma yapılmaz. Düşüm koşullu tek UPDATE ile yapılır, aynı cüzdana
// yarışan sonuçlandırmalar serileşir.
func DebitTx(tx *gorm.DB, walletID uint, amountCents int64, orderID *uint, description string) (bool, error) {
	if amountCents <= 0 {
		return false, fmt.Errorf("tahsilat tutarı pozitif olmalı: %d", amountCents)
	}

	res := tx.Model(&models.Wallet{}).
		Where("id = ? AND balance_cents >= ?", walletID, amountCents).
		Update("balance_cents", gorm.Expr("balance_cents - ?", amountCents))
	if res.Error != nil {
		return false, res.Error
	}
	if res.RowsAffected == 0 {
		return false, nil // bakiye yetersiz, defterde iz bırakma
	}
	err := tx.Create(&models.WalletTransaction{
		WalletID:    walletID,
		Type:        models.TransactionTypeOrderDebit,
		AmountCents: -amountCents,
		OrderID:     orderID,
		Description: description,
	}).Error
	if err != nil {
		return false, err
	}
	return true, nil
}

// Debit tek başına, kendi transaction'ında tahsilat yapar.
func Debit(walletID uint, amountCents int64, orderID *uint, description string) (bool, error) {
	debited := false
	err := database.DB.Transaction(func(tx *gorm.DB) error {
		var err error
		debited, err = DebitTx(tx, walletID, amountCents, orderID, description)
		return err
	})
	if err != nil {
		return false, fmt.Errorf("tahsilat işlenemedi: %w", err)
	}
	return debited, nil
}

// LedgerSum cüzdanın defter toplamını döndürür. Bakiye önbelleğinin
// tutarlılık denetimi için kullanılır.
func LedgerSum(walletID uint) (int64, error) {
	var sum int64
	err := database.DB.Model(&models.WalletTransaction{}).
		Where("wallet_id = ?", walletID).
		Select("COALESCE(SUM(amount_cents), 0)").
		Scan(&sum).Error
	if err != nil {
		return 0, fmt.Errorf("defter toplamı hesaplanamadı: %w", err)
	}
	return sum, nil
}
