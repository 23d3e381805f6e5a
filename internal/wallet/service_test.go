package wallet

import (
	"testing"

	"firin-backend/internal/database"
	"firin-backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func seedCustomer(t *testing.T, db *gorm.DB) models.Customer {
	t.Helper()
	c := models.Customer{Name: "Fatma", Phone: "+905551112233"}
	require.NoError(t, db.Create(&c).Error)
	return c
}

func TestForCustomerCreatesOnce(t *testing.T) {
	db := database.InitTest(t)
	c := seedCustomer(t, db)

	w1, err := ForCustomer(c.ID)
	require.NoError(t, err)
	w2, err := ForCustomer(c.ID)
	require.NoError(t, err)
	assert.Equal(t, w1.ID, w2.ID)
	assert.Zero(t, w1.BalanceCents)
}

func TestFindReturnsNilWithoutWallet(t *testing.T) {
	db := database.InitTest(t)
	c := seedCustomer(t, db)

	w, err := Find(c.ID)
	require.NoError(t, err)
	assert.Nil(t, w)
}

// Bakiye her zaman defter toplamına eşit kalmalı.
func TestBalanceMatchesLedgerAfterMixedMovements(t *testing.T) {
	db := database.InitTest(t)
	c := seedCustomer(t, db)

	_, err := Credit(c.ID, 5000, models.TransactionTypeTopUp, nil, "", "yükleme 1")
	require.NoError(t, err)
	w, err := Find(c.ID)
	require.NoError(t, err)

	debited, err := Debit(w.ID, 1200, nil, "tahsilat 1")
	require.NoError(t, err)
	require.True(t, debited)

	_, err = Credit(c.ID, 300, models.TransactionTypeOrderRefund, nil, "", "iade")
	require.NoError(t, err)

	debited, err = Debit(w.ID, 2000, nil, "tahsilat 2")
	require.NoError(t, err)
	require.True(t, debited)

	var fresh models.Wallet
	require.NoError(t, db.First(&fresh, "id = ?", w.ID).Error)
	assert.Equal(t, int64(2100), fresh.BalanceCents)

	sum, err := LedgerSum(w.ID)
	require.NoError(t, err)
	assert.Equal(t, fresh.BalanceCents, sum)
}

// Yetersiz bakiye: hata değil, modellenmiş sonuç. Defterde iz kalmaz.
func TestDebitInsufficientLeavesNoTrace(t *testing.T) {
	db := database.InitTest(t)
	c := seedCustomer(t, db)

	_, err := Credit(c.ID, 500, models.TransactionTypeTopUp, nil, "", "yükleme")
	require.NoError(t, err)
	w, err := Find(c.ID)
	require.NoError(t, err)

	debited, err := Debit(w.ID, 1100, nil, "büyük tahsilat")
	require.NoError(t, err)
	assert.False(t, debited)

	var fresh models.Wallet
	require.NoError(t, db.First(&fresh, "id = ?", w.ID).Error)
	assert.Equal(t, int64(500), fresh.BalanceCents)

	var count int64
	db.Model(&models.WalletTransaction{}).
		Where("wallet_id = ? AND type = ?", w.ID, models.TransactionTypeOrderDebit).
		Count(&count)
	assert.Zero(t, count)
}

// Aynı ödeme referansıyla tekrar gelen webhook ikinci kez yüklemez.
func TestCreditIdempotentByExternalRef(t *testing.T) {
	db := database.InitTest(t)
	c := seedCustomer(t, db)

	t1, err := Credit(c.ID, 2500, models.TransactionTypeTopUp, nil, "topup_42", "yükleme")
	require.NoError(t, err)
	t2, err := Credit(c.ID, 2500, models.TransactionTypeTopUp, nil, "topup_42", "yükleme")
	require.NoError(t, err)
	assert.Equal(t, t1.ID, t2.ID)

	w, err := Find(c.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2500), w.BalanceCents)

	var count int64
	db.Model(&models.WalletTransaction{}).Where("wallet_id = ?", w.ID).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestCreditRejectsNonPositiveAmount(t *testing.T) {
	db := database.InitTest(t)
	c := seedCustomer(t, db)

	_, err := Credit(c.ID, 0, models.TransactionTypeTopUp, nil, "", "sıfır")
	assert.Error(t, err)
	_, err = Credit(c.ID, -100, models.TransactionTypeTopUp, nil, "", "negatif")
	assert.Error(t, err)
}

func TestCanCover(t *testing.T) {
	db := database.InitTest(t)
	c := seedCustomer(t, db)

	// cüzdan yokken hiçbir tutarı karşılamaz
	ok, err := CanCover(c.ID, 100)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = Credit(c.ID, 1000, models.TransactionTypeTopUp, nil, "", "yükleme")
	require.NoError(t, err)

	ok, err = CanCover(c.ID, 1000)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = CanCover(c.ID, 1001)
	require.NoError(t, err)
	assert.False(t, ok)
}
