package planned

import (
	"testing"
	"time"

	"firin-backend/internal/capacity"
	"firin-backend/internal/database"
	"firin-backend/internal/models"
	"firin-backend/internal/order"
	"firin-backend/internal/wallet"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// fakeNotifier çağrıları sayar. Yetersiz bakiye uyarılarını gerçek
// gönderici gibi notifications tablosuna yazar ki tekrar bastırma
// sorgusu test edilebilsin.
type fakeNotifier struct {
	confirmations int
	cancellations int
	lowBalance    int
	warnings      int
	ready         int
	refunds       int
}

func (f *fakeNotifier) SendConfirmation(*models.Order) error { f.confirmations++; return nil }
func (f *fakeNotifier) SendCancellation(*models.Order) error { f.cancellations++; return nil }
func (f *fakeNotifier) SendLowBalanceAlert(*models.Customer, int64) error {
	f.lowBalance++
	return nil
}
func (f *fakeNotifier) SendInsufficientBalanceWarning(c *models.Customer, o *models.Order) error {
	f.warnings++
	return database.DB.Create(&models.Notification{
		CustomerID: c.ID,
		OrderID:    &o.ID,
		Kind:       models.NotificationInsufficientWarning,
		Body:       "test uyarısı",
		SentAt:     time.Now(),
	}).Error
}
func (f *fakeNotifier) SendReady(*models.Order) error         { f.ready++; return nil }
func (f *fakeNotifier) SendRefund(*models.Order, int64) error { f.refunds++; return nil }

type fixture struct {
	db       *gorm.DB
	notifier *fakeNotifier
	svc      *Service
	bakeDay  models.BakeDay
	variant  models.ProductVariant
	customer models.Customer
}

func setup(t *testing.T) *fixture {
	t.Helper()
	db := database.InitTest(t)

	fx := &fixture{db: db, notifier: &fakeNotifier{}}
	fx.svc = &Service{Notifier: fx.notifier}

	cat := models.ProductCategory{Name: "Ekmekler", ConsumesCapacity: true}
	require.NoError(t, db.Create(&cat).Error)
	p := models.Product{CategoryID: cat.ID, Name: "Çavdar"}
	require.NoError(t, db.Create(&p).Error)
	fx.variant = models.ProductVariant{
		ProductID:  p.ID,
		Name:       "750g",
		PriceCents: 550,
		Active:     true,
		SoldOnline: true,
	}
	require.NoError(t, db.Create(&fx.variant).Error)

	fx.bakeDay = models.BakeDay{
		Date:              time.Now().AddDate(0, 0, 2).Truncate(24 * time.Hour),
		CutOffAt:          time.Now().Add(24 * time.Hour),
		OvenCapacityGrams: 50000,
	}
	require.NoError(t, db.Create(&fx.bakeDay).Error)

	fx.customer = models.Customer{Name: "Zeynep", Phone: "+905554443322"}
	require.NoError(t, db.Create(&fx.customer).Error)

	return fx
}

// plan: qty adet tek kalemlik planlı sipariş (550 kuruş/adet).
func (fx *fixture) plan(t *testing.T, qty int) *models.Order {
	t.Helper()
	o, err := fx.svc.Upsert(fx.customer.ID, fx.bakeDay.ID,
		[]capacity.CartItem{{VariantID: fx.variant.ID, Qty: qty}})
	require.NoError(t, err)
	return o
}

func (fx *fixture) topUp(t *testing.T, amountCents int64) *models.Wallet {
	t.Helper()
	_, err := wallet.Credit(fx.customer.ID, amountCents, models.TransactionTypeTopUp, nil, "", "test yükleme")
	require.NoError(t, err)
	w, err := wallet.Find(fx.customer.ID)
	require.NoError(t, err)
	require.NotNil(t, w)
	return w
}

func TestUpsertCreatesPlannedWalletOrder(t *testing.T) {
	fx := setup(t)

	o := fx.plan(t, 2)
	assert.Equal(t, models.StatusPlanned, o.Status)
	assert.Equal(t, models.SourceCalendar, o.Source)
	assert.Equal(t, models.PaymentWallet, o.PaymentMethod)
	assert.Equal(t, int64(1100), o.TotalCents)
	require.Len(t, o.Items, 1)
}

// İkinci upsert birleştirmez: kalemler güncel fiyatla yeniden yazılır,
// sipariş sayısı 1 kalır.
func TestUpsertReplacesInsteadOfDuplicating(t *testing.T) {
	fx := setup(t)

	first := fx.plan(t, 2)

	require.NoError(t, fx.db.Model(&models.ProductVariant{}).
		Where("id = ?", fx.variant.ID).Update("price_cents", 600).Error)

	second := fx.plan(t, 3)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, int64(1800), second.TotalCents)

	var orderCount, itemCount int64
	fx.db.Model(&models.Order{}).Where("customer_id = ?", fx.customer.ID).Count(&orderCount)
	fx.db.Model(&models.OrderItem{}).Where("order_id = ?", first.ID).Count(&itemCount)
	assert.Equal(t, int64(1), orderCount)
	assert.Equal(t, int64(1), itemCount)
}

func TestUpsertRejectsEmptyItemsAndCutOff(t *testing.T) {
	fx := setup(t)

	_, err := fx.svc.Upsert(fx.customer.ID, fx.bakeDay.ID, nil)
	v, ok := order.AsValidation(err)
	require.True(t, ok)
	assert.Equal(t, order.CodeEmptyCart, v.Code)

	require.NoError(t, fx.db.Model(&models.BakeDay{}).Where("id = ?", fx.bakeDay.ID).
		Update("cut_off_at", time.Now().Add(-time.Minute)).Error)

	_, err = fx.svc.Upsert(fx.customer.ID, fx.bakeDay.ID,
		[]capacity.CartItem{{VariantID: fx.variant.ID, Qty: 1}})
	v, ok = order.AsValidation(err)
	require.True(t, ok)
	assert.Equal(t, order.CodeCutOffPassed, v.Code)
}

// Planlı iptal iz bırakmaz: sipariş ve kalemleri kalıcı silinir.
func TestCancelDeletesPlanWithoutTrace(t *testing.T) {
	fx := setup(t)
	o := fx.plan(t, 2)

	require.NoError(t, fx.svc.Cancel(o.ID))

	var orderCount, itemCount int64
	fx.db.Model(&models.Order{}).Count(&orderCount)
	fx.db.Model(&models.OrderItem{}).Count(&itemCount)
	assert.Zero(t, orderCount)
	assert.Zero(t, itemCount)
}

func TestCancelAfterCutOffRejectedAndRowsIntact(t *testing.T) {
	fx := setup(t)
	o := fx.plan(t, 2)

	require.NoError(t, fx.db.Model(&models.BakeDay{}).Where("id = ?", fx.bakeDay.ID).
		Update("cut_off_at", time.Now().Add(-time.Minute)).Error)

	err := fx.svc.Cancel(o.ID)
	v, ok := order.AsValidation(err)
	require.True(t, ok)
	assert.Equal(t, order.CodeCutOffPassed, v.Code)

	var orderCount, itemCount int64
	fx.db.Model(&models.Order{}).Count(&orderCount)
	fx.db.Model(&models.OrderItem{}).Where("order_id = ?", o.ID).Count(&itemCount)
	assert.Equal(t, int64(1), orderCount)
	assert.Equal(t, int64(1), itemCount)
}

func TestSettleSufficientBalance(t *testing.T) {
	fx := setup(t)
	o := fx.plan(t, 2) // 1100
	w := fx.topUp(t, 2000)

	require.NoError(t, fx.svc.Settle(&fx.bakeDay))

	var fresh models.Order
	require.NoError(t, fx.db.First(&fresh, "id = ?", o.ID).Error)
	assert.Equal(t, models.StatusPaid, fresh.Status)

	var freshWallet models.Wallet
	require.NoError(t, fx.db.First(&freshWallet, "id = ?", w.ID).Error)
	assert.Equal(t, int64(900), freshWallet.BalanceCents)

	sum, err := wallet.LedgerSum(w.ID)
	require.NoError(t, err)
	assert.Equal(t, freshWallet.BalanceCents, sum)

	assert.Equal(t, 1, fx.notifier.confirmations)
	assert.Zero(t, fx.notifier.cancellations)
	assert.Zero(t, fx.notifier.lowBalance)
	assert.NotNil(t, fx.bakeDay.SettledAt)
}

func TestSettleInsufficientBalanceCancels(t *testing.T) {
	fx := setup(t)
	o := fx.plan(t, 2) // 1100
	w := fx.topUp(t, 500)

	require.NoError(t, fx.svc.Settle(&fx.bakeDay))

	var fresh models.Order
	require.NoError(t, fx.db.First(&fresh, "id = ?", o.ID).Error)
	assert.Equal(t, models.StatusCancelled, fresh.Status)

	// bakiye dokunulmamış, defterde tahsilat izi yok
	var freshWallet models.Wallet
	require.NoError(t, fx.db.First(&freshWallet, "id = ?", w.ID).Error)
	assert.Equal(t, int64(500), freshWallet.BalanceCents)

	var debitCount int64
	fx.db.Model(&models.WalletTransaction{}).
		Where("wallet_id = ? AND type = ?", w.ID, models.TransactionTypeOrderDebit).
		Count(&debitCount)
	assert.Zero(t, debitCount)

	assert.Equal(t, 1, fx.notifier.cancellations)
	assert.Zero(t, fx.notifier.confirmations)
}

func TestSettleWithoutWalletCancels(t *testing.T) {
	fx := setup(t)
	o := fx.plan(t, 1)

	require.NoError(t, fx.svc.Settle(&fx.bakeDay))

	var fresh models.Order
	require.NoError(t, fx.db.First(&fresh, "id = ?", o.ID).Error)
	assert.Equal(t, models.StatusCancelled, fresh.Status)
	assert.Equal(t, 1, fx.notifier.cancellations)
}

func TestSettleTriggersLowBalanceAlert(t *testing.T) {
	fx := setup(t)
	fx.plan(t, 2) // 1100
	w := fx.topUp(t, 1500)
	require.NoError(t, fx.db.Model(&models.Wallet{}).Where("id = ?", w.ID).
		Update("low_balance_threshold_cents", 1000).Error)

	require.NoError(t, fx.svc.Settle(&fx.bakeDay))

	var freshWallet models.Wallet
	require.NoError(t, fx.db.First(&freshWallet, "id = ?", w.ID).Error)
	assert.Equal(t, int64(400), freshWallet.BalanceCents)

	assert.Equal(t, 1, fx.notifier.confirmations)
	assert.Equal(t, 1, fx.notifier.lowBalance)
}

// settled_at damgası: aynı gün ikinci taramada işlenmez.
func TestSettleDueProcessesDayOnce(t *testing.T) {
	fx := setup(t)
	fx.plan(t, 1)
	fx.topUp(t, 2000)

	require.NoError(t, fx.db.Model(&models.BakeDay{}).Where("id = ?", fx.bakeDay.ID).
		Update("cut_off_at", time.Now().Add(-time.Minute)).Error)

	fx.svc.SettleDue()
	fx.svc.SettleDue()

	assert.Equal(t, 1, fx.notifier.confirmations)

	var day models.BakeDay
	require.NoError(t, fx.db.First(&day, "id = ?", fx.bakeDay.ID).Error)
	assert.NotNil(t, day.SettledAt)
}

func TestWarnIfInsufficientWithSuppression(t *testing.T) {
	fx := setup(t)
	fx.plan(t, 2) // 1100
	fx.topUp(t, 500)

	// kesim 2 saat sonra: 6 saatlik pencerenin içinde
	require.NoError(t, fx.db.Model(&models.BakeDay{}).Where("id = ?", fx.bakeDay.ID).
		Update("cut_off_at", time.Now().Add(2*time.Hour)).Error)

	fx.svc.WarnIfInsufficient(6 * time.Hour)
	assert.Equal(t, 1, fx.notifier.warnings)

	// 24 saatlik bastırma: ikinci tarama yeni uyarı üretmez
	fx.svc.WarnIfInsufficient(6 * time.Hour)
	assert.Equal(t, 1, fx.notifier.warnings)
}

func TestWarnSkipsCoveredBalances(t *testing.T) {
	fx := setup(t)
	fx.plan(t, 2) // 1100
	fx.topUp(t, 1100)

	require.NoError(t, fx.db.Model(&models.BakeDay{}).Where("id = ?", fx.bakeDay.ID).
		Update("cut_off_at", time.Now().Add(2*time.Hour)).Error)

	fx.svc.WarnIfInsufficient(6 * time.Hour)
	assert.Zero(t, fx.notifier.warnings)
}
