package order

import (
	"sync"
	"testing"
	"time"

	"firin-backend/internal/capacity"
	"firin-backend/internal/database"
	"firin-backend/internal/models"
	"firin-backend/internal/notify"
	"firin-backend/internal/payment"
	"firin-backend/internal/wallet"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fixture struct {
	db       *gorm.DB
	svc      *Service
	bakeDay  models.BakeDay
	mold     models.MoldType
	variant  models.ProductVariant
	customer models.Customer
}

func setup(t *testing.T) *fixture {
	t.Helper()
	db := database.InitTest(t)

	fx := &fixture{
		db:  db,
		svc: &Service{Notifier: notify.SMSNotifier{}, Gateway: payment.LogGateway{}},
	}

	fx.mold = models.MoldType{Name: "Standart kalıp", UnitLimit: 10}
	require.NoError(t, db.Create(&fx.mold).Error)

	cat := models.ProductCategory{Name: "Ekmekler", ConsumesCapacity: true}
	require.NoError(t, db.Create(&cat).Error)
	p := models.Product{CategoryID: cat.ID, Name: "Ekşi maya"}
	require.NoError(t, db.Create(&p).Error)

	grams := 500.0
	fx.variant = models.ProductVariant{
		ProductID:          p.ID,
		Name:               "800g",
		PriceCents:         550,
		FlourQuantityGrams: &grams,
		MoldTypeID:         &fx.mold.ID,
		Active:             true,
		SoldOnline:         true,
	}
	require.NoError(t, db.Create(&fx.variant).Error)

	fx.bakeDay = models.BakeDay{
		Date:              time.Now().AddDate(0, 0, 2).Truncate(24 * time.Hour),
		CutOffAt:          time.Now().Add(24 * time.Hour),
		OvenCapacityGrams: 100000,
	}
	require.NoError(t, db.Create(&fx.bakeDay).Error)

	fx.customer = models.Customer{Name: "Mehmet", Phone: "+905550009988"}
	require.NoError(t, db.Create(&fx.customer).Error)

	return fx
}

func (fx *fixture) params(qty int) CreateParams {
	return CreateParams{
		CustomerID:    fx.customer.ID,
		BakeDayID:     fx.bakeDay.ID,
		Items:         []capacity.CartItem{{VariantID: fx.variant.ID, Qty: qty}},
		PaymentMethod: models.PaymentCash,
	}
}

func TestCreateAppliesMaxGroupDiscount(t *testing.T) {
	fx := setup(t)

	g1 := models.CustomerGroup{Name: "Mahalle", DiscountPercent: 5}
	g2 := models.CustomerGroup{Name: "Personel", DiscountPercent: 10}
	require.NoError(t, fx.db.Create(&g1).Error)
	require.NoError(t, fx.db.Create(&g2).Error)
	require.NoError(t, fx.db.Model(&fx.customer).Association("Groups").Append(&g1, &g2))

	o, err := fx.svc.Create(fx.params(2))
	require.NoError(t, err)

	// ara toplam 1100, en yüksek grup %10: indirim 110
	assert.Equal(t, int64(110), o.DiscountCents)
	assert.Equal(t, int64(990), o.TotalCents)
	assert.Equal(t, models.StatusUnpaid, o.Status)
	assert.NotEmpty(t, o.Code)
	require.Len(t, o.Items, 1)
	assert.Equal(t, int64(550), o.Items[0].UnitPriceCents)
}

func TestCreateOnlineStartsPending(t *testing.T) {
	fx := setup(t)

	p := fx.params(1)
	p.PaymentMethod = models.PaymentOnline
	p.ExternalPaymentRef = "pay_123"

	o, err := fx.svc.Create(p)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, o.Status)
	require.NotNil(t, o.ExternalPaymentRef)
	assert.Equal(t, "pay_123", *o.ExternalPaymentRef)
}

func TestCreateDuplicatePaymentRefRejected(t *testing.T) {
	fx := setup(t)

	p := fx.params(1)
	p.PaymentMethod = models.PaymentOnline
	p.ExternalPaymentRef = "pay_777"

	_, err := fx.svc.Create(p)
	require.NoError(t, err)

	_, err = fx.svc.Create(p)
	v, ok := AsValidation(err)
	require.True(t, ok)
	assert.Equal(t, CodeDuplicatePaymentRef, v.Code)

	var count int64
	fx.db.Model(&models.Order{}).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestCreateAfterCutOffRejected(t *testing.T) {
	fx := setup(t)

	require.NoError(t, fx.db.Model(&models.BakeDay{}).Where("id = ?", fx.bakeDay.ID).
		Update("cut_off_at", time.Now().Add(-time.Minute)).Error)

	_, err := fx.svc.Create(fx.params(1))
	v, ok := AsValidation(err)
	require.True(t, ok)
	assert.Equal(t, CodeCutOffPassed, v.Code)
}

func TestCreateEmptyCartRejected(t *testing.T) {
	fx := setup(t)

	p := fx.params(1)
	p.Items = nil
	_, err := fx.svc.Create(p)
	v, ok := AsValidation(err)
	require.True(t, ok)
	assert.Equal(t, CodeEmptyCart, v.Code)
}

func TestCreateInactiveVariantRejected(t *testing.T) {
	fx := setup(t)

	require.NoError(t, fx.db.Model(&models.ProductVariant{}).
		Where("id = ?", fx.variant.ID).Update("active", false).Error)

	_, err := fx.svc.Create(fx.params(1))
	v, ok := AsValidation(err)
	require.True(t, ok)
	assert.Equal(t, CodeVariantUnavailable, v.Code)
}

func TestCreateCapacityExceededNamesResource(t *testing.T) {
	fx := setup(t)

	_, err := fx.svc.Create(fx.params(11)) // kalıp limiti 10
	v, ok := AsValidation(err)
	require.True(t, ok)
	assert.Equal(t, CodeCapacityExceeded, v.Code)
	require.NotEmpty(t, v.Details)
	assert.Contains(t, v.Details[0], "Standart kalıp")

	// red hiçbir iz bırakmaz
	var count int64
	fx.db.Model(&models.Order{}).Count(&count)
	assert.Zero(t, count)
}

// Yarışan kabuller: kalıpta 3 yer, 4 istek. Tam olarak 3 kabul edilmeli,
// toplam tüketim limiti asla aşmamalı.
func TestConcurrentAdmissionsNeverOversell(t *testing.T) {
	fx := setup(t)

	require.NoError(t, fx.db.Model(&models.MoldType{}).
		Where("id = ?", fx.mold.ID).Update("unit_limit", 3).Error)

	const attempts = 4
	errs := make([]error, attempts)
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = fx.svc.Create(fx.params(1))
		}(i)
	}
	wg.Wait()

	accepted := 0
	for _, err := range errs {
		if err == nil {
			accepted++
			continue
		}
		v, ok := AsValidation(err)
		require.True(t, ok, "beklenmeyen hata: %v", err)
		assert.Equal(t, CodeCapacityExceeded, v.Code)
	}
	assert.Equal(t, 3, accepted)

	usage, err := capacity.UsageFor(&fx.bakeDay)
	require.NoError(t, err)
	assert.Equal(t, 3, usage.Molds[0].UsedUnits)
}

func TestMarkPaidThenLifecycle(t *testing.T) {
	fx := setup(t)

	o, err := fx.svc.Create(fx.params(1))
	require.NoError(t, err)

	o, err = fx.svc.MarkPaid(o.ID, "")
	require.NoError(t, err)
	assert.Equal(t, models.StatusPaid, o.Status)

	o, err = fx.svc.MarkReady(o.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusReady, o.Status)

	o, err = fx.svc.MarkPickedUp(o.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPickedUp, o.Status)

	// terminal durumdan çıkış yok
	_, err = fx.svc.Cancel(o.ID)
	assert.Error(t, err)
}

func TestCancelPaidWalletOrderRefunds(t *testing.T) {
	fx := setup(t)

	p := fx.params(2)
	p.PaymentMethod = models.PaymentWallet
	o, err := fx.svc.Create(p)
	require.NoError(t, err)

	w, err := wallet.ForCustomer(fx.customer.ID)
	require.NoError(t, err)
	_, err = wallet.Credit(fx.customer.ID, 2000, models.TransactionTypeTopUp, nil, "", "test yükleme")
	require.NoError(t, err)
	debited, err := wallet.Debit(w.ID, o.TotalCents, &o.ID, "test tahsilat")
	require.NoError(t, err)
	require.True(t, debited)

	_, err = fx.svc.MarkPaid(o.ID, "")
	require.NoError(t, err)

	_, err = fx.svc.Cancel(o.ID)
	require.NoError(t, err)

	var fresh models.Wallet
	require.NoError(t, fx.db.First(&fresh, "id = ?", w.ID).Error)
	assert.Equal(t, int64(2000), fresh.BalanceCents) // tahsilat geri döndü

	sum, err := wallet.LedgerSum(w.ID)
	require.NoError(t, err)
	assert.Equal(t, fresh.BalanceCents, sum)
}
