package capacity

import (
	"testing"
	"time"

	"firin-backend/internal/database"
	"firin-backend/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fixture struct {
	db       *gorm.DB
	bakeDay  models.BakeDay
	mold     models.MoldType
	flour    models.FlourType
	breadVar models.ProductVariant // 500g hamur, kalıplı, %100 tek un
	doughVar models.ProductVariant // kapasite tüketmeyen kategori
	plainVar models.ProductVariant // ekmek ama gramaj/kalıp/un yok
	customer models.Customer
}

func setup(t *testing.T) *fixture {
	t.Helper()
	db := database.InitTest(t)

	fx := &fixture{db: db}

	fx.mold = models.MoldType{Name: "Uzun kalıp", UnitLimit: 10}
	require.NoError(t, db.Create(&fx.mold).Error)

	limit := 5000.0
	fx.flour = models.FlourType{Name: "Tam buğday", KneaderLimitGrams: &limit}
	require.NoError(t, db.Create(&fx.flour).Error)

	breadCat := models.ProductCategory{Name: "Ekmekler", ConsumesCapacity: true}
	require.NoError(t, db.Create(&breadCat).Error)
	doughCat := models.ProductCategory{Name: "Hamur topları", ConsumesCapacity: false}
	require.NoError(t, db.Create(&doughCat).Error)

	bread := models.Product{CategoryID: breadCat.ID, Name: "Köy ekmeği"}
	require.NoError(t, db.Create(&bread).Error)
	doughBall := models.Product{CategoryID: doughCat.ID, Name: "Pizza hamuru"}
	require.NoError(t, db.Create(&doughBall).Error)

	grams := 500.0
	fx.breadVar = models.ProductVariant{
		ProductID:          bread.ID,
		Name:               "800g",
		PriceCents:         550,
		FlourQuantityGrams: &grams,
		MoldTypeID:         &fx.mold.ID,
		Active:             true,
		SoldOnline:         true,
	}
	require.NoError(t, db.Create(&fx.breadVar).Error)
	require.NoError(t, db.Create(&models.VariantFlour{
		ProductVariantID: fx.breadVar.ID,
		FlourTypeID:      fx.flour.ID,
		Percentage:       100,
	}).Error)

	fx.doughVar = models.ProductVariant{
		ProductID:  doughBall.ID,
		Name:       "250g",
		PriceCents: 200,
		Active:     true,
		SoldOnline: true,
	}
	require.NoError(t, db.Create(&fx.doughVar).Error)

	fx.plainVar = models.ProductVariant{
		ProductID:  bread.ID,
		Name:       "gramajsız",
		PriceCents: 300,
		Active:     true,
		SoldOnline: true,
	}
	require.NoError(t, db.Create(&fx.plainVar).Error)

	fx.bakeDay = models.BakeDay{
		Date:              time.Now().AddDate(0, 0, 3).Truncate(24 * time.Hour),
		CutOffAt:          time.Now().Add(48 * time.Hour),
		OvenCapacityGrams: 30000,
	}
	require.NoError(t, db.Create(&fx.bakeDay).Error)

	fx.customer = models.Customer{Name: "Ayşe", Phone: "+905550001122"}
	require.NoError(t, db.Create(&fx.customer).Error)

	return fx
}

func (fx *fixture) seedOrder(t *testing.T, variantID uint, qty int, status models.OrderStatus) models.Order {
	t.Helper()
	o := models.Order{
		Code:          uuid.NewString(),
		CustomerID:    fx.customer.ID,
		BakeDayID:     fx.bakeDay.ID,
		Status:        status,
		Source:        models.SourceCheckout,
		PaymentMethod: models.PaymentCash,
		TotalCents:    int64(qty) * 550,
	}
	require.NoError(t, fx.db.Create(&o).Error)
	require.NoError(t, fx.db.Create(&models.OrderItem{
		OrderID:          o.ID,
		ProductVariantID: variantID,
		Qty:              qty,
		UnitPriceCents:   550,
	}).Error)
	return o
}

func TestUsageEmptyDay(t *testing.T) {
	fx := setup(t)

	usage, err := UsageFor(&fx.bakeDay)
	require.NoError(t, err)

	assert.Equal(t, 0, usage.FillPercentage)
	assert.False(t, usage.FullyBooked)
	assert.Zero(t, usage.OvenUsedGrams)
	for _, m := range usage.Molds {
		assert.Zero(t, m.UsedUnits)
	}
	for _, f := range usage.Flours {
		assert.Zero(t, f.UsedGrams)
	}
}

func TestUsageAtExactLimit(t *testing.T) {
	fx := setup(t)

	// 10 adet = kalıp limiti; 10×500g = 5000g = yoğurma limiti
	fx.seedOrder(t, fx.breadVar.ID, 10, models.StatusPaid)

	usage, err := UsageFor(&fx.bakeDay)
	require.NoError(t, err)

	assert.Equal(t, 100, usage.FillPercentage)
	assert.True(t, usage.FullyBooked)
	assert.Equal(t, 10, usage.Molds[0].UsedUnits)
	assert.InDelta(t, 5000, usage.Flours[0].UsedGrams, 0.01)
	assert.InDelta(t, 5000, usage.OvenUsedGrams, 0.01)
}

func TestCartFitsRejectsOverLimitNamingEveryResource(t *testing.T) {
	fx := setup(t)
	fx.seedOrder(t, fx.breadVar.ID, 10, models.StatusPaid)

	check, err := CartFits(&fx.bakeDay, []CartItem{{VariantID: fx.breadVar.ID, Qty: 1}})
	require.NoError(t, err)

	assert.False(t, check.Fits)
	// kalıp ve yoğurma birlikte aşıldı; ikisi de raporlanmalı
	require.Len(t, check.Errors, 2)
	assert.Contains(t, check.Errors[0], "Uzun kalıp")
	assert.Contains(t, check.Errors[1], "Tam buğday")
}

func TestCartFitsEmptyCart(t *testing.T) {
	fx := setup(t)

	check, err := CartFits(&fx.bakeDay, nil)
	require.NoError(t, err)
	assert.True(t, check.Fits)
	assert.Empty(t, check.Errors)
}

func TestDoughBallsNeverConsumeCapacity(t *testing.T) {
	fx := setup(t)

	check, err := CartFits(&fx.bakeDay, []CartItem{{VariantID: fx.doughVar.ID, Qty: 1000}})
	require.NoError(t, err)
	assert.True(t, check.Fits)

	fx.seedOrder(t, fx.doughVar.ID, 500, models.StatusPaid)
	usage, err := UsageFor(&fx.bakeDay)
	require.NoError(t, err)
	assert.Equal(t, 0, usage.FillPercentage)
}

func TestMissingOptionalAttributesContributeZero(t *testing.T) {
	fx := setup(t)

	// gramajı, kalıbı ve un kompozisyonu olmayan ekmek: hata değil, sıfır katkı
	fx.seedOrder(t, fx.plainVar.ID, 5, models.StatusPaid)

	usage, err := UsageFor(&fx.bakeDay)
	require.NoError(t, err)
	assert.Equal(t, 0, usage.FillPercentage)
	assert.Zero(t, usage.OvenUsedGrams)
}

func TestCancelledAndPlannedOrdersDoNotCount(t *testing.T) {
	fx := setup(t)

	fx.seedOrder(t, fx.breadVar.ID, 4, models.StatusCancelled)
	fx.seedOrder(t, fx.breadVar.ID, 4, models.StatusPlanned)
	fx.seedOrder(t, fx.breadVar.ID, 2, models.StatusPaid)

	usage, err := UsageFor(&fx.bakeDay)
	require.NoError(t, err)
	assert.Equal(t, 2, usage.Molds[0].UsedUnits)

	// planlı talep ayrı raporlanır
	grams, err := PlannedDemandGrams(fx.bakeDay.ID)
	require.NoError(t, err)
	assert.InDelta(t, 2000, grams, 0.01)
}

func TestOvenLimitViolation(t *testing.T) {
	fx := setup(t)

	// fırını küçült: 2 adet sığar, 3. sığmaz
	require.NoError(t, fx.db.Model(&models.BakeDay{}).Where("id = ?", fx.bakeDay.ID).
		Update("oven_capacity_grams", 1000).Error)
	fx.bakeDay.OvenCapacityGrams = 1000

	check, err := CartFits(&fx.bakeDay, []CartItem{{VariantID: fx.breadVar.ID, Qty: 3}})
	require.NoError(t, err)
	assert.False(t, check.Fits)
	require.Len(t, check.Errors, 1)
	assert.Contains(t, check.Errors[0], "Fırın kapasitesi")
}
