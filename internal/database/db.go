package database

import (
	"log"

	"firin-backend/internal/config"
	"firin-backend/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

func Init(cfg *config.Config) {
	var err error

	DB, err = gorm.Open(postgres.Open(cfg.DatabaseDSN), &gorm.Config{})
	if err != nil {
		log.Fatalf("Veritabanına bağlanılamadı: %v", err)
	}

	if err := Migrate(DB); err != nil {
		log.Fatalf("Migration hatası: %v", err)
	}

	log.Println("Veritabanı bağlantısı başarılı. Migration tamamlandı.")
}

// Migrate şemayı kurar ve tekil kayıtları (üretim ayarları, hamur
// oranları) bootstrap eder. Testler aynı fonksiyonu sqlite üzerinde çalıştırır.
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.User{},
		&models.Customer{},
		&models.CustomerGroup{},
		&models.BakeDay{},
		&models.MoldType{},
		&models.FlourType{},
		&models.ProductionSettings{},
		&models.DoughRatio{},
		&models.ProductCategory{},
		&models.Product{},
		&models.ProductVariant{},
		&models.VariantFlour{},
		&models.Order{},
		&models.OrderItem{},
		&models.Wallet{},
		&models.WalletTransaction{},
		&models.Notification{},
		&models.AuditLog{},
	)
	if err != nil {
		return err
	}

	if err := bootstrapProductionSettings(db); err != nil {
		return err
	}
	return bootstrapDoughRatios(db)
}

// bootstrapProductionSettings: ProductionSettings tek satır olmalı.
// Tekillik burada, persistence sınırında garanti edilir; kod tarafında
// ayrıca bir singleton guard yoktur.
func bootstrapProductionSettings(db *gorm.DB) error {
	var count int64
	if err := db.Model(&models.ProductionSettings{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 1 {
		log.Printf("[WARN] production_settings tablosunda %d satır var, ilki kullanılacak", count)
		return nil
	}
	if count == 1 {
		return nil
	}
	return db.Create(&models.ProductionSettings{
		WeekdayOvenGrams:   30000,
		MarketDayOvenGrams: 45000,
	}).Error
}

// bootstrapDoughRatios: dört sabit oran, yoksa ekmek somunu kütlesine
// göre klasik ekşi maya değerleriyle oluşturulur.
func bootstrapDoughRatios(db *gorm.DB) error {
	defaults := map[string]float64{
		models.RatioFlour:  0.56,
		models.RatioSalt:   0.011,
		models.RatioWater:  0.38,
		models.RatioLeaven: 0.112,
	}
	for name, fraction := range defaults {
		var count int64
		if err := db.Model(&models.DoughRatio{}).Where("name = ?", name).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			continue
		}
		if err := db.Create(&models.DoughRatio{Name: name, Fraction: fraction}).Error; err != nil {
			return err
		}
	}
	return nil
}
