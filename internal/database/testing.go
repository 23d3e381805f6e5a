package database

import (
	"testing"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// InitTest testler için bellek-içi sqlite açar ve global DB'yi ona
// yönlendirir. Her test kendi taze veritabanını alır.
func InitTest(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("test veritabanı açılamadı: %v", err)
	}
	if err := Migrate(db); err != nil {
		t.Fatalf("test migration hatası: %v", err)
	}

	prev := DB
	DB = db
	t.Cleanup(func() { DB = prev })

	return db
}
