package order

import (
	"fmt"

	"firin-backend/internal/models"

	"gorm.io/gorm"
)

// transitions: durum makinesinin tek kaynağı. Tabloda olmayan her geçiş
// programlama hatasıdır ve yüksek sesle reddedilir.
var transitions = map[models.OrderStatus][]models.OrderStatus{
	models.StatusPlanned:   {models.StatusPaid, models.StatusCancelled},
	models.StatusPending:   {models.StatusPaid, models.StatusCancelled},
	models.StatusUnpaid:    {models.StatusPaid, models.StatusCancelled},
	models.StatusPaid:      {models.StatusReady, models.StatusCancelled},
	models.StatusReady:     {models.StatusPickedUp, models.StatusNoShow},
	models.StatusPickedUp:  {},
	models.StatusNoShow:    {},
	models.StatusCancelled: {},
}

func CanTransition(from, to models.OrderStatus) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Transition siparişi verilen duruma taşır. Geçersiz geçişler sessizce
// yutulmaz; hata döner.
func Transition(tx *gorm.DB, o *models.Order, to models.OrderStatus) error {
	if !CanTransition(o.Status, to) {
		return fmt.Errorf("geçersiz durum geçişi: %s -> %s (sipariş %d)", o.Status, to, o.ID)
	}
	if err := tx.Model(&models.Order{}).Where("id = ?", o.ID).
		Update("status", to).Error; err != nil {
		return fmt.Errorf("durum güncellenemedi: %w", err)
	}
	o.Status = to
	return nil
}
