package dashboard

import (
	"time"

	"firin-backend/internal/capacity"
	"firin-backend/internal/database"
	"firin-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

type FillChartPoint struct {
	BakeDayID          uint    `json:"bake_day_id"`
	Date               string  `json:"date"`
	FillPercentage     int     `json:"fill_percentage"`
	FullyBooked        bool    `json:"fully_booked"`
	OvenUsedGrams      float64 `json:"oven_used_grams"`
	OvenLimitGrams     float64 `json:"oven_limit_grams"`
	PlannedDemandGrams float64 `json:"planned_demand_grams"` // rezervasyon değil, baskı göstergesi
	OrderCount         int64   `json:"order_count"`
}

// -------------------------------------------------
// GET /api/admin/dashboard/fill-chart?days=14
// Önümüzdeki günlerin doluluk grafiği.
// -------------------------------------------------
func FillChartHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		daysAhead := c.QueryInt("days", 14)
		if daysAhead <= 0 || daysAhead > 60 {
			daysAhead = 14
		}

		now := time.Now()
		today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

		var days []models.BakeDay
		err := database.DB.
			Where("date >= ? AND date < ?", today, today.AddDate(0, 0, daysAhead)).
			Order("date asc").Find(&days).Error
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Günler listelenemedi")
		}

		points := make([]FillChartPoint, 0, len(days))
		for i := range days {
			day := &days[i]

			usage, err := capacity.UsageFor(day)
			if err != nil {
				return fiber.NewError(fiber.StatusInternalServerError, "Doluluk hesaplanamadı")
			}
			plannedGrams, err := capacity.PlannedDemandGrams(day.ID)
			if err != nil {
				return fiber.NewError(fiber.StatusInternalServerError, "Planlı talep hesaplanamadı")
			}

			var orderCount int64
			database.DB.Model(&models.Order{}).
				Where("bake_day_id = ? AND status <> ?", day.ID, models.StatusCancelled).
				Count(&orderCount)

			points = append(points, FillChartPoint{
				BakeDayID:          day.ID,
				Date:               day.Date.Format("2006-01-02"),
				FillPercentage:     usage.FillPercentage,
				FullyBooked:        usage.FullyBooked,
				OvenUsedGrams:      usage.OvenUsedGrams,
				OvenLimitGrams:     usage.OvenLimitGrams,
				PlannedDemandGrams: plannedGrams,
				OrderCount:         orderCount,
			})
		}

		return c.JSON(points)
	}
}
