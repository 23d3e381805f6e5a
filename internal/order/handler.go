package order

import (
	"firin-backend/internal/auth"
	"firin-backend/internal/capacity"
	"firin-backend/internal/database"
	"firin-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

type CheckoutRequest struct {
	BakeDayID          uint                `json:"bake_day_id"`
	Items              []capacity.CartItem `json:"items"`
	PaymentMethod      string              `json:"payment_method"` // "online" | "cash"
	ExternalPaymentRef string              `json:"external_payment_ref"`
}

type OrderResponse struct {
	ID            uint               `json:"id"`
	Code          string             `json:"code"`
	BakeDayID     uint               `json:"bake_day_id"`
	Status        models.OrderStatus `json:"status"`
	TotalCents    int64              `json:"total_cents"`
	DiscountCents int64              `json:"discount_cents"`
	Items         []ItemResponse     `json:"items"`
}

type ItemResponse struct {
	ProductVariantID uint  `json:"product_variant_id"`
	Qty              int   `json:"qty"`
	UnitPriceCents   int64 `json:"unit_price_cents"`
}

func Response(o *models.Order) OrderResponse {
	resp := OrderResponse{
		ID:            o.ID,
		Code:          o.Code,
		BakeDayID:     o.BakeDayID,
		Status:        o.Status,
		TotalCents:    o.TotalCents,
		DiscountCents: o.DiscountCents,
	}
	for _, it := range o.Items {
		resp.Items = append(resp.Items, ItemResponse{
			ProductVariantID: it.ProductVariantID,
			Qty:              it.Qty,
			UnitPriceCents:   it.UnitPriceCents,
		})
	}
	return resp
}

// RenderError doğrulama sonuçlarını 422 + yapısal gövdeyle döner ki
// arayüz tüm ihlalleri tek seferde gösterebilsin. Sistem hataları 500'dür.
func RenderError(c *fiber.Ctx, err error) error {
	if v, ok := AsValidation(err); ok {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(v)
	}
	return err
}

// -------------------------------------------------
// POST /api/checkout  (müşteri)
// -------------------------------------------------
func CheckoutHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		customerID, err := auth.CustomerID(c)
		if err != nil {
			return err
		}

		var body CheckoutRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		method := models.PaymentMethod(body.PaymentMethod)
		switch method {
		case models.PaymentOnline, models.PaymentCash:
			// ok
		default:
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz ödeme yöntemi (online|cash)")
		}

		o, err := svc.Create(CreateParams{
			CustomerID:         customerID,
			BakeDayID:          body.BakeDayID,
			Items:              body.Items,
			PaymentMethod:      method,
			ExternalPaymentRef: body.ExternalPaymentRef,
		})
		if err != nil {
			return RenderError(c, err)
		}

		return c.Status(fiber.StatusCreated).JSON(Response(o))
	}
}

type PaymentWebhookRequest struct {
	CustomerID uint                `json:"customer_id"`
	BakeDayID  uint                `json:"bake_day_id"`
	Items      []capacity.CartItem `json:"items"`
	PaymentRef string              `json:"payment_ref"`
}

// -------------------------------------------------
// POST /api/webhooks/payment
// Ödeme sağlayıcısı tahsilatı onayladığında siparişi oluşturur ve
// ödendi işaretler. Aynı payment_ref ile tekrar çağrı ikinci sipariş
// üretmez (duplicate_payment_ref).
// -------------------------------------------------
func PaymentWebhookHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body PaymentWebhookRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}
		if body.PaymentRef == "" {
			return fiber.NewError(fiber.StatusBadRequest, "payment_ref zorunlu")
		}

		o, err := svc.Create(CreateParams{
			CustomerID:         body.CustomerID,
			BakeDayID:          body.BakeDayID,
			Items:              body.Items,
			PaymentMethod:      models.PaymentOnline,
			ExternalPaymentRef: body.PaymentRef,
		})
		if err != nil {
			return RenderError(c, err)
		}

		paid, err := svc.MarkPaid(o.ID, "")
		if err != nil {
			return err
		}
		paid.Items = o.Items
		return c.Status(fiber.StatusCreated).JSON(Response(paid))
	}
}

// -------------------------------------------------
// GET /api/orders  (müşterinin kendi siparişleri)
// -------------------------------------------------
func ListMyOrdersHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		customerID, err := auth.CustomerID(c)
		if err != nil {
			return err
		}

		var orders []models.Order
		if err := database.DB.Preload("Items").
			Where("customer_id = ?", customerID).
			Order("id desc").Find(&orders).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Siparişler listelenemedi")
		}

		resp := make([]OrderResponse, 0, len(orders))
		for i := range orders {
			resp = append(resp, Response(&orders[i]))
		}
		return c.JSON(resp)
	}
}

// -------------------------------------------------
// GET /api/admin/orders?bake_day_id=5&status=paid
// -------------------------------------------------
func ListOrdersHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		dbq := database.DB.Preload("Items").Preload("Customer")

		if bakeDayID := c.QueryInt("bake_day_id", 0); bakeDayID > 0 {
			dbq = dbq.Where("bake_day_id = ?", bakeDayID)
		}
		if status := c.Query("status"); status != "" {
			dbq = dbq.Where("status = ?", status)
		}

		var orders []models.Order
		if err := dbq.Order("id desc").Find(&orders).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Siparişler listelenemedi")
		}

		resp := make([]OrderResponse, 0, len(orders))
		for i := range orders {
			resp = append(resp, Response(&orders[i]))
		}
		return c.JSON(resp)
	}
}

// -------------------------------------------------
// POST /api/admin/orders/:id/{paid,ready,picked-up,no-show,cancel}
// -------------------------------------------------
func StatusHandler(svc *Service, action string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil || id <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "id geçersiz")
		}

		var o *models.Order
		switch action {
		case "paid":
			o, err = svc.MarkPaid(uint(id), "")
		case "ready":
			o, err = svc.MarkReady(uint(id))
		case "picked-up":
			o, err = svc.MarkPickedUp(uint(id))
		case "no-show":
			o, err = svc.MarkNoShow(uint(id))
		case "cancel":
			o, err = svc.Cancel(uint(id))
		default:
			return fiber.NewError(fiber.StatusBadRequest, "Bilinmeyen işlem")
		}
		if err != nil {
			return fiber.NewError(fiber.StatusConflict, err.Error())
		}
		return c.JSON(Response(o))
	}
}
