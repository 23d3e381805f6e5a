package wallet

import (
	"fmt"

	"firin-backend/internal/auth"
	"firin-backend/internal/database"
	"firin-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

type WalletResponse struct {
	BalanceCents             int64                 `json:"balance_cents"`
	LowBalanceThresholdCents int64                 `json:"low_balance_threshold_cents"`
	Transactions             []TransactionResponse `json:"transactions"`
}

type TransactionResponse struct {
	ID          uint                   `json:"id"`
	Type        models.TransactionType `json:"type"`
	AmountCents int64                  `json:"amount_cents"`
	OrderID     *uint                  `json:"order_id"`
	Description string                 `json:"description"`
	CreatedAt   string                 `json:"created_at"`
}

// -------------------------------------------------
// GET /api/wallet  (müşterinin bakiyesi + son hareketler)
// -------------------------------------------------
func GetWalletHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		customerID, err := auth.CustomerID(c)
		if err != nil {
			return err
		}

		w, err := ForCustomer(customerID)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Cüzdan yüklenemedi")
		}

		var trans []models.WalletTransaction
		if err := database.DB.Where("wallet_id = ?", w.ID).
			Order("id desc").Limit(50).Find(&trans).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Hareketler listelenemedi")
		}

		resp := WalletResponse{
			BalanceCents:             w.BalanceCents,
			LowBalanceThresholdCents: w.LowBalanceThresholdCents,
			Transactions:             make([]TransactionResponse, 0, len(trans)),
		}
		for _, t := range trans {
			resp.Transactions = append(resp.Transactions, TransactionResponse{
				ID:          t.ID,
				Type:        t.Type,
				AmountCents: t.AmountCents,
				OrderID:     t.OrderID,
				Description: t.Description,
				CreatedAt:   t.CreatedAt.Format("2006-01-02 15:04"),
			})
		}
		return c.JSON(resp)
	}
}

type ThresholdRequest struct {
	LowBalanceThresholdCents int64 `json:"low_balance_threshold_cents"`
}

// -------------------------------------------------
// PUT /api/wallet/threshold
// -------------------------------------------------
func UpdateThresholdHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		customerID, err := auth.CustomerID(c)
		if err != nil {
			return err
		}

		var body ThresholdRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}
		if body.LowBalanceThresholdCents < 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Eşik negatif olamaz")
		}

		w, err := ForCustomer(customerID)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Cüzdan yüklenemedi")
		}

		if err := database.DB.Model(&models.Wallet{}).Where("id = ?", w.ID).
			Update("low_balance_threshold_cents", body.LowBalanceThresholdCents).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Eşik güncellenemedi")
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

type TopUpWebhookRequest struct {
	CustomerID  uint   `json:"customer_id"`
	AmountCents int64  `json:"amount_cents"`
	PaymentRef  string `json:"payment_ref"`
}

// -------------------------------------------------
// POST /api/webhooks/wallet-topup
// Ödeme sağlayıcısı yüklemeyi onayladığında bakiye işlenir. Aynı
// payment_ref ile tekrar çağrı ikinci yükleme yapmaz.
// -------------------------------------------------
func TopUpWebhookHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body TopUpWebhookRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}
		if body.CustomerID == 0 || body.PaymentRef == "" {
			return fiber.NewError(fiber.StatusBadRequest, "customer_id ve payment_ref zorunlu")
		}
		if body.AmountCents <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Tutar pozitif olmalı")
		}

		trans, err := Credit(body.CustomerID, body.AmountCents, models.TransactionTypeTopUp,
			nil, body.PaymentRef, fmt.Sprintf("Bakiye yükleme (%s)", body.PaymentRef))
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Yükleme işlenemedi")
		}

		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"transaction_id": trans.ID,
			"amount_cents":   trans.AmountCents,
		})
	}
}
