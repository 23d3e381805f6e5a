package main

import (
	"log"
	"strings"
	"time"

	"firin-backend/internal/audit"
	"firin-backend/internal/auth"
	"firin-backend/internal/capacity"
	"firin-backend/internal/catalog"
	"firin-backend/internal/config"
	"firin-backend/internal/dashboard"
	"firin-backend/internal/database"
	"firin-backend/internal/export"
	"firin-backend/internal/models"
	"firin-backend/internal/notify"
	"firin-backend/internal/order"
	"firin-backend/internal/payment"
	"firin-backend/internal/planned"
	"firin-backend/internal/wallet"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/robfig/cron/v3"
)

func main() {
	cfg := config.Load()
	database.Init(cfg)

	notifier := notify.SMSNotifier{}
	orderSvc := &order.Service{Notifier: notifier, Gateway: payment.LogGateway{}}
	plannedSvc := &planned.Service{Notifier: notifier}

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if e, ok := err.(*fiber.Error); ok {
				return c.Status(e.Code).JSON(fiber.Map{
					"error": e.Message,
				})
			}
			log.Println("Unexpected error:", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Beklenmeyen sunucu hatası",
			})
		},
	})

	// CORS origins'i virgülle ayrılmış string'den array'e çevir
	corsOrigins := strings.Split(cfg.CORSOrigins, ",")
	for i := range corsOrigins {
		corsOrigins[i] = strings.TrimSpace(corsOrigins[i])
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins: strings.Join(corsOrigins, ","),
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
	}))

	api := app.Group("/api")

	// Public auth
	api.Post("/auth/register-admin", auth.RegisterAdminHandler(cfg))
	api.Post("/auth/register", auth.RegisterCustomerHandler(cfg))
	api.Post("/auth/login", auth.LoginHandler(cfg))

	// Ödeme sağlayıcı webhookları (imza doğrulaması gateway tarafında)
	api.Post("/webhooks/payment", order.PaymentWebhookHandler(orderSvc))
	api.Post("/webhooks/wallet-topup", wallet.TopUpWebhookHandler())

	// Protected
	protected := api.Group("")
	protected.Use(auth.JWTMiddleware(cfg))

	protected.Get("/auth/me", auth.MeHandler())

	// Vitrin: katalog + doluluk
	protected.Get("/products", catalog.ListProductsHandler())
	protected.Get("/product-categories", catalog.ListCategoriesHandler())
	protected.Get("/mold-types", catalog.ListMoldTypesHandler())
	protected.Get("/flour-types", catalog.ListFlourTypesHandler())
	protected.Get("/bake-days", catalog.ListBakeDaysHandler())
	protected.Get("/bake-days/:id/usage", capacity.UsageHandler())
	protected.Post("/bake-days/:id/cart-fits", capacity.CartFitsHandler())

	// Müşteri: checkout + siparişler
	customerRoutes := protected.Group("")
	customerRoutes.Use(auth.RequireRole(models.RoleCustomer))
	customerRoutes.Post("/checkout", order.CheckoutHandler(orderSvc))
	customerRoutes.Get("/orders", order.ListMyOrdersHandler())

	// Müşteri: planlı sipariş takvimi
	customerRoutes.Get("/calendar/orders", planned.ListHandler())
	customerRoutes.Put("/calendar/orders", planned.UpsertHandler(plannedSvc))
	customerRoutes.Delete("/calendar/orders/:id", planned.CancelHandler(plannedSvc))

	// Müşteri: cüzdan
	customerRoutes.Get("/wallet", wallet.GetWalletHandler())
	customerRoutes.Put("/wallet/threshold", wallet.UpdateThresholdHandler())

	// Admin routes
	adminRoutes := protected.Group("/admin")
	adminRoutes.Use(auth.RequireRole(models.RoleAdmin))

	// Üretim günleri
	adminRoutes.Post("/bake-days", catalog.CreateBakeDayHandler())
	adminRoutes.Put("/bake-days/:id", catalog.UpdateBakeDayHandler())
	adminRoutes.Delete("/bake-days/:id", catalog.DeleteBakeDayHandler())
	adminRoutes.Get("/bake-days/:id/production-sheet", export.ProductionSheetHandler())

	// Kaynak kataloğu
	adminRoutes.Post("/mold-types", catalog.CreateMoldTypeHandler())
	adminRoutes.Put("/mold-types/:id", catalog.UpdateMoldTypeHandler())
	adminRoutes.Delete("/mold-types/:id", catalog.DeleteMoldTypeHandler())
	adminRoutes.Post("/flour-types", catalog.CreateFlourTypeHandler())
	adminRoutes.Put("/flour-types/:id", catalog.UpdateFlourTypeHandler())
	adminRoutes.Delete("/flour-types/:id", catalog.DeleteFlourTypeHandler())

	// Üretim ayarları + hamur oranları
	adminRoutes.Get("/production-settings", catalog.GetProductionSettingsHandler())
	adminRoutes.Put("/production-settings", catalog.UpdateProductionSettingsHandler())
	adminRoutes.Get("/dough-ratios", catalog.ListDoughRatiosHandler())
	adminRoutes.Put("/dough-ratios/:name", catalog.UpdateDoughRatioHandler())

	// Ürün yönetimi
	adminRoutes.Post("/product-categories", catalog.CreateCategoryHandler())
	adminRoutes.Post("/products", catalog.CreateProductHandler())
	adminRoutes.Post("/product-variants", catalog.CreateVariantHandler())
	adminRoutes.Put("/product-variants/:id", catalog.UpdateVariantHandler())

	// Sipariş yönetimi
	adminRoutes.Get("/orders", order.ListOrdersHandler())
	adminRoutes.Post("/orders/:id/paid", order.StatusHandler(orderSvc, "paid"))
	adminRoutes.Post("/orders/:id/ready", order.StatusHandler(orderSvc, "ready"))
	adminRoutes.Post("/orders/:id/picked-up", order.StatusHandler(orderSvc, "picked-up"))
	adminRoutes.Post("/orders/:id/no-show", order.StatusHandler(orderSvc, "no-show"))
	adminRoutes.Post("/orders/:id/cancel", order.StatusHandler(orderSvc, "cancel"))

	// Dashboard + audit
	adminRoutes.Get("/dashboard/fill-chart", dashboard.FillChartHandler())
	adminRoutes.Get("/audit-logs", audit.ListAuditLogsHandler())

	// Periyodik tetikleyiciler: kesime yaklaşan günler için uyarı taraması,
	// kesimi geçen günler için sonuçlandırma
	scheduler := cron.New()
	warnWindow := time.Duration(cfg.WarnWindowHours) * time.Hour
	if _, err := scheduler.AddFunc("@hourly", func() { plannedSvc.WarnIfInsufficient(warnWindow) }); err != nil {
		log.Fatalf("Uyarı taraması planlanamadı: %v", err)
	}
	if _, err := scheduler.AddFunc("@every 5m", func() { plannedSvc.SettleDue() }); err != nil {
		log.Fatalf("Sonuçlandırma taraması planlanamadı: %v", err)
	}
	scheduler.Start()
	defer scheduler.Stop()

	log.Println("Server çalışıyor port:", cfg.HTTPPort)
	if err := app.Listen(":" + cfg.HTTPPort); err != nil {
		log.Fatal(err)
	}
}
