package main

import (
	"log"
	"strings"

	"istasyon-backend/internal/admin"
	"istasyon-backend/internal/audit"
	"istasyon-backend/internal/auth"
	"istasyon-backend/internal/config"
	"istasyon-backend/internal/customer"
	"istasyon-backend/internal/dashboard"
	"istasyon-backend/internal/database"
	"istasyon-backend/internal/fuel"
	"istasyon-backend/internal/invoice"
	"istasyon-backend/internal/models"
	"istasyon-backend/internal/reports"
	"istasyon-backend/internal/shift"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
)

func main() {
	cfg := config.Load()
	database.Init(cfg)

	uyumsoft := invoice.NewUyumsoftClient(cfg)

	// Yakıt defterine dokunan undo'lar stok önbelleğini tazelesin
	audit.OnFuelLedgerChange = fuel.RecalculateStock

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
	api.Post("/auth/register-super-admin", auth.RegisterSuperAdminHandler(cfg))
	api.Post("/auth/login", auth.LoginHandler(cfg))

	// Protected
	protected := api.Group("")
	protected.Use(auth.JWTMiddleware(cfg))

	protected.Get("/auth/me", auth.MeHandler())

	// Super admin routes
	adminRoutes := protected.Group("/admin")
	adminRoutes.Use(auth.RequireRole(models.RoleSuperAdmin))

	// İstasyon yönetimi
	adminRoutes.Post("/stations", admin.CreateStationHandler())
	adminRoutes.Get("/stations", admin.ListStationsHandler())
	adminRoutes.Get("/stations/:id", admin.GetStationHandler())
	adminRoutes.Put("/stations/:id", admin.UpdateStationHandler())
	adminRoutes.Delete("/stations/:id", admin.DeleteStationHandler())
	adminRoutes.Post("/stations/:id/admin", admin.CreateStationAdminHandler())
	adminRoutes.Get("/stations/:id/admins", admin.ListStationAdminsHandler())

	// Uyumsoft hesap tanımı
	adminRoutes.Put("/stations/:id/uyumsoft-account", admin.UpsertUyumsoftAccountHandler())
	adminRoutes.Get("/stations/:id/uyumsoft-account", admin.GetUyumsoftAccountHandler())

	// Ortak (auth gerektiren) route'lar

	// Vardiyalar
	protected.Post("/shifts", shift.CreateShiftHandler())
	protected.Get("/shifts", shift.ListShiftsHandler())
	protected.Put("/shifts/:id", shift.UpdateShiftHandler())
	protected.Delete("/shifts/:id", shift.DeleteShiftHandler())
	protected.Get("/shifts/summary/monthly", shift.MonthlySummaryHandler())

	// Yakıt alımları
	protected.Post("/fuel-purchases", fuel.CreatePurchaseHandler())
	protected.Get("/fuel-purchases", fuel.ListPurchasesHandler())
	protected.Delete("/fuel-purchases/:id", fuel.DeletePurchaseHandler())

	// Yakıt satışları
	protected.Post("/fuel-sales", fuel.CreateSaleHandler())
	protected.Get("/fuel-sales", fuel.ListSalesHandler())
	protected.Delete("/fuel-sales/:id", fuel.DeleteSaleHandler())

	// Yakıt stok
	protected.Get("/fuel-stock", fuel.GetStockHandler(cfg))
	protected.Post("/fuel-stock/recalculate", fuel.RecalculateStockHandler(cfg))

	// Müşteriler ve veresiye
	protected.Post("/customers", customer.CreateCustomerHandler())
	protected.Get("/customers", customer.ListCustomersHandler())
	protected.Get("/customers/debtors", customer.ListDebtorsHandler())
	protected.Post("/customers/import", customer.ImportHandler())
	protected.Put("/customers/:id", customer.UpdateCustomerHandler())
	protected.Delete("/customers/:id", customer.DeleteCustomerHandler())
	protected.Post("/customers/:id/transactions", customer.CreateTransactionHandler())
	protected.Get("/customers/:id/transactions", customer.ListTransactionsHandler())
	protected.Get("/customers/:id/balance", customer.GetBalanceHandler())
	protected.Delete("/customer-transactions/:id", customer.DeleteTransactionHandler())

	// E-fatura
	protected.Post("/invoices", invoice.CreateInvoiceHandler())
	protected.Get("/invoices", invoice.ListInvoicesHandler())
	protected.Get("/invoices/:id", invoice.GetInvoiceHandler())
	protected.Put("/invoices/:id", invoice.UpdateInvoiceHandler())
	protected.Delete("/invoices/:id", invoice.DeleteInvoiceHandler())
	protected.Post("/invoices/:id/submit", invoice.SubmitInvoiceHandler(uyumsoft))
	protected.Get("/invoices/:id/status", invoice.InvoiceStatusHandler(uyumsoft))

	// Dashboard
	protected.Get("/dashboard/sales-chart", dashboard.SalesChartHandler())

	// Aylık rapor
	protected.Get("/reports/monthly", reports.MonthlySummaryHandler())

	// Audit log
	protected.Get("/audit-logs", audit.ListAuditLogsHandler())
	protected.Post("/audit-logs/:id/undo", audit.UndoAuditLogHandler())

	log.Printf("Sunucu %s portunda dinliyor", cfg.HTTPPort)
	log.Fatal(app.Listen(":" + cfg.HTTPPort))
}
