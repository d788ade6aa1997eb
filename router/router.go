package router

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/yeremiapane/venue-ops/controllers"
	"github.com/yeremiapane/venue-ops/middlewares"
	"github.com/yeremiapane/venue-ops/services"
)

func SetupRouter(db *gorm.DB) *gin.Engine {
	r := gin.Default()

	// Apply security middlewares
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddlewares())
	r.Use(middlewares.LoggerMiddleware())

	// Inisialisasi services
	sessionSvc := services.NewSessionService(db)
	settingsSvc := services.NewSettingsService(db)
	promoSvc := services.NewPromoService(db)
	ledger := services.NewOrderLedger(db, sessionSvc)
	invoiceSvc := services.NewInvoiceService(db, sessionSvc)
	paymentSvc := services.NewPaymentService(db, sessionSvc, invoiceSvc)
	coordinator := services.NewSplitCoordinator(db, invoiceSvc, paymentSvc)

	// Inisialisasi controller
	userCtrl := controllers.NewUserController(db)
	tableCtrl := controllers.NewTableController(db)
	guestCtrl := controllers.NewGuestController(db)
	bookingCtrl := controllers.NewBookingController(db)
	sessionCtrl := controllers.NewSessionController(db, sessionSvc, settingsSvc, promoSvc)
	orderCtrl := controllers.NewOrderController(db, ledger)
	invoiceCtrl := controllers.NewInvoiceController(db, invoiceSvc, sessionSvc, settingsSvc, promoSvc)
	paymentCtrl := controllers.NewPaymentController(db, paymentSvc)
	splitCtrl := controllers.NewSplitController(db, coordinator, sessionSvc, settingsSvc)
	promoCtrl := controllers.NewPromoController(db, promoSvc)
	adminCtrl := controllers.NewAdminController(db, invoiceSvc)

	// ----------------------------------------------------------------
	//                      PUBLIC ROUTES
	// ----------------------------------------------------------------
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "pong"})
	})

	// Rate limiter untuk login/register
	public := r.Group("/")
	public.Use(middlewares.NewStrictRateLimiter())
	{
		public.POST("/register", userCtrl.Register)
		public.POST("/login", userCtrl.Login)
	}

	// ----------------------------------------------------------------
	//                      AUTHENTICATED ROUTES
	// ----------------------------------------------------------------
	auth := r.Group("/api")
	auth.Use(middlewares.AuthMiddleware())

	auth.GET("/profile", userCtrl.GetProfile)
	auth.GET("/users", userCtrl.GetAllUsers)
	auth.POST("/logout", userCtrl.Logout)

	// TABLES (floor view)
	auth.GET("/tables", tableCtrl.GetAllTables)
	auth.POST("/tables", tableCtrl.CreateTable)
	auth.GET("/tables/:table_id", tableCtrl.GetTableByID)
	auth.PATCH("/tables/:table_id", tableCtrl.UpdateTableStatus)
	auth.DELETE("/tables/:table_id", tableCtrl.DeleteTable)

	// GUESTS
	auth.GET("/guests", guestCtrl.SearchGuests)
	auth.POST("/guests", guestCtrl.CreateGuest)
	auth.GET("/guests/:guest_id", guestCtrl.GetGuest)

	// BOOKINGS
	auth.GET("/bookings", bookingCtrl.GetBookings)
	auth.POST("/bookings", bookingCtrl.CreateBooking)
	auth.POST("/bookings/:booking_id/cancel", bookingCtrl.CancelBooking)

	// SESSIONS (lifecycle: open -> billing -> paid -> closed)
	auth.GET("/sessions", sessionCtrl.GetActiveSessions)
	auth.POST("/sessions", sessionCtrl.OpenSession)
	auth.GET("/sessions/:session_id", sessionCtrl.GetSession)
	auth.POST("/sessions/:session_id/bill-preview", sessionCtrl.BillPreview)
	auth.POST("/sessions/:session_id/close", sessionCtrl.CloseSession)

	// ORDERS (ledger dalam session)
	auth.POST("/sessions/:session_id/orders", orderCtrl.CreateOrder)
	auth.GET("/orders/:order_id", orderCtrl.GetOrder)
	auth.POST("/orders/:order_id/items", orderCtrl.AddItems)
	auth.PUT("/orders/:order_id/items", orderCtrl.EditOrder)
	auth.PATCH("/order-items/:item_id", orderCtrl.UpdateItemQuantity)
	auth.DELETE("/order-items/:item_id", orderCtrl.DeleteItem)
	auth.POST("/order-items/:item_id/served", orderCtrl.MarkItemServed)
	auth.GET("/dispatch-queue", orderCtrl.GetDispatchQueue)

	// INVOICES & PAYMENTS (money-moving, rate-limited + logged)
	money := auth.Group("/")
	money.Use(middlewares.PaymentRateLimiter(), middlewares.LogPaymentRequest())
	{
		money.POST("/sessions/:session_id/invoices", invoiceCtrl.GenerateInvoice)
		money.POST("/invoices/:invoice_id/payments", paymentCtrl.ProcessPayment)
		money.POST("/invoices/:invoice_id/void", invoiceCtrl.VoidInvoice)

		// SPLIT FLOWS
		money.POST("/sessions/:session_id/split/payment", splitCtrl.StartSplitPayment)
		money.POST("/sessions/:session_id/split/payment/pay", splitCtrl.RecordSplitPayment)
		money.POST("/sessions/:session_id/split/invoice", splitCtrl.StartSplitInvoice)
		money.POST("/sessions/:session_id/split/invoice/generate", splitCtrl.GenerateSplitInvoices)
		money.POST("/sessions/:session_id/split/invoice/pay", splitCtrl.PaySelected)
	}

	auth.GET("/invoices/:invoice_id", invoiceCtrl.GetInvoice)
	auth.GET("/invoices/:invoice_id/payments", paymentCtrl.GetInvoicePayments)

	// Split state (tanpa efek uang)
	auth.GET("/sessions/:session_id/split", splitCtrl.GetContext)
	auth.DELETE("/sessions/:session_id/split", splitCtrl.ResetContext)
	auth.PATCH("/sessions/:session_id/split/count", splitCtrl.ResizeSplit)
	auth.POST("/sessions/:session_id/split/guests", splitCtrl.AssignGuest)
	auth.POST("/sessions/:session_id/split/select", splitCtrl.SelectInvoice)
	auth.GET("/sessions/:session_id/split/selected", splitCtrl.GetSelectedInvoice)

	// PROMOS
	auth.POST("/promos/lookup", promoCtrl.LookupPromo)
	auth.GET("/promos", promoCtrl.GetAllPromos)
	auth.POST("/promos", promoCtrl.CreatePromo)
	auth.POST("/promos/:promo_id/deactivate", promoCtrl.DeactivatePromo)

	// Routes untuk Admin
	admin := auth.Group("/")
	admin.Use(middlewares.RequireRole("admin"))
	{
		admin.GET("/dashboard/stats", adminCtrl.GetDashboardStats)
		admin.GET("/reports/sales", adminCtrl.GetSalesReport)
		admin.GET("/reports/revenue-chart", adminCtrl.GetRevenueChart)
	}
	// PDF invoice boleh diakses kasir juga
	auth.GET("/invoices/:invoice_id/pdf", adminCtrl.ExportInvoicePDF)

	// WebSocket endpoint dengan middleware khusus
	wsGroup := r.Group("/ws")
	wsGroup.Use(middlewares.WebSocketAuthMiddleware())
	{
		wsGroup.GET("/console", controllers.ConsoleStreamHandler)
	}

	return r
}
