package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/matheuslopes2024/GastroCatalogo-sub001/internal/auth"
	"github.com/matheuslopes2024/GastroCatalogo-sub001/internal/chat"
	"github.com/matheuslopes2024/GastroCatalogo-sub001/internal/config"
	"github.com/matheuslopes2024/GastroCatalogo-sub001/internal/events"
	"github.com/matheuslopes2024/GastroCatalogo-sub001/internal/gateway"
	"github.com/matheuslopes2024/GastroCatalogo-sub001/internal/handlers"
	"github.com/matheuslopes2024/GastroCatalogo-sub001/internal/middleware"
	"github.com/matheuslopes2024/GastroCatalogo-sub001/internal/models"
	"github.com/matheuslopes2024/GastroCatalogo-sub001/internal/repository"
	"github.com/matheuslopes2024/GastroCatalogo-sub001/internal/services"
	"github.com/matheuslopes2024/GastroCatalogo-sub001/internal/workers"
)

// @title Gastro Compare API
// @version 1.0.0
// @description Multi-vendor marketplace for commercial kitchen equipment with supplier price comparison
// @license.name MIT
// @license.url https://opensource.org/licenses/MIT
// @host localhost:8080
// @BasePath /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the JWT token.

func main() {
	_ = godotenv.Load()

	cfg := config.Load()

	logger := logrus.New()
	if cfg.Environment == "production" {
		logger.SetFormatter(&logrus.JSONFormatter{})
		logger.SetLevel(logrus.InfoLevel)
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
		logger.SetLevel(logrus.DebugLevel)
	}

	db, err := config.InitDB(cfg)
	if err != nil {
		logger.WithError(err).Fatal("Failed to initialize database")
	}

	// Redis is optional; repositories degrade to uncached reads without it
	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		opt, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			logger.WithError(err).Warn("Invalid REDIS_URL, continuing without caching")
		} else {
			redisClient = redis.NewClient(opt)
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			if err := redisClient.Ping(ctx).Err(); err != nil {
				logger.WithError(err).Warn("Redis unreachable, continuing without caching")
				redisClient = nil
			} else {
				logger.Info("Connected to Redis")
			}
			cancel()
		}
	}

	// NATS is optional; without it product events and cart staleness
	// tracking are disabled
	var publisher *events.Publisher
	if cfg.NATSURL != "" {
		publisher, err = events.NewPublisher(cfg.NATSURL, logger)
		if err != nil {
			logger.WithError(err).Warn("NATS unreachable, continuing without events")
			publisher = nil
		} else {
			logger.Info("Connected to NATS")
		}
	}

	// Repositories
	usersRepo := repository.NewUsersRepository(db)
	suppliersRepo := repository.NewSuppliersRepository(db)
	productsRepo := repository.NewProductsRepository(db, redisClient)
	catalogRepo := repository.NewCatalogRepository(db, redisClient)
	cartsRepo := repository.NewCartsRepository(db)
	ordersRepo := repository.NewOrdersRepository(db)
	commissionRepo := repository.NewCommissionRepository(db)
	chatRepo := repository.NewChatRepository(db)
	reviewsRepo := repository.NewReviewsRepository(db)
	dashboardRepo := repository.NewDashboardRepository(db)

	// Payment gateways
	var gateways []gateway.PaymentGateway
	if cfg.StripeSecretKey != "" {
		stripeGW, err := gateway.NewStripeGateway(cfg.StripeSecretKey, cfg.StripeWebhookSecret)
		if err != nil {
			logger.WithError(err).Fatal("Failed to configure Stripe gateway")
		}
		gateways = append(gateways, stripeGW)
		logger.Info("Stripe gateway configured")
	}
	if cfg.RazorpayKeyID != "" {
		razorpayGW, err := gateway.NewRazorpayGateway(cfg.RazorpayKeyID, cfg.RazorpayKeySecret, cfg.RazorpayWebhookSecret)
		if err != nil {
			logger.WithError(err).Fatal("Failed to configure Razorpay gateway")
		}
		gateways = append(gateways, razorpayGW)
		logger.Info("Razorpay gateway configured")
	}
	registry := gateway.NewRegistry(gateways...)

	// Services
	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.JWTExpiryHours)
	authService := services.NewAuthService(usersRepo, suppliersRepo, tokens, logger)
	productService := services.NewProductService(productsRepo, catalogRepo, suppliersRepo, publisher, logger)
	comparisonService := services.NewComparisonService(productsRepo, catalogRepo, suppliersRepo, logger)
	commissionService := services.NewCommissionService(commissionRepo, cfg.DefaultCommissionRate, logger)
	cartService := services.NewCartService(cartsRepo, productsRepo, logger)
	orderService := services.NewOrderService(ordersRepo, cartsRepo, productsRepo, commissionService, commissionRepo, registry, publisher, logger)
	receiptService := services.NewReceiptService(ordersRepo, logger)
	chatService := services.NewChatService(chatRepo, suppliersRepo, usersRepo, publisher, logger)
	reviewService := services.NewReviewService(reviewsRepo, productsRepo, suppliersRepo, logger)
	dashboardService := services.NewDashboardService(dashboardRepo, productsRepo, commissionService, logger)
	exportService := services.NewExportService(productsRepo, ordersRepo, commissionRepo, logger)

	// Websocket hub for live chat
	hub := chat.NewHub(chatService, logger)
	chatService.SetBroadcaster(hub)

	// Cart staleness subscriber
	if publisher != nil {
		subscriber := events.NewProductSubscriber(publisher.JetStream(), cartsRepo, logger)
		if err := subscriber.Start(context.Background()); err != nil {
			logger.WithError(err).Warn("Failed to start product event subscriber")
		} else {
			logger.Info("Product event subscriber started")
		}
	}

	// Background workers
	cartWorker := workers.NewCartLifecycleWorker(cartsRepo, publisher, cfg.CartAbandonMinutes, cfg.CartExpireDays, logger)
	cartWorker.Start()

	// Handlers
	healthHandler := handlers.NewHealthHandler(db, redisClient)
	authHandler := handlers.NewAuthHandler(authService)
	productsHandler := handlers.NewProductsHandler(productService)
	catalogHandler := handlers.NewCatalogHandler(catalogRepo, comparisonService)
	suppliersHandler := handlers.NewSuppliersHandler(suppliersRepo)
	cartHandler := handlers.NewCartHandler(cartService)
	ordersHandler := handlers.NewOrdersHandler(orderService, receiptService)
	webhookHandler := handlers.NewWebhookHandler(orderService, registry, logger)
	commissionHandler := handlers.NewCommissionHandler(commissionService)
	dashboardHandler := handlers.NewDashboardHandler(dashboardService)
	chatHandler := handlers.NewChatHandler(chatService, hub)
	reviewsHandler := handlers.NewReviewsHandler(reviewService)
	exportHandler := handlers.NewExportHandler(exportService, ordersHandler)

	// Router
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORS(cfg.CORSOrigins))

	router.GET("/health", healthHandler.HealthCheck)
	router.GET("/ready", healthHandler.ReadinessCheck)
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	requireAuth := middleware.RequireAuth(tokens, usersRepo)
	adminOnly := middleware.RequireRole(models.RoleAdmin)
	supplierOrAdmin := middleware.RequireRole(models.RoleSupplier, models.RoleAdmin)
	customerOnly := middleware.RequireRole(models.RoleCustomer)

	v1 := router.Group("/api/v1")
	{
		// Auth
		authRoutes := v1.Group("/auth")
		{
			authRoutes.POST("/register", authHandler.Register)
			authRoutes.POST("/register/supplier", authHandler.RegisterSupplier)
			authRoutes.POST("/login", authHandler.Login)
			authRoutes.GET("/me", requireAuth, authHandler.Profile)
		}

		// Public catalog
		v1.GET("/products", productsHandler.ListProducts)
		v1.GET("/products/suggestions", productsHandler.SearchSuggestions)
		v1.GET("/products/slug/:slug", productsHandler.GetProductBySlug)
		v1.GET("/products/:id", productsHandler.GetProduct)
		v1.POST("/products/stock/check", productsHandler.CheckStock)

		v1.GET("/categories", catalogHandler.GetCategories)
		v1.GET("/categories/:id", catalogHandler.GetCategory)

		v1.GET("/groups", catalogHandler.ListGroups)
		v1.GET("/groups/:id", catalogHandler.GetGroup)
		v1.GET("/groups/:id/compare", catalogHandler.CompareGroup)
		v1.GET("/groups/slug/:slug/compare", catalogHandler.CompareGroupBySlug)

		v1.GET("/suppliers", suppliersHandler.ListSuppliers)
		v1.GET("/suppliers/slug/:slug", suppliersHandler.GetSupplierBySlug)

		v1.GET("/reviews", reviewsHandler.ListReviews)

		// Payment provider callbacks, verified by signature
		webhooks := v1.Group("/webhooks")
		{
			webhooks.POST("/stripe", webhookHandler.HandleStripe)
			webhooks.POST("/razorpay", webhookHandler.HandleRazorpay)
		}

		// Supplier catalog management
		products := v1.Group("/products", requireAuth, supplierOrAdmin)
		{
			products.POST("", productsHandler.CreateProduct)
			products.PUT("/:id", productsHandler.UpdateProduct)
			products.PATCH("/:id/status", productsHandler.UpdateStatus)
			products.POST("/bulk/status", productsHandler.BulkUpdateStatus)
			products.DELETE("/:id", productsHandler.DeleteProduct)
			products.POST("/:id/stock", productsHandler.AdjustStock)
			products.GET("/stats", productsHandler.GetStats)
		}

		// Category and group administration
		catalogAdmin := v1.Group("", requireAuth, adminOnly)
		{
			catalogAdmin.POST("/categories", catalogHandler.CreateCategory)
			catalogAdmin.PUT("/categories/:id", catalogHandler.UpdateCategory)
			catalogAdmin.DELETE("/categories/:id", catalogHandler.DeleteCategory)

			catalogAdmin.POST("/groups", catalogHandler.CreateGroup)
			catalogAdmin.PUT("/groups/:id", catalogHandler.UpdateGroup)
			catalogAdmin.DELETE("/groups/:id", catalogHandler.DeleteGroup)
			catalogAdmin.PUT("/groups/:id/products/:productId", catalogHandler.AssignProduct)
			catalogAdmin.DELETE("/groups/products/:productId", catalogHandler.RemoveProduct)

			catalogAdmin.GET("/suppliers/stats", suppliersHandler.GetStatusCounts)
			catalogAdmin.PATCH("/suppliers/:id/status", suppliersHandler.UpdateStatus)
		}

		v1.GET("/suppliers/:id", suppliersHandler.GetSupplier)
		v1.PUT("/suppliers/:id", requireAuth, supplierOrAdmin, suppliersHandler.UpdateSupplier)

		// Cart
		cart := v1.Group("/cart", requireAuth, customerOnly)
		{
			cart.GET("", cartHandler.GetCart)
			cart.DELETE("", cartHandler.ClearCart)
			cart.POST("/items", cartHandler.AddItem)
			cart.PUT("/items/:itemId", cartHandler.UpdateItem)
			cart.DELETE("/items/:itemId", cartHandler.RemoveItem)
			cart.POST("/refresh", cartHandler.RefreshStaleItems)
		}

		// Orders
		orders := v1.Group("/orders", requireAuth)
		{
			orders.POST("/checkout", customerOnly, ordersHandler.Checkout)
			orders.GET("", ordersHandler.ListOrders)
			orders.GET("/:id", ordersHandler.GetOrder)
			orders.GET("/:id/receipt", ordersHandler.DownloadReceipt)
			orders.POST("/:id/cancel", ordersHandler.CancelOrder)
			orders.PATCH("/:id/status", supplierOrAdmin, ordersHandler.UpdateStatus)
			orders.POST("/:id/refund", adminOnly, ordersHandler.Refund)
		}

		// Commission
		commission := v1.Group("/commission", requireAuth)
		{
			commission.GET("/records", supplierOrAdmin, commissionHandler.ListRecords)

			settings := commission.Group("", adminOnly)
			{
				settings.POST("/settings", commissionHandler.CreateSetting)
				settings.GET("/settings", commissionHandler.ListSettings)
				settings.PUT("/settings/:id", commissionHandler.UpdateSetting)
				settings.DELETE("/settings/:id", commissionHandler.DeleteSetting)
				settings.GET("/resolve", commissionHandler.ResolveRate)
			}
		}

		// Dashboards
		dashboard := v1.Group("/dashboard", requireAuth)
		{
			dashboard.GET("/supplier", supplierOrAdmin, dashboardHandler.SupplierDashboard)
			dashboard.GET("/admin", adminOnly, dashboardHandler.AdminDashboard)
		}

		// Chat
		chatRoutes := v1.Group("/chat", requireAuth)
		{
			chatRoutes.POST("/conversations", customerOnly, chatHandler.StartConversation)
			chatRoutes.GET("/conversations", chatHandler.ListConversations)
			chatRoutes.POST("/conversations/:id/messages", chatHandler.SendMessage)
			chatRoutes.GET("/conversations/:id/messages", chatHandler.GetMessages)
			chatRoutes.POST("/conversations/:id/close", chatHandler.CloseConversation)
			chatRoutes.GET("/conversations/:id/ws", chatHandler.Connect)
		}

		// Reviews
		v1.POST("/reviews", requireAuth, customerOnly, reviewsHandler.SubmitReview)
		v1.PATCH("/reviews/:id/moderate", requireAuth, adminOnly, reviewsHandler.ModerateReview)

		// Exports
		exports := v1.Group("/exports", requireAuth, supplierOrAdmin)
		{
			exports.GET("/products", exportHandler.ExportProducts)
			exports.GET("/orders", exportHandler.ExportOrders)
			exports.GET("/commission", exportHandler.ExportCommission)
		}
	}

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		logger.WithField("port", cfg.Port).Info("Starting gastro-compare-api")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.WithError(err).Fatal("Server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down...")

	cartWorker.Stop()
	if publisher != nil {
		publisher.Close()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.WithError(err).Error("Forced shutdown")
	}
	logger.Info("Server stopped")
}
