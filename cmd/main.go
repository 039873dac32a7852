package main

import (
	"context"
	"log"
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

	"storefront-service/internal/clients"
	"storefront-service/internal/config"
	"storefront-service/internal/events"
	"storefront-service/internal/handlers"
	"storefront-service/internal/middleware"
	"storefront-service/internal/repository"
	"storefront-service/internal/services"

	gosharedmw "github.com/Tesseract-Nexus/go-shared/middleware"
	"github.com/Tesseract-Nexus/go-shared/rbac"
	"github.com/Tesseract-Nexus/go-shared/secrets"
	"github.com/Tesseract-Nexus/go-shared/tracing"
)

// @title Storefront API
// @version 1.0.0
// @description Furniture storefront and back-office service: catalog, bulk import, checkout and order management
// @termsOfService http://swagger.io/terms/

// @contact.name Storefront API Support
// @contact.url http://www.example.com/support
// @contact.email support@example.com

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8095
// @BasePath /api/v1

// @securityDefinitions.bearer BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	// Initialize configuration
	cfg := config.Load()

	// Initialize database
	db, err := config.InitDB(cfg)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	// Initialize logger
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	if cfg.Environment == "production" {
		logger.SetLevel(logrus.InfoLevel)
	} else {
		logger.SetLevel(logrus.DebugLevel)
	}

	// Initialize Redis client
	redisOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		log.Printf("WARNING: Failed to parse Redis URL: %v (continuing without Redis)", err)
		redisOpts = &redis.Options{
			Addr: "localhost:6379",
		}
	}
	// Set Redis password from GCP Secret Manager
	redisOpts.Password = secrets.GetRedisPassword()
	redisClient := redis.NewClient(redisOpts)

	// Test Redis connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Printf("WARNING: Failed to connect to Redis: %v (caching will be disabled)", err)
	} else {
		log.Println("✓ Redis connected successfully")
	}
	cancel()

	// Initialize repositories
	productRepo := repository.NewProductRepository(db, redisClient)
	categoryRepo := repository.NewCategoryRepository(db, redisClient)
	orderRepo := repository.NewOrderRepository(db, redisClient)
	activityRepo := repository.NewActivityLogRepository(db)

	// Initialize event publisher for the audit trail only if NATS_URL is set
	var eventsPublisher *events.Publisher
	if cfg.NATSURL != "" {
		eventsPublisher, err = events.NewPublisher(cfg.NATSURL, logger)
		if err != nil {
			log.Printf("WARNING: Failed to initialize events publisher: %v (continuing without event publishing)", err)
		} else {
			log.Println("✓ Events publisher initialized (NATS connected)")
		}
	} else {
		log.Println("NATS_URL not set, skipping event publishing initialization")
	}
	defer func() {
		if eventsPublisher != nil {
			eventsPublisher.Close()
		}
	}()

	// Initialize clients
	notificationClient := clients.NewNotificationClient(cfg.NotificationServiceURL)
	documentClient := clients.NewDocumentClient(cfg.DocumentServiceURL)
	paymentClient := clients.NewPaymentClient(cfg.PaymentGatewayURL, cfg.PaymentWebhookSecret)

	// Initialize services
	importService := services.NewImportService(productRepo, categoryRepo, activityRepo, eventsPublisher, logger)
	orderService := services.NewOrderService(orderRepo, productRepo, activityRepo, notificationClient, paymentClient, cfg, logger)
	receiptService := services.NewReceiptService(documentClient)

	// Initialize handlers
	productsHandler := handlers.NewProductsHandler(productRepo, categoryRepo, eventsPublisher)
	categoriesHandler := handlers.NewCategoriesHandler(categoryRepo)
	importHandler := handlers.NewImportHandler(importService)
	ordersHandler := handlers.NewOrdersHandler(orderService, receiptService, cfg)
	checkoutHandler := handlers.NewCheckoutHandler(orderService)
	activityHandler := handlers.NewActivityHandler(activityRepo)

	// Initialize OpenTelemetry tracing
	var tracerProvider *tracing.TracerProvider
	if cfg.Environment == "production" {
		tracerProvider, err = tracing.InitTracer(tracing.ProductionConfig("storefront-service"))
	} else {
		tracerProvider, err = tracing.InitTracer(tracing.DefaultConfig("storefront-service"))
	}
	if err != nil {
		log.Printf("WARNING: Failed to initialize tracing: %v (continuing without tracing)", err)
	} else {
		log.Println("✓ OpenTelemetry tracing initialized")
	}

	// Initialize Prometheus metrics
	metrics := gosharedmw.InitGlobalMetrics("tesseract", "storefront_service")
	log.Println("✓ Prometheus metrics initialized")

	// Initialize RBAC middleware
	rbacMw := rbac.NewMiddlewareWithURL(cfg.StaffServiceURL, nil)
	log.Println("✓ RBAC middleware initialized")

	// Initialize Gin router
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())

	// Add observability middleware (metrics + tracing)
	router.Use(metrics.Middleware())
	router.Use(tracing.GinMiddleware("storefront-service"))
	router.Use(gosharedmw.CompressionMiddleware())

	// Add CORS middleware
	router.Use(middleware.CORS())

	// Health check endpoints (no auth required)
	router.GET("/health", handlers.HealthCheck)
	router.GET("/ready", handlers.ReadinessCheck)
	router.GET("/metrics", gosharedmw.Handler())

	// Protected admin API routes
	api := router.Group("/api/v1")

	// Initialize Istio auth middleware for Keycloak JWT validation
	// During migration, AllowLegacyHeaders enables fallback to X-* headers from auth-bff
	istioAuthLogger := logrus.NewEntry(logger).WithField("component", "istio_auth")
	istioAuth := gosharedmw.IstioAuth(gosharedmw.IstioAuthConfig{
		RequireAuth:        true,
		AllowLegacyHeaders: true,
		Logger:             istioAuthLogger,
	})

	// In development: use DevelopmentAuthMiddleware for local testing
	// In production: use IstioAuth which reads x-jwt-claim-* headers from Istio
	if cfg.Environment == "development" {
		api.Use(middleware.DevelopmentAuthMiddleware())
		api.Use(middleware.TenantMiddleware())
	} else {
		api.Use(istioAuth)
		api.Use(middleware.TenantMiddleware())
	}

	v1 := api.Group("")
	{
		products := v1.Group("/products")
		{
			products.GET("", rbacMw.RequirePermission(rbac.PermissionProductsRead), productsHandler.GetProducts)
			products.GET("/:id", rbacMw.RequirePermission(rbac.PermissionProductsRead), productsHandler.GetProduct)
			products.POST("", rbacMw.RequirePermission(rbac.PermissionProductsCreate), productsHandler.CreateProduct)
			products.PUT("/:id", rbacMw.RequirePermission(rbac.PermissionProductsUpdate), productsHandler.UpdateProduct)
			products.DELETE("/:id", rbacMw.RequirePermission(rbac.PermissionProductsDelete), productsHandler.DeleteProduct)

			// Spreadsheet import flow
			products.GET("/import/template", rbacMw.RequirePermission(rbac.PermissionProductsImport), importHandler.GetImportTemplate)
			products.POST("/import/upload", rbacMw.RequirePermission(rbac.PermissionProductsImport), importHandler.UploadFile)
			products.POST("/import/preview", rbacMw.RequirePermission(rbac.PermissionProductsImport), importHandler.PreviewRows)
			products.POST("/import", rbacMw.RequirePermission(rbac.PermissionProductsImport), importHandler.CommitImport)
		}

		categories := v1.Group("/categories")
		{
			categories.GET("", rbacMw.RequirePermission(rbac.PermissionCategoriesRead), categoriesHandler.GetCategories)
			categories.GET("/:id", rbacMw.RequirePermission(rbac.PermissionCategoriesRead), categoriesHandler.GetCategory)
			categories.POST("", rbacMw.RequirePermission(rbac.PermissionCategoriesCreate), categoriesHandler.CreateCategory)
			categories.PUT("/:id", rbacMw.RequirePermission(rbac.PermissionCategoriesUpdate), categoriesHandler.UpdateCategory)
			categories.PUT("/reorder", rbacMw.RequirePermission(rbac.PermissionCategoriesUpdate), categoriesHandler.ReorderCategories)
			categories.DELETE("/:id", rbacMw.RequirePermission(rbac.PermissionCategoriesDelete), categoriesHandler.DeleteCategory)
		}

		orders := v1.Group("/orders")
		{
			orders.GET("", rbacMw.RequirePermission(rbac.PermissionOrdersRead), ordersHandler.GetOrders)
			orders.GET("/:id", rbacMw.RequirePermission(rbac.PermissionOrdersRead), ordersHandler.GetOrder)
			orders.GET("/:id/next-statuses", rbacMw.RequirePermission(rbac.PermissionOrdersRead), ordersHandler.GetNextStatuses)
			orders.GET("/:id/receipt", rbacMw.RequirePermission(rbac.PermissionOrdersRead), ordersHandler.DownloadReceipt)
			orders.PUT("/:id/status", rbacMw.RequirePermission(rbac.PermissionOrdersUpdate), ordersHandler.UpdateOrderStatus)
			orders.POST("/:id/cancel", rbacMw.RequirePermission(rbac.PermissionOrdersCancel), ordersHandler.CancelOrder)
		}

		v1.GET("/activity-logs", rbacMw.RequirePermission(rbac.PermissionProductsRead), activityHandler.GetActivityLogs)
	}

	// =============================================================================
	// PUBLIC STOREFRONT ENDPOINTS (no auth required, only tenant context)
	// =============================================================================
	storefront := router.Group("/api/v1/storefront")
	storefront.Use(middleware.TenantMiddleware())
	{
		storefront.GET("/products", productsHandler.GetProducts)
		storefront.GET("/products/best-sellers", productsHandler.GetWeeklyBestSellers)
		storefront.GET("/products/:slug", productsHandler.GetProductBySlug)
		storefront.GET("/categories", categoriesHandler.GetActiveCategories)

		storefront.POST("/checkout", checkoutHandler.Checkout)
		storefront.POST("/orders/:id/payment", checkoutHandler.InitiatePayment)
		storefront.GET("/orders/:orderNumber", checkoutHandler.GetOrderByNumber)
	}

	// Payment gateway webhook (signature-verified, no user auth)
	webhook := router.Group("/api/v1/webhooks")
	webhook.Use(middleware.TenantMiddleware())
	{
		webhook.POST("/payment", checkoutHandler.PaymentWebhook)
	}

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Graceful shutdown handling
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Printf("Storefront service starting on port %s", cfg.Port)
		if err := router.Run(":" + cfg.Port); err != nil {
			log.Fatal("Failed to start server:", err)
		}
	}()

	// Wait for interrupt signal
	<-quit
	log.Println("Shutting down storefront-service...")

	// Shutdown tracer provider
	if tracerProvider != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tracerProvider.Shutdown(ctx); err != nil {
			log.Printf("Error shutting down tracer provider: %v", err)
		} else {
			log.Println("✓ Tracer provider shut down")
		}
	}

	log.Println("Storefront service stopped")
}
