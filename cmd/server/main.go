package main

import (
	"context"
	"log"
	"time"

	"canteen_preorder/internal/auth"
	"canteen_preorder/internal/config"
	"canteen_preorder/internal/database"
	"canteen_preorder/internal/handlers"
	"canteen_preorder/internal/notifier"
	"canteen_preorder/internal/redis"
	"canteen_preorder/internal/repository"
	"canteen_preorder/internal/services"
	"canteen_preorder/pkg/gateway"

	"github.com/gin-gonic/gin"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize database
	db, err := database.Initialize(cfg.DatabaseURL)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	if err := database.SeedMenu(db); err != nil {
		log.Fatal("Failed to seed menu:", err)
	}

	// Initialize Redis
	redisClient, err := redis.Initialize(cfg.RedisURL)
	if err != nil {
		log.Fatal("Failed to connect to Redis:", err)
	}

	// Subscription registry plus the Redis bridge feeding it, so events
	// committed by any instance reach clients connected to this one.
	hub := notifier.NewHub()
	if err := redisClient.SubscribeOrderEvents(context.Background(), hub.Dispatch); err != nil {
		log.Fatal("Failed to subscribe to order events:", err)
	}

	// Initialize payment gateway client
	gatewayClient := gateway.NewClient(cfg.GatewayAPIURL, cfg.GatewayKeyID, cfg.GatewaySecret)

	// Initialize repositories
	orderRepo := repository.NewOrderRepository(db)
	menuRepo := repository.NewMenuRepository(db)
	analyticsRepo := repository.NewAnalyticsRepository(db)

	// Initialize services
	catalogService := services.NewCatalogService(menuRepo, redisClient, time.Duration(cfg.CatalogCacheTTL)*time.Second)
	autoComplete := services.NewAutoCompleteService(orderRepo, time.Duration(cfg.AutoCompleteMinutes)*time.Minute)
	orderService := services.NewOrderService(orderRepo, catalogService, redisClient, gatewayClient, autoComplete, cfg.PaymentRequired, time.Duration(cfg.PrepWindowMinutes)*time.Minute)
	autoComplete.SetCompleter(orderService)
	paymentService := services.NewPaymentService(orderService, cfg.GatewaySecret)
	analyticsService := services.NewAnalyticsService(analyticsRepo)

	// Rebuild auto-completion timers for orders already in ready status
	if err := autoComplete.RescheduleReadyOrders(); err != nil {
		log.Printf("Warning: Failed to reschedule ready orders: %v", err)
	}

	// Initialize handlers
	orderHandler := handlers.NewOrderHandler(orderService)
	paymentHandler := handlers.NewPaymentHandler(paymentService, orderService)
	menuHandler := handlers.NewMenuHandler(catalogService)
	analyticsHandler := handlers.NewAnalyticsHandler(analyticsService)
	eventsHandler := handlers.NewEventsHandler(hub)

	// Setup routes
	router := gin.Default()

	api := router.Group("/api")
	api.Use(auth.Middleware(cfg.JWTSecret))
	{
		api.GET("/menu", menuHandler.ListItems)
		api.GET("/menu/:id", menuHandler.GetItem)

		api.POST("/orders", orderHandler.PlaceOrder)
		api.GET("/orders/my", orderHandler.GetMyOrders)
		api.GET("/orders/:id", orderHandler.GetOrderDetails)
		api.POST("/orders/:id/cancel", orderHandler.CancelOrder)

		api.GET("/admin/orders", orderHandler.GetAdminOrders)
		api.PUT("/admin/orders/:id/status", orderHandler.UpdateStatus)

		api.POST("/payment/verify", paymentHandler.VerifyPayment)
		api.GET("/payment/:id/status", paymentHandler.GetPaymentStatus)

		api.GET("/analytics/dashboard", analyticsHandler.GetDashboard)
		api.GET("/analytics/realtime", analyticsHandler.GetRealtimeStats)

		api.GET("/events", eventsHandler.Stream)
	}

	// Start server
	log.Printf("Server starting on port %s", cfg.ServerPort)
	if err := router.Run(":" + cfg.ServerPort); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
