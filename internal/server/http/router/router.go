package router

import (
	"log/slog"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"

	"github.com/polkiloo/homecare/internal/config"
	"github.com/polkiloo/homecare/internal/server/http/handlers"
	"github.com/polkiloo/homecare/internal/server/http/middleware"
)

const unreadStreamPath = "/api/messages/unread/stream"

// Setup configures gin router with handlers and middleware.
func Setup(facade handlers.CareFacade, cfg *config.Config, logger *slog.Logger) (*gin.Engine, error) {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	limit, err := middleware.RateLimit(cfg.RateLimit)
	if err != nil {
		return nil, err
	}

	engine.Use(gin.Recovery())
	engine.Use(middleware.RequestLogger(logger))
	engine.Use(middleware.DecompressRequest())
	// buffered compression would hold back server-sent events
	engine.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{unreadStreamPath})))

	authHandler := handlers.NewAuthHandler(facade)
	orderHandler := handlers.NewOrderHandler(facade)
	catalogHandler := handlers.NewCatalogHandler(facade)
	paymentHandler := handlers.NewPaymentHandler(facade)
	messageHandler := handlers.NewMessageHandler(facade)
	adminHandler := handlers.NewAdminHandler(facade)
	healthHandler := handlers.NewHealthHandler(facade)

	engine.GET("/healthz", healthHandler.Check)

	api := engine.Group("/api")
	api.Use(limit)

	user := api.Group("/user")
	user.POST("/register", authHandler.Register)
	user.POST("/login", authHandler.Login)

	api.POST("/payments/webhook", paymentHandler.Webhook)

	private := api.Group("")
	private.Use(middleware.AuthRequired(facade))

	orders := private.Group("/orders")
	orders.GET("", orderHandler.List)
	orders.POST("", orderHandler.Book)
	orders.GET("/:id", orderHandler.Get)
	orders.POST("/:id/rate", orderHandler.Rate)
	orders.POST("/:id/cancel", orderHandler.Cancel)
	orders.POST("/:id/finish", orderHandler.Finish)

	private.GET("/medicines", catalogHandler.List)
	private.POST("/medicines", catalogHandler.Create)

	medicineOrders := private.Group("/medicine-orders/:id")
	medicineOrders.GET("/payment", paymentHandler.View)
	medicineOrders.POST("/payment", paymentHandler.Start)
	medicineOrders.POST("/skip", paymentHandler.Skip)

	payments := private.Group("/payments/:id")
	payments.GET("", paymentHandler.Session)
	payments.POST("/acknowledge", paymentHandler.Acknowledge)
	payments.POST("/finalize", paymentHandler.Finalize)

	messages := private.Group("/messages")
	messages.POST("", messageHandler.Send)
	messages.POST("/read", messageHandler.MarkRead)
	messages.GET("/unread", messageHandler.Unread)
	messages.GET("/unread/stream", messageHandler.Stream)

	admin := private.Group("/admin")
	admin.GET("/users", adminHandler.Users)
	admin.POST("/users/:id/approval", adminHandler.Review)
	admin.PATCH("/users/:id", adminHandler.Update)
	admin.GET("/orders", adminHandler.Orders)
	admin.GET("/orders/:id", adminHandler.Order)
	admin.GET("/orders/:id/evidence", adminHandler.Evidence)

	return engine, nil
}
