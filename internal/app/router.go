// internal/app/router.go
package app

import (
	billingHandler "billgate-service/internal/handlers/billing"
	notifyHandler "billgate-service/internal/handlers/notification"
	"billgate-service/internal/middleware"
	"billgate-service/internal/websocket"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Handlers struct {
	BillingHandler *billingHandler.BillingHandler
	NotifHandler   *notifyHandler.NotificationHandler
	Hub            *websocket.Hub
	AuthMiddleware *middleware.AuthMiddleware
}

func SetupRouter(r *gin.Engine, logger *zap.Logger, h *Handlers) {
	api := r.Group("/api/v1")

	// ==================== Health Check ====================
	api.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok", "version": "1.0.0"})
	})

	// ==================== Billing ====================
	billing := api.Group("/billing")
	billing.Use(h.AuthMiddleware.Auth())
	{
		billing.GET("/status", h.BillingHandler.Status)
		billing.GET("/payment-methods", h.BillingHandler.PaymentMethods)
		billing.POST("/subscribe", h.BillingHandler.Subscribe)
		billing.POST("/cancel", h.BillingHandler.Cancel)
		billing.POST("/payment/stripe", h.BillingHandler.ChargeStripe)
		billing.POST("/payment/paystack", h.BillingHandler.InitiatePaystack)
		billing.GET("/payment/paystack/callback", h.BillingHandler.PaystackCallback)
	}

	// ==================== Admin ====================
	admin := api.Group("/admin")
	admin.Use(h.AuthMiddleware.Auth(), h.AuthMiddleware.RequireAdmin())
	{
		admin.GET("/notifications", h.NotifHandler.GetLatestNotifications)
		admin.GET("/events", func(c *gin.Context) {
			h.Hub.Handle(c.Writer, c.Request)
		})
	}
}
