package httpt

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (h *PaymentHandler) setupRoutes() {
	h.router.GET("/health", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	api := h.router.Group("/api", h.authMiddleware())

	payments := api.Group("/payments")
	{
		payments.POST("", h.createPaymentHandler)
		payments.GET("", h.listPaymentsHandler)
		payments.GET("/revenue", h.platformRevenueHandler)
		payments.GET("/:payment_id", h.getPaymentHandler)
	}
}
