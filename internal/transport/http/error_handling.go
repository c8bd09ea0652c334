package httpt

import (
	"context"
	"errors"
	"net/http"

	"meetpay/internal/entity"
	"meetpay/pkg/logger"

	"github.com/gin-gonic/gin"
)

func (h *PaymentHandler) handleServiceError(c *gin.Context, err error, op string) {
	log := h.log.Ctx(c.Request.Context())

	log.LogAttrs(c.Request.Context(), logger.ErrorLevel, op+" failed",
		logger.Any("error", err),
		logger.String("remote_addr", c.ClientIP()),
		logger.String("user_agent", c.Request.UserAgent()),
	)

	switch {
	case errors.Is(err, entity.ErrInvalidAmount):
		c.JSON(
			http.StatusBadRequest,
			gin.H{"error": "Invalid payment amount. Must be positive with at most two decimal places."},
		)
	case errors.Is(err, entity.ErrMissingTarget):
		c.JSON(
			http.StatusBadRequest,
			gin.H{"error": "Payment must reference a class or a meetup"},
		)
	case errors.Is(err, entity.ErrAmbiguousTarget):
		c.JSON(
			http.StatusBadRequest,
			gin.H{"error": "Payment cannot reference both a class and a meetup"},
		)
	case errors.Is(err, entity.ErrInvalidData):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid payment data"})
	case errors.Is(err, entity.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
	case errors.Is(err, entity.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "Access denied"})
	case errors.Is(err, entity.ErrDataNotFound):
		log.LogAttrs(c.Request.Context(), logger.WarnLevel, "payment not found",
			logger.String("payment_id", c.Param("payment_id")),
			logger.String("client_ip", c.ClientIP()),
		)
		c.JSON(http.StatusNotFound, gin.H{"error": "Payment not found"})
	case errors.Is(err, entity.ErrConflictingData):
		c.JSON(http.StatusConflict, gin.H{"error": "Payment already recorded"})
	case errors.Is(err, context.DeadlineExceeded):
		log.LogAttrs(c.Request.Context(), logger.WarnLevel, "request timeout",
			logger.String("path", c.Request.URL.Path),
			logger.String("client_ip", c.ClientIP()),
		)
		c.JSON(http.StatusGatewayTimeout, gin.H{"error": "Request timed out"})
	default:
		log.LogAttrs(c.Request.Context(), logger.ErrorLevel, "internal server error",
			logger.Any("error", err),
			logger.String("path", c.Request.URL.Path),
			logger.String("client_ip", c.ClientIP()),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal service error"})
	}
}

func (h *PaymentHandler) handleInvalidUUID(c *gin.Context, op, value string) {
	log := h.log.Ctx(c.Request.Context())

	log.LogAttrs(c.Request.Context(), logger.WarnLevel, "invalid payment ID format",
		logger.String("op", op),
		logger.String("value", value),
		logger.String("remote_addr", c.ClientIP()),
	)

	c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid payment ID format"})
}
