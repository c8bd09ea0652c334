package httpt

import (
	"meetpay/internal/service"
	"meetpay/pkg/logger"
	"meetpay/pkg/metric"

	"github.com/gin-gonic/gin"
)

type PaymentHandler struct {
	svc       *service.PaymentService
	log       logger.Logger
	metrics   metric.HTTP
	router    *gin.Engine
	jwtSecret []byte
}

func NewPaymentHandler(
	svc *service.PaymentService,
	log logger.Logger,
	metrics metric.HTTP,
	jwtSecret []byte,
) *PaymentHandler {
	h := &PaymentHandler{
		svc:       svc,
		log:       log,
		metrics:   metrics,
		jwtSecret: jwtSecret,
	}

	router := gin.New()

	router.Use(h.requestIDMiddleware())
	router.Use(h.loggingMiddleware())
	router.Use(gin.Recovery())

	h.router = router

	h.setupRoutes()

	return h
}

func (h *PaymentHandler) Engine() *gin.Engine {
	return h.router
}
