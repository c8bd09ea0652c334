package httpt

import (
	"context"
	"net/http"
	"time"

	"meetpay/internal/service"
	"meetpay/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	_defaultContextTimeout = 500 * time.Millisecond
	_createContextTimeout  = 2 * time.Second

	_idempotencyKeyHeader = "Idempotency-Key"
)

func (h *PaymentHandler) createPaymentHandler(c *gin.Context) {
	const op = "transport.createPaymentHandler"

	log := h.log.Ctx(c.Request.Context())

	var req createPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.LogAttrs(c.Request.Context(), logger.WarnLevel, "malformed payment request",
			logger.String("op", op),
			logger.Any("error", err),
			logger.String("remote_addr", c.ClientIP()),
		)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	payerID, _ := callerIdentity(c)

	input := service.CreatePaymentInput{
		PayerID:           payerID,
		GrossAmount:       req.GrossAmount,
		ClassID:           req.ClassID,
		MeetupID:          req.MeetupID,
		EnrollmentID:      req.EnrollmentID,
		TicketID:          req.TicketID,
		PaymentMethod:     req.PaymentMethod,
		PaymentProvider:   req.PaymentProvider,
		ProviderPaymentID: req.ProviderPaymentID,
		CardLast4:         req.CardLast4,
	}
	if key := c.GetHeader(_idempotencyKeyHeader); key != "" {
		input.IdempotencyKey = &key
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), _createContextTimeout)
	defer cancel()

	receipt, err := h.svc.CreatePayment(ctx, input)
	if err != nil {
		h.handleServiceError(c, err, op)
		return
	}

	log.LogAttrs(ctx, logger.InfoLevel, "payment recorded",
		logger.String("payment_number", receipt.Payment.PaymentNumber),
		logger.String("payout_number", receipt.Payout.PayoutNumber),
	)

	c.JSON(http.StatusCreated, receipt)
}

func (h *PaymentHandler) getPaymentHandler(c *gin.Context) {
	const op = "transport.getPaymentHandler"

	paymentIDStr := c.Param("payment_id")

	paymentID, err := uuid.Parse(paymentIDStr)
	if err != nil {
		h.handleInvalidUUID(c, op, paymentIDStr)
		return
	}

	requesterID, requesterRole := callerIdentity(c)

	ctx, cancel := context.WithTimeout(c.Request.Context(), _defaultContextTimeout)
	defer cancel()

	receipt, err := h.svc.GetPayment(ctx, paymentID, requesterID, requesterRole)
	if err != nil {
		h.handleServiceError(c, err, op)
		return
	}

	c.JSON(http.StatusOK, receipt)
}

func (h *PaymentHandler) listPaymentsHandler(c *gin.Context) {
	const op = "transport.listPaymentsHandler"

	payerID, _ := callerIdentity(c)

	ctx, cancel := context.WithTimeout(c.Request.Context(), _defaultContextTimeout)
	defer cancel()

	receipts, err := h.svc.ListUserPayments(ctx, payerID)
	if err != nil {
		h.handleServiceError(c, err, op)
		return
	}

	c.JSON(http.StatusOK, gin.H{"payments": receipts})
}

func (h *PaymentHandler) platformRevenueHandler(c *gin.Context) {
	const op = "transport.platformRevenueHandler"

	startDate, ok := h.parseDateQuery(c, "start_date")
	if !ok {
		return
	}
	endDate, ok := h.parseDateQuery(c, "end_date")
	if !ok {
		return
	}

	_, requesterRole := callerIdentity(c)

	ctx, cancel := context.WithTimeout(c.Request.Context(), _defaultContextTimeout)
	defer cancel()

	report, err := h.svc.PlatformRevenue(ctx, requesterRole, startDate, endDate)
	if err != nil {
		h.handleServiceError(c, err, op)
		return
	}

	c.JSON(http.StatusOK, report)
}

// parseDateQuery accepts RFC3339 timestamps or plain dates.
func (h *PaymentHandler) parseDateQuery(c *gin.Context, name string) (*time.Time, bool) {
	raw := c.Query(name)
	if raw == "" {
		return nil, true
	}

	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return &t, true
	}
	if t, err := time.Parse("2006-01-02", raw); err == nil {
		return &t, true
	}

	h.log.Ctx(c.Request.Context()).LogAttrs(
		c.Request.Context(), logger.WarnLevel, "invalid date parameter",
		logger.String("param", name),
		logger.String("value", raw),
	)
	c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid " + name + " parameter"})
	return nil, false
}
