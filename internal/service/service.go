package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"meetpay/internal/entity"
	"meetpay/internal/pricing"
	"meetpay/pkg/cache"
	"meetpay/pkg/logger"
	"meetpay/pkg/storage/postgres"
	"meetpay/pkg/storage/postgres/transaction"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

const (
	_defaultContextTimeout = 500 * time.Millisecond
	_slowOperation         = 200 * time.Millisecond

	_defaultPaymentMethod   = "CARD"
	_defaultPaymentProvider = "STRIPE"
)

//go:generate mockgen -source=service.go -destination=mock/service.go -package=mock_service

type (
	PaymentRepository interface {
		Create(
			ctx context.Context,
			queryExecuter postgres.QueryExecuter,
			payment *entity.Payment,
		) (*entity.Payment, error)
		GetByID(ctx context.Context, paymentID uuid.UUID) (*entity.Payment, error)
		GetByIdempotencyKey(
			ctx context.Context,
			userID uuid.UUID,
			key string,
		) (*entity.Payment, error)
		ListByUser(ctx context.Context, userID uuid.UUID) ([]*entity.Payment, error)
		AggregateRevenue(
			ctx context.Context,
			startDate, endDate *time.Time,
		) (*entity.RevenueReport, error)
	}

	PayoutRepository interface {
		Create(
			ctx context.Context,
			queryExecuter postgres.QueryExecuter,
			payout *entity.Payout,
		) (*entity.Payout, error)
		GetByPaymentID(ctx context.Context, paymentID uuid.UUID) (*entity.Payout, error)
	}

	CatalogRepository interface {
		GetClass(ctx context.Context, classID uuid.UUID) (*entity.Class, error)
		GetMeetup(ctx context.Context, meetupID uuid.UUID) (*entity.Meetup, error)
	}

	PaymentService struct {
		paymentRepo PaymentRepository
		payoutRepo  PayoutRepository
		catalogRepo CatalogRepository
		txManager   transaction.Manager
		calculator  *pricing.Calculator
		paymentRefs *pricing.ReferenceGenerator
		payoutRefs  *pricing.ReferenceGenerator
		logger      logger.Logger
		cache       cache.Cache[uuid.UUID, *entity.Receipt]
		cacheTTL    time.Duration

		currency     string
		payoutMethod string
	}
)

// CreatePaymentInput carries everything needed to record a charge. Exactly
// one of ClassID or MeetupID must be set. IdempotencyKey, when supplied,
// makes retried submissions return the original receipt instead of creating
// a duplicate.
type CreatePaymentInput struct {
	PayerID           uuid.UUID
	GrossAmount       decimal.Decimal
	ClassID           *uuid.UUID
	MeetupID          *uuid.UUID
	EnrollmentID      *uuid.UUID
	TicketID          *uuid.UUID
	PaymentMethod     string
	PaymentProvider   string
	ProviderPaymentID *string
	CardLast4         *string
	IdempotencyKey    *string
}

type recipient struct {
	recipientType entity.RecipientType
	recipientID   uuid.UUID
}

func NewPaymentService(
	paymentRepo PaymentRepository,
	payoutRepo PayoutRepository,
	catalogRepo CatalogRepository,
	txManager transaction.Manager,
	calculator *pricing.Calculator,
	paymentRefs *pricing.ReferenceGenerator,
	payoutRefs *pricing.ReferenceGenerator,
	log logger.Logger,
	receiptCache cache.Cache[uuid.UUID, *entity.Receipt],
	cacheTTL time.Duration,
	currency string,
	payoutMethod string,
) *PaymentService {
	receiptCache.SetOnEvicted(func(key uuid.UUID, value *entity.Receipt) {
		log.Infow("cache eviction",
			"key", key.String(),
			"type", fmt.Sprintf("%T", value),
		)
	})

	return &PaymentService{
		paymentRepo:  paymentRepo,
		payoutRepo:   payoutRepo,
		catalogRepo:  catalogRepo,
		txManager:    txManager,
		calculator:   calculator,
		paymentRefs:  paymentRefs,
		payoutRefs:   payoutRefs,
		logger:       log,
		cache:        receiptCache,
		cacheTTL:     cacheTTL,
		currency:     currency,
		payoutMethod: payoutMethod,
	}
}

// CreatePayment charges the payer for a class or meetup and records the
// resulting payout in the same transaction. The payment is written COMPLETED
// with paid_at set; the payout starts PENDING and is settled by an external
// payout processor.
func (ps *PaymentService) CreatePayment(
	ctx context.Context,
	in CreatePaymentInput,
) (*entity.Receipt, error) {
	const op = "service.CreatePayment"
	log := ps.logger.Ctx(ctx)

	if in.PayerID == uuid.Nil {
		return nil, fmt.Errorf("%s: %w", op, entity.ErrUnauthorized)
	}

	breakdown, err := ps.calculator.Breakdown(in.GrossAmount)
	if err != nil {
		return nil, fmt.Errorf("%s: compute breakdown: %w", op, err)
	}

	if err = validateTarget(in); err != nil {
		return nil, fmt.Errorf("%s: validate target: %w", op, err)
	}

	log.LogAttrs(ctx, logger.InfoLevel, "create payment started",
		logger.String("op", op),
		logger.String("payer_id", in.PayerID.String()),
		logger.String("gross_amount", in.GrossAmount.String()),
	)

	startTime := time.Now()
	defer func() {
		duration := time.Since(startTime)
		if duration > _slowOperation {
			log.LogAttrs(ctx, logger.WarnLevel, "slow service operation",
				logger.String("op", op),
				logger.String("payer_id", in.PayerID.String()),
				logger.String("duration", duration.String()),
			)
		}
	}()

	if in.IdempotencyKey != nil {
		replayed, replayErr := ps.replayByIdempotencyKey(ctx, in.PayerID, *in.IdempotencyKey)
		if replayErr != nil {
			return nil, fmt.Errorf("%s: idempotency check: %w", op, replayErr)
		}
		if replayed != nil {
			log.LogAttrs(ctx, logger.InfoLevel, "idempotent replay, returning original receipt",
				logger.String("op", op),
				logger.String("payment_number", replayed.Payment.PaymentNumber),
			)
			return replayed, nil
		}
	}

	rcpt, err := ps.resolveRecipient(ctx, in)
	if err != nil {
		log.LogAttrs(ctx, logger.ErrorLevel, "recipient resolution failed",
			logger.String("op", op),
			logger.Any("error", err),
		)
		return nil, fmt.Errorf("%s: resolve recipient: %w", op, err)
	}

	receipt, err := ps.createReceiptWithTransaction(ctx, in, breakdown, rcpt)
	if err != nil {
		// A concurrent retry may have won the race on the idempotency index.
		if errors.Is(err, entity.ErrConflictingData) && in.IdempotencyKey != nil {
			replayed, replayErr := ps.replayByIdempotencyKey(ctx, in.PayerID, *in.IdempotencyKey)
			if replayErr == nil && replayed != nil {
				return replayed, nil
			}
		}
		log.LogAttrs(ctx, logger.ErrorLevel, "payment creation failed",
			logger.String("op", op),
			logger.Any("error", err),
			logger.String("payer_id", in.PayerID.String()),
		)
		return nil, err
	}

	ps.cache.Put(receipt.Payment.ID, receipt, ps.cacheTTL)

	log.LogAttrs(ctx, logger.InfoLevel, "payment created successfully",
		logger.String("op", op),
		logger.String("payment_number", receipt.Payment.PaymentNumber),
		logger.String("payout_number", receipt.Payout.PayoutNumber),
		logger.String("recipient_type", string(receipt.Payout.RecipientType)),
		logger.String("duration", time.Since(startTime).String()),
	)

	return receipt, nil
}

func validateTarget(in CreatePaymentInput) error {
	if in.ClassID != nil && in.MeetupID != nil {
		return entity.ErrAmbiguousTarget
	}
	if in.ClassID == nil && in.MeetupID == nil {
		return entity.ErrMissingTarget
	}
	return nil
}

// resolveRecipient routes the payout to whichever party delivers the service:
// a class always pays its venue; a meetup pays its venue when it has one,
// otherwise its creator.
func (ps *PaymentService) resolveRecipient(
	ctx context.Context,
	in CreatePaymentInput,
) (recipient, error) {
	ctx, cancel := context.WithTimeout(ctx, _defaultContextTimeout)
	defer cancel()

	if in.ClassID != nil {
		class, err := ps.catalogRepo.GetClass(ctx, *in.ClassID)
		if err != nil {
			return recipient{}, fmt.Errorf("service.resolveRecipient: class: %w", err)
		}
		return recipient{
			recipientType: entity.RecipientTypeVenue,
			recipientID:   class.VenueID,
		}, nil
	}

	meetup, err := ps.catalogRepo.GetMeetup(ctx, *in.MeetupID)
	if err != nil {
		return recipient{}, fmt.Errorf("service.resolveRecipient: meetup: %w", err)
	}
	if meetup.VenueID != nil {
		return recipient{
			recipientType: entity.RecipientTypeVenue,
			recipientID:   *meetup.VenueID,
		}, nil
	}
	return recipient{
		recipientType: entity.RecipientTypeInstructor,
		recipientID:   meetup.CreatorID,
	}, nil
}

func (ps *PaymentService) createReceiptWithTransaction(
	ctx context.Context,
	in CreatePaymentInput,
	breakdown entity.Breakdown,
	rcpt recipient,
) (*entity.Receipt, error) {
	now := time.Now().UTC()

	payment := &entity.Payment{
		PaymentNumber:     ps.paymentRefs.Next(),
		UserID:            in.PayerID,
		PaymentMethod:     defaultString(in.PaymentMethod, _defaultPaymentMethod),
		PaymentProvider:   defaultString(in.PaymentProvider, _defaultPaymentProvider),
		ProviderPaymentID: in.ProviderPaymentID,
		CardLast4:         in.CardLast4,
		Status:            entity.PaymentStatusCompleted,
		PaidAt:            &now,
		ClassID:           in.ClassID,
		MeetupID:          in.MeetupID,
		EnrollmentID:      in.EnrollmentID,
		TicketID:          in.TicketID,
		IdempotencyKey:    in.IdempotencyKey,
	}
	payment.SetBreakdown(breakdown)

	var receipt *entity.Receipt

	err := ps.txManager.ExecuteInTransaction(
		ctx,
		"CreatePayment",
		func(tx postgres.QueryExecuter) error {
			createdPayment, err := ps.paymentRepo.Create(ctx, tx, payment)
			if err != nil {
				return transaction.HandleError("CreatePayment", "create payment", err)
			}

			payout := &entity.Payout{
				PayoutNumber:  ps.payoutRefs.Next(),
				PaymentID:     createdPayment.ID,
				RecipientType: rcpt.recipientType,
				RecipientID:   rcpt.recipientID,
				TotalAmount:   breakdown.PayoutAmount,
				Currency:      ps.currency,
				PayoutMethod:  ps.payoutMethod,
				Status:        entity.PayoutStatusPending,
			}

			createdPayout, err := ps.payoutRepo.Create(ctx, tx, payout)
			if err != nil {
				return transaction.HandleError("CreatePayment", "create payout", err)
			}

			receipt = &entity.Receipt{
				Payment: createdPayment,
				Payout:  createdPayout,
			}
			return nil
		},
	)
	if err != nil {
		return nil, err
	}

	return receipt, nil
}

func (ps *PaymentService) replayByIdempotencyKey(
	ctx context.Context,
	payerID uuid.UUID,
	key string,
) (*entity.Receipt, error) {
	ctx, cancel := context.WithTimeout(ctx, _defaultContextTimeout)
	defer cancel()

	existing, err := ps.paymentRepo.GetByIdempotencyKey(ctx, payerID, key)
	if err != nil {
		if errors.Is(err, entity.ErrDataNotFound) {
			return nil, nil
		}
		return nil, err
	}

	payout, err := ps.payoutRepo.GetByPaymentID(ctx, existing.ID)
	if err != nil {
		return nil, err
	}

	return &entity.Receipt{Payment: existing, Payout: payout}, nil
}

// GetPayment returns the receipt for one payment. The requester must own the
// payment or hold the admin role; the check applies on cache hits too.
func (ps *PaymentService) GetPayment(
	ctx context.Context,
	paymentID uuid.UUID,
	requesterID uuid.UUID,
	requesterRole entity.Role,
) (*entity.Receipt, error) {
	const op = "service.GetPayment"
	log := ps.logger.Ctx(ctx)

	startTime := time.Now()
	defer func() {
		duration := time.Since(startTime)
		if duration > _slowOperation {
			log.LogAttrs(ctx, logger.WarnLevel, "slow service operation",
				logger.String("op", op),
				logger.String("payment_id", paymentID.String()),
				logger.String("duration", duration.String()),
			)
		}
	}()

	if cached, found := ps.cache.Get(paymentID); found {
		if err := authorizeRead(cached.Payment, requesterID, requesterRole); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		log.LogAttrs(ctx, logger.InfoLevel, "receipt served from cache",
			logger.String("op", op),
			logger.String("payment_id", paymentID.String()),
		)
		return cached, nil
	}

	receipt, err := ps.fetchReceiptFromDB(ctx, paymentID)
	if err != nil {
		log.LogAttrs(ctx, logger.ErrorLevel, "failed to get receipt from database",
			logger.String("op", op),
			logger.Any("error", err),
			logger.String("payment_id", paymentID.String()),
		)
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err = authorizeRead(receipt.Payment, requesterID, requesterRole); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if receipt.Payout != nil {
		ps.cache.Put(paymentID, receipt, ps.cacheTTL)
	} else {
		log.LogAttrs(ctx, logger.WarnLevel, "skipping cache for payment without payout",
			logger.String("payment_id", paymentID.String()),
		)
	}

	return receipt, nil
}

func authorizeRead(payment *entity.Payment, requesterID uuid.UUID, role entity.Role) error {
	if payment.UserID == requesterID || role == entity.RoleAdmin {
		return nil
	}
	return entity.ErrForbidden
}

func (ps *PaymentService) fetchReceiptFromDB(
	ctx context.Context,
	paymentID uuid.UUID,
) (*entity.Receipt, error) {
	ctx, cancel := context.WithTimeout(ctx, _defaultContextTimeout)
	defer cancel()

	var payment *entity.Payment
	var payout *entity.Payout

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var err error
		payment, err = ps.paymentRepo.GetByID(gCtx, paymentID)
		return err
	})

	g.Go(func() error {
		var err error
		payout, err = ps.payoutRepo.GetByPaymentID(gCtx, paymentID)
		if err != nil && !errors.Is(err, entity.ErrDataNotFound) {
			return err
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &entity.Receipt{Payment: payment, Payout: payout}, nil
}

// ListUserPayments returns the payer's payments newest first, each paired
// with its payout when one exists.
func (ps *PaymentService) ListUserPayments(
	ctx context.Context,
	payerID uuid.UUID,
) ([]*entity.Receipt, error) {
	const op = "service.ListUserPayments"
	log := ps.logger.Ctx(ctx)

	if payerID == uuid.Nil {
		return nil, fmt.Errorf("%s: %w", op, entity.ErrUnauthorized)
	}

	payments, err := ps.paymentRepo.ListByUser(ctx, payerID)
	if err != nil {
		log.LogAttrs(ctx, logger.ErrorLevel, "failed to list payments",
			logger.String("op", op),
			logger.Any("error", err),
			logger.String("payer_id", payerID.String()),
		)
		return nil, fmt.Errorf("%s: list by user: %w", op, err)
	}

	receipts := make([]*entity.Receipt, len(payments))
	g, gCtx := errgroup.WithContext(ctx)

	for i, payment := range payments {
		g.Go(func() error {
			payout, payoutErr := ps.payoutRepo.GetByPaymentID(gCtx, payment.ID)
			if payoutErr != nil && !errors.Is(payoutErr, entity.ErrDataNotFound) {
				return payoutErr
			}
			receipts[i] = &entity.Receipt{Payment: payment, Payout: payout}
			return nil
		})
	}

	if err = g.Wait(); err != nil {
		return nil, fmt.Errorf("%s: fetch payouts: %w", op, err)
	}

	return receipts, nil
}

// PlatformRevenue aggregates completed payments for reporting. Admin only.
func (ps *PaymentService) PlatformRevenue(
	ctx context.Context,
	requesterRole entity.Role,
	startDate, endDate *time.Time,
) (*entity.RevenueReport, error) {
	const op = "service.PlatformRevenue"
	log := ps.logger.Ctx(ctx)

	if requesterRole != entity.RoleAdmin {
		return nil, fmt.Errorf("%s: %w", op, entity.ErrForbidden)
	}

	if startDate != nil && endDate != nil && endDate.Before(*startDate) {
		return nil, fmt.Errorf("%s: %w", op, entity.ErrInvalidData)
	}

	ctx, cancel := context.WithTimeout(ctx, _defaultContextTimeout)
	defer cancel()

	report, err := ps.paymentRepo.AggregateRevenue(ctx, startDate, endDate)
	if err != nil {
		log.LogAttrs(ctx, logger.ErrorLevel, "revenue aggregation failed",
			logger.String("op", op),
			logger.Any("error", err),
		)
		return nil, fmt.Errorf("%s: aggregate revenue: %w", op, err)
	}

	return report, nil
}

func defaultString(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
