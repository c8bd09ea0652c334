package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"meetpay/internal/entity"
	"meetpay/pkg/storage/postgres"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var _paymentColumns = []string{
	"id", "payment_number", "user_id",
	"gross_amount", "processor_fee", "net_amount", "platform_fee", "payout_amount",
	"payment_method", "payment_provider", "provider_payment_id", "card_last4",
	"status", "paid_at", "class_id", "meetup_id", "enrollment_id", "ticket_id",
	"idempotency_key", "created_at",
}

type PaymentRepository struct {
	db *postgres.Postgres
}

func NewPaymentRepository(db *postgres.Postgres) *PaymentRepository {
	return &PaymentRepository{db}
}

func (pr *PaymentRepository) Create(
	ctx context.Context,
	queryExecuter postgres.QueryExecuter,
	payment *entity.Payment,
) (*entity.Payment, error) {
	const op = "repository.payment.Create"

	query := pr.db.Builder.Insert("payments").
		Columns(
			"payment_number", "user_id",
			"gross_amount", "processor_fee", "net_amount", "platform_fee", "payout_amount",
			"payment_method", "payment_provider", "provider_payment_id", "card_last4",
			"status", "paid_at", "class_id", "meetup_id", "enrollment_id", "ticket_id",
			"idempotency_key",
		).
		Values(
			payment.PaymentNumber,
			payment.UserID,
			payment.GrossAmount,
			payment.ProcessorFee,
			payment.NetAmount,
			payment.PlatformFee,
			payment.PayoutAmount,
			payment.PaymentMethod,
			payment.PaymentProvider,
			payment.ProviderPaymentID,
			payment.CardLast4,
			payment.Status,
			payment.PaidAt,
			payment.ClassID,
			payment.MeetupID,
			payment.EnrollmentID,
			payment.TicketID,
			payment.IdempotencyKey,
		).
		Suffix("RETURNING id, created_at")

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: building query: %w", op, err)
	}

	result := *payment
	err = queryExecuter.QueryRow(ctx, sql, args...).Scan(&result.ID, &result.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, entity.ErrConflictingData
		}
		return nil, fmt.Errorf("%s: query row: %w", op, err)
	}

	return &result, nil
}

func (pr *PaymentRepository) GetByID(
	ctx context.Context,
	paymentID uuid.UUID,
) (*entity.Payment, error) {
	const op = "repository.payment.GetByID"

	return pr.getOne(ctx, op, squirrel.Eq{"id": paymentID})
}

func (pr *PaymentRepository) GetByIdempotencyKey(
	ctx context.Context,
	userID uuid.UUID,
	key string,
) (*entity.Payment, error) {
	const op = "repository.payment.GetByIdempotencyKey"

	return pr.getOne(ctx, op, squirrel.Eq{"user_id": userID, "idempotency_key": key})
}

func (pr *PaymentRepository) ListByUser(
	ctx context.Context,
	userID uuid.UUID,
) ([]*entity.Payment, error) {
	const op = "repository.payment.ListByUser"

	query := pr.db.Builder.Select(_paymentColumns...).
		From("payments").
		Where(squirrel.Eq{"user_id": userID}).
		OrderBy("created_at DESC")

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: building query: %w", op, err)
	}

	rows, err := pr.db.Pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: query: %w", op, err)
	}
	defer rows.Close()

	var payments []*entity.Payment
	for rows.Next() {
		payment := &entity.Payment{}
		if err = scanPayment(rows, payment); err != nil {
			return nil, fmt.Errorf("%s: row scan: %w", op, err)
		}
		payments = append(payments, payment)
	}

	if rows.Err() != nil {
		return nil, fmt.Errorf("%s: rows final error: %w", op, rows.Err())
	}

	return payments, nil
}

func (pr *PaymentRepository) AggregateRevenue(
	ctx context.Context,
	startDate, endDate *time.Time,
) (*entity.RevenueReport, error) {
	const op = "repository.payment.AggregateRevenue"

	query := pr.db.Builder.Select(
		"COUNT(*)",
		"COALESCE(SUM(gross_amount), 0)",
		"COALESCE(SUM(processor_fee), 0)",
		"COALESCE(SUM(platform_fee), 0)",
		"COALESCE(SUM(payout_amount), 0)",
	).
		From("payments").
		Where(squirrel.Eq{"status": entity.PaymentStatusCompleted})

	if startDate != nil {
		query = query.Where(squirrel.GtOrEq{"paid_at": *startDate})
	}
	if endDate != nil {
		query = query.Where(squirrel.LtOrEq{"paid_at": *endDate})
	}

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: building query: %w", op, err)
	}

	report := &entity.RevenueReport{
		StartDate: startDate,
		EndDate:   endDate,
	}
	err = pr.db.Pool.QueryRow(ctx, sql, args...).Scan(
		&report.PaymentCount,
		&report.GrossTotal,
		&report.ProcessorFeeTotal,
		&report.PlatformFeeTotal,
		&report.PayoutTotal,
	)
	if err != nil {
		return nil, fmt.Errorf("%s: query row: %w", op, err)
	}

	return report, nil
}

func (pr *PaymentRepository) getOne(
	ctx context.Context,
	op string,
	pred any,
) (*entity.Payment, error) {
	query := pr.db.Builder.Select(_paymentColumns...).
		From("payments").
		Where(pred).
		Limit(1)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: building query: %w", op, err)
	}

	result := &entity.Payment{}
	err = scanPayment(pr.db.Pool.QueryRow(ctx, sql, args...), result)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, entity.ErrDataNotFound
		}
		return nil, fmt.Errorf("%s: query row: %w", op, err)
	}

	return result, nil
}

func scanPayment(row pgx.Row, payment *entity.Payment) error {
	return row.Scan(
		&payment.ID,
		&payment.PaymentNumber,
		&payment.UserID,
		&payment.GrossAmount,
		&payment.ProcessorFee,
		&payment.NetAmount,
		&payment.PlatformFee,
		&payment.PayoutAmount,
		&payment.PaymentMethod,
		&payment.PaymentProvider,
		&payment.ProviderPaymentID,
		&payment.CardLast4,
		&payment.Status,
		&payment.PaidAt,
		&payment.ClassID,
		&payment.MeetupID,
		&payment.EnrollmentID,
		&payment.TicketID,
		&payment.IdempotencyKey,
		&payment.CreatedAt,
	)
}
