package repository

import (
	"context"
	"errors"
	"fmt"

	"meetpay/internal/entity"
	"meetpay/pkg/storage/postgres"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var _payoutColumns = []string{
	"id", "payout_number", "payment_id", "recipient_type", "recipient_id",
	"total_amount", "currency", "payout_method", "status", "created_at",
}

type PayoutRepository struct {
	db *postgres.Postgres
}

func NewPayoutRepository(db *postgres.Postgres) *PayoutRepository {
	return &PayoutRepository{db}
}

func (pr *PayoutRepository) Create(
	ctx context.Context,
	queryExecuter postgres.QueryExecuter,
	payout *entity.Payout,
) (*entity.Payout, error) {
	const op = "repository.payout.Create"

	query := pr.db.Builder.Insert("payouts").
		Columns(
			"payout_number", "payment_id", "recipient_type", "recipient_id",
			"total_amount", "currency", "payout_method", "status",
		).
		Values(
			payout.PayoutNumber,
			payout.PaymentID,
			payout.RecipientType,
			payout.RecipientID,
			payout.TotalAmount,
			payout.Currency,
			payout.PayoutMethod,
			payout.Status,
		).
		Suffix("RETURNING id, created_at")

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: building query: %w", op, err)
	}

	result := *payout
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

func (pr *PayoutRepository) GetByPaymentID(
	ctx context.Context,
	paymentID uuid.UUID,
) (*entity.Payout, error) {
	const op = "repository.payout.GetByPaymentID"

	query := pr.db.Builder.Select(_payoutColumns...).
		From("payouts").
		Where(squirrel.Eq{"payment_id": paymentID}).
		Limit(1)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: building query: %w", op, err)
	}

	result := &entity.Payout{}
	err = pr.db.Pool.QueryRow(ctx, sql, args...).Scan(
		&result.ID,
		&result.PayoutNumber,
		&result.PaymentID,
		&result.RecipientType,
		&result.RecipientID,
		&result.TotalAmount,
		&result.Currency,
		&result.PayoutMethod,
		&result.Status,
		&result.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, entity.ErrDataNotFound
		}
		return nil, fmt.Errorf("%s: query row: %w", op, err)
	}

	return result, nil
}
