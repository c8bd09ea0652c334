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
)

// CatalogRepository reads classes and meetups owned by the platform's catalog.
// Recipient resolution never mutates these tables.
type CatalogRepository struct {
	db *postgres.Postgres
}

func NewCatalogRepository(db *postgres.Postgres) *CatalogRepository {
	return &CatalogRepository{db}
}

func (cr *CatalogRepository) GetClass(
	ctx context.Context,
	classID uuid.UUID,
) (*entity.Class, error) {
	const op = "repository.catalog.GetClass"

	query := cr.db.Builder.Select("id", "venue_id", "title").
		From("classes").
		Where(squirrel.Eq{"id": classID}).
		Limit(1)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: building query: %w", op, err)
	}

	result := &entity.Class{}
	err = cr.db.Pool.QueryRow(ctx, sql, args...).Scan(
		&result.ID,
		&result.VenueID,
		&result.Title,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, entity.ErrDataNotFound
		}
		return nil, fmt.Errorf("%s: query row: %w", op, err)
	}

	return result, nil
}

func (cr *CatalogRepository) GetMeetup(
	ctx context.Context,
	meetupID uuid.UUID,
) (*entity.Meetup, error) {
	const op = "repository.catalog.GetMeetup"

	query := cr.db.Builder.Select("id", "venue_id", "creator_id", "title").
		From("meetups").
		Where(squirrel.Eq{"id": meetupID}).
		Limit(1)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: building query: %w", op, err)
	}

	result := &entity.Meetup{}
	err = cr.db.Pool.QueryRow(ctx, sql, args...).Scan(
		&result.ID,
		&result.VenueID,
		&result.CreatorID,
		&result.Title,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, entity.ErrDataNotFound
		}
		return nil, fmt.Errorf("%s: query row: %w", op, err)
	}

	return result, nil
}
