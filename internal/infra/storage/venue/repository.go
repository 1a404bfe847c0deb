package venue

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	"github.com/m04kA/SMC-VenueBookingService/internal/domain"
	"github.com/m04kA/SMC-VenueBookingService/pkg/dbmetrics"
	"github.com/m04kA/SMC-VenueBookingService/pkg/psqlbuilder"
)

// Repository репозиторий площадок (только чтение, каталогом владеет другой сервис)
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория площадок
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// GetVisibleByID получает площадку по ID.
// Скрытые площадки (visible = false) считаются отсутствующими.
func (r *Repository) GetVisibleByID(ctx context.Context, id int64) (*domain.Venue, error) {
	venue, err := r.get(ctx, squirrel.Eq{"id": id, "visible": true})
	if err != nil {
		return nil, fmt.Errorf("GetVisibleByID: %w", err)
	}
	return venue, nil
}

// GetByID получает площадку по ID независимо от видимости
// Нужна для уведомлений по уже существующим заявкам
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.Venue, error) {
	venue, err := r.get(ctx, squirrel.Eq{"id": id})
	if err != nil {
		return nil, fmt.Errorf("GetByID: %w", err)
	}
	return venue, nil
}

func (r *Repository) get(ctx context.Context, where squirrel.Eq) (*domain.Venue, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(
		"id",
		"name",
		"capacity",
		"opening_hours",
		"visible",
		"priority_emails",
	).
		From("venues").
		Where(where).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: build select query: %v", ErrBuildQuery, err)
	}

	var venue domain.Venue
	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&venue.ID,
		&venue.Name,
		&venue.Capacity,
		&venue.OpeningHours,
		&venue.Visible,
		pq.Array(&venue.PriorityEmails),
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrVenueNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: scan venue: %v", ErrScanRow, err)
	}

	return &venue, nil
}
