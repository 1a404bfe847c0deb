package booking_request

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	"github.com/m04kA/SMC-VenueBookingService/internal/domain"
	"github.com/m04kA/SMC-VenueBookingService/pkg/dbmetrics"
	"github.com/m04kA/SMC-VenueBookingService/pkg/psqlbuilder"
	"github.com/m04kA/SMC-VenueBookingService/pkg/types"
)

var requestColumns = []string{
	"id",
	"email",
	"cca",
	"notes",
	"venue_id",
	"date",
	"timing_slots",
	"status",
	"booking_ids",
	"conflicting_requests",
	"rejection_reason",
	"rejected_by",
	"created_at",
	"updated_at",
}

// rowScanner общий интерфейс *sql.Row и *sql.Rows
type rowScanner interface {
	Scan(dest ...interface{}) error
}

// Repository репозиторий заявок на бронирование
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория заявок
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Create сохраняет новую заявку
func (r *Repository) Create(ctx context.Context, req *domain.BookingRequest) (*domain.BookingRequest, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("booking_requests").
		Columns(
			"email",
			"cca",
			"notes",
			"venue_id",
			"date",
			"timing_slots",
			"status",
			"booking_ids",
			"conflicting_requests",
			"rejection_reason",
			"rejected_by",
		).
		Values(
			req.Email,
			req.CCA,
			req.Notes,
			req.VenueID,
			int64(req.Date),
			pq.Array(req.TimingSlots.Ints()),
			string(req.Status),
			pq.Array(nonNil(req.BookingIDs)),
			pq.Array(nonNil(req.ConflictingRequests)),
			req.RejectionReason,
			req.RejectedBy,
		).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	var createdAt, updatedAt sql.NullTime
	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&req.ID,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: Create - execute insert: %v", ErrExecQuery, err)
	}

	req.CreatedAt = createdAt.Time
	req.UpdatedAt = updatedAt.Time

	return req, nil
}

// GetByID получает заявку по ID.
// В транзакции строка блокируется (FOR UPDATE), чтобы переход состояния
// не выполнялся двумя запросами одновременно.
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.BookingRequest, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(requestColumns...).
		From("booking_requests").
		Where(squirrel.Eq{"id": id})

	if dbmetrics.IsInTransaction(ctx) {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %v", ErrBuildQuery, err)
	}

	req, err := scanRequest(executor.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrRequestNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - scan request: %v", ErrScanRow, err)
	}

	return req, nil
}

// GetByIDs получает заявки по списку ID. Отсутствующие ID пропускаются.
func (r *Repository) GetByIDs(ctx context.Context, ids []int64) ([]*domain.BookingRequest, error) {
	if len(ids) == 0 {
		return []*domain.BookingRequest{}, nil
	}

	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(requestColumns...).
		From("booking_requests").
		Where(squirrel.Eq{"id": ids}).
		OrderBy("id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByIDs - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetByIDs - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	return scanRequests(rows)
}

// FindPendingByVenueAndDate получает ожидающие заявки на площадку и дату
// в порядке создания (created_at, id). В транзакции строки блокируются.
func (r *Repository) FindPendingByVenueAndDate(ctx context.Context, venueID int64, date types.UnixDate) ([]*domain.BookingRequest, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(requestColumns...).
		From("booking_requests").
		Where(squirrel.Eq{
			"venue_id": venueID,
			"date":     int64(date),
			"status":   string(domain.StatusPending),
		}).
		OrderBy("created_at ASC", "id ASC")

	if dbmetrics.IsInTransaction(ctx) {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: FindPendingByVenueAndDate - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: FindPendingByVenueAndDate - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	return scanRequests(rows)
}

// List получает заявки с фильтрацией по площадке, дате, статусу и email
func (r *Repository) List(ctx context.Context, filter domain.RequestFilter) ([]*domain.BookingRequest, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(requestColumns...).
		From("booking_requests").
		OrderBy("date DESC", "created_at DESC", "id DESC")

	if filter.VenueID != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"venue_id": *filter.VenueID})
	}
	if filter.Date != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"date": int64(*filter.Date)})
	}
	if filter.Status != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"status": string(*filter.Status)})
	}
	if filter.Email != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"lower(email)": strings.ToLower(*filter.Email)})
	}
	if filter.Limit > 0 {
		selectBuilder = selectBuilder.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		selectBuilder = selectBuilder.Offset(filter.Offset)
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: List - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: List - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	return scanRequests(rows)
}

// Update сохраняет состояние жизненного цикла заявки
// (статус, бронирования, связи с вытесненными заявками, причину отказа)
func (r *Repository) Update(ctx context.Context, req *domain.BookingRequest) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("booking_requests").
		Set("status", string(req.Status)).
		Set("booking_ids", pq.Array(nonNil(req.BookingIDs))).
		Set("conflicting_requests", pq.Array(nonNil(req.ConflictingRequests))).
		Set("rejection_reason", req.RejectionReason).
		Set("rejected_by", req.RejectedBy).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": req.ID}).
		Suffix("RETURNING updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: Update - build update query: %v", ErrBuildQuery, err)
	}

	var updatedAt sql.NullTime
	err = executor.QueryRowContext(ctx, query, args...).Scan(&updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrRequestNotFound
	}
	if err != nil {
		return fmt.Errorf("%w: Update - execute update: %v", ErrExecQuery, err)
	}

	req.UpdatedAt = updatedAt.Time
	return nil
}

func scanRequests(rows *sql.Rows) ([]*domain.BookingRequest, error) {
	requests := make([]*domain.BookingRequest, 0)

	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scanRequests - scan row: %v", ErrScanRow, err)
		}
		requests = append(requests, req)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: scanRequests - rows error: %v", ErrScanRow, err)
	}

	return requests, nil
}

func scanRequest(row rowScanner) (*domain.BookingRequest, error) {
	var (
		req                  domain.BookingRequest
		date                 int64
		status               string
		slots                pq.Int64Array
		bookingIDs           pq.Int64Array
		conflictingRequests  pq.Int64Array
		createdAt, updatedAt sql.NullTime
	)

	err := row.Scan(
		&req.ID,
		&req.Email,
		&req.CCA,
		&req.Notes,
		&req.VenueID,
		&date,
		&slots,
		&status,
		&bookingIDs,
		&conflictingRequests,
		&req.RejectionReason,
		&req.RejectedBy,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	timingSlots, err := domain.SlotSetFromInts(slots)
	if err != nil {
		return nil, fmt.Errorf("request %d: %v", req.ID, err)
	}

	req.Date = types.UnixDate(date)
	req.TimingSlots = timingSlots
	req.Status = domain.RequestStatus(status)
	req.CreatedAt = createdAt.Time
	req.UpdatedAt = updatedAt.Time

	if len(bookingIDs) > 0 {
		req.BookingIDs = []int64(bookingIDs)
	}
	if len(conflictingRequests) > 0 {
		req.ConflictingRequests = []int64(conflictingRequests)
	}

	return &req, nil
}

// nonNil пустой массив вместо NULL для колонок NOT NULL
func nonNil(ids []int64) []int64 {
	if ids == nil {
		return []int64{}
	}
	return ids
}
