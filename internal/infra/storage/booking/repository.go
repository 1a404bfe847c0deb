package booking

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
	"github.com/m04kA/SMC-VenueBookingService/pkg/types"
)

// uniqueViolation код ошибки PostgreSQL для нарушения уникального индекса
const uniqueViolation = "23505"

// millisPerDay миллисекунд в сутках, для ключа advisory lock
const millisPerDay = 24 * 60 * 60 * 1000

var bookingColumns = []string{
	"id",
	"venue_id",
	"date",
	"slot",
	"booking_request_id",
	"created_at",
}

// Repository репозиторий для работы с бронированиями слотов
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория бронирований
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// CreateMany создает по одному бронированию на слот одним INSERT.
// Уникальный индекс (venue_id, date, slot) гарантирует, что слот не будет занят дважды:
// при нарушении возвращается ErrSlotTaken.
func (r *Repository) CreateMany(ctx context.Context, bookings []*domain.Booking) ([]*domain.Booking, error) {
	if len(bookings) == 0 {
		return bookings, nil
	}

	executor := dbmetrics.GetExecutor(ctx, r.db)

	insert := psqlbuilder.Insert("bookings").
		Columns("venue_id", "date", "slot", "booking_request_id")
	for _, b := range bookings {
		insert = insert.Values(b.VenueID, int64(b.Date), int(b.Slot), b.BookingRequestID)
	}

	query, args, err := insert.Suffix("RETURNING id, slot, created_at").ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: CreateMany - build insert query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("%w: CreateMany - %v", ErrSlotTaken, err)
		}
		return nil, fmt.Errorf("%w: CreateMany - execute insert: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	// RETURNING не гарантирует порядок строк, сопоставляем по слоту
	bySlot := make(map[domain.TimeSlot]*domain.Booking, len(bookings))
	for _, b := range bookings {
		bySlot[b.Slot] = b
	}

	for rows.Next() {
		var (
			id        int64
			slot      int
			createdAt sql.NullTime
		)
		if err := rows.Scan(&id, &slot, &createdAt); err != nil {
			return nil, fmt.Errorf("%w: CreateMany - scan returning: %v", ErrScanRow, err)
		}
		if b, ok := bySlot[domain.TimeSlot(slot)]; ok {
			b.ID = id
			b.CreatedAt = createdAt.Time
		}
	}

	if err := rows.Err(); err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("%w: CreateMany - %v", ErrSlotTaken, err)
		}
		return nil, fmt.Errorf("%w: CreateMany - rows error: %v", ErrScanRow, err)
	}

	return bookings, nil
}

// GetByVenueAndDate получает все бронирования площадки на дату.
// В транзакции строки блокируются (FOR UPDATE).
func (r *Repository) GetByVenueAndDate(ctx context.Context, venueID int64, date types.UnixDate) ([]*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(bookingColumns...).
		From("bookings").
		Where(squirrel.Eq{"venue_id": venueID, "date": int64(date)}).
		OrderBy("slot ASC")

	if dbmetrics.IsInTransaction(ctx) {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByVenueAndDate - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetByVenueAndDate - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	return r.scanBookings(rows)
}

// GetByRequestID получает бронирования, созданные для заявки
func (r *Repository) GetByRequestID(ctx context.Context, requestID int64) ([]*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(bookingColumns...).
		From("bookings").
		Where(squirrel.Eq{"booking_request_id": requestID}).
		OrderBy("slot ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByRequestID - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetByRequestID - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	return r.scanBookings(rows)
}

// DeleteByIDs удаляет бронирования (освобождает слоты) и возвращает число удаленных строк
func (r *Repository) DeleteByIDs(ctx context.Context, ids []int64) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Delete("bookings").
		Where(squirrel.Eq{"id": ids}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("%w: DeleteByIDs - build delete query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("%w: DeleteByIDs - execute delete: %v", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%w: DeleteByIDs - get rows affected: %v", ErrExecQuery, err)
	}

	return rowsAffected, nil
}

// LockVenueDate берет транзакционную advisory-блокировку на пару (площадка, дата).
// Одобрения для одной площадки и даты выполняются последовательно,
// для разных - параллельно. Блокировка снимается при COMMIT/ROLLBACK.
// Ключ - 64-битный хеш полного venue_id и номера дня, без усечения до int4.
func (r *Repository) LockVenueDate(ctx context.Context, venueID int64, date types.UnixDate) error {
	if !dbmetrics.IsInTransaction(ctx) {
		return ErrNoTransaction
	}

	executor := dbmetrics.GetExecutor(ctx, r.db)

	_, err := executor.ExecContext(ctx, "SELECT pg_advisory_xact_lock(hashtextextended($1, 0))",
		venueDateLockKey(venueID, date))
	if err != nil {
		return fmt.Errorf("%w: LockVenueDate - venue=%d date=%s: %v", ErrExecQuery, venueID, date, err)
	}

	return nil
}

// venueDateLockKey текстовый ключ блокировки пары (площадка, дата)
func venueDateLockKey(venueID int64, date types.UnixDate) string {
	return fmt.Sprintf("venue_booking:%d:%d", venueID, int64(date)/millisPerDay)
}

// scanBookings сканирует результаты запроса в слайс бронирований
func (r *Repository) scanBookings(rows *sql.Rows) ([]*domain.Booking, error) {
	bookings := make([]*domain.Booking, 0)

	for rows.Next() {
		var (
			booking   domain.Booking
			date      int64
			slot      int
			createdAt sql.NullTime
		)

		err := rows.Scan(
			&booking.ID,
			&booking.VenueID,
			&date,
			&slot,
			&booking.BookingRequestID,
			&createdAt,
		)
		if err != nil {
			return nil, fmt.Errorf("%w: scanBookings - scan row: %v", ErrScanRow, err)
		}

		booking.Date = types.UnixDate(date)
		booking.Slot = domain.TimeSlot(slot)
		booking.CreatedAt = createdAt.Time

		bookings = append(bookings, &booking)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: scanBookings - rows error: %v", ErrScanRow, err)
	}

	return bookings, nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}
