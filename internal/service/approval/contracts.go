package approval

import (
	"context"

	"github.com/m04kA/SMC-VenueBookingService/internal/domain"
	"github.com/m04kA/SMC-VenueBookingService/pkg/types"
)

// RequestRepository интерфейс репозитория заявок
type RequestRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.BookingRequest, error)
	Update(ctx context.Context, req *domain.BookingRequest) error
}

// BookingRepository интерфейс репозитория бронирований
type BookingRepository interface {
	CreateMany(ctx context.Context, bookings []*domain.Booking) ([]*domain.Booking, error)
	LockVenueDate(ctx context.Context, venueID int64, date types.UnixDate) error
}

// AvailabilityChecker проверка площадки и занятости слотов
type AvailabilityChecker interface {
	GetVisibleVenue(ctx context.Context, venueID int64) (*domain.Venue, error)
	Ensure(ctx context.Context, venueID int64, date types.UnixDate, slots domain.SlotSet) error
}

// ConflictResolver отклоняет пересекающиеся ожидающие заявки
type ConflictResolver interface {
	Resolve(ctx context.Context, approving *domain.BookingRequest) ([]*domain.BookingRequest, error)
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
}

// Metrics счетчик переходов жизненного цикла
type Metrics interface {
	RecordTransition(event string)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
