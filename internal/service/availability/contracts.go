package availability

import (
	"context"

	"github.com/m04kA/SMC-VenueBookingService/internal/domain"
	"github.com/m04kA/SMC-VenueBookingService/pkg/types"
)

// VenueRepository интерфейс чтения каталога площадок
type VenueRepository interface {
	GetVisibleByID(ctx context.Context, id int64) (*domain.Venue, error)
}

// BookingRepository интерфейс чтения занятых слотов
type BookingRepository interface {
	GetByVenueAndDate(ctx context.Context, venueID int64, date types.UnixDate) ([]*domain.Booking, error)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
