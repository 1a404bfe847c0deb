package conflicts

import (
	"context"

	"github.com/m04kA/SMC-VenueBookingService/internal/domain"
	"github.com/m04kA/SMC-VenueBookingService/pkg/types"
)

// RequestRepository интерфейс репозитория заявок
type RequestRepository interface {
	FindPendingByVenueAndDate(ctx context.Context, venueID int64, date types.UnixDate) ([]*domain.BookingRequest, error)
	Update(ctx context.Context, req *domain.BookingRequest) error
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
