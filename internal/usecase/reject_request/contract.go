package reject_request

import (
	"context"

	"github.com/m04kA/SMC-VenueBookingService/internal/domain"
	"github.com/m04kA/SMC-VenueBookingService/internal/service/notifications"
)

// RequestRepository интерфейс репозитория заявок
type RequestRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.BookingRequest, error)
	Update(ctx context.Context, req *domain.BookingRequest) error
}

// VenueRepository интерфейс чтения площадок (включая скрытые)
type VenueRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Venue, error)
}

// Dispatcher решает, какие уведомления отправить
type Dispatcher interface {
	Build(event notifications.Event, req *domain.BookingRequest, venue *domain.Venue, related []*domain.BookingRequest) []notifications.Notification
}

// Sender доставляет уведомления
type Sender interface {
	Send(ctx context.Context, notifications []notifications.Notification) notifications.Report
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
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
