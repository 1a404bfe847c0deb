package create_request

import (
	"context"
	"time"

	"github.com/m04kA/SMC-VenueBookingService/internal/domain"
	"github.com/m04kA/SMC-VenueBookingService/internal/service/approval"
	"github.com/m04kA/SMC-VenueBookingService/internal/service/notifications"
	"github.com/m04kA/SMC-VenueBookingService/pkg/types"
)

// RequestRepository интерфейс репозитория заявок
type RequestRepository interface {
	Create(ctx context.Context, req *domain.BookingRequest) (*domain.BookingRequest, error)
}

// AvailabilityChecker проверка площадки и занятости слотов
type AvailabilityChecker interface {
	GetVisibleVenue(ctx context.Context, venueID int64) (*domain.Venue, error)
	Ensure(ctx context.Context, venueID int64, date types.UnixDate, slots domain.SlotSet) error
}

// Approver одобряет заявку (мгновенное одобрение для приоритетных заявителей)
type Approver interface {
	Approve(ctx context.Context, requestID int64) (*approval.Result, error)
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
	DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
}

// Clock источник текущего времени (UTC+8)
type Clock interface {
	Now() time.Time
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
