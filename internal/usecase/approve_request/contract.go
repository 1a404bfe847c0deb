package approve_request

import (
	"context"

	"github.com/m04kA/SMC-VenueBookingService/internal/domain"
	"github.com/m04kA/SMC-VenueBookingService/internal/service/approval"
	"github.com/m04kA/SMC-VenueBookingService/internal/service/notifications"
	"github.com/m04kA/SMC-VenueBookingService/pkg/types"
)

// RequestRepository интерфейс репозитория заявок
type RequestRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.BookingRequest, error)
}

// Approver одобряет заявку в сериализуемой транзакции
type Approver interface {
	Approve(ctx context.Context, requestID int64) (*approval.Result, error)
}

// AvailabilityChecker проверка площадки и занятости слотов
type AvailabilityChecker interface {
	GetVisibleVenue(ctx context.Context, venueID int64) (*domain.Venue, error)
	TakenSlots(ctx context.Context, venueID int64, date types.UnixDate, slots domain.SlotSet) (domain.SlotSet, error)
}

// ConflictFinder находит заявки, которые будут вытеснены, ничего не изменяя
type ConflictFinder interface {
	FindConflicts(ctx context.Context, approving *domain.BookingRequest) ([]*domain.BookingRequest, error)
}

// Dispatcher решает, какие уведомления отправить
type Dispatcher interface {
	Build(event notifications.Event, req *domain.BookingRequest, venue *domain.Venue, related []*domain.BookingRequest) []notifications.Notification
}

// Sender доставляет уведомления
type Sender interface {
	Send(ctx context.Context, notifications []notifications.Notification) notifications.Report
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
