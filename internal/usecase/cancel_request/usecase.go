package cancel_request

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/SMC-VenueBookingService/internal/domain"
	requestRepo "github.com/m04kA/SMC-VenueBookingService/internal/infra/storage/booking_request"
	venueRepo "github.com/m04kA/SMC-VenueBookingService/internal/infra/storage/venue"
	"github.com/m04kA/SMC-VenueBookingService/internal/service/notifications"
)

// UseCase use case для отмены одобренной заявки
type UseCase struct {
	requestRepo RequestRepository
	bookingRepo BookingRepository
	venueRepo   VenueRepository
	dispatcher  Dispatcher
	sender      Sender
	txManager   TransactionManager
	clock       Clock
	cutoff      time.Duration
	metrics     Metrics
	logger      Logger
}

// NewUseCase создает новый экземпляр use case.
// cutoff - за сколько до начала даты бронирования отмена перестает быть доступной.
func NewUseCase(
	requestRepo RequestRepository,
	bookingRepo BookingRepository,
	venueRepo VenueRepository,
	dispatcher Dispatcher,
	sender Sender,
	txManager TransactionManager,
	clock Clock,
	cutoff time.Duration,
	metrics Metrics,
	logger Logger,
) *UseCase {
	return &UseCase{
		requestRepo: requestRepo,
		bookingRepo: bookingRepo,
		venueRepo:   venueRepo,
		dispatcher:  dispatcher,
		sender:      sender,
		txManager:   txManager,
		clock:       clock,
		cutoff:      cutoff,
		metrics:     metrics,
		logger:      logger,
	}
}

// Execute отменяет одобренную заявку: удаляет бронирования и уведомляет
// заявителя и всех, кого эта заявка ранее вытеснила
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("CancelRequest: request id=%d", req.RequestID)

	// 1. Валидация входных данных
	if req.RequestID <= 0 {
		return nil, fmt.Errorf("%w: requestId must be positive", ErrInvalidInput)
	}

	now := uc.clock.Now()

	var (
		cancelled *domain.BookingRequest
		released  []int64
	)

	// 2. Удаляем бронирования и переводим заявку в Cancelled в одной транзакции
	err := uc.txManager.Do(ctx, func(txCtx context.Context) error {
		bookingRequest, err := uc.requestRepo.GetByID(txCtx, req.RequestID)
		if err != nil {
			if errors.Is(err, requestRepo.ErrRequestNotFound) {
				return fmt.Errorf("%w: booking request id=%d", domain.ErrNotFound, req.RequestID)
			}
			return fmt.Errorf("%w: failed to get request: %v", ErrInternal, err)
		}

		ids, err := bookingRequest.Cancel(now, uc.cutoff)
		if err != nil {
			return err
		}

		deleted, err := uc.bookingRepo.DeleteByIDs(txCtx, ids)
		if err != nil {
			return fmt.Errorf("%w: failed to delete bookings: %v", ErrInternal, err)
		}
		if deleted != int64(len(ids)) {
			uc.logger.Warn("CancelRequest: request id=%d held %d bookings, %d deleted", req.RequestID, len(ids), deleted)
		}

		if err := uc.requestRepo.Update(txCtx, bookingRequest); err != nil {
			return fmt.Errorf("%w: failed to update request: %v", ErrInternal, err)
		}

		cancelled = bookingRequest
		released = ids
		return nil
	})
	if err != nil {
		if domain.IsDomainError(err) {
			uc.logger.Warn("CancelRequest: request id=%d not cancelled: %v", req.RequestID, err)
		} else {
			uc.logger.Error("CancelRequest: request id=%d: %v", req.RequestID, err)
		}
		return nil, err
	}

	uc.metrics.RecordTransition(string(domain.EventCancel))
	uc.logger.Info("CancelRequest: request id=%d cancelled, released bookings=%v", cancelled.ID, released)

	// 3. Данные для уведомлений читаются после фиксации
	venue, err := uc.venueRepo.GetByID(ctx, cancelled.VenueID)
	if err != nil && !errors.Is(err, venueRepo.ErrVenueNotFound) {
		uc.logger.Error("CancelRequest: failed to get venue id=%d: %v", cancelled.VenueID, err)
	}

	var displaced []*domain.BookingRequest
	if len(cancelled.ConflictingRequests) > 0 {
		displaced, err = uc.requestRepo.GetByIDs(ctx, cancelled.ConflictingRequests)
		if err != nil {
			uc.logger.Error("CancelRequest: failed to get conflicting requests %v: %v", cancelled.ConflictingRequests, err)
		}
	}

	report := uc.sender.Send(ctx, uc.dispatcher.Build(notifications.EventCancelled, cancelled, venue, displaced))
	if !report.OK() {
		uc.logger.Warn("CancelRequest: %v", report.Err())
	}

	notified := make([]int64, 0, len(displaced))
	for _, r := range displaced {
		if r.Status == domain.StatusRejected {
			notified = append(notified, r.ID)
		}
	}

	return &Response{
		ID:                 cancelled.ID,
		Email:              cancelled.Email,
		Status:             string(cancelled.Status),
		ReleasedBookingIDs: released,
		NotifiedRequestIDs: notified,
		DeliveryFailures:   report.Messages(),
		CancelledAt:        now,
	}, nil
}
