package reject_request

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/m04kA/SMC-VenueBookingService/internal/domain"
	requestRepo "github.com/m04kA/SMC-VenueBookingService/internal/infra/storage/booking_request"
	venueRepo "github.com/m04kA/SMC-VenueBookingService/internal/infra/storage/venue"
	"github.com/m04kA/SMC-VenueBookingService/internal/service/notifications"
)

// UseCase use case для отклонения заявки администратором
type UseCase struct {
	requestRepo RequestRepository
	venueRepo   VenueRepository
	dispatcher  Dispatcher
	sender      Sender
	txManager   TransactionManager
	metrics     Metrics
	logger      Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	requestRepo RequestRepository,
	venueRepo VenueRepository,
	dispatcher Dispatcher,
	sender Sender,
	txManager TransactionManager,
	metrics Metrics,
	logger Logger,
) *UseCase {
	return &UseCase{
		requestRepo: requestRepo,
		venueRepo:   venueRepo,
		dispatcher:  dispatcher,
		sender:      sender,
		txManager:   txManager,
		metrics:     metrics,
		logger:      logger,
	}
}

// Execute отклоняет ожидающую заявку с указанной причиной
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("RejectRequest: request id=%d", req.RequestID)

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("RejectRequest: validation failed: %v", err)
		return nil, err
	}

	var rejected *domain.BookingRequest

	// 2. Переход Pending -> Rejected
	err := uc.txManager.Do(ctx, func(txCtx context.Context) error {
		bookingRequest, err := uc.requestRepo.GetByID(txCtx, req.RequestID)
		if err != nil {
			if errors.Is(err, requestRepo.ErrRequestNotFound) {
				return fmt.Errorf("%w: booking request id=%d", domain.ErrNotFound, req.RequestID)
			}
			return fmt.Errorf("%w: failed to get request: %v", ErrInternal, err)
		}

		if err := bookingRequest.Reject(req.Reason); err != nil {
			return err
		}

		if err := uc.requestRepo.Update(txCtx, bookingRequest); err != nil {
			return fmt.Errorf("%w: failed to update request: %v", ErrInternal, err)
		}

		rejected = bookingRequest
		return nil
	})
	if err != nil {
		if domain.IsDomainError(err) {
			uc.logger.Warn("RejectRequest: request id=%d not rejected: %v", req.RequestID, err)
		} else {
			uc.logger.Error("RejectRequest: request id=%d: %v", req.RequestID, err)
		}
		return nil, err
	}

	uc.metrics.RecordTransition(string(domain.EventReject))
	uc.logger.Info("RejectRequest: request id=%d rejected", rejected.ID)

	// 3. Площадка нужна только для текста уведомлений; скрытая площадка тоже подходит
	venue, err := uc.venueRepo.GetByID(ctx, rejected.VenueID)
	if err != nil && !errors.Is(err, venueRepo.ErrVenueNotFound) {
		uc.logger.Error("RejectRequest: failed to get venue id=%d: %v", rejected.VenueID, err)
	}

	report := uc.sender.Send(ctx, uc.dispatcher.Build(notifications.EventRejected, rejected, venue, nil))
	if !report.OK() {
		uc.logger.Warn("RejectRequest: %v", report.Err())
	}

	return &Response{
		ID:               rejected.ID,
		Email:            rejected.Email,
		Status:           string(rejected.Status),
		RejectionReason:  req.Reason,
		DeliveryFailures: report.Messages(),
	}, nil
}

// validateRequest валидирует входные данные запроса
func validateRequest(req *Request) error {
	if req.RequestID <= 0 {
		return fmt.Errorf("%w: requestId must be positive", ErrInvalidInput)
	}

	req.Reason = strings.TrimSpace(req.Reason)
	if req.Reason == "" {
		return fmt.Errorf("%w: reason is required", ErrInvalidInput)
	}
	if utf8.RuneCountInString(req.Reason) > domain.MaxRejectionReasonLength {
		return fmt.Errorf("%w: reason is longer than %d characters", ErrInvalidInput, domain.MaxRejectionReasonLength)
	}

	return nil
}
