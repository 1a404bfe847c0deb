package approval

import (
	"context"
	"errors"
	"fmt"

	"github.com/m04kA/SMC-VenueBookingService/internal/domain"
	bookingRepo "github.com/m04kA/SMC-VenueBookingService/internal/infra/storage/booking"
	requestRepo "github.com/m04kA/SMC-VenueBookingService/internal/infra/storage/booking_request"
)

// Result итог одобрения заявки
type Result struct {
	Request *domain.BookingRequest
	Venue   *domain.Venue
	// Ожидающие заявки, отклоненные из-за пересечения слотов
	Displaced []*domain.BookingRequest
}

// Service одобряет заявки: создает бронирования и вытесняет конфликтующие заявки
// в одной сериализуемой транзакции
type Service struct {
	requestRepo  RequestRepository
	bookingRepo  BookingRepository
	availability AvailabilityChecker
	conflicts    ConflictResolver
	txManager    TransactionManager
	metrics      Metrics
	logger       Logger
}

// NewService создает новый экземпляр сервиса одобрения
func NewService(
	requestRepo RequestRepository,
	bookingRepo BookingRepository,
	availability AvailabilityChecker,
	conflicts ConflictResolver,
	txManager TransactionManager,
	metrics Metrics,
	logger Logger,
) *Service {
	return &Service{
		requestRepo:  requestRepo,
		bookingRepo:  bookingRepo,
		availability: availability,
		conflicts:    conflicts,
		txManager:    txManager,
		metrics:      metrics,
		logger:       logger,
	}
}

// Approve переводит заявку в Approved.
// Если ctx уже содержит транзакцию, одобрение выполняется в ней.
func (s *Service) Approve(ctx context.Context, requestID int64) (*Result, error) {
	s.logger.Info("Approve: approving booking request id=%d", requestID)

	var result *Result

	err := s.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		// 1. Получаем заявку с блокировкой строки
		req, err := s.requestRepo.GetByID(txCtx, requestID)
		if err != nil {
			if errors.Is(err, requestRepo.ErrRequestNotFound) {
				s.logger.Warn("Approve: booking request id=%d not found", requestID)
				return fmt.Errorf("%w: booking request id=%d", domain.ErrNotFound, requestID)
			}
			s.logger.Error("Approve: failed to get booking request id=%d: %v", requestID, err)
			return fmt.Errorf("%w: Approve - failed to get request: %v", ErrInternal, err)
		}

		// 2. Проверяем, что переход разрешен, до любых изменений
		if _, err := req.Status.Next(domain.EventApprove); err != nil {
			s.logger.Warn("Approve: booking request id=%d is %s: %v", requestID, req.Status, err)
			return err
		}

		// 3. Площадка должна существовать и быть видимой
		venue, err := s.availability.GetVisibleVenue(txCtx, req.VenueID)
		if err != nil {
			return err
		}

		// 4. Сериализуем одобрения на одну площадку и дату
		if err := s.bookingRepo.LockVenueDate(txCtx, req.VenueID, req.Date); err != nil {
			s.logger.Error("Approve: failed to lock venue=%d date=%s: %v", req.VenueID, req.Date, err)
			return fmt.Errorf("%w: Approve - failed to lock venue date: %v", ErrInternal, err)
		}

		// 5. Повторная проверка доступности под блокировкой
		if err := s.availability.Ensure(txCtx, req.VenueID, req.Date, req.TimingSlots); err != nil {
			return err
		}

		// 6. Материализуем бронирования, по одному на слот
		created, err := s.bookingRepo.CreateMany(txCtx, domain.BookingsFor(req))
		if err != nil {
			if errors.Is(err, bookingRepo.ErrSlotTaken) {
				s.logger.Warn("Approve: slot taken concurrently for request id=%d: %v", requestID, err)
				return fmt.Errorf("%w: %v", domain.ErrSlotUnavailable, err)
			}
			s.logger.Error("Approve: failed to create bookings for request id=%d: %v", requestID, err)
			return fmt.Errorf("%w: Approve - failed to create bookings: %v", ErrInternal, err)
		}

		ids := make([]int64, 0, len(created))
		for _, b := range created {
			ids = append(ids, b.ID)
		}

		if err := req.Approve(ids); err != nil {
			return err
		}

		// 7. Вытесняем пересекающиеся ожидающие заявки
		displaced, err := s.conflicts.Resolve(txCtx, req)
		if err != nil {
			return err
		}

		if err := req.CheckInvariant(); err != nil {
			s.logger.Error("Approve: %v", err)
			return fmt.Errorf("%w: %v", ErrInternal, err)
		}

		// 8. Сохраняем заявку вместе со списком вытесненных
		if err := s.requestRepo.Update(txCtx, req); err != nil {
			s.logger.Error("Approve: failed to update booking request id=%d: %v", requestID, err)
			return fmt.Errorf("%w: Approve - failed to update request: %v", ErrInternal, err)
		}

		result = &Result{Request: req, Venue: venue, Displaced: displaced}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.RecordTransition(string(domain.EventApprove))
	for range result.Displaced {
		s.metrics.RecordTransition(string(domain.EventConflictReject))
	}

	s.logger.Info("Approve: booking request id=%d approved, bookings=%v, displaced=%v",
		requestID, result.Request.BookingIDs, result.Request.ConflictingRequests)
	return result, nil
}
