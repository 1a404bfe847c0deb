package approve_request

import (
	"context"
	"errors"
	"fmt"

	"github.com/m04kA/SMC-VenueBookingService/internal/domain"
	requestRepo "github.com/m04kA/SMC-VenueBookingService/internal/infra/storage/booking_request"
	"github.com/m04kA/SMC-VenueBookingService/internal/service/notifications"
)

// UseCase use case для одобрения заявки администратором
type UseCase struct {
	requestRepo  RequestRepository
	approver     Approver
	availability AvailabilityChecker
	conflicts    ConflictFinder
	dispatcher   Dispatcher
	sender       Sender
	logger       Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	requestRepo RequestRepository,
	approver Approver,
	availability AvailabilityChecker,
	conflicts ConflictFinder,
	dispatcher Dispatcher,
	sender Sender,
	logger Logger,
) *UseCase {
	return &UseCase{
		requestRepo:  requestRepo,
		approver:     approver,
		availability: availability,
		conflicts:    conflicts,
		dispatcher:   dispatcher,
		sender:       sender,
		logger:       logger,
	}
}

// Execute одобряет заявку: создает бронирования, вытесняет пересекающиеся
// ожидающие заявки и после фиксации рассылает уведомления
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("ApproveRequest: request id=%d", req.RequestID)

	// 1. Валидация входных данных
	if req.RequestID <= 0 {
		return nil, fmt.Errorf("%w: requestId must be positive", ErrInvalidInput)
	}

	// 2. Одобрение в сериализуемой транзакции
	result, err := uc.approver.Approve(ctx, req.RequestID)
	if err != nil {
		if domain.IsDomainError(err) {
			uc.logger.Warn("ApproveRequest: request id=%d not approved: %v", req.RequestID, err)
			return nil, err
		}
		uc.logger.Error("ApproveRequest: failed to approve request id=%d: %v", req.RequestID, err)
		return nil, fmt.Errorf("%w: failed to approve request: %v", ErrInternal, err)
	}

	// 3. Уведомления: одобренному, в канал и каждому вытесненному
	report := uc.sender.Send(ctx, uc.dispatcher.Build(notifications.EventApproved, result.Request, result.Venue, result.Displaced))
	if !report.OK() {
		uc.logger.Warn("ApproveRequest: %v", report.Err())
	}

	approved := result.Request
	return &Response{
		ID:                  approved.ID,
		Email:               approved.Email,
		VenueID:             approved.VenueID,
		VenueName:           result.Venue.Name,
		Date:                approved.Date,
		TimingSlots:         slotInts(approved.TimingSlots),
		TimeRanges:          approved.TimingSlots.Labels(),
		Status:              string(approved.Status),
		BookingIDs:          approved.BookingIDs,
		ConflictingRequests: toDisplaced(result.Displaced),
		DeliveryFailures:    report.Messages(),
	}, nil
}

// Preview возвращает намерение одобрения: доступность слотов и заявки,
// которые будут вытеснены. Ничего не изменяет.
func (uc *UseCase) Preview(ctx context.Context, req *Request) (*PreviewResponse, error) {
	uc.logger.Info("ApproveRequest: preview for request id=%d", req.RequestID)

	if req.RequestID <= 0 {
		return nil, fmt.Errorf("%w: requestId must be positive", ErrInvalidInput)
	}

	// 1. Получаем заявку
	bookingRequest, err := uc.requestRepo.GetByID(ctx, req.RequestID)
	if err != nil {
		if errors.Is(err, requestRepo.ErrRequestNotFound) {
			uc.logger.Warn("ApproveRequest: request id=%d not found", req.RequestID)
			return nil, fmt.Errorf("%w: booking request id=%d", domain.ErrNotFound, req.RequestID)
		}
		uc.logger.Error("ApproveRequest: failed to get request id=%d: %v", req.RequestID, err)
		return nil, fmt.Errorf("%w: failed to get request: %v", ErrInternal, err)
	}

	// 2. Одобрить можно только ожидающую заявку
	if _, err := bookingRequest.Status.Next(domain.EventApprove); err != nil {
		uc.logger.Warn("ApproveRequest: request id=%d is %s", req.RequestID, bookingRequest.Status)
		return nil, err
	}

	venue, err := uc.availability.GetVisibleVenue(ctx, bookingRequest.VenueID)
	if err != nil {
		return nil, uc.wrap("failed to get venue", err)
	}

	// 3. Занятые слоты и заявки, которые будут вытеснены
	taken, err := uc.availability.TakenSlots(ctx, bookingRequest.VenueID, bookingRequest.Date, bookingRequest.TimingSlots)
	if err != nil {
		return nil, uc.wrap("failed to check availability", err)
	}

	conflicts, err := uc.conflicts.FindConflicts(ctx, bookingRequest)
	if err != nil {
		return nil, uc.wrap("failed to find conflicts", err)
	}

	return &PreviewResponse{
		ID:            bookingRequest.ID,
		Email:         bookingRequest.Email,
		VenueID:       bookingRequest.VenueID,
		VenueName:     venue.Name,
		Date:          bookingRequest.Date,
		TimingSlots:   slotInts(bookingRequest.TimingSlots),
		TimeRanges:    bookingRequest.TimingSlots.Labels(),
		Status:        string(bookingRequest.Status),
		Approvable:    len(taken) == 0,
		TakenSlots:    taken.Labels(),
		WouldDisplace: toDisplaced(conflicts),
	}, nil
}

func (uc *UseCase) wrap(op string, err error) error {
	if domain.IsDomainError(err) {
		uc.logger.Warn("ApproveRequest: %s: %v", op, err)
		return err
	}
	uc.logger.Error("ApproveRequest: %s: %v", op, err)
	return fmt.Errorf("%w: %s: %v", ErrInternal, op, err)
}

func toDisplaced(list []*domain.BookingRequest) []DisplacedRequest {
	out := make([]DisplacedRequest, 0, len(list))
	for _, r := range list {
		out = append(out, DisplacedRequest{
			ID:          r.ID,
			Email:       r.Email,
			CCA:         r.CCALabel(),
			TimingSlots: slotInts(r.TimingSlots),
			TimeRanges:  r.TimingSlots.Labels(),
		})
	}
	return out
}

func slotInts(slots domain.SlotSet) []int {
	out := make([]int, len(slots))
	for i, s := range slots {
		out[i] = int(s)
	}
	return out
}
