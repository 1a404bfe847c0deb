package create_request

import (
	"context"
	"fmt"

	"github.com/m04kA/SMC-VenueBookingService/internal/domain"
	"github.com/m04kA/SMC-VenueBookingService/internal/service/notifications"
)

// UseCase use case для создания заявки на бронирование
type UseCase struct {
	requestRepo  RequestRepository
	availability AvailabilityChecker
	approver     Approver
	dispatcher   Dispatcher
	sender       Sender
	txManager    TransactionManager
	clock        Clock
	logger       Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	requestRepo RequestRepository,
	availability AvailabilityChecker,
	approver Approver,
	dispatcher Dispatcher,
	sender Sender,
	txManager TransactionManager,
	clock Clock,
	logger Logger,
) *UseCase {
	return &UseCase{
		requestRepo:  requestRepo,
		availability: availability,
		approver:     approver,
		dispatcher:   dispatcher,
		sender:       sender,
		txManager:    txManager,
		clock:        clock,
		logger:       logger,
	}
}

// Execute создает заявку в статусе Pending.
// Проверка доступности здесь рекомендательная: окончательно слоты закрепляются только при одобрении.
// Заявка приоритетного заявителя одобряется сразу в той же транзакции.
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("CreateRequest: email=%s, venue=%d, date=%s, slots=%v",
		req.Email, req.VenueID, req.Date, req.TimingSlots)

	// 1. Валидация входных данных
	slots, err := validateRequest(req)
	if err != nil {
		uc.logger.Warn("CreateRequest: validation failed: %v", err)
		return nil, err
	}

	// 2. Дата не должна быть в прошлом
	if err := validateDate(req.Date, uc.clock.Now()); err != nil {
		uc.logger.Warn("CreateRequest: %v", err)
		return nil, err
	}

	// 3. Получаем видимую площадку
	venue, err := uc.availability.GetVisibleVenue(ctx, req.VenueID)
	if err != nil {
		return nil, uc.wrap("failed to get venue", err)
	}

	// 4. Слоты должны попадать в часы работы площадки
	if err := slots.Validate(venue.OpeningHours); err != nil {
		uc.logger.Warn("CreateRequest: slots %s rejected for venue id=%d: %v", slots, venue.ID, err)
		return nil, err
	}

	// 5. Рекомендательная проверка: уже одобренные слоты не принимаем
	if err := uc.availability.Ensure(ctx, venue.ID, req.Date, slots); err != nil {
		return nil, uc.wrap("failed to check availability", err)
	}

	bookingRequest, err := domain.NewBookingRequest(req.Email, req.CCA, req.Notes, venue.ID, req.Date, slots)
	if err != nil {
		return nil, err
	}

	priority := venue.IsPriority(req.Email)

	var (
		created   *domain.BookingRequest
		displaced []*domain.BookingRequest
	)

	// 6. Сохраняем заявку и, для приоритетного заявителя, сразу одобряем
	err = uc.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		saved, err := uc.requestRepo.Create(txCtx, bookingRequest)
		if err != nil {
			uc.logger.Error("CreateRequest: failed to create booking request: %v", err)
			return fmt.Errorf("%w: failed to create booking request: %v", ErrInternal, err)
		}
		created = saved

		if !priority {
			return nil
		}

		uc.logger.Info("CreateRequest: %s is a priority requester for venue id=%d, approving request id=%d",
			req.Email, venue.ID, saved.ID)

		result, err := uc.approver.Approve(txCtx, saved.ID)
		if err != nil {
			return err
		}
		created = result.Request
		displaced = result.Displaced
		return nil
	})
	if err != nil {
		return nil, uc.wrap("failed to save booking request", err)
	}

	uc.logger.Info("CreateRequest: successfully created booking request id=%d, status=%s", created.ID, created.Status)

	// 7. Уведомления отправляются после фиксации и не откатывают ее
	event := notifications.EventCreated
	if priority {
		event = notifications.EventInstantApproved
	}
	report := uc.sender.Send(ctx, uc.dispatcher.Build(event, created, venue, displaced))
	if !report.OK() {
		uc.logger.Warn("CreateRequest: %v", report.Err())
	}

	return toResponse(created, venue, priority, report), nil
}

// wrap пропускает доменные ошибки как есть, остальные оборачивает в ErrInternal
func (uc *UseCase) wrap(op string, err error) error {
	if domain.IsDomainError(err) {
		uc.logger.Warn("CreateRequest: %s: %v", op, err)
		return err
	}
	uc.logger.Error("CreateRequest: %s: %v", op, err)
	return fmt.Errorf("%w: %s: %v", ErrInternal, op, err)
}

func toResponse(req *domain.BookingRequest, venue *domain.Venue, instant bool, report notifications.Report) *Response {
	slots := make([]int, len(req.TimingSlots))
	for i, s := range req.TimingSlots {
		slots[i] = int(s)
	}

	return &Response{
		ID:                  req.ID,
		Email:               req.Email,
		CCA:                 req.CCALabel(),
		Notes:               req.Notes,
		VenueID:             req.VenueID,
		VenueName:           venue.Name,
		Date:                req.Date,
		TimingSlots:         slots,
		TimeRanges:          req.TimingSlots.Labels(),
		Status:              string(req.Status),
		BookingIDs:          req.BookingIDs,
		ConflictingRequests: req.ConflictingRequests,
		InstantlyApproved:   instant,
		DeliveryFailures:    report.Messages(),
		CreatedAt:           req.CreatedAt,
		UpdatedAt:           req.UpdatedAt,
	}
}
