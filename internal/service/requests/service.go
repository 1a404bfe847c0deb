package requests

import (
	"context"
	"errors"
	"fmt"

	requestRepo "github.com/m04kA/SMC-VenueBookingService/internal/infra/storage/booking_request"
	"github.com/m04kA/SMC-VenueBookingService/internal/service/requests/models"
)

// DefaultListLimit ограничение выборки, если лимит не указан
const DefaultListLimit = 100

// MaxListLimit максимальный размер страницы
const MaxListLimit = 500

// Service сервис чтения заявок на бронирование
type Service struct {
	requestRepo RequestRepository
	logger      Logger
}

// NewService создает новый экземпляр сервиса заявок
func NewService(requestRepo RequestRepository, logger Logger) *Service {
	return &Service{
		requestRepo: requestRepo,
		logger:      logger,
	}
}

// GetByID получает заявку по ID
func (s *Service) GetByID(ctx context.Context, id int64) (*models.BookingRequestResponse, error) {
	s.logger.Info("GetByID: fetching booking request id=%d", id)

	req, err := s.requestRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, requestRepo.ErrRequestNotFound) {
			s.logger.Warn("GetByID: booking request id=%d not found", id)
			return nil, ErrRequestNotFound
		}
		s.logger.Error("GetByID: repository error for booking request id=%d: %v", id, err)
		return nil, fmt.Errorf("%w: GetByID - repository error: %v", ErrInternal, err)
	}

	return models.FromDomainRequest(req), nil
}

// List получает заявки с фильтрацией по площадке, дате, статусу и email
func (s *Service) List(ctx context.Context, req *models.ListRequestsRequest) (*models.BookingRequestListResponse, error) {
	s.logger.Info("List: fetching booking requests venue=%v date=%v status=%v",
		req.VenueID, req.Date, req.Status)

	filter, err := req.ToDomainFilter()
	if err != nil {
		s.logger.Warn("List: invalid filter: %v", err)
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	switch {
	case filter.Limit == 0:
		filter.Limit = DefaultListLimit
	case filter.Limit > MaxListLimit:
		filter.Limit = MaxListLimit
	}

	list, err := s.requestRepo.List(ctx, filter)
	if err != nil {
		s.logger.Error("List: repository error: %v", err)
		return nil, fmt.Errorf("%w: List - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("List: successfully fetched %d booking requests", len(list))
	return models.FromDomainRequestList(list), nil
}
