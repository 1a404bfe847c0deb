package conflicts

import (
	"context"
	"fmt"
	"sort"

	"github.com/m04kA/SMC-VenueBookingService/internal/domain"
)

// Service находит и отклоняет ожидающие заявки, пересекающиеся с одобряемой.
// Побеждает первая одобренная заявка, а не первая созданная.
type Service struct {
	requestRepo RequestRepository
	logger      Logger
}

// NewService создает новый экземпляр сервиса разрешения конфликтов
func NewService(requestRepo RequestRepository, logger Logger) *Service {
	return &Service{
		requestRepo: requestRepo,
		logger:      logger,
	}
}

// FindConflicts возвращает ожидающие заявки той же площадки и даты,
// слоты которых пересекаются с approving, в порядке создания. Ничего не изменяет.
func (s *Service) FindConflicts(ctx context.Context, approving *domain.BookingRequest) ([]*domain.BookingRequest, error) {
	pending, err := s.requestRepo.FindPendingByVenueAndDate(ctx, approving.VenueID, approving.Date)
	if err != nil {
		s.logger.Error("FindConflicts: failed to get pending requests venue=%d date=%s: %v",
			approving.VenueID, approving.Date, err)
		return nil, fmt.Errorf("%w: FindConflicts - repository error: %v", ErrInternal, err)
	}

	conflicts := make([]*domain.BookingRequest, 0, len(pending))
	for _, other := range pending {
		if other.Status == domain.StatusPending && approving.ConflictsWith(other) {
			conflicts = append(conflicts, other)
		}
	}

	sort.SliceStable(conflicts, func(i, j int) bool {
		if conflicts[i].CreatedAt.Equal(conflicts[j].CreatedAt) {
			return conflicts[i].ID < conflicts[j].ID
		}
		return conflicts[i].CreatedAt.Before(conflicts[j].CreatedAt)
	})

	return conflicts, nil
}

// Resolve отклоняет все конфликтующие заявки и записывает их ID в approving.ConflictingRequests.
// Вызывается внутри транзакции одобрения; сохранение approving остается за вызывающим.
// Возвращает вытесненные заявки в порядке обработки.
func (s *Service) Resolve(ctx context.Context, approving *domain.BookingRequest) ([]*domain.BookingRequest, error) {
	conflicts, err := s.FindConflicts(ctx, approving)
	if err != nil {
		return nil, err
	}

	for _, displaced := range conflicts {
		if err := displaced.RejectByConflict(approving); err != nil {
			return nil, fmt.Errorf("Resolve: request id=%d: %w", displaced.ID, err)
		}

		if err := s.requestRepo.Update(ctx, displaced); err != nil {
			s.logger.Error("Resolve: failed to reject request id=%d: %v", displaced.ID, err)
			return nil, fmt.Errorf("%w: Resolve - update request id=%d: %v", ErrInternal, displaced.ID, err)
		}

		approving.RecordConflict(displaced.ID)
		s.logger.Info("Resolve: request id=%d rejected by conflict with approved request id=%d",
			displaced.ID, approving.ID)
	}

	return conflicts, nil
}
