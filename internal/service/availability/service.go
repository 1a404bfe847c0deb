package availability

import (
	"context"
	"errors"
	"fmt"

	"github.com/m04kA/SMC-VenueBookingService/internal/domain"
	venueRepo "github.com/m04kA/SMC-VenueBookingService/internal/infra/storage/venue"
	"github.com/m04kA/SMC-VenueBookingService/pkg/types"
)

// Service проверяет, свободны ли слоты площадки на дату.
// Учитываются только материализованные бронирования (одобренные заявки),
// ожидающие заявки друг другу не мешают.
type Service struct {
	venueRepo   VenueRepository
	bookingRepo BookingRepository
	logger      Logger
}

// NewService создает новый экземпляр сервиса доступности
func NewService(venueRepo VenueRepository, bookingRepo BookingRepository, logger Logger) *Service {
	return &Service{
		venueRepo:   venueRepo,
		bookingRepo: bookingRepo,
		logger:      logger,
	}
}

// GetVisibleVenue получает видимую площадку.
// Отсутствующая или скрытая площадка - domain.ErrInvalidVenue.
func (s *Service) GetVisibleVenue(ctx context.Context, venueID int64) (*domain.Venue, error) {
	venue, err := s.venueRepo.GetVisibleByID(ctx, venueID)
	if err != nil {
		if errors.Is(err, venueRepo.ErrVenueNotFound) {
			s.logger.Warn("GetVisibleVenue: venue id=%d not found or hidden", venueID)
			return nil, fmt.Errorf("%w: venue id=%d", domain.ErrInvalidVenue, venueID)
		}
		s.logger.Error("GetVisibleVenue: repository error for venue id=%d: %v", venueID, err)
		return nil, fmt.Errorf("%w: GetVisibleVenue - repository error: %v", ErrInternal, err)
	}
	return venue, nil
}

// IsAvailable возвращает true, если ни один из слотов не занят одобренным бронированием.
// Ошибка domain.ErrInvalidVenue отличается от ответа false (слот занят).
func (s *Service) IsAvailable(ctx context.Context, venueID int64, date types.UnixDate, slots domain.SlotSet) (bool, error) {
	if len(slots) == 0 {
		return false, fmt.Errorf("%w: empty slot set", domain.ErrInvalidSlotSet)
	}

	if _, err := s.GetVisibleVenue(ctx, venueID); err != nil {
		return false, err
	}

	taken, err := s.TakenSlots(ctx, venueID, date, slots)
	if err != nil {
		return false, err
	}

	return len(taken) == 0, nil
}

// Ensure возвращает domain.ErrSlotUnavailable со списком занятых слотов,
// если хотя бы один из slots занят
func (s *Service) Ensure(ctx context.Context, venueID int64, date types.UnixDate, slots domain.SlotSet) error {
	taken, err := s.TakenSlots(ctx, venueID, date, slots)
	if err != nil {
		return err
	}
	if len(taken) > 0 {
		s.logger.Warn("Ensure: venue=%d date=%s slots %s already booked", venueID, date, taken)
		return fmt.Errorf("%w: %s on %s", domain.ErrSlotUnavailable, taken, date)
	}
	return nil
}

// TakenSlots возвращает слоты из slots, уже занятые бронированиями
func (s *Service) TakenSlots(ctx context.Context, venueID int64, date types.UnixDate, slots domain.SlotSet) (domain.SlotSet, error) {
	bookings, err := s.bookingRepo.GetByVenueAndDate(ctx, venueID, date)
	if err != nil {
		s.logger.Error("TakenSlots: failed to get bookings venue=%d date=%s: %v", venueID, date, err)
		return nil, fmt.Errorf("%w: TakenSlots - repository error: %v", ErrInternal, err)
	}

	return domain.OccupiedSlots(bookings).Intersect(slots), nil
}
