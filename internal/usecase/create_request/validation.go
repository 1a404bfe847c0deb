package create_request

import (
	"fmt"
	"net/mail"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/m04kA/SMC-VenueBookingService/internal/domain"
	"github.com/m04kA/SMC-VenueBookingService/pkg/types"
)

// validateRequest валидирует входные данные и возвращает набор слотов
func validateRequest(req *Request) (domain.SlotSet, error) {
	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" {
		return nil, fmt.Errorf("%w: email is required", ErrInvalidInput)
	}
	if len(req.Email) > domain.MaxEmailLength {
		return nil, fmt.Errorf("%w: email is longer than %d characters", ErrInvalidInput, domain.MaxEmailLength)
	}
	addr, err := mail.ParseAddress(req.Email)
	if err != nil || addr.Address != req.Email {
		return nil, fmt.Errorf("%w: invalid email %q", ErrInvalidInput, req.Email)
	}

	if req.VenueID <= 0 {
		return nil, fmt.Errorf("%w: venueId must be positive", ErrInvalidInput)
	}

	if req.Date.IsZero() {
		return nil, fmt.Errorf("%w: date is required", ErrInvalidInput)
	}

	if req.CCA != nil && utf8.RuneCountInString(*req.CCA) > domain.MaxCCALength {
		return nil, fmt.Errorf("%w: cca is longer than %d characters", ErrInvalidInput, domain.MaxCCALength)
	}

	if req.Notes != nil && utf8.RuneCountInString(*req.Notes) > domain.MaxNotesLength {
		return nil, fmt.Errorf("%w: notes are longer than %d characters", ErrInvalidInput, domain.MaxNotesLength)
	}

	// Пустой набор и индексы вне 0..47 - domain.ErrInvalidSlotSet
	values := make([]int64, len(req.TimingSlots))
	for i, v := range req.TimingSlots {
		values[i] = int64(v)
	}
	slots, err := domain.SlotSetFromInts(values)
	if err != nil {
		return nil, err
	}

	return slots, nil
}

// validateDate проверяет, что дата бронирования не раньше сегодняшней
func validateDate(date types.UnixDate, now time.Time) error {
	today := types.UnixDateOf(now)
	if date < today {
		return fmt.Errorf("%w: %s is before %s", ErrDateInPast, date, today)
	}
	return nil
}
