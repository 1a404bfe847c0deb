package create_request

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-VenueBookingService/internal/api/handlers"
	"github.com/m04kA/SMC-VenueBookingService/internal/domain"
	createRequest "github.com/m04kA/SMC-VenueBookingService/internal/usecase/create_request"
)

const (
	msgInvalidRequestBody = "некорректное тело запроса"
	msgInvalidDate        = "некорректный формат даты бронирования, ожидается YYYY-MM-DD"
	msgInvalidInput       = "некорректные данные заявки"
	msgDateInPast         = "дата бронирования уже прошла"
	msgInvalidSlots       = "некорректный набор временных слотов"
	msgVenueNotFound      = "площадка не найдена"
	msgSlotUnavailable    = "выбранные временные слоты уже заняты"
)

type Handler struct {
	useCase CreateRequestUseCase
	logger  Logger
}

func NewHandler(useCase CreateRequestUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /api/v1/booking-requests
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	var req CreateBookingRequestRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /booking-requests - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	useCaseReq, err := req.ToUseCaseRequest()
	if err != nil {
		h.logger.Warn("POST /booking-requests - Failed to parse date: %v", err)
		handlers.RespondBadRequest(w, msgInvalidDate)
		return
	}

	result, err := h.useCase.Execute(r.Context(), useCaseReq)
	if err != nil {
		switch {
		case errors.Is(err, createRequest.ErrInvalidInput):
			h.logger.Warn("POST /booking-requests - Invalid input: %v", err)
			handlers.RespondBadRequest(w, msgInvalidInput)

		case errors.Is(err, createRequest.ErrDateInPast):
			h.logger.Warn("POST /booking-requests - Date in the past: date=%s", req.Date)
			handlers.RespondBadRequest(w, msgDateInPast)

		case errors.Is(err, domain.ErrInvalidSlotSet):
			h.logger.Warn("POST /booking-requests - Invalid slots: %v", err)
			handlers.RespondBadRequest(w, msgInvalidSlots)

		case errors.Is(err, domain.ErrInvalidVenue):
			h.logger.Warn("POST /booking-requests - Venue not found: venue_id=%d", req.VenueID)
			handlers.RespondNotFound(w, msgVenueNotFound)

		case errors.Is(err, domain.ErrSlotUnavailable):
			h.logger.Warn("POST /booking-requests - Slots unavailable: venue_id=%d, date=%s", req.VenueID, req.Date)
			handlers.RespondConflict(w, msgSlotUnavailable)

		default:
			h.logger.Error("POST /booking-requests - Failed to create booking request: venue_id=%d, error=%v",
				req.VenueID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /booking-requests - Booking request created: id=%d, venue_id=%d, status=%s",
		result.ID, result.VenueID, result.Status)
	handlers.RespondJSON(w, http.StatusCreated, FromUseCaseResponse(result))
}
