package approve_request

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-VenueBookingService/internal/api/handlers"
	"github.com/m04kA/SMC-VenueBookingService/internal/domain"
	approveRequest "github.com/m04kA/SMC-VenueBookingService/internal/usecase/approve_request"
)

const (
	msgInvalidRequestID = "некорректный ID заявки"
	msgNotFound         = "заявка не найдена"
	msgVenueNotFound    = "площадка не найдена или скрыта"
	msgNotPending       = "заявка не ожидает рассмотрения"
	msgSlotUnavailable  = "выбранные временные слоты уже заняты"
)

type Handler struct {
	useCase ApproveRequestUseCase
	logger  Logger
}

func NewHandler(useCase ApproveRequestUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /api/v1/booking-requests/{requestId}/approve
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	requestID, err := strconv.ParseInt(mux.Vars(r)["requestId"], 10, 64)
	if err != nil {
		h.logger.Warn("POST /booking-requests/{id}/approve - Invalid request ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestID)
		return
	}

	result, err := h.useCase.Execute(r.Context(), &approveRequest.Request{RequestID: requestID})
	if err != nil {
		switch {
		case errors.Is(err, approveRequest.ErrInvalidInput):
			handlers.RespondBadRequest(w, msgInvalidRequestID)

		case errors.Is(err, domain.ErrNotFound):
			h.logger.Warn("POST /booking-requests/{id}/approve - Not found: request_id=%d", requestID)
			handlers.RespondNotFound(w, msgNotFound)

		case errors.Is(err, domain.ErrInvalidVenue):
			h.logger.Warn("POST /booking-requests/{id}/approve - Venue invalid: request_id=%d", requestID)
			handlers.RespondNotFound(w, msgVenueNotFound)

		case errors.Is(err, domain.ErrInvalidStateTransition):
			h.logger.Warn("POST /booking-requests/{id}/approve - Not pending: request_id=%d, error=%v", requestID, err)
			handlers.RespondConflict(w, msgNotPending)

		case errors.Is(err, domain.ErrSlotUnavailable):
			h.logger.Warn("POST /booking-requests/{id}/approve - Slots unavailable: request_id=%d", requestID)
			handlers.RespondConflict(w, msgSlotUnavailable)

		default:
			h.logger.Error("POST /booking-requests/{id}/approve - Failed to approve: request_id=%d, error=%v",
				requestID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /booking-requests/{id}/approve - Approved: request_id=%d, displaced=%d",
		requestID, len(result.ConflictingRequests))
	handlers.RespondJSON(w, http.StatusOK, FromUseCaseResponse(result))
}
