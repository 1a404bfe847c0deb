package approval_intent

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
)

type Handler struct {
	useCase ApprovalPreviewUseCase
	logger  Logger
}

func NewHandler(useCase ApprovalPreviewUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle GET /api/v1/booking-requests/{requestId}/approval-intent
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	requestID, err := strconv.ParseInt(mux.Vars(r)["requestId"], 10, 64)
	if err != nil {
		h.logger.Warn("GET /booking-requests/{id}/approval-intent - Invalid request ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestID)
		return
	}

	result, err := h.useCase.Preview(r.Context(), &approveRequest.Request{RequestID: requestID})
	if err != nil {
		switch {
		case errors.Is(err, approveRequest.ErrInvalidInput):
			handlers.RespondBadRequest(w, msgInvalidRequestID)

		case errors.Is(err, domain.ErrNotFound):
			handlers.RespondNotFound(w, msgNotFound)

		case errors.Is(err, domain.ErrInvalidVenue):
			handlers.RespondNotFound(w, msgVenueNotFound)

		case errors.Is(err, domain.ErrInvalidStateTransition):
			handlers.RespondConflict(w, msgNotPending)

		default:
			h.logger.Error("GET /booking-requests/{id}/approval-intent - Failed: request_id=%d, error=%v",
				requestID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	handlers.RespondJSON(w, http.StatusOK, FromUseCaseResponse(result))
}
