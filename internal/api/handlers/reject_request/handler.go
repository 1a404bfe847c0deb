package reject_request

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-VenueBookingService/internal/api/handlers"
	"github.com/m04kA/SMC-VenueBookingService/internal/domain"
	rejectRequest "github.com/m04kA/SMC-VenueBookingService/internal/usecase/reject_request"
)

const (
	msgInvalidRequestID   = "некорректный ID заявки"
	msgInvalidRequestBody = "некорректное тело запроса"
	msgInvalidReason      = "причина отклонения обязательна и не длиннее 500 символов"
	msgNotFound           = "заявка не найдена"
	msgNotPending         = "заявка не ожидает рассмотрения"
)

type Handler struct {
	useCase RejectRequestUseCase
	logger  Logger
}

func NewHandler(useCase RejectRequestUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /api/v1/booking-requests/{requestId}/reject
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	requestID, err := strconv.ParseInt(mux.Vars(r)["requestId"], 10, 64)
	if err != nil {
		h.logger.Warn("POST /booking-requests/{id}/reject - Invalid request ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestID)
		return
	}

	var body RejectRequestBody
	if err := handlers.DecodeJSON(r, &body); err != nil {
		h.logger.Warn("POST /booking-requests/{id}/reject - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	result, err := h.useCase.Execute(r.Context(), &rejectRequest.Request{RequestID: requestID, Reason: body.Reason})
	if err != nil {
		switch {
		case errors.Is(err, rejectRequest.ErrInvalidInput):
			h.logger.Warn("POST /booking-requests/{id}/reject - Invalid input: %v", err)
			handlers.RespondBadRequest(w, msgInvalidReason)

		case errors.Is(err, domain.ErrNotFound):
			handlers.RespondNotFound(w, msgNotFound)

		case errors.Is(err, domain.ErrInvalidStateTransition):
			h.logger.Warn("POST /booking-requests/{id}/reject - Not pending: request_id=%d, error=%v", requestID, err)
			handlers.RespondConflict(w, msgNotPending)

		default:
			h.logger.Error("POST /booking-requests/{id}/reject - Failed to reject: request_id=%d, error=%v",
				requestID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /booking-requests/{id}/reject - Rejected: request_id=%d", requestID)
	handlers.RespondJSON(w, http.StatusOK, FromUseCaseResponse(result))
}
