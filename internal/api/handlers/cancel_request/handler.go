package cancel_request

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-VenueBookingService/internal/api/handlers"
	"github.com/m04kA/SMC-VenueBookingService/internal/domain"
	cancelRequest "github.com/m04kA/SMC-VenueBookingService/internal/usecase/cancel_request"
)

const (
	msgInvalidRequestID = "некорректный ID заявки"
	msgNotFound         = "заявка не найдена"
	msgAlreadyCancelled = "бронирование уже отменено"
	msgAlreadyRejected  = "заявка отклонена, отменять нечего"
	msgCannotCancel     = "отменить можно только одобренную заявку"
	msgPastDeadline     = "срок отмены бронирования истек"
)

type Handler struct {
	useCase CancelRequestUseCase
	logger  Logger
}

func NewHandler(useCase CancelRequestUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle GET|PATCH /api/v1/booking-requests/{requestId}/cancel
// GET обслуживает ссылку из письма об одобрении
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	requestID, err := strconv.ParseInt(mux.Vars(r)["requestId"], 10, 64)
	if err != nil {
		h.logger.Warn("%s /booking-requests/{id}/cancel - Invalid request ID: %v", r.Method, err)
		handlers.RespondBadRequest(w, msgInvalidRequestID)
		return
	}

	result, err := h.useCase.Execute(r.Context(), &cancelRequest.Request{RequestID: requestID})
	if err != nil {
		switch {
		case errors.Is(err, cancelRequest.ErrInvalidInput):
			handlers.RespondBadRequest(w, msgInvalidRequestID)

		case errors.Is(err, domain.ErrNotFound):
			handlers.RespondNotFound(w, msgNotFound)

		case errors.Is(err, domain.ErrAlreadyCancelled):
			handlers.RespondConflict(w, msgAlreadyCancelled)

		case errors.Is(err, domain.ErrAlreadyRejected):
			handlers.RespondConflict(w, msgAlreadyRejected)

		case errors.Is(err, domain.ErrInvalidStateTransition):
			h.logger.Warn("%s /booking-requests/{id}/cancel - Not approved: request_id=%d, error=%v", r.Method, requestID, err)
			handlers.RespondConflict(w, msgCannotCancel)

		case errors.Is(err, domain.ErrPastDeadline):
			h.logger.Warn("%s /booking-requests/{id}/cancel - Past deadline: request_id=%d", r.Method, requestID)
			handlers.RespondConflict(w, msgPastDeadline)

		default:
			h.logger.Error("%s /booking-requests/{id}/cancel - Failed to cancel: request_id=%d, error=%v",
				r.Method, requestID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("%s /booking-requests/{id}/cancel - Cancelled: request_id=%d, released=%v",
		r.Method, requestID, result.ReleasedBookingIDs)
	handlers.RespondJSON(w, http.StatusOK, FromUseCaseResponse(result))
}
