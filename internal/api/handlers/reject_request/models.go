package reject_request

import (
	rejectRequest "github.com/m04kA/SMC-VenueBookingService/internal/usecase/reject_request"
)

// RejectRequestBody HTTP request model
type RejectRequestBody struct {
	Reason string `json:"reason"`
}

// RejectResponse HTTP response model
type RejectResponse struct {
	ID               int64    `json:"id"`
	Email            string   `json:"email"`
	Status           string   `json:"status"`
	RejectionReason  string   `json:"rejectionReason"`
	DeliveryFailures []string `json:"deliveryFailures,omitempty"`
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *rejectRequest.Response) *RejectResponse {
	return &RejectResponse{
		ID:               resp.ID,
		Email:            resp.Email,
		Status:           resp.Status,
		RejectionReason:  resp.RejectionReason,
		DeliveryFailures: resp.DeliveryFailures,
	}
}
