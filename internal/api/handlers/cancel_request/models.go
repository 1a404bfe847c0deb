package cancel_request

import (
	"time"

	cancelRequest "github.com/m04kA/SMC-VenueBookingService/internal/usecase/cancel_request"
)

// CancelResponse HTTP response model
type CancelResponse struct {
	ID                 int64    `json:"id"`
	Email              string   `json:"email"`
	Status             string   `json:"status"`
	ReleasedBookingIDs []int64  `json:"releasedBookingIds"`
	NotifiedRequestIDs []int64  `json:"notifiedRequestIds"`
	DeliveryFailures   []string `json:"deliveryFailures,omitempty"`
	CancelledAt        string   `json:"cancelledAt"`
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *cancelRequest.Response) *CancelResponse {
	return &CancelResponse{
		ID:                 resp.ID,
		Email:              resp.Email,
		Status:             resp.Status,
		ReleasedBookingIDs: resp.ReleasedBookingIDs,
		NotifiedRequestIDs: resp.NotifiedRequestIDs,
		DeliveryFailures:   resp.DeliveryFailures,
		CancelledAt:        resp.CancelledAt.Format(time.RFC3339),
	}
}
