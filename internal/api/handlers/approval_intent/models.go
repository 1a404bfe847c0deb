package approval_intent

import (
	approveHandler "github.com/m04kA/SMC-VenueBookingService/internal/api/handlers/approve_request"
	approveRequest "github.com/m04kA/SMC-VenueBookingService/internal/usecase/approve_request"
)

// ApprovalIntentResponse HTTP response model
type ApprovalIntentResponse struct {
	ID            int64                                     `json:"id"`
	Email         string                                    `json:"email"`
	VenueID       int64                                     `json:"venueId"`
	VenueName     string                                    `json:"venueName"`
	Date          string                                    `json:"date"`
	TimingSlots   []int                                     `json:"timingSlots"`
	TimeRanges    []string                                  `json:"timeRanges"`
	Status        string                                    `json:"status"`
	Approvable    bool                                      `json:"approvable"`
	TakenSlots    []string                                  `json:"takenSlots"`
	WouldDisplace []approveHandler.DisplacedRequestResponse `json:"wouldDisplace"`
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *approveRequest.PreviewResponse) *ApprovalIntentResponse {
	return &ApprovalIntentResponse{
		ID:            resp.ID,
		Email:         resp.Email,
		VenueID:       resp.VenueID,
		VenueName:     resp.VenueName,
		Date:          resp.Date.String(),
		TimingSlots:   resp.TimingSlots,
		TimeRanges:    resp.TimeRanges,
		Status:        resp.Status,
		Approvable:    resp.Approvable,
		TakenSlots:    resp.TakenSlots,
		WouldDisplace: approveHandler.FromDisplaced(resp.WouldDisplace),
	}
}
