package approve_request

import (
	approveRequest "github.com/m04kA/SMC-VenueBookingService/internal/usecase/approve_request"
)

// DisplacedRequestResponse заявка, отклоненная из-за пересечения слотов
type DisplacedRequestResponse struct {
	ID          int64    `json:"id"`
	Email       string   `json:"email"`
	CCA         string   `json:"cca"`
	TimingSlots []int    `json:"timingSlots"`
	TimeRanges  []string `json:"timeRanges"`
}

// ApproveResponse HTTP response model
type ApproveResponse struct {
	ID                  int64                      `json:"id"`
	Email               string                     `json:"email"`
	VenueID             int64                      `json:"venueId"`
	VenueName           string                     `json:"venueName"`
	Date                string                     `json:"date"`
	TimingSlots         []int                      `json:"timingSlots"`
	TimeRanges          []string                   `json:"timeRanges"`
	Status              string                     `json:"status"`
	BookingIDs          []int64                    `json:"bookingIds"`
	ConflictingRequests []DisplacedRequestResponse `json:"conflictingRequests"`
	DeliveryFailures    []string                   `json:"deliveryFailures,omitempty"`
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *approveRequest.Response) *ApproveResponse {
	return &ApproveResponse{
		ID:                  resp.ID,
		Email:               resp.Email,
		VenueID:             resp.VenueID,
		VenueName:           resp.VenueName,
		Date:                resp.Date.String(),
		TimingSlots:         resp.TimingSlots,
		TimeRanges:          resp.TimeRanges,
		Status:              resp.Status,
		BookingIDs:          resp.BookingIDs,
		ConflictingRequests: FromDisplaced(resp.ConflictingRequests),
		DeliveryFailures:    resp.DeliveryFailures,
	}
}

// FromDisplaced конвертирует список вытесненных заявок
func FromDisplaced(list []approveRequest.DisplacedRequest) []DisplacedRequestResponse {
	out := make([]DisplacedRequestResponse, 0, len(list))
	for _, d := range list {
		out = append(out, DisplacedRequestResponse{
			ID:          d.ID,
			Email:       d.Email,
			CCA:         d.CCA,
			TimingSlots: d.TimingSlots,
			TimeRanges:  d.TimeRanges,
		})
	}
	return out
}
