package create_request

import (
	"time"

	createRequest "github.com/m04kA/SMC-VenueBookingService/internal/usecase/create_request"
	"github.com/m04kA/SMC-VenueBookingService/pkg/types"
)

// CreateBookingRequestRequest HTTP request model
type CreateBookingRequestRequest struct {
	Email       string  `json:"email"`
	CCA         *string `json:"cca,omitempty"`
	Notes       *string `json:"notes,omitempty"`
	VenueID     int64   `json:"venueId"`
	Date        string  `json:"date"` // "2024-06-10"
	TimingSlots []int   `json:"timingSlots"`
}

// BookingRequestResponse HTTP response model
type BookingRequestResponse struct {
	ID                  int64    `json:"id"`
	Email               string   `json:"email"`
	CCA                 string   `json:"cca"`
	Notes               *string  `json:"notes,omitempty"`
	VenueID             int64    `json:"venueId"`
	VenueName           string   `json:"venueName"`
	Date                string   `json:"date"`
	DateUnix            int64    `json:"dateUnix"`
	TimingSlots         []int    `json:"timingSlots"`
	TimeRanges          []string `json:"timeRanges"`
	Status              string   `json:"status"`
	BookingIDs          []int64  `json:"bookingIds"`
	ConflictingRequests []int64  `json:"conflictingRequests"`
	InstantlyApproved   bool     `json:"instantlyApproved"`
	DeliveryFailures    []string `json:"deliveryFailures,omitempty"`
	CreatedAt           string   `json:"createdAt"`
	UpdatedAt           string   `json:"updatedAt"`
}

// ToUseCaseRequest конвертирует HTTP запрос в модель use case
func (r *CreateBookingRequestRequest) ToUseCaseRequest() (*createRequest.Request, error) {
	date, err := types.ParseUnixDate(r.Date)
	if err != nil {
		return nil, err
	}

	return &createRequest.Request{
		Email:       r.Email,
		CCA:         r.CCA,
		Notes:       r.Notes,
		VenueID:     r.VenueID,
		Date:        date,
		TimingSlots: r.TimingSlots,
	}, nil
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *createRequest.Response) *BookingRequestResponse {
	return &BookingRequestResponse{
		ID:                  resp.ID,
		Email:               resp.Email,
		CCA:                 resp.CCA,
		Notes:               resp.Notes,
		VenueID:             resp.VenueID,
		VenueName:           resp.VenueName,
		Date:                resp.Date.String(),
		DateUnix:            int64(resp.Date),
		TimingSlots:         resp.TimingSlots,
		TimeRanges:          resp.TimeRanges,
		Status:              resp.Status,
		BookingIDs:          nonNil(resp.BookingIDs),
		ConflictingRequests: nonNil(resp.ConflictingRequests),
		InstantlyApproved:   resp.InstantlyApproved,
		DeliveryFailures:    resp.DeliveryFailures,
		CreatedAt:           resp.CreatedAt.Format(time.RFC3339),
		UpdatedAt:           resp.UpdatedAt.Format(time.RFC3339),
	}
}

func nonNil(ids []int64) []int64 {
	if ids == nil {
		return []int64{}
	}
	return ids
}
