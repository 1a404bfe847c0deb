package models

import (
	"time"

	"github.com/m04kA/SMC-VenueBookingService/internal/domain"
	"github.com/m04kA/SMC-VenueBookingService/pkg/types"
)

// Request модели

// ListRequestsRequest фильтр списка заявок
type ListRequestsRequest struct {
	VenueID *int64  `json:"venueId,omitempty"`
	Date    *string `json:"date,omitempty"`   // "2024-06-10"
	Status  *string `json:"status,omitempty"` // pending | approved | rejected | cancelled
	Email   *string `json:"email,omitempty"`
	Limit   uint64  `json:"limit,omitempty"`
	Offset  uint64  `json:"offset,omitempty"`
}

// ToDomainFilter конвертирует request в domain фильтр
func (r *ListRequestsRequest) ToDomainFilter() (domain.RequestFilter, error) {
	filter := domain.RequestFilter{
		VenueID: r.VenueID,
		Email:   r.Email,
		Limit:   r.Limit,
		Offset:  r.Offset,
	}

	if r.Date != nil {
		date, err := types.ParseUnixDate(*r.Date)
		if err != nil {
			return filter, err
		}
		filter.Date = &date
	}

	if r.Status != nil {
		status, err := domain.ParseRequestStatus(*r.Status)
		if err != nil {
			return filter, err
		}
		filter.Status = &status
	}

	return filter, nil
}

// Response модели

// BookingRequestResponse заявка на бронирование
type BookingRequestResponse struct {
	ID                  int64     `json:"id"`
	Email               string    `json:"email"`
	CCA                 string    `json:"cca"`
	Notes               *string   `json:"notes,omitempty"`
	VenueID             int64     `json:"venueId"`
	Date                string    `json:"date"`
	TimingSlots         []int     `json:"timingSlots"`
	TimeRanges          []string  `json:"timeRanges"`
	Status              string    `json:"status"`
	BookingIDs          []int64   `json:"bookingIds"`
	ConflictingRequests []int64   `json:"conflictingRequests"`
	RejectionReason     *string   `json:"rejectionReason,omitempty"`
	RejectedBy          *int64    `json:"rejectedBy,omitempty"`
	CreatedAt           time.Time `json:"createdAt"`
	UpdatedAt           time.Time `json:"updatedAt"`
}

// BookingRequestListResponse список заявок
type BookingRequestListResponse struct {
	BookingRequests []*BookingRequestResponse `json:"bookingRequests"`
	Total           int                       `json:"total"`
}

// FromDomainRequest конвертирует domain модель в response
func FromDomainRequest(req *domain.BookingRequest) *BookingRequestResponse {
	slots := make([]int, len(req.TimingSlots))
	for i, s := range req.TimingSlots {
		slots[i] = int(s)
	}

	return &BookingRequestResponse{
		ID:                  req.ID,
		Email:               req.Email,
		CCA:                 req.CCALabel(),
		Notes:               req.Notes,
		VenueID:             req.VenueID,
		Date:                req.Date.String(),
		TimingSlots:         slots,
		TimeRanges:          req.TimingSlots.Labels(),
		Status:              string(req.Status),
		BookingIDs:          nonNil(req.BookingIDs),
		ConflictingRequests: nonNil(req.ConflictingRequests),
		RejectionReason:     req.RejectionReason,
		RejectedBy:          req.RejectedBy,
		CreatedAt:           req.CreatedAt,
		UpdatedAt:           req.UpdatedAt,
	}
}

// FromDomainRequestList конвертирует список domain моделей в response
func FromDomainRequestList(list []*domain.BookingRequest) *BookingRequestListResponse {
	out := make([]*BookingRequestResponse, len(list))
	for i, req := range list {
		out[i] = FromDomainRequest(req)
	}
	return &BookingRequestListResponse{
		BookingRequests: out,
		Total:           len(out),
	}
}

func nonNil(ids []int64) []int64 {
	if ids == nil {
		return []int64{}
	}
	return ids
}
