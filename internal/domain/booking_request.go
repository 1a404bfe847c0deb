package domain

import (
	"fmt"
	"time"

	"github.com/m04kA/SMC-VenueBookingService/pkg/types"
)

// RequestStatus is the lifecycle state of a booking request
type RequestStatus string

const (
	StatusPending   RequestStatus = "pending"
	StatusApproved  RequestStatus = "approved"
	StatusRejected  RequestStatus = "rejected"
	StatusCancelled RequestStatus = "cancelled"
)

// ParseRequestStatus validates a status string
func ParseRequestStatus(s string) (RequestStatus, error) {
	switch st := RequestStatus(s); st {
	case StatusPending, StatusApproved, StatusRejected, StatusCancelled:
		return st, nil
	}
	return "", fmt.Errorf("unknown request status %q", s)
}

// IsTerminal returns true for statuses no event can leave
func (s RequestStatus) IsTerminal() bool {
	return s == StatusRejected || s == StatusCancelled
}

// LifecycleEvent drives a status transition
type LifecycleEvent string

const (
	EventApprove        LifecycleEvent = "approve"
	EventReject         LifecycleEvent = "reject"
	EventConflictReject LifecycleEvent = "conflict_reject"
	EventCancel         LifecycleEvent = "cancel"
)

var transitions = map[RequestStatus]map[LifecycleEvent]RequestStatus{
	StatusPending: {
		EventApprove:        StatusApproved,
		EventReject:         StatusRejected,
		EventConflictReject: StatusRejected,
	},
	StatusApproved: {
		EventCancel: StatusCancelled,
	},
}

// Next returns the status reached from s by event.
// Events on terminal statuses fail with ErrAlreadyCancelled or ErrAlreadyRejected.
func (s RequestStatus) Next(event LifecycleEvent) (RequestStatus, error) {
	if next, ok := transitions[s][event]; ok {
		return next, nil
	}

	switch s {
	case StatusCancelled:
		return "", fmt.Errorf("%w: cannot %s", ErrAlreadyCancelled, event)
	case StatusRejected:
		return "", fmt.Errorf("%w: cannot %s", ErrAlreadyRejected, event)
	}
	return "", fmt.Errorf("%w: cannot %s a %s request", ErrInvalidStateTransition, event, s)
}

// BookingRequest is a user's proposal to occupy a venue for a set of slots on one date
type BookingRequest struct {
	ID          int64
	Email       string
	CCA         *string
	Notes       *string
	VenueID     int64
	Date        types.UnixDate
	TimingSlots SlotSet
	Status      RequestStatus

	// One booking per slot, only while Approved
	BookingIDs []int64

	// Requests auto-rejected because this one was approved over them.
	// Weak references, consumed when this request is cancelled.
	ConflictingRequests []int64

	RejectionReason *string
	// Approving request that displaced this one (conflict rejections only)
	RejectedBy *int64

	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewBookingRequest creates a request in Pending status
func NewBookingRequest(email string, cca, notes *string, venueID int64, date types.UnixDate, slots SlotSet) (*BookingRequest, error) {
	if len(slots) == 0 {
		return nil, fmt.Errorf("%w: empty slot set", ErrInvalidSlotSet)
	}
	return &BookingRequest{
		Email:       email,
		CCA:         cca,
		Notes:       notes,
		VenueID:     venueID,
		Date:        date,
		TimingSlots: slots,
		Status:      StatusPending,
	}, nil
}

// Apply moves the request to the status reached by event.
// It changes nothing but Status; callers use the event methods below.
func (r *BookingRequest) Apply(event LifecycleEvent) error {
	next, err := r.Status.Next(event)
	if err != nil {
		return err
	}
	r.Status = next
	return nil
}

// Approve marks the request approved with one booking id per requested slot
func (r *BookingRequest) Approve(bookingIDs []int64) error {
	if _, err := r.Status.Next(EventApprove); err != nil {
		return err
	}
	if len(bookingIDs) != len(r.TimingSlots) {
		return fmt.Errorf("%w: %d bookings for %d slots", ErrInvariantViolation, len(bookingIDs), len(r.TimingSlots))
	}

	if err := r.Apply(EventApprove); err != nil {
		return err
	}
	r.BookingIDs = append([]int64(nil), bookingIDs...)
	return nil
}

// Reject marks the request rejected by an admin
func (r *BookingRequest) Reject(reason string) error {
	if err := r.Apply(EventReject); err != nil {
		return err
	}
	r.RejectionReason = &reason
	return nil
}

// RejectByConflict marks the request rejected because approving took its slots
func (r *BookingRequest) RejectByConflict(approving *BookingRequest) error {
	if err := r.Apply(EventConflictReject); err != nil {
		return err
	}

	reason := fmt.Sprintf("Slot(s) %s on %s were allocated to booking request #%d",
		r.TimingSlots.Intersect(approving.TimingSlots), r.Date, approving.ID)
	approvingID := approving.ID
	r.RejectionReason = &reason
	r.RejectedBy = &approvingID
	return nil
}

// RecordConflict links a displaced request to this approved one
func (r *BookingRequest) RecordConflict(displacedID int64) {
	for _, id := range r.ConflictingRequests {
		if id == displacedID {
			return
		}
	}
	r.ConflictingRequests = append(r.ConflictingRequests, displacedID)
}

// CancellationDeadline is the last instant cancel is permitted:
// the start of the booking date in loc, moved earlier by cutoff.
func (r *BookingRequest) CancellationDeadline(loc *time.Location, cutoff time.Duration) time.Time {
	return r.Date.StartIn(loc).Add(-cutoff)
}

// CanCancel checks status and deadline without changing the request
func (r *BookingRequest) CanCancel(now time.Time, cutoff time.Duration) error {
	if _, err := r.Status.Next(EventCancel); err != nil {
		return err
	}
	deadline := r.CancellationDeadline(now.Location(), cutoff)
	if now.After(deadline) {
		return fmt.Errorf("%w: deadline was %s", ErrPastDeadline, deadline.Format(time.RFC3339))
	}
	return nil
}

// Cancel marks the request cancelled and returns the booking ids to release
func (r *BookingRequest) Cancel(now time.Time, cutoff time.Duration) ([]int64, error) {
	if err := r.CanCancel(now, cutoff); err != nil {
		return nil, err
	}
	if err := r.Apply(EventCancel); err != nil {
		return nil, err
	}

	released := r.BookingIDs
	r.BookingIDs = nil
	return released, nil
}

// IsConflictRejected returns true if the request was displaced by another approval
func (r *BookingRequest) IsConflictRejected() bool {
	return r.Status == StatusRejected && r.RejectedBy != nil
}

// CCALabel returns the organisation label or "Personal"
func (r *BookingRequest) CCALabel() string {
	if r.CCA == nil || *r.CCA == "" {
		return PersonalCCA
	}
	return *r.CCA
}

// CheckInvariant verifies the bookings and links agree with the status
func (r *BookingRequest) CheckInvariant() error {
	if len(r.TimingSlots) == 0 {
		return fmt.Errorf("%w: request %d has no slots", ErrInvariantViolation, r.ID)
	}

	switch r.Status {
	case StatusApproved:
		if len(r.BookingIDs) != len(r.TimingSlots) {
			return fmt.Errorf("%w: approved request %d has %d bookings for %d slots",
				ErrInvariantViolation, r.ID, len(r.BookingIDs), len(r.TimingSlots))
		}
	case StatusPending, StatusRejected, StatusCancelled:
		if len(r.BookingIDs) != 0 {
			return fmt.Errorf("%w: %s request %d holds bookings", ErrInvariantViolation, r.Status, r.ID)
		}
	default:
		return fmt.Errorf("%w: unknown status %q", ErrInvariantViolation, r.Status)
	}

	if len(r.ConflictingRequests) > 0 && r.Status != StatusApproved && r.Status != StatusCancelled {
		return fmt.Errorf("%w: %s request %d has conflict links", ErrInvariantViolation, r.Status, r.ID)
	}
	return nil
}

// SameVenueDate returns true if both requests compete for the same venue-day
func (r *BookingRequest) SameVenueDate(other *BookingRequest) bool {
	return r.VenueID == other.VenueID && r.Date == other.Date
}

// ConflictsWith returns true if other is a different request for overlapping slots of the same venue-day
func (r *BookingRequest) ConflictsWith(other *BookingRequest) bool {
	return r.ID != other.ID && r.SameVenueDate(other) && r.TimingSlots.Overlaps(other.TimingSlots)
}

// RequestFilter selects booking requests for listing
type RequestFilter struct {
	VenueID *int64
	Date    *types.UnixDate
	Status  *RequestStatus
	Email   *string
	Limit   uint64
	Offset  uint64
}
