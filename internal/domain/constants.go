package domain

import "github.com/m04kA/SMC-VenueBookingService/pkg/types"

// Slot schedule
const (
	SlotDurationMinutes = 30
	SlotsPerDay         = 24 * 60 / SlotDurationMinutes
)

// Business validation constants
const (
	MaxNotesLength           = 500
	MaxCCALength             = 100
	MaxRejectionReasonLength = 500
	MaxEmailLength           = 254
)

// Time format constants
const (
	TimeFormat = "15:04"          // HH:MM
	DateFormat = types.DateLayout // YYYY-MM-DD
)

// PersonalCCA label used when a request is not made on behalf of a CCA
const PersonalCCA = "Personal"

// ActiveStatuses are statuses a request can still leave
var ActiveStatuses = []RequestStatus{
	StatusPending,
	StatusApproved,
}

// TerminalStatuses are statuses no event can leave
var TerminalStatuses = []RequestStatus{
	StatusRejected,
	StatusCancelled,
}
