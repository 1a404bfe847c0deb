package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidVenue venue is missing or not visible
	ErrInvalidVenue = errors.New("domain: invalid venue")

	// ErrInvalidSlotSet slot selection is empty or malformed
	ErrInvalidSlotSet = errors.New("domain: invalid slot set")

	// ErrSlotUnavailable requested slots are occupied by an approved booking
	ErrSlotUnavailable = errors.New("domain: slot unavailable")

	// ErrInvalidStateTransition event is not permitted from the current status
	ErrInvalidStateTransition = errors.New("domain: invalid state transition")

	// ErrAlreadyCancelled request is already cancelled
	ErrAlreadyCancelled = fmt.Errorf("%w: already cancelled", ErrInvalidStateTransition)

	// ErrAlreadyRejected request is already rejected
	ErrAlreadyRejected = fmt.Errorf("%w: already rejected", ErrInvalidStateTransition)

	// ErrPastDeadline cancellation attempted after the cutoff
	ErrPastDeadline = errors.New("domain: cancellation deadline has passed")

	// ErrNotFound referenced request, booking or venue does not exist
	ErrNotFound = errors.New("domain: not found")

	// ErrDeliveryFailure downstream notification could not be sent
	ErrDeliveryFailure = errors.New("domain: notification delivery failure")

	// ErrInvariantViolation request fields disagree with its status
	ErrInvariantViolation = errors.New("domain: booking request invariant violated")
)

// IsDomainError reports whether err is a caller-facing lifecycle error
// rather than an infrastructure failure
func IsDomainError(err error) bool {
	for _, target := range []error{
		ErrInvalidVenue,
		ErrInvalidSlotSet,
		ErrSlotUnavailable,
		ErrInvalidStateTransition,
		ErrPastDeadline,
		ErrNotFound,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
