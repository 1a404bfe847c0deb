package domain

import (
	"sort"
	"time"

	"github.com/m04kA/SMC-VenueBookingService/pkg/types"
)

// Booking is an exclusive occupation of one (venue, date, slot).
// Created only by approval, removed only when the owning request is cancelled.
type Booking struct {
	ID               int64
	VenueID          int64
	Date             types.UnixDate
	Slot             TimeSlot
	BookingRequestID int64
	CreatedAt        time.Time
}

// BookingsFor builds one unsaved Booking per slot of an approving request
func BookingsFor(req *BookingRequest) []*Booking {
	out := make([]*Booking, 0, len(req.TimingSlots))
	for _, slot := range req.TimingSlots {
		out = append(out, &Booking{
			VenueID:          req.VenueID,
			Date:             req.Date,
			Slot:             slot,
			BookingRequestID: req.ID,
		})
	}
	return out
}

// OccupiedSlots collects the slots held by bookings
func OccupiedSlots(bookings []*Booking) SlotSet {
	if len(bookings) == 0 {
		return nil
	}
	seen := make(map[TimeSlot]struct{}, len(bookings))
	set := make(SlotSet, 0, len(bookings))
	for _, b := range bookings {
		if _, ok := seen[b.Slot]; ok {
			continue
		}
		seen[b.Slot] = struct{}{}
		set = append(set, b.Slot)
	}
	sort.Slice(set, func(i, j int) bool { return set[i] < set[j] })
	return set
}
