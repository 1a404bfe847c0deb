package domain

import (
	"fmt"
	"sort"
	"strings"

	"github.com/m04kA/SMC-VenueBookingService/pkg/types"
)

// TimeSlot is an index into the fixed per-day schedule of SlotDurationMinutes buckets.
// Slot 0 starts at 00:00, slot SlotsPerDay-1 ends at 24:00.
type TimeSlot int

// Valid returns true if the slot is inside the day schedule
func (s TimeSlot) Valid() bool {
	return s >= 0 && s < SlotsPerDay
}

// Start returns the time of day the slot begins
func (s TimeSlot) Start() types.TimeString {
	t, _ := types.NewTimeStringFromMinutes(int(s) * SlotDurationMinutes)
	return t
}

// End returns the time of day the slot ends
func (s TimeSlot) End() types.TimeString {
	t, _ := types.NewTimeStringFromMinutes((int(s) + 1) * SlotDurationMinutes)
	return t
}

// Label returns a human readable range, e.g. "0800-0830"
func (s TimeSlot) Label() string {
	return s.Start().Compact() + "-" + s.End().Compact()
}

// SlotSet is a sorted, duplicate-free set of slots for one venue and date.
// The zero value is an empty (invalid) set.
type SlotSet []TimeSlot

// NewSlotSet builds a SlotSet; order of input is irrelevant and duplicates collapse.
// Returns ErrInvalidSlotSet if the set is empty or a slot is out of range.
func NewSlotSet(slots ...TimeSlot) (SlotSet, error) {
	if len(slots) == 0 {
		return nil, fmt.Errorf("%w: empty slot set", ErrInvalidSlotSet)
	}

	seen := make(map[TimeSlot]struct{}, len(slots))
	set := make(SlotSet, 0, len(slots))
	for _, slot := range slots {
		if !slot.Valid() {
			return nil, fmt.Errorf("%w: slot %d out of range 0..%d", ErrInvalidSlotSet, slot, SlotsPerDay-1)
		}
		if _, ok := seen[slot]; ok {
			continue
		}
		seen[slot] = struct{}{}
		set = append(set, slot)
	}

	sort.Slice(set, func(i, j int) bool { return set[i] < set[j] })
	return set, nil
}

// SlotSetFromInts converts stored slot numbers into a SlotSet
func SlotSetFromInts(values []int64) (SlotSet, error) {
	slots := make([]TimeSlot, len(values))
	for i, v := range values {
		slots[i] = TimeSlot(v)
	}
	return NewSlotSet(slots...)
}

// Ints returns slot numbers suitable for storage
func (s SlotSet) Ints() []int64 {
	out := make([]int64, len(s))
	for i, slot := range s {
		out[i] = int64(slot)
	}
	return out
}

// Len returns the number of slots
func (s SlotSet) Len() int {
	return len(s)
}

// Contains reports whether slot is in the set
func (s SlotSet) Contains(slot TimeSlot) bool {
	i := sort.Search(len(s), func(i int) bool { return s[i] >= slot })
	return i < len(s) && s[i] == slot
}

// Overlaps returns true iff the intersection with other is non-empty
func (s SlotSet) Overlaps(other SlotSet) bool {
	i, j := 0, 0
	for i < len(s) && j < len(other) {
		switch {
		case s[i] == other[j]:
			return true
		case s[i] < other[j]:
			i++
		default:
			j++
		}
	}
	return false
}

// Intersect returns the slots present in both sets
func (s SlotSet) Intersect(other SlotSet) SlotSet {
	var out SlotSet
	i, j := 0, 0
	for i < len(s) && j < len(other) {
		switch {
		case s[i] == other[j]:
			out = append(out, s[i])
			i++
			j++
		case s[i] < other[j]:
			i++
		default:
			j++
		}
	}
	return out
}

// Equal returns true if both sets hold the same slots
func (s SlotSet) Equal(other SlotSet) bool {
	if len(s) != len(other) {
		return false
	}
	for i := range s {
		if s[i] != other[i] {
			return false
		}
	}
	return true
}

// Labels returns the Label of every slot in order
func (s SlotSet) Labels() []string {
	out := make([]string, len(s))
	for i, slot := range s {
		out[i] = slot.Label()
	}
	return out
}

// String joins slot labels with commas
func (s SlotSet) String() string {
	return strings.Join(s.Labels(), ",")
}

// Validate checks the set is non-empty and every slot lies within venue opening hours
func (s SlotSet) Validate(openingHours string) error {
	if len(s) == 0 {
		return fmt.Errorf("%w: empty slot set", ErrInvalidSlotSet)
	}

	hours, err := ParseOpeningHours(openingHours)
	if err != nil {
		return err
	}

	for _, slot := range s {
		if !slot.Valid() {
			return fmt.Errorf("%w: slot %d out of range", ErrInvalidSlotSet, slot)
		}
		if !hours.Contains(slot) {
			return fmt.Errorf("%w: slot %s outside opening hours %s", ErrInvalidSlotSet, slot.Label(), hours)
		}
	}
	return nil
}

// OpeningHours is the daily window a venue accepts bookings in
type OpeningHours struct {
	Open  types.TimeString
	Close types.TimeString
}

// ParseOpeningHours parses "HHMM-HHMM" (or "HH:MM-HH:MM").
// An empty string means the venue is open all day.
func ParseOpeningHours(s string) (OpeningHours, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		open, _ := types.NewTimeStringFromMinutes(0)
		end, _ := types.NewTimeStringFromMinutes(SlotsPerDay * SlotDurationMinutes)
		return OpeningHours{Open: open, Close: end}, nil
	}

	parts := strings.Split(s, "-")
	if len(parts) != 2 {
		return OpeningHours{}, fmt.Errorf("%w: malformed opening hours %q", ErrInvalidVenue, s)
	}

	open, err := types.NewTimeStringFromString(strings.TrimSpace(parts[0]))
	if err != nil {
		return OpeningHours{}, fmt.Errorf("%w: malformed opening hours %q", ErrInvalidVenue, s)
	}
	end, err := types.NewTimeStringFromString(strings.TrimSpace(parts[1]))
	if err != nil {
		return OpeningHours{}, fmt.Errorf("%w: malformed opening hours %q", ErrInvalidVenue, s)
	}
	if !open.IsBefore(end) {
		return OpeningHours{}, fmt.Errorf("%w: opening hours %q close before they open", ErrInvalidVenue, s)
	}

	return OpeningHours{Open: open, Close: end}, nil
}

// Contains reports whether the whole slot fits inside the window
func (h OpeningHours) Contains(slot TimeSlot) bool {
	return !slot.Start().IsBefore(h.Open) && !slot.End().IsAfter(h.Close)
}

func (h OpeningHours) String() string {
	return h.Open.Compact() + "-" + h.Close.Compact()
}
