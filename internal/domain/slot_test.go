package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustSlots(t *testing.T, slots ...TimeSlot) SlotSet {
	t.Helper()
	set, err := NewSlotSet(slots...)
	require.NoError(t, err)
	return set
}

func TestNewSlotSet(t *testing.T) {
	set, err := NewSlotSet(5, 2, 5, 3)
	require.NoError(t, err)
	assert.Equal(t, SlotSet{2, 3, 5}, set)

	_, err = NewSlotSet()
	assert.ErrorIs(t, err, ErrInvalidSlotSet)

	_, err = NewSlotSet(1, SlotsPerDay)
	assert.ErrorIs(t, err, ErrInvalidSlotSet)

	_, err = NewSlotSet(-1)
	assert.ErrorIs(t, err, ErrInvalidSlotSet)
}

func TestSlotSetOverlaps(t *testing.T) {
	tests := []struct {
		name string
		a, b SlotSet
		want bool
	}{
		{"shared slot", SlotSet{1, 2}, SlotSet{2, 3}, true},
		{"disjoint", SlotSet{1, 2}, SlotSet{3, 4}, false},
		{"identical", SlotSet{7}, SlotSet{7}, true},
		{"interleaved", SlotSet{1, 3, 5}, SlotSet{2, 4, 6}, false},
		{"empty", nil, SlotSet{1}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.a.Overlaps(tt.b))
			assert.Equal(t, tt.want, tt.b.Overlaps(tt.a))
		})
	}
}

func TestSlotSetIntersectAndContains(t *testing.T) {
	a := mustSlots(t, 1, 2, 3)
	b := mustSlots(t, 2, 3, 4)

	assert.Equal(t, SlotSet{2, 3}, a.Intersect(b))
	assert.True(t, a.Contains(1))
	assert.False(t, a.Contains(4))
	assert.True(t, a.Equal(mustSlots(t, 3, 2, 1)))
	assert.False(t, a.Equal(b))
}

func TestTimeSlotLabel(t *testing.T) {
	assert.Equal(t, "0000-0030", TimeSlot(0).Label())
	assert.Equal(t, "0800-0830", TimeSlot(16).Label())
	assert.Equal(t, "2330-2400", TimeSlot(SlotsPerDay-1).Label())
	assert.Equal(t, "0800-0830,0830-0900", mustSlots(t, 17, 16).String())
}

func TestSlotSetValidate(t *testing.T) {
	morning := mustSlots(t, 16, 17) // 08:00-09:00

	assert.NoError(t, morning.Validate("0800-2200"))
	assert.NoError(t, morning.Validate("08:00-09:00"))
	assert.NoError(t, morning.Validate(""))
	assert.ErrorIs(t, morning.Validate("0830-2200"), ErrInvalidSlotSet)
	assert.ErrorIs(t, morning.Validate("0600-0845"), ErrInvalidSlotSet)
	assert.ErrorIs(t, SlotSet(nil).Validate("0800-2200"), ErrInvalidSlotSet)
	assert.ErrorIs(t, morning.Validate("garbage"), ErrInvalidVenue)
	assert.ErrorIs(t, morning.Validate("2200-0800"), ErrInvalidVenue)
}

func TestSlotSetFromInts(t *testing.T) {
	set, err := SlotSetFromInts([]int64{3, 1})
	require.NoError(t, err)
	assert.Equal(t, SlotSet{1, 3}, set)
	assert.Equal(t, []int64{1, 3}, set.Ints())
}

func TestOccupiedSlots(t *testing.T) {
	bookings := []*Booking{{Slot: 4}, {Slot: 2}, {Slot: 4}}
	assert.Equal(t, SlotSet{2, 4}, OccupiedSlots(bookings))
	assert.Nil(t, OccupiedSlots(nil))
}

func TestVenueIsPriority(t *testing.T) {
	v := &Venue{PriorityEmails: []string{"Admin@u.edu"}}
	assert.True(t, v.IsPriority("admin@u.edu"))
	assert.False(t, v.IsPriority("other@u.edu"))
}
