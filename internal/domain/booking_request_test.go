package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-VenueBookingService/pkg/types"
)

var utc8 = time.FixedZone("", 8*60*60)

func newRequest(t *testing.T, id int64, slots ...TimeSlot) *BookingRequest {
	t.Helper()
	date, err := types.ParseUnixDate("2024-06-10")
	require.NoError(t, err)

	req, err := NewBookingRequest("student@u.nus.edu", nil, nil, 1, date, mustSlots(t, slots...))
	require.NoError(t, err)
	req.ID = id
	return req
}

func TestStatusNext(t *testing.T) {
	tests := []struct {
		from    RequestStatus
		event   LifecycleEvent
		want    RequestStatus
		wantErr error
	}{
		{StatusPending, EventApprove, StatusApproved, nil},
		{StatusPending, EventReject, StatusRejected, nil},
		{StatusPending, EventConflictReject, StatusRejected, nil},
		{StatusPending, EventCancel, "", ErrInvalidStateTransition},
		{StatusApproved, EventCancel, StatusCancelled, nil},
		{StatusApproved, EventApprove, "", ErrInvalidStateTransition},
		{StatusApproved, EventReject, "", ErrInvalidStateTransition},
		{StatusRejected, EventApprove, "", ErrAlreadyRejected},
		{StatusRejected, EventCancel, "", ErrAlreadyRejected},
		{StatusCancelled, EventCancel, "", ErrAlreadyCancelled},
		{StatusCancelled, EventApprove, "", ErrAlreadyCancelled},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"/"+string(tt.event), func(t *testing.T) {
			got, err := tt.from.Next(tt.event)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.ErrorIs(t, err, ErrInvalidStateTransition)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestApprove(t *testing.T) {
	req := newRequest(t, 1, 1, 2)

	err := req.Approve([]int64{10})
	assert.ErrorIs(t, err, ErrInvariantViolation)
	assert.Equal(t, StatusPending, req.Status)

	require.NoError(t, req.Approve([]int64{10, 11}))
	assert.Equal(t, StatusApproved, req.Status)
	assert.Equal(t, []int64{10, 11}, req.BookingIDs)
	assert.NoError(t, req.CheckInvariant())

	assert.ErrorIs(t, req.Approve([]int64{12, 13}), ErrInvalidStateTransition)
}

func TestReject(t *testing.T) {
	req := newRequest(t, 1, 1)

	require.NoError(t, req.Reject("venue under maintenance"))
	assert.Equal(t, StatusRejected, req.Status)
	assert.Equal(t, "venue under maintenance", *req.RejectionReason)
	assert.False(t, req.IsConflictRejected())

	assert.ErrorIs(t, req.Reject("again"), ErrAlreadyRejected)
}

func TestRejectByConflict(t *testing.T) {
	a := newRequest(t, 1, 1, 2)
	b := newRequest(t, 2, 2, 3)

	require.NoError(t, b.RejectByConflict(a))
	a.RecordConflict(b.ID)
	a.RecordConflict(b.ID)

	assert.Equal(t, StatusRejected, b.Status)
	assert.True(t, b.IsConflictRejected())
	assert.Equal(t, int64(1), *b.RejectedBy)
	assert.Contains(t, *b.RejectionReason, "#1")
	assert.Contains(t, *b.RejectionReason, "0100-0130")
	assert.Equal(t, []int64{2}, a.ConflictingRequests)
}

func TestCancel(t *testing.T) {
	dayBefore := time.Date(2024, 6, 9, 10, 0, 0, 0, utc8)
	onDate := time.Date(2024, 6, 10, 10, 0, 0, 0, utc8)
	midnight := time.Date(2024, 6, 10, 0, 0, 0, 0, utc8)

	t.Run("one day before succeeds", func(t *testing.T) {
		req := newRequest(t, 1, 1, 2)
		require.NoError(t, req.Approve([]int64{10, 11}))

		released, err := req.Cancel(dayBefore, 0)
		require.NoError(t, err)
		assert.Equal(t, []int64{10, 11}, released)
		assert.Equal(t, StatusCancelled, req.Status)
		assert.Empty(t, req.BookingIDs)
		assert.NoError(t, req.CheckInvariant())
	})

	t.Run("exactly at start of date succeeds", func(t *testing.T) {
		req := newRequest(t, 1, 1)
		require.NoError(t, req.Approve([]int64{10}))

		_, err := req.Cancel(midnight, 0)
		assert.NoError(t, err)
	})

	t.Run("on date fails", func(t *testing.T) {
		req := newRequest(t, 1, 1)
		require.NoError(t, req.Approve([]int64{10}))

		_, err := req.Cancel(onDate, 0)
		assert.ErrorIs(t, err, ErrPastDeadline)
		assert.Equal(t, StatusApproved, req.Status)
		assert.Equal(t, []int64{10}, req.BookingIDs)
	})

	t.Run("cutoff moves deadline earlier", func(t *testing.T) {
		req := newRequest(t, 1, 1)
		require.NoError(t, req.Approve([]int64{10}))

		_, err := req.Cancel(dayBefore, 24*time.Hour)
		assert.ErrorIs(t, err, ErrPastDeadline)
	})

	t.Run("utc clock is evaluated in its own zone", func(t *testing.T) {
		req := newRequest(t, 1, 1)
		require.NoError(t, req.Approve([]int64{10}))

		// 2024-06-09 17:00 UTC is already 2024-06-10 01:00 UTC+8
		_, err := req.Cancel(time.Date(2024, 6, 9, 17, 0, 0, 0, time.UTC).In(utc8), 0)
		assert.ErrorIs(t, err, ErrPastDeadline)
	})

	t.Run("twice fails", func(t *testing.T) {
		req := newRequest(t, 1, 1)
		require.NoError(t, req.Approve([]int64{10}))
		_, err := req.Cancel(dayBefore, 0)
		require.NoError(t, err)

		_, err = req.Cancel(dayBefore, 0)
		assert.ErrorIs(t, err, ErrAlreadyCancelled)
		assert.ErrorIs(t, err, ErrInvalidStateTransition)
	})

	t.Run("rejected fails", func(t *testing.T) {
		req := newRequest(t, 1, 1)
		require.NoError(t, req.Reject("no"))

		_, err := req.Cancel(dayBefore, 0)
		assert.ErrorIs(t, err, ErrAlreadyRejected)
	})

	t.Run("pending fails", func(t *testing.T) {
		req := newRequest(t, 1, 1)

		_, err := req.Cancel(dayBefore, 0)
		assert.ErrorIs(t, err, ErrInvalidStateTransition)
	})
}

func TestCheckInvariant(t *testing.T) {
	req := newRequest(t, 1, 1, 2)
	assert.NoError(t, req.CheckInvariant())

	req.BookingIDs = []int64{1}
	assert.ErrorIs(t, req.CheckInvariant(), ErrInvariantViolation)

	req.BookingIDs = nil
	req.ConflictingRequests = []int64{5}
	assert.ErrorIs(t, req.CheckInvariant(), ErrInvariantViolation)
}

func TestConflictsWith(t *testing.T) {
	a := newRequest(t, 1, 1, 2)
	b := newRequest(t, 2, 2, 3)
	c := newRequest(t, 3, 4)
	d := newRequest(t, 4, 1)
	d.VenueID = 2

	assert.True(t, a.ConflictsWith(b))
	assert.False(t, a.ConflictsWith(a))
	assert.False(t, a.ConflictsWith(c))
	assert.False(t, a.ConflictsWith(d))
}

func TestCCALabel(t *testing.T) {
	req := newRequest(t, 1, 1)
	assert.Equal(t, "Personal", req.CCALabel())

	cca := "Dance"
	req.CCA = &cca
	assert.Equal(t, "Dance", req.CCALabel())
}

func TestBookingsFor(t *testing.T) {
	req := newRequest(t, 7, 3, 4)
	bookings := BookingsFor(req)

	require.Len(t, bookings, 2)
	assert.Equal(t, TimeSlot(3), bookings[0].Slot)
	assert.Equal(t, int64(7), bookings[1].BookingRequestID)
	assert.Equal(t, req.Date, bookings[1].Date)
}
