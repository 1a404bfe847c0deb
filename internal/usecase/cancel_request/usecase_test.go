package cancel_request

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-VenueBookingService/internal/domain"
	"github.com/m04kA/SMC-VenueBookingService/internal/testutil"
	"github.com/m04kA/SMC-VenueBookingService/internal/testutil/env"
)

func newUseCase(t *testing.T, e *env.Env, now string, cutoff time.Duration) *UseCase {
	return NewUseCase(
		e.Store,
		e.Store,
		e.Store.Venues(),
		e.Dispatcher,
		e.Sender,
		e.Store,
		env.Clock(t, now),
		cutoff,
		e.Metrics,
		e.Logger,
	)
}

func TestExecute_ReleasesSlotsAndNotifiesDisplaced(t *testing.T) {
	e := env.New(t)
	uc := newUseCase(t, e, "2024-06-09 10:00", 0)

	b := e.Pending(t, "bob@x.com", e.Hall.ID, "2024-06-10", 4)
	c := e.Pending(t, "carol@x.com", e.Hall.ID, "2024-06-10", 5)
	a := e.Approved(t, "alice@x.com", e.Hall.ID, "2024-06-10", 4, 5)
	require.ElementsMatch(t, []int64{b.ID, c.ID}, a.ConflictingRequests)
	e.Mailer.Sent = nil

	resp, err := uc.Execute(context.Background(), &Request{RequestID: a.ID})
	require.NoError(t, err)

	assert.Equal(t, "cancelled", resp.Status)
	assert.Len(t, resp.ReleasedBookingIDs, 2)
	assert.ElementsMatch(t, []int64{b.ID, c.ID}, resp.NotifiedRequestIDs)
	assert.Empty(t, resp.DeliveryFailures)

	stored := e.Store.Request(a.ID)
	assert.Equal(t, domain.StatusCancelled, stored.Status)
	assert.Empty(t, stored.BookingIDs)
	assert.Empty(t, e.Store.AllBookings())
	e.RequireDisjointBookings(t)

	// Слоты снова свободны
	ok, err := e.Availability.IsAvailable(context.Background(), e.Hall.ID, testutil.Date(t, "2024-06-10"), testutil.Slots(t, 4, 5))
	require.NoError(t, err)
	assert.True(t, ok)

	require.Len(t, e.Mailer.SentTo("alice@x.com"), 1)
	assert.Contains(t, e.Mailer.SentTo("alice@x.com")[0].Subject, "[CANCELLED]")
	for _, email := range []string{"bob@x.com", "carol@x.com"} {
		sent := e.Mailer.SentTo(email)
		require.Len(t, sent, 1, email)
		assert.Contains(t, sent[0].Subject, "[NOTIFICATION]")
	}

	// Вытесненные заявки остаются отклоненными
	assert.Equal(t, domain.StatusRejected, e.Store.Request(b.ID).Status)
}

func TestExecute_Deadline(t *testing.T) {
	tests := []struct {
		name    string
		now     string
		cutoff  time.Duration
		wantErr error
	}{
		{name: "one day before", now: "2024-06-09 10:00"},
		{name: "last minute of the previous day", now: "2024-06-09 23:59"},
		{name: "start of the booking date", now: "2024-06-10 00:00"},
		{name: "on the booking date", now: "2024-06-10 09:00", wantErr: domain.ErrPastDeadline},
		{name: "after the booking date", now: "2024-06-12 09:00", wantErr: domain.ErrPastDeadline},
		{name: "inside a one day cutoff", now: "2024-06-09 10:00", cutoff: 24 * time.Hour, wantErr: domain.ErrPastDeadline},
		{name: "before a one day cutoff", now: "2024-06-08 23:00", cutoff: 24 * time.Hour},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := env.New(t)
			uc := newUseCase(t, e, tt.now, tt.cutoff)
			a := e.Approved(t, "a@x.com", e.Hall.ID, "2024-06-10", 30)

			_, err := uc.Execute(context.Background(), &Request{RequestID: a.ID})
			if tt.wantErr == nil {
				require.NoError(t, err)
				assert.Empty(t, e.Store.AllBookings())
				return
			}

			assert.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, domain.StatusApproved, e.Store.Request(a.ID).Status)
			assert.Len(t, e.Store.AllBookings(), 1)
		})
	}
}

func TestExecute_InvalidTransitions(t *testing.T) {
	e := env.New(t)
	uc := newUseCase(t, e, "2024-06-09 10:00", 0)

	a := e.Approved(t, "a@x.com", e.Hall.ID, "2024-06-10", 1)
	pending := e.Pending(t, "p@x.com", e.Hall.ID, "2024-06-10", 2)

	_, err := uc.Execute(context.Background(), &Request{RequestID: a.ID})
	require.NoError(t, err)

	_, err = uc.Execute(context.Background(), &Request{RequestID: a.ID})
	assert.ErrorIs(t, err, domain.ErrAlreadyCancelled)
	assert.ErrorIs(t, err, domain.ErrInvalidStateTransition)

	_, err = uc.Execute(context.Background(), &Request{RequestID: pending.ID})
	assert.ErrorIs(t, err, domain.ErrInvalidStateTransition)

	_, err = uc.Execute(context.Background(), &Request{RequestID: 999})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = uc.Execute(context.Background(), &Request{RequestID: -1})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestExecute_RollbackKeepsBookings(t *testing.T) {
	e := env.New(t)
	uc := newUseCase(t, e, "2024-06-09 10:00", 0)
	a := e.Approved(t, "a@x.com", e.Hall.ID, "2024-06-10", 1, 2)
	e.Store.FailUpdateFor[a.ID] = errors.New("serialization failure")

	_, err := uc.Execute(context.Background(), &Request{RequestID: a.ID})
	assert.ErrorIs(t, err, ErrInternal)

	stored := e.Store.Request(a.ID)
	assert.Equal(t, domain.StatusApproved, stored.Status)
	assert.Len(t, stored.BookingIDs, 2)
	assert.Len(t, e.Store.AllBookings(), 2)
	e.RequireDisjointBookings(t)
}

func TestExecute_ApproveCancelRoundTrip(t *testing.T) {
	e := env.New(t)
	uc := newUseCase(t, e, "2024-06-01 12:00", 0)
	date := testutil.Date(t, "2024-06-10")
	slots := testutil.Slots(t, 20, 21)

	before, err := e.Availability.TakenSlots(context.Background(), e.Hall.ID, date, slots)
	require.NoError(t, err)

	a := e.Approved(t, "a@x.com", e.Hall.ID, "2024-06-10", 20, 21)
	_, err = uc.Execute(context.Background(), &Request{RequestID: a.ID})
	require.NoError(t, err)

	after, err := e.Availability.TakenSlots(context.Background(), e.Hall.ID, date, slots)
	require.NoError(t, err)
	assert.Equal(t, before, after)

	// После отмены те же слоты можно одобрить снова
	again := e.Approved(t, "b@x.com", e.Hall.ID, "2024-06-10", 20, 21)
	assert.Equal(t, domain.StatusApproved, again.Status)
	e.RequireDisjointBookings(t)
}
