package approve_request

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-VenueBookingService/internal/domain"
	"github.com/m04kA/SMC-VenueBookingService/internal/testutil/env"
)

func newUseCase(e *env.Env) *UseCase {
	return NewUseCase(e.Store, e.Approval, e.Availability, e.Conflicts, e.Dispatcher, e.Sender, e.Logger)
}

func TestExecute_ApprovesAndDisplaces(t *testing.T) {
	e := env.New(t)
	uc := newUseCase(e)

	a := e.Pending(t, "alice.tan@u.nus.edu", e.Hall.ID, "2024-06-10", 16, 17)
	b := e.Pending(t, "bob@u.nus.edu", e.Hall.ID, "2024-06-10", 17, 18)
	c := e.Pending(t, "carol@u.nus.edu", e.Hall.ID, "2024-06-10", 19)

	resp, err := uc.Execute(context.Background(), &Request{RequestID: a.ID})
	require.NoError(t, err)

	assert.Equal(t, "approved", resp.Status)
	assert.Len(t, resp.BookingIDs, 2)
	require.Len(t, resp.ConflictingRequests, 1)
	assert.Equal(t, b.ID, resp.ConflictingRequests[0].ID)
	assert.Empty(t, resp.DeliveryFailures)

	assert.Equal(t, domain.StatusRejected, e.Store.Request(b.ID).Status)
	assert.Equal(t, domain.StatusPending, e.Store.Request(c.ID).Status)
	e.RequireDisjointBookings(t)

	// Уведомления: письмо одобренному, сообщение в канал, письмо вытесненному
	require.Len(t, e.Mailer.SentTo("alice.tan@u.nus.edu"), 1)
	require.Len(t, e.Mailer.SentTo("bob@u.nus.edu"), 1)
	assert.Empty(t, e.Mailer.SentTo("carol@u.nus.edu"))
	assert.Contains(t, e.Mailer.SentTo("bob@u.nus.edu")[0].HTML, "allocated to booking request")
	require.Len(t, e.Broadcaster.Messages, 1)
	assert.Contains(t, e.Broadcaster.Messages[0], "[APPROVED]\nEmail: alice***@u.nus.edu")
}

func TestExecute_ConflictingRequestsAreMutuallyExclusive(t *testing.T) {
	e := env.New(t)
	uc := newUseCase(e)

	a := e.Pending(t, "a@x.com", e.Hall.ID, "2024-06-10", 16, 17)
	b := e.Pending(t, "b@x.com", e.Hall.ID, "2024-06-10", 17)

	_, err := uc.Execute(context.Background(), &Request{RequestID: b.ID})
	require.NoError(t, err)

	_, err = uc.Execute(context.Background(), &Request{RequestID: a.ID})
	assert.ErrorIs(t, err, domain.ErrInvalidStateTransition)
	assert.Equal(t, domain.StatusRejected, e.Store.Request(a.ID).Status)
	e.RequireDisjointBookings(t)
}

func TestExecute_Errors(t *testing.T) {
	e := env.New(t)
	uc := newUseCase(e)
	approved := e.Approved(t, "a@x.com", e.Hall.ID, "2024-06-10", 1)

	_, err := uc.Execute(context.Background(), &Request{RequestID: 0})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = uc.Execute(context.Background(), &Request{RequestID: 999})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = uc.Execute(context.Background(), &Request{RequestID: approved.ID})
	assert.ErrorIs(t, err, domain.ErrInvalidStateTransition)

	hidden := e.Pending(t, "b@x.com", e.Hidden.ID, "2024-06-10", 1)
	_, err = uc.Execute(context.Background(), &Request{RequestID: hidden.ID})
	assert.ErrorIs(t, err, domain.ErrInvalidVenue)
	assert.Equal(t, domain.StatusPending, e.Store.Request(hidden.ID).Status)
}

func TestExecute_InfrastructureFailureIsInternal(t *testing.T) {
	e := env.New(t)
	uc := newUseCase(e)
	a := e.Pending(t, "a@x.com", e.Hall.ID, "2024-06-10", 1)
	e.Store.FailUpdateFor[a.ID] = errors.New("database is down")

	_, err := uc.Execute(context.Background(), &Request{RequestID: a.ID})
	assert.ErrorIs(t, err, ErrInternal)
	assert.Empty(t, e.Store.AllBookings())
	assert.Empty(t, e.Mailer.Sent)
}

func TestExecute_DeliveryFailureDoesNotRollBack(t *testing.T) {
	e := env.New(t)
	uc := newUseCase(e)
	a := e.Pending(t, "a@x.com", e.Hall.ID, "2024-06-10", 1)
	b := e.Pending(t, "b@x.com", e.Hall.ID, "2024-06-10", 1)
	e.Mailer.FailFor["a@x.com"] = errors.New("mailersend: 422")
	e.Broadcaster.Err = errors.New("nats: no responders")

	resp, err := uc.Execute(context.Background(), &Request{RequestID: a.ID})
	require.NoError(t, err)

	assert.Len(t, resp.DeliveryFailures, 2)
	assert.Equal(t, domain.StatusApproved, e.Store.Request(a.ID).Status)
	assert.Len(t, e.Store.AllBookings(), 1)
	// Остальные уведомления доставлены независимо
	assert.Len(t, e.Mailer.SentTo("b@x.com"), 1)
	assert.Equal(t, domain.StatusRejected, e.Store.Request(b.ID).Status)
}

func TestPreview_DoesNotMutate(t *testing.T) {
	e := env.New(t)
	uc := newUseCase(e)

	e.Approved(t, "owner@x.com", e.Hall.ID, "2024-06-10", 8)
	a := e.Pending(t, "a@x.com", e.Hall.ID, "2024-06-10", 8, 9)
	b := e.Pending(t, "b@x.com", e.Hall.ID, "2024-06-10", 9)
	c := e.Pending(t, "c@x.com", e.Hall.ID, "2024-06-10", 10)

	preview, err := uc.Preview(context.Background(), &Request{RequestID: a.ID})
	require.NoError(t, err)

	assert.False(t, preview.Approvable)
	assert.Equal(t, []string{"0400-0430"}, preview.TakenSlots)
	require.Len(t, preview.WouldDisplace, 1)
	assert.Equal(t, b.ID, preview.WouldDisplace[0].ID)

	preview, err = uc.Preview(context.Background(), &Request{RequestID: c.ID})
	require.NoError(t, err)
	assert.True(t, preview.Approvable)
	assert.Empty(t, preview.WouldDisplace)

	for _, id := range []int64{a.ID, b.ID, c.ID} {
		assert.Equal(t, domain.StatusPending, e.Store.Request(id).Status)
	}
	assert.Len(t, e.Store.AllBookings(), 1)
	assert.Empty(t, e.Mailer.SentTo("b@x.com"))

	_, err = uc.Preview(context.Background(), &Request{RequestID: 999})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
