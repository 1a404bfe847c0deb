package conflicts

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-VenueBookingService/internal/domain"
	"github.com/m04kA/SMC-VenueBookingService/internal/testutil"
	"github.com/m04kA/SMC-VenueBookingService/pkg/logger"
)

func createPending(t *testing.T, store *testutil.Store, venueID int64, date string, slots ...domain.TimeSlot) *domain.BookingRequest {
	t.Helper()
	req, err := domain.NewBookingRequest("user@x.com", nil, nil, venueID, testutil.Date(t, date), testutil.Slots(t, slots...))
	require.NoError(t, err)
	created, err := store.Create(context.Background(), req)
	require.NoError(t, err)
	return created
}

func TestFindConflicts(t *testing.T) {
	ctx := context.Background()
	store := testutil.NewStore()
	svc := NewService(store, logger.NewNop())

	a := createPending(t, store, 1, "2024-06-10", 1, 2)
	c := createPending(t, store, 1, "2024-06-10", 3, 2)
	b := createPending(t, store, 1, "2024-06-10", 2, 3)
	createPending(t, store, 1, "2024-06-10", 5) // disjoint
	createPending(t, store, 2, "2024-06-10", 2) // other venue
	createPending(t, store, 1, "2024-06-11", 2) // other date

	got, err := svc.FindConflicts(ctx, a)
	require.NoError(t, err)

	require.Len(t, got, 2)
	assert.Equal(t, c.ID, got[0].ID)
	assert.Equal(t, b.ID, got[1].ID)

	// ничего не изменилось
	assert.Equal(t, domain.StatusPending, store.Request(b.ID).Status)
	assert.Empty(t, a.ConflictingRequests)
}

func TestResolve(t *testing.T) {
	ctx := context.Background()
	store := testutil.NewStore()
	svc := NewService(store, logger.NewNop())

	a := createPending(t, store, 1, "2024-06-10", 1, 2)
	b := createPending(t, store, 1, "2024-06-10", 2, 3)

	displaced, err := svc.Resolve(ctx, a)
	require.NoError(t, err)

	require.Len(t, displaced, 1)
	assert.Equal(t, b.ID, displaced[0].ID)
	assert.Equal(t, []int64{b.ID}, a.ConflictingRequests)

	stored := store.Request(b.ID)
	assert.Equal(t, domain.StatusRejected, stored.Status)
	assert.True(t, stored.IsConflictRejected())
	assert.Equal(t, a.ID, *stored.RejectedBy)
	require.NotNil(t, stored.RejectionReason)
}

func TestResolveUpdateFailure(t *testing.T) {
	ctx := context.Background()
	store := testutil.NewStore()
	svc := NewService(store, logger.NewNop())

	a := createPending(t, store, 1, "2024-06-10", 1)
	b := createPending(t, store, 1, "2024-06-10", 1)
	store.FailUpdateFor[b.ID] = errors.New("connection reset")

	_, err := svc.Resolve(ctx, a)
	assert.ErrorIs(t, err, ErrInternal)
}
