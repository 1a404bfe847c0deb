package requests

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-VenueBookingService/internal/domain"
	"github.com/m04kA/SMC-VenueBookingService/internal/service/requests/models"
	"github.com/m04kA/SMC-VenueBookingService/internal/testutil"
	"github.com/m04kA/SMC-VenueBookingService/pkg/logger"
	"github.com/m04kA/SMC-VenueBookingService/pkg/ptr"
)

func seed(t *testing.T, store *testutil.Store, email string, venueID int64, date string, slots ...domain.TimeSlot) *domain.BookingRequest {
	t.Helper()
	req, err := domain.NewBookingRequest(email, nil, nil, venueID, testutil.Date(t, date), testutil.Slots(t, slots...))
	require.NoError(t, err)
	created, err := store.Create(context.Background(), req)
	require.NoError(t, err)
	return created
}

func TestGetByID(t *testing.T) {
	store := testutil.NewStore()
	svc := NewService(store, logger.NewNop())
	req := seed(t, store, "a@x.com", 1, "2024-06-10", 3, 4)

	got, err := svc.GetByID(context.Background(), req.ID)
	require.NoError(t, err)
	assert.Equal(t, "2024-06-10", got.Date)
	assert.Equal(t, []int{3, 4}, got.TimingSlots)
	assert.Equal(t, []string{"0130-0200", "0200-0230"}, got.TimeRanges)
	assert.Equal(t, "pending", got.Status)
	assert.Equal(t, "Personal", got.CCA)
	assert.NotNil(t, got.BookingIDs)

	_, err = svc.GetByID(context.Background(), 999)
	assert.ErrorIs(t, err, ErrRequestNotFound)
}

func TestList(t *testing.T) {
	ctx := context.Background()
	store := testutil.NewStore()
	svc := NewService(store, logger.NewNop())

	seed(t, store, "a@x.com", 1, "2024-06-10", 1)
	seed(t, store, "b@x.com", 1, "2024-06-11", 1)
	seed(t, store, "A@x.com", 2, "2024-06-10", 1)

	got, err := svc.List(ctx, &models.ListRequestsRequest{VenueID: ptr.Ptr(int64(1))})
	require.NoError(t, err)
	assert.Equal(t, 2, got.Total)

	got, err = svc.List(ctx, &models.ListRequestsRequest{Date: ptr.Ptr("2024-06-10"), Status: ptr.Ptr("pending")})
	require.NoError(t, err)
	assert.Equal(t, 2, got.Total)

	got, err = svc.List(ctx, &models.ListRequestsRequest{Email: ptr.Ptr("a@x.com")})
	require.NoError(t, err)
	assert.Equal(t, 2, got.Total)

	got, err = svc.List(ctx, &models.ListRequestsRequest{Limit: 1})
	require.NoError(t, err)
	assert.Equal(t, 1, got.Total)

	_, err = svc.List(ctx, &models.ListRequestsRequest{Status: ptr.Ptr("archived")})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.List(ctx, &models.ListRequestsRequest{Date: ptr.Ptr("10/06/2024")})
	assert.ErrorIs(t, err, ErrInvalidInput)
}
