package availability

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-VenueBookingService/internal/domain"
	"github.com/m04kA/SMC-VenueBookingService/internal/testutil"
	"github.com/m04kA/SMC-VenueBookingService/pkg/logger"
)

func setup(t *testing.T) (*Service, *testutil.Store) {
	t.Helper()
	store := testutil.NewStore()
	store.AddVenue(&domain.Venue{ID: 1, Name: "Hall", Visible: true})
	store.AddVenue(&domain.Venue{ID: 2, Name: "Old Hall", Visible: false})
	return NewService(store.Venues(), store, logger.NewNop()), store
}

func TestIsAvailable(t *testing.T) {
	ctx := context.Background()
	svc, store := setup(t)
	date := testutil.Date(t, "2024-06-10")

	_, err := store.CreateMany(ctx, []*domain.Booking{
		{VenueID: 1, Date: date, Slot: 2, BookingRequestID: 100},
	})
	require.NoError(t, err)

	tests := []struct {
		name    string
		venueID int64
		date    string
		slots   domain.SlotSet
		want    bool
		wantErr error
	}{
		{"free slots", 1, "2024-06-10", domain.SlotSet{0, 1}, true, nil},
		{"overlapping slot", 1, "2024-06-10", domain.SlotSet{1, 2}, false, nil},
		{"other date", 1, "2024-06-11", domain.SlotSet{2}, true, nil},
		{"hidden venue", 2, "2024-06-10", domain.SlotSet{1}, false, domain.ErrInvalidVenue},
		{"missing venue", 99, "2024-06-10", domain.SlotSet{1}, false, domain.ErrInvalidVenue},
		{"empty slots", 1, "2024-06-10", nil, false, domain.ErrInvalidSlotSet},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := svc.IsAvailable(ctx, tt.venueID, testutil.Date(t, tt.date), tt.slots)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEnsure(t *testing.T) {
	ctx := context.Background()
	svc, store := setup(t)
	date := testutil.Date(t, "2024-06-10")

	require.NoError(t, svc.Ensure(ctx, 1, date, domain.SlotSet{3}))

	_, err := store.CreateMany(ctx, []*domain.Booking{{VenueID: 1, Date: date, Slot: 3, BookingRequestID: 1}})
	require.NoError(t, err)

	err = svc.Ensure(ctx, 1, date, domain.SlotSet{3, 4})
	assert.ErrorIs(t, err, domain.ErrSlotUnavailable)
	assert.Contains(t, err.Error(), "0130-0200")
}
