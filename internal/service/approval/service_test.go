package approval

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-VenueBookingService/internal/domain"
	"github.com/m04kA/SMC-VenueBookingService/internal/service/availability"
	"github.com/m04kA/SMC-VenueBookingService/internal/service/conflicts"
	memstore "github.com/m04kA/SMC-VenueBookingService/internal/testutil"
	"github.com/m04kA/SMC-VenueBookingService/pkg/logger"
	"github.com/m04kA/SMC-VenueBookingService/pkg/metrics"
)

type fixture struct {
	store   *memstore.Store
	metrics *metrics.Metrics
	svc     *Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	store := memstore.NewStore()
	store.AddVenue(&domain.Venue{ID: 1, Name: "Hall", Capacity: 40, Visible: true})
	store.AddVenue(&domain.Venue{ID: 2, Name: "Hidden", Capacity: 10, Visible: false})

	log := logger.NewNop()
	m := metrics.NewWithRegisterer("test", prometheus.NewRegistry())
	avail := availability.NewService(store.Venues(), store, log)
	resolver := conflicts.NewService(store, log)

	return &fixture{
		store:   store,
		metrics: m,
		svc:     NewService(store, store, avail, resolver, store, m, log),
	}
}

func (f *fixture) pending(t *testing.T, email string, venueID int64, date string, slots ...domain.TimeSlot) *domain.BookingRequest {
	t.Helper()
	req, err := domain.NewBookingRequest(email, nil, nil, venueID, memstore.Date(t, date), memstore.Slots(t, slots...))
	require.NoError(t, err)
	created, err := f.store.Create(context.Background(), req)
	require.NoError(t, err)
	return created
}

func TestApprove_DisplacesOverlappingPending(t *testing.T) {
	f := newFixture(t)
	a := f.pending(t, "a@x.com", 1, "2024-06-10", 3, 4)
	b := f.pending(t, "b@x.com", 1, "2024-06-10", 4, 5)
	c := f.pending(t, "c@x.com", 1, "2024-06-10", 6)
	d := f.pending(t, "d@x.com", 1, "2024-06-11", 4)

	res, err := f.svc.Approve(context.Background(), a.ID)
	require.NoError(t, err)

	assert.Equal(t, domain.StatusApproved, res.Request.Status)
	assert.Len(t, res.Request.BookingIDs, 2)
	assert.Equal(t, []int64{b.ID}, res.Request.ConflictingRequests)
	require.Len(t, res.Displaced, 1)
	assert.Equal(t, b.ID, res.Displaced[0].ID)
	assert.Equal(t, "Hall", res.Venue.Name)

	storedB := f.store.Request(b.ID)
	assert.Equal(t, domain.StatusRejected, storedB.Status)
	require.NotNil(t, storedB.RejectedBy)
	assert.Equal(t, a.ID, *storedB.RejectedBy)

	assert.Equal(t, domain.StatusPending, f.store.Request(c.ID).Status)
	assert.Equal(t, domain.StatusPending, f.store.Request(d.ID).Status)
	assert.Len(t, f.store.AllBookings(), 2)

	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.LifecycleTransitions.WithLabelValues("approve")))
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.LifecycleTransitions.WithLabelValues("conflict_reject")))
}

func TestApprove_Errors(t *testing.T) {
	tests := []struct {
		name    string
		prepare func(t *testing.T, f *fixture) int64
		wantErr error
	}{
		{
			name:    "not found",
			prepare: func(t *testing.T, f *fixture) int64 { return 404 },
			wantErr: domain.ErrNotFound,
		},
		{
			name: "hidden venue",
			prepare: func(t *testing.T, f *fixture) int64 {
				return f.pending(t, "a@x.com", 2, "2024-06-10", 1).ID
			},
			wantErr: domain.ErrInvalidVenue,
		},
		{
			name: "already approved",
			prepare: func(t *testing.T, f *fixture) int64 {
				id := f.pending(t, "a@x.com", 1, "2024-06-10", 1).ID
				_, err := f.svc.Approve(context.Background(), id)
				require.NoError(t, err)
				return id
			},
			wantErr: domain.ErrInvalidStateTransition,
		},
		{
			name: "slot already booked",
			prepare: func(t *testing.T, f *fixture) int64 {
				first := f.pending(t, "a@x.com", 1, "2024-06-10", 1)
				_, err := f.svc.Approve(context.Background(), first.ID)
				require.NoError(t, err)
				// создана после одобрения, поэтому не вытеснена и остается Pending
				return f.pending(t, "c@x.com", 1, "2024-06-10", 1, 2).ID
			},
			wantErr: domain.ErrSlotUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			id := tt.prepare(t, f)
			before := len(f.store.AllBookings())

			_, err := f.svc.Approve(context.Background(), id)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Len(t, f.store.AllBookings(), before)
		})
	}
}

func TestApprove_RollbackLeavesNoPartialState(t *testing.T) {
	f := newFixture(t)
	a := f.pending(t, "a@x.com", 1, "2024-06-10", 3)
	b := f.pending(t, "b@x.com", 1, "2024-06-10", 3)
	f.store.FailUpdateFor[a.ID] = errors.New("connection reset")

	_, err := f.svc.Approve(context.Background(), a.ID)
	require.ErrorIs(t, err, ErrInternal)

	assert.Empty(t, f.store.AllBookings())
	assert.Equal(t, domain.StatusPending, f.store.Request(a.ID).Status)
	assert.Equal(t, domain.StatusPending, f.store.Request(b.ID).Status)
	assert.Empty(t, f.store.Request(a.ID).BookingIDs)
	assert.Equal(t, 0.0, testutil.ToFloat64(f.metrics.LifecycleTransitions.WithLabelValues("approve")))
}

func TestApprove_EitherOrderExcludesTheOther(t *testing.T) {
	for _, approveFirst := range []string{"a", "b"} {
		t.Run(approveFirst, func(t *testing.T) {
			f := newFixture(t)
			a := f.pending(t, "a@x.com", 1, "2024-06-10", 10, 11)
			b := f.pending(t, "b@x.com", 1, "2024-06-10", 11, 12)

			winner, loser := a, b
			if approveFirst == "b" {
				winner, loser = b, a
			}

			_, err := f.svc.Approve(context.Background(), winner.ID)
			require.NoError(t, err)

			_, err = f.svc.Approve(context.Background(), loser.ID)
			assert.ErrorIs(t, err, domain.ErrAlreadyRejected)
			assert.Equal(t, domain.StatusRejected, f.store.Request(loser.ID).Status)
		})
	}
}
