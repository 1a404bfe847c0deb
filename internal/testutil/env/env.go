// Package env собирает сервисы жизненного цикла заявок поверх in-memory хранилища для тестов use case
package env

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-VenueBookingService/internal/clock"
	"github.com/m04kA/SMC-VenueBookingService/internal/domain"
	"github.com/m04kA/SMC-VenueBookingService/internal/service/approval"
	"github.com/m04kA/SMC-VenueBookingService/internal/service/availability"
	"github.com/m04kA/SMC-VenueBookingService/internal/service/conflicts"
	"github.com/m04kA/SMC-VenueBookingService/internal/service/notifications"
	"github.com/m04kA/SMC-VenueBookingService/internal/testutil"
	"github.com/m04kA/SMC-VenueBookingService/pkg/logger"
	"github.com/m04kA/SMC-VenueBookingService/pkg/metrics"
)

// PublicURL адрес сервиса в ссылках отмены
const PublicURL = "http://venues.test"

// Env полный набор зависимостей use case
type Env struct {
	Store        *testutil.Store
	Mailer       *testutil.Mailer
	Broadcaster  *testutil.Broadcaster
	Logger       *logger.Logger
	Metrics      *metrics.Metrics
	Availability *availability.Service
	Conflicts    *conflicts.Service
	Approval     *approval.Service
	Dispatcher   *notifications.Dispatcher
	Sender       *notifications.Sender

	Hall   *domain.Venue
	Studio *domain.Venue
	Hidden *domain.Venue
}

// New создает окружение с тремя площадками: Hall (весь день), Studio (0800-2200, приоритетный email) и Hidden
func New(t *testing.T) *Env {
	t.Helper()

	e := &Env{
		Store:       testutil.NewStore(),
		Mailer:      testutil.NewMailer(),
		Broadcaster: &testutil.Broadcaster{},
		Logger:      logger.NewNop(),
		Metrics:     metrics.NewWithRegisterer("test", prometheus.NewRegistry()),
		Hall:        &domain.Venue{ID: 1, Name: "Hall", Capacity: 100, Visible: true},
		Studio: &domain.Venue{
			ID:             2,
			Name:           "Studio",
			Capacity:       12,
			OpeningHours:   "0800-2200",
			Visible:        true,
			PriorityEmails: []string{"president@club.org"},
		},
		Hidden: &domain.Venue{ID: 3, Name: "Old Gym", Capacity: 30, Visible: false},
	}
	e.Store.AddVenue(e.Hall)
	e.Store.AddVenue(e.Studio)
	e.Store.AddVenue(e.Hidden)

	e.Availability = availability.NewService(e.Store.Venues(), e.Store, e.Logger)
	e.Conflicts = conflicts.NewService(e.Store, e.Logger)
	e.Approval = approval.NewService(e.Store, e.Store, e.Availability, e.Conflicts, e.Store, e.Metrics, e.Logger)
	e.Dispatcher = notifications.NewDispatcher(PublicURL)
	e.Sender = notifications.NewSender(
		notifications.MustNewRenderer(),
		e.Mailer,
		e.Broadcaster,
		e.Metrics,
		e.Logger,
		time.Second,
	)

	return e
}

// Clock часы UTC+8 на указанный момент "2006-01-02 15:04"
func Clock(t *testing.T, value string) clock.Clock {
	t.Helper()
	now, err := time.ParseInLocation("2006-01-02 15:04", value, clock.Zone(clock.DefaultOffsetHours))
	require.NoError(t, err)
	return clock.NewFixed(now)
}

// Pending сохраняет ожидающую заявку напрямую в хранилище
func (e *Env) Pending(t *testing.T, email string, venueID int64, date string, slots ...domain.TimeSlot) *domain.BookingRequest {
	t.Helper()
	req, err := domain.NewBookingRequest(email, nil, nil, venueID, testutil.Date(t, date), testutil.Slots(t, slots...))
	require.NoError(t, err)
	created, err := e.Store.Create(context.Background(), req)
	require.NoError(t, err)
	return created
}

// Approved сохраняет заявку и одобряет ее через сервис одобрения
func (e *Env) Approved(t *testing.T, email string, venueID int64, date string, slots ...domain.TimeSlot) *domain.BookingRequest {
	t.Helper()
	req := e.Pending(t, email, venueID, date, slots...)
	res, err := e.Approval.Approve(context.Background(), req.ID)
	require.NoError(t, err)
	return res.Request
}

// RequireDisjointBookings проверяет, что ни один слот площадки и даты не занят дважды
// и что все одобренные заявки держат ровно по бронированию на слот
func (e *Env) RequireDisjointBookings(t *testing.T) {
	t.Helper()

	type key struct {
		venueID int64
		date    int64
		slot    domain.TimeSlot
	}
	seen := make(map[key]int64)
	for _, b := range e.Store.AllBookings() {
		k := key{b.VenueID, int64(b.Date), b.Slot}
		owner, dup := seen[k]
		require.Falsef(t, dup, "slot %s on %s booked by requests %d and %d", b.Slot.Label(), b.Date, owner, b.BookingRequestID)
		seen[k] = b.BookingRequestID
	}

	for _, r := range e.Store.AllRequests() {
		require.NoError(t, r.CheckInvariant())
	}
}
