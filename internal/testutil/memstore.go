// Package testutil содержит in-memory реализации репозиториев и внешних клиентов для тестов
package testutil

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/m04kA/SMC-VenueBookingService/internal/domain"
	bookingRepo "github.com/m04kA/SMC-VenueBookingService/internal/infra/storage/booking"
	requestRepo "github.com/m04kA/SMC-VenueBookingService/internal/infra/storage/booking_request"
	venueRepo "github.com/m04kA/SMC-VenueBookingService/internal/infra/storage/venue"
	"github.com/m04kA/SMC-VenueBookingService/pkg/types"
)

type slotKey struct {
	venueID int64
	date    types.UnixDate
	slot    domain.TimeSlot
}

type txKey struct{}

// Store in-memory хранилище площадок, заявок и бронирований.
// Реализует контракты всех трех репозиториев и менеджер транзакций с откатом по снимку.
type Store struct {
	mu       sync.Mutex
	txMu     sync.Mutex
	venues   map[int64]*domain.Venue
	requests map[int64]*domain.BookingRequest
	bookings map[int64]*domain.Booking
	slots    map[slotKey]int64
	nextID   int64
	tick     int64
	base     time.Time

	// FailUpdateFor заставляет Update вернуть ошибку для указанной заявки
	FailUpdateFor map[int64]error
}

// NewStore создает пустое хранилище
func NewStore() *Store {
	return &Store{
		venues:        make(map[int64]*domain.Venue),
		requests:      make(map[int64]*domain.BookingRequest),
		bookings:      make(map[int64]*domain.Booking),
		slots:         make(map[slotKey]int64),
		base:          time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
		FailUpdateFor: make(map[int64]error),
	}
}

// AddVenue добавляет площадку в каталог
func (s *Store) AddVenue(v *domain.Venue) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *v
	s.venues[v.ID] = &cp
}

// ============================================================
// Venue repository
// ============================================================

// Venues возвращает представление хранилища с контрактом venue.Repository
func (s *Store) Venues() *Venues {
	return &Venues{s: s}
}

// Venues реализует чтение каталога площадок
type Venues struct {
	s *Store
}

func (v *Venues) GetVisibleByID(ctx context.Context, id int64) (*domain.Venue, error) {
	venue, err := v.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !venue.Visible {
		return nil, venueRepo.ErrVenueNotFound
	}
	return venue, nil
}

func (v *Venues) GetByID(_ context.Context, id int64) (*domain.Venue, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()

	venue, ok := v.s.venues[id]
	if !ok {
		return nil, venueRepo.ErrVenueNotFound
	}
	cp := *venue
	cp.PriorityEmails = append([]string(nil), venue.PriorityEmails...)
	return &cp, nil
}

// ============================================================
// Booking repository
// ============================================================

func (s *Store) CreateMany(_ context.Context, bookings []*domain.Booking) ([]*domain.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, b := range bookings {
		if _, taken := s.slots[slotKey{b.VenueID, b.Date, b.Slot}]; taken {
			return nil, fmt.Errorf("%w: venue=%d date=%s slot=%d", bookingRepo.ErrSlotTaken, b.VenueID, b.Date, b.Slot)
		}
	}

	for _, b := range bookings {
		b.ID = s.newID()
		b.CreatedAt = s.now()
		cp := *b
		s.bookings[b.ID] = &cp
		s.slots[slotKey{b.VenueID, b.Date, b.Slot}] = b.ID
	}
	return bookings, nil
}

func (s *Store) GetByVenueAndDate(_ context.Context, venueID int64, date types.UnixDate) ([]*domain.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*domain.Booking, 0)
	for _, b := range s.bookings {
		if b.VenueID == venueID && b.Date == date {
			cp := *b
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Slot < out[j].Slot })
	return out, nil
}

func (s *Store) GetByRequestID(_ context.Context, requestID int64) ([]*domain.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*domain.Booking, 0)
	for _, b := range s.bookings {
		if b.BookingRequestID == requestID {
			cp := *b
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Slot < out[j].Slot })
	return out, nil
}

func (s *Store) DeleteByIDs(_ context.Context, ids []int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var deleted int64
	for _, id := range ids {
		b, ok := s.bookings[id]
		if !ok {
			continue
		}
		delete(s.slots, slotKey{b.VenueID, b.Date, b.Slot})
		delete(s.bookings, id)
		deleted++
	}
	return deleted, nil
}

func (s *Store) LockVenueDate(ctx context.Context, _ int64, _ types.UnixDate) error {
	if ctx.Value(txKey{}) == nil {
		return bookingRepo.ErrNoTransaction
	}
	return nil
}

// AllBookings возвращает все бронирования (для проверки инвариантов в тестах)
func (s *Store) AllBookings() []*domain.Booking {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*domain.Booking, 0, len(s.bookings))
	for _, b := range s.bookings {
		cp := *b
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// ============================================================
// Booking request repository
// ============================================================

func (s *Store) Create(_ context.Context, req *domain.BookingRequest) (*domain.BookingRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	req.ID = s.newID()
	req.CreatedAt = s.now()
	req.UpdatedAt = req.CreatedAt
	s.requests[req.ID] = cloneRequest(req)
	return req, nil
}

func (s *Store) GetByID(_ context.Context, id int64) (*domain.BookingRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	req, ok := s.requests[id]
	if !ok {
		return nil, requestRepo.ErrRequestNotFound
	}
	return cloneRequest(req), nil
}

func (s *Store) GetByIDs(_ context.Context, ids []int64) ([]*domain.BookingRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*domain.BookingRequest, 0, len(ids))
	for _, id := range ids {
		if req, ok := s.requests[id]; ok {
			out = append(out, cloneRequest(req))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Store) FindPendingByVenueAndDate(_ context.Context, venueID int64, date types.UnixDate) ([]*domain.BookingRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*domain.BookingRequest, 0)
	for _, req := range s.requests {
		if req.VenueID == venueID && req.Date == date && req.Status == domain.StatusPending {
			out = append(out, cloneRequest(req))
		}
	}
	sortByCreation(out)
	return out, nil
}

func (s *Store) List(_ context.Context, filter domain.RequestFilter) ([]*domain.BookingRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*domain.BookingRequest, 0)
	for _, req := range s.requests {
		if filter.VenueID != nil && req.VenueID != *filter.VenueID {
			continue
		}
		if filter.Date != nil && req.Date != *filter.Date {
			continue
		}
		if filter.Status != nil && req.Status != *filter.Status {
			continue
		}
		if filter.Email != nil && !strings.EqualFold(req.Email, *filter.Email) {
			continue
		}
		out = append(out, cloneRequest(req))
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date > out[j].Date
		}
		return out[i].ID > out[j].ID
	})

	if filter.Offset > 0 {
		if filter.Offset >= uint64(len(out)) {
			return []*domain.BookingRequest{}, nil
		}
		out = out[filter.Offset:]
	}
	if filter.Limit > 0 && filter.Limit < uint64(len(out)) {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (s *Store) Update(_ context.Context, req *domain.BookingRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.FailUpdateFor[req.ID]; err != nil {
		return err
	}
	if _, ok := s.requests[req.ID]; !ok {
		return requestRepo.ErrRequestNotFound
	}
	req.UpdatedAt = s.now()
	s.requests[req.ID] = cloneRequest(req)
	return nil
}

// Request возвращает сохраненное состояние заявки (для проверок в тестах)
func (s *Store) Request(id int64) *domain.BookingRequest {
	s.mu.Lock()
	defer s.mu.Unlock()

	req, ok := s.requests[id]
	if !ok {
		return nil
	}
	return cloneRequest(req)
}

// AllRequests возвращает все заявки по возрастанию ID
func (s *Store) AllRequests() []*domain.BookingRequest {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*domain.BookingRequest, 0, len(s.requests))
	for _, req := range s.requests {
		out = append(out, cloneRequest(req))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// ============================================================
// Transaction manager
// ============================================================

// Do выполняет fn атомарно: при ошибке состояние хранилища откатывается к снимку.
// Транзакции сериализуются целиком.
func (s *Store) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	if ctx.Value(txKey{}) != nil {
		return fn(ctx)
	}

	s.txMu.Lock()
	defer s.txMu.Unlock()

	snap := s.snapshot()
	if err := fn(context.WithValue(ctx, txKey{}, true)); err != nil {
		s.restore(snap)
		return err
	}
	return nil
}

func (s *Store) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	return s.Do(ctx, fn)
}

func (s *Store) DoReadOnly(ctx context.Context, fn func(ctx context.Context) error) error {
	return s.Do(ctx, fn)
}

type snapshot struct {
	requests map[int64]*domain.BookingRequest
	bookings map[int64]*domain.Booking
	slots    map[slotKey]int64
}

func (s *Store) snapshot() snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := snapshot{
		requests: make(map[int64]*domain.BookingRequest, len(s.requests)),
		bookings: make(map[int64]*domain.Booking, len(s.bookings)),
		slots:    make(map[slotKey]int64, len(s.slots)),
	}
	for id, r := range s.requests {
		snap.requests[id] = cloneRequest(r)
	}
	for id, b := range s.bookings {
		cp := *b
		snap.bookings[id] = &cp
	}
	for k, v := range s.slots {
		snap.slots[k] = v
	}
	return snap
}

func (s *Store) restore(snap snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.requests = snap.requests
	s.bookings = snap.bookings
	s.slots = snap.slots
}

func (s *Store) newID() int64 {
	s.nextID++
	return s.nextID
}

// now монотонное время создания, чтобы порядок created_at был детерминирован
func (s *Store) now() time.Time {
	s.tick++
	return s.base.Add(time.Duration(s.tick) * time.Second)
}

func cloneRequest(r *domain.BookingRequest) *domain.BookingRequest {
	cp := *r
	cp.TimingSlots = append(domain.SlotSet(nil), r.TimingSlots...)
	if r.BookingIDs != nil {
		cp.BookingIDs = append([]int64(nil), r.BookingIDs...)
	}
	if r.ConflictingRequests != nil {
		cp.ConflictingRequests = append([]int64(nil), r.ConflictingRequests...)
	}
	return &cp
}

func sortByCreation(reqs []*domain.BookingRequest) {
	sort.Slice(reqs, func(i, j int) bool {
		if reqs[i].CreatedAt.Equal(reqs[j].CreatedAt) {
			return reqs[i].ID < reqs[j].ID
		}
		return reqs[i].CreatedAt.Before(reqs[j].CreatedAt)
	})
}
