package create_request

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-VenueBookingService/internal/domain"
	createRequest "github.com/m04kA/SMC-VenueBookingService/internal/usecase/create_request"
	"github.com/m04kA/SMC-VenueBookingService/pkg/logger"
)

type fakeUseCase struct {
	got  *createRequest.Request
	resp *createRequest.Response
	err  error
}

func (f *fakeUseCase) Execute(_ context.Context, req *createRequest.Request) (*createRequest.Response, error) {
	f.got = req
	return f.resp, f.err
}

const validBody = `{"email":"alice@club.org","venueId":1,"date":"2030-06-10","timingSlots":[20,21]}`

func TestHandle_Created(t *testing.T) {
	uc := &fakeUseCase{resp: &createRequest.Response{
		ID:          7,
		Email:       "alice@club.org",
		VenueID:     1,
		VenueName:   "Hall",
		TimingSlots: []int{20, 21},
		TimeRanges:  []string{"1000-1100"},
		Status:      string(domain.StatusPending),
	}}
	h := NewHandler(uc, logger.NewNop())

	rec := httptest.NewRecorder()
	h.Handle(rec, httptest.NewRequest(http.MethodPost, "/api/v1/booking-requests", strings.NewReader(validBody)))

	require.Equal(t, http.StatusCreated, rec.Code)
	require.NotNil(t, uc.got)
	assert.Equal(t, "2030-06-10", uc.got.Date.String())
	assert.Equal(t, []int{20, 21}, uc.got.TimingSlots)

	var body BookingRequestResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, int64(7), body.ID)
	assert.Equal(t, []int64{}, body.BookingIDs)
	assert.Empty(t, body.DeliveryFailures)
}

func TestHandle_ErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		err    error
		status int
	}{
		{"malformed json", `{"email":`, nil, http.StatusBadRequest},
		{"unknown field", `{"venue":1}`, nil, http.StatusBadRequest},
		{"bad date", `{"email":"a@b.co","venueId":1,"date":"10/06/2030","timingSlots":[1]}`, nil, http.StatusBadRequest},
		{"invalid input", validBody, fmt.Errorf("%w: email", createRequest.ErrInvalidInput), http.StatusBadRequest},
		{"date in past", validBody, createRequest.ErrDateInPast, http.StatusBadRequest},
		{"invalid slots", validBody, domain.ErrInvalidSlotSet, http.StatusBadRequest},
		{"venue", validBody, domain.ErrInvalidVenue, http.StatusNotFound},
		{"taken", validBody, domain.ErrSlotUnavailable, http.StatusConflict},
		{"internal", validBody, createRequest.ErrInternal, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHandler(&fakeUseCase{err: tt.err}, logger.NewNop())

			rec := httptest.NewRecorder()
			h.Handle(rec, httptest.NewRequest(http.MethodPost, "/api/v1/booking-requests", strings.NewReader(tt.body)))

			assert.Equal(t, tt.status, rec.Code)
			assert.Contains(t, rec.Header().Get("Content-Type"), "application/json")
		})
	}
}
