package testutil

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-VenueBookingService/internal/domain"
	"github.com/m04kA/SMC-VenueBookingService/pkg/types"
)

// Email отправленное письмо
type Email struct {
	To      string
	Subject string
	HTML    string
}

// Mailer фейковый почтовый клиент, запоминает письма
type Mailer struct {
	mu   sync.Mutex
	Sent []Email

	// FailFor ошибка доставки для конкретного адресата
	FailFor map[string]error
}

// NewMailer создает фейковый почтовый клиент
func NewMailer() *Mailer {
	return &Mailer{FailFor: make(map[string]error)}
}

func (m *Mailer) Deliver(_ context.Context, to, subject, html string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.FailFor[to]; err != nil {
		return err
	}
	m.Sent = append(m.Sent, Email{To: to, Subject: subject, HTML: html})
	return nil
}

// SentTo возвращает письма, отправленные адресату
func (m *Mailer) SentTo(to string) []Email {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []Email
	for _, e := range m.Sent {
		if e.To == to {
			out = append(out, e)
		}
	}
	return out
}

// Broadcaster фейковый канал рассылки
type Broadcaster struct {
	mu       sync.Mutex
	Messages []string
	Err      error
}

func (b *Broadcaster) Broadcast(_ context.Context, message string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.Err != nil {
		return b.Err
	}
	b.Messages = append(b.Messages, message)
	return nil
}

// Date парсит "YYYY-MM-DD" или валит тест
func Date(t *testing.T, s string) types.UnixDate {
	t.Helper()
	d, err := types.ParseUnixDate(s)
	require.NoError(t, err)
	return d
}

// Slots строит SlotSet или валит тест
func Slots(t *testing.T, slots ...domain.TimeSlot) domain.SlotSet {
	t.Helper()
	set, err := domain.NewSlotSet(slots...)
	require.NoError(t, err)
	return set
}
