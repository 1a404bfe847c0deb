package create_request

import (
	"time"

	"github.com/m04kA/SMC-VenueBookingService/pkg/types"
)

// Request модель запроса на создание заявки
type Request struct {
	Email       string         // Email заявителя
	CCA         *string        // Клуб или организация (опционально)
	Notes       *string        // Комментарий (опционально)
	VenueID     int64          // ID площадки
	Date        types.UnixDate // Дата бронирования
	TimingSlots []int          // Индексы 30-минутных слотов (0..47)
}

// Response модель ответа с созданной заявкой
type Response struct {
	ID                  int64
	Email               string
	CCA                 string
	Notes               *string
	VenueID             int64
	VenueName           string
	Date                types.UnixDate
	TimingSlots         []int
	TimeRanges          []string
	Status              string
	BookingIDs          []int64
	ConflictingRequests []int64

	// Заявка одобрена сразу (приоритетный заявитель)
	InstantlyApproved bool
	// Уведомления, которые не удалось доставить; заявка при этом сохранена
	DeliveryFailures []string

	CreatedAt time.Time
	UpdatedAt time.Time
}
