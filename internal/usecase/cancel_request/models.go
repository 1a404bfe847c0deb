package cancel_request

import "time"

// Request модель запроса на отмену бронирования
type Request struct {
	RequestID int64
}

// Response модель ответа на отмену
type Response struct {
	ID     int64
	Email  string
	Status string
	// ID удаленных бронирований
	ReleasedBookingIDs []int64
	// Ранее вытесненные заявки, которым отправлено уведомление об освободившихся слотах
	NotifiedRequestIDs []int64

	// Уведомления, которые не удалось доставить; отмена при этом зафиксирована
	DeliveryFailures []string

	CancelledAt time.Time
}
