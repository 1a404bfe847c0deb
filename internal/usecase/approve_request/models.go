package approve_request

import "github.com/m04kA/SMC-VenueBookingService/pkg/types"

// Request модель запроса на одобрение заявки
type Request struct {
	RequestID int64
}

// DisplacedRequest заявка, отклоненная (или которая будет отклонена) из-за пересечения слотов
type DisplacedRequest struct {
	ID          int64
	Email       string
	CCA         string
	TimingSlots []int
	TimeRanges  []string
}

// Response модель ответа на одобрение
type Response struct {
	ID                  int64
	Email               string
	VenueID             int64
	VenueName           string
	Date                types.UnixDate
	TimingSlots         []int
	TimeRanges          []string
	Status              string
	BookingIDs          []int64
	ConflictingRequests []DisplacedRequest

	// Уведомления, которые не удалось доставить; одобрение при этом зафиксировано
	DeliveryFailures []string
}

// PreviewResponse намерение одобрения: что произойдет, ничего не изменяя
type PreviewResponse struct {
	ID          int64
	Email       string
	VenueID     int64
	VenueName   string
	Date        types.UnixDate
	TimingSlots []int
	TimeRanges  []string
	Status      string

	// Можно ли одобрить прямо сейчас
	Approvable bool
	// Слоты, уже занятые одобренными бронированиями
	TakenSlots []string
	// Ожидающие заявки, которые будут отклонены
	WouldDisplace []DisplacedRequest
}
