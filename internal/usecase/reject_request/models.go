package reject_request

// Request модель запроса на отклонение заявки
type Request struct {
	RequestID int64
	Reason    string // Причина, которую увидит заявитель
}

// Response модель ответа на отклонение
type Response struct {
	ID              int64
	Email           string
	Status          string
	RejectionReason string

	// Уведомления, которые не удалось доставить; отклонение при этом зафиксировано
	DeliveryFailures []string
}
