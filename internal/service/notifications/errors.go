package notifications

import "errors"

var (
	// ErrTemplate возвращается при ошибке шаблона сообщения
	ErrTemplate = errors.New("notifications: template error")

	// ErrUnknownChannel возвращается для уведомления с неизвестным каналом
	ErrUnknownChannel = errors.New("notifications: unknown channel")
)
