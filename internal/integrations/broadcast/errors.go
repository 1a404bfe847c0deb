package broadcast

import "errors"

var (
	// ErrConnect возвращается при ошибке подключения к NATS
	ErrConnect = errors.New("broadcast: failed to connect")

	// ErrPublish возвращается при ошибке публикации сообщения
	ErrPublish = errors.New("broadcast: failed to publish")
)
