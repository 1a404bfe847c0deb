package notifications

import "context"

// Mailer доставляет письмо адресату
type Mailer interface {
	Deliver(ctx context.Context, to, subject, html string) error
}

// Broadcaster публикует сообщение в общий канал
type Broadcaster interface {
	Broadcast(ctx context.Context, message string) error
}

// Metrics счетчик попыток доставки
type Metrics interface {
	RecordNotification(kind, channel string, err error)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
