package broadcast

import (
	"context"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
)

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// DefaultFlushTimeout ожидание подтверждения сервера, если таймаут не задан
const DefaultFlushTimeout = 5 * time.Second

// Publisher публикует сообщения канала рассылки в NATS subject
type Publisher struct {
	conn    *nats.Conn
	subject string
	timeout time.Duration
	log     Logger
}

// NewPublisher подключается к NATS
func NewPublisher(url, subject string, timeout time.Duration, log Logger) (*Publisher, error) {
	conn, err := nats.Connect(url,
		nats.Name("venue-booking-service"),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				log.Warn("NATS disconnected: %v", err)
			}
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			log.Info("NATS reconnected to %s", c.ConnectedUrl())
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConnect, err)
	}

	return &Publisher{
		conn:    conn,
		subject: subject,
		timeout: timeout,
		log:     log,
	}, nil
}

// Broadcast публикует текстовое сообщение и дожидается подтверждения сервера
func (p *Publisher) Broadcast(ctx context.Context, message string) error {
	msg := nats.NewMsg(p.subject)
	msg.Data = []byte(message)
	msg.Header.Set("Content-Type", "text/plain; charset=utf-8")

	if err := p.conn.PublishMsg(msg); err != nil {
		return fmt.Errorf("%w: %v", ErrPublish, err)
	}

	if _, ok := ctx.Deadline(); ok {
		if err := p.conn.FlushWithContext(ctx); err != nil {
			return fmt.Errorf("%w: flush: %v", ErrPublish, err)
		}
		return nil
	}

	if err := p.conn.FlushTimeout(p.flushTimeout()); err != nil {
		return fmt.Errorf("%w: flush: %v", ErrPublish, err)
	}
	return nil
}

// flushTimeout возвращает положительный таймаут: FlushTimeout отвергает 0
func (p *Publisher) flushTimeout() time.Duration {
	if p.timeout <= 0 {
		return DefaultFlushTimeout
	}
	return p.timeout
}

// Close закрывает соединение, отправив буферизованные сообщения
func (p *Publisher) Close() error {
	return p.conn.Drain()
}

// LogPublisher пишет сообщения в лог (broadcast.enabled = false)
type LogPublisher struct {
	log Logger
}

// NewLogPublisher создает публикатор, который только логирует
func NewLogPublisher(log Logger) *LogPublisher {
	return &LogPublisher{log: log}
}

func (p *LogPublisher) Broadcast(_ context.Context, message string) error {
	p.log.Info("Broadcast: broadcast disabled, skipping message: %s", message)
	return nil
}

func (p *LogPublisher) Close() error {
	return nil
}
