package mailer

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/mailersend/mailersend-go"
)

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// Client клиент MailerSend для отправки писем заявителям
type Client struct {
	client  *mailersend.Mailersend
	from    mailersend.From
	timeout time.Duration
	log     Logger
}

// NewClient создает новый экземпляр клиента MailerSend
func NewClient(apiKey, fromName, fromEmail string, timeout time.Duration, log Logger) *Client {
	return &Client{
		client: mailersend.NewMailersend(apiKey),
		from: mailersend.From{
			Name:  fromName,
			Email: fromEmail,
		},
		timeout: timeout,
		log:     log,
	}
}

// Deliver отправляет HTML-письмо одному получателю
func (c *Client) Deliver(ctx context.Context, to, subject, html string) error {
	if strings.TrimSpace(to) == "" {
		return ErrInvalidRecipient
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	msg := c.client.Email.NewMessage()
	msg.SetFrom(c.from)
	msg.SetRecipients([]mailersend.Recipient{{Email: to}})
	msg.SetSubject(subject)
	msg.SetHTML(html)

	res, err := c.client.Email.Send(ctx, msg)
	if err != nil {
		return fmt.Errorf("%w: failed to send email: %v", ErrInternal, err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		body, _ := io.ReadAll(res.Body)
		return fmt.Errorf("%w: status=%d body=%s", ErrInvalidResponse, res.StatusCode, strings.TrimSpace(string(body)))
	}

	c.log.Info("Deliver: email %q sent to %s, message_id=%s", subject, to, res.Header.Get("X-Message-Id"))
	return nil
}

// LogClient пишет письма в лог вместо отправки (mail.enabled = false)
type LogClient struct {
	log Logger
}

// NewLogClient создает клиент, который только логирует письма
func NewLogClient(log Logger) *LogClient {
	return &LogClient{log: log}
}

func (c *LogClient) Deliver(_ context.Context, to, subject, _ string) error {
	if strings.TrimSpace(to) == "" {
		return ErrInvalidRecipient
	}
	c.log.Info("Deliver: mail disabled, skipping email %q to %s", subject, to)
	return nil
}
