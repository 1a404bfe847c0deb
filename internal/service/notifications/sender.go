package notifications

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/m04kA/SMC-VenueBookingService/internal/domain"
)

// DefaultConcurrency одновременных отправок в одном Send
const DefaultConcurrency = 4

// Failure неудачная попытка доставки одного уведомления
type Failure struct {
	Notification Notification
	Err          error
}

// Report итог отправки: каждое уведомление доставляется независимо,
// ошибка одного не прерывает остальные
type Report struct {
	Attempted int
	Failures  []Failure
}

// OK возвращает true, если все уведомления доставлены
func (r Report) OK() bool {
	return len(r.Failures) == 0
}

// Err возвращает domain.ErrDeliveryFailure со сводкой или nil
func (r Report) Err() error {
	if r.OK() {
		return nil
	}
	errs := make([]error, 0, len(r.Failures))
	for _, f := range r.Failures {
		errs = append(errs, fmt.Errorf("%s %s to %q: %w", f.Notification.Channel, f.Notification.Kind, f.Notification.Recipient, f.Err))
	}
	return fmt.Errorf("%w: %d of %d notifications failed: %w",
		domain.ErrDeliveryFailure, len(r.Failures), r.Attempted, errors.Join(errs...))
}

// Messages возвращает описание каждой неудачной доставки
func (r Report) Messages() []string {
	if r.OK() {
		return nil
	}
	out := make([]string, 0, len(r.Failures))
	for _, f := range r.Failures {
		out = append(out, fmt.Sprintf("%s %s to %q: %v", f.Notification.Channel, f.Notification.Kind, f.Notification.Recipient, f.Err))
	}
	return out
}

// Sender рендерит и доставляет уведомления через почту и канал рассылки
type Sender struct {
	renderer    *Renderer
	mailer      Mailer
	broadcaster Broadcaster
	metrics     Metrics
	logger      Logger
	timeout     time.Duration
	// Таймаут публикации в канал рассылки; 0 - общий timeout
	broadcastTimeout time.Duration
	concurrency      int
}

// NewSender создает отправителя. timeout ограничивает каждую доставку отдельно.
func NewSender(
	renderer *Renderer,
	mailer Mailer,
	broadcaster Broadcaster,
	metrics Metrics,
	logger Logger,
	timeout time.Duration,
) *Sender {
	return &Sender{
		renderer:    renderer,
		mailer:      mailer,
		broadcaster: broadcaster,
		metrics:     metrics,
		logger:      logger,
		timeout:     timeout,
		concurrency: DefaultConcurrency,
	}
}

// WithBroadcastTimeout задает отдельный таймаут доставки в канал рассылки
func (s *Sender) WithBroadcastTimeout(timeout time.Duration) *Sender {
	s.broadcastTimeout = timeout
	return s
}

// Send доставляет все уведомления и возвращает отчет.
// Ошибки не прерывают рассылку и не повторяются: они попадают в Report.Failures.
func (s *Sender) Send(ctx context.Context, notifications []Notification) Report {
	report := Report{Attempted: len(notifications)}
	if len(notifications) == 0 {
		return report
	}

	results := make([]error, len(notifications))

	var g errgroup.Group
	g.SetLimit(s.concurrency)

	for i, n := range notifications {
		g.Go(func() error {
			results[i] = s.deliver(ctx, n)
			return nil
		})
	}
	_ = g.Wait()

	for i, err := range results {
		n := notifications[i]
		if s.metrics != nil {
			s.metrics.RecordNotification(string(n.Kind), string(n.Channel), err)
		}
		if err != nil {
			s.logger.Error("Send: failed to deliver %s %s to %q (request id=%d): %v",
				n.Channel, n.Kind, n.Recipient, n.Context.RequestID, err)
			report.Failures = append(report.Failures, Failure{Notification: n, Err: err})
		}
	}

	s.logger.Info("Send: delivered %d/%d notifications", report.Attempted-len(report.Failures), report.Attempted)
	return report
}

func (s *Sender) deliver(ctx context.Context, n Notification) error {
	if timeout := s.timeoutFor(n.Channel); timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	switch n.Channel {
	case domain.ChannelEmail:
		subject, body, err := s.renderer.RenderEmail(n)
		if err != nil {
			return err
		}
		return s.mailer.Deliver(ctx, n.Recipient, subject, body)

	case domain.ChannelBroadcast:
		message, err := s.renderer.RenderBroadcast(n)
		if err != nil {
			return err
		}
		return s.broadcaster.Broadcast(ctx, message)
	}

	return fmt.Errorf("%w: %q", ErrUnknownChannel, n.Channel)
}

func (s *Sender) timeoutFor(channel domain.Channel) time.Duration {
	if channel == domain.ChannelBroadcast && s.broadcastTimeout > 0 {
		return s.broadcastTimeout
	}
	return s.timeout
}
