package notify

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/adanyl0v/go-taskboard/internal/metrics"
)

const (
	resultSent    = "sent"
	resultFailed  = "failed"
	resultDropped = "dropped"
)

// Dispatcher delivers messages in the background after the
// triggering request has finished. Delivery errors are logged and
// counted, never returned.
type Dispatcher struct {
	logger  zerolog.Logger
	sender  Sender
	limiter *rate.Limiter
	timeout time.Duration
	metrics *metrics.Metrics

	mu     sync.Mutex
	closed bool
	wg     sync.WaitGroup
}

func NewDispatcher(
	logger zerolog.Logger,
	sender Sender,
	ratePerSecond float64,
	burst int,
	timeout time.Duration,
	m *metrics.Metrics,
) *Dispatcher {
	return &Dispatcher{
		logger:  logger,
		sender:  sender,
		limiter: rate.NewLimiter(rate.Limit(ratePerSecond), burst),
		timeout: timeout,
		metrics: m,
	}
}

// Notify schedules the message and returns immediately. The
// delivery outlives ctx cancellation but is bounded by the
// dispatcher timeout.
func (d *Dispatcher) Notify(ctx context.Context, msg Message) {
	if len(msg.To) == 0 {
		return
	}

	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		d.logger.Warn().
			Str("kind", string(msg.Kind)).
			Msg("dispatcher is closed, dropping notification")
		d.metrics.NotificationsTotal.WithLabelValues(string(msg.Kind), resultDropped).Inc()
		return
	}
	d.wg.Add(1)
	d.mu.Unlock()

	go func() {
		defer d.wg.Done()

		sendCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), d.timeout)
		defer cancel()
		d.deliver(sendCtx, msg)
	}()
}

func (d *Dispatcher) deliver(ctx context.Context, msg Message) {
	if err := d.limiter.Wait(ctx); err != nil {
		d.logger.Warn().
			Err(err).
			Str("kind", string(msg.Kind)).
			Strs("to", msg.To).
			Msg("notification rate limit wait aborted")
		d.metrics.NotificationsTotal.WithLabelValues(string(msg.Kind), resultDropped).Inc()
		return
	}

	start := time.Now()
	err := d.sender.Send(ctx, msg)
	d.metrics.NotificationDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		d.logger.Warn().
			Err(err).
			Str("kind", string(msg.Kind)).
			Strs("to", msg.To).
			Msg("failed to send notification")
		d.metrics.NotificationsTotal.WithLabelValues(string(msg.Kind), resultFailed).Inc()
		return
	}

	d.logger.Debug().
		Str("kind", string(msg.Kind)).
		Strs("to", msg.To).
		Msg("sent notification")
	d.metrics.NotificationsTotal.WithLabelValues(string(msg.Kind), resultSent).Inc()
}

// Close stops accepting messages and waits for pending deliveries
// or until ctx is done.
func (d *Dispatcher) Close(ctx context.Context) error {
	d.mu.Lock()
	d.closed = true
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Discard is used when no mail server is configured. Messages are
// counted as dropped when Metrics is set.
type Discard struct {
	Logger  zerolog.Logger
	Metrics *metrics.Metrics
}

func (d Discard) Notify(_ context.Context, msg Message) {
	if d.Metrics != nil {
		d.Metrics.NotificationsTotal.WithLabelValues(string(msg.Kind), resultDropped).Inc()
	}
	d.Logger.Debug().
		Str("kind", string(msg.Kind)).
		Strs("to", msg.To).
		Msg("notifications disabled, message discarded")
}
