package app

import (
	"context"

	"github.com/adanyl0v/go-taskboard/internal/config"
	"github.com/adanyl0v/go-taskboard/internal/metrics"
	"github.com/adanyl0v/go-taskboard/internal/notify"
	"github.com/adanyl0v/go-taskboard/internal/services"
)

var (
	globalNotifier   services.Notifier
	globalDispatcher *notify.Dispatcher
)

// InitNotifier starts the email dispatcher. Without an SMTP host
// notifications are only logged.
func InitNotifier() {
	cfg := config.Global().SMTP
	logger := componentLogger("notify")

	if cfg.Host == "" {
		globalNotifier = notify.Discard{Logger: logger, Metrics: metrics.New()}
		globalLogger.Warn().Msg("smtp host is not set, notifications are disabled")
		return
	}

	sender := notify.NewSMTPSender(cfg.Host, cfg.Port, cfg.Username, cfg.Password, cfg.From)
	globalDispatcher = notify.NewDispatcher(
		logger,
		sender,
		cfg.RateLimit,
		cfg.RateBurst,
		cfg.SendTimeout,
		metrics.New(),
	)
	globalNotifier = globalDispatcher
	globalLogger.Info().
		Str("host", cfg.Host).
		Int("port", cfg.Port).
		Msg("initialized notification dispatcher")
}

// CloseNotifier waits for in-flight notifications.
func CloseNotifier(ctx context.Context) {
	if globalDispatcher == nil {
		return
	}
	if err := globalDispatcher.Close(ctx); err != nil {
		globalLogger.Warn().
			Err(err).
			Msg("notifications still pending at shutdown")
		return
	}
	globalLogger.Info().Msg("closed notification dispatcher")
}
