package method

import (
	"context"
	"time"

	"git.ghink.net/ghink/keep-alive/internal/model"
	"go.uber.org/zap"
)

// Daemon decides once between disabled and running mode. In running mode it
// alternates ping and sleep until ctx is cancelled; a failed ping never ends
// the loop or shortens the sleep.
func Daemon(ctx context.Context, cfg model.Config) model.State {
	logger := loggerFor(cfg)

	if !cfg.Enabled() {
		logger.Warn("BASE_URL or PORT not set, keep-alive disabled")
		return model.StateDisabled
	}

	interval := cfg.Interval
	if interval <= 0 {
		interval = model.DefaultInterval
	}

	pinger := NewPinger(cfg, logger)
	logger.Debug("Keep-alive starting",
		zap.String("base_url", cfg.BaseURL),
		zap.String("port", cfg.Port),
		zap.Duration("interval", interval),
		zap.Duration("http_timeout", pinger.client.Timeout),
		zap.Bool("icmp_probe", cfg.ICMPProbe),
	)

	for {
		pinger.Ping(ctx)
		if !sleep(ctx, interval) {
			break
		}
	}

	logger.Info("Service stopped")
	return model.StateRunning
}

// sleep waits for d and reports false if ctx ended first.
func sleep(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return true
	case <-ctx.Done():
		return false
	}
}
