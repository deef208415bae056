package method

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"git.ghink.net/ghink/keep-alive/internal/model"
	"go.uber.org/zap"
)

type Pinger struct {
	cfg    model.Config
	client *http.Client
	logger *zap.Logger
}

func NewPinger(cfg model.Config, logger *zap.Logger) *Pinger {
	timeout := cfg.HTTPTimeout
	if timeout <= 0 {
		timeout = model.DefaultHTTPTimeout
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.DisableKeepAlives = true

	return &Pinger{
		cfg: cfg,
		client: &http.Client{
			Timeout:   timeout,
			Transport: transport,
		},
		logger: logger,
	}
}

// Ping issues one GET against the base URL and logs the outcome. Failures are
// logged and absorbed here; the returned Attempt is for callers that want to
// inspect it, not for error handling.
func (p *Pinger) Ping(ctx context.Context) model.Attempt {
	start := time.Now()
	status, err := p.get(ctx)
	attempt := model.Attempt{
		URL:        p.cfg.BaseURL,
		StatusCode: status,
		Err:        err,
		Elapsed:    time.Since(start),
	}

	if err != nil && ctx.Err() != nil {
		p.logger.Debug("Keep-alive ping interrupted", zap.String("url", attempt.URL), zap.Error(err))
		return attempt
	}

	if err != nil {
		p.logger.Error(fmt.Sprintf("Keep-alive error: %v", err), zap.String("url", attempt.URL))
		if p.cfg.ICMPProbe {
			probeHost(p.cfg, p.logger)
		}
		return attempt
	}

	p.logger.Info(fmt.Sprintf("Keep-alive ping: %d", status),
		zap.Int("status", status),
		zap.Duration("elapsed", attempt.Elapsed),
	)
	return attempt
}

func (p *Pinger) get(ctx context.Context) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.cfg.BaseURL, nil)
	if err != nil {
		return 0, fmt.Errorf("invalid URL: %w", err)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer func(Body io.ReadCloser) {
		_ = Body.Close()
	}(resp.Body)

	return resp.StatusCode, nil
}
