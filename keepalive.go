// Package keepalive periodically requests a service's base URL so that hosting
// platforms which suspend idle services keep it awake.
package keepalive

import (
	"context"

	"git.ghink.net/ghink/keep-alive/internal/method"
	"git.ghink.net/ghink/keep-alive/internal/model"
)

type (
	Config  = model.Config
	Attempt = model.Attempt
	State   = model.State
)

const (
	DefaultInterval    = model.DefaultInterval
	DefaultHTTPTimeout = model.DefaultHTTPTimeout
	DefaultPingCount   = model.DefaultPingCount
	DefaultPingTimeout = model.DefaultPingTimeout

	StateDisabled = model.StateDisabled
	StateRunning  = model.StateRunning
)

// Daemon blocks until ctx is cancelled, or returns StateDisabled right away
// when BaseURL or Port is empty.
func Daemon(ctx context.Context, cfg Config) State {
	return method.Daemon(ctx, cfg)
}

// TrimBaseURL strips trailing slashes from a base URL.
func TrimBaseURL(raw string) string {
	return model.TrimBaseURL(raw)
}
