package model

import (
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	DefaultInterval    = 600 * time.Second
	DefaultHTTPTimeout = 10 * time.Second
	DefaultPingCount   = 4
	DefaultPingTimeout = 10 * time.Second
)

type Config struct {
	BaseURL     string
	Port        string
	Interval    time.Duration
	HTTPTimeout time.Duration

	ICMPProbe     bool
	PingCount     int
	PingTimeout   time.Duration
	UseIPv4       bool
	UseIPv6       bool
	UseSystemPing bool

	Logger *zap.Logger
}

// Enabled reports whether both required values were provided. Port only gates
// the loop; it is never part of the request URL.
func (c Config) Enabled() bool {
	return c.BaseURL != "" && c.Port != ""
}

func TrimBaseURL(raw string) string {
	return strings.TrimRight(raw, "/")
}
