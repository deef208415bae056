package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	keepAlive "git.ghink.net/ghink/keep-alive"
	"git.ghink.net/ghink/keep-alive/internal/method"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

type settings struct {
	keepAlive.Config
	LogFormat  string
	LogLevel   string
	ConfigFile string
}

func loadConfig() (settings, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("json")
	v.AddConfigPath(".")

	v.SetDefault("interval_seconds", int(keepAlive.DefaultInterval/time.Second))
	v.SetDefault("http_timeout_seconds", int(keepAlive.DefaultHTTPTimeout/time.Second))
	v.SetDefault("icmp_probe", false)
	v.SetDefault("ping_count", keepAlive.DefaultPingCount)
	v.SetDefault("ping_timeout_seconds", int(keepAlive.DefaultPingTimeout/time.Second))
	v.SetDefault("use_ipv4", true)
	v.SetDefault("use_ipv6", false)
	v.SetDefault("use_system_ping", runtime.GOOS == "darwin")
	v.SetDefault("log_format", "console")
	v.SetDefault("log_level", "info")

	if err := v.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) {
			return settings{}, fmt.Errorf("read config file: %w", err)
		}
	}

	v.SetEnvPrefix("KEEPALIVE")
	v.AutomaticEnv()
	// Platforms inject these two without a prefix.
	if err := v.BindEnv("base_url", "BASE_URL"); err != nil {
		return settings{}, err
	}
	if err := v.BindEnv("port", "PORT"); err != nil {
		return settings{}, err
	}

	return settings{
		Config: keepAlive.Config{
			BaseURL:       keepAlive.TrimBaseURL(v.GetString("base_url")),
			Port:          v.GetString("port"),
			Interval:      time.Duration(v.GetInt("interval_seconds")) * time.Second,
			HTTPTimeout:   time.Duration(v.GetInt("http_timeout_seconds")) * time.Second,
			ICMPProbe:     v.GetBool("icmp_probe"),
			PingCount:     v.GetInt("ping_count"),
			PingTimeout:   time.Duration(v.GetInt("ping_timeout_seconds")) * time.Second,
			UseIPv4:       v.GetBool("use_ipv4"),
			UseIPv6:       v.GetBool("use_ipv6"),
			UseSystemPing: v.GetBool("use_system_ping"),
		},
		LogFormat:  v.GetString("log_format"),
		LogLevel:   v.GetString("log_level"),
		ConfigFile: v.ConfigFileUsed(),
	}, nil
}

func main() {
	s, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := method.NewLogger(s.LogFormat, s.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()
	zap.ReplaceGlobals(logger)

	if s.ConfigFile == "" {
		logger.Debug("Config file not found, using defaults")
	} else {
		logger.Debug("Using config file", zap.String("path", s.ConfigFile))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("Shutting down...")
		cancel()
	}()

	keepAlive.Daemon(ctx, s.Config)
}
