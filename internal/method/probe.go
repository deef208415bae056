package method

import (
	"context"
	"fmt"
	"net"
	"net/url"
	"os/exec"
	"runtime"
	"strconv"
	"strings"
	"time"

	"git.ghink.net/ghink/keep-alive/internal/model"
	"github.com/go-ping/ping"
	"go.uber.org/zap"
)

// probeHost measures ICMP reachability of the keep-alive target. It is only
// run after a failed request, to tell a dead host apart from a dead service.
func probeHost(cfg model.Config, logger *zap.Logger) {
	cfg = withProbeDefaults(cfg)

	host, err := hostOf(cfg.BaseURL)
	if err != nil {
		logger.Debug("ICMP probe skipped", zap.Error(err))
		return
	}

	rtt, err := getPingTime(cfg, host, logger)
	if err != nil {
		logger.Debug("Host unreachable over ICMP", zap.String("host", host), zap.Error(err))
		return
	}
	logger.Debug("Host reachable over ICMP", zap.String("host", host), zap.Float64("rtt_ms", rtt))
}

// withProbeDefaults fills zero ICMP settings. go-ping panics on a zero timeout.
func withProbeDefaults(cfg model.Config) model.Config {
	if cfg.PingCount <= 0 {
		cfg.PingCount = model.DefaultPingCount
	}
	if cfg.PingTimeout <= 0 {
		cfg.PingTimeout = model.DefaultPingTimeout
	}
	if !cfg.UseIPv4 && !cfg.UseIPv6 {
		cfg.UseIPv4 = true
	}
	return cfg
}

func hostOf(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("invalid URL: %w", err)
	}
	if u.Hostname() == "" {
		return "", fmt.Errorf("no host in %q", rawURL)
	}
	return u.Hostname(), nil
}

func getPingTime(cfg model.Config, host string, logger *zap.Logger) (float64, error) {
	ips, err := resolveIP(host, cfg.UseIPv4, cfg.UseIPv6)
	if err != nil {
		return 0, fmt.Errorf("DNS resolution failed: %w", err)
	}

	if len(ips) == 0 {
		return 0, fmt.Errorf("no valid IP addresses found for %s", host)
	}

	var lastErr error
	for _, ip := range ips {
		var pingTime float64
		var err error

		if cfg.UseSystemPing {
			pingTime, err = pingWithSystem(ip, cfg.PingCount, cfg.PingTimeout)
		} else {
			pingTime, err = pingWithGoPing(ip, cfg.PingCount, cfg.PingTimeout)
		}

		if err == nil {
			return pingTime, nil
		}
		lastErr = err
		logger.Debug("ICMP ping failed, trying next IP", zap.String("ip", ip), zap.Error(err))
	}

	return 0, fmt.Errorf("all ping attempts failed: %w", lastErr)
}

func resolveIP(host string, useIPv4, useIPv6 bool) ([]string, error) {
	ips, err := net.LookupIP(host)
	if err != nil {
		return nil, err
	}

	var validIPs []string
	for _, ip := range ips {
		if useIPv4 && ip.To4() != nil {
			validIPs = append(validIPs, ip.String())
		} else if useIPv6 && ip.To4() == nil {
			validIPs = append(validIPs, ip.String())
		}
	}

	return validIPs, nil
}

func pingWithGoPing(ip string, count int, timeout time.Duration) (float64, error) {
	pinger, err := ping.NewPinger(ip)
	if err != nil {
		return 0, fmt.Errorf("pinger creation failed: %w", err)
	}

	pinger.Count = count
	pinger.Timeout = timeout
	pinger.SetPrivileged(true)

	if err := pinger.Run(); err != nil {
		return 0, fmt.Errorf("ping failed: %w", err)
	}

	stats := pinger.Statistics()
	if stats.PacketsRecv == 0 {
		return 0, fmt.Errorf("no response from %s", ip)
	}

	return stats.AvgRtt.Seconds() * 1000, nil
}

func pingWithSystem(ip string, count int, timeout time.Duration) (float64, error) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout+2*time.Second)
	defer cancel()

	cmd := exec.CommandContext(ctx, "ping", systemPingArgs(runtime.GOOS, ip, count, timeout)...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return 0, fmt.Errorf("system ping command failed: %w, output: %s", err, string(output))
	}

	return parseSystemPingOutput(string(output))
}

func systemPingArgs(goos, ip string, count int, timeout time.Duration) []string {
	switch goos {
	case "darwin":
		return []string{"-c", strconv.Itoa(count), "-t", strconv.Itoa(int(timeout.Seconds())), ip}
	case "windows":
		return []string{"-n", strconv.Itoa(count), "-w", strconv.Itoa(int(timeout.Milliseconds())), ip}
	default:
		return []string{"-c", strconv.Itoa(count), "-W", strconv.Itoa(int(timeout.Seconds())), ip}
	}
}

// parseSystemPingOutput returns the average RTT in milliseconds.
func parseSystemPingOutput(output string) (float64, error) {
	lines := strings.Split(output, "\n")

	for i := len(lines) - 1; i >= 0; i-- {
		line := lines[i]

		// "rtt min/avg/max/mdev = 1.234/2.345/3.456/0.123 ms"
		if strings.Contains(line, "round-trip") || strings.Contains(line, "rtt") {
			for _, part := range strings.Fields(line) {
				stats := strings.Split(part, "/")
				if len(stats) < 4 {
					continue
				}
				if avg, err := strconv.ParseFloat(stats[1], 64); err == nil {
					return avg, nil
				}
			}
		}

		// "Minimum = 1ms, Maximum = 2ms, Average = 3ms"
		if strings.Contains(line, "Average =") {
			parts := strings.Fields(line)
			for i, part := range parts {
				if part == "Average" && i+2 < len(parts) {
					avgStr := strings.TrimSuffix(parts[i+2], "ms")
					if avg, err := strconv.ParseFloat(avgStr, 64); err == nil {
						return avg, nil
					}
				}
			}
		}
	}

	return 0, fmt.Errorf("could not parse ping output: %s", output)
}
