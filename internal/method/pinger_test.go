package method

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"git.ghink.net/ghink/keep-alive/internal/model"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func newObservedLogger() (*zap.Logger, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	return zap.New(core), logs
}

func TestPing_Success(t *testing.T) {
	var hits int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		if r.Method != http.MethodGet {
			t.Errorf("expected GET, got %s", r.Method)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	logger, logs := newObservedLogger()
	p := NewPinger(model.Config{BaseURL: server.URL}, logger)

	attempt := p.Ping(context.Background())

	if !attempt.OK() || attempt.StatusCode != http.StatusOK {
		t.Fatalf("unexpected attempt: %+v", attempt)
	}
	if got := atomic.LoadInt32(&hits); got != 1 {
		t.Errorf("expected 1 request, got %d", got)
	}

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 log entry, got %d", len(entries))
	}
	if entries[0].Level != zapcore.InfoLevel {
		t.Errorf("expected info level, got %s", entries[0].Level)
	}
	if !strings.Contains(entries[0].Message, "200") {
		t.Errorf("message %q does not mention the status code", entries[0].Message)
	}
	if status := entries[0].ContextMap()["status"]; status != int64(200) {
		t.Errorf("status field = %v, want 200", status)
	}
}

func TestPing_ServerErrorIsStillAResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	logger, logs := newObservedLogger()
	attempt := NewPinger(model.Config{BaseURL: server.URL}, logger).Ping(context.Background())

	if !attempt.OK() || attempt.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("unexpected attempt: %+v", attempt)
	}
	if logs.FilterLevelExact(zapcore.InfoLevel).Len() != 1 || logs.FilterLevelExact(zapcore.ErrorLevel).Len() != 0 {
		t.Errorf("expected a single info entry, got %v", logs.All())
	}
}

func TestPing_Unreachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	logger, logs := newObservedLogger()
	attempt := NewPinger(model.Config{BaseURL: url}, logger).Ping(context.Background())

	if attempt.OK() {
		t.Fatal("expected the attempt to fail against a closed port")
	}
	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 log entry, got %d", len(entries))
	}
	if entries[0].Level != zapcore.ErrorLevel {
		t.Errorf("expected error level, got %s", entries[0].Level)
	}
	if !strings.HasPrefix(entries[0].Message, "Keep-alive error: ") {
		t.Errorf("unexpected message %q", entries[0].Message)
	}
}

func TestPing_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer server.Close()

	logger, logs := newObservedLogger()
	cfg := model.Config{BaseURL: server.URL, HTTPTimeout: 50 * time.Millisecond}

	start := time.Now()
	attempt := NewPinger(cfg, logger).Ping(context.Background())

	if attempt.OK() {
		t.Fatal("expected a timeout error")
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("request was not bounded by the timeout, took %v", elapsed)
	}
	if logs.FilterLevelExact(zapcore.ErrorLevel).Len() != 1 || logs.Len() != 1 {
		t.Errorf("expected exactly one error entry, got %v", logs.All())
	}
}

func TestPing_MalformedURL(t *testing.T) {
	logger, logs := newObservedLogger()
	attempt := NewPinger(model.Config{BaseURL: "http://[::1"}, logger).Ping(context.Background())

	if attempt.OK() {
		t.Fatal("expected an error for a malformed URL")
	}
	if logs.FilterLevelExact(zapcore.ErrorLevel).Len() != 1 {
		t.Errorf("expected one error entry, got %v", logs.All())
	}
}

func TestPing_ICMPProbeOnFailure(t *testing.T) {
	logger, logs := newObservedLogger()
	cfg := model.Config{BaseURL: "not a url", ICMPProbe: true}

	NewPinger(cfg, logger).Ping(context.Background())

	if logs.FilterLevelExact(zapcore.ErrorLevel).Len() != 1 {
		t.Errorf("expected one error entry, got %v", logs.All())
	}
	if logs.FilterMessage("ICMP probe skipped").Len() != 1 {
		t.Errorf("expected the probe to run and skip a host-less URL, got %v", logs.All())
	}
}

func TestNewPinger_DefaultTimeout(t *testing.T) {
	p := NewPinger(model.Config{BaseURL: "http://example.com"}, zap.NewNop())
	if p.client.Timeout != model.DefaultHTTPTimeout {
		t.Errorf("timeout = %v, want %v", p.client.Timeout, model.DefaultHTTPTimeout)
	}
}

func TestPing_ICMPProbeWithZeroSettings(t *testing.T) {
	logger, logs := newObservedLogger()
	cfg := model.Config{BaseURL: "http://127.0.0.1:1", Port: "1", ICMPProbe: true}

	attempt := NewPinger(cfg, logger).Ping(context.Background())

	if attempt.OK() {
		t.Fatal("expected the request to a closed port to fail")
	}
	if logs.FilterLevelExact(zapcore.ErrorLevel).Len() != 1 {
		t.Errorf("expected one error entry, got %v", logs.All())
	}

	reachable := logs.FilterMessage("Host reachable over ICMP").Len()
	unreachable := logs.FilterMessage("Host unreachable over ICMP").All()
	if reachable+len(unreachable) != 1 {
		t.Fatalf("expected one ICMP result entry, got %v", logs.All())
	}
	for _, entry := range unreachable {
		if msg, _ := entry.ContextMap()["error"].(string); strings.Contains(msg, "no valid IP addresses") {
			t.Errorf("IPv4 should be used when no address family is set, got %q", msg)
		}
	}
}

func TestPing_CancelledContextIsNotAnError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	logger, logs := newObservedLogger()
	attempt := NewPinger(model.Config{BaseURL: server.URL}, logger).Ping(ctx)

	if attempt.OK() {
		t.Fatal("expected the cancelled request to fail")
	}
	if logs.FilterLevelExact(zapcore.ErrorLevel).Len() != 0 {
		t.Errorf("shutdown should not log an error, got %v", logs.All())
	}
	if logs.FilterMessage("Keep-alive ping interrupted").Len() != 1 {
		t.Errorf("expected a debug entry for the interrupted ping, got %v", logs.All())
	}
}
