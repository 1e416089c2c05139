package config

import (
	"strings"
	"testing"
	"time"

	"github.com/Xausdorf/openpoll/internal/domain"
	"github.com/rs/zerolog"
)

func env(values map[string]string) func(string) string {
	return func(key string) string { return values[key] }
}

func base() map[string]string {
	return map[string]string{
		"SLACK_BOT_TOKEN":      "xoxb-test",
		"SLACK_SIGNING_SECRET": "secret",
		"STORE_DRIVER":         "memory",
	}
}

func TestDefaults(t *testing.T) {
	cfg, err := FromEnv(env(base()))
	if err != nil {
		t.Fatalf("FromEnv: %v", err)
	}

	if cfg.HTTP.Addr != ":5000" {
		t.Errorf("HTTP.Addr = %q", cfg.HTTP.Addr)
	}
	if cfg.HTTP.RateLimit != 120 {
		t.Errorf("HTTP.RateLimit = %d", cfg.HTTP.RateLimit)
	}
	if cfg.Lock.Attempts != 3 || cfg.Lock.AttemptTimeout != 2*time.Second || cfg.Lock.IdleTTL != time.Hour {
		t.Errorf("Lock = %+v", cfg.Lock)
	}
	if cfg.LimitBoundary != domain.LimitBoundaryAbove {
		t.Errorf("LimitBoundary = %v", cfg.LimitBoundary)
	}
	if !cfg.PurgeOnDelete {
		t.Error("PurgeOnDelete should default to true")
	}
	if cfg.HelpCommand != "/openpoll" {
		t.Errorf("HelpCommand = %q", cfg.HelpCommand)
	}
	if cfg.Log.Level != zerolog.InfoLevel {
		t.Errorf("Log.Level = %v", cfg.Log.Level)
	}
}

func TestOverrides(t *testing.T) {
	values := base()
	values["HTTP_ADDR"] = ":8080"
	values["HTTP_REUSEPORT"] = "true"
	values["LOCK_ATTEMPTS"] = "5"
	values["LOCK_ATTEMPT_TIMEOUT"] = "500ms"
	values["LOCK_IDLE_TTL"] = "0"
	values["VOTE_LIMIT_BOUNDARY"] = "at_or_above"
	values["PURGE_ON_DELETE"] = "false"
	values["LOG_LEVEL"] = "debug"

	cfg, err := FromEnv(env(values))
	if err != nil {
		t.Fatalf("FromEnv: %v", err)
	}
	if cfg.HTTP.Addr != ":8080" || !cfg.HTTP.ReusePort {
		t.Errorf("HTTP = %+v", cfg.HTTP)
	}
	if cfg.Lock.Attempts != 5 || cfg.Lock.AttemptTimeout != 500*time.Millisecond || cfg.Lock.IdleTTL != 0 {
		t.Errorf("Lock = %+v", cfg.Lock)
	}
	if cfg.LimitBoundary != domain.LimitBoundaryAtOrAbove {
		t.Errorf("LimitBoundary = %v", cfg.LimitBoundary)
	}
	if cfg.PurgeOnDelete {
		t.Error("PurgeOnDelete should be false")
	}
	if cfg.Log.Level != zerolog.DebugLevel {
		t.Errorf("Log.Level = %v", cfg.Log.Level)
	}
}

func TestInvalid(t *testing.T) {
	tests := []struct {
		name string
		set  map[string]string
		want string
	}{
		{"no token", map[string]string{"SLACK_BOT_TOKEN": ""}, "bot token"},
		{"no secret", map[string]string{"SLACK_SIGNING_SECRET": ""}, "signing secret"},
		{"bad attempts", map[string]string{"LOCK_ATTEMPTS": "many"}, "LOCK_ATTEMPTS"},
		{"zero attempts", map[string]string{"LOCK_ATTEMPTS": "0"}, "LOCK_ATTEMPTS"},
		{"bad timeout", map[string]string{"LOCK_ATTEMPT_TIMEOUT": "soon"}, "LOCK_ATTEMPT_TIMEOUT"},
		{"bad boundary", map[string]string{"VOTE_LIMIT_BOUNDARY": "below"}, "VOTE_LIMIT_BOUNDARY"},
		{"bad level", map[string]string{"LOG_LEVEL": "loud"}, "LOG_LEVEL"},
		{"bad driver", map[string]string{"STORE_DRIVER": "mongo"}, "unknown store driver"},
		{"sql without url", map[string]string{"STORE_DRIVER": "sqlite"}, "DATABASE_URL"},
		{"tarantool without user", map[string]string{"STORE_DRIVER": "tarantool"}, "tarantool user"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			values := base()
			for k, v := range tt.set {
				values[k] = v
			}
			_, err := FromEnv(env(values))
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not mention %q", err, tt.want)
			}
		})
	}
}

func TestSkipVerifyAllowsMissingSecret(t *testing.T) {
	values := base()
	values["SLACK_SIGNING_SECRET"] = ""
	values["SLACK_SKIP_VERIFY"] = "true"
	if _, err := FromEnv(env(values)); err != nil {
		t.Errorf("FromEnv: %v", err)
	}
}
