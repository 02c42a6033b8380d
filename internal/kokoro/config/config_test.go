package config

import (
	"strings"
	"testing"
	"time"
)

func TestParse_Defaults(t *testing.T) {
	cfg, err := Parse([]byte("database_path: /var/lib/kokoro/kokoro.db\n"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cfg.HTTPAddr != DefaultHTTPAddr {
		t.Errorf("http addr: got %q", cfg.HTTPAddr)
	}
	if cfg.ServiceTimeout != DefaultServiceTimeout {
		t.Errorf("service timeout: got %v", cfg.ServiceTimeout)
	}
	if cfg.RetryAttempts != DefaultRetryAttempts {
		t.Errorf("retry attempts: got %d", cfg.RetryAttempts)
	}
	if cfg.SessionTTL != DefaultSessionTTL {
		t.Errorf("session ttl: got %v", cfg.SessionTTL)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("log level: got %q", cfg.LogLevel)
	}
}

func TestParse_Explicit(t *testing.T) {
	cfg, err := Parse([]byte(`
database_path: ":memory:"
http_addr: "127.0.0.1:9000"
service_timeout: 2s
retry_attempts: 5
session_ttl: 10m
rate_limit_per_minute: 12
log_level: debug
`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cfg.ServiceTimeout != 2*time.Second {
		t.Errorf("service timeout: got %v", cfg.ServiceTimeout)
	}
	if cfg.SessionTTL != 10*time.Minute {
		t.Errorf("session ttl: got %v", cfg.SessionTTL)
	}
	if cfg.RateLimitPerMinute != 12 {
		t.Errorf("rate limit: got %d", cfg.RateLimitPerMinute)
	}
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{"missing database", "http_addr: :8420\n", "database_path"},
		{"bad log level", "database_path: x\nlog_level: loud\n", "log_level"},
		{"negative timeout", "database_path: x\nservice_timeout: -1s\n", "service_timeout"},
		{"not yaml", "{{{", "parse"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			if err == nil {
				t.Fatal("expected an error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not mention %q", err, tt.want)
			}
		})
	}
}
