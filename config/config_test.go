package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name: "empty shop url",
			mutate: func(cfg *Config) {
				cfg.ShopURL = ""
			},
			wantErr: "shop URL",
		},
		{
			name: "url without host",
			mutate: func(cfg *Config) {
				cfg.ShopURL = "http://"
			},
			wantErr: "shop URL",
		},
		{
			name: "negative timeout",
			mutate: func(cfg *Config) {
				cfg.Timeout = -1 * time.Second
			},
			wantErr: "timeout",
		},
		{
			name: "negative retries",
			mutate: func(cfg *Config) {
				cfg.MaxRetries = -1
			},
			wantErr: "max retries",
		},
		{
			name: "backoff exceeds max",
			mutate: func(cfg *Config) {
				cfg.RetryBackoff = 3 * time.Second
				cfg.RetryBackoffMax = time.Second
			},
			wantErr: "retry backoff",
		},
		{
			name: "negative cache ttl",
			mutate: func(cfg *Config) {
				cfg.CacheTTL = -time.Second
			},
			wantErr: "cache TTL",
		},
		{
			name: "empty schedules file",
			mutate: func(cfg *Config) {
				cfg.SchedulesFile = ""
			},
			wantErr: "schedules file",
		},
		{
			name: "empty user agent",
			mutate: func(cfg *Config) {
				cfg.UserAgent = ""
			},
			wantErr: "user agent",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestDefaultConfigValid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate, got %v", err)
	}
}

func TestLoadFileOverlay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := "shop_url: https://other.example/shop/\ntimeout_sec: 5\nmetrics_addr: \":9090\"\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	cfg := DefaultConfig()
	if err := LoadFile(path, cfg); err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.ShopURL != "https://other.example/shop/" {
		t.Errorf("shop url = %q", cfg.ShopURL)
	}
	if cfg.Timeout != 5*time.Second {
		t.Errorf("timeout = %v", cfg.Timeout)
	}
	if cfg.MetricsAddr != ":9090" {
		t.Errorf("metrics addr = %q", cfg.MetricsAddr)
	}
	// Keys absent from the file keep their defaults.
	if cfg.SchedulesFile != "schedules.json" {
		t.Errorf("schedules file = %q", cfg.SchedulesFile)
	}
}

func TestLoadFileErrors(t *testing.T) {
	cfg := DefaultConfig()
	if err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml"), cfg); err == nil {
		t.Fatalf("expected error for missing file")
	}

	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte(":\t:"), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	if err := LoadFile(path, cfg); err == nil {
		t.Fatalf("expected error for malformed yaml")
	}
}

func TestEnvInt(t *testing.T) {
	t.Setenv("HF_TEST_RETRIES", "3")
	if v, ok, err := EnvInt("HF_TEST_RETRIES"); err != nil || !ok || v != 3 {
		t.Fatalf("EnvInt = %v, %v, %v; want 3", v, ok, err)
	}

	t.Setenv("HF_TEST_RETRIES", "lots")
	if _, _, err := EnvInt("HF_TEST_RETRIES"); err == nil {
		t.Fatalf("expected error for non-integer value")
	}

	if _, ok, err := EnvInt("HF_TEST_UNSET"); ok || err != nil {
		t.Fatalf("unset variable should report not-ok, got %v, %v", ok, err)
	}
}

func TestEnvDuration(t *testing.T) {
	t.Setenv("HF_TEST_TIMEOUT", "20")
	if d, ok, err := EnvDuration("HF_TEST_TIMEOUT"); err != nil || !ok || d != 20*time.Second {
		t.Fatalf("bare integer = %v, %v, %v; want 20s", d, ok, err)
	}

	t.Setenv("HF_TEST_TIMEOUT", "1m30s")
	if d, ok, err := EnvDuration("HF_TEST_TIMEOUT"); err != nil || !ok || d != 90*time.Second {
		t.Fatalf("duration string = %v, %v, %v; want 1m30s", d, ok, err)
	}

	t.Setenv("HF_TEST_TIMEOUT", "soon")
	if _, _, err := EnvDuration("HF_TEST_TIMEOUT"); err == nil {
		t.Fatalf("expected error for unparseable value")
	}

	if _, ok, err := EnvDuration("HF_TEST_UNSET"); ok || err != nil {
		t.Fatalf("unset variable should report not-ok, got %v, %v", ok, err)
	}
}
