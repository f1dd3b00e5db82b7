package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/oxbi/heathfully/config"
)

func writeConfigFile(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(contents), 0o600); err != nil {
		t.Fatalf("writing config file: %v", err)
	}
	return path
}

func TestResolveConfigFileValuesSurviveFlagDefaults(t *testing.T) {
	path := writeConfigFile(t, "shop_url: https://farm.example/shop/\ntimeout_sec: 5\nmax_retries: 7\n")

	defaults := config.DefaultConfig()
	opts := options{
		shopURL:    defaults.ShopURL,
		timeout:    defaults.Timeout,
		maxRetries: defaults.MaxRetries,
	}

	cfg, err := resolveConfig(path, opts, map[string]bool{})
	if err != nil {
		t.Fatalf("resolveConfig: %v", err)
	}
	if cfg.ShopURL != "https://farm.example/shop/" {
		t.Errorf("ShopURL = %q, want the file value", cfg.ShopURL)
	}
	if cfg.Timeout != 5*time.Second {
		t.Errorf("Timeout = %v, want 5s from the file", cfg.Timeout)
	}
	if cfg.MaxRetries != 7 {
		t.Errorf("MaxRetries = %d, want 7 from the file", cfg.MaxRetries)
	}
}

func TestResolveConfigExplicitFlagWinsOverFile(t *testing.T) {
	path := writeConfigFile(t, "timeout_sec: 5\n")

	cfg, err := resolveConfig(path, options{timeout: 9 * time.Second}, map[string]bool{"timeout": true})
	if err != nil {
		t.Fatalf("resolveConfig: %v", err)
	}
	if cfg.Timeout != 9*time.Second {
		t.Errorf("Timeout = %v, want the flag value 9s", cfg.Timeout)
	}
}

func TestResolveConfigEnvWinsOverFile(t *testing.T) {
	path := writeConfigFile(t, "shop_url: https://file.example/shop/\n")
	t.Setenv("SHOP_URL", "https://env.example/shop/")

	cfg, err := resolveConfig(path, options{}, nil)
	if err != nil {
		t.Fatalf("resolveConfig: %v", err)
	}
	if cfg.ShopURL != "https://env.example/shop/" {
		t.Errorf("ShopURL = %q, want the environment value", cfg.ShopURL)
	}
}

func TestResolveConfigExplicitFlagWinsOverEnv(t *testing.T) {
	t.Setenv("MAX_RETRIES", "9")

	cfg, err := resolveConfig("", options{maxRetries: 3}, map[string]bool{"max-retries": true})
	if err != nil {
		t.Fatalf("resolveConfig: %v", err)
	}
	if cfg.MaxRetries != 3 {
		t.Errorf("MaxRetries = %d, want the flag value 3", cfg.MaxRetries)
	}
}

func TestResolveConfigMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "absent.yaml")
	if _, err := resolveConfig(path, options{}, nil); err == nil {
		t.Fatal("expected an error for a missing config file")
	}
}
