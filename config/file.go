package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// fileConfig mirrors Config for YAML loading. Durations are plain
// integers (seconds or milliseconds) in the file; pointer fields tell
// an absent key apart from a zero value.
type fileConfig struct {
	ShopURL           *string `yaml:"shop_url"`
	UserAgent         *string `yaml:"user_agent"`
	TimeoutSec        *int    `yaml:"timeout_sec"`
	MaxRetries        *int    `yaml:"max_retries"`
	RetryBackoffMS    *int    `yaml:"retry_backoff_ms"`
	RetryBackoffMaxMS *int    `yaml:"retry_backoff_max_ms"`
	ReportTitle       *string `yaml:"report_title"`
	CacheTTLSec       *int    `yaml:"cache_ttl_sec"`
	SchedulesFile     *string `yaml:"schedules_file"`
	MetricsAddr       *string `yaml:"metrics_addr"`
	Verbose           *bool   `yaml:"verbose"`
}

// LoadFile overlays values from a YAML file onto cfg. Keys absent from
// the file keep their current values.
func LoadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("parse config file %q: %w", path, err)
	}

	if fc.ShopURL != nil {
		cfg.ShopURL = *fc.ShopURL
	}
	if fc.UserAgent != nil {
		cfg.UserAgent = *fc.UserAgent
	}
	if fc.TimeoutSec != nil {
		cfg.Timeout = time.Duration(*fc.TimeoutSec) * time.Second
	}
	if fc.MaxRetries != nil {
		cfg.MaxRetries = *fc.MaxRetries
	}
	if fc.RetryBackoffMS != nil {
		cfg.RetryBackoff = time.Duration(*fc.RetryBackoffMS) * time.Millisecond
	}
	if fc.RetryBackoffMaxMS != nil {
		cfg.RetryBackoffMax = time.Duration(*fc.RetryBackoffMaxMS) * time.Millisecond
	}
	if fc.ReportTitle != nil {
		cfg.ReportTitle = *fc.ReportTitle
	}
	if fc.CacheTTLSec != nil {
		cfg.CacheTTL = time.Duration(*fc.CacheTTLSec) * time.Second
	}
	if fc.SchedulesFile != nil {
		cfg.SchedulesFile = *fc.SchedulesFile
	}
	if fc.MetricsAddr != nil {
		cfg.MetricsAddr = *fc.MetricsAddr
	}
	if fc.Verbose != nil {
		cfg.Verbose = *fc.Verbose
	}
	return nil
}
