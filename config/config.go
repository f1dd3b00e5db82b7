// Package config holds the notifier configuration.
package config

import (
	"fmt"
	"net/url"
	"time"
)

// Config holds every knob the notifier reads. It is built once at
// startup and passed down explicitly; nothing reads the environment
// after that.
type Config struct {
	ShopURL         string
	UserAgent       string
	Timeout         time.Duration
	MaxRetries      int
	RetryBackoff    time.Duration
	RetryBackoffMax time.Duration

	ReportTitle   string
	CacheTTL      time.Duration
	SchedulesFile string
	MetricsAddr   string
	Verbose       bool

	// TelegramToken comes only from the environment, never from a flag
	// or file on disk.
	TelegramToken string
}

// DefaultConfig returns conservative defaults for the farm shop.
func DefaultConfig() *Config {
	return &Config{
		ShopURL:         "https://healthfullyfarm.com/shop/",
		UserAgent:       "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120 Safari/537.36",
		Timeout:         20 * time.Second,
		MaxRetries:      2,
		RetryBackoff:    200 * time.Millisecond,
		RetryBackoffMax: 2 * time.Second,
		CacheTTL:        30 * time.Second,
		SchedulesFile:   "schedules.json",
	}
}

// Validate ensures all configuration values are coherent.
func (c *Config) Validate() error {
	if c.ShopURL == "" {
		return fmt.Errorf("shop URL cannot be empty")
	}

	parsedURL, err := url.Parse(c.ShopURL)
	if err != nil {
		return fmt.Errorf("invalid shop URL: %w", err)
	}
	if parsedURL.Host == "" {
		return fmt.Errorf("shop URL must include a host")
	}

	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	if c.MaxRetries < 0 {
		return fmt.Errorf("max retries cannot be negative")
	}
	if c.RetryBackoff < 0 {
		return fmt.Errorf("retry backoff cannot be negative")
	}
	if c.RetryBackoffMax < 0 {
		return fmt.Errorf("retry backoff max cannot be negative")
	}
	if c.RetryBackoffMax > 0 && c.RetryBackoff > c.RetryBackoffMax {
		return fmt.Errorf("retry backoff (%s) cannot exceed retry backoff max (%s)", c.RetryBackoff, c.RetryBackoffMax)
	}
	if c.CacheTTL < 0 {
		return fmt.Errorf("cache TTL cannot be negative")
	}
	if c.SchedulesFile == "" {
		return fmt.Errorf("schedules file cannot be empty")
	}
	if c.UserAgent == "" {
		return fmt.Errorf("user agent cannot be empty")
	}

	return nil
}
