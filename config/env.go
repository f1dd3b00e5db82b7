package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// EnvString returns the named variable and whether it was set.
func EnvString(name string) (string, bool) {
	value, ok := os.LookupEnv(name)
	return value, ok
}

// EnvInt parses the named variable as an integer.
func EnvInt(name string) (int, bool, error) {
	raw, ok := os.LookupEnv(name)
	if !ok {
		return 0, false, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false, fmt.Errorf("%s: %w", name, err)
	}
	return value, true, nil
}

// EnvDuration parses the named variable as a time.Duration. A bare
// integer is taken as seconds, matching the original deployment's
// TIMEOUT convention.
func EnvDuration(name string) (time.Duration, bool, error) {
	raw, ok := os.LookupEnv(name)
	if !ok {
		return 0, false, nil
	}
	if seconds, err := strconv.Atoi(raw); err == nil {
		return time.Duration(seconds) * time.Second, true, nil
	}
	value, err := time.ParseDuration(raw)
	if err != nil {
		return 0, false, fmt.Errorf("%s: %w", name, err)
	}
	return value, true, nil
}
