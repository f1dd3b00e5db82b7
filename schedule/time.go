// Package schedule manages per-subscriber daily report times: the
// HH:MM format, the on-disk schedule store, and the cron-backed runner.
package schedule

import (
	"fmt"
	"regexp"
	"strconv"
	"time"
)

var hhmmRe = regexp.MustCompile(`^\s*(\d{1,2}):(\d{2})\s*$`)

// ParseHHMM parses a 24-hour "HH:MM" string. A single-digit hour is
// accepted ("7:45"); out-of-range values are rejected.
func ParseHHMM(s string) (hour, minute int, err error) {
	m := hhmmRe.FindStringSubmatch(s)
	if m == nil {
		return 0, 0, fmt.Errorf("not a HH:MM time: %q", s)
	}
	hour, _ = strconv.Atoi(m[1])
	minute, _ = strconv.Atoi(m[2])
	if hour > 23 || minute > 59 {
		return 0, 0, fmt.Errorf("time out of range: %q", s)
	}
	return hour, minute, nil
}

// FormatHHMM renders an hour and minute in the canonical stored form.
func FormatHHMM(hour, minute int) string {
	return fmt.Sprintf("%02d:%02d", hour, minute)
}

// NextRun returns the next occurrence of hour:minute after now, in
// now's location. A time earlier today rolls over to tomorrow.
func NextRun(now time.Time, hour, minute int) time.Time {
	run := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, now.Location())
	if !run.After(now) {
		run = run.AddDate(0, 0, 1)
	}
	return run
}

// DescribeNextRun formats the next occurrence for chat messages.
func DescribeNextRun(now time.Time, hour, minute int) string {
	return NextRun(now, hour, minute).Format("Mon 2006-01-02 15:04 MST")
}
