package schedule

import (
	"testing"
	"time"
)

func TestParseHHMM(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		hour    int
		minute  int
		wantErr bool
	}{
		{name: "standard", input: "08:30", hour: 8, minute: 30},
		{name: "single digit hour", input: "7:45", hour: 7, minute: 45},
		{name: "midnight", input: "0:00", hour: 0, minute: 0},
		{name: "end of day", input: "23:59", hour: 23, minute: 59},
		{name: "surrounding whitespace", input: "  21:05 ", hour: 21, minute: 5},
		{name: "hour out of range", input: "24:00", wantErr: true},
		{name: "minute out of range", input: "12:60", wantErr: true},
		{name: "single digit minute", input: "12:5", wantErr: true},
		{name: "not a time", input: "soon", wantErr: true},
		{name: "empty", input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hour, minute, err := ParseHHMM(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseHHMM(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil {
				return
			}
			if hour != tt.hour || minute != tt.minute {
				t.Fatalf("ParseHHMM(%q) = %d:%d, want %d:%d", tt.input, hour, minute, tt.hour, tt.minute)
			}
		})
	}
}

func TestNextRun(t *testing.T) {
	now := time.Date(2024, 5, 11, 10, 0, 0, 0, time.UTC)

	later := NextRun(now, 15, 30)
	if later.Day() != 11 || later.Hour() != 15 || later.Minute() != 30 {
		t.Fatalf("future time today should run today, got %v", later)
	}

	earlier := NextRun(now, 8, 0)
	if earlier.Day() != 12 {
		t.Fatalf("past time should roll to tomorrow, got %v", earlier)
	}

	same := NextRun(now, 10, 0)
	if same.Day() != 12 {
		t.Fatalf("exactly now should roll to tomorrow, got %v", same)
	}
}

func TestFormatHHMM(t *testing.T) {
	if got := FormatHHMM(7, 5); got != "07:05" {
		t.Fatalf("FormatHHMM(7, 5) = %q, want %q", got, "07:05")
	}
}
