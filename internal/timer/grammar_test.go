package timer

import (
	"testing"
	"time"
)

func TestNextRunInterval(t *testing.T) {
	now := time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)
	next, err := NextRun("every 6h", now)
	if err != nil {
		t.Fatalf("NextRun() error = %v", err)
	}
	expected := now.Add(6 * time.Hour)
	if !next.Equal(expected) {
		t.Fatalf("expected %v, got %v", expected, next)
	}
}

func TestNextRunDailyAtFutureTime(t *testing.T) {
	now := time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)
	next, err := NextRun("every day at 9am", now)
	if err != nil {
		t.Fatalf("NextRun() error = %v", err)
	}
	expected := time.Date(2026, 1, 2, 9, 0, 0, 0, time.UTC)
	if !next.Equal(expected) {
		t.Fatalf("expected %v, got %v", expected, next)
	}
}

func TestNextRunDailyAtFutureTimeSameDay(t *testing.T) {
	now := time.Date(2026, 1, 1, 7, 0, 0, 0, time.UTC)
	next, err := NextRun("every day at 9am", now)
	if err != nil {
		t.Fatalf("NextRun() error = %v", err)
	}
	expected := time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)
	if !next.Equal(expected) {
		t.Fatalf("expected %v, got %v", expected, next)
	}
}

func TestNextRunWeekdayDefaultsTo0900UTC(t *testing.T) {
	// 2026-01-01 is a Thursday.
	now := time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)
	next, err := NextRun("every monday", now)
	if err != nil {
		t.Fatalf("NextRun() error = %v", err)
	}
	expected := time.Date(2026, 1, 5, 9, 0, 0, 0, time.UTC)
	if !next.Equal(expected) {
		t.Fatalf("expected %v, got %v", expected, next)
	}
}

func TestNextRunWeekdayWithTime(t *testing.T) {
	now := time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)
	next, err := NextRun("every friday at 5pm", now)
	if err != nil {
		t.Fatalf("NextRun() error = %v", err)
	}
	expected := time.Date(2026, 1, 2, 17, 0, 0, 0, time.UTC)
	if !next.Equal(expected) {
		t.Fatalf("expected %v, got %v", expected, next)
	}
}

func TestNextRunAtOneShot(t *testing.T) {
	now := time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)
	next, err := NextRun("at 09:00", now)
	if err != nil {
		t.Fatalf("NextRun() error = %v", err)
	}
	expected := time.Date(2026, 1, 2, 9, 0, 0, 0, time.UTC)
	if !next.Equal(expected) {
		t.Fatalf("expected %v, got %v", expected, next)
	}
	if !IsOneShot("at 09:00") {
		t.Fatalf("expected IsOneShot() = true")
	}
}

func TestNextRunCronEveryFiveMinutes(t *testing.T) {
	now := time.Date(2026, 1, 1, 10, 3, 0, 0, time.UTC)
	next, err := NextRun("cron */5 * * * *", now)
	if err != nil {
		t.Fatalf("NextRun() error = %v", err)
	}
	expected := time.Date(2026, 1, 1, 10, 5, 0, 0, time.UTC)
	if !next.Equal(expected) {
		t.Fatalf("expected %v, got %v", expected, next)
	}
}

func TestNextRunUnrecognizedFormatErrors(t *testing.T) {
	if _, err := NextRun("whenever I feel like it", time.Now()); err == nil {
		t.Fatalf("expected an error for unrecognized schedule")
	}
}

func TestParseTimeVariants(t *testing.T) {
	cases := []struct {
		in           string
		hour, minute int
	}{
		{"9am", 9, 0},
		{"12am", 0, 0},
		{"12pm", 12, 0},
		{"3:30pm", 15, 30},
		{"17:30", 17, 30},
	}
	for _, c := range cases {
		hour, minute, err := parseTime(c.in)
		if err != nil {
			t.Fatalf("parseTime(%q) error = %v", c.in, err)
		}
		if hour != c.hour || minute != c.minute {
			t.Fatalf("parseTime(%q) = %d:%d, want %d:%d", c.in, hour, minute, c.hour, c.minute)
		}
	}
}
