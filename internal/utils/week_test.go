package utils

import (
	"errors"
	"testing"
	"time"

	"github.com/kaizenhq/kaizen/internal/constants"
)

func mustDate(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.Parse(constants.DateFormat, s)
	if err != nil {
		t.Fatalf("bad test date %q: %v", s, err)
	}
	return d
}

func TestWeekStart(t *testing.T) {
	tests := []struct {
		name         string
		date         string
		weekStartDay time.Weekday
		want         string
	}{
		// 2026-01-04 is a Sunday
		{"sunday start on sunday", "2026-01-04", time.Sunday, "2026-01-04"},
		{"sunday start on saturday", "2026-01-10", time.Sunday, "2026-01-04"},
		{"monday start on wednesday", "2026-01-07", time.Monday, "2026-01-05"},
		{"monday start wraps sunday to previous week", "2026-01-04", time.Monday, "2025-12-29"},
		{"saturday start on friday", "2026-01-09", time.Saturday, "2026-01-03"},
		{"saturday start on saturday", "2026-01-10", time.Saturday, "2026-01-10"},
		{"crosses month boundary", "2026-03-01", time.Wednesday, "2026-02-25"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := WeekStart(mustDate(t, tt.date), tt.weekStartDay)
			if err != nil {
				t.Fatalf("WeekStart() error = %v", err)
			}
			if FormatDate(got) != tt.want {
				t.Errorf("WeekStart(%s, %v) = %s, want %s", tt.date, tt.weekStartDay, FormatDate(got), tt.want)
			}
			if got.Hour() != 0 || got.Minute() != 0 || got.Second() != 0 || got.Nanosecond() != 0 {
				t.Errorf("WeekStart() not truncated to midnight: %v", got)
			}
		})
	}
}

func TestWeekStart_TruncatesTimeOfDay(t *testing.T) {
	date := time.Date(2026, 1, 7, 18, 45, 12, 999, time.UTC)
	got, err := WeekStart(date, time.Monday)
	if err != nil {
		t.Fatalf("WeekStart() error = %v", err)
	}
	want := time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("WeekStart() = %v, want %v", got, want)
	}
}

func TestWeekEnd_IsLastInstant(t *testing.T) {
	date := time.Date(2026, 1, 7, 9, 0, 0, 0, time.UTC)
	got, err := WeekEnd(date, time.Monday)
	if err != nil {
		t.Fatalf("WeekEnd() error = %v", err)
	}
	want := time.Date(2026, 1, 11, 23, 59, 59, 999999999, time.UTC)
	if !got.Equal(want) {
		t.Errorf("WeekEnd() = %v, want %v", got, want)
	}
}

func TestWeekWindowContainsDate(t *testing.T) {
	base := time.Date(2025, 12, 20, 13, 30, 0, 0, time.UTC)
	for i := 0; i < 21; i++ {
		d := base.AddDate(0, 0, i)
		for wsd := time.Sunday; wsd <= time.Saturday; wsd++ {
			start, err := WeekStart(d, wsd)
			if err != nil {
				t.Fatalf("WeekStart() error = %v", err)
			}
			end, err := WeekEnd(d, wsd)
			if err != nil {
				t.Fatalf("WeekEnd() error = %v", err)
			}
			if d.Before(start) || d.After(end) {
				t.Errorf("date %v outside window [%v, %v] for week start %v", d, start, end, wsd)
			}
			if start.Weekday() != wsd {
				t.Errorf("window for %v starts on %v, want %v", d, start.Weekday(), wsd)
			}
		}
	}
}

func TestWeekBounds(t *testing.T) {
	start, end, err := WeekBounds(mustDate(t, "2026-01-04"), time.Monday)
	if err != nil {
		t.Fatalf("WeekBounds() error = %v", err)
	}
	if start != "2025-12-29" || end != "2026-01-04" {
		t.Errorf("WeekBounds() = (%s, %s), want (2025-12-29, 2026-01-04)", start, end)
	}
}

func TestWeekStart_RejectsOutOfRange(t *testing.T) {
	for _, wsd := range []time.Weekday{-1, 7, 42} {
		if _, err := WeekStart(mustDate(t, "2026-01-04"), wsd); !errors.Is(err, ErrInvalidWeekStartDay) {
			t.Errorf("WeekStart(_, %d) error = %v, want ErrInvalidWeekStartDay", wsd, err)
		}
		if _, err := WeekEnd(mustDate(t, "2026-01-04"), wsd); !errors.Is(err, ErrInvalidWeekStartDay) {
			t.Errorf("WeekEnd(_, %d) error = %v, want ErrInvalidWeekStartDay", wsd, err)
		}
		if _, _, err := WeekBounds(mustDate(t, "2026-01-04"), wsd); !errors.Is(err, ErrInvalidWeekStartDay) {
			t.Errorf("WeekBounds(_, %d) error = %v, want ErrInvalidWeekStartDay", wsd, err)
		}
	}
}
