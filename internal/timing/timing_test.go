package timing

import (
	"testing"
	"time"
)

func TestComputeWithAllInputsAbsent(t *testing.T) {
	durations, err := Compute(time.Now().UTC(), "", "", "")
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	if durations.BookingElapsed != nil {
		t.Fatalf("expected nil booking elapsed, got %+v", durations.BookingElapsed)
	}
	if durations.ChargeElapsed != nil {
		t.Fatalf("expected nil charge elapsed, got %+v", durations.ChargeElapsed)
	}
	if durations.Target != nil {
		t.Fatalf("expected nil target, got %v", durations.Target)
	}
}

func TestComputeBookingElapsedOnly(t *testing.T) {
	now := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)
	bookingTime := now.Add(-2 * time.Minute).Format(TimestampLayout)

	durations, err := Compute(now, bookingTime, "", "")
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	if durations.BookingElapsed == nil {
		t.Fatal("expected booking elapsed")
	}
	if durations.BookingElapsed.Delta != 2*time.Minute {
		t.Fatalf("expected 2m elapsed, got %s", durations.BookingElapsed.Delta)
	}
	if durations.BookingElapsed.Formatted != "00:02:00" {
		t.Fatalf("expected 00:02:00, got %s", durations.BookingElapsed.Formatted)
	}
	if durations.ChargeElapsed != nil {
		t.Fatalf("expected nil charge elapsed before start, got %+v", durations.ChargeElapsed)
	}
}

func TestComputeStartedSessionWithTarget(t *testing.T) {
	now := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)
	startTime := now.Add(-90 * time.Minute).Format(TimestampLayout)

	durations, err := Compute(now, "", startTime, "02:30:00")
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	if durations.ChargeElapsed == nil {
		t.Fatal("expected charge elapsed")
	}
	if durations.ChargeElapsed.Formatted != "01:30:00" {
		t.Fatalf("expected 01:30:00, got %s", durations.ChargeElapsed.Formatted)
	}
	if durations.Target == nil {
		t.Fatal("expected target duration")
	}
	if *durations.Target != 2*time.Hour+30*time.Minute {
		t.Fatalf("expected 2h30m target, got %s", *durations.Target)
	}
}

func TestComputeRejectsBadTimestamps(t *testing.T) {
	now := time.Now().UTC()
	if _, err := Compute(now, "yesterday", "", ""); err == nil {
		t.Fatal("expected error for bad booking_time")
	}
	if _, err := Compute(now, "", "not-a-time", ""); err == nil {
		t.Fatal("expected error for bad start_time")
	}
	if _, err := Compute(now, "", "", "ten minutes"); err == nil {
		t.Fatal("expected error for bad target duration")
	}
}

func TestParseClock(t *testing.T) {
	cases := []struct {
		value string
		want  time.Duration
		ok    bool
	}{
		{"00:00:00", 0, true},
		{"00:10:00", 10 * time.Minute, true},
		{"01:02:03", time.Hour + 2*time.Minute + 3*time.Second, true},
		{"26:00:00", 26 * time.Hour, true},
		{"00:99:00", 0, false},
		{"00:00:61", 0, false},
		{"bad", 0, false},
	}
	for _, tc := range cases {
		got, err := ParseClock(tc.value)
		if tc.ok && err != nil {
			t.Fatalf("parse %q: %v", tc.value, err)
		}
		if !tc.ok {
			if err == nil {
				t.Fatalf("parse %q: expected error", tc.value)
			}
			continue
		}
		if got != tc.want {
			t.Fatalf("parse %q: expected %s, got %s", tc.value, tc.want, got)
		}
	}
}

func TestFormatClock(t *testing.T) {
	cases := []struct {
		d    time.Duration
		want string
	}{
		{0, "00:00:00"},
		{2 * time.Minute, "00:02:00"},
		{time.Hour + 2*time.Minute + 3*time.Second, "01:02:03"},
		{26*time.Hour + 5*time.Second, "26:00:05"},
		{90*time.Second + 700*time.Millisecond, "00:01:30"},
		{-time.Minute, "00:00:00"},
	}
	for _, tc := range cases {
		if got := FormatClock(tc.d); got != tc.want {
			t.Fatalf("format %s: expected %s, got %s", tc.d, tc.want, got)
		}
	}
}
