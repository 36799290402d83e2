package timing

import (
	"fmt"
	"strings"
	"time"
)

// TimestampLayout is the wire format for session timestamps. The table
// service stores naive UTC timestamps.
const TimestampLayout = "2006-01-02 15:04:05"

// Elapsed is one computed duration together with its zero-padded HH:MM:SS
// rendering for display fields.
type Elapsed struct {
	Delta     time.Duration
	Formatted string
}

// Durations bundles everything the rule chain needs that is derived from
// clocks. A nil member means its source timestamp is absent, not zero.
type Durations struct {
	// BookingElapsed is time since the booking was made. Only meaningful
	// before the charge starts.
	BookingElapsed *Elapsed
	// ChargeElapsed is time since the charger confirmed the start.
	ChargeElapsed *Elapsed
	// Target is the parsed time-based completion target.
	Target *time.Duration
}

// Compute derives the duration bundle for one evaluation. bookingTime and
// startTime are TimestampLayout strings, targetDuration is HH:MM:SS; empty
// inputs yield nil members.
func Compute(now time.Time, bookingTime, startTime, targetDuration string) (*Durations, error) {
	durations := &Durations{}

	if bookingTime = strings.TrimSpace(bookingTime); bookingTime != "" {
		elapsed, err := elapsedSince(now, bookingTime)
		if err != nil {
			return nil, fmt.Errorf("timing: booking_time: %w", err)
		}
		durations.BookingElapsed = elapsed
	}

	if startTime = strings.TrimSpace(startTime); startTime != "" {
		elapsed, err := elapsedSince(now, startTime)
		if err != nil {
			return nil, fmt.Errorf("timing: start_time: %w", err)
		}
		durations.ChargeElapsed = elapsed
	}

	if targetDuration = strings.TrimSpace(targetDuration); targetDuration != "" {
		target, err := ParseClock(targetDuration)
		if err != nil {
			return nil, fmt.Errorf("timing: target duration: %w", err)
		}
		durations.Target = &target
	}

	return durations, nil
}

func elapsedSince(now time.Time, timestamp string) (*Elapsed, error) {
	parsed, err := time.Parse(TimestampLayout, timestamp)
	if err != nil {
		return nil, err
	}
	delta := now.UTC().Sub(parsed)
	return &Elapsed{Delta: delta, Formatted: FormatClock(delta)}, nil
}

// ParseClock parses a zero-padded HH:MM:SS duration string. Hours may exceed
// 24 for long sessions.
func ParseClock(value string) (time.Duration, error) {
	var hours, minutes, seconds int
	if _, err := fmt.Sscanf(value, "%d:%d:%d", &hours, &minutes, &seconds); err != nil {
		return 0, fmt.Errorf("invalid clock value %q", value)
	}
	if hours < 0 || minutes < 0 || minutes > 59 || seconds < 0 || seconds > 59 {
		return 0, fmt.Errorf("invalid clock value %q", value)
	}
	return time.Duration(hours)*time.Hour +
		time.Duration(minutes)*time.Minute +
		time.Duration(seconds)*time.Second, nil
}

// FormatClock renders a duration as zero-padded HH:MM:SS, dropping any
// fractional second. Negative inputs clamp to 00:00:00.
func FormatClock(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int64(d / time.Second)
	return fmt.Sprintf("%02d:%02d:%02d", total/3600, (total%3600)/60, total%60)
}
