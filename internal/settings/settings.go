package settings

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Settings is the administrator-controlled competition configuration.
// It is stored as a singleton row and read fresh on every decision so a
// window change takes effect immediately, never from a stale cache.
type Settings struct {
	WindowStart     string    `json:"window_start"` // "HH:MM" wall clock
	WindowEnd       string    `json:"window_end"`   // "HH:MM" wall clock
	DurationSeconds int       `json:"duration_seconds"`
	ResultsRelease  string    `json:"results_release"` // "HH:MM" wall clock
	QuizEnabled     bool      `json:"quiz_enabled"`
	VouchersEnabled bool      `json:"vouchers_enabled"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// Provider yields the latest settings at the moment of a decision.
type Provider interface {
	Current(ctx context.Context) (Settings, error)
}

// Store persists the singleton settings row.
type Store interface {
	Get(ctx context.Context) (Settings, error)
	Update(ctx context.Context, s Settings) (Settings, error)
}

// Validate checks clock fields and duration before an admin update is accepted.
func (s Settings) Validate() error {
	start, err := parseClock(s.WindowStart)
	if err != nil {
		return fmt.Errorf("window_start: %w", err)
	}
	end, err := parseClock(s.WindowEnd)
	if err != nil {
		return fmt.Errorf("window_end: %w", err)
	}
	if !start.before(end) {
		return fmt.Errorf("window_start %s must be before window_end %s", s.WindowStart, s.WindowEnd)
	}
	if _, err := parseClock(s.ResultsRelease); err != nil {
		return fmt.Errorf("results_release: %w", err)
	}
	if s.DurationSeconds <= 0 {
		return fmt.Errorf("duration_seconds must be positive, got %d", s.DurationSeconds)
	}
	return nil
}

// WindowFor anchors the daily window on the calendar date of ref in loc.
func (s Settings) WindowFor(ref time.Time, loc *time.Location) (start, end time.Time, err error) {
	sc, err := parseClock(s.WindowStart)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("window_start: %w", err)
	}
	ec, err := parseClock(s.WindowEnd)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("window_end: %w", err)
	}
	local := ref.In(loc)
	y, m, d := local.Date()
	start = time.Date(y, m, d, sc.hour, sc.minute, 0, 0, loc)
	end = time.Date(y, m, d, ec.hour, ec.minute, 0, 0, loc)
	return start, end, nil
}

type clock struct {
	hour   int
	minute int
}

func (c clock) before(other clock) bool {
	if c.hour != other.hour {
		return c.hour < other.hour
	}
	return c.minute < other.minute
}

func parseClock(v string) (clock, error) {
	parts := strings.SplitN(v, ":", 2)
	if len(parts) != 2 {
		return clock{}, fmt.Errorf("expected HH:MM, got %q", v)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 || h > 23 {
		return clock{}, fmt.Errorf("invalid hour in %q", v)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 {
		return clock{}, fmt.Errorf("invalid minute in %q", v)
	}
	return clock{hour: h, minute: m}, nil
}
