package domain

import (
	"fmt"
	"time"
)

// DateLayout is the wire format for partition days, both in the Meta API
// request window and in the warehouse DATE column.
const DateLayout = "2006-01-02"

// TimeWindow is a single calendar day. Start and Stop are always the same
// date; the two-field shape mirrors the reporting API's time_range parameter.
// A window is immutable once a run starts.
type TimeWindow struct {
	Start time.Time `json:"start"`
	Stop  time.Time `json:"stop"`
}

// Day constructs the window for a single calendar day, truncated to UTC midnight.
func Day(d time.Time) TimeWindow {
	day := time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
	return TimeWindow{Start: day, Stop: day}
}

// Yesterday returns the window for the prior calendar day relative to now.
func Yesterday(now time.Time) TimeWindow {
	return Day(now.UTC().AddDate(0, 0, -1))
}

// ParseDay parses a YYYY-MM-DD string into a single-day window.
func ParseDay(s string) (TimeWindow, error) {
	d, err := time.Parse(DateLayout, s)
	if err != nil {
		return TimeWindow{}, fmt.Errorf("parsing window date %q: %w", s, err)
	}
	return Day(d), nil
}

// Date returns the partition day formatted as YYYY-MM-DD.
func (w TimeWindow) Date() string {
	return w.Start.Format(DateLayout)
}

// Validate checks that the window is a single past day.
func (w TimeWindow) Validate(now time.Time) error {
	if w.Start.IsZero() {
		return fmt.Errorf("window has no start date")
	}
	if !w.Start.Equal(w.Stop) {
		return fmt.Errorf("window %s..%s spans more than one day", w.Start.Format(DateLayout), w.Stop.Format(DateLayout))
	}
	today := Day(now.UTC()).Start
	if !w.Start.Before(today) {
		return fmt.Errorf("window %s is not a past day", w.Date())
	}
	return nil
}
