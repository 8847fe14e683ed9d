package models

import (
	"fmt"
	"time"
)

const (
	DateLayout  = "2006-01-02"
	ClockLayout = "15:04"
	EndOfDay    = "24:00"
)

// TimeSlot is a half-open wall-clock window [StartTime, EndTime) in HH:MM.
// Well-formed values compare correctly as strings.
type TimeSlot struct {
	StartTime string `bson:"startTime" json:"startTime" binding:"required"`
	EndTime   string `bson:"endTime" json:"endTime" binding:"required"`
}

// Overlaps is the half-open intersection test. Touching endpoints do not overlap.
func (s TimeSlot) Overlaps(o TimeSlot) bool {
	return s.StartTime < o.EndTime && o.StartTime < s.EndTime
}

// Validate checks both ends are HH:MM and start is strictly before end.
// EndTime may be 24:00 to close a slot at midnight.
func (s TimeSlot) Validate() error {
	if _, err := ParseClock(s.StartTime); err != nil {
		return fmt.Errorf("startTime: %w", err)
	}
	if s.EndTime != EndOfDay {
		if _, err := ParseClock(s.EndTime); err != nil {
			return fmt.Errorf("endTime: %w", err)
		}
	}
	if s.StartTime >= s.EndTime {
		return fmt.Errorf("startTime %s must be before endTime %s", s.StartTime, s.EndTime)
	}
	return nil
}

// Duration is the slot length.
func (s TimeSlot) Duration() time.Duration {
	start, _ := ClockMinutes(s.StartTime)
	end, _ := ClockMinutes(s.EndTime)
	return time.Duration(end-start) * time.Minute
}

// ParseClock parses a strict zero-padded 24-hour HH:MM value.
func ParseClock(v string) (time.Time, error) {
	if len(v) != len(ClockLayout) {
		return time.Time{}, fmt.Errorf("invalid time %q, want HH:MM", v)
	}
	t, err := time.Parse(ClockLayout, v)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid time %q, want HH:MM", v)
	}
	return t, nil
}

// ClockMinutes converts HH:MM (or 24:00) to minutes after midnight.
func ClockMinutes(v string) (int, error) {
	if v == EndOfDay {
		return 24 * 60, nil
	}
	t, err := ParseClock(v)
	if err != nil {
		return 0, err
	}
	return t.Hour()*60 + t.Minute(), nil
}

// ParseDate parses a strict YYYY-MM-DD calendar date.
func ParseDate(v string) (time.Time, error) {
	t, err := time.Parse(DateLayout, v)
	if err != nil || t.Format(DateLayout) != v {
		return time.Time{}, fmt.Errorf("invalid date %q, want YYYY-MM-DD", v)
	}
	return t, nil
}

// SlotInstant resolves a calendar date and wall-clock time in loc.
func SlotInstant(date, clock string, loc *time.Location) (time.Time, error) {
	d, err := ParseDate(date)
	if err != nil {
		return time.Time{}, err
	}
	mins, err := ClockMinutes(clock)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, loc).Add(time.Duration(mins) * time.Minute), nil
}

// BookedSlot is one occupied window in an availability grid.
type BookedSlot struct {
	StartTime string        `json:"startTime"`
	EndTime   string        `json:"endTime"`
	Status    BookingStatus `json:"status"`
}

// Availability answers a single slot query.
type Availability struct {
	Available bool     `json:"available"`
	Conflicts []string `json:"conflicts"`
}
