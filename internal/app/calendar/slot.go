package calendar

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// MinutesPerDay is the number of minutes in a calendar day.
const MinutesPerDay = 24 * 60

// ErrInvalidSlot is returned for weekly slots that cannot be expanded.
var ErrInvalidSlot = errors.New("invalid weekly slot")

// ErrInvalidTimeOfDay is returned when a wall-clock string cannot be parsed.
var ErrInvalidTimeOfDay = errors.New("invalid time of day")

// TimeOfDay is a wall-clock time expressed in minutes after midnight.
// 24:00 is accepted so that a slot may end exactly at midnight.
type TimeOfDay int

// NewTimeOfDay builds a TimeOfDay from hour and minute.
func NewTimeOfDay(hour, minute int) TimeOfDay {
	return TimeOfDay(hour*60 + minute)
}

// ParseTimeOfDay parses "HH:MM" (24h clock).
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) != 2 || len(parts[0]) == 0 || len(parts[1]) != 2 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTimeOfDay, s)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTimeOfDay, s)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 || h < 0 || h > 24 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTimeOfDay, s)
	}
	t := NewTimeOfDay(h, m)
	if !t.Valid() {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTimeOfDay, s)
	}
	return t, nil
}

// MustParseTimeOfDay is ParseTimeOfDay that panics on error.
func MustParseTimeOfDay(s string) TimeOfDay {
	t, err := ParseTimeOfDay(s)
	if err != nil {
		panic(err)
	}
	return t
}

// Valid reports whether t lies within [00:00, 24:00].
func (t TimeOfDay) Valid() bool {
	return t >= 0 && t <= MinutesPerDay
}

// Hour returns the hour component.
func (t TimeOfDay) Hour() int { return int(t) / 60 }

// Minute returns the minute component.
func (t TimeOfDay) Minute() int { return int(t) % 60 }

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour(), t.Minute())
}

// On combines t with the calendar date of day, in day's location.
func (t TimeOfDay) On(day time.Time) time.Time {
	y, m, d := day.Date()
	return time.Date(y, m, d, 0, int(t), 0, 0, day.Location())
}

// MarshalText implements encoding.TextMarshaler.
func (t TimeOfDay) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *TimeOfDay) UnmarshalText(b []byte) error {
	v, err := ParseTimeOfDay(string(b))
	if err != nil {
		return err
	}
	*t = v
	return nil
}

// UnmarshalCSV lets gocsv decode "HH:MM" columns.
func (t *TimeOfDay) UnmarshalCSV(s string) error {
	return t.UnmarshalText([]byte(s))
}

// WeeklySlot is a recurring class meeting.
type WeeklySlot struct {
	DayOfWeek int       `json:"dayOfWeek" yaml:"dayOfWeek"` // 0 = Sunday
	StartTime TimeOfDay `json:"startTime" yaml:"startTime"`
	EndTime   TimeOfDay `json:"endTime" yaml:"endTime"`
	RoomID    *int64    `json:"roomId,omitempty" yaml:"roomId,omitempty"`
}

// Validate checks the weekday range and that the slot has a positive length.
func (s WeeklySlot) Validate() error {
	if s.DayOfWeek < 0 || s.DayOfWeek > 6 {
		return fmt.Errorf("%w: day of week %d out of range [0,6]", ErrInvalidSlot, s.DayOfWeek)
	}
	if !s.StartTime.Valid() || !s.EndTime.Valid() {
		return fmt.Errorf("%w: time outside 00:00-24:00", ErrInvalidSlot)
	}
	if s.StartTime >= s.EndTime {
		return fmt.Errorf("%w: start %s must be before end %s", ErrInvalidSlot, s.StartTime, s.EndTime)
	}
	return nil
}

// Duration returns the length of one meeting.
func (s WeeklySlot) Duration() time.Duration {
	return time.Duration(s.EndTime-s.StartTime) * time.Minute
}

// ValidateSlots validates every slot, reporting the first failing index.
func ValidateSlots(slots []WeeklySlot) error {
	for i, s := range slots {
		if err := s.Validate(); err != nil {
			return fmt.Errorf("slot %d: %w", i, err)
		}
	}
	return nil
}
