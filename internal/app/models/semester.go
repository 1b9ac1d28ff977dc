package models

import "time"

// DefaultTimezone is used when a semester does not name its calendar location.
const DefaultTimezone = "UTC"

// RegistrationWindows holds the add/drop periods of a semester.
// They are expected to fall within the semester bounds but this is not enforced.
type RegistrationWindows struct {
	AddStart  *time.Time `json:"addStart,omitempty" db:"add_start"`
	AddEnd    *time.Time `json:"addEnd,omitempty" db:"add_end"`
	DropStart *time.Time `json:"dropStart,omitempty" db:"drop_start"`
	DropEnd   *time.Time `json:"dropEnd,omitempty" db:"drop_end"`
}

// AddOpen reports whether t falls inside the add window. Unset bounds are open.
func (w RegistrationWindows) AddOpen(t time.Time) bool {
	if w.AddStart != nil && t.Before(*w.AddStart) {
		return false
	}
	if w.AddEnd != nil && t.After(*w.AddEnd) {
		return false
	}
	return true
}

// Semester is an academic term with a single canonical calendar.
type Semester struct {
	ID                  int64               `json:"id" db:"id"`
	Name                string              `json:"name" db:"name"`
	StartDate           time.Time           `json:"startDate" db:"start_date"`
	EndDate             time.Time           `json:"endDate" db:"end_date"`
	Timezone            string              `json:"timezone" db:"timezone"`
	RegistrationWindows RegistrationWindows `json:"registrationWindows"`
	CreatedAt           time.Time           `json:"createdAt" db:"created_at"`
}

// Location resolves the semester calendar location, falling back to UTC.
func (s *Semester) Location() *time.Location {
	if s.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(s.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// Bounds returns the first and last day of the semester as midnight in the
// semester calendar. Start and end are calendar dates; their own location is
// ignored.
func (s *Semester) Bounds() (time.Time, time.Time) {
	loc := s.Location()
	return inLocation(s.StartDate, loc), inLocation(s.EndDate, loc)
}

func inLocation(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}
