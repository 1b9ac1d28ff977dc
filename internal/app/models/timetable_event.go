package models

import (
	"time"

	"github.com/google/uuid"
)

// EventType classifies timetable events
type EventType string

const (
	EventTypeClass    EventType = "class"
	EventTypeExam     EventType = "exam"
	EventTypeMakeup   EventType = "makeup"
	EventTypeDeadline EventType = "deadline"
)

// Valid reports whether t is a known event type
func (t EventType) Valid() bool {
	switch t {
	case EventTypeClass, EventTypeExam, EventTypeMakeup, EventTypeDeadline:
		return true
	}
	return false
}

// EventStatusScheduled is the status every generated event starts with
const EventStatusScheduled = "scheduled"

// EventMeta carries free-form annotations of an event
type EventMeta struct {
	Topic     *string `json:"topic,omitempty" db:"topic"`
	Notes     *string `json:"notes,omitempty" db:"notes"`
	CreatedBy *int64  `json:"createdBy,omitempty" db:"created_by"`
}

// TimetableEvent is a concrete dated occurrence in the timetable.
type TimetableEvent struct {
	ID          uuid.UUID `json:"id" db:"id"`
	Type        EventType `json:"type" db:"type"`
	CourseID    int64     `json:"courseId" db:"course_id"`
	SectionCode string    `json:"sectionId" db:"section_code"`
	SemesterID  int64     `json:"semesterId" db:"semester_id"`
	StartAt     time.Time `json:"startAt" db:"start_at"`
	EndAt       time.Time `json:"endAt" db:"end_at"`
	RoomID      *int64    `json:"roomId,omitempty" db:"room_id"`
	Status      string    `json:"status" db:"status"`
	Meta        EventMeta `json:"meta"`
}

// EventScope identifies the set of generated class events replaced by one
// schedule regeneration.
type EventScope struct {
	CourseID   int64
	SemesterID int64
	// CourseVersion is the UpdatedAt of the course the events were built
	// from. When set, the write is refused with ErrScheduleChanged if the
	// course was modified since.
	CourseVersion time.Time
}

// EventFilter narrows event queries. Zero values mean "any".
type EventFilter struct {
	CourseIDs   []int64
	SectionCode string
	SemesterID  *int64
	From        *time.Time
	To          *time.Time
	Type        EventType
}
