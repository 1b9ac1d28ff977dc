package models

import (
	"time"

	"github.com/yigit/termsched/internal/app/calendar"
)

// Section is a concrete offering of a course with its own capacity and,
// optionally, its own meeting pattern.
type Section struct {
	Code         string                `json:"sectionId" db:"section_code"`
	InstructorID *int64                `json:"instructorId,omitempty" db:"instructor_id"`
	Capacity     int                   `json:"capacity" db:"capacity"`
	Occupied     int                   `json:"occupied" db:"occupied"` // maintained by the section ledger only
	Schedule     []calendar.WeeklySlot `json:"schedule,omitempty" db:"schedule"`
}

// Available returns the number of free seats
func (s Section) Available() int {
	if s.Occupied >= s.Capacity {
		return 0
	}
	return s.Capacity - s.Occupied
}

// Policies are course-level settings kept alongside the course
type Policies struct {
	AddDropDeadline  *time.Time `json:"addDropDeadline,omitempty" db:"add_drop_deadline"`
	AttendanceWeight *float64   `json:"attendanceWeight,omitempty" db:"attendance_weight"`
}

// Course owns its sections and the course-wide weekly schedule template.
type Course struct {
	ID                int64                 `json:"id" db:"id"`
	Code              string                `json:"code" db:"code"`
	Name              string                `json:"name" db:"name"`
	Credits           int                   `json:"credits" db:"credits"`
	OwnerInstructorID int64                 `json:"ownerInstructorId" db:"owner_instructor_id"`
	SemesterID        int64                 `json:"semesterId" db:"semester_id"`
	ScheduleTemplate  []calendar.WeeklySlot `json:"scheduleTemplate" db:"schedule_template"`
	Sections          []Section             `json:"sections"`
	Policies          Policies              `json:"policies"`
	CreatedAt         time.Time             `json:"createdAt" db:"created_at"`
	UpdatedAt         time.Time             `json:"updatedAt" db:"updated_at"`
}

// Section looks up a section by its identifier
func (c *Course) Section(code string) (*Section, bool) {
	for i := range c.Sections {
		if c.Sections[i].Code == code {
			return &c.Sections[i], true
		}
	}
	return nil, false
}

// CourseFilter narrows course listings
type CourseFilter struct {
	SemesterID        *int64
	OwnerInstructorID *int64
	// InstructorID matches courses the instructor owns or teaches a section of
	InstructorID *int64
	IDs          []int64
}

// Teaches reports whether the instructor owns the course or teaches the section
func (c *Course) Teaches(instructorID int64, sectionCode string) bool {
	if c.OwnerInstructorID == instructorID {
		return true
	}
	s, ok := c.Section(sectionCode)
	return ok && s.InstructorID != nil && *s.InstructorID == instructorID
}

// TeachesAny reports whether the instructor owns the course or any of its sections
func (c *Course) TeachesAny(instructorID int64) bool {
	if c.OwnerInstructorID == instructorID {
		return true
	}
	for _, s := range c.Sections {
		if s.InstructorID != nil && *s.InstructorID == instructorID {
			return true
		}
	}
	return false
}

// ScheduleUpdate is a partial edit of a course's weekly schedule. A nil
// Template keeps the current template while a non-nil empty one clears it.
// Sections not present in the map keep their schedule.
type ScheduleUpdate struct {
	Template *[]calendar.WeeklySlot
	Sections map[string][]calendar.WeeklySlot
}

// Empty reports whether the update changes nothing
func (u ScheduleUpdate) Empty() bool {
	return u.Template == nil && len(u.Sections) == 0
}

// CourseUpdate changes course details. Nil fields are left as they are.
type CourseUpdate struct {
	Name     *string
	Credits  *int
	Policies *Policies
}

// Slots returns every weekly slot of the course, template first
func (c *Course) Slots() []calendar.WeeklySlot {
	out := append([]calendar.WeeklySlot(nil), c.ScheduleTemplate...)
	for _, s := range c.Sections {
		out = append(out, s.Schedule...)
	}
	return out
}
