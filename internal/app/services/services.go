package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/yigit/termsched/internal/app/models"
)

// Services defined in this package:
// - SemesterService: semester catalog
// - CourseService: course catalog and schedule edits
// - SchedulingService: expands course patterns into class events
// - RegistrationService: enrollment requests and instructor decisions
// - TimetableService: event queries and ad-hoc events
// - RoomService: room catalog
//
// Storage is reached only through the interfaces below; both the
// PostgreSQL repositories and the in-memory store implement them.

// SemesterStore persists semesters
type SemesterStore interface {
	CreateSemester(ctx context.Context, semester *models.Semester) error
	GetSemesterByID(ctx context.Context, id int64) (*models.Semester, error)
	ListSemesters(ctx context.Context) ([]models.Semester, error)
	// UpdateSemester overwrites every stored field of semester.ID
	UpdateSemester(ctx context.Context, semester *models.Semester) error
	DeleteSemester(ctx context.Context, id int64) error
}

// CourseStore persists courses together with their sections
type CourseStore interface {
	CreateCourse(ctx context.Context, course *models.Course) error
	GetCourseByID(ctx context.Context, id int64) (*models.Course, error)
	ListCourses(ctx context.Context, filter models.CourseFilter) ([]models.Course, error)
	// UpdateSchedule applies a partial schedule edit and bumps UpdatedAt.
	// Occupancy is never touched.
	UpdateSchedule(ctx context.Context, courseID int64, update models.ScheduleUpdate) error
	UpdateCourseDetails(ctx context.Context, courseID int64, update models.CourseUpdate) error
	// DeleteCourse removes the course with its sections, events and registrations
	DeleteCourse(ctx context.Context, id int64) error
}

// RoomStore persists the room catalog
type RoomStore interface {
	CreateRoom(ctx context.Context, room *models.Room) error
	GetRoomByID(ctx context.Context, id int64) (*models.Room, error)
	ListRooms(ctx context.Context) ([]models.Room, error)
}

// SectionLedger is the only writer of section occupancy
type SectionLedger interface {
	// Reserve takes one seat, failing with ErrCapacityExceeded when full
	Reserve(ctx context.Context, courseID int64, sectionCode string) error
	// Release gives one seat back, never going below zero
	Release(ctx context.Context, courseID int64, sectionCode string) error
	Occupancy(ctx context.Context, courseID int64, sectionCode string) (occupied, capacity int, err error)
}

// EventStore persists timetable events
type EventStore interface {
	// BulkInsert atomically replaces every class event of the scope with
	// events. It fails with ErrScheduleChanged when scope.CourseVersion is set
	// and no longer matches the course.
	BulkInsert(ctx context.Context, scope models.EventScope, events []models.TimetableEvent) (int, error)
	InsertEvent(ctx context.Context, event *models.TimetableEvent) error
	QueryEvents(ctx context.Context, filter models.EventFilter) ([]models.TimetableEvent, error)
}

// RegistrationStore persists registrations
type RegistrationStore interface {
	// CreateRegistration fails with ErrAlreadyRegisteredOrPending when a live
	// registration already exists for the student and course
	CreateRegistration(ctx context.Context, reg *models.Registration) error
	GetRegistrationByID(ctx context.Context, id uuid.UUID) (*models.Registration, error)
	// FindLive returns the pending or approved registration, or nil
	FindLive(ctx context.Context, studentID, courseID int64) (*models.Registration, error)
	// Transition moves the registration from one status to another only if it
	// is still in from, else ErrInvalidTransition
	Transition(ctx context.Context, id uuid.UUID, from, to models.RegistrationStatus, decidedBy int64, decidedAt time.Time, reason *string) (*models.Registration, error)
	ListRegistrations(ctx context.Context, filter models.RegistrationFilter) ([]models.Registration, error)
}

// Stores bundles the storage dependencies of the services
type Stores struct {
	Semesters     SemesterStore
	Courses       CourseStore
	Ledger        SectionLedger
	Events        EventStore
	Registrations RegistrationStore
	Rooms         RoomStore
}
