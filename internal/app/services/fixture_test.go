package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/yigit/termsched/internal/app/auth"
	"github.com/yigit/termsched/internal/app/calendar"
	"github.com/yigit/termsched/internal/app/models"
	"github.com/yigit/termsched/internal/app/repositories/memory"
	"github.com/yigit/termsched/internal/app/services"
	"github.com/yigit/termsched/internal/pkg/logger"
)

var (
	admin      = models.Actor{UserID: 1, Role: models.RoleAdmin}
	owner      = models.Actor{UserID: 10, Role: models.RoleInstructor}
	otherTeach = models.Actor{UserID: 11, Role: models.RoleInstructor}
)

func student(id int64) models.Actor {
	return models.Actor{UserID: id, Role: models.RoleStudent}
}

type fixture struct {
	db            *memory.DB
	stores        services.Stores
	semesters     services.SemesterService
	courses       services.CourseService
	scheduler     services.SchedulingService
	registrations services.RegistrationService
	timetable     services.TimetableService
	rooms         services.RoomService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := memory.Open()
	stores := services.Stores{
		Semesters:     db,
		Courses:       db,
		Ledger:        db,
		Events:        db,
		Registrations: db,
		Rooms:         db,
	}
	log := logger.Nop()
	authz := auth.NewAuthorizationService()
	scheduler := services.NewSchedulingService(stores, log)

	return &fixture{
		db:            db,
		stores:        stores,
		semesters:     services.NewSemesterService(stores, scheduler, log),
		courses:       services.NewCourseService(stores, scheduler, authz, services.CourseOptions{MirrorFirstSection: true}, log),
		scheduler:     scheduler,
		registrations: services.NewRegistrationService(stores, authz, services.RegistrationOptions{}, log),
		timetable:     services.NewTimetableService(stores, authz, log),
		rooms:         services.NewRoomService(stores, log),
	}
}

func slot(day time.Weekday, start, end string) calendar.WeeklySlot {
	return calendar.WeeklySlot{DayOfWeek: int(day), StartTime: calendar.MustParseTimeOfDay(start), EndTime: calendar.MustParseTimeOfDay(end)}
}

// fall2025 is Sep 1 (a Monday) to Dec 15 2025
func (f *fixture) fall2025(t *testing.T) *models.Semester {
	t.Helper()
	s, err := f.semesters.Create(context.Background(), admin, &models.Semester{
		Name:      "Fall 2025",
		StartDate: time.Date(2025, time.September, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2025, time.December, 15, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	return s
}

func (f *fixture) course(t *testing.T, semesterID int64, capacity int, template []calendar.WeeklySlot, sections ...models.Section) *models.Course {
	t.Helper()
	if len(sections) == 0 {
		sections = []models.Section{{Code: "A", Capacity: capacity}}
	}
	c, _, err := f.courses.Create(context.Background(), owner, &models.Course{
		Code:             "CS101",
		Name:             "Introduction to Programming",
		Credits:          4,
		SemesterID:       semesterID,
		ScheduleTemplate: template,
		Sections:         sections,
	})
	require.NoError(t, err)
	return c
}

func templateUpdate(slots ...calendar.WeeklySlot) models.ScheduleUpdate {
	return models.ScheduleUpdate{Template: &slots}
}

func eventsBySection(events []models.TimetableEvent) map[string][]models.TimetableEvent {
	out := make(map[string][]models.TimetableEvent)
	for _, e := range events {
		out[e.SectionCode] = append(out[e.SectionCode], e)
	}
	return out
}
