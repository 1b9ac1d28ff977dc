package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/yigit/termsched/internal/app/calendar"
	"github.com/yigit/termsched/internal/app/models"
	"github.com/yigit/termsched/internal/pkg/apperrors"
)

// SchedulingService turns course weekly patterns into class events
type SchedulingService interface {
	// RegenerateSchedule replaces all class events of the course in its
	// semester and returns how many were written
	RegenerateSchedule(ctx context.Context, courseID int64) (int, error)
	// BuildEvents expands every section of course over the semester without
	// writing anything
	BuildEvents(course *models.Course, semester *models.Semester) ([]models.TimetableEvent, error)
}

type schedulingServiceImpl struct {
	courses   CourseStore
	semesters SemesterStore
	events    EventStore
	log       zerolog.Logger
	newID     func() uuid.UUID
}

// NewSchedulingService creates a new SchedulingService
func NewSchedulingService(stores Stores, log zerolog.Logger) SchedulingService {
	return &schedulingServiceImpl{
		courses:   stores.Courses,
		semesters: stores.Semesters,
		events:    stores.Events,
		log:       log.With().Str("component", "scheduling").Logger(),
		newID:     uuid.New,
	}
}

// regenerateAttempts bounds how often a regeneration re-reads a course
// whose schedule moved underneath it
const regenerateAttempts = 3

func (s *schedulingServiceImpl) RegenerateSchedule(ctx context.Context, courseID int64) (int, error) {
	var err error
	for attempt := 1; attempt <= regenerateAttempts; attempt++ {
		var n int
		n, err = s.regenerateOnce(ctx, courseID)
		if !errors.Is(err, apperrors.ErrScheduleChanged) {
			return n, err
		}
		s.log.Warn().Int64("courseID", courseID).Int("attempt", attempt).Msg("Course changed during regeneration, retrying")
	}
	return 0, err
}

func (s *schedulingServiceImpl) regenerateOnce(ctx context.Context, courseID int64) (int, error) {
	course, err := s.courses.GetCourseByID(ctx, courseID)
	if err != nil {
		return 0, err
	}

	semester, err := s.semesters.GetSemesterByID(ctx, course.SemesterID)
	if err != nil {
		return 0, fmt.Errorf("course %s: %w", course.Code, err)
	}

	events, err := s.BuildEvents(course, semester)
	if err != nil {
		return 0, err
	}

	scope := models.EventScope{CourseID: course.ID, SemesterID: semester.ID, CourseVersion: course.UpdatedAt}
	n, err := s.events.BulkInsert(ctx, scope, events)
	if err != nil {
		if !errors.Is(err, apperrors.ErrScheduleChanged) {
			s.log.Error().Err(err).Int64("courseID", course.ID).Int("events", len(events)).Msg("Schedule regeneration failed")
		}
		return 0, err
	}

	s.log.Info().
		Int64("courseID", course.ID).
		Int64("semesterID", semester.ID).
		Int("sections", len(course.Sections)).
		Int("events", n).
		Msg("Schedule regenerated")
	return n, nil
}

func (s *schedulingServiceImpl) BuildEvents(course *models.Course, semester *models.Semester) ([]models.TimetableEvent, error) {
	start, end := semester.Bounds()

	var events []models.TimetableEvent
	for _, section := range course.Sections {
		effective := course.EffectiveSchedule(section)

		seq, err := calendar.Expand(effective.Slots, start, end)
		if err != nil {
			return nil, fmt.Errorf("section %s: %w", section.Code, err)
		}
		for occ := range seq {
			events = append(events, models.TimetableEvent{
				ID:          s.newID(),
				Type:        models.EventTypeClass,
				CourseID:    course.ID,
				SectionCode: section.Code,
				SemesterID:  semester.ID,
				StartAt:     occ.Start,
				EndAt:       occ.End,
				RoomID:      copyInt64(occ.Slot.RoomID),
				Status:      models.EventStatusScheduled,
			})
		}
	}
	return events, nil
}

// MirrorFirstSectionSchedule copies the first section's schedule into an
// empty course template. It reports whether the template changed.
func MirrorFirstSectionSchedule(course *models.Course) bool {
	if len(course.ScheduleTemplate) > 0 || len(course.Sections) == 0 {
		return false
	}
	first := course.Sections[0].Schedule
	if len(first) == 0 {
		return false
	}
	course.ScheduleTemplate = append([]calendar.WeeklySlot(nil), first...)
	return true
}

func copyInt64(p *int64) *int64 {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
