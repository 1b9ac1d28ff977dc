package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/yigit/termsched/internal/app/auth"
	"github.com/yigit/termsched/internal/app/models"
	"github.com/yigit/termsched/internal/pkg/apperrors"
)

// TimetableService answers timetable queries and records ad-hoc events
type TimetableService interface {
	ListEvents(ctx context.Context, filter models.EventFilter) ([]models.TimetableEvent, error)
	// StudentTimetable lists events of the sections the student is approved in
	StudentTimetable(ctx context.Context, actor models.Actor, filter models.EventFilter) ([]models.TimetableEvent, error)
	// InstructorTimetable lists events of the courses and sections the instructor teaches
	InstructorTimetable(ctx context.Context, actor models.Actor, filter models.EventFilter) ([]models.TimetableEvent, error)
	// CreateEvent records an exam, makeup or deadline. Class events only come
	// from schedule generation.
	CreateEvent(ctx context.Context, actor models.Actor, event *models.TimetableEvent) (*models.TimetableEvent, error)
}

type timetableServiceImpl struct {
	courses       CourseStore
	events        EventStore
	registrations RegistrationStore
	rooms         RoomStore
	authzService  *auth.AuthorizationService
	log           zerolog.Logger
}

// NewTimetableService creates a new TimetableService
func NewTimetableService(stores Stores, authzService *auth.AuthorizationService, log zerolog.Logger) TimetableService {
	return &timetableServiceImpl{
		courses:       stores.Courses,
		events:        stores.Events,
		registrations: stores.Registrations,
		rooms:         stores.Rooms,
		authzService:  authzService,
		log:           log.With().Str("component", "timetable").Logger(),
	}
}

func (s *timetableServiceImpl) ListEvents(ctx context.Context, filter models.EventFilter) ([]models.TimetableEvent, error) {
	if filter.Type != "" && !filter.Type.Valid() {
		return nil, apperrors.NewValidationError(fmt.Sprintf("unknown event type %q", filter.Type))
	}
	return s.events.QueryEvents(ctx, filter)
}

func (s *timetableServiceImpl) StudentTimetable(ctx context.Context, actor models.Actor, filter models.EventFilter) ([]models.TimetableEvent, error) {
	if err := s.authzService.ValidateStudent(actor); err != nil {
		return nil, err
	}

	regs, err := s.registrations.ListRegistrations(ctx, models.RegistrationFilter{
		StudentID: &actor.UserID,
		Statuses:  []models.RegistrationStatus{models.RegistrationApproved},
	})
	if err != nil {
		return nil, err
	}

	sections := make(map[int64]string, len(regs))
	for _, r := range regs {
		sections[r.CourseID] = r.SectionCode
	}
	return s.eventsFor(ctx, filter, func(e models.TimetableEvent) bool {
		code, ok := sections[e.CourseID]
		return ok && (e.SectionCode == "" || e.SectionCode == code)
	}, keys(sections))
}

func (s *timetableServiceImpl) InstructorTimetable(ctx context.Context, actor models.Actor, filter models.EventFilter) ([]models.TimetableEvent, error) {
	if err := s.authzService.ValidateInstructor(actor); err != nil {
		return nil, err
	}

	courses, err := s.courses.ListCourses(ctx, models.CourseFilter{InstructorID: &actor.UserID})
	if err != nil {
		return nil, err
	}
	byID := make(map[int64]*models.Course, len(courses))
	for i := range courses {
		byID[courses[i].ID] = &courses[i]
	}
	return s.eventsFor(ctx, filter, func(e models.TimetableEvent) bool {
		c, ok := byID[e.CourseID]
		return ok && (e.SectionCode == "" || c.Teaches(actor.UserID, e.SectionCode))
	}, keys(byID))
}

// eventsFor narrows filter to courseIDs and keeps events accepted by keep
func (s *timetableServiceImpl) eventsFor(ctx context.Context, filter models.EventFilter, keep func(models.TimetableEvent) bool, courseIDs []int64) ([]models.TimetableEvent, error) {
	if len(courseIDs) == 0 {
		return []models.TimetableEvent{}, nil
	}
	if filter.CourseIDs != nil {
		courseIDs = intersect(courseIDs, filter.CourseIDs)
		if len(courseIDs) == 0 {
			return []models.TimetableEvent{}, nil
		}
	}
	filter.CourseIDs = courseIDs

	events, err := s.events.QueryEvents(ctx, filter)
	if err != nil {
		return nil, err
	}
	out := events[:0]
	for _, e := range events {
		if keep(e) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (s *timetableServiceImpl) CreateEvent(ctx context.Context, actor models.Actor, event *models.TimetableEvent) (*models.TimetableEvent, error) {
	if !event.Type.Valid() {
		return nil, apperrors.NewValidationError(fmt.Sprintf("unknown event type %q", event.Type))
	}
	if event.Type == models.EventTypeClass {
		return nil, apperrors.NewValidationError("class events are generated from the course schedule")
	}
	if !event.StartAt.Before(event.EndAt) {
		return nil, apperrors.NewValidationError("event start must be before end")
	}

	course, err := s.courses.GetCourseByID(ctx, event.CourseID)
	if err != nil {
		return nil, err
	}
	if err := s.authzService.ValidateCourseOwnership(actor, course); err != nil {
		return nil, err
	}
	if event.SectionCode != "" {
		if _, ok := course.Section(event.SectionCode); !ok {
			return nil, fmt.Errorf("section %q: %w", event.SectionCode, apperrors.ErrSectionNotFound)
		}
	}
	if event.RoomID != nil {
		if _, err := s.rooms.GetRoomByID(ctx, *event.RoomID); err != nil {
			return nil, fmt.Errorf("room %d: %w", *event.RoomID, err)
		}
	}

	event.ID = uuid.New()
	event.SemesterID = course.SemesterID
	event.Status = models.EventStatusScheduled
	event.Meta.CreatedBy = &actor.UserID

	if err := s.events.InsertEvent(ctx, event); err != nil {
		return nil, err
	}
	s.log.Info().Str("eventID", event.ID.String()).Str("type", string(event.Type)).Int64("courseID", course.ID).Msg("Event created")
	return event, nil
}

func keys[V any](m map[int64]V) []int64 {
	out := make([]int64, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}

func intersect(a, b []int64) []int64 {
	in := make(map[int64]bool, len(b))
	for _, v := range b {
		in[v] = true
	}
	out := []int64{}
	for _, v := range a {
		if in[v] {
			out = append(out, v)
		}
	}
	return out
}
