package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/yigit/termsched/internal/app/auth"
	"github.com/yigit/termsched/internal/app/calendar"
	"github.com/yigit/termsched/internal/app/models"
	"github.com/yigit/termsched/internal/pkg/apperrors"
	"github.com/yigit/termsched/internal/pkg/validation"
)

// CourseOptions tunes course creation
type CourseOptions struct {
	// MirrorFirstSection copies the first section's schedule into an empty
	// template when a course is created
	MirrorFirstSection bool
}

// CourseService manages courses and their weekly schedules
type CourseService interface {
	// Create stores the course and generates its class events. The returned
	// course is non-nil whenever it was stored, even if generation failed.
	Create(ctx context.Context, actor models.Actor, course *models.Course) (*models.Course, int, error)
	GetByID(ctx context.Context, id int64) (*models.Course, error)
	List(ctx context.Context, filter models.CourseFilter) ([]models.Course, error)
	// ListAvailable returns the courses a student holds no pending or
	// approved registration for, optionally limited to one semester
	ListAvailable(ctx context.Context, actor models.Actor, semesterID *int64) ([]models.Course, error)
	// UpdateSchedule applies the template (when set) and the given section
	// overrides, then regenerates the class events. Sections left out of the
	// update keep their schedule.
	UpdateSchedule(ctx context.Context, actor models.Actor, courseID int64, update models.ScheduleUpdate) (*models.Course, int, error)
	// Update changes descriptive fields that do not affect the timetable
	Update(ctx context.Context, actor models.Actor, courseID int64, update models.CourseUpdate) (*models.Course, error)
	// Delete removes a course that no student is registered or waiting for
	Delete(ctx context.Context, actor models.Actor, courseID int64) error
	// Regenerate rebuilds the class events of a course on behalf of its owner
	Regenerate(ctx context.Context, actor models.Actor, courseID int64) (int, error)
}

type courseServiceImpl struct {
	courses       CourseStore
	semesters     SemesterStore
	registrations RegistrationStore
	rooms         RoomStore
	scheduler     SchedulingService
	authzService  *auth.AuthorizationService
	opts          CourseOptions
	log           zerolog.Logger
}

// NewCourseService creates a new CourseService
func NewCourseService(stores Stores, scheduler SchedulingService, authzService *auth.AuthorizationService, opts CourseOptions, log zerolog.Logger) CourseService {
	return &courseServiceImpl{
		courses:       stores.Courses,
		semesters:     stores.Semesters,
		registrations: stores.Registrations,
		rooms:         stores.Rooms,
		scheduler:     scheduler,
		authzService:  authzService,
		opts:          opts,
		log:           log.With().Str("component", "course").Logger(),
	}
}

func (s *courseServiceImpl) Create(ctx context.Context, actor models.Actor, course *models.Course) (*models.Course, int, error) {
	if err := s.authzService.ValidateInstructor(actor); err != nil {
		return nil, 0, err
	}
	if !actor.IsAdmin() || course.OwnerInstructorID == 0 {
		course.OwnerInstructorID = actor.UserID
	}
	if err := validateCourse(course); err != nil {
		return nil, 0, err
	}

	if _, err := s.semesters.GetSemesterByID(ctx, course.SemesterID); err != nil {
		return nil, 0, err
	}
	if err := checkRooms(ctx, s.rooms, course.Slots()); err != nil {
		return nil, 0, err
	}

	if s.opts.MirrorFirstSection && MirrorFirstSectionSchedule(course) {
		s.log.Debug().Str("code", course.Code).Msg("Template mirrored from first section")
	}

	if err := s.courses.CreateCourse(ctx, course); err != nil {
		return nil, 0, err
	}
	s.log.Info().Int64("courseID", course.ID).Str("code", course.Code).Int("sections", len(course.Sections)).Msg("Course created")

	n, err := s.scheduler.RegenerateSchedule(ctx, course.ID)
	if err != nil {
		return course, 0, err
	}
	return course, n, nil
}

func (s *courseServiceImpl) GetByID(ctx context.Context, id int64) (*models.Course, error) {
	return s.courses.GetCourseByID(ctx, id)
}

func (s *courseServiceImpl) List(ctx context.Context, filter models.CourseFilter) ([]models.Course, error) {
	return s.courses.ListCourses(ctx, filter)
}

func (s *courseServiceImpl) ListAvailable(ctx context.Context, actor models.Actor, semesterID *int64) ([]models.Course, error) {
	if err := s.authzService.ValidateStudent(actor); err != nil {
		return nil, err
	}

	courses, err := s.courses.ListCourses(ctx, models.CourseFilter{SemesterID: semesterID})
	if err != nil {
		return nil, err
	}
	live, err := s.registrations.ListRegistrations(ctx, models.RegistrationFilter{
		StudentID: &actor.UserID,
		Statuses:  []models.RegistrationStatus{models.RegistrationPending, models.RegistrationApproved},
	})
	if err != nil {
		return nil, err
	}

	taken := make(map[int64]bool, len(live))
	for _, r := range live {
		taken[r.CourseID] = true
	}
	available := make([]models.Course, 0, len(courses))
	for _, c := range courses {
		if !taken[c.ID] {
			available = append(available, c)
		}
	}
	return available, nil
}

func (s *courseServiceImpl) UpdateSchedule(ctx context.Context, actor models.Actor, courseID int64, update models.ScheduleUpdate) (*models.Course, int, error) {
	course, err := s.courses.GetCourseByID(ctx, courseID)
	if err != nil {
		return nil, 0, err
	}
	if err := s.authzService.ValidateCourseOwnership(actor, course); err != nil {
		return nil, 0, err
	}

	var touched []calendar.WeeklySlot
	if update.Template != nil {
		if err := calendar.ValidateSlots(*update.Template); err != nil {
			return nil, 0, fmt.Errorf("schedule template: %w", err)
		}
		touched = append(touched, *update.Template...)
	}
	for code, slots := range update.Sections {
		if _, ok := course.Section(code); !ok {
			return nil, 0, fmt.Errorf("section %q: %w", code, apperrors.ErrSectionNotFound)
		}
		if err := calendar.ValidateSlots(slots); err != nil {
			return nil, 0, fmt.Errorf("section %s: %w", code, err)
		}
		touched = append(touched, slots...)
	}
	if err := checkRooms(ctx, s.rooms, touched); err != nil {
		return nil, 0, err
	}

	if !update.Empty() {
		if err := s.courses.UpdateSchedule(ctx, courseID, update); err != nil {
			return nil, 0, err
		}
	}

	// schedule edits regenerate explicitly; the store never does it implicitly
	n, err := s.scheduler.RegenerateSchedule(ctx, courseID)
	if err != nil {
		return nil, 0, err
	}

	updated, err := s.courses.GetCourseByID(ctx, courseID)
	if err != nil {
		return nil, 0, err
	}
	return updated, n, nil
}

func (s *courseServiceImpl) Update(ctx context.Context, actor models.Actor, courseID int64, update models.CourseUpdate) (*models.Course, error) {
	course, err := s.courses.GetCourseByID(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if err := s.authzService.ValidateCourseOwnership(actor, course); err != nil {
		return nil, err
	}

	if update.Name != nil {
		name := strings.TrimSpace(*update.Name)
		if !validation.NewStringValidation(name).WithMaxLength(validation.NameMaxLength).Validate() {
			return nil, apperrors.NewValidationError("course name is required")
		}
		update.Name = &name
	}
	if update.Credits != nil && *update.Credits < 0 {
		return nil, apperrors.NewValidationError("credits cannot be negative")
	}
	if update.Policies != nil && update.Policies.AttendanceWeight != nil {
		if w := *update.Policies.AttendanceWeight; w < 0 || w > 1 {
			return nil, apperrors.NewValidationError("attendance weight must be between 0 and 1")
		}
	}

	if err := s.courses.UpdateCourseDetails(ctx, courseID, update); err != nil {
		return nil, err
	}
	s.log.Info().Int64("courseID", courseID).Int64("actor", actor.UserID).Msg("Course updated")
	return s.courses.GetCourseByID(ctx, courseID)
}

func (s *courseServiceImpl) Delete(ctx context.Context, actor models.Actor, courseID int64) error {
	course, err := s.courses.GetCourseByID(ctx, courseID)
	if err != nil {
		return err
	}
	if err := s.authzService.ValidateCourseOwnership(actor, course); err != nil {
		return err
	}

	live, err := s.registrations.ListRegistrations(ctx, models.RegistrationFilter{
		CourseIDs: []int64{courseID},
		Statuses:  []models.RegistrationStatus{models.RegistrationPending, models.RegistrationApproved},
	})
	if err != nil {
		return err
	}
	if len(live) > 0 {
		return apperrors.NewConflictError(fmt.Sprintf("course %s has %d pending or approved registrations", course.Code, len(live)))
	}

	if err := s.courses.DeleteCourse(ctx, courseID); err != nil {
		return err
	}
	s.log.Info().Int64("courseID", courseID).Str("code", course.Code).Msg("Course deleted")
	return nil
}

func (s *courseServiceImpl) Regenerate(ctx context.Context, actor models.Actor, courseID int64) (int, error) {
	course, err := s.courses.GetCourseByID(ctx, courseID)
	if err != nil {
		return 0, err
	}
	if err := s.authzService.ValidateCourseOwnership(actor, course); err != nil {
		return 0, err
	}
	return s.scheduler.RegenerateSchedule(ctx, courseID)
}

func validateCourse(c *models.Course) error {
	c.Code = strings.TrimSpace(c.Code)
	c.Name = strings.TrimSpace(c.Name)

	if !validation.CompiledPatterns.CourseCode.MatchString(c.Code) {
		return apperrors.NewValidationError("invalid course code " + c.Code)
	}
	if !validation.NewStringValidation(c.Name).WithMaxLength(validation.NameMaxLength).Validate() {
		return apperrors.NewValidationError("course name is required")
	}
	if c.Credits < 0 {
		return apperrors.NewValidationError("credits cannot be negative")
	}
	if err := calendar.ValidateSlots(c.ScheduleTemplate); err != nil {
		return fmt.Errorf("schedule template: %w", err)
	}

	seen := make(map[string]bool, len(c.Sections))
	for i := range c.Sections {
		sec := &c.Sections[i]
		sec.Code = strings.TrimSpace(sec.Code)
		if !validation.CompiledPatterns.SectionCode.MatchString(sec.Code) {
			return apperrors.NewValidationError(fmt.Sprintf("invalid section identifier %q", sec.Code))
		}
		if seen[sec.Code] {
			return apperrors.NewValidationError(fmt.Sprintf("duplicate section identifier %q", sec.Code))
		}
		seen[sec.Code] = true
		if !validation.NewNumericValidation(sec.Capacity).WithMin(1).Validate() {
			return apperrors.NewValidationError(fmt.Sprintf("section %s capacity must be positive", sec.Code))
		}
		if err := calendar.ValidateSlots(sec.Schedule); err != nil {
			return fmt.Errorf("section %s: %w", sec.Code, err)
		}
	}
	return nil
}
