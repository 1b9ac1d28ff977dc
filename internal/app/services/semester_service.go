package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/yigit/termsched/internal/app/models"
	"github.com/yigit/termsched/internal/pkg/apperrors"
)

// SemesterService manages the semester catalog
type SemesterService interface {
	Create(ctx context.Context, actor models.Actor, semester *models.Semester) (*models.Semester, error)
	GetByID(ctx context.Context, id int64) (*models.Semester, error)
	List(ctx context.Context) ([]models.Semester, error)
	// Update replaces the semester and regenerates the class events of every
	// course in it, since its bounds or timezone may have moved
	Update(ctx context.Context, actor models.Actor, semester *models.Semester) (*models.Semester, int, error)
	// Delete removes a semester that no course belongs to
	Delete(ctx context.Context, actor models.Actor, id int64) error
}

type semesterServiceImpl struct {
	semesters SemesterStore
	courses   CourseStore
	scheduler SchedulingService
	log       zerolog.Logger
}

// NewSemesterService creates a new SemesterService
func NewSemesterService(stores Stores, scheduler SchedulingService, log zerolog.Logger) SemesterService {
	return &semesterServiceImpl{
		semesters: stores.Semesters,
		courses:   stores.Courses,
		scheduler: scheduler,
		log:       log.With().Str("component", "semester").Logger(),
	}
}

// Create validates and stores a semester. Only administrators may create one.
// Registration windows are stored as given; they are not checked against the
// semester bounds.
func (s *semesterServiceImpl) Create(ctx context.Context, actor models.Actor, semester *models.Semester) (*models.Semester, error) {
	if !actor.IsAdmin() {
		return nil, apperrors.NewForbiddenError("only administrators can create semesters")
	}
	if err := validateSemester(semester); err != nil {
		return nil, err
	}

	if err := s.semesters.CreateSemester(ctx, semester); err != nil {
		return nil, err
	}

	s.log.Info().Int64("semesterID", semester.ID).Str("name", semester.Name).Msg("Semester created")
	return semester, nil
}

func (s *semesterServiceImpl) GetByID(ctx context.Context, id int64) (*models.Semester, error) {
	return s.semesters.GetSemesterByID(ctx, id)
}

func (s *semesterServiceImpl) List(ctx context.Context) ([]models.Semester, error) {
	return s.semesters.ListSemesters(ctx)
}

func (s *semesterServiceImpl) Update(ctx context.Context, actor models.Actor, semester *models.Semester) (*models.Semester, int, error) {
	if !actor.IsAdmin() {
		return nil, 0, apperrors.NewForbiddenError("only administrators can update semesters")
	}
	if err := validateSemester(semester); err != nil {
		return nil, 0, err
	}
	if err := s.semesters.UpdateSemester(ctx, semester); err != nil {
		return nil, 0, err
	}

	courses, err := s.courses.ListCourses(ctx, models.CourseFilter{SemesterID: &semester.ID})
	if err != nil {
		return nil, 0, err
	}
	total := 0
	for _, c := range courses {
		n, err := s.scheduler.RegenerateSchedule(ctx, c.ID)
		if err != nil {
			return nil, total, fmt.Errorf("course %s: %w", c.Code, err)
		}
		total += n
	}

	s.log.Info().Int64("semesterID", semester.ID).Int("courses", len(courses)).Int("events", total).Msg("Semester updated")
	return semester, total, nil
}

func (s *semesterServiceImpl) Delete(ctx context.Context, actor models.Actor, id int64) error {
	if !actor.IsAdmin() {
		return apperrors.NewForbiddenError("only administrators can delete semesters")
	}
	if _, err := s.semesters.GetSemesterByID(ctx, id); err != nil {
		return err
	}

	courses, err := s.courses.ListCourses(ctx, models.CourseFilter{SemesterID: &id})
	if err != nil {
		return err
	}
	if len(courses) > 0 {
		return apperrors.NewConflictError(fmt.Sprintf("semester still has %d courses", len(courses)))
	}

	if err := s.semesters.DeleteSemester(ctx, id); err != nil {
		return err
	}
	s.log.Info().Int64("semesterID", id).Msg("Semester deleted")
	return nil
}

func validateSemester(semester *models.Semester) error {
	semester.Name = strings.TrimSpace(semester.Name)
	if semester.Name == "" {
		return apperrors.NewValidationError("semester name is required")
	}
	if !semester.StartDate.Before(semester.EndDate) {
		return apperrors.NewValidationError("semester start date must be before end date")
	}
	if semester.Timezone == "" {
		semester.Timezone = models.DefaultTimezone
	}
	if _, err := time.LoadLocation(semester.Timezone); err != nil {
		return apperrors.NewValidationError("unknown timezone " + semester.Timezone)
	}
	return nil
}
