package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/yigit/termsched/internal/app/auth"
	"github.com/yigit/termsched/internal/app/models"
	"github.com/yigit/termsched/internal/pkg/apperrors"
)

// RegistrationOptions tunes request intake
type RegistrationOptions struct {
	// EnforceAddWindow rejects submissions outside the semester add window
	EnforceAddWindow bool
}

// RegistrationService handles enrollment requests and their decisions.
// Seats are taken only when a request is approved.
type RegistrationService interface {
	Submit(ctx context.Context, actor models.Actor, courseID int64, sectionCode string) (*models.Registration, error)
	Decide(ctx context.Context, actor models.Actor, registrationID uuid.UUID, decision models.Decision, reason *string) (*models.Registration, error)
	ListPendingForInstructor(ctx context.Context, actor models.Actor) ([]models.Registration, error)
	ListForStudent(ctx context.Context, actor models.Actor) ([]models.Registration, error)
	// ListRoster returns the approved registrations of one section
	ListRoster(ctx context.Context, actor models.Actor, courseID int64, sectionCode string) ([]models.Registration, error)
}

type registrationServiceImpl struct {
	courses       CourseStore
	semesters     SemesterStore
	ledger        SectionLedger
	registrations RegistrationStore
	authzService  *auth.AuthorizationService
	opts          RegistrationOptions
	log           zerolog.Logger
	now           func() time.Time
}

// NewRegistrationService creates a new RegistrationService
func NewRegistrationService(stores Stores, authzService *auth.AuthorizationService, opts RegistrationOptions, log zerolog.Logger) RegistrationService {
	return &registrationServiceImpl{
		courses:       stores.Courses,
		semesters:     stores.Semesters,
		ledger:        stores.Ledger,
		registrations: stores.Registrations,
		authzService:  authzService,
		opts:          opts,
		log:           log.With().Str("component", "registration").Logger(),
		now:           time.Now,
	}
}

func (s *registrationServiceImpl) Submit(ctx context.Context, actor models.Actor, courseID int64, sectionCode string) (*models.Registration, error) {
	if err := s.authzService.ValidateStudent(actor); err != nil {
		return nil, err
	}

	course, err := s.courses.GetCourseByID(ctx, courseID)
	if err != nil {
		if errors.Is(err, apperrors.ErrCourseNotFound) {
			return nil, fmt.Errorf("%w: %w", apperrors.ErrSectionNotFound, err)
		}
		return nil, err
	}
	if _, ok := course.Section(sectionCode); !ok {
		return nil, fmt.Errorf("section %q of %s: %w", sectionCode, course.Code, apperrors.ErrSectionNotFound)
	}

	now := s.now()
	if s.opts.EnforceAddWindow {
		semester, err := s.semesters.GetSemesterByID(ctx, course.SemesterID)
		if err != nil {
			return nil, err
		}
		if !semester.RegistrationWindows.AddOpen(now) {
			return nil, apperrors.ErrRegistrationWindowClosed
		}
	}

	existing, err := s.registrations.FindLive(ctx, actor.UserID, course.ID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, apperrors.ErrAlreadyRegisteredOrPending
	}

	reg := &models.Registration{
		ID:          uuid.New(),
		StudentID:   actor.UserID,
		CourseID:    course.ID,
		SectionCode: sectionCode,
		SemesterID:  course.SemesterID,
		Action:      models.ActionAdd,
		Status:      models.RegistrationPending,
		RequestedAt: now,
	}
	// the store re-checks uniqueness, so a concurrent duplicate still fails here
	if err := s.registrations.CreateRegistration(ctx, reg); err != nil {
		return nil, err
	}

	s.log.Info().
		Str("registrationID", reg.ID.String()).
		Int64("studentID", reg.StudentID).
		Int64("courseID", reg.CourseID).
		Str("section", reg.SectionCode).
		Msg("Registration submitted")
	return reg, nil
}

func (s *registrationServiceImpl) Decide(ctx context.Context, actor models.Actor, registrationID uuid.UUID, decision models.Decision, reason *string) (*models.Registration, error) {
	if !decision.Valid() {
		return nil, apperrors.NewValidationError(fmt.Sprintf("unknown decision %q", decision))
	}

	reg, err := s.registrations.GetRegistrationByID(ctx, registrationID)
	if err != nil {
		return nil, err
	}
	if reg.Status != models.RegistrationPending {
		return nil, apperrors.ErrInvalidTransition
	}

	course, err := s.courses.GetCourseByID(ctx, reg.CourseID)
	if err != nil {
		return nil, err
	}
	if err := s.authzService.ValidateDecider(actor, course, reg.SectionCode); err != nil {
		return nil, err
	}

	logEvent := s.log.With().
		Str("registrationID", reg.ID.String()).
		Int64("deciderID", actor.UserID).
		Str("decision", string(decision)).
		Logger()

	if decision == models.DecisionReject {
		decided, err := s.registrations.Transition(ctx, reg.ID, models.RegistrationPending, models.RegistrationRejected, actor.UserID, s.now(), reason)
		if err != nil {
			return nil, err
		}
		logEvent.Info().Msg("Registration rejected")
		return decided, nil
	}

	if err := s.ledger.Reserve(ctx, reg.CourseID, reg.SectionCode); err != nil {
		if errors.Is(err, apperrors.ErrCapacityExceeded) {
			logEvent.Info().Msg("Approval refused, section full")
			return nil, fmt.Errorf("%w: %w", apperrors.ErrSectionFull, err)
		}
		return nil, err
	}

	decided, err := s.registrations.Transition(ctx, reg.ID, models.RegistrationPending, models.RegistrationApproved, actor.UserID, s.now(), reason)
	if err != nil {
		// give the seat back so approval stays all-or-nothing
		if relErr := s.ledger.Release(ctx, reg.CourseID, reg.SectionCode); relErr != nil {
			logEvent.Error().Err(relErr).Msg("Failed to release seat after lost approval")
			return nil, errors.Join(err, relErr)
		}
		logEvent.Warn().Err(err).Msg("Approval lost, seat released")
		return nil, err
	}

	logEvent.Info().Int64("courseID", reg.CourseID).Str("section", reg.SectionCode).Msg("Registration approved")
	return decided, nil
}

func (s *registrationServiceImpl) ListPendingForInstructor(ctx context.Context, actor models.Actor) ([]models.Registration, error) {
	if err := s.authzService.ValidateInstructor(actor); err != nil {
		return nil, err
	}

	filter := models.CourseFilter{}
	if !actor.IsAdmin() {
		filter.InstructorID = &actor.UserID
	}
	courses, err := s.courses.ListCourses(ctx, filter)
	if err != nil {
		return nil, err
	}
	if len(courses) == 0 {
		return []models.Registration{}, nil
	}

	byID := make(map[int64]*models.Course, len(courses))
	ids := make([]int64, 0, len(courses))
	for i := range courses {
		byID[courses[i].ID] = &courses[i]
		ids = append(ids, courses[i].ID)
	}

	regs, err := s.registrations.ListRegistrations(ctx, models.RegistrationFilter{
		CourseIDs: ids,
		Statuses:  []models.RegistrationStatus{models.RegistrationPending},
	})
	if err != nil {
		return nil, err
	}

	// keep only the requests this actor may decide
	out := regs[:0]
	for _, r := range regs {
		if actor.IsAdmin() || byID[r.CourseID].Teaches(actor.UserID, r.SectionCode) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *registrationServiceImpl) ListForStudent(ctx context.Context, actor models.Actor) ([]models.Registration, error) {
	if err := s.authzService.ValidateStudent(actor); err != nil {
		return nil, err
	}
	return s.registrations.ListRegistrations(ctx, models.RegistrationFilter{StudentID: &actor.UserID})
}

func (s *registrationServiceImpl) ListRoster(ctx context.Context, actor models.Actor, courseID int64, sectionCode string) ([]models.Registration, error) {
	course, err := s.courses.GetCourseByID(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if _, ok := course.Section(sectionCode); !ok {
		return nil, fmt.Errorf("section %q of %s: %w", sectionCode, course.Code, apperrors.ErrSectionNotFound)
	}
	if err := s.authzService.ValidateDecider(actor, course, sectionCode); err != nil {
		return nil, err
	}

	return s.registrations.ListRegistrations(ctx, models.RegistrationFilter{
		CourseIDs:   []int64{courseID},
		SectionCode: sectionCode,
		Statuses:    []models.RegistrationStatus{models.RegistrationApproved},
	})
}
