package auth

import (
	"errors"

	"github.com/yigit/termsched/internal/app/models"
	"github.com/yigit/termsched/internal/pkg/apperrors"
	"github.com/yigit/termsched/internal/pkg/logger"
)

// Authorization errors. All of them wrap apperrors.ErrPermissionDenied.
var (
	ErrNotStudent     = apperrors.NewForbiddenError("only students can perform this action")
	ErrNotInstructor  = apperrors.NewForbiddenError("only instructors can perform this action")
	ErrNotCourseOwner = apperrors.NewForbiddenError("only the course owner can perform this action")
	ErrNotDecider     = apperrors.NewForbiddenError("only the course owner or section instructor can decide this registration")
)

// AuthorizationService answers permission questions about an actor. The
// actor itself is trusted; it was authenticated upstream.
type AuthorizationService struct{}

// NewAuthorizationService creates a new AuthorizationService
func NewAuthorizationService() *AuthorizationService {
	return &AuthorizationService{}
}

// ValidateStudent allows only student actors
func (s *AuthorizationService) ValidateStudent(actor models.Actor) error {
	if actor.Role != models.RoleStudent {
		return ErrNotStudent
	}
	return nil
}

// ValidateInstructor allows instructors and admins
func (s *AuthorizationService) ValidateInstructor(actor models.Actor) error {
	if actor.Role == models.RoleInstructor || actor.IsAdmin() {
		return nil
	}
	return ErrNotInstructor
}

// ValidateCourseOwnership allows the course owner and admins
func (s *AuthorizationService) ValidateCourseOwnership(actor models.Actor, course *models.Course) error {
	if actor.IsAdmin() {
		return nil
	}
	if actor.Role == models.RoleInstructor && course.OwnerInstructorID == actor.UserID {
		return nil
	}
	logger.Warn().Int64("userID", actor.UserID).Int64("courseID", course.ID).Msg("Course ownership check failed")
	return ErrNotCourseOwner
}

// ValidateDecider allows the course owner, the instructor of the section and admins
func (s *AuthorizationService) ValidateDecider(actor models.Actor, course *models.Course, sectionCode string) error {
	if actor.IsAdmin() {
		return nil
	}
	if actor.Role == models.RoleInstructor && course.Teaches(actor.UserID, sectionCode) {
		return nil
	}
	logger.Warn().Int64("userID", actor.UserID).Int64("courseID", course.ID).Str("section", sectionCode).Msg("Registration decision denied")
	return ErrNotDecider
}

// IsPermissionError reports whether err is an authorization failure
func IsPermissionError(err error) bool {
	return errors.Is(err, apperrors.ErrPermissionDenied)
}
