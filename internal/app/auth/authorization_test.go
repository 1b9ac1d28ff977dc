package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/yigit/termsched/internal/app/models"
	"github.com/yigit/termsched/internal/pkg/apperrors"
)

func TestValidateDecider(t *testing.T) {
	ta := int64(20)
	course := &models.Course{
		ID:                1,
		OwnerInstructorID: 10,
		Sections:          []models.Section{{Code: "A", InstructorID: &ta}, {Code: "B"}},
	}
	svc := NewAuthorizationService()

	tests := []struct {
		name    string
		actor   models.Actor
		section string
		allowed bool
	}{
		{name: "owner", actor: models.Actor{UserID: 10, Role: models.RoleInstructor}, section: "B", allowed: true},
		{name: "section instructor", actor: models.Actor{UserID: 20, Role: models.RoleInstructor}, section: "A", allowed: true},
		{name: "other section", actor: models.Actor{UserID: 20, Role: models.RoleInstructor}, section: "B"},
		{name: "admin", actor: models.Actor{UserID: 99, Role: models.RoleAdmin}, section: "B", allowed: true},
		{name: "student with owner id", actor: models.Actor{UserID: 10, Role: models.RoleStudent}, section: "A"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := svc.ValidateDecider(tt.actor, course, tt.section)
			if tt.allowed {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)
			assert.True(t, IsPermissionError(err))
		})
	}
}

func TestRoleChecks(t *testing.T) {
	svc := NewAuthorizationService()
	student := models.Actor{UserID: 1, Role: models.RoleStudent}
	instructor := models.Actor{UserID: 2, Role: models.RoleInstructor}

	assert.NoError(t, svc.ValidateStudent(student))
	assert.ErrorIs(t, svc.ValidateStudent(instructor), apperrors.ErrPermissionDenied)
	assert.NoError(t, svc.ValidateInstructor(instructor))
	assert.NoError(t, svc.ValidateInstructor(models.Actor{Role: models.RoleAdmin}))
	assert.Error(t, svc.ValidateInstructor(student))

	course := &models.Course{OwnerInstructorID: 2}
	assert.NoError(t, svc.ValidateCourseOwnership(instructor, course))
	assert.Error(t, svc.ValidateCourseOwnership(models.Actor{UserID: 3, Role: models.RoleInstructor}, course))
}
