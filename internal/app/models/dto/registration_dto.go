package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/yigit/termsched/internal/app/models"
)

// CreateRegistrationRequest is a student's request to join a section
type CreateRegistrationRequest struct {
	CourseID  int64  `json:"courseId" binding:"required,gt=0"`
	SectionID string `json:"sectionId" binding:"required,max=16"`
}

// DecisionRequest carries an instructor's verdict on a pending registration
type DecisionRequest struct {
	Decision string  `json:"decision" binding:"required,oneof=approve reject"`
	Reason   *string `json:"reason,omitempty" binding:"omitempty,max=500"`
}

// CreateRegistrationResponse is returned after a successful submission
type CreateRegistrationResponse struct {
	RegistrationID uuid.UUID `json:"registrationId"`
	Status         string    `json:"status" example:"pending"`
}

// DecisionResponse is returned after a decision was applied
type DecisionResponse struct {
	RegistrationID uuid.UUID `json:"registrationId"`
	Status         string    `json:"status" example:"approved"`
}

// RegistrationResponse represents a registration in listings
type RegistrationResponse struct {
	ID          uuid.UUID  `json:"id"`
	StudentID   int64      `json:"studentId"`
	CourseID    int64      `json:"courseId"`
	SectionID   string     `json:"sectionId"`
	SemesterID  int64      `json:"semesterId"`
	Action      string     `json:"action"`
	Status      string     `json:"status"`
	Reason      *string    `json:"reason,omitempty"`
	RequestedAt time.Time  `json:"requestedAt"`
	DecidedAt   *time.Time `json:"decidedAt,omitempty"`
	DecidedBy   *int64     `json:"decidedBy,omitempty"`
}

// RegistrationListResponse represents a list of registrations
type RegistrationListResponse struct {
	Registrations []RegistrationResponse `json:"registrations"`
	Pagination    *PaginationInfo        `json:"pagination,omitempty"`
}

// NewRegistrationResponse maps a registration for output
func NewRegistrationResponse(r *models.Registration) RegistrationResponse {
	return RegistrationResponse{
		ID:          r.ID,
		StudentID:   r.StudentID,
		CourseID:    r.CourseID,
		SectionID:   r.SectionCode,
		SemesterID:  r.SemesterID,
		Action:      string(r.Action),
		Status:      string(r.Status),
		Reason:      r.Reason,
		RequestedAt: r.RequestedAt,
		DecidedAt:   r.DecidedAt,
		DecidedBy:   r.DecidedBy,
	}
}

// NewRegistrationListResponse maps registrations for output
func NewRegistrationListResponse(regs []models.Registration) RegistrationListResponse {
	out := make([]RegistrationResponse, 0, len(regs))
	for i := range regs {
		out = append(out, NewRegistrationResponse(&regs[i]))
	}
	return RegistrationListResponse{Registrations: out}
}
