package dto

import (
	"fmt"
	"time"

	"github.com/yigit/termsched/internal/app/models"
)

// DateLayout is the wire format of calendar dates
const DateLayout = "2006-01-02"

// RegistrationWindowsRequest holds optional add/drop periods
type RegistrationWindowsRequest struct {
	AddStart  *time.Time `json:"addStart,omitempty"`
	AddEnd    *time.Time `json:"addEnd,omitempty"`
	DropStart *time.Time `json:"dropStart,omitempty"`
	DropEnd   *time.Time `json:"dropEnd,omitempty"`
}

// CreateSemesterRequest represents semester creation data
type CreateSemesterRequest struct {
	Name                string                     `json:"name" binding:"required,max=100" example:"Fall 2025"`
	StartDate           string                     `json:"startDate" binding:"required,datetime=2006-01-02" example:"2025-09-01"`
	EndDate             string                     `json:"endDate" binding:"required,datetime=2006-01-02" example:"2025-12-15"`
	Timezone            string                     `json:"timezone,omitempty" binding:"omitempty,timezone" example:"Europe/Istanbul"`
	RegistrationWindows RegistrationWindowsRequest `json:"registrationWindows"`
}

// ToModel converts the request into a semester
func (r CreateSemesterRequest) ToModel() (*models.Semester, error) {
	start, err := time.Parse(DateLayout, r.StartDate)
	if err != nil {
		return nil, fmt.Errorf("startDate: %w", err)
	}
	end, err := time.Parse(DateLayout, r.EndDate)
	if err != nil {
		return nil, fmt.Errorf("endDate: %w", err)
	}
	return &models.Semester{
		Name:      r.Name,
		StartDate: start,
		EndDate:   end,
		Timezone:  r.Timezone,
		RegistrationWindows: models.RegistrationWindows{
			AddStart:  r.RegistrationWindows.AddStart,
			AddEnd:    r.RegistrationWindows.AddEnd,
			DropStart: r.RegistrationWindows.DropStart,
			DropEnd:   r.RegistrationWindows.DropEnd,
		},
	}, nil
}

// SemesterResponse represents semester information
type SemesterResponse struct {
	ID                  int64                      `json:"id"`
	Name                string                     `json:"name"`
	StartDate           string                     `json:"startDate"`
	EndDate             string                     `json:"endDate"`
	Timezone            string                     `json:"timezone"`
	RegistrationWindows models.RegistrationWindows `json:"registrationWindows"`
}

// NewSemesterResponse maps a semester for output
func NewSemesterResponse(s *models.Semester) SemesterResponse {
	tz := s.Timezone
	if tz == "" {
		tz = models.DefaultTimezone
	}
	return SemesterResponse{
		ID:                  s.ID,
		Name:                s.Name,
		StartDate:           s.StartDate.Format(DateLayout),
		EndDate:             s.EndDate.Format(DateLayout),
		Timezone:            tz,
		RegistrationWindows: s.RegistrationWindows,
	}
}

// NewSemesterListResponse maps semesters for output
func NewSemesterListResponse(semesters []models.Semester) []SemesterResponse {
	out := make([]SemesterResponse, 0, len(semesters))
	for i := range semesters {
		out = append(out, NewSemesterResponse(&semesters[i]))
	}
	return out
}

// SemesterUpdatedResponse is returned after a semester update
type SemesterUpdatedResponse struct {
	Semester      SemesterResponse `json:"semester"`
	EventsCreated int              `json:"eventsCreated"`
}
