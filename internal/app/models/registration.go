package models

import (
	"time"

	"github.com/google/uuid"
)

// RegistrationStatus is the state of an enrollment request
type RegistrationStatus string

const (
	RegistrationPending  RegistrationStatus = "pending"
	RegistrationApproved RegistrationStatus = "approved"
	RegistrationRejected RegistrationStatus = "rejected"
)

// Live reports whether the status blocks another request for the same course
func (s RegistrationStatus) Live() bool {
	return s == RegistrationPending || s == RegistrationApproved
}

// Terminal reports whether no further transition is possible
func (s RegistrationStatus) Terminal() bool {
	return s == RegistrationApproved || s == RegistrationRejected
}

// RegistrationAction is what the student asked for
type RegistrationAction string

const (
	ActionAdd  RegistrationAction = "add"
	ActionDrop RegistrationAction = "drop"
)

// Decision is an instructor's verdict on a pending registration
type Decision string

const (
	DecisionApprove Decision = "approve"
	DecisionReject  Decision = "reject"
)

// Valid reports whether d is approve or reject
func (d Decision) Valid() bool {
	return d == DecisionApprove || d == DecisionReject
}

// Registration is the sole seat-reservation record of a student.
type Registration struct {
	ID          uuid.UUID          `json:"id" db:"id"`
	StudentID   int64              `json:"studentId" db:"student_id"`
	CourseID    int64              `json:"courseId" db:"course_id"`
	SectionCode string             `json:"sectionId" db:"section_code"`
	SemesterID  int64              `json:"semesterId" db:"semester_id"`
	Action      RegistrationAction `json:"action" db:"action"`
	Status      RegistrationStatus `json:"status" db:"status"`
	Reason      *string            `json:"reason,omitempty" db:"reason"`
	RequestedAt time.Time          `json:"requestedAt" db:"requested_at"`
	DecidedAt   *time.Time         `json:"decidedAt,omitempty" db:"decided_at"`
	DecidedBy   *int64             `json:"decidedBy,omitempty" db:"decided_by"`
}

// RegistrationFilter narrows registration listings
type RegistrationFilter struct {
	StudentID   *int64
	CourseIDs   []int64
	SectionCode string
	Statuses    []RegistrationStatus
}
