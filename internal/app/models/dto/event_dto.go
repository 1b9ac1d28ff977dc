package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/yigit/termsched/internal/app/models"
)

// EventFilterQuery is bound from the query string of event listings
type EventFilterQuery struct {
	CourseID   int64      `form:"courseId" binding:"omitempty,gt=0"`
	SectionID  string     `form:"sectionId" binding:"omitempty,max=16"`
	SemesterID int64      `form:"semesterId" binding:"omitempty,gt=0"`
	From       *time.Time `form:"from" time_format:"2006-01-02T15:04:05Z07:00"`
	To         *time.Time `form:"to" time_format:"2006-01-02T15:04:05Z07:00"`
	Type       string     `form:"type" binding:"omitempty,oneof=class exam makeup deadline"`
}

// ToFilter converts the query into a store filter
func (q EventFilterQuery) ToFilter() models.EventFilter {
	f := models.EventFilter{
		SectionCode: q.SectionID,
		From:        q.From,
		To:          q.To,
		Type:        models.EventType(q.Type),
	}
	if q.CourseID > 0 {
		f.CourseIDs = []int64{q.CourseID}
	}
	if q.SemesterID > 0 {
		id := q.SemesterID
		f.SemesterID = &id
	}
	return f
}

// CreateEventRequest represents an ad-hoc event such as an exam
type CreateEventRequest struct {
	Type      string    `json:"type" binding:"required,oneof=exam makeup deadline"`
	CourseID  int64     `json:"courseId" binding:"required,gt=0"`
	SectionID string    `json:"sectionId,omitempty" binding:"omitempty,max=16"`
	StartAt   time.Time `json:"startAt" binding:"required"`
	EndAt     time.Time `json:"endAt" binding:"required,gtfield=StartAt"`
	RoomID    *int64    `json:"roomId,omitempty" binding:"omitempty,gt=0"`
	Topic     *string   `json:"topic,omitempty" binding:"omitempty,max=200"`
	Notes     *string   `json:"notes,omitempty" binding:"omitempty,max=2000"`
}

// ToModel converts the request into a timetable event
func (r CreateEventRequest) ToModel() *models.TimetableEvent {
	return &models.TimetableEvent{
		Type:        models.EventType(r.Type),
		CourseID:    r.CourseID,
		SectionCode: r.SectionID,
		StartAt:     r.StartAt,
		EndAt:       r.EndAt,
		RoomID:      r.RoomID,
		Meta: models.EventMeta{
			Topic: r.Topic,
			Notes: r.Notes,
		},
	}
}

// EventResponse represents a timetable event
type EventResponse struct {
	ID         uuid.UUID        `json:"id"`
	Type       string           `json:"type"`
	CourseID   int64            `json:"courseId"`
	SectionID  string           `json:"sectionId"`
	SemesterID int64            `json:"semesterId"`
	StartAt    time.Time        `json:"startAt"`
	EndAt      time.Time        `json:"endAt"`
	RoomID     *int64           `json:"roomId,omitempty"`
	Status     string           `json:"status"`
	Meta       models.EventMeta `json:"meta"`
}

// EventListResponse represents a list of events
type EventListResponse struct {
	Events []EventResponse `json:"events"`
	Count  int             `json:"count"`
}

// NewEventResponse maps an event for output
func NewEventResponse(e *models.TimetableEvent) EventResponse {
	return EventResponse{
		ID:         e.ID,
		Type:       string(e.Type),
		CourseID:   e.CourseID,
		SectionID:  e.SectionCode,
		SemesterID: e.SemesterID,
		StartAt:    e.StartAt,
		EndAt:      e.EndAt,
		RoomID:     e.RoomID,
		Status:     e.Status,
		Meta:       e.Meta,
	}
}

// NewEventListResponse maps events for output
func NewEventListResponse(events []models.TimetableEvent) EventListResponse {
	out := make([]EventResponse, 0, len(events))
	for i := range events {
		out = append(out, NewEventResponse(&events[i]))
	}
	return EventListResponse{Events: out, Count: len(out)}
}
