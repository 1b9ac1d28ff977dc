package dto

import (
	"time"

	"github.com/yigit/termsched/internal/app/calendar"
	"github.com/yigit/termsched/internal/app/models"
)

// SectionRequest describes one section of a new course
type SectionRequest struct {
	SectionID    string                `json:"sectionId" binding:"required,max=16"`
	InstructorID *int64                `json:"instructorId,omitempty" binding:"omitempty,gt=0"`
	Capacity     int                   `json:"capacity" binding:"required,gt=0"`
	Schedule     []calendar.WeeklySlot `json:"schedule,omitempty"`
}

// PoliciesRequest holds optional course policies
type PoliciesRequest struct {
	AddDropDeadline  *time.Time `json:"addDropDeadline,omitempty"`
	AttendanceWeight *float64   `json:"attendanceWeight,omitempty" binding:"omitempty,gte=0,lte=1"`
}

// CreateCourseRequest represents course creation data
type CreateCourseRequest struct {
	Code              string                `json:"code" binding:"required,max=20" example:"CSE101"`
	Name              string                `json:"name" binding:"required,max=200" example:"Introduction to Programming"`
	Credits           int                   `json:"credits" binding:"gte=0,lte=30"`
	SemesterID        int64                 `json:"semesterId" binding:"required,gt=0"`
	OwnerInstructorID *int64                `json:"ownerInstructorId,omitempty" binding:"omitempty,gt=0"`
	ScheduleTemplate  []calendar.WeeklySlot `json:"scheduleTemplate"`
	Sections          []SectionRequest      `json:"sections" binding:"required,min=1,dive"`
	Policies          PoliciesRequest       `json:"policies"`
}

// ToModel converts the request into a course owned by ownerID unless the
// request names an owner explicitly
func (r CreateCourseRequest) ToModel(ownerID int64) *models.Course {
	if r.OwnerInstructorID != nil {
		ownerID = *r.OwnerInstructorID
	}
	course := &models.Course{
		Code:              r.Code,
		Name:              r.Name,
		Credits:           r.Credits,
		OwnerInstructorID: ownerID,
		SemesterID:        r.SemesterID,
		ScheduleTemplate:  r.ScheduleTemplate,
		Policies: models.Policies{
			AddDropDeadline:  r.Policies.AddDropDeadline,
			AttendanceWeight: r.Policies.AttendanceWeight,
		},
	}
	for _, s := range r.Sections {
		course.Sections = append(course.Sections, models.Section{
			Code:         s.SectionID,
			InstructorID: s.InstructorID,
			Capacity:     s.Capacity,
			Schedule:     s.Schedule,
		})
	}
	return course
}

// UpdateScheduleRequest edits a course template and section overrides.
// An absent template or section keeps its current schedule; an empty list
// clears it.
type UpdateScheduleRequest struct {
	ScheduleTemplate *[]calendar.WeeklySlot           `json:"scheduleTemplate,omitempty"`
	Sections         map[string][]calendar.WeeklySlot `json:"sections,omitempty"`
}

// ToModel converts the request into a schedule update
func (r UpdateScheduleRequest) ToModel() models.ScheduleUpdate {
	return models.ScheduleUpdate{Template: r.ScheduleTemplate, Sections: r.Sections}
}

// UpdateCourseRequest changes descriptive course fields; absent fields are kept
type UpdateCourseRequest struct {
	Name     *string          `json:"name,omitempty" binding:"omitempty,max=200"`
	Credits  *int             `json:"credits,omitempty" binding:"omitempty,gte=0,lte=30"`
	Policies *PoliciesRequest `json:"policies,omitempty"`
}

// ToModel converts the request into a course update
func (r UpdateCourseRequest) ToModel() models.CourseUpdate {
	update := models.CourseUpdate{Name: r.Name, Credits: r.Credits}
	if r.Policies != nil {
		update.Policies = &models.Policies{
			AddDropDeadline:  r.Policies.AddDropDeadline,
			AttendanceWeight: r.Policies.AttendanceWeight,
		}
	}
	return update
}

// SectionResponse represents one section with its seat counters
type SectionResponse struct {
	SectionID    string                `json:"sectionId"`
	InstructorID *int64                `json:"instructorId,omitempty"`
	Capacity     int                   `json:"capacity"`
	Occupied     int                   `json:"occupied"`
	Available    int                   `json:"available"`
	Schedule     []calendar.WeeklySlot `json:"schedule,omitempty"`
}

// CourseResponse represents course information
type CourseResponse struct {
	ID                int64                 `json:"id"`
	Code              string                `json:"code"`
	Name              string                `json:"name"`
	Credits           int                   `json:"credits"`
	OwnerInstructorID int64                 `json:"ownerInstructorId"`
	SemesterID        int64                 `json:"semesterId"`
	ScheduleTemplate  []calendar.WeeklySlot `json:"scheduleTemplate"`
	Sections          []SectionResponse     `json:"sections"`
	Policies          models.Policies       `json:"policies"`
}

// CourseCreatedResponse is returned after course creation
type CourseCreatedResponse struct {
	Course        CourseResponse `json:"course"`
	EventsCreated int            `json:"eventsCreated"`
}

// RegenerateResponse is returned after a schedule regeneration
type RegenerateResponse struct {
	CourseID      int64 `json:"courseId"`
	EventsCreated int   `json:"eventsCreated"`
}

// NewCourseResponse maps a course for output
func NewCourseResponse(c *models.Course) CourseResponse {
	resp := CourseResponse{
		ID:                c.ID,
		Code:              c.Code,
		Name:              c.Name,
		Credits:           c.Credits,
		OwnerInstructorID: c.OwnerInstructorID,
		SemesterID:        c.SemesterID,
		ScheduleTemplate:  c.ScheduleTemplate,
		Sections:          make([]SectionResponse, 0, len(c.Sections)),
		Policies:          c.Policies,
	}
	if resp.ScheduleTemplate == nil {
		resp.ScheduleTemplate = []calendar.WeeklySlot{}
	}
	for _, s := range c.Sections {
		resp.Sections = append(resp.Sections, SectionResponse{
			SectionID:    s.Code,
			InstructorID: s.InstructorID,
			Capacity:     s.Capacity,
			Occupied:     s.Occupied,
			Available:    s.Available(),
			Schedule:     s.Schedule,
		})
	}
	return resp
}

// NewCourseListResponse maps courses for output
func NewCourseListResponse(courses []models.Course) []CourseResponse {
	out := make([]CourseResponse, 0, len(courses))
	for i := range courses {
		out = append(out, NewCourseResponse(&courses[i]))
	}
	return out
}
