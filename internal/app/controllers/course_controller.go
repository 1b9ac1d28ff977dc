package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/termsched/internal/app/models"
	"github.com/yigit/termsched/internal/app/models/dto"
	"github.com/yigit/termsched/internal/app/services"
	"github.com/yigit/termsched/internal/middleware"
)

// CourseController handles courses and their schedules
type CourseController struct {
	courseService services.CourseService
}

// NewCourseController creates a new CourseController
func NewCourseController(courseService services.CourseService) *CourseController {
	return &CourseController{
		courseService: courseService,
	}
}

// CreateCourse creates a course and generates its class events
// @Summary Create a course
// @Tags courses
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateCourseRequest true "Course information"
// @Success 201 {object} dto.APIResponse{data=dto.CourseCreatedResponse}
// @Failure 400 {object} dto.ErrorResponse "Invalid course data or schedule"
// @Failure 404 {object} dto.ErrorResponse "Semester not found"
// @Failure 409 {object} dto.ErrorResponse "Course code already exists"
// @Router /courses [post]
func (c *CourseController) CreateCourse(ctx *gin.Context) {
	actor, ok := actorOrAbort(ctx)
	if !ok {
		return
	}

	var req dto.CreateCourseRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	course, n, err := c.courseService.Create(ctx.Request.Context(), actor, req.ToModel(actor.UserID))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(dto.CourseCreatedResponse{
		Course:        dto.NewCourseResponse(course),
		EventsCreated: n,
	}))
}

// GetCourseByID retrieves a course with its sections
// @Summary Get course by ID
// @Tags courses
// @Produce json
// @Security BearerAuth
// @Param id path int true "Course ID"
// @Success 200 {object} dto.APIResponse{data=dto.CourseResponse}
// @Failure 404 {object} dto.ErrorResponse "Course not found"
// @Router /courses/{id} [get]
func (c *CourseController) GetCourseByID(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id", "Course")
	if !ok {
		return
	}

	course, err := c.courseService.GetByID(ctx.Request.Context(), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.NewCourseResponse(course)))
}

// ListCourses lists courses, optionally by semester or instructor
// @Summary List courses
// @Tags courses
// @Produce json
// @Security BearerAuth
// @Param semesterId query int false "Semester ID"
// @Param instructorId query int false "Owner or section instructor ID"
// @Success 200 {object} dto.APIResponse{data=[]dto.CourseResponse}
// @Router /courses [get]
func (c *CourseController) ListCourses(ctx *gin.Context) {
	semesterID, ok := optionalInt64Query(ctx, "semesterId")
	if !ok {
		return
	}
	instructorID, ok := optionalInt64Query(ctx, "instructorId")
	if !ok {
		return
	}

	courses, err := c.courseService.List(ctx.Request.Context(), models.CourseFilter{
		SemesterID:   semesterID,
		InstructorID: instructorID,
	})
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.NewCourseListResponse(courses)))
}

// ListAvailableCourses lists the courses the calling student has no pending or
// approved registration for
// @Summary Courses available to me
// @Tags courses
// @Produce json
// @Security BearerAuth
// @Param semesterId query int false "Semester ID"
// @Success 200 {object} dto.APIResponse{data=[]dto.CourseResponse}
// @Router /courses/available [get]
func (c *CourseController) ListAvailableCourses(ctx *gin.Context) {
	actor, ok := actorOrAbort(ctx)
	if !ok {
		return
	}
	semesterID, ok := optionalInt64Query(ctx, "semesterId")
	if !ok {
		return
	}

	courses, err := c.courseService.ListAvailable(ctx.Request.Context(), actor, semesterID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.NewCourseListResponse(courses)))
}

// UpdateCourse changes the name, credits or policies of a course
// @Summary Update course details
// @Tags courses
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Course ID"
// @Param request body dto.UpdateCourseRequest true "Fields to change"
// @Success 200 {object} dto.APIResponse{data=dto.CourseResponse}
// @Failure 403 {object} dto.ErrorResponse "Caller does not own the course"
// @Router /courses/{id} [patch]
func (c *CourseController) UpdateCourse(ctx *gin.Context) {
	actor, ok := actorOrAbort(ctx)
	if !ok {
		return
	}
	id, ok := parseIDParam(ctx, "id", "Course")
	if !ok {
		return
	}

	var req dto.UpdateCourseRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	course, err := c.courseService.Update(ctx.Request.Context(), actor, id, req.ToModel())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.NewCourseResponse(course)))
}

// DeleteCourse removes a course nobody is registered for
// @Summary Delete a course
// @Tags courses
// @Security BearerAuth
// @Param id path int true "Course ID"
// @Success 204
// @Failure 409 {object} dto.ErrorResponse "Course has pending or approved registrations"
// @Router /courses/{id} [delete]
func (c *CourseController) DeleteCourse(ctx *gin.Context) {
	actor, ok := actorOrAbort(ctx)
	if !ok {
		return
	}
	id, ok := parseIDParam(ctx, "id", "Course")
	if !ok {
		return
	}

	if err := c.courseService.Delete(ctx.Request.Context(), actor, id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.Status(http.StatusNoContent)
}

// UpdateSchedule edits the weekly schedule of a course and regenerates it
// @Summary Update course schedule
// @Tags courses
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Course ID"
// @Param request body dto.UpdateScheduleRequest true "New schedule"
// @Success 200 {object} dto.APIResponse{data=dto.CourseCreatedResponse}
// @Failure 400 {object} dto.ErrorResponse "Invalid schedule"
// @Failure 403 {object} dto.ErrorResponse "Caller does not own the course"
// @Router /courses/{id}/schedule [put]
func (c *CourseController) UpdateSchedule(ctx *gin.Context) {
	actor, ok := actorOrAbort(ctx)
	if !ok {
		return
	}
	id, ok := parseIDParam(ctx, "id", "Course")
	if !ok {
		return
	}

	var req dto.UpdateScheduleRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	course, n, err := c.courseService.UpdateSchedule(ctx.Request.Context(), actor, id, req.ToModel())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.CourseCreatedResponse{
		Course:        dto.NewCourseResponse(course),
		EventsCreated: n,
	}))
}

// RegenerateSchedule rebuilds the class events of a course
// @Summary Regenerate course timetable
// @Tags courses
// @Produce json
// @Security BearerAuth
// @Param id path int true "Course ID"
// @Success 200 {object} dto.APIResponse{data=dto.RegenerateResponse}
// @Failure 404 {object} dto.ErrorResponse "Course or semester not found"
// @Failure 503 {object} dto.ErrorResponse "Batch write failed, retry"
// @Router /courses/{id}/schedule/regenerate [post]
func (c *CourseController) RegenerateSchedule(ctx *gin.Context) {
	actor, ok := actorOrAbort(ctx)
	if !ok {
		return
	}
	id, ok := parseIDParam(ctx, "id", "Course")
	if !ok {
		return
	}

	n, err := c.courseService.Regenerate(ctx.Request.Context(), actor, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.RegenerateResponse{CourseID: id, EventsCreated: n}))
}
