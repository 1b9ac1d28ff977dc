package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/termsched/internal/app/models"
	"github.com/yigit/termsched/internal/app/models/dto"
	"github.com/yigit/termsched/internal/app/services"
	"github.com/yigit/termsched/internal/middleware"
)

// TimetableController serves timetable events
type TimetableController struct {
	timetableService services.TimetableService
}

// NewTimetableController creates a new TimetableController
func NewTimetableController(timetableService services.TimetableService) *TimetableController {
	return &TimetableController{
		timetableService: timetableService,
	}
}

// ListEvents lists events matching the query filter
// @Summary List timetable events
// @Tags timetable
// @Produce json
// @Security BearerAuth
// @Param courseId query int false "Course ID"
// @Param sectionId query string false "Section ID"
// @Param semesterId query int false "Semester ID"
// @Param from query string false "RFC3339 lower bound"
// @Param to query string false "RFC3339 upper bound"
// @Param type query string false "class, exam, makeup or deadline"
// @Success 200 {object} dto.APIResponse{data=dto.EventListResponse}
// @Router /events [get]
func (c *TimetableController) ListEvents(ctx *gin.Context) {
	var query dto.EventFilterQuery
	if !middleware.BindQuery(ctx, &query) {
		return
	}

	events, err := c.timetableService.ListEvents(ctx.Request.Context(), query.ToFilter())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.NewEventListResponse(events)))
}

// MyTimetable returns the caller's own timetable
// @Summary My timetable
// @Description Students see the sections they are approved in; instructors see what they teach.
// @Tags timetable
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=dto.EventListResponse}
// @Router /timetable/me [get]
func (c *TimetableController) MyTimetable(ctx *gin.Context) {
	actor, ok := actorOrAbort(ctx)
	if !ok {
		return
	}
	var query dto.EventFilterQuery
	if !middleware.BindQuery(ctx, &query) {
		return
	}

	var (
		events []models.TimetableEvent
		err    error
	)
	if actor.Role == models.RoleStudent {
		events, err = c.timetableService.StudentTimetable(ctx.Request.Context(), actor, query.ToFilter())
	} else {
		events, err = c.timetableService.InstructorTimetable(ctx.Request.Context(), actor, query.ToFilter())
	}
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.NewEventListResponse(events)))
}

// CreateEvent records an exam, makeup session or deadline
// @Summary Create an ad-hoc event
// @Tags timetable
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateEventRequest true "Event"
// @Success 201 {object} dto.APIResponse{data=dto.EventResponse}
// @Failure 403 {object} dto.ErrorResponse "Caller does not own the course"
// @Router /events [post]
func (c *TimetableController) CreateEvent(ctx *gin.Context) {
	actor, ok := actorOrAbort(ctx)
	if !ok {
		return
	}

	var req dto.CreateEventRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	event, err := c.timetableService.CreateEvent(ctx.Request.Context(), actor, req.ToModel())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(dto.NewEventResponse(event)))
}
