package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/termsched/internal/app/models/dto"
	"github.com/yigit/termsched/internal/app/services"
	"github.com/yigit/termsched/internal/middleware"
)

// SemesterController handles semester operations
type SemesterController struct {
	semesterService services.SemesterService
}

// NewSemesterController creates a new SemesterController
func NewSemesterController(semesterService services.SemesterService) *SemesterController {
	return &SemesterController{
		semesterService: semesterService,
	}
}

// CreateSemester creates a semester
// @Summary Create a semester
// @Tags semesters
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateSemesterRequest true "Semester information"
// @Success 201 {object} dto.APIResponse{data=dto.SemesterResponse}
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 403 {object} dto.ErrorResponse "Admins only"
// @Failure 409 {object} dto.ErrorResponse "Semester already exists"
// @Router /semesters [post]
func (c *SemesterController) CreateSemester(ctx *gin.Context) {
	actor, ok := actorOrAbort(ctx)
	if !ok {
		return
	}

	var req dto.CreateSemesterRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}
	semester, err := req.ToModel()
	if err != nil {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid semester dates").WithDetails(err.Error())
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return
	}

	created, err := c.semesterService.Create(ctx.Request.Context(), actor, semester)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(dto.NewSemesterResponse(created)))
}

// GetSemesterByID retrieves a semester
// @Summary Get semester by ID
// @Tags semesters
// @Produce json
// @Security BearerAuth
// @Param id path int true "Semester ID"
// @Success 200 {object} dto.APIResponse{data=dto.SemesterResponse}
// @Failure 404 {object} dto.ErrorResponse "Semester not found"
// @Router /semesters/{id} [get]
func (c *SemesterController) GetSemesterByID(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id", "Semester")
	if !ok {
		return
	}

	semester, err := c.semesterService.GetByID(ctx.Request.Context(), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.NewSemesterResponse(semester)))
}

// ListSemesters lists all semesters
// @Summary List semesters
// @Tags semesters
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=[]dto.SemesterResponse}
// @Router /semesters [get]
func (c *SemesterController) ListSemesters(ctx *gin.Context) {
	semesters, err := c.semesterService.List(ctx.Request.Context())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.NewSemesterListResponse(semesters)))
}

// UpdateSemester replaces a semester and regenerates the timetables of its courses
// @Summary Update a semester
// @Tags semesters
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Semester ID"
// @Param request body dto.CreateSemesterRequest true "Semester information"
// @Success 200 {object} dto.APIResponse{data=dto.SemesterUpdatedResponse}
// @Failure 404 {object} dto.ErrorResponse "Semester not found"
// @Failure 409 {object} dto.ErrorResponse "Semester name taken"
// @Router /semesters/{id} [put]
func (c *SemesterController) UpdateSemester(ctx *gin.Context) {
	actor, ok := actorOrAbort(ctx)
	if !ok {
		return
	}
	id, ok := parseIDParam(ctx, "id", "Semester")
	if !ok {
		return
	}

	var req dto.CreateSemesterRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}
	semester, err := req.ToModel()
	if err != nil {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid semester dates").WithDetails(err.Error())
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return
	}
	semester.ID = id

	updated, n, err := c.semesterService.Update(ctx.Request.Context(), actor, semester)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.SemesterUpdatedResponse{
		Semester:      dto.NewSemesterResponse(updated),
		EventsCreated: n,
	}))
}

// DeleteSemester removes a semester without courses
// @Summary Delete a semester
// @Tags semesters
// @Security BearerAuth
// @Param id path int true "Semester ID"
// @Success 204
// @Failure 409 {object} dto.ErrorResponse "Semester still has courses"
// @Router /semesters/{id} [delete]
func (c *SemesterController) DeleteSemester(ctx *gin.Context) {
	actor, ok := actorOrAbort(ctx)
	if !ok {
		return
	}
	id, ok := parseIDParam(ctx, "id", "Semester")
	if !ok {
		return
	}

	if err := c.semesterService.Delete(ctx.Request.Context(), actor, id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.Status(http.StatusNoContent)
}
