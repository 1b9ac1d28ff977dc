package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/termsched/internal/app/models"
	"github.com/yigit/termsched/internal/app/models/dto"
	"github.com/yigit/termsched/internal/app/services"
	"github.com/yigit/termsched/internal/middleware"
	"github.com/yigit/termsched/internal/pkg/helpers"
)

// RegistrationController handles enrollment requests and decisions
type RegistrationController struct {
	registrationService services.RegistrationService
}

// NewRegistrationController creates a new RegistrationController
func NewRegistrationController(registrationService services.RegistrationService) *RegistrationController {
	return &RegistrationController{
		registrationService: registrationService,
	}
}

// CreateRegistration submits a student's request to join a section
// @Summary Request a section seat
// @Tags registrations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateRegistrationRequest true "Course and section"
// @Success 201 {object} dto.APIResponse{data=dto.CreateRegistrationResponse}
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 403 {object} dto.ErrorResponse "Caller is not a student"
// @Failure 404 {object} dto.ErrorResponse "Course or section not found"
// @Failure 409 {object} dto.ErrorResponse "Already enrolled or pending"
// @Router /registrations [post]
func (c *RegistrationController) CreateRegistration(ctx *gin.Context) {
	actor, ok := actorOrAbort(ctx)
	if !ok {
		return
	}

	var req dto.CreateRegistrationRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	reg, err := c.registrationService.Submit(ctx.Request.Context(), actor, req.CourseID, req.SectionID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(dto.CreateRegistrationResponse{
		RegistrationID: reg.ID,
		Status:         string(reg.Status),
	}))
}

// DecideRegistration approves or rejects a pending registration
// @Summary Decide a pending registration
// @Tags registrations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Registration ID"
// @Param request body dto.DecisionRequest true "Decision"
// @Success 200 {object} dto.APIResponse{data=dto.DecisionResponse}
// @Failure 403 {object} dto.ErrorResponse "Caller may not decide this registration"
// @Failure 404 {object} dto.ErrorResponse "Registration not found"
// @Failure 409 {object} dto.ErrorResponse "Section full or registration no longer pending"
// @Router /registrations/{id}/decision [post]
func (c *RegistrationController) DecideRegistration(ctx *gin.Context) {
	actor, ok := actorOrAbort(ctx)
	if !ok {
		return
	}
	id, ok := parseUUIDParam(ctx, "id", "Registration")
	if !ok {
		return
	}

	var req dto.DecisionRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	reg, err := c.registrationService.Decide(ctx.Request.Context(), actor, id, models.Decision(req.Decision), req.Reason)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.DecisionResponse{
		RegistrationID: reg.ID,
		Status:         string(reg.Status),
	}))
}

// ListPending lists requests awaiting the calling instructor
// @Summary Pending registrations of my courses
// @Tags registrations
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number (1-based)"
// @Param size query int false "Page size"
// @Success 200 {object} dto.APIResponse{data=dto.RegistrationListResponse}
// @Router /registrations/pending [get]
func (c *RegistrationController) ListPending(ctx *gin.Context) {
	actor, ok := actorOrAbort(ctx)
	if !ok {
		return
	}

	regs, err := c.registrationService.ListPendingForInstructor(ctx.Request.Context(), actor)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	page, size, paginated := helpers.ParsePaginationParams(ctx)
	if !paginated {
		ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.NewRegistrationListResponse(regs)))
		return
	}
	regs, info := helpers.Paginate(regs, page, size)
	resp := dto.NewRegistrationListResponse(regs)
	resp.Pagination = &info
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(resp))
}

// ListMine lists the calling student's registrations
// @Summary My registrations
// @Tags registrations
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=dto.RegistrationListResponse}
// @Router /registrations/mine [get]
func (c *RegistrationController) ListMine(ctx *gin.Context) {
	actor, ok := actorOrAbort(ctx)
	if !ok {
		return
	}

	regs, err := c.registrationService.ListForStudent(ctx.Request.Context(), actor)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.NewRegistrationListResponse(regs)))
}

// ListRoster lists the approved registrations of a section
// @Summary Section roster
// @Tags registrations
// @Produce json
// @Security BearerAuth
// @Param id path int true "Course ID"
// @Param section path string true "Section ID"
// @Success 200 {object} dto.APIResponse{data=dto.RegistrationListResponse}
// @Failure 403 {object} dto.ErrorResponse "Caller does not teach the section"
// @Failure 404 {object} dto.ErrorResponse "Course or section not found"
// @Router /courses/{id}/sections/{section}/roster [get]
func (c *RegistrationController) ListRoster(ctx *gin.Context) {
	actor, ok := actorOrAbort(ctx)
	if !ok {
		return
	}
	courseID, ok := parseIDParam(ctx, "id", "Course")
	if !ok {
		return
	}

	regs, err := c.registrationService.ListRoster(ctx.Request.Context(), actor, courseID, ctx.Param("section"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.NewRegistrationListResponse(regs)))
}
