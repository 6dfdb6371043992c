package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/campusshare/campusshare/internal/app/models/dto"
	"github.com/campusshare/campusshare/internal/app/services"
	"github.com/campusshare/campusshare/internal/middleware"
)

// AdminController handles the admin panel endpoints
type AdminController struct {
	userService     *services.UserService
	resourceService *services.ResourceService
}

// NewAdminController creates a new AdminController
func NewAdminController(userService *services.UserService, resourceService *services.ResourceService) *AdminController {
	return &AdminController{
		userService:     userService,
		resourceService: resourceService,
	}
}

// ListUsers returns every account profile
// @Summary List accounts
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=dto.UserListResponse}
// @Router /admin/users [get]
func (c *AdminController) ListUsers(ctx *gin.Context) {
	users, err := c.userService.ListUsers(ctx.Request.Context())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(users))
}

// SetBlocked blocks or unblocks an account
// @Summary Block or unblock an account
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "User ID"
// @Param request body dto.SetBlockedRequest true "Blocked flag"
// @Success 200 {object} dto.APIResponse{data=dto.SuccessResponse}
// @Failure 404 {object} dto.APIResponse "User not found"
// @Router /admin/users/{id}/blocked [put]
func (c *AdminController) SetBlocked(ctx *gin.Context) {
	var req dto.SetBlockedRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		detail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid request").WithDetails(err.Error())
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(detail))
		return
	}

	if err := c.userService.SetBlocked(ctx.Request.Context(), ctx.Param("id"), req.Blocked); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.SuccessResponse{Message: "Account updated"}))
}

// DeleteUser removes an account and everything it owns
// @Summary Delete an account
// @Description Removes the profile, then every owned resource with its hosted binary. Binary deletes are best effort.
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param id path string true "User ID"
// @Success 200 {object} dto.APIResponse{data=dto.SuccessResponse}
// @Failure 404 {object} dto.APIResponse "User not found"
// @Router /admin/users/{id} [delete]
func (c *AdminController) DeleteUser(ctx *gin.Context) {
	actorUID := ctx.GetString(middleware.ContextUID)

	if err := c.userService.DeleteUser(ctx.Request.Context(), actorUID, ctx.Param("id")); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.SuccessResponse{Message: "Account deleted"}))
}

// Stats returns the admin dashboard aggregates
// @Summary Catalog statistics
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=dto.CatalogStatsResponse}
// @Router /admin/stats [get]
func (c *AdminController) Stats(ctx *gin.Context) {
	stats, err := c.resourceService.Stats(ctx.Request.Context())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(stats))
}
