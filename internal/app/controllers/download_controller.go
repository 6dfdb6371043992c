package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/campusshare/campusshare/internal/app/models/dto"
	"github.com/campusshare/campusshare/internal/app/services"
	"github.com/campusshare/campusshare/internal/middleware"
)

// DownloadController handles the download ledger endpoints
type DownloadController struct {
	downloadService *services.DownloadService
}

// NewDownloadController creates a new DownloadController
func NewDownloadController(downloadService *services.DownloadService) *DownloadController {
	return &DownloadController{downloadService: downloadService}
}

// Record appends a ledger entry for a download the client performed
// @Summary Record a download
// @Description Appends one immutable ledger entry and bumps the resource's download counter
// @Tags downloads
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.RecordDownloadRequest true "Downloaded resource"
// @Success 201 {object} dto.APIResponse{data=dto.SuccessResponse}
// @Failure 404 {object} dto.APIResponse "Resource not found"
// @Router /downloads [post]
func (c *DownloadController) Record(ctx *gin.Context) {
	var req dto.RecordDownloadRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		detail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid request").WithDetails(err.Error())
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(detail))
		return
	}

	uid := ctx.GetString(middleware.ContextUID)
	if err := c.downloadService.Record(ctx.Request.Context(), uid, req.ResourceID); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(dto.SuccessResponse{Message: "Download recorded"}))
}

// History returns the caller's download ledger
// @Summary Download history
// @Tags downloads
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=dto.DownloadListResponse}
// @Router /downloads [get]
func (c *DownloadController) History(ctx *gin.Context) {
	uid := ctx.GetString(middleware.ContextUID)

	history, err := c.downloadService.History(ctx.Request.Context(), uid)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(history))
}
