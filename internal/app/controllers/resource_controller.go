package controllers

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/campusshare/campusshare/internal/app/auth"
	"github.com/campusshare/campusshare/internal/app/models/dto"
	"github.com/campusshare/campusshare/internal/app/services"
	"github.com/campusshare/campusshare/internal/middleware"
	"github.com/campusshare/campusshare/internal/pkg/logger"
)

// ResourceController handles the resource catalog endpoints
type ResourceController struct {
	resourceService *services.ResourceService
	feedService     *services.FeedService
	authzService    *auth.AuthorizationService
}

// NewResourceController creates a new ResourceController
func NewResourceController(resourceService *services.ResourceService, feedService *services.FeedService, authzService *auth.AuthorizationService) *ResourceController {
	return &ResourceController{
		resourceService: resourceService,
		feedService:     feedService,
		authzService:    authzService,
	}
}

func (c *ResourceController) actor(ctx *gin.Context) auth.Actor {
	return c.authzService.ResolveActor(
		ctx.Request.Context(),
		ctx.GetString(middleware.ContextUID),
		ctx.GetString(middleware.ContextUsername),
	)
}

// List returns the filtered catalog
// @Summary List resources
// @Description Lists catalog records newest first, with optional conjunctive filters, grouping and pagination
// @Tags resources
// @Produce json
// @Param semester query int false "Semester (0 selects records with unknown semester)"
// @Param subject query string false "Subject substring"
// @Param academicYear query string false "Academic year substring"
// @Param term query string false "Term (odd or even)"
// @Param q query string false "Free-text search over file name and subject"
// @Param fileType query string false "File type token, e.g. pdf or image"
// @Param groupBy query string false "Group by subject or semester"
// @Param page query int false "Page number, 1-based"
// @Param pageSize query int false "Page size"
// @Success 200 {object} dto.APIResponse{data=dto.ResourceListResponse}
// @Router /resources [get]
func (c *ResourceController) List(ctx *gin.Context) {
	var req dto.ResourceFilterRequest
	if err := ctx.ShouldBindQuery(&req); err != nil {
		detail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid filter parameters").WithDetails(err.Error())
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(detail))
		return
	}

	flat, grouped, err := c.resourceService.List(ctx.Request.Context(), req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	if grouped != nil {
		ctx.JSON(http.StatusOK, dto.NewSuccessResponse(grouped))
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(flat))
}

// Get returns one resource
// @Summary Get a resource
// @Tags resources
// @Produce json
// @Param id path string true "Resource ID"
// @Success 200 {object} dto.APIResponse{data=models.Resource}
// @Failure 404 {object} dto.APIResponse "Resource not found"
// @Router /resources/{id} [get]
func (c *ResourceController) Get(ctx *gin.Context) {
	resource, err := c.resourceService.Get(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(resource))
}

// MyUploads returns the caller's own records, newest first
// @Summary List own uploads
// @Tags resources
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=[]models.Resource}
// @Router /resources/mine [get]
func (c *ResourceController) MyUploads(ctx *gin.Context) {
	uid := ctx.GetString(middleware.ContextUID)

	resources, err := c.resourceService.ListByOwner(ctx.Request.Context(), uid)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(resources))
}

// Upload stores a new resource
// @Summary Upload a resource
// @Description Validates the metadata and file type, stores the binary on the media host, then writes the catalog record
// @Tags resources
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param file formData file true "The file to upload"
// @Param semester formData int true "Semester 1..8"
// @Param subject formData string true "Subject name"
// @Param subjectCode formData string false "Subject code"
// @Param academicYear formData string true "Academic year"
// @Param term formData string true "Term (odd or even)"
// @Success 201 {object} dto.APIResponse{data=models.Resource}
// @Failure 400 {object} dto.APIResponse "Missing file or rejected file type"
// @Failure 403 {object} dto.APIResponse "Caller may not upload"
// @Router /resources [post]
func (c *ResourceController) Upload(ctx *gin.Context) {
	var req dto.CreateResourceRequest
	if err := ctx.ShouldBind(&req); err != nil {
		detail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid upload metadata").WithDetails(err.Error())
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(detail))
		return
	}

	fileHeader, err := ctx.FormFile("file")
	if err != nil {
		detail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "File is required")
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(detail))
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		logger.Error().Err(err).Str("fileName", fileHeader.Filename).Msg("Failed to open uploaded file")
		detail := dto.NewErrorDetail(dto.ErrorCodeInternalServer, "Failed to read uploaded file")
		ctx.JSON(http.StatusInternalServerError, dto.NewErrorResponse(detail))
		return
	}
	defer file.Close()

	resource, err := c.resourceService.Upload(
		ctx.Request.Context(),
		c.actor(ctx),
		req,
		fileHeader.Filename,
		fileHeader.Header.Get("Content-Type"),
		file,
		fileHeader.Size,
	)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(resource))
}

// Delete removes a resource
// @Summary Delete a resource
// @Description Removes the catalog record after a best-effort binary delete. Teachers may only delete their own uploads.
// @Tags resources
// @Produce json
// @Security BearerAuth
// @Param id path string true "Resource ID"
// @Success 200 {object} dto.APIResponse{data=dto.SuccessResponse}
// @Failure 403 {object} dto.APIResponse "Permission denied"
// @Failure 404 {object} dto.APIResponse "Resource not found"
// @Router /resources/{id} [delete]
func (c *ResourceController) Delete(ctx *gin.Context) {
	err := c.resourceService.Delete(ctx.Request.Context(), c.actor(ctx), ctx.Param("id"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.SuccessResponse{Message: "Resource deleted"}))
}

// Feed streams live catalog changes as server-sent events
// @Summary Live catalog feed
// @Description Streams created/updated/deleted catalog events over SSE
// @Tags resources
// @Produce text/event-stream
// @Security BearerAuth
// @Router /resources/feed [get]
func (c *ResourceController) Feed(ctx *gin.Context) {
	events := make(chan services.CatalogEvent, 16)
	streamCtx := ctx.Request.Context()

	go func() {
		if err := c.feedService.Stream(streamCtx, events); err != nil && streamCtx.Err() == nil {
			logger.Warn().Err(err).Msg("Catalog feed stream ended with error")
		}
		close(events)
	}()

	ctx.Header("Content-Type", "text/event-stream")
	ctx.Header("Cache-Control", "no-cache")
	ctx.Header("Connection", "keep-alive")

	ctx.Stream(func(w io.Writer) bool {
		event, ok := <-events
		if !ok {
			return false
		}
		ctx.SSEvent(event.Type, event)
		return true
	})
}
