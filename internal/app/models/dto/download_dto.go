package dto

import "github.com/campusshare/campusshare/internal/app/models"

// RecordDownloadRequest identifies the resource being downloaded
type RecordDownloadRequest struct {
	ResourceID string `json:"resourceId" binding:"required"`
}

// DownloadListResponse lists a user's download ledger, most recent first
type DownloadListResponse struct {
	Downloads []models.DownloadEvent `json:"downloads"`
	Total     int                    `json:"total"`
}
