package dto

import (
	"github.com/campusshare/campusshare/internal/app/catalog"
	"github.com/campusshare/campusshare/internal/app/models"
)

// ResourceFilterRequest carries the optional, conjunctive catalog filters.
// Any change to a criterion or the page size restarts paging, so clients
// simply omit page to land on page 1.
type ResourceFilterRequest struct {
	Semester     *int   `form:"semester" binding:"omitempty,min=0,max=8"`
	Subject      string `form:"subject"`
	AcademicYear string `form:"academicYear"`
	Term         string `form:"term" binding:"omitempty,oneof=odd even"`
	Query        string `form:"q"`
	FileType     string `form:"fileType"`
	GroupBy      string `form:"groupBy" binding:"omitempty,oneof=subject semester"`
	Page         int    `form:"page" binding:"omitempty,min=1"`
	PageSize     int    `form:"pageSize" binding:"omitempty,min=1,max=100"`
}

// Criteria converts the request into catalog filter criteria.
func (r *ResourceFilterRequest) Criteria() catalog.Criteria {
	return catalog.Criteria{
		Semester:     r.Semester,
		Subject:      r.Subject,
		AcademicYear: r.AcademicYear,
		Term:         models.Term(r.Term),
		Query:        r.Query,
		FileType:     r.FileType,
	}
}

// CreateResourceRequest carries the multipart metadata fields of an upload.
// The file itself arrives as the "file" form part.
type CreateResourceRequest struct {
	Semester     int    `form:"semester" binding:"required,min=1,max=8"`
	Subject      string `form:"subject" binding:"required"`
	SubjectCode  string `form:"subjectCode"`
	AcademicYear string `form:"academicYear" binding:"required"`
	Term         string `form:"term" binding:"required,oneof=odd even"`
}

// ResourceListResponse is a flat, paginated catalog page
type ResourceListResponse struct {
	Resources      []models.Resource `json:"resources"`
	PaginationInfo PaginationInfo    `json:"pagination"`
}

// GroupedResourceListResponse is the grouped catalog view
type GroupedResourceListResponse struct {
	Groups     []catalog.Group `json:"groups"`
	TotalItems int             `json:"totalItems"`
}

// CatalogStatsResponse aggregates the admin dashboard numbers
type CatalogStatsResponse struct {
	TotalResources     int               `json:"totalResources"`
	TotalUsers         int64             `json:"totalUsers"`
	UploadsPerSemester map[int]int       `json:"uploadsPerSemester"`
	UploadsPerUploader []UploaderCount   `json:"uploadsPerUploader"`
	TopDownloads       []models.Resource `json:"topDownloads"`
}

// UploaderCount pairs an uploader with how many resources they own
type UploaderCount struct {
	Uploader string `json:"uploader"`
	Count    int    `json:"count"`
}
