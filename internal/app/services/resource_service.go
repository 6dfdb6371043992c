package services

import (
	"context"
	"io"
	"sort"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/campusshare/campusshare/internal/app/auth"
	"github.com/campusshare/campusshare/internal/app/catalog"
	"github.com/campusshare/campusshare/internal/app/models"
	"github.com/campusshare/campusshare/internal/app/models/dto"
	"github.com/campusshare/campusshare/internal/pkg/apperrors"
	"github.com/campusshare/campusshare/internal/pkg/binstore"
	"github.com/campusshare/campusshare/internal/pkg/helpers"
	"github.com/campusshare/campusshare/internal/pkg/logger"
)

// allowedFileTypes is the closed set of MIME types accepted for upload.
var allowedFileTypes = map[string]struct{}{
	"application/pdf":               {},
	"application/vnd.ms-powerpoint": {},
	"application/vnd.openxmlformats-officedocument.presentationml.presentation": {},
	"application/msword": {},
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": {},
	"image/png":  {},
	"image/jpeg": {},
	"image/gif":  {},
}

// FileTypeAllowed reports whether a MIME type may be uploaded.
func FileTypeAllowed(contentType string) bool {
	_, ok := allowedFileTypes[contentType]
	return ok
}

// resourceStore is the catalog persistence surface the resource service needs.
type resourceStore interface {
	Insert(ctx context.Context, resource *models.Resource) (string, error)
	GetRaw(ctx context.Context, id string) (bson.M, error)
	ListRaw(ctx context.Context) ([]bson.M, error)
	ListRawByOwner(ctx context.Context, uid string) ([]bson.M, error)
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int64, error)
}

// userCounter reports how many accounts exist, for the stats view.
type userCounter interface {
	Count(ctx context.Context) (int64, error)
}

// ResourceService implements the catalog operations: upload, listing with
// filters and grouping, deletion and the admin stats view.
//
// The upload workflow is strictly linear: validate, store the binary, then
// write the catalog record. There are no retries and no automatic cleanup; a
// binary whose metadata write failed is an orphan the catalog never sees.
type ResourceService struct {
	resources resourceStore
	users     userCounter
	binaries  binstore.Store
	authz     *auth.AuthorizationService
}

// NewResourceService creates a new ResourceService
func NewResourceService(resources resourceStore, users userCounter, binaries binstore.Store, authz *auth.AuthorizationService) *ResourceService {
	return &ResourceService{
		resources: resources,
		users:     users,
		binaries:  binaries,
		authz:     authz,
	}
}

// Upload validates the request, stores the binary and writes the catalog
// record. No binary bytes are sent before every validation passes.
func (s *ResourceService) Upload(ctx context.Context, actor auth.Actor, req dto.CreateResourceRequest, fileName, contentType string, file io.Reader, size int64) (*models.Resource, error) {
	if err := s.authz.ValidateCanUpload(actor); err != nil {
		return nil, err
	}

	if fileName == "" || file == nil || size <= 0 {
		return nil, apperrors.ErrFileMissing
	}

	if !FileTypeAllowed(contentType) {
		return nil, apperrors.ErrFileTypeNotAllowed
	}

	if !models.ValidTerm(models.Term(req.Term)) {
		return nil, apperrors.NewValidationError("term must be odd or even")
	}

	result, err := s.binaries.Upload(ctx, fileName, contentType, file, size)
	if err != nil {
		logger.Error().Err(err).Str("fileName", fileName).Msg("Binary upload failed")
		return nil, apperrors.ErrUploadFailed
	}

	resource := &models.Resource{
		FileName:     fileName,
		FileURL:      result.URL,
		FileType:     contentType,
		UploadedBy:   actor.UID,
		UploaderName: actor.Username,
		Role:         actor.Role,
		Semester:     req.Semester,
		Subject:      req.Subject,
		SubjectCode:  req.SubjectCode,
		AcademicYear: req.AcademicYear,
		Term:         models.Term(req.Term),
		DeleteToken:  result.DeleteToken,
		UploadedAt:   time.Now().UTC(),
	}

	if _, err := s.resources.Insert(ctx, resource); err != nil {
		// The stored binary is now an orphan; it stays invisible to the
		// catalog and is left for out-of-band cleanup.
		logger.Error().Err(err).
			Str("fileName", fileName).
			Str("fileUrl", result.URL).
			Msg("Metadata write failed after binary upload, binary orphaned")
		return nil, apperrors.ErrMetadataWriteFailed
	}

	logger.Info().
		Str("id", resource.ID).
		Str("uid", actor.UID).
		Str("fileName", fileName).
		Msg("Resource uploaded")

	return resource, nil
}

// Get returns one normalized catalog record
func (s *ResourceService) Get(ctx context.Context, id string) (*models.Resource, error) {
	doc, err := s.resources.GetRaw(ctx, id)
	if err != nil {
		return nil, err
	}
	resource := catalog.Normalize(documentIDString(doc, id), doc)
	return &resource, nil
}

// List returns the filtered catalog, either as a flat page or grouped.
func (s *ResourceService) List(ctx context.Context, req dto.ResourceFilterRequest) (*dto.ResourceListResponse, *dto.GroupedResourceListResponse, error) {
	docs, err := s.resources.ListRaw(ctx)
	if err != nil {
		return nil, nil, err
	}

	matched := catalog.Filter(catalog.NormalizeAll(docs), req.Criteria())

	switch req.GroupBy {
	case "subject":
		return nil, groupedResponse(matched, catalog.SubjectKey), nil
	case "semester":
		return nil, groupedResponse(matched, catalog.SemesterKey), nil
	}

	page, size := helpers.NormalizePage(req.Page, req.PageSize)
	return &dto.ResourceListResponse{
		Resources:      catalog.Paginate(matched, page, size),
		PaginationInfo: helpers.NewPaginationInfo(int64(len(matched)), page, size),
	}, nil, nil
}

func groupedResponse(resources []models.Resource, keyFn func(*models.Resource) string) *dto.GroupedResourceListResponse {
	return &dto.GroupedResourceListResponse{
		Groups:     catalog.GroupBy(resources, keyFn),
		TotalItems: len(resources),
	}
}

// ListByOwner returns the normalized records owned by one uploader,
// newest first.
func (s *ResourceService) ListByOwner(ctx context.Context, uid string) ([]models.Resource, error) {
	docs, err := s.resources.ListRawByOwner(ctx, uid)
	if err != nil {
		return nil, err
	}
	resources := catalog.NormalizeAll(docs)
	catalog.SortNewestFirst(resources)
	return resources, nil
}

// Delete removes one record. The binary delete is best effort: a missing or
// expired token never blocks removal of the catalog record, so a failed
// binary delete can leave an orphan on the host.
func (s *ResourceService) Delete(ctx context.Context, actor auth.Actor, id string) error {
	resource, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	if err := s.authz.ValidateCanMutate(actor, resource); err != nil {
		return err
	}

	s.deleteBinary(ctx, resource)

	if err := s.resources.Delete(ctx, id); err != nil {
		return err
	}

	logger.Info().Str("id", id).Str("uid", actor.UID).Msg("Resource deleted")
	return nil
}

// DeleteAllByOwner removes every record owned by a user. Binary deletes run
// in parallel and all failures are swallowed; metadata deletes proceed
// regardless. Returns how many catalog records were removed.
func (s *ResourceService) DeleteAllByOwner(ctx context.Context, uid string) (int, error) {
	resources, err := s.ListByOwner(ctx, uid)
	if err != nil {
		return 0, err
	}

	var wg sync.WaitGroup
	for i := range resources {
		wg.Add(1)
		go func(r *models.Resource) {
			defer wg.Done()
			s.deleteBinary(ctx, r)
		}(&resources[i])
	}
	wg.Wait()

	deleted := 0
	for i := range resources {
		if err := s.resources.Delete(ctx, resources[i].ID); err != nil {
			logger.Warn().Err(err).Str("id", resources[i].ID).Msg("Failed to delete catalog record during cascade")
			continue
		}
		deleted++
	}

	logger.Info().Str("uid", uid).Int("deleted", deleted).Msg("Cascade deletion of owned resources complete")
	return deleted, nil
}

// deleteBinary attempts the best-effort binary removal. Records without a
// delete token predate token capture and are skipped.
func (s *ResourceService) deleteBinary(ctx context.Context, r *models.Resource) {
	if r.DeleteToken == "" {
		return
	}
	if err := s.binaries.DeleteByToken(ctx, r.DeleteToken); err != nil {
		logger.Warn().Err(err).Str("id", r.ID).Msg("Binary delete failed, leaving orphan on host")
	}
}

// Stats builds the admin dashboard aggregates from a full catalog snapshot.
func (s *ResourceService) Stats(ctx context.Context) (*dto.CatalogStatsResponse, error) {
	docs, err := s.resources.ListRaw(ctx)
	if err != nil {
		return nil, err
	}
	resources := catalog.NormalizeAll(docs)

	totalUsers, err := s.users.Count(ctx)
	if err != nil {
		return nil, err
	}

	perSemester := make(map[int]int)
	perUploader := make(map[string]int)
	for i := range resources {
		perSemester[resources[i].Semester]++
		name := resources[i].UploaderName
		if name == "" {
			name = resources[i].UploadedBy
		}
		if name != "" {
			perUploader[name]++
		}
	}

	uploaders := make([]dto.UploaderCount, 0, len(perUploader))
	for name, count := range perUploader {
		uploaders = append(uploaders, dto.UploaderCount{Uploader: name, Count: count})
	}
	sort.Slice(uploaders, func(i, j int) bool {
		if uploaders[i].Count != uploaders[j].Count {
			return uploaders[i].Count > uploaders[j].Count
		}
		return uploaders[i].Uploader < uploaders[j].Uploader
	})
	if len(uploaders) > 5 {
		uploaders = uploaders[:5]
	}

	top := make([]models.Resource, len(resources))
	copy(top, resources)
	sort.SliceStable(top, func(i, j int) bool {
		return top[i].Downloads > top[j].Downloads
	})
	if len(top) > 5 {
		top = top[:5]
	}

	return &dto.CatalogStatsResponse{
		TotalResources:     len(resources),
		TotalUsers:         totalUsers,
		UploadsPerSemester: perSemester,
		UploadsPerUploader: uploaders,
		TopDownloads:       top,
	}, nil
}

// documentIDString prefers the document's own _id, falling back to the
// identifier the caller looked up with.
func documentIDString(doc bson.M, fallback string) string {
	if id := catalog.DocumentID(doc); id != "" {
		return id
	}
	return fallback
}
