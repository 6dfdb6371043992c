package services

import (
	"context"

	"github.com/campusshare/campusshare/internal/app/models"
	"github.com/campusshare/campusshare/internal/app/models/dto"
	"github.com/campusshare/campusshare/internal/pkg/logger"
)

// downloadStore is the ledger persistence surface.
type downloadStore interface {
	Insert(ctx context.Context, event *models.DownloadEvent) error
	ListByUser(ctx context.Context, uid string) ([]models.DownloadEvent, error)
}

// downloadCounter bumps a record's aggregate download counter.
type downloadCounter interface {
	IncrementDownloads(ctx context.Context, id string) error
}

// resourceGetter fetches one normalized catalog record.
type resourceGetter interface {
	Get(ctx context.Context, id string) (*models.Resource, error)
}

// DownloadService maintains the per-user download ledger and the per-resource
// aggregate counter. The two writes are independent, not transactional: either
// may succeed while the other fails, and neither failure is surfaced to the
// user since the download itself already happened client-side.
type DownloadService struct {
	downloads downloadStore
	counters  downloadCounter
	resources resourceGetter
}

// NewDownloadService creates a new DownloadService
func NewDownloadService(downloads downloadStore, counters downloadCounter, resources resourceGetter) *DownloadService {
	return &DownloadService{downloads: downloads, counters: counters, resources: resources}
}

// Record writes one ledger event and bumps the resource's counter. It only
// errors when the resource does not exist; write failures are logged and
// swallowed.
func (s *DownloadService) Record(ctx context.Context, uid, resourceID string) error {
	resource, err := s.resources.Get(ctx, resourceID)
	if err != nil {
		return err
	}

	event := &models.DownloadEvent{
		UserID:     uid,
		ResourceID: resource.ID,
		FileName:   resource.FileName,
		Subject:    resource.Subject,
		Semester:   resource.Semester,
		FileURL:    resource.FileURL,
		FileType:   resource.FileType,
	}

	if err := s.downloads.Insert(ctx, event); err != nil {
		logger.Warn().Err(err).Str("uid", uid).Str("resourceId", resourceID).Msg("Failed to append download ledger entry")
	}

	if err := s.counters.IncrementDownloads(ctx, resourceID); err != nil {
		logger.Warn().Err(err).Str("resourceId", resourceID).Msg("Failed to increment download counter")
	}

	return nil
}

// History returns a user's ledger, most recent first.
func (s *DownloadService) History(ctx context.Context, uid string) (*dto.DownloadListResponse, error) {
	events, err := s.downloads.ListByUser(ctx, uid)
	if err != nil {
		return nil, err
	}
	return &dto.DownloadListResponse{Downloads: events, Total: len(events)}, nil
}
