package services

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/campusshare/campusshare/internal/app/catalog"
	"github.com/campusshare/campusshare/internal/app/models"
	"github.com/campusshare/campusshare/internal/pkg/logger"
)

// changeStreamer opens a change stream over the catalog collection.
type changeStreamer interface {
	Watch(ctx context.Context) (*mongo.ChangeStream, error)
}

// CatalogEvent is one live catalog notification. Resource is nil for deletes.
type CatalogEvent struct {
	Type     string           `json:"type"`
	ID       string           `json:"id"`
	Resource *models.Resource `json:"resource,omitempty"`
}

// Event types emitted on the feed
const (
	EventCreated = "created"
	EventUpdated = "updated"
	EventDeleted = "deleted"
)

// FeedService pushes live catalog changes to subscribers so clients render
// new uploads without polling.
type FeedService struct {
	resources changeStreamer
}

// NewFeedService creates a new FeedService
func NewFeedService(resources changeStreamer) *FeedService {
	return &FeedService{resources: resources}
}

// Stream sends catalog events on out until ctx is cancelled or the change
// stream fails. The channel is not closed by Stream.
func (s *FeedService) Stream(ctx context.Context, out chan<- CatalogEvent) error {
	cs, err := s.resources.Watch(ctx)
	if err != nil {
		return err
	}
	defer cs.Close(context.Background())

	for cs.Next(ctx) {
		var change struct {
			OperationType string `bson:"operationType"`
			FullDocument  bson.M `bson:"fullDocument"`
			DocumentKey   bson.M `bson:"documentKey"`
		}
		if err := cs.Decode(&change); err != nil {
			logger.Warn().Err(err).Msg("Failed to decode catalog change event")
			continue
		}

		event, ok := toCatalogEvent(change.OperationType, change.DocumentKey, change.FullDocument)
		if !ok {
			continue
		}

		select {
		case out <- event:
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	if err := cs.Err(); err != nil && ctx.Err() == nil {
		return err
	}
	return ctx.Err()
}

func toCatalogEvent(op string, key, doc bson.M) (CatalogEvent, bool) {
	id := catalog.DocumentID(key)

	switch op {
	case "insert":
		r := catalog.Normalize(id, doc)
		return CatalogEvent{Type: EventCreated, ID: r.ID, Resource: &r}, true
	case "update", "replace":
		r := catalog.Normalize(id, doc)
		return CatalogEvent{Type: EventUpdated, ID: r.ID, Resource: &r}, true
	case "delete":
		return CatalogEvent{Type: EventDeleted, ID: id}, true
	default:
		return CatalogEvent{}, false
	}
}
