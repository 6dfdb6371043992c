package repositories

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/campusshare/campusshare/internal/app/models"
)

// DownloadRepository handles the append-only download ledger
type DownloadRepository struct {
	col *mongo.Collection
}

// NewDownloadRepository creates a new download repository instance
func NewDownloadRepository(col *mongo.Collection) *DownloadRepository {
	return &DownloadRepository{col: col}
}

// Insert appends one event to the ledger
func (r *DownloadRepository) Insert(ctx context.Context, event *models.DownloadEvent) error {
	if event.DownloadedAt.IsZero() {
		event.DownloadedAt = time.Now().UTC()
	}

	res, err := r.col.InsertOne(ctx, event)
	if err != nil {
		return err
	}

	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		event.ID = oid
	}
	return nil
}

// ListByUser returns a user's ledger entries, most recent first
func (r *DownloadRepository) ListByUser(ctx context.Context, uid string) ([]models.DownloadEvent, error) {
	opts := options.Find().SetSort(bson.D{{Key: "downloadedAt", Value: -1}})
	cursor, err := r.col.Find(ctx, bson.M{"userId": uid}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var events []models.DownloadEvent
	if err := cursor.All(ctx, &events); err != nil {
		return nil, err
	}
	return events, nil
}
