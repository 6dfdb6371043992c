package repositories

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/campusshare/campusshare/internal/app/models"
	"github.com/campusshare/campusshare/internal/pkg/apperrors"
)

// ResourceRepository handles database operations on catalog records. Reads
// return raw documents because the collection is schemaless and field names
// drifted over the application's history; callers run them through
// catalog.Normalize before use. Writes always produce the canonical shape.
type ResourceRepository struct {
	col *mongo.Collection
}

// NewResourceRepository creates a new resource repository instance
func NewResourceRepository(col *mongo.Collection) *ResourceRepository {
	return &ResourceRepository{col: col}
}

// resourceIDFilter matches a document by _id whether it was stored as an
// ObjectID or as a plain string. Some legacy records carry string ids.
func resourceIDFilter(id string) bson.M {
	if oid, err := primitive.ObjectIDFromHex(id); err == nil {
		return bson.M{"_id": bson.M{"$in": bson.A{oid, id}}}
	}
	return bson.M{"_id": id}
}

// Insert writes a new canonical catalog record and returns its generated ID
func (r *ResourceRepository) Insert(ctx context.Context, resource *models.Resource) (string, error) {
	if resource.UploadedAt.IsZero() {
		resource.UploadedAt = time.Now().UTC()
	}

	res, err := r.col.InsertOne(ctx, resource)
	if err != nil {
		return "", err
	}

	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		resource.ID = oid.Hex()
	}
	return resource.ID, nil
}

// GetRaw fetches a single record as a raw document
func (r *ResourceRepository) GetRaw(ctx context.Context, id string) (bson.M, error) {
	var doc bson.M
	err := r.col.FindOne(ctx, resourceIDFilter(id)).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperrors.ErrResourceNotFound
		}
		return nil, err
	}
	return doc, nil
}

// ListRaw returns every record in the catalog as raw documents
func (r *ResourceRepository) ListRaw(ctx context.Context) ([]bson.M, error) {
	cursor, err := r.col.Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var docs []bson.M
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}
	return docs, nil
}

// ListRawByOwner returns raw documents owned by the given uploader, matching
// both the canonical and the legacy owner field spellings.
func (r *ResourceRepository) ListRawByOwner(ctx context.Context, uid string) ([]bson.M, error) {
	filter := bson.M{"$or": bson.A{
		bson.M{"uploadedBy": uid},
		bson.M{"teacherId": uid},
	}}

	cursor, err := r.col.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var docs []bson.M
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}
	return docs, nil
}

// Delete removes a record's catalog document
func (r *ResourceRepository) Delete(ctx context.Context, id string) error {
	res, err := r.col.DeleteOne(ctx, resourceIDFilter(id))
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return apperrors.ErrResourceNotFound
	}
	return nil
}

// IncrementDownloads bumps a record's aggregate download counter by one
func (r *ResourceRepository) IncrementDownloads(ctx context.Context, id string) error {
	res, err := r.col.UpdateOne(ctx, resourceIDFilter(id), bson.M{"$inc": bson.M{"downloads": 1}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return apperrors.ErrResourceNotFound
	}
	return nil
}

// Count returns the total number of catalog records
func (r *ResourceRepository) Count(ctx context.Context) (int64, error) {
	return r.col.CountDocuments(ctx, bson.M{})
}

// Watch opens a change stream over the catalog collection so callers can
// observe inserts, updates and deletes as they happen.
func (r *ResourceRepository) Watch(ctx context.Context) (*mongo.ChangeStream, error) {
	opts := options.ChangeStream().SetFullDocument(options.UpdateLookup)
	return r.col.Watch(ctx, mongo.Pipeline{}, opts)
}
