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

// UserRepository handles database operations on account profiles
type UserRepository struct {
	col *mongo.Collection
}

// NewUserRepository creates a new user repository instance
func NewUserRepository(col *mongo.Collection) *UserRepository {
	return &UserRepository{col: col}
}

// Create inserts a new user and fills in its generated ID
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now

	res, err := r.col.InsertOne(ctx, user)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return apperrors.ErrEmailAlreadyExists
		}
		return err
	}

	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		user.ID = oid
	}
	return nil
}

// GetByEmail finds a user by email address
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := r.col.FindOne(ctx, bson.M{"email": email}).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

// GetByID finds a user by its opaque identifier
func (r *UserRepository) GetByID(ctx context.Context, uid string) (*models.User, error) {
	oid, err := primitive.ObjectIDFromHex(uid)
	if err != nil {
		return nil, apperrors.ErrUserNotFound
	}

	var user models.User
	err = r.col.FindOne(ctx, bson.M{"_id": oid}).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

// GetRole returns the live role stored on a user's profile. Authorization
// decisions read this rather than any role snapshot carried on records.
func (r *UserRepository) GetRole(ctx context.Context, uid string) (models.Role, error) {
	user, err := r.GetByID(ctx, uid)
	if err != nil {
		return "", err
	}
	return user.Role, nil
}

// ExistsByEmail reports whether an account with this email already exists
func (r *UserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	count, err := r.col.CountDocuments(ctx, bson.M{"email": email})
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// SetBlocked updates the blocked flag on a user
func (r *UserRepository) SetBlocked(ctx context.Context, uid string, blocked bool) error {
	oid, err := primitive.ObjectIDFromHex(uid)
	if err != nil {
		return apperrors.ErrUserNotFound
	}

	res, err := r.col.UpdateOne(ctx,
		bson.M{"_id": oid},
		bson.M{"$set": bson.M{"blocked": blocked, "updatedAt": time.Now().UTC()}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return apperrors.ErrUserNotFound
	}
	return nil
}

// Delete removes a user profile document
func (r *UserRepository) Delete(ctx context.Context, uid string) error {
	oid, err := primitive.ObjectIDFromHex(uid)
	if err != nil {
		return apperrors.ErrUserNotFound
	}

	res, err := r.col.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return apperrors.ErrUserNotFound
	}
	return nil
}

// List returns all user profiles, newest first
func (r *UserRepository) List(ctx context.Context) ([]models.User, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := r.col.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var users []models.User
	if err := cursor.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// Count returns the total number of user profiles
func (r *UserRepository) Count(ctx context.Context) (int64, error) {
	return r.col.CountDocuments(ctx, bson.M{})
}
