package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/campusshare/campusshare/internal/app/models"
	"github.com/campusshare/campusshare/internal/pkg/apperrors"
)

// TokenRepository stores issued refresh tokens
type TokenRepository struct {
	collection *mongo.Collection
}

// NewTokenRepository creates a new TokenRepository
func NewTokenRepository(collection *mongo.Collection) *TokenRepository {
	return &TokenRepository{collection: collection}
}

// Create persists a newly issued refresh token.
func (r *TokenRepository) Create(ctx context.Context, token, uid string, expiresAt time.Time) error {
	record := models.RefreshToken{
		Token:     token,
		UserID:    uid,
		ExpiresAt: expiresAt,
		CreatedAt: time.Now(),
	}

	if _, err := r.collection.InsertOne(ctx, record); err != nil {
		return fmt.Errorf("failed to store refresh token: %w", err)
	}
	return nil
}

// GetByValue looks up a stored refresh token. Unknown tokens map to
// ErrTokenInvalid so the caller never learns whether the value ever existed.
func (r *TokenRepository) GetByValue(ctx context.Context, token string) (*models.RefreshToken, error) {
	var record models.RefreshToken
	err := r.collection.FindOne(ctx, bson.M{"token": token}).Decode(&record)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperrors.ErrTokenInvalid
		}
		return nil, fmt.Errorf("failed to look up refresh token: %w", err)
	}
	return &record, nil
}

// Revoke marks one token as spent.
func (r *TokenRepository) Revoke(ctx context.Context, token string) error {
	result, err := r.collection.UpdateOne(ctx,
		bson.M{"token": token},
		bson.M{"$set": bson.M{"revoked": true}},
	)
	if err != nil {
		return fmt.Errorf("failed to revoke refresh token: %w", err)
	}
	if result.MatchedCount == 0 {
		return apperrors.ErrTokenInvalid
	}
	return nil
}

// RevokeAllForUser marks every live token of one account as spent.
func (r *TokenRepository) RevokeAllForUser(ctx context.Context, uid string) error {
	_, err := r.collection.UpdateMany(ctx,
		bson.M{"userId": uid, "revoked": false},
		bson.M{"$set": bson.M{"revoked": true}},
	)
	if err != nil {
		return fmt.Errorf("failed to revoke user refresh tokens: %w", err)
	}
	return nil
}
