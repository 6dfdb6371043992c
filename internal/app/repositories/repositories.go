package repositories

import (
	"go.mongodb.org/mongo-driver/mongo"
)

// Collection names
const (
	UsersCollection     = "users"
	ResourcesCollection = "resources"
	DownloadsCollection = "downloads"
	TokensCollection    = "refresh_tokens"
)

// Repositories holds all repository instances
type Repositories struct {
	User     *UserRepository
	Resource *ResourceRepository
	Download *DownloadRepository
	Token    *TokenRepository
}

// NewRepositories creates all repositories backed by the given database
func NewRepositories(db *mongo.Database) *Repositories {
	return &Repositories{
		User:     NewUserRepository(db.Collection(UsersCollection)),
		Resource: NewResourceRepository(db.Collection(ResourcesCollection)),
		Download: NewDownloadRepository(db.Collection(DownloadsCollection)),
		Token:    NewTokenRepository(db.Collection(TokensCollection)),
	}
}
