package models

import "time"

// RefreshToken is the server-side record of an issued refresh token. The
// token value is an opaque UUID; a live record is what makes it redeemable.
type RefreshToken struct {
	Token     string    `bson:"token"`
	UserID    string    `bson:"userId"`
	ExpiresAt time.Time `bson:"expiresAt"`
	Revoked   bool      `bson:"revoked"`
	CreatedAt time.Time `bson:"createdAt"`
}
