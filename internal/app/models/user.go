package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User defines an account profile stored in the 'users' collection
type User struct {
	ID        primitive.ObjectID `json:"-" bson:"_id,omitempty"`
	Username  string             `json:"username" bson:"username"`
	Email     string             `json:"email" bson:"email"`
	Password  string             `json:"-" bson:"password"`
	Role      Role               `json:"role" bson:"role"`
	Blocked   bool               `json:"blocked" bson:"blocked"`
	CreatedAt time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time          `json:"updatedAt" bson:"updatedAt"`

	// Student-specific fields
	USN      string `json:"usn,omitempty" bson:"usn,omitempty"`
	Semester int    `json:"semester,omitempty" bson:"semester,omitempty"`

	// Teacher-specific fields
	Subjects []string `json:"subjects,omitempty" bson:"subjects,omitempty"`

	// Admin-specific fields
	Permissions []string `json:"permissions,omitempty" bson:"permissions,omitempty"`
}

// UID returns the opaque identifier used everywhere outside the store.
func (u *User) UID() string {
	return u.ID.Hex()
}
