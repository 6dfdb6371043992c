package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DownloadEvent is one immutable entry in a user's download ledger. Events are
// created exactly once per user-initiated download and never mutated or
// deleted by this system.
type DownloadEvent struct {
	ID           primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	UserID       string             `json:"-" bson:"userId"`
	ResourceID   string             `json:"resourceId" bson:"resourceId"`
	FileName     string             `json:"fileName" bson:"fileName"`
	Subject      string             `json:"subject,omitempty" bson:"subject,omitempty"`
	Semester     int                `json:"semester,omitempty" bson:"semester,omitempty"`
	FileURL      string             `json:"fileUrl,omitempty" bson:"fileUrl,omitempty"`
	FileType     string             `json:"fileType,omitempty" bson:"fileType,omitempty"`
	DownloadedAt time.Time          `json:"downloadedAt" bson:"downloadedAt"`
}
