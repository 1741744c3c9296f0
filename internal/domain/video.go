package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// VideoStatus is the lifecycle state of an uploaded trick video.
// The record is created as "pending" together with the upload grant,
// before any bytes exist in object storage. Only the completion call
// (bearing the owner's credential) moves a record out of "pending".
type VideoStatus string

const (
	VideoStatusPending VideoStatus = "pending"
	// VideoStatusProcessing is backend-internal (e.g. thumbnail extraction);
	// no client code path ever writes it.
	VideoStatusProcessing VideoStatus = "processing"
	VideoStatusCompleted  VideoStatus = "completed"
	VideoStatusFailed     VideoStatus = "failed"
)

// IsTerminal reports whether the status can never change again.
func (s VideoStatus) IsTerminal() bool {
	return s == VideoStatusCompleted || s == VideoStatusFailed
}

// Valid reports whether s is one of the four known states.
func (s VideoStatus) Valid() bool {
	switch s {
	case VideoStatusPending, VideoStatusProcessing, VideoStatusCompleted, VideoStatusFailed:
		return true
	}
	return false
}

// Video stores metadata about a trick clip uploaded by a user.
// The actual bytes reside in object storage under S3ObjectKey.
type Video struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID       primitive.ObjectID `bson:"userId" json:"userId"`
	TrickID      primitive.ObjectID `bson:"trickId" json:"trickId"`
	S3ObjectKey  string             `bson:"s3ObjectKey" json:"-"` // bucket path, internal use only
	FileName     string             `bson:"fileName" json:"fileName"`
	ContentType  string             `bson:"contentType" json:"contentType"` // e.g. "video/mp4"
	Size         int64              `bson:"size" json:"size"`               // declared size in bytes
	DurationMs   *int64             `bson:"durationMs,omitempty" json:"durationMs,omitempty"`
	ThumbnailKey string             `bson:"thumbnailKey,omitempty" json:"-"`
	Status       VideoStatus        `bson:"status" json:"status"`
	GrantExpires time.Time          `bson:"grantExpires" json:"-"` // when the issued upload URL stops working
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
	CompletedAt  *time.Time         `bson:"completedAt,omitempty" json:"completedAt,omitempty"`
}
