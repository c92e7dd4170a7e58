package models

import "time"

// Attachment metadata for a file uploaded to object storage. The file content
// itself lives in MinIO under ObjectKey; this record only tracks metadata.
type Attachment struct {
	ID          string    `json:"id" bson:"_id"`
	SpaceID     string    `json:"space_id" bson:"space_id"`
	UserID      string    `json:"user_id" bson:"user_id"`
	Number      int64     `json:"number" bson:"number"` // sequential per space
	Filename    string    `json:"filename" bson:"filename"`
	ContentType string    `json:"content_type" bson:"content_type"`
	Size        int64     `json:"size" bson:"size"`
	ObjectKey   string    `json:"-" bson:"object_key"`
	CreatedAt   time.Time `json:"created_at" bson:"created_at"`
}
