package models

import "time"

// Comment on a note. Numbers are sequential per note.
type Comment struct {
	ID        string     `json:"id" bson:"_id"`
	NoteID    string     `json:"note_id" bson:"note_id"`
	SpaceID   string     `json:"space_id" bson:"space_id"`
	UserID    string     `json:"user_id" bson:"user_id"`
	Number    int64      `json:"number" bson:"number"`
	Content   string     `json:"content" bson:"content"`
	CreatedAt time.Time  `json:"created_at" bson:"created_at"`
	EditedAt  *time.Time `json:"edited_at,omitempty" bson:"edited_at,omitempty"`
	ParentID  string     `json:"parent_id,omitempty" bson:"parent_id,omitempty"`
}
