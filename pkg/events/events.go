// Package events defines the real-time event payloads pushed to connected
// clients. Structs are intentionally small and versionable; changes should
// be additive.
package events

// Event types carried in the "type" field of every payload.
const (
	TypeNoteCreated    = "note.created"
	TypeNoteUpdated    = "note.updated"
	TypeCommentCreated = "comment.created"
	TypeMemberAdded    = "member.added"
)

// NoteEvent is emitted when a note is created or updated in a space.
type NoteEvent struct {
	Type       string `json:"type"`
	SpaceID    string `json:"spaceId"`
	NoteNumber int64  `json:"noteNumber"`
	UserID     string `json:"userId"` // who made the change
}

// CommentEvent is emitted when a comment is posted on a note.
type CommentEvent struct {
	Type          string `json:"type"`
	SpaceID       string `json:"spaceId"`
	NoteNumber    int64  `json:"noteNumber"`
	CommentNumber int64  `json:"commentNumber"`
	UserID        string `json:"userId"`
}

// MemberAdded is emitted to a user when they are added to a space.
type MemberAdded struct {
	Type    string `json:"type"`
	SpaceID string `json:"spaceId"`
	AddedBy string `json:"addedBy"`
}
