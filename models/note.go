package models

import "time"

// Note is a note with custom field values stored in a space.
type Note struct {
	ID        string                `json:"id" bson:"_id"`
	SpaceID   string                `json:"space_id" bson:"space_id"`
	Number    int64                 `json:"number" bson:"number"` // sequential per space
	UserID    string                `json:"user_id" bson:"user_id"`
	CreatedAt time.Time             `json:"created_at" bson:"created_at"`
	EditedAt  *time.Time            `json:"edited_at,omitempty" bson:"edited_at,omitempty"`
	Fields    map[string]FieldValue `json:"fields" bson:"fields"` // values for space-defined fields
}

// SystemFields are note attributes that exist on every note regardless of the
// space schema. They participate in filtering and sorting like custom fields
// but live at the top level of the note document, not inside the fields map.
var SystemFields = map[string]SpaceField{
	"number":     {ID: "number", Type: FieldTypeInt, Required: true},
	"created_at": {ID: "created_at", Type: FieldTypeDatetime, Required: true},
	"edited_at":  {ID: "edited_at", Type: FieldTypeDatetime},
	"user_id":    {ID: "user_id", Type: FieldTypeUser, Required: true},
}

// IsSystemField reports whether the field id names a system field.
func IsSystemField(id string) bool {
	_, ok := SystemFields[id]
	return ok
}

// SystemField returns the virtual definition for a system field, or nil.
func SystemField(id string) *SpaceField {
	if f, ok := SystemFields[id]; ok {
		return &f
	}
	return nil
}
