package models

import "time"

// SpaceTemplates holds optional templates for customizing space views.
type SpaceTemplates struct {
	NoteDetail string `json:"note_detail,omitempty" bson:"note_detail,omitempty"`
	NoteList   string `json:"note_list,omitempty" bson:"note_list,omitempty"`
}

// Space is a container for notes with a custom field schema, a membership
// list, and saved filters.
type Space struct {
	ID                    string         `json:"id" bson:"_id"`
	Slug                  string         `json:"slug" bson:"slug"` // URL-friendly unique identifier
	Title                 string         `json:"title" bson:"title"`
	Description           string         `json:"description,omitempty" bson:"description,omitempty"`
	Members               []string       `json:"members" bson:"members"`
	Fields                []SpaceField   `json:"fields" bson:"fields"` // order matters
	ListFields            []string       `json:"list_fields" bson:"list_fields"`
	HiddenCreateFields    []string       `json:"hidden_create_fields" bson:"hidden_create_fields"`
	CommentEditableFields []string       `json:"comment_editable_fields" bson:"comment_editable_fields"`
	Filters               []Filter       `json:"filters" bson:"filters"`
	Templates             SpaceTemplates `json:"templates" bson:"templates"`
	CreatedAt             time.Time      `json:"created_at" bson:"created_at"`
}

// GetField returns the field definition with the given id, or nil.
func (s *Space) GetField(id string) *SpaceField {
	for i := range s.Fields {
		if s.Fields[i].ID == id {
			return &s.Fields[i]
		}
	}
	return nil
}

// GetFilter returns the saved filter with the given id, or nil.
func (s *Space) GetFilter(id string) *Filter {
	for i := range s.Filters {
		if s.Filters[i].ID == id {
			return &s.Filters[i]
		}
	}
	return nil
}

// HasMember reports whether the user is a member of the space.
func (s *Space) HasMember(userID string) bool {
	for _, m := range s.Members {
		if m == userID {
			return true
		}
	}
	return false
}
