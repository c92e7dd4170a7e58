package repository

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"spacenote-api/models"
)

type NotesRepository struct {
	coll *mongo.Collection
}

func NewNotesRepository(db *mongo.Database) *NotesRepository {
	return &NotesRepository{coll: db.Collection("notes")}
}

func (r *NotesRepository) CreateNote(ctx context.Context, note *models.Note) error {
	_, err := r.coll.InsertOne(ctx, note)
	return err
}

// GetNoteByNumber returns nil without error when no such note exists.
func (r *NotesRepository) GetNoteByNumber(ctx context.Context, spaceID string, number int64) (*models.Note, error) {
	var note models.Note
	err := r.coll.FindOne(ctx, bson.M{"space_id": spaceID, "number": number}).Decode(&note)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &note, nil
}

// UpdateNoteFields sets the given field values on a note and stamps the edit
// time. Only the provided field keys are touched.
func (r *NotesRepository) UpdateNoteFields(ctx context.Context, noteID string, fields map[string]models.FieldValue, editedAt time.Time) error {
	set := bson.M{"edited_at": editedAt}
	for id, value := range fields {
		set["fields."+id] = value
	}
	_, err := r.coll.UpdateOne(ctx, bson.M{"_id": noteID}, bson.M{"$set": set})
	return err
}

// ListNotes runs a built query with sort and pagination, returning the page
// and the total match count.
func (r *NotesRepository) ListNotes(ctx context.Context, query bson.M, sort bson.D, limit, offset int64) ([]models.Note, int64, error) {
	total, err := r.coll.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, err
	}
	cursor, err := r.coll.Find(ctx, query,
		options.Find().SetSort(sort).SetLimit(limit).SetSkip(offset))
	if err != nil {
		return nil, 0, err
	}
	notes := []models.Note{}
	if err := cursor.All(ctx, &notes); err != nil {
		return nil, 0, err
	}
	return notes, total, nil
}

// FieldInUse reports whether any note in the space carries a non-null value
// for the field. Used to block deleting a field that still holds data.
func (r *NotesRepository) FieldInUse(ctx context.Context, spaceID, fieldID string) (bool, error) {
	count, err := r.coll.CountDocuments(ctx, bson.M{
		"space_id":         spaceID,
		"fields." + fieldID: bson.M{"$exists": true, "$ne": nil},
	})
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// NoteIDsInSpace lists the ids of every note in the space. Used when
// cascading a space deletion to per-note resources.
func (r *NotesRepository) NoteIDsInSpace(ctx context.Context, spaceID string) ([]string, error) {
	cursor, err := r.coll.Find(ctx, bson.M{"space_id": spaceID},
		options.Find().SetProjection(bson.M{"_id": 1}))
	if err != nil {
		return nil, err
	}
	var docs []struct {
		ID string `bson:"_id"`
	}
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(docs))
	for _, d := range docs {
		ids = append(ids, d.ID)
	}
	return ids, nil
}

func (r *NotesRepository) DeleteNotesInSpace(ctx context.Context, spaceID string) error {
	_, err := r.coll.DeleteMany(ctx, bson.M{"space_id": spaceID})
	return err
}

func (r *NotesRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "space_id", Value: 1}, {Key: "number", Value: -1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}
