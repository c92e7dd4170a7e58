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

type CommentsRepository struct {
	coll *mongo.Collection
}

func NewCommentsRepository(db *mongo.Database) *CommentsRepository {
	return &CommentsRepository{coll: db.Collection("comments")}
}

func (r *CommentsRepository) CreateComment(ctx context.Context, comment *models.Comment) error {
	_, err := r.coll.InsertOne(ctx, comment)
	return err
}

func (r *CommentsRepository) GetCommentByNumber(ctx context.Context, noteID string, number int64) (*models.Comment, error) {
	var comment models.Comment
	err := r.coll.FindOne(ctx, bson.M{"note_id": noteID, "number": number}).Decode(&comment)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &comment, nil
}

// ListComments returns one page of a note's comments in posting order and
// the total count.
func (r *CommentsRepository) ListComments(ctx context.Context, noteID string, limit, offset int64) ([]models.Comment, int64, error) {
	filter := bson.M{"note_id": noteID}
	total, err := r.coll.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	cursor, err := r.coll.Find(ctx, filter,
		options.Find().SetSort(bson.D{{Key: "number", Value: 1}}).SetLimit(limit).SetSkip(offset))
	if err != nil {
		return nil, 0, err
	}
	comments := []models.Comment{}
	if err := cursor.All(ctx, &comments); err != nil {
		return nil, 0, err
	}
	return comments, total, nil
}

func (r *CommentsRepository) UpdateCommentContent(ctx context.Context, commentID, content string, editedAt time.Time) error {
	_, err := r.coll.UpdateOne(ctx, bson.M{"_id": commentID},
		bson.M{"$set": bson.M{"content": content, "edited_at": editedAt}})
	return err
}

func (r *CommentsRepository) CountCommentsForNote(ctx context.Context, noteID string) (int64, error) {
	return r.coll.CountDocuments(ctx, bson.M{"note_id": noteID})
}

func (r *CommentsRepository) DeleteCommentsInSpace(ctx context.Context, spaceID string) error {
	_, err := r.coll.DeleteMany(ctx, bson.M{"space_id": spaceID})
	return err
}

func (r *CommentsRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "note_id", Value: 1}, {Key: "number", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}
