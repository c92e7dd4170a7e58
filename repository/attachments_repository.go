package repository

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"spacenote-api/models"
)

type AttachmentsRepository struct {
	coll *mongo.Collection
}

func NewAttachmentsRepository(db *mongo.Database) *AttachmentsRepository {
	return &AttachmentsRepository{coll: db.Collection("attachments")}
}

func (r *AttachmentsRepository) CreateAttachment(ctx context.Context, attachment *models.Attachment) error {
	_, err := r.coll.InsertOne(ctx, attachment)
	return err
}

func (r *AttachmentsRepository) GetAttachmentByID(ctx context.Context, id string) (*models.Attachment, error) {
	var attachment models.Attachment
	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&attachment)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &attachment, nil
}

func (r *AttachmentsRepository) ListAttachments(ctx context.Context, spaceID string, limit, offset int64) ([]models.Attachment, int64, error) {
	filter := bson.M{"space_id": spaceID}
	total, err := r.coll.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	cursor, err := r.coll.Find(ctx, filter,
		options.Find().SetSort(bson.D{{Key: "number", Value: -1}}).SetLimit(limit).SetSkip(offset))
	if err != nil {
		return nil, 0, err
	}
	attachments := []models.Attachment{}
	if err := cursor.All(ctx, &attachments); err != nil {
		return nil, 0, err
	}
	return attachments, total, nil
}

func (r *AttachmentsRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "space_id", Value: 1}, {Key: "number", Value: -1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}
