package repository

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"spacenote-api/errs"
	"spacenote-api/models"
)

type SpacesRepository struct {
	coll *mongo.Collection
}

func NewSpacesRepository(db *mongo.Database) *SpacesRepository {
	return &SpacesRepository{coll: db.Collection("spaces")}
}

func (r *SpacesRepository) CreateSpace(ctx context.Context, space *models.Space) error {
	if _, err := r.coll.InsertOne(ctx, space); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return errs.Validationf("Space slug '%s' is already taken", space.Slug)
		}
		return err
	}
	return nil
}

func (r *SpacesRepository) GetSpaceBySlug(ctx context.Context, slug string) (*models.Space, error) {
	return r.findOne(ctx, bson.M{"slug": slug})
}

func (r *SpacesRepository) findOne(ctx context.Context, filter bson.M) (*models.Space, error) {
	var space models.Space
	err := r.coll.FindOne(ctx, filter).Decode(&space)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &space, nil
}

// GetSpacesForUser lists the spaces the user is a member of.
func (r *SpacesRepository) GetSpacesForUser(ctx context.Context, userID string) ([]models.Space, error) {
	cursor, err := r.coll.Find(ctx, bson.M{"members": userID},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}}))
	if err != nil {
		return nil, err
	}
	spaces := []models.Space{}
	if err := cursor.All(ctx, &spaces); err != nil {
		return nil, err
	}
	return spaces, nil
}

func (r *SpacesRepository) AddMember(ctx context.Context, spaceID, userID string) error {
	return r.updateOne(ctx, spaceID, bson.M{"$addToSet": bson.M{"members": userID}})
}

func (r *SpacesRepository) RemoveMember(ctx context.Context, spaceID, userID string) error {
	return r.updateOne(ctx, spaceID, bson.M{"$pull": bson.M{"members": userID}})
}

func (r *SpacesRepository) AddField(ctx context.Context, spaceID string, field models.SpaceField) error {
	return r.updateOne(ctx, spaceID, bson.M{"$push": bson.M{"fields": field}})
}

func (r *SpacesRepository) RemoveField(ctx context.Context, spaceID, fieldID string) error {
	return r.updateOne(ctx, spaceID, bson.M{"$pull": bson.M{"fields": bson.M{"id": fieldID}}})
}

func (r *SpacesRepository) SetListFields(ctx context.Context, spaceID string, fieldIDs []string) error {
	return r.updateOne(ctx, spaceID, bson.M{"$set": bson.M{"list_fields": fieldIDs}})
}

func (r *SpacesRepository) SetHiddenCreateFields(ctx context.Context, spaceID string, fieldIDs []string) error {
	return r.updateOne(ctx, spaceID, bson.M{"$set": bson.M{"hidden_create_fields": fieldIDs}})
}

func (r *SpacesRepository) SetCommentEditableFields(ctx context.Context, spaceID string, fieldIDs []string) error {
	return r.updateOne(ctx, spaceID, bson.M{"$set": bson.M{"comment_editable_fields": fieldIDs}})
}

func (r *SpacesRepository) SetTemplates(ctx context.Context, spaceID string, templates models.SpaceTemplates) error {
	return r.updateOne(ctx, spaceID, bson.M{"$set": bson.M{"templates": templates}})
}

func (r *SpacesRepository) AddFilter(ctx context.Context, spaceID string, filter models.Filter) error {
	return r.updateOne(ctx, spaceID, bson.M{"$push": bson.M{"filters": filter}})
}

func (r *SpacesRepository) RemoveFilter(ctx context.Context, spaceID, filterID string) error {
	return r.updateOne(ctx, spaceID, bson.M{"$pull": bson.M{"filters": bson.M{"id": filterID}}})
}

func (r *SpacesRepository) DeleteSpace(ctx context.Context, spaceID string) error {
	_, err := r.coll.DeleteOne(ctx, bson.M{"_id": spaceID})
	return err
}

func (r *SpacesRepository) updateOne(ctx context.Context, spaceID string, update bson.M) error {
	result, err := r.coll.UpdateOne(ctx, bson.M{"_id": spaceID}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return errs.NotFoundf("Space not found: %s", spaceID)
	}
	return nil
}

func (r *SpacesRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "slug", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return err
	}
	_, err = r.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "members", Value: 1}},
	})
	return err
}
