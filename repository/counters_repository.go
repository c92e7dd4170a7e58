package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"spacenote-api/models"
)

type CountersRepository struct {
	coll *mongo.Collection
}

func NewCountersRepository(db *mongo.Database) *CountersRepository {
	return &CountersRepository{coll: db.Collection("counters")}
}

// NextSeq atomically increments and returns the next sequence number for the
// scope. The counter document is created on first use.
func (r *CountersRepository) NextSeq(ctx context.Context, scopeID string, counterType models.CounterType) (int64, error) {
	filter := bson.M{"scope_id": scopeID, "counter_type": counterType}
	update := bson.M{"$inc": bson.M{"seq": 1}}
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var counter models.Counter
	if err := r.coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(&counter); err != nil {
		return 0, err
	}
	return counter.Seq, nil
}

// DeleteCounters removes the counters for the given scopes. Called when a
// space is deleted, with the space id plus its note ids.
func (r *CountersRepository) DeleteCounters(ctx context.Context, scopeIDs []string) error {
	if len(scopeIDs) == 0 {
		return nil
	}
	_, err := r.coll.DeleteMany(ctx, bson.M{"scope_id": bson.M{"$in": scopeIDs}})
	return err
}

func (r *CountersRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "scope_id", Value: 1}, {Key: "counter_type", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}
