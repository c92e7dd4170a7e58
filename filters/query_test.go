package filters

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"

	"spacenote-api/models"
)

func TestGetFieldPath(t *testing.T) {
	assert.Equal(t, "number", GetFieldPath("number"))
	assert.Equal(t, "created_at", GetFieldPath("created_at"))
	assert.Equal(t, "user_id", GetFieldPath("user_id"))
	assert.Equal(t, "fields.priority", GetFieldPath("priority"))
	assert.Equal(t, "fields.tags", GetFieldPath("tags"))
}

func TestResolveSpecialValues(t *testing.T) {
	value, err := ResolveSpecialValues(models.SpecialMe, models.FieldTypeUser, "user-1")
	require.NoError(t, err)
	assert.Equal(t, "user-1", value)

	_, err = ResolveSpecialValues(models.SpecialMe, models.FieldTypeUser, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "without a logged-in user context")

	// only user fields substitute; a string field keeps the literal token
	value, err = ResolveSpecialValues(models.SpecialMe, models.FieldTypeString, "user-1")
	require.NoError(t, err)
	assert.Equal(t, models.SpecialMe, value)

	value, err = ResolveSpecialValues("bob-id", models.FieldTypeUser, "user-1")
	require.NoError(t, err)
	assert.Equal(t, "bob-id", value)
}

func TestBuildConditionQuery(t *testing.T) {
	cases := []struct {
		operator models.FilterOperator
		value    models.FieldValue
		want     bson.M
	}{
		{models.OpEq, "open", bson.M{"$eq": "open"}},
		{models.OpEq, nil, bson.M{"$eq": nil}},
		{models.OpNe, nil, bson.M{"$ne": nil}},
		{models.OpGt, int64(5), bson.M{"$gt": int64(5)}},
		{models.OpLte, 2.5, bson.M{"$lte": 2.5}},
		{models.OpIn, []string{"a", "b"}, bson.M{"$in": []string{"a", "b"}}},
		{models.OpNin, []string{"x"}, bson.M{"$nin": []string{"x"}}},
		{models.OpAll, []string{"a", "b"}, bson.M{"$all": []string{"a", "b"}}},
		{models.OpContains, "draft", bson.M{"$regex": "draft", "$options": "i"}},
		{models.OpStartsWith, "dr", bson.M{"$regex": "^dr", "$options": "i"}},
		{models.OpEndsWith, "ft", bson.M{"$regex": "ft$", "$options": "i"}},
	}
	for _, tc := range cases {
		got, err := BuildConditionQuery(tc.operator, tc.value)
		require.NoError(t, err, tc.operator)
		assert.Equal(t, tc.want, got, tc.operator)
	}
}

func TestBuildSort(t *testing.T) {
	assert.Equal(t, bson.D{{Key: "number", Value: -1}}, BuildSort(nil))
	assert.Equal(t, bson.D{{Key: "number", Value: -1}}, BuildSort([]string{}))
	assert.Equal(t, bson.D{{Key: "fields.x", Value: -1}}, BuildSort([]string{"-x"}))
	assert.Equal(t, bson.D{{Key: "number", Value: 1}}, BuildSort([]string{"number"}))
	assert.Equal(t,
		bson.D{{Key: "fields.priority", Value: -1}, {Key: "created_at", Value: 1}},
		BuildSort([]string{"-priority", "created_at"}))
}

func queryTestSpace() *models.Space {
	return &models.Space{
		ID: "space-1",
		Fields: []models.SpaceField{
			{ID: "title", Type: models.FieldTypeString},
			{ID: "count", Type: models.FieldTypeInt},
			{ID: "status", Type: models.FieldTypeSelect,
				Options: map[models.FieldOption]any{models.OptionValues: []string{"open", "closed"}}},
			{ID: "assignee", Type: models.FieldTypeUser},
		},
	}
}

func TestBuildQuery(t *testing.T) {
	space := queryTestSpace()

	query, err := BuildQuery(nil, space, "")
	require.NoError(t, err)
	assert.Equal(t, bson.M{"space_id": "space-1"}, query)

	query, err = BuildQuery([]models.FilterCondition{
		{Field: "status", Operator: models.OpEq, Value: "open"},
		{Field: "number", Operator: models.OpGt, Value: int64(10)},
	}, space, "")
	require.NoError(t, err)
	assert.Equal(t, bson.M{
		"space_id":      "space-1",
		"fields.status": bson.M{"$eq": "open"},
		"number":        bson.M{"$gt": int64(10)},
	}, query)
}

func TestBuildQueryMergesSameFieldPath(t *testing.T) {
	space := queryTestSpace()

	query, err := BuildQuery([]models.FilterCondition{
		{Field: "count", Operator: models.OpGt, Value: int64(5)},
		{Field: "count", Operator: models.OpLt, Value: int64(20)},
	}, space, "")
	require.NoError(t, err)

	assert.NotContains(t, query, "fields.count")
	assert.Equal(t, []bson.M{
		{"fields.count": bson.M{"$gt": int64(5)}},
		{"fields.count": bson.M{"$lt": int64(20)}},
	}, query["$and"])

	// a third condition on the same path extends the existing $and list
	query, err = BuildQuery([]models.FilterCondition{
		{Field: "count", Operator: models.OpGt, Value: int64(5)},
		{Field: "count", Operator: models.OpLt, Value: int64(20)},
		{Field: "count", Operator: models.OpNe, Value: int64(7)},
	}, space, "")
	require.NoError(t, err)
	assert.Len(t, query["$and"], 3)
}

func TestBuildQuerySkipsDeletedFields(t *testing.T) {
	space := queryTestSpace()

	// a saved filter may reference a field removed from the schema since
	query, err := BuildQuery([]models.FilterCondition{
		{Field: "ghost", Operator: models.OpEq, Value: "x"},
		{Field: "status", Operator: models.OpEq, Value: "open"},
	}, space, "")
	require.NoError(t, err)
	assert.Equal(t, bson.M{
		"space_id":      "space-1",
		"fields.status": bson.M{"$eq": "open"},
	}, query)
}

func TestBuildQueryResolvesMe(t *testing.T) {
	space := queryTestSpace()

	query, err := BuildQuery([]models.FilterCondition{
		{Field: "assignee", Operator: models.OpEq, Value: models.SpecialMe},
	}, space, "user-1")
	require.NoError(t, err)
	assert.Equal(t, bson.M{"$eq": "user-1"}, query["fields.assignee"])

	_, err = BuildQuery([]models.FilterCondition{
		{Field: "assignee", Operator: models.OpEq, Value: models.SpecialMe},
	}, space, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "without a logged-in user context")
}

func TestMergeQueries(t *testing.T) {
	// disjoint paths merge flat
	base := bson.M{"space_id": "space-1", "fields.status": bson.M{"$eq": "open"}}
	merged := MergeQueries(base, bson.M{"number": bson.M{"$gt": int64(3)}})
	assert.Equal(t, bson.M{
		"space_id":      "space-1",
		"fields.status": bson.M{"$eq": "open"},
		"number":        bson.M{"$gt": int64(3)},
	}, merged)

	// a simple condition on an occupied path is hoisted into $and
	base = bson.M{"space_id": "space-1", "fields.count": bson.M{"$gt": int64(5)}}
	merged = MergeQueries(base, bson.M{"fields.count": bson.M{"$lt": int64(20)}})
	assert.NotContains(t, merged, "fields.count")
	assert.Equal(t, []bson.M{
		{"fields.count": bson.M{"$gt": int64(5)}},
		{"fields.count": bson.M{"$lt": int64(20)}},
	}, merged["$and"])

	// an existing $and list is extended, not replaced
	base = bson.M{
		"space_id": "space-1",
		"$and":     []bson.M{{"fields.count": bson.M{"$gt": int64(5)}}},
	}
	merged = MergeQueries(base, bson.M{"$and": []bson.M{{"fields.count": bson.M{"$lt": int64(20)}}}})
	assert.Len(t, merged["$and"], 2)
}
