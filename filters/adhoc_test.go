package filters

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"spacenote-api/models"
)

const (
	aliceID = "5a8f7b9e-1c2d-4e3f-8a9b-0c1d2e3f4a5b"
	bobID   = "6b9f8cae-2d3e-4f40-9bac-1d2e3f4a5b6c"
)

func adhocTestSpace() (*models.Space, []models.User) {
	space := &models.Space{
		ID:      "space-1",
		Members: []string{aliceID, bobID},
		Fields: []models.SpaceField{
			{ID: "title", Type: models.FieldTypeString},
			{ID: "count", Type: models.FieldTypeInt},
			{ID: "score", Type: models.FieldTypeFloat},
			{ID: "done", Type: models.FieldTypeBoolean},
			{ID: "status", Type: models.FieldTypeSelect,
				Options: map[models.FieldOption]any{models.OptionValues: []string{"open", "closed"}}},
			{ID: "tags", Type: models.FieldTypeTags},
			{ID: "assignee", Type: models.FieldTypeUser},
			{ID: "due", Type: models.FieldTypeDatetime},
		},
	}
	members := []models.User{
		{ID: aliceID, Username: "alice"},
		{ID: bobID, Username: "bob"},
	}
	return space, members
}

func TestParseAdhocQueryEmpty(t *testing.T) {
	space, members := adhocTestSpace()

	for _, query := range []string{"", "   ", "\t"} {
		conditions, err := ParseAdhocQuery(query, space, members)
		require.NoError(t, err)
		assert.Empty(t, conditions)
	}
}

func TestParseAdhocQueryScalars(t *testing.T) {
	space, members := adhocTestSpace()

	conditions, err := ParseAdhocQuery("count:gt:5,status:eq:open", space, members)
	require.NoError(t, err)
	require.Len(t, conditions, 2)
	assert.Equal(t, models.FilterCondition{Field: "count", Operator: models.OpGt, Value: int64(5)}, conditions[0])
	assert.Equal(t, models.FilterCondition{Field: "status", Operator: models.OpEq, Value: "open"}, conditions[1])

	conditions, err = ParseAdhocQuery("score:lte:7.5", space, members)
	require.NoError(t, err)
	assert.Equal(t, 7.5, conditions[0].Value)

	conditions, err = ParseAdhocQuery("done:eq:true", space, members)
	require.NoError(t, err)
	assert.Equal(t, true, conditions[0].Value)

	conditions, err = ParseAdhocQuery("title:eq:null", space, members)
	require.NoError(t, err)
	assert.Nil(t, conditions[0].Value)
}

func TestParseAdhocQueryURLDecoding(t *testing.T) {
	space, members := adhocTestSpace()

	// %3A is ":", kept intact because the value is the third SplitN piece
	conditions, err := ParseAdhocQuery("title:contains:a%3Ab%20c", space, members)
	require.NoError(t, err)
	assert.Equal(t, "a:b c", conditions[0].Value)
}

func TestParseAdhocQueryListOperators(t *testing.T) {
	space, members := adhocTestSpace()

	// %5B%22a%22%2C%22b%22%5D is ["a","b"]
	conditions, err := ParseAdhocQuery("tags:in:%5B%22a%22%2C%22b%22%5D", space, members)
	require.NoError(t, err)
	require.Len(t, conditions, 1)
	assert.Equal(t, models.OpIn, conditions[0].Operator)
	assert.Equal(t, []string{"a", "b"}, conditions[0].Value)

	conditions, err = ParseAdhocQuery("status:nin:%5B%22closed%22%5D", space, members)
	require.NoError(t, err)
	assert.Equal(t, []string{"closed"}, conditions[0].Value)

	_, err = ParseAdhocQuery("tags:in:notjson", space, members)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Invalid JSON array for operator 'in'")
}

func TestParseAdhocQueryUserField(t *testing.T) {
	space, members := adhocTestSpace()

	conditions, err := ParseAdhocQuery("assignee:eq:bob", space, members)
	require.NoError(t, err)
	assert.Equal(t, bobID, conditions[0].Value)

	conditions, err = ParseAdhocQuery("assignee:eq:$me", space, members)
	require.NoError(t, err)
	assert.Equal(t, models.SpecialMe, conditions[0].Value)

	// the system author field resolves usernames the same way
	conditions, err = ParseAdhocQuery("user_id:eq:alice", space, members)
	require.NoError(t, err)
	assert.Equal(t, aliceID, conditions[0].Value)

	_, err = ParseAdhocQuery("assignee:eq:mallory", space, members)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found or not a member")
}

func TestParseAdhocQueryDatetimeField(t *testing.T) {
	space, members := adhocTestSpace()

	conditions, err := ParseAdhocQuery("due:gte:2025-10-20", space, members)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 10, 20, 0, 0, 0, 0, time.UTC), conditions[0].Value)

	_, err = ParseAdhocQuery("due:gte:2025-10-20T14%3A30%3A00%2B03%3A00", space, members)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Invalid datetime format")
}

func TestParseAdhocQueryErrors(t *testing.T) {
	space, members := adhocTestSpace()

	_, err := ParseAdhocQuery("nosuch:eq:x", space, members)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Unknown field: nosuch")

	_, err = ParseAdhocQuery("status:invalidop:x", space, members)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Unknown operator 'invalidop'")

	_, err = ParseAdhocQuery("count:contains:5", space, members)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Operator 'contains' is not valid for field type 'int'")

	_, err = ParseAdhocQuery("status:eq", space, members)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Invalid condition format")

	_, err = ParseAdhocQuery("status:eq:draft", space, members)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not one of the allowed values")

	// values coerced to number or boolean are rejected on text fields
	_, err = ParseAdhocQuery("title:eq:5", space, members)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Field 'title' expects a string value")

	_, err = ParseAdhocQuery("title:eq:true", space, members)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Field 'title' expects a string value")
}

func TestValidateFilter(t *testing.T) {
	space, _ := adhocTestSpace()

	filter := &models.Filter{
		ID:    "open_urgent",
		Title: "Open and urgent",
		Conditions: []models.FilterCondition{
			{Field: "status", Operator: models.OpEq, Value: "open"},
			{Field: "count", Operator: models.OpGt, Value: int64(5)},
			{Field: "tags", Operator: models.OpAll, Value: []string{"urgent"}},
		},
		Sort:       []string{"-created_at", "count"},
		ListFields: []string{"title", "status", "number"},
	}
	require.NoError(t, ValidateFilter(filter, space))

	bad := *filter
	bad.ID = "open urgent"
	err := ValidateFilter(&bad, space)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Invalid filter id")

	bad = *filter
	bad.Sort = []string{"-nosuch"}
	err = ValidateFilter(&bad, space)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Unknown sort field: -nosuch")

	bad = *filter
	bad.ListFields = []string{"nosuch"}
	err = ValidateFilter(&bad, space)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Unknown list field: nosuch")
}

func TestValidateFilterCondition(t *testing.T) {
	space, _ := adhocTestSpace()

	err := ValidateFilterCondition(models.FilterCondition{
		Field: "ghost", Operator: models.OpEq, Value: "x"}, space)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Unknown field in filter condition: ghost")

	err = ValidateFilterCondition(models.FilterCondition{
		Field: "count", Operator: models.OpContains, Value: "5"}, space)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not valid for field type 'int'")

	// list operators need list values and vice versa
	err = ValidateFilterCondition(models.FilterCondition{
		Field: "tags", Operator: models.OpIn, Value: "a"}, space)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expects a list value")

	err = ValidateFilterCondition(models.FilterCondition{
		Field: "status", Operator: models.OpEq, Value: []string{"open"}}, space)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expects a scalar value")

	// scalar equality on a select field enforces allowed values
	err = ValidateFilterCondition(models.FilterCondition{
		Field: "status", Operator: models.OpEq, Value: "draft"}, space)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not one of the allowed values")

	// list membership is deliberately not enforced at attach time
	err = ValidateFilterCondition(models.FilterCondition{
		Field: "status", Operator: models.OpIn, Value: []string{"draft"}}, space)
	require.NoError(t, err)

	// null is valid with equality, matching notes where the field is unset
	err = ValidateFilterCondition(models.FilterCondition{
		Field: "title", Operator: models.OpEq, Value: nil}, space)
	require.NoError(t, err)
}
