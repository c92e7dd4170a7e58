package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFilterOperator(t *testing.T) {
	op, err := ParseFilterOperator("eq")
	require.NoError(t, err)
	assert.Equal(t, OpEq, op)

	_, err = ParseFilterOperator("between")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Unknown operator 'between'")
}

func TestIsListOperator(t *testing.T) {
	assert.True(t, OpIn.IsListOperator())
	assert.True(t, OpNin.IsListOperator())
	assert.True(t, OpAll.IsListOperator())
	assert.False(t, OpEq.IsListOperator())
	assert.False(t, OpContains.IsListOperator())
}

func TestFieldTypeOperators(t *testing.T) {
	// every field type has at least equality
	for fieldType, ops := range FieldTypeOperators {
		assert.True(t, ops[OpEq], fieldType)
		assert.True(t, ops[OpNe], fieldType)
	}

	assert.True(t, FieldTypeOperators[FieldTypeString][OpContains])
	assert.False(t, FieldTypeOperators[FieldTypeInt][OpContains])
	assert.True(t, FieldTypeOperators[FieldTypeTags][OpAll])
	assert.False(t, FieldTypeOperators[FieldTypeSelect][OpAll])
	assert.False(t, FieldTypeOperators[FieldTypeUser][OpGt])
}

func TestOperatorsForFieldTypeSorted(t *testing.T) {
	ops := OperatorsForFieldType(FieldTypeBoolean)
	assert.Equal(t, []FilterOperator{OpEq, OpNe}, ops)
}

func TestSystemFields(t *testing.T) {
	assert.True(t, IsSystemField("number"))
	assert.True(t, IsSystemField("created_at"))
	assert.True(t, IsSystemField("edited_at"))
	assert.True(t, IsSystemField("user_id"))
	assert.False(t, IsSystemField("priority"))

	field := SystemField("user_id")
	require.NotNil(t, field)
	assert.Equal(t, FieldTypeUser, field.Type)
	assert.Nil(t, SystemField("priority"))
}

func TestSpaceAccessors(t *testing.T) {
	space := &Space{
		ID:      "space-1",
		Members: []string{"u1", "u2"},
		Fields: []SpaceField{
			{ID: "title", Type: FieldTypeString},
		},
		Filters: []Filter{
			{ID: "open", Title: "Open"},
		},
	}

	require.NotNil(t, space.GetField("title"))
	assert.Nil(t, space.GetField("ghost"))
	require.NotNil(t, space.GetFilter("open"))
	assert.Nil(t, space.GetFilter("ghost"))
	assert.True(t, space.HasMember("u1"))
	assert.False(t, space.HasMember("u3"))
}

func TestFieldOptionAccessors(t *testing.T) {
	field := SpaceField{
		ID:   "status",
		Type: FieldTypeSelect,
		Options: map[FieldOption]any{
			OptionValues: []any{"open", "closed"}, // shape after JSON decode
			OptionMin:    int32(1),                // shape after BSON decode
		},
	}

	values, ok, err := field.StringListOption(OptionValues)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []string{"open", "closed"}, values)

	min, ok, err := field.NumberOption(OptionMin)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 1.0, min)

	_, ok, err = field.NumberOption(OptionMax)
	require.NoError(t, err)
	assert.False(t, ok)

	field.Options[OptionValues] = []any{"open", 7}
	_, _, err = field.StringListOption(OptionValues)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must be a list of strings")
}

func TestPreviewsOption(t *testing.T) {
	field := SpaceField{
		ID:   "cover",
		Type: FieldTypeImage,
		Options: map[FieldOption]any{
			OptionPreviews: map[string]any{
				"thumb": map[string]any{"max_width": float64(200)},
				"full":  map[string]any{"max_width": 1200},
			},
		},
	}

	previews, ok, err := field.PreviewsOption()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 200, previews["thumb"].MaxWidth)
	assert.Equal(t, 1200, previews["full"].MaxWidth)

	// fractional widths are rejected, never truncated
	field.Options[OptionPreviews] = map[string]any{
		"thumb": map[string]any{"max_width": 200.5},
	}
	_, _, err = field.PreviewsOption()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "max_width must be an integer")
}
