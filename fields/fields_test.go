package fields

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

func testContext() Context {
	space := &models.Space{ID: "space-1", Members: []string{aliceID, bobID}}
	return Context{
		Space: space,
		Members: []models.User{
			{ID: aliceID, Username: "alice"},
			{ID: bobID, Username: "bob"},
		},
		CurrentUserID: aliceID,
	}
}

func parse(t *testing.T, field models.SpaceField, raw string) (models.FieldValue, error) {
	t.Helper()
	return NewRegistry().ParseValue(field, &raw, testContext())
}

func TestStringField(t *testing.T) {
	field := models.SpaceField{ID: "title", Type: models.FieldTypeString}

	value, err := parse(t, field, "hello world")
	require.NoError(t, err)
	assert.Equal(t, "hello world", value)

	// empty string on an optional field is absent, not ""
	value, err = parse(t, field, "")
	require.NoError(t, err)
	assert.Nil(t, value)

	field.Required = true
	value, err = parse(t, field, "")
	require.NoError(t, err)
	assert.Equal(t, "", value)
}

func TestMarkdownField(t *testing.T) {
	field := models.SpaceField{ID: "body", Type: models.FieldTypeMarkdown}

	value, err := parse(t, field, "# Heading\n\nSome *text*.")
	require.NoError(t, err)
	assert.Equal(t, "# Heading\n\nSome *text*.", value)
}

func TestValidateDefinitionIdempotent(t *testing.T) {
	reg := NewRegistry()
	ctx := testContext()

	cases := []models.SpaceField{
		{ID: "title", Type: models.FieldTypeString, Required: true, Default: "untitled"},
		{ID: "body", Type: models.FieldTypeMarkdown},
		{ID: "done", Type: models.FieldTypeBoolean, Default: false},
		{ID: "status", Type: models.FieldTypeSelect,
			Options: map[models.FieldOption]any{models.OptionValues: []string{"open", "closed"}},
			Default: "open"},
		{ID: "tags", Type: models.FieldTypeTags,
			Options: map[models.FieldOption]any{models.OptionValues: []string{"bug", "feature"}}},
		{ID: "assignee", Type: models.FieldTypeUser, Default: models.SpecialMe},
		{ID: "due", Type: models.FieldTypeDatetime, Default: models.SpecialNow},
		{ID: "priority", Type: models.FieldTypeInt,
			Options: map[models.FieldOption]any{models.OptionMin: 1, models.OptionMax: 5}},
		{ID: "score", Type: models.FieldTypeFloat,
			Options: map[models.FieldOption]any{models.OptionMin: 0.0, models.OptionMax: 10.0}},
		{ID: "cover", Type: models.FieldTypeImage,
			Options: map[models.FieldOption]any{
				models.OptionPreviews: map[string]models.ImagePreview{"thumb": {MaxWidth: 200}},
			}},
	}

	for _, field := range cases {
		once, err := reg.ValidateDefinition(field, ctx)
		require.NoError(t, err, field.Type)
		twice, err := reg.ValidateDefinition(once, ctx)
		require.NoError(t, err, field.Type)
		assert.Equal(t, once, twice, field.Type)
	}
}

func TestBooleanField(t *testing.T) {
	field := models.SpaceField{ID: "done", Type: models.FieldTypeBoolean}

	for _, raw := range []string{"true", "1", "yes", "on", "TRUE", "Yes"} {
		value, err := parse(t, field, raw)
		require.NoError(t, err, raw)
		assert.Equal(t, true, value, raw)
	}
	for _, raw := range []string{"false", "0", "no", "off", "False"} {
		value, err := parse(t, field, raw)
		require.NoError(t, err, raw)
		assert.Equal(t, false, value, raw)
	}

	// empty string on a required boolean is false, on an optional one absent
	field.Required = true
	value, err := parse(t, field, "")
	require.NoError(t, err)
	assert.Equal(t, false, value)

	_, err = parse(t, field, "maybe")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Invalid boolean value for field 'done': maybe")
}

func TestIntField(t *testing.T) {
	field := models.SpaceField{
		ID:   "priority",
		Type: models.FieldTypeInt,
		Options: map[models.FieldOption]any{
			models.OptionMin: 1,
			models.OptionMax: 5,
		},
	}

	value, err := parse(t, field, "3")
	require.NoError(t, err)
	assert.Equal(t, int64(3), value)

	_, err = parse(t, field, "0")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "below minimum: 0 < 1")

	_, err = parse(t, field, "6")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "above maximum: 6 > 5")

	_, err = parse(t, field, "3.5")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Invalid integer value")

	_, err = parse(t, field, "abc")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Invalid integer value for field 'priority': abc")
}

func TestFloatField(t *testing.T) {
	field := models.SpaceField{
		ID:   "score",
		Type: models.FieldTypeFloat,
		Options: map[models.FieldOption]any{
			models.OptionMin: 0.0,
			models.OptionMax: 10.0,
		},
	}

	value, err := parse(t, field, "7.25")
	require.NoError(t, err)
	assert.Equal(t, 7.25, value)

	value, err = parse(t, field, "7")
	require.NoError(t, err)
	assert.Equal(t, 7.0, value)

	_, err = parse(t, field, "10.5")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "above maximum")

	_, err = parse(t, field, "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Invalid float value")
}

func TestSelectField(t *testing.T) {
	field := models.SpaceField{
		ID:   "status",
		Type: models.FieldTypeSelect,
		Options: map[models.FieldOption]any{
			models.OptionValues: []string{"open", "closed"},
		},
	}

	value, err := parse(t, field, "open")
	require.NoError(t, err)
	assert.Equal(t, "open", value)

	_, err = parse(t, field, "pending")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Invalid choice for field 'status': 'pending'. Allowed values: open, closed")
}

func TestSelectDefinitionRequiresValues(t *testing.T) {
	reg := NewRegistry()

	_, err := reg.ValidateDefinition(models.SpaceField{ID: "status", Type: models.FieldTypeSelect}, testContext())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "non-empty 'values' option")

	_, err = reg.ValidateDefinition(models.SpaceField{
		ID:      "status",
		Type:    models.FieldTypeSelect,
		Options: map[models.FieldOption]any{models.OptionValues: []string{"open"}},
		Default: "closed",
	}, testContext())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must be one of the allowed values")
}

func TestTagsField(t *testing.T) {
	field := models.SpaceField{ID: "tags", Type: models.FieldTypeTags}

	value, err := parse(t, field, "go, api, go ,db")
	require.NoError(t, err)
	assert.Equal(t, []string{"go", "api", "db"}, value)

	// separators only collapse to an empty list
	value, err = parse(t, field, ",,,")
	require.NoError(t, err)
	assert.Equal(t, []string{}, value)

	// required + empty string still yields an empty list, not an error
	field.Required = true
	value, err = parse(t, field, "")
	require.NoError(t, err)
	assert.Equal(t, []string{}, value)

	// required + absent value also degrades to an empty list
	value, err = NewRegistry().ParseValue(field, nil, testContext())
	require.NoError(t, err)
	assert.Equal(t, []string{}, value)
}

func TestTagsFieldRestrictedValues(t *testing.T) {
	field := models.SpaceField{
		ID:   "tags",
		Type: models.FieldTypeTags,
		Options: map[models.FieldOption]any{
			models.OptionValues: []string{"bug", "feature"},
		},
	}

	value, err := parse(t, field, "bug,feature")
	require.NoError(t, err)
	assert.Equal(t, []string{"bug", "feature"}, value)

	_, err = parse(t, field, "bug,urgent,wip")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Invalid tags for field 'tags': urgent, wip. Allowed values: bug, feature")
}

func TestUserField(t *testing.T) {
	field := models.SpaceField{ID: "assignee", Type: models.FieldTypeUser}

	value, err := parse(t, field, aliceID)
	require.NoError(t, err)
	assert.Equal(t, aliceID, value)

	value, err = parse(t, field, "bob")
	require.NoError(t, err)
	assert.Equal(t, bobID, value)

	value, err = parse(t, field, models.SpecialMe)
	require.NoError(t, err)
	assert.Equal(t, aliceID, value)

	stranger := "7caf9dbf-3e4f-4051-acbd-2e3f4a5b6c7d"
	_, err = parse(t, field, stranger)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "is not a member of this space")

	_, err = parse(t, field, "mallory")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found or not a member of this space")
}

func TestUserFieldMeWithoutContext(t *testing.T) {
	field := models.SpaceField{ID: "assignee", Type: models.FieldTypeUser}
	ctx := testContext()
	ctx.CurrentUserID = ""

	raw := models.SpecialMe
	_, err := NewRegistry().ParseValue(field, &raw, ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Cannot use '$me' without a logged-in user context")
}

func TestDatetimeField(t *testing.T) {
	field := models.SpaceField{ID: "due", Type: models.FieldTypeDatetime}

	for raw, want := range map[string]time.Time{
		"2025-10-20T14:30:00":        time.Date(2025, 10, 20, 14, 30, 0, 0, time.UTC),
		"2025-10-20 14:30:00":        time.Date(2025, 10, 20, 14, 30, 0, 0, time.UTC),
		"2025-10-20":                 time.Date(2025, 10, 20, 0, 0, 0, 0, time.UTC),
		"2025-10-20T14:30:00Z":       time.Date(2025, 10, 20, 14, 30, 0, 0, time.UTC),
		"2025-10-20T14:30:00.123456": time.Date(2025, 10, 20, 14, 30, 0, 123456000, time.UTC),
	} {
		value, err := parse(t, field, raw)
		require.NoError(t, err, raw)
		assert.Equal(t, want, value, raw)
	}

	// explicit UTC offsets are rejected, including +00:00, and a trailing Z
	// is only valid on the T-separated form
	for _, raw := range []string{
		"2025-10-20T14:30:00+03:00",
		"2025-10-20T14:30:00+00:00",
		"2025-10-20T14:30:00-05:00",
		"2025-10-20Z",
		"2025-10-20 14:30:00Z",
		"20-10-2025",
		"not a date",
	} {
		_, err := parse(t, field, raw)
		require.Error(t, err, raw)
		assert.Contains(t, err.Error(), "Invalid datetime format for field 'due'")
	}
}

func TestDatetimeNow(t *testing.T) {
	field := models.SpaceField{ID: "due", Type: models.FieldTypeDatetime}

	before := time.Now().UTC()
	value, err := parse(t, field, models.SpecialNow)
	require.NoError(t, err)
	parsed, ok := value.(time.Time)
	require.True(t, ok)
	assert.False(t, parsed.Before(before))
	assert.False(t, parsed.After(time.Now().UTC()))
}

func TestImageField(t *testing.T) {
	field := models.SpaceField{
		ID:   "cover",
		Type: models.FieldTypeImage,
		Options: map[models.FieldOption]any{
			models.OptionPreviews: map[string]models.ImagePreview{"thumb": {MaxWidth: 200}},
		},
	}

	attachmentID := "8dbfaec0-4f50-4162-bdce-3f4a5b6c7d8e"
	value, err := parse(t, field, attachmentID)
	require.NoError(t, err)
	assert.Equal(t, attachmentID, value)

	_, err = parse(t, field, "not-a-uuid")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Invalid attachment id for field 'cover'")
}

func TestImageDefinitionRequiresPreviews(t *testing.T) {
	reg := NewRegistry()

	_, err := reg.ValidateDefinition(models.SpaceField{ID: "cover", Type: models.FieldTypeImage}, testContext())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "non-empty 'previews' option")

	_, err = reg.ValidateDefinition(models.SpaceField{
		ID:   "cover",
		Type: models.FieldTypeImage,
		Options: map[models.FieldOption]any{
			models.OptionPreviews: map[string]any{"thumb": map[string]any{"max_width": 0}},
		},
	}, testContext())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "max_width must be a positive integer")
}

func TestFieldIDFormat(t *testing.T) {
	reg := NewRegistry()

	_, err := reg.ValidateDefinition(models.SpaceField{ID: "due-date", Type: models.FieldTypeString}, testContext())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Invalid field id")

	_, err = reg.ValidateDefinition(models.SpaceField{ID: "due_date_2", Type: models.FieldTypeString}, testContext())
	require.NoError(t, err)
}

func TestDefaults(t *testing.T) {
	reg := NewRegistry()
	ctx := testContext()

	// nil raw falls back to the default
	field := models.SpaceField{ID: "status", Type: models.FieldTypeSelect,
		Options: map[models.FieldOption]any{models.OptionValues: []string{"open", "closed"}},
		Default: "open"}
	value, err := reg.ParseValue(field, nil, ctx)
	require.NoError(t, err)
	assert.Equal(t, "open", value)

	// empty string never falls back to the default
	raw := ""
	value, err = reg.ParseValue(field, &raw, ctx)
	require.NoError(t, err)
	assert.Nil(t, value)

	// $now default resolves to the current instant
	due := models.SpaceField{ID: "due", Type: models.FieldTypeDatetime, Default: models.SpecialNow}
	value, err = reg.ParseValue(due, nil, ctx)
	require.NoError(t, err)
	_, ok := value.(time.Time)
	assert.True(t, ok)

	// $me default resolves to the calling user
	assignee := models.SpaceField{ID: "assignee", Type: models.FieldTypeUser, Default: models.SpecialMe}
	value, err = reg.ParseValue(assignee, nil, ctx)
	require.NoError(t, err)
	assert.Equal(t, aliceID, value)
}

func TestRequiredMissing(t *testing.T) {
	field := models.SpaceField{ID: "title", Type: models.FieldTypeString, Required: true}

	_, err := NewRegistry().ParseValue(field, nil, testContext())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Required field missing: title")
}

func TestParseRawFields(t *testing.T) {
	reg := NewRegistry()
	ctx := testContext()
	spaceFields := []models.SpaceField{
		{ID: "title", Type: models.FieldTypeString, Required: true},
		{ID: "priority", Type: models.FieldTypeInt, Default: 3},
		{ID: "tags", Type: models.FieldTypeTags},
	}

	parsed, err := reg.ParseRawFields(spaceFields, map[string]string{"title": "hello"}, ctx, false)
	require.NoError(t, err)
	assert.Equal(t, "hello", parsed["title"])
	assert.Equal(t, 3, parsed["priority"]) // default applied
	assert.Nil(t, parsed["tags"])
	assert.Len(t, parsed, 3)

	_, err = reg.ParseRawFields(spaceFields, map[string]string{"bogus": "x"}, ctx, false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Unknown field: bogus")

	_, err = reg.ParseRawFields(spaceFields, map[string]string{}, ctx, false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Required field missing: title")

	// partial mode only touches the provided fields
	parsed, err = reg.ParseRawFields(spaceFields, map[string]string{"tags": "a,b"}, ctx, true)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, parsed["tags"])
	assert.Len(t, parsed, 1)
}
