package models

import (
	"spacenote-api/errs"
)

// FieldType enumerates the supported field types of a space schema.
type FieldType string

const (
	FieldTypeString   FieldType = "string"
	FieldTypeMarkdown FieldType = "markdown"
	FieldTypeBoolean  FieldType = "boolean"
	FieldTypeSelect   FieldType = "select"
	FieldTypeTags     FieldType = "tags"
	FieldTypeUser     FieldType = "user"
	FieldTypeDatetime FieldType = "datetime"
	FieldTypeInt      FieldType = "int"
	FieldTypeFloat    FieldType = "float"
	FieldTypeImage    FieldType = "image"
)

// FieldOption enumerates the per-type configuration keys of a field
// definition.
type FieldOption string

const (
	OptionValues   FieldOption = "values"   // select, tags: allowed values
	OptionMin      FieldOption = "min"      // int, float: inclusive lower bound
	OptionMax      FieldOption = "max"      // int, float: inclusive upper bound
	OptionPreviews FieldOption = "previews" // image: named preview variants
)

// Special tokens substituted at validation and query time.
const (
	SpecialMe  = "$me"  // user fields: the calling user
	SpecialNow = "$now" // datetime fields: the current UTC instant
)

// FieldValue is a parsed, typed field value. The concrete type depends on
// the field type: string, bool, int64, float64, []string or time.Time.
type FieldValue = any

// ImagePreview declares one preview variant of an image field.
type ImagePreview struct {
	MaxWidth int `json:"max_width" bson:"max_width"`
}

// SpaceField is one field definition in a space schema.
type SpaceField struct {
	ID       string              `json:"id" bson:"id"`
	Type     FieldType           `json:"type" bson:"type"`
	Required bool                `json:"required" bson:"required"`
	Options  map[FieldOption]any `json:"options,omitempty" bson:"options,omitempty"`
	Default  FieldValue          `json:"default,omitempty" bson:"default,omitempty"`
}

// StringListOption reads a list-of-strings option. Values decoded from JSON
// or BSON arrive as []any and are converted.
func (f SpaceField) StringListOption(key FieldOption) ([]string, bool, error) {
	raw, ok := f.Options[key]
	if !ok || raw == nil {
		return nil, false, nil
	}
	switch v := raw.(type) {
	case []string:
		return v, true, nil
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			s, isString := item.(string)
			if !isString {
				return nil, false, errs.Validationf("Option '%s' of field '%s' must be a list of strings", key, f.ID)
			}
			out = append(out, s)
		}
		return out, true, nil
	}
	return nil, false, errs.Validationf("Option '%s' of field '%s' must be a list of strings", key, f.ID)
}

// NumberOption reads a numeric option, tolerating the integer and float
// representations produced by JSON and BSON decoding.
func (f SpaceField) NumberOption(key FieldOption) (float64, bool, error) {
	raw, ok := f.Options[key]
	if !ok || raw == nil {
		return 0, false, nil
	}
	value, ok := asNumber(raw)
	if !ok {
		return 0, false, errs.Validationf("Option '%s' of field '%s' must be a number", key, f.ID)
	}
	return value, true, nil
}

// PreviewsOption reads the image preview variants, tolerating the generic
// map shape produced by JSON and BSON decoding.
func (f SpaceField) PreviewsOption() (map[string]ImagePreview, bool, error) {
	raw, ok := f.Options[OptionPreviews]
	if !ok || raw == nil {
		return nil, false, nil
	}
	switch v := raw.(type) {
	case map[string]ImagePreview:
		return v, true, nil
	case map[string]any:
		out := make(map[string]ImagePreview, len(v))
		for name, item := range v {
			spec, isMap := item.(map[string]any)
			if !isMap {
				return nil, false, errs.Validationf("Option 'previews' of field '%s' must map names to preview specs", f.ID)
			}
			width, isNumber := asNumber(spec["max_width"])
			if !isNumber || width != float64(int(width)) {
				return nil, false, errs.Validationf("Preview '%s' of field '%s' max_width must be an integer", name, f.ID)
			}
			out[name] = ImagePreview{MaxWidth: int(width)}
		}
		return out, true, nil
	}
	return nil, false, errs.Validationf("Option 'previews' of field '%s' must map names to preview specs", f.ID)
}

func asNumber(raw any) (float64, bool) {
	switch v := raw.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	}
	return 0, false
}
