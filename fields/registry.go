// Package fields implements the typed field system for space schemas: a
// registry of field types, each with its own definition validation and
// raw-value parsing rules.
package fields

import (
	"regexp"
	"time"

	"spacenote-api/errs"
	"spacenote-api/models"
)

// Context carries the caller-side data needed to validate a value: the space
// being written to, its current members, and the identity of the caller.
// It is threaded explicitly through every call; validators hold no state.
type Context struct {
	Space         *models.Space
	Members       []models.User
	CurrentUserID string // empty when there is no logged-in user context
}

// Member resolves a user id to a member of the space, or nil.
func (c Context) Member(userID string) *models.User {
	for i := range c.Members {
		if c.Members[i].ID == userID {
			return &c.Members[i]
		}
	}
	return nil
}

// MemberByUsername resolves a username to a member of the space, or nil.
func (c Context) MemberByUsername(username string) *models.User {
	for i := range c.Members {
		if c.Members[i].Username == username {
			return &c.Members[i]
		}
	}
	return nil
}

// Validator is the per-type contract: both operations are pure and must be
// safe for concurrent use.
type Validator interface {
	// ValidateDefinition checks a field definition's structural rules and
	// returns a possibly-normalized copy. It is idempotent.
	ValidateDefinition(field models.SpaceField, ctx Context) (models.SpaceField, error)

	// parseRaw converts a non-nil raw string into the typed value. The
	// universal empty/required/default rules are applied by the Registry
	// before dispatch.
	parseRaw(field models.SpaceField, raw string, ctx Context) (models.FieldValue, error)
}

// Registry maps each field type to its validator. It is built once at
// startup and passed by reference into everything that validates fields.
type Registry struct {
	validators map[models.FieldType]Validator
}

// NewRegistry builds the dispatch table covering every supported field type.
func NewRegistry() *Registry {
	return &Registry{validators: map[models.FieldType]Validator{
		models.FieldTypeString:   stringValidator{},
		models.FieldTypeMarkdown: stringValidator{},
		models.FieldTypeBoolean:  booleanValidator{},
		models.FieldTypeInt:      intValidator{},
		models.FieldTypeFloat:    floatValidator{},
		models.FieldTypeSelect:   selectValidator{},
		models.FieldTypeTags:     tagsValidator{},
		models.FieldTypeUser:     userValidator{},
		models.FieldTypeDatetime: datetimeValidator{},
		models.FieldTypeImage:    imageValidator{},
	}}
}

// Validator returns the validator for a field type.
func (r *Registry) Validator(fieldType models.FieldType) (Validator, error) {
	v, ok := r.validators[fieldType]
	if !ok {
		return nil, errs.Validationf("Unknown field type: %s", fieldType)
	}
	return v, nil
}

// ValidateDefinition validates and normalizes a field definition.
func (r *Registry) ValidateDefinition(field models.SpaceField, ctx Context) (models.SpaceField, error) {
	v, err := r.Validator(field.Type)
	if err != nil {
		return field, err
	}
	return v.ValidateDefinition(field, ctx)
}

// ParseValue converts a raw client string into the field's typed value.
// A nil raw value falls back to the field default (resolving special tokens)
// or fails for required fields; an empty string on a non-required field
// yields nil and never falls back to the default.
func (r *Registry) ParseValue(field models.SpaceField, raw *string, ctx Context) (models.FieldValue, error) {
	v, err := r.Validator(field.Type)
	if err != nil {
		return nil, err
	}
	if raw == nil {
		if field.Default != nil {
			return resolveDefault(field, ctx)
		}
		if field.Required {
			// tags degrade to an empty list rather than failing
			if field.Type == models.FieldTypeTags {
				return []string{}, nil
			}
			return nil, errs.Validationf("Required field missing: %s", field.ID)
		}
		return nil, nil
	}
	if *raw == "" && !field.Required {
		return nil, nil
	}
	return v.parseRaw(field, *raw, ctx)
}

// ParseRawFields parses raw string fields into typed values based on the
// space field definitions. With partial set, only the provided fields are
// parsed (updates); otherwise every defined field is parsed, applying
// defaults and required checks (creation).
func (r *Registry) ParseRawFields(spaceFields []models.SpaceField, raw map[string]string, ctx Context, partial bool) (map[string]models.FieldValue, error) {
	defined := make(map[string]bool, len(spaceFields))
	for _, f := range spaceFields {
		defined[f.ID] = true
	}
	for id := range raw {
		if !defined[id] {
			return nil, errs.Validationf("Unknown field: %s", id)
		}
	}

	parsed := make(map[string]models.FieldValue)
	for _, field := range spaceFields {
		value, ok := raw[field.ID]
		if partial && !ok {
			continue
		}
		var rawPtr *string
		if ok {
			rawPtr = &value
		}
		parsedValue, err := r.ParseValue(field, rawPtr, ctx)
		if err != nil {
			return nil, err
		}
		parsed[field.ID] = parsedValue
	}
	return parsed, nil
}

// resolveDefault resolves a field default, substituting special tokens using
// the caller context.
func resolveDefault(field models.SpaceField, ctx Context) (models.FieldValue, error) {
	token, isString := field.Default.(string)
	if !isString {
		return field.Default, nil
	}
	switch {
	case field.Type == models.FieldTypeDatetime && token == models.SpecialNow:
		return time.Now().UTC(), nil
	case field.Type == models.FieldTypeUser && token == models.SpecialMe:
		return resolveMe(field, ctx)
	default:
		return field.Default, nil
	}
}

var fieldIDRe = regexp.MustCompile(`^[A-Za-z0-9_]+$`)

// validateFieldID checks the shared field id format rule.
func validateFieldID(field models.SpaceField) error {
	if !fieldIDRe.MatchString(field.ID) {
		return errs.Validationf("Invalid field id: %q", field.ID)
	}
	return nil
}
