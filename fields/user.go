package fields

import (
	"github.com/google/uuid"

	"spacenote-api/errs"
	"spacenote-api/models"
)

// userValidator stores a user field as the member's user id. Raw input may
// be a user id, a username, or the $me token.
type userValidator struct{}

func (userValidator) ValidateDefinition(field models.SpaceField, _ Context) (models.SpaceField, error) {
	if err := validateFieldID(field); err != nil {
		return field, err
	}
	if field.Default != nil {
		if _, ok := field.Default.(string); !ok {
			return field, errs.Validationf("Default for field '%s' must be a user id, username or '%s'",
				field.ID, models.SpecialMe)
		}
	}
	return field, nil
}

func (userValidator) parseRaw(field models.SpaceField, raw string, ctx Context) (models.FieldValue, error) {
	if raw == models.SpecialMe {
		return resolveMe(field, ctx)
	}
	if _, err := uuid.Parse(raw); err == nil {
		if ctx.Member(raw) == nil {
			return nil, errs.Validationf("User '%s' is not a member of this space", raw)
		}
		return raw, nil
	}
	if member := ctx.MemberByUsername(raw); member != nil {
		return member.ID, nil
	}
	return nil, errs.Validationf("User '%s' not found or not a member of this space", raw)
}

// resolveMe substitutes the $me token with the calling user, who must be a
// member of the space.
func resolveMe(_ models.SpaceField, ctx Context) (models.FieldValue, error) {
	if ctx.CurrentUserID == "" {
		return nil, errs.Validationf("Cannot use '%s' without a logged-in user context", models.SpecialMe)
	}
	if ctx.Member(ctx.CurrentUserID) == nil {
		return nil, errs.Validationf("User '%s' is not a member of this space", ctx.CurrentUserID)
	}
	return ctx.CurrentUserID, nil
}

// imageValidator stores an image field as the attachment id of the uploaded
// image. Preview variants are declared on the field definition.
type imageValidator struct{}

func (imageValidator) ValidateDefinition(field models.SpaceField, _ Context) (models.SpaceField, error) {
	if err := validateFieldID(field); err != nil {
		return field, err
	}
	previews, ok, err := field.PreviewsOption()
	if err != nil {
		return field, err
	}
	if !ok || len(previews) == 0 {
		return field, errs.Validationf("Image field '%s' must have a non-empty 'previews' option", field.ID)
	}
	for name, preview := range previews {
		if preview.MaxWidth <= 0 {
			return field, errs.Validationf("Preview '%s' of field '%s' max_width must be a positive integer",
				name, field.ID)
		}
	}
	return field, nil
}

func (imageValidator) parseRaw(field models.SpaceField, raw string, _ Context) (models.FieldValue, error) {
	if _, err := uuid.Parse(raw); err != nil {
		return nil, errs.Validationf("Invalid attachment id for field '%s': %s", field.ID, raw)
	}
	return raw, nil
}
