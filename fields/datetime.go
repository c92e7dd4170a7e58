package fields

import (
	"strings"
	"time"

	"spacenote-api/errs"
	"spacenote-api/models"
)

// datetimeLayouts are the accepted input shapes. time.Parse also consumes an
// optional fractional-second part after the seconds, so these cover inputs
// like "2025-10-20T14:30:00.123456".
var datetimeLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// datetimeValidator parses naive ISO-style datetimes into UTC instants.
// Explicit UTC offsets are rejected; a trailing "Z" is accepted.
type datetimeValidator struct{}

func (datetimeValidator) ValidateDefinition(field models.SpaceField, _ Context) (models.SpaceField, error) {
	if err := validateFieldID(field); err != nil {
		return field, err
	}
	if field.Default != nil {
		token, ok := field.Default.(string)
		if !ok {
			return field, errs.Validationf("Default for field '%s' must be a datetime string or '%s'",
				field.ID, models.SpecialNow)
		}
		if token != models.SpecialNow {
			if _, err := ParseDatetime(token); err != nil {
				return field, errs.Validationf("Invalid datetime default for field '%s': %s", field.ID, token)
			}
		}
	}
	return field, nil
}

func (datetimeValidator) parseRaw(field models.SpaceField, raw string, _ Context) (models.FieldValue, error) {
	if raw == models.SpecialNow {
		return time.Now().UTC(), nil
	}
	value, err := ParseDatetime(raw)
	if err != nil {
		return nil, errs.Validationf("Invalid datetime format for field '%s': %s", field.ID, raw)
	}
	return value, nil
}

// ParseDatetime parses a raw datetime string against the accepted layouts.
// The trailing "Z" is only valid on the T-separated form.
func ParseDatetime(raw string) (time.Time, error) {
	input := raw
	if strings.Contains(raw, "T") {
		input = strings.TrimSuffix(raw, "Z")
	}
	var lastErr error
	for _, layout := range datetimeLayouts {
		value, err := time.Parse(layout, input)
		if err == nil {
			return value.UTC(), nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}
