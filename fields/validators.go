package fields

import (
	"strconv"
	"strings"

	"spacenote-api/errs"
	"spacenote-api/models"
)

// stringValidator handles both string and markdown fields: raw text is
// stored as-is.
type stringValidator struct{}

func (stringValidator) ValidateDefinition(field models.SpaceField, _ Context) (models.SpaceField, error) {
	if err := validateFieldID(field); err != nil {
		return field, err
	}
	if field.Default != nil {
		if _, ok := field.Default.(string); !ok {
			return field, errs.Validationf("Default for field '%s' must be a string", field.ID)
		}
	}
	return field, nil
}

func (stringValidator) parseRaw(_ models.SpaceField, raw string, _ Context) (models.FieldValue, error) {
	return raw, nil
}

type booleanValidator struct{}

func (booleanValidator) ValidateDefinition(field models.SpaceField, _ Context) (models.SpaceField, error) {
	if err := validateFieldID(field); err != nil {
		return field, err
	}
	if field.Default != nil {
		if _, ok := field.Default.(bool); !ok {
			return field, errs.Validationf("Default for field '%s' must be a boolean", field.ID)
		}
	}
	return field, nil
}

func (booleanValidator) parseRaw(field models.SpaceField, raw string, _ Context) (models.FieldValue, error) {
	switch strings.ToLower(raw) {
	case "true", "1", "yes", "on":
		return true, nil
	case "false", "0", "no", "off", "":
		return false, nil
	}
	return nil, errs.Validationf("Invalid boolean value for field '%s': %s", field.ID, raw)
}

type intValidator struct{}

func (intValidator) ValidateDefinition(field models.SpaceField, _ Context) (models.SpaceField, error) {
	if err := validateFieldID(field); err != nil {
		return field, err
	}
	if err := validateNumericBounds(field); err != nil {
		return field, err
	}
	return field, nil
}

func (intValidator) parseRaw(field models.SpaceField, raw string, _ Context) (models.FieldValue, error) {
	value, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, errs.Validationf("Invalid integer value for field '%s': %s", field.ID, raw)
	}
	if err := checkNumericRange(field, float64(value), value); err != nil {
		return nil, err
	}
	return value, nil
}

type floatValidator struct{}

func (floatValidator) ValidateDefinition(field models.SpaceField, _ Context) (models.SpaceField, error) {
	if err := validateFieldID(field); err != nil {
		return field, err
	}
	if err := validateNumericBounds(field); err != nil {
		return field, err
	}
	return field, nil
}

func (floatValidator) parseRaw(field models.SpaceField, raw string, _ Context) (models.FieldValue, error) {
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, errs.Validationf("Invalid float value for field '%s': %s", field.ID, raw)
	}
	if err := checkNumericRange(field, value, value); err != nil {
		return nil, err
	}
	return value, nil
}

// validateNumericBounds checks that min/max options, when present, are
// numbers and form a non-empty range.
func validateNumericBounds(field models.SpaceField) error {
	min, hasMin, err := field.NumberOption(models.OptionMin)
	if err != nil {
		return err
	}
	max, hasMax, err := field.NumberOption(models.OptionMax)
	if err != nil {
		return err
	}
	if hasMin && hasMax && min > max {
		return errs.Validationf("Field '%s' has min greater than max: %v > %v", field.ID, min, max)
	}
	return nil
}

// checkNumericRange enforces the min/max options against a parsed value.
// display carries the original typed value for error messages.
func checkNumericRange(field models.SpaceField, value float64, display any) error {
	if min, ok, _ := field.NumberOption(models.OptionMin); ok && value < min {
		return errs.Validationf("Value for field '%s' is below minimum: %v < %v", field.ID, display, min)
	}
	if max, ok, _ := field.NumberOption(models.OptionMax); ok && value > max {
		return errs.Validationf("Value for field '%s' is above maximum: %v > %v", field.ID, display, max)
	}
	return nil
}

type selectValidator struct{}

func (selectValidator) ValidateDefinition(field models.SpaceField, _ Context) (models.SpaceField, error) {
	if err := validateFieldID(field); err != nil {
		return field, err
	}
	values, ok, err := field.StringListOption(models.OptionValues)
	if err != nil {
		return field, err
	}
	if !ok || len(values) == 0 {
		return field, errs.Validationf("Select field '%s' must have a non-empty 'values' option", field.ID)
	}
	if field.Default != nil {
		choice, isString := field.Default.(string)
		if !isString || !containsString(values, choice) {
			return field, errs.Validationf("Default for field '%s' must be one of the allowed values", field.ID)
		}
	}
	return field, nil
}

func (selectValidator) parseRaw(field models.SpaceField, raw string, _ Context) (models.FieldValue, error) {
	values, _, err := field.StringListOption(models.OptionValues)
	if err != nil {
		return nil, err
	}
	if !containsString(values, raw) {
		return nil, errs.Validationf("Invalid choice for field '%s': '%s'. Allowed values: %s",
			field.ID, raw, strings.Join(values, ", "))
	}
	return raw, nil
}

// tagsValidator parses comma-separated tags: trimmed, empties dropped,
// duplicates removed keeping first-seen order.
type tagsValidator struct{}

func (tagsValidator) ValidateDefinition(field models.SpaceField, _ Context) (models.SpaceField, error) {
	if err := validateFieldID(field); err != nil {
		return field, err
	}
	if _, _, err := field.StringListOption(models.OptionValues); err != nil {
		return field, err
	}
	return field, nil
}

func (tagsValidator) parseRaw(field models.SpaceField, raw string, _ Context) (models.FieldValue, error) {
	tags := []string{}
	seen := make(map[string]bool)
	for _, part := range strings.Split(raw, ",") {
		tag := strings.TrimSpace(part)
		if tag == "" || seen[tag] {
			continue
		}
		seen[tag] = true
		tags = append(tags, tag)
	}

	allowed, restricted, err := field.StringListOption(models.OptionValues)
	if err != nil {
		return nil, err
	}
	if restricted && len(allowed) > 0 {
		var invalid []string
		for _, tag := range tags {
			if !containsString(allowed, tag) {
				invalid = append(invalid, tag)
			}
		}
		if len(invalid) > 0 {
			return nil, errs.Validationf("Invalid tags for field '%s': %s. Allowed values: %s",
				field.ID, strings.Join(invalid, ", "), strings.Join(allowed, ", "))
		}
	}
	return tags, nil
}

func containsString(values []string, want string) bool {
	for _, v := range values {
		if v == want {
			return true
		}
	}
	return false
}
