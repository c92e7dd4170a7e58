package filters

import (
	"regexp"
	"time"

	"github.com/google/uuid"

	"spacenote-api/errs"
	"spacenote-api/fields"
	"spacenote-api/models"
)

var filterIDRe = regexp.MustCompile(`^[A-Za-z0-9_]+$`)

// ValidateFilter checks a saved filter before it is attached to a space:
// every condition must reference a known field with a compatible operator and
// a structurally valid value, and sort/list fields must exist. This is a
// structural pass; per-operator value-shape validation happens separately
// when an ad-hoc query is parsed.
func ValidateFilter(filter *models.Filter, space *models.Space) error {
	if !filterIDRe.MatchString(filter.ID) {
		return errs.Validationf("Invalid filter id: %q", filter.ID)
	}
	for _, cond := range filter.Conditions {
		if err := ValidateFilterCondition(cond, space); err != nil {
			return err
		}
	}
	for _, sortField := range filter.Sort {
		id := sortField
		if len(id) > 0 && id[0] == '-' {
			id = id[1:]
		}
		if resolveField(space, id) == nil {
			return errs.Validationf("Unknown sort field: %s", sortField)
		}
	}
	for _, listField := range filter.ListFields {
		if resolveField(space, listField) == nil {
			return errs.Validationf("Unknown list field: %s", listField)
		}
	}
	return nil
}

// ValidateFilterCondition checks one stored condition against the space
// schema: known field, compatible operator, and a value whose shape matches
// the operator. Allowed-values membership is only enforced for scalar
// equality here; list membership is the ad-hoc pass's concern.
func ValidateFilterCondition(cond models.FilterCondition, space *models.Space) error {
	field := resolveField(space, cond.Field)
	if field == nil {
		return errs.Validationf("Unknown field in filter condition: %s", cond.Field)
	}
	if _, err := models.ParseFilterOperator(string(cond.Operator)); err != nil {
		return err
	}
	if !models.FieldTypeOperators[field.Type][cond.Operator] {
		return errs.Validationf("Operator '%s' is not valid for field type '%s'", cond.Operator, field.Type)
	}

	isList := isListValue(cond.Value)
	if cond.Operator.IsListOperator() {
		if !isList {
			return errs.Validationf("Operator '%s' on field '%s' expects a list value", cond.Operator, cond.Field)
		}
		return nil
	}
	if isList {
		return errs.Validationf("Operator '%s' on field '%s' expects a scalar value", cond.Operator, cond.Field)
	}

	if field.Type == models.FieldTypeSelect && cond.Operator == models.OpEq {
		choice, ok := cond.Value.(string)
		if ok {
			values, _, err := field.StringListOption(models.OptionValues)
			if err != nil {
				return err
			}
			if !stringInList(values, choice) {
				return errs.Validationf("Value '%s' for field '%s' is not one of the allowed values", choice, cond.Field)
			}
		}
	}
	return nil
}

// validateAdhocValue checks a coerced ad-hoc value against the field's type
// and operator, normalizing where storage requires it: usernames become user
// ids, datetime strings become instants, JSON arrays become string lists.
func validateAdhocValue(field *models.SpaceField, operator models.FilterOperator, value models.FieldValue, members []models.User) (models.FieldValue, error) {
	if value == nil {
		if operator == models.OpEq || operator == models.OpNe {
			return nil, nil
		}
		return nil, errs.Validationf("Operator '%s' on field '%s' does not accept null", operator, field.ID)
	}

	if operator.IsListOperator() {
		list, ok := value.([]any)
		if !ok {
			return nil, errs.Validationf("Operator '%s' on field '%s' expects a list value", operator, field.ID)
		}
		items, err := toStringList(field, list)
		if err != nil {
			return nil, err
		}
		if field.Type == models.FieldTypeSelect || field.Type == models.FieldTypeTags {
			allowed, restricted, err := field.StringListOption(models.OptionValues)
			if err != nil {
				return nil, err
			}
			if restricted && len(allowed) > 0 {
				for _, item := range items {
					if !stringInList(allowed, item) {
						return nil, errs.Validationf("Value '%s' for field '%s' is not one of the allowed values", item, field.ID)
					}
				}
			}
		}
		return items, nil
	}

	switch field.Type {
	case models.FieldTypeString, models.FieldTypeMarkdown:
		s, ok := value.(string)
		if !ok {
			return nil, errs.Validationf("Field '%s' expects a string value, got: %v", field.ID, value)
		}
		return s, nil

	case models.FieldTypeBoolean:
		if _, ok := value.(bool); !ok {
			return nil, errs.Validationf("Field '%s' expects a boolean value, got: %v", field.ID, value)
		}
		return value, nil

	case models.FieldTypeInt:
		if _, ok := value.(int64); !ok {
			return nil, errs.Validationf("Field '%s' expects an integer value, got: %v", field.ID, value)
		}
		return value, nil

	case models.FieldTypeFloat:
		switch v := value.(type) {
		case float64:
			return v, nil
		case int64:
			return float64(v), nil
		}
		return nil, errs.Validationf("Field '%s' expects a numeric value, got: %v", field.ID, value)

	case models.FieldTypeSelect:
		choice, ok := value.(string)
		if !ok {
			return nil, errs.Validationf("Field '%s' expects a string value, got: %v", field.ID, value)
		}
		values, _, err := field.StringListOption(models.OptionValues)
		if err != nil {
			return nil, err
		}
		if !stringInList(values, choice) {
			return nil, errs.Validationf("Value '%s' for field '%s' is not one of the allowed values", choice, field.ID)
		}
		return choice, nil

	case models.FieldTypeTags:
		if s, ok := value.(string); ok {
			return s, nil
		}
		return nil, errs.Validationf("Field '%s' expects a string value, got: %v", field.ID, value)

	case models.FieldTypeUser:
		token, ok := value.(string)
		if !ok {
			return nil, errs.Validationf("Field '%s' expects a user id, username or '%s'", field.ID, models.SpecialMe)
		}
		if token == models.SpecialMe {
			return token, nil // substituted at query-build time
		}
		if _, err := uuid.Parse(token); err == nil {
			return token, nil
		}
		for _, member := range members {
			if member.Username == token {
				return member.ID, nil
			}
		}
		return nil, errs.Validationf("User '%s' not found or not a member of this space", token)

	case models.FieldTypeDatetime:
		token, ok := value.(string)
		if !ok {
			return nil, errs.Validationf("Field '%s' expects a datetime value, got: %v", field.ID, value)
		}
		if token == models.SpecialNow {
			return time.Now().UTC(), nil
		}
		parsed, err := fields.ParseDatetime(token)
		if err != nil {
			return nil, errs.Validationf("Invalid datetime format for field '%s': %s", field.ID, token)
		}
		return parsed, nil

	case models.FieldTypeImage:
		token, ok := value.(string)
		if !ok {
			return nil, errs.Validationf("Field '%s' expects an attachment id, got: %v", field.ID, value)
		}
		if _, err := uuid.Parse(token); err != nil {
			return nil, errs.Validationf("Invalid attachment id for field '%s': %s", field.ID, token)
		}
		return token, nil
	}
	return nil, errs.Validationf("Unknown field type: %s", field.Type)
}

func resolveField(space *models.Space, id string) *models.SpaceField {
	if field := space.GetField(id); field != nil {
		return field
	}
	return models.SystemField(id)
}

func isListValue(value models.FieldValue) bool {
	switch value.(type) {
	case []any, []string:
		return true
	}
	return false
}

func stringInList(values []string, want string) bool {
	for _, v := range values {
		if v == want {
			return true
		}
	}
	return false
}

func toStringList(field *models.SpaceField, list []any) ([]string, error) {
	items := make([]string, 0, len(list))
	for _, item := range list {
		s, ok := item.(string)
		if !ok {
			return nil, errs.Validationf("Field '%s' expects a list of strings, got: %v", field.ID, item)
		}
		items = append(items, s)
	}
	return items, nil
}
