package filters

import (
	"encoding/json"
	"net/url"
	"strconv"
	"strings"

	"spacenote-api/errs"
	"spacenote-api/models"
)

// ParseAdhocQuery parses the compact textual query grammar into filter
// conditions. The grammar is "field:operator:value" pairs joined by commas;
// values are URL-encoded, so commas and colons inside a value never collide
// with the separators. Empty or whitespace-only input yields no conditions.
func ParseAdhocQuery(query string, space *models.Space, members []models.User) ([]models.FilterCondition, error) {
	query = strings.TrimSpace(query)
	conditions := []models.FilterCondition{}
	if query == "" {
		return conditions, nil
	}

	for _, part := range strings.Split(query, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		pieces := strings.SplitN(part, ":", 3)
		if len(pieces) != 3 {
			return nil, errs.Validationf("Invalid condition format: '%s'. Expected 'field:operator:value'", part)
		}
		fieldID, operatorToken, rawValue := pieces[0], pieces[1], pieces[2]

		field := space.GetField(fieldID)
		if field == nil {
			field = models.SystemField(fieldID)
		}
		if field == nil {
			return nil, errs.Validationf("Unknown field: %s", fieldID)
		}

		operator, err := models.ParseFilterOperator(operatorToken)
		if err != nil {
			return nil, err
		}
		if !models.FieldTypeOperators[field.Type][operator] {
			return nil, errs.Validationf("Operator '%s' is not valid for field type '%s'", operator, field.Type)
		}

		value, err := parseAdhocValue(rawValue, operator)
		if err != nil {
			return nil, err
		}
		value, err = validateAdhocValue(field, operator, value, members)
		if err != nil {
			return nil, err
		}

		conditions = append(conditions, models.FilterCondition{
			Field:    fieldID,
			Operator: operator,
			Value:    value,
		})
	}
	return conditions, nil
}

// parseAdhocValue URL-decodes a raw value token and coerces it. Membership
// operators require a JSON array; everything else goes through literal and
// numeric coercion, falling back to the plain string.
func parseAdhocValue(raw string, operator models.FilterOperator) (models.FieldValue, error) {
	decoded, err := url.QueryUnescape(raw)
	if err != nil {
		return nil, errs.Validationf("Invalid URL encoding in value: %s", raw)
	}

	if operator.IsListOperator() {
		var list []any
		if err := json.Unmarshal([]byte(decoded), &list); err != nil {
			return nil, errs.Validationf("Invalid JSON array for operator '%s': %s", operator, decoded)
		}
		return list, nil
	}

	switch strings.ToLower(decoded) {
	case "null":
		return nil, nil
	case "true":
		return true, nil
	case "false":
		return false, nil
	}
	if strings.Contains(decoded, ".") {
		if value, err := strconv.ParseFloat(decoded, 64); err == nil {
			return value, nil
		}
	} else if value, err := strconv.ParseInt(decoded, 10, 64); err == nil {
		return value, nil
	}
	return decoded, nil
}
