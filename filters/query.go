// Package filters implements the dynamic query engine: saved filter
// validation, the ad-hoc query grammar, and translation of conditions into
// Mongo query documents.
package filters

import (
	"fmt"
	"log/slog"
	"strings"

	"go.mongodb.org/mongo-driver/v2/bson"

	"spacenote-api/errs"
	"spacenote-api/models"
)

// GetFieldPath returns the storage path for a field id. System fields live
// at the top level of the note document; custom fields are nested under
// "fields".
func GetFieldPath(fieldID string) string {
	if models.IsSystemField(fieldID) {
		return fieldID
	}
	return "fields." + fieldID
}

// ResolveSpecialValues substitutes the $me token for user fields. Everything
// else passes through unchanged.
func ResolveSpecialValues(value models.FieldValue, fieldType models.FieldType, currentUserID string) (models.FieldValue, error) {
	if fieldType != models.FieldTypeUser {
		return value, nil
	}
	token, ok := value.(string)
	if !ok || token != models.SpecialMe {
		return value, nil
	}
	if currentUserID == "" {
		return nil, errs.Validationf("Cannot use '%s' without a logged-in user context", models.SpecialMe)
	}
	return currentUserID, nil
}

// BuildConditionQuery maps one operator and value to the corresponding query
// primitive. Filtering for null goes through $eq/$ne like any other value.
func BuildConditionQuery(operator models.FilterOperator, value models.FieldValue) (bson.M, error) {
	switch operator {
	case models.OpEq:
		return bson.M{"$eq": value}, nil
	case models.OpNe:
		return bson.M{"$ne": value}, nil
	case models.OpGt:
		return bson.M{"$gt": value}, nil
	case models.OpGte:
		return bson.M{"$gte": value}, nil
	case models.OpLt:
		return bson.M{"$lt": value}, nil
	case models.OpLte:
		return bson.M{"$lte": value}, nil
	case models.OpIn:
		return bson.M{"$in": value}, nil
	case models.OpNin:
		return bson.M{"$nin": value}, nil
	case models.OpAll:
		return bson.M{"$all": value}, nil
	case models.OpContains:
		return bson.M{"$regex": fmt.Sprintf("%v", value), "$options": "i"}, nil
	case models.OpStartsWith:
		return bson.M{"$regex": fmt.Sprintf("^%v", value), "$options": "i"}, nil
	case models.OpEndsWith:
		return bson.M{"$regex": fmt.Sprintf("%v$", value), "$options": "i"}, nil
	}
	return nil, errs.Validationf("Unknown operator '%s'", operator)
}

// BuildSort converts sort field names into a Mongo sort document. A "-"
// prefix means descending; empty input defaults to newest notes first.
func BuildSort(sortFields []string) bson.D {
	if len(sortFields) == 0 {
		return bson.D{{Key: "number", Value: -1}}
	}
	sort := make(bson.D, 0, len(sortFields))
	for _, field := range sortFields {
		direction := 1
		if strings.HasPrefix(field, "-") {
			direction = -1
			field = field[1:]
		}
		sort = append(sort, bson.E{Key: GetFieldPath(field), Value: direction})
	}
	return sort
}

// BuildQuery translates AND-combined conditions into a Mongo query document
// scoped to the space. Conditions referencing a field that no longer exists
// in the space schema are skipped with a diagnostic so that a drifted saved
// filter never breaks listing.
func BuildQuery(conditions []models.FilterCondition, space *models.Space, currentUserID string) (bson.M, error) {
	query := bson.M{"space_id": space.ID}
	for _, cond := range conditions {
		field := space.GetField(cond.Field)
		if field == nil {
			field = models.SystemField(cond.Field)
		}
		if field == nil {
			slog.Warn("skipping filter condition for unknown field",
				"space_id", space.ID, "field", cond.Field, "operator", cond.Operator)
			continue
		}

		value, err := ResolveSpecialValues(cond.Value, field.Type, currentUserID)
		if err != nil {
			return nil, err
		}
		condQuery, err := BuildConditionQuery(cond.Operator, value)
		if err != nil {
			return nil, err
		}
		mergeCondition(query, GetFieldPath(cond.Field), condQuery)
	}
	return query, nil
}

// MergeQueries merges the field conditions of extra into base, preserving
// every condition via the same $and rules as mergeCondition. Used to combine
// an ad-hoc query with a saved filter's base query.
func MergeQueries(base, extra bson.M) bson.M {
	for path, raw := range extra {
		if path == "$and" {
			if list, ok := raw.([]bson.M); ok {
				base["$and"] = append(andList(base), list...)
			}
			continue
		}
		cond, ok := raw.(bson.M)
		if !ok {
			cond = bson.M{"$eq": raw}
		}
		mergeCondition(base, path, cond)
	}
	return base
}

// mergeCondition attaches a condition to a field path. When the path already
// carries a condition, both are moved into an $and list so that they apply
// together instead of the newer one clobbering the older.
func mergeCondition(query bson.M, path string, cond bson.M) {
	if existing, ok := query[path]; ok {
		existingCond, isM := existing.(bson.M)
		if !isM {
			existingCond = bson.M{"$eq": existing}
		}
		query["$and"] = append(andList(query), bson.M{path: existingCond}, bson.M{path: cond})
		delete(query, path)
		return
	}
	if andHasPath(query, path) {
		query["$and"] = append(andList(query), bson.M{path: cond})
		return
	}
	query[path] = cond
}

func andList(query bson.M) []bson.M {
	list, _ := query["$and"].([]bson.M)
	return list
}

func andHasPath(query bson.M, path string) bool {
	for _, clause := range andList(query) {
		if _, ok := clause[path]; ok {
			return true
		}
	}
	return false
}
