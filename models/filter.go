package models

import (
	"sort"

	"spacenote-api/errs"
)

// FilterOperator enumerates the query operators for filtering notes.
type FilterOperator string

const (
	// Comparison
	OpEq FilterOperator = "eq"
	OpNe FilterOperator = "ne"

	// Text
	OpContains   FilterOperator = "contains"
	OpStartsWith FilterOperator = "startswith"
	OpEndsWith   FilterOperator = "endswith"

	// List/Set
	OpIn  FilterOperator = "in"  // has any of
	OpNin FilterOperator = "nin" // has none of
	OpAll FilterOperator = "all" // has all

	// Numeric/Date
	OpGt  FilterOperator = "gt"
	OpGte FilterOperator = "gte"
	OpLt  FilterOperator = "lt"
	OpLte FilterOperator = "lte"
)

var allOperators = map[FilterOperator]bool{
	OpEq: true, OpNe: true,
	OpContains: true, OpStartsWith: true, OpEndsWith: true,
	OpIn: true, OpNin: true, OpAll: true,
	OpGt: true, OpGte: true, OpLt: true, OpLte: true,
}

// ParseFilterOperator parses an operator token against the closed enum.
func ParseFilterOperator(token string) (FilterOperator, error) {
	op := FilterOperator(token)
	if !allOperators[op] {
		return "", errs.Validationf("Unknown operator '%s'", token)
	}
	return op, nil
}

// IsListOperator reports whether the operator expects a list value.
func (op FilterOperator) IsListOperator() bool {
	return op == OpIn || op == OpNin || op == OpAll
}

// FilterCondition is a single filter condition for querying notes. The value
// shape must match what the operator expects (scalar vs list) and the field's
// type family; validators enforce this before a condition is persisted or
// used.
type FilterCondition struct {
	Field    string         `json:"field" bson:"field"`
	Operator FilterOperator `json:"operator" bson:"operator"`
	Value    FieldValue     `json:"value" bson:"value"`
}

// Filter is a saved filter configuration for a space. Conditions are
// AND-combined; sort entries may carry a '-' prefix for descending order.
type Filter struct {
	ID          string            `json:"id" bson:"id"` // unique within space
	Title       string            `json:"title" bson:"title"`
	Description string            `json:"description,omitempty" bson:"description,omitempty"`
	Conditions  []FilterCondition `json:"conditions" bson:"conditions"`
	Sort        []string          `json:"sort" bson:"sort"`
	ListFields  []string          `json:"list_fields" bson:"list_fields"`
}

// FieldTypeOperators maps each field type to the set of filter operators that
// may be used with it.
var FieldTypeOperators = map[FieldType]map[FilterOperator]bool{
	FieldTypeString: {
		OpEq: true, OpNe: true, OpContains: true, OpStartsWith: true, OpEndsWith: true,
	},
	FieldTypeMarkdown: {
		OpEq: true, OpNe: true, OpContains: true, OpStartsWith: true, OpEndsWith: true,
	},
	FieldTypeBoolean: {
		OpEq: true, OpNe: true,
	},
	FieldTypeInt: {
		OpEq: true, OpNe: true, OpGt: true, OpGte: true, OpLt: true, OpLte: true,
	},
	FieldTypeFloat: {
		OpEq: true, OpNe: true, OpGt: true, OpGte: true, OpLt: true, OpLte: true,
	},
	FieldTypeDatetime: {
		OpEq: true, OpNe: true, OpGt: true, OpGte: true, OpLt: true, OpLte: true,
	},
	FieldTypeSelect: {
		OpEq: true, OpNe: true, OpIn: true, OpNin: true,
	},
	FieldTypeTags: {
		OpEq: true, OpNe: true, OpIn: true, OpNin: true, OpAll: true,
	},
	FieldTypeUser: {
		OpEq: true, OpNe: true,
	},
	FieldTypeImage: {
		OpEq: true, OpNe: true,
	},
}

// OperatorsForFieldType returns the valid operators for a field type, sorted
// alphabetically for stable API output.
func OperatorsForFieldType(fieldType FieldType) []FilterOperator {
	ops := make([]FilterOperator, 0, len(FieldTypeOperators[fieldType]))
	for op := range FieldTypeOperators[fieldType] {
		ops = append(ops, op)
	}
	sort.Slice(ops, func(i, j int) bool { return ops[i] < ops[j] })
	return ops
}
