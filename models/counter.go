package models

// CounterType names the entity kinds that use sequential numbering.
type CounterType string

const (
	CounterNote       CounterType = "note"       // scoped to a space
	CounterAttachment CounterType = "attachment" // scoped to a space
	CounterComment    CounterType = "comment"    // scoped to a note
)

// Counter is an atomic sequence counter. Uniquely indexed on
// (scope_id, counter_type); incremented with $inc to prevent duplicate
// numbers under concurrent writes.
type Counter struct {
	ScopeID     string      `bson:"scope_id"`
	CounterType CounterType `bson:"counter_type"`
	Seq         int64       `bson:"seq"`
}
