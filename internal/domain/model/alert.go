package model

import "time"

// TimestampField is the reserved field name that denotes a backlog item's
// own timestamp rather than a lookup in its field map.
const TimestampField = "timestamp"

// Stream identifies the stream an alert or message belongs to.
type Stream struct {
	ID          string
	Title       string
	Description string
}

// BacklogItem is one matching message attached to an alert.
type BacklogItem struct {
	ID        string
	Message   string
	Source    string
	Timestamp time.Time
	Fields    FieldMap
}

// Alert is the read-only view of a triggered alert condition.
type Alert struct {
	Stream            Stream
	ResultDescription string
	TriggeredAt       time.Time
	// BacklogSize is the number of messages the triggered condition keeps.
	BacklogSize      int
	MatchingMessages []BacklogItem
}

// Backlog returns the matching messages capped to the condition's backlog size.
func (a Alert) Backlog() []BacklogItem {
	n := a.BacklogSize
	if n > len(a.MatchingMessages) {
		n = len(a.MatchingMessages)
	}
	if n <= 0 {
		return nil
	}
	return a.MatchingMessages[:n]
}

// RawFields returns the item's field map with the intrinsic id, message,
// source and timestamp filled in where the map does not carry them.
func (b BacklogItem) RawFields() FieldMap {
	fields := make(FieldMap, len(b.Fields)+4)
	for k, v := range b.Fields {
		fields[k] = v
	}
	fill := func(key string, value any, empty bool) {
		if _, ok := fields.String(key); !ok && !empty {
			fields[key] = value
		}
	}
	fill("_id", b.ID, b.ID == "")
	fill("message", b.Message, b.Message == "")
	fill("source", b.Source, b.Source == "")
	fill(TimestampField, b.Timestamp, b.Timestamp.IsZero())
	return fields
}
