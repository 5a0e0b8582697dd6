package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFieldMap_String(t *testing.T) {
	fields := FieldMap{"s": "v", "n": 3, "f": 1.25, "b": true, "nil": nil}

	v, ok := fields.String("s")
	assert.True(t, ok)
	assert.Equal(t, "v", v)

	v, _ = fields.String("n")
	assert.Equal(t, "3", v)
	v, _ = fields.String("f")
	assert.Equal(t, "1.25", v)
	v, _ = fields.String("b")
	assert.Equal(t, "true", v)

	_, ok = fields.String("nil")
	assert.False(t, ok)
	_, ok = fields.String("missing")
	assert.False(t, ok)

	var empty FieldMap
	_, ok = empty.String("s")
	assert.False(t, ok)
}

func TestFieldMap_With(t *testing.T) {
	base := FieldMap{"a": "1", "b": "2"}
	merged := base.With(FieldMap{"b": "3", "c": "4"})

	assert.Equal(t, FieldMap{"a": "1", "b": "3", "c": "4"}, merged)
	assert.Equal(t, "2", base["b"], "receiver is not modified")
}

func TestParseTime(t *testing.T) {
	want := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		in   any
		ok   bool
	}{
		{"time", want, true},
		{"int", int(want.Unix()), true},
		{"int64", want.Unix(), true},
		{"float", float64(want.Unix()), true},
		{"json number", json.Number("1709294400"), true},
		{"numeric string", "1709294400", true},
		{"rfc3339", "2024-03-01T12:00:00Z", true},
		{"graylog layout", "2024-03-01 12:00:00.000", true},
		{"garbage", "yesterday", false},
		{"empty", "", false},
		{"bool", true, false},
		{"zero time", time.Time{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseTime(tt.in)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, want.Unix(), got.Unix())
			}
		})
	}
}

func TestAlert_Backlog(t *testing.T) {
	msgs := []BacklogItem{{ID: "1"}, {ID: "2"}, {ID: "3"}}

	assert.Len(t, Alert{BacklogSize: 2, MatchingMessages: msgs}.Backlog(), 2)
	assert.Len(t, Alert{BacklogSize: 10, MatchingMessages: msgs}.Backlog(), 3)
	assert.Empty(t, Alert{BacklogSize: 0, MatchingMessages: msgs}.Backlog())
	assert.Empty(t, Alert{BacklogSize: -1, MatchingMessages: msgs}.Backlog())
}

func TestOutcome(t *testing.T) {
	ok := Outcome{DeliveryID: "x"}
	assert.True(t, ok.OK())
	assert.Empty(t, ok.Reason())

	failed := Outcome{Err: &DeliveryError{Reason: ReasonNonSuccessStatus, Detail: "unexpected HTTP response status 404"}}
	assert.False(t, failed.OK())
	assert.Equal(t, ReasonNonSuccessStatus, failed.Reason())
	assert.Equal(t, "non-200-status: unexpected HTTP response status 404", failed.Err.Error())
}

func TestBacklogItem_RawFields(t *testing.T) {
	ts := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	item := BacklogItem{
		ID:        "m1",
		Message:   "disk full",
		Source:    "web-1",
		Timestamp: ts,
		Fields:    FieldMap{"level": 3, "source": "from-fields"},
	}

	fields := item.RawFields()
	assert.Equal(t, "m1", fields["_id"])
	assert.Equal(t, "disk full", fields["message"])
	assert.Equal(t, "from-fields", fields["source"], "existing fields win")
	assert.Equal(t, ts, fields[TimestampField])
	assert.Equal(t, 3, fields["level"])
	assert.NotContains(t, item.Fields, "message", "the item's own map is untouched")

	empty := BacklogItem{}.RawFields()
	assert.Empty(t, empty)
}
