package model

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// FieldMap holds the attributes of a single event keyed by field name.
// Values are scalars: strings, numbers, booleans or time.Time.
type FieldMap map[string]any

// String returns the string form of the named field and whether the field
// exists with a non-nil value.
func (f FieldMap) String(key string) (string, bool) {
	if f == nil {
		return "", false
	}
	v, ok := f[key]
	if !ok || v == nil {
		return "", false
	}
	return Stringify(v), true
}

// With returns a copy of f with overlay applied on top of it.
func (f FieldMap) With(overlay FieldMap) FieldMap {
	out := make(FieldMap, len(f)+len(overlay))
	for k, v := range f {
		out[k] = v
	}
	for k, v := range overlay {
		out[k] = v
	}
	return out
}

// Stringify coerces a field value to the string used in rendered text.
func Stringify(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case time.Time:
		return val.Format(time.RFC3339)
	case *time.Time:
		if val == nil {
			return ""
		}
		return val.Format(time.RFC3339)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(val), 'f', -1, 32)
	case fmt.Stringer:
		return val.String()
	default:
		return fmt.Sprint(val)
	}
}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.000",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05.000Z",
}

// ParseTime coerces a field value to a point in time. Numbers are epoch
// seconds; strings may be numeric or use one of the supported layouts.
func ParseTime(v any) (time.Time, bool) {
	switch val := v.(type) {
	case time.Time:
		return val, !val.IsZero()
	case *time.Time:
		if val == nil || val.IsZero() {
			return time.Time{}, false
		}
		return *val, true
	case int:
		return time.Unix(int64(val), 0), true
	case int32:
		return time.Unix(int64(val), 0), true
	case int64:
		return time.Unix(val, 0), true
	case float64:
		return floatTime(val), true
	case float32:
		return floatTime(float64(val)), true
	case json.Number:
		return ParseTime(string(val))
	case string:
		s := strings.TrimSpace(val)
		if s == "" {
			return time.Time{}, false
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return floatTime(f), true
		}
		for _, layout := range timeLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t, true
			}
		}
	}
	return time.Time{}, false
}

func floatTime(f float64) time.Time {
	sec, frac := math.Modf(f)
	return time.Unix(int64(sec), int64(frac*1e9))
}
