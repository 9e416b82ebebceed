package util

import (
	"reflect"
	"time"

	"bizrecords/internal/model"
)

// Sanitize returns a storable copy of record. Null values are dropped, times
// become RFC3339Nano UTC strings and nested objects are sanitized recursively.
// Slices pass through unchanged. The input is never modified.
func Sanitize(record model.Record) model.Record {
	out := make(model.Record, len(record))
	for key, value := range record {
		cleaned, keep := sanitizeValue(value)
		if !keep {
			continue
		}
		out[key] = cleaned
	}

	return out
}

func sanitizeValue(value any) (any, bool) {
	if isNull(value) {
		return nil, false
	}

	switch v := value.(type) {
	case time.Time:
		return FormatTime(v), true
	case *time.Time:
		return FormatTime(*v), true
	case model.Record:
		return Sanitize(v), true
	case map[string]any:
		return map[string]any(Sanitize(v)), true
	default:
		return value, true
	}
}

func isNull(value any) bool {
	if value == nil {
		return true
	}

	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface, reflect.Func, reflect.Chan:
		return rv.IsNil()
	default:
		return false
	}
}

// FormatTime is the canonical string form for timestamps in stored snapshots.
func FormatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}
