package table

import (
	"encoding/json"
	"fmt"
	"maps"
	"strconv"
	"strings"
	"time"
)

// Record is one row of a remote collection as decoded from JSON.
type Record map[string]any

// dateLayouts are tried in order when a field is read as a time.
var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	time.DateOnly,
}

// Lookup resolves a field by key. A dotted key reads one level into a
// nested record ("patient.firstName").
func (r Record) Lookup(key string) (any, bool) {
	if v, ok := r[key]; ok {
		return v, true
	}
	head, tail, found := strings.Cut(key, ".")
	if !found {
		return nil, false
	}
	nested, ok := asRecord(r[head])
	if !ok {
		return nil, false
	}
	v, ok := nested[tail]
	return v, ok
}

// String returns the field coerced to a string; missing and null are "".
func (r Record) String(key string) string {
	v, _ := r.Lookup(key)
	return Stringify(v)
}

// Float returns the numeric value of a field. Numeric strings are accepted.
func (r Record) Float(key string) (float64, bool) {
	v, _ := r.Lookup(key)
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		return f, err == nil
	}
	return 0, false
}

// Time parses a date or date-time field. Values without a zone are read in loc.
func (r Record) Time(key string, loc *time.Location) (time.Time, bool) {
	v, _ := r.Lookup(key)
	s, ok := v.(string)
	if !ok {
		return time.Time{}, false
	}
	return ParseTime(s, loc)
}

// Related returns the nested record stored under key.
func (r Record) Related(key string) (Record, bool) {
	return asRecord(r[key])
}

// Clone returns a deep copy. Nested records and slices are copied too.
func (r Record) Clone() Record {
	if r == nil {
		return nil
	}
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = cloneValue(v)
	}
	return out
}

// ParseTime reads s using the known layouts.
func ParseTime(s string, loc *time.Location) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	if loc == nil {
		loc = time.UTC
	}
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// DateOnly strips the time-of-day part of a date value ("2024-01-15T00:00:00Z"
// becomes "2024-01-15"). Values that are not dates are returned unchanged.
func DateOnly(v any) any {
	s, ok := v.(string)
	if !ok || len(s) < len(time.DateOnly) {
		return v
	}
	prefix := s[:len(time.DateOnly)]
	if _, err := time.Parse(time.DateOnly, prefix); err != nil {
		return v
	}
	return prefix
}

// Stringify coerces a field value to the string used for search and sort.
func Stringify(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case bool:
		return strconv.FormatBool(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32)
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case json.Number:
		return x.String()
	case map[string]any, Record, []any:
		b, err := json.Marshal(x)
		if err != nil {
			return ""
		}
		return string(b)
	default:
		return fmt.Sprint(x)
	}
}

func asRecord(v any) (Record, bool) {
	switch m := v.(type) {
	case Record:
		return m, true
	case map[string]any:
		return Record(m), true
	}
	return nil, false
}

func cloneValue(v any) any {
	switch x := v.(type) {
	case Record:
		return x.Clone()
	case map[string]any:
		return map[string]any(Record(x).Clone())
	case []any:
		out := make([]any, len(x))
		for i, item := range x {
			out[i] = cloneValue(item)
		}
		return out
	}
	return v
}

// Records converts decoded JSON objects to records.
func Records(items []map[string]any) []Record {
	out := make([]Record, len(items))
	for i, item := range items {
		out[i] = Record(item)
	}
	return out
}

// plain turns a record back into the map shape the backend client takes.
func plain(r Record) map[string]any {
	return maps.Clone(map[string]any(r))
}
