package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
)

// Reserved field names stamped by the persistence layer.
const (
	FieldID        = "id"
	FieldCreatedAt = "created_at"
	FieldUpdatedAt = "updated_at"
)

// Record represents one flat entity in a collection
type Record map[string]interface{}

// ID returns the record identifier, or "" when none has been assigned
func (r Record) ID() string {
	id, _ := r[FieldID].(string)
	return id
}

// Clone returns a deep copy of the record
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

func cloneValue(v interface{}) interface{} {
	switch t := v.(type) {
	case map[string]interface{}:
		m := make(map[string]interface{}, len(t))
		for k, vv := range t {
			m[k] = cloneValue(vv)
		}
		return m
	case Record:
		return t.Clone()
	case []interface{}:
		s := make([]interface{}, len(t))
		for i, vv := range t {
			s[i] = cloneValue(vv)
		}
		return s
	case []string:
		return append([]string(nil), t...)
	default:
		return v
	}
}

// Merge overlays patch onto r and returns the result as a new record.
// The id of r is kept even when patch carries a different one.
func (r Record) Merge(patch Record) Record {
	merged := r.Clone()
	if merged == nil {
		merged = Record{}
	}
	for k, v := range patch {
		if k == FieldID {
			continue
		}
		merged[k] = cloneValue(v)
	}
	return merged
}

// Lookup resolves a field, following dotted paths into nested objects
func (r Record) Lookup(field string) (interface{}, bool) {
	if v, ok := r[field]; ok {
		return v, true
	}
	if !strings.Contains(field, ".") {
		return nil, false
	}

	var current interface{} = map[string]interface{}(r)
	for _, part := range strings.Split(field, ".") {
		switch m := current.(type) {
		case map[string]interface{}:
			v, ok := m[part]
			if !ok {
				return nil, false
			}
			current = v
		case Record:
			v, ok := m[part]
			if !ok {
				return nil, false
			}
			current = v
		default:
			return nil, false
		}
	}
	return current, true
}

// Number returns the numeric value of a field
func (r Record) Number(field string) (float64, bool) {
	v, ok := r.Lookup(field)
	if !ok {
		return 0, false
	}
	return ToFloat64(v)
}

// String returns the string value of a field
func (r Record) String(field string) string {
	v, ok := r.Lookup(field)
	if !ok || v == nil {
		return ""
	}
	return Stringify(v)
}

// Canonicalize converts a record to the form the persistence layer stores:
// numbers become float64, arrays []interface{} and objects map[string]interface{}.
func Canonicalize(r Record) (Record, error) {
	if r == nil {
		return Record{}, nil
	}
	data, err := json.Marshal(r)
	if err != nil {
		return nil, fmt.Errorf("failed to encode record: %w", err)
	}
	out := Record{}
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("failed to decode record: %w", err)
	}
	return out, nil
}

// ValidateID rejects an id that is present but not a string. An absent, null
// or empty id is left for the backend to assign.
func ValidateID(r Record) error {
	v, ok := r[FieldID]
	if !ok || v == nil {
		return nil
	}
	if _, isString := v.(string); !isString {
		return Invalid(FieldID, "must be a string")
	}
	return nil
}

// NewRecordID generates a fresh record identifier
func NewRecordID() string {
	return uuid.NewString()
}

// Timestamp formats t the way created_at and updated_at are stored
func Timestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

// StampNew assigns id and created_at when they are absent
func StampNew(r Record, now time.Time) {
	if r.ID() == "" {
		r[FieldID] = NewRecordID()
	}
	if _, ok := r[FieldCreatedAt]; !ok {
		r[FieldCreatedAt] = Timestamp(now)
	}
}

// ToFloat64 converts various numeric types to float64 for comparison
func ToFloat64(value interface{}) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int8:
		return float64(v), true
	case int16:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case uint:
		return float64(v), true
	case uint8:
		return float64(v), true
	case uint16:
		return float64(v), true
	case uint32:
		return float64(v), true
	case uint64:
		return float64(v), true
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}

// Stringify renders a scalar the way filters and group keys compare it
func Stringify(value interface{}) string {
	switch v := value.(type) {
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	case nil:
		return ""
	}
	if f, ok := ToFloat64(value); ok {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	return fmt.Sprint(value)
}

// StringSlice returns the elements of an array field as strings
func StringSlice(value interface{}) ([]string, bool) {
	switch v := value.(type) {
	case []string:
		return v, true
	case []interface{}:
		out := make([]string, 0, len(v))
		for _, item := range v {
			out = append(out, Stringify(item))
		}
		return out, true
	default:
		return nil, false
	}
}
