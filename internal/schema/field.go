package schema

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Kind is the storage type of a section field
type Kind int

const (
	Bool Kind = iota
	Int
	Float
	String
	Text
	Date
	Timestamp
)

const (
	dateLayout      = "2006-01-02"
	maxStringLength = 255
)

func (k Kind) String() string {
	switch k {
	case Bool:
		return "bool"
	case Int:
		return "int"
	case Float:
		return "float"
	case String:
		return "string"
	case Text:
		return "text"
	case Date:
		return "date"
	case Timestamp:
		return "timestamp"
	}
	return "unknown"
}

// Field is one column of a section table.
// Managed fields are written by the engine and never accepted from callers.
type Field struct {
	Name    string
	Kind    Kind
	Managed bool
}

// coerce converts a decoded JSON value into the value stored for this field.
// nil always stores NULL.
func (f Field) coerce(v any) (any, error) {
	if v == nil {
		return nil, nil
	}

	switch f.Kind {
	case Bool:
		switch t := v.(type) {
		case bool:
			return t, nil
		case json.Number, float64, int, int64:
			n, ok := asFloat(t)
			if ok && (n == 0 || n == 1) {
				return n == 1, nil
			}
		case string:
			if b, err := strconv.ParseBool(t); err == nil {
				return b, nil
			}
		}
	case Int:
		if n, ok := asInt(v); ok {
			return n, nil
		}
	case Float:
		if n, ok := asFloat(v); ok {
			return n, nil
		}
	case String, Text:
		if s, ok := v.(string); ok {
			if f.Kind == String && len(s) > maxStringLength {
				return nil, fmt.Errorf("%s is longer than %d characters", f.Name, maxStringLength)
			}
			return s, nil
		}
	case Date:
		if s, ok := v.(string); ok {
			if d, err := parseDate(s); err == nil {
				return d, nil
			}
		}
	case Timestamp:
		if s, ok := v.(string); ok {
			if ts, err := time.Parse(time.RFC3339, s); err == nil {
				return ts.UTC(), nil
			}
		}
	}

	return nil, fmt.Errorf("%s expects a %s value, got %v", f.Name, f.Kind, v)
}

// decode converts a value read back from any supported driver into the
// canonical representation of this field.
func (f Field) decode(v any) any {
	if b, ok := v.([]byte); ok {
		v = string(b)
	}
	if v == nil {
		return nil
	}

	switch f.Kind {
	case Bool:
		switch t := v.(type) {
		case bool:
			return t
		case int64:
			return t != 0
		case float64:
			return t != 0
		case string:
			if b, err := strconv.ParseBool(t); err == nil {
				return b
			}
		}
	case Int:
		switch t := v.(type) {
		case int64:
			return t
		case float64:
			if n, ok := asInt(t); ok {
				return n
			}
		case string:
			if n, err := strconv.ParseInt(t, 10, 64); err == nil {
				return n
			}
		}
	case Float:
		switch t := v.(type) {
		case float64:
			return t
		case float32:
			return float64(t)
		case int64:
			return float64(t)
		case string:
			if n, err := strconv.ParseFloat(t, 64); err == nil {
				return n
			}
		}
	case Date:
		switch t := v.(type) {
		case time.Time:
			return t.Format(dateLayout)
		case string:
			if d, err := decodeDate(t); err == nil {
				return d
			}
		}
	case Timestamp:
		if t, ok := v.(time.Time); ok {
			return t.UTC()
		}
	}

	return v
}

func asFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case json.Number:
		n, err := t.Float64()
		return n, err == nil
	case float64:
		return t, true
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	}
	return 0, false
}

// asInt accepts whole numbers that fit an int64, including 170.0 style floats
func asInt(v any) (int64, bool) {
	switch t := v.(type) {
	case json.Number:
		if n, err := t.Int64(); err == nil {
			return n, true
		}
		n, err := t.Float64()
		if err != nil {
			return 0, false
		}
		return asInt(n)
	case float64:
		if t != math.Trunc(t) || t < -(1<<63) || t >= 1<<63 {
			return 0, false
		}
		return int64(t), true
	case int:
		return int64(t), true
	case int64:
		return t, true
	}
	return 0, false
}

// parseDate accepts a calendar date or a full timestamp and keeps the date part
func parseDate(s string) (string, error) {
	s = strings.TrimSpace(s)
	if len(s) > len(dateLayout) {
		ts, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return "", err
		}
		return ts.Format(dateLayout), nil
	}
	d, err := time.Parse(dateLayout, s)
	if err != nil {
		return "", err
	}
	return d.Format(dateLayout), nil
}

// decodeDate also takes the "2006-01-02 15:04:05" form drivers return for
// date columns
func decodeDate(s string) (string, error) {
	s = strings.TrimSpace(s)
	if d, err := parseDate(s); err == nil {
		return d, nil
	}
	if len(s) > len(dateLayout) && s[len(dateLayout)] == ' ' {
		return parseDate(s[:len(dateLayout)])
	}
	return "", fmt.Errorf("invalid date %q", s)
}
