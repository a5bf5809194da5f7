package entity

import (
	"encoding/json"
	"math"
	"strconv"
)

// Kind is the storage type of a column.
type Kind int

const (
	KindInt Kind = iota + 1
	KindFloat
	KindBool
	KindString
	KindJSON
)

func (k Kind) String() string {
	switch k {
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindBool:
		return "bool"
	case KindString:
		return "string"
	case KindJSON:
		return "json"
	default:
		return "unknown"
	}
}

// Convert coerces a decoded JSON value into the Go type stored for k:
// int64, float64, bool, string or the value itself for KindJSON. nil always converts to nil.
func (k Kind) Convert(v any) (any, bool) {
	if v == nil {
		return nil, true
	}
	switch k {
	case KindInt:
		return toInt64(v)
	case KindFloat:
		return toFloat64(v)
	case KindBool:
		b, ok := v.(bool)
		return b, ok
	case KindString:
		return toString(v)
	case KindJSON:
		return v, true
	default:
		return nil, false
	}
}

func toInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int64:
		return n, true
	case int:
		return int64(n), true
	case int32:
		return int64(n), true
	case int16:
		return int64(n), true
	case int8:
		return int64(n), true
	case uint32:
		return int64(n), true
	case uint16:
		return int64(n), true
	case uint8:
		return int64(n), true
	case uint64:
		if n > math.MaxInt64 {
			return 0, false
		}
		return int64(n), true
	case float64:
		if n != math.Trunc(n) || n >= math.MaxInt64 || n < math.MinInt64 {
			return 0, false
		}
		return int64(n), true
	case float32:
		return toInt64(float64(n))
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return i, true
		}
		f, err := n.Float64()
		if err != nil {
			return 0, false
		}
		return toInt64(f)
	default:
		return 0, false
	}
}

func toFloat64(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	default:
		if i, ok := toInt64(v); ok {
			return float64(i), true
		}
		return 0, false
	}
}

func toString(v any) (string, bool) {
	switch s := v.(type) {
	case string:
		return s, true
	case json.Number:
		return s.String(), true
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64), true
	default:
		if i, ok := toInt64(v); ok {
			return strconv.FormatInt(i, 10), true
		}
		return "", false
	}
}

// absInt64 reports false for math.MinInt64, which has no positive counterpart.
func absInt64(n int64) (int64, bool) {
	if n == math.MinInt64 {
		return 0, false
	}
	if n < 0 {
		return -n, true
	}
	return n, true
}
