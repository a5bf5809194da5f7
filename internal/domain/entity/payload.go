package entity

import (
	"github.com/bytedance/sonic"
)

// Payload is one upstream JSON object with source-specific key names.
type Payload map[string]any

var payloadAPI = sonic.Config{UseInt64: true}.Froze()

// DecodeJSON decodes upstream JSON keeping integers as int64.
func DecodeJSON(raw []byte) (any, error) {
	var out any
	if err := payloadAPI.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// AsPayload accepts a decoded JSON object.
func AsPayload(v any) (Payload, bool) {
	switch m := v.(type) {
	case Payload:
		return m, m != nil
	case map[string]any:
		return Payload(m), m != nil
	default:
		return nil, false
	}
}

// AsPayloads accepts a decoded JSON array. Elements that are not objects come back as nil.
func AsPayloads(v any) ([]Payload, bool) {
	list, ok := v.([]any)
	if !ok {
		if typed, isTyped := v.([]Payload); isTyped {
			return typed, true
		}
		return nil, false
	}
	out := make([]Payload, 0, len(list))
	for _, item := range list {
		p, _ := AsPayload(item)
		out = append(out, p)
	}
	return out, true
}

func (p Payload) Has(key string) bool {
	_, ok := p[key]
	return ok
}

// Object returns a nested non-null object.
func (p Payload) Object(key string) (Payload, bool) {
	return AsPayload(p[key])
}

// Items returns the children stored under key: a list, or a single object
// treated as a one-element list. Missing or null keys yield nothing.
func (p Payload) Items(key string) []Payload {
	v, ok := p[key]
	if !ok || v == nil {
		return nil
	}
	if single, ok := AsPayload(v); ok {
		return []Payload{single}
	}
	if list, ok := AsPayloads(v); ok {
		return list
	}
	return []Payload{nil}
}

func (p Payload) Int64(key string) (int64, bool) {
	return toInt64(p[key])
}

// AbsInt64 returns |value| for integer values only. Upstream team references can be negative.
func (p Payload) AbsInt64(key string) (int64, bool) {
	n, ok := toInt64(p[key])
	if !ok {
		return 0, false
	}
	return absInt64(n)
}

func (p Payload) String(key string) (string, bool) {
	s, ok := p[key].(string)
	return s, ok
}

func (p Payload) Float64(key string) (float64, bool) {
	return toFloat64(p[key])
}
