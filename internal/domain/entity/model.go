package entity

import (
	"strconv"
	"time"
)

// Values maps column names to values.
type Values map[string]any

// Merge returns a new map holding v overlaid with other.
func (v Values) Merge(other Values) Values {
	out := make(Values, len(v)+len(other))
	for k, val := range v {
		out[k] = val
	}
	for k, val := range other {
		out[k] = val
	}
	return out
}

// Row is one persisted entity row.
type Row struct {
	UUID      string
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt *time.Time
	Values    Values
}

func (r *Row) IsDeleted() bool {
	return r != nil && r.DeletedAt != nil
}

func (r *Row) Get(column string) any {
	if r == nil {
		return nil
	}
	return r.Values[column]
}

func (r *Row) Int64(column string) (int64, bool) {
	if r == nil {
		return 0, false
	}
	return toInt64(r.Values[column])
}

func (r *Row) Float64(column string) (float64, bool) {
	if r == nil {
		return 0, false
	}
	return toFloat64(r.Values[column])
}

func (r *Row) String(column string) (string, bool) {
	if r == nil {
		return "", false
	}
	s, ok := r.Values[column].(string)
	return s, ok
}

func (r *Row) Bool(column string) (bool, bool) {
	if r == nil {
		return false, false
	}
	b, ok := r.Values[column].(bool)
	return b, ok
}

// Clone returns a deep enough copy for callers that mutate Values.
func (r *Row) Clone() *Row {
	if r == nil {
		return nil
	}
	out := *r
	out.Values = Values{}.Merge(r.Values)
	if r.DeletedAt != nil {
		deletedAt := *r.DeletedAt
		out.DeletedAt = &deletedAt
	}
	return &out
}

// ReadOptions controls the soft-delete filter applied to reads.
type ReadOptions struct {
	IncludeDeleted bool
}

type ReadOption func(*ReadOptions)

// IncludeDeleted opts a read into soft-deleted rows.
func IncludeDeleted() ReadOption {
	return func(o *ReadOptions) { o.IncludeDeleted = true }
}

func ApplyReadOptions(opts ...ReadOption) ReadOptions {
	var out ReadOptions
	for _, opt := range opts {
		if opt != nil {
			opt(&out)
		}
	}
	return out
}

// Audit carries the store-maintained columns of a row.
type Audit struct {
	UUID      string     `json:"uuid"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	DeletedAt *time.Time `json:"deleted_at,omitempty"`
}

func (r *Row) Audit() Audit {
	if r == nil {
		return Audit{}
	}
	return Audit{UUID: r.UUID, CreatedAt: r.CreatedAt, UpdatedAt: r.UpdatedAt, DeletedAt: r.DeletedAt}
}

// Int64Value returns the column as int64, zero when null.
func (r *Row) Int64Value(column string) int64 {
	n, _ := r.Int64(column)
	return n
}

func (r *Row) Float64Value(column string) float64 {
	f, _ := r.Float64(column)
	return f
}

func (r *Row) StringValue(column string) string {
	s, _ := r.String(column)
	return s
}

func (r *Row) BoolValue(column string) bool {
	b, _ := r.Bool(column)
	return b
}

// OptionalInt64 returns nil for a null column.
func (r *Row) OptionalInt64(column string) *int64 {
	n, ok := r.Int64(column)
	if !ok {
		return nil
	}
	return &n
}

// FormatID renders an upstream numeric id.
func FormatID(id int64) string {
	return strconv.FormatInt(id, 10)
}
