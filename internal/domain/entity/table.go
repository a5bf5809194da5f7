package entity

import (
	"fmt"
	"sort"
)

// Base columns maintained by the store on every table. They are never written through Values.
const (
	ColumnUUID      = "uuid"
	ColumnCreatedAt = "created_at"
	ColumnUpdatedAt = "updated_at"
	ColumnDeletedAt = "deleted_at"
)

// Table is the fixed schema of one entity table: its name, the identity
// (uniqueness) key used by lookups and the writable columns with their kinds.
type Table struct {
	name    string
	key     []string
	columns map[string]Kind
	sorted  []string
}

// NewTable panics when a key column is not declared; tables are package-level values.
func NewTable(name string, key []string, columns map[string]Kind) *Table {
	t := &Table{
		name:    name,
		key:     append([]string(nil), key...),
		columns: make(map[string]Kind, len(columns)),
	}
	for column, kind := range columns {
		t.columns[column] = kind
		t.sorted = append(t.sorted, column)
	}
	sort.Strings(t.sorted)
	for _, column := range key {
		if _, ok := t.columns[column]; !ok {
			panic(fmt.Sprintf("entity: table %s key column %s is not declared", name, column))
		}
	}
	return t
}

func (t *Table) Name() string {
	return t.name
}

func (t *Table) Key() []string {
	return append([]string(nil), t.key...)
}

// Columns returns the writable columns in lexical order.
func (t *Table) Columns() []string {
	return append([]string(nil), t.sorted...)
}

func (t *Table) Kind(column string) (Kind, bool) {
	kind, ok := t.columns[column]
	return kind, ok
}

func (t *Table) IsKey(column string) bool {
	for _, k := range t.key {
		if k == column {
			return true
		}
	}
	return false
}

// Normalize validates values against the schema and converts each one to its column kind.
func (t *Table) Normalize(values Values) (Values, error) {
	out := make(Values, len(values))
	for column, value := range values {
		kind, ok := t.columns[column]
		if !ok {
			return nil, fmt.Errorf("%w: %s.%s", ErrUnknownColumn, t.name, column)
		}
		converted, ok := kind.Convert(value)
		if !ok {
			return nil, fmt.Errorf("%w: %s.%s=%v (want %s)", ErrInvalidValue, t.name, column, value, kind)
		}
		out[column] = converted
	}
	return out, nil
}

// Prepare validates a lookup (exactly the identity columns, none nil) and
// the accompanying values. Identity columns repeated in values are dropped.
func (t *Table) Prepare(lookup, values Values) (Values, Values, error) {
	if len(lookup) != len(t.key) {
		return nil, nil, fmt.Errorf("%w: %s lookup must name %v", ErrMissingKey, t.name, t.key)
	}
	key, err := t.Normalize(lookup)
	if err != nil {
		return nil, nil, err
	}
	for _, column := range t.key {
		v, ok := key[column]
		if !ok || v == nil {
			return nil, nil, fmt.Errorf("%w: %s.%s", ErrMissingKey, t.name, column)
		}
	}

	rest, err := t.Normalize(values)
	if err != nil {
		return nil, nil, err
	}
	for _, column := range t.key {
		delete(rest, column)
	}
	return key, rest, nil
}
