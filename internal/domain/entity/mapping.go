package entity

import "fmt"

// Field maps one payload key onto one column.
type Field struct {
	Key     string
	Column  string
	Aliases []string
	Abs     bool
}

// F maps key to column.
func F(key, column string, aliases ...string) Field {
	return Field{Key: key, Column: column, Aliases: aliases}
}

// AbsF maps an integer key to its absolute value.
func AbsF(key, column string) Field {
	return Field{Key: key, Column: column, Abs: true}
}

// Mapping is the explicit payload-to-column map for one table.
type Mapping struct {
	table  *Table
	fields []Field
}

// NewMapping panics when a field targets a column the table does not declare.
func NewMapping(table *Table, fields ...Field) *Mapping {
	for _, f := range fields {
		if _, ok := table.Kind(f.Column); !ok {
			panic(fmt.Sprintf("entity: mapping for %s targets unknown column %s", table.Name(), f.Column))
		}
	}
	return &Mapping{table: table, fields: append([]Field(nil), fields...)}
}

func (m *Mapping) Table() *Table {
	return m.table
}

// Map copies the fields present in p. Absent keys stay unspecified, explicit
// nulls become NULL and values that do not fit the column kind are skipped
// and reported in dropped.
func (m *Mapping) Map(p Payload) (values Values, dropped []string) {
	values = make(Values, len(m.fields))
	for _, f := range m.fields {
		raw, ok := lookupKey(p, f)
		if !ok {
			continue
		}
		if f.Abs && raw != nil {
			n, isInt := toInt64(raw)
			if isInt {
				n, isInt = absInt64(n)
			}
			if !isInt {
				dropped = append(dropped, f.Key)
				continue
			}
			raw = n
		}
		kind, _ := m.table.Kind(f.Column)
		converted, ok := kind.Convert(raw)
		if !ok {
			dropped = append(dropped, f.Key)
			continue
		}
		values[f.Column] = converted
	}
	return values, dropped
}

func lookupKey(p Payload, f Field) (any, bool) {
	if v, ok := p[f.Key]; ok {
		return v, true
	}
	for _, alias := range f.Aliases {
		if v, ok := p[alias]; ok {
			return v, true
		}
	}
	return nil, false
}
