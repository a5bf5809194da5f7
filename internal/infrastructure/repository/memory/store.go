package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/riskibarqy/esports-stats/internal/domain/entity"
	"github.com/riskibarqy/esports-stats/internal/platform/id"
)

type table struct {
	rows  []*entity.Row
	byKey map[string]*entity.Row
}

// Store is an in-process entity store with the same reconcile semantics as
// the Postgres one: lookups and inserts are separate critical sections, so
// concurrent creators of one key race and the loser re-reads.
type Store struct {
	mu     sync.RWMutex
	tables map[string]*table
	ids    id.Generator
	now    func() time.Time
}

func NewStore(ids id.Generator) *Store {
	if ids == nil {
		ids = id.NewUUIDGenerator()
	}
	return &Store{
		tables: make(map[string]*table),
		ids:    ids,
		now:    time.Now,
	}
}

// SetClock replaces the timestamp source.
func (s *Store) SetClock(now func() time.Time) {
	s.mu.Lock()
	s.now = now
	s.mu.Unlock()
}

func (s *Store) GetOrCreate(ctx context.Context, t *entity.Table, lookup, defaults entity.Values) (*entity.Row, bool, error) {
	key, rest, err := t.Prepare(lookup, defaults)
	if err != nil {
		return nil, false, err
	}
	return entity.RetryOnConflict(ctx, func(context.Context) (*entity.Row, bool, error) {
		if row, ok := s.find(t, key); ok {
			return row, false, nil
		}
		row, err := s.insert(t, key, rest)
		if err != nil {
			return nil, false, err
		}
		return row, true, nil
	})
}

func (s *Store) UpdateOrCreate(ctx context.Context, t *entity.Table, lookup, values entity.Values) (*entity.Row, bool, error) {
	key, rest, err := t.Prepare(lookup, values)
	if err != nil {
		return nil, false, err
	}
	return entity.RetryOnConflict(ctx, func(context.Context) (*entity.Row, bool, error) {
		if _, ok := s.find(t, key); ok {
			row, err := s.update(t, key, rest)
			return row, false, err
		}
		row, err := s.insert(t, key, rest)
		if err != nil {
			return nil, false, err
		}
		return row, true, nil
	})
}

func (s *Store) find(t *entity.Table, key entity.Values) (*entity.Row, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tbl, ok := s.tables[t.Name()]
	if !ok {
		return nil, false
	}
	row, ok := tbl.byKey[rowKey(t.Key(), key)]
	if !ok {
		return nil, false
	}
	return row.Clone(), true
}

func (s *Store) insert(t *entity.Table, key, values entity.Values) (*entity.Row, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tbl := s.tableLocked(t)
	k := rowKey(t.Key(), key)
	if _, exists := tbl.byKey[k]; exists {
		return nil, fmt.Errorf("insert %s %s: %w", t.Name(), k, entity.ErrUniqueViolation)
	}

	now := s.now()
	row := &entity.Row{
		UUID:      s.ids.NewID(),
		CreatedAt: now,
		UpdatedAt: now,
		Values:    key.Merge(values),
	}
	tbl.rows = append(tbl.rows, row)
	tbl.byKey[k] = row
	return row.Clone(), nil
}

func (s *Store) update(t *entity.Table, key, values entity.Values) (*entity.Row, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tbl := s.tableLocked(t)
	row, ok := tbl.byKey[rowKey(t.Key(), key)]
	if !ok {
		return nil, fmt.Errorf("update %s: row vanished", t.Name())
	}
	for column, value := range values {
		row.Values[column] = value
	}
	row.UpdatedAt = s.now()
	return row.Clone(), nil
}

func (s *Store) tableLocked(t *entity.Table) *table {
	tbl, ok := s.tables[t.Name()]
	if !ok {
		tbl = &table{byKey: make(map[string]*entity.Row)}
		s.tables[t.Name()] = tbl
	}
	return tbl
}

// rows returns clones of the matching rows in insertion order.
func (s *Store) rows(tableName string, opts entity.ReadOptions, match func(*entity.Row) bool) []*entity.Row {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tbl, ok := s.tables[tableName]
	if !ok {
		return nil
	}
	out := make([]*entity.Row, 0)
	for _, row := range tbl.rows {
		if row.DeletedAt != nil && !opts.IncludeDeleted {
			continue
		}
		if match == nil || match(row) {
			out = append(out, row.Clone())
		}
	}
	return out
}

// mutate applies fn to every row accepted by match and returns how many changed.
// fn reports whether it modified the row; modified rows get a fresh updated_at.
func (s *Store) mutate(tableName string, match func(*entity.Row) bool, fn func(*entity.Row, time.Time) bool) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	tbl, ok := s.tables[tableName]
	if !ok {
		return 0
	}
	now := s.now()
	var changed int64
	for _, row := range tbl.rows {
		if !match(row) {
			continue
		}
		if fn(row, now) {
			row.UpdatedAt = now
			changed++
		}
	}
	return changed
}

// Count returns the number of rows in a table, soft-deleted rows included.
func (s *Store) Count(tableName string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if tbl, ok := s.tables[tableName]; ok {
		return len(tbl.rows)
	}
	return 0
}

// Lookup reads one row by identity key, soft-deleted rows included.
func (s *Store) Lookup(t *entity.Table, key entity.Values) (*entity.Row, bool) {
	normalized, err := t.Normalize(key)
	if err != nil {
		return nil, false
	}
	return s.find(t, normalized)
}

func rowKey(columns []string, key entity.Values) string {
	parts := make([]string, 0, len(columns))
	for _, column := range columns {
		parts = append(parts, fmt.Sprintf("%v", key[column]))
	}
	return strings.Join(parts, "\x1f")
}

func sortByInt64(rows []*entity.Row, column string, desc bool) {
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i].Int64Value(column), rows[j].Int64Value(column)
		if desc {
			return a > b
		}
		return a < b
	})
}

func limitRows(rows []*entity.Row, limit int) []*entity.Row {
	if limit > 0 && len(rows) > limit {
		return rows[:limit]
	}
	return rows
}

func isFalseOrNull(row *entity.Row, column string) bool {
	b, ok := row.Bool(column)
	return !ok || !b
}
