package postgres

import (
	"context"
	"fmt"

	crerr "github.com/cockroachdb/errors"
	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/esports-stats/internal/domain/entity"
	"github.com/riskibarqy/esports-stats/internal/platform/id"
	qb "github.com/riskibarqy/esports-stats/internal/platform/querybuilder"
)

// Reconciler implements entity.Reconciler on Postgres. Every call runs in its
// own transaction; a lost insert race surfaces as entity.ErrUniqueViolation
// and is retried once by entity.RetryOnConflict.
type Reconciler struct {
	db  *sqlx.DB
	ids id.Generator
}

func NewReconciler(db *sqlx.DB, ids id.Generator) *Reconciler {
	if ids == nil {
		ids = id.NewUUIDGenerator()
	}
	return &Reconciler{db: db, ids: ids}
}

func (r *Reconciler) GetOrCreate(ctx context.Context, t *entity.Table, lookup, defaults entity.Values) (*entity.Row, bool, error) {
	key, rest, err := t.Prepare(lookup, defaults)
	if err != nil {
		return nil, false, err
	}
	return entity.RetryOnConflict(ctx, func(ctx context.Context) (*entity.Row, bool, error) {
		return r.inTx(ctx, t, func(tx *sqlx.Tx) (*entity.Row, bool, error) {
			row, found, err := r.selectByKey(ctx, tx, t, key, false)
			if err != nil || found {
				return row, false, err
			}
			row, err = r.insert(ctx, tx, t, key, rest)
			return row, err == nil, err
		})
	})
}

func (r *Reconciler) UpdateOrCreate(ctx context.Context, t *entity.Table, lookup, values entity.Values) (*entity.Row, bool, error) {
	key, rest, err := t.Prepare(lookup, values)
	if err != nil {
		return nil, false, err
	}
	return entity.RetryOnConflict(ctx, func(ctx context.Context) (*entity.Row, bool, error) {
		return r.inTx(ctx, t, func(tx *sqlx.Tx) (*entity.Row, bool, error) {
			row, found, err := r.selectByKey(ctx, tx, t, key, true)
			if err != nil {
				return nil, false, err
			}
			if found {
				row, err = r.update(ctx, tx, t, key, rest)
				return row, false, err
			}
			row, err = r.insert(ctx, tx, t, key, rest)
			return row, err == nil, err
		})
	})
}

func (r *Reconciler) inTx(ctx context.Context, t *entity.Table, fn func(tx *sqlx.Tx) (*entity.Row, bool, error)) (*entity.Row, bool, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, false, fmt.Errorf("begin tx reconcile %s: %w", t.Name(), err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	row, created, err := fn(tx)
	if err != nil {
		return nil, false, err
	}
	if err := tx.Commit(); err != nil {
		if isUniqueViolation(err) {
			return nil, false, crerr.Wrapf(entity.ErrUniqueViolation, "commit %s: %v", t.Name(), err)
		}
		return nil, false, fmt.Errorf("commit tx reconcile %s: %w", t.Name(), err)
	}
	return row, created, nil
}

// selectByKey reads the row by identity key. Soft-deleted rows are matched:
// identity is permanent and a deleted row is never re-inserted.
func (r *Reconciler) selectByKey(ctx context.Context, tx *sqlx.Tx, t *entity.Table, key entity.Values, forUpdate bool) (*entity.Row, bool, error) {
	b := qb.Select("*").From(t.Name()).Where(keyConditions(t, key)...).Limit(1)
	if forUpdate {
		b.Suffix("FOR UPDATE")
	}
	rows, err := selectRowsWith(ctx, tx, t, b)
	if err != nil {
		return nil, false, err
	}
	if len(rows) == 0 {
		return nil, false, nil
	}
	return rows[0], true, nil
}

func (r *Reconciler) insert(ctx context.Context, tx *sqlx.Tx, t *entity.Table, key, values entity.Values) (*entity.Row, error) {
	encoded, err := encodeValues(t, key.Merge(values))
	if err != nil {
		return nil, err
	}
	encoded[entity.ColumnUUID] = r.ids.NewID()

	query, args, err := qb.InsertInto(t.Name()).SetMap(encoded).Suffix("RETURNING *").ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build insert %s query: %w", t.Name(), err)
	}
	rows, err := selectRows(ctx, tx, t, query, args)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, crerr.Wrapf(entity.ErrUniqueViolation, "insert %s: %v", t.Name(), err)
		}
		return nil, fmt.Errorf("insert %s: %w", t.Name(), err)
	}
	if len(rows) == 0 {
		return nil, crerr.Newf("insert %s returned no row", t.Name())
	}
	return rows[0], nil
}

// update always bumps updated_at, even when values is empty.
func (r *Reconciler) update(ctx context.Context, tx *sqlx.Tx, t *entity.Table, key, values entity.Values) (*entity.Row, error) {
	encoded, err := encodeValues(t, values)
	if err != nil {
		return nil, err
	}

	query, args, err := qb.Update(t.Name()).
		SetMap(encoded).
		SetExpr(entity.ColumnUpdatedAt, "NOW()").
		Where(keyConditions(t, key)...).
		Suffix("RETURNING *").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build update %s query: %w", t.Name(), err)
	}
	rows, err := selectRows(ctx, tx, t, query, args)
	if err != nil {
		return nil, fmt.Errorf("update %s: %w", t.Name(), err)
	}
	if len(rows) == 0 {
		return nil, crerr.Newf("update %s matched no row", t.Name())
	}
	return rows[0], nil
}

func keyConditions(t *entity.Table, key entity.Values) []qb.Condition {
	out := make([]qb.Condition, 0, len(t.Key()))
	for _, column := range t.Key() {
		out = append(out, qb.Eq(column, key[column]))
	}
	return out
}
