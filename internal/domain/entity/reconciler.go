package entity

import (
	"context"
	"errors"
	"fmt"
)

// Reconciler upserts rows by identity key. Each call commits its own unit of
// work; the returned bool reports whether the row was created.
type Reconciler interface {
	// GetOrCreate returns the row matching lookup unchanged, or inserts lookup ∪ defaults.
	GetOrCreate(ctx context.Context, table *Table, lookup, defaults Values) (*Row, bool, error)
	// UpdateOrCreate overwrites the named columns of the matching row, or inserts lookup ∪ values.
	UpdateOrCreate(ctx context.Context, table *Table, lookup, values Values) (*Row, bool, error)
}

// RetryOnConflict runs op and, when it loses an insert race, runs it once more
// so the second pass reads (and for updates, overwrites) the winner's row.
// A second conflict is returned as fatal.
func RetryOnConflict(ctx context.Context, op func(context.Context) (*Row, bool, error)) (*Row, bool, error) {
	row, created, err := op(ctx)
	if err == nil || !errors.Is(err, ErrUniqueViolation) {
		return row, created, err
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, false, ctxErr
	}

	row, created, err = op(ctx)
	if err != nil && errors.Is(err, ErrUniqueViolation) {
		return nil, false, fmt.Errorf("conflict persisted after re-read: %w", err)
	}
	return row, created, err
}
