package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/bytedance/sonic"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/riskibarqy/esports-stats/internal/domain/entity"
	qb "github.com/riskibarqy/esports-stats/internal/platform/querybuilder"
)

const uniqueViolationCode = "23505"

func isNotFound(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolationCode
}

// liveFilter is the single place reads opt out of soft-deleted rows.
func liveFilter(column string, opts entity.ReadOptions) []qb.Condition {
	if opts.IncludeDeleted {
		return nil
	}
	return []qb.Condition{qb.IsNull(column)}
}

func int64Args(ids []int64) []any {
	out := make([]any, 0, len(ids))
	for _, id := range ids {
		out = append(out, id)
	}
	return out
}

// encodeValues prepares values for binding: JSON columns become their text encoding.
func encodeValues(t *entity.Table, values entity.Values) (map[string]any, error) {
	out := make(map[string]any, len(values))
	for column, value := range values {
		kind, _ := t.Kind(column)
		if kind == entity.KindJSON && value != nil {
			raw, err := sonic.MarshalString(value)
			if err != nil {
				return nil, fmt.Errorf("encode %s.%s: %w", t.Name(), column, err)
			}
			out[column] = raw
			continue
		}
		out[column] = value
	}
	return out, nil
}

// rowFromMap converts a MapScan result into a Row. Columns the table does not
// declare are ignored.
func rowFromMap(t *entity.Table, raw map[string]any) (*entity.Row, error) {
	row := &entity.Row{Values: make(entity.Values, len(raw))}
	for column, value := range raw {
		switch column {
		case entity.ColumnUUID:
			row.UUID = textValue(value)
			continue
		case entity.ColumnCreatedAt:
			row.CreatedAt, _ = value.(time.Time)
			continue
		case entity.ColumnUpdatedAt:
			row.UpdatedAt, _ = value.(time.Time)
			continue
		case entity.ColumnDeletedAt:
			if ts, ok := value.(time.Time); ok {
				row.DeletedAt = &ts
			}
			continue
		}

		kind, ok := t.Kind(column)
		if !ok {
			continue
		}
		decoded, err := decodeColumn(kind, value)
		if err != nil {
			return nil, fmt.Errorf("decode %s.%s: %w", t.Name(), column, err)
		}
		row.Values[column] = decoded
	}
	return row, nil
}

func decodeColumn(kind entity.Kind, value any) (any, error) {
	if value == nil {
		return nil, nil
	}
	raw, isBytes := value.([]byte)
	switch kind {
	case entity.KindJSON:
		if !isBytes {
			return value, nil
		}
		return entity.DecodeJSON(raw)
	case entity.KindString:
		return textValue(value), nil
	case entity.KindFloat:
		if isBytes {
			return strconv.ParseFloat(string(raw), 64)
		}
	case entity.KindInt:
		if isBytes {
			return strconv.ParseInt(string(raw), 10, 64)
		}
	}
	converted, ok := kind.Convert(value)
	if !ok {
		return nil, fmt.Errorf("unexpected %T for %s column", value, kind)
	}
	return converted, nil
}

func textValue(value any) string {
	switch v := value.(type) {
	case []byte:
		return string(v)
	case string:
		return v
	case nil:
		return ""
	default:
		return fmt.Sprint(v)
	}
}

// selectRows runs a built SELECT and converts every row through t.
func selectRows(ctx context.Context, q sqlx.QueryerContext, t *entity.Table, query string, args []any) ([]*entity.Row, error) {
	rows, err := q.QueryxContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]*entity.Row, 0)
	for rows.Next() {
		raw := make(map[string]any)
		if err := rows.MapScan(raw); err != nil {
			return nil, err
		}
		row, err := rowFromMap(t, raw)
		if err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

func selectRowsWith(ctx context.Context, q sqlx.QueryerContext, t *entity.Table, b *qb.SelectBuilder) ([]*entity.Row, error) {
	query, args, err := b.ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select %s query: %w", t.Name(), err)
	}
	rows, err := selectRows(ctx, q, t, query, args)
	if err != nil {
		return nil, fmt.Errorf("select %s: %w", t.Name(), err)
	}
	return rows, nil
}
