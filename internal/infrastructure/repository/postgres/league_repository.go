package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/esports-stats/internal/domain/entity"
	"github.com/riskibarqy/esports-stats/internal/domain/league"
	qb "github.com/riskibarqy/esports-stats/internal/platform/querybuilder"
)

type LeagueRepository struct {
	db *sqlx.DB
}

func NewLeagueRepository(db *sqlx.DB) *LeagueRepository {
	return &LeagueRepository{db: db}
}

func (r *LeagueRepository) List(ctx context.Context, minTier int, opts ...entity.ReadOption) ([]league.League, error) {
	where := append([]qb.Condition{qb.Gte("tier", minTier)}, liveFilter("deleted_at", entity.ApplyReadOptions(opts...))...)
	rows, err := selectRowsWith(ctx, r.db, league.LeagueTable,
		qb.Select("*").From("leagues").Where(where...).OrderBy("id DESC"))
	if err != nil {
		return nil, err
	}
	return leaguesFromRows(rows), nil
}

func (r *LeagueRepository) GetByID(ctx context.Context, leagueID int64, opts ...entity.ReadOption) (league.League, bool, error) {
	where := append([]qb.Condition{qb.Eq("id", leagueID)}, liveFilter("deleted_at", entity.ApplyReadOptions(opts...))...)
	rows, err := selectRowsWith(ctx, r.db, league.LeagueTable,
		qb.Select("*").From("leagues").Where(where...).Limit(1))
	if err != nil {
		return league.League{}, false, err
	}
	if len(rows) == 0 {
		return league.League{}, false, nil
	}
	return league.LeagueFromRow(rows[0]), true, nil
}

func (r *LeagueRepository) ActiveIDs(ctx context.Context, minTier int) ([]int64, error) {
	query, args, err := qb.Select("id").From("leagues").
		Where(
			qb.IsNull("deleted_at"),
			qb.Gte("tier", minTier),
			qb.Or(qb.IsNull("is_over"), qb.Eq("is_over", false)),
		).
		OrderBy("id DESC").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select active league ids query: %w", err)
	}

	var ids []int64
	if err := r.db.SelectContext(ctx, &ids, query, args...); err != nil {
		return nil, fmt.Errorf("select active league ids: %w", err)
	}
	return ids, nil
}

func (r *LeagueRepository) ListForTeam(ctx context.Context, teamID int64) ([]league.League, error) {
	rows, err := selectRowsWith(ctx, r.db, league.LeagueTable,
		qb.Select("*").From("leagues").
			Where(
				qb.IsNull("deleted_at"),
				qb.Expr("id IN (SELECT league_id FROM series WHERE deleted_at IS NULL AND (team_one_id = ? OR team_two_id = ?))", teamID, teamID),
			).
			OrderBy("id DESC"))
	if err != nil {
		return nil, err
	}
	return leaguesFromRows(rows), nil
}

func (r *LeagueRepository) MarkOver(ctx context.Context, now int64) (int64, error) {
	query, args, err := qb.Update("leagues").
		Set("is_over", true).
		SetExpr("updated_at", "NOW()").
		Where(
			qb.Lt("end_datetime", now),
			qb.IsNull("deleted_at"),
			qb.Or(qb.IsNull("is_over"), qb.Eq("is_over", false)),
		).
		ToSQL()
	if err != nil {
		return 0, fmt.Errorf("build mark leagues over query: %w", err)
	}
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("mark leagues over: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected mark leagues over: %w", err)
	}
	return affected, nil
}

func (r *LeagueRepository) SoftDelete(ctx context.Context, leagueID int64) (bool, error) {
	return r.inLeagueTx(ctx, "soft delete", leagueID, func(tx *sqlx.Tx, deletedAt sql.NullTime) error {
		if deletedAt.Valid {
			return nil
		}
		// NOW() is the transaction start time, so the league and the series it
		// hides share one deleted_at stamp.
		if err := execUpdate(ctx, tx, qb.Update("leagues").
			SetExpr("deleted_at", "NOW()").
			SetExpr("updated_at", "NOW()").
			Where(qb.Eq("id", leagueID))); err != nil {
			return err
		}
		return execUpdate(ctx, tx, qb.Update("series").
			SetExpr("deleted_at", "NOW()").
			SetExpr("updated_at", "NOW()").
			Where(qb.Eq("league_id", leagueID), qb.IsNull("deleted_at")))
	})
}

// Restore brings back the league and only the series deleted together with
// it. Series deleted on their own earlier stay deleted.
func (r *LeagueRepository) Restore(ctx context.Context, leagueID int64) (bool, error) {
	return r.inLeagueTx(ctx, "restore", leagueID, func(tx *sqlx.Tx, deletedAt sql.NullTime) error {
		if !deletedAt.Valid {
			return nil
		}
		if err := execUpdate(ctx, tx, qb.Update("series").
			Set("deleted_at", nil).
			SetExpr("updated_at", "NOW()").
			Where(qb.Eq("league_id", leagueID), qb.Eq("deleted_at", deletedAt.Time))); err != nil {
			return err
		}
		return execUpdate(ctx, tx, qb.Update("leagues").
			Set("deleted_at", nil).
			SetExpr("updated_at", "NOW()").
			Where(qb.Eq("id", leagueID)))
	})
}

// inLeagueTx locks the league row and hands its deleted_at to fn. It reports
// false when the league does not exist.
func (r *LeagueRepository) inLeagueTx(ctx context.Context, action string, leagueID int64, fn func(tx *sqlx.Tx, deletedAt sql.NullTime) error) (bool, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("begin tx %s league: %w", action, err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	var deletedAt sql.NullTime
	if err := tx.GetContext(ctx, &deletedAt, "SELECT deleted_at FROM leagues WHERE id = $1 FOR UPDATE", leagueID); err != nil {
		if isNotFound(err) {
			return false, nil
		}
		return false, fmt.Errorf("%s league lookup: %w", action, err)
	}
	if err := fn(tx, deletedAt); err != nil {
		return false, fmt.Errorf("%s league %d: %w", action, leagueID, err)
	}
	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("commit tx %s league: %w", action, err)
	}
	return true, nil
}

func execUpdate(ctx context.Context, tx *sqlx.Tx, b *qb.UpdateBuilder) error {
	query, args, err := b.ToSQL()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return err
	}
	return nil
}

func leaguesFromRows(rows []*entity.Row) []league.League {
	out := make([]league.League, 0, len(rows))
	for _, row := range rows {
		out = append(out, league.LeagueFromRow(row))
	}
	return out
}

type SeriesRepository struct {
	db *sqlx.DB
}

func NewSeriesRepository(db *sqlx.DB) *SeriesRepository {
	return &SeriesRepository{db: db}
}

func (r *SeriesRepository) ListByLeague(ctx context.Context, leagueID int64, limit int, opts ...entity.ReadOption) ([]league.Series, error) {
	where := append([]qb.Condition{qb.Eq("league_id", leagueID)}, liveFilter("deleted_at", entity.ApplyReadOptions(opts...))...)
	rows, err := selectRowsWith(ctx, r.db, league.SeriesTable,
		qb.Select("*").From("series").Where(where...).OrderBy("id DESC").Limit(limit))
	if err != nil {
		return nil, err
	}

	out := make([]league.Series, 0, len(rows))
	for _, row := range rows {
		out = append(out, league.SeriesFromRow(row))
	}
	return out, nil
}

func (r *SeriesRepository) MarkStale(ctx context.Context, cutoff int64) (int64, error) {
	query, args, err := qb.Update("series").
		Set("is_over", true).
		SetExpr("updated_at", "NOW()").
		Where(
			qb.Lt("last_match_date_time", cutoff),
			qb.IsNull("deleted_at"),
			qb.Or(qb.IsNull("is_over"), qb.Eq("is_over", false)),
		).
		ToSQL()
	if err != nil {
		return 0, fmt.Errorf("build mark series stale query: %w", err)
	}
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("mark series stale: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected mark series stale: %w", err)
	}
	return affected, nil
}
