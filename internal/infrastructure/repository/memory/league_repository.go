package memory

import (
	"context"
	"time"

	"github.com/riskibarqy/esports-stats/internal/domain/entity"
	"github.com/riskibarqy/esports-stats/internal/domain/league"
)

type LeagueRepository struct {
	store *Store
}

func NewLeagueRepository(store *Store) *LeagueRepository {
	return &LeagueRepository{store: store}
}

func (r *LeagueRepository) List(_ context.Context, minTier int, opts ...entity.ReadOption) ([]league.League, error) {
	rows := r.store.rows(league.LeagueTable.Name(), entity.ApplyReadOptions(opts...), func(row *entity.Row) bool {
		return row.Int64Value("tier") >= int64(minTier)
	})
	sortByInt64(rows, "id", true)

	out := make([]league.League, 0, len(rows))
	for _, row := range rows {
		out = append(out, league.LeagueFromRow(row))
	}
	return out, nil
}

func (r *LeagueRepository) GetByID(_ context.Context, leagueID int64, opts ...entity.ReadOption) (league.League, bool, error) {
	rows := r.store.rows(league.LeagueTable.Name(), entity.ApplyReadOptions(opts...), func(row *entity.Row) bool {
		return row.Int64Value("id") == leagueID
	})
	if len(rows) == 0 {
		return league.League{}, false, nil
	}
	return league.LeagueFromRow(rows[0]), true, nil
}

func (r *LeagueRepository) ActiveIDs(_ context.Context, minTier int) ([]int64, error) {
	rows := r.store.rows(league.LeagueTable.Name(), entity.ReadOptions{}, func(row *entity.Row) bool {
		return row.Int64Value("tier") >= int64(minTier) && isFalseOrNull(row, "is_over")
	})
	sortByInt64(rows, "id", true)

	out := make([]int64, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.Int64Value("id"))
	}
	return out, nil
}

func (r *LeagueRepository) ListForTeam(_ context.Context, teamID int64) ([]league.League, error) {
	leagueIDs := make(map[int64]struct{})
	for _, row := range r.store.rows(league.SeriesTable.Name(), entity.ReadOptions{}, func(row *entity.Row) bool {
		return row.Int64Value("team_one_id") == teamID || row.Int64Value("team_two_id") == teamID
	}) {
		leagueIDs[row.Int64Value("league_id")] = struct{}{}
	}

	rows := r.store.rows(league.LeagueTable.Name(), entity.ReadOptions{}, func(row *entity.Row) bool {
		_, ok := leagueIDs[row.Int64Value("id")]
		return ok
	})
	sortByInt64(rows, "id", true)

	out := make([]league.League, 0, len(rows))
	for _, row := range rows {
		out = append(out, league.LeagueFromRow(row))
	}
	return out, nil
}

func (r *LeagueRepository) MarkOver(_ context.Context, now int64) (int64, error) {
	return r.store.mutate(league.LeagueTable.Name(), func(row *entity.Row) bool {
		end, ok := row.Int64("end_datetime")
		return ok && end < now && row.DeletedAt == nil && isFalseOrNull(row, "is_over")
	}, func(row *entity.Row, _ time.Time) bool {
		row.Values["is_over"] = true
		return true
	}), nil
}

func (r *LeagueRepository) SoftDelete(_ context.Context, leagueID int64) (bool, error) {
	found := false
	var stamp *time.Time
	r.store.mutate(league.LeagueTable.Name(), func(row *entity.Row) bool {
		if row.Int64Value("id") != leagueID {
			return false
		}
		found = true
		return true
	}, func(row *entity.Row, now time.Time) bool {
		if row.DeletedAt != nil {
			return false
		}
		row.DeletedAt = &now
		stamp = &now
		return true
	})
	if stamp != nil {
		r.store.mutate(league.SeriesTable.Name(), func(row *entity.Row) bool {
			return row.Int64Value("league_id") == leagueID && row.DeletedAt == nil
		}, func(row *entity.Row, _ time.Time) bool {
			deletedAt := *stamp
			row.DeletedAt = &deletedAt
			return true
		})
	}
	return found, nil
}

// Restore brings back the league and the series deleted together with it.
func (r *LeagueRepository) Restore(_ context.Context, leagueID int64) (bool, error) {
	found := false
	var stamp *time.Time
	r.store.mutate(league.LeagueTable.Name(), func(row *entity.Row) bool {
		if row.Int64Value("id") != leagueID {
			return false
		}
		found = true
		return true
	}, func(row *entity.Row, _ time.Time) bool {
		if row.DeletedAt == nil {
			return false
		}
		stamp = row.DeletedAt
		row.DeletedAt = nil
		return true
	})
	if stamp != nil {
		r.store.mutate(league.SeriesTable.Name(), func(row *entity.Row) bool {
			return row.Int64Value("league_id") == leagueID && row.DeletedAt != nil && row.DeletedAt.Equal(*stamp)
		}, func(row *entity.Row, _ time.Time) bool {
			row.DeletedAt = nil
			return true
		})
	}
	return found, nil
}

type SeriesRepository struct {
	store *Store
}

func NewSeriesRepository(store *Store) *SeriesRepository {
	return &SeriesRepository{store: store}
}

func (r *SeriesRepository) ListByLeague(_ context.Context, leagueID int64, limit int, opts ...entity.ReadOption) ([]league.Series, error) {
	rows := r.store.rows(league.SeriesTable.Name(), entity.ApplyReadOptions(opts...), func(row *entity.Row) bool {
		return row.Int64Value("league_id") == leagueID
	})
	sortByInt64(rows, "id", true)
	rows = limitRows(rows, limit)

	out := make([]league.Series, 0, len(rows))
	for _, row := range rows {
		out = append(out, league.SeriesFromRow(row))
	}
	return out, nil
}

func (r *SeriesRepository) MarkStale(_ context.Context, cutoff int64) (int64, error) {
	return r.store.mutate(league.SeriesTable.Name(), func(row *entity.Row) bool {
		last, ok := row.Int64("last_match_date_time")
		return ok && last < cutoff && row.DeletedAt == nil && isFalseOrNull(row, "is_over")
	}, func(row *entity.Row, _ time.Time) bool {
		row.Values["is_over"] = true
		return true
	}), nil
}
