package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/esports-stats/internal/domain/entity"
	"github.com/riskibarqy/esports-stats/internal/domain/match"
	qb "github.com/riskibarqy/esports-stats/internal/platform/querybuilder"
)

type MatchRepository struct {
	db *sqlx.DB
}

func NewMatchRepository(db *sqlx.DB) *MatchRepository {
	return &MatchRepository{db: db}
}

func (r *MatchRepository) ListBySeries(ctx context.Context, seriesIDs []int64, opts ...entity.ReadOption) ([]match.Match, error) {
	if len(seriesIDs) == 0 {
		return []match.Match{}, nil
	}
	readOpts := entity.ApplyReadOptions(opts...)

	where := append([]qb.Condition{qb.In("series_id", int64Args(seriesIDs))}, liveFilter("deleted_at", readOpts)...)
	return r.listWithPickBans(ctx, qb.Select("*").From("matches").Where(where...).OrderBy("id"), readOpts)
}

func (r *MatchRepository) ListLatest(ctx context.Context, gameVersion int64, limit int, opts ...entity.ReadOption) ([]match.Match, error) {
	readOpts := entity.ApplyReadOptions(opts...)

	where := liveFilter("deleted_at", readOpts)
	if gameVersion > 0 {
		where = append(where, qb.Eq("game_version_id", gameVersion))
	}
	return r.listWithPickBans(ctx, qb.Select("*").From("matches").Where(where...).OrderBy("id DESC").Limit(limit), readOpts)
}

func (r *MatchRepository) GetDetail(ctx context.Context, matchID int64, opts ...entity.ReadOption) (match.Detail, bool, error) {
	readOpts := entity.ApplyReadOptions(opts...)

	where := append([]qb.Condition{qb.Eq("id", matchID)}, liveFilter("deleted_at", readOpts)...)
	matches, err := r.listWithPickBans(ctx, qb.Select("*").From("matches").Where(where...).Limit(1), readOpts)
	if err != nil {
		return match.Detail{}, false, err
	}
	if len(matches) == 0 {
		return match.Detail{}, false, nil
	}

	where = append([]qb.Condition{qb.Eq("match_id", matchID)}, liveFilter("deleted_at", readOpts)...)
	rows, err := selectRowsWith(ctx, r.db, match.PlayerTable,
		qb.Select("*").From("match_players").Where(where...).OrderBy("player_slot"))
	if err != nil {
		return match.Detail{}, false, err
	}
	detail := match.Detail{Match: matches[0], Players: make([]match.Player, 0, len(rows))}
	for _, row := range rows {
		detail.Players = append(detail.Players, match.PlayerFromRow(row))
	}
	return detail, true, nil
}

func (r *MatchRepository) HeroPickBans(ctx context.Context, filter match.PickFilter) (match.HeroPickBans, error) {
	where := []qb.Condition{
		qb.IsNull("m.deleted_at"),
		qb.IsNull("pb.deleted_at"),
		qb.IsNotNull("pb.hero_id"),
	}
	if filter.MinGameVersion > 0 {
		where = append(where, qb.Gte("m.game_version_id", filter.MinGameVersion))
	}
	switch filter.Scope {
	case match.PickScopeTeam:
		where = append(where, qb.Or(
			qb.Expr("(m.radiant_team_id = ? AND pb.is_radiant)", filter.ID),
			qb.Expr("(m.dire_team_id = ? AND NOT pb.is_radiant)", filter.ID),
		))
	case match.PickScopeLeague:
		where = append(where, qb.Eq("m.league_id", filter.ID))
	default:
		return match.HeroPickBans{}, fmt.Errorf("unknown pick scope %q", filter.Scope)
	}

	query, args, err := qb.Select("pb.hero_id", "pb.is_pick", "COUNT(*) AS total").
		From("match_picks_ban pb").
		Join("JOIN matches m ON m.id = pb.match_id").
		Where(where...).
		GroupBy("pb.hero_id", "pb.is_pick").
		OrderBy("total DESC", "pb.hero_id").
		ToSQL()
	if err != nil {
		return match.HeroPickBans{}, fmt.Errorf("build hero pick bans query: %w", err)
	}
	rows, err := r.db.QueryxContext(ctx, query, args...)
	if err != nil {
		return match.HeroPickBans{}, fmt.Errorf("select hero pick bans: %w", err)
	}
	defer rows.Close()

	out := match.HeroPickBans{Picks: []match.HeroCount{}, Bans: []match.HeroCount{}}
	for rows.Next() {
		var (
			heroID int64
			isPick sql.NullBool
			total  int64
		)
		if err := rows.Scan(&heroID, &isPick, &total); err != nil {
			return match.HeroPickBans{}, fmt.Errorf("scan hero pick bans: %w", err)
		}
		if !isPick.Valid {
			continue
		}
		if isPick.Bool {
			out.Picks = append(out.Picks, match.NewHeroCount(heroID, total))
		} else {
			out.Bans = append(out.Bans, match.NewHeroCount(heroID, total))
		}
	}
	if err := rows.Err(); err != nil {
		return match.HeroPickBans{}, fmt.Errorf("iterate hero pick bans: %w", err)
	}
	return out, nil
}

func (r *MatchRepository) PlayerHeroPicks(ctx context.Context, steamAccountID int64) ([]match.HeroCount, error) {
	query, args, err := qb.Select("hero_id", "COUNT(*) AS total").
		From("match_players").
		Where(
			qb.Eq("steam_account_id", steamAccountID),
			qb.IsNull("deleted_at"),
			qb.Expr("hero_id > 0"),
		).
		GroupBy("hero_id").
		OrderBy("total DESC", "hero_id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build player hero picks query: %w", err)
	}
	rows, err := r.db.QueryxContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("select player hero picks: %w", err)
	}
	defer rows.Close()

	out := make([]match.HeroCount, 0)
	for rows.Next() {
		var heroID, total int64
		if err := rows.Scan(&heroID, &total); err != nil {
			return nil, fmt.Errorf("scan player hero picks: %w", err)
		}
		out = append(out, match.NewHeroCount(heroID, total))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate player hero picks: %w", err)
	}
	return out, nil
}

func (r *MatchRepository) listWithPickBans(ctx context.Context, b *qb.SelectBuilder, readOpts entity.ReadOptions) ([]match.Match, error) {
	rows, err := selectRowsWith(ctx, r.db, match.MatchTable, b)
	if err != nil {
		return nil, err
	}

	out := make([]match.Match, 0, len(rows))
	index := make(map[int64]int, len(rows))
	matchIDs := make([]int64, 0, len(rows))
	for i, row := range rows {
		m := match.MatchFromRow(row)
		index[m.ID] = i
		matchIDs = append(matchIDs, m.ID)
		out = append(out, m)
	}
	if len(matchIDs) == 0 {
		return out, nil
	}

	where := append([]qb.Condition{qb.In("match_id", int64Args(matchIDs))}, liveFilter("deleted_at", readOpts)...)
	pickBans, err := selectRowsWith(ctx, r.db, match.PickBanTable,
		qb.Select("*").From("match_picks_ban").Where(where...).OrderBy("match_id", "pick_order"))
	if err != nil {
		return nil, err
	}
	for _, row := range pickBans {
		pb := match.PickBanFromRow(row)
		if i, ok := index[pb.MatchID]; ok {
			out[i].PickBans = append(out[i].PickBans, pb)
		}
	}
	return out, nil
}
