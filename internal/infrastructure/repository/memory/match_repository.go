package memory

import (
	"context"
	"fmt"

	"github.com/riskibarqy/esports-stats/internal/domain/entity"
	"github.com/riskibarqy/esports-stats/internal/domain/match"
)

type MatchRepository struct {
	store *Store
}

func NewMatchRepository(store *Store) *MatchRepository {
	return &MatchRepository{store: store}
}

func (r *MatchRepository) ListBySeries(_ context.Context, seriesIDs []int64, opts ...entity.ReadOption) ([]match.Match, error) {
	wanted := make(map[int64]struct{}, len(seriesIDs))
	for _, id := range seriesIDs {
		wanted[id] = struct{}{}
	}
	readOpts := entity.ApplyReadOptions(opts...)

	rows := r.store.rows(match.MatchTable.Name(), readOpts, func(row *entity.Row) bool {
		_, ok := wanted[row.Int64Value("series_id")]
		return ok
	})
	sortByInt64(rows, "id", false)
	return r.withPickBans(rows, readOpts), nil
}

func (r *MatchRepository) ListLatest(_ context.Context, gameVersion int64, limit int, opts ...entity.ReadOption) ([]match.Match, error) {
	readOpts := entity.ApplyReadOptions(opts...)

	rows := r.store.rows(match.MatchTable.Name(), readOpts, func(row *entity.Row) bool {
		return gameVersion <= 0 || row.Int64Value("game_version_id") == gameVersion
	})
	sortByInt64(rows, "id", true)
	return r.withPickBans(limitRows(rows, limit), readOpts), nil
}

func (r *MatchRepository) GetDetail(_ context.Context, matchID int64, opts ...entity.ReadOption) (match.Detail, bool, error) {
	readOpts := entity.ApplyReadOptions(opts...)

	rows := r.store.rows(match.MatchTable.Name(), readOpts, func(row *entity.Row) bool {
		return row.Int64Value("id") == matchID
	})
	if len(rows) == 0 {
		return match.Detail{}, false, nil
	}
	matches := r.withPickBans(rows[:1], readOpts)

	players := r.store.rows(match.PlayerTable.Name(), readOpts, func(row *entity.Row) bool {
		return row.Int64Value("match_id") == matchID
	})
	sortByInt64(players, "player_slot", false)
	detail := match.Detail{Match: matches[0], Players: make([]match.Player, 0, len(players))}
	for _, row := range players {
		detail.Players = append(detail.Players, match.PlayerFromRow(row))
	}
	return detail, true, nil
}

func (r *MatchRepository) HeroPickBans(_ context.Context, filter match.PickFilter) (match.HeroPickBans, error) {
	if !filter.Scope.Valid() {
		return match.HeroPickBans{}, fmt.Errorf("unknown pick scope %q", filter.Scope)
	}

	live := entity.ReadOptions{}
	matches := make(map[int64]*entity.Row)
	for _, row := range r.store.rows(match.MatchTable.Name(), live, func(row *entity.Row) bool {
		if filter.MinGameVersion > 0 && row.Int64Value("game_version_id") < filter.MinGameVersion {
			return false
		}
		return filter.Scope != match.PickScopeLeague || row.Int64Value("league_id") == filter.ID
	}) {
		matches[row.Int64Value("id")] = row
	}

	picks := make(map[int64]int64)
	bans := make(map[int64]int64)
	for _, row := range r.store.rows(match.PickBanTable.Name(), live, nil) {
		m, ok := matches[row.Int64Value("match_id")]
		if !ok {
			continue
		}
		heroID, hasHero := row.Int64("hero_id")
		isPick, hasPick := row.Bool("is_pick")
		if !hasHero || !hasPick {
			continue
		}
		if filter.Scope == match.PickScopeTeam && !draftedBy(m, row, filter.ID) {
			continue
		}
		if isPick {
			picks[heroID]++
		} else {
			bans[heroID]++
		}
	}
	return match.HeroPickBans{Picks: heroCounts(picks), Bans: heroCounts(bans)}, nil
}

func (r *MatchRepository) PlayerHeroPicks(_ context.Context, steamAccountID int64) ([]match.HeroCount, error) {
	counts := make(map[int64]int64)
	for _, row := range r.store.rows(match.PlayerTable.Name(), entity.ReadOptions{}, func(row *entity.Row) bool {
		return row.Int64Value("steam_account_id") == steamAccountID
	}) {
		if heroID := row.Int64Value("hero_id"); heroID > 0 {
			counts[heroID]++
		}
	}
	return heroCounts(counts), nil
}

// draftedBy reports whether the draft action was taken on teamID's side.
func draftedBy(m, pickBan *entity.Row, teamID int64) bool {
	radiant, ok := pickBan.Bool("is_radiant")
	if !ok {
		return false
	}
	if radiant {
		return m.Int64Value("radiant_team_id") == teamID
	}
	return m.Int64Value("dire_team_id") == teamID
}

func heroCounts(counts map[int64]int64) []match.HeroCount {
	out := make([]match.HeroCount, 0, len(counts))
	for heroID, count := range counts {
		out = append(out, match.NewHeroCount(heroID, count))
	}
	match.SortHeroCounts(out)
	return out
}

func (r *MatchRepository) withPickBans(rows []*entity.Row, readOpts entity.ReadOptions) []match.Match {
	matchIDs := make(map[int64]int, len(rows))
	out := make([]match.Match, 0, len(rows))
	for i, row := range rows {
		m := match.MatchFromRow(row)
		matchIDs[m.ID] = i
		out = append(out, m)
	}

	pickBans := r.store.rows(match.PickBanTable.Name(), readOpts, func(row *entity.Row) bool {
		_, ok := matchIDs[row.Int64Value("match_id")]
		return ok
	})
	sortByInt64(pickBans, "pick_order", false)
	for _, row := range pickBans {
		pb := match.PickBanFromRow(row)
		idx := matchIDs[pb.MatchID]
		out[idx].PickBans = append(out[idx].PickBans, pb)
	}
	return out
}
