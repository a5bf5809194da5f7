package cache

import (
	"context"
	"strconv"
	"strings"

	"github.com/riskibarqy/esports-stats/internal/domain/entity"
	"github.com/riskibarqy/esports-stats/internal/domain/league"
	"github.com/riskibarqy/esports-stats/internal/domain/match"
	"github.com/riskibarqy/esports-stats/internal/domain/player"
	"github.com/riskibarqy/esports-stats/internal/domain/team"
	basecache "github.com/riskibarqy/esports-stats/internal/platform/cache"
)

// Key prefixes, one per entity family. Refresh runs drop a whole prefix.
const (
	PrefixLeague = "league:"
	PrefixSeries = "series:"
	PrefixMatch  = "match:"
	PrefixTeam   = "team:"
	PrefixPlayer = "player:"
)

func cacheKey(prefix string, opts []entity.ReadOption, parts ...int64) string {
	var b strings.Builder
	b.WriteString(prefix)
	for i, part := range parts {
		if i > 0 {
			b.WriteByte(':')
		}
		b.WriteString(strconv.FormatInt(part, 10))
	}
	if entity.ApplyReadOptions(opts...).IncludeDeleted {
		b.WriteString(":all")
	}
	return b.String()
}

type found[T any] struct {
	value  T
	exists bool
}

type LeagueRepository struct {
	next  league.Repository
	cache *basecache.Store
}

func NewLeagueRepository(next league.Repository, cache *basecache.Store) *LeagueRepository {
	return &LeagueRepository{next: next, cache: cache}
}

func (r *LeagueRepository) List(ctx context.Context, minTier int, opts ...entity.ReadOption) ([]league.League, error) {
	v, err := r.cache.GetOrLoad(ctx, cacheKey(PrefixLeague+"list:", opts, int64(minTier)), func(ctx context.Context) (any, error) {
		items, err := r.next.List(ctx, minTier, opts...)
		if err != nil {
			return nil, err
		}
		return append([]league.League(nil), items...), nil
	})
	if err != nil {
		return nil, err
	}

	items, _ := v.([]league.League)
	return append([]league.League(nil), items...), nil
}

func (r *LeagueRepository) GetByID(ctx context.Context, leagueID int64, opts ...entity.ReadOption) (league.League, bool, error) {
	v, err := r.cache.GetOrLoad(ctx, cacheKey(PrefixLeague+"id:", opts, leagueID), func(ctx context.Context) (any, error) {
		item, exists, err := r.next.GetByID(ctx, leagueID, opts...)
		if err != nil {
			return nil, err
		}
		return found[league.League]{value: item, exists: exists}, nil
	})
	if err != nil {
		return league.League{}, false, err
	}

	cached, _ := v.(found[league.League])
	return cached.value, cached.exists, nil
}

func (r *LeagueRepository) ActiveIDs(ctx context.Context, minTier int) ([]int64, error) {
	return r.next.ActiveIDs(ctx, minTier)
}

func (r *LeagueRepository) ListForTeam(ctx context.Context, teamID int64) ([]league.League, error) {
	v, err := r.cache.GetOrLoad(ctx, cacheKey(PrefixLeague+"team:", nil, teamID), func(ctx context.Context) (any, error) {
		items, err := r.next.ListForTeam(ctx, teamID)
		if err != nil {
			return nil, err
		}
		return append([]league.League(nil), items...), nil
	})
	if err != nil {
		return nil, err
	}

	items, _ := v.([]league.League)
	return append([]league.League(nil), items...), nil
}

func (r *LeagueRepository) MarkOver(ctx context.Context, now int64) (int64, error) {
	n, err := r.next.MarkOver(ctx, now)
	if n > 0 {
		r.cache.DeletePrefix(ctx, PrefixLeague)
	}
	return n, err
}

func (r *LeagueRepository) SoftDelete(ctx context.Context, leagueID int64) (bool, error) {
	ok, err := r.next.SoftDelete(ctx, leagueID)
	r.dropLeagueTree(ctx)
	return ok, err
}

func (r *LeagueRepository) Restore(ctx context.Context, leagueID int64) (bool, error) {
	ok, err := r.next.Restore(ctx, leagueID)
	r.dropLeagueTree(ctx)
	return ok, err
}

func (r *LeagueRepository) dropLeagueTree(ctx context.Context) {
	r.cache.DeletePrefix(ctx, PrefixLeague)
	r.cache.DeletePrefix(ctx, PrefixSeries)
}

type SeriesRepository struct {
	next  league.SeriesRepository
	cache *basecache.Store
}

func NewSeriesRepository(next league.SeriesRepository, cache *basecache.Store) *SeriesRepository {
	return &SeriesRepository{next: next, cache: cache}
}

func (r *SeriesRepository) ListByLeague(ctx context.Context, leagueID int64, limit int, opts ...entity.ReadOption) ([]league.Series, error) {
	v, err := r.cache.GetOrLoad(ctx, cacheKey(PrefixSeries+"league:", opts, leagueID, int64(limit)), func(ctx context.Context) (any, error) {
		items, err := r.next.ListByLeague(ctx, leagueID, limit, opts...)
		if err != nil {
			return nil, err
		}
		return append([]league.Series(nil), items...), nil
	})
	if err != nil {
		return nil, err
	}

	items, _ := v.([]league.Series)
	return append([]league.Series(nil), items...), nil
}

func (r *SeriesRepository) MarkStale(ctx context.Context, cutoff int64) (int64, error) {
	n, err := r.next.MarkStale(ctx, cutoff)
	if n > 0 {
		r.cache.DeletePrefix(ctx, PrefixSeries)
	}
	return n, err
}

type MatchRepository struct {
	next  match.Repository
	cache *basecache.Store
}

func NewMatchRepository(next match.Repository, cache *basecache.Store) *MatchRepository {
	return &MatchRepository{next: next, cache: cache}
}

func (r *MatchRepository) ListBySeries(ctx context.Context, seriesIDs []int64, opts ...entity.ReadOption) ([]match.Match, error) {
	v, err := r.cache.GetOrLoad(ctx, cacheKey(PrefixMatch+"series:", opts, seriesIDs...), func(ctx context.Context) (any, error) {
		items, err := r.next.ListBySeries(ctx, seriesIDs, opts...)
		if err != nil {
			return nil, err
		}
		return append([]match.Match(nil), items...), nil
	})
	if err != nil {
		return nil, err
	}

	items, _ := v.([]match.Match)
	return append([]match.Match(nil), items...), nil
}

func (r *MatchRepository) ListLatest(ctx context.Context, gameVersion int64, limit int, opts ...entity.ReadOption) ([]match.Match, error) {
	v, err := r.cache.GetOrLoad(ctx, cacheKey(PrefixMatch+"latest:", opts, gameVersion, int64(limit)), func(ctx context.Context) (any, error) {
		items, err := r.next.ListLatest(ctx, gameVersion, limit, opts...)
		if err != nil {
			return nil, err
		}
		return append([]match.Match(nil), items...), nil
	})
	if err != nil {
		return nil, err
	}

	items, _ := v.([]match.Match)
	return append([]match.Match(nil), items...), nil
}

func (r *MatchRepository) GetDetail(ctx context.Context, matchID int64, opts ...entity.ReadOption) (match.Detail, bool, error) {
	v, err := r.cache.GetOrLoad(ctx, cacheKey(PrefixMatch+"id:", opts, matchID), func(ctx context.Context) (any, error) {
		item, exists, err := r.next.GetDetail(ctx, matchID, opts...)
		if err != nil {
			return nil, err
		}
		return found[match.Detail]{value: item, exists: exists}, nil
	})
	if err != nil {
		return match.Detail{}, false, err
	}

	cached, _ := v.(found[match.Detail])
	return cached.value, cached.exists, nil
}

func (r *MatchRepository) HeroPickBans(ctx context.Context, filter match.PickFilter) (match.HeroPickBans, error) {
	key := cacheKey(PrefixMatch+"picks:"+string(filter.Scope)+":", nil, filter.ID, filter.MinGameVersion)
	v, err := r.cache.GetOrLoad(ctx, key, func(ctx context.Context) (any, error) {
		return r.next.HeroPickBans(ctx, filter)
	})
	if err != nil {
		return match.HeroPickBans{}, err
	}

	cached, _ := v.(match.HeroPickBans)
	return match.HeroPickBans{
		Picks: append([]match.HeroCount{}, cached.Picks...),
		Bans:  append([]match.HeroCount{}, cached.Bans...),
	}, nil
}

func (r *MatchRepository) PlayerHeroPicks(ctx context.Context, steamAccountID int64) ([]match.HeroCount, error) {
	v, err := r.cache.GetOrLoad(ctx, cacheKey(PrefixMatch+"player:", nil, steamAccountID), func(ctx context.Context) (any, error) {
		items, err := r.next.PlayerHeroPicks(ctx, steamAccountID)
		if err != nil {
			return nil, err
		}
		return append([]match.HeroCount(nil), items...), nil
	})
	if err != nil {
		return nil, err
	}

	items, _ := v.([]match.HeroCount)
	return append([]match.HeroCount{}, items...), nil
}

type TeamRepository struct {
	next  team.Repository
	cache *basecache.Store
}

func NewTeamRepository(next team.Repository, cache *basecache.Store) *TeamRepository {
	return &TeamRepository{next: next, cache: cache}
}

func (r *TeamRepository) List(ctx context.Context, limit int, opts ...entity.ReadOption) ([]team.Team, error) {
	v, err := r.cache.GetOrLoad(ctx, cacheKey(PrefixTeam+"list:", opts, int64(limit)), func(ctx context.Context) (any, error) {
		items, err := r.next.List(ctx, limit, opts...)
		if err != nil {
			return nil, err
		}
		return append([]team.Team(nil), items...), nil
	})
	if err != nil {
		return nil, err
	}

	items, _ := v.([]team.Team)
	return append([]team.Team(nil), items...), nil
}

func (r *TeamRepository) GetByID(ctx context.Context, teamID int64, opts ...entity.ReadOption) (team.Team, bool, error) {
	v, err := r.cache.GetOrLoad(ctx, cacheKey(PrefixTeam+"id:", opts, teamID), func(ctx context.Context) (any, error) {
		item, exists, err := r.next.GetByID(ctx, teamID, opts...)
		if err != nil {
			return nil, err
		}
		return found[team.Team]{value: item, exists: exists}, nil
	})
	if err != nil {
		return team.Team{}, false, err
	}

	cached, _ := v.(found[team.Team])
	return cached.value, cached.exists, nil
}

func (r *TeamRepository) ListMembers(ctx context.Context, teamID int64, opts ...entity.ReadOption) ([]team.Member, error) {
	v, err := r.cache.GetOrLoad(ctx, cacheKey(PrefixTeam+"members:", opts, teamID), func(ctx context.Context) (any, error) {
		items, err := r.next.ListMembers(ctx, teamID, opts...)
		if err != nil {
			return nil, err
		}
		return append([]team.Member(nil), items...), nil
	})
	if err != nil {
		return nil, err
	}

	items, _ := v.([]team.Member)
	return append([]team.Member(nil), items...), nil
}

func (r *TeamRepository) DetachPlayers(ctx context.Context, teamID int64, keepMemberUUIDs []string) (int64, error) {
	n, err := r.next.DetachPlayers(ctx, teamID, keepMemberUUIDs)
	r.cache.DeletePrefix(ctx, PrefixTeam)
	r.cache.DeletePrefix(ctx, PrefixPlayer)
	return n, err
}

type PlayerRepository struct {
	next  player.Repository
	cache *basecache.Store
}

func NewPlayerRepository(next player.Repository, cache *basecache.Store) *PlayerRepository {
	return &PlayerRepository{next: next, cache: cache}
}

func (r *PlayerRepository) GetProfile(ctx context.Context, playerID int64, opts ...entity.ReadOption) (player.Profile, bool, error) {
	v, err := r.cache.GetOrLoad(ctx, cacheKey(PrefixPlayer+"id:", opts, playerID), func(ctx context.Context) (any, error) {
		item, exists, err := r.next.GetProfile(ctx, playerID, opts...)
		if err != nil {
			return nil, err
		}
		return found[player.Profile]{value: item, exists: exists}, nil
	})
	if err != nil {
		return player.Profile{}, false, err
	}

	cached, _ := v.(found[player.Profile])
	return cached.value, cached.exists, nil
}

// Invalidate drops every cached read under the given prefixes.
func Invalidate(ctx context.Context, store *basecache.Store, prefixes ...string) int {
	if store == nil {
		return 0
	}
	total := 0
	for _, prefix := range prefixes {
		total += store.DeletePrefix(ctx, prefix)
	}
	return total
}
