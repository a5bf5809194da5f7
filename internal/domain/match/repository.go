package match

import (
	"context"

	"github.com/riskibarqy/esports-stats/internal/domain/entity"
)

type Repository interface {
	// ListBySeries returns live matches of the given series with their pick/bans, oldest first.
	ListBySeries(ctx context.Context, seriesIDs []int64, opts ...entity.ReadOption) ([]Match, error)
	// ListLatest returns the newest matches with their pick/bans. A zero
	// gameVersion matches every patch.
	ListLatest(ctx context.Context, gameVersion int64, limit int, opts ...entity.ReadOption) ([]Match, error)
	GetDetail(ctx context.Context, matchID int64, opts ...entity.ReadOption) (Detail, bool, error)
	// HeroPickBans tallies live draft actions per hero, most frequent first.
	HeroPickBans(ctx context.Context, filter PickFilter) (HeroPickBans, error)
	// PlayerHeroPicks tallies the heroes an account played, most frequent first.
	PlayerHeroPicks(ctx context.Context, steamAccountID int64) ([]HeroCount, error)
}
