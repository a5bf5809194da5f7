package usecase

import (
	"context"

	"github.com/riskibarqy/esports-stats/internal/domain/entity"
)

// StatsProvider reads the STRATZ REST API. Every method returns decoded JSON
// objects; an error means the fetch yielded nothing.
type StatsProvider interface {
	FetchLeagues(ctx context.Context) ([]entity.Payload, error)
	FetchLeagueSeries(ctx context.Context, leagueID int64) ([]entity.Payload, error)
	FetchTeam(ctx context.Context, teamID int64) (entity.Payload, error)
	FetchTeamMatches(ctx context.Context, teamID int64) ([]entity.Payload, error)
	FetchPlayer(ctx context.Context, playerID int64) (entity.Payload, error)
	// FetchProSteamAccounts returns the pro account map keyed by steam account id.
	FetchProSteamAccounts(ctx context.Context) (map[int64]entity.Payload, error)
}

// TeamRatingProvider reads rated teams from the OpenDota explorer.
type TeamRatingProvider interface {
	FetchTeamRatings(ctx context.Context) ([]entity.Payload, error)
}
