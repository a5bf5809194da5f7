package league

import (
	"context"

	"github.com/riskibarqy/esports-stats/internal/domain/entity"
)

// Repository describes league reads and bulk maintenance. Reads skip
// soft-deleted rows unless entity.IncludeDeleted() is passed.
type Repository interface {
	List(ctx context.Context, minTier int, opts ...entity.ReadOption) ([]League, error)
	GetByID(ctx context.Context, leagueID int64, opts ...entity.ReadOption) (League, bool, error)
	// ActiveIDs returns live, not-over leagues with tier >= minTier, newest first.
	ActiveIDs(ctx context.Context, minTier int) ([]int64, error)
	// ListForTeam returns the distinct leagues a team played a series in, newest first.
	ListForTeam(ctx context.Context, teamID int64) ([]League, error)
	// MarkOver flags every live league whose end time precedes now. It returns the rows touched.
	MarkOver(ctx context.Context, now int64) (int64, error)
	// SoftDelete marks the league and its series deleted.
	SoftDelete(ctx context.Context, leagueID int64) (bool, error)
	// Restore clears deleted_at on the league and its series.
	Restore(ctx context.Context, leagueID int64) (bool, error)
}

type SeriesRepository interface {
	ListByLeague(ctx context.Context, leagueID int64, limit int, opts ...entity.ReadOption) ([]Series, error)
	// MarkStale flags live series whose last match started before cutoff.
	MarkStale(ctx context.Context, cutoff int64) (int64, error)
}
