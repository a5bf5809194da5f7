package team

import (
	"context"

	"github.com/riskibarqy/esports-stats/internal/domain/entity"
)

type Repository interface {
	// List returns ranked teams, best rank first.
	List(ctx context.Context, limit int, opts ...entity.ReadOption) ([]Team, error)
	GetByID(ctx context.Context, teamID int64, opts ...entity.ReadOption) (Team, bool, error)
	// ListMembers returns the roster ordered by last_match_id descending.
	ListMembers(ctx context.Context, teamID int64, opts ...entity.ReadOption) ([]Member, error)
	// DetachPlayers clears the current-team link of players attached to this
	// team through a member not listed in keepMemberUUIDs.
	DetachPlayers(ctx context.Context, teamID int64, keepMemberUUIDs []string) (int64, error)
}
