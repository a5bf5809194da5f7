package player

import (
	"context"

	"github.com/riskibarqy/esports-stats/internal/domain/entity"
)

type Repository interface {
	// GetProfile assembles the player, both accounts, the current team and child collections.
	GetProfile(ctx context.Context, playerID int64, opts ...entity.ReadOption) (Profile, bool, error)
}
