package cache

import (
	"context"

	basecache "github.com/riskibarqy/esports-stats/internal/platform/cache"
	"github.com/riskibarqy/esports-stats/internal/platform/logging"
)

var prefixByEntity = map[string]string{
	"league": PrefixLeague,
	"series": PrefixSeries,
	"match":  PrefixMatch,
	"team":   PrefixTeam,
	"player": PrefixPlayer,
}

// Invalidator maps entity names reported by refresh jobs onto key prefixes.
type Invalidator struct {
	store  *basecache.Store
	logger *logging.Logger
}

func NewInvalidator(store *basecache.Store, logger *logging.Logger) *Invalidator {
	return &Invalidator{store: store, logger: logging.OrDefault(logger).Named("cache")}
}

func (i *Invalidator) InvalidateEntities(ctx context.Context, entities ...string) {
	prefixes := make([]string, 0, len(entities))
	for _, name := range entities {
		prefix, ok := prefixByEntity[name]
		if !ok {
			i.logger.WarnContext(ctx, "unknown cache entity", "entity", name)
			continue
		}
		prefixes = append(prefixes, prefix)
	}
	dropped := Invalidate(ctx, i.store, prefixes...)
	i.logger.DebugContext(ctx, "cache invalidated", "entities", entities, "dropped", dropped)
}
