package cache

import (
	"context"
	"testing"
	"time"

	basecache "github.com/riskibarqy/esports-stats/internal/platform/cache"
	"github.com/riskibarqy/esports-stats/internal/platform/logging"
)

func TestInvalidator_DropsOnlyNamedEntities(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := basecache.NewStore(time.Minute)
	store.Set(ctx, PrefixLeague+"1", "league")
	store.Set(ctx, PrefixTeam+"39", "team")
	store.Set(ctx, PrefixPlayer+"77", "player")

	NewInvalidator(store, logging.NewNop()).InvalidateEntities(ctx, "league", "team", "unknown")

	if _, ok := store.Get(ctx, PrefixLeague+"1"); ok {
		t.Fatalf("expected league entry to be dropped")
	}
	if _, ok := store.Get(ctx, PrefixTeam+"39"); ok {
		t.Fatalf("expected team entry to be dropped")
	}
	if _, ok := store.Get(ctx, PrefixPlayer+"77"); !ok {
		t.Fatalf("expected player entry to survive")
	}
}

func TestInvalidator_NilStore(t *testing.T) {
	t.Parallel()

	NewInvalidator(nil, nil).InvalidateEntities(context.Background(), "league")
}
