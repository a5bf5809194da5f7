package memory

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/riskibarqy/esports-stats/internal/domain/entity"
	"github.com/riskibarqy/esports-stats/internal/domain/league"
	"github.com/riskibarqy/esports-stats/internal/domain/player"
	"github.com/riskibarqy/esports-stats/internal/domain/team"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_GetOrCreateConcurrentCallersShareOneRow(t *testing.T) {
	t.Parallel()

	store := NewStore(nil)
	ctx := context.Background()

	const workers = 16
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		uuids   = make(map[string]struct{})
		created int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			row, wasCreated, err := store.GetOrCreate(ctx, team.TeamTable, entity.Values{"id": int64(36)}, nil)
			if err != nil {
				t.Errorf("get or create: %v", err)
				return
			}
			mu.Lock()
			uuids[row.UUID] = struct{}{}
			if wasCreated {
				created++
			}
			mu.Unlock()
		}()
	}
	wg.Wait()

	if store.Count(team.TeamTable.Name()) != 1 {
		t.Fatalf("expected one team row, got %d", store.Count(team.TeamTable.Name()))
	}
	if len(uuids) != 1 || created != 1 {
		t.Fatalf("expected one uuid and one creator, got uuids=%d created=%d", len(uuids), created)
	}
}

func TestStore_GetOrCreateIgnoresDefaultsForExistingRow(t *testing.T) {
	t.Parallel()

	store := NewStore(nil)
	ctx := context.Background()

	first, created, err := store.GetOrCreate(ctx, team.TeamTable, entity.Values{"id": 15}, entity.Values{"name": "PSG.LGD"})
	require.NoError(t, err)
	require.True(t, created)

	second, created, err := store.GetOrCreate(ctx, team.TeamTable, entity.Values{"id": 15}, entity.Values{"name": "Other"})
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.UUID, second.UUID)
	assert.Equal(t, "PSG.LGD", second.StringValue("name"))
}

func TestStore_UpdateOrCreateIsIdempotent(t *testing.T) {
	t.Parallel()

	store := NewStore(nil)
	ctx := context.Background()
	values := entity.Values{"name": "The International", "tier": 4}

	first, created, err := store.UpdateOrCreate(ctx, league.LeagueTable, entity.Values{"id": 15728}, values)
	require.NoError(t, err)
	require.True(t, created)

	second, created, err := store.UpdateOrCreate(ctx, league.LeagueTable, entity.Values{"id": 15728}, values)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.UUID, second.UUID)
	assert.Equal(t, first.Values, second.Values)
	assert.Equal(t, 1, store.Count(league.LeagueTable.Name()))
}

func TestStore_UpdateOrCreateLeavesUnlistedColumnsAlone(t *testing.T) {
	t.Parallel()

	store := NewStore(nil)
	ctx := context.Background()

	_, _, err := store.UpdateOrCreate(ctx, league.LeagueTable, entity.Values{"id": 1}, entity.Values{"name": "A", "tier": 3})
	require.NoError(t, err)
	row, _, err := store.UpdateOrCreate(ctx, league.LeagueTable, entity.Values{"id": 1}, entity.Values{"tier": nil})
	require.NoError(t, err)

	assert.Equal(t, "A", row.StringValue("name"))
	_, ok := row.Int64("tier")
	assert.False(t, ok, "explicit null must reset the column")
}

func TestStore_RejectsBadLookups(t *testing.T) {
	t.Parallel()

	store := NewStore(nil)
	ctx := context.Background()

	_, _, err := store.GetOrCreate(ctx, team.MemberTable, entity.Values{"team_id": 1}, nil)
	assert.ErrorIs(t, err, entity.ErrMissingKey)

	_, _, err = store.UpdateOrCreate(ctx, league.LeagueTable, entity.Values{"id": 1}, entity.Values{"nope": 1})
	assert.ErrorIs(t, err, entity.ErrUnknownColumn)
	assert.Equal(t, 0, store.Count(league.LeagueTable.Name()))
}

func TestLeagueRepository_MarkOverAndSoftDelete(t *testing.T) {
	t.Parallel()

	store := NewStore(nil)
	ctx := context.Background()
	repo := NewLeagueRepository(store)
	now := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC).Unix()

	mustUpsert(t, store, league.LeagueTable, entity.Values{"id": 1}, entity.Values{"tier": 3, "end_datetime": now - 1})
	mustUpsert(t, store, league.LeagueTable, entity.Values{"id": 2}, entity.Values{"tier": 3, "end_datetime": now + 3600})
	mustUpsert(t, store, league.LeagueTable, entity.Values{"id": 3}, entity.Values{"tier": 1})
	mustUpsert(t, store, league.SeriesTable, entity.Values{"id": 10}, entity.Values{"league_id": 2, "team_one_id": 7})

	touched, err := repo.MarkOver(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, int64(1), touched)

	active, err := repo.ActiveIDs(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, []int64{2}, active)

	ok, err := repo.SoftDelete(ctx, 2)
	require.NoError(t, err)
	require.True(t, ok)

	active, err = repo.ActiveIDs(ctx, 2)
	require.NoError(t, err)
	assert.Empty(t, active)

	series, err := NewSeriesRepository(store).ListByLeague(ctx, 2, 20)
	require.NoError(t, err)
	assert.Empty(t, series)

	withDeleted, err := NewSeriesRepository(store).ListByLeague(ctx, 2, 20, entity.IncludeDeleted())
	require.NoError(t, err)
	assert.Len(t, withDeleted, 1)

	ok, err = repo.Restore(ctx, 2)
	require.NoError(t, err)
	require.True(t, ok)

	forTeam, err := repo.ListForTeam(ctx, 7)
	require.NoError(t, err)
	require.Len(t, forTeam, 1)
	assert.Equal(t, int64(2), forTeam[0].ID)

	ok, err = repo.SoftDelete(ctx, 404)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestLeagueRepository_RestoreKeepsSeparatelyDeletedSeries(t *testing.T) {
	t.Parallel()

	store := NewStore(nil)
	clock := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)
	store.SetClock(func() time.Time { return clock })
	ctx := context.Background()
	repo := NewLeagueRepository(store)
	seriesRepo := NewSeriesRepository(store)

	mustUpsert(t, store, league.LeagueTable, entity.Values{"id": 5}, entity.Values{"tier": 3})
	mustUpsert(t, store, league.SeriesTable, entity.Values{"id": 50}, entity.Values{"league_id": 5})
	mustUpsert(t, store, league.SeriesTable, entity.Values{"id": 51}, entity.Values{"league_id": 5})

	store.mutate(league.SeriesTable.Name(), func(row *entity.Row) bool {
		return row.Int64Value("id") == 51
	}, func(row *entity.Row, now time.Time) bool {
		row.DeletedAt = &now
		return true
	})

	clock = clock.Add(time.Hour)
	ok, err := repo.SoftDelete(ctx, 5)
	require.NoError(t, err)
	require.True(t, ok)

	clock = clock.Add(time.Hour)
	ok, err = repo.Restore(ctx, 5)
	require.NoError(t, err)
	require.True(t, ok)

	live, err := seriesRepo.ListByLeague(ctx, 5, 20)
	require.NoError(t, err)
	require.Len(t, live, 1)
	assert.Equal(t, int64(50), live[0].ID)

	_, found, err := repo.GetByID(ctx, 5)
	require.NoError(t, err)
	assert.True(t, found)
}

func TestSeriesRepository_MarkStaleTreatsNullAsNotOver(t *testing.T) {
	t.Parallel()

	store := NewStore(nil)
	ctx := context.Background()
	cutoff := int64(1_700_000_000)

	mustUpsert(t, store, league.SeriesTable, entity.Values{"id": 1}, entity.Values{"last_match_date_time": cutoff - 1})
	mustUpsert(t, store, league.SeriesTable, entity.Values{"id": 2}, entity.Values{"last_match_date_time": cutoff - 1, "is_over": false})
	mustUpsert(t, store, league.SeriesTable, entity.Values{"id": 3}, entity.Values{"last_match_date_time": cutoff + 1})

	touched, err := NewSeriesRepository(store).MarkStale(ctx, cutoff)
	require.NoError(t, err)
	assert.Equal(t, int64(2), touched)

	row, ok := store.Lookup(league.SeriesTable, entity.Values{"id": 3})
	require.True(t, ok)
	assert.False(t, row.BoolValue("is_over"))
}

func TestTeamRepository_DetachPlayersKeepsCurrentMembers(t *testing.T) {
	t.Parallel()

	store := NewStore(nil)
	ctx := context.Background()
	repo := NewTeamRepository(store)

	keep := mustUpsert(t, store, team.MemberTable, entity.Values{"team_id": 5, "steam_account_id": 100}, entity.Values{"last_match_id": 9})
	stale := mustUpsert(t, store, team.MemberTable, entity.Values{"team_id": 5, "steam_account_id": 200}, entity.Values{"last_match_id": 1})
	mustUpsert(t, store, player.PlayerTable, entity.Values{"id": 100}, entity.Values{"team_member_uuid": keep.UUID})
	mustUpsert(t, store, player.PlayerTable, entity.Values{"id": 200}, entity.Values{"team_member_uuid": stale.UUID})

	detached, err := repo.DetachPlayers(ctx, 5, []string{keep.UUID})
	require.NoError(t, err)
	assert.Equal(t, int64(1), detached)

	members, err := repo.ListMembers(ctx, 5)
	require.NoError(t, err)
	require.Len(t, members, 2)
	assert.Equal(t, int64(100), members[0].SteamAccountID)
	assert.True(t, members[0].IsCurrent)
	assert.False(t, members[1].IsCurrent)
}

func mustUpsert(t *testing.T, store *Store, table *entity.Table, lookup, values entity.Values) *entity.Row {
	t.Helper()
	row, _, err := store.UpdateOrCreate(context.Background(), table, lookup, values)
	if err != nil {
		t.Fatalf("upsert %s: %v", table.Name(), err)
	}
	return row
}
