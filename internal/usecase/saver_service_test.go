package usecase

import (
	"context"
	"testing"

	"github.com/riskibarqy/esports-stats/internal/domain/entity"
	"github.com/riskibarqy/esports-stats/internal/domain/league"
	"github.com/riskibarqy/esports-stats/internal/domain/match"
	"github.com/riskibarqy/esports-stats/internal/domain/player"
	"github.com/riskibarqy/esports-stats/internal/domain/team"
	"github.com/riskibarqy/esports-stats/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/esports-stats/internal/platform/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSavers(reconciler entity.Reconciler) *SaverService {
	return NewSaverService(reconciler, SaverConfig{CascadeWorkers: 4}, logging.NewNop())
}

func mustLookup(t *testing.T, store *memory.Store, table *entity.Table, key entity.Values) *entity.Row {
	t.Helper()
	row, ok := store.Lookup(table, key)
	if !ok {
		t.Fatalf("expected %s row for %v", table.Name(), key)
	}
	return row
}

func TestSaverService_SaveSeriesNormalizesTeamReferences(t *testing.T) {
	t.Parallel()

	store := memory.NewStore(nil)
	savers := newTestSavers(store)

	row := savers.SaveSeries(context.Background(), entity.Payload{
		"id":              int64(10),
		"leagueId":        int64(5),
		"teamOneId":       int64(-100),
		"teamTwoId":       int64(200),
		"teamOneWinCount": int64(2),
		"teamTwoWinCount": int64(1),
	})
	require.NotNil(t, row)

	mustLookup(t, store, team.TeamTable, entity.Values{"id": 100})
	mustLookup(t, store, team.TeamTable, entity.Values{"id": 200})
	leagueRow := mustLookup(t, store, league.LeagueTable, entity.Values{"id": 5})
	assert.Len(t, leagueRow.Values, 1, "league placeholder must carry only its id")

	series := league.SeriesFromRow(mustLookup(t, store, league.SeriesTable, entity.Values{"id": 10}))
	assert.Equal(t, int64(5), series.LeagueID)
	require.NotNil(t, series.TeamOneID)
	require.NotNil(t, series.TeamTwoID)
	assert.Equal(t, int64(100), *series.TeamOneID)
	assert.Equal(t, int64(200), *series.TeamTwoID)
	assert.Equal(t, int64(2), series.TeamOneWinCount)
	assert.Equal(t, int64(1), series.TeamTwoWinCount)
	assert.Equal(t, 2, store.Count(team.TeamTable.Name()))
}

func TestSaverService_SaveMatchKeepsLastWrite(t *testing.T) {
	t.Parallel()

	store := memory.NewStore(nil)
	savers := newTestSavers(store)
	ctx := context.Background()

	first := savers.SaveMatch(ctx, entity.Payload{"id": int64(7001), "didRadiantWin": true, "durationSeconds": int64(2400)})
	second := savers.SaveMatch(ctx, entity.Payload{"id": int64(7001), "didRadiantWin": false})
	require.NotNil(t, first)
	require.NotNil(t, second)

	got := match.MatchFromRow(mustLookup(t, store, match.MatchTable, entity.Values{"id": 7001}))
	assert.False(t, got.DidRadiantWin)
	assert.Equal(t, int64(2400), got.DurationSeconds, "absent keys must not reset stored columns")
	assert.Equal(t, first.UUID, second.UUID)
	assert.Equal(t, 1, store.Count(match.MatchTable.Name()))
}

func TestSaverService_PlaceholderLeagueIsEnrichedInPlace(t *testing.T) {
	t.Parallel()

	store := memory.NewStore(nil)
	savers := newTestSavers(store)
	ctx := context.Background()

	require.NotNil(t, savers.SaveMatch(ctx, entity.Payload{"id": int64(7002), "leagueId": int64(15728)}))
	placeholder := mustLookup(t, store, league.LeagueTable, entity.Values{"id": 15728})
	assert.Len(t, placeholder.Values, 1)

	enriched := savers.SaveLeague(ctx, entity.Payload{
		"id":          int64(15728),
		"displayName": "The International 2023",
		"tier":        int64(5),
	})
	require.NotNil(t, enriched)

	assert.Equal(t, placeholder.UUID, enriched.UUID)
	assert.Equal(t, 1, store.Count(league.LeagueTable.Name()))
	got := league.LeagueFromRow(mustLookup(t, store, league.LeagueTable, entity.Values{"id": 15728}))
	assert.Equal(t, "The International 2023", got.DisplayName)
	assert.Equal(t, int64(5), got.Tier)
}

// panickingReconciler blows up on one pick/ban so cascade isolation can be observed.
type panickingReconciler struct {
	*memory.Store
	order int64
}

func (r panickingReconciler) UpdateOrCreate(ctx context.Context, t *entity.Table, lookup, values entity.Values) (*entity.Row, bool, error) {
	if t == match.PickBanTable {
		if order, _ := entity.KindInt.Convert(lookup["pick_order"]); order == r.order {
			panic("pick ban writer exploded")
		}
	}
	return r.Store.UpdateOrCreate(ctx, t, lookup, values)
}

func TestSaverService_MatchCascadeIsolatesBrokenPickBans(t *testing.T) {
	t.Parallel()

	store := memory.NewStore(nil)
	savers := newTestSavers(panickingReconciler{Store: store, order: 2})

	row := savers.SaveMatch(context.Background(), entity.Payload{
		"id": int64(7003),
		"pickBans": []any{
			map[string]any{"order": int64(0), "isPick": false, "heroId": int64(14)},
			map[string]any{"order": "first", "heroId": int64(8)},
			"not an object",
			map[string]any{"order": int64(2), "isPick": true, "heroId": int64(1)},
			map[string]any{"order": int64(3), "isPick": true, "heroId": "invalid-hero"},
			map[string]any{"order": int64(4), "isPick": true, "heroId": int64(74)},
		},
	})
	require.NotNil(t, row)

	mustLookup(t, store, match.MatchTable, entity.Values{"id": 7003})
	for _, order := range []int64{0, 3, 4} {
		mustLookup(t, store, match.PickBanTable, entity.Values{"match_id": 7003, "pick_order": order})
	}
	_, ok := store.Lookup(match.PickBanTable, entity.Values{"match_id": 7003, "pick_order": 2})
	assert.False(t, ok)
	assert.Equal(t, 3, store.Count(match.PickBanTable.Name()))

	dropped := mustLookup(t, store, match.PickBanTable, entity.Values{"match_id": 7003, "pick_order": 3})
	assert.Nil(t, dropped.Get("hero_id"), "unconvertible fields are dropped, not stored")
}

func TestSaverService_SaveMatchPlayerBelongsToOwningMatch(t *testing.T) {
	t.Parallel()

	store := memory.NewStore(nil)
	savers := newTestSavers(store)

	row := savers.SaveMatch(context.Background(), entity.Payload{
		"id": int64(7004),
		"players": []any{
			map[string]any{"matchId": int64(1), "playerSlot": int64(128), "steamAccountId": int64(86745912), "numKills": int64(11)},
		},
	})
	require.NotNil(t, row)

	slot := mustLookup(t, store, match.PlayerTable, entity.Values{"match_id": 7004, "player_slot": 128})
	assert.Equal(t, int64(11), slot.Int64Value("num_kills"))
	assert.Equal(t, int64(86745912), slot.Int64Value("steam_account_id"))

	mustLookup(t, store, player.ProSteamAccountTable, entity.Values{"id": 86745912})
	account := mustLookup(t, store, player.SteamAccountTable, entity.Values{"id": 86745912})
	assert.Equal(t, int64(86745912), account.Int64Value("pro_steam_account_id"))
	profile := mustLookup(t, store, player.PlayerTable, entity.Values{"id": 86745912})
	assert.Equal(t, int64(86745912), profile.Int64Value("steam_account_id"))
}

func TestSaverService_SaveMatchPlayerWithoutAccountStoresNull(t *testing.T) {
	t.Parallel()

	store := memory.NewStore(nil)
	savers := newTestSavers(store)

	row := savers.SaveMatch(context.Background(), entity.Payload{
		"id": int64(7005),
		"players": []any{
			map[string]any{"playerSlot": int64(0), "steamAccountId": int64(0), "numKills": int64(3)},
			map[string]any{"playerSlot": int64(1), "steamAccountId": int64(-4), "numKills": int64(5)},
		},
	})
	require.NotNil(t, row)

	for _, slotID := range []int64{0, 1} {
		slot := mustLookup(t, store, match.PlayerTable, entity.Values{"match_id": 7005, "player_slot": slotID})
		assert.Nil(t, slot.Get("steam_account_id"), "slot %d must not reference a missing account", slotID)
	}
	assert.Equal(t, 0, store.Count(player.SteamAccountTable.Name()))
	assert.Equal(t, 0, store.Count(player.PlayerTable.Name()))
}

func TestSaverService_SaveTeamRowDerivesProFlag(t *testing.T) {
	t.Parallel()

	store := memory.NewStore(nil)
	savers := newTestSavers(store)
	ctx := context.Background()

	require.NotNil(t, savers.SaveTeamRow(ctx, entity.Payload{"team_id": int64(8599101), "name": "Gaimin Gladiators", "rating": 1543.7, "wins": int64(40)}))
	require.NotNil(t, savers.SaveTeamRow(ctx, entity.Payload{"team_id": int64(9000), "name": "Stack", "rating": int64(1100)}))
	assert.Nil(t, savers.SaveTeamRow(ctx, entity.Payload{"name": "no id"}))

	pro := team.TeamFromRow(mustLookup(t, store, team.TeamTable, entity.Values{"id": 8599101}))
	assert.True(t, pro.IsPro)
	require.NotNil(t, pro.Rank)
	assert.Equal(t, int64(1544), *pro.Rank)
	assert.Equal(t, int64(40), pro.WinCount)

	amateur := team.TeamFromRow(mustLookup(t, store, team.TeamTable, entity.Values{"id": 9000}))
	assert.False(t, amateur.IsPro)
}

func TestSaverService_EnsurePlayerIdentityLeavesExistingRowsAlone(t *testing.T) {
	t.Parallel()

	store := memory.NewStore(nil)
	savers := newTestSavers(store)
	ctx := context.Background()

	require.NotNil(t, savers.SaveSteamAccount(ctx, entity.Payload{"id": int64(311360822), "name": "ana"}))
	require.NotNil(t, savers.EnsurePlayerIdentity(ctx, 311360822))
	require.NotNil(t, savers.EnsurePlayerIdentity(ctx, 311360822))

	account := player.SteamAccountFromRow(mustLookup(t, store, player.SteamAccountTable, entity.Values{"id": 311360822}))
	assert.Equal(t, "ana", account.Name)
	assert.Equal(t, 1, store.Count(player.SteamAccountTable.Name()))
	assert.Equal(t, 1, store.Count(player.ProSteamAccountTable.Name()))
	assert.Equal(t, 1, store.Count(player.PlayerTable.Name()))
}

func TestSaverService_SavePlayerChildren(t *testing.T) {
	t.Parallel()

	store := memory.NewStore(nil)
	savers := newTestSavers(store)
	ctx := context.Background()

	const playerID = int64(105248644)
	require.NotNil(t, savers.SavePlayer(ctx, entity.Payload{"steamAccountId": playerID, "matchCount": int64(9000)}))

	err := savers.SavePlayerChildren(ctx, playerID, entity.Payload{
		"badges": []any{
			map[string]any{"badgeId": int64(3), "slot": int64(1)},
			map[string]any{"badgeId": int64(7), "slot": int64(2)},
		},
		"ranks":      map[string]any{"seasonRankId": int64(80), "rank": int64(80), "isCore": true},
		"battlePass": []any{map[string]any{"eventId": int64(31), "level": int64(420)}},
		"names": []any{
			map[string]any{"name": "Miracle-", "lastSeenDateTime": int64(1700000000)},
			map[string]any{"lastSeenDateTime": int64(1600000000)},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, 2, store.Count(player.BadgeTable.Name()))
	assert.Equal(t, 1, store.Count(player.RankTable.Name()))
	assert.Equal(t, 1, store.Count(player.BattlePassTable.Name()))
	assert.Equal(t, 1, store.Count(player.NameTable.Name()))

	badge := mustLookup(t, store, player.BadgeTable, entity.Values{"player_id": playerID, "badge_id": 7})
	assert.Equal(t, int64(2), badge.Int64Value("slot_id"))
}
