package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/riskibarqy/esports-stats/internal/domain/entity"
	"github.com/riskibarqy/esports-stats/internal/domain/league"
	"github.com/riskibarqy/esports-stats/internal/domain/match"
	"github.com/riskibarqy/esports-stats/internal/domain/player"
	"github.com/riskibarqy/esports-stats/internal/domain/team"
	"github.com/riskibarqy/esports-stats/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/esports-stats/internal/platform/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type syncFixture struct {
	store   *memory.Store
	stats   *MockStatsProvider
	ratings *MockTeamRatingProvider
	savers  *SaverService
	svc     *SyncService
}

func newSyncFixture(t *testing.T, now time.Time, cfg SyncConfig) syncFixture {
	t.Helper()

	store := memory.NewStore(nil)
	stats := NewMockStatsProvider(t)
	ratings := NewMockTeamRatingProvider(t)
	savers := newTestSavers(store)
	leagueRepo := memory.NewLeagueRepository(store)
	staleness := newTestStaleness(store, now)
	svc := NewSyncService(savers, stats, ratings, leagueRepo, memory.NewTeamRepository(store), staleness, cfg, logging.NewNop())
	return syncFixture{store: store, stats: stats, ratings: ratings, savers: savers, svc: svc}
}

func TestSyncService_RefreshLeaguesSavesAndMarksOver(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, time.June, 1, 0, 0, 0, 0, time.UTC)
	f := newSyncFixture(t, now, SyncConfig{MaxWorkers: 2})
	f.stats.On("FetchLeagues", mock.Anything).Return([]entity.Payload{
		{"id": int64(1), "displayName": "Riyadh Masters", "tier": int64(5), "endDateTime": now.Unix() - 10},
		{"id": int64(2), "displayName": "DreamLeague", "tier": int64(4), "endDateTime": now.Unix() + 86400},
		{"displayName": "missing id"},
	}, nil).Once()

	result, err := f.svc.RefreshLeagues(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, result.Total)
	assert.Equal(t, 2, result.Succeeded)
	assert.Equal(t, 1, result.Failed)
	assert.Equal(t, 2, f.store.Count(league.LeagueTable.Name()))

	ended := mustLookup(t, f.store, league.LeagueTable, entity.Values{"id": 1})
	running := mustLookup(t, f.store, league.LeagueTable, entity.Values{"id": 2})
	assert.True(t, ended.BoolValue("is_over"))
	assert.False(t, running.BoolValue("is_over"))
}

func TestSyncService_RefreshLeaguesWrapsFetchError(t *testing.T) {
	t.Parallel()

	f := newSyncFixture(t, time.Now(), SyncConfig{})
	upstream := errors.New("stratz unavailable")
	f.stats.On("FetchLeagues", mock.Anything).Return(nil, upstream).Once()

	_, err := f.svc.RefreshLeagues(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, upstream)
	assert.Equal(t, 0, f.store.Count(league.LeagueTable.Name()))
}

func TestSyncService_RejectsInvalidTargets(t *testing.T) {
	t.Parallel()

	f := newSyncFixture(t, time.Now(), SyncConfig{})
	ctx := context.Background()

	_, err := f.svc.RefreshLeagueSeries(ctx, 0)
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = f.svc.RefreshTeam(ctx, -4)
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = f.svc.RefreshPlayer(ctx, 0)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestSyncService_RefreshActiveLeaguesOnlyTouchesLiveLeagues(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, time.June, 1, 0, 0, 0, 0, time.UTC)
	f := newSyncFixture(t, now, SyncConfig{ActiveLeagueMinTier: 3})
	seed(t, f.store, league.LeagueTable, entity.Values{"id": 1}, entity.Values{"tier": 4, "end_datetime": now.Unix() + 3600})
	seed(t, f.store, league.LeagueTable, entity.Values{"id": 2}, entity.Values{"tier": 1, "end_datetime": now.Unix() + 3600})
	seed(t, f.store, league.LeagueTable, entity.Values{"id": 3}, entity.Values{"tier": 5, "end_datetime": now.Unix() - 3600})

	f.stats.On("FetchLeagueSeries", mock.Anything, int64(1)).Return([]entity.Payload{
		{"id": int64(50), "leagueId": int64(1), "teamOneId": int64(7), "teamTwoId": int64(8),
			"matches": []any{map[string]any{"id": int64(9001), "seriesId": int64(50), "leagueId": int64(1)}}},
	}, nil).Once()

	result, err := f.svc.RefreshActiveLeagues(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, result.Total)
	assert.Equal(t, int64(1), result.Items[0].ID)
	assert.Equal(t, refreshStatusSuccess, result.Items[0].Status)

	game := match.MatchFromRow(mustLookup(t, f.store, match.MatchTable, entity.Values{"id": 9001}))
	require.NotNil(t, game.SeriesID)
	assert.Equal(t, int64(50), *game.SeriesID)
	f.stats.AssertNotCalled(t, "FetchLeagueSeries", mock.Anything, int64(2))
	f.stats.AssertNotCalled(t, "FetchLeagueSeries", mock.Anything, int64(3))
}

func TestSyncService_RefreshActiveLeaguesReportsInnerFailures(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, time.June, 1, 0, 0, 0, 0, time.UTC)
	f := newSyncFixture(t, now, SyncConfig{})
	seed(t, f.store, league.LeagueTable, entity.Values{"id": 1}, entity.Values{"tier": 3})
	f.stats.On("FetchLeagueSeries", mock.Anything, int64(1)).Return(nil, errors.New("timeout")).Once()

	result, err := f.svc.RefreshActiveLeagues(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, result.Failed)
	assert.Contains(t, result.Items[0].Message, "timeout")
}

func rosterMember(teamID, steamAccountID, lastMatchID int64, name string) map[string]any {
	return map[string]any{
		"teamId":      teamID,
		"lastMatchId": lastMatchID,
		"steamAccount": map[string]any{
			"id":   steamAccountID,
			"name": name,
		},
	}
}

func TestSyncService_RefreshTeamLinksCurrentMembers(t *testing.T) {
	t.Parallel()

	f := newSyncFixture(t, time.Now(), SyncConfig{TeamCurrentMembers: 2})
	ctx := context.Background()
	f.stats.On("FetchTeam", mock.Anything, int64(5)).Return(entity.Payload{
		"id":   int64(5),
		"name": "Team Spirit",
		"members": []any{
			rosterMember(5, 1, 300, "Yatoro"),
			rosterMember(5, 2, 200, "Collapse"),
			rosterMember(5, 3, 100, "Mira"),
		},
	}, nil)
	f.stats.On("FetchTeamMatches", mock.Anything, int64(5)).Return([]entity.Payload{
		{"id": int64(8000), "radiantTeamId": int64(5), "direTeamId": int64(-15)},
	}, nil)

	result, err := f.svc.RefreshTeam(ctx, 5)
	require.NoError(t, err)
	assert.Equal(t, 0, result.Failed)
	assert.Equal(t, 3, f.store.Count(team.MemberTable.Name()))
	mustLookup(t, f.store, team.TeamTable, entity.Values{"id": 15})
	mustLookup(t, f.store, match.MatchTable, entity.Values{"id": 8000})

	first := mustLookup(t, f.store, team.MemberTable, entity.Values{"team_id": 5, "steam_account_id": 1})
	second := mustLookup(t, f.store, team.MemberTable, entity.Values{"team_id": 5, "steam_account_id": 2})
	third := mustLookup(t, f.store, team.MemberTable, entity.Values{"team_id": 5, "steam_account_id": 3})
	assert.Equal(t, first.UUID, mustLookup(t, f.store, player.PlayerTable, entity.Values{"id": 1}).StringValue("team_member_uuid"))
	assert.Equal(t, second.UUID, mustLookup(t, f.store, player.PlayerTable, entity.Values{"id": 2}).StringValue("team_member_uuid"))
	assert.Nil(t, mustLookup(t, f.store, player.PlayerTable, entity.Values{"id": 3}).Get("team_member_uuid"))

	require.NotNil(t, f.savers.LinkPlayerToMember(ctx, 3, third.UUID))
	_, err = f.svc.RefreshTeam(ctx, 5)
	require.NoError(t, err)
	assert.Nil(t, mustLookup(t, f.store, player.PlayerTable, entity.Values{"id": 3}).Get("team_member_uuid"),
		"a member outside the current window must be detached")
	assert.Equal(t, first.UUID, mustLookup(t, f.store, player.PlayerTable, entity.Values{"id": 1}).StringValue("team_member_uuid"))
}

func TestSyncService_RefreshTeamsRequiresRatingsProvider(t *testing.T) {
	t.Parallel()

	store := memory.NewStore(nil)
	svc := NewSyncService(newTestSavers(store), nil, nil, nil, nil, nil, SyncConfig{}, logging.NewNop())

	_, err := svc.RefreshTeams(context.Background())
	assert.ErrorIs(t, err, ErrDependencyUnavailable)
}

func TestSyncService_RefreshTeamsSavesRatings(t *testing.T) {
	t.Parallel()

	f := newSyncFixture(t, time.Now(), SyncConfig{})
	f.ratings.On("FetchTeamRatings", mock.Anything).Return([]entity.Payload{
		{"team_id": int64(2163), "name": "Team Liquid", "rating": 1432.2},
		{"team_id": int64(15), "name": "PSG.LGD", "rating": 1190.0},
	}, nil).Once()

	result, err := f.svc.RefreshTeams(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, result.Succeeded)
	assert.Equal(t, int64(15), result.Items[0].ID, "items are sorted by id")

	liquid := team.TeamFromRow(mustLookup(t, f.store, team.TeamTable, entity.Values{"id": 2163}))
	assert.True(t, liquid.IsPro)
	lgd := team.TeamFromRow(mustLookup(t, f.store, team.TeamTable, entity.Values{"id": 15}))
	assert.False(t, lgd.IsPro)
}

func TestSyncService_RefreshPlayerSavesAccountsAndChildren(t *testing.T) {
	t.Parallel()

	f := newSyncFixture(t, time.Now(), SyncConfig{})
	f.stats.On("FetchPlayer", mock.Anything, int64(87278757)).Return(entity.Payload{
		"steamAccountId": int64(87278757),
		"matchCount":     int64(12000),
		"steamAccount": map[string]any{
			"id":   int64(87278757),
			"name": "Puppey",
			"proSteamAccount": map[string]any{
				"name":     "Puppey",
				"realName": "Clement Ivanov",
			},
		},
		"team":   map[string]any{"teamId": int64(39), "lastMatchId": int64(1)},
		"badges": []any{map[string]any{"badgeId": int64(1), "slot": int64(1)}},
		"names":  []any{map[string]any{"name": "Puppey"}},
	}, nil).Once()

	result, err := f.svc.RefreshPlayer(context.Background(), 87278757)
	require.NoError(t, err)
	assert.Equal(t, 0, result.Failed)
	assert.Equal(t, 4, result.Total)

	mustLookup(t, f.store, team.TeamTable, entity.Values{"id": 39})
	mustLookup(t, f.store, team.MemberTable, entity.Values{"team_id": 39, "steam_account_id": 87278757})
	account := player.SteamAccountFromRow(mustLookup(t, f.store, player.SteamAccountTable, entity.Values{"id": 87278757}))
	assert.Equal(t, "Puppey", account.Name)
	assert.Equal(t, 1, f.store.Count(player.BadgeTable.Name()))
	assert.Equal(t, 1, f.store.Count(player.NameTable.Name()))
}

func TestSyncService_RefreshProPlayers(t *testing.T) {
	t.Parallel()

	f := newSyncFixture(t, time.Now(), SyncConfig{})
	f.stats.On("FetchProSteamAccounts", mock.Anything).Return(map[int64]entity.Payload{
		111620041: {"name": "SumaiL", "realName": "Syed Sumail Hassan", "countries": []any{"PK"}},
		19672354:  {"name": "N0tail", "realName": "Johan Sundstein"},
	}, nil).Once()

	result, err := f.svc.RefreshProPlayers(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, result.Succeeded)
	assert.Equal(t, int64(19672354), result.Items[0].ID)
	assert.Equal(t, 2, f.store.Count(player.ProSteamAccountTable.Name()))
	assert.Equal(t, 2, f.store.Count(player.PlayerTable.Name()))
}
