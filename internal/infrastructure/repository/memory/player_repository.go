package memory

import (
	"context"

	"github.com/riskibarqy/esports-stats/internal/domain/entity"
	"github.com/riskibarqy/esports-stats/internal/domain/player"
	"github.com/riskibarqy/esports-stats/internal/domain/team"
)

type PlayerRepository struct {
	store *Store
}

func NewPlayerRepository(store *Store) *PlayerRepository {
	return &PlayerRepository{store: store}
}

func (r *PlayerRepository) GetProfile(_ context.Context, playerID int64, opts ...entity.ReadOption) (player.Profile, bool, error) {
	readOpts := entity.ApplyReadOptions(opts...)
	byID := func(column string, id int64) func(*entity.Row) bool {
		return func(row *entity.Row) bool { return row.Int64Value(column) == id }
	}

	players := r.store.rows(player.PlayerTable.Name(), readOpts, byID("id", playerID))
	if len(players) == 0 {
		return player.Profile{}, false, nil
	}
	profile := player.Profile{Player: player.PlayerFromRow(players[0])}

	if rows := r.store.rows(player.SteamAccountTable.Name(), readOpts, byID("id", profile.Player.SteamAccountID)); len(rows) > 0 {
		acc := player.SteamAccountFromRow(rows[0])
		profile.SteamAccount = &acc
		if proID, ok := rows[0].Int64("pro_steam_account_id"); ok {
			if pro := r.store.rows(player.ProSteamAccountTable.Name(), readOpts, byID("id", proID)); len(pro) > 0 {
				proAcc := player.ProSteamAccountFromRow(pro[0])
				profile.ProSteamAccount = &proAcc
			}
		}
	}

	if memberUUID := profile.Player.TeamMemberUUID; memberUUID != "" {
		members := r.store.rows(team.MemberTable.Name(), readOpts, func(row *entity.Row) bool { return row.UUID == memberUUID })
		if len(members) > 0 {
			profile.CurrentTeamID = members[0].OptionalInt64("team_id")
		}
	}

	for _, row := range r.children(player.BadgeTable, playerID, readOpts, "badge_id") {
		profile.Badges = append(profile.Badges, player.BadgeFromRow(row))
	}
	for _, row := range r.children(player.RankTable, playerID, readOpts, "season_rank_id") {
		profile.Ranks = append(profile.Ranks, player.RankFromRow(row))
	}
	for _, row := range r.children(player.NameTable, playerID, readOpts, "last_seen_date_time") {
		profile.Names = append(profile.Names, player.NameFromRow(row))
	}
	for _, row := range r.children(player.BattlePassTable, playerID, readOpts, "event_id") {
		profile.BattlePasses = append(profile.BattlePasses, player.BattlePassFromRow(row))
	}
	return profile, true, nil
}

func (r *PlayerRepository) children(t *entity.Table, playerID int64, opts entity.ReadOptions, orderDesc string) []*entity.Row {
	rows := r.store.rows(t.Name(), opts, func(row *entity.Row) bool {
		return row.Int64Value("player_id") == playerID
	})
	sortByInt64(rows, orderDesc, true)
	return rows
}
