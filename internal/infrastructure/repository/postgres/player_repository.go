package postgres

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/esports-stats/internal/domain/entity"
	"github.com/riskibarqy/esports-stats/internal/domain/player"
	"github.com/riskibarqy/esports-stats/internal/domain/team"
	qb "github.com/riskibarqy/esports-stats/internal/platform/querybuilder"
)

type PlayerRepository struct {
	db *sqlx.DB
}

func NewPlayerRepository(db *sqlx.DB) *PlayerRepository {
	return &PlayerRepository{db: db}
}

func (r *PlayerRepository) GetProfile(ctx context.Context, playerID int64, opts ...entity.ReadOption) (player.Profile, bool, error) {
	readOpts := entity.ApplyReadOptions(opts...)

	row, found, err := r.one(ctx, player.PlayerTable, "id", playerID, readOpts)
	if err != nil || !found {
		return player.Profile{}, false, err
	}
	profile := player.Profile{Player: player.PlayerFromRow(row)}

	if profile.Player.SteamAccountID != 0 {
		accRow, ok, err := r.one(ctx, player.SteamAccountTable, "id", profile.Player.SteamAccountID, readOpts)
		if err != nil {
			return player.Profile{}, false, err
		}
		if ok {
			acc := player.SteamAccountFromRow(accRow)
			profile.SteamAccount = &acc
			if proID, hasPro := accRow.Int64("pro_steam_account_id"); hasPro {
				proRow, ok, err := r.one(ctx, player.ProSteamAccountTable, "id", proID, readOpts)
				if err != nil {
					return player.Profile{}, false, err
				}
				if ok {
					pro := player.ProSteamAccountFromRow(proRow)
					profile.ProSteamAccount = &pro
				}
			}
		}
	}

	if memberUUID := profile.Player.TeamMemberUUID; memberUUID != "" {
		memberRow, ok, err := r.one(ctx, team.MemberTable, "uuid", memberUUID, readOpts)
		if err != nil {
			return player.Profile{}, false, err
		}
		if ok {
			profile.CurrentTeamID = memberRow.OptionalInt64("team_id")
		}
	}

	badges, err := r.children(ctx, player.BadgeTable, playerID, "badge_id DESC", readOpts)
	if err != nil {
		return player.Profile{}, false, err
	}
	for _, row := range badges {
		profile.Badges = append(profile.Badges, player.BadgeFromRow(row))
	}

	ranks, err := r.children(ctx, player.RankTable, playerID, "season_rank_id DESC", readOpts)
	if err != nil {
		return player.Profile{}, false, err
	}
	for _, row := range ranks {
		profile.Ranks = append(profile.Ranks, player.RankFromRow(row))
	}

	names, err := r.children(ctx, player.NameTable, playerID, "last_seen_date_time DESC NULLS LAST", readOpts)
	if err != nil {
		return player.Profile{}, false, err
	}
	for _, row := range names {
		profile.Names = append(profile.Names, player.NameFromRow(row))
	}

	passes, err := r.children(ctx, player.BattlePassTable, playerID, "event_id DESC", readOpts)
	if err != nil {
		return player.Profile{}, false, err
	}
	for _, row := range passes {
		profile.BattlePasses = append(profile.BattlePasses, player.BattlePassFromRow(row))
	}

	return profile, true, nil
}

func (r *PlayerRepository) one(ctx context.Context, t *entity.Table, column string, value any, opts entity.ReadOptions) (*entity.Row, bool, error) {
	where := append([]qb.Condition{qb.Eq(column, value)}, liveFilter("deleted_at", opts)...)
	rows, err := selectRowsWith(ctx, r.db, t, qb.Select("*").From(t.Name()).Where(where...).Limit(1))
	if err != nil {
		return nil, false, err
	}
	if len(rows) == 0 {
		return nil, false, nil
	}
	return rows[0], true, nil
}

func (r *PlayerRepository) children(ctx context.Context, t *entity.Table, playerID int64, orderBy string, opts entity.ReadOptions) ([]*entity.Row, error) {
	where := append([]qb.Condition{qb.Eq("player_id", playerID)}, liveFilter("deleted_at", opts)...)
	return selectRowsWith(ctx, r.db, t, qb.Select("*").From(t.Name()).Where(where...).OrderBy(orderBy))
}
