package memory

import (
	"context"
	"time"

	"github.com/riskibarqy/esports-stats/internal/domain/entity"
	"github.com/riskibarqy/esports-stats/internal/domain/player"
	"github.com/riskibarqy/esports-stats/internal/domain/team"
)

type TeamRepository struct {
	store *Store
}

func NewTeamRepository(store *Store) *TeamRepository {
	return &TeamRepository{store: store}
}

func (r *TeamRepository) List(_ context.Context, limit int, opts ...entity.ReadOption) ([]team.Team, error) {
	rows := r.store.rows(team.TeamTable.Name(), entity.ApplyReadOptions(opts...), func(row *entity.Row) bool {
		_, ok := row.Int64("rank")
		return ok
	})
	sortByInt64(rows, "rank", true)
	rows = limitRows(rows, limit)

	out := make([]team.Team, 0, len(rows))
	for _, row := range rows {
		out = append(out, team.TeamFromRow(row))
	}
	return out, nil
}

func (r *TeamRepository) GetByID(_ context.Context, teamID int64, opts ...entity.ReadOption) (team.Team, bool, error) {
	rows := r.store.rows(team.TeamTable.Name(), entity.ApplyReadOptions(opts...), func(row *entity.Row) bool {
		return row.Int64Value("id") == teamID
	})
	if len(rows) == 0 {
		return team.Team{}, false, nil
	}
	return team.TeamFromRow(rows[0]), true, nil
}

func (r *TeamRepository) ListMembers(_ context.Context, teamID int64, opts ...entity.ReadOption) ([]team.Member, error) {
	rows := r.store.rows(team.MemberTable.Name(), entity.ApplyReadOptions(opts...), func(row *entity.Row) bool {
		return row.Int64Value("team_id") == teamID
	})
	sortByInt64(rows, "last_match_id", true)

	current := make(map[string]struct{})
	for _, p := range r.store.rows(player.PlayerTable.Name(), entity.ReadOptions{}, nil) {
		if memberUUID, ok := p.String("team_member_uuid"); ok {
			current[memberUUID] = struct{}{}
		}
	}
	names := make(map[int64]string)
	for _, acc := range r.store.rows(player.SteamAccountTable.Name(), entity.ReadOptions{}, nil) {
		names[acc.Int64Value("id")] = acc.StringValue("name")
	}

	out := make([]team.Member, 0, len(rows))
	for _, row := range rows {
		m := team.MemberFromRow(row)
		_, m.IsCurrent = current[m.UUID]
		m.Name = names[m.SteamAccountID]
		out = append(out, m)
	}
	return out, nil
}

func (r *TeamRepository) DetachPlayers(_ context.Context, teamID int64, keepMemberUUIDs []string) (int64, error) {
	keep := make(map[string]struct{}, len(keepMemberUUIDs))
	for _, u := range keepMemberUUIDs {
		keep[u] = struct{}{}
	}
	teamMembers := make(map[string]struct{})
	for _, row := range r.store.rows(team.MemberTable.Name(), entity.ReadOptions{IncludeDeleted: true}, func(row *entity.Row) bool {
		return row.Int64Value("team_id") == teamID
	}) {
		teamMembers[row.UUID] = struct{}{}
	}

	return r.store.mutate(player.PlayerTable.Name(), func(row *entity.Row) bool {
		memberUUID, ok := row.String("team_member_uuid")
		if !ok {
			return false
		}
		_, ofTeam := teamMembers[memberUUID]
		_, kept := keep[memberUUID]
		return ofTeam && !kept
	}, func(row *entity.Row, _ time.Time) bool {
		row.Values["team_member_uuid"] = nil
		return true
	}), nil
}
