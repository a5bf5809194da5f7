package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/riskibarqy/esports-stats/internal/domain/entity"
	"github.com/riskibarqy/esports-stats/internal/domain/team"
	qb "github.com/riskibarqy/esports-stats/internal/platform/querybuilder"
)

type TeamRepository struct {
	db *sqlx.DB
}

func NewTeamRepository(db *sqlx.DB) *TeamRepository {
	return &TeamRepository{db: db}
}

func (r *TeamRepository) List(ctx context.Context, limit int, opts ...entity.ReadOption) ([]team.Team, error) {
	where := append([]qb.Condition{qb.IsNotNull("rank")}, liveFilter("deleted_at", entity.ApplyReadOptions(opts...))...)
	rows, err := selectRowsWith(ctx, r.db, team.TeamTable,
		qb.Select("*").From("teams").Where(where...).OrderBy("rank DESC", "id").Limit(limit))
	if err != nil {
		return nil, err
	}

	out := make([]team.Team, 0, len(rows))
	for _, row := range rows {
		out = append(out, team.TeamFromRow(row))
	}
	return out, nil
}

func (r *TeamRepository) GetByID(ctx context.Context, teamID int64, opts ...entity.ReadOption) (team.Team, bool, error) {
	where := append([]qb.Condition{qb.Eq("id", teamID)}, liveFilter("deleted_at", entity.ApplyReadOptions(opts...))...)
	rows, err := selectRowsWith(ctx, r.db, team.TeamTable,
		qb.Select("*").From("teams").Where(where...).Limit(1))
	if err != nil {
		return team.Team{}, false, err
	}
	if len(rows) == 0 {
		return team.Team{}, false, nil
	}
	return team.TeamFromRow(rows[0]), true, nil
}

func (r *TeamRepository) ListMembers(ctx context.Context, teamID int64, opts ...entity.ReadOption) ([]team.Member, error) {
	where := append([]qb.Condition{qb.Eq("tm.team_id", teamID)}, liveFilter("tm.deleted_at", entity.ApplyReadOptions(opts...))...)
	query, args, err := qb.Select(
		"tm.*",
		"sa.name AS member_name",
		"EXISTS (SELECT 1 FROM players p WHERE p.team_member_uuid = tm.uuid AND p.deleted_at IS NULL) AS member_is_current",
	).
		From("team_members tm").
		Join("LEFT JOIN steam_accounts sa ON sa.id = tm.steam_account_id").
		Where(where...).
		OrderBy("tm.last_match_id DESC NULLS LAST", "tm.steam_account_id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select team members query: %w", err)
	}

	rows, err := r.db.QueryxContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("select team members: %w", err)
	}
	defer rows.Close()

	out := make([]team.Member, 0)
	for rows.Next() {
		raw := make(map[string]any)
		if err := rows.MapScan(raw); err != nil {
			return nil, fmt.Errorf("scan team member: %w", err)
		}
		row, err := rowFromMap(team.MemberTable, raw)
		if err != nil {
			return nil, err
		}
		member := team.MemberFromRow(row)
		member.Name = textValue(raw["member_name"])
		member.IsCurrent, _ = raw["member_is_current"].(bool)
		out = append(out, member)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate team members: %w", err)
	}
	return out, nil
}

func (r *TeamRepository) DetachPlayers(ctx context.Context, teamID int64, keepMemberUUIDs []string) (int64, error) {
	where := []qb.Condition{
		qb.Expr("team_member_uuid IN (SELECT uuid FROM team_members WHERE team_id = ?)", teamID),
	}
	if len(keepMemberUUIDs) > 0 {
		where = append(where, qb.Expr("NOT (team_member_uuid::text = ANY(?))", pq.Array(keepMemberUUIDs)))
	}

	query, args, err := qb.Update("players").
		Set("team_member_uuid", nil).
		SetExpr("updated_at", "NOW()").
		Where(where...).
		ToSQL()
	if err != nil {
		return 0, fmt.Errorf("build detach team players query: %w", err)
	}
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("detach team players: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected detach team players: %w", err)
	}
	return affected, nil
}
