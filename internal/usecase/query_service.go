package usecase

import (
	"context"
	"fmt"

	"github.com/riskibarqy/esports-stats/internal/domain/entity"
	"github.com/riskibarqy/esports-stats/internal/domain/league"
	"github.com/riskibarqy/esports-stats/internal/domain/match"
	"github.com/riskibarqy/esports-stats/internal/domain/player"
	"github.com/riskibarqy/esports-stats/internal/domain/team"
)

const (
	defaultSeriesLimit = 20
	defaultTeamLimit   = 30
	defaultMatchLimit  = 50
	maxListLimit       = 500
)

type QueryConfig struct {
	DefaultMinTier int
	// GameVersion is the patch match listings show and the oldest patch pick
	// tallies count. Zero disables the filter.
	GameVersion int64
}

type SeriesDetail struct {
	league.Series
	BestOf  int           `json:"best_of"`
	Matches []match.Match `json:"matches"`
}

type TeamDetail struct {
	Team    team.Team       `json:"team"`
	Members []team.Member   `json:"members"`
	Leagues []league.League `json:"leagues"`
}

type QueryService struct {
	leagueRepo league.Repository
	seriesRepo league.SeriesRepository
	matchRepo  match.Repository
	teamRepo   team.Repository
	playerRepo player.Repository
	cfg        QueryConfig
}

func NewQueryService(
	leagueRepo league.Repository,
	seriesRepo league.SeriesRepository,
	matchRepo match.Repository,
	teamRepo team.Repository,
	playerRepo player.Repository,
	cfg QueryConfig,
) *QueryService {
	if cfg.DefaultMinTier <= 0 {
		cfg.DefaultMinTier = defaultActiveLeagueMinTier
	}
	return &QueryService{
		leagueRepo: leagueRepo,
		seriesRepo: seriesRepo,
		matchRepo:  matchRepo,
		teamRepo:   teamRepo,
		playerRepo: playerRepo,
		cfg:        cfg,
	}
}

func readOptions(includeDeleted bool) []entity.ReadOption {
	if includeDeleted {
		return []entity.ReadOption{entity.IncludeDeleted()}
	}
	return nil
}

// ListLeagues returns leagues at or above minTier; zero means the configured default.
func (s *QueryService) ListLeagues(ctx context.Context, minTier int, includeDeleted bool) ([]league.League, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.QueryService.ListLeagues")
	defer span.End()

	if minTier < 0 {
		return nil, fmt.Errorf("%w: min tier must not be negative", ErrInvalidInput)
	}
	if minTier == 0 {
		minTier = s.cfg.DefaultMinTier
	}
	items, err := s.leagueRepo.List(ctx, minTier, readOptions(includeDeleted)...)
	if err != nil {
		return nil, fmt.Errorf("list leagues: %w", err)
	}
	return items, nil
}

func (s *QueryService) GetLeague(ctx context.Context, leagueID int64, includeDeleted bool) (league.League, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.QueryService.GetLeague")
	defer span.End()

	if leagueID <= 0 {
		return league.League{}, fmt.Errorf("%w: league id must be positive", ErrInvalidInput)
	}
	item, ok, err := s.leagueRepo.GetByID(ctx, leagueID, readOptions(includeDeleted)...)
	if err != nil {
		return league.League{}, fmt.Errorf("get league %d: %w", leagueID, err)
	}
	if !ok {
		return league.League{}, fmt.Errorf("%w: league %d", ErrNotFound, leagueID)
	}
	return item, nil
}

// ListLeagueSeries returns the latest series of a league with their matches.
func (s *QueryService) ListLeagueSeries(ctx context.Context, leagueID int64, limit int, includeDeleted bool) ([]SeriesDetail, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.QueryService.ListLeagueSeries")
	defer span.End()

	if _, err := s.GetLeague(ctx, leagueID, includeDeleted); err != nil {
		return nil, err
	}
	limit, err := normalizeLimit(limit, defaultSeriesLimit)
	if err != nil {
		return nil, err
	}

	opts := readOptions(includeDeleted)
	series, err := s.seriesRepo.ListByLeague(ctx, leagueID, limit, opts...)
	if err != nil {
		return nil, fmt.Errorf("list league %d series: %w", leagueID, err)
	}
	if len(series) == 0 {
		return []SeriesDetail{}, nil
	}

	seriesIDs := make([]int64, 0, len(series))
	for _, item := range series {
		seriesIDs = append(seriesIDs, item.ID)
	}
	matches, err := s.matchRepo.ListBySeries(ctx, seriesIDs, opts...)
	if err != nil {
		return nil, fmt.Errorf("list series matches: %w", err)
	}

	bySeries := make(map[int64][]match.Match, len(series))
	for _, item := range matches {
		if item.SeriesID == nil {
			continue
		}
		bySeries[*item.SeriesID] = append(bySeries[*item.SeriesID], item)
	}

	out := make([]SeriesDetail, 0, len(series))
	for _, item := range series {
		games := bySeries[item.ID]
		if games == nil {
			games = []match.Match{}
		}
		out = append(out, SeriesDetail{Series: item, BestOf: item.BestOf(), Matches: games})
	}
	return out, nil
}

func (s *QueryService) ListTeams(ctx context.Context, limit int, includeDeleted bool) ([]team.Team, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.QueryService.ListTeams")
	defer span.End()

	limit, err := normalizeLimit(limit, defaultTeamLimit)
	if err != nil {
		return nil, err
	}
	items, err := s.teamRepo.List(ctx, limit, readOptions(includeDeleted)...)
	if err != nil {
		return nil, fmt.Errorf("list teams: %w", err)
	}
	return items, nil
}

// GetTeam returns the team with its roster and the leagues it played in.
func (s *QueryService) GetTeam(ctx context.Context, teamID int64, includeDeleted bool) (TeamDetail, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.QueryService.GetTeam")
	defer span.End()

	if teamID <= 0 {
		return TeamDetail{}, fmt.Errorf("%w: team id must be positive", ErrInvalidInput)
	}
	opts := readOptions(includeDeleted)
	item, ok, err := s.teamRepo.GetByID(ctx, teamID, opts...)
	if err != nil {
		return TeamDetail{}, fmt.Errorf("get team %d: %w", teamID, err)
	}
	if !ok {
		return TeamDetail{}, fmt.Errorf("%w: team %d", ErrNotFound, teamID)
	}

	members, err := s.teamRepo.ListMembers(ctx, teamID, opts...)
	if err != nil {
		return TeamDetail{}, fmt.Errorf("list team %d members: %w", teamID, err)
	}
	leagues, err := s.leagueRepo.ListForTeam(ctx, teamID)
	if err != nil {
		return TeamDetail{}, fmt.Errorf("list team %d leagues: %w", teamID, err)
	}
	return TeamDetail{Team: item, Members: members, Leagues: leagues}, nil
}

func (s *QueryService) GetPlayer(ctx context.Context, playerID int64, includeDeleted bool) (player.Profile, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.QueryService.GetPlayer")
	defer span.End()

	if playerID <= 0 {
		return player.Profile{}, fmt.Errorf("%w: player id must be positive", ErrInvalidInput)
	}
	profile, ok, err := s.playerRepo.GetProfile(ctx, playerID, readOptions(includeDeleted)...)
	if err != nil {
		return player.Profile{}, fmt.Errorf("get player %d: %w", playerID, err)
	}
	if !ok {
		return player.Profile{}, fmt.Errorf("%w: player %d", ErrNotFound, playerID)
	}
	return profile, nil
}

// ListMatches returns the newest matches of a patch; zero means the configured one.
func (s *QueryService) ListMatches(ctx context.Context, gameVersion int64, limit int, includeDeleted bool) ([]match.Match, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.QueryService.ListMatches")
	defer span.End()

	if gameVersion < 0 {
		return nil, fmt.Errorf("%w: game version must not be negative", ErrInvalidInput)
	}
	if gameVersion == 0 {
		gameVersion = s.cfg.GameVersion
	}
	limit, err := normalizeLimit(limit, defaultMatchLimit)
	if err != nil {
		return nil, err
	}
	items, err := s.matchRepo.ListLatest(ctx, gameVersion, limit, readOptions(includeDeleted)...)
	if err != nil {
		return nil, fmt.Errorf("list matches: %w", err)
	}
	return items, nil
}

func (s *QueryService) GetMatch(ctx context.Context, matchID int64, includeDeleted bool) (match.Detail, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.QueryService.GetMatch")
	defer span.End()

	if matchID <= 0 {
		return match.Detail{}, fmt.Errorf("%w: match id must be positive", ErrInvalidInput)
	}
	item, ok, err := s.matchRepo.GetDetail(ctx, matchID, readOptions(includeDeleted)...)
	if err != nil {
		return match.Detail{}, fmt.Errorf("get match %d: %w", matchID, err)
	}
	if !ok {
		return match.Detail{}, fmt.Errorf("%w: match %d", ErrNotFound, matchID)
	}
	return item, nil
}

// HeroPickBans tallies the heroes a team drafted, or every draft of a league,
// from the configured patch onwards.
func (s *QueryService) HeroPickBans(ctx context.Context, scope match.PickScope, id int64) (match.HeroPickBans, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.QueryService.HeroPickBans")
	defer span.End()

	if !scope.Valid() {
		return match.HeroPickBans{}, fmt.Errorf("%w: unknown pick scope %q", ErrInvalidInput, scope)
	}
	if id <= 0 {
		return match.HeroPickBans{}, fmt.Errorf("%w: %s id must be positive", ErrInvalidInput, scope)
	}
	out, err := s.matchRepo.HeroPickBans(ctx, match.PickFilter{Scope: scope, ID: id, MinGameVersion: s.cfg.GameVersion})
	if err != nil {
		return match.HeroPickBans{}, fmt.Errorf("count %s %d pick bans: %w", scope, id, err)
	}
	return out, nil
}

// PlayerHeroPicks tallies the heroes a player has played in stored matches.
func (s *QueryService) PlayerHeroPicks(ctx context.Context, playerID int64) (match.HeroPickBans, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.QueryService.PlayerHeroPicks")
	defer span.End()

	if playerID <= 0 {
		return match.HeroPickBans{}, fmt.Errorf("%w: player id must be positive", ErrInvalidInput)
	}
	picks, err := s.matchRepo.PlayerHeroPicks(ctx, playerID)
	if err != nil {
		return match.HeroPickBans{}, fmt.Errorf("count player %d picks: %w", playerID, err)
	}
	return match.HeroPickBans{Picks: picks, Bans: []match.HeroCount{}}, nil
}

// DeleteLeague soft-deletes a league together with its series.
func (s *QueryService) DeleteLeague(ctx context.Context, leagueID int64) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.QueryService.DeleteLeague")
	defer span.End()

	if leagueID <= 0 {
		return fmt.Errorf("%w: league id must be positive", ErrInvalidInput)
	}
	ok, err := s.leagueRepo.SoftDelete(ctx, leagueID)
	if err != nil {
		return fmt.Errorf("delete league %d: %w", leagueID, err)
	}
	if !ok {
		return fmt.Errorf("%w: league %d", ErrNotFound, leagueID)
	}
	return nil
}

func (s *QueryService) RestoreLeague(ctx context.Context, leagueID int64) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.QueryService.RestoreLeague")
	defer span.End()

	if leagueID <= 0 {
		return fmt.Errorf("%w: league id must be positive", ErrInvalidInput)
	}
	ok, err := s.leagueRepo.Restore(ctx, leagueID)
	if err != nil {
		return fmt.Errorf("restore league %d: %w", leagueID, err)
	}
	if !ok {
		return fmt.Errorf("%w: league %d", ErrNotFound, leagueID)
	}
	return nil
}

func normalizeLimit(limit, fallback int) (int, error) {
	switch {
	case limit < 0:
		return 0, fmt.Errorf("%w: limit must not be negative", ErrInvalidInput)
	case limit == 0:
		return fallback, nil
	case limit > maxListLimit:
		return maxListLimit, nil
	default:
		return limit, nil
	}
}
