package usecase

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/riskibarqy/esports-stats/internal/domain/entity"
	"github.com/riskibarqy/esports-stats/internal/domain/league"
	"github.com/riskibarqy/esports-stats/internal/domain/team"
	"github.com/riskibarqy/esports-stats/internal/platform/logging"
)

const (
	refreshStatusSuccess = "success"
	refreshStatusFailed  = "failed"

	defaultSyncWorkers         = 8
	defaultActiveLeagueMinTier = 2
	defaultTeamCurrentMembers  = 5
)

var errSaveFailed = errors.New("save failed")

type SyncConfig struct {
	MaxWorkers          int
	ActiveLeagueMinTier int
	TeamCurrentMembers  int
}

type RefreshResult struct {
	Entity    string              `json:"entity"`
	Target    int64               `json:"target,omitempty"`
	Total     int                 `json:"total"`
	Succeeded int                 `json:"succeeded"`
	Failed    int                 `json:"failed"`
	Items     []RefreshItemResult `json:"items"`
}

type RefreshItemResult struct {
	Kind       string `json:"kind"`
	ID         int64  `json:"id"`
	Status     string `json:"status"`
	DurationMs int64  `json:"duration_ms"`
	Message    string `json:"message,omitempty"`
}

// Summary is the compact form stored with a dispatch record.
func (r RefreshResult) Summary() map[string]any {
	return map[string]any{
		"entity":    r.Entity,
		"target":    r.Target,
		"total":     r.Total,
		"succeeded": r.Succeeded,
		"failed":    r.Failed,
	}
}

func (r *RefreshResult) add(item RefreshItemResult) {
	r.Items = append(r.Items, item)
	r.Total++
	if item.Status == refreshStatusSuccess {
		r.Succeeded++
	} else {
		r.Failed++
	}
}

type refreshTask struct {
	kind string
	id   int64
	run  func(ctx context.Context) error
}

// SyncService drives bulk refreshes: fetch upstream, run the staleness pass,
// then fan one saver out per entity. A failing entity never cancels its siblings.
type SyncService struct {
	savers     *SaverService
	stats      StatsProvider
	ratings    TeamRatingProvider
	leagueRepo league.Repository
	teamRepo   team.Repository
	staleness  *StalenessService
	cfg        SyncConfig
	logger     *logging.Logger
}

func NewSyncService(
	savers *SaverService,
	stats StatsProvider,
	ratings TeamRatingProvider,
	leagueRepo league.Repository,
	teamRepo team.Repository,
	staleness *StalenessService,
	cfg SyncConfig,
	logger *logging.Logger,
) *SyncService {
	if cfg.MaxWorkers <= 0 {
		cfg.MaxWorkers = defaultSyncWorkers
	}
	if cfg.ActiveLeagueMinTier <= 0 {
		cfg.ActiveLeagueMinTier = defaultActiveLeagueMinTier
	}
	if cfg.TeamCurrentMembers <= 0 {
		cfg.TeamCurrentMembers = defaultTeamCurrentMembers
	}
	return &SyncService{
		savers:     savers,
		stats:      stats,
		ratings:    ratings,
		leagueRepo: leagueRepo,
		teamRepo:   teamRepo,
		staleness:  staleness,
		cfg:        cfg,
		logger:     logging.OrDefault(logger).Named("sync"),
	}
}

// RefreshLeagues saves the upstream league list and then marks ended leagues over.
func (s *SyncService) RefreshLeagues(ctx context.Context) (RefreshResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SyncService.RefreshLeagues")
	defer span.End()

	result := RefreshResult{Entity: "league"}
	payloads, err := s.stats.FetchLeagues(ctx)
	if err != nil {
		return result, fmt.Errorf("fetch leagues: %w", err)
	}

	if err := s.fanOut(ctx, &result, s.payloadTasks("league", "id", payloads, s.savers.SaveLeague)); err != nil {
		return result, err
	}
	if _, err := s.staleness.MarkLeaguesOver(ctx); err != nil {
		return result, err
	}
	return result, nil
}

// RefreshLeagueSeries saves every series of one league, each cascading into its matches.
func (s *SyncService) RefreshLeagueSeries(ctx context.Context, leagueID int64) (RefreshResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SyncService.RefreshLeagueSeries")
	defer span.End()

	result := RefreshResult{Entity: "series", Target: leagueID}
	if leagueID <= 0 {
		return result, fmt.Errorf("%w: league id must be positive", ErrInvalidInput)
	}

	payloads, err := s.stats.FetchLeagueSeries(ctx, leagueID)
	if err != nil {
		return result, fmt.Errorf("fetch league %d series: %w", leagueID, err)
	}
	if _, err := s.staleness.MarkSeriesOver(ctx); err != nil {
		return result, err
	}

	if err := s.fanOut(ctx, &result, s.payloadTasks("series", "id", payloads, s.savers.SaveSeries)); err != nil {
		return result, err
	}
	return result, nil
}

// RefreshActiveLeagues refreshes the series of every live league at or above
// the configured tier that is not over yet.
func (s *SyncService) RefreshActiveLeagues(ctx context.Context) (RefreshResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SyncService.RefreshActiveLeagues")
	defer span.End()

	result := RefreshResult{Entity: "active_league"}
	if _, err := s.staleness.MarkLeaguesOver(ctx); err != nil {
		return result, err
	}
	leagueIDs, err := s.leagueRepo.ActiveIDs(ctx, s.cfg.ActiveLeagueMinTier)
	if err != nil {
		return result, fmt.Errorf("list active leagues: %w", err)
	}
	s.logger.InfoContext(ctx, "refresh active leagues", "league_count", len(leagueIDs), "min_tier", s.cfg.ActiveLeagueMinTier)

	tasks := make([]refreshTask, 0, len(leagueIDs))
	for _, leagueID := range leagueIDs {
		tasks = append(tasks, refreshTask{
			kind: "league",
			id:   leagueID,
			run: func(ctx context.Context) error {
				inner, err := s.RefreshLeagueSeries(ctx, leagueID)
				if err != nil {
					return err
				}
				if inner.Failed > 0 {
					return fmt.Errorf("%d of %d series failed", inner.Failed, inner.Total)
				}
				return nil
			},
		})
	}
	if err := s.fanOut(ctx, &result, tasks); err != nil {
		return result, err
	}
	return result, nil
}

// RefreshTeam saves the team and its roster, recomputes which players count
// as current members, then saves the team's matches.
func (s *SyncService) RefreshTeam(ctx context.Context, teamID int64) (RefreshResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SyncService.RefreshTeam")
	defer span.End()

	result := RefreshResult{Entity: "team", Target: teamID}
	if teamID <= 0 {
		return result, fmt.Errorf("%w: team id must be positive", ErrInvalidInput)
	}

	payload, err := s.stats.FetchTeam(ctx, teamID)
	if err != nil {
		return result, fmt.Errorf("fetch team %d: %w", teamID, err)
	}

	s.runStage(ctx, &result, "team", teamID, func(ctx context.Context) error {
		return savedOrFailed(s.savers.SaveTeam(ctx, payload))
	})

	members := payload.Items("members")
	memberTasks := make([]refreshTask, 0, len(members))
	for _, member := range members {
		account, _ := member.Object("steamAccount")
		steamAccountID, _ := account.Int64("id")
		memberTasks = append(memberTasks, refreshTask{
			kind: "member",
			id:   steamAccountID,
			run: func(ctx context.Context) error {
				return savedOrFailed(s.savers.SaveRosterMember(ctx, member))
			},
		})
	}
	if err := s.fanOut(ctx, &result, memberTasks); err != nil {
		return result, err
	}

	s.runStage(ctx, &result, "current_members", teamID, func(ctx context.Context) error {
		return s.syncCurrentMembers(ctx, teamID)
	})

	matches, err := s.stats.FetchTeamMatches(ctx, teamID)
	if err != nil {
		return result, fmt.Errorf("fetch team %d matches: %w", teamID, err)
	}
	if err := s.fanOut(ctx, &result, s.payloadTasks("match", "id", matches, s.savers.SaveMatch)); err != nil {
		return result, err
	}
	return result, nil
}

// syncCurrentMembers links the most recently active members' players to the
// team and detaches players still pointing at older memberships.
func (s *SyncService) syncCurrentMembers(ctx context.Context, teamID int64) error {
	members, err := s.teamRepo.ListMembers(ctx, teamID)
	if err != nil {
		return fmt.Errorf("list team %d members: %w", teamID, err)
	}
	if len(members) > s.cfg.TeamCurrentMembers {
		members = members[:s.cfg.TeamCurrentMembers]
	}

	keep := make([]string, 0, len(members))
	var failed int
	for _, member := range members {
		if s.savers.LinkPlayerToMember(ctx, member.SteamAccountID, member.UUID) == nil {
			failed++
			continue
		}
		keep = append(keep, member.UUID)
	}

	detached, err := s.teamRepo.DetachPlayers(ctx, teamID, keep)
	if err != nil {
		return fmt.Errorf("detach team %d players: %w", teamID, err)
	}
	s.logger.InfoContext(ctx, "team current members updated",
		"team_id", teamID,
		"current", len(keep),
		"detached", detached,
	)
	if failed > 0 {
		return fmt.Errorf("link %d of %d current members: %w", failed, len(members), errSaveFailed)
	}
	return nil
}

// RefreshTeams saves the rated team list from OpenDota.
func (s *SyncService) RefreshTeams(ctx context.Context) (RefreshResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SyncService.RefreshTeams")
	defer span.End()

	result := RefreshResult{Entity: "team_rating"}
	if s.ratings == nil {
		return result, fmt.Errorf("%w: team ratings provider is not configured", ErrDependencyUnavailable)
	}
	rows, err := s.ratings.FetchTeamRatings(ctx)
	if err != nil {
		return result, fmt.Errorf("fetch team ratings: %w", err)
	}

	if err := s.fanOut(ctx, &result, s.payloadTasks("team", "team_id", rows, s.savers.SaveTeamRow)); err != nil {
		return result, err
	}
	return result, nil
}

// RefreshPlayer saves a player detail object: identity, accounts, current
// team membership and the child collections.
func (s *SyncService) RefreshPlayer(ctx context.Context, playerID int64) (RefreshResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SyncService.RefreshPlayer")
	defer span.End()

	result := RefreshResult{Entity: "player", Target: playerID}
	if playerID <= 0 {
		return result, fmt.Errorf("%w: player id must be positive", ErrInvalidInput)
	}

	payload, err := s.stats.FetchPlayer(ctx, playerID)
	if err != nil {
		return result, fmt.Errorf("fetch player %d: %w", playerID, err)
	}
	if id, ok := requireID(payload, "steamAccountId"); ok {
		playerID = id
	} else {
		payload["steamAccountId"] = playerID
	}

	if s.savers.EnsurePlayerIdentity(ctx, playerID) == nil {
		result.add(RefreshItemResult{Kind: "player", ID: playerID, Status: refreshStatusFailed, Message: errSaveFailed.Error()})
		return result, nil
	}

	var saved bool
	s.runStage(ctx, &result, "player", playerID, func(ctx context.Context) error {
		saved = s.savers.SavePlayer(ctx, payload) != nil
		return savedOrFailed(saved)
	})

	account, hasAccount := payload.Object("steamAccount")
	if hasAccount {
		s.runStage(ctx, &result, "steam_account", playerID, func(ctx context.Context) error {
			return savedOrFailed(s.savers.SaveSteamAccount(ctx, account))
		})
		if pro, ok := account.Object("proSteamAccount"); ok {
			s.runStage(ctx, &result, "pro_steam_account", playerID, func(ctx context.Context) error {
				return savedOrFailed(s.savers.SaveProSteamAccount(ctx, playerID, pro))
			})
		}
	}
	if membership, ok := payload.Object("team"); ok {
		s.runStage(ctx, &result, "team_member", playerID, func(ctx context.Context) error {
			return savedOrFailed(s.savers.SavePlayerTeamMember(ctx, playerID, membership))
		})
	}

	if saved {
		if err := s.savers.SavePlayerChildren(ctx, playerID, payload); err != nil {
			return result, err
		}
	}
	return result, nil
}

// RefreshProPlayers saves the upstream pro roster map.
func (s *SyncService) RefreshProPlayers(ctx context.Context) (RefreshResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SyncService.RefreshProPlayers")
	defer span.End()

	result := RefreshResult{Entity: "pro_player"}
	accounts, err := s.stats.FetchProSteamAccounts(ctx)
	if err != nil {
		return result, fmt.Errorf("fetch pro steam accounts: %w", err)
	}

	tasks := make([]refreshTask, 0, len(accounts))
	for steamAccountID, payload := range accounts {
		tasks = append(tasks, refreshTask{
			kind: "pro_player",
			id:   steamAccountID,
			run: func(ctx context.Context) error {
				return s.saveProPlayer(ctx, steamAccountID, payload)
			},
		})
	}
	if err := s.fanOut(ctx, &result, tasks); err != nil {
		return result, err
	}
	s.logger.InfoContext(ctx, "pro players refreshed", "count", len(accounts), "failed", result.Failed)
	return result, nil
}

func (s *SyncService) saveProPlayer(ctx context.Context, steamAccountID int64, payload entity.Payload) error {
	if s.savers.EnsurePlayerIdentity(ctx, steamAccountID) == nil {
		return errSaveFailed
	}

	account := entity.Payload{"id": steamAccountID}
	for _, key := range []string{"name", "realName"} {
		if payload.Has(key) {
			account[key] = payload[key]
		}
	}
	if s.savers.SaveSteamAccount(ctx, account) == nil {
		return errSaveFailed
	}
	return savedOrFailed(s.savers.SaveProSteamAccount(ctx, steamAccountID, payload))
}

func (s *SyncService) payloadTasks(
	kind, idKey string,
	payloads []entity.Payload,
	save func(context.Context, entity.Payload) *entity.Row,
) []refreshTask {
	tasks := make([]refreshTask, 0, len(payloads))
	for _, payload := range payloads {
		id, _ := payload.Int64(idKey)
		tasks = append(tasks, refreshTask{
			kind: kind,
			id:   id,
			run: func(ctx context.Context) error {
				return savedOrFailed(save(ctx, payload))
			},
		})
	}
	return tasks
}

// fanOut runs every task on a bounded worker pool and waits for all of them.
func (s *SyncService) fanOut(ctx context.Context, result *RefreshResult, tasks []refreshTask) error {
	if len(tasks) == 0 {
		return nil
	}

	workerCount := min(s.cfg.MaxWorkers, len(tasks))
	pool, err := ants.NewPool(workerCount, ants.WithPanicHandler(func(recovered any) {
		s.logger.ErrorContext(ctx, "refresh task panicked", "entity", result.Entity, "panic", recovered)
	}))
	if err != nil {
		return fmt.Errorf("create worker pool: %w", err)
	}
	defer pool.Release()

	results := make(chan RefreshItemResult, len(tasks))
	var panicked atomic.Int32
	var workers sync.WaitGroup
	for _, task := range tasks {
		workers.Add(1)
		if err := pool.Submit(func() {
			defer workers.Done()
			reported := false
			defer func() {
				if !reported {
					panicked.Add(1)
				}
			}()
			results <- s.runTask(ctx, task)
			reported = true
		}); err != nil {
			workers.Done()
			return fmt.Errorf("submit task to worker pool: %w", err)
		}
	}

	workers.Wait()
	close(results)

	items := make([]RefreshItemResult, 0, len(tasks))
	for item := range results {
		items = append(items, item)
	}
	for range panicked.Load() {
		items = append(items, RefreshItemResult{Kind: tasks[0].kind, Status: refreshStatusFailed, Message: "task panicked"})
	}
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].Kind != items[j].Kind {
			return items[i].Kind < items[j].Kind
		}
		return items[i].ID < items[j].ID
	})
	for _, item := range items {
		result.add(item)
	}
	return nil
}

func (s *SyncService) runStage(ctx context.Context, result *RefreshResult, kind string, id int64, run func(context.Context) error) {
	result.add(s.runTask(ctx, refreshTask{kind: kind, id: id, run: run}))
}

func (s *SyncService) runTask(ctx context.Context, task refreshTask) RefreshItemResult {
	start := time.Now()
	item := RefreshItemResult{Kind: task.kind, ID: task.id, Status: refreshStatusSuccess}
	if err := task.run(ctx); err != nil {
		item.Status = refreshStatusFailed
		item.Message = err.Error()
		s.logger.WarnContext(ctx, "refresh item failed", "kind", task.kind, "id", task.id, "error", err)
	}
	item.DurationMs = time.Since(start).Milliseconds()
	return item
}

func savedOrFailed[T comparable](saved T) error {
	var zero T
	if saved == zero {
		return errSaveFailed
	}
	return nil
}
