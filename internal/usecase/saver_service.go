package usecase

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync/atomic"

	"github.com/riskibarqy/esports-stats/internal/domain/entity"
	"github.com/riskibarqy/esports-stats/internal/domain/league"
	"github.com/riskibarqy/esports-stats/internal/domain/match"
	"github.com/riskibarqy/esports-stats/internal/domain/player"
	"github.com/riskibarqy/esports-stats/internal/domain/team"
	"github.com/riskibarqy/esports-stats/internal/platform/logging"
	"github.com/sourcegraph/conc/panics"
	"github.com/sourcegraph/conc/pool"
	"golang.org/x/sync/errgroup"
)

const defaultCascadeWorkers = 8

type SaverConfig struct {
	CascadeWorkers int
}

// SaverService persists one upstream object per call. Savers never return an
// error: failures are logged and reported as a nil row so that sibling saves
// keep going.
type SaverService struct {
	reconciler entity.Reconciler
	cfg        SaverConfig
	logger     *logging.Logger
}

func NewSaverService(reconciler entity.Reconciler, cfg SaverConfig, logger *logging.Logger) *SaverService {
	if cfg.CascadeWorkers <= 0 {
		cfg.CascadeWorkers = defaultCascadeWorkers
	}
	return &SaverService{
		reconciler: reconciler,
		cfg:        cfg,
		logger:     logging.OrDefault(logger).Named("saver"),
	}
}

func (s *SaverService) SaveLeague(ctx context.Context, p entity.Payload) *entity.Row {
	leagueID, ok := requireID(p, "id")
	if !ok {
		s.skip(ctx, league.LeagueTable, p, "id")
		return nil
	}

	values := s.mapFields(ctx, league.LeagueFields, leagueID, p)
	return s.upsert(ctx, league.LeagueTable, entity.Values{"id": leagueID}, values)
}

// SaveSeries writes one series, creating its league and both teams as
// placeholders first, then cascades into the embedded matches.
func (s *SaverService) SaveSeries(ctx context.Context, p entity.Payload) *entity.Row {
	ctx, span := startUsecaseSpan(ctx, "usecase.SaverService.SaveSeries")
	defer span.End()

	seriesID, ok := requireID(p, "id")
	if !ok {
		s.skip(ctx, league.SeriesTable, p, "id")
		return nil
	}

	values := s.mapFields(ctx, league.SeriesFields, seriesID, p)
	refs := []reference{
		{table: league.LeagueTable, column: "league_id", key: "leagueId"},
		{table: team.TeamTable, column: "team_one_id", key: "teamOneId", abs: true},
		{table: team.TeamTable, column: "team_two_id", key: "teamTwoId", abs: true},
	}
	if err := s.resolveReferences(ctx, p, refs, values); err != nil {
		s.fail(ctx, league.SeriesTable, seriesID, err)
		return nil
	}

	row := s.upsert(ctx, league.SeriesTable, entity.Values{"id": seriesID}, values)
	if row == nil {
		return nil
	}

	if err := s.cascade(ctx, "series.matches", p.Items("matches"), func(ctx context.Context, item entity.Payload) {
		s.SaveMatch(ctx, item)
	}); err != nil {
		s.logger.ErrorContext(ctx, "series cascade failed", "series_id", seriesID, "error", err)
	}
	return row
}

// SaveMatch writes one match after its series, league and both teams exist,
// then cascades into pick/bans and player slots.
func (s *SaverService) SaveMatch(ctx context.Context, p entity.Payload) *entity.Row {
	ctx, span := startUsecaseSpan(ctx, "usecase.SaverService.SaveMatch")
	defer span.End()

	matchID, ok := requireID(p, "id")
	if !ok {
		s.skip(ctx, match.MatchTable, p, "id")
		return nil
	}

	values := s.mapFields(ctx, match.MatchFields, matchID, p)
	refs := []reference{
		{table: league.SeriesTable, column: "series_id", key: "seriesId"},
		{table: league.LeagueTable, column: "league_id", key: "leagueId"},
		{table: team.TeamTable, column: "radiant_team_id", key: "radiantTeamId", abs: true},
		{table: team.TeamTable, column: "dire_team_id", key: "direTeamId", abs: true},
	}
	if err := s.resolveReferences(ctx, p, refs, values); err != nil {
		s.fail(ctx, match.MatchTable, matchID, err)
		return nil
	}

	row := s.upsert(ctx, match.MatchTable, entity.Values{"id": matchID}, values)
	if row == nil {
		return nil
	}

	if err := s.cascade(ctx, "match.pickBans", p.Items("pickBans"), func(ctx context.Context, item entity.Payload) {
		s.SavePickBan(ctx, matchID, item)
	}); err != nil {
		s.logger.ErrorContext(ctx, "match cascade failed", "match_id", matchID, "key", "pickBans", "error", err)
	}
	if err := s.cascade(ctx, "match.players", p.Items("players"), func(ctx context.Context, item entity.Payload) {
		s.SaveMatchPlayer(ctx, matchID, item)
	}); err != nil {
		s.logger.ErrorContext(ctx, "match cascade failed", "match_id", matchID, "key", "players", "error", err)
	}
	return row
}

func (s *SaverService) SavePickBan(ctx context.Context, matchID int64, p entity.Payload) *entity.Row {
	order, ok := p.Int64("order")
	if !ok {
		s.skip(ctx, match.PickBanTable, p, "order")
		return nil
	}

	values := s.mapFields(ctx, match.PickBanFields, matchID, p)
	return s.upsert(ctx, match.PickBanTable, entity.Values{"match_id": matchID, "pick_order": order}, values)
}

// SaveMatchPlayer writes one player slot of a match. The slot always belongs
// to matchID regardless of any matchId carried by the payload.
func (s *SaverService) SaveMatchPlayer(ctx context.Context, matchID int64, p entity.Payload) *entity.Row {
	slot, ok := p.Int64("playerSlot")
	if !ok {
		s.skip(ctx, match.PlayerTable, p, "playerSlot")
		return nil
	}

	values := s.mapFields(ctx, match.PlayerFields, matchID, p)
	if steamAccountID, ok := requireID(p, "steamAccountId"); ok {
		if _, err := s.ensureIdentity(ctx, steamAccountID); err != nil {
			s.fail(ctx, match.PlayerTable, matchID, err)
			return nil
		}
	} else if _, present := values["steam_account_id"]; present {
		// Anonymous slots carry no usable account id.
		values["steam_account_id"] = nil
	}
	return s.upsert(ctx, match.PlayerTable, entity.Values{"match_id": matchID, "player_slot": slot}, values)
}

func (s *SaverService) SaveTeam(ctx context.Context, p entity.Payload) *entity.Row {
	teamID, ok := requireID(p, "id")
	if !ok {
		s.skip(ctx, team.TeamTable, p, "id")
		return nil
	}

	values := s.mapFields(ctx, team.TeamFields, teamID, p)
	return s.upsert(ctx, team.TeamTable, entity.Values{"id": teamID}, values)
}

// SaveTeamRow writes one OpenDota explorer row. A team counts as
// professional from team.ProRatingThreshold on.
func (s *SaverService) SaveTeamRow(ctx context.Context, p entity.Payload) *entity.Row {
	teamID, ok := requireID(p, "team_id")
	if !ok {
		s.skip(ctx, team.TeamTable, p, "team_id")
		return nil
	}

	values := s.mapFields(ctx, team.RatingFields, teamID, p)
	if rating, ok := p.Float64("rating"); ok {
		values["rank"] = int64(math.Round(rating))
		values["is_pro"] = rating >= team.ProRatingThreshold
	}
	return s.upsert(ctx, team.TeamTable, entity.Values{"id": teamID}, values)
}

// SaveTeamMember writes the roster link between teamId in p and a steam account.
func (s *SaverService) SaveTeamMember(ctx context.Context, steamAccountID int64, p entity.Payload) *entity.Row {
	teamID, ok := requireID(p, "teamId")
	if !ok {
		s.skip(ctx, team.MemberTable, p, "teamId")
		return nil
	}

	if err := s.placeholder(ctx, team.TeamTable, teamID); err != nil {
		s.fail(ctx, team.MemberTable, teamID, err)
		return nil
	}
	if _, err := s.ensureIdentity(ctx, steamAccountID); err != nil {
		s.fail(ctx, team.MemberTable, teamID, err)
		return nil
	}

	values := s.mapFields(ctx, team.MemberFields, teamID, p)
	lookup := entity.Values{"team_id": teamID, "steam_account_id": steamAccountID}
	return s.upsert(ctx, team.MemberTable, lookup, values)
}

// SaveRosterMember handles one element of a team's members array: the
// player identity, both accounts and the membership itself.
func (s *SaverService) SaveRosterMember(ctx context.Context, p entity.Payload) *entity.Row {
	account, _ := p.Object("steamAccount")
	steamAccountID, ok := requireID(account, "id")
	if !ok {
		s.skip(ctx, team.MemberTable, p, "steamAccount.id")
		return nil
	}

	if s.EnsurePlayerIdentity(ctx, steamAccountID) == nil {
		return nil
	}
	s.SaveSteamAccount(ctx, account)
	if pro, ok := account.Object("proSteamAccount"); ok {
		s.SaveProSteamAccount(ctx, steamAccountID, pro)
	}
	return s.SaveTeamMember(ctx, steamAccountID, p)
}

// LinkPlayerToMember points the player's current team at the given membership.
func (s *SaverService) LinkPlayerToMember(ctx context.Context, playerID int64, memberUUID string) *entity.Row {
	if _, err := s.ensureIdentity(ctx, playerID); err != nil {
		s.fail(ctx, player.PlayerTable, playerID, err)
		return nil
	}
	return s.upsert(ctx, player.PlayerTable, entity.Values{"id": playerID}, entity.Values{"team_member_uuid": memberUUID})
}

// EnsurePlayerIdentity creates the ProSteamAccount, SteamAccount and Player
// rows sharing steamAccountID, leaving existing rows untouched.
func (s *SaverService) EnsurePlayerIdentity(ctx context.Context, steamAccountID int64) *entity.Row {
	row, err := s.ensureIdentity(ctx, steamAccountID)
	if err != nil {
		s.fail(ctx, player.PlayerTable, steamAccountID, err)
		return nil
	}
	return row
}

func (s *SaverService) SaveSteamAccount(ctx context.Context, p entity.Payload) *entity.Row {
	steamAccountID, ok := requireID(p, "id")
	if !ok {
		s.skip(ctx, player.SteamAccountTable, p, "id")
		return nil
	}

	if err := s.placeholder(ctx, player.ProSteamAccountTable, steamAccountID); err != nil {
		s.fail(ctx, player.SteamAccountTable, steamAccountID, err)
		return nil
	}
	values := s.mapFields(ctx, player.SteamAccountFields, steamAccountID, p)
	values["pro_steam_account_id"] = steamAccountID
	return s.upsert(ctx, player.SteamAccountTable, entity.Values{"id": steamAccountID}, values)
}

// SaveProSteamAccount writes a pro account. steamAccountID wins over the
// payload's own steamAccountId; pass zero to use the payload's.
func (s *SaverService) SaveProSteamAccount(ctx context.Context, steamAccountID int64, p entity.Payload) *entity.Row {
	if steamAccountID <= 0 {
		var ok bool
		if steamAccountID, ok = requireID(p, "steamAccountId"); !ok {
			s.skip(ctx, player.ProSteamAccountTable, p, "steamAccountId")
			return nil
		}
	}

	values := s.mapFields(ctx, player.ProSteamAccountFields, steamAccountID, p)
	return s.upsert(ctx, player.ProSteamAccountTable, entity.Values{"id": steamAccountID}, values)
}

// SavePlayer writes the player detail object keyed by its steamAccountId.
func (s *SaverService) SavePlayer(ctx context.Context, p entity.Payload) *entity.Row {
	playerID, ok := requireID(p, "steamAccountId")
	if !ok {
		s.skip(ctx, player.PlayerTable, p, "steamAccountId")
		return nil
	}

	if err := s.ensureAccounts(ctx, playerID); err != nil {
		s.fail(ctx, player.PlayerTable, playerID, err)
		return nil
	}
	values := s.mapFields(ctx, player.PlayerFields, playerID, p)
	values["steam_account_id"] = playerID
	return s.upsert(ctx, player.PlayerTable, entity.Values{"id": playerID}, values)
}

// SavePlayerTeamMember stores the membership embedded in a player detail
// object and makes it the player's current team.
func (s *SaverService) SavePlayerTeamMember(ctx context.Context, playerID int64, p entity.Payload) *entity.Row {
	member := s.SaveTeamMember(ctx, playerID, p)
	if member == nil {
		return nil
	}
	if s.LinkPlayerToMember(ctx, playerID, member.UUID) == nil {
		return nil
	}
	return member
}

func (s *SaverService) SaveBadge(ctx context.Context, playerID int64, p entity.Payload) *entity.Row {
	badgeID, ok := p.Int64("badgeId")
	if !ok {
		badgeID, ok = p.Int64("badge_id")
	}
	if !ok {
		s.skip(ctx, player.BadgeTable, p, "badgeId")
		return nil
	}

	values := s.mapFields(ctx, player.BadgeFields, playerID, p)
	return s.upsert(ctx, player.BadgeTable, entity.Values{"player_id": playerID, "badge_id": badgeID}, values)
}

func (s *SaverService) SaveRank(ctx context.Context, playerID int64, p entity.Payload) *entity.Row {
	seasonRankID, ok := p.Int64("seasonRankId")
	if !ok {
		s.skip(ctx, player.RankTable, p, "seasonRankId")
		return nil
	}

	values := s.mapFields(ctx, player.RankFields, playerID, p)
	return s.upsert(ctx, player.RankTable, entity.Values{"player_id": playerID, "season_rank_id": seasonRankID}, values)
}

func (s *SaverService) SaveBattlePass(ctx context.Context, playerID int64, p entity.Payload) *entity.Row {
	eventID, ok := p.Int64("eventId")
	if !ok {
		s.skip(ctx, player.BattlePassTable, p, "eventId")
		return nil
	}

	values := s.mapFields(ctx, player.BattlePassFields, playerID, p)
	return s.upsert(ctx, player.BattlePassTable, entity.Values{"player_id": playerID, "event_id": eventID}, values)
}

func (s *SaverService) SaveName(ctx context.Context, playerID int64, p entity.Payload) *entity.Row {
	name, ok := p.String("name")
	if !ok || name == "" {
		s.skip(ctx, player.NameTable, p, "name")
		return nil
	}

	values := s.mapFields(ctx, player.NameFields, playerID, p)
	return s.upsert(ctx, player.NameTable, entity.Values{"player_id": playerID, "name": name}, values)
}

// SavePlayerChildren cascades a player detail object into its four child
// collections concurrently. It returns an error only when a child task panicked.
func (s *SaverService) SavePlayerChildren(ctx context.Context, playerID int64, p entity.Payload) error {
	children := []struct {
		key  string
		save func(context.Context, int64, entity.Payload) *entity.Row
	}{
		{key: "badges", save: s.SaveBadge},
		{key: "ranks", save: s.SaveRank},
		{key: "battlePass", save: s.SaveBattlePass},
		{key: "names", save: s.SaveName},
	}

	var group errgroup.Group
	for _, child := range children {
		group.Go(func() error {
			return s.cascade(ctx, "player."+child.key, p.Items(child.key), func(ctx context.Context, item entity.Payload) {
				child.save(ctx, playerID, item)
			})
		})
	}
	if err := group.Wait(); err != nil {
		return fmt.Errorf("player %d children: %w", playerID, err)
	}
	return nil
}

type reference struct {
	table  *entity.Table
	column string
	key    string
	abs    bool
}

// resolveReferences creates a placeholder for every foreign key present in p
// and copies the resolved id into values.
func (s *SaverService) resolveReferences(ctx context.Context, p entity.Payload, refs []reference, values entity.Values) error {
	for _, ref := range refs {
		if !p.Has(ref.key) {
			continue
		}
		var (
			refID int64
			ok    bool
		)
		if ref.abs {
			refID, ok = p.AbsInt64(ref.key)
		} else {
			refID, ok = p.Int64(ref.key)
		}
		if !ok {
			values[ref.column] = nil
			continue
		}
		if err := s.placeholder(ctx, ref.table, refID); err != nil {
			return err
		}
		values[ref.column] = refID
	}
	return nil
}

func (s *SaverService) placeholder(ctx context.Context, table *entity.Table, id int64) error {
	if _, _, err := s.reconciler.GetOrCreate(ctx, table, entity.Values{"id": id}, nil); err != nil {
		return fmt.Errorf("placeholder %s %d: %w", table.Name(), id, err)
	}
	return nil
}

func (s *SaverService) ensureAccounts(ctx context.Context, steamAccountID int64) error {
	if err := s.placeholder(ctx, player.ProSteamAccountTable, steamAccountID); err != nil {
		return err
	}
	_, _, err := s.reconciler.GetOrCreate(ctx, player.SteamAccountTable,
		entity.Values{"id": steamAccountID},
		entity.Values{"pro_steam_account_id": steamAccountID},
	)
	if err != nil {
		return fmt.Errorf("placeholder %s %d: %w", player.SteamAccountTable.Name(), steamAccountID, err)
	}
	return nil
}

func (s *SaverService) ensureIdentity(ctx context.Context, steamAccountID int64) (*entity.Row, error) {
	if err := s.ensureAccounts(ctx, steamAccountID); err != nil {
		return nil, err
	}
	row, _, err := s.reconciler.GetOrCreate(ctx, player.PlayerTable,
		entity.Values{"id": steamAccountID},
		entity.Values{"steam_account_id": steamAccountID},
	)
	if err != nil {
		return nil, fmt.Errorf("placeholder %s %d: %w", player.PlayerTable.Name(), steamAccountID, err)
	}
	return row, nil
}

func (s *SaverService) upsert(ctx context.Context, table *entity.Table, lookup, values entity.Values) *entity.Row {
	row, _, err := s.reconciler.UpdateOrCreate(ctx, table, lookup, values)
	if err != nil {
		s.logger.ErrorContext(ctx, "save entity failed",
			"table", table.Name(),
			"lookup", lookup,
			"error", err,
		)
		return nil
	}
	return row
}

func (s *SaverService) mapFields(ctx context.Context, mapping *entity.Mapping, id int64, p entity.Payload) entity.Values {
	values, dropped := mapping.Map(p)
	if len(dropped) > 0 {
		s.logger.DebugContext(ctx, "dropped payload fields",
			"table", mapping.Table().Name(),
			"id", id,
			"fields", dropped,
		)
	}
	return values
}

func (s *SaverService) skip(ctx context.Context, table *entity.Table, p entity.Payload, key string) {
	s.logger.WarnContext(ctx, "skip payload without identity",
		"table", table.Name(),
		"key", key,
		"payload_keys", len(p),
	)
}

func (s *SaverService) fail(ctx context.Context, table *entity.Table, id int64, err error) {
	s.logger.ErrorContext(ctx, "save entity failed",
		"table", table.Name(),
		"id", id,
		"error", err,
	)
}

var errCascadePanicked = errors.New("cascade task panicked")

// cascade runs save once per item on a bounded pool and waits for all of
// them. A panicking task is logged and does not stop its siblings; the
// cascade then reports errCascadePanicked.
func (s *SaverService) cascade(ctx context.Context, name string, items []entity.Payload, save func(context.Context, entity.Payload)) error {
	if len(items) == 0 {
		return nil
	}

	var panicked atomic.Int32
	p := pool.New().WithMaxGoroutines(min(s.cfg.CascadeWorkers, len(items)))
	for idx, item := range items {
		p.Go(func() {
			if item == nil {
				s.logger.WarnContext(ctx, "skip malformed cascade item", "cascade", name, "index", idx)
				return
			}
			var catcher panics.Catcher
			catcher.Try(func() { save(ctx, item) })
			if recovered := catcher.Recovered(); recovered != nil {
				panicked.Add(1)
				s.logger.ErrorContext(ctx, "cascade task panicked",
					"cascade", name,
					"index", idx,
					"error", recovered.AsError(),
				)
			}
		})
	}
	p.Wait()

	if n := panicked.Load(); n > 0 {
		return fmt.Errorf("%s: %d of %d tasks: %w", name, n, len(items), errCascadePanicked)
	}
	return nil
}

func requireID(p entity.Payload, key string) (int64, bool) {
	if p == nil {
		return 0, false
	}
	id, ok := p.Int64(key)
	if !ok || id <= 0 {
		return 0, false
	}
	return id, true
}
