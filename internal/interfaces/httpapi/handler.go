package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/riskibarqy/esports-stats/internal/domain/league"
	"github.com/riskibarqy/esports-stats/internal/domain/match"
	"github.com/riskibarqy/esports-stats/internal/platform/logging"
	"github.com/riskibarqy/esports-stats/internal/usecase"
)

type Handler struct {
	queryService *usecase.QueryService
	dispatcher   *usecase.Dispatcher
	logger       *logging.Logger
	validator    *validator.Validate
}

func NewHandler(
	queryService *usecase.QueryService,
	dispatcher *usecase.Dispatcher,
	logger *logging.Logger,
) *Handler {
	if logger == nil {
		logger = logging.Default()
	}

	return &Handler{
		queryService: queryService,
		dispatcher:   dispatcher,
		logger:       logger,
		validator:    validator.New(),
	}
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Healthz")
	defer span.End()

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) ListLeagues(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListLeagues")
	defer span.End()

	req, err := h.decodeListQuery(ctx, r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	items, err := h.queryService.ListLeagues(ctx, req.MinTier, req.IncludeDeleted)
	if err != nil {
		h.logger.WarnContext(ctx, "list leagues failed", "min_tier", req.MinTier, "error", err)
		writeError(ctx, w, err)
		return
	}
	if items == nil {
		items = []league.League{}
	}

	writeSuccess(ctx, w, http.StatusOK, items)
}

func (h *Handler) GetLeague(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetLeague")
	defer span.End()

	leagueID, err := pathID(r, "leagueID")
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	item, err := h.queryService.GetLeague(ctx, leagueID, includeDeleted(r))
	if err != nil {
		h.logger.WarnContext(ctx, "get league failed", "league_id", leagueID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, item)
}

func (h *Handler) ListLeagueSeries(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListLeagueSeries")
	defer span.End()

	leagueID, err := pathID(r, "leagueID")
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	req, err := h.decodeListQuery(ctx, r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	items, err := h.queryService.ListLeagueSeries(ctx, leagueID, req.Limit, req.IncludeDeleted)
	if err != nil {
		h.logger.WarnContext(ctx, "list league series failed", "league_id", leagueID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, items)
}

func (h *Handler) DeleteLeague(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.DeleteLeague")
	defer span.End()

	leagueID, err := pathID(r, "leagueID")
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	if err := h.queryService.DeleteLeague(ctx, leagueID); err != nil {
		h.logger.WarnContext(ctx, "delete league failed", "league_id", leagueID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, map[string]any{"id": leagueID, "deleted": true})
}

func (h *Handler) RestoreLeague(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RestoreLeague")
	defer span.End()

	leagueID, err := pathID(r, "leagueID")
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	if err := h.queryService.RestoreLeague(ctx, leagueID); err != nil {
		h.logger.WarnContext(ctx, "restore league failed", "league_id", leagueID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, map[string]any{"id": leagueID, "deleted": false})
}

func (h *Handler) ListTeams(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListTeams")
	defer span.End()

	req, err := h.decodeListQuery(ctx, r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	items, err := h.queryService.ListTeams(ctx, req.Limit, req.IncludeDeleted)
	if err != nil {
		h.logger.WarnContext(ctx, "list teams failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, items)
}

func (h *Handler) GetTeam(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetTeam")
	defer span.End()

	teamID, err := pathID(r, "teamID")
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	detail, err := h.queryService.GetTeam(ctx, teamID, includeDeleted(r))
	if err != nil {
		h.logger.WarnContext(ctx, "get team failed", "team_id", teamID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, detail)
}

func (h *Handler) GetPlayer(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetPlayer")
	defer span.End()

	playerID, err := pathID(r, "playerID")
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	profile, err := h.queryService.GetPlayer(ctx, playerID, includeDeleted(r))
	if err != nil {
		h.logger.WarnContext(ctx, "get player failed", "player_id", playerID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, profile)
}

func (h *Handler) ListMatches(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListMatches")
	defer span.End()

	req, err := h.decodeListQuery(ctx, r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	items, err := h.queryService.ListMatches(ctx, req.GameVersion, req.Limit, req.IncludeDeleted)
	if err != nil {
		h.logger.WarnContext(ctx, "list matches failed", "game_version", req.GameVersion, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, items)
}

func (h *Handler) GetMatch(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetMatch")
	defer span.End()

	matchID, err := pathID(r, "matchID")
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	detail, err := h.queryService.GetMatch(ctx, matchID, includeDeleted(r))
	if err != nil {
		h.logger.WarnContext(ctx, "get match failed", "match_id", matchID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, detail)
}

func (h *Handler) TeamPicks(w http.ResponseWriter, r *http.Request) {
	h.heroPickBans(w, r, match.PickScopeTeam, "teamID")
}

func (h *Handler) LeaguePicks(w http.ResponseWriter, r *http.Request) {
	h.heroPickBans(w, r, match.PickScopeLeague, "leagueID")
}

func (h *Handler) heroPickBans(w http.ResponseWriter, r *http.Request, scope match.PickScope, param string) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.HeroPickBans")
	defer span.End()

	id, err := pathID(r, param)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	counts, err := h.queryService.HeroPickBans(ctx, scope, id)
	if err != nil {
		h.logger.WarnContext(ctx, "hero pick bans failed", "scope", scope, "id", id, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, counts)
}

func (h *Handler) PlayerPicks(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.PlayerPicks")
	defer span.End()

	playerID, err := pathID(r, "playerID")
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	counts, err := h.queryService.PlayerHeroPicks(ctx, playerID)
	if err != nil {
		h.logger.WarnContext(ctx, "player hero picks failed", "player_id", playerID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, counts)
}

func (h *Handler) validateRequest(ctx context.Context, payload any) error {
	ctx, span := startSpan(ctx, "httpapi.Handler.validateRequest")
	defer span.End()

	if err := h.validator.StructCtx(ctx, payload); err != nil {
		return fmt.Errorf("%w: validation failed: %v", usecase.ErrInvalidInput, err)
	}

	return nil
}

type listQuery struct {
	MinTier        int   `validate:"gte=0,lte=10"`
	Limit          int   `validate:"gte=0,lte=500"`
	GameVersion    int64 `validate:"gte=0"`
	IncludeDeleted bool
}

func (h *Handler) decodeListQuery(ctx context.Context, r *http.Request) (listQuery, error) {
	query := r.URL.Query()
	req := listQuery{IncludeDeleted: includeDeleted(r)}

	var err error
	if req.MinTier, err = queryInt(query.Get("min_tier")); err != nil {
		return listQuery{}, fmt.Errorf("%w: min_tier must be an integer", usecase.ErrInvalidInput)
	}
	if req.Limit, err = queryInt(query.Get("limit")); err != nil {
		return listQuery{}, fmt.Errorf("%w: limit must be an integer", usecase.ErrInvalidInput)
	}
	gameVersion, err := queryInt(query.Get("game_version"))
	if err != nil {
		return listQuery{}, fmt.Errorf("%w: game_version must be an integer", usecase.ErrInvalidInput)
	}
	req.GameVersion = int64(gameVersion)
	if err := h.validateRequest(ctx, req); err != nil {
		return listQuery{}, err
	}
	return req, nil
}

func queryInt(raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}
	return strconv.Atoi(raw)
}

func includeDeleted(r *http.Request) bool {
	value, err := strconv.ParseBool(strings.TrimSpace(r.URL.Query().Get("include_deleted")))
	return err == nil && value
}

func pathID(r *http.Request, name string) (int64, error) {
	raw := strings.TrimSpace(r.PathValue(name))
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: %s must be a positive integer", usecase.ErrInvalidInput, name)
	}
	return id, nil
}
