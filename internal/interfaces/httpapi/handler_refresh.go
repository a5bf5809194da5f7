package httpapi

import (
	"fmt"
	"net/http"

	"github.com/riskibarqy/esports-stats/internal/usecase"
)

type dispatchAcceptedDTO struct {
	DispatchID string `json:"dispatch_id"`
	Job        string `json:"job"`
	Target     int64  `json:"target,omitempty"`
	StatusURL  string `json:"status_url"`
}

func (h *Handler) RefreshLeagues(w http.ResponseWriter, r *http.Request) {
	h.dispatch(w, r, "httpapi.Handler.RefreshLeagues", usecase.JobRefreshLeagues, "")
}

func (h *Handler) RefreshActiveLeagues(w http.ResponseWriter, r *http.Request) {
	h.dispatch(w, r, "httpapi.Handler.RefreshActiveLeagues", usecase.JobRefreshActiveLeagues, "")
}

func (h *Handler) RefreshLeagueSeries(w http.ResponseWriter, r *http.Request) {
	h.dispatch(w, r, "httpapi.Handler.RefreshLeagueSeries", usecase.JobRefreshLeagueSeries, "leagueID")
}

func (h *Handler) RefreshTeams(w http.ResponseWriter, r *http.Request) {
	h.dispatch(w, r, "httpapi.Handler.RefreshTeams", usecase.JobRefreshTeams, "")
}

func (h *Handler) RefreshTeam(w http.ResponseWriter, r *http.Request) {
	h.dispatch(w, r, "httpapi.Handler.RefreshTeam", usecase.JobRefreshTeam, "teamID")
}

func (h *Handler) RefreshProPlayers(w http.ResponseWriter, r *http.Request) {
	h.dispatch(w, r, "httpapi.Handler.RefreshProPlayers", usecase.JobRefreshProPlayers, "")
}

func (h *Handler) RefreshPlayer(w http.ResponseWriter, r *http.Request) {
	h.dispatch(w, r, "httpapi.Handler.RefreshPlayer", usecase.JobRefreshPlayer, "playerID")
}

func (h *Handler) GetDispatch(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetDispatch")
	defer span.End()

	if h.dispatcher == nil {
		writeError(ctx, w, fmt.Errorf("%w: dispatcher is not configured", usecase.ErrDependencyUnavailable))
		return
	}

	dispatchID := r.PathValue("dispatchID")
	item, err := h.dispatcher.Status(ctx, dispatchID)
	if err != nil {
		h.logger.WarnContext(ctx, "get dispatch failed", "dispatch_id", dispatchID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, item)
}

// dispatch queues job for the id found under pathParam (if any) and answers
// 202 without waiting for the refresh.
func (h *Handler) dispatch(w http.ResponseWriter, r *http.Request, spanName string, job usecase.Job, pathParam string) {
	ctx, span := startSpan(r.Context(), spanName)
	defer span.End()

	if h.dispatcher == nil {
		writeError(ctx, w, fmt.Errorf("%w: dispatcher is not configured", usecase.ErrDependencyUnavailable))
		return
	}

	var target int64
	if pathParam != "" {
		id, err := pathID(r, pathParam)
		if err != nil {
			writeError(ctx, w, err)
			return
		}
		target = id
	}

	dispatchID, err := h.dispatcher.Dispatch(ctx, job, target)
	if err != nil {
		h.logger.WarnContext(ctx, "dispatch refresh failed", "job", job, "target", target, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusAccepted, dispatchAcceptedDTO{
		DispatchID: dispatchID,
		Job:        string(job),
		Target:     target,
		StatusURL:  "/v1/refresh/dispatches/" + dispatchID,
	})
}
