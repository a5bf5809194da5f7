package httpapi

import "net/http"

func registerSystemRoutes(mux *http.ServeMux, handler *Handler, swaggerEnabled bool) {
	mux.HandleFunc("GET /healthz", handler.Healthz)
	if !swaggerEnabled {
		return
	}

	mux.HandleFunc("GET /openapi.yaml", handler.OpenAPI)
	mux.HandleFunc("GET /docs", handler.SwaggerUI)
	mux.HandleFunc("GET /docs/", handler.SwaggerUI)
}

func registerReadRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /v1/leagues", handler.ListLeagues)
	mux.HandleFunc("GET /v1/leagues/{leagueID}", handler.GetLeague)
	mux.HandleFunc("GET /v1/leagues/{leagueID}/series", handler.ListLeagueSeries)
	mux.HandleFunc("GET /v1/leagues/{leagueID}/picks", handler.LeaguePicks)
	mux.HandleFunc("GET /v1/teams", handler.ListTeams)
	mux.HandleFunc("GET /v1/teams/{teamID}", handler.GetTeam)
	mux.HandleFunc("GET /v1/teams/{teamID}/picks", handler.TeamPicks)
	mux.HandleFunc("GET /v1/players/{playerID}", handler.GetPlayer)
	mux.HandleFunc("GET /v1/players/{playerID}/picks", handler.PlayerPicks)
	mux.HandleFunc("GET /v1/matches", handler.ListMatches)
	mux.HandleFunc("GET /v1/matches/{matchID}", handler.GetMatch)
}

func registerAdminRoutes(mux *http.ServeMux, handler *Handler, adminToken string) {
	admin := func(h http.HandlerFunc) http.Handler {
		return RequireAdminToken(adminToken, h)
	}

	mux.Handle("POST /v1/refresh/leagues", admin(handler.RefreshLeagues))
	mux.Handle("POST /v1/refresh/leagues/active", admin(handler.RefreshActiveLeagues))
	mux.Handle("POST /v1/refresh/leagues/{leagueID}/series", admin(handler.RefreshLeagueSeries))
	mux.Handle("POST /v1/refresh/teams", admin(handler.RefreshTeams))
	mux.Handle("POST /v1/refresh/teams/{teamID}", admin(handler.RefreshTeam))
	mux.Handle("POST /v1/refresh/players/pro", admin(handler.RefreshProPlayers))
	mux.Handle("POST /v1/refresh/players/{playerID}", admin(handler.RefreshPlayer))
	mux.Handle("GET /v1/refresh/dispatches/{dispatchID}", admin(handler.GetDispatch))

	// Soft delete cascades to the league's series.
	mux.Handle("DELETE /v1/leagues/{leagueID}", admin(handler.DeleteLeague))
	mux.Handle("POST /v1/leagues/{leagueID}/restore", admin(handler.RestoreLeague))
}
