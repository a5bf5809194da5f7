package league

import (
	"github.com/riskibarqy/esports-stats/internal/domain/entity"
)

// LeagueTable holds tournaments as published by STRATZ. Times are unix seconds.
var LeagueTable = entity.NewTable("leagues", []string{"id"}, map[string]entity.Kind{
	"id":                  entity.KindInt,
	"registration_period": entity.KindInt,
	"country":             entity.KindString,
	"venue":               entity.KindString,
	"private":             entity.KindBool,
	"city":                entity.KindString,
	"description":         entity.KindString,
	"has_live_matches":    entity.KindBool,
	"tier":                entity.KindInt,
	"tournament_url":      entity.KindString,
	"free_to_spectate":    entity.KindBool,
	"is_followed":         entity.KindBool,
	"last_match_date":     entity.KindInt,
	"pro_circuit_points":  entity.KindInt,
	"banner":              entity.KindString,
	"stop_sales_time":     entity.KindString,
	"image_uri":           entity.KindString,
	"display_name":        entity.KindString,
	"end_datetime":        entity.KindInt,
	"name":                entity.KindString,
	"prize_pool":          entity.KindInt,
	"base_prize_pool":     entity.KindInt,
	"region":              entity.KindInt,
	"start_datetime":      entity.KindInt,
	"status":              entity.KindInt,
	"is_over":             entity.KindBool,
})

var LeagueFields = entity.NewMapping(LeagueTable,
	entity.F("registrationPeriod", "registration_period"),
	entity.F("country", "country"),
	entity.F("venue", "venue"),
	entity.F("private", "private"),
	entity.F("city", "city"),
	entity.F("description", "description"),
	entity.F("hasLiveMatches", "has_live_matches"),
	entity.F("tier", "tier"),
	entity.F("tournamentUrl", "tournament_url"),
	entity.F("freeToSpectate", "free_to_spectate"),
	entity.F("isFollowed", "is_followed"),
	entity.F("lastMatchDate", "last_match_date"),
	entity.F("proCircuitPoints", "pro_circuit_points"),
	entity.F("banner", "banner"),
	entity.F("stopSalesTime", "stop_sales_time"),
	entity.F("imageUri", "image_uri"),
	entity.F("displayName", "display_name"),
	entity.F("endDateTime", "end_datetime"),
	entity.F("name", "name"),
	entity.F("prizePool", "prize_pool"),
	entity.F("basePrizePool", "base_prize_pool"),
	entity.F("region", "region"),
	entity.F("startDateTime", "start_datetime"),
	entity.F("status", "status"),
)

// SeriesTable groups the matches two teams play against each other within a league.
var SeriesTable = entity.NewTable("series", []string{"id"}, map[string]entity.Kind{
	"id":                   entity.KindInt,
	"type":                 entity.KindInt,
	"team_one_win_count":   entity.KindInt,
	"team_two_win_count":   entity.KindInt,
	"winning_team_id":      entity.KindInt,
	"losing_team_id":       entity.KindInt,
	"last_match_date_time": entity.KindInt,
	"is_over":              entity.KindBool,
	"league_id":            entity.KindInt,
	"team_one_id":          entity.KindInt,
	"team_two_id":          entity.KindInt,
})

// SeriesFields excludes the foreign keys; the saver resolves those itself.
var SeriesFields = entity.NewMapping(SeriesTable,
	entity.F("type", "type"),
	entity.F("teamOneWinCount", "team_one_win_count"),
	entity.F("teamTwoWinCount", "team_two_win_count"),
	entity.AbsF("winningTeamId", "winning_team_id"),
	entity.AbsF("losingTeamId", "losing_team_id"),
	entity.F("lastMatchDate", "last_match_date_time", "lastMatchDateTime"),
)

type League struct {
	entity.Audit
	ID                 int64  `json:"id"`
	Name               string `json:"name"`
	DisplayName        string `json:"display_name,omitempty"`
	Tier               int64  `json:"tier"`
	Region             int64  `json:"region"`
	Status             int64  `json:"status"`
	PrizePool          int64  `json:"prize_pool"`
	BasePrizePool      int64  `json:"base_prize_pool"`
	StartDateTime      int64  `json:"start_datetime"`
	EndDateTime        int64  `json:"end_datetime"`
	LastMatchDate      int64  `json:"last_match_date,omitempty"`
	ImageURI           string `json:"image_uri,omitempty"`
	Banner             string `json:"banner,omitempty"`
	TournamentURL      string `json:"tournament_url,omitempty"`
	Country            string `json:"country,omitempty"`
	City               string `json:"city,omitempty"`
	Venue              string `json:"venue,omitempty"`
	Description        string `json:"description,omitempty"`
	HasLiveMatches     bool   `json:"has_live_matches"`
	FreeToSpectate     bool   `json:"free_to_spectate"`
	IsFollowed         bool   `json:"is_followed"`
	Private            bool   `json:"private"`
	ProCircuitPoints   int64  `json:"pro_circuit_points,omitempty"`
	RegistrationPeriod int64  `json:"registration_period,omitempty"`
	StopSalesTime      string `json:"stop_sales_time,omitempty"`
	IsOver             bool   `json:"is_over"`
}

func LeagueFromRow(row *entity.Row) League {
	return League{
		Audit:              row.Audit(),
		ID:                 row.Int64Value("id"),
		Name:               row.StringValue("name"),
		DisplayName:        row.StringValue("display_name"),
		Tier:               row.Int64Value("tier"),
		Region:             row.Int64Value("region"),
		Status:             row.Int64Value("status"),
		PrizePool:          row.Int64Value("prize_pool"),
		BasePrizePool:      row.Int64Value("base_prize_pool"),
		StartDateTime:      row.Int64Value("start_datetime"),
		EndDateTime:        row.Int64Value("end_datetime"),
		LastMatchDate:      row.Int64Value("last_match_date"),
		ImageURI:           row.StringValue("image_uri"),
		Banner:             row.StringValue("banner"),
		TournamentURL:      row.StringValue("tournament_url"),
		Country:            row.StringValue("country"),
		City:               row.StringValue("city"),
		Venue:              row.StringValue("venue"),
		Description:        row.StringValue("description"),
		HasLiveMatches:     row.BoolValue("has_live_matches"),
		FreeToSpectate:     row.BoolValue("free_to_spectate"),
		IsFollowed:         row.BoolValue("is_followed"),
		Private:            row.BoolValue("private"),
		ProCircuitPoints:   row.Int64Value("pro_circuit_points"),
		RegistrationPeriod: row.Int64Value("registration_period"),
		StopSalesTime:      row.StringValue("stop_sales_time"),
		IsOver:             row.BoolValue("is_over"),
	}
}

// HasEnded reports whether the league's end time lies before now (unix seconds).
func (l League) HasEnded(now int64) bool {
	return l.EndDateTime != 0 && l.EndDateTime < now
}

type Series struct {
	entity.Audit
	ID                int64  `json:"id"`
	LeagueID          int64  `json:"league_id"`
	Type              int64  `json:"type"`
	TeamOneID         *int64 `json:"team_one_id"`
	TeamTwoID         *int64 `json:"team_two_id"`
	TeamOneWinCount   int64  `json:"team_one_win_count"`
	TeamTwoWinCount   int64  `json:"team_two_win_count"`
	WinningTeamID     *int64 `json:"winning_team_id"`
	LosingTeamID      *int64 `json:"losing_team_id,omitempty"`
	LastMatchDateTime int64  `json:"last_match_date_time"`
	IsOver            bool   `json:"is_over"`
}

func SeriesFromRow(row *entity.Row) Series {
	return Series{
		Audit:             row.Audit(),
		ID:                row.Int64Value("id"),
		LeagueID:          row.Int64Value("league_id"),
		Type:              row.Int64Value("type"),
		TeamOneID:         row.OptionalInt64("team_one_id"),
		TeamTwoID:         row.OptionalInt64("team_two_id"),
		TeamOneWinCount:   row.Int64Value("team_one_win_count"),
		TeamTwoWinCount:   row.Int64Value("team_two_win_count"),
		WinningTeamID:     row.OptionalInt64("winning_team_id"),
		LosingTeamID:      row.OptionalInt64("losing_team_id"),
		LastMatchDateTime: row.Int64Value("last_match_date_time"),
		IsOver:            row.BoolValue("is_over"),
	}
}

// BestOf translates the upstream series type into the number of games.
func (s Series) BestOf() int {
	switch s.Type {
	case 1:
		return 3
	case 2:
		return 5
	case 3:
		return 2
	default:
		return 1
	}
}
