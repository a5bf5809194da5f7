package match

import (
	"sort"

	"github.com/riskibarqy/esports-stats/internal/domain/entity"
)

var MatchTable = entity.NewTable("matches", []string{"id"}, map[string]entity.Kind{
	"id":                       entity.KindInt,
	"did_radiant_win":          entity.KindBool,
	"duration_seconds":         entity.KindInt,
	"start_date_time":          entity.KindInt,
	"tower_status_radiant":     entity.KindInt,
	"tower_status_dire":        entity.KindInt,
	"barracks_status_radiant":  entity.KindInt,
	"barracks_status_dire":     entity.KindInt,
	"cluster_id":               entity.KindInt,
	"first_blood_time":         entity.KindInt,
	"lobby_type":               entity.KindInt,
	"num_human_players":        entity.KindInt,
	"game_mode":                entity.KindInt,
	"replay_salt":              entity.KindInt,
	"is_stats":                 entity.KindBool,
	"tournament_id":            entity.KindInt,
	"tournament_round":         entity.KindInt,
	"average_rank":             entity.KindInt,
	"actual_rank":              entity.KindInt,
	"average_imp":              entity.KindInt,
	"parsed_date_time":         entity.KindInt,
	"stats_date_time":          entity.KindInt,
	"game_version_id":          entity.KindInt,
	"region_id":                entity.KindInt,
	"sequence_num":             entity.KindInt,
	"rank":                     entity.KindInt,
	"bracket":                  entity.KindInt,
	"end_date_time":            entity.KindInt,
	"actual_rank_weight":       entity.KindInt,
	"analysis_outcome":         entity.KindInt,
	"predicted_outcome_weight": entity.KindInt,
	"bottom_lane_outcome":      entity.KindInt,
	"mid_lane_outcome":         entity.KindInt,
	"top_lane_outcome":         entity.KindInt,
	"radiant_networth_lead":    entity.KindJSON,
	"radiant_experience_lead":  entity.KindJSON,
	"radiant_kills":            entity.KindJSON,
	"dire_kills":               entity.KindJSON,
	"tower_status":             entity.KindJSON,
	"lane_report":              entity.KindJSON,
	"win_rates":                entity.KindJSON,
	"predicted_win_rates":      entity.KindJSON,
	"tower_deaths":             entity.KindJSON,
	"chat_events":              entity.KindJSON,
	"did_request_download":     entity.KindBool,
	"game_result":              entity.KindInt,
	"series_id":                entity.KindInt,
	"league_id":                entity.KindInt,
	"radiant_team_id":          entity.KindInt,
	"dire_team_id":             entity.KindInt,
})

var MatchFields = entity.NewMapping(MatchTable,
	entity.F("didRadiantWin", "did_radiant_win"),
	entity.F("durationSeconds", "duration_seconds"),
	entity.F("startDateTime", "start_date_time"),
	entity.F("towerStatusRadiant", "tower_status_radiant"),
	entity.F("towerStatusDire", "tower_status_dire"),
	entity.F("barracksStatusRadiant", "barracks_status_radiant"),
	entity.F("barracksStatusDire", "barracks_status_dire"),
	entity.F("clusterId", "cluster_id"),
	entity.F("firstBloodTime", "first_blood_time"),
	entity.F("lobbyType", "lobby_type"),
	entity.F("numHumanPlayers", "num_human_players"),
	entity.F("gameMode", "game_mode"),
	entity.F("replaySalt", "replay_salt"),
	entity.F("isStats", "is_stats"),
	entity.F("tournamentId", "tournament_id"),
	entity.F("tournamentRound", "tournament_round"),
	entity.F("averageRank", "average_rank"),
	entity.F("actualRank", "actual_rank"),
	entity.F("averageImp", "average_imp"),
	entity.F("parsedDateTime", "parsed_date_time"),
	entity.F("statsDateTime", "stats_date_time"),
	entity.F("gameVersionId", "game_version_id"),
	entity.F("regionId", "region_id"),
	entity.F("sequenceNum", "sequence_num"),
	entity.F("rank", "rank"),
	entity.F("bracket", "bracket"),
	entity.F("endDateTime", "end_date_time"),
	entity.F("actualRankWeight", "actual_rank_weight"),
	entity.F("analysisOutcome", "analysis_outcome"),
	entity.F("predictedOutcomeWeight", "predicted_outcome_weight"),
	entity.F("bottomLaneOutcome", "bottom_lane_outcome"),
	entity.F("midLaneOutcome", "mid_lane_outcome"),
	entity.F("topLaneOutcome", "top_lane_outcome"),
	entity.F("radiantNetworthLead", "radiant_networth_lead"),
	entity.F("radiantExperienceLead", "radiant_experience_lead"),
	entity.F("radiantKills", "radiant_kills"),
	entity.F("direKills", "dire_kills"),
	entity.F("towerStatus", "tower_status"),
	entity.F("laneReport", "lane_report"),
	entity.F("winRates", "win_rates"),
	entity.F("predictedWinRates", "predicted_win_rates"),
	entity.F("towerDeaths", "tower_deaths"),
	entity.F("chatEvents", "chat_events"),
	entity.F("didRequestDownload", "did_request_download"),
	entity.F("gameResult", "game_result"),
)

// PickBanTable is keyed by the owning match and the draft order.
var PickBanTable = entity.NewTable("match_picks_ban", []string{"match_id", "pick_order"}, map[string]entity.Kind{
	"match_id":                entity.KindInt,
	"pick_order":              entity.KindInt,
	"is_pick":                 entity.KindBool,
	"hero_id":                 entity.KindInt,
	"banned_hero_id":          entity.KindInt,
	"is_radiant":              entity.KindBool,
	"player_index":            entity.KindInt,
	"was_banned_successfully": entity.KindBool,
	"base_win_rate":           entity.KindInt,
	"adjusted_win_rate":       entity.KindInt,
	"pick_probability":        entity.KindInt,
	"is_captain":              entity.KindBool,
})

var PickBanFields = entity.NewMapping(PickBanTable,
	entity.F("isPick", "is_pick"),
	entity.F("heroId", "hero_id"),
	entity.F("bannedHeroId", "banned_hero_id"),
	entity.F("isRadiant", "is_radiant"),
	entity.F("playerIndex", "player_index"),
	entity.F("wasBannedSuccessfully", "was_banned_successfully"),
	entity.F("baseWinRate", "base_win_rate"),
	entity.F("adjustedWinRate", "adjusted_win_rate"),
	entity.F("pickProbability", "pick_probability"),
	entity.F("isCaptain", "is_captain"),
)

// PlayerTable is the per-match box score of one player slot.
var PlayerTable = entity.NewTable("match_players", []string{"match_id", "player_slot"}, map[string]entity.Kind{
	"match_id":                   entity.KindInt,
	"player_slot":                entity.KindInt,
	"steam_account_id":           entity.KindInt,
	"hero_id":                    entity.KindInt,
	"is_radiant":                 entity.KindBool,
	"num_kills":                  entity.KindInt,
	"num_deaths":                 entity.KindInt,
	"num_assists":                entity.KindInt,
	"leaver_status":              entity.KindInt,
	"num_last_hits":              entity.KindInt,
	"num_denies":                 entity.KindInt,
	"gold_per_minute":            entity.KindInt,
	"experience_per_minute":      entity.KindInt,
	"level":                      entity.KindInt,
	"gold":                       entity.KindInt,
	"gold_spent":                 entity.KindInt,
	"hero_damage":                entity.KindInt,
	"tower_damage":               entity.KindInt,
	"party_id":                   entity.KindInt,
	"is_random":                  entity.KindBool,
	"lane":                       entity.KindInt,
	"streak_prediction":          entity.KindInt,
	"intentional_feeding":        entity.KindBool,
	"role":                       entity.KindInt,
	"imp":                        entity.KindInt,
	"award":                      entity.KindInt,
	"item0_id":                   entity.KindInt,
	"item1_id":                   entity.KindInt,
	"item2_id":                   entity.KindInt,
	"item3_id":                   entity.KindInt,
	"item4_id":                   entity.KindInt,
	"item5_id":                   entity.KindInt,
	"backpack0_id":               entity.KindInt,
	"backpack1_id":               entity.KindInt,
	"backpack2_id":               entity.KindInt,
	"behavior":                   entity.KindInt,
	"hero_healing":               entity.KindInt,
	"roam_lane":                  entity.KindInt,
	"abilities":                  entity.KindJSON,
	"is_victory":                 entity.KindBool,
	"networth":                   entity.KindInt,
	"neutral0_id":                entity.KindInt,
	"additional_unit":            entity.KindJSON,
	"dota_plus_hero_xp":          entity.KindInt,
	"invisible_seconds":          entity.KindInt,
	"match_player_stats":         entity.KindJSON,
	"stats":                      entity.KindJSON,
	"playback_data":              entity.KindJSON,
	"is_dire":                    entity.KindBool,
	"role_basic":                 entity.KindInt,
	"position":                   entity.KindInt,
	"base_slot":                  entity.KindInt,
	"kda":                        entity.KindString,
	"map_location_home_fountain": entity.KindInt,
	"faction":                    entity.KindInt,
	"calculate_imp_lane":         entity.KindInt,
	"game_version_id":            entity.KindInt,
})

var PlayerFields = entity.NewMapping(PlayerTable,
	entity.F("steamAccountId", "steam_account_id"),
	entity.F("heroId", "hero_id"),
	entity.F("isRadiant", "is_radiant"),
	entity.F("numKills", "num_kills"),
	entity.F("numDeaths", "num_deaths"),
	entity.F("numAssists", "num_assists"),
	entity.F("leaverStatus", "leaver_status"),
	entity.F("numLastHits", "num_last_hits"),
	entity.F("numDenies", "num_denies"),
	entity.F("goldPerMinute", "gold_per_minute"),
	entity.F("experiencePerMinute", "experience_per_minute"),
	entity.F("level", "level"),
	entity.F("gold", "gold"),
	entity.F("goldSpent", "gold_spent"),
	entity.F("heroDamage", "hero_damage"),
	entity.F("towerDamage", "tower_damage"),
	entity.F("partyId", "party_id"),
	entity.F("isRandom", "is_random"),
	entity.F("lane", "lane"),
	entity.F("streakPrediction", "streak_prediction"),
	entity.F("intentionalFeeding", "intentional_feeding"),
	entity.F("role", "role"),
	entity.F("imp", "imp"),
	entity.F("award", "award"),
	entity.F("item0Id", "item0_id"),
	entity.F("item1Id", "item1_id"),
	entity.F("item2Id", "item2_id"),
	entity.F("item3Id", "item3_id"),
	entity.F("item4Id", "item4_id"),
	entity.F("item5Id", "item5_id"),
	entity.F("backpack0Id", "backpack0_id"),
	entity.F("backpack1Id", "backpack1_id"),
	entity.F("backpack2Id", "backpack2_id"),
	entity.F("behavior", "behavior"),
	entity.F("heroHealing", "hero_healing"),
	entity.F("roamLane", "roam_lane"),
	entity.F("abilities", "abilities"),
	entity.F("isVictory", "is_victory"),
	entity.F("networth", "networth"),
	entity.F("neutral0Id", "neutral0_id"),
	entity.F("additionalUnit", "additional_unit"),
	entity.F("dotaPlusHeroXp", "dota_plus_hero_xp"),
	entity.F("invisibleSeconds", "invisible_seconds"),
	entity.F("matchPlayerStats", "match_player_stats"),
	entity.F("stats", "stats"),
	entity.F("playbackData", "playback_data"),
	entity.F("isDire", "is_dire"),
	entity.F("roleBasic", "role_basic"),
	entity.F("position", "position"),
	entity.F("baseSlot", "base_slot"),
	entity.F("kda", "kda"),
	entity.F("mapLocationHomeFountain", "map_location_home_fountain"),
	entity.F("faction", "faction"),
	entity.F("calculateImpLane", "calculate_imp_lane"),
	entity.F("gameVersionId", "game_version_id"),
)

type Match struct {
	entity.Audit
	ID              int64     `json:"id"`
	SeriesID        *int64    `json:"series_id"`
	LeagueID        *int64    `json:"league_id"`
	RadiantTeamID   *int64    `json:"radiant_team_id"`
	DireTeamID      *int64    `json:"dire_team_id"`
	DidRadiantWin   bool      `json:"did_radiant_win"`
	DurationSeconds int64     `json:"duration_seconds"`
	StartDateTime   int64     `json:"start_date_time"`
	EndDateTime     int64     `json:"end_date_time,omitempty"`
	GameVersionID   int64     `json:"game_version_id,omitempty"`
	RadiantKills    any       `json:"radiant_kills,omitempty"`
	DireKills       any       `json:"dire_kills,omitempty"`
	PickBans        []PickBan `json:"pick_bans,omitempty"`
}

func MatchFromRow(row *entity.Row) Match {
	return Match{
		Audit:           row.Audit(),
		ID:              row.Int64Value("id"),
		SeriesID:        row.OptionalInt64("series_id"),
		LeagueID:        row.OptionalInt64("league_id"),
		RadiantTeamID:   row.OptionalInt64("radiant_team_id"),
		DireTeamID:      row.OptionalInt64("dire_team_id"),
		DidRadiantWin:   row.BoolValue("did_radiant_win"),
		DurationSeconds: row.Int64Value("duration_seconds"),
		StartDateTime:   row.Int64Value("start_date_time"),
		EndDateTime:     row.Int64Value("end_date_time"),
		GameVersionID:   row.Int64Value("game_version_id"),
		RadiantKills:    row.Get("radiant_kills"),
		DireKills:       row.Get("dire_kills"),
	}
}

// KillTotal sums a per-minute kill series stored as a JSON array.
func KillTotal(series any) int64 {
	list, ok := series.([]any)
	if !ok {
		return 0
	}
	var total int64
	for _, v := range list {
		if n, ok := entity.KindInt.Convert(v); ok && n != nil {
			total += n.(int64)
		}
	}
	return total
}

type PickBan struct {
	MatchID      int64 `json:"match_id"`
	Order        int64 `json:"order"`
	IsPick       bool  `json:"is_pick"`
	HeroID       int64 `json:"hero_id"`
	BannedHeroID int64 `json:"banned_hero_id,omitempty"`
	IsRadiant    bool  `json:"is_radiant"`
	PlayerIndex  int64 `json:"player_index,omitempty"`
	IsCaptain    bool  `json:"is_captain,omitempty"`
}

func PickBanFromRow(row *entity.Row) PickBan {
	return PickBan{
		MatchID:      row.Int64Value("match_id"),
		Order:        row.Int64Value("pick_order"),
		IsPick:       row.BoolValue("is_pick"),
		HeroID:       row.Int64Value("hero_id"),
		BannedHeroID: row.Int64Value("banned_hero_id"),
		IsRadiant:    row.BoolValue("is_radiant"),
		PlayerIndex:  row.Int64Value("player_index"),
		IsCaptain:    row.BoolValue("is_captain"),
	}
}

// Player is one box-score slot as shown on a match page.
type Player struct {
	MatchID        int64  `json:"match_id"`
	PlayerSlot     int64  `json:"player_slot"`
	SteamAccountID *int64 `json:"steam_account_id"`
	HeroID         int64  `json:"hero_id"`
	IsRadiant      bool   `json:"is_radiant"`
	IsVictory      bool   `json:"is_victory"`
	NumKills       int64  `json:"num_kills"`
	NumDeaths      int64  `json:"num_deaths"`
	NumAssists     int64  `json:"num_assists"`
	NumLastHits    int64  `json:"num_last_hits"`
	NumDenies      int64  `json:"num_denies"`
	GoldPerMinute  int64  `json:"gold_per_minute"`
	XPPerMinute    int64  `json:"experience_per_minute"`
	Networth       int64  `json:"networth"`
	HeroDamage     int64  `json:"hero_damage"`
	TowerDamage    int64  `json:"tower_damage"`
	Position       int64  `json:"position,omitempty"`
	Lane           int64  `json:"lane,omitempty"`
}

func PlayerFromRow(row *entity.Row) Player {
	return Player{
		MatchID:        row.Int64Value("match_id"),
		PlayerSlot:     row.Int64Value("player_slot"),
		SteamAccountID: row.OptionalInt64("steam_account_id"),
		HeroID:         row.Int64Value("hero_id"),
		IsRadiant:      row.BoolValue("is_radiant"),
		IsVictory:      row.BoolValue("is_victory"),
		NumKills:       row.Int64Value("num_kills"),
		NumDeaths:      row.Int64Value("num_deaths"),
		NumAssists:     row.Int64Value("num_assists"),
		NumLastHits:    row.Int64Value("num_last_hits"),
		NumDenies:      row.Int64Value("num_denies"),
		GoldPerMinute:  row.Int64Value("gold_per_minute"),
		XPPerMinute:    row.Int64Value("experience_per_minute"),
		Networth:       row.Int64Value("networth"),
		HeroDamage:     row.Int64Value("hero_damage"),
		TowerDamage:    row.Int64Value("tower_damage"),
		Position:       row.Int64Value("position"),
		Lane:           row.Int64Value("lane"),
	}
}

// Detail is a match with its draft and every player slot.
type Detail struct {
	Match
	Players []Player `json:"players"`
}

// PickScope selects whose drafts a pick/ban tally covers.
type PickScope string

const (
	PickScopeTeam   PickScope = "team"
	PickScopeLeague PickScope = "league"
)

func (s PickScope) Valid() bool {
	return s == PickScopeTeam || s == PickScopeLeague
}

// PickFilter narrows a pick/ban tally. A team scope only counts the draft
// actions taken on that team's side.
type PickFilter struct {
	Scope          PickScope
	ID             int64
	MinGameVersion int64
}

type HeroCount struct {
	HeroID int64   `json:"hero_id"`
	Count  int64   `json:"count"`
	Size   float64 `json:"size"`
}

type HeroPickBans struct {
	Picks []HeroCount `json:"picks"`
	Bans  []HeroCount `json:"bans"`
}

const (
	heroSizeMin  = 30.0
	heroSizeMax  = 100.0
	heroCountCap = 100.0
)

// HeroSize scales a count onto the 30..100 bubble size used by hero charts.
func HeroSize(count int64) float64 {
	return heroSizeMin + float64(count)*(heroSizeMax-heroSizeMin)/heroCountCap
}

// NewHeroCount builds a tally entry with its display size.
func NewHeroCount(heroID, count int64) HeroCount {
	return HeroCount{HeroID: heroID, Count: count, Size: HeroSize(count)}
}

// SortHeroCounts orders by count descending, then hero id.
func SortHeroCounts(items []HeroCount) {
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].Count != items[j].Count {
			return items[i].Count > items[j].Count
		}
		return items[i].HeroID < items[j].HeroID
	})
}
