package player

import (
	"github.com/riskibarqy/esports-stats/internal/domain/entity"
)

// Every player materializes as three rows sharing the steam account id:
// ProSteamAccount, SteamAccount (pro_steam_account_id) and Player (steam_account_id).

var ProSteamAccountTable = entity.NewTable("pro_steam_accounts", []string{"id"}, map[string]entity.Kind{
	"id":                  entity.KindInt,
	"name":                entity.KindString,
	"real_name":           entity.KindString,
	"fantasy_role":        entity.KindInt,
	"team_id":             entity.KindInt,
	"sponsor":             entity.KindString,
	"is_locked":           entity.KindBool,
	"is_pro":              entity.KindBool,
	"total_earnings":      entity.KindInt,
	"birthday":            entity.KindString,
	"romanized_real_name": entity.KindString,
	"roles":               entity.KindInt,
	"aliases":             entity.KindJSON,
	"statuses":            entity.KindInt,
	"twitter_link":        entity.KindString,
	"twitch_link":         entity.KindString,
	"instagram_link":      entity.KindString,
	"vk_link":             entity.KindString,
	"you_tube_link":       entity.KindString,
	"facebook_link":       entity.KindString,
	"weibo_link":          entity.KindString,
	"signature_heroes":    entity.KindString,
	"countries":           entity.KindJSON,
	"ti_wins":             entity.KindInt,
	"is_ti_winner":        entity.KindBool,
	"position":            entity.KindInt,
})

var ProSteamAccountFields = entity.NewMapping(ProSteamAccountTable,
	entity.F("name", "name"),
	entity.F("realName", "real_name"),
	entity.F("fantasyRole", "fantasy_role"),
	entity.F("teamId", "team_id"),
	entity.F("sponsor", "sponsor"),
	entity.F("isLocked", "is_locked"),
	entity.F("isPro", "is_pro"),
	entity.F("totalEarnings", "total_earnings"),
	entity.F("birthday", "birthday"),
	entity.F("romanizedRealName", "romanized_real_name"),
	entity.F("roles", "roles"),
	entity.F("statuses", "statuses"),
	entity.F("countries", "countries"),
	entity.F("aliases", "aliases"),
	entity.F("tiWins", "ti_wins"),
	entity.F("isTIWinner", "is_ti_winner", "istiwinner"),
	entity.F("position", "position"),
	entity.F("twitterLink", "twitter_link"),
	entity.F("twitchLink", "twitch_link"),
	entity.F("instagramLink", "instagram_link"),
	entity.F("vkLink", "vk_link"),
	entity.F("youTubeLink", "you_tube_link"),
	entity.F("facebookLink", "facebook_link"),
	entity.F("weiboLink", "weibo_link"),
	entity.F("signatureHeroes", "signature_heroes"),
)

var SteamAccountTable = entity.NewTable("steam_accounts", []string{"id"}, map[string]entity.Kind{
	"id":                             entity.KindInt,
	"pro_steam_account_id":           entity.KindInt,
	"last_active_time":               entity.KindString,
	"profile_uri":                    entity.KindString,
	"real_name":                      entity.KindString,
	"time_created":                   entity.KindInt,
	"country_code":                   entity.KindString,
	"state_code":                     entity.KindString,
	"city_id":                        entity.KindInt,
	"community_visible_state":        entity.KindInt,
	"name":                           entity.KindString,
	"last_log_off":                   entity.KindString,
	"avatar":                         entity.KindString,
	"primary_clan_id":                entity.KindInt,
	"solo_rank":                      entity.KindInt,
	"party_rank":                     entity.KindInt,
	"is_dota_plus_subscriber":        entity.KindBool,
	"dota_plus_original_start_date":  entity.KindInt,
	"is_anonymous":                   entity.KindBool,
	"is_stratz_public":               entity.KindBool,
	"season_rank":                    entity.KindInt,
	"season_leaderboard_rank":        entity.KindInt,
	"season_leaderboard_division_id": entity.KindInt,
	"smurf_flag":                     entity.KindInt,
	"smurf_check_date":               entity.KindInt,
	"last_match_date_time":           entity.KindInt,
	"last_match_region_id":           entity.KindInt,
	"dota_account_level":             entity.KindInt,
	"rank_shift":                     entity.KindInt,
	"bracket":                        entity.KindInt,
})

var SteamAccountFields = entity.NewMapping(SteamAccountTable,
	entity.F("lastActiveTime", "last_active_time"),
	entity.F("profileUri", "profile_uri"),
	entity.F("realName", "real_name"),
	entity.F("timeCreated", "time_created"),
	entity.F("countryCode", "country_code"),
	entity.F("stateCode", "state_code"),
	entity.F("cityId", "city_id"),
	entity.F("communityVisibleState", "community_visible_state"),
	entity.F("name", "name"),
	entity.F("lastLogOff", "last_log_off"),
	entity.F("avatar", "avatar"),
	entity.F("primaryClanId", "primary_clan_id"),
	entity.F("soloRank", "solo_rank"),
	entity.F("partyRank", "party_rank"),
	entity.F("isDotaPlusSubscriber", "is_dota_plus_subscriber"),
	entity.F("dotaPlusOriginalStartDate", "dota_plus_original_start_date"),
	entity.F("isAnonymous", "is_anonymous"),
	entity.F("isStratzPublic", "is_stratz_public"),
	entity.F("seasonRank", "season_rank"),
	entity.F("seasonLeaderboardRank", "season_leaderboard_rank"),
	entity.F("seasonLeaderboardDivisionId", "season_leaderboard_division_id"),
	entity.F("smurfFlag", "smurf_flag"),
	entity.F("smurfCheckDate", "smurf_check_date"),
	entity.F("lastMatchDateTime", "last_match_date_time"),
	entity.F("lastMatchRegionId", "last_match_region_id"),
	entity.F("dotaAccountLevel", "dota_account_level"),
	entity.F("rankShift", "rank_shift"),
	entity.F("bracket", "bracket"),
)

var PlayerTable = entity.NewTable("players", []string{"id"}, map[string]entity.Kind{
	"id":               entity.KindInt,
	"steam_account_id": entity.KindInt,
	"last_region_id":   entity.KindInt,
	"last_match_date":  entity.KindInt,
	"language_codes":   entity.KindJSON,
	"first_match_date": entity.KindInt,
	"match_count":      entity.KindInt,
	"win_count":        entity.KindInt,
	"behavior_score":   entity.KindInt,
	"team_member_uuid": entity.KindString,
})

var PlayerFields = entity.NewMapping(PlayerTable,
	entity.F("date", "last_match_date"),
	entity.F("lastRegionId", "last_region_id"),
	entity.F("firstMatchDate", "first_match_date"),
	entity.F("matchCount", "match_count"),
	entity.F("winCount", "win_count"),
	entity.F("behaviorScore", "behavior_score"),
	entity.F("languageCode", "language_codes"),
)

var BattlePassTable = entity.NewTable("player_battle_pass", []string{"player_id", "event_id"}, map[string]entity.Kind{
	"player_id":    entity.KindInt,
	"event_id":     entity.KindInt,
	"level":        entity.KindInt,
	"country_code": entity.KindString,
	"bracket":      entity.KindInt,
	"is_anonymous": entity.KindBool,
})

var BattlePassFields = entity.NewMapping(BattlePassTable,
	entity.F("level", "level"),
	entity.F("countryCode", "country_code"),
	entity.F("bracket", "bracket"),
	entity.F("isAnonymous", "is_anonymous"),
)

var BadgeTable = entity.NewTable("player_badges", []string{"player_id", "badge_id"}, map[string]entity.Kind{
	"player_id":         entity.KindInt,
	"badge_id":          entity.KindInt,
	"slot_id":           entity.KindInt,
	"created_date_time": entity.KindInt,
})

var BadgeFields = entity.NewMapping(BadgeTable,
	entity.F("slot", "slot_id", "slotId"),
	entity.F("createdDateTime", "created_date_time"),
)

var RankTable = entity.NewTable("player_ranks", []string{"player_id", "season_rank_id"}, map[string]entity.Kind{
	"player_id":       entity.KindInt,
	"season_rank_id":  entity.KindInt,
	"as_of_date_time": entity.KindString,
	"is_core":         entity.KindBool,
	"rank":            entity.KindInt,
})

var RankFields = entity.NewMapping(RankTable,
	entity.F("asOfDateTime", "as_of_date_time"),
	entity.F("rank", "rank"),
	entity.F("isCore", "is_core"),
)

var NameTable = entity.NewTable("player_names", []string{"player_id", "name"}, map[string]entity.Kind{
	"player_id":           entity.KindInt,
	"name":                entity.KindString,
	"last_seen_date_time": entity.KindInt,
})

var NameFields = entity.NewMapping(NameTable,
	entity.F("lastSeenDateTime", "last_seen_date_time", "lastseendatetime"),
)

type ProSteamAccount struct {
	ID                int64  `json:"id"`
	Name              string `json:"name,omitempty"`
	RealName          string `json:"real_name,omitempty"`
	RomanizedRealName string `json:"romanized_real_name,omitempty"`
	TeamID            int64  `json:"team_id,omitempty"`
	Position          int64  `json:"position,omitempty"`
	IsPro             bool   `json:"is_pro"`
	IsLocked          bool   `json:"is_locked"`
	TotalEarnings     int64  `json:"total_earnings,omitempty"`
	TIWins            int64  `json:"ti_wins,omitempty"`
	IsTIWinner        bool   `json:"is_ti_winner"`
	Countries         any    `json:"countries,omitempty"`
	Aliases           any    `json:"aliases,omitempty"`
	TwitterLink       string `json:"twitter_link,omitempty"`
	TwitchLink        string `json:"twitch_link,omitempty"`
}

func ProSteamAccountFromRow(row *entity.Row) ProSteamAccount {
	return ProSteamAccount{
		ID:                row.Int64Value("id"),
		Name:              row.StringValue("name"),
		RealName:          row.StringValue("real_name"),
		RomanizedRealName: row.StringValue("romanized_real_name"),
		TeamID:            row.Int64Value("team_id"),
		Position:          row.Int64Value("position"),
		IsPro:             row.BoolValue("is_pro"),
		IsLocked:          row.BoolValue("is_locked"),
		TotalEarnings:     row.Int64Value("total_earnings"),
		TIWins:            row.Int64Value("ti_wins"),
		IsTIWinner:        row.BoolValue("is_ti_winner"),
		Countries:         row.Get("countries"),
		Aliases:           row.Get("aliases"),
		TwitterLink:       row.StringValue("twitter_link"),
		TwitchLink:        row.StringValue("twitch_link"),
	}
}

type SteamAccount struct {
	ID                int64  `json:"id"`
	Name              string `json:"name,omitempty"`
	RealName          string `json:"real_name,omitempty"`
	Avatar            string `json:"avatar,omitempty"`
	ProfileURI        string `json:"profile_uri,omitempty"`
	CountryCode       string `json:"country_code,omitempty"`
	SeasonRank        int64  `json:"season_rank,omitempty"`
	SeasonLeaderboard int64  `json:"season_leaderboard_rank,omitempty"`
	LastMatchDateTime int64  `json:"last_match_date_time,omitempty"`
	IsAnonymous       bool   `json:"is_anonymous"`
}

func SteamAccountFromRow(row *entity.Row) SteamAccount {
	return SteamAccount{
		ID:                row.Int64Value("id"),
		Name:              row.StringValue("name"),
		RealName:          row.StringValue("real_name"),
		Avatar:            row.StringValue("avatar"),
		ProfileURI:        row.StringValue("profile_uri"),
		CountryCode:       row.StringValue("country_code"),
		SeasonRank:        row.Int64Value("season_rank"),
		SeasonLeaderboard: row.Int64Value("season_leaderboard_rank"),
		LastMatchDateTime: row.Int64Value("last_match_date_time"),
		IsAnonymous:       row.BoolValue("is_anonymous"),
	}
}

type Player struct {
	entity.Audit
	ID             int64  `json:"id"`
	SteamAccountID int64  `json:"steam_account_id"`
	LastRegionID   int64  `json:"last_region_id,omitempty"`
	LastMatchDate  int64  `json:"last_match_date,omitempty"`
	FirstMatchDate int64  `json:"first_match_date,omitempty"`
	MatchCount     int64  `json:"match_count"`
	WinCount       int64  `json:"win_count"`
	BehaviorScore  int64  `json:"behavior_score,omitempty"`
	LanguageCodes  any    `json:"language_codes,omitempty"`
	TeamMemberUUID string `json:"team_member_uuid,omitempty"`
}

func PlayerFromRow(row *entity.Row) Player {
	return Player{
		Audit:          row.Audit(),
		ID:             row.Int64Value("id"),
		SteamAccountID: row.Int64Value("steam_account_id"),
		LastRegionID:   row.Int64Value("last_region_id"),
		LastMatchDate:  row.Int64Value("last_match_date"),
		FirstMatchDate: row.Int64Value("first_match_date"),
		MatchCount:     row.Int64Value("match_count"),
		WinCount:       row.Int64Value("win_count"),
		BehaviorScore:  row.Int64Value("behavior_score"),
		LanguageCodes:  row.Get("language_codes"),
		TeamMemberUUID: row.StringValue("team_member_uuid"),
	}
}

// WinRate is wins over matches in percent, zero without matches.
func (p Player) WinRate() float64 {
	if p.MatchCount == 0 {
		return 0
	}
	return float64(p.WinCount) * 100 / float64(p.MatchCount)
}

type Badge struct {
	BadgeID int64 `json:"badge_id"`
	SlotID  int64 `json:"slot_id,omitempty"`
}

type Rank struct {
	SeasonRankID int64  `json:"season_rank_id"`
	Rank         int64  `json:"rank"`
	IsCore       bool   `json:"is_core"`
	AsOfDateTime string `json:"as_of_date_time,omitempty"`
}

type Name struct {
	Name             string `json:"name"`
	LastSeenDateTime int64  `json:"last_seen_date_time,omitempty"`
}

type BattlePass struct {
	EventID int64 `json:"event_id"`
	Level   int64 `json:"level"`
}

// Profile is the player detail read model.
type Profile struct {
	Player          Player           `json:"player"`
	SteamAccount    *SteamAccount    `json:"steam_account,omitempty"`
	ProSteamAccount *ProSteamAccount `json:"pro_steam_account,omitempty"`
	CurrentTeamID   *int64           `json:"current_team_id,omitempty"`
	Badges          []Badge          `json:"badges"`
	Ranks           []Rank           `json:"ranks"`
	Names           []Name           `json:"names"`
	BattlePasses    []BattlePass     `json:"battle_passes"`
}

func BadgeFromRow(row *entity.Row) Badge {
	return Badge{BadgeID: row.Int64Value("badge_id"), SlotID: row.Int64Value("slot_id")}
}

func RankFromRow(row *entity.Row) Rank {
	return Rank{
		SeasonRankID: row.Int64Value("season_rank_id"),
		Rank:         row.Int64Value("rank"),
		IsCore:       row.BoolValue("is_core"),
		AsOfDateTime: row.StringValue("as_of_date_time"),
	}
}

func NameFromRow(row *entity.Row) Name {
	return Name{Name: row.StringValue("name"), LastSeenDateTime: row.Int64Value("last_seen_date_time")}
}

func BattlePassFromRow(row *entity.Row) BattlePass {
	return BattlePass{EventID: row.Int64Value("event_id"), Level: row.Int64Value("level")}
}
