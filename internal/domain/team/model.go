package team

import (
	"github.com/riskibarqy/esports-stats/internal/domain/entity"
)

// ProRatingThreshold is the OpenDota rating from which a team counts as professional.
const ProRatingThreshold = 1200

var TeamTable = entity.NewTable("teams", []string{"id"}, map[string]entity.Kind{
	"id":                     entity.KindInt,
	"name":                   entity.KindString,
	"tag":                    entity.KindString,
	"date_created":           entity.KindString,
	"is_pro":                 entity.KindBool,
	"is_locked":              entity.KindBool,
	"country_code":           entity.KindString,
	"url":                    entity.KindString,
	"logo":                   entity.KindString,
	"base_logo":              entity.KindString,
	"banner_logo":            entity.KindString,
	"sponsor_logo":           entity.KindString,
	"win_count":              entity.KindInt,
	"loss_count":             entity.KindInt,
	"rank":                   entity.KindInt,
	"last_match_date_time":   entity.KindInt,
	"coach_steam_account_id": entity.KindInt,
	"country_name":           entity.KindString,
})

// TeamFields maps the STRATZ team detail object.
var TeamFields = entity.NewMapping(TeamTable,
	entity.F("name", "name"),
	entity.F("tag", "tag"),
	entity.F("dateCreated", "date_created"),
	entity.F("isProfessional", "is_pro"),
	entity.F("isLocked", "is_locked"),
	entity.F("countryCode", "country_code"),
	entity.F("url", "url"),
	entity.F("logo", "logo"),
	entity.F("baseLogo", "base_logo"),
	entity.F("bannerLogo", "banner_logo"),
	entity.F("sponsorLogo", "sponsor_logo"),
	entity.F("winCount", "win_count"),
	entity.F("lossCount", "loss_count"),
	entity.F("lastMatchDateTime", "last_match_date_time"),
	entity.F("coachSteamAccountId", "coach_steam_account_id"),
	entity.F("countryName", "country_name"),
)

// RatingFields maps one OpenDota explorer row. is_pro is derived from rating by the saver.
var RatingFields = entity.NewMapping(TeamTable,
	entity.F("name", "name"),
	entity.F("tag", "tag"),
	entity.F("rating", "rank"),
	entity.F("go_url", "logo", "logo_url"),
	entity.F("bannerLogo", "banner_logo"),
	entity.F("wins", "win_count"),
	entity.F("losses", "loss_count"),
	entity.F("last_match_time", "last_match_date_time"),
)

// MemberTable links a steam account to a team it played for.
var MemberTable = entity.NewTable("team_members", []string{"team_id", "steam_account_id"}, map[string]entity.Kind{
	"team_id":               entity.KindInt,
	"steam_account_id":      entity.KindInt,
	"first_match_id":        entity.KindInt,
	"first_match_date_time": entity.KindString,
	"last_match_id":         entity.KindInt,
	"last_match_date_time":  entity.KindString,
})

var MemberFields = entity.NewMapping(MemberTable,
	entity.F("firstMatchId", "first_match_id"),
	entity.F("firstMatchDateTime", "first_match_date_time"),
	entity.F("lastMatchId", "last_match_id"),
	entity.F("lastMatchDateTime", "last_match_date_time"),
)

type Team struct {
	entity.Audit
	ID                int64  `json:"id"`
	Name              string `json:"name"`
	Tag               string `json:"tag,omitempty"`
	DateCreated       string `json:"date_created,omitempty"`
	IsPro             bool   `json:"is_pro"`
	IsLocked          bool   `json:"is_locked"`
	CountryCode       string `json:"country_code,omitempty"`
	CountryName       string `json:"country_name,omitempty"`
	URL               string `json:"url,omitempty"`
	Logo              string `json:"logo,omitempty"`
	BannerLogo        string `json:"banner_logo,omitempty"`
	WinCount          int64  `json:"win_count"`
	LossCount         int64  `json:"loss_count"`
	Rank              *int64 `json:"rank"`
	LastMatchDateTime int64  `json:"last_match_date_time,omitempty"`
}

func TeamFromRow(row *entity.Row) Team {
	return Team{
		Audit:             row.Audit(),
		ID:                row.Int64Value("id"),
		Name:              row.StringValue("name"),
		Tag:               row.StringValue("tag"),
		DateCreated:       row.StringValue("date_created"),
		IsPro:             row.BoolValue("is_pro"),
		IsLocked:          row.BoolValue("is_locked"),
		CountryCode:       row.StringValue("country_code"),
		CountryName:       row.StringValue("country_name"),
		URL:               row.StringValue("url"),
		Logo:              row.StringValue("logo"),
		BannerLogo:        row.StringValue("banner_logo"),
		WinCount:          row.Int64Value("win_count"),
		LossCount:         row.Int64Value("loss_count"),
		Rank:              row.OptionalInt64("rank"),
		LastMatchDateTime: row.Int64Value("last_match_date_time"),
	}
}

// DisplayName falls back to the numeric id for placeholder teams.
func (t Team) DisplayName() string {
	if t.Name != "" {
		return t.Name
	}
	return "Team " + entity.FormatID(t.ID)
}

type Member struct {
	entity.Audit
	TeamID             int64  `json:"team_id"`
	SteamAccountID     int64  `json:"steam_account_id"`
	Name               string `json:"name,omitempty"`
	FirstMatchID       int64  `json:"first_match_id,omitempty"`
	FirstMatchDateTime string `json:"first_match_date_time,omitempty"`
	LastMatchID        int64  `json:"last_match_id,omitempty"`
	LastMatchDateTime  string `json:"last_match_date_time,omitempty"`
	IsCurrent          bool   `json:"is_current"`
}

func MemberFromRow(row *entity.Row) Member {
	return Member{
		Audit:              row.Audit(),
		TeamID:             row.Int64Value("team_id"),
		SteamAccountID:     row.Int64Value("steam_account_id"),
		FirstMatchID:       row.Int64Value("first_match_id"),
		FirstMatchDateTime: row.StringValue("first_match_date_time"),
		LastMatchID:        row.Int64Value("last_match_id"),
		LastMatchDateTime:  row.StringValue("last_match_date_time"),
	}
}
