package postgres

import (
	"errors"
	"fmt"
	"testing"
	"time"

	crerr "github.com/cockroachdb/errors"
	"github.com/lib/pq"
	"github.com/riskibarqy/esports-stats/internal/domain/entity"
	"github.com/riskibarqy/esports-stats/internal/domain/league"
	"github.com/riskibarqy/esports-stats/internal/domain/match"
	qb "github.com/riskibarqy/esports-stats/internal/platform/querybuilder"
)

func TestIsUniqueViolation(t *testing.T) {
	t.Run("matches wrapped 23505", func(t *testing.T) {
		err := fmt.Errorf("insert teams: %w", &pq.Error{Code: "23505"})
		if !isUniqueViolation(err) {
			t.Fatalf("expected true for unique violation")
		}
	})

	t.Run("ignores other codes", func(t *testing.T) {
		if isUniqueViolation(&pq.Error{Code: "23503"}) {
			t.Fatalf("expected false for foreign key violation")
		}
		if isUniqueViolation(errors.New("boom")) {
			t.Fatalf("expected false for plain error")
		}
	})
}

func TestUniqueViolationMapsToEntitySentinel(t *testing.T) {
	err := crerr.Wrapf(entity.ErrUniqueViolation, "insert %s: %v", "teams", &pq.Error{Code: "23505"})
	if !errors.Is(err, entity.ErrUniqueViolation) {
		t.Fatalf("expected wrapped sentinel, got %v", err)
	}
}

func TestRowFromMap(t *testing.T) {
	created := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)
	deleted := created.Add(time.Hour)

	row, err := rowFromMap(match.MatchTable, map[string]any{
		"uuid":            []byte("6f1c0c1e-3d44-4b8e-9a57-8c9f1f3e2d10"),
		"created_at":      created,
		"updated_at":      created,
		"deleted_at":      deleted,
		"id":              int64(7_000_000_001),
		"did_radiant_win": true,
		"radiant_kills":   []byte(`[1,2,3]`),
		"not_a_column":    "ignored",
	})
	if err != nil {
		t.Fatalf("row from map: %v", err)
	}
	if row.UUID != "6f1c0c1e-3d44-4b8e-9a57-8c9f1f3e2d10" {
		t.Fatalf("unexpected uuid %q", row.UUID)
	}
	if !row.IsDeleted() || !row.DeletedAt.Equal(deleted) {
		t.Fatalf("expected deleted_at to be carried, got %v", row.DeletedAt)
	}
	if row.Int64Value("id") != 7_000_000_001 || !row.BoolValue("did_radiant_win") {
		t.Fatalf("unexpected values %v", row.Values)
	}
	if total := match.KillTotal(row.Get("radiant_kills")); total != 6 {
		t.Fatalf("expected decoded json kill series, total=%d", total)
	}
	if _, ok := row.Values["not_a_column"]; ok {
		t.Fatalf("undeclared column leaked into values")
	}
}

func TestDecodeColumnNumericBytes(t *testing.T) {
	got, err := decodeColumn(entity.KindInt, []byte("42"))
	if err != nil || got != int64(42) {
		t.Fatalf("decode int bytes: got=%v err=%v", got, err)
	}
	got, err = decodeColumn(entity.KindFloat, []byte("0.5"))
	if err != nil || got != 0.5 {
		t.Fatalf("decode float bytes: got=%v err=%v", got, err)
	}
	got, err = decodeColumn(entity.KindBool, nil)
	if err != nil || got != nil {
		t.Fatalf("decode null: got=%v err=%v", got, err)
	}
}

func TestEncodeValuesMarshalsJSONColumns(t *testing.T) {
	encoded, err := encodeValues(match.MatchTable, entity.Values{
		"radiant_kills": []any{int64(1), int64(0)},
		"dire_kills":    nil,
		"id":            int64(1),
	})
	if err != nil {
		t.Fatalf("encode values: %v", err)
	}
	if encoded["radiant_kills"] != "[1,0]" {
		t.Fatalf("expected json text, got %#v", encoded["radiant_kills"])
	}
	if encoded["dire_kills"] != nil || encoded["id"] != int64(1) {
		t.Fatalf("unexpected passthrough values %#v", encoded)
	}
}

func TestKeyConditionsFollowTableKeyOrder(t *testing.T) {
	query, args, err := qb.Select("*").From(match.PickBanTable.Name()).
		Where(keyConditions(match.PickBanTable, entity.Values{"pick_order": int64(3), "match_id": int64(9)})...).
		ToSQL()
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if query != "SELECT * FROM match_picks_ban WHERE match_id = $1 AND pick_order = $2" {
		t.Fatalf("unexpected query %q", query)
	}
	if len(args) != 2 || args[0] != int64(9) || args[1] != int64(3) {
		t.Fatalf("unexpected args %v", args)
	}
}

func TestLiveFilter(t *testing.T) {
	if got := liveFilter("deleted_at", entity.ReadOptions{IncludeDeleted: true}); len(got) != 0 {
		t.Fatalf("include-deleted read must not filter, got %d conditions", len(got))
	}
	query, _, err := qb.Select("id").From(league.LeagueTable.Name()).Where(liveFilter("deleted_at", entity.ReadOptions{})...).ToSQL()
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if query != "SELECT id FROM leagues WHERE deleted_at IS NULL" {
		t.Fatalf("unexpected query %q", query)
	}
}
