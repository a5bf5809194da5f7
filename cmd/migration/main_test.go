package main

import (
	"errors"
	"io"
	"io/fs"
	"path/filepath"
	"strings"
	"testing"

	"github.com/golang-migrate/migrate/v4/source"
	"github.com/golang-migrate/migrate/v4/source/file"
)

func openMigrations(t *testing.T) source.Driver {
	t.Helper()
	dir, err := filepath.Abs("../../db/migrations")
	if err != nil {
		t.Fatalf("resolve migrations dir: %v", err)
	}
	src, err := (&file.File{}).Open("file://" + filepath.ToSlash(dir))
	if err != nil {
		t.Fatalf("open migrations: %v", err)
	}
	t.Cleanup(func() {
		_ = src.Close()
	})
	return src
}

func readAll(t *testing.T, r io.ReadCloser) string {
	t.Helper()
	defer r.Close()
	raw, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("read migration: %v", err)
	}
	return string(raw)
}

// allUp concatenates every up migration in version order.
func allUp(t *testing.T, src source.Driver) string {
	t.Helper()
	version, err := src.First()
	if err != nil {
		t.Fatalf("first migration: %v", err)
	}

	var sb strings.Builder
	for {
		up, _, err := src.ReadUp(version)
		if err != nil {
			t.Fatalf("version %d has no up migration: %v", version, err)
		}
		sb.WriteString(readAll(t, up))
		down, _, err := src.ReadDown(version)
		if err != nil {
			t.Fatalf("version %d has no down migration: %v", version, err)
		}
		_ = down.Close()

		next, err := src.Next(version)
		if errors.Is(err, fs.ErrNotExist) {
			return sb.String()
		}
		if err != nil {
			t.Fatalf("next after %d: %v", version, err)
		}
		version = next
	}
}

func TestMigrationsDeclareEntityForeignKeys(t *testing.T) {
	schema := allUp(t, openMigrations(t))

	references := []string{
		"FOREIGN KEY (league_id) REFERENCES leagues (id)",
		"FOREIGN KEY (team_one_id) REFERENCES teams (id)",
		"FOREIGN KEY (team_two_id) REFERENCES teams (id)",
		"FOREIGN KEY (series_id) REFERENCES series (id)",
		"FOREIGN KEY (radiant_team_id) REFERENCES teams (id)",
		"FOREIGN KEY (dire_team_id) REFERENCES teams (id)",
		"fk_match_picks_ban_match_id FOREIGN KEY (match_id) REFERENCES matches (id)",
		"fk_match_players_match_id FOREIGN KEY (match_id) REFERENCES matches (id)",
		"fk_match_players_steam_account_id FOREIGN KEY (steam_account_id) REFERENCES steam_accounts (id)",
		"fk_team_members_team_id FOREIGN KEY (team_id) REFERENCES teams (id)",
		"fk_team_members_steam_account_id FOREIGN KEY (steam_account_id) REFERENCES steam_accounts (id)",
		"FOREIGN KEY (pro_steam_account_id) REFERENCES pro_steam_accounts (id)",
		"fk_players_steam_account_id FOREIGN KEY (steam_account_id) REFERENCES steam_accounts (id)",
		"FOREIGN KEY (team_member_uuid) REFERENCES team_members (uuid)",
		"fk_player_battle_pass_player_id FOREIGN KEY (player_id) REFERENCES players (id)",
		"fk_player_badges_player_id FOREIGN KEY (player_id) REFERENCES players (id)",
		"fk_player_ranks_player_id FOREIGN KEY (player_id) REFERENCES players (id)",
		"fk_player_names_player_id FOREIGN KEY (player_id) REFERENCES players (id)",
	}
	for _, ref := range references {
		if !strings.Contains(schema, ref) {
			t.Errorf("missing constraint %q", ref)
		}
	}
}

func TestParseSteps(t *testing.T) {
	if steps, err := parseSteps(nil); err != nil || steps != 1 {
		t.Fatalf("default steps: got %d err=%v", steps, err)
	}
	if steps, err := parseSteps([]string{" 3 "}); err != nil || steps != 3 {
		t.Fatalf("explicit steps: got %d err=%v", steps, err)
	}
	if _, err := parseSteps([]string{"0"}); err == nil {
		t.Fatalf("expected error for zero steps")
	}
}
