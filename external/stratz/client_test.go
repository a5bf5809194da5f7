package stratz

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/riskibarqy/esports-stats/internal/domain/entity"
	"github.com/riskibarqy/esports-stats/internal/platform/resilience"
	"github.com/riskibarqy/esports-stats/internal/usecase"
)

func newTestClient(t *testing.T, handler http.HandlerFunc, cfg ClientConfig) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	cfg.BaseURL = server.URL
	cfg.HTTPClient = server.Client()
	cfg.RetryBackoff = time.Millisecond
	if cfg.Token == "" {
		cfg.Token = "secret-token"
	}
	return NewClient(cfg)
}

func TestClient_FetchLeaguesSendsBearerAndPaging(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer secret-token" {
			t.Errorf("unexpected authorization header %q", got)
		}
		if r.URL.Path != "/league" || r.URL.Query().Get("take") != "250" || r.URL.Query().Get("orderBy") != "-id" {
			t.Errorf("unexpected request %s", r.URL.String())
		}
		_, _ = w.Write([]byte(`[{"id": 15728, "tier": 4}, 7, {"id": 15000}]`))
	}, ClientConfig{})

	leagues, err := client.FetchLeagues(context.Background())
	if err != nil {
		t.Fatalf("fetch leagues: %v", err)
	}
	if len(leagues) != 2 {
		t.Fatalf("expected non-object elements dropped, got %d", len(leagues))
	}
	if id, _ := leagues[0].Int64("id"); id != 15728 {
		t.Fatalf("unexpected first league id %d", id)
	}
}

func TestClient_RetriesTransientStatus(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`{"id": 36, "name": "Natus Vincere"}`))
	}, ClientConfig{MaxRetries: 2})

	team, err := client.FetchTeam(context.Background(), 36)
	if err != nil {
		t.Fatalf("fetch team: %v", err)
	}
	if name, _ := team.String("name"); name != "Natus Vincere" {
		t.Fatalf("unexpected team %v", team)
	}
	if calls.Load() != 3 {
		t.Fatalf("expected 3 attempts, got %d", calls.Load())
	}
}

func TestClient_DoesNotRetryClientErrors(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "not found", http.StatusNotFound)
	}, ClientConfig{MaxRetries: 3})

	if _, err := client.FetchPlayer(context.Background(), 1); err == nil {
		t.Fatalf("expected error for 404")
	}
	if calls.Load() != 1 {
		t.Fatalf("expected a single attempt, got %d", calls.Load())
	}
}

func TestClient_RejectsUnexpectedShape(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"message": "not a list"}`))
	}, ClientConfig{})

	_, err := client.FetchLeagueSeries(context.Background(), 15728)
	if !errors.Is(err, entity.ErrUnexpectedShape) {
		t.Fatalf("expected ErrUnexpectedShape, got %v", err)
	}
}

func TestClient_FetchProSteamAccountsKeysByID(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"111": {"steamAccountId": 111, "name": "Yatoro"}, "abc": {}, "222": 5}`))
	}, ClientConfig{})

	accounts, err := client.FetchProSteamAccounts(context.Background())
	if err != nil {
		t.Fatalf("fetch pro accounts: %v", err)
	}
	if len(accounts) != 1 {
		t.Fatalf("expected one usable account, got %d", len(accounts))
	}
	if name, _ := accounts[111].String("name"); name != "Yatoro" {
		t.Fatalf("unexpected account %v", accounts[111])
	}
}

func TestClient_CircuitOpensAfterTransientFailures(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}, ClientConfig{CircuitBreaker: resilience.CircuitBreakerConfig{
		Enabled:          true,
		FailureThreshold: 2,
		OpenTimeout:      time.Hour,
		HalfOpenMaxReq:   1,
	}})

	for i := 0; i < 2; i++ {
		if _, err := client.FetchTeam(context.Background(), 2); err == nil {
			t.Fatalf("expected failure on attempt %d", i)
		}
	}
	_, err := client.FetchTeam(context.Background(), 2)
	if !errors.Is(err, usecase.ErrDependencyUnavailable) {
		t.Fatalf("expected ErrDependencyUnavailable once open, got %v", err)
	}
	if calls.Load() != 2 {
		t.Fatalf("open breaker must not reach upstream, calls=%d", calls.Load())
	}
}

func TestClient_ValidatesIDs(t *testing.T) {
	t.Parallel()

	client := NewClient(ClientConfig{})
	if _, err := client.FetchTeam(context.Background(), 0); !errors.Is(err, usecase.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}
