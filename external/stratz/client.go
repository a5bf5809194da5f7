package stratz

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/esports-stats/internal/domain/entity"
	"github.com/riskibarqy/esports-stats/internal/platform/logging"
	"github.com/riskibarqy/esports-stats/internal/platform/resilience"
	"github.com/riskibarqy/esports-stats/internal/usecase"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const (
	defaultBaseURL        = "https://api.stratz.com/api/v1"
	defaultLeaguePageSize = 250
	defaultSeriesPageSize = 500
	maxResponseBytes      = 6 << 20
)

var errStratzTransient = crerr.New("stratz transient failure")

type ClientConfig struct {
	HTTPClient     *http.Client
	BaseURL        string
	Token          string
	Timeout        time.Duration
	MaxRetries     int
	RetryBackoff   time.Duration
	LeaguePageSize int
	SeriesPageSize int
	Logger         *logging.Logger
	CircuitBreaker resilience.CircuitBreakerConfig
}

type Client struct {
	httpClient     *http.Client
	baseURL        string
	token          string
	maxRetries     int
	retryBackoff   time.Duration
	leaguePageSize int
	seriesPageSize int
	logger         *logging.Logger
	breaker        *resilience.CircuitBreaker
	flight         resilience.SingleFlight
}

func NewClient(cfg ClientConfig) *Client {
	logger := logging.OrDefault(cfg.Logger).Named("stratz")

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{
			Timeout:   cfg.Timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		}
	}
	if httpClient.Timeout <= 0 {
		httpClient.Timeout = 20 * time.Second
	}

	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	retryBackoff := cfg.RetryBackoff
	if retryBackoff <= 0 {
		retryBackoff = time.Second
	}

	breaker := resilience.NewCircuitBreaker(cfg.CircuitBreaker)
	breaker.OnStateChange(func(from, to resilience.CircuitState) {
		logger.Warn("stratz circuit breaker state changed", "from", from, "to", to)
	})

	return &Client{
		httpClient:     httpClient,
		baseURL:        baseURL,
		token:          strings.TrimSpace(cfg.Token),
		maxRetries:     max(cfg.MaxRetries, 0),
		retryBackoff:   retryBackoff,
		leaguePageSize: positiveOr(cfg.LeaguePageSize, defaultLeaguePageSize),
		seriesPageSize: positiveOr(cfg.SeriesPageSize, defaultSeriesPageSize),
		logger:         logger,
		breaker:        breaker,
	}
}

func (c *Client) FetchLeagues(ctx context.Context) ([]entity.Payload, error) {
	query := url.Values{}
	query.Set("take", strconv.Itoa(c.leaguePageSize))
	query.Set("orderBy", "-id")
	return c.getList(ctx, "/league", query)
}

func (c *Client) FetchLeagueSeries(ctx context.Context, leagueID int64) ([]entity.Payload, error) {
	if leagueID <= 0 {
		return nil, fmt.Errorf("%w: league id must be greater than zero", usecase.ErrInvalidInput)
	}
	query := url.Values{}
	query.Set("take", strconv.Itoa(c.seriesPageSize))
	query.Set("skip", "0")
	return c.getList(ctx, fmt.Sprintf("/league/%d/series", leagueID), query)
}

func (c *Client) FetchTeam(ctx context.Context, teamID int64) (entity.Payload, error) {
	if teamID <= 0 {
		return nil, fmt.Errorf("%w: team id must be greater than zero", usecase.ErrInvalidInput)
	}
	return c.getObject(ctx, fmt.Sprintf("/team/%d", teamID), nil)
}

func (c *Client) FetchTeamMatches(ctx context.Context, teamID int64) ([]entity.Payload, error) {
	if teamID <= 0 {
		return nil, fmt.Errorf("%w: team id must be greater than zero", usecase.ErrInvalidInput)
	}
	return c.getList(ctx, fmt.Sprintf("/team/%d/matches", teamID), nil)
}

func (c *Client) FetchPlayer(ctx context.Context, playerID int64) (entity.Payload, error) {
	if playerID <= 0 {
		return nil, fmt.Errorf("%w: player id must be greater than zero", usecase.ErrInvalidInput)
	}
	return c.getObject(ctx, fmt.Sprintf("/player/%d", playerID), nil)
}

func (c *Client) FetchProSteamAccounts(ctx context.Context) (map[int64]entity.Payload, error) {
	obj, err := c.getObject(ctx, "/player/proSteamAccount", nil)
	if err != nil {
		return nil, err
	}

	out := make(map[int64]entity.Payload, len(obj))
	for rawID, value := range obj {
		steamID, err := strconv.ParseInt(strings.TrimSpace(rawID), 10, 64)
		if err != nil || steamID <= 0 {
			c.logger.WarnContext(ctx, "skip pro steam account with non numeric key", "key", rawID)
			continue
		}
		item, ok := entity.AsPayload(value)
		if !ok {
			c.logger.WarnContext(ctx, "skip pro steam account with unexpected shape", "steam_account_id", steamID)
			continue
		}
		out[steamID] = item
	}
	return out, nil
}

func (c *Client) getObject(ctx context.Context, path string, query url.Values) (entity.Payload, error) {
	decoded, err := c.getJSON(ctx, path, query)
	if err != nil {
		return nil, err
	}
	obj, ok := entity.AsPayload(decoded)
	if !ok {
		return nil, fmt.Errorf("%w: %s returned %T, want object", entity.ErrUnexpectedShape, path, decoded)
	}
	if len(obj) == 0 {
		return nil, fmt.Errorf("%w: %s returned an empty object", entity.ErrUnexpectedShape, path)
	}
	return obj, nil
}

func (c *Client) getList(ctx context.Context, path string, query url.Values) ([]entity.Payload, error) {
	decoded, err := c.getJSON(ctx, path, query)
	if err != nil {
		return nil, err
	}
	list, ok := decoded.([]any)
	if !ok {
		return nil, fmt.Errorf("%w: %s returned %T, want list", entity.ErrUnexpectedShape, path, decoded)
	}
	items, _ := entity.AsPayloads(list)
	out := make([]entity.Payload, 0, len(items))
	for _, item := range items {
		if item != nil {
			out = append(out, item)
		}
	}
	return out, nil
}

// getJSON fetches path and decodes the body. Concurrent identical requests share one round trip.
func (c *Client) getJSON(ctx context.Context, path string, query url.Values) (any, error) {
	fullURL := c.baseURL + path
	if encoded := query.Encode(); encoded != "" {
		fullURL += "?" + encoded
	}

	out, err, _ := c.flight.Do(fullURL, func() (any, error) {
		var raw []byte
		execErr := c.breaker.Execute(func() error {
			var reqErr error
			raw, reqErr = c.executeRequest(ctx, fullURL)
			return reqErr
		}, isStratzCircuitFailure)
		if stderrors.Is(execErr, resilience.ErrCircuitOpen) {
			c.logger.WarnContext(ctx, "stratz circuit breaker rejected request", "state", c.breaker.State())
			return nil, fmt.Errorf("%w: stratz is temporarily unavailable", usecase.ErrDependencyUnavailable)
		}
		return raw, execErr
	})
	if err != nil {
		return nil, err
	}

	raw, ok := out.([]byte)
	if !ok {
		return nil, fmt.Errorf("unexpected response payload type %T", out)
	}
	decoded, err := entity.DecodeJSON(raw)
	if err != nil {
		return nil, fmt.Errorf("decode stratz payload %s: %w", path, err)
	}
	return decoded, nil
}

func (c *Client) executeRequest(ctx context.Context, fullURL string) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
		if err != nil {
			return nil, fmt.Errorf("build request: %w", err)
		}
		req.Header.Set("accept", "application/json")
		req.Header.Set("user-agent", "STRATZ_API")
		if c.token != "" {
			req.Header.Set("authorization", "Bearer "+c.token)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("%w: send request: %s", errStratzTransient, sanitizeSensitiveText(err.Error(), c.token))
		} else {
			raw, readErr := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
			_ = resp.Body.Close()
			switch {
			case readErr != nil:
				lastErr = fmt.Errorf("%w: read response body: %v", errStratzTransient, readErr)
			case resp.StatusCode >= 200 && resp.StatusCode < 300:
				return raw, nil
			case isRetryableStatus(resp.StatusCode):
				lastErr = fmt.Errorf("%w: provider status=%d body=%s", errStratzTransient, resp.StatusCode, abbreviateBody(raw))
			default:
				return nil, fmt.Errorf("provider status=%d body=%s", resp.StatusCode, abbreviateBody(raw))
			}
		}

		if attempt == c.maxRetries {
			break
		}
		timer := time.NewTimer(time.Duration(attempt+1) * c.retryBackoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	if lastErr == nil {
		lastErr = fmt.Errorf("provider request failed")
	}
	c.logger.WarnContext(ctx, "stratz request failed", "url", fullURL, "error", lastErr)
	return nil, lastErr
}

func sanitizeSensitiveText(value, token string) string {
	value = strings.TrimSpace(value)
	if token != "" {
		value = strings.ReplaceAll(value, token, "REDACTED")
	}
	return value
}

func isStratzCircuitFailure(err error) bool {
	return err != nil && stderrors.Is(err, errStratzTransient)
}

func isRetryableStatus(code int) bool {
	return code == http.StatusTooManyRequests || code >= http.StatusInternalServerError
}

func abbreviateBody(body []byte) string {
	text := strings.TrimSpace(string(body))
	if len(text) <= 240 {
		return text
	}
	return text[:240] + "..."
}

func positiveOr(value, fallback int) int {
	if value > 0 {
		return value
	}
	return fallback
}
