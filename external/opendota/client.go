package opendota

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/riskibarqy/esports-stats/internal/domain/entity"
	"github.com/riskibarqy/esports-stats/internal/platform/logging"
	"github.com/riskibarqy/esports-stats/internal/usecase"
	"github.com/valyala/fasthttp"
)

const defaultBaseURL = "https://api.opendota.com/api"

// TeamRatingsSQL selects rated teams that played on a recent patch, best rating first.
const TeamRatingsSQL = `SELECT teams.*, team_rating.*,
STRING_AGG(distinct(team_match.match_id::character varying), ', ') as matches_ids
FROM teams
LEFT JOIN team_rating ON team_rating.team_id = teams.team_id
LEFT JOIN team_match ON team_match.team_id = teams.team_id
LEFT JOIN match_patch ON match_patch.match_id = team_match.match_id
WHERE team_rating.rating >= 1100 AND match_patch.patch >= '7.33'
GROUP BY teams.team_id, team_rating.team_id
ORDER BY team_rating.rating DESC
`

type ClientConfig struct {
	BaseURL string
	Timeout time.Duration
	Logger  *logging.Logger
}

type Client struct {
	baseURL string
	timeout time.Duration
	client  *fasthttp.Client
	logger  *logging.Logger
}

func NewClient(cfg ClientConfig) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	return &Client{
		baseURL: baseURL,
		timeout: timeout,
		client: &fasthttp.Client{
			MaxConnsPerHost:     16,
			ReadTimeout:         timeout,
			WriteTimeout:        timeout,
			MaxIdleConnDuration: time.Minute,
			MaxResponseBodySize: 16 << 20,
		},
		logger: logging.OrDefault(cfg.Logger).Named("opendota"),
	}
}

// FetchTeamRatings runs the explorer query and returns its rows.
func (c *Client) FetchTeamRatings(ctx context.Context) ([]entity.Payload, error) {
	fullURL := c.baseURL + "/explorer?sql=" + url.QueryEscape(TeamRatingsSQL)
	decoded, err := c.getJSON(ctx, fullURL)
	if err != nil {
		return nil, err
	}

	obj, ok := entity.AsPayload(decoded)
	if !ok {
		return nil, fmt.Errorf("%w: explorer returned %T, want object", entity.ErrUnexpectedShape, decoded)
	}
	rawRows, ok := obj["rows"].([]any)
	if !ok {
		return nil, fmt.Errorf("%w: explorer response has no rows list", entity.ErrUnexpectedShape)
	}
	rows, _ := entity.AsPayloads(rawRows)
	out := make([]entity.Payload, 0, len(rows))
	for _, row := range rows {
		if row != nil {
			out = append(out, row)
		}
	}
	return out, nil
}

func (c *Client) getJSON(ctx context.Context, fullURL string) (any, error) {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(fullURL)
	req.Header.SetMethod(fasthttp.MethodGet)
	req.Header.Set("Accept", "application/json")

	deadline := time.Now().Add(c.timeout)
	if ctxDeadline, ok := ctx.Deadline(); ok && ctxDeadline.Before(deadline) {
		deadline = ctxDeadline
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := c.client.DoDeadline(req, resp, deadline); err != nil {
		c.logger.WarnContext(ctx, "opendota request failed", "error", err)
		return nil, fmt.Errorf("%w: opendota request: %v", usecase.ErrDependencyUnavailable, err)
	}

	if status := resp.StatusCode(); status < 200 || status >= 300 {
		body := strings.TrimSpace(string(resp.Body()))
		if len(body) > 240 {
			body = body[:240] + "..."
		}
		return nil, fmt.Errorf("opendota status=%d body=%s", status, body)
	}

	decoded, err := entity.DecodeJSON(resp.Body())
	if err != nil {
		return nil, fmt.Errorf("decode opendota payload: %w", err)
	}
	return decoded, nil
}
