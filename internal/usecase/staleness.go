package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/riskibarqy/esports-stats/internal/domain/league"
	"github.com/riskibarqy/esports-stats/internal/platform/logging"
)

const (
	defaultTimeZone         = "Europe/Moscow"
	defaultSeriesStaleAfter = 12 * time.Hour
)

type StalenessConfig struct {
	Location         *time.Location
	SeriesStaleAfter time.Duration
}

// StalenessService flips is_over flags with one bulk update per table.
type StalenessService struct {
	leagueRepo league.Repository
	seriesRepo league.SeriesRepository
	cfg        StalenessConfig
	logger     *logging.Logger
	now        func() time.Time
}

func NewStalenessService(
	leagueRepo league.Repository,
	seriesRepo league.SeriesRepository,
	cfg StalenessConfig,
	logger *logging.Logger,
) *StalenessService {
	if cfg.Location == nil {
		loc, err := time.LoadLocation(defaultTimeZone)
		if err != nil {
			loc = time.UTC
		}
		cfg.Location = loc
	}
	if cfg.SeriesStaleAfter <= 0 {
		cfg.SeriesStaleAfter = defaultSeriesStaleAfter
	}
	return &StalenessService{
		leagueRepo: leagueRepo,
		seriesRepo: seriesRepo,
		cfg:        cfg,
		logger:     logging.OrDefault(logger).Named("staleness"),
		now:        time.Now,
	}
}

// SetClock replaces the wall clock, for tests.
func (s *StalenessService) SetClock(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

// MarkLeaguesOver flags leagues whose end time precedes now.
func (s *StalenessService) MarkLeaguesOver(ctx context.Context) (int64, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.StalenessService.MarkLeaguesOver")
	defer span.End()

	now := s.now().In(s.cfg.Location)
	affected, err := s.leagueRepo.MarkOver(ctx, now.Unix())
	if err != nil {
		return 0, fmt.Errorf("mark leagues over: %w", err)
	}
	s.logger.InfoContext(ctx, "leagues marked over", "affected", affected, "now", now.Format(time.RFC3339))
	return affected, nil
}

// MarkSeriesOver flags series without a match since now minus SeriesStaleAfter.
func (s *StalenessService) MarkSeriesOver(ctx context.Context) (int64, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.StalenessService.MarkSeriesOver")
	defer span.End()

	cutoff := s.now().In(s.cfg.Location).Add(-s.cfg.SeriesStaleAfter)
	affected, err := s.seriesRepo.MarkStale(ctx, cutoff.Unix())
	if err != nil {
		return 0, fmt.Errorf("mark series over: %w", err)
	}
	s.logger.InfoContext(ctx, "series marked over", "affected", affected, "cutoff", cutoff.Format(time.RFC3339))
	return affected, nil
}
