package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/esports-stats/external/opendota"
	"github.com/riskibarqy/esports-stats/external/stratz"
	"github.com/riskibarqy/esports-stats/internal/config"
	"github.com/riskibarqy/esports-stats/internal/domain/entity"
	"github.com/riskibarqy/esports-stats/internal/domain/jobscheduler"
	"github.com/riskibarqy/esports-stats/internal/domain/league"
	"github.com/riskibarqy/esports-stats/internal/domain/match"
	"github.com/riskibarqy/esports-stats/internal/domain/player"
	"github.com/riskibarqy/esports-stats/internal/domain/team"
	"github.com/riskibarqy/esports-stats/internal/infrastructure/repository/cache"
	"github.com/riskibarqy/esports-stats/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/esports-stats/internal/infrastructure/repository/postgres"
	"github.com/riskibarqy/esports-stats/internal/infrastructure/scheduler"
	"github.com/riskibarqy/esports-stats/internal/interfaces/httpapi"
	basecache "github.com/riskibarqy/esports-stats/internal/platform/cache"
	"github.com/riskibarqy/esports-stats/internal/platform/id"
	"github.com/riskibarqy/esports-stats/internal/platform/logging"
	"github.com/riskibarqy/esports-stats/internal/platform/resilience"
	"github.com/riskibarqy/esports-stats/internal/usecase"
	"github.com/uptrace/opentelemetry-go-extra/otelsql"
	"github.com/uptrace/opentelemetry-go-extra/otelsqlx"
	"go.opentelemetry.io/otel/attribute"
)

const dispatcherDrainTimeout = 30 * time.Second

// App owns the HTTP server and everything that must be stopped with it.
type App struct {
	Server *http.Server

	cfg        config.Config
	db         *sqlx.DB
	dispatcher *usecase.Dispatcher
	scheduler  *scheduler.Scheduler
	logger     *logging.Logger
}

type repositories struct {
	reconciler entity.Reconciler
	leagues    league.Repository
	series     league.SeriesRepository
	matches    match.Repository
	teams      team.Repository
	players    player.Repository
	dispatches jobscheduler.Repository
}

func New(ctx context.Context, cfg config.Config, logger *logging.Logger) (*App, error) {
	logger = logging.OrDefault(logger)
	if cfg.HTTPAddr == "" {
		return nil, fmt.Errorf("http server addr cannot be empty")
	}

	ids := id.NewUUIDGenerator()
	app := &App{cfg: cfg, logger: logger}

	repos, err := app.openRepositories(ctx, ids)
	if err != nil {
		return nil, err
	}

	// Sync writes go straight to storage; only the read side is cached.
	reads := repos
	var invalidator usecase.CacheInvalidator
	if cfg.CacheEnabled {
		cacheStore := basecache.NewStore(cfg.CacheTTL)
		reads.leagues = cache.NewLeagueRepository(repos.leagues, cacheStore)
		reads.series = cache.NewSeriesRepository(repos.series, cacheStore)
		reads.matches = cache.NewMatchRepository(repos.matches, cacheStore)
		reads.teams = cache.NewTeamRepository(repos.teams, cacheStore)
		reads.players = cache.NewPlayerRepository(repos.players, cacheStore)
		invalidator = cache.NewInvalidator(cacheStore, logger)
	}

	stratzClient := stratz.NewClient(stratz.ClientConfig{
		BaseURL:        cfg.StratzBaseURL,
		Token:          cfg.StratzToken,
		Timeout:        cfg.StratzTimeout,
		MaxRetries:     cfg.StratzMaxRetries,
		LeaguePageSize: cfg.SyncLeaguePageSize,
		SeriesPageSize: cfg.SyncSeriesPageSize,
		Logger:         logger,
		CircuitBreaker: resilience.CircuitBreakerConfig{
			Enabled:          cfg.StratzCircuitEnabled,
			FailureThreshold: cfg.StratzCircuitFailureCount,
			OpenTimeout:      cfg.StratzCircuitOpenTimeout,
			HalfOpenMaxReq:   cfg.StratzCircuitHalfOpenMaxReq,
		},
	})
	openDotaClient := opendota.NewClient(opendota.ClientConfig{
		BaseURL: cfg.OpenDotaBaseURL,
		Timeout: cfg.OpenDotaTimeout,
		Logger:  logger,
	})

	savers := usecase.NewSaverService(repos.reconciler, usecase.SaverConfig{CascadeWorkers: cfg.SyncCascadeWorkers}, logger)
	staleness := usecase.NewStalenessService(repos.leagues, repos.series, usecase.StalenessConfig{
		Location:         cfg.SyncLocation,
		SeriesStaleAfter: cfg.SyncSeriesStaleAfter,
	}, logger)
	syncService := usecase.NewSyncService(savers, stratzClient, openDotaClient, repos.leagues, repos.teams, staleness, usecase.SyncConfig{
		MaxWorkers:          cfg.SyncMaxWorkers,
		ActiveLeagueMinTier: cfg.SyncActiveLeagueMinTier,
		TeamCurrentMembers:  cfg.SyncTeamCurrentMembers,
	}, logger)

	app.dispatcher, err = usecase.NewDispatcher(syncService, repos.dispatches, invalidator, ids, usecase.DispatcherConfig{
		Workers: cfg.SyncMaxWorkers,
		Timeout: cfg.SyncRefreshTimeout,
	}, logger)
	if err != nil {
		app.closeDB()
		return nil, err
	}

	queryService := usecase.NewQueryService(reads.leagues, reads.series, reads.matches, reads.teams, reads.players, usecase.QueryConfig{
		DefaultMinTier: cfg.SyncActiveLeagueMinTier,
		GameVersion:    cfg.StatsGameVersion,
	})

	handler := httpapi.NewHandler(queryService, app.dispatcher, logger)
	router := httpapi.NewRouter(handler, logger, cfg.SwaggerEnabled, cfg.CORSAllowedOrigins, cfg.AdminToken)

	app.Server = &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}
	if cfg.JobEnabled {
		app.scheduler = scheduler.New(app.dispatcher, scheduler.Config{Location: cfg.SyncLocation}, logger)
	}

	return app, nil
}

func (a *App) openRepositories(ctx context.Context, ids id.Generator) (repositories, error) {
	if a.cfg.Storage == config.StorageMemory {
		a.logger.Warn("using in-memory storage, data is lost on restart")
		store := memory.NewStore(ids)
		return repositories{
			reconciler: store,
			leagues:    memory.NewLeagueRepository(store),
			series:     memory.NewSeriesRepository(store),
			matches:    memory.NewMatchRepository(store),
			teams:      memory.NewTeamRepository(store),
			players:    memory.NewPlayerRepository(store),
			dispatches: memory.NewJobDispatchRepository(),
		}, nil
	}

	db, err := openDB(ctx, a.cfg)
	if err != nil {
		return repositories{}, err
	}
	a.db = db
	return repositories{
		reconciler: postgres.NewReconciler(db, ids),
		leagues:    postgres.NewLeagueRepository(db),
		series:     postgres.NewSeriesRepository(db),
		matches:    postgres.NewMatchRepository(db),
		teams:      postgres.NewTeamRepository(db),
		players:    postgres.NewPlayerRepository(db),
		dispatches: postgres.NewJobDispatchRepository(db),
	}, nil
}

func openDB(ctx context.Context, cfg config.Config) (*sqlx.DB, error) {
	opts := []otelsql.Option{
		otelsql.WithAttributes(attribute.String("db.system", "postgresql")),
		otelsql.WithQueryFormatter(formatDBQueryForTrace),
	}
	if name := dbNameFromURL(cfg.DBURL); name != "" {
		opts = append(opts, otelsql.WithDBName(name))
	}

	db, err := otelsqlx.Open("postgres", normalizeDBURL(cfg.DBURL, cfg.DBDisablePreparedBinary), opts...)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	db.SetMaxOpenConns(cfg.SyncMaxWorkers * 2)
	db.SetMaxIdleConns(cfg.SyncMaxWorkers)
	db.SetConnMaxIdleTime(5 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	otelsql.ReportDBStatsMetrics(db.DB, opts...)

	return db, nil
}

// Start launches periodic refresh jobs when they are enabled. The HTTP server
// is started by the caller.
func (a *App) Start(ctx context.Context) error {
	if a.scheduler == nil {
		a.logger.Info("periodic refresh jobs disabled", "reason", "JOB_ENABLED=false")
		return nil
	}
	return a.scheduler.Start(ctx,
		scheduler.Entry{Job: usecase.JobRefreshActiveLeagues, Interval: a.cfg.JobActiveLeaguesInterval},
		scheduler.Entry{Job: usecase.JobRefreshLeagues, Interval: a.cfg.JobLeaguesInterval},
	)
}

// Shutdown stops the HTTP server first, then background work, then storage.
func (a *App) Shutdown(ctx context.Context) error {
	var errs []error
	if a.Server != nil {
		if err := a.Server.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("shutdown http server: %w", err))
		}
	}
	if a.scheduler != nil {
		if err := a.scheduler.Stop(); err != nil {
			errs = append(errs, err)
		}
	}
	if a.dispatcher != nil {
		if err := a.dispatcher.Close(dispatcherDrainTimeout); err != nil {
			errs = append(errs, fmt.Errorf("drain dispatcher: %w", err))
		}
	}
	if err := a.closeDB(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func (a *App) closeDB() error {
	if a.db == nil {
		return nil
	}
	err := a.db.Close()
	a.db = nil
	if err != nil {
		return fmt.Errorf("close database: %w", err)
	}
	return nil
}
