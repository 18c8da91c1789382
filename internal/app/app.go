package app

import (
	"context"
	"fmt"
	"net/http"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/pickem-league/external/jobqueue"
	"github.com/riskibarqy/pickem-league/external/statsapi"
	"github.com/riskibarqy/pickem-league/internal/config"
	"github.com/riskibarqy/pickem-league/internal/domain/game"
	"github.com/riskibarqy/pickem-league/internal/domain/league"
	"github.com/riskibarqy/pickem-league/internal/domain/leaguestanding"
	"github.com/riskibarqy/pickem-league/internal/domain/pick"
	"github.com/riskibarqy/pickem-league/internal/domain/player"
	"github.com/riskibarqy/pickem-league/internal/domain/scoring"
	"github.com/riskibarqy/pickem-league/internal/domain/usage"
	"github.com/riskibarqy/pickem-league/internal/domain/week"
	cacherepo "github.com/riskibarqy/pickem-league/internal/infrastructure/repository/cache"
	"github.com/riskibarqy/pickem-league/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/pickem-league/internal/infrastructure/repository/postgres"
	"github.com/riskibarqy/pickem-league/internal/interfaces/httpapi"
	basecache "github.com/riskibarqy/pickem-league/internal/platform/cache"
	idgen "github.com/riskibarqy/pickem-league/internal/platform/id"
	"github.com/riskibarqy/pickem-league/internal/platform/logging"
	"github.com/riskibarqy/pickem-league/internal/platform/resilience"
	"github.com/riskibarqy/pickem-league/internal/scheduler"
	"github.com/riskibarqy/pickem-league/internal/usecase"
)

// Runtime is the assembled API process: the HTTP server plus the in-process lock sweep.
type Runtime struct {
	Server    *http.Server
	Scheduler *scheduler.Scheduler
	db        *sqlx.DB
}

type repositories struct {
	leagues   league.Repository
	players   player.Repository
	games     game.Repository
	picks     pick.Repository
	scores    scoring.Repository
	weeks     week.Repository
	usage     usage.Repository
	standings leaguestanding.Repository
}

func New(ctx context.Context, cfg config.Config, logger *logging.Logger) (*Runtime, error) {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.HTTPAddr == "" {
		return nil, fmt.Errorf("http server addr cannot be empty")
	}

	rt := &Runtime{}
	repos, err := rt.openRepositories(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	provider, err := newStatsProvider(cfg, logger)
	if err != nil {
		rt.closeDB(logger)
		return nil, err
	}
	queue, err := newJobQueue(cfg, logger)
	if err != nil {
		rt.closeDB(logger)
		return nil, err
	}

	locks := usecase.NewKeyedMutex()
	ledger := usecase.NewUsageLedger(repos.usage, logger.Named("usage"))
	standingSvc := usecase.NewLeagueStandingService(repos.leagues, repos.scores, repos.standings, logger.Named("standings"))
	pickSvc := usecase.NewPickService(
		repos.leagues,
		repos.players,
		repos.games,
		repos.picks,
		ledger,
		locks,
		usecase.PickServiceConfig{LockLead: cfg.LockLead, SeasonMaxWeek: cfg.SeasonMaxWeek},
		logger.Named("picks"),
	)
	sweepSvc := usecase.NewLockSweepService(
		repos.games,
		repos.picks,
		usecase.LockSweepConfig{LockLead: cfg.LockLead, Lookback: cfg.LockSweepLookback},
		logger.Named("lock_sweep"),
	)
	scoringSvc := usecase.NewScoringService(
		repos.leagues,
		repos.games,
		repos.picks,
		repos.scores,
		repos.weeks,
		ledger,
		standingSvc,
		provider,
		locks,
		usecase.ScoringServiceConfig{MaxWorkers: cfg.ScoringMaxWorkers, SeasonMaxWeek: cfg.SeasonMaxWeek},
		logger.Named("scoring"),
	)
	scheduleSvc := usecase.NewScheduleSyncService(repos.games, provider, logger.Named("schedule_sync"))
	backfillSvc := usecase.NewBackfillService(
		repos.leagues,
		repos.players,
		repos.games,
		repos.picks,
		repos.scores,
		repos.weeks,
		ledger,
		standingSvc,
		provider,
		scheduleSvc,
		idgen.NewUUIDGenerator(),
		locks,
		usecase.BackfillServiceConfig{
			MaxWorkers:      cfg.BackfillMaxWorkers,
			StatsMaxWorkers: cfg.ScoringMaxWorkers,
			SeasonMaxWeek:   cfg.SeasonMaxWeek,
		},
		logger.Named("backfill"),
	)
	jobSvc := usecase.NewJobOrchestratorService(
		repos.leagues,
		sweepSvc,
		scoringSvc,
		standingSvc,
		scheduleSvc,
		queue,
		usecase.JobOrchestratorConfig{
			ScoreDelayAfterKickoff: cfg.ScoreDelayAfterKickoff,
			RescoreInterval:        cfg.RescoreInterval,
		},
		logger.Named("jobs"),
	)

	if cfg.LockSweepEnabled {
		sched, err := scheduler.New(jobSvc, scheduler.Config{Interval: cfg.LockSweepInterval}, logger.Named("scheduler"))
		if err != nil {
			rt.closeDB(logger)
			return nil, fmt.Errorf("build lock sweep scheduler: %w", err)
		}
		rt.Scheduler = sched
	}

	handler := httpapi.NewHandler(pickSvc, scoringSvc, standingSvc, backfillSvc, jobSvc, logger.Named("http"))
	router := httpapi.NewRouter(handler, logger.Named("http"), cfg.SwaggerEnabled, cfg.CORSAllowedOrigins, cfg.InternalJobToken)

	rt.Server = &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	return rt, nil
}

// Start launches the scheduler. The HTTP server is started by the caller.
func (rt *Runtime) Start() error {
	if rt.Scheduler == nil {
		return nil
	}
	return rt.Scheduler.Start()
}

func (rt *Runtime) Shutdown(ctx context.Context, logger *logging.Logger) error {
	if logger == nil {
		logger = logging.Default()
	}
	if rt.Scheduler != nil {
		if err := rt.Scheduler.Stop(); err != nil {
			logger.Warn("stop scheduler", "error", err)
		}
	}
	err := rt.Server.Shutdown(ctx)
	rt.closeDB(logger)
	return err
}

func (rt *Runtime) openRepositories(ctx context.Context, cfg config.Config, logger *logging.Logger) (repositories, error) {
	var repos repositories
	switch cfg.StorageDriver {
	case config.StoragePostgres:
		db, err := openDatabase(ctx, cfg)
		if err != nil {
			return repositories{}, err
		}
		rt.db = db
		if err := postgres.BootstrapSeed(ctx, db); err != nil {
			rt.closeDB(logger)
			return repositories{}, fmt.Errorf("bootstrap seed: %w", err)
		}
		repos = repositories{
			leagues:   postgres.NewLeagueRepository(db),
			players:   postgres.NewPlayerRepository(db),
			games:     postgres.NewGameRepository(db),
			picks:     postgres.NewPickRepository(db),
			scores:    postgres.NewScoreRepository(db),
			weeks:     postgres.NewWeekRepository(db),
			usage:     postgres.NewUsageRepository(db),
			standings: postgres.NewLeagueStandingRepository(db),
		}
		logger.Info("storage ready", "driver", cfg.StorageDriver, "db_name", dbNameFromURL(cfg.DBURL))
	default:
		repos = repositories{
			leagues:   memory.NewLeagueRepository(memory.SeedLeagues()),
			players:   memory.NewPlayerRepository(memory.SeedPlayers()),
			games:     memory.NewGameRepository(memory.SeedGames()),
			picks:     memory.NewPickRepository(),
			scores:    memory.NewScoreRepository(),
			weeks:     memory.NewWeekRepository(),
			usage:     memory.NewUsageRepository(),
			standings: memory.NewLeagueStandingRepository(),
		}
		logger.Info("storage ready", "driver", config.StorageMemory)
	}

	if cfg.CacheEnabled {
		store := basecache.NewStore(cfg.CacheTTL)
		repos.leagues = cacherepo.NewLeagueRepository(repos.leagues, store)
		repos.players = cacherepo.NewPlayerRepository(repos.players, store)
	}

	return repos, nil
}

func (rt *Runtime) closeDB(logger *logging.Logger) {
	if rt.db == nil {
		return
	}
	if err := rt.db.Close(); err != nil {
		logger.Warn("close database", "error", err)
	}
	rt.db = nil
}

// newStatsProvider returns a nil interface when the provider is disabled so usecases
// report ErrDependencyUnavailable instead of calling out.
func newStatsProvider(cfg config.Config, logger *logging.Logger) (usecase.StatsProvider, error) {
	if !cfg.StatsProviderEnabled {
		logger.Info("stats provider disabled", "reason", "STATS_PROVIDER_ENABLED=false")
		return nil, nil
	}

	client, err := statsapi.NewClient(statsapi.ClientConfig{
		BaseURL: cfg.StatsBaseURL,
		Token:   cfg.StatsAPIKey,
		Timeout: cfg.StatsTimeout,
		Retry: resilience.RetryPolicy{
			MaxAttempts:     cfg.StatsMaxAttempts,
			InitialInterval: cfg.StatsInitialBackoff,
			AttemptTimeout:  cfg.StatsTimeout,
		},
		CircuitBreaker: resilience.CircuitBreakerConfig{
			Enabled:          cfg.StatsCircuitEnabled,
			FailureThreshold: cfg.StatsCircuitFailureCount,
			OpenTimeout:      cfg.StatsCircuitOpenTimeout,
			HalfOpenMaxReq:   cfg.StatsCircuitHalfOpenMaxReq,
		},
		Logger: logger.Named("statsapi"),
	})
	if err != nil {
		return nil, fmt.Errorf("build stats provider: %w", err)
	}
	return client, nil
}

func newJobQueue(cfg config.Config, logger *logging.Logger) (usecase.JobQueue, error) {
	if !cfg.QStashEnabled {
		return usecase.NewNoopJobQueue(logger.Named("jobqueue")), nil
	}

	publisher, err := jobqueue.NewQStashPublisher(jobqueue.QStashPublisherConfig{
		BaseURL:          cfg.QStashBaseURL,
		Token:            cfg.QStashToken,
		TargetBaseURL:    cfg.QStashTargetBaseURL,
		Retries:          cfg.QStashRetries,
		InternalJobToken: cfg.InternalJobToken,
		CircuitBreaker: resilience.CircuitBreakerConfig{
			Enabled:          cfg.QStashCircuitEnabled,
			FailureThreshold: cfg.QStashCircuitFailureCount,
			OpenTimeout:      cfg.QStashCircuitOpenTimeout,
			HalfOpenMaxReq:   cfg.QStashCircuitHalfOpenMaxReq,
		},
	}, logger.Named("qstash"))
	if err != nil {
		return nil, fmt.Errorf("build qstash publisher: %w", err)
	}
	return publisher, nil
}
