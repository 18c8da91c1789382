package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/jonboulle/clockwork"
	"github.com/riskibarqy/pickem-league/internal/platform/logging"
	"github.com/riskibarqy/pickem-league/internal/usecase"
)

const lockSweepJobName = "lock-sweep"

// LockSweepRunner is satisfied by usecase.JobOrchestratorService.
type LockSweepRunner interface {
	RunLockSweep(ctx context.Context) (usecase.LockSweepJobResult, error)
}

type Config struct {
	Interval time.Duration
	// RunTimeout bounds a single sweep.
	RunTimeout time.Duration
	Clock      clockwork.Clock
}

// Scheduler runs the lock sweep on a fixed interval inside the API process. Overlapping runs
// are skipped rather than queued.
type Scheduler struct {
	s      gocron.Scheduler
	runner LockSweepRunner
	cfg    Config
	logger *logging.Logger
}

func New(runner LockSweepRunner, cfg Config, logger *logging.Logger) (*Scheduler, error) {
	if runner == nil {
		return nil, fmt.Errorf("lock sweep runner is required")
	}
	if cfg.Interval <= 0 {
		cfg.Interval = time.Minute
	}
	if cfg.RunTimeout <= 0 {
		cfg.RunTimeout = cfg.Interval
	}
	if cfg.Clock == nil {
		cfg.Clock = clockwork.NewRealClock()
	}
	if logger == nil {
		logger = logging.Default()
	}

	s, err := gocron.NewScheduler(
		gocron.WithLocation(time.UTC),
		gocron.WithClock(cfg.Clock),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}

	return &Scheduler{
		s:      s,
		runner: runner,
		cfg:    cfg,
		logger: logger.Named("scheduler"),
	}, nil
}

func (s *Scheduler) Start() error {
	_, err := s.s.NewJob(
		gocron.DurationJob(s.cfg.Interval),
		gocron.NewTask(s.sweep),
		gocron.WithName(lockSweepJobName),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithStartAt(gocron.WithStartImmediately()),
	)
	if err != nil {
		return fmt.Errorf("failed to create lock sweep job: %w", err)
	}

	s.s.Start()
	s.logger.Info("scheduler started", "job", lockSweepJobName, "interval", s.cfg.Interval.String())
	return nil
}

func (s *Scheduler) Stop() error {
	return s.s.Shutdown()
}

func (s *Scheduler) sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.RunTimeout)
	defer cancel()

	result, err := s.runner.RunLockSweep(ctx)
	if err != nil {
		s.logger.Error("lock sweep failed", "error", err)
		return
	}
	if result.Sweep.LockedSlots == 0 && result.QueuedCount == 0 {
		s.logger.Debug("lock sweep found nothing to lock")
		return
	}
	s.logger.Info("lock sweep completed",
		"games_locked", result.Sweep.LockedGames,
		"slots_locked", result.Sweep.LockedSlots,
		"score_jobs_queued", result.QueuedCount,
	)
}
