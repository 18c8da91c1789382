package usecase

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/riskibarqy/pickem-league/internal/domain/league"
	"github.com/riskibarqy/pickem-league/internal/platform/logging"
)

const (
	JobPathLockSweep          = "/v1/internal/jobs/lock-sweep"
	JobPathScoreWeek          = "/v1/internal/jobs/score-week"
	JobPathRecomputeStandings = "/v1/internal/jobs/recompute-standings"
	JobPathSyncSchedule       = "/v1/internal/jobs/sync-schedule"
)

type JobQueue interface {
	Enqueue(ctx context.Context, path string, payload any, delay time.Duration, deduplicationID string) error
}

// loggingJobQueue stands in for QStash when it is disabled. Jobs are logged and dropped.
type loggingJobQueue struct {
	logger *logging.Logger
}

func (q loggingJobQueue) Enqueue(ctx context.Context, path string, _ any, delay time.Duration, deduplicationID string) error {
	q.logger.InfoContext(ctx, "job queue disabled, dropping job",
		"path", path,
		"delay", delay.String(),
		"dedup_id", deduplicationID,
	)
	return nil
}

func NewNoopJobQueue(logger *logging.Logger) JobQueue {
	if logger == nil {
		logger = logging.Default()
	}
	return loggingJobQueue{logger: logger}
}

type JobOrchestratorConfig struct {
	// ScoreDelayAfterKickoff is added to a week's last locked kickoff before scoring.
	ScoreDelayAfterKickoff time.Duration
	// RescoreInterval spaces follow-up score runs while a week is not final.
	RescoreInterval time.Duration
}

type ScoreWeekJobPayload struct {
	LeagueID string `json:"league_id"`
	Week     int    `json:"week"`
}

type LockSweepJobResult struct {
	Sweep            LockSweepResult `json:"sweep"`
	QueuedCount      int             `json:"queued_count"`
	QueuedOperations []string        `json:"queued_operations"`
}

type ScoreWeekJobResult struct {
	Score         ScoreWeekResult `json:"score"`
	RescoreQueued bool            `json:"rescore_queued"`
	Skipped       bool            `json:"skipped,omitempty"`
}

type JobOrchestratorService struct {
	leagueRepo league.Repository
	sweeper    *LockSweepService
	scorer     *ScoringService
	standings  *LeagueStandingService
	schedule   *ScheduleSyncService
	queue      JobQueue
	cfg        JobOrchestratorConfig
	logger     *logging.Logger
	now        func() time.Time
}

var dedupUnsafeCharRegex = regexp.MustCompile(`[^a-zA-Z0-9_-]`)

func NewJobOrchestratorService(
	leagueRepo league.Repository,
	sweeper *LockSweepService,
	scorer *ScoringService,
	standings *LeagueStandingService,
	schedule *ScheduleSyncService,
	queue JobQueue,
	cfg JobOrchestratorConfig,
	logger *logging.Logger,
) *JobOrchestratorService {
	if logger == nil {
		logger = logging.Default()
	}
	if queue == nil {
		queue = NewNoopJobQueue(logger)
	}
	if cfg.ScoreDelayAfterKickoff <= 0 {
		cfg.ScoreDelayAfterKickoff = 4 * time.Hour
	}
	if cfg.RescoreInterval <= 0 {
		cfg.RescoreInterval = 30 * time.Minute
	}

	return &JobOrchestratorService{
		leagueRepo: leagueRepo,
		sweeper:    sweeper,
		scorer:     scorer,
		standings:  standings,
		schedule:   schedule,
		queue:      queue,
		cfg:        cfg,
		logger:     logger,
		now:        time.Now,
	}
}

// RunLockSweep locks due slots and queues one delayed score run per affected league week.
func (s *JobOrchestratorService) RunLockSweep(ctx context.Context) (LockSweepJobResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.JobOrchestratorService.RunLockSweep")
	defer span.End()

	sweep, err := s.sweeper.SweepLocks(ctx)
	if err != nil {
		return LockSweepJobResult{}, err
	}

	now := s.now().UTC()
	result := LockSweepJobResult{
		Sweep:            sweep,
		QueuedOperations: make([]string, 0, len(sweep.Weeks)),
	}
	for _, item := range sweep.Weeks {
		runAt := item.LastKickoff.Add(s.cfg.ScoreDelayAfterKickoff)
		delay := runAt.Sub(now)
		if delay < 0 {
			delay = 0
		}
		if err := s.enqueueScoreWeek(ctx, item.LeagueID, item.Week, delay, runAt); err != nil {
			return LockSweepJobResult{}, err
		}
		result.QueuedCount++
		result.QueuedOperations = append(result.QueuedOperations, "score-week:"+item.LeagueID+":"+strconv.Itoa(item.Week))
	}
	return result, nil
}

// RunScoreWeek scores a week and, while it is not final yet, queues another pass. A week
// taken over by backfill is reported as skipped so the queued delivery is acknowledged.
func (s *JobOrchestratorService) RunScoreWeek(ctx context.Context, leagueID string, weekNo int) (ScoreWeekJobResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.JobOrchestratorService.RunScoreWeek")
	defer span.End()

	scored, err := s.scorer.ScoreWeek(ctx, leagueID, weekNo)
	if errors.Is(err, ErrWeekBackfilled) {
		s.logger.InfoContext(ctx, "score job skipped, week was backfilled",
			"league_id", leagueID,
			"week", weekNo,
		)
		return ScoreWeekJobResult{
			Score:   ScoreWeekResult{LeagueID: strings.TrimSpace(leagueID), Week: weekNo, Entries: []ScoreEntryResult{}},
			Skipped: true,
		}, nil
	}
	if err != nil {
		return ScoreWeekJobResult{}, err
	}

	result := ScoreWeekJobResult{Score: scored}
	if scored.Finalized || scored.Participants == 0 {
		return result, nil
	}

	runAt := s.now().UTC().Add(s.cfg.RescoreInterval)
	if err := s.enqueueScoreWeek(ctx, scored.LeagueID, weekNo, s.cfg.RescoreInterval, runAt); err != nil {
		s.logger.WarnContext(ctx, "queue follow-up score run failed",
			"league_id", scored.LeagueID,
			"week", weekNo,
			"error", err,
		)
		return result, nil
	}
	result.RescoreQueued = true
	return result, nil
}

func (s *JobOrchestratorService) RunRecomputeStandings(ctx context.Context, leagueID string) (int, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.JobOrchestratorService.RunRecomputeStandings")
	defer span.End()

	items, err := s.standings.RecomputeStandings(ctx, leagueID)
	if err != nil {
		return 0, err
	}
	return len(items), nil
}

// RunScheduleSync syncs one week for the season of leagueID, or of every league when empty.
func (s *JobOrchestratorService) RunScheduleSync(ctx context.Context, leagueID string, weekNo int) (int, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.JobOrchestratorService.RunScheduleSync")
	defer span.End()

	leagues, err := s.pickLeagues(ctx, leagueID)
	if err != nil {
		return 0, err
	}

	seasons := make(map[int]struct{}, len(leagues))
	written := 0
	for _, item := range leagues {
		if _, done := seasons[item.Season]; done {
			continue
		}
		seasons[item.Season] = struct{}{}

		count, err := s.schedule.SyncWeek(ctx, item.Season, weekNo)
		if err != nil {
			return written, fmt.Errorf("sync schedule season=%d week=%d: %w", item.Season, weekNo, err)
		}
		written += count
	}
	return written, nil
}

func (s *JobOrchestratorService) pickLeagues(ctx context.Context, leagueID string) ([]league.League, error) {
	leagueID = strings.TrimSpace(leagueID)
	if leagueID == "" {
		items, err := s.leagueRepo.List(ctx)
		if err != nil {
			return nil, fmt.Errorf("list leagues for jobs: %w", err)
		}
		return items, nil
	}

	item, exists, err := s.leagueRepo.GetByID(ctx, leagueID)
	if err != nil {
		return nil, fmt.Errorf("get league for jobs: %w", err)
	}
	if !exists {
		return nil, fmt.Errorf("%w: league=%s", ErrNotFound, leagueID)
	}

	return []league.League{item}, nil
}

func (s *JobOrchestratorService) enqueueScoreWeek(ctx context.Context, leagueID string, weekNo int, delay time.Duration, runAt time.Time) error {
	dedupID := dedupKey("score-week", leagueID+"-w"+strconv.Itoa(weekNo), runAt, time.Minute)
	payload := ScoreWeekJobPayload{LeagueID: leagueID, Week: weekNo}
	if err := s.queue.Enqueue(ctx, JobPathScoreWeek, payload, delay, dedupID); err != nil {
		return fmt.Errorf("enqueue score-week league=%s week=%d: %w", leagueID, weekNo, err)
	}
	s.logger.InfoContext(ctx, "score-week job queued",
		"league_id", leagueID,
		"week", weekNo,
		"delay", delay.String(),
		"dedup_id", dedupID,
	)
	return nil
}

func dedupKey(prefix, subject string, at time.Time, bucket time.Duration) string {
	if bucket <= 0 {
		bucket = time.Minute
	}
	slot := at.UTC().Truncate(bucket).Format("20060102T150405Z")
	prefix = sanitizeDedupSegment(prefix)
	subject = sanitizeDedupSegment(subject)
	return prefix + "-" + subject + "-" + slot
}

func sanitizeDedupSegment(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return "unknown"
	}
	return dedupUnsafeCharRegex.ReplaceAllString(value, "-")
}
