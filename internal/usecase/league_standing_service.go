package usecase

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/riskibarqy/pickem-league/internal/domain/league"
	"github.com/riskibarqy/pickem-league/internal/domain/leaguestanding"
	"github.com/riskibarqy/pickem-league/internal/domain/scoring"
	"github.com/riskibarqy/pickem-league/internal/platform/logging"
)

// LeagueStandingService derives season standings from weekly scores. It never edits a
// standing row in place; every recompute replaces the league's full set.
type LeagueStandingService struct {
	leagueRepo   league.Repository
	scoreRepo    scoring.Repository
	standingRepo leaguestanding.Repository
	logger       *logging.Logger
	now          func() time.Time
}

func NewLeagueStandingService(
	leagueRepo league.Repository,
	scoreRepo scoring.Repository,
	standingRepo leaguestanding.Repository,
	logger *logging.Logger,
) *LeagueStandingService {
	if logger == nil {
		logger = logging.Default()
	}
	return &LeagueStandingService{
		leagueRepo:   leagueRepo,
		scoreRepo:    scoreRepo,
		standingRepo: standingRepo,
		logger:       logger,
		now:          time.Now,
	}
}

func (s *LeagueStandingService) ListByLeague(ctx context.Context, leagueID string) ([]leaguestanding.SeasonStanding, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.LeagueStandingService.ListByLeague")
	defer span.End()

	lg, err := s.getLeague(ctx, leagueID)
	if err != nil {
		return nil, err
	}

	items, err := s.standingRepo.ListByLeague(ctx, lg.ID)
	if err != nil {
		return nil, fmt.Errorf("list league standings: %w", err)
	}
	sortStandings(items)
	return items, nil
}

// RecomputeStandings rebuilds every participant row from the league's Score records.
func (s *LeagueStandingService) RecomputeStandings(ctx context.Context, leagueID string) ([]leaguestanding.SeasonStanding, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.LeagueStandingService.RecomputeStandings")
	defer span.End()

	lg, err := s.getLeague(ctx, leagueID)
	if err != nil {
		return nil, err
	}

	scores, err := s.scoreRepo.ListByLeague(ctx, lg.ID)
	if err != nil {
		return nil, fmt.Errorf("list league scores: %w", err)
	}

	items := aggregateStandings(lg, scores, s.now().UTC())
	if err := s.standingRepo.ReplaceByLeague(ctx, lg.ID, items); err != nil {
		return nil, fmt.Errorf("replace league standings: %w", err)
	}

	s.logger.InfoContext(ctx, "standings recomputed",
		"league_id", lg.ID,
		"participants", len(items),
		"scores", len(scores),
	)
	return items, nil
}

func (s *LeagueStandingService) getLeague(ctx context.Context, leagueID string) (league.League, error) {
	leagueID = strings.TrimSpace(leagueID)
	if leagueID == "" {
		return league.League{}, fmt.Errorf("%w: league id is required", ErrInvalidInput)
	}

	lg, exists, err := s.leagueRepo.GetByID(ctx, leagueID)
	if err != nil {
		return league.League{}, fmt.Errorf("get league: %w", err)
	}
	if !exists {
		return league.League{}, fmt.Errorf("%w: league=%s", ErrNotFound, leagueID)
	}
	return lg, nil
}

func aggregateStandings(lg league.League, scores []scoring.Score, computedAt time.Time) []leaguestanding.SeasonStanding {
	byParticipant := make(map[string]*leaguestanding.SeasonStanding)
	for _, sc := range scores {
		row, ok := byParticipant[sc.ParticipantID]
		if !ok {
			row = &leaguestanding.SeasonStanding{
				LeagueID:      lg.ID,
				ParticipantID: sc.ParticipantID,
				ComputedAt:    computedAt,
			}
			byParticipant[sc.ParticipantID] = row
		}

		row.SeasonTotalPoints += sc.Total
		row.WeeksPlayed++
		if row.BestWeek == 0 || sc.Total > row.BestWeekPoints || (sc.Total == row.BestWeekPoints && sc.Week < row.BestWeek) {
			row.BestWeekPoints = sc.Total
			row.BestWeek = sc.Week
		}
	}

	items := make([]leaguestanding.SeasonStanding, 0, len(byParticipant))
	for _, row := range byParticipant {
		row.SeasonTotalPoints = scoring.Round1(row.SeasonTotalPoints)
		items = append(items, *row)
	}
	sortStandings(items)
	assignRanks(items)
	assignPayouts(items, lg)
	return items
}

func sortStandings(items []leaguestanding.SeasonStanding) {
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].SeasonTotalPoints != items[j].SeasonTotalPoints {
			return items[i].SeasonTotalPoints > items[j].SeasonTotalPoints
		}
		return items[i].ParticipantID < items[j].ParticipantID
	})
}

// assignRanks uses competition ranking: equal totals share a rank and the next rank skips.
func assignRanks(items []leaguestanding.SeasonStanding) {
	for i := range items {
		if i > 0 && items[i].SeasonTotalPoints == items[i-1].SeasonTotalPoints {
			items[i].Rank = items[i-1].Rank
			continue
		}
		items[i].Rank = i + 1
	}
}

// assignPayouts pools the shares of every place a tie group covers and splits them evenly.
func assignPayouts(items []leaguestanding.SeasonStanding, lg league.League) {
	pot := lg.Pot(len(items))
	if pot <= 0 || len(lg.PayoutPercents) == 0 {
		return
	}

	for start := 0; start < len(items); {
		end := start
		for end < len(items) && items[end].Rank == items[start].Rank {
			end++
		}

		var pct float64
		for place := start; place < end && place < len(lg.PayoutPercents); place++ {
			pct += lg.PayoutPercents[place]
		}
		if pct > 0 {
			share := math.Round(pot*pct/100/float64(end-start)*100) / 100
			for i := start; i < end; i++ {
				items[i].Payout = share
			}
		}
		start = end
	}
}
