package memory

import (
	"fmt"
	"time"

	"github.com/riskibarqy/pickem-league/internal/domain/game"
	"github.com/riskibarqy/pickem-league/internal/domain/league"
	"github.com/riskibarqy/pickem-league/internal/domain/player"
)

const (
	LeagueIDSundaySix  = "sunday-six-2026"
	LeagueIDOfficePool = "office-pool-2026"
	SeedSeason         = 2026
)

// SeedWeekOneKickoff is the first Sunday slate of the seeded season.
var SeedWeekOneKickoff = time.Date(2026, time.September, 13, 17, 0, 0, 0, time.UTC)

func SeedLeagues() []league.League {
	return []league.League{
		{
			ID:             LeagueIDSundaySix,
			Name:           "Sunday Six",
			Season:         SeedSeason,
			EntryFee:       50,
			PayoutPercents: []float64{60, 30, 10},
		},
		{
			ID:             LeagueIDOfficePool,
			Name:           "Office Pool",
			Season:         SeedSeason,
			EntryFee:       20,
			PayoutPercents: []float64{100},
		},
	}
}

func SeedPlayers() []player.Player {
	return []player.Player{
		{ID: "kc-qb-1", Name: "Patrick Mahomes", TeamID: "KC", Position: player.PositionQuarterback},
		{ID: "kc-rb-1", Name: "Isiah Pacheco", TeamID: "KC", Position: player.PositionRunningBack},
		{ID: "kc-wr-1", Name: "Rashee Rice", TeamID: "KC", Position: player.PositionWideReceiver},
		{ID: "kc-te-1", Name: "Travis Kelce", TeamID: "KC", Position: player.PositionTightEnd},
		{ID: "buf-qb-1", Name: "Josh Allen", TeamID: "BUF", Position: player.PositionQuarterback},
		{ID: "buf-rb-1", Name: "James Cook", TeamID: "BUF", Position: player.PositionRunningBack},
		{ID: "buf-wr-1", Name: "Khalil Shakir", TeamID: "BUF", Position: player.PositionWideReceiver},
		{ID: "phi-qb-1", Name: "Jalen Hurts", TeamID: "PHI", Position: player.PositionQuarterback},
		{ID: "phi-rb-1", Name: "Saquon Barkley", TeamID: "PHI", Position: player.PositionRunningBack},
		{ID: "phi-wr-1", Name: "A.J. Brown", TeamID: "PHI", Position: player.PositionWideReceiver},
		{ID: "dal-qb-1", Name: "Dak Prescott", TeamID: "DAL", Position: player.PositionQuarterback},
		{ID: "dal-rb-1", Name: "Javonte Williams", TeamID: "DAL", Position: player.PositionRunningBack},
		{ID: "dal-wr-1", Name: "CeeDee Lamb", TeamID: "DAL", Position: player.PositionWideReceiver},
	}
}

// SeedGames returns weeks 1-3 of a four team schedule, one Sunday apart.
func SeedGames() []game.Game {
	out := make([]game.Game, 0, 6)
	matchups := [][2][2]string{
		{{"KC", "BUF"}, {"PHI", "DAL"}},
		{{"BUF", "PHI"}, {"DAL", "KC"}},
		{{"KC", "PHI"}, {"BUF", "DAL"}},
	}
	for i, week := range matchups {
		kickoff := SeedWeekOneKickoff.AddDate(0, 0, 7*i)
		for j, teams := range week {
			out = append(out, game.Game{
				ID:         SeedGameID(i+1, j+1),
				Season:     SeedSeason,
				Week:       i + 1,
				HomeTeamID: teams[0],
				AwayTeamID: teams[1],
				KickoffAt:  kickoff.Add(time.Duration(j) * 3 * time.Hour),
				Status:     game.StatusScheduled,
			})
		}
	}
	return out
}

func SeedGameID(week, index int) string {
	return fmt.Sprintf("%d-w%02d-g%d", SeedSeason, week, index)
}
