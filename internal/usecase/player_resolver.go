package usecase

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/riskibarqy/pickem-league/internal/domain/player"
)

const minNameSimilarity = 0.8

// playerResolver maps backfill entries to players by id, exact name, then closest name.
type playerResolver struct {
	byID   map[string]player.Player
	byName map[string][]player.Player
	all    []player.Player
}

func newPlayerResolver(players []player.Player) *playerResolver {
	r := &playerResolver{
		byID:   make(map[string]player.Player, len(players)),
		byName: make(map[string][]player.Player, len(players)),
		all:    players,
	}
	for _, p := range players {
		r.byID[p.ID] = p
		name := normalizeName(p.Name)
		r.byName[name] = append(r.byName[name], p)
	}
	return r
}

func (r *playerResolver) Resolve(playerID, name string) (player.Player, error) {
	playerID = strings.TrimSpace(playerID)
	if playerID != "" {
		p, ok := r.byID[playerID]
		if !ok {
			return player.Player{}, fmt.Errorf("unknown player id %s", playerID)
		}
		return p, nil
	}

	name = normalizeName(name)
	if name == "" {
		return player.Player{}, fmt.Errorf("player id or name is required")
	}
	switch matches := r.byName[name]; len(matches) {
	case 1:
		return matches[0], nil
	case 0:
	default:
		return player.Player{}, fmt.Errorf("player name %q is ambiguous (%d matches)", name, len(matches))
	}

	var best player.Player
	bestScore := -1.0
	tied := false
	for _, p := range r.all {
		score := nameSimilarity(name, normalizeName(p.Name))
		switch {
		case score > bestScore:
			best, bestScore, tied = p, score, false
		case score == bestScore:
			tied = true
		}
	}
	if bestScore < minNameSimilarity {
		if bestScore < 0 {
			return player.Player{}, fmt.Errorf("unknown player %q", name)
		}
		return player.Player{}, fmt.Errorf("unknown player %q (closest: %s)", name, best.Name)
	}
	if tied {
		return player.Player{}, fmt.Errorf("player name %q is ambiguous (closest: %s)", name, best.Name)
	}
	return best, nil
}

func nameSimilarity(a, b string) float64 {
	longest := max(utf8.RuneCountInString(a), utf8.RuneCountInString(b))
	if longest == 0 {
		return 1
	}
	return 1 - float64(fuzzy.LevenshteinDistance(a, b))/float64(longest)
}

func normalizeName(raw string) string {
	return strings.Join(strings.Fields(strings.ToLower(raw)), " ")
}
