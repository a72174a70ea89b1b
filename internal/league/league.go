package league

import (
	"fmt"
	"time"
)

// Values substituted when a team has no row in a historical table.
const (
	DefaultRank     = 150.0
	DefaultScored   = 0.0
	DefaultConceded = 0.0
)

// RankingRecord is one observation of a team's world ranking.
type RankingRecord struct {
	Team string
	Date time.Time
	Rank float64
}

// StatsRecord holds a team's rolling goal averages at a given date.
type StatsRecord struct {
	Team        string
	Date        time.Time
	AvgScored   float64
	AvgConceded float64
}

// Match represents a fixture as the user typed it and as it was resolved.
type Match struct {
	Home, Away         string
	HomeTeam, AwayTeam string
	IsWorldCup         bool
}

// Label echoes the raw input, e.g. "brasil vs. alemanha".
func (m *Match) Label() string {
	return fmt.Sprintf("%s vs. %s", m.Home, m.Away)
}

// CanonicalLabel shows the names used against the tables.
func (m *Match) CanonicalLabel() string {
	return fmt.Sprintf("%s vs. %s", m.HomeTeam, m.AwayTeam)
}

// Outcome indexes the model's probability columns.
type Outcome int

const (
	HomeWin Outcome = iota
	Draw
	AwayWin
)

func (o Outcome) String() string {
	switch o {
	case HomeWin:
		return "vitoria_casa"
	case Draw:
		return "empate"
	case AwayWin:
		return "vitoria_visitante"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// Probabilities is the model output ordered [home, draw, away].
type Probabilities [3]float64

// Argmax returns the most likely outcome. Ties go to the lowest index.
func (p Probabilities) Argmax() Outcome {
	best := 0
	for i := 1; i < len(p); i++ {
		if p[i] > p[best] {
			best = i
		}
	}
	return Outcome(best)
}

func (p Probabilities) Sum() float64 {
	return p[0] + p[1] + p[2]
}
