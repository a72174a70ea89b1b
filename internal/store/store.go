package store

import (
	"github.com/utakatalp/worldcup-predictor/internal/league"
)

// Store keeps the ranking and stats tables in memory, grouped by team in
// load order. It is never mutated after New returns.
type Store struct {
	rankings map[string][]league.RankingRecord
	stats    map[string][]league.StatsRecord

	rankingRows int
	statsRows   int
}

// New indexes the rows by team. Row order within a team is kept as given:
// the last row for a team is its "latest" one, whatever its date says.
func New(rankings []league.RankingRecord, stats []league.StatsRecord) *Store {
	s := &Store{
		rankings:    make(map[string][]league.RankingRecord),
		stats:       make(map[string][]league.StatsRecord),
		rankingRows: len(rankings),
		statsRows:   len(stats),
	}
	for _, r := range rankings {
		s.rankings[r.Team] = append(s.rankings[r.Team], r)
	}
	for _, r := range stats {
		s.stats[r.Team] = append(s.stats[r.Team], r)
	}
	return s
}

// LookupRank returns the rank from the team's last ranking row.
func (s *Store) LookupRank(team string) (float64, bool) {
	rows := s.rankings[team]
	if len(rows) == 0 {
		return league.DefaultRank, false
	}
	return rows[len(rows)-1].Rank, true
}

// LatestRank is LookupRank without the found flag.
func (s *Store) LatestRank(team string) float64 {
	rank, _ := s.LookupRank(team)
	return rank
}

// LookupStats returns the team's last stats row.
func (s *Store) LookupStats(team string) (league.StatsRecord, bool) {
	rows := s.stats[team]
	if len(rows) == 0 {
		return league.StatsRecord{
			Team:        team,
			AvgScored:   league.DefaultScored,
			AvgConceded: league.DefaultConceded,
		}, false
	}
	return rows[len(rows)-1], true
}

// LatestStats is LookupStats reduced to the two averages.
func (s *Store) LatestStats(team string) (scored, conceded float64) {
	rec, _ := s.LookupStats(team)
	return rec.AvgScored, rec.AvgConceded
}

// Len reports how many rows were loaded into each table.
func (s *Store) Len() (rankings, stats int) {
	return s.rankingRows, s.statsRows
}

// Teams reports how many distinct teams each table covers.
func (s *Store) Teams() (rankings, stats int) {
	return len(s.rankings), len(s.stats)
}
