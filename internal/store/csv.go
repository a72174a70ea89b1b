package store

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/utakatalp/worldcup-predictor/internal/artifact"
	"github.com/utakatalp/worldcup-predictor/internal/league"
)

// Column names as written by the export job. The first name is preferred.
var (
	rankingTeamCols = []string{"time", "team"}
	rankingDateCols = []string{"data_ranking", "rank_date", "date"}
	rankingRankCols = []string{"rank"}

	statsTeamCols     = []string{"team", "time"}
	statsDateCols     = []string{"date"}
	statsScoredCols   = []string{"avg_scored"}
	statsConcededCols = []string{"avg_conceded"}
)

var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	time.RFC3339,
	"2006-01-02T15:04:05",
}

// ErrMissingColumn is returned when a CSV header lacks a required column.
var ErrMissingColumn = errors.New("missing column")

// LoadRankingsCSV reads the ranking table. Rows keep file order.
func LoadRankingsCSV(path string) ([]league.RankingRecord, error) {
	var out []league.RankingRecord
	err := readCSV(path, func(h header, row []string, line int) error {
		team, err := h.get(row, rankingTeamCols)
		if err != nil {
			return err
		}
		date, err := h.date(row, rankingDateCols)
		if err != nil {
			return fmt.Errorf("line %d: %w", line, err)
		}
		rank, err := h.float(row, rankingRankCols)
		if err != nil {
			return fmt.Errorf("line %d: %w", line, err)
		}
		out = append(out, league.RankingRecord{Team: team, Date: date, Rank: rank})
		return nil
	}, rankingTeamCols, rankingDateCols, rankingRankCols)
	if err != nil {
		return nil, fmt.Errorf("loading rankings: %w", err)
	}
	return out, nil
}

// LoadStatsCSV reads the scoring stats table. Rows keep file order.
func LoadStatsCSV(path string) ([]league.StatsRecord, error) {
	var out []league.StatsRecord
	err := readCSV(path, func(h header, row []string, line int) error {
		team, err := h.get(row, statsTeamCols)
		if err != nil {
			return err
		}
		date, err := h.date(row, statsDateCols)
		if err != nil {
			return fmt.Errorf("line %d: %w", line, err)
		}
		scored, err := h.float(row, statsScoredCols)
		if err != nil {
			return fmt.Errorf("line %d: %w", line, err)
		}
		conceded, err := h.float(row, statsConcededCols)
		if err != nil {
			return fmt.Errorf("line %d: %w", line, err)
		}
		out = append(out, league.StatsRecord{
			Team:        team,
			Date:        date,
			AvgScored:   scored,
			AvgConceded: conceded,
		})
		return nil
	}, statsTeamCols, statsDateCols, statsScoredCols, statsConcededCols)
	if err != nil {
		return nil, fmt.Errorf("loading stats: %w", err)
	}
	return out, nil
}

type header map[string]int

func (h header) index(names []string) (int, bool) {
	for _, n := range names {
		if i, ok := h[n]; ok {
			return i, true
		}
	}
	return 0, false
}

func (h header) get(row []string, names []string) (string, error) {
	i, ok := h.index(names)
	if !ok || i >= len(row) {
		return "", fmt.Errorf("%w %s", ErrMissingColumn, names[0])
	}
	return strings.TrimSpace(row[i]), nil
}

func (h header) float(row []string, names []string) (float64, error) {
	s, err := h.get(row, names)
	if err != nil {
		return 0, err
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("parsing %s %q: %w", names[0], s, err)
	}
	return v, nil
}

func (h header) date(row []string, names []string) (time.Time, error) {
	s, err := h.get(row, names)
	if err != nil {
		return time.Time{}, err
	}
	return parseDate(s)
}

func parseDate(s string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("parsing date %q", s)
}

func readCSV(path string, fn func(h header, row []string, line int) error, required ...[]string) error {
	rc, err := artifact.Open(path)
	if err != nil {
		return err
	}
	defer rc.Close()

	r := csv.NewReader(rc)
	r.ReuseRecord = true

	first, err := r.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("%s: empty file", path)
		}
		return fmt.Errorf("reading header of %s: %w", path, err)
	}
	h := make(header, len(first))
	for i, name := range first {
		// pandas exports may carry a BOM and an unnamed index column
		name = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))
		if _, dup := h[name]; !dup {
			h[name] = i
		}
	}
	for _, names := range required {
		if _, ok := h.index(names); !ok {
			return fmt.Errorf("%s: %w %s", path, ErrMissingColumn, names[0])
		}
	}

	line := 1
	for {
		row, err := r.Read()
		if errors.Is(err, io.EOF) {
			return nil
		}
		line++
		if err != nil {
			return fmt.Errorf("reading %s: %w", path, err)
		}
		if err := fn(h, row, line); err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
	}
}
