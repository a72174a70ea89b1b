package store

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"time"

	"github.com/lib/pq"
	"github.com/utakatalp/worldcup-predictor/internal/league"

	_ "modernc.org/sqlite"
)

// Driver names accepted by OpenDB.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Tables names the two historical tables and the column that records
// insertion order.
type Tables struct {
	Ranking     string
	Stats       string
	OrderColumn string
}

// DefaultTables matches the export job's table layout.
var DefaultTables = Tables{
	Ranking:     "ranking_data",
	Stats:       "stats_data",
	OrderColumn: "id",
}

// OpenDB opens and pings a database holding the historical tables.
func OpenDB(ctx context.Context, driver, dsn string) (*sql.DB, error) {
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	// verify early
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}
	return db, nil
}

// LoadRankingsSQL reads every ranking row in insertion order.
func LoadRankingsSQL(ctx context.Context, db *sql.DB, t Tables) ([]league.RankingRecord, error) {
	q := fmt.Sprintf(`
    SELECT team, "date", "rank"
    FROM %s
    ORDER BY %s
    `, pq.QuoteIdentifier(t.Ranking), pq.QuoteIdentifier(t.OrderColumn))

	rows, err := db.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("querying rankings: %w", err)
	}
	defer rows.Close()

	var out []league.RankingRecord
	for rows.Next() {
		var (
			r    league.RankingRecord
			date any
		)
		if err := rows.Scan(&r.Team, &date, &r.Rank); err != nil {
			return nil, fmt.Errorf("scanning ranking row: %w", err)
		}
		if r.Date, err = scanDate(date); err != nil {
			return nil, fmt.Errorf("ranking row for %s: %w", r.Team, err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating ranking rows: %w", err)
	}
	return out, nil
}

// LoadStatsSQL reads every stats row in insertion order.
func LoadStatsSQL(ctx context.Context, db *sql.DB, t Tables) ([]league.StatsRecord, error) {
	q := fmt.Sprintf(`
    SELECT team, "date", avg_scored, avg_conceded
    FROM %s
    ORDER BY %s
    `, pq.QuoteIdentifier(t.Stats), pq.QuoteIdentifier(t.OrderColumn))

	rows, err := db.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("querying stats: %w", err)
	}
	defer rows.Close()

	var out []league.StatsRecord
	for rows.Next() {
		var (
			r    league.StatsRecord
			date any
		)
		if err := rows.Scan(&r.Team, &date, &r.AvgScored, &r.AvgConceded); err != nil {
			return nil, fmt.Errorf("scanning stats row: %w", err)
		}
		if r.Date, err = scanDate(date); err != nil {
			return nil, fmt.Errorf("stats row for %s: %w", r.Team, err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating stats rows: %w", err)
	}
	return out, nil
}

// scanDate accepts what the drivers hand back for a date column: lib/pq
// returns time.Time, sqlite returns TEXT or a unix timestamp.
func scanDate(v any) (time.Time, error) {
	switch d := v.(type) {
	case time.Time:
		return d, nil
	case string:
		return parseDate(d)
	case []byte:
		return parseDate(string(d))
	case int64:
		return time.Unix(d, 0).UTC(), nil
	case nil:
		return time.Time{}, fmt.Errorf("null date")
	default:
		return time.Time{}, fmt.Errorf("unsupported date value %s", strconv.Quote(fmt.Sprint(d)))
	}
}
