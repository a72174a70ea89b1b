package store

import (
	"context"
	"fmt"

	"github.com/utakatalp/worldcup-predictor/internal/league"
	"golang.org/x/sync/errgroup"
)

// Sources the historical tables can be read from.
const (
	SourceCSV      = "csv"
	SourcePostgres = "postgres"
	SourceSQLite   = "sqlite"
)

// Options selects where the tables come from.
type Options struct {
	Source string

	// csv
	RankingPath string
	StatsPath   string

	// postgres / sqlite
	DSN    string
	Tables Tables
}

// Load reads both tables once and builds the Store.
func Load(ctx context.Context, opts Options) (*Store, error) {
	var (
		rankings []league.RankingRecord
		stats    []league.StatsRecord
	)
	g, ctx := errgroup.WithContext(ctx)

	switch opts.Source {
	case SourceCSV, "":
		g.Go(func() (err error) {
			rankings, err = LoadRankingsCSV(opts.RankingPath)
			return err
		})
		g.Go(func() (err error) {
			stats, err = LoadStatsCSV(opts.StatsPath)
			return err
		})

	case SourcePostgres, SourceSQLite:
		driver := DriverPostgres
		if opts.Source == SourceSQLite {
			driver = DriverSQLite
		}
		db, err := OpenDB(ctx, driver, opts.DSN)
		if err != nil {
			return nil, err
		}
		// tables are copied into memory, the connection is not kept
		defer db.Close()

		tables := opts.Tables
		if tables.Ranking == "" {
			tables.Ranking = DefaultTables.Ranking
		}
		if tables.Stats == "" {
			tables.Stats = DefaultTables.Stats
		}
		if tables.OrderColumn == "" {
			tables.OrderColumn = DefaultTables.OrderColumn
		}
		g.Go(func() (err error) {
			rankings, err = LoadRankingsSQL(ctx, db, tables)
			return err
		})
		g.Go(func() (err error) {
			stats, err = LoadStatsSQL(ctx, db, tables)
			return err
		})

	default:
		return nil, fmt.Errorf("unknown history source %q", opts.Source)
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return New(rankings, stats), nil
}
