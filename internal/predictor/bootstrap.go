package predictor

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/utakatalp/worldcup-predictor/internal/config"
	"github.com/utakatalp/worldcup-predictor/internal/league"
	"github.com/utakatalp/worldcup-predictor/internal/model"
	"github.com/utakatalp/worldcup-predictor/internal/store"
	"golang.org/x/sync/errgroup"
)

// Runtime holds what was loaded at startup. Either both Model and History
// are set, or Err says why neither is.
type Runtime struct {
	Model   model.Model
	History *store.Store
	Err     error
}

func (rt *Runtime) Ready() bool { return rt.Err == nil }

// Service wraps the runtime for request handling.
func (rt *Runtime) Service(r *league.Resolver, log logrus.FieldLogger) *Service {
	if !rt.Ready() {
		return NewDegradedService(rt.Err, log)
	}
	return NewService(r, rt.History, rt.Model, log)
}

// Bootstrap loads the model and both tables in parallel. It never fails:
// any error puts the runtime in degraded mode and is logged once.
func Bootstrap(ctx context.Context, cfg *config.Config, log logrus.FieldLogger) *Runtime {
	start := time.Now()
	var (
		m  model.Model
		st *store.Store
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		m, err = model.Load(gctx, model.Options{
			Kind:     cfg.Model.Kind,
			Path:     cfg.Model.Path,
			Endpoint: cfg.Model.Endpoint,
			Name:     cfg.Model.Name,
			Timeout:  cfg.Model.Timeout,
		})
		if err != nil {
			return fmt.Errorf("loading model: %w", err)
		}
		return nil
	})
	g.Go(func() (err error) {
		st, err = store.Load(gctx, store.Options{
			Source:      cfg.History.Source,
			RankingPath: cfg.History.RankingPath,
			StatsPath:   cfg.History.StatsPath,
			DSN:         cfg.History.DSN,
			Tables: store.Tables{
				Ranking:     cfg.History.RankingTable,
				Stats:       cfg.History.StatsTable,
				OrderColumn: cfg.History.OrderColumn,
			},
		})
		if err != nil {
			return fmt.Errorf("loading history: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		log.WithError(err).Error("startup failed, serving in degraded mode")
		return &Runtime{Err: err}
	}

	rankingRows, statsRows := st.Len()
	rankingTeams, statsTeams := st.Teams()
	log.WithFields(logrus.Fields{
		"model":         m.Name(),
		"source":        cfg.History.Source,
		"ranking_rows":  rankingRows,
		"ranking_teams": rankingTeams,
		"stats_rows":    statsRows,
		"stats_teams":   statsTeams,
		"took":          time.Since(start).String(),
	}).Info("model and historical data loaded")
	return &Runtime{Model: m, History: st}
}
