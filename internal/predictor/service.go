// Package predictor ties the resolver, the historical tables and the model
// into the single prediction operation the API exposes.
package predictor

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/utakatalp/worldcup-predictor/internal/league"
	"github.com/utakatalp/worldcup-predictor/internal/model"
)

// ErrModelUnavailable is returned by every prediction while the service runs
// in degraded mode.
var ErrModelUnavailable = errors.New("model not loaded")

// probabilityPlaces is the precision of the probabilities handed to clients.
const probabilityPlaces = 4

// Request is one prediction query. Team names are free-form.
type Request struct {
	HomeTeam   string
	AwayTeam   string
	IsWorldCup bool
}

// Result is the answer to a Request.
type Result struct {
	Match    league.Match
	Features league.FeatureVector

	// Probabilities are rounded; Outcome is picked from the raw model output.
	Probabilities league.Probabilities
	Outcome       league.Outcome
}

// rankLookup is implemented by histories that can tell a real row from a
// default, like *store.Store.
type rankLookup interface {
	LookupRank(team string) (float64, bool)
}

type Service struct {
	resolver  *league.Resolver
	history   league.History
	assembler *league.Assembler
	model     model.Model
	cause     error
	log       logrus.FieldLogger
}

// NewService builds a ready service. A nil model yields a degraded one.
func NewService(r *league.Resolver, h league.History, m model.Model, log logrus.FieldLogger) *Service {
	if m == nil || h == nil {
		return NewDegradedService(ErrModelUnavailable, log)
	}
	return &Service{
		resolver:  r,
		history:   h,
		assembler: league.NewAssembler(h),
		model:     m,
		log:       log,
	}
}

// NewDegradedService builds a service that refuses every prediction.
// cause is what went wrong at startup.
func NewDegradedService(cause error, log logrus.FieldLogger) *Service {
	if cause == nil {
		cause = ErrModelUnavailable
	}
	return &Service{cause: cause, log: log}
}

// Ready reports whether predictions can be served.
func (s *Service) Ready() bool { return s.model != nil }

// Err is the startup failure behind degraded mode, nil when ready.
func (s *Service) Err() error { return s.cause }

// ModelName is empty in degraded mode.
func (s *Service) ModelName() string {
	if s.model == nil {
		return ""
	}
	return s.model.Name()
}

// Predict resolves both names, builds the feature vector and asks the model.
func (s *Service) Predict(ctx context.Context, req Request) (*Result, error) {
	// 1) degraded mode never reaches the tables
	if s.model == nil {
		return nil, ErrModelUnavailable
	}

	// 2) canonical names
	match := league.Match{
		Home:       req.HomeTeam,
		Away:       req.AwayTeam,
		HomeTeam:   s.resolver.Resolve(req.HomeTeam),
		AwayTeam:   s.resolver.Resolve(req.AwayTeam),
		IsWorldCup: req.IsWorldCup,
	}
	s.logMisses(match)

	// 3) features
	v := s.assembler.Assemble(match.HomeTeam, match.AwayTeam, match.IsWorldCup)
	s.log.WithFields(logrus.Fields{
		"match":    match.CanonicalLabel(),
		"features": v.Map(),
	}).Debug("features assembled")

	// 4) model
	raw, err := s.model.PredictProbabilities(ctx, v)
	if err != nil {
		return nil, fmt.Errorf("predicting %s: %w", match.CanonicalLabel(), err)
	}

	// 5) round for display, pick the outcome from the raw values
	return &Result{
		Match:         match,
		Features:      v,
		Probabilities: round(raw),
		Outcome:       raw.Argmax(),
	}, nil
}

func (s *Service) logMisses(m league.Match) {
	for _, pair := range [][2]string{{m.Home, m.HomeTeam}, {m.Away, m.AwayTeam}} {
		raw, team := pair[0], pair[1]
		if !s.resolver.Known(raw) {
			s.log.WithFields(logrus.Fields{"input": raw, "team": team}).Debug("team name not in alias table")
		}
		if h, ok := s.history.(rankLookup); ok {
			if _, found := h.LookupRank(team); !found {
				s.log.WithField("team", team).Debug("no ranking row, using defaults")
			}
		}
	}
}

func round(p league.Probabilities) league.Probabilities {
	var out league.Probabilities
	for i, v := range p {
		out[i] = decimal.NewFromFloat(v).Round(probabilityPlaces).InexactFloat64()
	}
	return out
}
