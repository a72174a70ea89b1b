// Package model wraps the trained match classifier. The classifier is a
// black box: one feature vector in, one [home, draw, away] triple out.
package model

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/utakatalp/worldcup-predictor/internal/league"
)

// Model predicts outcome probabilities for one match.
type Model interface {
	Name() string
	PredictProbabilities(ctx context.Context, v league.FeatureVector) (league.Probabilities, error)
}

// Kinds of model the service can load.
const (
	KindSoftmax = "softmax"
	KindKServe  = "kserve"
)

var (
	// ErrInvalidArtifact means the exported model does not match the
	// features this service produces.
	ErrInvalidArtifact = errors.New("invalid model artifact")
	// ErrInvalidOutput means the model returned something that is not a
	// probability triple.
	ErrInvalidOutput = errors.New("invalid model output")
)

// Options selects and configures the model.
type Options struct {
	Kind string

	// softmax
	Path string

	// kserve
	Endpoint string
	Name     string
	Timeout  time.Duration
}

// Load builds the configured model. Remote models are checked for
// readiness so a dead endpoint is caught at startup.
func Load(ctx context.Context, opts Options) (Model, error) {
	switch opts.Kind {
	case KindSoftmax, "":
		return LoadSoftmax(opts.Path)
	case KindKServe:
		m := NewKServeModel(opts.Endpoint, opts.Name, WithTimeout(opts.Timeout))
		if err := m.Ready(ctx); err != nil {
			return nil, err
		}
		return m, nil
	default:
		return nil, fmt.Errorf("unknown model kind %q", opts.Kind)
	}
}

// normalize checks a raw triple and rescales it to sum to 1.
func normalize(raw []float64) (league.Probabilities, error) {
	var p league.Probabilities
	if len(raw) != len(p) {
		return p, fmt.Errorf("%w: got %d values, want %d", ErrInvalidOutput, len(raw), len(p))
	}
	sum := 0.0
	for i, v := range raw {
		if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
			return p, fmt.Errorf("%w: value %d is %v", ErrInvalidOutput, i, v)
		}
		p[i] = v
		sum += v
	}
	if sum == 0 {
		return p, fmt.Errorf("%w: all probabilities are zero", ErrInvalidOutput)
	}
	for i := range p {
		p[i] /= sum
	}
	return p, nil
}
