package model

import (
	"context"
	"fmt"
	"math"
	"path/filepath"

	jsoniter "github.com/json-iterator/go"
	"github.com/utakatalp/worldcup-predictor/internal/artifact"
	"github.com/utakatalp/worldcup-predictor/internal/league"
	"gopkg.in/yaml.v3"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// SoftmaxModel is a multinomial logistic regression:
//
//	z_k = Intercept_k + sum_i(Coef_k,i * x_i)
//	p_k = exp(z_k) / sum_j(exp(z_j))
//
// Rows of Coef are already ordered [home, draw, away].
type SoftmaxModel struct {
	name      string
	Coef      [3][]float64
	Intercept [3]float64
}

// softmaxArtifact is the file written by the training notebook.
type softmaxArtifact struct {
	Name         string      `json:"name" yaml:"name"`
	FeatureNames []string    `json:"feature_names" yaml:"feature_names"`
	Classes      []int       `json:"classes" yaml:"classes"`
	Coef         [][]float64 `json:"coef" yaml:"coef"`
	Intercept    []float64   `json:"intercept" yaml:"intercept"`
}

// LoadSoftmax reads a JSON or YAML artifact, optionally brotli-compressed.
func LoadSoftmax(path string) (*SoftmaxModel, error) {
	data, err := artifact.ReadAll(path)
	if err != nil {
		return nil, err
	}
	var raw softmaxArtifact
	switch artifact.BaseExt(path) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &raw)
	default:
		err = json.Unmarshal(data, &raw)
	}
	if err != nil {
		return nil, fmt.Errorf("decoding model %s: %w", path, err)
	}
	if raw.Name == "" {
		raw.Name = filepath.Base(path)
	}
	m, err := newSoftmax(raw)
	if err != nil {
		return nil, fmt.Errorf("model %s: %w", path, err)
	}
	return m, nil
}

func newSoftmax(a softmaxArtifact) (*SoftmaxModel, error) {
	n := len(league.FeatureNames)
	if len(a.FeatureNames) != n {
		return nil, fmt.Errorf("%w: %d features, want %d", ErrInvalidArtifact, len(a.FeatureNames), n)
	}
	for i, name := range league.FeatureNames {
		if a.FeatureNames[i] != name {
			return nil, fmt.Errorf("%w: feature %d is %q, want %q", ErrInvalidArtifact, i, a.FeatureNames[i], name)
		}
	}
	if len(a.Coef) != 3 || len(a.Intercept) != 3 {
		return nil, fmt.Errorf("%w: want 3 classes, got %d coef rows and %d intercepts", ErrInvalidArtifact, len(a.Coef), len(a.Intercept))
	}

	// classes map artifact rows onto outcomes; missing means [0, 1, 2]
	classes := a.Classes
	if len(classes) == 0 {
		classes = []int{int(league.HomeWin), int(league.Draw), int(league.AwayWin)}
	}
	if len(classes) != 3 {
		return nil, fmt.Errorf("%w: %d classes, want 3", ErrInvalidArtifact, len(classes))
	}

	m := &SoftmaxModel{name: a.Name}
	seen := [3]bool{}
	for row, class := range classes {
		if class < 0 || class > 2 || seen[class] {
			return nil, fmt.Errorf("%w: classes must be a permutation of 0, 1, 2, got %v", ErrInvalidArtifact, classes)
		}
		seen[class] = true
		if len(a.Coef[row]) != n {
			return nil, fmt.Errorf("%w: coef row %d has %d weights, want %d", ErrInvalidArtifact, row, len(a.Coef[row]), n)
		}
		m.Coef[class] = append([]float64(nil), a.Coef[row]...)
		m.Intercept[class] = a.Intercept[row]
	}
	return m, nil
}

func (m *SoftmaxModel) Name() string { return m.name }

func (m *SoftmaxModel) PredictProbabilities(_ context.Context, v league.FeatureVector) (league.Probabilities, error) {
	x := v.Values()
	var z [3]float64
	for k := range z {
		z[k] = m.Intercept[k]
		for i, w := range m.Coef[k] {
			z[k] += w * x[i]
		}
	}

	// subtract the max for numerical stability
	maxZ := math.Max(z[0], math.Max(z[1], z[2]))
	raw := make([]float64, len(z))
	for k := range z {
		raw[k] = math.Exp(z[k] - maxZ)
	}
	return normalize(raw)
}
