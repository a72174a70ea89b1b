package model

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/utakatalp/worldcup-predictor/internal/league"
)

// KServeModel calls a model served over the KServe v1 REST protocol:
//
//	POST {endpoint}/v1/models/{name}:predict  {"instances": [[...]]}
//	-> {"predictions": [[p_home, p_draw, p_away]]}
type KServeModel struct {
	Endpoint  string
	ModelName string
	Timeout   time.Duration

	httpClient *http.Client
}

// KServeOption configures a KServeModel.
type KServeOption func(*KServeModel)

// WithTimeout bounds each call. Zero keeps the default.
func WithTimeout(d time.Duration) KServeOption {
	return func(m *KServeModel) {
		if d > 0 {
			m.Timeout = d
		}
	}
}

// WithHTTPClient replaces the default client.
func WithHTTPClient(c *http.Client) KServeOption {
	return func(m *KServeModel) {
		m.httpClient = c
	}
}

func NewKServeModel(endpoint, name string, opts ...KServeOption) *KServeModel {
	m := &KServeModel{
		Endpoint:  strings.TrimRight(endpoint, "/"),
		ModelName: name,
		Timeout:   5 * time.Second,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.httpClient == nil {
		m.httpClient = &http.Client{Timeout: m.Timeout}
	}
	return m
}

func (m *KServeModel) Name() string { return "kserve:" + m.ModelName }

func (m *KServeModel) modelURL() string {
	return m.Endpoint + "/v1/models/" + url.PathEscape(m.ModelName)
}

type kserveRequest struct {
	Instances [][]float64 `json:"instances"`
}

type kserveResponse struct {
	Predictions [][]float64 `json:"predictions"`
}

func (m *KServeModel) PredictProbabilities(ctx context.Context, v league.FeatureVector) (league.Probabilities, error) {
	body, err := json.Marshal(kserveRequest{Instances: [][]float64{v.Values()}})
	if err != nil {
		return league.Probabilities{}, fmt.Errorf("encoding kserve request: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, m.Timeout)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.modelURL()+":predict", bytes.NewReader(body))
	if err != nil {
		return league.Probabilities{}, fmt.Errorf("building kserve request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return league.Probabilities{}, fmt.Errorf("calling kserve %s: %w", m.ModelName, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return league.Probabilities{}, fmt.Errorf("reading kserve response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return league.Probabilities{}, fmt.Errorf("kserve %s returned %d: %s", m.ModelName, resp.StatusCode, strings.TrimSpace(string(data)))
	}

	var out kserveResponse
	if err := json.Unmarshal(data, &out); err != nil {
		return league.Probabilities{}, fmt.Errorf("decoding kserve response: %w", err)
	}
	if len(out.Predictions) != 1 {
		return league.Probabilities{}, fmt.Errorf("%w: %d predictions for 1 instance", ErrInvalidOutput, len(out.Predictions))
	}
	return normalize(out.Predictions[0])
}

// Ready asks the server whether the model is loaded.
func (m *KServeModel) Ready(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, m.Timeout)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, m.modelURL(), nil)
	if err != nil {
		return fmt.Errorf("building kserve ready request: %w", err)
	}
	resp, err := m.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("checking kserve %s: %w", m.ModelName, err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("kserve model %s not ready: status %d", m.ModelName, resp.StatusCode)
	}
	return nil
}
