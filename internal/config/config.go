package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the service configuration. Values come from the defaults, then
// an optional YAML file, then PREDICTOR_* environment variables.
type Config struct {
	Listen          string        `yaml:"listen"`
	AllowedOrigins  []string      `yaml:"allowed_origins"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`

	Model   ModelConfig       `yaml:"model"`
	History HistoryConfig     `yaml:"history"`
	Aliases map[string]string `yaml:"aliases"`
	Log     LogConfig         `yaml:"log"`
}

type ModelConfig struct {
	Kind     string        `yaml:"kind"` // softmax | kserve
	Path     string        `yaml:"path"`
	Endpoint string        `yaml:"endpoint"`
	Name     string        `yaml:"name"`
	Timeout  time.Duration `yaml:"timeout"`
}

type HistoryConfig struct {
	Source       string `yaml:"source"` // csv | postgres | sqlite
	RankingPath  string `yaml:"ranking_path"`
	StatsPath    string `yaml:"stats_path"`
	DSN          string `yaml:"dsn"`
	RankingTable string `yaml:"ranking_table"`
	StatsTable   string `yaml:"stats_table"`
	OrderColumn  string `yaml:"order_column"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // text | json
}

// Default mirrors the artifact layout the training notebook writes.
func Default() *Config {
	return &Config{
		Listen:          ":8000",
		AllowedOrigins:  []string{"http://localhost:3000", "http://127.0.0.1:3000"},
		ShutdownTimeout: 10 * time.Second,
		Model: ModelConfig{
			Kind:    "softmax",
			Path:    "artifacts/modelo_avancado.json",
			Timeout: 5 * time.Second,
		},
		History: HistoryConfig{
			Source:       "csv",
			RankingPath:  "artifacts/ranking_data.csv",
			StatsPath:    "artifacts/stats_data.csv",
			RankingTable: "ranking_data",
			StatsTable:   "stats_data",
			OrderColumn:  "id",
		},
		Log: LogConfig{Level: "info", Format: "text"},
	}
}

// Load reads path (if not empty) over the defaults and applies the
// process environment.
func Load(path string) (*Config, error) {
	return LoadWithEnv(path, os.LookupEnv)
}

// LoadWithEnv is Load with an injectable environment.
func LoadWithEnv(path string, lookup func(string) (string, bool)) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config: %w", err)
		}
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("parsing config %s: %w", path, err)
		}
	}
	if err := cfg.applyEnv(lookup); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	str := map[string]*string{
		"PREDICTOR_LISTEN":         &c.Listen,
		"PREDICTOR_MODEL_KIND":     &c.Model.Kind,
		"PREDICTOR_MODEL_PATH":     &c.Model.Path,
		"PREDICTOR_MODEL_ENDPOINT": &c.Model.Endpoint,
		"PREDICTOR_MODEL_NAME":     &c.Model.Name,
		"PREDICTOR_HISTORY_SOURCE": &c.History.Source,
		"PREDICTOR_RANKING_PATH":   &c.History.RankingPath,
		"PREDICTOR_STATS_PATH":     &c.History.StatsPath,
		"PREDICTOR_HISTORY_DSN":    &c.History.DSN,
		"PREDICTOR_LOG_LEVEL":      &c.Log.Level,
		"PREDICTOR_LOG_FORMAT":     &c.Log.Format,
	}
	for key, dst := range str {
		if v, ok := lookup(key); ok {
			*dst = v
		}
	}
	if v, ok := lookup("PREDICTOR_ALLOWED_ORIGINS"); ok {
		c.AllowedOrigins = splitList(v)
	}
	if v, ok := lookup("PREDICTOR_MODEL_TIMEOUT"); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("PREDICTOR_MODEL_TIMEOUT: %w", err)
		}
		c.Model.Timeout = d
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Validate rejects settings the service cannot start with. Missing artifact
// files are not checked here: they put the service in degraded mode.
func (c *Config) Validate() error {
	if c.Listen == "" {
		return fmt.Errorf("listen address is required")
	}
	switch c.Model.Kind {
	case "softmax":
	case "kserve":
		if c.Model.Endpoint == "" || c.Model.Name == "" {
			return fmt.Errorf("model.endpoint and model.name are required for kserve models")
		}
	default:
		return fmt.Errorf("unknown model kind %q", c.Model.Kind)
	}
	switch c.History.Source {
	case "csv":
	case "postgres", "sqlite":
		if c.History.DSN == "" {
			return fmt.Errorf("history.dsn is required for %s source", c.History.Source)
		}
	default:
		return fmt.Errorf("unknown history source %q", c.History.Source)
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("unknown log format %q", c.Log.Format)
	}
	for _, o := range c.AllowedOrigins {
		if o == "*" {
			// credentials cannot be combined with a wildcard origin
			return fmt.Errorf("allowed_origins must list explicit origins, not *")
		}
	}
	return nil
}
