package config

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"seminar-results-service/internal/scoring"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Port string `yaml:"port"`
	} `yaml:"server"`
	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"log"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		TTL      string `yaml:"ttl"`
	} `yaml:"redis"`
	Postgres struct {
		URL string `yaml:"url"`
	} `yaml:"postgres"`
	Directory struct {
		TTL string `yaml:"ttl"`
	} `yaml:"directory"`
	Scoring struct {
		Strategies []Strategy `yaml:"strategies"`
	} `yaml:"scoring"`
	Invitations struct {
		Participants int `yaml:"participants"`
		Substitutes  int `yaml:"substitutes"`
	} `yaml:"invitations"`
}

// Strategy is a weight-table scoring strategy declared in config.
type Strategy struct {
	Name      string        `yaml:"name"`
	Threshold int           `yaml:"threshold"`
	Above     []int         `yaml:"above"`
	Exact     map[int][]int `yaml:"exact"`
	Default   []int         `yaml:"default"`
}

const (
	defaultParticipants = 32
	defaultSubstitutes  = 20
)

// Load reads YAML config from path.
func Load(path string) (Config, error) {
	cfg := Config{}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	if cfg.Invitations.Participants == 0 && cfg.Invitations.Substitutes == 0 {
		cfg.Invitations.Participants = defaultParticipants
		cfg.Invitations.Substitutes = defaultSubstitutes
	}
	return cfg, nil
}

// TTLDuration parses a duration string or returns the fallback if empty.
func TTLDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	return fallback
}

// Registry returns the built-in strategies with configured ones layered on top.
func (c Config) Registry() *scoring.Registry {
	reg := scoring.NewRegistry()
	for _, s := range c.Scoring.Strategies {
		if s.Name == "" {
			continue
		}
		table := scoring.WeightTable{
			Threshold: s.Threshold,
			Above:     s.Above,
			Exact:     s.Exact,
			Default:   s.Default,
		}
		reg.Register(s.Name, table.Strategy())
	}
	return reg
}

// Logger builds the process logger writing to w.
func (c Config) Logger(w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLevel(c.Log.Level)}
	if strings.EqualFold(c.Log.Format, "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func parseLevel(raw string) slog.Level {
	switch strings.ToLower(raw) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
