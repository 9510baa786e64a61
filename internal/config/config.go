package config

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Port string `yaml:"port"`
	} `yaml:"server"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		TTL      string `yaml:"ttl"`
	} `yaml:"redis"`
	Postgres struct {
		URL string `yaml:"url"`
	} `yaml:"postgres"`
	Quiz struct {
		TTL  string `yaml:"ttl"` // question cache
		Seed *bool  `yaml:"seed"`
	} `yaml:"quiz"`
	Session struct {
		Cookie string `yaml:"cookie"`
		TTL    string `yaml:"ttl"`
	} `yaml:"session"`
	Auth struct {
		JWTSecret string `yaml:"jwt_secret"`
		LoginURL  string `yaml:"login_url"`
		TokenTTL  string `yaml:"token_ttl"`
	} `yaml:"auth"`
	AMQP struct {
		URL string `yaml:"url"` // score events; disabled when empty
	} `yaml:"amqp"`
	Leaderboard struct {
		Limit int `yaml:"limit"`
	} `yaml:"leaderboard"`
	CORS struct {
		AllowedOrigins []string `yaml:"allowed_origins"`
	} `yaml:"cors"`
	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"log"`
}

// Load reads YAML config from path. A missing file yields defaults; env
// overrides are applied either way.
func Load(path string) (Config, error) {
	cfg := Config{}
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return cfg, err
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, err
		}
	}
	applyEnv(&cfg)
	applyDefaults(&cfg)
	return cfg, nil
}

// SeedEnabled reports whether default questions should be seeded (on unless disabled).
func (c Config) SeedEnabled() bool {
	return c.Quiz.Seed == nil || *c.Quiz.Seed
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("QUIZ_JWT_SECRET"); v != "" {
		cfg.Auth.JWTSecret = v
	}
	if v := os.Getenv("QUIZ_POSTGRES_URL"); v != "" {
		cfg.Postgres.URL = v
	}
	if v := os.Getenv("QUIZ_REDIS_ADDR"); v != "" {
		cfg.Redis.Addr = v
	}
	if v := os.Getenv("QUIZ_AMQP_URL"); v != "" {
		cfg.AMQP.URL = v
	}
	if v := os.Getenv("QUIZ_REDIS_PASSWORD"); v != "" {
		cfg.Redis.Password = v
	}
	if v := os.Getenv("QUIZ_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v, err := strconv.Atoi(os.Getenv("QUIZ_LEADERBOARD_LIMIT")); err == nil && v > 0 {
		cfg.Leaderboard.Limit = v
	}
}

func applyDefaults(cfg *Config) {
	if cfg.Session.Cookie == "" {
		cfg.Session.Cookie = "quiz_session"
	}
	if cfg.Auth.LoginURL == "" {
		cfg.Auth.LoginURL = "/login"
	}
	if cfg.Leaderboard.Limit <= 0 {
		cfg.Leaderboard.Limit = 10
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
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
