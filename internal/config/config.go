package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"github.com/spf13/viper"
)

type Config struct {
	Env         string
	Port        string
	JWTSecret   string
	CORSOrigins []string
	Database    DatabaseConfig
	Redis       RedisConfig
	Voting      VotingConfig
	Tracing     TracingConfig
}

type DatabaseConfig struct {
	URL      string
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string

	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
}

type RedisConfig struct {
	URL                string
	VotesPerMinute     int
	RateLimitKeyPrefix string
}

type VotingConfig struct {
	ForbidSelfVote bool
	MaxAttempts    int
	RetryBackoff   time.Duration
}

type TracingConfig struct {
	Enabled     bool
	ServiceName string
	Endpoint    string
	Insecure    bool
	SampleRatio float64
}

// DSN builds a libpq-style connection string, preferring DATABASE_URL when set.
func (d DatabaseConfig) DSN() string {
	if d.URL != "" {
		return d.URL
	}
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s TimeZone=UTC",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode,
	)
}

// Load reads configuration from the environment (and a .env file, if present).
func Load() (*Config, error) {
	v := viper.New()

	v.SetDefault("APP_ENV", "development")
	v.SetDefault("PORT", "8080")
	v.SetDefault("CORS_ALLOWED_ORIGINS", "*")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "qa_forum")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("DB_MAX_IDLE_CONNS", 10)
	v.SetDefault("DB_MAX_OPEN_CONNS", 100)
	v.SetDefault("DB_CONN_MAX_LIFETIME", time.Hour)
	v.SetDefault("VOTE_RATE_LIMIT_PER_MINUTE", 60)
	v.SetDefault("VOTE_RATE_LIMIT_PREFIX", "rate_limit:votes")
	v.SetDefault("VOTING_FORBID_SELF_VOTE", false)
	v.SetDefault("VOTE_MAX_ATTEMPTS", 3)
	v.SetDefault("VOTE_RETRY_BACKOFF", 20*time.Millisecond)
	v.SetDefault("OTEL_ENABLED", false)
	v.SetDefault("OTEL_SERVICE_NAME", "qa-forum")
	v.SetDefault("OTEL_SAMPLER_RATIO", 0.1)
	v.AutomaticEnv()

	cfg := &Config{
		Env:         v.GetString("APP_ENV"),
		Port:        v.GetString("PORT"),
		JWTSecret:   v.GetString("JWT_SECRET"),
		CORSOrigins: splitList(v.GetString("CORS_ALLOWED_ORIGINS")),
		Database: DatabaseConfig{
			URL:             v.GetString("DATABASE_URL"),
			Host:            v.GetString("DB_HOST"),
			Port:            v.GetString("DB_PORT"),
			User:            v.GetString("DB_USER"),
			Password:        v.GetString("DB_PASSWORD"),
			Name:            v.GetString("DB_NAME"),
			SSLMode:         v.GetString("DB_SSLMODE"),
			MaxIdleConns:    v.GetInt("DB_MAX_IDLE_CONNS"),
			MaxOpenConns:    v.GetInt("DB_MAX_OPEN_CONNS"),
			ConnMaxLifetime: v.GetDuration("DB_CONN_MAX_LIFETIME"),
		},
		Redis: RedisConfig{
			URL:                v.GetString("REDIS_URL"),
			VotesPerMinute:     v.GetInt("VOTE_RATE_LIMIT_PER_MINUTE"),
			RateLimitKeyPrefix: v.GetString("VOTE_RATE_LIMIT_PREFIX"),
		},
		Voting: VotingConfig{
			ForbidSelfVote: v.GetBool("VOTING_FORBID_SELF_VOTE"),
			MaxAttempts:    v.GetInt("VOTE_MAX_ATTEMPTS"),
			RetryBackoff:   v.GetDuration("VOTE_RETRY_BACKOFF"),
		},
		Tracing: TracingConfig{
			Enabled:     v.GetBool("OTEL_ENABLED"),
			ServiceName: v.GetString("OTEL_SERVICE_NAME"),
			Endpoint:    v.GetString("OTEL_EXPORTER_OTLP_ENDPOINT"),
			Insecure:    v.GetBool("OTEL_EXPORTER_OTLP_INSECURE"),
			SampleRatio: v.GetFloat64("OTEL_SAMPLER_RATIO"),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	var errs []error
	if strings.TrimSpace(c.JWTSecret) == "" {
		errs = append(errs, errors.New("JWT_SECRET is required"))
	}
	if c.Voting.MaxAttempts < 1 {
		errs = append(errs, fmt.Errorf("VOTE_MAX_ATTEMPTS must be >= 1, got %d", c.Voting.MaxAttempts))
	}
	if c.Redis.VotesPerMinute < 0 {
		errs = append(errs, fmt.Errorf("VOTE_RATE_LIMIT_PER_MINUTE must be >= 0, got %d", c.Redis.VotesPerMinute))
	}
	if c.Tracing.SampleRatio < 0 || c.Tracing.SampleRatio > 1 {
		errs = append(errs, fmt.Errorf("OTEL_SAMPLER_RATIO must be within [0,1], got %v", c.Tracing.SampleRatio))
	}
	return errors.Join(errs...)
}

func (c *Config) IsProduction() bool {
	env := strings.ToLower(c.Env)
	return env == "prod" || env == "production"
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
