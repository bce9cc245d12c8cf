package config

import (
	"context"
	"fmt"
	"time"

	"github.com/caarlos0/env/v10"
)

// App holds core runtime configuration shared across services.
type App struct {
	Name                    string        `env:"APP_NAME" envDefault:"daily-quiz"`
	Env                     string        `env:"APP_ENV" envDefault:"development"`
	HTTPAddr                string        `env:"HTTP_ADDR" envDefault:"0.0.0.0:8080"`
	GracefulShutdownTimeout time.Duration `env:"GRACEFUL_SHUTDOWN_SECONDS" envDefault:"20s"`

	Postgres Postgres
	Redis    Redis
	Quiz     Quiz
	Rewards  Rewards
}

// Postgres captures connection info for the SQL database.
type Postgres struct {
	Host     string `env:"PG_HOST,notEmpty"`
	Port     int    `env:"PG_PORT" envDefault:"5432"`
	User     string `env:"PG_USER,notEmpty"`
	Password string `env:"PG_PASSWORD,notEmpty"`
	Database string `env:"PG_DATABASE,notEmpty"`
	SSLMode  string `env:"PG_SSL_MODE" envDefault:"disable"`
}

// Redis holds cache + coordination configuration.
type Redis struct {
	Addr     string `env:"REDIS_ADDR,notEmpty"`
	DB       int    `env:"REDIS_DB" envDefault:"0"`
	PoolSize int    `env:"REDIS_POOL_SIZE" envDefault:"20"`
}

// Quiz groups sampling and scheduling defaults for the competition engine.
// The daily window itself lives in the quiz_settings table so administrators
// can move it without a redeploy; these values shape how the engine samples
// and interprets time.
type Quiz struct {
	Timezone            string   `env:"QUIZ_TIMEZONE" envDefault:"Asia/Kolkata"`
	Categories          []string `env:"QUIZ_CATEGORIES" envSeparator:"," envDefault:"mathematics,science,english,history,general"`
	QuestionsPerSubject int      `env:"QUIZ_QUESTIONS_PER_SUBJECT" envDefault:"2"`

	RankLockTTL time.Duration `env:"RANK_LOCK_TTL" envDefault:"10m"`
	RankChunk   int           `env:"RANK_CHUNK_SIZE" envDefault:"500"`
}

// Rewards configures the consolation voucher band and voucher generation.
type Rewards struct {
	BandLower       int           `env:"REWARD_BAND_LOWER" envDefault:"100"`
	BandUpper       int           `env:"REWARD_BAND_UPPER" envDefault:"10000"`
	DiscountPercent int           `env:"REWARD_DISCOUNT_PERCENT" envDefault:"10"`
	Validity        time.Duration `env:"REWARD_VALIDITY" envDefault:"720h"`
	CodeLength      int           `env:"REWARD_CODE_LENGTH" envDefault:"10"`
}

// Load parses environment variables into App config.
func Load(ctx context.Context) (*App, error) {
	cfg := &App{}
	if err := env.ParseWithOptions(cfg, env.Options{RequiredIfNoDef: true}); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if cfg.Rewards.BandLower >= cfg.Rewards.BandUpper {
		return nil, fmt.Errorf("reward band lower bound %d must be below upper bound %d",
			cfg.Rewards.BandLower, cfg.Rewards.BandUpper)
	}
	return cfg, nil
}

// Location resolves the configured reference timezone.
func (c *App) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Quiz.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", c.Quiz.Timezone, err)
	}
	return loc, nil
}
