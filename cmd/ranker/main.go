package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"

	"github.com/brightpath-edu/daily-quiz/internal/config"
	"github.com/brightpath-edu/daily-quiz/internal/db/repository"
	"github.com/brightpath-edu/daily-quiz/internal/logging"
	"github.com/brightpath-edu/daily-quiz/internal/metrics"
	"github.com/brightpath-edu/daily-quiz/internal/ranking"
	"github.com/brightpath-edu/daily-quiz/internal/voucher"
)

// The ranker is the batch entrypoint run by the scheduler after the daily
// window closes. It ranks one quiz date and issues consolation vouchers,
// then exits. A date already being ranked elsewhere is a clean exit, not a
// failure, so overlapping cron fires do not page anyone.
func main() {
	dateFlag := flag.String("date", "", "Quiz date to rank (2006-01-02, defaults to today)")
	flag.Parse()

	if os.Getenv("APP_ENV") != "production" {
		if err := godotenv.Load("configs/.env"); err != nil {
			log.Printf("Warning: could not load .env file: %v", err)
		}
	}

	ctx := context.Background()
	cfg, err := config.Load(ctx)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	logger := logging.New(cfg.Name+"-ranker", cfg.Env)

	loc, err := cfg.Location()
	if err != nil {
		logger.Fatal().Err(err).Msg("invalid timezone")
	}

	date := today(loc)
	if *dateFlag != "" {
		date, err = time.ParseInLocation("2006-01-02", *dateFlag, loc)
		if err != nil {
			logger.Fatal().Err(err).Str("date", *dateFlag).Msg("invalid -date, expected 2006-01-02")
		}
	}

	connString := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s pool_max_conns=4",
		cfg.Postgres.Host, cfg.Postgres.Port, cfg.Postgres.User, cfg.Postgres.Password, cfg.Postgres.Database, cfg.Postgres.SSLMode)

	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to postgres")
	}
	defer pool.Close()

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		DB:       cfg.Redis.DB,
		PoolSize: cfg.Redis.PoolSize,
	})
	defer redisClient.Close()

	resultRepo := repository.NewResultRepository(pool)
	settingsRepo := repository.NewSettingsRepository(pool)
	voucherRepo := repository.NewVoucherRepository(pool)

	// Short-lived batch process, nothing scrapes it; keep a local registry.
	engineMetrics := metrics.NewEngine(prometheus.NewRegistry())
	issuer := voucher.NewIssuer(voucherRepo, engineMetrics, voucher.IssuerOptions{
		DiscountPercent: cfg.Rewards.DiscountPercent,
		Validity:        cfg.Rewards.Validity,
		CodeLength:      cfg.Rewards.CodeLength,
	}, logger)

	calculator := ranking.NewCalculator(
		resultRepo,
		issuer,
		ranking.NewRedisRunLock(redisClient, cfg.Quiz.RankLockTTL),
		settingsRepo,
		engineMetrics,
		ranking.Options{
			BandLower: cfg.Rewards.BandLower,
			BandUpper: cfg.Rewards.BandUpper,
			ChunkSize: cfg.Quiz.RankChunk,
		},
		logger,
	)

	outcome, err := calculator.Run(ctx, date)
	if err != nil {
		if errors.Is(err, ranking.ErrRankingInProgress) {
			logger.Info().Time("date", date).Msg("another run holds the lock for this date, exiting")
			return
		}
		logger.Fatal().Err(err).Time("date", date).Msg("ranking run failed")
	}

	logger.Info().
		Time("date", date).
		Int("ranked", outcome.Ranked).
		Int("vouchers_issued", outcome.VouchersIssued).
		Msg("ranking run finished")
}

func today(loc *time.Location) time.Time {
	y, m, d := time.Now().In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}
