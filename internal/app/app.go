package app

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/brightpath-edu/daily-quiz/internal/attempt"
	"github.com/brightpath-edu/daily-quiz/internal/config"
	"github.com/brightpath-edu/daily-quiz/internal/db/repository"
	"github.com/brightpath-edu/daily-quiz/internal/logging"
	"github.com/brightpath-edu/daily-quiz/internal/metrics"
	"github.com/brightpath-edu/daily-quiz/internal/question"
	"github.com/brightpath-edu/daily-quiz/internal/ranking"
	"github.com/brightpath-edu/daily-quiz/internal/server"
	"github.com/brightpath-edu/daily-quiz/internal/settings"
	"github.com/brightpath-edu/daily-quiz/internal/voucher"
)

// Application aggregates shared infrastructure (DB, cache, HTTP server).
type Application struct {
	cfg    *config.App
	logger zerolog.Logger

	pool  *pgxpool.Pool
	redis *redis.Client
	http  *http.Server
}

// New bootstraps config, logger, Postgres, Redis and the quiz engine wiring.
func New(ctx context.Context, cfg *config.App) (*Application, error) {
	logger := logging.New(cfg.Name, cfg.Env)
	logger.Info().Msg("starting application bootstrap")

	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	connString := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s pool_max_conns=10",
		cfg.Postgres.Host, cfg.Postgres.Port, cfg.Postgres.User, cfg.Postgres.Password, cfg.Postgres.Database, cfg.Postgres.SSLMode)

	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		DB:       cfg.Redis.DB,
		PoolSize: cfg.Redis.PoolSize,
	})

	engineMetrics := metrics.NewEngine(prometheus.DefaultRegisterer)

	participantRepo := repository.NewParticipantRepository(pool)
	questionRepo := repository.NewQuestionRepository(pool)
	resultRepo := repository.NewResultRepository(pool)
	settingsRepo := repository.NewSettingsRepository(pool)
	voucherRepo := repository.NewVoucherRepository(pool)
	servedSets := attempt.NewCachedServedSets(repository.NewServedSetRepository(pool), redisClient, 0)

	sampler := question.NewSampler(questionRepo, logger)
	gate := attempt.NewGatekeeper(resultRepo, settingsRepo, loc, engineMetrics, logger)
	attemptSvc := attempt.NewService(gate, sampler, questionRepo, servedSets, participantRepo, loc, attempt.ServiceOptions{
		Categories:  cfg.Quiz.Categories,
		PerCategory: cfg.Quiz.QuestionsPerSubject,
	}, logger)
	pipeline := attempt.NewPipeline(resultRepo, servedSets, participantRepo, settingsRepo, loc, engineMetrics, attempt.PipelineOptions{}, logger)

	issuer := voucher.NewIssuer(voucherRepo, engineMetrics, voucher.IssuerOptions{
		DiscountPercent: cfg.Rewards.DiscountPercent,
		Validity:        cfg.Rewards.Validity,
		CodeLength:      cfg.Rewards.CodeLength,
	}, logger)
	voucherSvc := voucher.NewService(voucherRepo, logger)

	runLock := ranking.NewRedisRunLock(redisClient, cfg.Quiz.RankLockTTL)
	calculator := ranking.NewCalculator(resultRepo, issuer, runLock, settingsRepo, engineMetrics, ranking.Options{
		BandLower: cfg.Rewards.BandLower,
		BandUpper: cfg.Rewards.BandUpper,
		ChunkSize: cfg.Quiz.RankChunk,
	}, logger)

	attemptHandler := attempt.NewHTTPHandler(attemptSvc, pipeline, logger)
	settingsHandler := settings.NewHTTPHandler(settingsRepo, logger)
	rankingHandler := ranking.NewHTTPHandler(calculator, loc, logger)
	voucherHandler := voucher.NewHTTPHandler(voucherSvc, logger)

	apiServer := server.NewHTTPServer(cfg, logger, pool, redisClient, server.Handlers{
		Questions:      attemptHandler.HandleQuestions,
		Submit:         attemptHandler.HandleSubmit,
		Settings:       settingsHandler.HandleGet,
		SettingsUpdate: settingsHandler.HandleUpdate,
		RankingsRun:    rankingHandler.HandleRun,
		Vouchers:       voucherHandler.HandleList,
	})

	return &Application{
		cfg:    cfg,
		logger: logger,
		pool:   pool,
		redis:  redisClient,
		http:   apiServer,
	}, nil
}

// Run starts the HTTP server and waits for termination signals.
func (a *Application) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		a.logger.Info().Str("addr", a.cfg.HTTPAddr).Msg("http server listening")
		if err := a.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		a.logger.Info().Str("signal", sig.String()).Msg("shutdown signal received")
	case err := <-errCh:
		return fmt.Errorf("http server error: %w", err)
	case <-ctx.Done():
		a.logger.Warn().Msg("context canceled")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.GracefulShutdownTimeout)
	defer cancel()

	if err := a.http.Shutdown(shutdownCtx); err != nil {
		a.logger.Error().Err(err).Msg("http shutdown error")
	}

	a.pool.Close()
	if err := a.redis.Close(); err != nil {
		a.logger.Error().Err(err).Msg("redis shutdown error")
	}

	a.logger.Info().Msg("shutdown complete")
	return nil
}
