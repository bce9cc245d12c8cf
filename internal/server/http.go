package server

import (
	"context"
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/brightpath-edu/daily-quiz/internal/config"
	"github.com/brightpath-edu/daily-quiz/internal/logging"
)

// Handlers collects the per-domain HTTP handlers mounted on the API server.
type Handlers struct {
	Questions      http.HandlerFunc
	Submit         http.HandlerFunc
	Settings       http.HandlerFunc
	SettingsUpdate http.HandlerFunc
	RankingsRun    http.HandlerFunc
	Vouchers       http.HandlerFunc
}

// NewHTTPServer wires base routes (health, metrics) and the quiz API.
func NewHTTPServer(cfg *config.App, logger zerolog.Logger, pool *pgxpool.Pool, redis *redis.Client, handlers Handlers) *http.Server {
	mux := http.NewServeMux()

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := pingDependencies(r.Context(), pool, redis); err != nil {
			reqLogger := logging.FromContext(r.Context())
			reqLogger.Warn().Err(err).Msg("health check dependency ping failed")
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"status":"degraded"}`))
			return
		}
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	mux.Handle("/metrics", promhttp.Handler())

	if handlers.Questions != nil {
		mux.HandleFunc("/v1/quiz/questions", handlers.Questions)
	}
	if handlers.Submit != nil {
		mux.HandleFunc("/v1/quiz/submit", handlers.Submit)
	}
	if handlers.Settings != nil {
		mux.HandleFunc("/v1/settings", handlers.Settings)
	}
	if handlers.SettingsUpdate != nil {
		mux.HandleFunc("/v1/admin/settings", handlers.SettingsUpdate)
	}
	if handlers.RankingsRun != nil {
		mux.HandleFunc("/v1/admin/rankings/run", handlers.RankingsRun)
	}
	if handlers.Vouchers != nil {
		mux.HandleFunc("/v1/vouchers", handlers.Vouchers)
	}

	// Every request carries the app logger in its context.
	root := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mux.ServeHTTP(w, r.WithContext(logging.IntoContext(r.Context(), logger)))
	})

	return &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: root,
	}
}

func pingDependencies(ctx context.Context, pool *pgxpool.Pool, redis *redis.Client) error {
	if err := pool.Ping(ctx); err != nil {
		return err
	}
	if err := redis.Ping(ctx).Err(); err != nil {
		return err
	}
	return nil
}
